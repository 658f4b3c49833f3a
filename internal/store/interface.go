// Package store defines the durable backing for player accounts.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/playerledger/playerledger/internal/account"
)

var (
	// ErrNotFound reports a lookup for a player with no stored row.
	ErrNotFound = errors.New("account not found")

	// ErrExists reports a create for a player that already has a row.
	ErrExists = errors.New("account already exists")

	// ErrAccountMissing reports an update that matched no row. A cached
	// account is always backed by a row, so this is a consistency fault,
	// not a normal absence.
	ErrAccountMissing = errors.New("account row missing on update")
)

// Accounts is the durable account storage. Implementations own a single
// open connection; all operations are synchronous blocking I/O on the
// caller's goroutine.
type Accounts interface {
	// Lookup returns the stored balance for a player, or ErrNotFound.
	Lookup(ctx context.Context, playerID uuid.UUID) (float64, error)

	// Create inserts a new row, or ErrExists.
	Create(ctx context.Context, playerID uuid.UUID, balance float64) error

	// Update overwrites the stored balance for an existing row, or
	// ErrAccountMissing when no row matched.
	Update(ctx context.Context, playerID uuid.UUID, balance float64) error

	// Exists reports whether a row exists for the player.
	Exists(ctx context.Context, playerID uuid.UUID) (bool, error)

	// GetOrCreate loads the player's account, inserting a zero-balance row
	// on first sight. The bool reports whether a row was created.
	GetOrCreate(ctx context.Context, playerID uuid.UUID, name string) (*account.Account, bool, error)

	// Close releases the underlying connection.
	Close() error
}
