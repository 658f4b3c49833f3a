// Package storetest provides an in-memory Accounts implementation with
// failure injection, for exercising the session and command layers without
// a database.
package storetest

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/playerledger/playerledger/internal/account"
	"github.com/playerledger/playerledger/internal/store"
)

// ErrInjected is the failure returned once FailNext fires.
var ErrInjected = errors.New("injected store failure")

// Fake is an in-memory store. Zero value is ready to use via New.
type Fake struct {
	rows map[uuid.UUID]float64

	// FailNext makes the next store operation fail with ErrInjected.
	FailNext bool

	// Updates counts successful Update calls.
	Updates int

	// Closed reports whether Close ran.
	Closed bool
}

var _ store.Accounts = (*Fake)(nil)

// New returns an empty fake store.
func New() *Fake {
	return &Fake{rows: make(map[uuid.UUID]float64)}
}

// Seed inserts a row directly, bypassing failure injection.
func (f *Fake) Seed(playerID uuid.UUID, balance float64) {
	f.rows[playerID] = balance
}

// Balance reads a row directly, bypassing failure injection.
func (f *Fake) Balance(playerID uuid.UUID) (float64, bool) {
	balance, ok := f.rows[playerID]
	return balance, ok
}

func (f *Fake) fail() bool {
	if f.FailNext {
		f.FailNext = false
		return true
	}

	return false
}

func (f *Fake) Lookup(_ context.Context, playerID uuid.UUID) (float64, error) {
	if f.fail() {
		return 0, ErrInjected
	}

	balance, ok := f.rows[playerID]
	if !ok {
		return 0, store.ErrNotFound
	}

	return balance, nil
}

func (f *Fake) Create(_ context.Context, playerID uuid.UUID, balance float64) error {
	if f.fail() {
		return ErrInjected
	}

	if _, ok := f.rows[playerID]; ok {
		return store.ErrExists
	}

	f.rows[playerID] = balance

	return nil
}

func (f *Fake) Update(_ context.Context, playerID uuid.UUID, balance float64) error {
	if f.fail() {
		return ErrInjected
	}

	if _, ok := f.rows[playerID]; !ok {
		return store.ErrAccountMissing
	}

	f.rows[playerID] = balance
	f.Updates++

	return nil
}

func (f *Fake) Exists(_ context.Context, playerID uuid.UUID) (bool, error) {
	if f.fail() {
		return false, ErrInjected
	}

	_, ok := f.rows[playerID]

	return ok, nil
}

func (f *Fake) GetOrCreate(ctx context.Context, playerID uuid.UUID, name string) (*account.Account, bool, error) {
	balance, err := f.Lookup(ctx, playerID)
	if errors.Is(err, store.ErrNotFound) {
		err = f.Create(ctx, playerID, 0)
		if err != nil {
			return nil, false, fmt.Errorf("create account: %w", err)
		}

		return account.New(playerID, name, 0), true, nil
	}

	if err != nil {
		return nil, false, err
	}

	return account.New(playerID, name, balance), false, nil
}

func (f *Fake) Close() error {
	f.Closed = true
	return nil
}
