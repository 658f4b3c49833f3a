// Package mysql implements the account store on a MySQL-compatible server.
package mysql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"

	"github.com/playerledger/playerledger/internal/account"
	"github.com/playerledger/playerledger/internal/pid"
	"github.com/playerledger/playerledger/internal/store"
)

const table = "economy_accounts"

// dupKeyCode is the MySQL error number for a duplicate primary key.
const dupKeyCode = 1062

type accountsStore struct{ db *sql.DB }

var _ store.Accounts = (*accountsStore)(nil)

// Connect takes ownership of db and runs the idempotent schema bootstrap.
func Connect(ctx context.Context, db *sql.DB) (store.Accounts, error) {
	s := &accountsStore{db: db}

	err := s.setup(ctx)
	if err != nil {
		return nil, fmt.Errorf("schema bootstrap: %w", err)
	}

	return s, nil
}

func (s *accountsStore) setup(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS `+table+` (
			player_id VARBINARY(16) NOT NULL PRIMARY KEY,
			balance   DOUBLE        NOT NULL,
			UNIQUE INDEX (player_id)
		) ENGINE=InnoDB
	`)
	if err != nil {
		return fmt.Errorf("create accounts table: %w", err)
	}

	return nil
}

func (s *accountsStore) Lookup(ctx context.Context, playerID uuid.UUID) (float64, error) {
	var balance float64

	err := s.db.QueryRowContext(ctx, `
		SELECT balance
		FROM `+table+`
		WHERE player_id = ?
	`, pid.Encode(playerID)).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, store.ErrNotFound
		}

		return 0, fmt.Errorf("lookup balance: %w", err)
	}

	return balance, nil
}

func (s *accountsStore) Create(ctx context.Context, playerID uuid.UUID, balance float64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO `+table+` (player_id, balance)
		VALUES (?, ?)
	`, pid.Encode(playerID), balance)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == dupKeyCode {
			return store.ErrExists
		}

		return fmt.Errorf("insert account: %w", err)
	}

	return nil
}

func (s *accountsStore) Update(ctx context.Context, playerID uuid.UUID, balance float64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE `+table+`
		SET balance = ?
		WHERE player_id = ?
	`, balance, pid.Encode(playerID))
	if err != nil {
		return fmt.Errorf("update balance: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}

	if affected == 0 {
		return store.ErrAccountMissing
	}

	return nil
}

func (s *accountsStore) Exists(ctx context.Context, playerID uuid.UUID) (bool, error) {
	var count int

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM `+table+`
		WHERE player_id = ?
	`, pid.Encode(playerID)).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("count account: %w", err)
	}

	return count == 1, nil
}

func (s *accountsStore) GetOrCreate(ctx context.Context, playerID uuid.UUID, name string) (*account.Account, bool, error) {
	balance, err := s.Lookup(ctx, playerID)
	if errors.Is(err, store.ErrNotFound) {
		err = s.Create(ctx, playerID, 0)
		if err != nil {
			return nil, false, fmt.Errorf("create account: %w", err)
		}

		slog.Info("created account", "player", name)

		return account.New(playerID, name, 0), true, nil
	}

	if err != nil {
		return nil, false, err
	}

	return account.New(playerID, name, balance), false, nil
}

func (s *accountsStore) Close() error {
	err := s.db.Close()
	if err != nil {
		return fmt.Errorf("close store: %w", err)
	}

	return nil
}
