// Package account holds the in-memory balance entity for a single player.
package account

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNegativeAmount reports a negative amount passed to a mutation.
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrInsufficientFunds reports a withdrawal larger than the balance.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// Account is one player's balance while it is part of the working set. Any
// mutation that changes the balance marks the account dirty; only the
// session layer clears the flag, after a successful store write.
type Account struct {
	playerID uuid.UUID
	name     string
	balance  float64
	dirty    bool
}

// New returns a clean account holding the given balance.
func New(playerID uuid.UUID, name string, balance float64) *Account {
	return &Account{playerID: playerID, name: name, balance: balance}
}

// PlayerID is the immutable identifier the account is keyed by.
func (a *Account) PlayerID() uuid.UUID { return a.playerID }

// Name is the display name the account was loaded with. Advisory only,
// never a key.
func (a *Account) Name() string { return a.name }

// Balance returns the current in-memory balance.
func (a *Account) Balance() float64 { return a.balance }

// IsDirty reports whether the balance differs from the last persisted value.
func (a *Account) IsDirty() bool { return a.dirty }

// MarkClean resets the dirty flag. Reserved for the session layer after a
// successful store write.
func (a *Account) MarkClean() { a.dirty = false }

// Deposit adds amount to the balance. A zero deposit still dirties the
// account.
func (a *Account) Deposit(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("deposit %v: %w", amount, ErrNegativeAmount)
	}

	a.balance += amount
	a.dirty = true

	return nil
}

// Withdraw subtracts amount from the balance. The balance never goes
// negative.
func (a *Account) Withdraw(amount float64) error {
	if amount < 0 {
		return fmt.Errorf("withdraw %v: %w", amount, ErrNegativeAmount)
	}

	if amount > a.balance {
		return fmt.Errorf("withdraw %v from %s (balance %v): %w",
			amount, a.name, a.balance, ErrInsufficientFunds)
	}

	a.balance -= amount
	a.dirty = true

	return nil
}

// Set replaces the balance. Setting the current value is a no-op and does
// not dirty the account.
func (a *Account) Set(amount float64) error {
	if a.balance == amount {
		return nil
	}

	if amount < 0 {
		return fmt.Errorf("set %v: %w", amount, ErrNegativeAmount)
	}

	a.balance = amount
	a.dirty = true

	return nil
}

// Has reports whether the balance covers amount.
func (a *Account) Has(amount float64) bool {
	return amount <= a.balance
}
