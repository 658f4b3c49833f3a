// Package session owns the working set of online accounts and the
// write-back discipline between that cache and the durable store.
//
// Everything here runs on the host's dispatch thread: join, quit, command
// and shutdown callbacks arrive serially, so the cache and the accounts it
// holds are deliberately unsynchronized.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/playerledger/playerledger/internal/account"
	"github.com/playerledger/playerledger/internal/config"
	"github.com/playerledger/playerledger/internal/dialog"
	"github.com/playerledger/playerledger/internal/host"
	"github.com/playerledger/playerledger/internal/store"
	mysqlstore "github.com/playerledger/playerledger/internal/store/mysql"
)

var (
	// ErrDisabled reports an operation against a manager that already hit
	// a terminal store failure.
	ErrDisabled = errors.New("economy subsystem is disabled")

	// ErrNoAccount reports a resolve for a player without a stored row.
	ErrNoAccount = errors.New("player has no account")
)

// Manager tracks every online player's account and mediates all store
// writes. Accounts never talk to the store themselves.
type Manager struct {
	store    store.Accounts
	host     host.Host
	dialog   *dialog.Dialog
	accounts map[uuid.UUID]*account.Account
	disabled bool
}

// Config locates the subsystem's on-disk data.
type Config struct {
	// DataDir holds credentials.yml and the dialog/ directory.
	DataDir string

	// Locale selects the dialog catalog (dialog/<locale>.yml).
	Locale string
}

// Bootstrap runs the full startup sequence: dialog catalog, credentials,
// store connection, then a replay of the join hook for every player the
// host already reports online (hot reload support).
//
// A freshly generated credentials file aborts startup with
// config.ErrTemplateCreated; the operator must fill it in first.
func Bootstrap(ctx context.Context, h host.Host, cfg Config) (*Manager, error) {
	d, err := dialog.Load(filepath.Join(cfg.DataDir, "dialog"), cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("init dialog: %w", err)
	}

	creds, err := config.Load(filepath.Join(cfg.DataDir, "credentials.yml"))
	if err != nil {
		return nil, fmt.Errorf("load credentials: %w", err)
	}

	db, err := creds.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("open store at %s: %w", creds.URL(), err)
	}

	st, err := mysqlstore.Connect(ctx, db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("connect store: %w", err)
	}

	slog.Info("economy store connected", "url", creds.URL())

	m := New(st, h, d)

	for _, p := range h.OnlinePlayers() {
		m.HandleJoin(ctx, p)
	}

	return m, nil
}

// New wires a manager over an already-open store. Most callers want
// Bootstrap.
func New(st store.Accounts, h host.Host, d *dialog.Dialog) *Manager {
	return &Manager{
		store:    st,
		host:     h,
		dialog:   d,
		accounts: make(map[uuid.UUID]*account.Account),
	}
}

// Dialog exposes the loaded message catalog.
func (m *Manager) Dialog() *dialog.Dialog { return m.dialog }

// Disabled reports whether the subsystem hit a terminal store failure.
func (m *Manager) Disabled() bool { return m.disabled }

// Online reports the number of cached accounts.
func (m *Manager) Online() int { return len(m.accounts) }

// Cached returns the live account for an online player, if any.
func (m *Manager) Cached(playerID uuid.UUID) (*account.Account, bool) {
	acct, ok := m.accounts[playerID]
	return acct, ok
}

// HandleJoin loads (or creates) the joining player's account into the
// cache. The cached account is authoritative over the stored row until the
// player is evicted.
func (m *Manager) HandleJoin(ctx context.Context, p host.Player) {
	if m.disabled {
		return
	}

	acct, created, err := m.store.GetOrCreate(ctx, p.ID, p.Name)
	if err != nil {
		m.disable("load account for "+p.Name, err)
		return
	}

	if created {
		slog.Info("account created on first join", "player", p.Name)
	}

	m.accounts[p.ID] = acct
}

// HandleQuit evicts the player's account, flushing it first when dirty.
func (m *Manager) HandleQuit(ctx context.Context, playerID uuid.UUID) {
	if m.disabled {
		return
	}

	acct, ok := m.accounts[playerID]
	if !ok {
		return
	}

	delete(m.accounts, playerID)

	// Save disables the subsystem itself on failure.
	_ = m.Save(ctx, acct)
}

// Save writes the account through to the store when it is dirty, and
// clears the flag on success. A store failure disables the subsystem.
func (m *Manager) Save(ctx context.Context, acct *account.Account) error {
	if m.disabled {
		return ErrDisabled
	}

	if !acct.IsDirty() {
		return nil
	}

	err := m.store.Update(ctx, acct.PlayerID(), acct.Balance())
	if err != nil {
		m.disable("save account for "+acct.Name(), err)
		return fmt.Errorf("persist account for %s: %w", acct.Name(), err)
	}

	acct.MarkClean()
	slog.Info("account saved", "player", acct.Name(), "balance", acct.Balance())

	return nil
}

// HasAccount reports whether a stored row exists for the player. The store
// is authoritative: every cached entry is backed by a row, so the cache is
// not consulted.
func (m *Manager) HasAccount(ctx context.Context, playerID uuid.UUID) (bool, error) {
	if m.disabled {
		return false, ErrDisabled
	}

	ok, err := m.store.Exists(ctx, playerID)
	if err != nil {
		m.disable("check account", err)
		return false, err
	}

	return ok, nil
}

// Resolve returns the live cached account for an online player, or a
// transient copy fetched from the store for an offline one. Transient
// copies are never inserted into the cache. ErrNoAccount means no row
// exists.
func (m *Manager) Resolve(ctx context.Context, p host.Player) (*account.Account, error) {
	if m.disabled {
		return nil, ErrDisabled
	}

	if acct, ok := m.accounts[p.ID]; ok {
		return acct, nil
	}

	balance, err := m.store.Lookup(ctx, p.ID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNoAccount
	}

	if err != nil {
		m.disable("fetch account for "+p.Name, err)
		return nil, err
	}

	return account.New(p.ID, p.Name, balance), nil
}

// Shutdown flushes every dirty cached account, clears the cache and closes
// the store. Per-account failures are logged and do not stop the flush.
func (m *Manager) Shutdown(ctx context.Context) error {
	var errs []error

	for _, acct := range m.accounts {
		if !acct.IsDirty() {
			continue
		}

		err := m.store.Update(ctx, acct.PlayerID(), acct.Balance())
		if err != nil {
			slog.Warn("failed to save account", "player", acct.Name(), "error", err)
			errs = append(errs, fmt.Errorf("save %s: %w", acct.Name(), err))
			continue
		}

		acct.MarkClean()
	}

	m.accounts = make(map[uuid.UUID]*account.Account)

	err := m.store.Close()
	if err != nil {
		errs = append(errs, err)
	}

	return errors.Join(errs...)
}

// disable moves the subsystem into its terminal state and asks the host to
// unload it. Idempotent; only the first failure unloads.
func (m *Manager) disable(action string, err error) {
	if m.disabled {
		return
	}

	m.disabled = true
	slog.Error("store failure, disabling economy subsystem", "action", action, "error", err)
	m.host.Unload("economy store failure: " + action)
}
