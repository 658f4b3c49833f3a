package command

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/playerledger/playerledger/internal/dialog"
	"github.com/playerledger/playerledger/internal/host/hosttest"
	"github.com/playerledger/playerledger/internal/session"
	"github.com/playerledger/playerledger/internal/store/storetest"
)

// Plain templates so assertions read back the named arguments directly.
const testCatalog = `
command_help: "help"
command_deposit_help: "deposit help"
command_withdraw_help: "withdraw help"
command_set_help: "set help"
command_report_help: "report help"
command_deposit_success: "deposited %amount% to %player%, balance %balance%"
command_withdraw_success: "withdrew %amount% from %player%, balance %balance%"
command_set_success: "set %player% to %balance%"
command_report_success: "%player% has %balance%"
player_not_found: "not found %player%"
no_account: "no account %player%"
invalid_amount_given: "bad amount %amount%"
negative_amount_given: "negative amount %amount%"
insufficient_balance: "%player% only has %balance%"
`

type fixture struct {
	cmd     *Balance
	manager *session.Manager
	store   *storetest.Fake
	host    *hosttest.Fake
	sender  *hosttest.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	d, err := dialog.Parse([]byte(testCatalog))
	require.NoError(t, err)

	st := storetest.New()
	h := hosttest.New()
	m := session.New(st, h, d)

	return &fixture{
		cmd:     New(m, h),
		manager: m,
		store:   st,
		host:    h,
		sender:  &hosttest.Recorder{},
	}
}

func (f *fixture) run(t *testing.T, args ...string) {
	t.Helper()
	f.cmd.Execute(context.Background(), f.sender, args)
}

func TestExecute_NoArgsShowsHelp(t *testing.T) {
	f := newFixture(t)

	f.run(t)

	assert.Equal(t, "help", f.sender.Last())
}

func TestExecute_UnknownSubcommandShowsHelp(t *testing.T) {
	f := newFixture(t)

	f.run(t, "transfer", "Alice", "10")

	assert.Equal(t, "help", f.sender.Last())
}

func TestExecute_ArityErrors(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{args: []string{"deposit", "Alice"}, want: "deposit help"},
		{args: []string{"withdraw"}, want: "withdraw help"},
		{args: []string{"set", "Alice", "1", "2"}, want: "set help"},
		{args: []string{"report"}, want: "report help"},
		{args: []string{"report", "Alice", "10"}, want: "report help"},
	}

	for _, tt := range tests {
		f := newFixture(t)

		f.run(t, tt.args...)

		assert.Equal(t, tt.want, f.sender.Last(), "args %v", tt.args)
	}
}

func TestExecute_PlayerNeverJoined(t *testing.T) {
	f := newFixture(t)

	f.run(t, "report", "Ghost")

	assert.Equal(t, "not found Ghost", f.sender.Last())
}

func TestExecute_InvalidAmount(t *testing.T) {
	f := newFixture(t)
	f.host.AddPlayer("Alice", true)

	f.run(t, "deposit", "Alice", "lots")

	assert.Equal(t, "bad amount lots", f.sender.Last())
}

func TestExecute_NegativeAmount(t *testing.T) {
	for _, sub := range []string{"deposit", "withdraw", "set"} {
		f := newFixture(t)
		f.host.AddPlayer("Alice", true)

		f.run(t, sub, "Alice", "-5")

		assert.Equal(t, "negative amount -5", f.sender.Last(), "subcommand %s", sub)
	}
}

func TestExecute_NoAccount(t *testing.T) {
	f := newFixture(t)
	// The host knows Alice but no row was ever created.
	f.host.AddPlayer("Alice", false)

	f.run(t, "deposit", "Alice", "10")

	assert.Equal(t, "no account Alice", f.sender.Last())
}

// New join then report: a fresh account reports a zero balance.
func TestScenario_JoinThenReport(t *testing.T) {
	f := newFixture(t)
	alice := f.host.AddPlayer("Alice", true)
	f.manager.HandleJoin(context.Background(), alice)

	f.run(t, "report", "Alice")

	assert.Equal(t, "Alice has 0", f.sender.Last())
	balance, ok := f.store.Balance(alice.ID)
	require.True(t, ok)
	assert.Equal(t, 0.0, balance)
}

// Deposit then withdraw: both write through and leave the account clean.
func TestScenario_DepositThenWithdraw(t *testing.T) {
	f := newFixture(t)
	alice := f.host.AddPlayer("Alice", true)
	f.manager.HandleJoin(context.Background(), alice)

	f.run(t, "deposit", "Alice", "50")
	assert.Equal(t, "deposited 50 to Alice, balance 50", f.sender.Last())

	f.run(t, "withdraw", "Alice", "20")
	assert.Equal(t, "withdrew 20 from Alice, balance 30", f.sender.Last())

	balance, _ := f.store.Balance(alice.ID)
	assert.Equal(t, 30.0, balance)

	acct, ok := f.manager.Cached(alice.ID)
	require.True(t, ok)
	assert.False(t, acct.IsDirty())
}

// Withdraw past the balance: message carries the current balance and the
// store is untouched.
func TestScenario_WithdrawInsufficient(t *testing.T) {
	f := newFixture(t)
	alice := f.host.AddPlayer("Alice", true)
	f.manager.HandleJoin(context.Background(), alice)
	f.run(t, "deposit", "Alice", "30")

	f.run(t, "withdraw", "Alice", "100")

	assert.Equal(t, "Alice only has 30", f.sender.Last())
	balance, _ := f.store.Balance(alice.ID)
	assert.Equal(t, 30.0, balance)
}

// Offline target: resolved through the store, never cached.
func TestScenario_ReportOffline(t *testing.T) {
	f := newFixture(t)
	bob := f.host.AddPlayer("Bob", false)
	f.store.Seed(bob.ID, 10)

	f.run(t, "report", "Bob")

	assert.Equal(t, "Bob has 10", f.sender.Last())
	_, cached := f.manager.Cached(bob.ID)
	assert.False(t, cached)
}

// Offline mutation: the transient account still persists via write-through.
func TestScenario_DepositOffline(t *testing.T) {
	f := newFixture(t)
	bob := f.host.AddPlayer("Bob", false)
	f.store.Seed(bob.ID, 10)

	f.run(t, "deposit", "Bob", "5")

	assert.Equal(t, "deposited 5 to Bob, balance 15", f.sender.Last())
	balance, _ := f.store.Balance(bob.ID)
	assert.Equal(t, 15.0, balance)
}

func TestScenario_SetIsIdempotent(t *testing.T) {
	f := newFixture(t)
	alice := f.host.AddPlayer("Alice", true)
	f.manager.HandleJoin(context.Background(), alice)

	f.run(t, "set", "Alice", "25")
	require.Equal(t, "set Alice to 25", f.sender.Last())
	updatesAfterFirst := f.store.Updates

	f.run(t, "set", "Alice", "25")

	assert.Equal(t, "set Alice to 25", f.sender.Last())
	assert.Equal(t, updatesAfterFirst, f.store.Updates, "second identical set must not write")
}

func TestExecute_DisabledManagerStaysSilent(t *testing.T) {
	f := newFixture(t)
	alice := f.host.AddPlayer("Alice", true)
	f.manager.HandleJoin(context.Background(), alice)

	// Force a store failure through the command path.
	f.store.FailNext = true
	f.run(t, "deposit", "Alice", "10")
	require.True(t, f.manager.Disabled())
	require.Equal(t, 1, f.host.UnloadCalls)

	before := len(f.sender.Messages)
	f.run(t, "report", "Alice")

	assert.Len(t, f.sender.Messages, before, "disabled subsystem accepts no commands")
}

func TestComplete(t *testing.T) {
	f := newFixture(t)
	f.host.AddPlayer("Zoe", true)
	f.host.AddPlayer("Adam", true)
	f.host.AddPlayer("Mia", false)

	t.Run("subcommands filtered by containment", func(t *testing.T) {
		assert.Equal(t, []string{"deposit", "report", "set", "withdraw"}, f.cmd.Complete([]string{""}))
		assert.Equal(t, []string{"set"}, f.cmd.Complete([]string{"se"}))
		assert.Equal(t, []string{"deposit", "report", "set"}, f.cmd.Complete([]string{"e"}))
		assert.Empty(t, f.cmd.Complete([]string{"zz"}))
	})

	t.Run("player position lists online names sorted", func(t *testing.T) {
		assert.Equal(t, []string{"<player>", "Adam", "Zoe"}, f.cmd.Complete([]string{"deposit", ""}))
	})

	t.Run("amount position", func(t *testing.T) {
		assert.Equal(t, []string{"<amount>"}, f.cmd.Complete([]string{"deposit", "Adam", ""}))
		assert.Empty(t, f.cmd.Complete([]string{"report", "Adam", ""}))
	})
}
