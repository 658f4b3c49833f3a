// Package command implements the operator-facing balance command: argument
// parsing, target resolution and the translation of entity errors into
// dialog messages. Store failures never surface here; the session manager
// disables the subsystem before a command can observe them.
package command

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strconv"
	"strings"

	"github.com/playerledger/playerledger/internal/account"
	"github.com/playerledger/playerledger/internal/dialog"
	"github.com/playerledger/playerledger/internal/host"
	"github.com/playerledger/playerledger/internal/session"
)

const (
	subDeposit  = "deposit"
	subWithdraw = "withdraw"
	subSet      = "set"
	subReport   = "report"
)

// Balance handles the balance command and its tab completion. All entry
// points run on the host's dispatch thread.
type Balance struct {
	manager *session.Manager
	host    host.Host
}

// New wires the command over a session manager.
func New(manager *session.Manager, h host.Host) *Balance {
	return &Balance{manager: manager, host: h}
}

// Execute dispatches one balance invocation. The returned bool tells the
// host the handler produced its own usage output.
func (b *Balance) Execute(ctx context.Context, sender host.Sender, args []string) bool {
	if b.manager.Disabled() {
		slog.Warn("balance command ignored, subsystem is disabled")
		return true
	}

	if len(args) == 0 {
		b.send(sender, "command_help")
		return true
	}

	switch strings.ToLower(args[0]) {
	case subDeposit:
		b.deposit(ctx, sender, args)
	case subWithdraw:
		b.withdraw(ctx, sender, args)
	case subSet:
		b.set(ctx, sender, args)
	case subReport:
		b.report(ctx, sender, args)
	default:
		b.send(sender, "command_help")
	}

	return true
}

// Complete returns tab-completion candidates for the partial args.
func (b *Balance) Complete(args []string) []string {
	tabs := []string{}

	switch len(args) {
	case 1:
		for _, sub := range []string{subDeposit, subReport, subSet, subWithdraw} {
			if strings.Contains(sub, strings.ToLower(args[0])) {
				tabs = append(tabs, sub)
			}
		}
	case 2:
		tabs = append(tabs, "<player>")

		players := b.host.OnlinePlayers()
		sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })
		for _, p := range players {
			tabs = append(tabs, p.Name)
		}
	case 3:
		if strings.EqualFold(args[0], subReport) {
			return tabs
		}

		tabs = append(tabs, "<amount>")
	}

	return tabs
}

func (b *Balance) deposit(ctx context.Context, sender host.Sender, args []string) {
	if len(args) != 3 {
		b.send(sender, "command_deposit_help")
		return
	}

	playerArg := dialog.Arg{Name: "player", Value: args[1]}
	amountArg := dialog.Arg{Name: "amount", Value: args[2]}

	p, ok := b.resolvePlayer(sender, args[1], playerArg)
	if !ok {
		return
	}

	amount, ok := b.parseAmount(sender, args[2])
	if !ok {
		return
	}

	if amount < 0 {
		b.send(sender, "negative_amount_given", amountArg)
		return
	}

	acct, ok := b.resolveAccount(ctx, sender, p, playerArg)
	if !ok {
		return
	}

	err := acct.Deposit(amount)
	if err != nil {
		b.send(sender, "negative_amount_given", amountArg)
		return
	}

	err = b.manager.Save(ctx, acct)
	if err != nil {
		return
	}

	b.send(sender, "command_deposit_success",
		playerArg, amountArg, dialog.Arg{Name: "balance", Value: acct.Balance()})
}

func (b *Balance) withdraw(ctx context.Context, sender host.Sender, args []string) {
	if len(args) != 3 {
		b.send(sender, "command_withdraw_help")
		return
	}

	playerArg := dialog.Arg{Name: "player", Value: args[1]}
	amountArg := dialog.Arg{Name: "amount", Value: args[2]}

	p, ok := b.resolvePlayer(sender, args[1], playerArg)
	if !ok {
		return
	}

	amount, ok := b.parseAmount(sender, args[2])
	if !ok {
		return
	}

	if amount < 0 {
		b.send(sender, "negative_amount_given", amountArg)
		return
	}

	acct, ok := b.resolveAccount(ctx, sender, p, playerArg)
	if !ok {
		return
	}

	if !acct.Has(amount) {
		b.send(sender, "insufficient_balance",
			playerArg, dialog.Arg{Name: "balance", Value: acct.Balance()})
		return
	}

	err := acct.Withdraw(amount)
	if err != nil {
		b.send(sender, "negative_amount_given", amountArg)
		return
	}

	err = b.manager.Save(ctx, acct)
	if err != nil {
		return
	}

	b.send(sender, "command_withdraw_success",
		playerArg, amountArg, dialog.Arg{Name: "balance", Value: acct.Balance()})
}

func (b *Balance) set(ctx context.Context, sender host.Sender, args []string) {
	if len(args) != 3 {
		b.send(sender, "command_set_help")
		return
	}

	playerArg := dialog.Arg{Name: "player", Value: args[1]}
	amountArg := dialog.Arg{Name: "amount", Value: args[2]}

	p, ok := b.resolvePlayer(sender, args[1], playerArg)
	if !ok {
		return
	}

	amount, ok := b.parseAmount(sender, args[2])
	if !ok {
		return
	}

	if amount < 0 {
		b.send(sender, "negative_amount_given", amountArg)
		return
	}

	acct, ok := b.resolveAccount(ctx, sender, p, playerArg)
	if !ok {
		return
	}

	err := acct.Set(amount)
	if err != nil {
		b.send(sender, "negative_amount_given", amountArg)
		return
	}

	err = b.manager.Save(ctx, acct)
	if err != nil {
		return
	}

	b.send(sender, "command_set_success",
		playerArg, dialog.Arg{Name: "balance", Value: acct.Balance()})
}

func (b *Balance) report(ctx context.Context, sender host.Sender, args []string) {
	if len(args) != 2 {
		b.send(sender, "command_report_help")
		return
	}

	playerArg := dialog.Arg{Name: "player", Value: args[1]}

	p, ok := b.resolvePlayer(sender, args[1], playerArg)
	if !ok {
		return
	}

	acct, ok := b.resolveAccount(ctx, sender, p, playerArg)
	if !ok {
		return
	}

	b.send(sender, "command_report_success",
		playerArg, dialog.Arg{Name: "balance", Value: acct.Balance()})
}

// resolvePlayer asks the host for the named player; players the host has
// never seen get player_not_found without touching the store.
func (b *Balance) resolvePlayer(sender host.Sender, name string, playerArg dialog.Arg) (host.Player, bool) {
	p := b.host.OfflinePlayer(name)
	if !p.HasPlayedBefore {
		b.send(sender, "player_not_found", playerArg)
		return host.Player{}, false
	}

	return p, true
}

func (b *Balance) parseAmount(sender host.Sender, raw string) (float64, bool) {
	amount, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		b.send(sender, "invalid_amount_given", dialog.Arg{Name: "amount", Value: raw})
		return 0, false
	}

	return amount, true
}

// resolveAccount runs the existence check and the cache-then-store fetch.
func (b *Balance) resolveAccount(ctx context.Context, sender host.Sender, p host.Player, playerArg dialog.Arg) (*account.Account, bool) {
	exists, err := b.manager.HasAccount(ctx, p.ID)
	if err != nil {
		return nil, false
	}

	if !exists {
		b.send(sender, "no_account", playerArg)
		return nil, false
	}

	resolved, err := b.manager.Resolve(ctx, p)
	if errors.Is(err, session.ErrNoAccount) {
		b.send(sender, "no_account", playerArg)
		return nil, false
	}

	if err != nil {
		return nil, false
	}

	return resolved, true
}

func (b *Balance) send(sender host.Sender, id string, args ...dialog.Arg) {
	msg, err := b.manager.Dialog().Render(id, args...)
	if err != nil {
		// Unknown message ids are programmer errors, not operator input.
		panic(err)
	}

	sender.SendMessage(msg)
}
