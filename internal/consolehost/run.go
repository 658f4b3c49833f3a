package consolehost

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/playerledger/playerledger/internal/command"
	"github.com/playerledger/playerledger/internal/session"
)

// Run drives the dispatch loop: it reads lines from in and delivers the
// resulting callbacks to the manager and command handler serially, mirroring
// a game runtime's dispatch thread. It returns when in is exhausted, a
// "quit!" line arrives, or ctx is canceled.
//
// Protocol:
//
//	join <name>         player connects
//	quit <name>         player disconnects
//	balance [args...]   dispatch the balance command as console
//	tab balance [args]  print tab completions for the partial command
//	quit!               stop the daemon
func (c *Console) Run(ctx context.Context, in *bufio.Scanner, mgr *session.Manager, cmd *command.Balance) error {
	lines := make(chan string)

	go func() {
		defer close(lines)

		for in.Scan() {
			select {
			case lines <- in.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				return in.Err()
			}

			if !c.dispatch(ctx, line, mgr, cmd) {
				return nil
			}
		}
	}
}

// dispatch handles one input line; it returns false when the loop should
// stop.
func (c *Console) dispatch(ctx context.Context, line string, mgr *session.Manager, cmd *command.Balance) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return true
	}

	switch fields[0] {
	case "quit!":
		return false
	case "join":
		if len(fields) != 2 {
			fmt.Fprintln(c.out, "usage: join <name>")
			return true
		}

		mgr.HandleJoin(ctx, c.Join(fields[1]))
	case "quit":
		if len(fields) != 2 {
			fmt.Fprintln(c.out, "usage: quit <name>")
			return true
		}

		p, ok := c.Quit(fields[1])
		if !ok {
			fmt.Fprintf(c.out, "%s is not online\n", fields[1])
			return true
		}

		mgr.HandleQuit(ctx, p.ID)
	case "balance":
		cmd.Execute(ctx, c, fields[1:])
	case "tab":
		if len(fields) < 2 || fields[1] != "balance" {
			fmt.Fprintln(c.out, "usage: tab balance [args...]")
			return true
		}

		// Trailing space means the player is completing the next word.
		args := fields[2:]
		if strings.HasSuffix(line, " ") {
			args = append(args, "")
		}

		fmt.Fprintln(c.out, strings.Join(cmd.Complete(args), " "))
	default:
		slog.Warn("unknown console input", "line", line)
	}

	return true
}
