// Package consolehost is a stand-in host runtime for running the economy
// subsystem as a standalone daemon. Players join and quit over a stdin
// line protocol, command feedback prints to stdout, and every callback is
// delivered from the single dispatch goroutine running the read loop.
package consolehost

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/playerledger/playerledger/internal/host"
)

// Console implements host.Host and host.Sender over an output stream.
type Console struct {
	out      io.Writer
	online   map[string]host.Player
	seen     map[string]struct{}
	unloaded atomic.Bool

	// hasRecord answers whether a player id is known to the store, for
	// names that never joined this process. Optional.
	hasRecord func(playerID uuid.UUID) bool
}

func New(out io.Writer) *Console {
	return &Console{
		out:    out,
		online: make(map[string]host.Player),
		seen:   make(map[string]struct{}),
	}
}

// SetRecordLookup wires the store-backed existence check used to answer
// HasPlayedBefore for players from earlier runs.
func (c *Console) SetRecordLookup(fn func(playerID uuid.UUID) bool) {
	c.hasRecord = fn
}

// PlayerID derives a stable id from a name, so the same player maps to
// the same account across restarts. Names are case-insensitive.
func PlayerID(name string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("player:"+strings.ToLower(name)))
}

// Join marks a player online and returns its player record.
func (c *Console) Join(name string) host.Player {
	key := strings.ToLower(name)

	p := host.Player{
		ID:              PlayerID(name),
		Name:            name,
		Online:          true,
		HasPlayedBefore: true,
	}

	c.online[key] = p
	c.seen[key] = struct{}{}

	return p
}

// Quit marks a player offline. The second return is false when the name
// was not online.
func (c *Console) Quit(name string) (host.Player, bool) {
	key := strings.ToLower(name)

	p, ok := c.online[key]
	if !ok {
		return host.Player{}, false
	}

	delete(c.online, key)
	p.Online = false

	return p, true
}

func (c *Console) OfflinePlayer(name string) host.Player {
	key := strings.ToLower(name)

	p, ok := c.online[key]
	if ok {
		return p
	}

	id := PlayerID(name)

	_, seen := c.seen[key]
	if !seen && c.hasRecord != nil {
		seen = c.hasRecord(id)
	}

	return host.Player{ID: id, Name: name, HasPlayedBefore: seen}
}

func (c *Console) OnlinePlayers() []host.Player {
	players := make([]host.Player, 0, len(c.online))
	for _, p := range c.online {
		players = append(players, p)
	}

	sort.Slice(players, func(i, j int) bool { return players[i].Name < players[j].Name })

	return players
}

func (c *Console) Unload(reason string) {
	c.unloaded.Store(true)
	fmt.Fprintf(c.out, "subsystem unloaded: %s\n", reason)
}

// Unloaded reports whether the subsystem detached itself. Safe to call
// from other goroutines.
func (c *Console) Unloaded() bool {
	return c.unloaded.Load()
}

func (c *Console) SendMessage(msg string) {
	fmt.Fprintln(c.out, msg)
}
