// Package hosttest provides fake host-runtime pieces for tests.
package hosttest

import (
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/playerledger/playerledger/internal/host"
)

// Fake is a scripted host runtime.
type Fake struct {
	players map[string]host.Player

	// UnloadReason records the first Unload call; empty means none.
	UnloadReason string

	// UnloadCalls counts Unload invocations.
	UnloadCalls int
}

var _ host.Host = (*Fake)(nil)

// New returns a host with no known players.
func New() *Fake {
	return &Fake{players: make(map[string]host.Player)}
}

// AddPlayer registers a player the host has seen before. Returns the
// generated player for convenience.
func (f *Fake) AddPlayer(name string, online bool) host.Player {
	p := host.Player{
		ID:              uuid.NewSHA1(uuid.NameSpaceOID, []byte("hosttest:"+strings.ToLower(name))),
		Name:            name,
		Online:          online,
		HasPlayedBefore: true,
	}
	f.players[strings.ToLower(name)] = p

	return p
}

// SetOnline flips a known player's connection state.
func (f *Fake) SetOnline(name string, online bool) {
	p := f.players[strings.ToLower(name)]
	p.Online = online
	f.players[strings.ToLower(name)] = p
}

func (f *Fake) OfflinePlayer(name string) host.Player {
	if p, ok := f.players[strings.ToLower(name)]; ok {
		return p
	}

	return host.Player{Name: name}
}

func (f *Fake) OnlinePlayers() []host.Player {
	var online []host.Player
	for _, p := range f.players {
		if p.Online {
			online = append(online, p)
		}
	}
	sort.Slice(online, func(i, j int) bool { return online[i].Name < online[j].Name })

	return online
}

func (f *Fake) Unload(reason string) {
	f.UnloadCalls++
	if f.UnloadReason == "" {
		f.UnloadReason = reason
	}
}

// Recorder is a Sender that captures every message.
type Recorder struct {
	Messages []string
}

func (r *Recorder) SendMessage(msg string) {
	r.Messages = append(r.Messages, msg)
}

// Last returns the most recent message, or "".
func (r *Recorder) Last() string {
	if len(r.Messages) == 0 {
		return ""
	}

	return r.Messages[len(r.Messages)-1]
}
