// Package host declares the boundary to the game runtime that embeds the
// economy subsystem. The runtime owns player identity, event delivery and
// command dispatch; this package only declares the contract.
package host

import "github.com/google/uuid"

// Player describes a player as the host runtime knows it. The ID is the
// 128-bit identifier the runtime assigns; it never changes for a name.
type Player struct {
	ID              uuid.UUID
	Name            string
	Online          bool
	HasPlayedBefore bool
}

// Sender receives command feedback: player chat, console, whatever the
// dispatching runtime routes it to.
type Sender interface {
	SendMessage(msg string)
}

// Host is the runtime the subsystem is loaded into. All callbacks into the
// subsystem are delivered serially on the host's dispatch thread, so
// implementations must not call back concurrently.
type Host interface {
	// OfflinePlayer resolves a player by name regardless of connection
	// state. HasPlayedBefore is false when the runtime has never seen
	// the name.
	OfflinePlayer(name string) Player

	// OnlinePlayers lists currently connected players.
	OnlinePlayers() []Player

	// Unload detaches the subsystem from the host. The session manager
	// calls it at most once, after an unrecoverable store failure.
	Unload(reason string)
}
