// Package session holds the client's synchronized view of rooms and their
// messages, and the pure state machine that reconciles it against
// server-pushed events.
package session

import "github.com/parlorchat/parlor/pkg/protocol"

// State is the entire session state. It is treated as an immutable value:
// Apply returns a new State and never mutates containers shared with its
// input.
//
// Before the bootstrap event Ready is false, and CurrentUser, Rooms and
// ActiveRoomID are all unset. Ready flips to true exactly once per session.
type State struct {
	// CurrentUser is the resolved local identity, nil until bootstrap.
	CurrentUser *protocol.User

	// Ready is false until the bootstrap event has been processed.
	Ready bool

	// Rooms holds every known room, keyed by id.
	Rooms map[string]protocol.Room

	// RoomOrder lists room ids in bootstrap input order. It makes ranking
	// ties and active-room selection deterministic.
	RoomOrder []string

	// ActiveRoomID is the selected room, "" when none. It may reference a
	// room not yet present in Rooms: selection is allowed to precede data
	// arrival.
	ActiveRoomID string
}

// NewState returns the pre-bootstrap state.
func NewState() State {
	return State{}
}
