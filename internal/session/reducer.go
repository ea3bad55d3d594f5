package session

import (
	"maps"

	"github.com/parlorchat/parlor/pkg/protocol"
)

// Event is one input to the reducer.
type Event interface{ isSessionEvent() }

// Initialize carries the server's bootstrap snapshot plus the resolved local
// identity. Meaningful only before the session is ready.
type Initialize struct {
	User  protocol.User
	Rooms []protocol.Room
}

// DeliverMessages carries new messages for one room, ordered oldest-first as
// delivered.
type DeliverMessages struct {
	RoomID   string
	Messages []protocol.Message
}

// SelectRoom records the user's room choice. The id is not required to be
// known yet.
type SelectRoom struct {
	RoomID string
}

func (Initialize) isSessionEvent()      {}
func (DeliverMessages) isSessionEvent() {}
func (SelectRoom) isSessionEvent()      {}

// Apply maps (state, event) to the next state. Events it does not recognize
// return the state unchanged, never an error.
func Apply(s State, ev Event) State {
	switch ev := ev.(type) {
	case Initialize:
		if s.Ready {
			return s
		}
		return initialize(ev)

	case DeliverMessages:
		return deliver(s, ev)

	case SelectRoom:
		next := s
		next.ActiveRoomID = ev.RoomID
		return next

	default:
		return s
	}
}

func initialize(ev Initialize) State {
	user := ev.User
	next := State{
		CurrentUser: &user,
		Ready:       true,
		Rooms:       make(map[string]protocol.Room, len(ev.Rooms)),
	}

	for _, room := range ev.Rooms {
		if _, seen := next.Rooms[room.ID]; !seen {
			next.RoomOrder = append(next.RoomOrder, room.ID)
		}
		// Last write wins on duplicate ids.
		next.Rooms[room.ID] = room
	}

	// The room whose newest message has the greatest timestamp becomes
	// active; the first such room in input order wins ties. When every room
	// is empty there is no active room.
	best := int64(-1)
	for _, id := range next.RoomOrder {
		room := next.Rooms[id]
		if len(room.Messages) == 0 {
			continue
		}
		if ts := room.Messages[0].Timestamp; ts > best {
			best = ts
			next.ActiveRoomID = id
		}
	}
	return next
}

// deliver merges an oldest-first batch by reversing it onto the front of the
// room's newest-first sequence. Assumes each batch arrives oldest-first and
// carries nothing older than the room's current newest message; batches for
// unknown rooms are tolerated and ignored.
func deliver(s State, ev DeliverMessages) State {
	room, ok := s.Rooms[ev.RoomID]
	if !ok {
		return s
	}

	merged := make([]protocol.Message, 0, len(ev.Messages)+len(room.Messages))
	for i := len(ev.Messages) - 1; i >= 0; i-- {
		merged = append(merged, ev.Messages[i])
	}
	merged = append(merged, room.Messages...)
	room.Messages = merged

	next := s
	next.Rooms = maps.Clone(s.Rooms)
	next.Rooms[ev.RoomID] = room
	return next
}
