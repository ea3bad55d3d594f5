package session

import (
	"cmp"
	"slices"

	"github.com/parlorchat/parlor/pkg/protocol"
)

// Rank returns the rooms ordered most-recently-active first: descending by
// newest-message timestamp, rooms with no messages last. The sort is stable,
// so ties keep bootstrap order. Purely derived; calling it never mutates the
// state.
func Rank(s State) []protocol.Room {
	rooms := make([]protocol.Room, 0, len(s.RoomOrder))
	for _, id := range s.RoomOrder {
		rooms = append(rooms, s.Rooms[id])
	}
	slices.SortStableFunc(rooms, func(a, b protocol.Room) int {
		return cmp.Compare(lastTimestamp(b), lastTimestamp(a))
	})
	return rooms
}

func lastTimestamp(r protocol.Room) int64 {
	if len(r.Messages) == 0 {
		return 0
	}
	return r.Messages[0].Timestamp
}
