package session_test

import (
	"reflect"
	"testing"

	"github.com/parlorchat/parlor/internal/session"
	"github.com/parlorchat/parlor/pkg/protocol"
)

var ada = protocol.User{ID: "u1", Username: "ada"}

func msg(id string, ts int64) protocol.Message {
	return protocol.Message{ID: id, User: ada, Content: "m-" + id, Timestamp: ts}
}

// room builds a room whose messages are given newest-first.
func room(id, name string, messages ...protocol.Message) protocol.Room {
	return protocol.Room{ID: id, Name: name, Messages: messages}
}

func TestApply_Initialize(t *testing.T) {
	tests := []struct {
		name       string
		rooms      []protocol.Room
		wantActive string
	}{
		{
			name: "room with freshest message becomes active",
			rooms: []protocol.Room{
				room("a", "alpha", msg("m1", 100)),
				room("b", "beta", msg("m2", 200)),
			},
			wantActive: "b",
		},
		{
			name: "ties break in input order",
			rooms: []protocol.Room{
				room("a", "alpha", msg("m1", 100)),
				room("b", "beta", msg("m2", 100)),
			},
			wantActive: "a",
		},
		{
			name: "empty rooms are skipped",
			rooms: []protocol.Room{
				room("a", "alpha"),
				room("b", "beta", msg("m1", 5)),
			},
			wantActive: "b",
		},
		{
			name: "all rooms empty leaves no active room",
			rooms: []protocol.Room{
				room("a", "alpha"),
				room("b", "beta"),
			},
			wantActive: "",
		},
		{
			name:       "no rooms at all",
			rooms:      nil,
			wantActive: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := session.Apply(session.NewState(), session.Initialize{User: ada, Rooms: tt.rooms})

			if !got.Ready {
				t.Error("Apply(Initialize) Ready = false, want true")
			}
			if got.CurrentUser == nil || *got.CurrentUser != ada {
				t.Errorf("Apply(Initialize) CurrentUser = %v, want %v", got.CurrentUser, ada)
			}
			if got.ActiveRoomID != tt.wantActive {
				t.Errorf("Apply(Initialize) ActiveRoomID = %q, want %q", got.ActiveRoomID, tt.wantActive)
			}
			if len(got.Rooms) != len(tt.rooms) {
				t.Errorf("Apply(Initialize) rooms = %d, want %d", len(got.Rooms), len(tt.rooms))
			}
		})
	}
}

func TestApply_InitializeDuplicateRoomIDs(t *testing.T) {
	got := session.Apply(session.NewState(), session.Initialize{
		User: ada,
		Rooms: []protocol.Room{
			room("a", "first"),
			room("a", "second"),
		},
	})

	if got.Rooms["a"].Name != "second" {
		t.Errorf("Apply(Initialize) room a = %q, want last write to win", got.Rooms["a"].Name)
	}
	if len(got.RoomOrder) != 1 {
		t.Errorf("Apply(Initialize) RoomOrder = %v, want single entry", got.RoomOrder)
	}
}

func TestApply_InitializeWhenReady(t *testing.T) {
	ready := session.Apply(session.NewState(), session.Initialize{
		User:  ada,
		Rooms: []protocol.Room{room("a", "alpha", msg("m1", 100))},
	})

	again := session.Apply(ready, session.Initialize{
		User:  protocol.User{ID: "u2", Username: "lin"},
		Rooms: []protocol.Room{room("z", "zeta")},
	})

	if !reflect.DeepEqual(again, ready) {
		t.Errorf("Apply(Initialize) on ready state = %+v, want unchanged %+v", again, ready)
	}
}

func TestApply_DeliverMessagesUnknownRoom(t *testing.T) {
	s := session.Apply(session.NewState(), session.Initialize{
		User:  ada,
		Rooms: []protocol.Room{room("a", "alpha", msg("m1", 100))},
	})

	got := session.Apply(s, session.DeliverMessages{
		RoomID:   "nonexistent",
		Messages: []protocol.Message{msg("m2", 200)},
	})

	if !reflect.DeepEqual(got, s) {
		t.Errorf("Apply(DeliverMessages) for unknown room = %+v, want state unchanged", got)
	}
}

func TestApply_DeliverMessagesPrependReversed(t *testing.T) {
	s := session.Apply(session.NewState(), session.Initialize{
		User:  ada,
		Rooms: []protocol.Room{room("a", "alpha", msg("m3", 300))},
	})

	// The batch arrives oldest-first; the room sequence stays newest-first.
	got := session.Apply(s, session.DeliverMessages{
		RoomID:   "a",
		Messages: []protocol.Message{msg("m4", 400), msg("m5", 500)},
	})

	wantIDs := []string{"m5", "m4", "m3"}
	messages := got.Rooms["a"].Messages
	if len(messages) != len(wantIDs) {
		t.Fatalf("Apply(DeliverMessages) messages = %d, want %d", len(messages), len(wantIDs))
	}
	for i, want := range wantIDs {
		if messages[i].ID != want {
			t.Errorf("Apply(DeliverMessages) messages[%d] = %q, want %q", i, messages[i].ID, want)
		}
	}
}

func TestApply_DeliverMessagesDoesNotMutateInput(t *testing.T) {
	s := session.Apply(session.NewState(), session.Initialize{
		User:  ada,
		Rooms: []protocol.Room{room("a", "alpha", msg("m1", 100))},
	})

	_ = session.Apply(s, session.DeliverMessages{
		RoomID:   "a",
		Messages: []protocol.Message{msg("m2", 200)},
	})

	if len(s.Rooms["a"].Messages) != 1 || s.Rooms["a"].Messages[0].ID != "m1" {
		t.Errorf("input state mutated: messages = %+v", s.Rooms["a"].Messages)
	}
}

func TestApply_SelectRoom(t *testing.T) {
	s := session.Apply(session.NewState(), session.Initialize{
		User:  ada,
		Rooms: []protocol.Room{room("a", "alpha")},
	})

	// Selection may reference a room whose data has not arrived yet.
	got := session.Apply(s, session.SelectRoom{RoomID: "not-yet-known"})
	if got.ActiveRoomID != "not-yet-known" {
		t.Errorf("Apply(SelectRoom) ActiveRoomID = %q, want not-yet-known", got.ActiveRoomID)
	}

	got = session.Apply(got, session.SelectRoom{RoomID: "a"})
	if got.ActiveRoomID != "a" {
		t.Errorf("Apply(SelectRoom) ActiveRoomID = %q, want a", got.ActiveRoomID)
	}

	if !reflect.DeepEqual(got.Rooms, s.Rooms) {
		t.Error("Apply(SelectRoom) changed room data")
	}
}
