package session

import (
	"reflect"
	"testing"

	"github.com/parlorchat/parlor/pkg/protocol"
)

type futureEvent struct{}

func (futureEvent) isSessionEvent() {}

// Unrecognized event variants are forward-compatible no-ops.
func TestApply_UnrecognizedEvent(t *testing.T) {
	user := protocol.User{ID: "u1", Username: "ada"}
	s := Apply(NewState(), Initialize{
		User:  user,
		Rooms: []protocol.Room{{ID: "a", Name: "alpha"}},
	})

	got := Apply(s, futureEvent{})
	if !reflect.DeepEqual(got, s) {
		t.Errorf("Apply(futureEvent) = %+v, want state unchanged", got)
	}
}
