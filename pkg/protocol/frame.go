// Package protocol defines the wire format exchanged between chat client and
// server: JSON text frames discriminated by a "type" field.
package protocol

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrProtocol reports a frame that could not be parsed. Callers drop the
// frame and keep the connection open.
var ErrProtocol = errors.New("malformed frame")

// Frame discriminants.
const (
	frameHello    = "hello"
	frameMessages = "messages"
)

// User identifies a chat participant.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Message is one chat message. Immutable once received. Timestamp is a
// server-assigned ordering key, totally ordered within a room.
type Message struct {
	ID        string `json:"id"`
	User      User   `json:"user"`
	Content   string `json:"content"`
	Timestamp int64  `json:"timestamp"`
}

// Room is a chat room with its message history. Messages are newest-first:
// index 0 is the most recently admitted message.
type Room struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Messages []Message `json:"messages"`
}

type frame struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type helloPayload struct {
	Rooms []Room `json:"rooms"`
}

type messagesPayload struct {
	RoomID   string    `json:"roomId"`
	Messages []Message `json:"messages"`
}

// draftMessage is the outbound message shape: the server assigns id and
// timestamp, so the client sends only author and content.
type draftMessage struct {
	User    User   `json:"user"`
	Content string `json:"content"`
}

type sendPayload struct {
	RoomID   string         `json:"roomId"`
	Messages []draftMessage `json:"messages"`
}

// Event is one decoded inbound frame.
type Event interface{ isEvent() }

// Hello is the server's initial snapshot establishing the room set for a new
// session. Each room's messages arrive newest-first.
type Hello struct {
	Rooms []Room
}

// MessagesDelivered carries new messages for one room, ordered oldest-first
// as delivered.
type MessagesDelivered struct {
	RoomID   string
	Messages []Message
}

// Unknown is a well-formed frame with an unrecognized discriminant. Callers
// treat it as a no-op so the protocol can grow without breaking old clients.
type Unknown struct {
	Type string
}

func (Hello) isEvent()             {}
func (MessagesDelivered) isEvent() {}
func (Unknown) isEvent()           {}

// Decode parses a raw inbound frame into a typed event.
func Decode(raw []byte) (Event, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProtocol, err)
	}

	switch f.Type {
	case frameHello:
		var p helloPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: hello payload: %v", ErrProtocol, err)
		}
		return Hello{Rooms: p.Rooms}, nil

	case frameMessages:
		var p messagesPayload
		if err := json.Unmarshal(f.Payload, &p); err != nil {
			return nil, fmt.Errorf("%w: messages payload: %v", ErrProtocol, err)
		}
		return MessagesDelivered{RoomID: p.RoomID, Messages: p.Messages}, nil

	case "":
		return nil, fmt.Errorf("%w: missing type", ErrProtocol)

	default:
		return Unknown{Type: f.Type}, nil
	}
}

// EncodeSend builds an outbound frame carrying a single message for roomID.
// Content is passed through untouched; policy enforcement is a server
// concern.
func EncodeSend(roomID string, author User, content string) ([]byte, error) {
	payload, err := json.Marshal(sendPayload{
		RoomID:   roomID,
		Messages: []draftMessage{{User: author, Content: content}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode send frame: %w", err)
	}
	return json.Marshal(frame{Type: frameMessages, Payload: payload})
}

// EncodeHello builds the bootstrap frame the server sends on connect.
func EncodeHello(rooms []Room) ([]byte, error) {
	payload, err := json.Marshal(helloPayload{Rooms: rooms})
	if err != nil {
		return nil, fmt.Errorf("failed to encode hello frame: %w", err)
	}
	return json.Marshal(frame{Type: frameHello, Payload: payload})
}

// EncodeDelivery builds the frame the server broadcasts for newly admitted
// messages. The batch must be ordered oldest-first.
func EncodeDelivery(roomID string, messages []Message) ([]byte, error) {
	payload, err := json.Marshal(messagesPayload{RoomID: roomID, Messages: messages})
	if err != nil {
		return nil, fmt.Errorf("failed to encode delivery frame: %w", err)
	}
	return json.Marshal(frame{Type: frameMessages, Payload: payload})
}
