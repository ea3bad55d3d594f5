// Package chathub implements the development chat server: a room registry
// that stamps inbound messages and broadcasts deliveries to every connected
// client.
package chathub

import (
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/parlorchat/parlor/pkg/protocol"
)

// Client is one connected subscriber.
type Client struct {
	outgoing chan []byte
}

// Outgoing returns the frames queued for this client. Closed when the client
// is unregistered or dropped.
func (c *Client) Outgoing() <-chan []byte {
	return c.outgoing
}

// Hub owns the room histories and the connected client set.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[string]protocol.Room
	order   []string
	clients map[*Client]bool
	lastTS  int64
	logger  zerolog.Logger
}

// NewHub creates a hub with one empty room per name.
func NewHub(roomNames []string, logger zerolog.Logger) *Hub {
	h := &Hub{
		rooms:   make(map[string]protocol.Room),
		clients: make(map[*Client]bool),
		logger:  logger,
	}
	for _, name := range roomNames {
		id := roomID(name)
		if _, exists := h.rooms[id]; exists {
			continue
		}
		h.rooms[id] = protocol.Room{ID: id, Name: name}
		h.order = append(h.order, id)
	}
	return h
}

func roomID(name string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(name), " ", "-"))
}

// Register adds a subscriber and queues the bootstrap snapshot as its first
// frame.
func (h *Hub) Register() *Client {
	h.mu.Lock()
	defer h.mu.Unlock()

	client := &Client{outgoing: make(chan []byte, 16)}
	frame, err := protocol.EncodeHello(h.snapshotLocked())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode hello frame")
	} else {
		client.outgoing <- frame
	}
	h.clients[client] = true
	return client
}

// Unregister removes a subscriber.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[client] {
		delete(h.clients, client)
		close(client.outgoing)
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Rooms returns the current room histories in bootstrap order, messages
// newest-first.
func (h *Hub) Rooms() []protocol.Room {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.snapshotLocked()
}

func (h *Hub) snapshotLocked() []protocol.Room {
	rooms := make([]protocol.Room, 0, len(h.order))
	for _, id := range h.order {
		rooms = append(rooms, h.rooms[id])
	}
	return rooms
}

// Publish stamps the draft messages for roomID, admits them to the room
// history, and broadcasts the delivery to every client. Unknown rooms are
// ignored.
func (h *Hub) Publish(roomID string, drafts []protocol.Message) {
	if len(drafts) == 0 {
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	room, ok := h.rooms[roomID]
	if !ok {
		h.logger.Debug().Str("room_id", roomID).Msg("ignoring publish for unknown room")
		return
	}

	stamped := make([]protocol.Message, len(drafts))
	for i, draft := range drafts {
		h.lastTS = nextTimestamp(h.lastTS)
		stamped[i] = protocol.Message{
			ID:        uuid.NewString(),
			User:      draft.User,
			Content:   draft.Content,
			Timestamp: h.lastTS,
		}
	}

	// History is stored newest-first, matching the order clients keep.
	merged := make([]protocol.Message, 0, len(stamped)+len(room.Messages))
	for i := len(stamped) - 1; i >= 0; i-- {
		merged = append(merged, stamped[i])
	}
	room.Messages = append(merged, room.Messages...)
	h.rooms[roomID] = room

	frame, err := protocol.EncodeDelivery(roomID, stamped)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to encode delivery frame")
		return
	}
	h.broadcastLocked(frame)
}

// nextTimestamp keeps stamps strictly increasing even when the clock does
// not move between messages.
func nextTimestamp(last int64) int64 {
	now := time.Now().UnixMilli()
	if now <= last {
		return last + 1
	}
	return now
}

func (h *Hub) broadcastLocked(frame []byte) {
	for client := range h.clients {
		select {
		case client.outgoing <- frame:
		default:
			// Slow consumer: drop it rather than block the hub.
			delete(h.clients, client)
			close(client.outgoing)
		}
	}
}
