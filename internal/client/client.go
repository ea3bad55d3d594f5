package client

import (
	"context"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/parlorchat/parlor/internal/identity"
	"github.com/parlorchat/parlor/internal/session"
	"github.com/parlorchat/parlor/pkg/protocol"
)

// Snapshot is the presentation-ready view handed to the rendering layer
// after every state change.
type Snapshot struct {
	// Rooms is ranked most-recently-active first.
	Rooms        []protocol.Room
	ActiveRoomID string
	CurrentUser  *protocol.User
	Ready        bool
}

// Dialer opens the transport session.
type Dialer func(ctx context.Context) (Conn, error)

// Config wires the client's collaborators.
type Config struct {
	Dial     Dialer
	Identity *identity.Resolver

	// OnState receives a snapshot after every state change. Called from the
	// event loop goroutine; it must not block.
	OnState func(Snapshot)

	Logger zerolog.Logger
}

type clientMsg interface{ isClientMsg() }

type frameReceived struct{ data []byte }
type selectRoom struct{ roomID string }
type sendMessage struct{ content string }

func (frameReceived) isClientMsg() {}
func (selectRoom) isClientMsg()    {}
func (sendMessage) isClientMsg()   {}

// Client owns one transport session and the session state derived from it.
// Frames and user actions funnel through a single event loop, so the reducer
// is applied strictly in arrival order.
type Client struct {
	dial     Dialer
	identity *identity.Resolver
	onState  func(Snapshot)
	logger   zerolog.Logger

	inbox chan clientMsg
	done  chan struct{}
	wg    sync.WaitGroup

	mu   sync.RWMutex
	conn Conn

	closeOnce sync.Once
}

// New creates a Client. Connect starts the session.
func New(cfg Config) *Client {
	return &Client{
		dial:     cfg.Dial,
		identity: cfg.Identity,
		onState:  cfg.OnState,
		logger:   cfg.Logger,
		inbox:    make(chan clientMsg, 64),
		done:     make(chan struct{}),
	}
}

// Connect opens the transport session and starts the event loop.
func (c *Client) Connect(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return fmt.Errorf("failed to connect to server: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()

	c.wg.Add(2)
	go c.readLoop(conn)
	go c.loop()

	return nil
}

// IsConnected reports whether the transport session is open.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.conn != nil
}

// SelectRoom makes roomID the active room. The id may reference a room whose
// data has not arrived yet.
func (c *Client) SelectRoom(roomID string) {
	c.post(selectRoom{roomID: roomID})
}

// Send dispatches a message to the active room. Fire-and-forget: when the
// transport is closed or the session is not ready the message is silently
// dropped.
func (c *Client) Send(content string) {
	c.post(sendMessage{content: content})
}

// Close tears down the session. Idempotent; no snapshots are delivered
// afterward.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.mu.Lock()
		if c.conn != nil {
			c.conn.Close()
			c.conn = nil
		}
		c.mu.Unlock()
	})
	c.wg.Wait()
}

func (c *Client) post(m clientMsg) {
	select {
	case c.inbox <- m:
	case <-c.done:
	}
}

// readLoop blocks on the transport; Close unblocks it by closing the conn.
func (c *Client) readLoop(conn Conn) {
	defer c.wg.Done()

	for {
		data, err := conn.Read(context.Background())
		if err != nil {
			select {
			case <-c.done:
			default:
				c.logger.Debug().Err(err).Msg("transport closed")
			}
			return
		}

		select {
		case c.inbox <- frameReceived{data: data}:
		case <-c.done:
			return
		}
	}
}

func (c *Client) loop() {
	defer c.wg.Done()

	state := session.NewState()
	for {
		select {
		case <-c.done:
			return

		case m := <-c.inbox:
			var changed bool
			switch msg := m.(type) {
			case frameReceived:
				state, changed = c.applyFrame(state, msg.data)

			case selectRoom:
				state = session.Apply(state, session.SelectRoom{RoomID: msg.roomID})
				changed = true

			case sendMessage:
				c.write(state, msg.content)
			}

			if changed && c.onState != nil {
				c.onState(snapshot(state))
			}
		}
	}
}

func (c *Client) applyFrame(s session.State, data []byte) (session.State, bool) {
	ev, err := protocol.Decode(data)
	if err != nil {
		c.logger.Debug().Err(err).Msg("dropping malformed frame")
		return s, false
	}

	switch ev := ev.(type) {
	case protocol.Hello:
		// Identity resolution stays out of the pure reducer.
		user, err := c.identity.Resolve()
		if err != nil {
			c.logger.Error().Err(err).Msg("identity bootstrap failed")
			return s, false
		}
		return session.Apply(s, session.Initialize{User: user, Rooms: ev.Rooms}), true

	case protocol.MessagesDelivered:
		return session.Apply(s, session.DeliverMessages{RoomID: ev.RoomID, Messages: ev.Messages}), true

	case protocol.Unknown:
		c.logger.Debug().Str("type", ev.Type).Msg("ignoring unrecognized frame type")
		return s, false

	default:
		return s, false
	}
}

// write encodes and sends one message for the active room. With no open
// transport, no resolved identity, or no active room the message is dropped.
func (c *Client) write(s session.State, content string) {
	if !s.Ready || s.ActiveRoomID == "" || s.CurrentUser == nil {
		c.logger.Debug().Msg("dropping send: session not ready")
		return
	}

	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()
	if conn == nil {
		c.logger.Debug().Msg("dropping send: transport not open")
		return
	}

	data, err := protocol.EncodeSend(s.ActiveRoomID, *s.CurrentUser, content)
	if err != nil {
		c.logger.Debug().Err(err).Msg("dropping send: encode failed")
		return
	}
	if err := conn.Write(context.Background(), data); err != nil {
		c.logger.Debug().Err(err).Msg("dropping send: write failed")
	}
}

func snapshot(s session.State) Snapshot {
	return Snapshot{
		Rooms:        session.Rank(s),
		ActiveRoomID: s.ActiveRoomID,
		CurrentUser:  s.CurrentUser,
		Ready:        s.Ready,
	}
}
