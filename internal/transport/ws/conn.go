// Package ws provides the WebSocket transport shared by the chat client and
// the development server.
package ws

import (
	"context"

	"nhooyr.io/websocket"
)

// Conn adapts nhooyr.io/websocket to the frame-oriented connection interface
// the client and server speak.
type Conn struct {
	conn *websocket.Conn
}

// Dial opens a websocket connection to endpoint.
func Dial(ctx context.Context, endpoint string) (*Conn, error) {
	conn, _, err := websocket.Dial(ctx, endpoint, nil)
	if err != nil {
		return nil, err
	}
	return &Conn{conn: conn}, nil
}

// NewConn wraps an accepted websocket connection.
func NewConn(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

// Read reads a single text frame.
func (c *Conn) Read(ctx context.Context) ([]byte, error) {
	_, data, err := c.conn.Read(ctx)
	return data, err
}

// Write sends a single text frame.
func (c *Conn) Write(ctx context.Context, data []byte) error {
	return c.conn.Write(ctx, websocket.MessageText, data)
}

// Close closes the connection.
func (c *Conn) Close() error {
	return c.conn.Close(websocket.StatusNormalClosure, "")
}
