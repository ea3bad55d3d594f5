// Package client owns the transport session: it feeds decoded server events
// into the session reducer, hands snapshots to the rendering layer, and
// dispatches outbound sends.
package client

import "context"

// Conn abstracts the duplex frame-oriented transport session. The websocket
// implementation lives in internal/transport/ws.
type Conn interface {
	// Read reads a single frame. Returns an error once the connection is
	// closed.
	Read(ctx context.Context) ([]byte, error)

	// Write sends a single frame.
	Write(ctx context.Context, data []byte) error

	// Close closes the connection.
	Close() error
}
