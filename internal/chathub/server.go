package chathub

import (
	"context"
	"net"
	"net/http"
	"sync"

	"github.com/rs/zerolog"
	"nhooyr.io/websocket"

	"github.com/parlorchat/parlor/internal/transport/ws"
	"github.com/parlorchat/parlor/pkg/protocol"
)

// Server accepts websocket connections and bridges them to the Hub.
type Server struct {
	address  string
	hub      *Hub
	listener net.Listener
	server   *http.Server
	logger   zerolog.Logger
	wg       sync.WaitGroup
}

// NewServer creates a Server that serves hub on address.
func NewServer(address string, hub *Hub, logger zerolog.Logger) *Server {
	return &Server{
		address: address,
		hub:     hub,
		logger:  logger,
	}
}

// Start listens and serves until Stop is called. Blocking.
func (s *Server) Start() error {
	listener, err := net.Listen("tcp", s.address)
	if err != nil {
		return err
	}
	s.listener = listener

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleWebSocket)
	s.server = &http.Server{Handler: mux}

	s.logger.Info().Str("address", listener.Addr().String()).Msg("listening")

	if err := s.server.Serve(listener); err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop shuts the server down and waits for connection handlers to finish.
func (s *Server) Stop() {
	if s.server != nil {
		s.server.Shutdown(context.Background())
	}
	s.wg.Wait()
}

// Addr returns the listening address.
func (s *Server) Addr() string {
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return ""
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	wsConn, err := websocket.Accept(w, r, nil)
	if err != nil {
		s.logger.Debug().Err(err).Msg("websocket accept failed")
		return
	}

	conn := ws.NewConn(wsConn)
	client := s.hub.Register()
	s.logger.Debug().Str("remote", r.RemoteAddr).Msg("client connected")

	s.wg.Add(2)
	go s.readLoop(conn, client)
	go s.writeLoop(conn, client)
}

func (s *Server) readLoop(conn *ws.Conn, client *Client) {
	defer s.wg.Done()
	defer s.hub.Unregister(client)

	for {
		data, err := conn.Read(context.Background())
		if err != nil {
			return
		}

		ev, err := protocol.Decode(data)
		if err != nil {
			s.logger.Debug().Err(err).Msg("dropping malformed frame")
			continue
		}

		if delivery, ok := ev.(protocol.MessagesDelivered); ok {
			s.hub.Publish(delivery.RoomID, delivery.Messages)
		}
	}
}

func (s *Server) writeLoop(conn *ws.Conn, client *Client) {
	defer s.wg.Done()
	defer conn.Close()

	for data := range client.Outgoing() {
		if err := conn.Write(context.Background(), data); err != nil {
			return
		}
	}
}
