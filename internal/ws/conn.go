package ws

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"launder-manager-backend/internal/service"
)

// Server accepts WebSocket connections, registers them, and runs one
// receive loop per connection. Frames from one connection are handled
// strictly in order; different connections proceed independently.
type Server struct {
	registry   *Registry
	dispatcher *Dispatcher
	upgrader   websocket.Upgrader
	maxMessage int64
}

// NewServer creates a WebSocket server over the registry and dispatcher.
func NewServer(registry *Registry, dispatcher *Dispatcher, maxMessageBytes int64) *Server {
	return &Server{
		registry:   registry,
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		maxMessage: maxMessageBytes,
	}
}

// ServeHTTP upgrades the request and blocks in the connection's receive
// loop until the channel closes. The serving goroutine is the connection's
// task.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade failed: %v", err)
		return
	}

	connectionID := s.registry.Add(conn)
	s.readLoop(context.Background(), connectionID, conn)
}

// readLoop receives frames until the connection closes. Closing the channel
// (locally or remotely) unblocks ReadMessage and ends the loop; work already
// dispatched for the last frame runs to completion first.
func (s *Server) readLoop(ctx context.Context, connectionID string, conn *websocket.Conn) {
	defer s.registry.Remove(connectionID)

	conn.SetReadLimit(s.maxMessage)
	for {
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) {
				log.Printf("Read error on connection %s: %v", connectionID, err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}
		if !s.handleFrame(ctx, connectionID, data) {
			return
		}
	}
}

// handleFrame processes a single frame. It reports false when the
// connection was closed and the loop must stop.
func (s *Server) handleFrame(ctx context.Context, connectionID string, data []byte) bool {
	env, err := ParseEnvelope(data)
	if err != nil {
		var perr *ProtocolError
		reason := "invalid message format"
		if errors.As(err, &perr) {
			reason = perr.Reason
		}
		s.registry.CloseWith(connectionID, websocket.CloseInvalidFramePayloadData, reason)
		return false
	}

	if err := s.dispatcher.Dispatch(ctx, env); err != nil {
		var perr *ProtocolError
		var verr *service.ValidationError
		switch {
		case errors.As(err, &perr):
			s.registry.CloseWith(connectionID, websocket.CloseInvalidFramePayloadData, perr.Reason)
			return false
		case errors.As(err, &verr):
			// A business-rule rejection is recoverable: tell the submitter,
			// keep the channel open.
			s.registry.SendTo(connectionID, "configuration rejected: "+verr.Rule)
			return true
		default:
			log.Printf("Error processing message on connection %s: %v", connectionID, err)
			s.registry.CloseWith(connectionID, websocket.CloseInternalServerErr, "error processing message")
			return false
		}
	}
	return true
}
