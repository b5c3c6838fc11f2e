package ws

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// Time allowed to write a message to the peer.
const writeWait = 10 * time.Second

// connection pairs a websocket channel with a write lock; gorilla permits at
// most one concurrent writer per connection.
type connection struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *connection) writeText(message string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(websocket.TextMessage, []byte(message))
}

func (c *connection) writeClose(code int, reason string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	msg := websocket.FormatCloseMessage(code, reason)
	return c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
}

// Registry owns the set of live connections. It is the only component that
// holds channel references; everything else addresses a connection by its
// opaque id.
type Registry struct {
	conns sync.Map // connection id -> *connection
}

// NewRegistry creates an empty connection registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add stores the channel under a fresh opaque id and returns the id.
func (r *Registry) Add(conn *websocket.Conn) string {
	id := uuid.NewString()
	r.conns.Store(id, &connection{conn: conn})
	log.Printf("WebSocket connection added: %s", id)
	return id
}

// SendTo delivers a message to exactly one connection. A send failure is
// logged and evicts that connection; it is never raised to the caller.
func (r *Registry) SendTo(connectionID, message string) {
	v, ok := r.conns.Load(connectionID)
	if !ok {
		log.Printf("WebSocket connection %s not found", connectionID)
		return
	}
	if err := v.(*connection).writeText(message); err != nil {
		log.Printf("Error sending to connection %s: %v", connectionID, err)
		r.Remove(connectionID)
	}
}

// Broadcast delivers a message to every live connection. A failure on one
// recipient evicts that recipient and does not block delivery to the rest.
func (r *Registry) Broadcast(message string) {
	r.conns.Range(func(key, value any) bool {
		if err := value.(*connection).writeText(message); err != nil {
			log.Printf("Error broadcasting to connection %s: %v", key.(string), err)
			r.Remove(key.(string))
		}
		return true
	})
}

// Remove sends a normal-closure frame if the channel is still open, then
// evicts the connection.
func (r *Registry) Remove(connectionID string) {
	v, ok := r.conns.LoadAndDelete(connectionID)
	if !ok {
		return
	}
	c := v.(*connection)
	if err := c.writeClose(websocket.CloseNormalClosure, "connection closed"); err != nil {
		log.Printf("Error closing connection %s: %v", connectionID, err)
	}
	_ = c.conn.Close()
	log.Printf("WebSocket connection removed: %s", connectionID)
}

// CloseWith closes the connection with the given status code and reason,
// then evicts it. Used for protocol and internal errors.
func (r *Registry) CloseWith(connectionID string, code int, reason string) {
	v, ok := r.conns.LoadAndDelete(connectionID)
	if !ok {
		return
	}
	c := v.(*connection)
	_ = c.writeClose(code, reason)
	_ = c.conn.Close()
	log.Printf("WebSocket connection %s closed (%d): %s", connectionID, code, reason)
}

// CloseAll evicts every connection with a normal-closure frame. Used during
// shutdown; Shutdown on the HTTP server does not wait for hijacked
// connections.
func (r *Registry) CloseAll() {
	r.conns.Range(func(key, _ any) bool {
		r.Remove(key.(string))
		return true
	})
}

// Len reports the number of registered connections.
func (r *Registry) Len() int {
	n := 0
	r.conns.Range(func(any, any) bool {
		n++
		return true
	})
	return n
}
