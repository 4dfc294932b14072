package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/matsen/citegraph/internal/session"
)

const (
	writeWait      = 10 * time.Second
	clientSendSize = 16
)

// Message types pushed to websocket clients.
const (
	MessageSystem = "system"
	MessageView   = "view"
)

// Message is the envelope of every websocket frame.
type Message struct {
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub fans session views out to connected websocket clients. A client that
// cannot keep up is disconnected rather than allowed to stall the others.
type Hub struct {
	mu       sync.Mutex
	clients  map[string]*client
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*client),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// Run broadcasts every view received on views until ctx is done or views
// is closed.
func (h *Hub) Run(ctx context.Context, views <-chan session.View) {
	for {
		select {
		case <-ctx.Done():
			h.closeAll()
			return
		case v, ok := <-views:
			if !ok {
				h.closeAll()
				return
			}
			h.Broadcast(Message{Type: MessageView, Payload: v})
		}
	}
}

// Broadcast sends msg to every client.
func (h *Hub) Broadcast(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("encoding websocket message", "type", msg.Type, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for id, c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("disconnecting slow websocket client", "client", id)
			h.removeLocked(id)
		}
	}
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// HandleWebSocket upgrades the request, greets the client with the current
// view and keeps it registered until the connection closes.
func (h *Hub) HandleWebSocket(current func() session.View) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("websocket upgrade failed", "error", err)
			return
		}

		c := &client{
			id:   uuid.New().String(),
			conn: conn,
			send: make(chan []byte, clientSendSize),
		}

		// Snapshot and register under one lock so no broadcast slips
		// between the greeting and the registration.
		h.mu.Lock()
		greeting, err := json.Marshal(Message{Type: MessageView, Payload: current()})
		if err != nil {
			h.mu.Unlock()
			h.logger.Error("encoding initial view", "error", err)
			conn.Close()
			return
		}
		c.send <- greeting
		h.clients[c.id] = c
		h.mu.Unlock()
		h.logger.Info("websocket client connected", "client", c.id, "remote", r.RemoteAddr)

		go h.writePump(c)
		h.readPump(c)
	}
}

// readPump discards client frames and unregisters the client when the
// connection ends.
func (h *Hub) readPump(c *client) {
	defer func() {
		h.mu.Lock()
		h.removeLocked(c.id)
		h.mu.Unlock()
		h.logger.Info("websocket client disconnected", "client", c.id)
	}()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	defer c.conn.Close()

	for data := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.logger.Debug("websocket write failed", "client", c.id, "error", err)
			return
		}
	}
	c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(writeWait))
}

// removeLocked unregisters a client and ends its write pump. Callers hold mu.
func (h *Hub) removeLocked(id string) {
	c, ok := h.clients[id]
	if !ok {
		return
	}
	delete(h.clients, id)
	close(c.send)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id := range h.clients {
		h.removeLocked(id)
	}
}
