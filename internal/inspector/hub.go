// Package inspector streams engine notifications and snapshots to websocket
// clients.
package inspector

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/arenapilot/arenapilot/internal/game"
	"github.com/arenapilot/arenapilot/internal/game/rules"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message types sent to clients.
const (
	TypeNotification = "notification"
	TypeSnapshot     = "snapshot"
	TypeSummary      = "summary"
	TypeError        = "error"
	TypePong         = "pong"
)

const (
	sendBuffer      = 256
	broadcastBuffer = 1024
	maxMessageSize  = 4096
)

// Message is the envelope of every frame.
type Message struct {
	Type   string `json:"type"`
	GameID string `json:"game_id,omitempty"`
	Data   any    `json:"data,omitempty"`
}

type request struct {
	Type string `json:"type"`
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type reply struct {
	to   *client
	data []byte
}

// Hub fans messages out to every connected client. The latest snapshot is
// kept and sent to clients as they connect.
type Hub struct {
	logger *zap.Logger

	clients    map[*client]bool
	broadcast  chan []byte
	register   chan *client
	unregister chan *client
	replies    chan reply
	done       chan struct{}

	mu     sync.RWMutex
	latest []byte

	count atomic.Int32
}

// NewHub creates a hub. Call Run to start it.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		logger:     logger,
		clients:    make(map[*client]bool),
		broadcast:  make(chan []byte, broadcastBuffer),
		register:   make(chan *client),
		unregister: make(chan *client),
		replies:    make(chan reply),
		done:       make(chan struct{}),
	}
}

// Run serves registrations and broadcasts until ctx is done, then closes
// every client.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			for c := range h.clients {
				h.drop(c)
			}
			h.logger.Info("inspector hub stopped")
			return

		case c := <-h.register:
			h.clients[c] = true
			h.count.Add(1)
			h.logger.Debug("client registered", zap.String("remote", c.conn.RemoteAddr().String()))
			if latest := h.Latest(); latest != nil {
				c.send <- latest
			}

		case c := <-h.unregister:
			if h.clients[c] {
				h.drop(c)
				h.logger.Debug("client unregistered", zap.String("remote", c.conn.RemoteAddr().String()))
			}

		case r := <-h.replies:
			if h.clients[r.to] {
				select {
				case r.to.send <- r.data:
				default:
				}
			}

		case message := <-h.broadcast:
			for c := range h.clients {
				select {
				case c.send <- message:
				default:
					h.logger.Warn("client too slow, dropping", zap.String("remote", c.conn.RemoteAddr().String()))
					h.drop(c)
				}
			}
		}
	}
}

func (h *Hub) drop(c *client) {
	delete(h.clients, c)
	close(c.send)
	h.count.Add(-1)
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	return int(h.count.Load())
}

// Latest returns the most recent snapshot frame, or nil.
func (h *Hub) Latest() []byte {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.latest
}

// Publish queues msg for every client. It never blocks; when the queue is
// full the message is dropped.
func (h *Hub) Publish(msg Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("failed to marshal message", zap.String("type", msg.Type), zap.Error(err))
		return
	}
	if msg.Type == TypeSnapshot {
		h.mu.Lock()
		h.latest = data
		h.mu.Unlock()
	}

	select {
	case h.broadcast <- data:
	case <-h.done:
	default:
		h.logger.Warn("broadcast queue full, message dropped", zap.String("type", msg.Type))
	}
}

// PublishSnapshot publishes the engine's current state.
func (h *Hub) PublishSnapshot(e *game.Engine, reason string) {
	h.Publish(Message{Type: TypeSnapshot, GameID: e.ID(), Data: e.Snapshot(reason)})
}

// Attach forwards every notification of e to the clients. The returned
// function detaches again.
func (h *Hub) Attach(e *game.Engine) func() {
	gameID := e.ID()
	handle := e.Subscribe(func(n rules.Notification) {
		h.Publish(Message{Type: TypeNotification, GameID: gameID, Data: n})
	})
	return func() { e.Unsubscribe(handle) }
}

// ServeHTTP upgrades the request to a websocket and attaches the client.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump(h)
}

func (c *client) readPump(h *Hub) {
	defer func() {
		select {
		case h.unregister <- c:
		case <-h.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			return
		}

		var req request
		if err := json.Unmarshal(payload, &req); err != nil {
			h.logger.Debug("discarding malformed request", zap.Error(err))
			continue
		}
		h.handle(c, req)
	}
}

// handle answers a client request on that client only.
func (h *Hub) handle(c *client, req request) {
	var data []byte
	switch req.Type {
	case "ping":
		data, _ = json.Marshal(Message{Type: TypePong})
	case "snapshot":
		data = h.Latest()
	default:
		data, _ = json.Marshal(Message{Type: TypeError, Data: "unknown request " + req.Type})
	}
	if data == nil {
		return
	}
	select {
	case h.replies <- reply{to: c, data: data}:
	case <-h.done:
	}
}

func (c *client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
}
