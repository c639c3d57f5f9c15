// internal/notify/hub.go
package notify

import (
	"context"
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Hub fans notification events out to every connected local UI consumer.
// Delivery is best-effort: a client whose send buffer is full is dropped
// rather than allowed to block the rest.
type Hub struct {
	clients map[*Client]bool
	mu      sync.RWMutex

	register   chan *Client
	unregister chan *Client
	broadcast  chan Event
	done       chan struct{}

	logger *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Event, 256),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Notify implements the Notifier interfaces of the session and settings
// layers. Never blocks the caller: if the hub's queue is full the event is
// dropped.
func (h *Hub) Notify(eventType string, payload interface{}) {
	select {
	case h.broadcast <- NewEvent(eventType, payload):
	default:
		h.logger.Warn("notification queue full, dropping event", zap.String("type", eventType))
	}
}

// Register hands a new websocket client to the hub. A connect that races hub
// shutdown closes the client instead of parking on a channel nobody drains.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		c.Close()
	}
}

// Unregister removes a client; safe to call multiple times. After shutdown
// this is a no-op, every client was already closed.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			close(h.done)
			h.shutdown()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			h.mu.Unlock()
			h.logger.Debug("ui client connected", zap.Int("total", h.total()))

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				c.Close()
			}
			h.mu.Unlock()

		case ev := <-h.broadcast:
			h.send(ev)
		}
	}
}

func (h *Hub) send(ev Event) {
	raw, err := json.Marshal(ev)
	if err != nil {
		h.logger.Warn("failed to encode event", zap.Error(err))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- raw:
		default:
			delete(h.clients, c)
			c.Close()
			h.logger.Warn("dropping slow ui client")
		}
	}
}

func (h *Hub) total() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) shutdown() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		c.Close()
	}
	h.clients = make(map[*Client]bool)
}
