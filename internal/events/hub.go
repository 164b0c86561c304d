// Package events streams applied ledger actions to WebSocket subscribers.
package events

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"token-ledger/internal/domain"
)

// HubConfig configures WebSocket delivery behavior.
type HubConfig struct {
	// SendBuffer is the per-client outbound queue length. A client whose
	// queue fills up is evicted rather than allowed to stall the hub.
	SendBuffer int
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultHubConfig returns default hub configuration.
func DefaultHubConfig() HubConfig {
	return HubConfig{
		SendBuffer:   64,
		PingInterval: 30 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
}

// actionEvent is the wire form of one applied action.
type actionEvent struct {
	ID         string `json:"id"`
	Seq        uint64 `json:"seq"`
	Action     string `json:"action"`
	SymbolCode string `json:"symbol_code,omitempty"`
	From       string `json:"from,omitempty"`
	To         string `json:"to,omitempty"`
	Quantity   int64  `json:"quantity"`
	Precision  uint8  `json:"precision"`
	Memo       string `json:"memo,omitempty"`
	AppliedAt  int64  `json:"applied_at"`
}

// Hub fans applied-action events out to connected WebSocket clients.
type Hub struct {
	config   HubConfig
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// NewHub creates a hub with the given configuration.
func NewHub(config *HubConfig) *Hub {
	cfg := DefaultHubConfig()
	if config != nil {
		cfg = *config
	}
	return &Hub{
		config:  cfg,
		clients: make(map[*client]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// ServeHTTP upgrades the request to a WebSocket connection and streams
// events until the client disconnects or falls behind.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, h.config.SendBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	go h.writeLoop(c)
	h.readLoop(c)
}

// Broadcast queues the record for delivery to every connected client.
// Clients whose queue is full are evicted.
func (h *Hub) Broadcast(record *domain.ActionRecord) {
	payload, err := json.Marshal(actionEvent{
		ID:         record.ID,
		Seq:        record.Seq,
		Action:     record.Action,
		SymbolCode: record.SymbolCode,
		From:       string(record.From),
		To:         string(record.To),
		Quantity:   record.Quantity,
		Precision:  record.Precision,
		Memo:       record.Memo,
		AppliedAt:  record.AppliedAt,
	})
	if err != nil {
		log.Printf("events: marshal action event: %v", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- payload:
		default:
			h.evictLocked(c)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects all clients and rejects new connections.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for c := range h.clients {
		h.evictLocked(c)
	}
}

// evictLocked removes the client and signals its write loop to stop.
// Caller must hold h.mu.
func (h *Hub) evictLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.done)
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.evictLocked(c)
}

// readLoop drains inbound frames so close and ping/pong handling works;
// subscribers are not expected to send anything.
func (h *Hub) readLoop(c *client) {
	defer h.remove(c)
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writeLoop(c *client) {
	ticker := time.NewTicker(h.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.remove(c)
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				h.remove(c)
				return
			}
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(h.config.WriteTimeout))
			c.conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
			return
		}
	}
}
