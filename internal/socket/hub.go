// server/internal/socket/hub.go
package socket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"swachh-scan-api-server/internal/lifecycle"
)

const (
	defaultWriteWait = 10 * time.Second
	defaultPongWait  = 60 * time.Second
	// Dashboards only send the occasional control frame.
	maxMessageSize = 512
	sendBuffer     = 32
)

// subscriber is one dashboard connection. Only its writePump writes data
// frames to conn; everyone else queues on send.
type subscriber struct {
	id   string
	conn *websocket.Conn
	send chan []byte
}

// Hub tracks the dashboard websocket subscribers and fans lifecycle events
// out to all of them.
type Hub struct {
	// clients is keyed by a per-connection subscriber id.
	clients map[string]*subscriber
	mu      sync.Mutex
	logger  *slog.Logger

	writeWait  time.Duration
	pongWait   time.Duration
	pingPeriod time.Duration
}

var _ lifecycle.Publisher = (*Hub)(nil)

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[string]*subscriber),
		logger:     logger,
		writeWait:  defaultWriteWait,
		pongWait:   defaultPongWait,
		pingPeriod: defaultPongWait * 9 / 10,
	}
}

// Serve registers conn, queues initial (when non-nil) ahead of any event and
// pumps messages until the connection ends. The server pings every
// pingPeriod; a missing pong within pongWait drops the subscriber. It blocks
// the calling goroutine.
func (h *Hub) Serve(subscriberID string, conn *websocket.Conn, initial []byte) {
	sub := &subscriber{id: subscriberID, conn: conn, send: make(chan []byte, sendBuffer)}
	if initial != nil {
		sub.send <- initial
	}
	h.register(sub)

	go h.writePump(sub)
	h.readPump(sub)
}

func (h *Hub) register(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.clients[sub.id]; ok {
		close(old.send)
	}
	h.clients[sub.id] = sub
	h.logger.Info("dashboard subscriber registered", "subscriber_id", sub.id)
}

// unregister is a no-op when sub was already dropped or replaced.
func (h *Hub) unregister(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if cur, ok := h.clients[sub.id]; ok && cur == sub {
		delete(h.clients, sub.id)
		close(sub.send)
		h.logger.Info("dashboard subscriber unregistered", "subscriber_id", sub.id)
	}
}

// Count returns the number of connected subscribers.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues message for every subscriber without waiting on the
// network. A subscriber whose queue is full is dropped.
func (h *Hub) Broadcast(message []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for id, sub := range h.clients {
		select {
		case sub.send <- message:
		default:
			h.logger.Warn("dropping slow dashboard subscriber", "subscriber_id", id)
			delete(h.clients, id)
			close(sub.send)
		}
	}
}

// Publish sends a lifecycle event to the dashboards as JSON.
func (h *Hub) Publish(event lifecycle.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to encode lifecycle event", "type", event.Type, "error", err)
		return
	}
	h.Broadcast(payload)
}

func (h *Hub) readPump(sub *subscriber) {
	defer func() {
		h.unregister(sub)
		sub.conn.Close()
	}()

	extend := func() error {
		return sub.conn.SetReadDeadline(time.Now().Add(h.pongWait))
	}
	sub.conn.SetReadLimit(maxMessageSize)
	extend()
	sub.conn.SetPongHandler(func(string) error { return extend() })

	for {
		if _, _, err := sub.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("dashboard connection closed unexpectedly", "subscriber_id", sub.id, "error", err)
			}
			return
		}
		// Any inbound frame proves the client is alive.
		extend()
	}
}

func (h *Hub) writePump(sub *subscriber) {
	ticker := time.NewTicker(h.pingPeriod)
	defer func() {
		ticker.Stop()
		sub.conn.Close()
	}()

	for {
		select {
		case message, ok := <-sub.send:
			sub.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if !ok {
				sub.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := sub.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				h.logger.Warn("dashboard write failed", "subscriber_id", sub.id, "error", err)
				return
			}
		case <-ticker.C:
			sub.conn.SetWriteDeadline(time.Now().Add(h.writeWait))
			if err := sub.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
