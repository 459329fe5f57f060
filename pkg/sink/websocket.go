package sink

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/bluest-sdk/bluest-go/pkg/wire"
)

var (
	upgrader = websocket.Upgrader{
		CheckOrigin:     func(*http.Request) bool { return true },
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}

	pingInterval = 30 * time.Second
	writeTimeout = 10 * time.Second
	readTimeout  = 60 * time.Second
)

const (
	maxClientMessage = 4 * 1024
	clientQueueSize  = 64
	broadcastSize    = 256
)

// Message types exchanged with WebSocket clients.
const (
	MessageUpdate    = "update"
	MessageSubscribe = "subscribe"
	MessagePing      = "ping"
	MessagePong      = "pong"
)

// Message is the envelope of every WebSocket message.
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Subscription restricts the records a client receives. Empty fields match
// everything.
type Subscription struct {
	DeviceID string `json:"device_id,omitempty"`
	Feature  string `json:"feature,omitempty"`
}

func (s Subscription) matches(deviceID, feature string) bool {
	return (s.DeviceID == "" || s.DeviceID == deviceID) &&
		(s.Feature == "" || s.Feature == feature)
}

type broadcast struct {
	deviceID string
	feature  string
	data     []byte
}

type client struct {
	id   string
	conn *websocket.Conn
	send chan []byte
	hub  *Hub

	mu  sync.RWMutex
	sub Subscription
}

func (c *client) subscription() Subscription {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sub
}

func (c *client) subscribe(s Subscription) {
	c.mu.Lock()
	c.sub = s
	c.mu.Unlock()
}

// Hub streams records to WebSocket clients. Mount it as an http.Handler and
// start Run before accepting connections.
type Hub struct {
	logger *slog.Logger

	mu      sync.RWMutex
	clients map[*client]struct{}

	broadcast  chan broadcast
	register   chan *client
	unregister chan *client
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a hub. A nil logger discards hub logs.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Hub{
		logger:     logger.With("component", "ws"),
		clients:    make(map[*client]struct{}),
		broadcast:  make(chan broadcast, broadcastSize),
		register:   make(chan *client),
		unregister: make(chan *client),
		done:       make(chan struct{}),
	}
}

// Run dispatches records to clients until ctx is cancelled or the hub is
// closed. All connections are closed on return.
func (h *Hub) Run(ctx context.Context) {
	h.logger.Info("hub started")
	defer h.disconnectAll()
	defer h.Close()

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.done:
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = struct{}{}
			n := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("client connected", "client", c.id, "clients", n)

		case c := <-h.unregister:
			h.remove(c)

		case b := <-h.broadcast:
			h.mu.RLock()
			targets := make([]*client, 0, len(h.clients))
			for c := range h.clients {
				if c.subscription().matches(b.deviceID, b.feature) {
					targets = append(targets, c)
				}
			}
			h.mu.RUnlock()

			for _, c := range targets {
				select {
				case c.send <- b.data:
				default:
					h.logger.Warn("client too slow, dropping", "client", c.id)
					h.remove(c)
				}
			}
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	n := len(h.clients)
	h.mu.Unlock()
	if ok {
		h.logger.Info("client disconnected", "client", c.id, "clients", n)
	}
}

func (h *Hub) disconnectAll() {
	h.mu.Lock()
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	h.mu.Unlock()
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and attaches the connection to the hub.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	c := &client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, clientQueueSize),
		hub:  h,
		sub: Subscription{
			DeviceID: r.URL.Query().Get("device_id"),
			Feature:  r.URL.Query().Get("feature"),
		},
	}

	select {
	case h.register <- c:
	case <-h.done:
		conn.Close()
		return
	}

	go c.writePump()
	go c.readPump()
}

// Name returns "websocket".
func (h *Hub) Name() string { return "websocket" }

// Write queues r for every subscribed client. It never blocks; records are
// dropped when the hub is saturated.
func (h *Hub) Write(_ context.Context, r wire.Record) error {
	select {
	case <-h.done:
		return ErrClosed
	default:
	}

	record, err := json.Marshal(r)
	if err != nil {
		return err
	}
	data, err := json.Marshal(Message{Type: MessageUpdate, Data: record})
	if err != nil {
		return err
	}

	select {
	case h.broadcast <- broadcast{deviceID: r.DeviceID, feature: r.Feature, data: data}:
	default:
		h.logger.Debug("broadcast queue full, dropping record", "feature", r.Feature)
	}
	return nil
}

// Close stops Run and disconnects every client.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() { close(h.done) })
	return nil
}

// enqueue sends a direct reply to c. The hub may have closed c.send, so the
// send happens under the hub lock after checking membership.
func (h *Hub) enqueue(c *client, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

func (c *client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxClientMessage)
	c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(readTimeout))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Debug("client read error", "client", c.id, "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		switch msg.Type {
		case MessageSubscribe:
			var sub Subscription
			if len(msg.Data) > 0 {
				if err := json.Unmarshal(msg.Data, &sub); err != nil {
					continue
				}
			}
			c.subscribe(sub)
			c.hub.logger.Debug("client subscribed", "client", c.id, "device", sub.DeviceID, "feature", sub.Feature)
		case MessagePing:
			pong, _ := json.Marshal(Message{Type: MessagePong})
			c.hub.enqueue(c, pong)
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

var _ Sink = (*Hub)(nil)
