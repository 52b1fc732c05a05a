package push

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeDeadline = 5 * time.Second
	pongWait      = 30 * time.Second
	pingInterval  = 20 * time.Second
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(_ *http.Request) bool { return true },
}

// Envelope is the wire shape of one pushed event.
type Envelope struct {
	Event   string    `json:"event"` // "insight" or "status"
	Payload any       `json:"payload"`
	SentAt  time.Time `json:"sentAt"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	done chan struct{}
}

// Hub tracks connected dashboard clients and broadcasts events to them.
type Hub struct {
	sendBuf int
	logger  *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
}

// NewHub creates a hub. sendBuf is the per-client queue length;
// non-positive values fall back to 256.
func NewHub(sendBuf int, logger *slog.Logger) *Hub {
	if sendBuf <= 0 {
		sendBuf = 256
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		sendBuf: sendBuf,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
}

// Broadcast serializes the event once and enqueues it to every client's
// send channel without blocking.
func (h *Hub) Broadcast(event string, payload any) {
	data, err := json.Marshal(Envelope{Event: event, Payload: payload, SentAt: time.Now().UTC()})
	if err != nil {
		h.logger.Error("marshal push event", "event", event, "error", err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for c := range h.clients {
		select {
		case c.send <- data:
		default:
			h.logger.Warn("dropping event for slow client", "event", event)
		}
	}
}

// ClientCount reports the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request and starts the client pumps.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err)
		return
	}

	c := &client{
		conn: conn,
		send: make(chan []byte, h.sendBuf),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.Info("dashboard client connected", "remote", conn.RemoteAddr().String())

	go h.writePump(c)
	go h.readPump(c)
}

// Close disconnects every client. The pumps unwind on their own once
// the connections fail.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.conn.Close()
	}
}

// writePump drains the client's send channel and writes to the
// connection. It owns the client lifecycle: on exit it removes the
// client from the map (so Broadcast never sends to a stale channel)
// and closes the connection.
func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		h.remove(c)
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-c.done:
			return
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeDeadline))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump keeps the connection alive by reading pongs and close
// frames; clients do not send anything upstream. On exit it signals
// writePump via c.done (never closes c.send).
func (h *Hub) readPump(c *client) {
	defer close(c.done)

	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	h.logger.Info("dashboard client disconnected", "remote", c.conn.RemoteAddr().String())
}
