// internal/realtime/hub.go
//
// Live score feed over WebSocket.
// Responsibilities:
//   - Track connected clients, each with a buffered send channel and its own writer goroutine.
//   - Fan out every published score to all clients.
//   - Drop clients that cannot keep up instead of blocking the broadcaster.
//   - Keep connections alive with pings; the read side only handles pongs and close.

package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 50 * time.Second
	sendBuffer = 64
)

// Score is the payload pushed when a player finishes a daily game.
type Score struct {
	Username string `json:"username"`
	GameMode int    `json:"gameMode"`
	TimeMs   int64  `json:"timeMs"`
	Won      bool   `json:"won"`
}

type Envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Publisher delivers scores to every listening client.
type Publisher interface {
	Publish(ctx context.Context, s Score) error
}

// Gauge receives the current client count (a prometheus.Gauge fits).
type Gauge interface {
	Set(float64)
}

type client struct {
	conn *websocket.Conn
	send chan []byte
}

type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}
	gauge   Gauge

	upgrader websocket.Upgrader
}

// NewHub returns a hub accepting WebSocket upgrades from the given origins.
// An empty list accepts any origin.
func NewHub(allowedOrigins []string, gauge Gauge) *Hub {
	h := &Hub{clients: make(map[*client]struct{}), gauge: gauge}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}
			for _, o := range allowedOrigins {
				if o == "*" || o == origin {
					return true
				}
			}
			return false
		},
	}
	return h
}

// EncodeScore wraps s in the {"type":"score"} envelope.
func EncodeScore(s Score) ([]byte, error) {
	payload, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return json.Marshal(Envelope{Type: "score", Payload: payload})
}

// Publish broadcasts s to the clients of this process.
func (h *Hub) Publish(_ context.Context, s Score) error {
	msg, err := EncodeScore(s)
	if err != nil {
		return err
	}
	h.Broadcast(msg)
	return nil
}

// Broadcast queues msg for every client without blocking; clients whose
// buffer is full are disconnected.
func (h *Hub) Broadcast(msg []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		select {
		case c.send <- msg:
		default:
			log.Warn().Msg("ws client too slow, dropping")
			h.removeLocked(c)
		}
	}
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		h.removeLocked(c)
	}
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.report()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
}

func (h *Hub) removeLocked(c *client) {
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.send)
	h.report()
}

func (h *Hub) report() {
	if h.gauge != nil {
		h.gauge.Set(float64(len(h.clients)))
	}
}

// ServeWS upgrades the request and streams scores until the client goes away.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Debug().Err(err).Msg("ws upgrade failed")
		return
	}
	c := &client{conn: conn, send: make(chan []byte, sendBuffer)}
	h.add(c)

	go h.writePump(c)
	h.readPump(c)
}

func (h *Hub) readPump(c *client) {
	defer func() {
		h.remove(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(512)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (h *Hub) writePump(c *client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
