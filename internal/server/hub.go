// Package server streams simulation frames to WebSocket clients and accepts
// thrust input from them.
package server

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"flappyevo/internal/sim"
)

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// Message is the envelope for everything sent to or received from a client
type Message struct {
	Type   string     `json:"type"` // config|frame from the server, thrust from clients
	Config any        `json:"config,omitempty"`
	Frame  *sim.Frame `json:"frame,omitempty"`
}

type client struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (c *client) send(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.conn.WriteJSON(v)
}

// Hub fans frames out to connected clients
type Hub struct {
	mu      sync.Mutex
	clients map[*client]struct{}

	hello    any
	onThrust func()
	logger   *slog.Logger
}

// NewHub creates a hub that greets each client with hello. onThrust, if not
// nil, is called from the client's read goroutine for every thrust message.
func NewHub(hello any, onThrust func(), logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:  make(map[*client]struct{}),
		hello:    hello,
		onThrust: onThrust,
		logger:   logger,
	}
}

// Handler returns the HTTP routes served by the hub
func (h *Hub) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", h.ServeWS)
	return mux
}

// Clients returns the number of connected clients
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast sends the frame to every client, dropping the ones that fail
func (h *Hub) Broadcast(frame sim.Frame) {
	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	msg := Message{Type: "frame", Frame: &frame}
	for _, c := range list {
		if err := c.send(msg); err != nil {
			h.logger.Warn("client_send_failed", "remote", c.conn.RemoteAddr().String(), "error", err)
			h.remove(c)
		}
	}
}

// ServeWS upgrades the request and reads client messages until it disconnects
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("upgrade_failed", "error", err)
		return
	}
	c := &client{conn: conn}
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.logger.Info("client_connected", "remote", conn.RemoteAddr().String())

	_ = c.send(Message{Type: "config", Config: h.hello})

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		switch msg.Type {
		case "thrust":
			if h.onThrust != nil {
				h.onThrust()
			}
		default:
			h.logger.Debug("unknown_message", "type", msg.Type)
		}
	}

	h.remove(c)
	h.logger.Info("client_disconnected", "remote", conn.RemoteAddr().String())
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	list := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		list = append(list, c)
	}
	h.mu.Unlock()

	for _, c := range list {
		h.remove(c)
	}
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()
	if ok {
		c.conn.Close()
	}
}
