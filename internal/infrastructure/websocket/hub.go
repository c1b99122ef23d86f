// Package websocket serves the real-time client channel: one upgrade
// endpoint, a hub that fans outbound frames to every connected client, and
// per-connection read/write pumps.
package websocket

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

var hubLog = logrus.WithField("component", "websocket_hub")

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20

	// sendBufferSize bounds the per-client outbound queue. A client that
	// cannot keep up is disconnected rather than allowed to block the hub.
	sendBufferSize = 256
)

// Dispatcher routes inbound client frames; the bridge's dispatch table
// implements it.
type Dispatcher interface {
	Dispatch(ctx context.Context, destination string, payload []byte) error
}

// Hub tracks connected clients and fans frames out to all of them. Writes to
// individual clients are decoupled through buffered channels, so a broadcast
// never blocks on a slow consumer.
type Hub struct {
	dispatcher Dispatcher
	upgrader   websocket.Upgrader

	mu      sync.RWMutex
	clients map[*Client]struct{}
}

// NewHub creates a hub routing inbound frames through the given dispatcher.
func NewHub(dispatcher Dispatcher) *Hub {
	return &Hub{
		dispatcher: dispatcher,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// The browser front end is served from another origin.
			CheckOrigin: func(*http.Request) bool { return true },
		},
		clients: make(map[*Client]struct{}),
	}
}

// HandleUpgrade upgrades an HTTP request and runs the client's pumps.
func (h *Hub) HandleUpgrade(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		hubLog.WithError(err).Warn("websocket upgrade failed")
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		done: make(chan struct{}),
	}
	h.register(client)

	go client.writePump()
	// The request context dies when this handler returns; handlers triggered
	// by client frames must not inherit it.
	go client.readPump(context.Background())
}

// Broadcast sends one frame to every connected client. Transport failures are
// per-client: they are logged and the client dropped, the frame still reaches
// everyone else.
func (h *Hub) Broadcast(destination string, payload []byte) {
	frame := EncodeFrame(destination, payload)

	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		select {
		case c.send <- frame:
		default:
			hubLog.Warn("client send buffer full, dropping client")
			h.unregister(c)
		}
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clients = make(map[*Client]struct{})
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.mu.Unlock()
	hubLog.WithField("clients", count).Info("client connected")
}

func (h *Hub) unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if ok {
		c.close()
		hubLog.WithField("clients", count).Info("client disconnected")
	}
}
