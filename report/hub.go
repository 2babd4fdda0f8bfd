package report

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	trafficcount "github.com/swdee/go-trafficcount"
)

// hubQueueSize is the number of messages buffered for broadcast before new
// messages are dropped
const hubQueueSize = 32

// Message is the envelope sent to dashboard clients
type Message struct {
	// Type of the payload, eg: "window" or "stats"
	Type string `json:"type"`
	// Data is the payload
	Data interface{} `json:"data"`
}

// Hub broadcasts counting updates as JSON to connected websocket clients
type Hub struct {
	clients    map[*websocket.Conn]bool
	broadcast  chan []byte
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	// done is closed when Run returns
	done     chan struct{}
	mutex    sync.RWMutex
	upgrader websocket.Upgrader
}

// NewHub returns a hub, call Run to start delivering messages
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan []byte, hubQueueSize),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// Run delivers messages to clients until the context is cancelled, at which
// point all clients are disconnected.  Run must only be called once
func (h *Hub) Run(ctx context.Context) error {

	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			h.mutex.Lock()
			for client := range h.clients {
				client.Close()
				delete(h.clients, client)
			}
			h.mutex.Unlock()
			return nil

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			n := len(h.clients)
			h.mutex.Unlock()
			trafficcount.Logf("hub: client connected, total %d", n)

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.Close()
			}
			n := len(h.clients)
			h.mutex.Unlock()
			trafficcount.Logf("hub: client disconnected, total %d", n)

		case message := <-h.broadcast:
			h.mutex.Lock()
			for client := range h.clients {
				if err := client.WriteMessage(websocket.TextMessage, message); err != nil {
					trafficcount.Logf("hub: error sending message: %v", err)
					delete(h.clients, client)
					client.Close()
				}
			}
			h.mutex.Unlock()
		}
	}
}

// ServeHTTP upgrades the request to a websocket and keeps the client
// registered until it disconnects
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {

	conn, err := h.upgrader.Upgrade(w, r, nil)

	if err != nil {
		trafficcount.Logf("hub: upgrade failed: %v", err)
		return
	}

	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	case <-r.Context().Done():
		conn.Close()
		return
	}

	// clients only listen, reading detects when they go away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	select {
	case h.unregister <- conn:
	case <-h.done:
		conn.Close()
	case <-r.Context().Done():
	}
}

// Publish queues a message for all clients.  The message is dropped when the
// queue is full
func (h *Hub) Publish(kind string, data interface{}) {

	b, err := json.Marshal(Message{Type: kind, Data: data})

	if err != nil {
		trafficcount.Logf("hub: error encoding %s message: %v", kind, err)
		return
	}

	select {
	case h.broadcast <- b:
	default:
		trafficcount.Logf("hub: queue full, dropping %s message", kind)
	}
}

// OnWindow publishes the report as a "window" message
func (h *Hub) OnWindow(r trafficcount.WindowReport) {
	h.Publish("window", r)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	return len(h.clients)
}
