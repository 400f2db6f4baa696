// Package notify delivers alerts and generation stats to observers: the structured log,
// websocket clients, and the on-screen alert feed.
package notify

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/pthm-cable/meadow/telemetry"
)

// Event is one message sent to websocket clients.
type Event struct {
	Type       string    `json:"type"` // "alert" or "generation"
	Time       time.Time `json:"time"`
	Text       string    `json:"text,omitempty"`
	Generation *Payload  `json:"generation,omitempty"`
}

// Payload is the wire form of a generation's stats.
type Payload struct {
	Generation int       `json:"generation"`
	Counts     []int     `json:"counts"`
	Percent    []float64 `json:"percent"`
	Occupancy  float64   `json:"occupancy"`
	Diversity  float64   `json:"diversity"`
	Dominant   int       `json:"dominant"`
}

// Hub broadcasts events to connected websocket clients. Alert and Publish never block
// the caller; events are dropped when the queue is full.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*websocket.Conn]bool
	upgrader   websocket.Upgrader
	broadcast  chan Event
	register   chan *websocket.Conn
	unregister chan *websocket.Conn
	done       chan struct{}
	closeOnce  sync.Once
	wg         sync.WaitGroup
	onCommand  func(text string)
}

// NewHub creates a hub and starts its broadcaster goroutine.
func NewHub() *Hub {
	h := &Hub{
		clients:    make(map[*websocket.Conn]bool),
		broadcast:  make(chan Event, 256),
		register:   make(chan *websocket.Conn),
		unregister: make(chan *websocket.Conn),
		done:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	h.wg.Add(1)
	go h.run()
	return h
}

// Alert queues a text alert.
func (h *Hub) Alert(text string) {
	h.send(Event{Type: "alert", Time: time.Now(), Text: text})
}

// Publish queues a generation's stats.
func (h *Hub) Publish(s telemetry.GenerationStats) {
	h.send(Event{
		Type: "generation",
		Time: time.Now(),
		Generation: &Payload{
			Generation: s.Generation,
			Counts:     s.Counts,
			Percent:    s.Percent,
			Occupancy:  s.Occupancy,
			Diversity:  s.Diversity,
			Dominant:   s.Dominant,
		},
	})
}

func (h *Hub) send(e Event) {
	select {
	case <-h.done:
	case h.broadcast <- e:
	default:
		slog.Debug("notify queue full, dropping event", "type", e.Type)
	}
}

// OnCommand installs a handler for text messages sent by clients. It must be set
// before the hub serves requests and is called on the connection's goroutine.
func (h *Hub) OnCommand(fn func(text string)) { h.onCommand = fn }

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// ServeHTTP upgrades the request to a websocket and keeps it registered until the
// client disconnects. Text messages from the client are passed to the command handler,
// anything else is discarded.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	select {
	case h.register <- conn:
	case <-h.done:
		conn.Close()
		return
	}

	for {
		typ, data, err := conn.ReadMessage()
		if err != nil {
			break
		}
		if typ == websocket.TextMessage && h.onCommand != nil {
			h.onCommand(string(data))
		}
	}

	select {
	case h.unregister <- conn:
	case <-h.done:
	}
}

func (h *Hub) run() {
	defer h.wg.Done()
	for {
		select {
		case <-h.done:
			return

		case conn := <-h.register:
			h.mu.Lock()
			h.clients[conn] = true
			h.mu.Unlock()

		case conn := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[conn]; ok {
				delete(h.clients, conn)
				conn.Close()
			}
			h.mu.Unlock()

		case event := <-h.broadcast:
			data, err := json.Marshal(event)
			if err != nil {
				slog.Warn("encoding event failed", "type", event.Type, "error", err)
				continue
			}
			h.write(data)
		}
	}
}

// write sends data to every client outside the lock and drops the ones that fail.
func (h *Hub) write(data []byte) {
	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for conn := range h.clients {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	var failed []*websocket.Conn
	for _, conn := range conns {
		conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			failed = append(failed, conn)
			conn.Close()
		}
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	}
}

// Close disconnects all clients and stops the broadcaster.
func (h *Hub) Close() error {
	h.closeOnce.Do(func() {
		close(h.done)
		h.wg.Wait()

		h.mu.Lock()
		for conn := range h.clients {
			conn.Close()
			delete(h.clients, conn)
		}
		h.mu.Unlock()
	})
	return nil
}
