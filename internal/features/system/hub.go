package system

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gofiber/contrib/websocket"
	"go.uber.org/zap"
)

// ActivityEvent is one entry on the live activity feed.
type ActivityEvent struct {
	Type      string    `json:"type"`
	ProjectID string    `json:"project_id,omitempty"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// Hub fans activity events out to connected websocket clients. Slow clients
// are dropped rather than allowed to stall the broadcast.
type Hub struct {
	mu      sync.RWMutex
	clients map[*websocket.Conn]chan []byte
	log     *zap.Logger
}

func NewHub(log *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]chan []byte),
		log:     log,
	}
}

// Broadcast queues the event to every connected client.
func (h *Hub) Broadcast(event ActivityEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for conn, ch := range h.clients {
		select {
		case ch <- payload:
		default:
			h.log.Debug("dropping activity event for slow client",
				zap.String("remote", conn.RemoteAddr().String()))
		}
	}
}

// NotifySync is the callback shape the webhook processor wants.
func (h *Hub) NotifySync(projectID string) {
	h.Broadcast(ActivityEvent{
		Type:      "project_synced",
		ProjectID: projectID,
		Message:   "project financials refreshed",
	})
}

// Serve pumps events to one client until it disconnects. Runs on the
// websocket handler goroutine.
func (h *Hub) Serve(conn *websocket.Conn) {
	ch := make(chan []byte, 16)

	h.mu.Lock()
	h.clients[conn] = ch
	h.mu.Unlock()

	defer func() {
		h.mu.Lock()
		delete(h.clients, conn)
		h.mu.Unlock()
		conn.Close()
	}()

	// Reads are drained so pings and close frames are handled; a read error
	// is the disconnect signal.
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case payload := <-ch:
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
