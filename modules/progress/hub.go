package progress

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// JobUpdate - one status transition pushed to the loading screen
type JobUpdate struct {
	JobID  string `json:"job_id"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		// the mobile app connects from arbitrary origins
		return true
	},
}

// subscriber - one connected loading screen
type subscriber struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub - fan-out of job status updates to websocket subscribers, keyed by job id.
// The worker publishes; each loading screen subscribes to its own job.
type Hub struct {
	mutex       sync.RWMutex
	subscribers map[string]map[*subscriber]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[*subscriber]struct{}),
	}
}

// Publish - push an update to every subscriber of the job. Slow subscribers
// are dropped rather than blocking the worker.
func (h *Hub) Publish(update JobUpdate) {
	data, err := json.Marshal(update)
	if err != nil {
		log.Printf("⚠️  [Progress] Failed to marshal update: %v", err)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	for sub := range h.subscribers[update.JobID] {
		select {
		case sub.send <- data:
		default:
			close(sub.send)
			delete(h.subscribers[update.JobID], sub)
		}
	}
}

func (h *Hub) add(jobID string, sub *subscriber) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if h.subscribers[jobID] == nil {
		h.subscribers[jobID] = make(map[*subscriber]struct{})
	}
	h.subscribers[jobID][sub] = struct{}{}
}

func (h *Hub) remove(jobID string, sub *subscriber) {
	h.mutex.Lock()
	defer h.mutex.Unlock()
	if subs, ok := h.subscribers[jobID]; ok {
		if _, ok := subs[sub]; ok {
			close(sub.send)
			delete(subs, sub)
		}
		if len(subs) == 0 {
			delete(h.subscribers, jobID)
		}
	}
}

// HandleWebSocket - GET /ws?job=<id>
func (h *Hub) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	jobID := r.URL.Query().Get("job")
	if jobID == "" {
		http.Error(w, "Missing job parameter", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("⚠️  [Progress] WebSocket upgrade failed: %v", err)
		return
	}

	sub := &subscriber{
		conn: conn,
		send: make(chan []byte, 16),
	}
	h.add(jobID, sub)
	log.Printf("🔍 [Progress] Subscriber attached to job %s", jobID)

	go sub.writePump()
	go sub.readPump(func() { h.remove(jobID, sub) })
}

// readPump - drain (and ignore) client frames until the connection drops
func (s *subscriber) readPump(onClose func()) {
	defer func() {
		onClose()
		s.conn.Close()
	}()
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (s *subscriber) writePump() {
	defer s.conn.Close()
	for message := range s.send {
		if err := s.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("⚠️  [Progress] WebSocket write error: %v", err)
			return
		}
	}
	s.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
