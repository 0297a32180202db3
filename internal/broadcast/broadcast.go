// Package broadcast implements the status broadcaster: push progress
// events to the ingestion channel, fire-and-forget from the caller's
// perspective but returning a completion signal so a caller can log
// failure without failing its own pipeline.
//
// Events are emitted on a side channel, never blocking the caller on
// delivery, over a gorilla/websocket hub.
package broadcast

import (
	"encoding/json"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"github.com/yungbote/recipe-notes-worker/internal/logging"
)

// Status is the closed set of the broadcast event schema.
type Status string

const (
	StatusProcessing Status = "PROCESSING"
	StatusCompleted  Status = "COMPLETED"
	StatusFailed     Status = "FAILED"
)

// Event is the broadcast event schema, a fixed field set sent as JSON.
type Event struct {
	ImportID    string                 `json:"importId"`
	NoteID      string                 `json:"noteId"`
	Status      Status                 `json:"status"`
	Message     string                 `json:"message"`
	Context     string                 `json:"context"`
	IndentLevel int                    `json:"indentLevel"`
	Metadata    map[string]interface{} `json:"metadata"`
}

// Broadcaster is the single-operation external collaborator every caller
// emits status events through.
type Broadcaster interface {
	// Emit is fire-and-forget from the caller's view; the returned channel
	// receives exactly one value (nil on success, an error otherwise) once
	// delivery to all connected clients has been attempted.
	Emit(e Event) <-chan error
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// Hub is a gorilla/websocket-backed Broadcaster: every connected client
// receives every emitted event, matching the ingestion channel's
// fan-out-to-UI role.
type Hub struct {
	log     *logging.Logger
	mu      sync.Mutex
	clients map[*websocket.Conn]struct{}
}

func NewHub(log *logging.Logger) *Hub {
	if log == nil {
		log = logging.NewNop()
	}
	return &Hub{log: log.With("component", "StatusBroadcaster"), clients: make(map[*websocket.Conn]struct{})}
}

// ServeWS upgrades an HTTP connection and registers it as a broadcast
// recipient until the socket closes.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "error", err)
		return
	}
	h.mu.Lock()
	h.clients[conn] = struct{}{}
	h.mu.Unlock()

	go func() {
		defer h.removeClient(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

func (h *Hub) removeClient(conn *websocket.Conn) {
	h.mu.Lock()
	delete(h.clients, conn)
	h.mu.Unlock()
	_ = conn.Close()
}

// Emit spawns an asynchronous task per call and copies everything it
// needs (the event is already a value type) so the task never borrows
// pipeline-scoped data, per the fire-and-forget re-architecture
// note.
func (h *Hub) Emit(e Event) <-chan error {
	done := make(chan error, 1)
	go func() {
		done <- h.broadcast(e)
	}()
	return done
}

func (h *Hub) broadcast(e Event) error {
	raw, err := json.Marshal(e)
	if err != nil {
		h.log.Warn("broadcast: marshal failed", "error", err)
		return err
	}

	h.mu.Lock()
	conns := make([]*websocket.Conn, 0, len(h.clients))
	for c := range h.clients {
		conns = append(conns, c)
	}
	h.mu.Unlock()

	var firstErr error
	for _, c := range conns {
		if err := c.WriteMessage(websocket.TextMessage, raw); err != nil {
			h.log.Warn("broadcast: write failed, dropping client", "error", err)
			h.removeClient(c)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}
