package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// Channel is the Postgres NOTIFY channel carrying cross-process
// realtime events from the worker to the API.
const Channel = "realtime_events"

// Envelope is the wire format for a realtime event, both over
// pg_notify and down the websocket.
type Envelope struct {
	UserID  uuid.UUID       `json:"user_id"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// Hub tracks open websocket sessions per user and implements
// usecase.EventBus for the API process.
type Hub struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]map[*websocket.Conn]struct{}
}

func NewHub() *Hub {
	return &Hub{
		sessions: make(map[uuid.UUID]map[*websocket.Conn]struct{}),
	}
}

func (h *Hub) Register(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.sessions[userID] == nil {
		h.sessions[userID] = make(map[*websocket.Conn]struct{})
	}
	h.sessions[userID][conn] = struct{}{}
}

func (h *Hub) Unregister(userID uuid.UUID, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.sessions[userID], conn)
	if len(h.sessions[userID]) == 0 {
		delete(h.sessions, userID)
	}
}

// EmitToUser pushes the event to every open session of the user.
// Fire-and-forget: a dead session is dropped, never surfaced as an
// error to the caller.
func (h *Hub) EmitToUser(ctx context.Context, userID uuid.UUID, event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	data, err := json.Marshal(Envelope{UserID: userID, Event: event, Payload: body})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}

	h.mu.RLock()
	conns := make([]*websocket.Conn, 0, len(h.sessions[userID]))
	for conn := range h.sessions[userID] {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	for _, conn := range conns {
		wctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := conn.Write(wctx, websocket.MessageText, data); err != nil {
			fmt.Printf("realtime: write to user %s: %v\n", userID, err)
			h.Unregister(userID, conn)
		}
		cancel()
	}
	return nil
}

// Listen consumes cross-process events published through pg_notify and
// forwards them to local sessions. Runs until the connection breaks or
// the context ends.
func (h *Hub) Listen(ctx context.Context, conn *pgx.Conn) error {
	if _, err := conn.Exec(ctx, "LISTEN "+Channel); err != nil {
		return fmt.Errorf("listen %s: %w", Channel, err)
	}

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		if n == nil {
			continue
		}

		var env Envelope
		if err := json.Unmarshal([]byte(n.Payload), &env); err != nil {
			fmt.Printf("realtime: bad envelope: %v\n", err)
			continue
		}

		var payload any
		if len(env.Payload) > 0 {
			_ = json.Unmarshal(env.Payload, &payload)
		}
		if err := h.EmitToUser(ctx, env.UserID, env.Event, payload); err != nil {
			fmt.Printf("realtime: forward event: %v\n", err)
		}
	}
}
