package realtime

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Publisher implements usecase.EventBus for processes without websocket
// sessions of their own (the worker): events go through pg_notify and
// the API-side Hub delivers them.
type Publisher struct {
	db *sql.DB
}

func NewPublisher(db *sql.DB) *Publisher {
	return &Publisher{db: db}
}

func (p *Publisher) EmitToUser(ctx context.Context, userID uuid.UUID, event string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	data, err := json.Marshal(Envelope{UserID: userID, Event: event, Payload: body})
	if err != nil {
		return fmt.Errorf("marshal envelope: %w", err)
	}
	_, err = p.db.ExecContext(ctx, "SELECT pg_notify($1, $2)", Channel, string(data))
	return err
}
