package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/monjez/monjez/internal/usecase"
)

type AuditLog struct {
	ID         string         `json:"id"`
	ActorID    *string        `json:"actor_id,omitempty"`
	Action     string         `json:"action"`
	EntityType string         `json:"entity_type"`
	EntityID   *string        `json:"entity_id,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
	CreatedAt  string         `json:"created_at"`
}

type ListAuditLogsRequest struct {
	Skip       int    `query:"skip"`
	Limit      int    `query:"limit" validate:"required,gte=1,lte=100"`
	ActorID    string `query:"actor_id" validate:"omitempty,uuid"`
	EntityType string `query:"entity_type" validate:"omitempty,oneof=task track user daily_update"`
	EntityID   string `query:"entity_id" validate:"omitempty,uuid"`
	From       string `query:"from" validate:"omitempty,datetime=2006-01-02"`
	To         string `query:"to" validate:"omitempty,datetime=2006-01-02"`
}

func (s *Server) ListAuditLogs(ctx echo.Context) error {
	var req ListAuditLogsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	opt := usecase.ListAuditLogsOption{
		Skip:       req.Skip,
		Limit:      req.Limit,
		EntityType: req.EntityType,
	}
	if req.ActorID != "" {
		id, _ := uuid.Parse(req.ActorID)
		opt.ActorIDs = uuid.UUIDs{id}
	}
	if req.EntityID != "" {
		id, _ := uuid.Parse(req.EntityID)
		opt.EntityID = &id
	}
	if req.From != "" {
		from, _ := time.Parse("2006-01-02", req.From)
		opt.From = &from
	}
	if req.To != "" {
		to, _ := time.Parse("2006-01-02", req.To)
		opt.To = &to
	}

	logs, total, err := s.server.ListAuditLogs(ctx.Request().Context(), opt)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	list := make([]AuditLog, 0, len(logs))
	for _, l := range logs {
		entry := AuditLog{
			ID:         l.ID.String(),
			Action:     string(l.Action),
			EntityType: l.EntityType,
			Details:    l.Details,
			CreatedAt:  l.CreatedAt.Format(time.RFC3339),
		}
		if l.ActorID != nil {
			id := l.ActorID.String()
			entry.ActorID = &id
		}
		if l.EntityID != nil {
			id := l.EntityID.String()
			entry.EntityID = &id
		}
		list = append(list, entry)
	}

	return ctx.JSON(200, Res{
		Data: list,
		Meta: &Meta{
			Total: total,
			Skip:  req.Skip,
			Limit: req.Limit,
		},
	})
}
