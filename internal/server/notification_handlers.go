package server

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/monjez/monjez/internal/config"
	"github.com/monjez/monjez/internal/usecase"
)

type Notification struct {
	ID         string  `json:"id"`
	Type       string  `json:"type"`
	Title      string  `json:"title"`
	TitleAr    string  `json:"title_ar,omitempty"`
	Body       string  `json:"body"`
	BodyAr     string  `json:"body_ar,omitempty"`
	EntityType string  `json:"entity_type,omitempty"`
	EntityID   *string `json:"entity_id,omitempty"`
	TrackID    *string `json:"track_id,omitempty"`
	CreatedAt  string  `json:"created_at"`
	ReadAt     *string `json:"read_at,omitempty"`
}

func ConvertNotificationFrom(n usecase.Notification) Notification {
	noti := Notification{
		ID:         n.ID.String(),
		Type:       string(n.Type),
		Title:      n.Title,
		TitleAr:    n.TitleAr,
		Body:       n.Body,
		BodyAr:     n.BodyAr,
		EntityType: n.EntityType,
		CreatedAt:  n.CreatedAt.Format(time.RFC3339),
	}
	if n.EntityID != nil {
		id := n.EntityID.String()
		noti.EntityID = &id
	}
	if n.TrackID != nil {
		id := n.TrackID.String()
		noti.TrackID = &id
	}
	if n.ReadAt != nil {
		t := n.ReadAt.Format(time.RFC3339)
		noti.ReadAt = &t
	}
	return noti
}

type ListNotificationsRequest struct {
	Skip  int `query:"skip"`
	Limit int `query:"limit" validate:"required,min=1,max=100"`
}

func (s *Server) ListNotifications(ctx echo.Context) error {
	var req ListNotificationsRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	notifications, unread, total, err := s.server.ListNotifications(ctx.Request().Context(), usecase.ListNotificationsOption{
		Skip:  req.Skip,
		Limit: req.Limit,
	})
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	list := make([]Notification, 0, len(notifications))
	for _, n := range notifications {
		list = append(list, ConvertNotificationFrom(n))
	}

	return ctx.JSON(200, Res{
		Data: list,
		Meta: &Meta{
			Unread: &unread,
			Total:  total,
			Skip:   req.Skip,
			Limit:  req.Limit,
		},
	})
}

type ReadNotificationRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) ReadNotification(ctx echo.Context) error {
	var req ReadNotificationRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}
	id, _ := uuid.Parse(req.ID)

	if err := s.server.ReadNotification(ctx.Request().Context(), id); err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.NoContent(204)
}

func (s *Server) ReadAllNotifications(ctx echo.Context) error {
	if err := s.server.ReadAllNotifications(ctx.Request().Context()); err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.NoContent(204)
}

// REF: https://echo.labstack.com/docs/cookbook/sse
func (s *Server) StreamNotifications(ctx echo.Context) error {
	userID, ok := ctx.Request().Context().Value(config.CTX_KEY_USER_ID).(uuid.UUID)
	if !ok {
		return ctx.JSON(401, Res{Message: "Unauthorized"})
	}
	ch, err := s.server.StreamNotifications(ctx.Request().Context(), userID)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	w := ctx.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set(echo.HeaderCacheControl, "no-cache, no-store, no-transform")
	w.Header().Set(echo.HeaderConnection, "keep-alive")

	for {
		select {
		case <-ctx.Request().Context().Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			if msg.ID == uuid.Nil {
				continue
			}

			noti := ConvertNotificationFrom(msg)
			data, err := json.Marshal(noti)
			if err != nil {
				s.logger.Error("Failed to marshal notification", "err", err)
				continue
			}

			w.Write([]byte("data: " + string(data) + "\n\n"))
			w.Flush()
		}
	}
}
