package server

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/monjez/monjez/internal/usecase"
)

type DailyUpdate struct {
	ID          string       `json:"id" param:"id"`
	TaskID      string       `json:"task_id" validate:"required,uuid"`
	AuthorID    string       `json:"author_id,omitempty"`
	Date        string       `json:"date,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Body        string       `json:"body" validate:"required"`
	BodyAr      string       `json:"body_ar,omitempty"`
	CreatedAt   string       `json:"created_at,omitempty"`
	UpdatedAt   string       `json:"updated_at,omitempty"`
	Attachments []Attachment `json:"attachments,omitempty" validate:"omitempty,dive"`
	ReadBy      []UpdateRead `json:"read_by,omitempty"`

	Task   *Task `json:"task,omitempty"`
	Author *User `json:"author,omitempty"`
}

type Attachment struct {
	ID        string          `json:"id,omitempty"`
	FileName  string          `json:"file_name" validate:"required"`
	Path      string          `json:"path,omitempty"`
	Size      int64           `json:"size" validate:"required,gt=0"`
	MIMEType  string          `json:"mime_type" validate:"required"`
	Colors    json.RawMessage `json:"colors,omitempty"`
	URL       string          `json:"url,omitempty"`
	CreatedAt string          `json:"created_at,omitempty"`
}

type UpdateRead struct {
	UserID string `json:"user_id"`
	ReadAt string `json:"read_at"`
}

func (s *Server) convertDailyUpdateFrom(ctx echo.Context, du usecase.DailyUpdate) DailyUpdate {
	update := DailyUpdate{
		ID:        du.ID.String(),
		TaskID:    du.TaskID.String(),
		AuthorID:  du.AuthorID.String(),
		Date:      du.Date.Format("2006-01-02"),
		Body:      du.Body,
		BodyAr:    du.BodyAr,
		CreatedAt: du.CreatedAt.Format(time.RFC3339),
		UpdatedAt: du.UpdatedAt.Format(time.RFC3339),
	}
	for _, a := range du.Attachments {
		att := Attachment{
			ID:        a.ID.String(),
			FileName:  a.FileName,
			Path:      a.Path,
			Size:      a.Size,
			MIMEType:  a.MIMEType,
			Colors:    a.Colors,
			CreatedAt: a.CreatedAt.Format(time.RFC3339),
		}
		if url, err := s.server.GetAttachmentURL(ctx.Request().Context(), du.ID, a.FileName); err == nil {
			att.URL = url
		}
		update.Attachments = append(update.Attachments, att)
	}
	for _, r := range du.ReadBy {
		update.ReadBy = append(update.ReadBy, UpdateRead{
			UserID: r.UserID.String(),
			ReadAt: r.ReadAt.Format(time.RFC3339),
		})
	}
	if du.Task != nil {
		t := ConvertTaskFrom(*du.Task)
		update.Task = &t
	}
	if du.Author != nil {
		update.Author = &User{
			ID:     du.Author.ID.String(),
			Name:   du.Author.Name,
			NameAr: du.Author.NameAr,
		}
	}
	return update
}

type ListDailyUpdatesRequest struct {
	Skip     int    `query:"skip"`
	Limit    int    `query:"limit" validate:"required,gte=1,lte=100"`
	TaskID   string `query:"task_id" validate:"omitempty,uuid"`
	AuthorID string `query:"author_id" validate:"omitempty,uuid"`
	DateFrom string `query:"date_from" validate:"omitempty,datetime=2006-01-02"`
	DateTo   string `query:"date_to" validate:"omitempty,datetime=2006-01-02"`
}

func (s *Server) ListDailyUpdates(ctx echo.Context) error {
	var req ListDailyUpdatesRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	opt := usecase.ListDailyUpdatesOption{
		Skip:  req.Skip,
		Limit: req.Limit,
	}
	if req.TaskID != "" {
		id, _ := uuid.Parse(req.TaskID)
		opt.TaskIDs = uuid.UUIDs{id}
	}
	if req.AuthorID != "" {
		opt.AuthorID, _ = uuid.Parse(req.AuthorID)
	}
	if req.DateFrom != "" {
		from, _ := time.Parse("2006-01-02", req.DateFrom)
		opt.DateFrom = &from
	}
	if req.DateTo != "" {
		to, _ := time.Parse("2006-01-02", req.DateTo)
		opt.DateTo = &to
	}

	updates, total, err := s.server.ListDailyUpdates(ctx.Request().Context(), opt)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	list := make([]DailyUpdate, 0, len(updates))
	for _, du := range updates {
		list = append(list, s.convertDailyUpdateFrom(ctx, du))
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

type GetDailyUpdateByIDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) GetDailyUpdateByID(ctx echo.Context) error {
	var req GetDailyUpdateByIDRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	id, _ := uuid.Parse(req.ID)
	du, err := s.server.GetDailyUpdateByID(ctx.Request().Context(), id)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: s.convertDailyUpdateFrom(ctx, du)})
}

func (s *Server) CreateDailyUpdate(ctx echo.Context) error {
	var update DailyUpdate
	if err := ctx.Bind(&update); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(update); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	taskID, _ := uuid.Parse(update.TaskID)
	du := usecase.DailyUpdate{
		TaskID: taskID,
		Body:   update.Body,
		BodyAr: update.BodyAr,
	}
	if update.Date != "" {
		du.Date, _ = time.Parse("2006-01-02", update.Date)
	}
	for _, a := range update.Attachments {
		du.Attachments = append(du.Attachments, usecase.Attachment{
			FileName: a.FileName,
			Path:     a.Path,
			Size:     a.Size,
			MIMEType: a.MIMEType,
		})
	}

	created, err := s.server.CreateDailyUpdate(ctx.Request().Context(), du)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: s.convertDailyUpdateFrom(ctx, created)})
}

func (s *Server) UpdateDailyUpdate(ctx echo.Context) error {
	var update DailyUpdate
	if err := ctx.Bind(&update); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(update); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	id, _ := uuid.Parse(update.ID)
	taskID, _ := uuid.Parse(update.TaskID)
	updated, err := s.server.UpdateDailyUpdate(ctx.Request().Context(), usecase.DailyUpdate{
		ID:     id,
		TaskID: taskID,
		Body:   update.Body,
		BodyAr: update.BodyAr,
	})
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: s.convertDailyUpdateFrom(ctx, updated)})
}

type DeleteDailyUpdateRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) DeleteDailyUpdate(ctx echo.Context) error {
	var req DeleteDailyUpdateRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	id, _ := uuid.Parse(req.ID)
	if err := s.server.DeleteDailyUpdate(ctx.Request().Context(), id); err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Message: "Daily update deleted"})
}

type MarkDailyUpdateReadRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) MarkDailyUpdateRead(ctx echo.Context) error {
	var req MarkDailyUpdateReadRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	id, _ := uuid.Parse(req.ID)
	if err := s.server.MarkDailyUpdateRead(ctx.Request().Context(), id); err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Message: "Marked as read"})
}
