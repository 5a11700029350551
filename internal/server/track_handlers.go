package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/monjez/monjez/internal/usecase"
)

type Track struct {
	ID          string `json:"id" param:"id"`
	Name        string `json:"name" validate:"required"`
	NameAr      string `json:"name_ar,omitempty"`
	Description string `json:"description,omitempty"`
	OwnerID     string `json:"owner_id,omitempty" validate:"omitempty,uuid"`
	CreatedAt   string `json:"created_at,omitempty"`
	UpdatedAt   string `json:"updated_at,omitempty"`
	Owner       *User  `json:"owner,omitempty"`
}

func ConvertTrackFrom(t usecase.Track) Track {
	track := Track{
		ID:          t.ID.String(),
		Name:        t.Name,
		NameAr:      t.NameAr,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   t.UpdatedAt.Format(time.RFC3339),
	}
	if t.OwnerID != nil {
		track.OwnerID = t.OwnerID.String()
	}
	if t.Owner != nil {
		track.Owner = &User{
			ID:   t.Owner.ID.String(),
			Name: t.Owner.Name,
		}
	}
	return track
}

type ListTracksRequest struct {
	Skip    int    `query:"skip"`
	Limit   int    `query:"limit" validate:"required,gte=1,lte=100"`
	Name    string `query:"name" validate:"omitempty"`
	OwnerID string `query:"owner_id" validate:"omitempty,uuid"`
}

func (s *Server) ListTracks(ctx echo.Context) error {
	var req ListTracksRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	opt := usecase.ListTracksOption{
		Skip:  req.Skip,
		Limit: req.Limit,
		Name:  req.Name,
	}
	if req.OwnerID != "" {
		id, _ := uuid.Parse(req.OwnerID)
		opt.OwnerIDs = uuid.UUIDs{id}
	}

	tracks, total, err := s.server.ListTracks(ctx.Request().Context(), opt)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	list := make([]Track, 0, len(tracks))
	for _, t := range tracks {
		list = append(list, ConvertTrackFrom(t))
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

type GetTrackByIDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) GetTrackByID(ctx echo.Context) error {
	var req GetTrackByIDRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	id, _ := uuid.Parse(req.ID)
	t, err := s.server.GetTrackByID(ctx.Request().Context(), id)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: ConvertTrackFrom(t)})
}

func (s *Server) CreateTrack(ctx echo.Context) error {
	var track Track
	if err := ctx.Bind(&track); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(track); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	t := usecase.Track{
		Name:        track.Name,
		NameAr:      track.NameAr,
		Description: track.Description,
	}
	if track.OwnerID != "" {
		id, _ := uuid.Parse(track.OwnerID)
		t.OwnerID = &id
	}

	created, err := s.server.CreateTrack(ctx.Request().Context(), t)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: ConvertTrackFrom(created)})
}

func (s *Server) UpdateTrack(ctx echo.Context) error {
	var track Track
	if err := ctx.Bind(&track); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(track); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	id, _ := uuid.Parse(track.ID)
	t := usecase.Track{
		ID:          id,
		Name:        track.Name,
		NameAr:      track.NameAr,
		Description: track.Description,
	}
	if track.OwnerID != "" {
		oid, _ := uuid.Parse(track.OwnerID)
		t.OwnerID = &oid
	}

	updated, err := s.server.UpdateTrack(ctx.Request().Context(), t)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: ConvertTrackFrom(updated)})
}

type DeleteTrackRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) DeleteTrack(ctx echo.Context) error {
	var req DeleteTrackRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	id, _ := uuid.Parse(req.ID)
	if err := s.server.DeleteTrack(ctx.Request().Context(), id); err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Message: "Track deleted"})
}
