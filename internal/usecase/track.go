package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Track groups tasks into a work stream for filtering and dashboards.
type Track struct {
	ID          uuid.UUID
	Name        string
	NameAr      string
	Description string
	OwnerID     *uuid.UUID
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time

	Owner *User
}

type ListTracksOption struct {
	Skip     int
	Limit    int
	Name     string
	OwnerIDs uuid.UUIDs
}

func (u Usecase) ListTracks(ctx context.Context, opt ListTracksOption) ([]Track, int, error) {
	return u.repo.ListTracks(ctx, opt)
}

func (u Usecase) GetTrackByID(ctx context.Context, id uuid.UUID) (Track, error) {
	return u.repo.GetTrackByID(ctx, id)
}

func (u Usecase) CreateTrack(ctx context.Context, track Track) (Track, error) {
	created, err := u.repo.CreateTrack(ctx, track)
	if err != nil {
		return Track{}, err
	}
	u.writeAuditLog(ctx, AuditLog{
		Action:     AuditActionCreate,
		EntityType: "TRACK",
		EntityID:   &created.ID,
		Details:    map[string]any{"name": created.Name},
	})
	return created, nil
}

func (u Usecase) UpdateTrack(ctx context.Context, track Track) (Track, error) {
	return u.repo.UpdateTrack(ctx, track)
}

func (u Usecase) DeleteTrack(ctx context.Context, id uuid.UUID) error {
	if err := u.repo.DeleteTrack(ctx, id); err != nil {
		return err
	}
	u.writeAuditLog(ctx, AuditLog{
		Action:     AuditActionDelete,
		EntityType: "TRACK",
		EntityID:   &id,
	})
	return nil
}
