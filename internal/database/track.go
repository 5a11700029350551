package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/monjez/monjez/internal/usecase"
)

type Track struct {
	ID          uuid.UUID  `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	Name        string     `gorm:"column:name"`
	NameAr      string     `gorm:"column:name_ar"`
	Description string     `gorm:"column:description;type:text"`
	OwnerID     *uuid.UUID `gorm:"column:owner_id;type:uuid"`
	Owner       *User      `gorm:"foreignKey:OwnerID;references:ID"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	UpdatedAt   time.Time  `gorm:"column:updated_at"`
	DeletedAt   *gorm.DeletedAt
}

func (Track) TableName() string {
	return "tracks"
}

func (t Track) ConvertToUsecase() usecase.Track {
	var d *time.Time
	if t.DeletedAt != nil {
		d = &t.DeletedAt.Time
	}
	return usecase.Track{
		ID:          t.ID,
		Name:        t.Name,
		NameAr:      t.NameAr,
		Description: t.Description,
		OwnerID:     t.OwnerID,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
		DeletedAt:   d,
	}
}

func (s *service) ListTracks(ctx context.Context, opt usecase.ListTracksOption) ([]usecase.Track, int, error) {
	var (
		tracks []Track
		count  int64
	)

	db := s.db.Model([]Track{}).WithContext(ctx)

	if opt.Name != "" {
		db = db.Where("name ILIKE ? OR name_ar ILIKE ?", "%"+opt.Name+"%", "%"+opt.Name+"%")
	}
	if len(opt.OwnerIDs) > 0 {
		db = db.Where("owner_id IN ?", opt.OwnerIDs)
	}

	err := db.
		Preload("Owner").
		Count(&count).
		Order("created_at desc").
		Limit(opt.Limit).
		Offset(opt.Skip).
		Find(&tracks).
		Error
	if err != nil {
		return nil, 0, err
	}

	list := make([]usecase.Track, 0, len(tracks))
	for _, t := range tracks {
		ut := t.ConvertToUsecase()
		if t.Owner != nil {
			owner := t.Owner.ConvertToUsecase()
			ut.Owner = &owner
		}
		list = append(list, ut)
	}
	return list, int(count), nil
}

func (s *service) GetTrackByID(ctx context.Context, id uuid.UUID) (usecase.Track, error) {
	var t Track
	if err := s.db.WithContext(ctx).Preload("Owner").Where("id = ?", id).First(&t).Error; err != nil {
		return usecase.Track{}, err
	}
	ut := t.ConvertToUsecase()
	if t.Owner != nil {
		owner := t.Owner.ConvertToUsecase()
		ut.Owner = &owner
	}
	return ut, nil
}

func (s *service) CreateTrack(ctx context.Context, track usecase.Track) (usecase.Track, error) {
	t := Track{
		Name:        track.Name,
		NameAr:      track.NameAr,
		Description: track.Description,
		OwnerID:     track.OwnerID,
	}
	if err := s.db.WithContext(ctx).Create(&t).Error; err != nil {
		return usecase.Track{}, err
	}
	return t.ConvertToUsecase(), nil
}

func (s *service) UpdateTrack(ctx context.Context, track usecase.Track) (usecase.Track, error) {
	t := Track{
		ID:          track.ID,
		Name:        track.Name,
		NameAr:      track.NameAr,
		Description: track.Description,
		OwnerID:     track.OwnerID,
	}
	if err := s.db.WithContext(ctx).Updates(&t).Error; err != nil {
		return usecase.Track{}, err
	}
	return s.GetTrackByID(ctx, track.ID)
}

func (s *service) DeleteTrack(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&Track{}, id).Error
}
