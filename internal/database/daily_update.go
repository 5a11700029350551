package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/monjez/monjez/internal/usecase"
)

type DailyUpdate struct {
	ID        uuid.UUID `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	TaskID    uuid.UUID `gorm:"column:task_id;type:uuid;index"`
	Task      *Task     `gorm:"foreignKey:TaskID;references:ID"`
	AuthorID  uuid.UUID `gorm:"column:author_id;type:uuid"`
	Author    *User     `gorm:"foreignKey:AuthorID;references:ID"`
	Date      time.Time `gorm:"column:date;type:date;index"`
	Body      string    `gorm:"column:body;type:text"`
	BodyAr    string    `gorm:"column:body_ar;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
	DeletedAt *gorm.DeletedAt

	Attachments []Attachment `gorm:"foreignKey:UpdateID;references:ID"`
	ReadBy      []UpdateRead `gorm:"foreignKey:UpdateID;references:ID"`
}

func (DailyUpdate) TableName() string {
	return "daily_updates"
}

type Attachment struct {
	ID        uuid.UUID      `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	UpdateID  uuid.UUID      `gorm:"column:update_id;type:uuid;index"`
	FileName  string         `gorm:"column:file_name"`
	Path      string         `gorm:"column:path"`
	Size      int64          `gorm:"column:size"`
	MIMEType  string         `gorm:"column:mime_type"`
	Colors    datatypes.JSON `gorm:"column:colors"`
	CreatedAt time.Time      `gorm:"column:created_at"`
}

func (Attachment) TableName() string {
	return "attachments"
}

type UpdateRead struct {
	UpdateID  uuid.UUID `gorm:"column:update_id;primaryKey;type:uuid"`
	UserID    uuid.UUID `gorm:"column:user_id;primaryKey;type:uuid"`
	ReadAt    time.Time `gorm:"column:read_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (UpdateRead) TableName() string {
	return "update_reads"
}

func (d DailyUpdate) ConvertToUsecase() usecase.DailyUpdate {
	var del *time.Time
	if d.DeletedAt != nil {
		del = &d.DeletedAt.Time
	}
	ud := usecase.DailyUpdate{
		ID:        d.ID,
		TaskID:    d.TaskID,
		AuthorID:  d.AuthorID,
		Date:      d.Date,
		Body:      d.Body,
		BodyAr:    d.BodyAr,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
		DeletedAt: del,
	}
	for _, a := range d.Attachments {
		ud.Attachments = append(ud.Attachments, usecase.Attachment{
			ID:        a.ID,
			UpdateID:  a.UpdateID,
			FileName:  a.FileName,
			Path:      a.Path,
			Size:      a.Size,
			MIMEType:  a.MIMEType,
			Colors:    []byte(a.Colors),
			CreatedAt: a.CreatedAt,
		})
	}
	for _, r := range d.ReadBy {
		ud.ReadBy = append(ud.ReadBy, usecase.UpdateRead{
			UpdateID: r.UpdateID,
			UserID:   r.UserID,
			ReadAt:   r.ReadAt,
		})
	}
	if d.Task != nil {
		task := d.Task.ConvertToUsecase()
		ud.Task = &task
	}
	if d.Author != nil {
		author := d.Author.ConvertToUsecase()
		ud.Author = &author
	}
	return ud
}

func (s *service) ListDailyUpdates(ctx context.Context, opt usecase.ListDailyUpdatesOption) ([]usecase.DailyUpdate, int, error) {
	var (
		updates []DailyUpdate
		count   int64
	)

	db := s.db.Model([]DailyUpdate{}).WithContext(ctx)

	if len(opt.TaskIDs) > 0 {
		db = db.Where("task_id IN ?", opt.TaskIDs)
	}
	if opt.AuthorID != uuid.Nil {
		db = db.Where("author_id = ?", opt.AuthorID)
	}
	if opt.DateFrom != nil {
		db = db.Where("date >= ?", opt.DateFrom)
	}
	if opt.DateTo != nil {
		db = db.Where("date <= ?", opt.DateTo)
	}

	err := db.
		Preload("Attachments").
		Preload("ReadBy").
		Preload("Author").
		Count(&count).
		Order("date desc, created_at desc").
		Limit(opt.Limit).
		Offset(opt.Skip).
		Find(&updates).
		Error
	if err != nil {
		return nil, 0, err
	}

	list := make([]usecase.DailyUpdate, 0, len(updates))
	for _, d := range updates {
		list = append(list, d.ConvertToUsecase())
	}
	return list, int(count), nil
}

func (s *service) GetDailyUpdateByID(ctx context.Context, id uuid.UUID) (usecase.DailyUpdate, error) {
	var d DailyUpdate
	err := s.db.WithContext(ctx).
		Preload("Attachments").
		Preload("ReadBy").
		Preload("Task").
		Preload("Author").
		Where("id = ?", id).
		First(&d).
		Error
	if err != nil {
		return usecase.DailyUpdate{}, err
	}
	return d.ConvertToUsecase(), nil
}

func (s *service) CreateDailyUpdate(ctx context.Context, update usecase.DailyUpdate) (usecase.DailyUpdate, error) {
	d := DailyUpdate{
		TaskID:   update.TaskID,
		AuthorID: update.AuthorID,
		Date:     update.Date,
		Body:     update.Body,
		BodyAr:   update.BodyAr,
	}
	for _, a := range update.Attachments {
		d.Attachments = append(d.Attachments, Attachment{
			FileName: a.FileName,
			Path:     a.Path,
			Size:     a.Size,
			MIMEType: a.MIMEType,
		})
	}
	if err := s.db.WithContext(ctx).Clauses(clause.Returning{}).Create(&d).Error; err != nil {
		return usecase.DailyUpdate{}, err
	}
	return d.ConvertToUsecase(), nil
}

func (s *service) UpdateDailyUpdate(ctx context.Context, update usecase.DailyUpdate) (usecase.DailyUpdate, error) {
	d := DailyUpdate{
		ID:     update.ID,
		Body:   update.Body,
		BodyAr: update.BodyAr,
	}
	if err := s.db.WithContext(ctx).Updates(&d).Error; err != nil {
		return usecase.DailyUpdate{}, err
	}

	// Attachment metadata updates (dominant colors) arrive through the
	// same path keyed by attachment id.
	for _, a := range update.Attachments {
		if a.ID == uuid.Nil || len(a.Colors) == 0 {
			continue
		}
		if err := s.db.WithContext(ctx).
			Model(&Attachment{}).
			Where("id = ?", a.ID).
			Update("colors", datatypes.JSON(a.Colors)).Error; err != nil {
			return usecase.DailyUpdate{}, err
		}
	}

	return s.GetDailyUpdateByID(ctx, update.ID)
}

func (s *service) DeleteDailyUpdate(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&DailyUpdate{}, id).Error
}

func (s *service) MarkDailyUpdateRead(ctx context.Context, updateID, userID uuid.UUID) error {
	r := UpdateRead{
		UpdateID: updateID,
		UserID:   userID,
		ReadAt:   time.Now(),
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&r).Error
}
