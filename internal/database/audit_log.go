package database

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/monjez/monjez/internal/usecase"
)

type AuditLog struct {
	ID         uuid.UUID      `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	ActorID    *uuid.UUID     `gorm:"column:actor_id;type:uuid;index"`
	Actor      *User          `gorm:"foreignKey:ActorID;references:ID"`
	Action     string         `gorm:"column:action;type:varchar(32)"`
	EntityType string         `gorm:"column:entity_type;type:varchar(64);index"`
	EntityID   *uuid.UUID     `gorm:"column:entity_id;type:uuid;index"`
	Details    datatypes.JSON `gorm:"column:details"`
	CreatedAt  time.Time      `gorm:"column:created_at;index"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

func (a AuditLog) ConvertToUsecase() usecase.AuditLog {
	entry := usecase.AuditLog{
		ID:         a.ID,
		ActorID:    a.ActorID,
		Action:     usecase.AuditAction(a.Action),
		EntityType: a.EntityType,
		EntityID:   a.EntityID,
		CreatedAt:  a.CreatedAt,
	}
	if len(a.Details) > 0 {
		var details map[string]any
		if err := json.Unmarshal(a.Details, &details); err == nil {
			entry.Details = details
		}
	}
	return entry
}

func (s *service) CreateAuditLog(ctx context.Context, entry usecase.AuditLog) error {
	a := AuditLog{
		ActorID:    entry.ActorID,
		Action:     string(entry.Action),
		EntityType: entry.EntityType,
		EntityID:   entry.EntityID,
	}
	if len(entry.Details) > 0 {
		b, err := json.Marshal(entry.Details)
		if err != nil {
			return err
		}
		a.Details = b
	}
	return s.db.WithContext(ctx).Create(&a).Error
}

func (s *service) ListAuditLogs(ctx context.Context, opt usecase.ListAuditLogsOption) ([]usecase.AuditLog, int, error) {
	var (
		logs  []AuditLog
		count int64
	)

	db := s.db.Model([]AuditLog{}).WithContext(ctx)

	if len(opt.ActorIDs) > 0 {
		db = db.Where("actor_id IN ?", opt.ActorIDs)
	}
	if opt.EntityType != "" {
		db = db.Where("entity_type = ?", opt.EntityType)
	}
	if opt.EntityID != nil {
		db = db.Where("entity_id = ?", opt.EntityID)
	}
	if opt.From != nil {
		db = db.Where("created_at >= ?", opt.From)
	}
	if opt.To != nil {
		db = db.Where("created_at <= ?", opt.To)
	}

	err := db.
		Count(&count).
		Order("created_at desc").
		Limit(opt.Limit).
		Offset(opt.Skip).
		Find(&logs).
		Error
	if err != nil {
		return nil, 0, err
	}

	list := make([]usecase.AuditLog, 0, len(logs))
	for _, a := range logs {
		list = append(list, a.ConvertToUsecase())
	}
	return list, int(count), nil
}
