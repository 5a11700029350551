package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/monjez/monjez/internal/config"
)

type AuditAction string

const (
	AuditActionCreate AuditAction = "CREATE"
	AuditActionUpdate AuditAction = "UPDATE"
	AuditActionDelete AuditAction = "DELETE"
)

type AuditLog struct {
	ID         uuid.UUID
	ActorID    *uuid.UUID
	Action     AuditAction
	EntityType string
	EntityID   *uuid.UUID
	Details    map[string]any
	CreatedAt  time.Time
}

type ListAuditLogsOption struct {
	Skip       int
	Limit      int
	ActorIDs   uuid.UUIDs
	EntityType string
	EntityID   *uuid.UUID
	From       *time.Time
	To         *time.Time
}

func (u Usecase) ListAuditLogs(ctx context.Context, opt ListAuditLogsOption) ([]AuditLog, int, error) {
	role, ok := ctx.Value(config.CTX_KEY_USER_ROLE).(string)
	if !ok {
		return nil, 0, fmt.Errorf("user role not found in context")
	}
	if role != string(UserRoleAdmin) {
		return nil, 0, fmt.Errorf("audit logs are admin only")
	}
	return u.repo.ListAuditLogs(ctx, opt)
}

// writeAuditLog records the action best effort; a failed audit write
// never fails the operation it describes.
func (u Usecase) writeAuditLog(ctx context.Context, entry AuditLog) {
	if actorID, ok := ctx.Value(config.CTX_KEY_USER_ID).(uuid.UUID); ok {
		entry.ActorID = &actorID
	}
	if err := u.repo.CreateAuditLog(ctx, entry); err != nil {
		fmt.Printf("audit: failed to write log: %v\n", err)
	}
}
