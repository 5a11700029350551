package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const dashboardCacheKey = "dashboard:summary"
const dashboardCacheTTL = 5 * time.Minute

type TrackTaskCount struct {
	TrackID   uuid.UUID
	TrackName string
	Total     int
	Overdue   int
}

type DashboardSummary struct {
	TasksByStatus map[TaskStatus]int `json:"tasks_by_status"`
	OverdueCount  int                `json:"overdue_count"`
	ByTrack       []TrackTaskCount   `json:"by_track"`
	GeneratedAt   time.Time          `json:"generated_at"`
}

// GetDashboardSummary aggregates the executive dashboard counts. The
// result is cached for a few minutes; the dashboard tolerates staleness.
func (u Usecase) GetDashboardSummary(ctx context.Context) (DashboardSummary, error) {
	if u.cache != nil {
		if b, err := u.cache.Get(ctx, dashboardCacheKey); err == nil && len(b) > 0 {
			var cached DashboardSummary
			if err := json.Unmarshal(b, &cached); err == nil {
				return cached, nil
			}
		}
	}

	now := time.Now()

	byStatus, err := u.repo.CountTasksByStatus(ctx)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("count tasks by status: %w", err)
	}
	overdue, err := u.repo.CountOverdueTasks(ctx, now)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("count overdue tasks: %w", err)
	}
	byTrack, err := u.repo.CountTasksByTrack(ctx)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("count tasks by track: %w", err)
	}

	summary := DashboardSummary{
		TasksByStatus: byStatus,
		OverdueCount:  overdue,
		ByTrack:       byTrack,
		GeneratedAt:   now,
	}

	if u.cache != nil {
		if b, err := json.Marshal(summary); err == nil {
			if err := u.cache.Set(ctx, dashboardCacheKey, b, dashboardCacheTTL); err != nil {
				fmt.Printf("dashboard: cache set: %v\n", err)
			}
		}
	}

	return summary, nil
}
