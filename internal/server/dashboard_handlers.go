package server

import (
	"time"

	"github.com/labstack/echo/v4"
)

type TrackTaskCount struct {
	TrackID   string `json:"track_id"`
	TrackName string `json:"track_name"`
	Total     int    `json:"total"`
	Overdue   int    `json:"overdue"`
}

type DashboardSummary struct {
	TasksByStatus map[string]int   `json:"tasks_by_status"`
	OverdueCount  int              `json:"overdue_count"`
	ByTrack       []TrackTaskCount `json:"by_track"`
	GeneratedAt   string           `json:"generated_at"`
}

func (s *Server) GetDashboardSummary(ctx echo.Context) error {
	summary, err := s.server.GetDashboardSummary(ctx.Request().Context())
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	res := DashboardSummary{
		TasksByStatus: make(map[string]int, len(summary.TasksByStatus)),
		OverdueCount:  summary.OverdueCount,
		GeneratedAt:   summary.GeneratedAt.Format(time.RFC3339),
	}
	for status, count := range summary.TasksByStatus {
		res.TasksByStatus[string(status)] = count
	}
	for _, tc := range summary.ByTrack {
		res.ByTrack = append(res.ByTrack, TrackTaskCount{
			TrackID:   tc.TrackID.String(),
			TrackName: tc.TrackName,
			Total:     tc.Total,
			Overdue:   tc.Overdue,
		})
	}

	return ctx.JSON(200, Res{Data: res})
}
