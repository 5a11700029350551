package handlers

import (
	"context"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"

	"github.com/monjez/monjez/internal/usecase"
)

// HandleOverdueScan runs the 15-minute overdue pass. Scan failures are
// logged and swallowed: a failed run must not be retried by the queue,
// the next tick picks up where it left off.
func (h *Handlers) HandleOverdueScan(ctx context.Context, _ *asynq.Task) error {
	res := h.usecase.RunOverdueScan(ctx, time.Now().UTC(), usecase.OverdueScanOption{})
	h.logScanResult(ctx, "overdue scan", res)
	return nil
}

// HandleDailyReminder runs the daily reminder pass over tasks already
// notified once.
func (h *Handlers) HandleDailyReminder(ctx context.Context, _ *asynq.Task) error {
	res := h.usecase.RunDailyReminderScan(ctx, time.Now().UTC(), usecase.OverdueScanOption{})
	h.logScanResult(ctx, "daily reminder", res)
	return nil
}

func (h *Handlers) logScanResult(ctx context.Context, name string, res usecase.ScanResult) {
	attrs := []any{
		slog.String("scan", name),
		slog.Int("processed", res.Processed),
	}
	if res.Err == nil {
		h.logger.InfoContext(ctx, "Scan completed", attrs...)
		return
	}
	if res.FailedTaskID != nil {
		attrs = append(attrs, slog.String("failed_task_id", res.FailedTaskID.String()))
	}
	attrs = append(attrs, slog.String("err", res.Err.Error()))
	h.logger.ErrorContext(ctx, "Scan aborted", attrs...)
}
