package queue

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"

	"github.com/monjez/monjez/internal/config"
)

// Scheduler registers the cron entries driving the overdue pipeline and
// enqueues the corresponding tasks on schedule. Runs as its own process
// so exactly one instance owns the timers.
type Scheduler struct {
	scheduler *asynq.Scheduler
	logger    *slog.Logger
}

func NewScheduler(logger *slog.Logger) (*Scheduler, error) {
	redisAddr := fmt.Sprintf("%s:%s",
		os.Getenv(config.ENV_KEY_REDIS_HOST),
		os.Getenv(config.ENV_KEY_REDIS_PORT),
	)
	redisPassword := os.Getenv(config.ENV_KEY_REDIS_PASSWORD)

	scheduler := asynq.NewScheduler(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
		},
		&asynq.SchedulerOpts{
			// Cron expressions below are wall-clock UTC; the daily
			// reminder at 06:00 UTC is 09:00 in the reference timezone.
			Location: time.UTC,
		},
	)

	entries := []struct {
		cronspec string
		task     *asynq.Task
	}{
		{"*/15 * * * *", asynq.NewTask(TaskOverdueScan, nil)},
		{"0 6 * * *", asynq.NewTask(TaskOverdueDailyReminder, nil)},
	}

	for _, e := range entries {
		id, err := scheduler.Register(e.cronspec, e.task, asynq.Queue("low"))
		if err != nil {
			return nil, fmt.Errorf("register %s: %w", e.task.Type(), err)
		}
		logger.Info("Registered periodic task",
			slog.String("task", e.task.Type()),
			slog.String("cron", e.cronspec),
			slog.String("entry_id", id),
		)
	}

	return &Scheduler{
		scheduler: scheduler,
		logger:    logger,
	}, nil
}

// Start starts the scheduler loop.
func (s *Scheduler) Start() error {
	s.logger.Info("Scheduler started successfully")
	return s.scheduler.Start()
}

// Stop stops the scheduler gracefully.
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler...")
	s.scheduler.Shutdown()
}
