package queue

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"
	_ "github.com/joho/godotenv/autoload"
	"gorm.io/gorm"

	"github.com/monjez/monjez/internal/config"
	"github.com/monjez/monjez/internal/database"
	"github.com/monjez/monjez/internal/email"
	"github.com/monjez/monjez/internal/filestorage"
	"github.com/monjez/monjez/internal/queue/handlers"
	"github.com/monjez/monjez/internal/realtime"
	"github.com/monjez/monjez/internal/usecase"
)

// Server wraps asynq.Server for processing tasks
type Server struct {
	asynqServer *asynq.Server
	mux         *asynq.ServeMux
	gormDB      *gorm.DB
	sqlDB       *sql.DB
	logger      *slog.Logger
}

// Worker represents a worker application with all its dependencies
type Worker struct {
	server *Server
}

// NewWorker creates a fully configured worker with all dependencies
func NewWorker(logger *slog.Logger) (*Worker, error) {
	logger.Info("Initializing worker dependencies...")

	gormDB, sqlDB, err := database.Open(logger)
	if err != nil {
		return nil, err
	}

	// Workers don't serve sessions, so no pgx listen connection.
	repo, err := database.New(gormDB, nil)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("create repository: %w", err)
	}

	fsp, err := filestorage.NewFromEnv()
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("create file storage: %w", err)
	}

	// Overdue digest mail is optional; without SMTP config the daily
	// scan simply skips it.
	var mp usecase.EmailProvider
	if os.Getenv(config.ENV_KEY_SMTP_HOST) != "" {
		mp = email.NewEmailProvider(
			os.Getenv(config.ENV_KEY_SMTP_HOST),
			os.Getenv(config.ENV_KEY_SMTP_USERNAME),
			os.Getenv(config.ENV_KEY_SMTP_PASSWORD),
			os.Getenv(config.ENV_KEY_SMTP_PORT),
		)
	}

	// Realtime events cross process boundaries via pg_notify; the API
	// side forwards them to websocket sessions.
	bus := realtime.NewPublisher(sqlDB)

	uc := usecase.New(repo, fsp, mp, bus, nil)

	redisAddr := fmt.Sprintf("%s:%s",
		os.Getenv(config.ENV_KEY_REDIS_HOST),
		os.Getenv(config.ENV_KEY_REDIS_PORT),
	)
	redisPassword := os.Getenv(config.ENV_KEY_REDIS_PASSWORD)

	workerConcurrency := 10
	if wc := os.Getenv(config.ENV_KEY_WORKER_CONCURRENCY); wc != "" {
		var n int
		if _, err := fmt.Sscanf(wc, "%d", &n); err == nil && n > 0 {
			workerConcurrency = n
		}
	}

	asynqServer := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     redisAddr,
			Password: redisPassword,
		},
		asynq.Config{
			Concurrency: workerConcurrency,
			Queues: map[string]int{
				"critical": 6,
				"default":  3,
				"low":      1,
			},
		},
	)

	mux := asynq.NewServeMux()

	h := handlers.NewHandlers(uc, logger)

	mux.HandleFunc(TaskOverdueScan, h.HandleOverdueScan)
	mux.HandleFunc(TaskOverdueDailyReminder, h.HandleDailyReminder)

	logger.Info("Worker registered handlers",
		slog.String("tasks", TaskOverdueScan+", "+TaskOverdueDailyReminder))

	server := &Server{
		asynqServer: asynqServer,
		mux:         mux,
		gormDB:      gormDB,
		sqlDB:       sqlDB,
		logger:      logger,
	}

	return &Worker{
		server: server,
	}, nil
}

// Start starts the worker server
func (w *Worker) Start() error {
	w.server.logger.Info("Worker started successfully")
	return w.server.asynqServer.Start(w.server.mux)
}

// Stop stops the worker server gracefully
func (w *Worker) Stop() {
	w.server.logger.Info("Stopping worker...")
	w.server.asynqServer.Shutdown()

	if w.server.sqlDB != nil {
		if err := w.server.sqlDB.Close(); err != nil {
			w.server.logger.Error("Error closing database", slog.String("err", err.Error()))
		}
	}
}
