package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	_ "github.com/joho/godotenv/autoload"

	"github.com/monjez/monjez/internal/cache"
	"github.com/monjez/monjez/internal/config"
	"github.com/monjez/monjez/internal/database"
	"github.com/monjez/monjez/internal/filestorage"
	"github.com/monjez/monjez/internal/realtime"
	"github.com/monjez/monjez/internal/usecase"
)

// Service is the usecase surface consumed by the HTTP handlers.
type Service interface {
	Health() map[string]string
	Close() error

	Login(ctx context.Context, email, password string) (string, usecase.User, error)
	VerifyToken(ctx context.Context, token string) (uuid.UUID, string, error)

	ListUsers(context.Context, usecase.ListUsersOption) ([]usecase.User, int, error)
	GetUserByID(context.Context, uuid.UUID) (usecase.User, error)
	GetMe(context.Context) (usecase.User, error)
	CreateUser(context.Context, usecase.User) (usecase.User, error)
	UpdateUser(context.Context, usecase.User) (usecase.User, error)
	DeleteUser(context.Context, uuid.UUID) error

	ListTracks(context.Context, usecase.ListTracksOption) ([]usecase.Track, int, error)
	GetTrackByID(context.Context, uuid.UUID) (usecase.Track, error)
	CreateTrack(context.Context, usecase.Track) (usecase.Track, error)
	UpdateTrack(context.Context, usecase.Track) (usecase.Track, error)
	DeleteTrack(context.Context, uuid.UUID) error

	ListTasks(context.Context, usecase.ListTasksOption) ([]usecase.Task, int, error)
	GetTaskByID(context.Context, uuid.UUID) (usecase.Task, error)
	CreateTask(context.Context, usecase.Task) (usecase.Task, error)
	UpdateTask(context.Context, usecase.Task) (usecase.Task, error)
	DeleteTask(context.Context, uuid.UUID) error
	AssignTaskUser(ctx context.Context, taskID, userID uuid.UUID) error
	UnassignTaskUser(ctx context.Context, taskID, userID uuid.UUID) error

	ListDailyUpdates(context.Context, usecase.ListDailyUpdatesOption) ([]usecase.DailyUpdate, int, error)
	GetDailyUpdateByID(context.Context, uuid.UUID) (usecase.DailyUpdate, error)
	CreateDailyUpdate(context.Context, usecase.DailyUpdate) (usecase.DailyUpdate, error)
	UpdateDailyUpdate(context.Context, usecase.DailyUpdate) (usecase.DailyUpdate, error)
	DeleteDailyUpdate(context.Context, uuid.UUID) error
	MarkDailyUpdateRead(ctx context.Context, updateID uuid.UUID) error

	ListNotifications(context.Context, usecase.ListNotificationsOption) ([]usecase.Notification, int, int, error)
	ReadNotification(context.Context, uuid.UUID) error
	ReadAllNotifications(context.Context) error
	StreamNotifications(ctx context.Context, userID uuid.UUID) (<-chan usecase.Notification, error)

	GetDashboardSummary(context.Context) (usecase.DashboardSummary, error)

	ListAuditLogs(context.Context, usecase.ListAuditLogsOption) ([]usecase.AuditLog, int, error)

	GetTempUploadURL(ctx context.Context, name string) (string, string, error)
	GetAttachmentURL(ctx context.Context, updateID uuid.UUID, fileName string) (string, error)
}

type Server struct {
	port int

	server    Service
	validator *validator.Validate
	hub       *realtime.Hub
	local     *filestorage.LocalStorage
	logger    *slog.Logger
}

// App bundles the HTTP server with the resources it owns.
type App struct {
	httpServer *http.Server
	service    Service
	redis      *cache.RedisCache
}

// NewApp wires the API process: repository with its LISTEN connection,
// realtime hub, file storage, cache and the Echo routing on top.
func NewApp(logger *slog.Logger) (*App, error) {
	ctx := context.Background()

	gormDB, sqlDB, err := database.Open(logger)
	if err != nil {
		return nil, err
	}

	// Dedicated connections for LISTEN/NOTIFY; the pool can't hold a
	// connection in permanent listen state.
	notiConn, err := pgx.Connect(ctx, database.ConnString())
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connect notification listener: %w", err)
	}
	eventConn, err := pgx.Connect(ctx, database.ConnString())
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("connect event listener: %w", err)
	}

	repo, err := database.New(gormDB, notiConn)
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("create repository: %w", err)
	}

	fsp, err := filestorage.NewFromEnv()
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("create file storage: %w", err)
	}
	local, _ := fsp.(*filestorage.LocalStorage)

	hub := realtime.NewHub()
	go func() {
		if err := hub.Listen(ctx, eventConn); err != nil {
			logger.Error("Realtime listener stopped", slog.String("err", err.Error()))
		}
	}()

	redisCache := cache.NewRedisCache(
		fmt.Sprintf("%s:%s", os.Getenv(config.ENV_KEY_REDIS_HOST), os.Getenv(config.ENV_KEY_REDIS_PORT)),
		os.Getenv(config.ENV_KEY_REDIS_PASSWORD),
	)

	uc := usecase.New(repo, fsp, nil, hub, redisCache)

	port, _ := strconv.Atoi(os.Getenv(config.ENV_KEY_PORT))
	s := &Server{
		port:      port,
		server:    uc,
		validator: validator.New(),
		hub:       hub,
		local:     local,
		logger:    logger,
	}

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return &App{
		httpServer: httpServer,
		service:    uc,
		redis:      redisCache,
	}, nil
}

func (a *App) Addr() string {
	return a.httpServer.Addr
}

func (a *App) ListenAndServe() error {
	return a.httpServer.ListenAndServe()
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if err := a.redis.Close(); err != nil {
		return err
	}
	return a.service.Close()
}
