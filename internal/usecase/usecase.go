package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"
)

func New(
	repo Repository,
	fsp FileStorageProvider,
	mp EmailProvider,
	bus EventBus,
	cache CacheProvider,
) Usecase {
	return Usecase{
		repo:                repo,
		fileStorageProvider: fsp,
		mailProvider:        mp,
		eventBus:            bus,
		cache:               cache,
	}
}

// Repository is implemented by internal/database.
type Repository interface {
	Health() map[string]string
	Close() error

	ListUsers(context.Context, ListUsersOption) ([]User, int, error)
	GetUserByID(context.Context, uuid.UUID) (User, error)
	GetUserByEmail(context.Context, string) (User, error)
	CreateUser(context.Context, User) (User, error)
	UpdateUser(context.Context, User) (User, error)
	DeleteUser(context.Context, uuid.UUID) error

	ListTracks(context.Context, ListTracksOption) ([]Track, int, error)
	GetTrackByID(context.Context, uuid.UUID) (Track, error)
	CreateTrack(context.Context, Track) (Track, error)
	UpdateTrack(context.Context, Track) (Track, error)
	DeleteTrack(context.Context, uuid.UUID) error

	ListTasks(context.Context, ListTasksOption) ([]Task, int, error)
	GetTaskByID(context.Context, uuid.UUID) (Task, error)
	CreateTask(context.Context, Task) (Task, error)
	UpdateTask(context.Context, Task) (Task, error)
	DeleteTask(context.Context, uuid.UUID) error
	AssignTaskUser(ctx context.Context, taskID, userID uuid.UUID) error
	UnassignTaskUser(ctx context.Context, taskID, userID uuid.UUID) error

	// Overdue pipeline queries. Both exclude soft-deleted tasks and
	// terminal statuses; they partition on last_overdue_notified_at.
	ListOverdueUnnotifiedTasks(ctx context.Context, now time.Time, limit int) ([]Task, error)
	ListOverdueNotifiedTasks(ctx context.Context, now time.Time, limit int) ([]Task, error)
	MarkTaskOverdueNotified(ctx context.Context, id uuid.UUID, ts time.Time) error

	ListDailyUpdates(context.Context, ListDailyUpdatesOption) ([]DailyUpdate, int, error)
	GetDailyUpdateByID(context.Context, uuid.UUID) (DailyUpdate, error)
	CreateDailyUpdate(context.Context, DailyUpdate) (DailyUpdate, error)
	UpdateDailyUpdate(context.Context, DailyUpdate) (DailyUpdate, error)
	DeleteDailyUpdate(context.Context, uuid.UUID) error
	MarkDailyUpdateRead(ctx context.Context, updateID, userID uuid.UUID) error

	CreateNotificationForUsers(ctx context.Context, userIDs []uuid.UUID, n Notification) error
	ListNotifications(context.Context, ListNotificationsOption) ([]Notification, int, int, error)
	ReadNotification(context.Context, uuid.UUID) error
	ReadAllNotifications(context.Context, uuid.UUID) error
	CountUnreadNotifications(context.Context, uuid.UUID) (int, error)
	SubscribeNotifications(context.Context, chan<- Notification) error
	UnsubscribeNotifications(context.Context, chan<- Notification) error

	CreateAuditLog(context.Context, AuditLog) error
	ListAuditLogs(context.Context, ListAuditLogsOption) ([]AuditLog, int, error)

	CountTasksByStatus(context.Context) (map[TaskStatus]int, error)
	CountOverdueTasks(ctx context.Context, now time.Time) (int, error)
	CountTasksByTrack(context.Context) ([]TrackTaskCount, error)
}

// FileStorageProvider abstracts the object store. Implemented by
// internal/filestorage for MinIO and the local filesystem.
type FileStorageProvider interface {
	GetPublicURL(ctx context.Context) (string, error)
	GetTempUploadURL(ctx context.Context, name string) (string, string, error)
	MoveTempFilePublic(ctx context.Context, source string, dest string) error
	GetPresignedURL(ctx context.Context, path string) (string, error)
}

type EmailProvider interface {
	SendEmail(ctx context.Context, email Email) error
}

// EventBus pushes a lightweight event to a connected user session.
// Fire-and-forget; delivery is not confirmed.
type EventBus interface {
	EmitToUser(ctx context.Context, userID uuid.UUID, event string, payload any) error
}

type CacheProvider interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

type Usecase struct {
	repo                Repository
	fileStorageProvider FileStorageProvider
	mailProvider        EmailProvider
	eventBus            EventBus
	cache               CacheProvider
}

func (u Usecase) Health() map[string]string {
	return u.repo.Health()
}

func (u Usecase) Close() error {
	return u.repo.Close()
}
