package database

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/joho/godotenv/autoload"
	"gorm.io/gorm"
)

// implements usecase.Repository
type service struct {
	db   *gorm.DB
	noti *notificationHub
}

// New wires the repository over an already-opened gorm DB. The optional
// pgx connection powers the LISTEN/NOTIFY notification hub; workers pass
// nil since they only write.
func New(gormDB *gorm.DB, notiConn *pgx.Conn) (*service, error) {
	if err := gormDB.AutoMigrate(
		User{},
		Track{},
		Task{},
		TaskAssignment{},
		DailyUpdate{},
		Attachment{},
		UpdateRead{},
		Notification{},
		AuditLog{},
	); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}

	db, err := gormDB.DB()
	if err != nil {
		return nil, err
	}

	// Overdue scans filter on due_date and the idempotency stamp; keep
	// the hot predicate indexed.
	if _, err := db.Exec(`
        CREATE INDEX IF NOT EXISTS idx_tasks_overdue_scan
        ON tasks (due_date)
        WHERE deleted_at IS NULL
        AND last_overdue_notified_at IS NULL;
    `); err != nil {
		return nil, err
	}

	// One read receipt per user per update.
	if _, err := db.Exec(`
        CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_update_read
        ON update_reads (update_id, user_id);
    `); err != nil {
		return nil, err
	}

	// Fan notification inserts out to listeners; the API process
	// forwards them to SSE/websocket sessions.
	if _, err := db.Exec(`
        CREATE OR REPLACE FUNCTION notify_notification_insert() RETURNS trigger AS $$
        BEGIN
            PERFORM pg_notify('notifications', row_to_json(NEW)::text);
            RETURN NEW;
        END;
        $$ LANGUAGE plpgsql;
    `); err != nil {
		return nil, err
	}
	if _, err := db.Exec(`
        DO $$ BEGIN
            CREATE TRIGGER trg_notifications_notify
            AFTER INSERT ON notifications
            FOR EACH ROW EXECUTE FUNCTION notify_notification_insert();
        EXCEPTION WHEN duplicate_object THEN NULL;
        END $$;
    `); err != nil {
		return nil, err
	}

	s := &service{db: gormDB}

	if notiConn != nil {
		if _, err := notiConn.Exec(context.Background(), "LISTEN notifications"); err != nil {
			return nil, fmt.Errorf("listen notifications: %w", err)
		}
		s.noti = NewNotificationHub(notiConn)
	}

	return s, nil
}

// Health checks the health of the database connection by pinging the
// database and reporting pool statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)

	db, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = err.Error()
		return stats
	}

	if err := db.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := db.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()

	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

// Close closes the database connection.
func (s *service) Close() error {
	db, err := s.db.DB()
	if err != nil {
		return err
	}
	log.Println("Disconnected from database")
	return db.Close()
}
