package database

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"github.com/monjez/monjez/internal/usecase"
)

type Notification struct {
	ID         uuid.UUID       `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()" json:"id"`
	UserID     uuid.UUID       `gorm:"column:user_id;type:uuid;index" json:"user_id"`
	User       *User           `gorm:"foreignKey:UserID;references:ID" json:"-"`
	Type       string          `gorm:"column:type;type:varchar(64)" json:"type"`
	Title      string          `gorm:"column:title" json:"title"`
	TitleAr    string          `gorm:"column:title_ar" json:"title_ar"`
	Body       string          `gorm:"column:body;type:text" json:"body"`
	BodyAr     string          `gorm:"column:body_ar;type:text" json:"body_ar"`
	EntityType string          `gorm:"column:entity_type;type:varchar(64)" json:"entity_type"`
	EntityID   *uuid.UUID      `gorm:"column:entity_id;type:uuid" json:"entity_id"`
	TrackID    *uuid.UUID      `gorm:"column:track_id;type:uuid" json:"track_id"`
	CreatedAt  time.Time       `gorm:"column:created_at" json:"created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at" json:"updated_at"`
	ReadAt     *time.Time      `gorm:"column:read_at" json:"read_at"`
	DeletedAt  *gorm.DeletedAt `json:"-"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n Notification) ConvertToUsecase() usecase.Notification {
	var d *time.Time
	if n.DeletedAt != nil {
		d = &n.DeletedAt.Time
	}
	return usecase.Notification{
		ID:         n.ID,
		UserID:     n.UserID,
		Type:       usecase.NotificationType(n.Type),
		Title:      n.Title,
		TitleAr:    n.TitleAr,
		Body:       n.Body,
		BodyAr:     n.BodyAr,
		EntityType: n.EntityType,
		EntityID:   n.EntityID,
		TrackID:    n.TrackID,
		CreatedAt:  n.CreatedAt,
		UpdatedAt:  n.UpdatedAt,
		ReadAt:     n.ReadAt,
		DeletedAt:  d,
	}
}

// CreateNotificationForUsers inserts one row per recipient in a single
// batch. The insert trigger fans each row out to connected listeners.
func (s *service) CreateNotificationForUsers(ctx context.Context, userIDs []uuid.UUID, n usecase.Notification) error {
	if len(userIDs) == 0 {
		return nil
	}

	rows := make([]Notification, 0, len(userIDs))
	for _, userID := range userIDs {
		rows = append(rows, Notification{
			UserID:     userID,
			Type:       string(n.Type),
			Title:      n.Title,
			TitleAr:    n.TitleAr,
			Body:       n.Body,
			BodyAr:     n.BodyAr,
			EntityType: n.EntityType,
			EntityID:   n.EntityID,
			TrackID:    n.TrackID,
		})
	}
	return s.db.WithContext(ctx).Create(&rows).Error
}

type notificationHub struct {
	mu          sync.Mutex
	subscribers map[chan<- usecase.Notification]struct{}
	conn        *pgx.Conn
}

func NewNotificationHub(conn *pgx.Conn) *notificationHub {
	hub := &notificationHub{
		conn:        conn,
		subscribers: make(map[chan<- usecase.Notification]struct{}),
	}
	go hub.listen()
	return hub
}

func (h *notificationHub) listen() {
	ctx := context.Background()
	for {
		n, err := h.conn.WaitForNotification(ctx)
		if err != nil {
			fmt.Printf("Error waiting for notification: %v\n", err)
			return
		}
		if n == nil {
			continue
		}

		notif := parseNotification(n)

		h.mu.Lock()
		for ch := range h.subscribers {
			select {
			case ch <- notif:
			default:
				// Skip full channels rather than blocking the hub.
				fmt.Printf("Subscriber channel is full, skipping notification: %v\n", notif.ID)
			}
		}
		h.mu.Unlock()
	}
}

func (h *notificationHub) Subscribe(ch chan<- usecase.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subscribers[ch] = struct{}{}
}

func (h *notificationHub) Unsubscribe(ch chan<- usecase.Notification) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.subscribers, ch)
}

func parseNotification(n *pgconn.Notification) usecase.Notification {
	var notification Notification
	if err := json.Unmarshal([]byte(n.Payload), &notification); err != nil {
		fmt.Printf("Error parsing notification: %v\n", err)
		return usecase.Notification{}
	}
	return notification.ConvertToUsecase()
}

func (s *service) SubscribeNotifications(ctx context.Context, ch chan<- usecase.Notification) error {
	if s.noti == nil {
		return fmt.Errorf("notification hub is not configured")
	}
	s.noti.Subscribe(ch)
	return nil
}

func (s *service) UnsubscribeNotifications(ctx context.Context, ch chan<- usecase.Notification) error {
	if s.noti == nil {
		return nil
	}
	s.noti.Unsubscribe(ch)
	return nil
}

func (s *service) ListNotifications(ctx context.Context, opt usecase.ListNotificationsOption) ([]usecase.Notification, int, int, error) {
	var (
		notifications []Notification
		total         int64
	)

	query := s.db.WithContext(ctx).Model(&Notification{}).
		Where("user_id = ?", opt.UserID).
		Order("created_at desc").
		Limit(opt.Limit).
		Offset(opt.Skip)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, 0, err
	}
	if err := query.Find(&notifications).Error; err != nil {
		return nil, 0, 0, err
	}

	unread, err := s.CountUnreadNotifications(ctx, opt.UserID)
	if err != nil {
		return nil, 0, 0, err
	}

	result := make([]usecase.Notification, len(notifications))
	for i, n := range notifications {
		result[i] = n.ConvertToUsecase()
	}

	return result, unread, int(total), nil
}

func (s *service) ReadNotification(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("id = ?", id).
		Update("read_at", time.Now()).Error
}

func (s *service) ReadAllNotifications(ctx context.Context, userID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Update("read_at", time.Now()).Error
}

func (s *service) CountUnreadNotifications(ctx context.Context, userID uuid.UUID) (int, error) {
	var count int64
	if err := s.db.WithContext(ctx).
		Model(&Notification{}).
		Where("user_id = ? AND read_at IS NULL", userID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return int(count), nil
}
