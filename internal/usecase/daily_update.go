package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/cenkalti/dominantcolor"
	"github.com/google/uuid"

	"github.com/monjez/monjez/internal/config"
)

// MaxAttachmentSize is the per-file cap for daily update attachments.
const MaxAttachmentSize = 10 << 20 // 10 MiB

var allowedAttachmentExts = map[string]struct{}{
	".pdf": {}, ".png": {}, ".jpg": {}, ".jpeg": {},
	".docx": {}, ".xlsx": {}, ".pptx": {}, ".csv": {},
}

var allowedAttachmentMIMEs = map[string]struct{}{
	"application/pdf": {},
	"image/png":       {},
	"image/jpeg":      {},
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document":   {},
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet":         {},
	"application/vnd.openxmlformats-officedocument.presentationml.presentation": {},
	"text/csv": {},
}

type DailyUpdate struct {
	ID        uuid.UUID
	TaskID    uuid.UUID
	AuthorID  uuid.UUID
	Date      time.Time
	Body      string
	BodyAr    string
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt *time.Time

	Attachments []Attachment
	ReadBy      []UpdateRead

	Task   *Task
	Author *User
}

type Attachment struct {
	ID        uuid.UUID
	UpdateID  uuid.UUID
	FileName  string
	Path      string
	Size      int64
	MIMEType  string
	Colors    json.RawMessage
	CreatedAt time.Time
}

type UpdateRead struct {
	UpdateID uuid.UUID
	UserID   uuid.UUID
	ReadAt   time.Time
}

type ListDailyUpdatesOption struct {
	Skip     int
	Limit    int
	TaskIDs  uuid.UUIDs
	AuthorID uuid.UUID
	DateFrom *time.Time
	DateTo   *time.Time
}

// ValidateAttachment enforces the upload allow-lists and the size cap.
func ValidateAttachment(name, mimeType string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := allowedAttachmentExts[ext]; !ok {
		return fmt.Errorf("file extension %q is not allowed", ext)
	}
	if _, ok := allowedAttachmentMIMEs[mimeType]; !ok {
		return fmt.Errorf("file type %q is not allowed", mimeType)
	}
	if size <= 0 {
		return fmt.Errorf("file is empty")
	}
	if size > MaxAttachmentSize {
		return fmt.Errorf("file exceeds the %d MB limit", MaxAttachmentSize>>20)
	}
	return nil
}

func (u Usecase) ListDailyUpdates(ctx context.Context, opt ListDailyUpdatesOption) ([]DailyUpdate, int, error) {
	updates, total, err := u.repo.ListDailyUpdates(ctx, opt)
	if err != nil {
		return nil, 0, err
	}

	publicURL, _ := u.fileStorageProvider.GetPublicURL(ctx)
	for i, up := range updates {
		for j, a := range up.Attachments {
			updates[i].Attachments[j].Path = fmt.Sprintf("%s/updates/%s/%s", publicURL, up.ID, a.FileName)
		}
	}
	return updates, total, nil
}

func (u Usecase) GetDailyUpdateByID(ctx context.Context, id uuid.UUID) (DailyUpdate, error) {
	up, err := u.repo.GetDailyUpdateByID(ctx, id)
	if err != nil {
		return DailyUpdate{}, err
	}
	publicURL, _ := u.fileStorageProvider.GetPublicURL(ctx)
	for i, a := range up.Attachments {
		up.Attachments[i].Path = fmt.Sprintf("%s/updates/%s/%s", publicURL, up.ID, a.FileName)
	}
	return up, nil
}

// CreateDailyUpdate persists the update, moves uploaded attachments from
// the temp area to their public location and notifies the task assignee.
func (u Usecase) CreateDailyUpdate(ctx context.Context, update DailyUpdate) (DailyUpdate, error) {
	userID, ok := ctx.Value(config.CTX_KEY_USER_ID).(uuid.UUID)
	if !ok {
		return DailyUpdate{}, fmt.Errorf("user id not found in context")
	}
	update.AuthorID = userID
	if update.Date.IsZero() {
		update.Date = time.Now().UTC().Truncate(24 * time.Hour)
	}

	task, err := u.repo.GetTaskByID(ctx, update.TaskID)
	if err != nil {
		return DailyUpdate{}, fmt.Errorf("task %s: %w", update.TaskID, err)
	}

	for _, a := range update.Attachments {
		if err := ValidateAttachment(a.FileName, a.MIMEType, a.Size); err != nil {
			return DailyUpdate{}, err
		}
	}

	created, err := u.repo.CreateDailyUpdate(ctx, update)
	if err != nil {
		return DailyUpdate{}, err
	}

	for _, a := range created.Attachments {
		if err := u.fileStorageProvider.MoveTempFilePublic(ctx, a.FileName, "updates/"+created.ID.String()); err != nil {
			return DailyUpdate{}, fmt.Errorf("move attachment %s: %w", a.FileName, err)
		}
	}

	u.writeAuditLog(ctx, AuditLog{
		Action:     AuditActionCreate,
		EntityType: "DAILY_UPDATE",
		EntityID:   &created.ID,
		Details:    map[string]any{"task_id": update.TaskID.String()},
	})

	go u.enrichAttachmentColors(context.Background(), created)

	if task.AssigneeUserID != nil && *task.AssigneeUserID != userID {
		go func() {
			bg := context.Background()
			if err := u.repo.CreateNotificationForUsers(bg, []uuid.UUID{*task.AssigneeUserID}, Notification{
				Type:       NotificationTypeDailyUpdate,
				Title:      "New daily update",
				TitleAr:    "تحديث يومي جديد",
				Body:       fmt.Sprintf("A daily update was posted on the task \"%s\".", task.Title),
				BodyAr:     fmt.Sprintf("تمت إضافة تحديث يومي على المهمة \"%s\".", arabicTitle(task)),
				EntityType: "DAILY_UPDATE",
				EntityID:   &created.ID,
				TrackID:    task.TrackID,
			}); err != nil {
				fmt.Printf("daily update: failed to create notification: %v\n", err)
			}
		}()
	}

	return created, nil
}

func (u Usecase) UpdateDailyUpdate(ctx context.Context, update DailyUpdate) (DailyUpdate, error) {
	return u.repo.UpdateDailyUpdate(ctx, update)
}

func (u Usecase) DeleteDailyUpdate(ctx context.Context, id uuid.UUID) error {
	return u.repo.DeleteDailyUpdate(ctx, id)
}

// MarkDailyUpdateRead records that the calling user has seen the update.
// Idempotent; re-reading does not change the original read time.
func (u Usecase) MarkDailyUpdateRead(ctx context.Context, updateID uuid.UUID) error {
	userID, ok := ctx.Value(config.CTX_KEY_USER_ID).(uuid.UUID)
	if !ok {
		return fmt.Errorf("user id not found in context")
	}
	return u.repo.MarkDailyUpdateRead(ctx, updateID, userID)
}

// enrichAttachmentColors computes dominant colors for image attachments
// so the dashboard can render placeholders before the image loads.
func (u Usecase) enrichAttachmentColors(ctx context.Context, update DailyUpdate) {
	publicURL, _ := u.fileStorageProvider.GetPublicURL(ctx)
	for _, a := range update.Attachments {
		if a.MIMEType != "image/png" && a.MIMEType != "image/jpeg" {
			continue
		}
		url := fmt.Sprintf("%s/updates/%s/%s", publicURL, update.ID, a.FileName)
		colors, err := ExtractColors(ctx, url)
		if err != nil {
			fmt.Printf("daily update: extract colors for %s: %v\n", a.FileName, err)
			continue
		}
		a.Colors = colors
		if _, err := u.repo.UpdateDailyUpdate(ctx, DailyUpdate{ID: update.ID, Attachments: []Attachment{a}}); err != nil {
			fmt.Printf("daily update: store colors for %s: %v\n", a.FileName, err)
		}
	}
}

func ExtractColors(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	img, _, err := image.Decode(resp.Body)
	if err != nil {
		return nil, err
	}

	colors := make(map[int][4]uint8)
	for i, c := range dominantcolor.FindN(img, 4) {
		colors[i] = [4]uint8{c.R, c.G, c.B, c.A}
	}
	return json.Marshal(colors)
}
