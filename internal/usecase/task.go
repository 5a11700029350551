package usecase

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/monjez/monjez/internal/config"
)

type TaskStatus string

const (
	TaskStatusTodo       TaskStatus = "TODO"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusBlocked    TaskStatus = "BLOCKED"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

// IsTerminal reports whether the status excludes a task from the
// overdue pipeline.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusCancelled
}

var taskStatuses = []TaskStatus{
	TaskStatusTodo,
	TaskStatusInProgress,
	TaskStatusBlocked,
	TaskStatusCompleted,
	TaskStatusCancelled,
}

type TaskPriority string

const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

type Task struct {
	ID                    uuid.UUID
	Title                 string
	TitleAr               string
	Description           string
	DescriptionAr         string
	Status                TaskStatus
	Priority              TaskPriority
	DueDate               *time.Time
	TrackID               *uuid.UUID
	AssigneeUserID        *uuid.UUID
	CreatedByID           *uuid.UUID
	LastOverdueNotifiedAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
	DeletedAt             *time.Time

	// AssignmentUserIDs are the additional responsible users from the
	// task_assignments join table, not including the single assignee.
	AssignmentUserIDs []uuid.UUID

	Track    *Track
	Assignee *User
	Creator  *User
}

type ListTasksOption struct {
	Skip   int
	Limit  int
	SortBy string
	SortIn string

	Statuses        []TaskStatus
	TrackIDs        uuid.UUIDs
	AssigneeUserIDs uuid.UUIDs
	CreatedByIDs    uuid.UUIDs
	IsOverdue       bool
	DueDateFrom     *time.Time
	DueDateTo       *time.Time
	Search          string
}

func (u Usecase) ListTasks(ctx context.Context, opt ListTasksOption) ([]Task, int, error) {
	role, ok := ctx.Value(config.CTX_KEY_USER_ROLE).(string)
	if !ok {
		return nil, 0, fmt.Errorf("user role not found in context")
	}
	userID, ok := ctx.Value(config.CTX_KEY_USER_ID).(uuid.UUID)
	if !ok {
		return nil, 0, fmt.Errorf("user id not found in context")
	}

	// Members only see tasks they are responsible for.
	if role == string(UserRoleMember) {
		opt.AssigneeUserIDs = uuid.UUIDs{userID}
	}

	return u.repo.ListTasks(ctx, opt)
}

func (u Usecase) GetTaskByID(ctx context.Context, id uuid.UUID) (Task, error) {
	return u.repo.GetTaskByID(ctx, id)
}

func (u Usecase) CreateTask(ctx context.Context, task Task) (Task, error) {
	userID, ok := ctx.Value(config.CTX_KEY_USER_ID).(uuid.UUID)
	if !ok {
		return Task{}, fmt.Errorf("user id not found in context")
	}

	if task.Status == "" {
		task.Status = TaskStatusTodo
	}
	if !slices.Contains(taskStatuses, task.Status) {
		return Task{}, fmt.Errorf("invalid task status %q", task.Status)
	}
	if task.Priority == "" {
		task.Priority = TaskPriorityMedium
	}
	task.CreatedByID = &userID

	if task.TrackID != nil {
		if _, err := u.repo.GetTrackByID(ctx, *task.TrackID); err != nil {
			return Task{}, fmt.Errorf("track %s: %w", task.TrackID, err)
		}
	}

	created, err := u.repo.CreateTask(ctx, task)
	if err != nil {
		return Task{}, err
	}

	u.writeAuditLog(ctx, AuditLog{
		Action:     AuditActionCreate,
		EntityType: "TASK",
		EntityID:   &created.ID,
		Details:    map[string]any{"title": created.Title},
	})

	if created.AssigneeUserID != nil && *created.AssigneeUserID != userID {
		go func() {
			bg := context.Background()
			if err := u.repo.CreateNotificationForUsers(bg, []uuid.UUID{*created.AssigneeUserID}, Notification{
				Type:       NotificationTypeTaskAssigned,
				Title:      "New task assigned",
				TitleAr:    "مهمة جديدة مسندة إليك",
				Body:       fmt.Sprintf("You have been assigned the task \"%s\".", created.Title),
				BodyAr:     fmt.Sprintf("تم إسناد المهمة \"%s\" إليك.", arabicTitle(created)),
				EntityType: "TASK",
				EntityID:   &created.ID,
				TrackID:    created.TrackID,
			}); err != nil {
				fmt.Printf("task: failed to create assignment notification: %v\n", err)
			}
			if err := u.eventBus.EmitToUser(bg, *created.AssigneeUserID, EventNotificationNew, map[string]any{
				"task_id":  created.ID.String(),
				"title_ar": arabicTitle(created),
			}); err != nil {
				fmt.Printf("task: failed to emit assignment event: %v\n", err)
			}
		}()
	}

	return created, nil
}

func (u Usecase) UpdateTask(ctx context.Context, task Task) (Task, error) {
	if task.Status != "" && !slices.Contains(taskStatuses, task.Status) {
		return Task{}, fmt.Errorf("invalid task status %q", task.Status)
	}

	prev, err := u.repo.GetTaskByID(ctx, task.ID)
	if err != nil {
		return Task{}, err
	}

	updated, err := u.repo.UpdateTask(ctx, task)
	if err != nil {
		return Task{}, err
	}

	details := map[string]any{}
	if task.Status != "" && task.Status != prev.Status {
		details["status_from"] = prev.Status
		details["status_to"] = task.Status
	}
	u.writeAuditLog(ctx, AuditLog{
		Action:     AuditActionUpdate,
		EntityType: "TASK",
		EntityID:   &updated.ID,
		Details:    details,
	})

	return updated, nil
}

func (u Usecase) DeleteTask(ctx context.Context, id uuid.UUID) error {
	if err := u.repo.DeleteTask(ctx, id); err != nil {
		return err
	}
	u.writeAuditLog(ctx, AuditLog{
		Action:     AuditActionDelete,
		EntityType: "TASK",
		EntityID:   &id,
	})
	return nil
}

func (u Usecase) AssignTaskUser(ctx context.Context, taskID, userID uuid.UUID) error {
	task, err := u.repo.GetTaskByID(ctx, taskID)
	if err != nil {
		return err
	}
	if err := u.repo.AssignTaskUser(ctx, taskID, userID); err != nil {
		return err
	}

	go func() {
		bg := context.Background()
		if err := u.repo.CreateNotificationForUsers(bg, []uuid.UUID{userID}, Notification{
			Type:       NotificationTypeTaskAssigned,
			Title:      "Added to task",
			TitleAr:    "تمت إضافتك إلى مهمة",
			Body:       fmt.Sprintf("You were added to the task \"%s\".", task.Title),
			BodyAr:     fmt.Sprintf("تمت إضافتك إلى المهمة \"%s\".", arabicTitle(task)),
			EntityType: "TASK",
			EntityID:   &taskID,
			TrackID:    task.TrackID,
		}); err != nil {
			fmt.Printf("task: failed to create assignment notification: %v\n", err)
		}
	}()

	return nil
}

func (u Usecase) UnassignTaskUser(ctx context.Context, taskID, userID uuid.UUID) error {
	return u.repo.UnassignTaskUser(ctx, taskID, userID)
}

// arabicTitle falls back to the English title for tasks created without
// an Arabic one.
func arabicTitle(t Task) string {
	if t.TitleAr != "" {
		return t.TitleAr
	}
	return t.Title
}
