package database

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/monjez/monjez/internal/usecase"
)

type Task struct {
	ID                    uuid.UUID  `gorm:"column:id;primaryKey;type:uuid;default:uuid_generate_v4()"`
	Title                 string     `gorm:"column:title"`
	TitleAr               string     `gorm:"column:title_ar"`
	Description           string     `gorm:"column:description;type:text"`
	DescriptionAr         string     `gorm:"column:description_ar;type:text"`
	Status                string     `gorm:"column:status;type:varchar(32);default:TODO;index"`
	Priority              string     `gorm:"column:priority;type:varchar(32);default:MEDIUM"`
	DueDate               *time.Time `gorm:"column:due_date"`
	TrackID               *uuid.UUID `gorm:"column:track_id;type:uuid"`
	Track                 *Track     `gorm:"foreignKey:TrackID;references:ID"`
	AssigneeUserID        *uuid.UUID `gorm:"column:assignee_user_id;type:uuid"`
	Assignee              *User      `gorm:"foreignKey:AssigneeUserID;references:ID"`
	CreatedByID           *uuid.UUID `gorm:"column:created_by_id;type:uuid"`
	Creator               *User      `gorm:"foreignKey:CreatedByID;references:ID"`
	LastOverdueNotifiedAt *time.Time `gorm:"column:last_overdue_notified_at"`
	CreatedAt             time.Time  `gorm:"column:created_at"`
	UpdatedAt             time.Time  `gorm:"column:updated_at"`
	DeletedAt             *gorm.DeletedAt

	Assignments []TaskAssignment `gorm:"foreignKey:TaskID;references:ID"`
}

func (Task) TableName() string {
	return "tasks"
}

type TaskAssignment struct {
	TaskID    uuid.UUID `gorm:"column:task_id;primaryKey;type:uuid"`
	UserID    uuid.UUID `gorm:"column:user_id;primaryKey;type:uuid"`
	User      *User     `gorm:"foreignKey:UserID;references:ID"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (TaskAssignment) TableName() string {
	return "task_assignments"
}

func (t Task) ConvertToUsecase() usecase.Task {
	var d *time.Time
	if t.DeletedAt != nil {
		d = &t.DeletedAt.Time
	}
	ut := usecase.Task{
		ID:                    t.ID,
		Title:                 t.Title,
		TitleAr:               t.TitleAr,
		Description:           t.Description,
		DescriptionAr:         t.DescriptionAr,
		Status:                usecase.TaskStatus(t.Status),
		Priority:              usecase.TaskPriority(t.Priority),
		DueDate:               t.DueDate,
		TrackID:               t.TrackID,
		AssigneeUserID:        t.AssigneeUserID,
		CreatedByID:           t.CreatedByID,
		LastOverdueNotifiedAt: t.LastOverdueNotifiedAt,
		CreatedAt:             t.CreatedAt,
		UpdatedAt:             t.UpdatedAt,
		DeletedAt:             d,
	}
	for _, a := range t.Assignments {
		ut.AssignmentUserIDs = append(ut.AssignmentUserIDs, a.UserID)
	}
	if t.Track != nil {
		track := t.Track.ConvertToUsecase()
		ut.Track = &track
	}
	if t.Assignee != nil {
		assignee := t.Assignee.ConvertToUsecase()
		ut.Assignee = &assignee
	}
	if t.Creator != nil {
		creator := t.Creator.ConvertToUsecase()
		ut.Creator = &creator
	}
	return ut
}

func (s *service) ListTasks(ctx context.Context, opt usecase.ListTasksOption) ([]usecase.Task, int, error) {
	var (
		tasks []Task
		count int64
	)

	db := s.db.Model([]Task{}).WithContext(ctx)

	if len(opt.Statuses) > 0 {
		db = db.Where("status IN ?", opt.Statuses)
	}
	if len(opt.TrackIDs) > 0 {
		db = db.Where("track_id IN ?", opt.TrackIDs)
	}
	if len(opt.CreatedByIDs) > 0 {
		db = db.Where("created_by_id IN ?", opt.CreatedByIDs)
	}
	if len(opt.AssigneeUserIDs) > 0 {
		// Responsible either as single assignee or through the
		// assignment list.
		db = db.Where(
			"assignee_user_id IN ? OR id IN (SELECT task_id FROM task_assignments WHERE user_id IN ?)",
			opt.AssigneeUserIDs, opt.AssigneeUserIDs,
		)
	}
	if opt.IsOverdue {
		db = db.Where("due_date < now() AND status NOT IN ?", []string{"COMPLETED", "CANCELLED"})
	}
	if opt.DueDateFrom != nil {
		db = db.Where("due_date >= ?", opt.DueDateFrom)
	}
	if opt.DueDateTo != nil {
		db = db.Where("due_date <= ?", opt.DueDateTo)
	}
	if opt.Search != "" {
		q := "%" + opt.Search + "%"
		db = db.Where("title ILIKE ? OR title_ar ILIKE ?", q, q)
	}

	orderBy := "created_at"
	if opt.SortBy != "" {
		orderBy = opt.SortBy
	}
	orderIn := "desc"
	if opt.SortIn != "" {
		orderIn = opt.SortIn
	}

	err := db.
		Preload("Track").
		Preload("Assignee").
		Preload("Assignments").
		Count(&count).
		Order(orderBy + " " + orderIn).
		Limit(opt.Limit).
		Offset(opt.Skip).
		Find(&tasks).
		Error
	if err != nil {
		return nil, 0, err
	}

	list := make([]usecase.Task, 0, len(tasks))
	for _, t := range tasks {
		list = append(list, t.ConvertToUsecase())
	}
	return list, int(count), nil
}

func (s *service) GetTaskByID(ctx context.Context, id uuid.UUID) (usecase.Task, error) {
	var t Task
	err := s.db.WithContext(ctx).
		Preload("Track").
		Preload("Assignee").
		Preload("Creator").
		Preload("Assignments").
		Where("id = ?", id).
		First(&t).
		Error
	if err != nil {
		return usecase.Task{}, err
	}
	return t.ConvertToUsecase(), nil
}

func (s *service) CreateTask(ctx context.Context, task usecase.Task) (usecase.Task, error) {
	t := Task{
		Title:          task.Title,
		TitleAr:        task.TitleAr,
		Description:    task.Description,
		DescriptionAr:  task.DescriptionAr,
		Status:         string(task.Status),
		Priority:       string(task.Priority),
		DueDate:        task.DueDate,
		TrackID:        task.TrackID,
		AssigneeUserID: task.AssigneeUserID,
		CreatedByID:    task.CreatedByID,
	}
	if err := s.db.WithContext(ctx).Clauses(clause.Returning{}).Create(&t).Error; err != nil {
		return usecase.Task{}, err
	}

	for _, userID := range task.AssignmentUserIDs {
		if err := s.AssignTaskUser(ctx, t.ID, userID); err != nil {
			return usecase.Task{}, err
		}
	}

	return s.GetTaskByID(ctx, t.ID)
}

func (s *service) UpdateTask(ctx context.Context, task usecase.Task) (usecase.Task, error) {
	t := Task{
		ID:             task.ID,
		Title:          task.Title,
		TitleAr:        task.TitleAr,
		Description:    task.Description,
		DescriptionAr:  task.DescriptionAr,
		Status:         string(task.Status),
		Priority:       string(task.Priority),
		DueDate:        task.DueDate,
		TrackID:        task.TrackID,
		AssigneeUserID: task.AssigneeUserID,
	}
	if err := s.db.WithContext(ctx).Updates(&t).Error; err != nil {
		return usecase.Task{}, err
	}
	return s.GetTaskByID(ctx, task.ID)
}

func (s *service) DeleteTask(ctx context.Context, id uuid.UUID) error {
	return s.db.WithContext(ctx).Delete(&Task{}, id).Error
}

func (s *service) AssignTaskUser(ctx context.Context, taskID, userID uuid.UUID) error {
	a := TaskAssignment{TaskID: taskID, UserID: userID}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&a).Error
}

func (s *service) UnassignTaskUser(ctx context.Context, taskID, userID uuid.UUID) error {
	return s.db.WithContext(ctx).
		Where("task_id = ? AND user_id = ?", taskID, userID).
		Delete(&TaskAssignment{}).Error
}

// ListOverdueUnnotifiedTasks selects tasks eligible for the first
// overdue notification: past due, not terminal, never stamped.
func (s *service) ListOverdueUnnotifiedTasks(ctx context.Context, now time.Time, limit int) ([]usecase.Task, error) {
	return s.listOverdue(ctx, now, limit, false)
}

// ListOverdueNotifiedTasks selects still-overdue tasks that already
// passed through the first-notification path.
func (s *service) ListOverdueNotifiedTasks(ctx context.Context, now time.Time, limit int) ([]usecase.Task, error) {
	return s.listOverdue(ctx, now, limit, true)
}

func (s *service) listOverdue(ctx context.Context, now time.Time, limit int, notified bool) ([]usecase.Task, error) {
	var tasks []Task

	db := s.db.WithContext(ctx).
		Where("due_date < ?", now).
		Where("status NOT IN ?", []string{"COMPLETED", "CANCELLED"})

	if notified {
		db = db.Where("last_overdue_notified_at IS NOT NULL")
	} else {
		db = db.Where("last_overdue_notified_at IS NULL")
	}

	// Oldest debt first, so capped batches drain in due-date order.
	err := db.
		Preload("Assignments").
		Order("due_date asc").
		Limit(limit).
		Find(&tasks).
		Error
	if err != nil {
		return nil, err
	}

	list := make([]usecase.Task, 0, len(tasks))
	for _, t := range tasks {
		list = append(list, t.ConvertToUsecase())
	}
	return list, nil
}

func (s *service) MarkTaskOverdueNotified(ctx context.Context, id uuid.UUID, ts time.Time) error {
	return s.db.WithContext(ctx).
		Model(&Task{}).
		Where("id = ?", id).
		Update("last_overdue_notified_at", ts).Error
}

func (s *service) CountTasksByStatus(ctx context.Context) (map[usecase.TaskStatus]int, error) {
	var rows []struct {
		Status string
		Count  int
	}
	err := s.db.WithContext(ctx).
		Model(&Task{}).
		Select("status, count(*) as count").
		Group("status").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}

	counts := make(map[usecase.TaskStatus]int, len(rows))
	for _, r := range rows {
		counts[usecase.TaskStatus(r.Status)] = r.Count
	}
	return counts, nil
}

func (s *service) CountOverdueTasks(ctx context.Context, now time.Time) (int, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&Task{}).
		Where("due_date < ?", now).
		Where("status NOT IN ?", []string{"COMPLETED", "CANCELLED"}).
		Count(&count).
		Error
	return int(count), err
}

func (s *service) CountTasksByTrack(ctx context.Context) ([]usecase.TrackTaskCount, error) {
	var rows []struct {
		TrackID   uuid.UUID
		TrackName string
		Total     int
		Overdue   int
	}
	err := s.db.WithContext(ctx).
		Model(&Task{}).
		Select(`tracks.id as track_id, tracks.name as track_name,
			count(*) as total,
			count(*) FILTER (WHERE tasks.due_date < now() AND tasks.status NOT IN ('COMPLETED','CANCELLED')) as overdue`).
		Joins("JOIN tracks ON tracks.id = tasks.track_id AND tracks.deleted_at IS NULL").
		Group("tracks.id, tracks.name").
		Scan(&rows).
		Error
	if err != nil {
		return nil, err
	}

	list := make([]usecase.TrackTaskCount, 0, len(rows))
	for _, r := range rows {
		list = append(list, usecase.TrackTaskCount{
			TrackID:   r.TrackID,
			TrackName: r.TrackName,
			Total:     r.Total,
			Overdue:   r.Overdue,
		})
	}
	return list, nil
}
