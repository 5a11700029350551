package server

import (
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/monjez/monjez/internal/usecase"
)

type Task struct {
	ID                    string   `json:"id" param:"id"`
	Title                 string   `json:"title" validate:"required"`
	TitleAr               string   `json:"title_ar,omitempty"`
	Description           string   `json:"description,omitempty"`
	DescriptionAr         string   `json:"description_ar,omitempty"`
	Status                string   `json:"status,omitempty" validate:"omitempty,oneof=TODO IN_PROGRESS BLOCKED COMPLETED CANCELLED"`
	Priority              string   `json:"priority,omitempty" validate:"omitempty,oneof=LOW MEDIUM HIGH"`
	DueDate               string   `json:"due_date,omitempty"`
	TrackID               string   `json:"track_id,omitempty" validate:"omitempty,uuid"`
	AssigneeUserID        string   `json:"assignee_user_id,omitempty" validate:"omitempty,uuid"`
	CreatedByID           string   `json:"created_by_id,omitempty"`
	AssignmentUserIDs     []string `json:"assignment_user_ids,omitempty" validate:"omitempty,dive,uuid"`
	LastOverdueNotifiedAt string   `json:"last_overdue_notified_at,omitempty"`
	CreatedAt             string   `json:"created_at,omitempty"`
	UpdatedAt             string   `json:"updated_at,omitempty"`

	Track    *Track `json:"track,omitempty"`
	Assignee *User  `json:"assignee,omitempty"`
	Creator  *User  `json:"creator,omitempty"`
}

func ConvertTaskFrom(t usecase.Task) Task {
	task := Task{
		ID:            t.ID.String(),
		Title:         t.Title,
		TitleAr:       t.TitleAr,
		Description:   t.Description,
		DescriptionAr: t.DescriptionAr,
		Status:        string(t.Status),
		Priority:      string(t.Priority),
		CreatedAt:     t.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     t.UpdatedAt.Format(time.RFC3339),
	}
	if t.DueDate != nil {
		task.DueDate = t.DueDate.Format(time.RFC3339)
	}
	if t.TrackID != nil {
		task.TrackID = t.TrackID.String()
	}
	if t.AssigneeUserID != nil {
		task.AssigneeUserID = t.AssigneeUserID.String()
	}
	if t.CreatedByID != nil {
		task.CreatedByID = t.CreatedByID.String()
	}
	if t.LastOverdueNotifiedAt != nil {
		task.LastOverdueNotifiedAt = t.LastOverdueNotifiedAt.Format(time.RFC3339)
	}
	for _, id := range t.AssignmentUserIDs {
		task.AssignmentUserIDs = append(task.AssignmentUserIDs, id.String())
	}
	if t.Track != nil {
		task.Track = &Track{
			ID:     t.Track.ID.String(),
			Name:   t.Track.Name,
			NameAr: t.Track.NameAr,
		}
	}
	if t.Assignee != nil {
		task.Assignee = &User{
			ID:     t.Assignee.ID.String(),
			Name:   t.Assignee.Name,
			NameAr: t.Assignee.NameAr,
		}
	}
	if t.Creator != nil {
		task.Creator = &User{
			ID:     t.Creator.ID.String(),
			Name:   t.Creator.Name,
			NameAr: t.Creator.NameAr,
		}
	}
	return task
}

type ListTasksRequest struct {
	Skip           int    `query:"skip"`
	Limit          int    `query:"limit" validate:"required,gte=1,lte=100"`
	SortBy         string `query:"sort_by" validate:"omitempty,oneof=created_at updated_at due_date priority"`
	SortIn         string `query:"sort_in" validate:"omitempty,oneof=asc desc"`
	Status         string `query:"status" validate:"omitempty,oneof=TODO IN_PROGRESS BLOCKED COMPLETED CANCELLED"`
	TrackID        string `query:"track_id" validate:"omitempty,uuid"`
	AssigneeUserID string `query:"assignee_user_id" validate:"omitempty,uuid"`
	CreatedByID    string `query:"created_by_id" validate:"omitempty,uuid"`
	IsOverdue      bool   `query:"is_overdue"`
	DueDateFrom    string `query:"due_date_from" validate:"omitempty,datetime=2006-01-02"`
	DueDateTo      string `query:"due_date_to" validate:"omitempty,datetime=2006-01-02"`
	Search         string `query:"search" validate:"omitempty"`
}

func (s *Server) ListTasks(ctx echo.Context) error {
	var req ListTasksRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	opt := usecase.ListTasksOption{
		Skip:      req.Skip,
		Limit:     req.Limit,
		SortBy:    req.SortBy,
		SortIn:    req.SortIn,
		IsOverdue: req.IsOverdue,
		Search:    req.Search,
	}
	if req.Status != "" {
		opt.Statuses = []usecase.TaskStatus{usecase.TaskStatus(req.Status)}
	}
	if req.TrackID != "" {
		id, _ := uuid.Parse(req.TrackID)
		opt.TrackIDs = uuid.UUIDs{id}
	}
	if req.AssigneeUserID != "" {
		id, _ := uuid.Parse(req.AssigneeUserID)
		opt.AssigneeUserIDs = uuid.UUIDs{id}
	}
	if req.CreatedByID != "" {
		id, _ := uuid.Parse(req.CreatedByID)
		opt.CreatedByIDs = uuid.UUIDs{id}
	}
	if req.DueDateFrom != "" {
		from, _ := time.Parse("2006-01-02", req.DueDateFrom)
		opt.DueDateFrom = &from
	}
	if req.DueDateTo != "" {
		to, _ := time.Parse("2006-01-02", req.DueDateTo)
		opt.DueDateTo = &to
	}

	tasks, total, err := s.server.ListTasks(ctx.Request().Context(), opt)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	list := make([]Task, 0, len(tasks))
	for _, t := range tasks {
		list = append(list, ConvertTaskFrom(t))
	}

	return ctx.JSON(200, Res{
		Data: list,
		Meta: &Meta{
			Total: total,
			Skip:  req.Skip,
			Limit: req.Limit,
		},
	})
}

type GetTaskByIDRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) GetTaskByID(ctx echo.Context) error {
	var req GetTaskByIDRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	id, _ := uuid.Parse(req.ID)
	t, err := s.server.GetTaskByID(ctx.Request().Context(), id)
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: ConvertTaskFrom(t)})
}

func taskFromRequest(task Task) usecase.Task {
	t := usecase.Task{
		Title:         task.Title,
		TitleAr:       task.TitleAr,
		Description:   task.Description,
		DescriptionAr: task.DescriptionAr,
		Status:        usecase.TaskStatus(task.Status),
		Priority:      usecase.TaskPriority(task.Priority),
	}
	if task.ID != "" {
		t.ID, _ = uuid.Parse(task.ID)
	}
	if task.DueDate != "" {
		if due, err := time.Parse(time.RFC3339, task.DueDate); err == nil {
			t.DueDate = &due
		}
	}
	if task.TrackID != "" {
		id, _ := uuid.Parse(task.TrackID)
		t.TrackID = &id
	}
	if task.AssigneeUserID != "" {
		id, _ := uuid.Parse(task.AssigneeUserID)
		t.AssigneeUserID = &id
	}
	for _, raw := range task.AssignmentUserIDs {
		if id, err := uuid.Parse(raw); err == nil {
			t.AssignmentUserIDs = append(t.AssignmentUserIDs, id)
		}
	}
	return t
}

func (s *Server) CreateTask(ctx echo.Context) error {
	var task Task
	if err := ctx.Bind(&task); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(task); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	created, err := s.server.CreateTask(ctx.Request().Context(), taskFromRequest(task))
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: ConvertTaskFrom(created)})
}

func (s *Server) UpdateTask(ctx echo.Context) error {
	var task Task
	if err := ctx.Bind(&task); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(task); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	updated, err := s.server.UpdateTask(ctx.Request().Context(), taskFromRequest(task))
	if err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Data: ConvertTaskFrom(updated)})
}

type DeleteTaskRequest struct {
	ID string `param:"id" validate:"required,uuid"`
}

func (s *Server) DeleteTask(ctx echo.Context) error {
	var req DeleteTaskRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	id, _ := uuid.Parse(req.ID)
	if err := s.server.DeleteTask(ctx.Request().Context(), id); err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Message: "Task deleted"})
}

type AssignTaskRequest struct {
	ID     string `param:"id" validate:"required,uuid"`
	UserID string `json:"user_id" validate:"required,uuid"`
}

func (s *Server) AssignTaskUser(ctx echo.Context) error {
	var req AssignTaskRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	taskID, _ := uuid.Parse(req.ID)
	userID, _ := uuid.Parse(req.UserID)
	if err := s.server.AssignTaskUser(ctx.Request().Context(), taskID, userID); err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Message: "User assigned"})
}

func (s *Server) UnassignTaskUser(ctx echo.Context) error {
	var req AssignTaskRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(400, map[string]string{"error": err.Error()})
	}
	if err := s.validator.Struct(req); err != nil {
		return ctx.JSON(422, map[string]string{"error": err.Error()})
	}

	taskID, _ := uuid.Parse(req.ID)
	userID, _ := uuid.Parse(req.UserID)
	if err := s.server.UnassignTaskUser(ctx.Request().Context(), taskID, userID); err != nil {
		return ctx.JSON(500, map[string]string{"error": err.Error()})
	}

	return ctx.JSON(200, Res{Message: "User unassigned"})
}
