package usecase

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/google/uuid"
)

// fakeOverdueRepo keeps tasks in memory and records the calls the scan
// makes against it. The embedded Repository panics on anything the
// overdue pipeline should never touch.
type fakeOverdueRepo struct {
	Repository

	tasks []Task

	requestedLimit int
	failMarkFor    *uuid.UUID
	failCreateFor  *uuid.UUID

	ops           []string
	notifications []createdNotification
}

type createdNotification struct {
	userIDs []uuid.UUID
	n       Notification
}

func (r *fakeOverdueRepo) ListOverdueUnnotifiedTasks(_ context.Context, now time.Time, limit int) ([]Task, error) {
	r.requestedLimit = limit
	var out []Task
	for _, t := range r.tasks {
		if t.LastOverdueNotifiedAt != nil || t.Status.IsTerminal() {
			continue
		}
		if t.DueDate == nil || !t.DueDate.Before(now) {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeOverdueRepo) ListOverdueNotifiedTasks(_ context.Context, now time.Time, limit int) ([]Task, error) {
	r.requestedLimit = limit
	var out []Task
	for _, t := range r.tasks {
		if t.LastOverdueNotifiedAt == nil || t.Status.IsTerminal() {
			continue
		}
		if t.DueDate == nil || !t.DueDate.Before(now) {
			continue
		}
		out = append(out, t)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeOverdueRepo) MarkTaskOverdueNotified(_ context.Context, id uuid.UUID, ts time.Time) error {
	if r.failMarkFor != nil && *r.failMarkFor == id {
		return errors.New("mark failed")
	}
	r.ops = append(r.ops, "stamp:"+id.String())
	for i := range r.tasks {
		if r.tasks[i].ID == id {
			t := ts
			r.tasks[i].LastOverdueNotifiedAt = &t
		}
	}
	return nil
}

func (r *fakeOverdueRepo) CreateNotificationForUsers(_ context.Context, userIDs []uuid.UUID, n Notification) error {
	if r.failCreateFor != nil && n.EntityID != nil && *r.failCreateFor == *n.EntityID {
		return errors.New("insert failed")
	}
	r.ops = append(r.ops, "notify:"+n.EntityID.String())
	r.notifications = append(r.notifications, createdNotification{userIDs: userIDs, n: n})
	return nil
}

type emittedEvent struct {
	userID uuid.UUID
	event  string
}

type fakeBus struct {
	emitted []emittedEvent
	err     error
}

func (b *fakeBus) EmitToUser(_ context.Context, userID uuid.UUID, event string, _ any) error {
	b.emitted = append(b.emitted, emittedEvent{userID: userID, event: event})
	return b.err
}

func overdueTask(due time.Time, assignee, creator *uuid.UUID, extra ...uuid.UUID) Task {
	return Task{
		ID:                uuid.New(),
		Title:             "Prepare quarterly report",
		TitleAr:           "إعداد التقرير الربعي",
		Status:            TaskStatusInProgress,
		DueDate:           &due,
		AssigneeUserID:    assignee,
		CreatedByID:       creator,
		AssignmentUserIDs: extra,
	}
}

func TestRunOverdueScan(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-2 * time.Hour)

	assignee := uuid.New()
	creator := uuid.New()
	extra := uuid.New()

	task := overdueTask(due, &assignee, &creator, extra)
	repo := &fakeOverdueRepo{tasks: []Task{task}}
	bus := &fakeBus{}
	uc := New(repo, nil, nil, bus, nil)

	res := uc.RunOverdueScan(context.Background(), now, OverdueScanOption{})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Processed != 1 {
		t.Fatalf("expected 1 processed, got %d", res.Processed)
	}

	if len(repo.notifications) != 1 {
		t.Fatalf("expected 1 notification insert, got %d", len(repo.notifications))
	}
	got := repo.notifications[0]
	if got.n.Type != NotificationTypeTaskOverdue {
		t.Errorf("expected type %s, got %s", NotificationTypeTaskOverdue, got.n.Type)
	}
	if len(got.userIDs) != 3 {
		t.Fatalf("expected 3 recipients, got %d", len(got.userIDs))
	}
	for _, want := range []uuid.UUID{assignee, creator, extra} {
		if !slices.Contains(got.userIDs, want) {
			t.Errorf("recipient %s missing", want)
		}
	}

	if repo.tasks[0].LastOverdueNotifiedAt == nil {
		t.Fatal("task was not stamped")
	}
	if !repo.tasks[0].LastOverdueNotifiedAt.Equal(now) {
		t.Errorf("stamp = %v, want %v", repo.tasks[0].LastOverdueNotifiedAt, now)
	}

	if len(bus.emitted) != 3 {
		t.Fatalf("expected 3 realtime events, got %d", len(bus.emitted))
	}
	for _, e := range bus.emitted {
		if e.event != EventNotificationNew {
			t.Errorf("unexpected event name %q", e.event)
		}
	}
}

func TestRunOverdueScanIdempotent(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)
	assignee := uuid.New()

	repo := &fakeOverdueRepo{tasks: []Task{overdueTask(due, &assignee, nil)}}
	uc := New(repo, nil, nil, &fakeBus{}, nil)

	first := uc.RunOverdueScan(context.Background(), now, OverdueScanOption{})
	if first.Processed != 1 || first.Err != nil {
		t.Fatalf("first run: %+v", first)
	}

	second := uc.RunOverdueScan(context.Background(), now.Add(15*time.Minute), OverdueScanOption{})
	if second.Processed != 0 || second.Err != nil {
		t.Fatalf("second run should be a no-op, got %+v", second)
	}
	if len(repo.notifications) != 1 {
		t.Fatalf("expected exactly 1 notification across both runs, got %d", len(repo.notifications))
	}
}

func TestRunOverdueScanDeduplicatesRecipients(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)

	u1 := uuid.New()
	u2 := uuid.New()
	u3 := uuid.New()

	// u1 is assignee, creator and in the assignment list.
	repo := &fakeOverdueRepo{tasks: []Task{overdueTask(due, &u1, &u1, u1, u2, u3)}}
	bus := &fakeBus{}
	uc := New(repo, nil, nil, bus, nil)

	res := uc.RunOverdueScan(context.Background(), now, OverdueScanOption{})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	ids := repo.notifications[0].userIDs
	if len(ids) != 3 {
		t.Fatalf("expected recipient set {u1,u2,u3}, got %d entries", len(ids))
	}
	for _, want := range []uuid.UUID{u1, u2, u3} {
		if !slices.Contains(ids, want) {
			t.Errorf("recipient %s missing", want)
		}
	}
	if len(bus.emitted) != 3 {
		t.Errorf("expected 3 events, got %d", len(bus.emitted))
	}
}

func TestRunOverdueScanNoRecipientsStillStamps(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)

	repo := &fakeOverdueRepo{tasks: []Task{overdueTask(due, nil, nil)}}
	bus := &fakeBus{}
	uc := New(repo, nil, nil, bus, nil)

	res := uc.RunOverdueScan(context.Background(), now, OverdueScanOption{})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Processed != 1 {
		t.Fatalf("expected 1 processed, got %d", res.Processed)
	}
	if len(repo.notifications) != 0 {
		t.Errorf("expected no notification for empty recipient set")
	}
	if len(bus.emitted) != 0 {
		t.Errorf("expected no events for empty recipient set")
	}
	if repo.tasks[0].LastOverdueNotifiedAt == nil {
		t.Error("task must be stamped even with no recipients")
	}
}

func TestRunOverdueScanBatchCap(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)
	assignee := uuid.New()

	var tasks []Task
	for range 150 {
		tasks = append(tasks, overdueTask(due, &assignee, nil))
	}
	repo := &fakeOverdueRepo{tasks: tasks}
	uc := New(repo, nil, nil, &fakeBus{}, nil)

	res := uc.RunOverdueScan(context.Background(), now, OverdueScanOption{})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if repo.requestedLimit != 100 {
		t.Errorf("expected default batch cap 100, repo saw %d", repo.requestedLimit)
	}
	if res.Processed != 100 {
		t.Errorf("expected 100 processed, got %d", res.Processed)
	}

	// The remainder is picked up by the following tick.
	res = uc.RunOverdueScan(context.Background(), now.Add(15*time.Minute), OverdueScanOption{})
	if res.Processed != 50 {
		t.Errorf("expected 50 processed on next tick, got %d", res.Processed)
	}
}

func TestRunOverdueScanAbortsOnError(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)
	assignee := uuid.New()

	t1 := overdueTask(due, &assignee, nil)
	t2 := overdueTask(due, &assignee, nil)
	t3 := overdueTask(due, &assignee, nil)

	repo := &fakeOverdueRepo{
		tasks:         []Task{t1, t2, t3},
		failCreateFor: &t2.ID,
	}
	uc := New(repo, nil, nil, &fakeBus{}, nil)

	res := uc.RunOverdueScan(context.Background(), now, OverdueScanOption{})
	if res.Err == nil {
		t.Fatal("expected an error")
	}
	if res.Processed != 1 {
		t.Errorf("expected 1 processed before the failure, got %d", res.Processed)
	}
	if res.FailedTaskID == nil || *res.FailedTaskID != t2.ID {
		t.Errorf("FailedTaskID = %v, want %s", res.FailedTaskID, t2.ID)
	}

	// t1 keeps its stamp, t3 was never reached.
	if repo.tasks[0].LastOverdueNotifiedAt == nil {
		t.Error("first task lost its stamp")
	}
	if repo.tasks[2].LastOverdueNotifiedAt != nil {
		t.Error("third task should not have been touched")
	}
}

func TestRunOverdueScanEmitFailureIsNotFatal(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)
	assignee := uuid.New()

	repo := &fakeOverdueRepo{tasks: []Task{overdueTask(due, &assignee, nil)}}
	bus := &fakeBus{err: errors.New("session gone")}
	uc := New(repo, nil, nil, bus, nil)

	res := uc.RunOverdueScan(context.Background(), now, OverdueScanOption{})
	if res.Err != nil {
		t.Fatalf("emit failure must not fail the scan: %v", res.Err)
	}
	if res.Processed != 1 {
		t.Errorf("expected 1 processed, got %d", res.Processed)
	}
	if repo.tasks[0].LastOverdueNotifiedAt == nil {
		t.Error("task was not stamped")
	}
}

func TestRunOverdueScanStampFirstOrdering(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	due := now.Add(-time.Hour)
	assignee := uuid.New()

	task := overdueTask(due, &assignee, nil)
	repo := &fakeOverdueRepo{tasks: []Task{task}}
	uc := New(repo, nil, nil, &fakeBus{}, nil)

	res := uc.RunOverdueScan(context.Background(), now, OverdueScanOption{StampFirst: true})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}

	want := []string{"stamp:" + task.ID.String(), "notify:" + task.ID.String()}
	if !slices.Equal(repo.ops, want) {
		t.Errorf("ops = %v, want %v", repo.ops, want)
	}
}

func TestRunDailyReminderScan(t *testing.T) {
	now := time.Date(2025, 3, 12, 6, 0, 0, 0, time.UTC)
	due := now.Add(-50 * time.Hour)

	assignee := uuid.New()
	creator := uuid.New()
	extra := uuid.New()

	task := overdueTask(due, &assignee, &creator, extra)
	stamped := now.Add(-24 * time.Hour)
	task.LastOverdueNotifiedAt = &stamped

	repo := &fakeOverdueRepo{tasks: []Task{task}}
	bus := &fakeBus{}
	uc := New(repo, nil, nil, bus, nil)

	res := uc.RunDailyReminderScan(context.Background(), now, OverdueScanOption{})
	if res.Err != nil {
		t.Fatalf("unexpected error: %v", res.Err)
	}
	if res.Processed != 1 {
		t.Fatalf("expected 1 processed, got %d", res.Processed)
	}
	if repo.requestedLimit != 200 {
		t.Errorf("expected default reminder cap 200, repo saw %d", repo.requestedLimit)
	}

	got := repo.notifications[0]
	if got.n.Type != NotificationTypeTaskOverdueReminder {
		t.Errorf("expected type %s, got %s", NotificationTypeTaskOverdueReminder, got.n.Type)
	}

	// The creator does not receive daily reminders.
	if slices.Contains(got.userIDs, creator) {
		t.Error("creator must be excluded from reminders")
	}
	if !slices.Contains(got.userIDs, assignee) || !slices.Contains(got.userIDs, extra) {
		t.Error("assignee and assignment users must receive the reminder")
	}

	// 50 hours overdue rounds up to 3 days.
	if want := "The task \"Prepare quarterly report\" is 3 day(s) overdue."; got.n.Body != want {
		t.Errorf("body = %q, want %q", got.n.Body, want)
	}

	// No realtime push on the reminder path.
	if len(bus.emitted) != 0 {
		t.Errorf("expected no realtime events, got %d", len(bus.emitted))
	}

	// The stamp moves forward so the next daily pass skips the task
	// until it is overdue for another day.
	if !repo.tasks[0].LastOverdueNotifiedAt.Equal(now) {
		t.Errorf("stamp = %v, want %v", repo.tasks[0].LastOverdueNotifiedAt, now)
	}
}

func TestDaysOverdue(t *testing.T) {
	base := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		late time.Duration
		want int
	}{
		{"not late", 0, 0},
		{"an hour", time.Hour, 1},
		{"exactly one day", 24 * time.Hour, 1},
		{"just past one day", 24*time.Hour + time.Minute, 2},
		{"fifty hours", 50 * time.Hour, 3},
		{"exactly three days", 72 * time.Hour, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := daysOverdue(base.Add(tt.late), base); got != tt.want {
				t.Errorf("daysOverdue(+%v) = %d, want %d", tt.late, got, tt.want)
			}
		})
	}
}

func TestOverdueRecipients(t *testing.T) {
	assignee := uuid.New()
	creator := uuid.New()

	task := Task{AssigneeUserID: &assignee, CreatedByID: &creator}

	withCreator := overdueRecipients(task, true)
	if len(withCreator) != 2 {
		t.Errorf("expected 2 recipients with creator, got %d", len(withCreator))
	}

	withoutCreator := overdueRecipients(task, false)
	if len(withoutCreator) != 1 {
		t.Errorf("expected 1 recipient without creator, got %d", len(withoutCreator))
	}
	if _, ok := withoutCreator[creator]; ok {
		t.Error("creator present in reminder recipient set")
	}
}
