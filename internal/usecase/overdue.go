package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/monjez/monjez/internal/config"
)

// EventNotificationNew is pushed to each recipient when a durable
// notification is created for them.
const EventNotificationNew = "notification.new"

// ScanResult reports the outcome of one overdue scan. Err is never
// propagated to the scheduler; the queue handler logs it and moves on.
type ScanResult struct {
	Processed    int
	FailedTaskID *uuid.UUID
	Err          error
}

// OverdueScanOption tunes a single scan run. The zero value gives the
// production behavior: batch caps from config, notify-then-stamp.
type OverdueScanOption struct {
	Limit int

	// StampFirst stamps last_overdue_notified_at before dispatching the
	// notification. The default (notify first) can, on a crash between
	// the two writes, re-notify a task on the next tick; stamping first
	// can instead drop the notification entirely. Duplicate beats silent
	// loss, so notify-first is the default.
	StampFirst bool
}

// RunOverdueScan performs the 15-minute "newly overdue" pass: tasks past
// their due date, not terminal, never notified before. Each matching task
// is notified at most once, enforced by stamping last_overdue_notified_at
// in the same pass. Tasks are handled sequentially; the first error aborts
// the remainder of the run and already-stamped tasks keep their stamp.
func (u Usecase) RunOverdueScan(ctx context.Context, now time.Time, opt OverdueScanOption) ScanResult {
	limit := opt.Limit
	if limit <= 0 {
		limit = config.OVERDUE_SCAN_BATCH_SIZE
	}

	tasks, err := u.repo.ListOverdueUnnotifiedTasks(ctx, now, limit)
	if err != nil {
		return ScanResult{Err: fmt.Errorf("list overdue tasks: %w", err)}
	}

	var res ScanResult
	for _, task := range tasks {
		recipients := overdueRecipients(task, true)

		stamp := func() error {
			return u.repo.MarkTaskOverdueNotified(ctx, task.ID, now)
		}
		notify := func() error {
			if len(recipients) == 0 {
				return nil
			}
			ids := recipients.IDs()
			if err := u.repo.CreateNotificationForUsers(ctx, ids, Notification{
				Type:       NotificationTypeTaskOverdue,
				Title:      "Task overdue",
				TitleAr:    "مهمة متأخرة",
				Body:       fmt.Sprintf("The task \"%s\" has passed its due date and is still open.", task.Title),
				BodyAr:     fmt.Sprintf("تجاوزت المهمة \"%s\" تاريخ استحقاقها وما زالت مفتوحة.", arabicTitle(task)),
				EntityType: "TASK",
				EntityID:   &task.ID,
				TrackID:    task.TrackID,
			}); err != nil {
				return fmt.Errorf("create notification: %w", err)
			}
			for _, id := range ids {
				if err := u.eventBus.EmitToUser(ctx, id, EventNotificationNew, map[string]any{
					"task_id":  task.ID.String(),
					"title_ar": arabicTitle(task),
				}); err != nil {
					// Realtime push is best effort; a closed session is
					// not a scan failure.
					fmt.Printf("overdue: emit to user %s: %v\n", id, err)
				}
			}
			return nil
		}

		first, second := notify, stamp
		if opt.StampFirst {
			first, second = stamp, notify
		}
		if err := first(); err != nil {
			res.FailedTaskID = &task.ID
			res.Err = err
			return res
		}
		if err := second(); err != nil {
			res.FailedTaskID = &task.ID
			res.Err = err
			return res
		}

		res.Processed++
	}

	return res
}

// RunDailyReminderScan performs the once-a-day pass over tasks that are
// still overdue after the first notification. The creator is deliberately
// left out here; reminders go to the people expected to act. No realtime
// push on this path.
func (u Usecase) RunDailyReminderScan(ctx context.Context, now time.Time, opt OverdueScanOption) ScanResult {
	limit := opt.Limit
	if limit <= 0 {
		limit = config.DAILY_REMINDER_BATCH_SIZE
	}

	tasks, err := u.repo.ListOverdueNotifiedTasks(ctx, now, limit)
	if err != nil {
		return ScanResult{Err: fmt.Errorf("list overdue notified tasks: %w", err)}
	}

	var res ScanResult
	for _, task := range tasks {
		recipients := overdueRecipients(task, false)

		var days int
		if task.DueDate != nil {
			days = daysOverdue(now, *task.DueDate)
		}

		stamp := func() error {
			return u.repo.MarkTaskOverdueNotified(ctx, task.ID, now)
		}
		notify := func() error {
			if len(recipients) == 0 {
				return nil
			}
			if err := u.repo.CreateNotificationForUsers(ctx, recipients.IDs(), Notification{
				Type:       NotificationTypeTaskOverdueReminder,
				Title:      "Overdue task reminder",
				TitleAr:    "تذكير بمهمة متأخرة",
				Body:       fmt.Sprintf("The task \"%s\" is %d day(s) overdue.", task.Title, days),
				BodyAr:     fmt.Sprintf("المهمة \"%s\" متأخرة منذ %d يوم.", arabicTitle(task), days),
				EntityType: "TASK",
				EntityID:   &task.ID,
				TrackID:    task.TrackID,
			}); err != nil {
				return fmt.Errorf("create notification: %w", err)
			}
			return nil
		}

		first, second := notify, stamp
		if opt.StampFirst {
			first, second = stamp, notify
		}
		if err := first(); err != nil {
			res.FailedTaskID = &task.ID
			res.Err = err
			return res
		}
		if err := second(); err != nil {
			res.FailedTaskID = &task.ID
			res.Err = err
			return res
		}

		if u.mailProvider != nil {
			if err := u.SendOverdueDigestEmail(ctx, task, days); err != nil {
				fmt.Printf("overdue: digest email for task %s: %v\n", task.ID, err)
			}
		}

		res.Processed++
	}

	return res
}

// UserIDSet is a set of user identifiers. Recipient collection is
// set-keyed from the start so duplicates collapse before any dispatch.
type UserIDSet map[uuid.UUID]struct{}

func (s UserIDSet) Add(id uuid.UUID) {
	s[id] = struct{}{}
}

func (s UserIDSet) IDs() []uuid.UUID {
	ids := make([]uuid.UUID, 0, len(s))
	for id := range s {
		ids = append(ids, id)
	}
	return ids
}

// overdueRecipients unions the assignee, the assignment-list users and,
// for the first notification only, the creator.
func overdueRecipients(task Task, includeCreator bool) UserIDSet {
	set := make(UserIDSet)
	if task.AssigneeUserID != nil {
		set.Add(*task.AssigneeUserID)
	}
	if includeCreator && task.CreatedByID != nil {
		set.Add(*task.CreatedByID)
	}
	for _, id := range task.AssignmentUserIDs {
		set.Add(id)
	}
	return set
}

// daysOverdue counts elapsed whole days, rounding up: 50 hours late is
// 3 days.
func daysOverdue(now, due time.Time) int {
	d := now.Sub(due)
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) > 0 {
		days++
	}
	return days
}
