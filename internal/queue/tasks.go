package queue

// Task type names shared by the scheduler and the worker.
const (
	TaskOverdueScan          = "overdue:scan"
	TaskOverdueDailyReminder = "overdue:daily-reminder"
)
