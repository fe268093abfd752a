package domain

import "time"

type ReminderSource string

const (
	ReminderLocal    ReminderSource = "local"    // saved by "remind me", persisted
	ReminderCalendar ReminderSource = "calendar" // popup override on a calendar event, memory only
)

type Reminder struct {
	ID        int64
	Message   string
	TriggerAt time.Time
	Source    ReminderSource
	CreatedAt time.Time
}

// IsDue returns true once the trigger time has been reached
func (r *Reminder) IsDue(now time.Time) bool {
	return !r.TriggerAt.After(now)
}
