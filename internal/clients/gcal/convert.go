package gcal

import (
	"errors"
	"fmt"
	"time"

	"google.golang.org/api/calendar/v3"

	"github.com/tazhate/calendarskill/internal/domain"
)

var errNoStart = errors.New("event has no start")

// ToEvent converts an API event. A start without dateTime is a whole-day
// event and its end is dropped even when end.date is set.
func ToEvent(item *calendar.Event) (domain.Event, error) {
	if item == nil || item.Start == nil {
		return domain.Event{}, errNoStart
	}

	if item.Start.DateTime == "" {
		if item.Start.Date == "" {
			return domain.Event{}, errNoStart
		}
		day, err := time.Parse(time.DateOnly, item.Start.Date)
		if err != nil {
			return domain.Event{}, fmt.Errorf("parse start date %q: %w", item.Start.Date, err)
		}
		return domain.NewWholeDayEvent(domain.TitleOrUntitled(item.Summary), day, item.Description)
	}

	start, err := time.Parse(time.RFC3339, item.Start.DateTime)
	if err != nil {
		return domain.Event{}, fmt.Errorf("parse start %q: %w", item.Start.DateTime, err)
	}

	// a timed event keeps an end so it never reads as whole-day
	end := start
	if item.End != nil && item.End.DateTime != "" {
		if t, err := time.Parse(time.RFC3339, item.End.DateTime); err == nil {
			end = t
		}
	}

	return domain.NewEvent(domain.TitleOrUntitled(item.Summary), start, end, item.Description)
}

// BuildInsert renders an event for Events.Insert. Seconds are zeroed and
// times are sent in UTC; an event without end gets a one hour slot.
func BuildInsert(e domain.Event) *calendar.Event {
	start := e.StartTime.UTC().Truncate(time.Minute)
	end := start.Add(time.Hour)
	if !e.IsWholeDay() {
		end = e.EndTime.UTC().Truncate(time.Minute)
	}

	return &calendar.Event{
		Summary:     e.Title,
		Description: e.Info,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}
}

// popupReminders turns popup overrides into reminders triggered relative to
// the event start. Default reminders are not expanded.
func popupReminders(item *calendar.Event, e domain.Event) []domain.Reminder {
	if item.Reminders == nil || e.IsWholeDay() {
		return nil
	}

	var out []domain.Reminder
	for _, o := range item.Reminders.Overrides {
		if o == nil || o.Method != "popup" {
			continue
		}
		out = append(out, domain.Reminder{
			Message:   e.Title,
			TriggerAt: e.StartTime.Add(-time.Duration(o.Minutes) * time.Minute),
			Source:    domain.ReminderCalendar,
		})
	}
	return out
}
