package domain

import (
	"errors"
	"strings"
	"time"
)

// ErrEmptyTitle is returned by NewEvent when the title is blank
var ErrEmptyTitle = errors.New("event title cannot be empty")

// ErrNoStart is returned by NewEvent when the start time is zero
var ErrNoStart = errors.New("event start time is required")

// Untitled stands in for the title of provider records that have none
const Untitled = "(No title)"

// TitleOrUntitled returns title, or Untitled when it is blank
func TitleOrUntitled(title string) string {
	if strings.TrimSpace(title) == "" {
		return Untitled
	}
	return title
}

// Event is a calendar entry independent of the provider it came from.
//
// StartTime is a UTC instant for timed events. For whole-day events it is
// midnight UTC of the event's calendar date, which is a floating date and
// must not be converted into another zone. A zero EndTime marks a
// whole-day event.
type Event struct {
	Title     string
	StartTime time.Time
	EndTime   time.Time
	Info      string
}

// NewEvent builds an event, trimming the title and normalizing times to UTC
func NewEvent(title string, start, end time.Time, info string) (Event, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Event{}, ErrEmptyTitle
	}
	if start.IsZero() {
		return Event{}, ErrNoStart
	}

	e := Event{
		Title:     title,
		StartTime: start.UTC(),
		Info:      info,
	}
	if !end.IsZero() {
		e.EndTime = end.UTC()
	}
	return e, nil
}

// NewWholeDayEvent builds a whole-day event for the calendar date of day
func NewWholeDayEvent(title string, day time.Time, info string) (Event, error) {
	if day.IsZero() {
		return Event{}, ErrNoStart
	}
	date := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return NewEvent(title, date, time.Time{}, info)
}

// IsWholeDay returns true if the event has no end time
func (e Event) IsWholeDay() bool {
	return e.EndTime.IsZero()
}

// EndsBeforeStart reports the data-quality problem of an end preceding the start
func (e Event) EndsBeforeStart() bool {
	return !e.IsWholeDay() && e.EndTime.Before(e.StartTime)
}

// Duration returns the event length, zero for whole-day events
func (e Event) Duration() time.Duration {
	if e.IsWholeDay() {
		return 0
	}
	return e.EndTime.Sub(e.StartTime)
}
