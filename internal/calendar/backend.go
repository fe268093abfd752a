// Package calendar defines the capability every calendar provider adapter
// implements and the ordering rules shared by all of them.
package calendar

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/tazhate/calendarskill/internal/domain"
)

// DefaultMaxResults caps a query when the caller has no preference
const DefaultMaxResults = 10

// Kind names the provider behind a backend
type Kind string

const (
	KindGoogle Kind = "google"
	KindCalDAV Kind = "caldav"
)

var (
	ErrNotConnected = errors.New("calendar backend not connected")
	ErrInvalidEvent = errors.New("event rejected by calendar")
	ErrUnauthorized = errors.New("calendar credentials rejected")
	ErrUnavailable  = errors.New("calendar unavailable")
)

// Backend talks to exactly one remote calendar.
//
// GetEvents returns upcoming events from start on, ordered with
// SortEvents. A zero end means the query is open-ended. Errors are always
// returned to the caller; deciding how a failed read sounds to the user is
// not the adapter's business.
type Backend interface {
	Kind() Kind
	GetEvents(ctx context.Context, start, end time.Time, maxResults int) ([]domain.Event, error)
	AddEvent(ctx context.Context, event domain.Event) error
}

// ReminderSource is implemented by backends that carry their own popup reminders
type ReminderSource interface {
	Reminders(ctx context.Context, from, to time.Time) ([]domain.Reminder, error)
}

// SortEvents orders events for merging: timed events by start time first,
// then whole-day events by date. The sort is stable so events with equal
// keys keep provider order.
func SortEvents(events []domain.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i], events[j]
		if a.IsWholeDay() != b.IsWholeDay() {
			return !a.IsWholeDay()
		}
		return a.StartTime.Before(b.StartTime)
	})
}

// Limit truncates events to at most n entries; n <= 0 means DefaultMaxResults
func Limit(events []domain.Event, n int) []domain.Event {
	if n <= 0 {
		n = DefaultMaxResults
	}
	if len(events) > n {
		return events[:n]
	}
	return events
}

// Merge combines per-calendar results into one ordered, capped list
func Merge(n int, lists ...[]domain.Event) []domain.Event {
	var all []domain.Event
	for _, l := range lists {
		all = append(all, l...)
	}
	SortEvents(all)
	return Limit(all, n)
}
