// Package dates holds the pure date helpers of the skill: relative-day
// classification against an injectable clock and speakable formatting.
package dates

import (
	"time"

	"github.com/tazhate/calendarskill/internal/domain"
)

// Clock provides the current time
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock is the wall clock
var SystemClock Clock = ClockFunc(time.Now)

// Fixed returns a clock that always reports t
func Fixed(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Calendar classifies instants relative to "today" in the host location.
// All comparisons go through it so tests can pin both now and the zone.
type Calendar struct {
	clock Clock
	loc   *time.Location
}

func NewCalendar(clock Clock, loc *time.Location) *Calendar {
	if clock == nil {
		clock = SystemClock
	}
	if loc == nil {
		loc = time.Local
	}
	return &Calendar{clock: clock, loc: loc}
}

// Location returns the host location
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now returns the current time in the host location
func (c *Calendar) Now() time.Time {
	return c.clock.Now().In(c.loc)
}

// Today returns local midnight of the current day
func (c *Calendar) Today() time.Time {
	return StartOfDay(c.Now())
}

// IsToday returns true if t falls on today's local date
func (c *Calendar) IsToday(t time.Time) bool {
	return SameDay(t.In(c.loc), c.Now())
}

// IsTomorrow returns true if t falls on the local date after today
func (c *Calendar) IsTomorrow(t time.Time) bool {
	return SameDay(t.In(c.loc), c.Now().AddDate(0, 0, 1))
}

// EventDay returns the local date on which the event starts. Whole-day
// events keep their floating date; timed events are moved from UTC into
// the host location first.
func (c *Calendar) EventDay(e domain.Event) time.Time {
	if e.IsWholeDay() {
		s := e.StartTime
		return time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, c.loc)
	}
	return e.StartTime.In(c.loc)
}

// DayBounds returns the first and last second of the local day containing t
func (c *Calendar) DayBounds(t time.Time) (time.Time, time.Time) {
	start := StartOfDay(t.In(c.loc))
	end := start.AddDate(0, 0, 1).Add(-time.Second)
	return start, end
}

// StartOfDay truncates t to midnight in its own location
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay compares calendar dates, ignoring the time of day
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
