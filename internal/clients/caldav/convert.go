package caldav

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"

	"github.com/tazhate/calendarskill/internal/domain"
)

const (
	// RecurrenceHorizon bounds expansion when a query has no end
	RecurrenceHorizon = 365 * 24 * time.Hour

	productID            = "-//calendarskill//CalDAV//EN"
	maxOccurrencesPerRun = 500
)

var errNoStart = errors.New("VEVENT has no usable DTSTART")

// ToEvents converts every VEVENT in cal into events inside [from, to).
// Recurring events are expanded; EXDATEs and instances moved by a
// RECURRENCE-ID override are excluded from the master. Floating times are
// read in loc (time.Local when nil), whole-day events are matched by their
// date in loc. A VEVENT that cannot be read is logged and skipped, the rest
// of the batch still converts.
func ToEvents(cal *ical.Calendar, from, to time.Time, loc *time.Location, logger *zap.Logger) []domain.Event {
	if cal == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.Local
	}
	if to.IsZero() {
		to = from.Add(RecurrenceHorizon)
	}
	w := window{from: from, to: to, loc: loc}
	moved := overrides(cal, loc)

	var out []domain.Event
	for _, comp := range cal.Children {
		if comp.Name != ical.CompEvent {
			continue
		}
		uid := textProp(comp, ical.PropUID)
		events, err := vevent(comp, w, moved[uid])
		if err != nil {
			logger.Warn("Skipping VEVENT", zap.String("uid", uid), zap.Error(err))
			continue
		}
		out = append(out, events...)
	}
	return out
}

// window is a query range. Timed occurrences must start inside [from, to);
// whole-day occurrences must fall on a local date between from and to.
type window struct {
	from, to time.Time
	loc      *time.Location
}

func (w window) contains(at time.Time, wholeDay bool) bool {
	if wholeDay {
		day := dateOf(at)
		first := dateOf(w.from.In(w.loc))
		last := dateOf(w.to.Add(-time.Nanosecond).In(w.loc))
		return !day.Before(first) && !day.After(last)
	}
	return !at.Before(w.from) && at.Before(w.to)
}

// dateOf returns the calendar date of t as midnight UTC
func dateOf(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// readTime parses a DTSTART-like property. Dates become midnight UTC,
// floating date-times are read in loc.
func readTime(prop *ical.Prop, loc *time.Location) (time.Time, error) {
	if isDate(prop) {
		return prop.DateTime(time.UTC)
	}
	return prop.DateTime(loc)
}

// overrides collects the RECURRENCE-ID values per UID
func overrides(cal *ical.Calendar, loc *time.Location) map[string][]time.Time {
	out := make(map[string][]time.Time)
	for _, comp := range cal.Children {
		if comp.Name != ical.CompEvent {
			continue
		}
		prop := comp.Props.Get(ical.PropRecurrenceID)
		if prop == nil {
			continue
		}
		at, err := readTime(prop, loc)
		if err != nil {
			continue
		}
		uid := textProp(comp, ical.PropUID)
		out[uid] = append(out[uid], at)
	}
	return out
}

func vevent(comp *ical.Component, w window, moved []time.Time) ([]domain.Event, error) {
	startProp := comp.Props.Get(ical.PropDateTimeStart)
	if startProp == nil {
		return nil, errNoStart
	}
	start, err := readTime(startProp, w.loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", errNoStart, err)
	}
	wholeDay := isDate(startProp)

	var duration time.Duration
	if !wholeDay {
		if endProp := comp.Props.Get(ical.PropDateTimeEnd); endProp != nil {
			if end, err := readTime(endProp, w.loc); err == nil {
				duration = end.Sub(start)
			}
		}
	}

	title := domain.TitleOrUntitled(textProp(comp, ical.PropSummary))
	info := textProp(comp, ical.PropDescription)

	build := func(at time.Time) (domain.Event, error) {
		if wholeDay {
			return domain.NewWholeDayEvent(title, at, info)
		}
		return domain.NewEvent(title, at, at.Add(duration), info)
	}

	starts := []time.Time{start}
	if ruleProp := comp.Props.Get(ical.PropRecurrenceRule); ruleProp != nil {
		excluded := append(exDates(comp, start.Location()), moved...)
		starts, err = expand(ruleProp.Value, start, excluded, w)
		if err != nil {
			return nil, err
		}
	}

	var out []domain.Event
	for _, at := range starts {
		if !w.contains(at, wholeDay) {
			continue
		}
		e, err := build(at)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, nil
}

func expand(raw string, start time.Time, exdates []time.Time, w window) ([]time.Time, error) {
	r, err := rrule.StrToRRule(raw)
	if err != nil {
		return nil, fmt.Errorf("parse RRULE %q: %w", raw, err)
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range exdates {
		set.ExDate(ex)
	}

	// a day of slack on both sides, whole-day occurrences are filtered by local date
	occ := set.Between(w.from.Add(-24*time.Hour), w.to.Add(24*time.Hour), true)
	if len(occ) > maxOccurrencesPerRun {
		occ = occ[:maxOccurrencesPerRun]
	}
	return occ, nil
}

// exDates reads every EXDATE, including comma separated lists
func exDates(comp *ical.Component, loc *time.Location) []time.Time {
	var out []time.Time
	for _, prop := range comp.Props.Values(ical.PropExceptionDates) {
		exLoc := loc
		if tzid := prop.Params.Get(ical.ParamTimezoneID); tzid != "" {
			if l, err := time.LoadLocation(tzid); err == nil {
				exLoc = l
			}
		}
		for _, part := range strings.Split(prop.Value, ",") {
			if t, err := parseICSTime(strings.TrimSpace(part), exLoc); err == nil {
				out = append(out, t)
			}
		}
	}
	return out
}

func parseICSTime(v string, loc *time.Location) (time.Time, error) {
	switch {
	case v == "":
		return time.Time{}, errors.New("empty time value")
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, loc)
	default:
		return time.ParseInLocation("20060102", v, loc)
	}
}

func isDate(prop *ical.Prop) bool {
	if prop.Params.Get(ical.ParamValue) == string(ical.ValueDate) {
		return true
	}
	return len(prop.Value) == len("20060102")
}

func textProp(comp *ical.Component, name string) string {
	prop := comp.Props.Get(name)
	if prop == nil {
		return ""
	}
	s, err := prop.Text()
	if err != nil {
		return prop.Value
	}
	return s
}

// ToICS builds a single-occurrence VCALENDAR for PUT. Seconds are zeroed;
// an event without end gets a one hour slot.
func ToICS(e domain.Event, uid string, stamp time.Time) *ical.Calendar {
	start := e.StartTime.UTC().Truncate(time.Minute)
	end := start.Add(time.Hour)
	if !e.IsWholeDay() {
		end = e.EndTime.UTC().Truncate(time.Minute)
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, uid)
	event.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, start)
	event.Props.SetDateTime(ical.PropDateTimeEnd, end)
	event.Props.SetText(ical.PropSummary, e.Title)

	cal.Children = append(cal.Children, event.Component)
	return cal
}
