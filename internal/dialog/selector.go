package dialog

import (
	"time"

	"github.com/tazhate/calendarskill/internal/calendar"
	"github.com/tazhate/calendarskill/internal/dates"
	"github.com/tazhate/calendarskill/internal/domain"
)

// Selector maps query outcomes to responses. It holds no state besides the
// calendar used to classify dates and the locale used to format them.
type Selector struct {
	cal  *dates.Calendar
	opts dates.FormatOptions
}

func NewSelector(cal *dates.Calendar, opts dates.FormatOptions) *Selector {
	return &Selector{cal: cal, opts: opts}
}

// NoEvents classifies an empty bounded query by its start boundary
func (s *Selector) NoEvents(start time.Time) Response {
	switch {
	case s.cal.IsToday(start):
		return Response{Dialog: NoAppointmentsToday}
	case s.cal.IsTomorrow(start):
		return Response{Dialog: NoAppointmentsTomorrow}
	default:
		return Response{Dialog: NoAppointments}
	}
}

// Next picks the first event under the merge ordering and describes it
func (s *Selector) Next(events []domain.Event) Response {
	if len(events) == 0 {
		return Response{Dialog: NoNextAppointments}
	}

	ordered := append([]domain.Event(nil), events...)
	calendar.SortEvents(ordered)
	e := ordered[0]
	day := s.cal.EventDay(e)

	if e.IsWholeDay() {
		switch {
		case s.cal.IsToday(day):
			return s.response(NextAppointmentWholeToday, e)
		case s.cal.IsTomorrow(day):
			return s.response(NextAppointmentWholeTomorrow, e)
		default:
			return s.response(NextAppointmentWholeDay, e, SlotDate)
		}
	}

	switch {
	case s.cal.IsToday(day):
		return s.response(NextAppointment, e, SlotTime)
	case s.cal.IsTomorrow(day):
		return s.response(NextAppointmentTomorrow, e, SlotTime)
	default:
		return s.response(NextAppointmentDate, e, SlotTime, SlotDate)
	}
}

// Day enumerates a bounded query. An empty result yields a single
// NoEvents response for start.
func (s *Selector) Day(start time.Time, events []domain.Event) []Response {
	if len(events) == 0 {
		return []Response{s.NoEvents(start)}
	}

	out := make([]Response, 0, len(events))
	for _, e := range events {
		if e.IsWholeDay() {
			out = append(out, s.response(WholedayAppointment, e))
			continue
		}
		out = append(out, s.response(NextAppointment, e, SlotTime))
	}
	return out
}

// Added reports the outcome of an event creation
func (s *Selector) Added(title string, ok bool) Response {
	name := AddFailed
	if ok {
		name = AddSucceeded
	}
	return Response{Dialog: name, Data: map[string]string{SlotAppointment: title}}
}

// ReminderSaved confirms a reminder at the given trigger time
func (s *Selector) ReminderSaved(at time.Time) Response {
	local := at.In(s.cal.Location())
	return Response{
		Dialog: SavingReminder,
		Data:   map[string]string{SlotTimeDate: dates.NiceDateTime(local, s.opts)},
	}
}

func (s *Selector) response(name Name, e domain.Event, slots ...string) Response {
	day := s.cal.EventDay(e)
	data := map[string]string{SlotAppointment: e.Title}
	for _, slot := range slots {
		switch slot {
		case SlotTime:
			data[SlotTime] = dates.NiceTime(day, s.opts, true)
		case SlotDate:
			data[SlotDate] = dates.NiceDate(day, s.opts.Lang)
		}
	}
	return Response{Dialog: name, Data: data}
}
