package gcal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"

	"github.com/tazhate/calendarskill/internal/domain"
)

func TestToEventTimed(t *testing.T) {
	item := &calendar.Event{
		Summary: "Dentist",
		Start:   &calendar.EventDateTime{DateTime: "2026-10-21T14:30:00+02:00"},
		End:     &calendar.EventDateTime{DateTime: "2026-10-21T15:30:00+02:00"},
	}

	e, err := ToEvent(item)
	require.NoError(t, err)

	assert.Equal(t, "Dentist", e.Title)
	assert.Equal(t, time.Date(2026, 10, 21, 12, 30, 0, 0, time.UTC), e.StartTime)
	assert.Equal(t, time.Date(2026, 10, 21, 13, 30, 0, 0, time.UTC), e.EndTime)
	assert.Equal(t, time.UTC, e.StartTime.Location())
	assert.False(t, e.IsWholeDay())
}

func TestToEventZuluSuffix(t *testing.T) {
	item := &calendar.Event{
		Summary: "Call",
		Start:   &calendar.EventDateTime{DateTime: "2026-10-21T08:00:00Z"},
		End:     &calendar.EventDateTime{DateTime: "2026-10-21T08:30:00Z"},
	}

	e, err := ToEvent(item)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 21, 8, 0, 0, 0, time.UTC), e.StartTime)
}

func TestToEventWholeDayIgnoresEndDate(t *testing.T) {
	item := &calendar.Event{
		Summary: "Holiday",
		Start:   &calendar.EventDateTime{Date: "2026-10-21"},
		End:     &calendar.EventDateTime{Date: "2026-10-22"},
	}

	e, err := ToEvent(item)
	require.NoError(t, err)
	assert.True(t, e.IsWholeDay())
	assert.Equal(t, time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC), e.StartTime)
}

func TestToEventRejectsMissingStart(t *testing.T) {
	_, err := ToEvent(&calendar.Event{Summary: "Broken"})
	assert.Error(t, err)

	_, err = ToEvent(&calendar.Event{Summary: "Broken", Start: &calendar.EventDateTime{DateTime: "tomorrow"}})
	assert.Error(t, err)
}

func TestBuildInsert(t *testing.T) {
	start := time.Date(2026, 10, 21, 14, 30, 45, 0, time.FixedZone("CEST", 2*3600))
	e, err := domain.NewEvent("Dentist", start, start.Add(time.Hour), "")
	require.NoError(t, err)

	body := BuildInsert(e)
	assert.Equal(t, "Dentist", body.Summary)
	assert.Equal(t, "2026-10-21T12:30:00Z", body.Start.DateTime)
	assert.Equal(t, "UTC", body.Start.TimeZone)
	assert.Equal(t, "2026-10-21T13:30:00Z", body.End.DateTime)
	assert.Equal(t, "UTC", body.End.TimeZone)
}

func TestBuildInsertWithoutEnd(t *testing.T) {
	e, err := domain.NewEvent("Standup", time.Date(2026, 10, 21, 9, 0, 0, 0, time.UTC), time.Time{}, "")
	require.NoError(t, err)

	body := BuildInsert(e)
	assert.Equal(t, "2026-10-21T09:00:00Z", body.Start.DateTime)
	assert.Equal(t, "2026-10-21T10:00:00Z", body.End.DateTime)
}

func TestInsertRoundTrip(t *testing.T) {
	start := time.Date(2026, 10, 21, 14, 30, 0, 0, time.UTC)
	e, err := domain.NewEvent("Review", start, start.Add(90*time.Minute), "")
	require.NoError(t, err)

	back, err := ToEvent(BuildInsert(e))
	require.NoError(t, err)
	assert.Equal(t, e.Title, back.Title)
	assert.True(t, e.StartTime.Equal(back.StartTime))
	assert.True(t, e.EndTime.Equal(back.EndTime))
}

func TestPopupReminders(t *testing.T) {
	item := &calendar.Event{
		Summary: "Flight",
		Start:   &calendar.EventDateTime{DateTime: "2026-10-21T10:00:00Z"},
		End:     &calendar.EventDateTime{DateTime: "2026-10-21T12:00:00Z"},
		Reminders: &calendar.EventReminders{
			Overrides: []*calendar.EventReminder{
				{Method: "popup", Minutes: 30},
				{Method: "email", Minutes: 60},
			},
		},
	}
	e, err := ToEvent(item)
	require.NoError(t, err)

	got := popupReminders(item, e)
	require.Len(t, got, 1)
	assert.Equal(t, "Flight", got[0].Message)
	assert.Equal(t, time.Date(2026, 10, 21, 9, 30, 0, 0, time.UTC), got[0].TriggerAt)
	assert.Equal(t, domain.ReminderCalendar, got[0].Source)
}
