package service

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tazhate/calendarskill/internal/domain"
	"github.com/tazhate/calendarskill/internal/storage"
)

func newTestService(t *testing.T) *ReminderService {
	t.Helper()
	st, err := storage.New(filepath.Join(t.TempDir(), "skill.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return NewReminderService(st, nil)
}

type spoken struct {
	messages []string
	err      error
}

func (s *spoken) speak(msg string) error {
	if s.err != nil {
		return s.err
	}
	s.messages = append(s.messages, msg)
	return nil
}

func TestCheckDueFiresOnce(t *testing.T) {
	svc := newTestService(t)
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

	_, err := svc.Add("stretch", now.Add(-time.Second))
	require.NoError(t, err)
	_, err = svc.Add("call mom", now.Add(time.Hour))
	require.NoError(t, err)

	out := &spoken{}
	assert.Equal(t, 1, svc.CheckDue(now, out.speak))
	assert.Equal(t, []string{"stretch"}, out.messages)

	assert.Zero(t, svc.CheckDue(now, out.speak))

	pending, err := svc.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "call mom", pending[0].Message)
}

func TestAddRejectsEmptyMessage(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.Add("   ", time.Now())
	assert.ErrorIs(t, err, ErrEmptyReminder)
}

func TestCalendarReminders(t *testing.T) {
	svc := newTestService(t)
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

	svc.SetCalendarReminders([]domain.Reminder{
		{Message: "Standup", TriggerAt: now.Add(-time.Minute)},
		{Message: "Review", TriggerAt: now.Add(30 * time.Minute)},
	})

	out := &spoken{}
	assert.Equal(t, 1, svc.CheckDue(now, out.speak))
	assert.Equal(t, []string{"Standup"}, out.messages)

	pending, err := svc.Pending()
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, domain.ReminderCalendar, pending[0].Source)

	assert.Equal(t, 1, svc.CheckDue(now.Add(time.Hour), out.speak))
	assert.Equal(t, []string{"Standup", "Review"}, out.messages)
}

func TestSpeakFailureDoesNotRepeat(t *testing.T) {
	svc := newTestService(t)
	now := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

	_, err := svc.Add("stretch", now.Add(-time.Minute))
	require.NoError(t, err)

	broken := &spoken{err: errors.New("speaker offline")}
	assert.Zero(t, svc.CheckDue(now, broken.speak))

	out := &spoken{}
	assert.Zero(t, svc.CheckDue(now, out.speak))
	assert.Empty(t, out.messages)
}
