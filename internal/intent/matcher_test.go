package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchKeywordIntents(t *testing.T) {
	m := NewMatcher(DefaultVocabulary)

	tests := []struct {
		utterance string
		want      string
	}{
		{"What is my next appointment?", GetNextAppointment},
		{"anything upcoming on my calendar", GetNextAppointment},
		{"What's my first meeting tomorrow", GetFirstAppointment},
		{"What do I have on my calendar tomorrow", GetDaysAppointments},
		{"show my agenda for october 21", GetDaysAppointments},
	}

	for _, tt := range tests {
		t.Run(tt.utterance, func(t *testing.T) {
			got, ok := m.Match(tt.utterance)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.Name)
			assert.Equal(t, tt.utterance, got.Utterance)
		})
	}
}

func TestMatchScheduleAt(t *testing.T) {
	m := NewMatcher(DefaultVocabulary)

	got, ok := m.Match("Schedule dentist at 3pm tomorrow")
	require.True(t, ok)
	assert.Equal(t, ScheduleAt, got.Name)
	assert.Equal(t, "dentist", got.Slots[SlotAppointmentTitle])
	assert.Equal(t, "3pm tomorrow", got.Slots[SlotWhen])

	got, ok = m.Match("add an appointment team lunch on friday")
	require.True(t, ok)
	assert.Equal(t, "team lunch", got.Slots[SlotAppointmentTitle])
	assert.Equal(t, "friday", got.Slots[SlotWhen])
}

func TestMatchRemind(t *testing.T) {
	m := NewMatcher(DefaultVocabulary)

	got, ok := m.Match("Remind me to call mom at 5pm")
	require.True(t, ok)
	assert.Equal(t, RemindAt, got.Name)
	assert.Equal(t, "call mom", got.Slots[SlotMessage])
	assert.Equal(t, "at 5pm", got.Slots[SlotWhen])

	got, ok = m.Match("remind me to water the plants tomorrow at 9")
	require.True(t, ok)
	assert.Equal(t, "water the plants", got.Slots[SlotMessage])
	assert.Equal(t, "tomorrow at 9", got.Slots[SlotWhen])
}

func TestMatchNothing(t *testing.T) {
	m := NewMatcher(DefaultVocabulary)

	for _, u := range []string{"", "hello", "what time is it", "next song please"} {
		_, ok := m.Match(u)
		assert.False(t, ok, u)
	}
}
