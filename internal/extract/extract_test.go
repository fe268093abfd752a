package extract

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"the twenty first of October", "21 october"},
		{"What do I have on the third", "what do i have on 3"},
		{"tenth of november", "10 november"},
		{"thirty first of December", "31 december"},
		{"Schedule dentist at two", "schedule dentist at 2"},
		{"  tomorrow  ", "tomorrow"},
		{"someone", "someone"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestExtractTomorrow(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)
	base := time.Date(2026, 10, 18, 10, 0, 0, 0, loc)

	got, ok := New().Extract("what is on my calendar tomorrow", base)
	require.True(t, ok)
	assert.Equal(t, 19, got.Day())
	assert.Equal(t, time.October, got.Month())
	assert.Equal(t, loc, got.Location())
}

func TestExtractNothing(t *testing.T) {
	base := time.Date(2026, 10, 18, 10, 0, 0, 0, time.UTC)

	_, ok := New().Extract("hello there", base)
	assert.False(t, ok)

	_, ok = New().Extract("   ", base)
	assert.False(t, ok)
}
