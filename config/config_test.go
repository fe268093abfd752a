package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fromYAML(t *testing.T, doc string) (*Config, error) {
	t.Helper()
	v := viper.New()
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(doc)))
	return FromViper(v)
}

func TestFromViperYAML(t *testing.T) {
	cfg, err := fromYAML(t, `
telegram:
  bot_token: "123:abc"
  owner_id: 42
timezone: Europe/Stockholm
locale:
  lang: EN-GB
  use_24hour: true
caldav:
  url: https://dav.example.com
  username: me
  password: secret
google:
  calendar_ids: [primary, family@group.calendar.google.com]
reminders:
  check_interval: 30s
`)
	require.NoError(t, err)

	assert.Equal(t, "123:abc", cfg.Telegram.BotToken)
	assert.Equal(t, int64(42), cfg.Telegram.OwnerID)
	assert.Equal(t, "Europe/Stockholm", cfg.Timezone.String())
	assert.Equal(t, "en-gb", cfg.Locale.Lang)
	assert.True(t, cfg.Locale.Use24Hour)
	assert.Equal(t, "https://dav.example.com", cfg.CalDAV.URL)
	assert.Equal(t, 10*time.Second, cfg.CalDAV.Timeout)
	assert.Equal(t, []string{"primary", "family@group.calendar.google.com"}, cfg.Google.CalendarIDs)
	assert.Equal(t, 30*time.Second, cfg.Reminders.CheckInterval)
	assert.Equal(t, 5*time.Second, cfg.Connect.InitialBackoff)
	assert.Equal(t, 10*time.Minute, cfg.Connect.MaxBackoff)
	assert.Equal(t, "./data/calendarskill.db", cfg.Storage.DatabasePath)
	assert.True(t, cfg.IsAllowedUser(42))
	assert.False(t, cfg.IsAllowedUser(7))
}

func TestFromViperEnvOverlay(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("TELEGRAM_OWNER_ID", "99")
	t.Setenv("GOOGLE_CALENDAR_IDS", "work, home")
	t.Setenv("REMINDERS_CHECK_INTERVAL", "2m")

	cfg, err := fromYAML(t, `
telegram:
  bot_token: file-token
`)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, int64(99), cfg.Telegram.OwnerID)
	assert.Equal(t, []string{"work", "home"}, cfg.Google.CalendarIDs)
	assert.Equal(t, 2*time.Minute, cfg.Reminders.CheckInterval)
}

func TestFromViperFailsFast(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing token", "telegram:\n  owner_id: 1\n"},
		{"missing owner", "telegram:\n  bot_token: t\n"},
		{"bad timezone", "telegram:\n  bot_token: t\n  owner_id: 1\ntimezone: Mars/Olympus\n"},
		{"interval too short", "telegram:\n  bot_token: t\n  owner_id: 1\nreminders:\n  check_interval: 10ms\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fromYAML(t, tt.doc)
			assert.Error(t, err)
		})
	}
}
