package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all skill configuration.
type Config struct {
	Telegram  TelegramConfig
	Storage   StorageConfig
	Timezone  *time.Location
	Locale    LocaleConfig
	CalDAV    CalDAVConfig
	Google    GoogleConfig
	Reminders RemindersConfig
	Connect   ConnectConfig
	Logger    LoggerConfig
}

type TelegramConfig struct {
	BotToken   string
	OwnerID    int64
	WebhookURL string // empty means long polling
	ServerPort string
}

type StorageConfig struct {
	DatabasePath string
}

type LocaleConfig struct {
	Lang      string
	Use24Hour bool
	UseAMPM   bool
}

type CalDAVConfig struct {
	URL          string
	Username     string
	Password     string
	CalendarPath string
	Timeout      time.Duration
}

type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	Account      string
	TokenFile    string
	CalendarIDs  []string
	Timeout      time.Duration
}

type RemindersConfig struct {
	CheckInterval time.Duration
}

type ConnectConfig struct {
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

type LoggerConfig struct {
	Level    string
	Encoding string
}

// Load reads config.yaml from the usual places, overlaid by environment
// variables (telegram.bot_token -> TELEGRAM_BOT_TOKEN).
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath(".")
	v.AddConfigPath("/etc/calendarskill/")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from an already populated viper instance
func FromViper(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	setDefaults(v)

	cfg := &Config{}

	cfg.Telegram.BotToken = v.GetString("telegram.bot_token")
	if cfg.Telegram.BotToken == "" {
		return nil, fmt.Errorf("telegram.bot_token (TELEGRAM_BOT_TOKEN) is required")
	}
	cfg.Telegram.OwnerID = v.GetInt64("telegram.owner_id")
	if cfg.Telegram.OwnerID == 0 {
		return nil, fmt.Errorf("telegram.owner_id (TELEGRAM_OWNER_ID) is required and must be a number")
	}
	cfg.Telegram.WebhookURL = v.GetString("telegram.webhook_url")
	cfg.Telegram.ServerPort = v.GetString("telegram.server_port")

	cfg.Storage.DatabasePath = v.GetString("storage.database_path")

	tz, err := time.LoadLocation(v.GetString("timezone"))
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}
	cfg.Timezone = tz

	cfg.Locale.Lang = strings.ToLower(v.GetString("locale.lang"))
	cfg.Locale.Use24Hour = v.GetBool("locale.use_24hour")
	cfg.Locale.UseAMPM = v.GetBool("locale.use_ampm")

	cfg.CalDAV.URL = v.GetString("caldav.url")
	cfg.CalDAV.Username = v.GetString("caldav.username")
	cfg.CalDAV.Password = v.GetString("caldav.password")
	cfg.CalDAV.CalendarPath = v.GetString("caldav.calendar_path")
	cfg.CalDAV.Timeout = v.GetDuration("caldav.timeout")

	cfg.Google.ClientID = v.GetString("google.client_id")
	cfg.Google.ClientSecret = v.GetString("google.client_secret")
	cfg.Google.Account = v.GetString("google.account")
	cfg.Google.TokenFile = v.GetString("google.token_file")
	cfg.Google.CalendarIDs = splitList(v.Get("google.calendar_ids"))
	cfg.Google.Timeout = v.GetDuration("google.timeout")

	cfg.Reminders.CheckInterval = v.GetDuration("reminders.check_interval")
	if cfg.Reminders.CheckInterval < time.Second {
		return nil, fmt.Errorf("reminders.check_interval must be at least 1s")
	}

	cfg.Connect.InitialBackoff = v.GetDuration("connect.initial_backoff")
	cfg.Connect.MaxBackoff = v.GetDuration("connect.max_backoff")

	cfg.Logger.Level = v.GetString("logger.level")
	cfg.Logger.Encoding = v.GetString("logger.encoding")

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("telegram.server_port", "8080")
	v.SetDefault("storage.database_path", "./data/calendarskill.db")
	v.SetDefault("timezone", "UTC")
	v.SetDefault("locale.lang", "en-us")
	v.SetDefault("locale.use_24hour", false)
	v.SetDefault("locale.use_ampm", true)
	v.SetDefault("caldav.timeout", "10s")
	v.SetDefault("google.account", "default")
	v.SetDefault("google.timeout", "10s")
	v.SetDefault("reminders.check_interval", "120s")
	v.SetDefault("connect.initial_backoff", "5s")
	v.SetDefault("connect.max_backoff", "10m")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.encoding", "console")
}

// splitList accepts a yaml list or a comma separated env value
func splitList(raw any) []string {
	var items []string
	switch val := raw.(type) {
	case string:
		items = strings.Split(val, ",")
	case []any:
		for _, item := range val {
			items = append(items, fmt.Sprint(item))
		}
	case []string:
		items = val
	}

	var out []string
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// IsAllowedUser returns true for the owner chat only
func (c *Config) IsAllowedUser(telegramID int64) bool {
	return telegramID == c.Telegram.OwnerID
}
