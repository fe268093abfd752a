package skill

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/tazhate/calendarskill/internal/calendar"
	"github.com/tazhate/calendarskill/internal/clients/caldav"
	"github.com/tazhate/calendarskill/internal/clients/gcal"
	"github.com/tazhate/calendarskill/internal/storage"
)

// ErrNotConfigured makes Connect skip to the next connector
var ErrNotConfigured = errors.New("backend not configured")

// Connector builds a backend, or fails with ErrNotConfigured when it has
// nothing to connect with.
type Connector func(ctx context.Context) (calendar.Backend, error)

// SettingsStore holds connection parameters provisioned at runtime
type SettingsStore interface {
	GetSetting(key string) (string, error)
}

// CalDAVConnector connects with cfg, completing missing parameters from
// the settings store.
func CalDAVConnector(cfg caldav.Config, settings SettingsStore, logger *zap.Logger) Connector {
	return func(ctx context.Context) (calendar.Backend, error) {
		c := cfg
		if !c.IsConfigured() && settings != nil {
			if err := fillFromSettings(&c, settings); err != nil {
				return nil, err
			}
		}
		if !c.IsConfigured() {
			return nil, ErrNotConfigured
		}

		client, err := caldav.Connect(ctx, c, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}

func fillFromSettings(c *caldav.Config, settings SettingsStore) error {
	fields := []struct {
		key string
		dst *string
	}{
		{storage.SettingCalDAVURL, &c.URL},
		{storage.SettingCalDAVUsername, &c.Username},
		{storage.SettingCalDAVPassword, &c.Password},
	}
	for _, f := range fields {
		if *f.dst != "" {
			continue
		}
		v, err := settings.GetSetting(f.key)
		if err != nil {
			return fmt.Errorf("read setting %s: %w", f.key, err)
		}
		*f.dst = v
	}
	return nil
}

// GoogleConnector connects with the stored OAuth token of creds.Account
func GoogleConnector(creds gcal.Credentials, tokens gcal.TokenStore, opts gcal.Options, logger *zap.Logger) Connector {
	return func(ctx context.Context) (calendar.Backend, error) {
		if !creds.IsConfigured() {
			return nil, ErrNotConfigured
		}

		client, err := gcal.Connect(ctx, creds, tokens, opts, logger)
		if err != nil {
			return nil, err
		}
		return client, nil
	}
}
