package caldav

import "time"

// Config holds the CalDAV connection parameters
type Config struct {
	URL      string
	Username string
	Password string
	// CalendarPath pins a calendar collection; empty means the first one discovered
	CalendarPath string
	Timeout      time.Duration
	// Location reads floating times and dates; nil means time.Local
	Location *time.Location
}

// IsConfigured returns true if the config has a server and credentials
func (c Config) IsConfigured() bool {
	return c.URL != "" && c.Username != "" && c.Password != ""
}

// Calendar is a calendar collection found on the server
type Calendar struct {
	Path        string
	DisplayName string
}
