// Package caldav is the CalDAV calendar backend.
package caldav

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav/caldav"
	"github.com/google/uuid"
	"go.uber.org/zap"

	cal "github.com/tazhate/calendarskill/internal/calendar"
	"github.com/tazhate/calendarskill/internal/domain"
)

const DefaultTimeout = 10 * time.Second

// Client reads and writes one CalDAV calendar collection
type Client struct {
	client       *caldav.Client
	calendarPath string
	timeout      time.Duration
	loc          *time.Location
	logger       *zap.Logger

	now   func() time.Time
	newID func() string
}

// Connect authenticates against the server and picks the calendar. Without
// a configured path the first calendar of the user's home set is used.
func Connect(ctx context.Context, cfg Config, logger *zap.Logger) (*Client, error) {
	if !cfg.IsConfigured() {
		return nil, fmt.Errorf("caldav: %w", cal.ErrNotConnected)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	httpClient := &http.Client{
		Transport: &basicAuthTransport{
			username: cfg.Username,
			password: cfg.Password,
		},
		Timeout: timeout,
	}

	dav, err := caldav.NewClient(httpClient, cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("connect to CalDAV: %w", err)
	}

	c := &Client{
		client:       dav,
		calendarPath: cfg.CalendarPath,
		timeout:      timeout,
		loc:          loc,
		logger:       logger.With(zap.String("backend", string(cal.KindCalDAV))),
		now:          time.Now,
		newID:        uuid.NewString,
	}

	if c.calendarPath == "" {
		cals, err := c.DiscoverCalendars(ctx)
		if err != nil {
			return nil, err
		}
		if len(cals) == 0 {
			return nil, fmt.Errorf("no calendars on %s: %w", cfg.URL, cal.ErrUnavailable)
		}
		c.calendarPath = cals[0].Path
	}

	c.logger.Info("Using calendar", zap.String("path", c.calendarPath))
	return c, nil
}

// basicAuthTransport adds Basic Auth to HTTP requests and turns rejected
// credentials into ErrUnauthorized
type basicAuthTransport struct {
	username string
	password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	resp, err := http.DefaultTransport.RoundTrip(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", cal.ErrUnavailable, err)
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: %s", cal.ErrUnauthorized, resp.Status)
	}
	return resp, nil
}

func (c *Client) Kind() cal.Kind { return cal.KindCalDAV }

// CalendarPath returns the collection this client reads and writes
func (c *Client) CalendarPath() string { return c.calendarPath }

// DiscoverCalendars returns all calendars for the user
func (c *Client) DiscoverCalendars(ctx context.Context) ([]Calendar, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	principal, err := c.client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return nil, fmt.Errorf("find principal: %w", err)
	}

	homeSet, err := c.client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return nil, fmt.Errorf("find home set: %w", err)
	}

	cals, err := c.client.FindCalendars(ctx, homeSet)
	if err != nil {
		return nil, fmt.Errorf("find calendars: %w", err)
	}

	result := make([]Calendar, 0, len(cals))
	for _, cl := range cals {
		result = append(result, Calendar{
			Path:        cl.Path,
			DisplayName: cl.Name,
		})
	}
	return result, nil
}

// GetEvents queries the time range, expanding recurring events locally
func (c *Client) GetEvents(ctx context.Context, start, end time.Time, maxResults int) ([]domain.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	to := end
	if to.IsZero() {
		to = start.Add(RecurrenceHorizon)
	}

	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name:     "VCALENDAR",
			AllProps: true,
			AllComps: true,
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{
					Name:  "VEVENT",
					// whole-day events are floating, the local filter trims the slack
					Start: start.Add(-24 * time.Hour).UTC(),
					End:   to.Add(24 * time.Hour).UTC(),
				},
			},
		},
	}

	objects, err := c.client.QueryCalendar(ctx, c.calendarPath, query)
	if err != nil {
		return nil, fmt.Errorf("query calendar: %w", err)
	}

	var events []domain.Event
	for _, obj := range objects {
		if obj.Data == nil {
			c.logger.Warn("Skipping empty calendar object", zap.String("path", obj.Path))
			continue
		}
		events = append(events, ToEvents(obj.Data, start, to, c.loc, c.logger)...)
	}

	return cal.Merge(maxResults, events), nil
}

// AddEvent stores the event as a new calendar object
func (c *Client) AddEvent(ctx context.Context, e domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	uid := c.newID()
	eventPath := c.calendarPath
	if !strings.HasSuffix(eventPath, "/") {
		eventPath += "/"
	}
	eventPath += uid + ".ics"

	obj := ToICS(e, uid, c.now())
	if _, err := c.client.PutCalendarObject(ctx, eventPath, obj); err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	c.logCreated(eventPath, obj)
	return nil
}

func (c *Client) logCreated(path string, obj *ical.Calendar) {
	if !c.logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	text, err := SerializeCalendar(obj)
	if err != nil {
		c.logger.Debug("Event created", zap.String("path", path), zap.Error(err))
		return
	}
	c.logger.Debug("Event created", zap.String("path", path), zap.String("ics", text))
}

// SerializeCalendar renders a calendar as text, for debug logging
func SerializeCalendar(data *ical.Calendar) (string, error) {
	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(data); err != nil {
		return "", fmt.Errorf("encode calendar: %w", err)
	}
	return buf.String(), nil
}
