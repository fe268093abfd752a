// Package gcal is the Google Calendar backend.
package gcal

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	cal "github.com/tazhate/calendarskill/internal/calendar"
	"github.com/tazhate/calendarskill/internal/domain"
)

const (
	PrimaryCalendar = "primary"
	DefaultTimeout  = 10 * time.Second

	// Google lists whole-day events ahead of timed ones; each calendar is
	// read past the cap so the merge can still order timed events first.
	listSurplus = 10
)

type Options struct {
	// CalendarIDs pins the calendars to read. Empty means every calendar
	// selected in the user's calendar list.
	CalendarIDs []string
	Timeout     time.Duration
}

// Client wraps the Google Calendar API service
type Client struct {
	service     *calendar.Service
	calendarIDs []string
	timeout     time.Duration
	logger      *zap.Logger
}

// Connect loads the stored OAuth token, builds an authorized client and
// resolves the calendars to read. It fails with ErrNoToken when nothing
// was provisioned yet.
func Connect(ctx context.Context, creds Credentials, store TokenStore, opts Options, logger *zap.Logger) (*Client, error) {
	ts, err := NewTokenSource(context.WithoutCancel(ctx), creds, store, logger)
	if err != nil {
		return nil, err
	}

	httpClient := oauth2.NewClient(context.WithoutCancel(ctx), ts)
	httpClient.Timeout = timeoutOrDefault(opts.Timeout)

	c, err := NewClientFromHTTP(ctx, httpClient, opts, logger)
	if err != nil {
		return nil, err
	}
	if err := c.resolveCalendars(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

// NewClientFromHTTP creates a client from a pre-configured HTTP client
func NewClientFromHTTP(ctx context.Context, httpClient *http.Client, opts Options, logger *zap.Logger) (*Client, error) {
	svc, err := calendar.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		service:     svc,
		calendarIDs: opts.CalendarIDs,
		timeout:     timeoutOrDefault(opts.Timeout),
		logger:      logger.With(zap.String("backend", string(cal.KindGoogle))),
	}, nil
}

func timeoutOrDefault(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultTimeout
	}
	return d
}

func (c *Client) Kind() cal.Kind { return cal.KindGoogle }

// Calendars returns the calendar ids this client reads
func (c *Client) Calendars() []string {
	return append([]string(nil), c.calendarIDs...)
}

// resolveCalendars doubles as the credential check at connect time
func (c *Client) resolveCalendars(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	list, err := c.service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("list calendars: %w", classify(err))
	}
	if len(c.calendarIDs) > 0 {
		return nil
	}

	for _, item := range list.Items {
		if item.Selected {
			c.calendarIDs = append(c.calendarIDs, item.Id)
		}
	}
	if len(c.calendarIDs) == 0 {
		c.calendarIDs = []string{PrimaryCalendar}
	}
	c.logger.Info("Google calendars resolved", zap.Strings("calendars", c.calendarIDs))
	return nil
}

func (c *Client) ids() []string {
	if len(c.calendarIDs) == 0 {
		return []string{PrimaryCalendar}
	}
	return c.calendarIDs
}

// GetEvents issues one list call per calendar and merges the results
func (c *Client) GetEvents(ctx context.Context, start, end time.Time, maxResults int) ([]domain.Event, error) {
	if maxResults <= 0 {
		maxResults = cal.DefaultMaxResults
	}

	lists := make([][]domain.Event, 0, len(c.ids()))
	for _, id := range c.ids() {
		items, err := c.list(ctx, id, start, end, maxResults+listSurplus)
		if err != nil {
			return nil, err
		}

		events := make([]domain.Event, 0, len(items))
		for _, item := range items {
			e, err := ToEvent(item)
			if err != nil {
				c.logger.Warn("Skipping event", zap.String("calendar", id), zap.String("event_id", item.Id), zap.Error(err))
				continue
			}
			events = append(events, e)
		}
		lists = append(lists, events)
	}

	return cal.Merge(maxResults, lists...), nil
}

func (c *Client) list(ctx context.Context, calendarID string, start, end time.Time, maxResults int) ([]*calendar.Event, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	call := c.service.Events.List(calendarID).
		Context(ctx).
		TimeMin(start.UTC().Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		MaxResults(int64(maxResults))
	if !end.IsZero() {
		call = call.TimeMax(end.UTC().Format(time.RFC3339))
	}

	resp, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("list events in %s: %w", calendarID, classify(err))
	}
	return resp.Items, nil
}

// AddEvent inserts into the first calendar read by this client
func (c *Client) AddEvent(ctx context.Context, e domain.Event) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	calendarID := c.ids()[0]
	if _, err := c.service.Events.Insert(calendarID, BuildInsert(e)).Context(ctx).Do(); err != nil {
		return fmt.Errorf("insert event: %w", classify(err))
	}
	return nil
}

// Reminders collects popup reminder overrides whose trigger falls in
// [from, to). Events up to a day past to are read since a reminder fires
// ahead of its event.
func (c *Client) Reminders(ctx context.Context, from, to time.Time) ([]domain.Reminder, error) {
	var out []domain.Reminder
	for _, id := range c.ids() {
		items, err := c.list(ctx, id, from, to.Add(24*time.Hour), 250)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			e, err := ToEvent(item)
			if err != nil {
				continue
			}
			for _, r := range popupReminders(item, e) {
				if !r.TriggerAt.Before(from) && r.TriggerAt.Before(to) {
					out = append(out, r)
				}
			}
		}
	}
	return out, nil
}

// classify maps provider errors onto the calendar sentinels
func classify(err error) error {
	var ae *googleapi.Error
	if errors.As(err, &ae) {
		switch {
		case ae.Code == http.StatusUnauthorized || ae.Code == http.StatusForbidden:
			return fmt.Errorf("%w: %w", cal.ErrUnauthorized, err)
		case ae.Code == http.StatusBadRequest:
			return fmt.Errorf("%w: %w", cal.ErrInvalidEvent, err)
		}
		return fmt.Errorf("%w: %w", cal.ErrUnavailable, err)
	}

	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		return fmt.Errorf("%w: %w", cal.ErrUnauthorized, err)
	}
	return fmt.Errorf("%w: %w", cal.ErrUnavailable, err)
}
