package gcal

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/calendar/v3"

	cal "github.com/tazhate/calendarskill/internal/calendar"
)

type rewriteTransport struct {
	Transport http.RoundTripper
	Host      string
}

func (t *rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.Host
	return t.Transport.RoundTrip(req)
}

const calendarList = `{"items": [
	{"id": "work", "selected": true},
	{"id": "holidays"},
	{"id": "family", "selected": true}
]}`

const workEvents = `{"items": [
	{"id": "w1", "summary": "Review", "start": {"dateTime": "2026-10-21T15:00:00Z"}, "end": {"dateTime": "2026-10-21T16:00:00Z"}},
	{"id": "w2", "summary": "Offsite", "start": {"date": "2026-10-21"}, "end": {"date": "2026-10-22"}},
	{"id": "w3", "summary": "Broken", "start": {}}
]}`

const familyEvents = `{"items": [
	{"id": "f1", "summary": "School run", "start": {"dateTime": "2026-10-21T08:00:00+02:00"}, "end": {"dateTime": "2026-10-21T08:30:00+02:00"},
	 "reminders": {"useDefault": false, "overrides": [{"method": "popup", "minutes": 15}]}}
]}`

const tripEvents = `{"items": [
	{"id": "t1", "summary": "Conference", "start": {"date": "2026-10-21"}, "end": {"date": "2026-10-22"}},
	{"id": "t2", "summary": "Keynote", "start": {"dateTime": "2026-10-21T09:00:00Z"}, "end": {"dateTime": "2026-10-21T10:00:00Z"}}
]}`

// writeEvents honors maxResults the way the API does
func writeEvents(t *testing.T, w http.ResponseWriter, r *http.Request, body string) {
	var events calendar.Events
	if !assert.NoError(t, json.Unmarshal([]byte(body), &events)) {
		return
	}
	if n, err := strconv.Atoi(r.URL.Query().Get("maxResults")); err == nil && n < len(events.Items) {
		events.Items = events.Items[:n]
	}
	assert.NoError(t, json.NewEncoder(w).Encode(&events))
}

type fakeAPI struct {
	mu       sync.Mutex
	inserted []*calendar.Event
	listed   []string
	status   int
}

func (f *fakeAPI) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		if f.status != 0 {
			w.WriteHeader(f.status)
			_, _ = w.Write([]byte(`{"error": {"code": 401, "message": "Invalid Credentials"}}`))
			return
		}

		switch {
		case r.URL.Path == "/calendar/v3/users/me/calendarList":
			_, _ = w.Write([]byte(calendarList))
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/calendar/v3/calendars/"):
			id := strings.Split(strings.TrimPrefix(r.URL.Path, "/calendar/v3/calendars/"), "/")[0]
			f.listed = append(f.listed, id)
			assert.Equal(t, "true", r.URL.Query().Get("singleEvents"))
			assert.Equal(t, "startTime", r.URL.Query().Get("orderBy"))
			switch id {
			case "work":
				writeEvents(t, w, r, workEvents)
			case "family":
				writeEvents(t, w, r, familyEvents)
			case "trip":
				writeEvents(t, w, r, tripEvents)
			default:
				_, _ = w.Write([]byte(`{"items": []}`))
			}
		case r.Method == http.MethodPost && r.URL.Path == "/calendar/v3/calendars/work/events":
			var body calendar.Event
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			f.inserted = append(f.inserted, &body)
			_, _ = w.Write([]byte(`{"id": "new", "status": "confirmed"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func newTestClient(t *testing.T, api *fakeAPI, opts Options) *Client {
	t.Helper()

	ts := httptest.NewServer(api.handler(t))
	t.Cleanup(ts.Close)

	httpClient := ts.Client()
	httpClient.Transport = &rewriteTransport{
		Transport: httpClient.Transport,
		Host:      strings.TrimPrefix(ts.URL, "http://"),
	}

	c, err := NewClientFromHTTP(context.Background(), httpClient, opts, nil)
	require.NoError(t, err)
	return c
}

func TestResolveSelectedCalendars(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, Options{})

	require.NoError(t, c.resolveCalendars(context.Background()))
	assert.Equal(t, []string{"work", "family"}, c.Calendars())
}

func TestResolveKeepsConfiguredCalendars(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, Options{CalendarIDs: []string{"holidays"}})

	require.NoError(t, c.resolveCalendars(context.Background()))
	assert.Equal(t, []string{"holidays"}, c.Calendars())
}

func TestGetEventsMergesCalendars(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, Options{CalendarIDs: []string{"work", "family"}})

	start := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	events, err := c.GetEvents(context.Background(), start, start.Add(24*time.Hour), 10)
	require.NoError(t, err)

	require.Len(t, events, 3)
	assert.Equal(t, "School run", events[0].Title)
	assert.Equal(t, time.Date(2026, 10, 21, 6, 0, 0, 0, time.UTC), events[0].StartTime)
	assert.Equal(t, "Review", events[1].Title)
	assert.Equal(t, "Offsite", events[2].Title)
	assert.True(t, events[2].IsWholeDay())

	assert.Equal(t, []string{"work", "family"}, api.listed)
}

func TestGetEventsCapsMerged(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, Options{CalendarIDs: []string{"work", "family"}})

	events, err := c.GetEvents(context.Background(), time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC), time.Time{}, 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "School run", events[0].Title)
}

func TestGetEventsTimedBeatsWholeDayUnderCap(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, Options{CalendarIDs: []string{"trip"}})

	start := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	events, err := c.GetEvents(context.Background(), start, start.Add(24*time.Hour), 1)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "Keynote", events[0].Title)
}

func TestAddEvent(t *testing.T) {
	api := &fakeAPI{}
	c := newTestClient(t, api, Options{CalendarIDs: []string{"work"}})

	start := time.Date(2026, 10, 21, 14, 30, 0, 0, time.UTC)
	e := mustEvent(t, "Dentist", start)
	require.NoError(t, c.AddEvent(context.Background(), e))

	require.Len(t, api.inserted, 1)
	assert.Equal(t, "Dentist", api.inserted[0].Summary)
	assert.Equal(t, "2026-10-21T14:30:00Z", api.inserted[0].Start.DateTime)
	assert.Equal(t, "UTC", api.inserted[0].End.TimeZone)
}

func TestUnauthorizedIsClassified(t *testing.T) {
	api := &fakeAPI{status: http.StatusUnauthorized}
	c := newTestClient(t, api, Options{})

	err := c.resolveCalendars(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, cal.ErrUnauthorized)

	err = c.AddEvent(context.Background(), mustEvent(t, "Dentist", time.Now()))
	assert.ErrorIs(t, err, cal.ErrUnauthorized)
}

func TestReminders(t *testing.T) {
	c := newTestClient(t, &fakeAPI{}, Options{CalendarIDs: []string{"family"}})

	from := time.Date(2026, 10, 21, 0, 0, 0, 0, time.UTC)
	got, err := c.Reminders(context.Background(), from, from.Add(12*time.Hour))
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, "School run", got[0].Message)
	assert.Equal(t, time.Date(2026, 10, 21, 5, 45, 0, 0, time.UTC), got[0].TriggerAt)
}
