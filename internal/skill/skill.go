// Package skill is the calendar skill façade. It owns the connected
// backend and turns intents into spoken responses.
package skill

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tazhate/calendarskill/internal/calendar"
	"github.com/tazhate/calendarskill/internal/dates"
	"github.com/tazhate/calendarskill/internal/dialog"
	"github.com/tazhate/calendarskill/internal/domain"
	"github.com/tazhate/calendarskill/internal/intent"
	"github.com/tazhate/calendarskill/internal/service"
)

const (
	DefaultCallTimeout = 15 * time.Second
	// ReminderHorizon bounds the calendar reminders polled at connect
	ReminderHorizon = 7 * 24 * time.Hour

	dayMaxResults = 50
	eventLength   = time.Hour
)

// Speaker is the host's speech output
type Speaker interface {
	SpeakDialog(ctx context.Context, resp dialog.Response) error
	Speak(ctx context.Context, text string) error
}

// DateExtractor finds a date in free text relative to base
type DateExtractor interface {
	Extract(utterance string, base time.Time) (time.Time, bool)
}

type Options struct {
	// Connectors are tried in order on every connect attempt
	Connectors  []Connector
	Calendar    *dates.Calendar
	Format      dates.FormatOptions
	Extractor   DateExtractor
	Speaker     Speaker
	Reminders   *service.ReminderService
	CallTimeout time.Duration
	Logger      *zap.Logger
}

// Skill serializes every handler behind one mutex. The backend is written
// only by Connect.
type Skill struct {
	mu sync.Mutex

	backend     calendar.Backend
	connectors  []Connector
	cal         *dates.Calendar
	selector    *dialog.Selector
	extractor   DateExtractor
	speaker     Speaker
	reminders   *service.ReminderService
	callTimeout time.Duration
	logger      *zap.Logger
}

func New(opts Options) *Skill {
	if opts.Calendar == nil {
		opts.Calendar = dates.NewCalendar(nil, nil)
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = DefaultCallTimeout
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Skill{
		connectors:  opts.Connectors,
		cal:         opts.Calendar,
		selector:    dialog.NewSelector(opts.Calendar, opts.Format),
		extractor:   opts.Extractor,
		speaker:     opts.Speaker,
		reminders:   opts.Reminders,
		callTimeout: opts.CallTimeout,
		logger:      opts.Logger.With(zap.String("component", "skill")),
	}
}

// Connect selects the backend from the first configured connector. Once
// connected it is a no-op. Calendar reminders are polled on success.
func (s *Skill) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backend != nil {
		return nil
	}

	for _, dial := range s.connectors {
		b, err := dial(ctx)
		if errors.Is(err, ErrNotConfigured) {
			continue
		}
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}

		s.backend = b
		s.logger.Info("Calendar connected", zap.String("backend", string(b.Kind())))
		s.pollCalendarReminders(ctx)
		return nil
	}
	return calendar.ErrNotConnected
}

// Connected returns the active backend kind, empty when unconnected
func (s *Skill) Connected() calendar.Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend == nil {
		return ""
	}
	return s.backend.Kind()
}

func (s *Skill) pollCalendarReminders(ctx context.Context) {
	src, ok := s.backend.(calendar.ReminderSource)
	if !ok || s.reminders == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	now := s.cal.Now()
	rs, err := src.Reminders(ctx, now, now.Add(ReminderHorizon))
	if err != nil {
		s.logger.Warn("Failed to poll calendar reminders", zap.Error(err))
		return
	}
	s.reminders.SetCalendarReminders(rs)
	s.logger.Info("Calendar reminders loaded", zap.Int("count", len(rs)))
}

// Handle dispatches a recognized intent. It returns false for an intent
// the skill does not serve.
func (s *Skill) Handle(ctx context.Context, in intent.Intent) (bool, error) {
	switch in.Name {
	case intent.GetNextAppointment:
		return true, s.Next(ctx)
	case intent.GetDaysAppointments:
		return true, s.Day(ctx, in.Utterance)
	case intent.GetFirstAppointment:
		return true, s.First(ctx, in.Utterance)
	case intent.ScheduleAt:
		return true, s.Add(ctx, in.Slots[intent.SlotAppointmentTitle], in.Slots[intent.SlotWhen])
	case intent.RemindAt:
		return true, s.Remind(ctx, in.Slots[intent.SlotMessage], in.Slots[intent.SlotWhen])
	}
	return false, nil
}

// Next speaks the next upcoming event
func (s *Skill) Next(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready("next") {
		return nil
	}
	events := s.read(ctx, s.cal.Now(), time.Time{}, calendar.DefaultMaxResults)
	return s.speaker.SpeakDialog(ctx, s.selector.Next(events))
}

// Day lists the events of the day named in the utterance
func (s *Skill) Day(ctx context.Context, utterance string) error {
	return s.day(ctx, utterance, dayMaxResults)
}

// First speaks the first event of the day named in the utterance
func (s *Skill) First(ctx context.Context, utterance string) error {
	return s.day(ctx, utterance, 1)
}

func (s *Skill) day(ctx context.Context, utterance string, maxResults int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready("day") {
		return nil
	}
	when, ok := s.extract(utterance)
	if !ok {
		return nil
	}

	start, end := s.cal.DayBounds(when)
	events := s.read(ctx, start, end, maxResults)
	for _, resp := range s.selector.Day(start, calendar.Limit(events, maxResults)) {
		if err := s.speaker.SpeakDialog(ctx, resp); err != nil {
			return err
		}
	}
	return nil
}

// Add creates a one-hour event starting at the time named in the utterance
func (s *Skill) Add(ctx context.Context, title, utterance string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready("add") {
		return nil
	}
	title = strings.TrimSpace(title)
	start, ok := s.extract(utterance)
	if !ok {
		return nil
	}

	event, err := domain.NewEvent(title, start, start.Add(eventLength), "")
	if err != nil {
		s.logger.Debug("Declined add", zap.Error(err))
		return nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	err = s.backend.AddEvent(callCtx, event)
	if err != nil {
		s.logger.Error("Failed to add event",
			zap.String("backend", string(s.backend.Kind())),
			zap.String("title", title),
			zap.Error(err),
		)
	}
	return s.speaker.SpeakDialog(ctx, s.selector.Added(title, err == nil))
}

// Remind saves a local reminder. The confirmation is spoken before the
// reminder is stored.
func (s *Skill) Remind(ctx context.Context, message, utterance string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reminders == nil || strings.TrimSpace(message) == "" {
		return nil
	}
	at, ok := s.extract(utterance)
	if !ok {
		return nil
	}

	if err := s.speaker.SpeakDialog(ctx, s.selector.ReminderSaved(at)); err != nil {
		return err
	}
	if _, err := s.reminders.Add(message, at); err != nil {
		s.logger.Error("Failed to save reminder", zap.Error(err))
	}
	return nil
}

// Help speaks the usage dialog
func (s *Skill) Help(ctx context.Context) error {
	return s.speaker.SpeakDialog(ctx, dialog.Response{Dialog: dialog.Help})
}

// CheckReminders speaks every reminder that is due
func (s *Skill) CheckReminders(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.reminders == nil {
		return
	}
	s.reminders.CheckDue(s.cal.Now(), func(message string) error {
		return s.speaker.Speak(ctx, message)
	})
}

func (s *Skill) ready(handler string) bool {
	if s.backend == nil {
		s.logger.Debug("Ignoring intent while unconnected", zap.String("handler", handler))
		return false
	}
	return true
}

func (s *Skill) extract(utterance string) (time.Time, bool) {
	if s.extractor == nil {
		return time.Time{}, false
	}
	when, ok := s.extractor.Extract(utterance, s.cal.Now())
	if !ok {
		s.logger.Debug("No date in utterance", zap.String("utterance", utterance))
	}
	return when, ok
}

// read treats a failed query like an empty one; the failure is only logged
func (s *Skill) read(ctx context.Context, start, end time.Time, maxResults int) []domain.Event {
	ctx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	events, err := s.backend.GetEvents(ctx, start, end, maxResults)
	if err != nil {
		s.logger.Error("Failed to read events",
			zap.String("backend", string(s.backend.Kind())),
			zap.Time("start", start),
			zap.Error(err),
		)
		return nil
	}
	return events
}
