package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tazhate/calendarskill/internal/domain"
)

var ErrEmptyReminder = errors.New("reminder message cannot be empty")

// ReminderStore persists local reminders
type ReminderStore interface {
	CreateReminder(r *domain.Reminder) error
	ListReminders() ([]*domain.Reminder, error)
	ListDueReminders(now time.Time) ([]*domain.Reminder, error)
	DeleteReminder(id int64) error
}

// ReminderService keeps pending reminders from two sources: local ones in
// the store and calendar popups held in memory. A reminder fires once and
// is then removed from its source.
type ReminderService struct {
	store  ReminderStore
	logger *zap.Logger

	mu       sync.Mutex
	calendar []domain.Reminder
}

func NewReminderService(store ReminderStore, logger *zap.Logger) *ReminderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReminderService{
		store:  store,
		logger: logger.With(zap.String("component", "reminders")),
	}
}

// Add saves a local reminder
func (s *ReminderService) Add(message string, at time.Time) (*domain.Reminder, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, ErrEmptyReminder
	}

	r := &domain.Reminder{
		Message:   message,
		TriggerAt: at,
		Source:    domain.ReminderLocal,
	}
	if err := s.store.CreateReminder(r); err != nil {
		return nil, fmt.Errorf("create reminder: %w", err)
	}
	return r, nil
}

// SetCalendarReminders replaces the in-memory calendar reminders
func (s *ReminderService) SetCalendarReminders(rs []domain.Reminder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendar = append([]domain.Reminder(nil), rs...)
	for i := range s.calendar {
		s.calendar[i].Source = domain.ReminderCalendar
	}
}

// Pending lists every reminder not yet fired, soonest first
func (s *ReminderService) Pending() ([]domain.Reminder, error) {
	local, err := s.store.ListReminders()
	if err != nil {
		return nil, fmt.Errorf("list reminders: %w", err)
	}

	s.mu.Lock()
	out := append([]domain.Reminder(nil), s.calendar...)
	s.mu.Unlock()

	for _, r := range local {
		out = append(out, *r)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].TriggerAt.Before(out[j].TriggerAt) })
	return out, nil
}

// CheckDue fires every reminder whose trigger time has been reached. The
// reminder is removed before it is spoken, so a failure in between loses it
// rather than repeating it. Returns the number of reminders spoken.
func (s *ReminderService) CheckDue(now time.Time, speak func(message string) error) int {
	fired := 0

	due, err := s.store.ListDueReminders(now)
	if err != nil {
		s.logger.Error("Failed to list due reminders", zap.Error(err))
	}
	for _, r := range due {
		if err := s.store.DeleteReminder(r.ID); err != nil {
			s.logger.Error("Failed to remove reminder", zap.Int64("id", r.ID), zap.Error(err))
			continue
		}
		if s.fire(*r, speak) {
			fired++
		}
	}

	for _, r := range s.takeDueCalendar(now) {
		if s.fire(r, speak) {
			fired++
		}
	}
	return fired
}

func (s *ReminderService) takeDueCalendar(now time.Time) []domain.Reminder {
	s.mu.Lock()
	defer s.mu.Unlock()

	var due []domain.Reminder
	kept := s.calendar[:0]
	for _, r := range s.calendar {
		if r.IsDue(now) {
			due = append(due, r)
		} else {
			kept = append(kept, r)
		}
	}
	s.calendar = kept
	return due
}

func (s *ReminderService) fire(r domain.Reminder, speak func(string) error) bool {
	if err := speak(r.Message); err != nil {
		s.logger.Error("Failed to speak reminder",
			zap.String("source", string(r.Source)),
			zap.Time("trigger_at", r.TriggerAt),
			zap.Error(err),
		)
		return false
	}
	s.logger.Info("Reminder fired", zap.String("source", string(r.Source)), zap.Time("trigger_at", r.TriggerAt))
	return true
}
