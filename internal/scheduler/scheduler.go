package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v5"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	DefaultCheckInterval  = 120 * time.Second
	DefaultInitialBackoff = 5 * time.Second
	DefaultMaxBackoff     = 10 * time.Minute
)

// Skill is the part of the skill the scheduler drives
type Skill interface {
	Connect(ctx context.Context) error
	CheckReminders(ctx context.Context)
}

type Options struct {
	Location       *time.Location
	CheckInterval  time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
}

type Scheduler struct {
	cron   *cron.Cron
	skill  Skill
	opts   Options
	logger *zap.Logger
}

func New(skill Skill, opts Options, logger *zap.Logger) *Scheduler {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.CheckInterval <= 0 {
		opts.CheckInterval = DefaultCheckInterval
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = DefaultInitialBackoff
	}
	if opts.MaxBackoff < opts.InitialBackoff {
		opts.MaxBackoff = max(DefaultMaxBackoff, opts.InitialBackoff)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(opts.Location)),
		skill:  skill,
		opts:   opts,
		logger: logger.With(zap.String("component", "scheduler")),
	}
}

// Start registers the reminder check, launches the connect loop and blocks
// until ctx is done.
func (s *Scheduler) Start(ctx context.Context) error {
	spec := fmt.Sprintf("@every %s", s.opts.CheckInterval)
	if _, err := s.cron.AddFunc(spec, func() { s.skill.CheckReminders(ctx) }); err != nil {
		return fmt.Errorf("add reminder check: %w", err)
	}

	s.cron.Start()
	s.logger.Info("Scheduler started",
		zap.String("timezone", s.opts.Location.String()),
		zap.Duration("check_interval", s.opts.CheckInterval),
	)

	go func() {
		if err := s.ConnectLoop(ctx); err != nil {
			s.logger.Warn("Connect loop stopped", zap.Error(err))
		}
	}()

	<-ctx.Done()
	return nil
}

func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("Scheduler stopped")
}

// ConnectLoop tries to connect right away and then after each backoff
// interval until it succeeds or ctx is done.
func (s *Scheduler) ConnectLoop(ctx context.Context) error {
	eb := backoff.NewExponentialBackOff()
	eb.InitialInterval = s.opts.InitialBackoff
	eb.MaxInterval = s.opts.MaxBackoff

	attempt := func() (struct{}, error) {
		return struct{}{}, s.skill.Connect(ctx)
	}
	notify := func(err error, next time.Duration) {
		s.logger.Warn("Calendar connect failed, retrying",
			zap.Duration("retry_in", next),
			zap.Error(err),
		)
	}

	_, err := backoff.Retry(ctx, attempt,
		backoff.WithBackOff(eb),
		backoff.WithMaxElapsedTime(0),
		backoff.WithNotify(notify),
	)
	if err != nil {
		return err
	}
	s.logger.Info("Calendar connected, connect loop done")
	return nil
}
