// Package schedule runs the gold transformation on a cron cadence.
package schedule

import (
	"context"
	"sync"

	"github.com/aldress/medallion/pkg/errors"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrInvalidSchedule marks a cron expression the parser rejected.
var ErrInvalidSchedule = errors.MustNewCode("schedule.invalid_spec")

// Job is one scheduled unit of work.
type Job func(ctx context.Context)

// Scheduler manages cron-based pipeline execution. Ticks that arrive while a
// job is still running are skipped, so runs never overlap.
type Scheduler struct {
	cron    *cron.Cron
	logger  zerolog.Logger
	running sync.Mutex
}

// NewScheduler creates an empty scheduler.
func NewScheduler(logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// Add registers a job under a cron expression.
func (s *Scheduler) Add(spec, name string, job Job) error {
	if _, err := s.cron.AddFunc(spec, s.wrap(name, job)); err != nil {
		return errors.Newf(ErrInvalidSchedule, "invalid cron schedule %q", spec).AddContext("job", name)
	}
	s.logger.Info().Str("job", name).Str("schedule", spec).Msg("Scheduled job")
	return nil
}

// wrap guards a job against overlapping ticks.
func (s *Scheduler) wrap(name string, job Job) func() {
	return func() {
		if !s.running.TryLock() {
			s.logger.Warn().Str("job", name).Msg("Previous run still in progress, skipping tick")
			return
		}
		defer s.running.Unlock()
		job(context.Background())
	}
}

// Start begins firing scheduled jobs.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("Scheduler started")
}

// Stop stops the cron loop and waits for an in-flight job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("Scheduler stopped")
}
