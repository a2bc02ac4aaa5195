// Package schedule runs the daily reminder sweep on a cron timetable.
//
// It wraps robfig/cron with a small Start/Stop lifecycle so main can
// bring the scheduler up alongside the HTTP server and tear it down on
// shutdown. Each tick invokes the reminder runner with a fresh context
// and logs the run summary.
package schedule

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/renewalradar/go-renewal-backend/internal/services"
)

// Runner is the slice of ReminderService the scheduler depends on.
type Runner interface {
	Run(ctx context.Context, now time.Time) (services.RunSummary, error)
}

// Scheduler fires the reminder runner on a cron spec.
type Scheduler struct {
	runner  Runner
	spec    string
	timeout time.Duration
	cron    *cron.Cron
}

// New builds a Scheduler for the given cron spec (standard 5-field
// syntax, minute precision). The timeout bounds a single run.
func New(runner Runner, spec string, timeout time.Duration) *Scheduler {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &Scheduler{runner: runner, spec: spec, timeout: timeout}
}

// Start registers the cron entry and begins ticking. It returns an
// error if the spec does not parse; the caller should treat that as a
// configuration failure.
func (s *Scheduler) Start() error {
	c := cron.New()
	if _, err := c.AddFunc(s.spec, s.tick); err != nil {
		return err
	}
	s.cron = c
	c.Start()
	log.Info().Str("spec", s.spec).Msg("reminder scheduler started")
	return nil
}

// Stop halts the ticker and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	log.Info().Msg("reminder scheduler stopped")
}

func (s *Scheduler) tick() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	summary, err := s.runner.Run(ctx, started)
	if err != nil {
		log.Error().Err(err).Msg("reminder run failed")
		return
	}
	evt := log.Info().
		Int("reminders_sent", summary.RemindersSent).
		Dur("duration", time.Since(started))
	if len(summary.Errors) > 0 {
		evt = evt.Strs("errors", summary.Errors)
	}
	evt.Msg("reminder run complete")
}
