// Package scheduler drives the pipeline on a fixed interval.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/faruk-isik/x-trend-bot/internal/model"
)

// Runner is the interface for executing one pipeline run.
type Runner interface {
	RunOnce(ctx context.Context, trigger model.Trigger) model.Attempt
}

// Scheduler periodically runs the publish pipeline.
type Scheduler struct {
	runner   Runner
	log      *slog.Logger
	interval time.Duration
}

// New creates a Scheduler with the given run interval.
func New(runner Runner, interval time.Duration, log *slog.Logger) *Scheduler {
	if interval <= 0 {
		interval = 30 * time.Minute
	}
	return &Scheduler{runner: runner, log: log, interval: interval}
}

// Run starts the scheduler loop, blocking until ctx is cancelled.
// The first run fires immediately, matching the bot's startup behavior.
func (s *Scheduler) Run(ctx context.Context) {
	s.runScheduled(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runScheduled(ctx)
		}
	}
}

func (s *Scheduler) runScheduled(ctx context.Context) {
	att := s.runner.RunOnce(ctx, model.TriggerScheduled)
	s.log.Info("scheduled run finished",
		"outcome", att.Outcome,
		"attempts", att.AttemptsUsed,
		"diagnostic", att.Diagnostic,
	)
}
