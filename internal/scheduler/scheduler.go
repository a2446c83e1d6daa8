package scheduler

import (
	"context"
	"log/slog"
	"time"

	"content_scraper/internal/domain"
)

// Runner performs one scrape cycle.
type Runner interface {
	Run(ctx context.Context, mode domain.Mode) *domain.CycleStats
}

type Scheduler struct {
	runner     Runner
	interval   time.Duration
	runTimeout time.Duration
	logger     *slog.Logger
}

func NewScheduler(runner Runner, interval, runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		runner:     runner,
		interval:   interval,
		runTimeout: runTimeout,
		logger:     logger,
	}
}

// Start runs a cycle immediately and then once per interval until ctx is
// done. Cycles run on this goroutine, so a slow cycle delays the next tick
// instead of overlapping it.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	runCtx, cancel := context.WithTimeout(ctx, s.runTimeout)
	defer cancel()

	stats := s.runner.Run(runCtx, domain.ModeScheduled)
	if stats != nil && stats.Skipped {
		s.logger.Warn("scheduled cycle skipped")
	}
}
