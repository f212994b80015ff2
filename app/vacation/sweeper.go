package vacation

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/exp/slog"
)

// Schedule returns the schedule of sweeps: the cron expression if set,
// otherwise a fixed interval.
func Schedule(expr string, interval time.Duration) (cron.Schedule, error) {
	if expr == "" {
		if interval <= 0 {
			return nil, fmt.Errorf("sweep interval must be positive, got %s", interval)
		}
		return cron.Every(interval), nil
	}

	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, fmt.Errorf("parse schedule %q: %w", expr, err)
	}

	return sched, nil
}

// Sweeper runs sweeps periodically.
type Sweeper struct {
	log      *slog.Logger
	svc      *Service
	notifier Notifier
	schedule cron.Schedule
}

// NewSweeper makes a new Sweeper.
func NewSweeper(lg *slog.Logger, svc *Service, n Notifier, schedule cron.Schedule) *Sweeper {
	return &Sweeper{log: lg, svc: svc, notifier: n, schedule: schedule}
}

// Run sweeps immediately and then on every activation of the schedule
// until the context is done. Failed sweeps are logged and retried
// only on the next activation.
func (s *Sweeper) Run(ctx context.Context) error {
	for {
		if _, err := s.svc.Sweep(ctx, s.notifier); err != nil {
			s.log.ErrorCtx(ctx, "sweep failed", slog.Any("err", err))
		}

		now := s.svc.Now()
		next := s.schedule.Next(now)
		s.log.DebugCtx(ctx, "next sweep scheduled", slog.Time("at", next))

		timer := time.NewTimer(next.Sub(now))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
}
