package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"teamup/internal/domain"
)

// AutoConcluder periodically concludes events whose start time is older than a threshold.
type AutoConcluder struct {
	scheduler gocron.Scheduler
	events    domain.EventService
	after     time.Duration
	logger    *slog.Logger
}

// NewAutoConcluder schedules a sweep every interval. Call Start to run it.
func NewAutoConcluder(events domain.EventService, after, interval time.Duration, logger *slog.Logger) (*AutoConcluder, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("create scheduler: %w", err)
	}
	a := &AutoConcluder{
		scheduler: sched,
		events:    events,
		after:     after,
		logger:    logger.With("component", "auto_conclude"),
	}
	_, err = sched.NewJob(
		gocron.DurationJob(interval),
		gocron.NewTask(func() {
			a.Sweep(context.Background())
		}),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("schedule sweep: %w", err)
	}
	return a, nil
}

func (a *AutoConcluder) Start() {
	a.scheduler.Start()
}

func (a *AutoConcluder) Shutdown() error {
	return a.scheduler.Shutdown()
}

// Sweep runs one pass.
func (a *AutoConcluder) Sweep(ctx context.Context) {
	n, err := a.events.ConcludeStale(ctx, a.after)
	if err != nil {
		a.logger.ErrorContext(ctx, "auto-conclusion sweep failed", "concluded", n, "err", err)
		return
	}
	if n > 0 {
		a.logger.InfoContext(ctx, "auto-concluded events", "concluded", n)
	}
}
