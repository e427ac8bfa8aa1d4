package services

import (
	"context"
	"log/slog"
	"time"

	"teamup/internal/domain"
)

// factEmitter publishes lifecycle facts after the state change they describe has
// committed. Publishing is best-effort: a failure is logged and never reaches the
// caller, and it does not undo the state change.
type factEmitter struct {
	publisher domain.Publisher
	timeout   time.Duration
	logger    *slog.Logger
}

func newFactEmitter(publisher domain.Publisher, timeout time.Duration, logger *slog.Logger) *factEmitter {
	return &factEmitter{publisher: publisher, timeout: timeout, logger: logger}
}

// emit publishes fact to every queue in order. It survives cancellation of the
// request context so a client disconnect after commit still produces the facts.
func (e *factEmitter) emit(ctx context.Context, fact domain.LifecycleFact, queues ...string) {
	ctx = context.WithoutCancel(ctx)
	for _, queue := range queues {
		e.publish(ctx, queue, fact)
	}
}

func (e *factEmitter) publish(ctx context.Context, queue string, fact domain.LifecycleFact) {
	ctx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	if err := e.publisher.Publish(ctx, queue, fact); err != nil {
		e.logger.WarnContext(ctx, "best-effort publish failed",
			"queue", queue,
			"event_id", fact.EventID,
			"err", err,
		)
	}
}
