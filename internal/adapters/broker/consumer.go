package broker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"teamup/internal/domain"
)

const (
	defaultMinBackoff = 500 * time.Millisecond
	defaultMaxBackoff = 30 * time.Second
)

// Consumer drains one queue into a LedgerService. Deliveries are processed one
// at a time (prefetch 1) and acknowledged only after the handler succeeds.
type Consumer struct {
	url     string
	queue   string
	handler domain.LedgerService
	logger  *slog.Logger

	MinBackoff time.Duration
	MaxBackoff time.Duration
}

func NewConsumer(url, queue string, handler domain.LedgerService, logger *slog.Logger) *Consumer {
	return &Consumer{
		url:        url,
		queue:      queue,
		handler:    handler,
		logger:     logger.With("component", "consumer", "queue", queue),
		MinBackoff: defaultMinBackoff,
		MaxBackoff: defaultMaxBackoff,
	}
}

// Run consumes until ctx is cancelled, reconnecting with exponential backoff
// whenever the connection or channel is lost.
func (c *Consumer) Run(ctx context.Context) error {
	backoff := c.MinBackoff
	for {
		err := c.consume(ctx)
		if ctx.Err() != nil {
			return nil
		}
		c.logger.WarnContext(ctx, "consumer disconnected", "err", err, "retry_in", backoff)
		if !sleep(ctx, backoff) {
			return nil
		}
		backoff = min(backoff*2, c.MaxBackoff)
	}
}

func (c *Consumer) consume(ctx context.Context) error {
	conn, err := amqp.Dial(c.url)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := declareQueue(ch, c.queue); err != nil {
		return fmt.Errorf("declare queue: %w", err)
	}
	if err := ch.Qos(1, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}
	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	c.logger.InfoContext(ctx, "consumer started")

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.process(ctx, d)
		}
	}
}

// process hands one delivery to the handler and settles it. Malformed payloads
// are dropped; anything else is requeued after a pause so a failing database
// does not spin the loop.
func (c *Consumer) process(ctx context.Context, d amqp.Delivery) {
	err := c.handler.Handle(ctx, domain.Delivery{
		Queue:     c.queue,
		MessageID: d.MessageId,
		Body:      d.Body,
	})
	switch {
	case err == nil:
		if ackErr := d.Ack(false); ackErr != nil {
			c.logger.ErrorContext(ctx, "ack failed", "err", ackErr)
		}
	case errors.Is(err, domain.ErrInvalidInput):
		c.logger.ErrorContext(ctx, "dropping malformed delivery", "message_id", d.MessageId, "err", err)
		if rejErr := d.Reject(false); rejErr != nil {
			c.logger.ErrorContext(ctx, "reject failed", "err", rejErr)
		}
	default:
		c.logger.ErrorContext(ctx, "delivery failed, requeueing", "message_id", d.MessageId, "err", err)
		sleep(ctx, c.MinBackoff)
		if nackErr := d.Nack(false, true); nackErr != nil {
			c.logger.ErrorContext(ctx, "nack failed", "err", nackErr)
		}
	}
}

// sleep waits for d or until ctx is done. It reports whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
