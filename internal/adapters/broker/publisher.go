package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"teamup/internal/domain"
)

// Publisher publishes lifecycle facts to durable RabbitMQ queues on the default
// exchange. The connection is dialed on first use and redialed after it drops;
// every publish uses its own channel.
type Publisher struct {
	url    string
	logger *slog.Logger

	// After a failed dial, publishes fail fast until the cooldown has passed.
	dialCooldown time.Duration
	now          func() time.Time

	mu       sync.Mutex
	conn     *amqp.Connection
	failedAt time.Time
	dialErr  error
}

const (
	defaultDialTimeout  = 5 * time.Second
	defaultDialCooldown = 2 * time.Second
)

// NewPublisher returns a Publisher for the broker at url. No connection is made
// until the first Publish.
func NewPublisher(url string, logger *slog.Logger) *Publisher {
	return &Publisher{
		url:          url,
		logger:       logger.With("component", "publisher"),
		dialCooldown: defaultDialCooldown,
		now:          time.Now,
	}
}

func (p *Publisher) Publish(ctx context.Context, queue string, fact domain.LifecycleFact) error {
	msg, err := newPublishing(fact, time.Now())
	if err != nil {
		return err
	}
	ch, err := p.channel(ctx)
	if err != nil {
		return fmt.Errorf("%w: open channel: %v", domain.ErrInfrastructure, err)
	}
	defer ch.Close()

	if err := declareQueue(ch, queue); err != nil {
		return fmt.Errorf("%w: declare %s: %v", domain.ErrInfrastructure, queue, err)
	}
	if err := ch.PublishWithContext(ctx, "", queue, false, false, msg); err != nil {
		return fmt.Errorf("%w: publish %s: %v", domain.ErrInfrastructure, queue, err)
	}
	p.logger.DebugContext(ctx, "fact published", "queue", queue, "event_id", fact.EventID, "message_id", msg.MessageId)
	return nil
}

// channel opens a channel on the shared connection, dialing when there is none.
// The dial runs without holding mu and is bounded by the ctx deadline.
func (p *Publisher) channel(ctx context.Context) (*amqp.Channel, error) {
	p.mu.Lock()
	conn := p.conn
	if conn == nil || conn.IsClosed() {
		if p.dialErr != nil && p.now().Sub(p.failedAt) < p.dialCooldown {
			err := p.dialErr
			p.mu.Unlock()
			return nil, err
		}
		conn = nil
	}
	p.mu.Unlock()

	if conn == nil {
		var err error
		if conn, err = p.dial(ctx); err != nil {
			p.mu.Lock()
			p.failedAt, p.dialErr = p.now(), err
			p.mu.Unlock()
			return nil, err
		}
		p.mu.Lock()
		if p.conn != nil && !p.conn.IsClosed() {
			// Another publish connected first.
			_ = conn.Close()
			conn = p.conn
		} else {
			p.conn = conn
		}
		p.dialErr = nil
		p.mu.Unlock()
	}
	return conn.Channel()
}

func (p *Publisher) dial(ctx context.Context) (*amqp.Connection, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	timeout := defaultDialTimeout
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
		if timeout <= 0 {
			return nil, context.DeadlineExceeded
		}
	}
	return amqp.DialConfig(p.url, amqp.Config{
		Heartbeat: 10 * time.Second,
		Locale:    "en_US",
		Dial:      amqp.DefaultDial(timeout),
	})
}

// Close closes the underlying connection, if any.
func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.conn == nil || p.conn.IsClosed() {
		return nil
	}
	return p.conn.Close()
}

func newPublishing(fact domain.LifecycleFact, now time.Time) (amqp.Publishing, error) {
	body, err := json.Marshal(fact)
	if err != nil {
		return amqp.Publishing{}, fmt.Errorf("encode fact: %w", err)
	}
	id := fact.MessageID
	if id == "" {
		id = uuid.NewString()
	}
	return amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    id,
		Timestamp:    now,
		Body:         body,
	}, nil
}

// declareQueue declares a durable, non-exclusive queue that survives broker restarts.
func declareQueue(ch *amqp.Channel, queue string) error {
	_, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	return err
}
