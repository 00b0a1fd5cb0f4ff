// Package events is the Postgres-backed outbox and pub/sub used for catalog
// events, built on Watermill's SQL transport.
//
// Publishers write inside the same transaction as the data change (PublishTx).
// With the forwarder enabled, those rows land in an internal queue that a
// background daemon relays to the real topics, so an event is delivered iff
// its transaction committed.
//
// Subscribers in one consumer group share the work: each message is handled
// by one instance. Handlers must be idempotent; a failing handler is retried
// with exponential backoff and then Nacked.
package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	watermillsql "github.com/ThreeDotsLabs/watermill-sql/v3/pkg/sql"
	"github.com/ThreeDotsLabs/watermill/components/forwarder"
	"github.com/ThreeDotsLabs/watermill/message"

	"github.com/caelus-deploy/caelus/pkg/config"
	"github.com/caelus-deploy/caelus/pkg/logger"
)

const (
	defaultMaxRetries = 3
	defaultRetryDelay = time.Second
	shutdownTimeout   = 30 * time.Second
	errBufferSize     = 100

	forwarderTopic         = "_forwarder_queue"
	forwarderConsumerGroup = "forwarder-consumer"
)

// ErrNotForwarder is returned by StartForwarder on a bus built without the forwarder.
var ErrNotForwarder = errors.New("events: bus has no forwarder")

// Handler processes one message. A nil return acknowledges it.
type Handler func(context.Context, *message.Message) error

type options struct {
	consumerGroup string
	maxRetries    int
	retryDelay    time.Duration
}

// Option tunes an EventBus.
type Option func(*options)

// WithConsumerGroup overrides the default "<service>-consumer" group.
func WithConsumerGroup(name string) Option {
	return func(o *options) { o.consumerGroup = name }
}

// WithRetry sets how often a failing handler is attempted and the first backoff delay.
func WithRetry(attempts int, baseDelay time.Duration) Option {
	return func(o *options) {
		o.maxRetries = max(attempts, 1)
		o.retryDelay = baseDelay
	}
}

// EventBus publishes and subscribes through Watermill SQL tables in the
// application database.
type EventBus struct {
	publisher    message.Publisher
	subscriber   *watermillsql.Subscriber
	fwd          *forwarder.Forwarder
	db           *sql.DB
	log          logger.Logger
	opts         options
	wg           sync.WaitGroup
	useForwarder bool
}

// NewEventBus connects to cfg.DatabaseURL and publishes straight to topics.
// The worker uses this form: it only subscribes.
func NewEventBus(cfg *config.Config, log logger.Logger, opts ...Option) (*EventBus, error) {
	return newEventBus(cfg, log, false, opts)
}

// NewEventBusWithForwarder routes every publish through the forwarder queue.
// Call StartForwarder before serving traffic.
func NewEventBusWithForwarder(cfg *config.Config, log logger.Logger, opts ...Option) (*EventBus, error) {
	return newEventBus(cfg, log, true, opts)
}

func resolveOptions(serviceName string, opts []Option) options {
	o := options{
		consumerGroup: serviceName + "-consumer",
		maxRetries:    defaultMaxRetries,
		retryDelay:    defaultRetryDelay,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func publisherConfig(autoInitialize bool) watermillsql.PublisherConfig {
	return watermillsql.PublisherConfig{
		SchemaAdapter:        watermillsql.DefaultPostgreSQLSchema{},
		AutoInitializeSchema: autoInitialize,
	}
}

func subscriberConfig(consumerGroup string) watermillsql.SubscriberConfig {
	return watermillsql.SubscriberConfig{
		SchemaAdapter:    watermillsql.DefaultPostgreSQLSchema{},
		OffsetsAdapter:   watermillsql.DefaultPostgreSQLOffsetsAdapter{},
		InitializeSchema: true,
		ConsumerGroup:    consumerGroup,
	}
}

func (q *EventBus) wrapForwarder(pub message.Publisher) message.Publisher {
	if !q.useForwarder {
		return pub
	}
	return forwarder.NewPublisher(pub, forwarder.PublisherConfig{ForwarderTopic: forwarderTopic})
}

func newEventBus(cfg *config.Config, log logger.Logger, useForwarder bool, opts []Option) (*EventBus, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("events: open db: %w", err)
	}
	q := &EventBus{
		db:           db,
		log:          log,
		opts:         resolveOptions(cfg.ServiceName, opts),
		useForwarder: useForwarder,
	}
	wlog := newWatermillLogger(log)

	pub, err := watermillsql.NewPublisher(db, publisherConfig(true), wlog)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("events: new publisher: %w", err)
	}
	q.publisher = q.wrapForwarder(pub)

	q.subscriber, err = watermillsql.NewSubscriber(db, subscriberConfig(q.opts.consumerGroup), wlog)
	if err != nil {
		_ = pub.Close()
		_ = db.Close()
		return nil, fmt.Errorf("events: new subscriber: %w", err)
	}
	return q, nil
}

// StartForwarder runs the daemon that drains the forwarder queue into the
// target topics. It returns once the daemon is running. Call it once.
func (q *EventBus) StartForwarder(ctx context.Context) error {
	if !q.useForwarder {
		return ErrNotForwarder
	}
	if q.fwd != nil {
		return errors.New("events: forwarder already started")
	}
	wlog := newWatermillLogger(q.log)

	queue, err := watermillsql.NewSubscriber(q.db, subscriberConfig(forwarderConsumerGroup), wlog)
	if err != nil {
		return fmt.Errorf("events: new forwarder subscriber: %w", err)
	}
	target, err := watermillsql.NewPublisher(q.db, publisherConfig(true), wlog)
	if err != nil {
		_ = queue.Close()
		return fmt.Errorf("events: new forwarder target publisher: %w", err)
	}
	fwd, err := forwarder.NewForwarder(queue, target, wlog, forwarder.Config{ForwarderTopic: forwarderTopic})
	if err != nil {
		_ = target.Close()
		_ = queue.Close()
		return fmt.Errorf("events: create forwarder: %w", err)
	}
	q.fwd = fwd

	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		q.log.InfoContext(ctx, "events: forwarder started")
		if err := fwd.Run(ctx); err != nil {
			q.log.ErrorContext(ctx, "events: forwarder stopped with error", "error", err)
			return
		}
		q.log.InfoContext(ctx, "events: forwarder stopped")
	}()

	select {
	case <-fwd.Running():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("events: context cancelled waiting for forwarder: %w", ctx.Err())
	}
}

// PublishTx writes msgs to topic inside tx. They become visible to
// subscribers only if tx commits. Trace context from ctx travels with them.
func (q *EventBus) PublishTx(ctx context.Context, tx *sql.Tx, topic string, msgs ...*message.Message) error {
	pub, err := watermillsql.NewPublisher(tx, publisherConfig(false), newWatermillLogger(q.log))
	if err != nil {
		return fmt.Errorf("events: new tx publisher: %w", err)
	}
	injectTrace(ctx, msgs)
	if err := q.wrapForwarder(pub).Publish(topic, msgs...); err != nil {
		return fmt.Errorf("events: publish to %s: %w", topic, err)
	}
	return nil
}

// Subscribe consumes topic until ctx ends or the bus closes. Handler failures
// that survive every retry are Nacked and reported on the returned channel,
// which the caller must drain. Close waits for in-flight handlers.
func (q *EventBus) Subscribe(ctx context.Context, topic string, handler Handler) (<-chan error, error) {
	ch, err := q.subscriber.Subscribe(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("events: subscribe to %s: %w", topic, err)
	}

	errCh := make(chan error, errBufferSize)
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		defer close(errCh)

		for msg := range ch {
			msgCtx := extractTrace(ctx, msg)
			err := retryWithBackoff(msgCtx, msg, handler, q.opts.maxRetries, q.opts.retryDelay, q.log)
			if err == nil {
				msg.Ack()
				continue
			}
			msg.Nack()
			err = fmt.Errorf("%s event %s: %w", topic, EventID(msg), err)
			select {
			case errCh <- err:
			default:
				q.log.ErrorContext(msgCtx, "events: error channel full, dropping error", "error", err, "topic", topic)
			}
		}
	}()
	return errCh, nil
}

// retryWithBackoff attempts handler up to attempts times, doubling delay after
// each failure. It returns the last error, or ctx's error if ctx ends first.
func retryWithBackoff(
	ctx context.Context,
	msg *message.Message,
	handler Handler,
	attempts int,
	delay time.Duration,
	log logger.Logger,
) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err = handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == attempts {
			break
		}
		log.WarnContext(ctx, "events: handler failed, retrying",
			"event_id", EventID(msg),
			"attempt", attempt,
			"next_delay", delay,
			"error", err,
		)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return fmt.Errorf("events: handler failed after %d attempts: %w", attempts, err)
}

// Ping checks the bus's database connection.
func (q *EventBus) Ping(ctx context.Context) error {
	if err := q.db.PingContext(ctx); err != nil {
		return fmt.Errorf("events: ping db: %w", err)
	}
	return nil
}

// Close stops consuming, stops the forwarder, waits up to 30s for in-flight
// handlers and releases the database.
func (q *EventBus) Close() error {
	if err := q.subscriber.Close(); err != nil {
		return fmt.Errorf("events: close subscriber: %w", err)
	}
	if q.fwd != nil {
		if err := q.fwd.Close(); err != nil {
			return fmt.Errorf("events: close forwarder: %w", err)
		}
	}

	done := make(chan struct{})
	go func() {
		q.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(shutdownTimeout):
		q.log.Error("events: timed out waiting for in-flight handlers to complete")
	}

	if err := q.publisher.Close(); err != nil {
		return fmt.Errorf("events: close publisher: %w", err)
	}
	return q.db.Close()
}
