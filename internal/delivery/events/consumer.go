package events

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/jobs"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

const (
	fetchWait  = 5 * time.Second
	errorPause = 5 * time.Second
)

type ackAction int

const (
	actionAck ackAction = iota
	actionNak
	actionTerm
)

// ackActionFor decides how a processed message is acknowledged.
// Permanent failures are terminated so JetStream stops redelivering them.
func ackActionFor(err error) ackAction {
	switch {
	case err == nil:
		return actionAck
	case jobs.IsPermanent(err):
		return actionTerm
	default:
		return actionNak
	}
}

// Consumer pulls jobs from the durable JetStream consumer and dispatches them
type Consumer struct {
	nc          *nats.Conn
	js          nats.JetStreamContext
	concurrency int
	maxAttempts int
	logger      *logger.Logger
}

// NewConsumer connects to NATS JetStream
func NewConsumer(cfg *config.Config, log *logger.Logger) (*Consumer, error) {
	nc, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	log.WithFields(map[string]any{
		"url": cfg.NATS.URL,
	}).Info("Connected to NATS JetStream")

	return &Consumer{
		nc:          nc,
		js:          js,
		concurrency: cfg.Jobs.Concurrency,
		maxAttempts: cfg.Jobs.MaxAttempts,
		logger:      log,
	}, nil
}

// Run fetches batches of jobs until ctx is cancelled. Jobs of a batch run
// concurrently, bounded by the configured concurrency.
func (c *Consumer) Run(ctx context.Context, registry *jobs.Registry) error {
	streamConfig := NewStreamConfig(c.js, c.maxAttempts, c.logger)
	if err := streamConfig.EnsureStream(); err != nil {
		return err
	}
	if err := streamConfig.EnsureConsumer(); err != nil {
		return err
	}

	sub, err := c.js.PullSubscribe(StreamSubjects, ConsumerName, nats.ManualAck())
	if err != nil {
		return fmt.Errorf("failed to subscribe to JetStream consumer: %w", err)
	}
	defer func() {
		if err := sub.Unsubscribe(); err != nil {
			c.logger.Error("Failed to unsubscribe from JetStream", err)
		}
	}()

	c.logger.WithFields(map[string]any{
		"stream":   StreamName,
		"consumer": ConsumerName,
		"jobs":     registry.Names(),
	}).Info("Subscribed to JetStream consumer")

	for {
		if ctx.Err() != nil {
			return nil
		}

		fetchCtx, cancel := context.WithTimeout(ctx, fetchWait)
		msgs, err := sub.Fetch(c.concurrency, nats.Context(fetchCtx))
		cancel()

		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}

			c.logger.Error("Failed to fetch messages from JetStream", err)
			select {
			case <-time.After(errorPause):
			case <-ctx.Done():
				return nil
			}
			continue
		}

		c.processBatch(ctx, registry, msgs)
	}
}

func (c *Consumer) processBatch(ctx context.Context, registry *jobs.Registry, msgs []*nats.Msg) {
	var wg sync.WaitGroup
	for _, msg := range msgs {
		wg.Add(1)
		go func(msg *nats.Msg) {
			defer wg.Done()
			c.handleMessage(ctx, registry, msg)
		}(msg)
	}
	wg.Wait()
}

func (c *Consumer) handleMessage(ctx context.Context, registry *jobs.Registry, msg *nats.Msg) {
	name := JobNameFrom(msg.Subject)
	err := registry.Dispatch(ctx, name, msg.Data)

	log := c.logger.WithFields(map[string]any{
		"job":     name,
		"subject": msg.Subject,
	})

	switch ackActionFor(err) {
	case actionAck:
		if ackErr := msg.Ack(); ackErr != nil {
			log.Error("Failed to ACK message", ackErr)
		}
	case actionTerm:
		log.Error("Job failed permanently, terminating message", err)
		if termErr := msg.Term(); termErr != nil {
			log.Error("Failed to TERM message", termErr)
		}
	case actionNak:
		// Redelivered with the consumer's backoff until MaxDeliver is reached
		log.Error("Job failed, message will be redelivered", err)
		if nakErr := msg.Nak(); nakErr != nil {
			log.Error("Failed to NAK message", nakErr)
		}
	}
}

// Close closes the NATS connection
func (c *Consumer) Close() {
	if c.nc != nil {
		c.nc.Close()
		c.logger.Info("NATS consumer connection closed")
	}
}
