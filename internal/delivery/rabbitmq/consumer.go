package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/jobs"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

type outcome int

const (
	outcomeAck outcome = iota
	outcomeRetry
	outcomeReject
)

// outcomeFor decides what happens to a delivery after its job ran
func outcomeFor(err error, attempt, maxAttempts int) outcome {
	switch {
	case err == nil:
		return outcomeAck
	case jobs.IsPermanent(err), attempt >= maxAttempts:
		return outcomeReject
	default:
		return outcomeRetry
	}
}

// Consumer processes jobs from the RabbitMQ queue
type Consumer struct {
	conn        *amqp.Connection
	channel     *amqp.Channel
	queue       string
	concurrency int
	maxAttempts int
	logger      *logger.Logger

	mu sync.Mutex
}

// NewConsumer dials RabbitMQ and declares the jobs queue
func NewConsumer(cfg *config.Config, log *logger.Logger) (*Consumer, error) {
	log = log.Named("rabbitmq")

	conn, ch, err := connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log)
	if err != nil {
		return nil, err
	}

	return &Consumer{
		conn:        conn,
		channel:     ch,
		queue:       cfg.RabbitMQ.Queue,
		concurrency: cfg.Jobs.Concurrency,
		maxAttempts: cfg.Jobs.MaxAttempts,
		logger:      log,
	}, nil
}

// Run consumes deliveries with manual acks until ctx is cancelled or the
// channel closes. The prefetch count bounds the number of jobs in flight.
func (c *Consumer) Run(ctx context.Context, registry *jobs.Registry) error {
	if err := c.channel.Qos(c.concurrency, 0, false); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	msgs, err := c.channel.Consume(
		c.queue,
		consumerTag,
		false, // manual ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("consume queue %q: %w", c.queue, err)
	}

	c.logger.WithFields(map[string]any{
		"queue":   c.queue,
		"workers": c.concurrency,
		"jobs":    registry.Names(),
	}).Info("RabbitMQ consumer started")

	var wg sync.WaitGroup
	for i := 0; i < c.concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-ctx.Done():
					return
				case msg, ok := <-msgs:
					if !ok {
						return
					}
					c.handleDelivery(ctx, registry, msg)
				}
			}
		}()
	}

	wg.Wait()
	c.logger.Info("RabbitMQ consumer stopped")
	return nil
}

func (c *Consumer) handleDelivery(ctx context.Context, registry *jobs.Registry, msg amqp.Delivery) {
	attempt := attemptOf(msg.Headers)
	err := registry.Dispatch(ctx, msg.Type, msg.Body)

	log := c.logger.WithFields(map[string]any{
		"job":        msg.Type,
		"message_id": msg.MessageId,
		"attempt":    attempt,
	})

	switch outcomeFor(err, attempt, c.maxAttempts) {
	case outcomeAck:
		_ = msg.Ack(false)
	case outcomeReject:
		log.Error("Job failed permanently, dropping message", err)
		_ = msg.Reject(false)
	case outcomeRetry:
		log.Error("Job failed, republishing", err)
		if pubErr := c.republish(ctx, msg, attempt+1); pubErr != nil {
			log.Error("Failed to republish job, requeueing", pubErr)
			_ = msg.Nack(false, true)
			return
		}
		_ = msg.Ack(false)
	}
}

func (c *Consumer) republish(ctx context.Context, msg amqp.Delivery, attempt int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.channel.PublishWithContext(ctx, "", c.queue, false, false,
		newMessage(msg.Type, msg.MessageId, msg.Body, attempt))
}

// Close closes the channel and the connection
func (c *Consumer) Close() {
	if err := c.channel.Close(); err != nil {
		c.logger.Error("Failed to close RabbitMQ channel", err)
	}
	if err := c.conn.Close(); err != nil {
		c.logger.Error("Failed to close RabbitMQ connection", err)
	}
}
