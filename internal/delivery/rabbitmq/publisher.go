package rabbitmq

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/jobs"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/pkg/metrics"
)

// Publisher enqueues jobs on a RabbitMQ queue
type Publisher struct {
	conn    *amqp.Connection
	channel Publishing
	queue   string
	logger  *logger.Logger

	// channels must not be shared by concurrent publishers
	mu sync.Mutex
}

// NewPublisher dials RabbitMQ and declares the jobs queue
func NewPublisher(cfg *config.Config, log *logger.Logger) (*Publisher, error) {
	conn, ch, err := connect(cfg.RabbitMQ.URL, cfg.RabbitMQ.Queue, log)
	if err != nil {
		return nil, err
	}

	return &Publisher{
		conn:    conn,
		channel: ch,
		queue:   cfg.RabbitMQ.Queue,
		logger:  log,
	}, nil
}

// NewPublisherWithChannel creates a publisher on an existing channel
func NewPublisherWithChannel(ch Publishing, queue string, log *logger.Logger) *Publisher {
	return &Publisher{channel: ch, queue: queue, logger: log}
}

// Enqueue publishes a persistent job message on the default exchange
func (p *Publisher) Enqueue(ctx context.Context, name string, args any) error {
	payload, err := jobs.Encode(args)
	if err != nil {
		return err
	}

	msg := newMessage(name, uuid.NewString(), payload, 1)

	p.mu.Lock()
	err = p.channel.PublishWithContext(ctx, "", p.queue, false, false, msg)
	p.mu.Unlock()

	if err != nil {
		metrics.JobsEnqueueFailed.WithLabelValues(name, Backend).Inc()
		return fmt.Errorf("publish to %q: %w", p.queue, err)
	}

	metrics.JobsEnqueued.WithLabelValues(name, Backend).Inc()
	p.logger.WithFields(map[string]any{
		"job":        name,
		"message_id": msg.MessageId,
	}).Debug("Enqueued job on RabbitMQ")

	return nil
}

// Close closes the channel and the connection
func (p *Publisher) Close() {
	if p.conn == nil {
		return
	}
	if err := p.conn.Close(); err != nil {
		p.logger.Error("Failed to close RabbitMQ connection", err)
		return
	}
	p.logger.Info("RabbitMQ publisher connection closed")
}
