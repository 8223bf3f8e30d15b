package events

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/jobs"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/pkg/metrics"
)

// Backend labels metrics of the NATS queue
const Backend = "nats"

// JetStreamPublisher is the subset of nats.JetStreamContext used to enqueue jobs
type JetStreamPublisher interface {
	Publish(subj string, data []byte, opts ...nats.PubOpt) (*nats.PubAck, error)
}

// Publisher enqueues jobs on NATS JetStream
type Publisher struct {
	nc     *nats.Conn
	js     JetStreamPublisher
	logger *logger.Logger
}

// NewPublisher connects to NATS and makes sure the jobs stream exists
func NewPublisher(cfg *config.Config, log *logger.Logger) (*Publisher, error) {
	nc, err := nats.Connect(cfg.NATS.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	if err := NewStreamConfig(js, cfg.Jobs.MaxAttempts, log).EnsureStream(); err != nil {
		nc.Close()
		return nil, err
	}

	log.WithFields(map[string]any{
		"url": cfg.NATS.URL,
	}).Info("Connected to NATS JetStream")

	return &Publisher{
		nc:     nc,
		js:     js,
		logger: log,
	}, nil
}

// NewPublisherWithJetStream creates a publisher on an existing JetStream context
func NewPublisherWithJetStream(js JetStreamPublisher, log *logger.Logger) *Publisher {
	return &Publisher{js: js, logger: log}
}

// Enqueue publishes a job. JetStream acknowledges once the message is stored.
func (p *Publisher) Enqueue(ctx context.Context, name string, args any) error {
	payload, err := jobs.Encode(args)
	if err != nil {
		return err
	}

	subject := SubjectFor(name)
	pubAck, err := p.js.Publish(subject, payload, nats.Context(ctx))
	if err != nil {
		metrics.JobsEnqueueFailed.WithLabelValues(name, Backend).Inc()
		return fmt.Errorf("failed to publish job %s to JetStream: %w", name, err)
	}

	metrics.JobsEnqueued.WithLabelValues(name, Backend).Inc()
	p.logger.WithFields(map[string]any{
		"subject":  subject,
		"stream":   pubAck.Stream,
		"sequence": pubAck.Sequence,
	}).Debug("Enqueued job on JetStream")

	return nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.nc != nil {
		p.nc.Close()
		p.logger.Info("NATS publisher connection closed")
	}
}
