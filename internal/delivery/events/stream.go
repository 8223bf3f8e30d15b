package events

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

const (
	// StreamName is the JetStream stream holding background jobs
	StreamName = "JOBS"

	// SubjectPrefix prefixes the job name to form a subject, e.g. jobs.update_average_product_rating
	SubjectPrefix = "jobs."

	// StreamSubjects defines the subjects this stream listens to
	StreamSubjects = SubjectPrefix + ">"

	// ConsumerName is the durable consumer shared by all worker instances
	ConsumerName = "job-worker"

	// AckWait is how long to wait for acknowledgment before redelivery
	AckWait = 30 * time.Second
)

// SubjectFor returns the subject a job is published on
func SubjectFor(jobName string) string {
	return SubjectPrefix + jobName
}

// JobNameFrom extracts the job name from a subject
func JobNameFrom(subject string) string {
	return strings.TrimPrefix(subject, SubjectPrefix)
}

// StreamConfig holds the JetStream stream configuration
type StreamConfig struct {
	js          nats.JetStreamContext
	maxAttempts int
	logger      *logger.Logger
}

// NewStreamConfig creates a new stream configuration helper
func NewStreamConfig(js nats.JetStreamContext, maxAttempts int, log *logger.Logger) *StreamConfig {
	return &StreamConfig{
		js:          js,
		maxAttempts: maxAttempts,
		logger:      log,
	}
}

// generateExponentialBackoff creates a backoff schedule for NATS redeliveries
// Pattern: 1s, 2s, 4s, 8s, ... (2^n seconds)
// MaxDeliver N requires N-1 backoff durations (first delivery is immediate)
func generateExponentialBackoff(maxDeliveryAttempts int) []time.Duration {
	if maxDeliveryAttempts <= 1 {
		return nil
	}

	backoff := make([]time.Duration, maxDeliveryAttempts-1)
	for i := range backoff {
		backoff[i] = time.Duration(1<<i) * time.Second
	}
	return backoff
}

// EnsureStream creates the JetStream stream for jobs if it does not exist.
// Work queue retention deletes messages once acked; file storage survives restarts.
func (s *StreamConfig) EnsureStream() error {
	stream, err := s.js.StreamInfo(StreamName)

	if errors.Is(err, nats.ErrStreamNotFound) {
		s.logger.WithFields(map[string]any{
			"stream":   StreamName,
			"subjects": StreamSubjects,
		}).Info("Creating JetStream stream")

		_, err = s.js.AddStream(&nats.StreamConfig{
			Name:        StreamName,
			Subjects:    []string{StreamSubjects},
			Retention:   nats.WorkQueuePolicy,
			Storage:     nats.FileStorage,
			Replicas:    1,
			MaxAge:      24 * time.Hour,
			Discard:     nats.DiscardOld,
			Description: "Background jobs",
		})
		if err != nil {
			return fmt.Errorf("failed to create stream: %w", err)
		}

		s.logger.Info("JetStream stream created successfully")
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get stream info: %w", err)
	}

	s.logger.WithFields(map[string]any{
		"stream":   stream.Config.Name,
		"messages": stream.State.Msgs,
		"bytes":    stream.State.Bytes,
	}).Info("JetStream stream already exists")

	return nil
}

// EnsureConsumer creates the durable pull consumer for job workers.
// Messages that fail maxAttempts times are dropped. Jobs recompute from
// stored state, so the next job for the same product repairs the value.
func (s *StreamConfig) EnsureConsumer() error {
	consumerInfo, err := s.js.ConsumerInfo(StreamName, ConsumerName)

	if errors.Is(err, nats.ErrConsumerNotFound) {
		s.logger.WithFields(map[string]any{
			"stream":   StreamName,
			"consumer": ConsumerName,
		}).Info("Creating JetStream consumer")

		_, err = s.js.AddConsumer(StreamName, &nats.ConsumerConfig{
			Durable:       ConsumerName,
			AckPolicy:     nats.AckExplicitPolicy,
			AckWait:       AckWait,
			MaxDeliver:    s.maxAttempts,
			FilterSubject: StreamSubjects,
			BackOff:       generateExponentialBackoff(s.maxAttempts),
			Description:   "Job worker consumer",
		})
		if err != nil {
			return fmt.Errorf("failed to create consumer: %w", err)
		}

		s.logger.Info("JetStream consumer created successfully")
		return nil
	}

	if err != nil {
		return fmt.Errorf("failed to get consumer info: %w", err)
	}

	s.logger.WithFields(map[string]any{
		"consumer":    consumerInfo.Name,
		"pending":     consumerInfo.NumPending,
		"redelivered": consumerInfo.NumRedelivered,
		"ack_pending": consumerInfo.NumAckPending,
	}).Info("JetStream consumer already exists")

	return nil
}
