// Package tasks runs background jobs on asynq, a Redis-backed task queue.
package tasks

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/jobs"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/pkg/metrics"
)

const (
	// Backend labels metrics of the asynq queue
	Backend = "asynq"

	// QueueName is the asynq queue jobs are enqueued on
	QueueName = "default"
)

// TaskEnqueuer is the subset of asynq.Client used to enqueue jobs
type TaskEnqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
	Close() error
}

func redisOpt(cfg *config.Config) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	}
}

// Client enqueues jobs as asynq tasks
type Client struct {
	client      TaskEnqueuer
	maxAttempts int
	logger      *logger.Logger
}

// NewClient creates an asynq client against the configured Redis
func NewClient(cfg *config.Config, log *logger.Logger) *Client {
	return NewClientWith(asynq.NewClient(redisOpt(cfg)), cfg.Jobs.MaxAttempts, log)
}

// NewClientWith wraps an existing task enqueuer
func NewClientWith(client TaskEnqueuer, maxAttempts int, log *logger.Logger) *Client {
	return &Client{client: client, maxAttempts: maxAttempts, logger: log}
}

// Enqueue stores a job in Redis. asynq counts retries, so the first run is
// not included in MaxRetry.
func (c *Client) Enqueue(ctx context.Context, name string, args any) error {
	payload, err := jobs.Encode(args)
	if err != nil {
		return err
	}

	info, err := c.client.EnqueueContext(ctx, asynq.NewTask(name, payload),
		asynq.Queue(QueueName),
		asynq.MaxRetry(max(c.maxAttempts-1, 0)),
	)
	if err != nil {
		metrics.JobsEnqueueFailed.WithLabelValues(name, Backend).Inc()
		return fmt.Errorf("failed to enqueue task %s: %w", name, err)
	}

	metrics.JobsEnqueued.WithLabelValues(name, Backend).Inc()
	c.logger.WithFields(map[string]any{
		"task_id": info.ID,
		"queue":   info.Queue,
		"job":     name,
	}).Debug("Enqueued asynq task")

	return nil
}

// Close closes the Redis connection
func (c *Client) Close() {
	if err := c.client.Close(); err != nil {
		c.logger.Error("Failed to close asynq client", err)
	}
}

// Server processes asynq tasks through a job registry
type Server struct {
	server *asynq.Server
	logger *logger.Logger
}

// NewServer creates an asynq server with the configured concurrency
func NewServer(cfg *config.Config, log *logger.Logger) *Server {
	log = log.Named("asynq")

	srv := asynq.NewServer(redisOpt(cfg), asynq.Config{
		Queues:      map[string]int{QueueName: 1},
		Concurrency: cfg.Jobs.Concurrency,
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.WithFields(map[string]any{
				"job": task.Type(),
			}).Error("Task failed", err)
		}),
	})

	return &Server{server: srv, logger: log}
}

// Handler adapts a registry dispatch to an asynq handler.
// Permanent failures skip the remaining retries.
func Handler(registry *jobs.Registry) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		err := registry.Dispatch(ctx, task.Type(), task.Payload())
		if err != nil && jobs.IsPermanent(err) {
			return fmt.Errorf("%v: %w", err, asynq.SkipRetry)
		}
		return err
	}
}

// Run serves tasks until ctx is cancelled
func (s *Server) Run(ctx context.Context, registry *jobs.Registry) error {
	mux := asynq.NewServeMux()
	handler := Handler(registry)
	for _, name := range registry.Names() {
		mux.Handle(name, handler)
	}

	if err := s.server.Start(mux); err != nil {
		return fmt.Errorf("failed to start asynq server: %w", err)
	}

	s.logger.WithFields(map[string]any{
		"queue": QueueName,
		"jobs":  registry.Names(),
	}).Info("asynq server started")

	<-ctx.Done()
	s.server.Shutdown()

	s.logger.Info("asynq server stopped")
	return nil
}

// Close is a no-op; Run shuts the server down when its context ends
func (s *Server) Close() {}
