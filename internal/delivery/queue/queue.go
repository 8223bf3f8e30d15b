// Package queue selects the job queue backend from configuration.
package queue

import (
	"context"
	"fmt"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/delivery/events"
	"github.com/Pesokrava/product_reviews/internal/delivery/rabbitmq"
	"github.com/Pesokrava/product_reviews/internal/delivery/tasks"
	"github.com/Pesokrava/product_reviews/internal/jobs"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

// localBuffer bounds the in-process queue
const localBuffer = 1024

// Enqueuer is a job enqueuer holding a connection
type Enqueuer interface {
	jobs.Enqueuer
	Close()
}

// Runner consumes jobs and dispatches them through a registry until ctx is cancelled
type Runner interface {
	Run(ctx context.Context, registry *jobs.Registry) error
	Close()
}

var (
	_ Enqueuer = (*events.Publisher)(nil)
	_ Enqueuer = (*tasks.Client)(nil)
	_ Enqueuer = (*rabbitmq.Publisher)(nil)
	_ Enqueuer = (*jobs.LocalQueue)(nil)

	_ Runner = (*events.Consumer)(nil)
	_ Runner = (*tasks.Server)(nil)
	_ Runner = (*rabbitmq.Consumer)(nil)
	_ Runner = (*jobs.LocalQueue)(nil)
)

// NewLocal creates the in-process queue, which is both enqueuer and runner
func NewLocal(cfg *config.Config, log *logger.Logger) *jobs.LocalQueue {
	return jobs.NewLocalQueue(cfg.Jobs.Concurrency, cfg.Jobs.MaxAttempts, localBuffer, log)
}

// NewEnqueuer connects the producer side of the configured backend.
// The local backend has no broker, callers share one LocalQueue via NewLocal.
func NewEnqueuer(cfg *config.Config, log *logger.Logger) (Enqueuer, error) {
	switch cfg.Jobs.Backend {
	case config.JobsBackendNATS:
		return events.NewPublisher(cfg, log)
	case config.JobsBackendAsynq:
		return tasks.NewClient(cfg, log), nil
	case config.JobsBackendRabbitMQ:
		return rabbitmq.NewPublisher(cfg, log)
	case config.JobsBackendLocal:
		return NewLocal(cfg, log), nil
	default:
		return nil, fmt.Errorf("unsupported jobs backend: %q", cfg.Jobs.Backend)
	}
}

// NewRunner connects the consumer side of the configured backend
func NewRunner(cfg *config.Config, log *logger.Logger) (Runner, error) {
	switch cfg.Jobs.Backend {
	case config.JobsBackendNATS:
		return events.NewConsumer(cfg, log)
	case config.JobsBackendAsynq:
		return tasks.NewServer(cfg, log), nil
	case config.JobsBackendRabbitMQ:
		return rabbitmq.NewConsumer(cfg, log)
	case config.JobsBackendLocal:
		return nil, fmt.Errorf("the %q backend runs inside the API process", config.JobsBackendLocal)
	default:
		return nil, fmt.Errorf("unsupported jobs backend: %q", cfg.Jobs.Backend)
	}
}
