package jobs

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/pkg/metrics"
)

const (
	// BackendLocal labels metrics of the in-process queue
	BackendLocal = "local"

	localInitialBackoff = 100 * time.Millisecond
)

// ErrQueueClosed is returned when enqueueing into a closed queue
var ErrQueueClosed = errors.New("job queue closed")

type localJob struct {
	name    string
	payload []byte
}

// LocalQueue is an in-process queue backed by a buffered channel and a pool
// of worker goroutines. Jobs are lost on restart, so it is meant for local
// development and tests.
type LocalQueue struct {
	jobs        chan localJob
	logger      *logger.Logger
	workers     int
	maxAttempts int

	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewLocalQueue creates an in-process queue
func NewLocalQueue(workers, maxAttempts, buffer int, log *logger.Logger) *LocalQueue {
	if workers <= 0 {
		workers = 1
	}
	if maxAttempts <= 0 {
		maxAttempts = 1
	}

	return &LocalQueue{
		jobs:        make(chan localJob, buffer),
		logger:      log.Named("local-queue"),
		workers:     workers,
		maxAttempts: maxAttempts,
		done:        make(chan struct{}),
	}
}

// Enqueue buffers a job. It blocks only while the buffer is full.
func (q *LocalQueue) Enqueue(ctx context.Context, name string, args any) error {
	if err := q.enqueue(ctx, name, args); err != nil {
		metrics.JobsEnqueueFailed.WithLabelValues(name, BackendLocal).Inc()
		return err
	}

	metrics.JobsEnqueued.WithLabelValues(name, BackendLocal).Inc()
	return nil
}

func (q *LocalQueue) enqueue(ctx context.Context, name string, args any) error {
	payload, err := Encode(args)
	if err != nil {
		return err
	}

	select {
	case <-q.done:
		return ErrQueueClosed
	default:
	}

	select {
	case q.jobs <- localJob{name: name, payload: payload}:
		return nil
	case <-q.done:
		return ErrQueueClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Run starts the worker pool and blocks until ctx is cancelled and in-flight jobs finish
func (q *LocalQueue) Run(ctx context.Context, registry *Registry) error {
	for i := 0; i < q.workers; i++ {
		q.wg.Add(1)
		go q.work(ctx, registry)
	}

	q.logger.WithFields(map[string]any{
		"workers": q.workers,
		"jobs":    registry.Names(),
	}).Info("Local job queue started")

	<-ctx.Done()
	q.wg.Wait()

	q.logger.Info("Local job queue stopped")
	return nil
}

// Close stops accepting new jobs
func (q *LocalQueue) Close() {
	q.closeOnce.Do(func() {
		close(q.done)
	})
}

func (q *LocalQueue) work(ctx context.Context, registry *Registry) {
	defer q.wg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case job := <-q.jobs:
			q.process(ctx, registry, job)
		}
	}
}

// process executes a job with exponential backoff between attempts
func (q *LocalQueue) process(ctx context.Context, registry *Registry, job localJob) {
	var lastErr error
	backoff := localInitialBackoff

	for attempt := 0; attempt < q.maxAttempts; attempt++ {
		if attempt > 0 {
			q.logger.WithFields(map[string]any{
				"job":        job.name,
				"attempt":    attempt + 1,
				"backoff_ms": backoff.Milliseconds(),
			}).Warn("Retrying job")

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return
			}

			backoff *= 2
		}

		err := registry.Dispatch(ctx, job.name, job.payload)
		if err == nil {
			return
		}

		lastErr = err
		if IsPermanent(err) {
			q.logger.WithFields(map[string]any{
				"job": job.name,
			}).Error("Job failed permanently", err)
			return
		}
	}

	q.logger.WithFields(map[string]any{
		"job":          job.name,
		"max_attempts": q.maxAttempts,
	}).Error("Job failed after all attempts", lastErr)
}
