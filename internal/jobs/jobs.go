// Package jobs defines background jobs, the enqueue contract used by request
// handlers and the name-to-handler table the workers dispatch through.
//
// Delivery is at-least-once: every handler must be idempotent.
package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/pkg/metrics"
)

// UpdateAverageProductRating recomputes a product's cached average rating
const UpdateAverageProductRating = "update_average_product_rating"

// ProductRatingArgs is the payload of UpdateAverageProductRating
type ProductRatingArgs struct {
	ProductID uuid.UUID `json:"product_id"`
}

// ErrUnknownJob is returned when no handler is registered for a job name
var ErrUnknownJob = errors.New("unknown job")

// Enqueuer submits jobs for asynchronous execution. It returns once the
// queue has accepted the job, never waiting for it to run.
type Enqueuer interface {
	Enqueue(ctx context.Context, name string, args any) error
}

// HandlerFunc executes one job from its raw JSON payload
type HandlerFunc func(ctx context.Context, payload []byte) error

// Registry maps job names to handlers
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]HandlerFunc
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]HandlerFunc)}
}

// Register binds a handler to a job name, replacing any previous one
func (r *Registry) Register(name string, handler HandlerFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[name] = handler
}

// Names returns the registered job names, sorted
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch runs the handler registered for name.
// Unknown names fail permanently since redelivery cannot fix them.
func (r *Registry) Dispatch(ctx context.Context, name string, payload []byte) error {
	r.mu.RLock()
	handler, ok := r.handlers[name]
	r.mu.RUnlock()

	if !ok {
		metrics.JobsProcessed.WithLabelValues(name, metrics.OutcomePermanent).Inc()
		return Permanent(fmt.Errorf("%w: %s", ErrUnknownJob, name))
	}

	err := handler(ctx, payload)
	switch {
	case err == nil:
		metrics.JobsProcessed.WithLabelValues(name, metrics.OutcomeSuccess).Inc()
	case IsPermanent(err):
		metrics.JobsProcessed.WithLabelValues(name, metrics.OutcomePermanent).Inc()
	default:
		metrics.JobsProcessed.WithLabelValues(name, metrics.OutcomeRetry).Inc()
	}
	return err
}

// Encode marshals job arguments into a payload
func Encode(args any) ([]byte, error) {
	payload, err := json.Marshal(args)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job args: %w", err)
	}
	return payload, nil
}

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying
func Permanent(err error) error {
	if err == nil || IsPermanent(err) {
		return err
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was marked with Permanent
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}
