package worker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/jobs"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

// RatingWorker executes update_average_product_rating jobs
type RatingWorker struct {
	calculator *Calculator
	logger     *logger.Logger
	timeout    time.Duration
}

// NewRatingWorker creates a new rating worker. timeout bounds the storage
// calls of a single job; zero disables it.
func NewRatingWorker(calculator *Calculator, logger *logger.Logger, timeout time.Duration) *RatingWorker {
	return &RatingWorker{
		calculator: calculator,
		logger:     logger,
		timeout:    timeout,
	}
}

// Register binds the worker to its job name
func (w *RatingWorker) Register(registry *jobs.Registry) {
	registry.Register(jobs.UpdateAverageProductRating, w.HandleJob)
}

// HandleJob decodes the job payload and recalculates the product rating.
// Malformed payloads and missing products fail permanently.
func (w *RatingWorker) HandleJob(ctx context.Context, payload []byte) error {
	var args jobs.ProductRatingArgs
	if err := json.Unmarshal(payload, &args); err != nil {
		w.logger.Error("Failed to unmarshal rating job", err)
		return jobs.Permanent(fmt.Errorf("failed to unmarshal job args: %w", err))
	}
	if args.ProductID == uuid.Nil {
		return jobs.Permanent(fmt.Errorf("%w: missing product_id", domain.ErrInvalidInput))
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	log := w.logger.WithFields(map[string]any{
		"product_id": args.ProductID.String(),
	})
	log.Debug("Processing rating update")

	if _, err := w.calculator.CalculateAndUpdate(ctx, args.ProductID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			log.Warn("Product not found, dropping rating update")
			return jobs.Permanent(err)
		}
		return err
	}

	return nil
}
