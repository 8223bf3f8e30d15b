package worker

import (
	"context"
	"fmt"
	"math"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

// RoundRating rounds an average to two decimals, halves away from zero.
// A nil average (no reviews) stays nil.
func RoundRating(avg *float64) *float64 {
	if avg == nil {
		return nil
	}
	rounded := math.Round(*avg*100) / 100
	return &rounded
}

// Calculator recomputes the cached average rating of a product
type Calculator struct {
	products domain.ProductRepository
	reviews  domain.ReviewRepository
	logger   *logger.Logger
}

// NewCalculator creates a new rating calculator
func NewCalculator(products domain.ProductRepository, reviews domain.ReviewRepository, logger *logger.Logger) *Calculator {
	return &Calculator{
		products: products,
		reviews:  reviews,
		logger:   logger,
	}
}

// CalculateAndUpdate aggregates the product's reviews and stores the rounded mean.
// It always recomputes from scratch, so repeated or reordered runs converge on
// the same value. A missing product yields domain.ErrNotFound.
func (c *Calculator) CalculateAndUpdate(ctx context.Context, productID uuid.UUID) (*float64, error) {
	if _, err := c.products.GetByID(ctx, productID); err != nil {
		return nil, fmt.Errorf("failed to load product %s: %w", productID, err)
	}

	avg, err := c.reviews.AverageRating(ctx, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate ratings: %w", err)
	}

	rating := RoundRating(avg)
	if err := c.products.UpdateAverageRating(ctx, productID, rating); err != nil {
		return nil, fmt.Errorf("failed to update product rating: %w", err)
	}

	fields := map[string]any{"product_id": productID.String()}
	if rating != nil {
		fields["average_rating"] = *rating
	}
	c.logger.WithFields(fields).Info("Successfully updated product rating")

	return rating, nil
}
