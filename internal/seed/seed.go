// Package seed fills the storage with sample products and reviews.
package seed

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

// Recalculator recomputes a product's average rating
type Recalculator interface {
	CalculateAndUpdate(ctx context.Context, productID uuid.UUID) (*float64, error)
}

// Options controls how much data is generated
type Options struct {
	Products          int
	ReviewsPerProduct int
}

// DefaultOptions returns 5 products with 10 reviews each
func DefaultOptions() Options {
	return Options{Products: 5, ReviewsPerProduct: 10}
}

// Summary reports what was created
type Summary struct {
	Products int
	Reviews  int
}

// Seeder wipes and repopulates the storage
type Seeder struct {
	products   domain.ProductRepository
	reviews    domain.ReviewRepository
	calculator Recalculator
	logger     *logger.Logger
}

// New creates a seeder
func New(products domain.ProductRepository, reviews domain.ReviewRepository, calculator Recalculator, log *logger.Logger) *Seeder {
	return &Seeder{
		products:   products,
		reviews:    reviews,
		calculator: calculator,
		logger:     log,
	}
}

// Run deletes every review and product, then creates opts.Products products
// and opts.ReviewsPerProduct rounds of reviews. Every review of the j-th
// product is rated (j mod 5) + 1 and round i is written by "author-i".
// Averages are recalculated inline, not through the job queue.
func (s *Seeder) Run(ctx context.Context, opts Options) (Summary, error) {
	var summary Summary

	if err := s.reviews.DeleteAll(ctx); err != nil {
		return summary, fmt.Errorf("failed to delete reviews: %w", err)
	}
	if err := s.products.DeleteAll(ctx); err != nil {
		return summary, fmt.Errorf("failed to delete products: %w", err)
	}

	products := make([]*domain.Product, 0, opts.Products)
	for i := 0; i < opts.Products; i++ {
		description := fmt.Sprintf("Product description %d", i)
		p := &domain.Product{
			Name:        fmt.Sprintf("Product %d", i),
			Description: &description,
		}
		if err := s.products.Create(ctx, p); err != nil {
			return summary, fmt.Errorf("failed to create product %q: %w", p.Name, err)
		}
		products = append(products, p)
		summary.Products++
	}

	body := "Body text"
	for i := 0; i < opts.ReviewsPerProduct; i++ {
		for j, p := range products {
			r := &domain.Review{
				ProductID: p.ID,
				Author:    fmt.Sprintf("author-%d", i),
				Title:     "Review title",
				Body:      &body,
				Rating:    j%domain.MaxRating + 1,
			}
			if err := s.reviews.Create(ctx, r); err != nil {
				return summary, fmt.Errorf("failed to create review for %q: %w", p.Name, err)
			}
			summary.Reviews++
		}
	}

	for _, p := range products {
		if _, err := s.calculator.CalculateAndUpdate(ctx, p.ID); err != nil {
			return summary, fmt.Errorf("failed to recalculate %q: %w", p.Name, err)
		}
	}

	s.logger.WithFields(map[string]any{
		"products": summary.Products,
		"reviews":  summary.Reviews,
	}).Debug("Seed data written")

	return summary, nil
}
