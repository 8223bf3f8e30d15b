package review

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/jobs"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/pkg/metrics"
)

// Cache stores review lists per product, list version and order token.
// InvalidateReviewsList moves the product to a new version.
type Cache interface {
	ReviewsListVersion(ctx context.Context, productID uuid.UUID) (int64, error)
	GetReviewsList(ctx context.Context, productID uuid.UUID, version int64, order string) ([]*domain.Review, error)
	SetReviewsList(ctx context.Context, productID uuid.UUID, version int64, order string, reviews []*domain.Review) error
	InvalidateReviewsList(ctx context.Context, productID uuid.UUID) error
}

// CreateInput holds validated fields of a new review
type CreateInput struct {
	ProductID string
	Author    string
	Title     string
	Body      *string
	Rating    int
}

// ListInput holds validated parameters of a review listing
type ListInput struct {
	ProductID  string
	Order      domain.Ordering
	OrderToken string
}

// Service handles review business logic with caching and job enqueueing
type Service struct {
	repo     domain.ReviewRepository
	cache    Cache
	enqueuer jobs.Enqueuer
	logger   *logger.Logger
}

// NewService creates a new review service
func NewService(
	repo domain.ReviewRepository,
	cache Cache,
	enqueuer jobs.Enqueuer,
	log *logger.Logger,
) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		enqueuer: enqueuer,
		logger:   log,
	}
}

// parseProductID treats malformed IDs like unknown ones
func parseProductID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("product %q: %w", raw, domain.ErrNotFound)
	}
	return id, nil
}

// Create persists a review and enqueues the recalculation of its product's
// average rating. The review is committed before the job is enqueued, so an
// enqueue failure is logged and the average stays stale until the next job.
func (s *Service) Create(ctx context.Context, input CreateInput) (*domain.Review, error) {
	productID, err := parseProductID(input.ProductID)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		ProductID: productID,
		Author:    input.Author,
		Title:     input.Title,
		Body:      input.Body,
		Rating:    input.Rating,
	}

	if err := s.repo.Create(ctx, review); err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			s.logger.Error("Failed to create review", err)
		}
		return nil, err
	}
	metrics.ReviewsCreated.Inc()

	if err := s.cache.InvalidateReviewsList(ctx, productID); err != nil {
		s.logger.Warnf("Failed to invalidate cache for product %s: %v", productID, err)
	}

	args := jobs.ProductRatingArgs{ProductID: productID}
	if err := s.enqueuer.Enqueue(ctx, jobs.UpdateAverageProductRating, args); err != nil {
		s.logger.WithFields(map[string]any{
			"review_id":  review.ID.String(),
			"product_id": productID.String(),
		}).Error("Failed to enqueue rating update", err)
	}

	s.logger.WithFields(map[string]any{
		"review_id":  review.ID.String(),
		"product_id": productID.String(),
		"rating":     review.Rating,
	}).Info("Review created successfully")

	return review, nil
}

// List returns every review of a product in the requested order, served from
// the cache when possible
func (s *Service) List(ctx context.Context, input ListInput) ([]*domain.Review, error) {
	productID, err := parseProductID(input.ProductID)
	if err != nil {
		return nil, err
	}

	token := input.OrderToken
	if token == "" {
		token = domain.DefaultReviewOrder
	}

	// the version is read before storage so a list that races a create is
	// stored under a version that create has already retired
	version, versionErr := s.cache.ReviewsListVersion(ctx, productID)
	if versionErr != nil {
		s.logger.Warnf("Failed to read review cache version for product %s: %v", productID, versionErr)
	} else {
		reviews, err := s.cache.GetReviewsList(ctx, productID, version, token)
		if err == nil {
			s.logger.Debugf("Cache hit for product %s reviews (order=%s)", productID, token)
			return reviews, nil
		}
		s.logger.Debugf("Cache miss for product %s reviews (order=%s)", productID, token)
	}

	reviews, err := s.repo.ListByProductID(ctx, productID, input.Order)
	if err != nil {
		s.logger.Error("Failed to list reviews by product ID", err)
		return nil, err
	}

	if versionErr == nil {
		if err := s.cache.SetReviewsList(ctx, productID, version, token, reviews); err != nil {
			s.logger.Warnf("Failed to cache reviews for product %s (order=%s): %v", productID, token, err)
		}
	}

	return reviews, nil
}
