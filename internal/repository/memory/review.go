package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

// ReviewRepository implements domain.ReviewRepository
type ReviewRepository struct {
	store *Store
}

var _ domain.ReviewRepository = (*ReviewRepository)(nil)

// Create stores a review. The product must exist.
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.products[review.ProductID]; !ok {
		return domain.ErrNotFound
	}

	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	now := r.store.now()
	review.CreatedAt = now
	review.UpdatedAt = now

	r.store.reviews[review.ID] = *review
	return nil
}

// ListByProductID returns the product's reviews sorted by order,
// newest first when order is empty
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID uuid.UUID, order domain.Ordering) ([]*domain.Review, error) {
	if len(order) == 0 {
		order, _ = domain.ResolveReviewOrder(domain.DefaultReviewOrder)
	}

	r.store.mu.RLock()
	reviews := make([]*domain.Review, 0)
	for _, rv := range r.store.reviews {
		if rv.ProductID == productID {
			review := rv
			reviews = append(reviews, &review)
		}
	}
	r.store.mu.RUnlock()

	sort.SliceStable(reviews, func(i, j int) bool {
		for _, field := range order {
			cmp := compareReviews(reviews[i], reviews[j], field.Key)
			if cmp == 0 {
				continue
			}
			if field.Direction == domain.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return reviews[i].ID.String() < reviews[j].ID.String()
	})

	return reviews, nil
}

func compareReviews(a, b *domain.Review, key domain.SortKey) int {
	switch key {
	case domain.SortByRating:
		return a.Rating - b.Rating
	case domain.SortByCreatedAt:
		return a.CreatedAt.Compare(b.CreatedAt)
	default:
		return 0
	}
}

// AverageRating returns the mean rating of a product's reviews, nil when it has none
func (r *ReviewRepository) AverageRating(ctx context.Context, productID uuid.UUID) (*float64, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	sum, count := 0, 0
	for _, review := range r.store.reviews {
		if review.ProductID == productID {
			sum += review.Rating
			count++
		}
	}

	if count == 0 {
		return nil, nil
	}
	avg := float64(sum) / float64(count)
	return &avg, nil
}

// DeleteAll removes every review
func (r *ReviewRepository) DeleteAll(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.reviews = make(map[uuid.UUID]domain.Review)
	return nil
}
