package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

// ProductRepository implements domain.ProductRepository
type ProductRepository struct {
	store *Store
}

var _ domain.ProductRepository = (*ProductRepository)(nil)

// Create stores a product, assigning its ID and timestamps
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	for _, existing := range r.store.products {
		if existing.Name == product.Name {
			return domain.ErrAlreadyExists
		}
	}

	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	now := r.store.now()
	product.CreatedAt = now
	product.UpdatedAt = now

	r.store.products[product.ID] = *product
	return nil
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	product, ok := r.store.products[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &product, nil
}

// ListByRating returns products by average rating, highest first.
// Unrated products come first, matching PostgreSQL's NULLS FIRST for DESC.
func (r *ProductRepository) ListByRating(ctx context.Context) ([]*domain.Product, error) {
	r.store.mu.RLock()
	products := make([]*domain.Product, 0, len(r.store.products))
	for _, p := range r.store.products {
		product := p
		products = append(products, &product)
	}
	r.store.mu.RUnlock()

	sort.Slice(products, func(i, j int) bool {
		a, b := products[i].AverageRating, products[j].AverageRating
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && *a != *b:
			return *a > *b
		default:
			return products[i].Name < products[j].Name
		}
	})

	return products, nil
}

// UpdateAverageRating stores a recomputed average and bumps updated_at
func (r *ProductRepository) UpdateAverageRating(ctx context.Context, id uuid.UUID, rating *float64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	product, ok := r.store.products[id]
	if !ok {
		return domain.ErrNotFound
	}

	if rating != nil {
		value := *rating
		product.AverageRating = &value
	} else {
		product.AverageRating = nil
	}
	product.UpdatedAt = r.store.now()

	r.store.products[id] = product
	return nil
}

// DeleteAll removes every product
func (r *ProductRepository) DeleteAll(ctx context.Context) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.products = make(map[uuid.UUID]domain.Product)
	return nil
}
