// Package memory implements the repositories on in-process maps.
// It backs the API when DB_DRIVER=memory and the service and worker tests.
package memory

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

// Store holds products and reviews shared by both repositories
type Store struct {
	mu       sync.RWMutex
	products map[uuid.UUID]domain.Product
	reviews  map[uuid.UUID]domain.Review
	now      func() time.Time
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		products: make(map[uuid.UUID]domain.Product),
		reviews:  make(map[uuid.UUID]domain.Review),
		now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Products returns a product repository over the store
func (s *Store) Products() *ProductRepository {
	return &ProductRepository{store: s}
}

// Reviews returns a review repository over the store
func (s *Store) Reviews() *ReviewRepository {
	return &ReviewRepository{store: s}
}
