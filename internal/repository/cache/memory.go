package cache

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/maypok86/otter"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

const productsKey = "products"

// ProductCache keeps recently read products in process memory.
// Average ratings change asynchronously, so entries live for a short TTL.
type ProductCache struct {
	c otter.Cache[string, any]
}

// NewProductCache creates a product cache holding up to capacity entries
func NewProductCache(capacity int, ttl time.Duration) (*ProductCache, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("invalid product cache capacity: %d", capacity)
	}

	c, err := otter.MustBuilder[string, any](capacity).
		CollectStats().
		Cost(func(key string, value any) uint32 {
			return 1
		}).
		WithTTL(ttl).
		Build()
	if err != nil {
		return nil, err
	}

	return &ProductCache{c: c}, nil
}

// GetProduct gets a copy of a cached product
func (c *ProductCache) GetProduct(id uuid.UUID) (*domain.Product, bool) {
	p, ok := c.c.Get(id.String())
	if !ok {
		return nil, false
	}

	product, ok := p.(domain.Product)
	if !ok {
		return nil, false
	}
	return &product, true
}

// SetProduct caches a copy of a product
func (c *ProductCache) SetProduct(p *domain.Product) {
	c.c.Set(p.ID.String(), *p)
}

// GetProducts gets the cached product listing
func (c *ProductCache) GetProducts() ([]*domain.Product, bool) {
	p, ok := c.c.Get(productsKey)
	if !ok {
		return nil, false
	}

	products, ok := p.([]domain.Product)
	if !ok {
		return nil, false
	}

	copied := make([]domain.Product, len(products))
	copy(copied, products)

	result := make([]*domain.Product, len(copied))
	for i := range copied {
		result[i] = &copied[i]
	}
	return result, true
}

// SetProducts caches the product listing
func (c *ProductCache) SetProducts(products []*domain.Product) {
	values := make([]domain.Product, len(products))
	for i, p := range products {
		values[i] = *p
	}
	c.c.Set(productsKey, values)
}

// Close stops the cache's background goroutines
func (c *ProductCache) Close() {
	c.c.Close()
}
