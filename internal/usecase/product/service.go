package product

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

// Cache keeps recently read products
type Cache interface {
	GetProduct(id uuid.UUID) (*domain.Product, bool)
	SetProduct(p *domain.Product)
	GetProducts() ([]*domain.Product, bool)
	SetProducts(products []*domain.Product)
}

type noCache struct{}

func (noCache) GetProduct(uuid.UUID) (*domain.Product, bool) { return nil, false }
func (noCache) SetProduct(*domain.Product)                   {}
func (noCache) GetProducts() ([]*domain.Product, bool)       { return nil, false }
func (noCache) SetProducts([]*domain.Product)                {}

// Service handles product reads
type Service struct {
	repo   domain.ProductRepository
	cache  Cache
	logger *logger.Logger
}

// NewService creates a new product service. A nil cache disables caching.
func NewService(repo domain.ProductRepository, cache Cache, log *logger.Logger) *Service {
	if cache == nil {
		cache = noCache{}
	}
	return &Service{
		repo:   repo,
		cache:  cache,
		logger: log,
	}
}

// GetByID retrieves a product by its textual ID. Malformed IDs are not found.
func (s *Service) GetByID(ctx context.Context, rawID string) (*domain.Product, error) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return nil, fmt.Errorf("product %q: %w", rawID, domain.ErrNotFound)
	}

	if product, ok := s.cache.GetProduct(id); ok {
		return product, nil
	}

	product, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			s.logger.Debugf("Product not found: %s", id)
		} else {
			s.logger.Error("Failed to get product", err)
		}
		return nil, err
	}

	s.cache.SetProduct(product)
	return product, nil
}

// List retrieves all products, highest average rating first
func (s *Service) List(ctx context.Context) ([]*domain.Product, error) {
	if products, ok := s.cache.GetProducts(); ok {
		return products, nil
	}

	products, err := s.repo.ListByRating(ctx)
	if err != nil {
		s.logger.Error("Failed to list products", err)
		return nil, err
	}

	s.cache.SetProducts(products)
	return products, nil
}
