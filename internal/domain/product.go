package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Product represents a product in the system
type Product struct {
	ID            uuid.UUID `db:"id"`
	Name          string    `db:"name"`
	Description   *string   `db:"description"`
	AverageRating *float64  `db:"average_rating"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}

// ProductRepository defines the interface for product data access
type ProductRepository interface {
	// Create creates a new product
	Create(ctx context.Context, product *Product) error

	// GetByID retrieves a product by ID
	GetByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// ListByRating retrieves all products ordered by average rating, highest first
	ListByRating(ctx context.Context) ([]*Product, error)

	// UpdateAverageRating stores a recomputed average rating (nil clears it)
	UpdateAverageRating(ctx context.Context, id uuid.UUID, rating *float64) error

	// DeleteAll removes every product
	DeleteAll(ctx context.Context) error
}
