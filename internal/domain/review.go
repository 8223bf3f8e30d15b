package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

const (
	MinRating = 1
	MaxRating = 5
)

// Review represents a product review in the system
type Review struct {
	ID        uuid.UUID `db:"id"`
	ProductID uuid.UUID `db:"product_id"`
	Author    string    `db:"author"`
	Title     string    `db:"title"`
	Body      *string   `db:"body"`
	Rating    int       `db:"rating"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// ReviewRepository defines the interface for review data access
type ReviewRepository interface {
	// Create creates a new review
	Create(ctx context.Context, review *Review) error

	// ListByProductID retrieves every review of a product in the given order
	ListByProductID(ctx context.Context, productID uuid.UUID, order Ordering) ([]*Review, error)

	// AverageRating returns the mean rating of a product's reviews, nil when it has none
	AverageRating(ctx context.Context, productID uuid.UUID) (*float64, error)

	// DeleteAll removes every review
	DeleteAll(ctx context.Context) error
}
