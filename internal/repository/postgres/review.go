package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

// ReviewRepository implements domain.ReviewRepository for PostgreSQL
type ReviewRepository struct {
	db *sqlx.DB
}

// NewReviewRepository creates a new PostgreSQL review repository
func NewReviewRepository(db *sqlx.DB) *ReviewRepository {
	return &ReviewRepository{db: db}
}

// Create creates a new review
func (r *ReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	// Return domain.ErrNotFound instead of cryptic foreign key constraint violation
	var exists bool
	checkQuery := `SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)`
	err := r.db.GetContext(ctx, &exists, checkQuery, review.ProductID)
	if err != nil {
		return err
	}
	if !exists {
		return domain.ErrNotFound
	}

	query := `
		INSERT INTO reviews (product_id, author, title, body, rating)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at
	`

	err = r.db.QueryRowxContext(
		ctx,
		query,
		review.ProductID,
		review.Author,
		review.Title,
		review.Body,
		review.Rating,
	).Scan(
		&review.ID,
		&review.CreatedAt,
		&review.UpdatedAt,
	)

	// the product may be deleted between the check and the insert
	return mapError(err)
}

// orderClause renders a whitelisted ORDER BY clause, newest first by default
func orderClause(order domain.Ordering) (string, error) {
	if len(order) == 0 {
		order, _ = domain.ResolveReviewOrder(domain.DefaultReviewOrder)
	}

	for _, field := range order {
		switch field.Key {
		case domain.SortByCreatedAt, domain.SortByRating:
		default:
			return "", fmt.Errorf("%w: unsupported sort key %q", domain.ErrInvalidInput, field.Key)
		}
		switch field.Direction {
		case domain.Ascending, domain.Descending:
		default:
			return "", fmt.Errorf("%w: unsupported sort direction %q", domain.ErrInvalidInput, field.Direction)
		}
	}

	return order.String(), nil
}

// ListByProductID retrieves every review of a product in the given order
func (r *ReviewRepository) ListByProductID(ctx context.Context, productID uuid.UUID, order domain.Ordering) ([]*domain.Review, error) {
	orderBy, err := orderClause(order)
	if err != nil {
		return nil, err
	}

	query := `
		SELECT id, product_id, author, title, body, rating, created_at, updated_at
		FROM reviews
		WHERE product_id = $1
		ORDER BY ` + orderBy + `, id ASC`

	reviews := make([]*domain.Review, 0)
	if err := r.db.SelectContext(ctx, &reviews, query, productID); err != nil {
		return nil, err
	}

	return reviews, nil
}

// AverageRating returns the mean rating of a product's reviews, nil when it has none
func (r *ReviewRepository) AverageRating(ctx context.Context, productID uuid.UUID) (*float64, error) {
	query := `SELECT AVG(rating)::float8 FROM reviews WHERE product_id = $1`

	var avg sql.NullFloat64
	if err := r.db.GetContext(ctx, &avg, query, productID); err != nil {
		return nil, err
	}

	if !avg.Valid {
		return nil, nil
	}
	return &avg.Float64, nil
}

// DeleteAll removes every review
func (r *ReviewRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM reviews`)
	return err
}
