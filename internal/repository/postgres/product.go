package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

// ProductRepository implements domain.ProductRepository for PostgreSQL
type ProductRepository struct {
	db *sqlx.DB
}

// NewProductRepository creates a new PostgreSQL product repository
func NewProductRepository(db *sqlx.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

// Create creates a new product
func (r *ProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `
		INSERT INTO products (name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, average_rating, created_at, updated_at
	`

	now := time.Now().UTC()

	err := r.db.QueryRowxContext(
		ctx,
		query,
		product.Name,
		product.Description,
		now,
		now,
	).Scan(
		&product.ID,
		&product.AverageRating,
		&product.CreatedAt,
		&product.UpdatedAt,
	)

	return mapError(err)
}

// GetByID retrieves a product by ID
func (r *ProductRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Product, error) {
	query := `
		SELECT id, name, description, average_rating, created_at, updated_at
		FROM products
		WHERE id = $1
	`

	var product domain.Product
	err := r.db.GetContext(ctx, &product, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}

	return &product, nil
}

// ListByRating retrieves all products, highest average rating first.
// PostgreSQL sorts unrated products first for DESC.
func (r *ProductRepository) ListByRating(ctx context.Context) ([]*domain.Product, error) {
	query := `
		SELECT id, name, description, average_rating, created_at, updated_at
		FROM products
		ORDER BY average_rating DESC, name ASC
	`

	products := make([]*domain.Product, 0)
	if err := r.db.SelectContext(ctx, &products, query); err != nil {
		return nil, err
	}

	return products, nil
}

// UpdateAverageRating stores a recomputed average rating and bumps updated_at
func (r *ProductRepository) UpdateAverageRating(ctx context.Context, id uuid.UUID, rating *float64) error {
	query := `
		UPDATE products
		SET average_rating = $1, updated_at = $2
		WHERE id = $3
	`

	result, err := r.db.ExecContext(ctx, query, rating, time.Now().UTC(), id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return domain.ErrNotFound
	}

	return nil
}

// DeleteAll removes every product
func (r *ProductRepository) DeleteAll(ctx context.Context) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM products`)
	return err
}
