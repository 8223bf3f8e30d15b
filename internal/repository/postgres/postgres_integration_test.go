//go:build integration

package postgres

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/database"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:17-alpine"),
		tcpostgres.WithDatabase("product_reviews_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgContainer.Terminate(ctx) })

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := sqlx.Connect("postgres", connStr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	require.NoError(t, database.RunMigrations(connStr))
	return db
}

func TestPostgres_ReviewLifecycle(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()
	products := NewProductRepository(db)
	reviews := NewReviewRepository(db)

	product := &domain.Product{Name: "Product 1"}
	require.NoError(t, products.Create(ctx, product))
	assert.ErrorIs(t, products.Create(ctx, &domain.Product{Name: "Product 1"}), domain.ErrAlreadyExists)

	for _, rating := range []int{1, 2, 3, 4, 5} {
		require.NoError(t, reviews.Create(ctx, &domain.Review{
			ProductID: product.ID,
			Author:    "author",
			Title:     "Review title",
			Rating:    rating,
		}))
	}

	avg, err := reviews.AverageRating(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, 3.0, *avg)

	order, ok := domain.ResolveReviewOrder(domain.OrderRatingDesc)
	require.True(t, ok)
	list, err := reviews.ListByProductID(ctx, product.ID, order)
	require.NoError(t, err)
	require.Len(t, list, 5)
	assert.Equal(t, 5, list[0].Rating)
	assert.Equal(t, 1, list[4].Rating)

	require.NoError(t, products.UpdateAverageRating(ctx, product.ID, avg))
	stored, err := products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AverageRating)
	assert.Equal(t, 3.0, *stored.AverageRating)

	unrated := &domain.Product{Name: "Product 2"}
	require.NoError(t, products.Create(ctx, unrated))
	all, err := products.ListByRating(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Product 2", all[0].Name)
}

func TestPostgres_ReviewRatingConstraint(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	product := &domain.Product{Name: "Product 1"}
	require.NoError(t, NewProductRepository(db).Create(ctx, product))

	err := NewReviewRepository(db).Create(ctx, &domain.Review{
		ProductID: product.ID,
		Author:    "author",
		Title:     "Review title",
		Rating:    6,
	})
	assert.Error(t, err)
}

func TestPostgres_ReviewLongTextFields(t *testing.T) {
	db := setupTestDB(t)
	ctx := context.Background()

	product := &domain.Product{Name: strings.Repeat("p", 1024)}
	require.NoError(t, NewProductRepository(db).Create(ctx, product))

	author := strings.Repeat("a", 256)
	title := strings.Repeat("t", 4096)
	reviews := NewReviewRepository(db)
	require.NoError(t, reviews.Create(ctx, &domain.Review{
		ProductID: product.ID,
		Author:    author,
		Title:     title,
		Rating:    4,
	}))

	list, err := reviews.ListByProductID(ctx, product.ID, nil)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, author, list[0].Author)
	assert.Equal(t, title, list[0].Title)
}
