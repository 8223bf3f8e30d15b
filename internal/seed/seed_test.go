package seed

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/repository/memory"
	"github.com/Pesokrava/product_reviews/internal/worker"
)

func newSeeder(store *memory.Store) *Seeder {
	log := logger.NewWithWriter("test", io.Discard)
	calculator := worker.NewCalculator(store.Products(), store.Reviews(), log)
	return New(store.Products(), store.Reviews(), calculator, log)
}

func TestSeeder_Run(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	summary, err := newSeeder(store).Run(ctx, DefaultOptions())
	require.NoError(t, err)
	assert.Equal(t, Summary{Products: 5, Reviews: 50}, summary)

	products, err := store.Products().ListByRating(ctx)
	require.NoError(t, err)
	require.Len(t, products, 5)

	// each product's reviews share one rating, so the highest rated comes first
	for idx, p := range products {
		require.NotNil(t, p.AverageRating, p.Name)
		assert.Equal(t, float64(5-idx), *p.AverageRating, p.Name)
		require.NotNil(t, p.Description)

		reviews, err := store.Reviews().ListByProductID(ctx, p.ID, nil)
		require.NoError(t, err)
		assert.Len(t, reviews, 10)
	}
	assert.Equal(t, "Product 4", products[0].Name)
	assert.Equal(t, "Product description 4", *products[0].Description)
}

func TestSeeder_RunReplacesExistingData(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()
	seeder := newSeeder(store)

	_, err := seeder.Run(ctx, DefaultOptions())
	require.NoError(t, err)
	_, err = seeder.Run(ctx, Options{Products: 2, ReviewsPerProduct: 3})
	require.NoError(t, err)

	products, err := store.Products().ListByRating(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 2)
}
