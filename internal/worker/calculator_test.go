package worker

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/repository/memory"
)

func testLogger() *logger.Logger {
	return logger.NewWithWriter("test", io.Discard)
}

func seedProduct(t *testing.T, store *memory.Store, ratings ...int) *domain.Product {
	t.Helper()
	ctx := context.Background()

	product := &domain.Product{Name: "Product " + uuid.NewString()}
	require.NoError(t, store.Products().Create(ctx, product))

	for _, rating := range ratings {
		require.NoError(t, store.Reviews().Create(ctx, &domain.Review{
			ProductID: product.ID,
			Author:    "author",
			Title:     "Review title",
			Rating:    rating,
		}))
	}
	return product
}

func TestRoundRating(t *testing.T) {
	value := func(v float64) *float64 { return &v }

	assert.Nil(t, RoundRating(nil))
	assert.Equal(t, 3.0, *RoundRating(value(3)))
	assert.Equal(t, 1.67, *RoundRating(value(5.0/3.0)))
	assert.Equal(t, 2.13, *RoundRating(value(2.125)))
	assert.Equal(t, 4.33, *RoundRating(value(13.0/3.0)))
}

func TestCalculator_CalculateAndUpdate(t *testing.T) {
	store := memory.NewStore()
	calculator := NewCalculator(store.Products(), store.Reviews(), testLogger())
	product := seedProduct(t, store, 1, 2, 3, 4, 5)

	rating, err := calculator.CalculateAndUpdate(context.Background(), product.ID)

	require.NoError(t, err)
	require.NotNil(t, rating)
	assert.Equal(t, 3.0, *rating)

	stored, err := store.Products().GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AverageRating)
	assert.Equal(t, 3.0, *stored.AverageRating)
}

func TestCalculator_CalculateAndUpdate_Idempotent(t *testing.T) {
	store := memory.NewStore()
	calculator := NewCalculator(store.Products(), store.Reviews(), testLogger())
	product := seedProduct(t, store, 1, 2, 2)

	first, err := calculator.CalculateAndUpdate(context.Background(), product.ID)
	require.NoError(t, err)
	second, err := calculator.CalculateAndUpdate(context.Background(), product.ID)
	require.NoError(t, err)

	assert.Equal(t, 1.67, *first)
	assert.Equal(t, *first, *second)
}

func TestCalculator_CalculateAndUpdate_NoReviews(t *testing.T) {
	store := memory.NewStore()
	calculator := NewCalculator(store.Products(), store.Reviews(), testLogger())
	product := seedProduct(t, store)

	rating, err := calculator.CalculateAndUpdate(context.Background(), product.ID)

	require.NoError(t, err)
	assert.Nil(t, rating)

	stored, err := store.Products().GetByID(context.Background(), product.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AverageRating)
}

func TestCalculator_CalculateAndUpdate_ProductNotFound(t *testing.T) {
	store := memory.NewStore()
	calculator := NewCalculator(store.Products(), store.Reviews(), testLogger())

	_, err := calculator.CalculateAndUpdate(context.Background(), uuid.New())

	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCalculator_ConcurrentRunsLeaveValidSnapshot(t *testing.T) {
	store := memory.NewStore()
	calculator := NewCalculator(store.Products(), store.Reviews(), testLogger())
	product := seedProduct(t, store, 5)
	ctx := context.Background()

	// Reviews land while recalculations run, so any run may observe any prefix
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = store.Reviews().Create(ctx, &domain.Review{
				ProductID: product.ID,
				Author:    "author",
				Title:     "Review title",
				Rating:    1,
			})
		}()
		go func() {
			defer wg.Done()
			_, err := calculator.CalculateAndUpdate(ctx, product.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	stored, err := store.Products().GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AverageRating)

	// every snapshot is the average of the 5 plus some number of 1s
	snapshots := make([]float64, 0, 21)
	for k := 0; k <= 20; k++ {
		avg := float64(5+k) / float64(1+k)
		snapshots = append(snapshots, *RoundRating(&avg))
	}
	assert.Contains(t, snapshots, *stored.AverageRating)

	// a final run converges on the full data set: (5 + 20*1) / 21
	rating, err := calculator.CalculateAndUpdate(ctx, product.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.19, *rating)
}
