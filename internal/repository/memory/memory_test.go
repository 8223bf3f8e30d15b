package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

// steppingClock returns a clock advancing one second per call
func steppingClock() func() time.Time {
	current := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		current = current.Add(time.Second)
		return current
	}
}

func ptr[T any](v T) *T { return &v }

func TestProductRepository_CreateDuplicateName(t *testing.T) {
	store := NewStore()
	products := store.Products()
	ctx := context.Background()

	require.NoError(t, products.Create(ctx, &domain.Product{Name: "Product 1"}))
	err := products.Create(ctx, &domain.Product{Name: "Product 1"})

	assert.ErrorIs(t, err, domain.ErrAlreadyExists)
}

func TestProductRepository_GetByID_NotFound(t *testing.T) {
	_, err := NewStore().Products().GetByID(context.Background(), uuid.New())

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestProductRepository_ListByRating(t *testing.T) {
	store := NewStore()
	products := store.Products()
	ctx := context.Background()

	low := &domain.Product{Name: "b-low"}
	high := &domain.Product{Name: "c-high"}
	tie := &domain.Product{Name: "a-high"}
	unrated := &domain.Product{Name: "z-unrated"}
	for _, p := range []*domain.Product{low, high, tie, unrated} {
		require.NoError(t, products.Create(ctx, p))
	}
	require.NoError(t, products.UpdateAverageRating(ctx, low.ID, ptr(2.5)))
	require.NoError(t, products.UpdateAverageRating(ctx, high.ID, ptr(4.75)))
	require.NoError(t, products.UpdateAverageRating(ctx, tie.ID, ptr(4.75)))

	list, err := products.ListByRating(ctx)
	require.NoError(t, err)

	names := make([]string, len(list))
	for i, p := range list {
		names[i] = p.Name
	}
	assert.Equal(t, []string{"z-unrated", "a-high", "c-high", "b-low"}, names)
}

func TestProductRepository_UpdateAverageRating(t *testing.T) {
	store := NewStore()
	store.now = steppingClock()
	products := store.Products()
	ctx := context.Background()

	product := &domain.Product{Name: "Product 1"}
	require.NoError(t, products.Create(ctx, product))

	require.NoError(t, products.UpdateAverageRating(ctx, product.ID, ptr(3.0)))
	got, err := products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, got.AverageRating)
	assert.Equal(t, 3.0, *got.AverageRating)
	assert.True(t, got.UpdatedAt.After(got.CreatedAt))

	require.NoError(t, products.UpdateAverageRating(ctx, product.ID, nil))
	got, err = products.GetByID(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AverageRating)

	assert.ErrorIs(t, products.UpdateAverageRating(ctx, uuid.New(), nil), domain.ErrNotFound)
}

func TestReviewRepository_CreateUnknownProduct(t *testing.T) {
	err := NewStore().Reviews().Create(context.Background(), &domain.Review{
		ProductID: uuid.New(),
		Author:    "author",
		Title:     "title",
		Rating:    3,
	})

	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestReviewRepository_ListByProductID_Orders(t *testing.T) {
	store := NewStore()
	store.now = steppingClock()
	ctx := context.Background()

	product := &domain.Product{Name: "Product 1"}
	require.NoError(t, store.Products().Create(ctx, product))

	other := &domain.Product{Name: "Product 2"}
	require.NoError(t, store.Products().Create(ctx, other))

	// created in this order: r1 (rating 3), r2 (rating 5), r3 (rating 3)
	reviews := store.Reviews()
	titles := []string{"r1", "r2", "r3"}
	ratings := []int{3, 5, 3}
	for i := range titles {
		require.NoError(t, reviews.Create(ctx, &domain.Review{
			ProductID: product.ID,
			Author:    "author",
			Title:     titles[i],
			Rating:    ratings[i],
		}))
	}
	require.NoError(t, reviews.Create(ctx, &domain.Review{ProductID: other.ID, Author: "a", Title: "other", Rating: 1}))

	tests := []struct {
		token    string
		expected []string
	}{
		{token: domain.OrderCreatedAtAsc, expected: []string{"r1", "r2", "r3"}},
		{token: domain.OrderCreatedAtDesc, expected: []string{"r3", "r2", "r1"}},
		{token: domain.OrderRatingAsc, expected: []string{"r3", "r1", "r2"}},
		{token: domain.OrderRatingDesc, expected: []string{"r2", "r3", "r1"}},
	}

	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			order, ok := domain.ResolveReviewOrder(tt.token)
			require.True(t, ok)

			list, err := reviews.ListByProductID(ctx, product.ID, order)
			require.NoError(t, err)

			got := make([]string, len(list))
			for i, r := range list {
				got[i] = r.Title
			}
			assert.Equal(t, tt.expected, got)
		})
	}

	t.Run("empty order defaults to newest first", func(t *testing.T) {
		list, err := reviews.ListByProductID(ctx, product.ID, nil)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, "r3", list[0].Title)
	})
}

func TestReviewRepository_AverageRating(t *testing.T) {
	store := NewStore()
	ctx := context.Background()

	product := &domain.Product{Name: "Product 1"}
	require.NoError(t, store.Products().Create(ctx, product))

	avg, err := store.Reviews().AverageRating(ctx, product.ID)
	require.NoError(t, err)
	assert.Nil(t, avg)

	for _, rating := range []int{1, 2, 2} {
		require.NoError(t, store.Reviews().Create(ctx, &domain.Review{
			ProductID: product.ID, Author: "a", Title: "t", Rating: rating,
		}))
	}

	avg, err = store.Reviews().AverageRating(ctx, product.ID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.InDelta(t, 5.0/3.0, *avg, 1e-9)
}
