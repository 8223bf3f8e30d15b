package repository

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

func TestOpen_Memory(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: config.StorageDriverMemory}}
	log := logger.NewWithWriter("test", io.Discard)

	repos, err := Open(context.Background(), cfg, log)
	require.NoError(t, err)
	defer repos.Close()

	ctx := context.Background()
	p := &domain.Product{Name: "Product 1"}
	require.NoError(t, repos.Products.Create(ctx, p))

	r := &domain.Review{ProductID: p.ID, Author: "a", Title: "t", Rating: 4}
	require.NoError(t, repos.Reviews.Create(ctx, r))

	avg, err := repos.Reviews.AverageRating(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, avg)
	assert.Equal(t, 4.0, *avg)
}

func TestOpen_UnknownDriver(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{Driver: "mongo"}}
	log := logger.NewWithWriter("test", io.Discard)

	_, err := Open(context.Background(), cfg, log)
	assert.Error(t, err)
}
