// Package repository opens the storage gateway selected by configuration.
package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/database"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/repository/memory"
	"github.com/Pesokrava/product_reviews/internal/repository/postgres"
)

const (
	connectAttempts = 10
	connectDelay    = 2 * time.Second
)

// Repositories is the storage gateway used by services and workers
type Repositories struct {
	Products domain.ProductRepository
	Reviews  domain.ReviewRepository

	close func() error
}

// Close releases the underlying connection, if any
func (r *Repositories) Close() error {
	if r.close == nil {
		return nil
	}
	return r.close()
}

// Open connects the configured storage driver. The memory driver keeps
// data in the current process only.
func Open(ctx context.Context, cfg *config.Config, log *logger.Logger) (*Repositories, error) {
	switch cfg.Database.Driver {
	case config.StorageDriverPostgres:
		log.Info("Connecting to PostgreSQL...")
		db, err := database.WaitForDB(ctx, cfg, log, connectAttempts, connectDelay)
		if err != nil {
			return nil, err
		}
		log.Info("Connected to PostgreSQL successfully")

		return &Repositories{
			Products: postgres.NewProductRepository(db),
			Reviews:  postgres.NewReviewRepository(db),
			close:    db.Close,
		}, nil
	case config.StorageDriverMemory:
		log.Warn("Using in-memory storage, data is lost on restart")
		store := memory.NewStore()
		return &Repositories{
			Products: store.Products(),
			Reviews:  store.Reviews(),
		}, nil
	default:
		return nil, fmt.Errorf("unsupported storage driver: %q", cfg.Database.Driver)
	}
}
