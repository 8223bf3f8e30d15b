package main

import (
	"context"
	"fmt"
	"log"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/repository"
	"github.com/Pesokrava/product_reviews/internal/seed"
	"github.com/Pesokrava/product_reviews/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env).Named("seed")
	ctx := context.Background()

	repos, err := repository.Open(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open storage", err)
	}
	defer repos.Close()

	calculator := worker.NewCalculator(repos.Products, repos.Reviews, appLogger)
	seeder := seed.New(repos.Products, repos.Reviews, calculator, appLogger)

	summary, err := seeder.Run(ctx, seed.DefaultOptions())
	if err != nil {
		appLogger.Fatal("Seeding failed", err)
	}

	appLogger.Info(fmt.Sprintf("Seeded %d products and %d reviews", summary.Products, summary.Reviews))
}
