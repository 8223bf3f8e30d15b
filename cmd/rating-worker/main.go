package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/delivery/queue"
	"github.com/Pesokrava/product_reviews/internal/jobs"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/repository"
	"github.com/Pesokrava/product_reviews/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env).Named("rating-worker")
	appLogger.Info("Starting rating worker...")

	if cfg.Database.Driver == config.StorageDriverMemory {
		appLogger.Fatal("Rating worker needs shared storage", errors.New("memory storage is process-local"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := repository.Open(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open storage", err)
	}
	defer repos.Close()

	registry := jobs.NewRegistry()
	calculator := worker.NewCalculator(repos.Products, repos.Reviews, appLogger)
	worker.NewRatingWorker(calculator, appLogger, cfg.Jobs.Timeout).Register(registry)

	appLogger.Infof("Connecting to %s job queue...", cfg.Jobs.Backend)
	runner, err := queue.NewRunner(cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to create job runner", err)
	}
	defer runner.Close()

	appLogger.WithFields(map[string]any{
		"backend":     cfg.Jobs.Backend,
		"concurrency": cfg.Jobs.Concurrency,
		"jobs":        registry.Names(),
	}).Info("Rating worker started")

	if err := runner.Run(ctx, registry); err != nil {
		appLogger.Error("Job runner stopped with error", err)
	}

	appLogger.Info("Rating worker stopped")
}
