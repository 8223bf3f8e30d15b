package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Pesokrava/product_reviews/internal/config"
	httpDelivery "github.com/Pesokrava/product_reviews/internal/delivery/http"
	"github.com/Pesokrava/product_reviews/internal/delivery/http/handler"
	"github.com/Pesokrava/product_reviews/internal/delivery/queue"
	"github.com/Pesokrava/product_reviews/internal/jobs"
	redisClient "github.com/Pesokrava/product_reviews/internal/pkg/cache"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/repository"
	"github.com/Pesokrava/product_reviews/internal/repository/cache"
	"github.com/Pesokrava/product_reviews/internal/usecase/product"
	"github.com/Pesokrava/product_reviews/internal/usecase/review"
	"github.com/Pesokrava/product_reviews/internal/worker"

	_ "github.com/Pesokrava/product_reviews/docs"
)

// @title Product Reviews API
// @version 1.0
// @description Product and review API with asynchronous average rating recalculation.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /
// @schemes http https

// @tag.name Products
// @tag.description Product endpoints

// @tag.name Reviews
// @tag.description Review endpoints

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	appLogger := logger.New(cfg.Env)
	appLogger.Info("Starting Product Reviews API...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := repository.Open(ctx, cfg, appLogger)
	if err != nil {
		appLogger.Fatal("Failed to open storage", err)
	}
	defer repos.Close()

	reviewsCache := reviewListCache(ctx, cfg, appLogger)

	productCache, err := cache.NewProductCache(cfg.Cache.ProductCacheSize, cfg.Cache.ProductTTL)
	if err != nil {
		appLogger.Fatal("Failed to create product cache", err)
	}
	defer productCache.Close()

	var workers sync.WaitGroup
	var enqueuer queue.Enqueuer
	if cfg.Jobs.Backend == config.JobsBackendLocal {
		local := queue.NewLocal(cfg, appLogger)
		registry := jobs.NewRegistry()
		calculator := worker.NewCalculator(repos.Products, repos.Reviews, appLogger)
		worker.NewRatingWorker(calculator, appLogger, cfg.Jobs.Timeout).Register(registry)

		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := local.Run(ctx, registry); err != nil {
				appLogger.Error("Local job queue failed", err)
			}
		}()
		enqueuer = local
	} else {
		appLogger.Infof("Connecting to %s job queue...", cfg.Jobs.Backend)
		enqueuer, err = queue.NewEnqueuer(cfg, appLogger)
		if err != nil {
			appLogger.Fatal("Failed to create job enqueuer", err)
		}
	}
	defer enqueuer.Close()

	productService := product.NewService(repos.Products, productCache, appLogger)
	reviewService := review.NewService(repos.Reviews, reviewsCache, enqueuer, appLogger)

	productHandler := handler.NewProductHandler(productService, appLogger)
	reviewHandler := handler.NewReviewHandler(reviewService, appLogger)

	router := httpDelivery.NewRouter(productHandler, reviewHandler, cfg, appLogger)

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		appLogger.Infof("HTTP server listening on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("HTTP server failed", err)
		}
	}()

	<-ctx.Done()
	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		appLogger.Error("Server forced to shutdown", err)
	}
	workers.Wait()

	appLogger.Info("Server stopped gracefully")
}

// reviewListCache connects Redis when review list caching is enabled,
// falling back to no caching when Redis is unreachable
func reviewListCache(ctx context.Context, cfg *config.Config, log *logger.Logger) review.Cache {
	if !cfg.Cache.ReviewsEnabled {
		return cache.NopCache{}
	}

	log.Info("Connecting to Redis...")
	client, err := redisClient.WaitForRedis(ctx, cfg, log, 5, 2*time.Second)
	if err != nil {
		log.Error("Redis unavailable, review lists will not be cached", err)
		return cache.NopCache{}
	}
	log.Info("Connected to Redis successfully")

	return cache.NewRedisCache(client, cfg.Cache.ReviewsListTTL)
}
