package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/repository/cache"
	"github.com/Pesokrava/product_reviews/internal/repository/memory"
	"github.com/Pesokrava/product_reviews/internal/usecase/product"
	"github.com/Pesokrava/product_reviews/internal/usecase/review"
)

type enqueuedJob struct {
	name string
	args any
}

// recordingEnqueuer remembers enqueued jobs instead of running them
type recordingEnqueuer struct {
	mu   sync.Mutex
	jobs []enqueuedJob
	err  error
}

func (e *recordingEnqueuer) Enqueue(ctx context.Context, name string, args any) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.jobs = append(e.jobs, enqueuedJob{name: name, args: args})
	return e.err
}

func (e *recordingEnqueuer) enqueued() []enqueuedJob {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]enqueuedJob(nil), e.jobs...)
}

type testEnv struct {
	store    *memory.Store
	enqueuer *recordingEnqueuer
	router   http.Handler
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	log := logger.NewWithWriter("test", io.Discard)
	store := memory.NewStore()
	enqueuer := &recordingEnqueuer{}

	productHandler := NewProductHandler(product.NewService(store.Products(), nil, log), log)
	reviewHandler := NewReviewHandler(review.NewService(store.Reviews(), cache.NopCache{}, enqueuer, log), log)

	r := chi.NewRouter()
	r.Get("/products", productHandler.List)
	r.Route("/products/{id}", func(r chi.Router) {
		r.Get("/", productHandler.GetByID)
		r.Get("/reviews", reviewHandler.List)
		r.Post("/reviews", reviewHandler.Create)
	})

	return &testEnv{store: store, enqueuer: enqueuer, router: r}
}

func (e *testEnv) createProduct(t *testing.T, name string) *domain.Product {
	t.Helper()
	p := &domain.Product{Name: name}
	require.NoError(t, e.store.Products().Create(context.Background(), p))
	return p
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, req)
	return rec
}
