package http

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/config"
	"github.com/Pesokrava/product_reviews/internal/delivery/http/handler"
	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/repository/cache"
	"github.com/Pesokrava/product_reviews/internal/repository/memory"
	"github.com/Pesokrava/product_reviews/internal/usecase/product"
	"github.com/Pesokrava/product_reviews/internal/usecase/review"
)

type discardEnqueuer struct{}

func (discardEnqueuer) Enqueue(ctx context.Context, name string, args any) error { return nil }

func setupRouter(t *testing.T) (http.Handler, *memory.Store) {
	t.Helper()

	log := logger.NewWithWriter("test", io.Discard)
	store := memory.NewStore()
	cfg := &config.Config{Server: config.ServerConfig{AllowedOrigins: []string{"*"}}}

	router := NewRouter(
		handler.NewProductHandler(product.NewService(store.Products(), nil, log), log),
		handler.NewReviewHandler(review.NewService(store.Reviews(), cache.NopCache{}, discardEnqueuer{}, log), log),
		cfg,
		log,
	)
	return router.Setup(), store
}

func serve(h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, reader))
	return rec
}

func TestRouter_Health(t *testing.T) {
	h, _ := setupRouter(t)

	rec := serve(h, http.MethodGet, "/health", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"healthy"}`, rec.Body.String())
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))
}

func TestRouter_ReviewFlow(t *testing.T) {
	h, store := setupRouter(t)

	p := &domain.Product{Name: "Product 1"}
	require.NoError(t, store.Products().Create(context.Background(), p))
	base := "/products/" + p.ID.String()

	rec := serve(h, http.MethodGet, base, "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = serve(h, http.MethodPost, base+"/reviews", `{"data":{"author":"a","title":"t","rating":4}}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = serve(h, http.MethodGet, base+"/reviews?meta[order]=rating", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"meta":{"order":"rating"}`)

	rec = serve(h, http.MethodGet, "/products", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), p.ID.String())
}

func TestRouter_Metrics(t *testing.T) {
	h, _ := setupRouter(t)

	serve(h, http.MethodGet, "/health", "")
	rec := serve(h, http.MethodGet, "/metrics", "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRouter_UnknownRoute(t *testing.T) {
	h, _ := setupRouter(t)

	rec := serve(h, http.MethodGet, "/nope", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"RESOURCE_NOT_FOUND"`)

	rec = serve(h, http.MethodDelete, "/products", "")
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"METHOD_NOT_ALLOWED"`)
}
