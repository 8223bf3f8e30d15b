package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Pesokrava/product_reviews/internal/delivery/http/response"
	"github.com/Pesokrava/product_reviews/internal/delivery/http/serializer"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/usecase/product"
)

const productNotFoundMessage = "The requested product was not found."

// ProductHandler handles HTTP requests for products
type ProductHandler struct {
	service *product.Service
	logger  *logger.Logger
}

// NewProductHandler creates a new product handler
func NewProductHandler(service *product.Service, log *logger.Logger) *ProductHandler {
	return &ProductHandler{
		service: service,
		logger:  log,
	}
}

// List handles GET /products
// @Summary List products
// @Description List all products, highest average rating first. Unrated products are listed first.
// @Tags Products
// @Produce json
// @Success 200 {object} ProductListResponse
// @Failure 500 {object} response.ErrorBody
// @Router /products [get]
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, h.logger, err, productNotFoundMessage)
		return
	}

	response.Data(w, http.StatusOK, serializer.Products(products))
}

// GetByID handles GET /products/{id}
// @Summary Get a product by ID
// @Description Get a product including its eventually consistent average rating
// @Tags Products
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Success 200 {object} ProductResponse
// @Failure 404 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /products/{id} [get]
func (h *ProductHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetByID(r.Context(), chi.URLParam(r, ParamID))
	if err != nil {
		writeError(w, h.logger, err, productNotFoundMessage)
		return
	}

	response.Data(w, http.StatusOK, serializer.Product(p))
}

// ProductResponse documents GET /products/{id}
type ProductResponse struct {
	Data serializer.ProductView `json:"data"`
}

// ProductListResponse documents GET /products
type ProductListResponse struct {
	Data []serializer.ProductView `json:"data"`
}
