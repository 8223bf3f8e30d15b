package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Pesokrava/product_reviews/internal/delivery/http/request"
	"github.com/Pesokrava/product_reviews/internal/delivery/http/response"
	"github.com/Pesokrava/product_reviews/internal/delivery/http/serializer"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
	"github.com/Pesokrava/product_reviews/internal/usecase/review"
)

// ReviewHandler handles HTTP requests for reviews
type ReviewHandler struct {
	service *review.Service
	logger  *logger.Logger
}

// NewReviewHandler creates a new review handler
func NewReviewHandler(service *review.Service, log *logger.Logger) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		logger:  log,
	}
}

// CreateReviewRequest documents the create review body
type CreateReviewRequest struct {
	Data CreateReviewData `json:"data"`
}

// CreateReviewData documents the fields of a new review
type CreateReviewData struct {
	Author string  `json:"author" example:"author-1"`
	Title  string  `json:"title" example:"Review title"`
	Body   *string `json:"body" example:"Body text"`
	Rating int     `json:"rating" example:"5" minimum:"1" maximum:"5"`
}

// ReviewResponse documents a single review response
type ReviewResponse struct {
	Data serializer.ReviewView `json:"data"`
}

// ReviewListResponse documents the review listing
type ReviewListResponse struct {
	Data []serializer.ReviewView `json:"data"`
	Meta response.Meta           `json:"meta"`
}

// Create handles POST /products/{id}/reviews
// @Summary Create a review
// @Description Create a review for a product. The product's average rating is recalculated asynchronously.
// @Tags Reviews
// @Accept json
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param review body CreateReviewRequest true "Review details"
// @Success 201 {object} ReviewResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /products/{id}/reviews [post]
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	body, err := request.ReadBody(r)
	if err != nil {
		writeError(w, h.logger, err, productNotFoundMessage)
		return
	}

	input, err := request.ValidateCreateReview(body, chi.URLParam(r, ParamID))
	if err != nil {
		writeError(w, h.logger, err, productNotFoundMessage)
		return
	}

	created, err := h.service.Create(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err, productNotFoundMessage)
		return
	}

	response.Data(w, http.StatusCreated, serializer.Review(created))
}

// List handles GET /products/{id}/reviews
// @Summary List reviews of a product
// @Description List every review of a product. meta[order] selects the order, newest first by default.
// @Tags Reviews
// @Produce json
// @Param id path string true "Product ID (UUID)"
// @Param meta[order] query string false "Sort order" Enums(created_at, -created_at, rating, -rating)
// @Success 200 {object} ReviewListResponse
// @Failure 400 {object} response.ErrorBody
// @Failure 404 {object} response.ErrorBody
// @Failure 500 {object} response.ErrorBody
// @Router /products/{id}/reviews [get]
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	input, err := request.ValidateListReviews(r.URL.Query(), chi.URLParam(r, ParamID))
	if err != nil {
		writeError(w, h.logger, err, productNotFoundMessage)
		return
	}

	reviews, err := h.service.List(r.Context(), input)
	if err != nil {
		writeError(w, h.logger, err, productNotFoundMessage)
		return
	}

	response.DataWithMeta(w, http.StatusOK, serializer.Reviews(reviews), response.Meta{Order: input.OrderToken})
}
