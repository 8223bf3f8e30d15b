package handler

import (
	"errors"
	"net/http"

	"github.com/Pesokrava/product_reviews/internal/delivery/http/request"
	"github.com/Pesokrava/product_reviews/internal/delivery/http/response"
	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/logger"
)

// ParamID is the URL parameter holding a product ID
const ParamID = "id"

// writeError maps an error from the validation or service layer to its HTTP
// status and error envelope. Unexpected errors are logged and hidden.
func writeError(w http.ResponseWriter, log *logger.Logger, err error, notFoundMessage string) {
	var validationErr *domain.ValidationError

	switch {
	case errors.As(err, &validationErr):
		response.InvalidRequestField(w, validationErr.Field, validationErr.Message)
	case errors.Is(err, request.ErrMalformedBody):
		response.InvalidRequestBody(w)
	case errors.Is(err, domain.ErrNotFound):
		response.NotFound(w, notFoundMessage)
	default:
		log.Error("Internal error in HTTP handler", err)
		response.InternalError(w)
	}
}
