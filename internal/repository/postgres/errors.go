package postgres

import (
	"errors"

	"github.com/lib/pq"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

// PostgreSQL error codes
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// mapError translates constraint violations into domain errors
func mapError(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}

	switch pqErr.Code {
	case uniqueViolation:
		return domain.ErrAlreadyExists
	case foreignKeyViolation:
		return domain.ErrNotFound
	default:
		return err
	}
}
