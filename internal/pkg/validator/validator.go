// Package validator holds the shared go-playground validator with the
// review field rules registered on it.
package validator

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

// Registered tags
const (
	TagNotBlank = "notblank"
	TagRating   = "rating"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// Get returns the shared validator instance
func Get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())
		// registration only fails on an empty tag
		_ = v.RegisterValidation(TagNotBlank, func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})
		v.RegisterAlias(TagRating, fmt.Sprintf("min=%d,max=%d", domain.MinRating, domain.MaxRating))
		validate = v
	})
	return validate
}

// Satisfies reports whether value passes the given validation tag
func Satisfies(value any, tag string) bool {
	return Get().Var(value, tag) == nil
}

// NotBlank reports whether s has a non-whitespace character
func NotBlank(s string) bool {
	return Satisfies(s, TagNotBlank)
}

// ValidRating reports whether n is an accepted review rating
func ValidRating(n int) bool {
	return Satisfies(n, TagRating)
}
