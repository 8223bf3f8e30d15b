package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("create review: %w", NewValidationError("data.rating", "bad rating"))

	assert.True(t, errors.Is(err, ErrInvalidInput))
	assert.False(t, errors.Is(err, ErrNotFound))

	var vErr *ValidationError
	require.True(t, errors.As(err, &vErr))
	assert.Equal(t, "data.rating", vErr.Field)
	assert.Equal(t, "bad rating", vErr.Message)
	assert.Contains(t, err.Error(), "data.rating")
}
