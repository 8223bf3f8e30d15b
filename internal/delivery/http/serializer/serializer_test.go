package serializer

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

func TestTimestamp(t *testing.T) {
	local := time.FixedZone("UTC+2", 2*60*60)
	ts := time.Date(2024, 3, 1, 14, 30, 15, 999_000_000, local)

	assert.Equal(t, "2024-03-01T12:30:15Z", Timestamp(ts))
}

func TestProduct_JSONShape(t *testing.T) {
	id := uuid.MustParse("0b7b6a55-8d4e-4a5f-9a0c-2f4b6f0f5e21")
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	data, err := json.Marshal(Product(&domain.Product{
		ID:        id,
		Name:      "Product 1",
		CreatedAt: now,
		UpdatedAt: now,
	}))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "0b7b6a55-8d4e-4a5f-9a0c-2f4b6f0f5e21",
		"name": "Product 1",
		"description": null,
		"average_rating": null,
		"created_at": "2024-01-02T03:04:05Z",
		"updated_at": "2024-01-02T03:04:05Z"
	}`, string(data))
}

func TestReview_JSONShape(t *testing.T) {
	id := uuid.MustParse("5d3c7f3e-1a2b-4c3d-8e9f-0a1b2c3d4e5f")
	productID := uuid.MustParse("0b7b6a55-8d4e-4a5f-9a0c-2f4b6f0f5e21")
	body := "Body text"
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	data, err := json.Marshal(Review(&domain.Review{
		ID:        id,
		ProductID: productID,
		Author:    "author-1",
		Title:     "Review title",
		Body:      &body,
		Rating:    4,
		CreatedAt: now,
		UpdatedAt: now,
	}))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"id": "5d3c7f3e-1a2b-4c3d-8e9f-0a1b2c3d4e5f",
		"product_id": "0b7b6a55-8d4e-4a5f-9a0c-2f4b6f0f5e21",
		"author": "author-1",
		"title": "Review title",
		"body": "Body text",
		"rating": 4,
		"created_at": "2024-01-02T03:04:05Z",
		"updated_at": "2024-01-02T03:04:05Z"
	}`, string(data))
}

func TestLists_NeverNil(t *testing.T) {
	assert.NotNil(t, Products(nil))
	assert.NotNil(t, Reviews(nil))

	data, err := json.Marshal(Reviews(nil))
	require.NoError(t, err)
	assert.Equal(t, "[]", string(data))
}
