// Package serializer maps domain entities to their public JSON shapes.
// Only the fields listed here are ever exposed.
package serializer

import (
	"time"

	"github.com/Pesokrava/product_reviews/internal/domain"
)

// ProductView is the public representation of a product
type ProductView struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Description   *string  `json:"description"`
	AverageRating *float64 `json:"average_rating"`
	CreatedAt     string   `json:"created_at"`
	UpdatedAt     string   `json:"updated_at"`
}

// ReviewView is the public representation of a review
type ReviewView struct {
	ID        string  `json:"id"`
	ProductID string  `json:"product_id"`
	Author    string  `json:"author"`
	Title     string  `json:"title"`
	Body      *string `json:"body"`
	Rating    int     `json:"rating"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// Timestamp formats a time as ISO-8601 in UTC with second precision
func Timestamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// Product serializes a product
func Product(p *domain.Product) ProductView {
	return ProductView{
		ID:            p.ID.String(),
		Name:          p.Name,
		Description:   p.Description,
		AverageRating: p.AverageRating,
		CreatedAt:     Timestamp(p.CreatedAt),
		UpdatedAt:     Timestamp(p.UpdatedAt),
	}
}

// Products serializes a product list, never returning nil
func Products(products []*domain.Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, Product(p))
	}
	return views
}

// Review serializes a review
func Review(r *domain.Review) ReviewView {
	return ReviewView{
		ID:        r.ID.String(),
		ProductID: r.ProductID.String(),
		Author:    r.Author,
		Title:     r.Title,
		Body:      r.Body,
		Rating:    r.Rating,
		CreatedAt: Timestamp(r.CreatedAt),
		UpdatedAt: Timestamp(r.UpdatedAt),
	}
}

// Reviews serializes a review list, never returning nil
func Reviews(reviews []*domain.Review) []ReviewView {
	views := make([]ReviewView, 0, len(reviews))
	for _, r := range reviews {
		views = append(views, Review(r))
	}
	return views
}
