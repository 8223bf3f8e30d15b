package domain

import (
	"fmt"
	"strings"
)

// Order tokens accepted by the review listing. A leading "-" means descending.
const (
	OrderCreatedAtAsc  = "created_at"
	OrderCreatedAtDesc = "-created_at"
	OrderRatingAsc     = "rating"
	OrderRatingDesc    = "-rating"

	DefaultReviewOrder = OrderCreatedAtDesc
)

// ReviewOrders lists the accepted tokens in the order they are reported to clients
var ReviewOrders = []string{
	OrderCreatedAtAsc,
	OrderCreatedAtDesc,
	OrderRatingAsc,
	OrderRatingDesc,
}

// SortKey is a sortable review column
type SortKey string

const (
	SortByCreatedAt SortKey = "created_at"
	SortByRating    SortKey = "rating"
)

// Direction is a sort direction
type Direction string

const (
	Ascending  Direction = "ASC"
	Descending Direction = "DESC"
)

// SortField is one (key, direction) pair of an ordering
type SortField struct {
	Key       SortKey
	Direction Direction
}

// Ordering is applied in sequence; later fields break ties of earlier ones
type Ordering []SortField

var reviewOrderings = map[string]Ordering{
	OrderCreatedAtAsc:  {{SortByCreatedAt, Ascending}},
	OrderCreatedAtDesc: {{SortByCreatedAt, Descending}},
	OrderRatingAsc:     {{SortByRating, Ascending}, {SortByCreatedAt, Descending}},
	OrderRatingDesc:    {{SortByRating, Descending}, {SortByCreatedAt, Descending}},
}

// ResolveReviewOrder maps an order token to its ordering.
// Rating orders always fall back to newest first so equal ratings sort deterministically.
func ResolveReviewOrder(token string) (Ordering, bool) {
	order, ok := reviewOrderings[token]
	if !ok {
		return nil, false
	}

	resolved := make(Ordering, len(order))
	copy(resolved, order)
	return resolved, true
}

// QuotedReviewOrders renders the accepted tokens as `"a", "b", ...`
func QuotedReviewOrders() string {
	quoted := make([]string, len(ReviewOrders))
	for i, order := range ReviewOrders {
		quoted[i] = fmt.Sprintf("%q", order)
	}
	return strings.Join(quoted, ", ")
}

// String renders the ordering as a SQL ORDER BY list
func (o Ordering) String() string {
	parts := make([]string, len(o))
	for i, field := range o {
		parts[i] = fmt.Sprintf("%s %s", field.Key, field.Direction)
	}
	return strings.Join(parts, ", ")
}
