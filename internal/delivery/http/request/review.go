package request

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"

	"github.com/Pesokrava/product_reviews/internal/domain"
	"github.com/Pesokrava/product_reviews/internal/pkg/validator"
	"github.com/Pesokrava/product_reviews/internal/usecase/review"
)

// Request fields reported in validation errors
const (
	FieldProductID = "product_id"
	FieldData      = "data"
	FieldAuthor    = "data.author"
	FieldBody      = "data.body"
	FieldRating    = "data.rating"
	FieldTitle     = "data.title"
	FieldMeta      = "meta"
	FieldMetaOrder = "meta.order"
)

var (
	createTopLevelKeys = map[string]bool{"data": true}
	createDataKeys     = map[string]bool{"author": true, "body": true, "rating": true, "title": true}
)

func nonEmptyStringMessage(field string) string {
	return fmt.Sprintf("The %q field must be a non-empty string.", field)
}

func unsupportedFieldError(field string) *domain.ValidationError {
	return domain.NewValidationError(field, fmt.Sprintf("The %q field is not supported.", field))
}

func productIDError() *domain.ValidationError {
	return domain.NewValidationError(FieldProductID, nonEmptyStringMessage(FieldProductID))
}

// rawKind classifies a raw JSON value by its first byte
func rawKind(raw json.RawMessage) byte {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	return trimmed[0]
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// decodeObject decodes a JSON object into its raw members
func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if rawKind(raw) != '{' {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

// decodeString decodes a JSON string, rejecting every other type
func decodeString(raw json.RawMessage) (string, bool) {
	if rawKind(raw) != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// decodeInteger accepts integer literals only, so 2.0 and "2" are rejected
func decodeInteger(raw json.RawMessage) (int, bool) {
	n, err := strconv.Atoi(string(bytes.TrimSpace(raw)))
	if err != nil {
		return 0, false
	}
	return n, true
}

func nonBlankString(raw json.RawMessage, present bool) (string, bool) {
	if !present {
		return "", false
	}
	s, ok := decodeString(raw)
	if !ok || !validator.NotBlank(s) {
		return "", false
	}
	return s, true
}

func firstUnsupported(obj map[string]json.RawMessage, known map[string]bool, prefix string) *domain.ValidationError {
	var unknown []string
	for key := range obj {
		if !known[key] {
			unknown = append(unknown, key)
		}
	}
	if len(unknown) == 0 {
		return nil
	}
	sort.Strings(unknown)
	return unsupportedFieldError(prefix + unknown[0])
}

// ValidateCreateReview validates a create-review body. Checks run in a fixed
// order and the first failure is returned as a *domain.ValidationError.
// An empty or null body has no "data". Any other body that is not a JSON
// object yields ErrMalformedBody.
func ValidateCreateReview(body []byte, productID string) (review.CreateInput, error) {
	if !validator.Satisfies(productID, "required") {
		return review.CreateInput{}, productIDError()
	}

	top := map[string]json.RawMessage{}
	if len(bytes.TrimSpace(body)) > 0 && !isNull(body) {
		var ok bool
		if top, ok = decodeObject(body); !ok {
			return review.CreateInput{}, ErrMalformedBody
		}
	}

	data, ok := decodeObject(top["data"])
	if !ok {
		return review.CreateInput{}, domain.NewValidationError(FieldData,
			fmt.Sprintf("The %q field must be a valid JSON object.", FieldData))
	}

	rawAuthor, present := data["author"]
	author, ok := nonBlankString(rawAuthor, present)
	if !ok {
		return review.CreateInput{}, domain.NewValidationError(FieldAuthor, nonEmptyStringMessage(FieldAuthor))
	}

	var bodyText *string
	if rawBody, present := data["body"]; present && !isNull(rawBody) {
		s, ok := decodeString(rawBody)
		if !ok {
			return review.CreateInput{}, domain.NewValidationError(FieldBody,
				fmt.Sprintf("The %q field must be \"null\" or a string.", FieldBody))
		}
		bodyText = &s
	}

	rating, ok := decodeInteger(data["rating"])
	if !ok || !validator.ValidRating(rating) {
		return review.CreateInput{}, domain.NewValidationError(FieldRating,
			fmt.Sprintf("The %q field must be an integer between %d and %d, inclusive.", FieldRating, domain.MinRating, domain.MaxRating))
	}

	rawTitle, present := data["title"]
	title, ok := nonBlankString(rawTitle, present)
	if !ok {
		return review.CreateInput{}, domain.NewValidationError(FieldTitle, nonEmptyStringMessage(FieldTitle))
	}

	if err := firstUnsupported(data, createDataKeys, FieldData+"."); err != nil {
		return review.CreateInput{}, err
	}
	if err := firstUnsupported(top, createTopLevelKeys, ""); err != nil {
		return review.CreateInput{}, err
	}

	return review.CreateInput{
		ProductID: productID,
		Author:    author,
		Title:     title,
		Body:      bodyText,
		Rating:    rating,
	}, nil
}

// metaKey splits a bracketed query key such as meta[order][x] into "order"
// and whether more brackets follow
func metaKey(key string) (sub string, nested bool, ok bool) {
	rest, found := strings.CutPrefix(key, FieldMeta+"[")
	if !found {
		return "", false, false
	}
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return "", false, false
	}
	return rest[:end], len(rest) > end+1, true
}

// ValidateListReviews validates the query of a review listing.
// Only meta parameters are inspected; meta[order] defaults to -created_at.
func ValidateListReviews(query url.Values, productID string) (review.ListInput, error) {
	if !validator.Satisfies(productID, "required") {
		return review.ListInput{}, productIDError()
	}

	var (
		metaScalar  bool
		orderNested bool
		orderSet    bool
		token       string
		unknown     []string
	)

	for key, values := range query {
		if key == FieldMeta {
			for _, v := range values {
				if v != "" {
					metaScalar = true
				}
			}
			continue
		}

		sub, nested, ok := metaKey(key)
		switch {
		case !ok:
			continue
		case sub == "":
			metaScalar = true
		case sub == "order" && nested:
			orderNested = true
		case sub == "order":
			orderSet = true
			token = values[len(values)-1]
		default:
			unknown = append(unknown, sub)
		}
	}

	if metaScalar {
		return review.ListInput{}, domain.NewValidationError(FieldMeta,
			fmt.Sprintf("The %q field must be \"null\" or a valid JSON object.", FieldMeta))
	}

	if !orderSet && !orderNested {
		token = domain.DefaultReviewOrder
	}

	order, ok := domain.ResolveReviewOrder(token)
	if orderNested || !ok {
		return review.ListInput{}, domain.NewValidationError(FieldMetaOrder,
			fmt.Sprintf("The %q field must be \"null\" or one of %s.", FieldMetaOrder, domain.QuotedReviewOrders()))
	}

	if len(unknown) > 0 {
		sort.Strings(unknown)
		return review.ListInput{}, unsupportedFieldError(FieldMeta + "." + unknown[0])
	}

	return review.ListInput{
		ProductID:  productID,
		Order:      order,
		OrderToken: token,
	}, nil
}
