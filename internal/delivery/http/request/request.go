package request

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

const maxRequestBodySize = 1 << 20 // 1MB

// ErrMalformedBody is returned when a request body is not valid JSON
var ErrMalformedBody = errors.New("malformed request body")

// ReadBody reads the request body with size limit
func ReadBody(r *http.Request) ([]byte, error) {
	defer r.Body.Close()

	// Limit request body size to prevent DoS attacks
	limitedReader := io.LimitReader(r.Body, maxRequestBodySize+1)

	body, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if len(body) > maxRequestBodySize {
		return nil, fmt.Errorf("%w: body exceeds %d bytes", ErrMalformedBody, maxRequestBodySize)
	}

	return body, nil
}
