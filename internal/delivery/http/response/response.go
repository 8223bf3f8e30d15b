package response

import (
	"encoding/json"
	"net/http"
)

// Error codes and types of the error envelope
const (
	CodeInvalidRequestField = "INVALID_REQUEST_FIELD"
	CodeInvalidRequestBody  = "INVALID_REQUEST_BODY"
	CodeResourceNotFound    = "RESOURCE_NOT_FOUND"
	CodeInternalError       = "INTERNAL_ERROR"
	CodeMethodNotAllowed    = "METHOD_NOT_ALLOWED"

	TypeInvalidRequest = "INVALID_REQUEST"
	TypeAPIError       = "API_ERROR"
)

// ErrorBody is the error envelope: {"error": {...}}
type ErrorBody struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail describes one error. Field is set for field validation failures only.
type ErrorDetail struct {
	Code    string `json:"code"`
	Type    string `json:"type"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// Meta echoes request parameters back to the caller
type Meta struct {
	Order string `json:"order"`
}

// JSON writes a JSON response
func JSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// Data writes a {"data": ...} response
func Data(w http.ResponseWriter, statusCode int, data any) {
	JSON(w, statusCode, map[string]any{
		"data": data,
	})
}

// DataWithMeta writes a {"data": ..., "meta": ...} response
func DataWithMeta(w http.ResponseWriter, statusCode int, data any, meta Meta) {
	JSON(w, statusCode, map[string]any{
		"data": data,
		"meta": meta,
	})
}

// Error writes an error envelope
func Error(w http.ResponseWriter, statusCode int, detail ErrorDetail) {
	JSON(w, statusCode, ErrorBody{Error: detail})
}

// InvalidRequestField writes a 400 for a request field that failed validation
func InvalidRequestField(w http.ResponseWriter, field, message string) {
	Error(w, http.StatusBadRequest, ErrorDetail{
		Code:    CodeInvalidRequestField,
		Type:    TypeInvalidRequest,
		Field:   field,
		Message: message,
	})
}

// InvalidRequestBody writes a 400 for a body that is not a JSON object
func InvalidRequestBody(w http.ResponseWriter) {
	Error(w, http.StatusBadRequest, ErrorDetail{
		Code:    CodeInvalidRequestBody,
		Type:    TypeInvalidRequest,
		Message: "The request body must be a valid JSON object.",
	})
}

// NotFound writes a 404 for a missing resource
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, ErrorDetail{
		Code:    CodeResourceNotFound,
		Type:    TypeInvalidRequest,
		Message: message,
	})
}

// InternalError writes a 500 without leaking details
func InternalError(w http.ResponseWriter) {
	Error(w, http.StatusInternalServerError, ErrorDetail{
		Code:    CodeInternalError,
		Type:    TypeAPIError,
		Message: "An unexpected error occurred.",
	})
}
