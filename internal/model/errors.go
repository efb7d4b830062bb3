package model

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// FieldError represents a validation error on a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError is the failure envelope returned by every endpoint:
//
//	{"success": false, "error": "...", "code": 400, "errors": [...]}
type APIError struct {
	Success bool         `json:"success"`
	Message string       `json:"error"`
	Code    int          `json:"code"`
	Errors  []FieldError `json:"errors,omitempty"`

	// RetryAfter is sent as a header, not in the body
	RetryAfter int `json:"-"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Status returns the HTTP status code of the error
func (e *APIError) Status() int {
	return e.Code
}

// WriteJSON writes the error envelope as the JSON response
func (e *APIError) WriteJSON(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	if e.RetryAfter > 0 {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", e.RetryAfter))
	}
	w.WriteHeader(e.Code)
	_ = json.NewEncoder(w).Encode(e)
}

func newAPIError(status int, message string) *APIError {
	return &APIError{Success: false, Message: message, Code: status}
}

// Common error constructors

func NewUnauthorizedError(detail string) *APIError {
	if detail == "" {
		detail = "authentication required"
	}
	return newAPIError(http.StatusUnauthorized, detail)
}

func NewForbiddenError(detail string) *APIError {
	if detail == "" {
		detail = "forbidden"
	}
	return newAPIError(http.StatusForbidden, detail)
}

func NewNotFoundError(resource string) *APIError {
	return newAPIError(http.StatusNotFound, fmt.Sprintf("%s not found", resource))
}

// NewValidationError builds a 400 carrying the offending fields. The message
// names the first field so clients that only read "error" still see it.
func NewValidationError(errors []FieldError) *APIError {
	message := "one or more fields failed validation"
	if len(errors) > 0 {
		message = fmt.Sprintf("%s: %s", errors[0].Field, errors[0].Message)
		if len(errors) > 1 {
			message = fmt.Sprintf("%s (and %d more errors)", message, len(errors)-1)
		}
	}
	e := newAPIError(http.StatusBadRequest, message)
	e.Errors = errors
	return e
}

func NewConflictError(detail string) *APIError {
	return newAPIError(http.StatusConflict, detail)
}

// NewInternalError keeps the underlying message attached so operators can
// diagnose failures from the response alone.
func NewInternalError(detail string) *APIError {
	if detail == "" {
		detail = "an unexpected error occurred"
	}
	return newAPIError(http.StatusInternalServerError, detail)
}

func NewBadRequestError(detail string) *APIError {
	return newAPIError(http.StatusBadRequest, detail)
}

func NewBadGatewayError(detail string) *APIError {
	return newAPIError(http.StatusBadGateway, detail)
}

func NewServiceUnavailableError(detail string) *APIError {
	return newAPIError(http.StatusServiceUnavailable, detail)
}

func NewRateLimitError(retryAfter int) *APIError {
	e := newAPIError(http.StatusTooManyRequests, fmt.Sprintf("rate limit exceeded, retry after %d seconds", retryAfter))
	e.RetryAfter = retryAfter
	return e
}
