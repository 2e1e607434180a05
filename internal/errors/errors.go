package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/render"
)

// APIError represents a structured API error response
type APIError struct {
	StatusCode int    `json:"status_code"`
	ErrorCode  string `json:"error_code"`
	Message    string `json:"message"`
	Details    any    `json:"details,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Render implements the render.Renderer interface for chi/render
func (e *APIError) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.StatusCode)
	return nil
}

// ValidationError describes one rejected field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates a new APIError
func New(statusCode int, errorCode, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
	}
}

// NewWithDetails creates a new APIError with additional details
func NewWithDetails(statusCode int, errorCode, message string, details any) *APIError {
	return &APIError{
		StatusCode: statusCode,
		ErrorCode:  errorCode,
		Message:    message,
		Details:    details,
	}
}

// Error codes carried in APIError.ErrorCode
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeTickerNotFound     = "TICKER_NOT_FOUND"
	CodeRateLimitExceeded  = "RATE_LIMIT_EXCEEDED"
	CodeInternal           = "INTERNAL_SERVER_ERROR"
	CodeReloadFailed       = "RELOAD_FAILED"
	CodeWebSocketUpgrade   = "WEBSOCKET_UPGRADE_FAILED"
	CodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// Predefined errors
var (
	ErrInvalidRequest     = New(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format")
	ErrValidationFailed   = New(http.StatusBadRequest, CodeValidationFailed, "Request validation failed")
	ErrNotFound           = New(http.StatusNotFound, CodeNotFound, "Resource not found")
	ErrRateLimitExceeded  = New(http.StatusTooManyRequests, CodeRateLimitExceeded, "Rate limit exceeded")
	ErrInternalServer     = New(http.StatusInternalServerError, CodeInternal, "Internal server error")
	ErrWebSocketUpgrade   = New(http.StatusInternalServerError, CodeWebSocketUpgrade, "WebSocket upgrade failed")
	ErrServiceUnavailable = New(http.StatusServiceUnavailable, CodeServiceUnavailable, "Service temporarily unavailable")
)

// InvalidRequestWithError creates an invalid request error carrying err's text
func InvalidRequestWithError(err error) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeInvalidRequest, "Invalid request format", err.Error())
}

// ErrValidation creates a validation error for a single field
func ErrValidation(field, message string) *APIError {
	return NewWithDetails(http.StatusBadRequest, CodeValidationFailed, "Request validation failed", ValidationError{
		Field:   field,
		Message: message,
	})
}

// NotFoundError creates a generic not found error
func NotFoundError(resource string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeNotFound, fmt.Sprintf("%s not found", resource), resource)
}

// TickerNotFoundError reports a ticker symbol with no loaded table
func TickerNotFoundError(symbol string) *APIError {
	return NewWithDetails(http.StatusNotFound, CodeTickerNotFound,
		fmt.Sprintf("Ticker %s not found", symbol), map[string]string{"ticker": symbol})
}

// ReloadFailedError reports a ticker rebuild that did not complete
func ReloadFailedError(symbol string, err error) *APIError {
	return NewWithDetails(http.StatusInternalServerError, CodeReloadFailed,
		fmt.Sprintf("Failed to reload ticker %s", symbol), err.Error())
}

// ErrorResponse wraps an APIError in the legacy envelope
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   *APIError `json:"error"`
}

// NewErrorResponse creates a new error response
func NewErrorResponse(err *APIError) *ErrorResponse {
	return &ErrorResponse{Error: err}
}

// Render implements the render.Renderer interface
func (e *ErrorResponse) Render(w http.ResponseWriter, r *http.Request) error {
	return e.Error.Render(w, r)
}

// ValidationErrors groups several field errors
type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

// NewValidationErrors creates a validation error covering several fields
func NewValidationErrors(errs []ValidationError) *APIError {
	return NewWithDetails(
		http.StatusBadRequest,
		CodeValidationFailed,
		"Request validation failed",
		ValidationErrors{Errors: errs},
	)
}

// PanicRecovery describes a recovered panic
type PanicRecovery struct {
	Message string `json:"message"`
	Stack   string `json:"stack,omitempty"`
}

// ErrPanic creates an internal error from a recovered value
func ErrPanic(rec any) *APIError {
	return NewWithDetails(
		http.StatusInternalServerError,
		CodeInternal,
		"Internal server error",
		PanicRecovery{Message: fmt.Sprintf("%v", rec)},
	)
}

// WriteError writes err in the ErrorResponse envelope without going through render
func WriteError(w http.ResponseWriter, err *APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(err.StatusCode)
	_ = json.NewEncoder(w).Encode(NewErrorResponse(err))
}

// NewValidationError creates a validation error with a free-form message
func NewValidationError(message string) *APIError {
	return New(http.StatusBadRequest, CodeValidationFailed, message)
}

// NewInternalError creates an internal error with a free-form message
func NewInternalError(message string) *APIError {
	return New(http.StatusInternalServerError, CodeInternal, message)
}
