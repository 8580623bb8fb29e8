package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"
	"strings"

	domainErrors "github.com/Samarthuday/Automated-Compliance-Risk-Scoring/internal/domain/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// ErrorHandler provides error handling with proper status codes and messages
type ErrorHandler interface {
	HandleError(err error) (status int, code, message, details string)
	HandlePanic(recovered interface{}) (status int, code, message, details string)
	IsRetryable(err error) bool
}

// DefaultErrorHandler implements ErrorHandler with comprehensive error mapping
type DefaultErrorHandler struct {
	debugMode bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler() ErrorHandler {
	return &DefaultErrorHandler{
		debugMode: false, // Set from config in production
	}
}

// HandleError converts various error types to HTTP responses
func (h *DefaultErrorHandler) HandleError(err error) (status int, code, message, details string) {
	if err == nil {
		return http.StatusOK, "", "", ""
	}

	// Domain errors
	var domainErr *domainErrors.AppError
	if errors.As(err, &domainErr) {
		return h.handleDomainError(domainErr)
	}

	// Validation errors (check for our custom ValidationError)
	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		return h.handleValidationError(validationErr)
	}

	// Context errors
	if errors.Is(err, context.Canceled) {
		return http.StatusRequestTimeout, "REQUEST_CANCELED", "Request was canceled", ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusRequestTimeout, "REQUEST_TIMEOUT", "Request timed out", ""
	}

	// JSON errors
	var jsonErr *json.SyntaxError
	if errors.As(err, &jsonErr) {
		return http.StatusBadRequest, "INVALID_JSON", "Invalid JSON syntax",
			fmt.Sprintf("Error at position %d", jsonErr.Offset)
	}

	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return http.StatusBadRequest, "TYPE_MISMATCH",
			fmt.Sprintf("Invalid type for field '%s'", typeErr.Field),
			fmt.Sprintf("Expected %s but got %s", typeErr.Type, typeErr.Value)
	}

	if errors.Is(err, io.EOF) {
		return http.StatusBadRequest, "INVALID_JSON", "Request body must be valid JSON", ""
	}

	// Default to internal server error
	details = ""
	if h.debugMode {
		details = err.Error()
	}

	return http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred", details
}

// HandlePanic converts panic recovery to error response
func (h *DefaultErrorHandler) HandlePanic(recovered interface{}) (status int, code, message, details string) {
	// Log panic with stack trace
	span := trace.SpanFromContext(context.Background())
	span.RecordError(fmt.Errorf("panic: %v", recovered), trace.WithAttributes(
		attribute.String("panic.type", fmt.Sprintf("%T", recovered)),
		attribute.String("panic.stack", string(debug.Stack())),
	))

	message = "An unexpected error occurred"
	code = "PANIC"
	status = http.StatusInternalServerError

	if h.debugMode {
		details = fmt.Sprintf("Panic: %v\n\nStack trace:\n%s", recovered, debug.Stack())
	}

	return
}

// IsRetryable determines if an error is retryable
func (h *DefaultErrorHandler) IsRetryable(err error) bool {
	var domainErr *domainErrors.AppError
	if errors.As(err, &domainErr) && domainErr.Retryable {
		return true
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	return false
}

// Private helper methods

func (h *DefaultErrorHandler) handleDomainError(err *domainErrors.AppError) (int, string, string, string) {
	status := err.StatusCode
	code := err.Code

	details := ""
	if h.debugMode && err.Details != nil {
		detailBytes, _ := json.Marshal(err.Details)
		details = string(detailBytes)
	}

	return status, code, err.Message, details
}

func (h *DefaultErrorHandler) handleValidationError(err *ValidationError) (int, string, string, string) {
	details := err.Details
	if len(err.Fields) > 0 {
		var fieldErrors []string
		for field, messages := range err.Fields {
			fieldErrors = append(fieldErrors, fmt.Sprintf("%s: %s", field, strings.Join(messages, "; ")))
		}
		details = strings.Join(fieldErrors, ", ")
	}

	return http.StatusBadRequest, "VALIDATION_ERROR", err.Message, details
}
