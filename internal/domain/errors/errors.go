package errors

import (
	"errors"
	"fmt"
)

// Error types for different domains
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeScoring    ErrorType = "scoring"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeConflict   ErrorType = "conflict"
)

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// Error constructors

// NewInvalidRecordError reports a missing required field on an inbound
// transaction record. The offending field name is carried in both the
// message and the details map so callers can surface it verbatim.
func NewInvalidRecordError(field string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       "INVALID_RECORD",
		Message:    fmt.Sprintf("Missing required field: %s", field),
		Retryable:  false,
		StatusCode: 400,
		Details:    map[string]interface{}{"field": field},
	}
}

// NewMalformedFieldError reports a field that is present but unparseable.
func NewMalformedFieldError(field, reason string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       "INVALID_RECORD",
		Message:    fmt.Sprintf("Malformed field %s: %s", field, reason),
		Retryable:  false,
		StatusCode: 400,
		Details:    map[string]interface{}{"field": field},
	}
}

// NewScoringUnavailableError indicates the scoring model is not loaded or not
// ready. Callers may retry after backoff.
func NewScoringUnavailableError() *AppError {
	return &AppError{
		Type:       ErrorTypeScoring,
		Code:       "SCORING_UNAVAILABLE",
		Message:    "Scoring model is not loaded",
		Retryable:  true,
		StatusCode: 503,
	}
}

// NewScoringError indicates the model rejected a well-formed feature vector.
func NewScoringError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeScoring,
		Code:       "SCORING_ERROR",
		Message:    message,
		Retryable:  false,
		StatusCode: 500,
	}
}

// NewScoringTimeoutError indicates the scorer did not answer within the
// configured bound. Propagates like a scoring error but keeps a distinct code
// for operability.
func NewScoringTimeoutError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeScoring,
		Code:       "SCORING_TIMEOUT",
		Message:    message,
		Retryable:  true,
		StatusCode: 504,
	}
}

func NewValidationError(code, message string) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		Retryable:  false,
		StatusCode: 400,
	}
}

func NewNotFoundError(resource string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       "RESOURCE_NOT_FOUND",
		Message:    fmt.Sprintf("%s not found", resource),
		Retryable:  false,
		StatusCode: 404,
	}
}

func NewInternalError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       "INTERNAL_ERROR",
		Message:    message,
		Retryable:  true,
		StatusCode: 500,
	}
}

// Wrap wraps an error with a message using fmt.Errorf with %w
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// IsType checks if an error is of a specific type
func IsType(err error, errorType ErrorType) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type == errorType
	}
	return false
}

// IsCode checks if an error carries a specific application code
func IsCode(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsRetryable checks if an error is retryable
func IsRetryable(err error) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Retryable
	}
	return false
}

// GetStatusCode extracts HTTP status code from error
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 500
}
