package rest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RequestMeta contains metadata about the current request
type RequestMeta struct {
	RequestID    string
	TraceID      string
	SpanID       string
	APIVersion   string
	ClientIP     string
	UserAgent    string
	AcceptHeader string
}

// ResponseEnvelope wraps all API responses
type ResponseEnvelope struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Error   *ErrorResponse    `json:"error,omitempty"`
	Meta    ResponseMeta      `json:"meta"`
	Links   map[string]string `json:"_links,omitempty"`
}

// ResponseMeta contains response metadata
type ResponseMeta struct {
	RequestID    string    `json:"request_id"`
	Timestamp    time.Time `json:"timestamp"`
	Version      string    `json:"version"`
	ResponseTime string    `json:"response_time,omitempty"`
}

// ErrorResponse provides detailed error information
type ErrorResponse struct {
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    string                 `json:"details,omitempty"`
	Fields     map[string][]string    `json:"fields,omitempty"`
	TraceID    string                 `json:"trace_id,omitempty"`
	RetryAfter *time.Duration         `json:"retry_after,omitempty"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
}

// BaseHandler provides common functionality for all handlers
type BaseHandler struct {
	validator    *validator.Validate
	tracer       trace.Tracer
	errorHandler ErrorHandler
	apiVersion   string
}

// NewBaseHandler creates a new base handler
func NewBaseHandler(apiVersion string) *BaseHandler {
	v := validator.New()

	// Report the wire-level json field names in validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// Register custom validators
	v.RegisterValidation("iso4217", validateISO4217)
	v.RegisterValidation("datetime", validateDateTime)

	return &BaseHandler{
		validator:    v,
		tracer:       otel.Tracer("api.rest"),
		errorHandler: NewErrorHandler(),
		apiVersion:   apiVersion,
	}
}

const maxBodySize = 1 << 20 // 1MB

// ParseAndValidate decodes a JSON request body into v and validates the
// structure. The caller gets back a ValidationError it can hand straight to
// handleError.
func (h *BaseHandler) ParseAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)

	contentType := r.Header.Get("Content-Type")
	if contentType != "" && !strings.HasPrefix(contentType, "application/json") {
		return &ValidationError{Message: "Content-Type must be application/json"}
	}

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesError *http.MaxBytesError
		if errors.As(err, &maxBytesError) {
			return &ValidationError{
				Message: fmt.Sprintf("Request body too large (max %d bytes)", int64(maxBodySize)),
			}
		}
		return err
	}

	if err := h.validator.Struct(v); err != nil {
		return h.formatValidationError(err)
	}

	return nil
}

// formatValidationError converts validator errors to our format
func (h *BaseHandler) formatValidationError(err error) error {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		fields := make(map[string][]string)

		for _, fe := range validationErrors {
			field := fe.Field()
			tag := fe.Tag()
			param := fe.Param()

			var msg string
			switch tag {
			case "required":
				msg = "This field is required"
			case "min":
				msg = fmt.Sprintf("Minimum value is %s", param)
			case "max":
				msg = fmt.Sprintf("Maximum value is %s", param)
			case "gte":
				msg = fmt.Sprintf("Must be at least %s", param)
			case "lte":
				msg = fmt.Sprintf("Must be at most %s", param)
			case "oneof":
				msg = fmt.Sprintf("Must be one of: %s", param)
			case "iso4217":
				msg = "Must be a valid ISO 4217 currency code"
			case "datetime":
				msg = fmt.Sprintf("Must be a valid datetime in format %s", param)
			default:
				msg = fmt.Sprintf("Failed %s validation", tag)
			}

			fields[field] = append(fields[field], msg)
		}

		return &ValidationError{
			Message: "Validation failed",
			Fields:  fields,
		}
	}

	return &ValidationError{
		Message: "Validation error",
		Details: err.Error(),
	}
}

// writeSuccess writes a successful response
func (h *BaseHandler) writeSuccess(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	meta := h.getRequestMeta(r.Context())

	response := ResponseEnvelope{
		Success: true,
		Data:    data,
		Meta: ResponseMeta{
			RequestID: meta.RequestID,
			Timestamp: time.Now().UTC(),
			Version:   h.apiVersion,
		},
	}

	h.writeJSON(w, status, response)
}

// writeError writes an error response
func (h *BaseHandler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message, details string) {
	meta := h.getRequestMeta(r.Context())

	errorResp := &ErrorResponse{
		Code:    code,
		Message: message,
		Details: details,
		TraceID: meta.TraceID,
	}

	if status == http.StatusTooManyRequests {
		retryAfter := time.Minute
		errorResp.RetryAfter = &retryAfter
		w.Header().Set("Retry-After", "60")
	}

	response := ResponseEnvelope{
		Success: false,
		Error:   errorResp,
		Meta: ResponseMeta{
			RequestID: meta.RequestID,
			Timestamp: time.Now().UTC(),
			Version:   h.apiVersion,
		},
	}

	h.writeJSON(w, status, response)
}

// writeJSON writes JSON response with proper headers
func (h *BaseHandler) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("X-Content-Type-Options", "nosniff")
	w.WriteHeader(status)

	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(true)

	if err := encoder.Encode(v); err != nil {
		span := trace.SpanFromContext(context.Background())
		span.RecordError(err, trace.WithAttributes(
			attribute.String("error", err.Error()),
		))
	}
}

// handleError converts domain errors to HTTP responses
func (h *BaseHandler) handleError(w http.ResponseWriter, r *http.Request, err error) {
	status, code, message, details := h.errorHandler.HandleError(err)
	h.writeError(w, r, status, code, message, details)
}

// Helper methods

func (h *BaseHandler) getRequestMeta(ctx context.Context) *RequestMeta {
	if meta, ok := ctx.Value(contextKeyRequestMeta).(*RequestMeta); ok {
		return meta
	}
	return &RequestMeta{RequestID: uuid.New().String()}
}

func extractClientIP(r *http.Request) string {
	// Check X-Forwarded-For first
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		return strings.TrimSpace(ips[0])
	}

	// Check X-Real-IP
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	// Fall back to RemoteAddr
	ip := r.RemoteAddr
	if colon := strings.LastIndex(ip, ":"); colon != -1 {
		ip = ip[:colon]
	}

	return ip
}

// Custom validators

func validateISO4217(fl validator.FieldLevel) bool {
	currency := fl.Field().String()
	validCurrencies := []string{"USD", "EUR", "GBP", "JPY", "CAD", "AUD", "CHF", "CNY"}
	for _, valid := range validCurrencies {
		if currency == valid {
			return true
		}
	}
	return false
}

func validateDateTime(fl validator.FieldLevel) bool {
	format := fl.Param()
	value := fl.Field().String()
	_, err := time.Parse(format, value)
	return err == nil
}

// Context keys
type contextKey string

const contextKeyRequestMeta contextKey = "request_meta"

// ValidationError represents a validation error
type ValidationError struct {
	Message string
	Details string
	Fields  map[string][]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    bool
}

func (rw *responseWriter) WriteHeader(code int) {
	if !rw.written {
		rw.statusCode = code
		rw.ResponseWriter.WriteHeader(code)
		rw.written = true
	}
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	if !rw.written {
		rw.WriteHeader(http.StatusOK)
	}
	return rw.ResponseWriter.Write(b)
}
