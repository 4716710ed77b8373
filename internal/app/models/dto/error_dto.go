package dto

import (
	"fmt"
	"sort"
	"time"
)

// ErrorCode represents standardized error codes
type ErrorCode string

// Error codes, one per error kind. A more specific precondition code may
// replace them in ErrorDetail.Code.
const (
	ErrorCodeValidationFailed       ErrorCode = "VALIDATION_FAILED"
	ErrorCodeUnauthenticated        ErrorCode = "UNAUTHENTICATED"
	ErrorCodeInvalidCredentials     ErrorCode = "INVALID_CREDENTIALS"
	ErrorCodeInvalidToken           ErrorCode = "INVALID_TOKEN"
	ErrorCodeExpiredToken           ErrorCode = "EXPIRED_TOKEN"
	ErrorCodeForbidden              ErrorCode = "FORBIDDEN"
	ErrorCodeResourceNotFound       ErrorCode = "NOT_FOUND"
	ErrorCodeConflict               ErrorCode = "CONFLICT"
	ErrorCodeInvalidStateTransition ErrorCode = "INVALID_STATE_TRANSITION"
	ErrorCodeUnavailable            ErrorCode = "SERVICE_UNAVAILABLE"
	ErrorCodeInternalServer         ErrorCode = "INTERNAL_ERROR"
)

// ErrorSeverity represents the severity level of an error
type ErrorSeverity string

// Severity levels
const (
	ErrorSeverityWarning ErrorSeverity = "WARNING"
	ErrorSeverityError   ErrorSeverity = "ERROR"
)

// FieldError is a single field-keyed validation message
type FieldError struct {
	Field   string `json:"field" example:"title"`
	Message string `json:"message" example:"Title must be at least 3 characters"`
}

// ErrorDetail represents detailed error information
type ErrorDetail struct {
	Code      ErrorCode     `json:"code" example:"VALIDATION_FAILED"`
	Kind      string        `json:"kind" example:"VALIDATION_FAILED"`
	Message   string        `json:"message" example:"Validation failed"`
	Field     string        `json:"field,omitempty" example:"title"`
	Severity  ErrorSeverity `json:"severity" example:"ERROR"`
	Fields    []FieldError  `json:"fields,omitempty"`
	Details   interface{}   `json:"details,omitempty"`
	DebugInfo string        `json:"debugInfo,omitempty"`
}

// NewErrorDetail creates a new error detail
func NewErrorDetail(code ErrorCode, message string) *ErrorDetail {
	return &ErrorDetail{
		Code:     code,
		Message:  message,
		Severity: ErrorSeverityError,
	}
}

// WithField adds a field name to the error detail
func (e *ErrorDetail) WithField(field string) *ErrorDetail {
	e.Field = field
	return e
}

// WithSeverity sets the severity level of the error
func (e *ErrorDetail) WithSeverity(severity ErrorSeverity) *ErrorDetail {
	e.Severity = severity
	return e
}

// WithDetails adds additional details to the error
func (e *ErrorDetail) WithDetails(details interface{}) *ErrorDetail {
	e.Details = details
	return e
}

// WithFieldErrors attaches a field-keyed message map, sorted by field name
func (e *ErrorDetail) WithFieldErrors(fields map[string]string) *ErrorDetail {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)

	e.Fields = make([]FieldError, 0, len(names))
	for _, name := range names {
		e.Fields = append(e.Fields, FieldError{Field: name, Message: fields[name]})
	}
	return e
}

// WithDebugInfo adds debug information (for development/testing only)
func (e *ErrorDetail) WithDebugInfo(format string, args ...interface{}) *ErrorDetail {
	e.DebugInfo = fmt.Sprintf(format, args...)
	return e
}

// ErrorResponse represents the standard error response structure
type ErrorResponse struct {
	Success   bool         `json:"success" example:"false"`
	Error     *ErrorDetail `json:"error"`
	Timestamp time.Time    `json:"timestamp" example:"2025-04-23T12:01:05.123Z"`
}

// NewErrorResponse creates a standard error response
func NewErrorResponse(errorDetail *ErrorDetail) *ErrorResponse {
	return &ErrorResponse{
		Success:   false,
		Error:     errorDetail,
		Timestamp: time.Now(),
	}
}
