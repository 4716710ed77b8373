package apperrors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Common errors
var (
	// Resource errors
	ErrResourceNotFound      = errors.New("resource not found")
	ErrResourceAlreadyExists = errors.New("resource already exists")
	ErrConflict              = errors.New("conflict")

	// Workflow errors
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// Authentication errors
	ErrUnauthenticated    = errors.New("authentication required")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrTokenExpired       = errors.New("token expired")
	ErrTokenInvalid       = errors.New("invalid token")
	ErrInvalidFormat      = errors.New("invalid token format")

	// Authorization errors
	ErrPermissionDenied = errors.New("permission denied")

	// Validation errors
	ErrValidationFailed = errors.New("validation failed")
	ErrBadRequest       = errors.New("bad request")

	// Storage errors
	ErrUnavailable = errors.New("service unavailable")
)

// Opportunity errors
var (
	ErrOpportunityNotFound = errors.New("opportunity not found")
)

// Application errors
var (
	ErrApplicationNotFound  = errors.New("application not found")
	ErrDuplicateApplication = errors.New("volunteer has already applied to this opportunity")
)

// Feedback errors
var (
	ErrDuplicateFeedback = errors.New("feedback has already been submitted")
)

// User errors
var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailAlreadyExists   = errors.New("email already exists")
	ErrOrganizationNotFound = errors.New("organization not found")
)

// Kind is the taxonomy tag a caller uses to pick a status and message.
type Kind string

const (
	KindValidationFailed       Kind = "VALIDATION_FAILED"
	KindNotFound               Kind = "NOT_FOUND"
	KindForbidden              Kind = "FORBIDDEN"
	KindUnauthenticated        Kind = "UNAUTHENTICATED"
	KindConflict               Kind = "CONFLICT"
	KindInvalidStateTransition Kind = "INVALID_STATE_TRANSITION"
	KindUnavailable            Kind = "UNAVAILABLE"
	KindInternal               Kind = "INTERNAL"
)

// KindOf classifies err into the error taxonomy.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrValidationFailed), errors.Is(err, ErrBadRequest):
		return KindValidationFailed
	case Is(err, ErrResourceNotFound, ErrOpportunityNotFound, ErrApplicationNotFound, ErrUserNotFound, ErrOrganizationNotFound):
		return KindNotFound
	case errors.Is(err, ErrPermissionDenied):
		return KindForbidden
	case Is(err, ErrUnauthenticated, ErrInvalidCredentials, ErrTokenExpired, ErrTokenInvalid, ErrInvalidFormat):
		return KindUnauthenticated
	case Is(err, ErrConflict, ErrResourceAlreadyExists, ErrDuplicateApplication, ErrDuplicateFeedback, ErrEmailAlreadyExists):
		return KindConflict
	case errors.Is(err, ErrInvalidStateTransition):
		return KindInvalidStateTransition
	case errors.Is(err, ErrUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}

// NewResourceNotFoundError creates a new custom error for resource not found with a message
func NewResourceNotFoundError(message string) error {
	return &CustomError{
		Err:     ErrResourceNotFound,
		Message: message,
	}
}

// NewConflictError creates a new custom error for conflict situations with a message
func NewConflictError(message string) error {
	return &CustomError{
		Err:     ErrConflict,
		Message: message,
	}
}

// NewForbiddenError creates a new custom error for permission denied with a message
func NewForbiddenError(message string) error {
	return &CustomError{
		Err:     ErrPermissionDenied,
		Message: message,
	}
}

// NewBadRequestError creates a new custom error for bad request with a message
func NewBadRequestError(message string) error {
	return &CustomError{
		Err:     ErrBadRequest,
		Message: message,
	}
}

// NewInvalidStateError reports a transition attempted from a state that does not allow it.
// code names the violated precondition.
func NewInvalidStateError(code, message string) error {
	return &CustomError{
		Err:     ErrInvalidStateTransition,
		Message: message,
		Code:    code,
	}
}

// NewUnavailableError hides a storage failure behind the Unavailable kind.
func NewUnavailableError(op string, cause error) error {
	return &CustomError{
		Err:     ErrUnavailable,
		Message: "the service is temporarily unavailable",
		Details: map[string]interface{}{"operation": op, "cause": cause.Error()},
	}
}

// Is returns whether target matches any of the errors in errList
func Is(err, target error, errList ...error) bool {
	if errors.Is(err, target) {
		return true
	}

	for _, e := range errList {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}

// CustomError represents application-specific errors with additional context
type CustomError struct {
	Err       error
	Message   string
	StatusMsg string
	Code      string
	Details   map[string]interface{}
}

// Error implements error interface
func (e *CustomError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return "unknown error"
}

// Unwrap implements errors.Unwrap interface
func (e *CustomError) Unwrap() error {
	return e.Err
}

// NewCustomError creates a CustomError with underlying error
func NewCustomError(err error, message string) *CustomError {
	return &CustomError{
		Err:     err,
		Message: message,
	}
}

// WithDetails adds context details to the error
func (e *CustomError) WithDetails(details map[string]interface{}) *CustomError {
	e.Details = details
	return e
}

// WithCode adds an error code
func (e *CustomError) WithCode(code string) *CustomError {
	e.Code = code
	return e
}

// WithStatusMsg adds a user-friendly status message
func (e *CustomError) WithStatusMsg(msg string) *CustomError {
	e.StatusMsg = msg
	return e
}

// ValidationError carries field-keyed messages that are safe to show to end users.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError wraps a field error map.
func NewValidationError(fields map[string]string) *ValidationError {
	return &ValidationError{Fields: fields}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// CodeOf returns the precondition code attached to err, if any.
func CodeOf(err error) string {
	var ce *CustomError
	if errors.As(err, &ce) {
		return ce.Code
	}
	return ""
}
