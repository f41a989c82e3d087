package shared

import (
	"errors"
	"fmt"
)

// Error codes shared by every engine. The HTTP layer maps them to status codes.
const (
	CodeUnknownEntity    = "UNKNOWN_ENTITY"
	CodeNotFound         = "NOT_FOUND"
	CodeConflict         = "CONFLICT"
	CodeInvalidReference = "INVALID_REFERENCE"
	CodeValidation       = "VALIDATION_ERROR"
	CodeStoreUnavailable = "STORE_UNAVAILABLE"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	// Field names the offending field, when there is one.
	Field string `json:"field,omitempty"`
	cause error
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.cause
}

// Is reports whether target is a DomainError with the same code, so that
// errors.Is(err, shared.ErrNotFound) matches every not-found error.
func (e *DomainError) Is(target error) bool {
	var t *DomainError
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithField returns a copy of the error bound to a field name
func (e *DomainError) WithField(field string) *DomainError {
	c := *e
	c.Field = field
	return &c
}

// Wrap returns a copy of the error carrying cause
func (e *DomainError) Wrap(cause error) *DomainError {
	c := *e
	c.cause = cause
	return &c
}

// Common domain errors
var (
	ErrUnknownEntity    = NewDomainError(CodeUnknownEntity, "Unknown entity type")
	ErrNotFound         = NewDomainError(CodeNotFound, "Resource not found")
	ErrConflict         = NewDomainError(CodeConflict, "Resource already exists")
	ErrInvalidReference = NewDomainError(CodeInvalidReference, "Referenced resource does not exist")
	ErrValidation       = NewDomainError(CodeValidation, "Invalid input provided")
	ErrStoreUnavailable = NewDomainError(CodeStoreUnavailable, "Store is unavailable")
)

// UnknownEntity reports a registry lookup miss
func UnknownEntity(name string) *DomainError {
	return NewDomainError(CodeUnknownEntity, fmt.Sprintf("unknown entity type %q", name))
}

// NotFound reports a missing record
func NotFound(entity string, id int64) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %d not found", entity, id))
}

// Conflict reports a unique constraint violation on field
func Conflict(entity, field string, value any) *DomainError {
	return NewDomainError(CodeConflict,
		fmt.Sprintf("%s with %s %v already exists", entity, field, value)).WithField(field)
}

// InvalidReference reports a reference that does not resolve
func InvalidReference(field, target string, value any) *DomainError {
	return NewDomainError(CodeInvalidReference,
		fmt.Sprintf("%s %v does not reference an existing %s", field, value, target)).WithField(field)
}

// Validation reports invalid or missing input on field
func Validation(field, message string) *DomainError {
	return NewDomainError(CodeValidation, message).WithField(field)
}

// Validationf formats a validation error that is not tied to one field
func Validationf(format string, args ...any) *DomainError {
	return NewDomainError(CodeValidation, fmt.Sprintf(format, args...))
}

// StoreUnavailable wraps a connection or transaction failure
func StoreUnavailable(cause error) *DomainError {
	return ErrStoreUnavailable.Wrap(cause)
}

// CodeOf extracts the domain code from err, or "" when err is not a DomainError
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}
