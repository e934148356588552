package models

import (
	"errors"
	"fmt"
)

var (
	ErrDataNotFound        = errors.New("data not found")
	ErrConflictData        = errors.New("data conflicts with existing data")
	ErrInsufficientStock   = errors.New("insufficient listing stock")
	ErrOrderNotPending     = errors.New("order is no longer pending")
	ErrOrderNotOwned       = errors.New("order does not belong to user")
	ErrItemCancelled       = errors.New("order item is already cancelled")
	ErrPaymentInFlight     = errors.New("order already has a live payment attempt")
	ErrInternalError       = errors.New("internal error")
)

// ValidationError reports bad caller input. It is surfaced synchronously,
// before any external call or storage write.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NewValidationError creates a validation error for the named field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// GatewayError reports a failed call to the payment gateway. Transient
// errors (transport failures, 5xx) may be retried by the caller; the rest
// are terminal rejections.
type GatewayError struct {
	Op        string
	Transient bool
	Err       error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// ConflictError marks a transient write conflict reported by the storage
// layer. Callers retry the whole atomic scope on it instead of inspecting
// SQL state codes.
type ConflictError struct {
	Err error
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("transient write conflict: %v", e.Err)
}

func (e *ConflictError) Unwrap() error { return e.Err }

// IsConflict reports whether err is a transient storage write conflict.
func IsConflict(err error) bool {
	var ce *ConflictError
	return errors.As(err, &ce)
}

// ConsistencyError marks a structural mismatch between linked records
// (amounts that do not add up, a ledger pointing at a missing order).
// It is never retried.
type ConsistencyError struct {
	Msg string
}

func (e *ConsistencyError) Error() string {
	return "consistency: " + e.Msg
}

// NewConsistencyError formats a consistency error.
func NewConsistencyError(format string, args ...any) *ConsistencyError {
	return &ConsistencyError{Msg: fmt.Sprintf(format, args...)}
}
