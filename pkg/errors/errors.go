package errors

import (
	"fmt"
	"strings"
)

// ErrorCode represents a unique error code
type ErrorCode int

// Common error codes
const (
	ErrNotFound ErrorCode = iota + 1000
	ErrBadRequest
	ErrUnauthorized
	ErrForbidden
	ErrInternal
	ErrValidation
	ErrInsufficientInventory
	ErrExternalProvider
	ErrDispatch
	ErrCompensation
)

// AppError represents an application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error constructors
func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    ErrNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    ErrBadRequest,
		Message: message,
		Err:     err,
	}
}

func Internal(err error) *AppError {
	return &AppError{
		Code:    ErrInternal,
		Message: "internal server error",
		Err:     err,
	}
}

func Unauthorized(err error) *AppError {
	return &AppError{
		Code:    ErrUnauthorized,
		Message: "unauthorized",
		Err:     err,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:    ErrForbidden,
		Message: message,
	}
}

// ValidationError aggregates every violation found in one input, so the
// caller sees all of them at once instead of the first.
type ValidationError struct {
	Violations []string `json:"violations"`
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Violations, "; ")
}

func (e *ValidationError) Add(format string, args ...interface{}) {
	e.Violations = append(e.Violations, fmt.Sprintf(format, args...))
}

func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

// InsufficientInventoryError signals that the sellable balance for a
// material cannot cover the requested quantity. Distinct from NotFound so
// callers can route the warehouse escalation.
type InsufficientInventoryError struct {
	MaterialType string
	Requested    float64
	Available    float64
}

func (e *InsufficientInventoryError) Error() string {
	return fmt.Sprintf("insufficient inventory for %s: requested %.2f, available %.2f",
		e.MaterialType, e.Requested, e.Available)
}

// UnknownMaterialError signals a reservation against a material the
// ledger has never seen.
type UnknownMaterialError struct {
	MaterialType string
}

func (e *UnknownMaterialError) Error() string {
	return fmt.Sprintf("unknown material type: %s", e.MaterialType)
}
