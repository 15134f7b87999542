package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by the booking core matches exactly one
// kind with errors.Is.
var (
	ErrValidation         = errors.New("validation error")
	ErrConflict           = errors.New("conflict")
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvariantViolation = errors.New("invariant violation")
	ErrDependency         = errors.New("dependency error")
)

// Payment collaborator failures. The first two block completion.
var (
	ErrOwnerPayoutAccountMissing = fmt.Errorf("%w: owner payout account missing", ErrDependency)
	ErrTransferFailed            = fmt.Errorf("%w: transfer failed", ErrDependency)
	ErrRefundFailed              = fmt.Errorf("%w: refund failed", ErrDependency)
	ErrPayoutFailed              = fmt.Errorf("%w: payout failed", ErrDependency)
)

// ErrInvalidInput is returned by the pricing calculator.
var ErrInvalidInput = fmt.Errorf("%w: invalid input", ErrValidation)

// ValidationError carries every problem found in a request. Nothing is
// mutated when one is returned.
type ValidationError struct {
	Problems []string
}

func NewValidationError(problems ...string) *ValidationError {
	return &ValidationError{Problems: problems}
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// BookingError attaches the booking id and the failing step to a kind and an
// underlying cause so callers can retry or surface it.
type BookingError struct {
	BookingID string
	Step      string
	Kind      error
	Cause     error
}

func (e *BookingError) Error() string {
	msg := fmt.Sprintf("booking %s: %s: %v", e.BookingID, e.Step, e.Kind)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

func (e *BookingError) Unwrap() []error {
	if e.Cause == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Cause}
}

// IsFatal reports whether err must block booking completion.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRefundFailed) || errors.Is(err, ErrPayoutFailed) {
		return false
	}
	return true
}

// IsRetryable reports whether the caller may re-run the whole operation.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrDependency)
}
