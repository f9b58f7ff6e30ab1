package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation is the root of every local pre-flight failure
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when an expected object is absent or has a foreign type
	ErrNotFound = errors.New("not found")

	// ErrSignatureDeclined is returned when the signer refuses to approve a transaction
	ErrSignatureDeclined = errors.New("signature declined")

	// ErrTransactionFailed is returned when a transaction did not reach successful finality
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrAlreadySubmitting is returned when an identical transaction is already in flight
	ErrAlreadySubmitting = errors.New("identical transaction already submitting")

	// ErrRegistryUnavailable is returned when a registry object cannot be decoded
	ErrRegistryUnavailable = errors.New("registry unavailable")
)

// ValidationError describes a rejected input field
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a validation error for a field
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error {
	return ErrValidation
}
