// Package apperrors defines the error taxonomy shared by services and
// handlers: not-found, validation, encryption/decryption and upstream
// failures. Services wrap these with fmt.Errorf("...: %w", err) so handlers
// can classify with errors.Is / errors.As while the originating message is
// preserved.
package apperrors

import (
	"errors"
	"fmt"
)

// ErrNotFound is the sentinel for a missing setting, cart, order, payment
// or customer. Wrap it with context: fmt.Errorf("order %s: %w", id, ErrNotFound).
var ErrNotFound = errors.New("not found")

// ValidationError reports malformed caller input (empty cart, missing
// address field, unsupported payment provider, ...).
type ValidationError struct {
	Field   string // optional: the offending field
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// NewValidationError creates a ValidationError without a field reference.
func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// EncryptionError reports a failure to encrypt a value before persistence.
type EncryptionError struct {
	Reason string
}

func (e *EncryptionError) Error() string {
	return fmt.Sprintf("encryption failed: %s", e.Reason)
}

// DecryptionError reports malformed or undecryptable ciphertext. It is
// distinct from "value is not encrypted": callers decide whether to decrypt
// from the stored flag, never from the shape of the value.
type DecryptionError struct {
	Reason string
}

func (e *DecryptionError) Error() string {
	return fmt.Sprintf("decryption failed: %s", e.Reason)
}

// UpstreamError reports a backend create/update that did not return the
// expected result (e.g. a persisted record with an empty identifier).
// Treated as fatal for the operation, not retried inline.
type UpstreamError struct {
	Op     string
	Reason string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure in %s: %s", e.Op, e.Reason)
}
