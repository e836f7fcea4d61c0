// Package apperrors defines the error taxonomy shared by services and
// handlers. Handlers map these onto HTTP status codes; the webhook handler
// additionally uses SecurityError vs TransientError to decide whether the
// payment provider should redeliver an event.
package apperrors

import (
	"errors"
	"fmt"
)

// ValidationError reports a malformed or out-of-range request.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func Validation(format string, args ...interface{}) error {
	return &ValidationError{Reason: fmt.Sprintf(format, args...)}
}

// AuthError reports a missing or unknown caller identity.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }

func Auth(reason string) error {
	return &AuthError{Reason: reason}
}

// ConflictError reports a request that is well-formed but cannot be applied
// to current state, e.g. a debit that would drive a balance below zero.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string { return e.Reason }

func Conflict(format string, args ...interface{}) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

type NotFoundError struct {
	Reason string
}

func (e *NotFoundError) Error() string { return e.Reason }

func NotFound(reason string) error {
	return &NotFoundError{Reason: reason}
}

// SecurityError is terminal: the webhook endpoint acknowledges it so the
// provider does not redeliver a payload that can never verify.
type SecurityError struct {
	Reason string
	Err    error
}

func (e *SecurityError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *SecurityError) Unwrap() error { return e.Err }

func Security(reason string, err error) error {
	return &SecurityError{Reason: reason, Err: err}
}

// TransientError marks a failure that is expected to resolve on retry,
// e.g. provider I/O errors or a webhook arriving before its payment row.
type TransientError struct {
	Reason string
	Err    error
}

func (e *TransientError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *TransientError) Unwrap() error { return e.Err }

func Transient(reason string, err error) error {
	return &TransientError{Reason: reason, Err: err}
}

func IsSecurity(err error) bool {
	var se *SecurityError
	return errors.As(err, &se)
}

func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}
