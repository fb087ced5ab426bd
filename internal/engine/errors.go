package engine

import (
	"errors"
	"fmt"
)

// SimError represents a failure detected during a simulation run.
//
// There is no partial-result contract: any SimError discards all snapshots
// computed so far, and the caller is expected to translate the error into a
// user-facing failure.
type SimError struct {
	// Code identifies the error category.
	Code SimErrorCode

	// Message is a human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// SimErrorCode categorizes simulation errors.
type SimErrorCode string

const (
	// ErrCodeInvalidRequest indicates the request failed validation.
	ErrCodeInvalidRequest SimErrorCode = "INVALID_REQUEST"

	// ErrCodeInvalidTransition indicates a stage attempted a status change
	// the item lifecycle forbids. This is an engine bug, not a caller error.
	ErrCodeInvalidTransition SimErrorCode = "INVALID_TRANSITION"

	// ErrCodeCancelled indicates the run was aborted by context cancellation.
	ErrCodeCancelled SimErrorCode = "CANCELLED"
)

// Error implements the error interface.
func (e *SimError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As chains.
func (e *SimError) Unwrap() error { return e.Err }

// IsInvalidRequest reports whether err is a request validation failure.
// Uses errors.As to handle wrapped errors.
func IsInvalidRequest(err error) bool {
	var se *SimError
	if errors.As(err, &se) {
		return se.Code == ErrCodeInvalidRequest
	}
	return false
}

// IsCancelled reports whether err is a cancellation.
func IsCancelled(err error) bool {
	var se *SimError
	if errors.As(err, &se) {
		return se.Code == ErrCodeCancelled
	}
	return false
}

func invalidRequest(err error) *SimError {
	return &SimError{Code: ErrCodeInvalidRequest, Message: "request validation failed", Err: err}
}

func invalidTransition(err error) *SimError {
	return &SimError{Code: ErrCodeInvalidTransition, Message: "item lifecycle violation", Err: err}
}

func cancelled(err error) *SimError {
	return &SimError{Code: ErrCodeCancelled, Message: "simulation aborted", Err: err}
}
