package engine

import (
	"errors"
	"fmt"
)

// ErrInvalidStateTransition is returned when a status write is not allowed
// by the session state machine, such as moving out of a terminal state.
var ErrInvalidStateTransition = errors.New("invalid state transition")

// ErrSessionNotFound is returned when no session exists for an id.
var ErrSessionNotFound = errors.New("session not found")

// ValidationError reports a rejected start request. Validation failures
// happen before any session is created, so nothing is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

func validationErr(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}
