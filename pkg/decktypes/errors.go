package decktypes

import (
	"errors"
	"fmt"
)

// ErrAwaitingResponse is returned when a submit is attempted while a completion is in flight.
var ErrAwaitingResponse = errors.New("a response is already being generated")

// ErrSessionClosed is returned by operations on a session that has been torn down.
var ErrSessionClosed = errors.New("session closed")

// ValidationError reports missing or empty input. It is raised before any network call.
type ValidationError struct {
	Field  string // empty for chat/upload input
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "invalid input: " + e.Reason
	}
	return fmt.Sprintf("invalid field %q: %s", e.Field, e.Reason)
}

// CompletionError wraps any failure of the outbound completion call.
type CompletionError struct {
	Provider string
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("%s completion failed: %v", e.Provider, e.Err)
}

func (e *CompletionError) Unwrap() error {
	return e.Err
}

// UnknownTemplateError is returned when a template id does not resolve in the registry.
type UnknownTemplateError struct {
	ID string
}

func (e *UnknownTemplateError) Error() string {
	return fmt.Sprintf("template %q not found", e.ID)
}

// IsValidation reports whether err is or wraps a ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// IsUnknownTemplate reports whether err is or wraps an UnknownTemplateError.
func IsUnknownTemplate(err error) bool {
	var u *UnknownTemplateError
	return errors.As(err, &u)
}
