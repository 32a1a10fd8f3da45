package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation failed")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderFailure     = errors.New("provider failure")
	ErrTransport           = errors.New("transport failure")
	ErrTimeout             = errors.New("timed out")
	ErrJobTerminal         = errors.New("job already terminal")
	ErrInvalidTransition   = errors.New("invalid job transition")
)

// FieldError describes a single rejected input field.
type FieldError struct {
	Field  string
	Reason string
}

// ValidationError reports malformed or missing input. No provider call is made
// once it has been returned.
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError builds a single-field validation error.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Reason: reason}}}
}

func (e *ValidationError) Error() string {
	if e == nil || len(e.Fields) == 0 {
		return "invalid request"
	}
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, fmt.Sprintf("%s %s", f.Field, f.Reason))
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// ProviderUnavailableError means the capability has no configured provider.
type ProviderUnavailableError struct {
	Capability Capability
}

func (e *ProviderUnavailableError) Error() string {
	return fmt.Sprintf("%s provider not configured", e.Capability)
}

func (e *ProviderUnavailableError) Is(target error) bool { return target == ErrProviderUnavailable }

// ProviderError is a failure response from a remote provider. Detail carries the
// provider's response body verbatim when one was returned.
type ProviderError struct {
	Provider   string
	StatusCode int
	Detail     string
}

func (e *ProviderError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s: status %d: %s", e.Provider, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: %s", e.Provider, e.Detail)
}

func (e *ProviderError) Is(target error) bool { return target == ErrProviderFailure }

// TransportError is a network or timeout failure before any provider response.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Provider, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// IsTransient reports whether err is safe to retry on a side-effect-free request.
func IsTransient(err error) bool {
	return errors.Is(err, ErrTransport)
}
