package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error leaving the compatibility layer matches exactly one via errors.Is.
var (
	// ErrTransport signals that the upstream could not be reached.
	ErrTransport = errors.New("transport failure")
	// ErrIncompatible signals that the upstream rejected the endpoint or payload shape.
	ErrIncompatible = errors.New("endpoint shape incompatible")
	// ErrValidation signals invalid local input; nothing was sent upstream.
	ErrValidation = errors.New("validation failed")
	// ErrMalformedResponse signals an upstream body that could not be decoded.
	ErrMalformedResponse = errors.New("malformed upstream response")
	// ErrNotFound signals a collection missing from the upstream listing.
	ErrNotFound = errors.New("not found")
	// ErrEmbeddingProvider signals a failed client-side embedding request.
	ErrEmbeddingProvider = errors.New("embedding provider error")
)

// UpstreamError describes one failed outbound call.
type UpstreamError struct {
	Kind   error
	Method string
	URL    string
	Status int // 0 when no response was received
	Err    error
}

func (e *UpstreamError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s: %s", e.Method, e.URL, e.Kind)
	if e.Status != 0 {
		fmt.Fprintf(&b, " (status %d)", e.Status)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

func (e *UpstreamError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Attempt records the outcome of one named fallback candidate.
type Attempt struct {
	Name string
	Err  error
}

// OperationError is the coarse, operation-scoped failure surfaced to callers.
// Error() returns only the generic message; Attempts keeps the per-candidate causes.
type OperationError struct {
	Op       string
	Message  string
	Attempts []Attempt
	Err      error
}

func (e *OperationError) Error() string { return e.Message }

func (e *OperationError) Unwrap() error { return e.Err }

// Detail joins every attempt's cause for logging.
func (e *OperationError) Detail() string {
	if len(e.Attempts) == 0 {
		if e.Err != nil {
			return e.Err.Error()
		}
		return e.Message
	}
	parts := make([]string, len(e.Attempts))
	for i, a := range e.Attempts {
		parts[i] = a.Name + ": " + a.Err.Error()
	}
	return strings.Join(parts, "; ")
}

// NewOperationError wraps a single cause into an OperationError.
func NewOperationError(op, message string, err error) error {
	return &OperationError{Op: op, Message: message, Err: err}
}

// ValidationError reports invalid local input for a named field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrValidation, e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// NewValidationError creates a validation error.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}
