package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors shared across services. Authentication failures carry
// deliberately generic messages; the transport layer must never be more
// specific than these.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrForbidden          = errors.New("access forbidden")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrAccountInactive    = errors.New("account inactive")
	ErrMissingToken       = errors.New("missing token")
	ErrInvalidToken       = errors.New("invalid or expired token")
	ErrTooManyAttempts    = errors.New("too many failed login attempts")
	ErrEmailTaken         = errors.New("email already registered")
)

// FieldViolation is a single broken rule on a named field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError aggregates every violated rule found while decoding a
// payload, not just the first one. Field messages are safe to expose.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		msgs[i] = v.Field + ": " + v.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) add(field, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
}

func (e *ValidationError) merge(other *ValidationError) {
	if other != nil {
		e.Violations = append(e.Violations, other.Violations...)
	}
}

func (e *ValidationError) hasViolations() bool { return len(e.Violations) > 0 }

// MappingError signals that a persisted row is internally inconsistent and
// could not be decoded into a domain view. Distinct from "not found": the row
// exists but must never reach a caller.
type MappingError struct {
	Cause error
}

func (e *MappingError) Error() string { return fmt.Sprintf("row mapping failed: %v", e.Cause) }

func (e *MappingError) Unwrap() error { return e.Cause }

// DatabaseError wraps a storage or internal-consistency failure. The cause is
// for logs only and is never rendered into a client response.
type DatabaseError struct {
	Op    string
	Cause error
}

func (e *DatabaseError) Error() string { return fmt.Sprintf("database error in %s: %v", e.Op, e.Cause) }

func (e *DatabaseError) Unwrap() error { return e.Cause }
