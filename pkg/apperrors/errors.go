// Package apperrors defines the error taxonomy shared by the ledger and
// store packages. Handlers map these onto HTTP status codes; nothing below
// the handler layer returns a raw gorm or filesystem error.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnauthenticated         = errors.New("caller is not authenticated")
	ErrForbidden               = errors.New("caller is not allowed to perform this action")
	ErrNotFound                = errors.New("referenced entity not found")
	ErrConflict                = errors.New("entity already exists")
	ErrCollaboratorUnavailable = errors.New("external collaborator failed or timed out")
)

// FieldViolation names a single invalid field in a submitted payload.
type FieldViolation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports every violated field of a payload, not just the
// first. Callers can resubmit after fixing the listed fields.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Reason))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NewValidation builds a ValidationError from field/reason pairs.
func NewValidation(violations ...FieldViolation) *ValidationError {
	return &ValidationError{Violations: violations}
}

// IsValidation reports whether err is a ValidationError and returns it.
func IsValidation(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// Forbidden wraps ErrForbidden with a caller-visible reason.
func Forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

// NotFound wraps ErrNotFound naming the missing entity.
func NotFound(entity string) error {
	return fmt.Errorf("%s: %w", entity, ErrNotFound)
}

// Collaborator wraps ErrCollaboratorUnavailable with the failing call. The
// result is safe to retry with backoff at the caller's discretion.
func Collaborator(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, ErrCollaboratorUnavailable, err)
}
