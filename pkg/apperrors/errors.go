package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
)

// ValidationError reports a rejected input value. Field names the offending
// request field so transport layers can surface it to the caller.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is makes errors.Is(err, ErrValidation) match wrapped validation errors.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// Validationf builds a ValidationError for the given field.
func Validationf(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ConflictError reports a slug uniqueness violation, carrying the slug that
// collided so callers can name it in responses.
type ConflictError struct {
	Slug string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("Project with slug '%s' already exists", e.Slug)
}

// Is makes errors.Is(err, ErrConflict) match wrapped conflict errors.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}
