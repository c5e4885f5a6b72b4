package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrConflict          = errors.New("booking conflict")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
)

// ValidationError carries per-field messages for malformed input.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return "validation error: " + e.Message
	}
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+e.Fields[k])
	}
	return fmt.Sprintf("validation error: %s (%s)", e.Message, strings.Join(parts, ", "))
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

func Invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func InvalidFields(message string, fields map[string]string) error {
	return &ValidationError{Message: message, Fields: fields}
}

// ConflictError reports every active booking overlapping a requested window.
type ConflictError struct {
	AmenityID int64
	Conflicts []Booking
}

func (e *ConflictError) Error() string {
	ids := make([]string, 0, len(e.Conflicts))
	for _, b := range e.Conflicts {
		ids = append(ids, fmt.Sprint(b.ID))
	}
	return fmt.Sprintf("booking conflict on amenity %d with booking(s) %s", e.AmenityID, strings.Join(ids, ","))
}

func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// TransitionError describes a refused state change.
type TransitionError struct {
	Entity string
	From   string
	Event  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("invalid status transition: %s cannot %s from %q", e.Entity, e.Event, e.From)
}

func (e *TransitionError) Is(target error) bool { return target == ErrInvalidTransition }

func NotFound(entity string, id int64) error {
	return fmt.Errorf("%s %d: %w", entity, id, ErrNotFound)
}

func Forbidden(reason string) error {
	return fmt.Errorf("%w: %s", ErrForbidden, reason)
}

// ErrStaleState is returned when a conditional status update matched no row
// because another request moved the record first.
var ErrStaleState = fmt.Errorf("%w: record changed concurrently", ErrInvalidTransition)
