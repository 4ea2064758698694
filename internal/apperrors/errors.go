package apperrors

import (
	"errors"
	"fmt"
)

var (
	ErrUnauthorized = errors.New("user is not authorized")
	ErrForbidden    = errors.New("operation is forbidden for user")
	ErrNotFound     = errors.New("not found")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation failed")
)

// FieldError reports invalid client input for a single field.
type FieldError struct {
	Field   string
	Message string
	Err     error
}

func NewFieldError(field, format string, args ...any) *FieldError {
	return &FieldError{Field: field, Message: fmt.Sprintf(format, args...)}
}

func (e *FieldError) Error() string {
	return e.Field + ": " + e.Message
}

func (e *FieldError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrValidation, e.Err}
	}
	return []error{ErrValidation}
}

// NotFoundError is returned when a resource with the given id does not exist.
type NotFoundError struct {
	Resource string
	ID       int64
}

func NotFound(resource string, id int64) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Resource, e.ID)
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// ConflictError reports a request that contradicts the current state of a resource.
type ConflictError struct {
	Message string
}

func Conflict(format string, args ...any) error {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

func (e *ConflictError) Error() string { return e.Message }

func (e *ConflictError) Unwrap() error { return ErrConflict }

// SeatAlreadyBookedError is returned when a ticket for the same
// (row, seat, performance) has already been committed.
type SeatAlreadyBookedError struct {
	Row           int
	Seat          int
	PerformanceID int64
}

func (e *SeatAlreadyBookedError) Error() string {
	return fmt.Sprintf("seat %d in row %d is already booked for performance %d", e.Seat, e.Row, e.PerformanceID)
}

func (e *SeatAlreadyBookedError) Unwrap() error { return ErrConflict }
