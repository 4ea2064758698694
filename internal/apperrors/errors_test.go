package apperrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldErrorUnwrapsToValidation(t *testing.T) {
	inner := errors.New("boom")
	err := fmt.Errorf("failed to create reservation: %w", &FieldError{Field: "tickets[0].row", Message: "bad", Err: inner})

	assert.ErrorIs(t, err, ErrValidation)
	assert.ErrorIs(t, err, inner)

	var fe *FieldError
	assert.True(t, errors.As(err, &fe))
	assert.Equal(t, "tickets[0].row", fe.Field)
}

func TestSeatAlreadyBookedIsConflict(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", &SeatAlreadyBookedError{Row: 2, Seat: 3, PerformanceID: 7})

	assert.ErrorIs(t, err, ErrConflict)
	assert.NotErrorIs(t, err, ErrValidation)
	assert.Equal(t, "wrapped: seat 3 in row 2 is already booked for performance 7", err.Error())
}

func TestNotFound(t *testing.T) {
	err := NotFound("performance", 42)

	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, "performance 42 not found", err.Error())
}
