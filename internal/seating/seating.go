// Package seating validates seat addresses against a hall grid and computes
// seat availability. Functions here are pure; callers supply the hall and the
// booked seats read from storage.
package seating

import (
	"fmt"

	"theater/internal/apperrors"
	"theater/internal/models"
)

type Kind int

const (
	RowOutOfRange Kind = iota + 1
	SeatOutOfRange
)

// GeometryError reports a row or seat outside the hall grid
type GeometryError struct {
	Kind  Kind
	Value int
	Max   int
}

func (e *GeometryError) Field() string {
	if e.Kind == SeatOutOfRange {
		return "seat"
	}
	return "row"
}

func (e *GeometryError) Error() string {
	if e.Kind == SeatOutOfRange {
		return fmt.Sprintf("Seat number must be in range 1 to %d.", e.Max)
	}
	return fmt.Sprintf("Row number must be in range 1 to %d.", e.Max)
}

func (e *GeometryError) Unwrap() error { return apperrors.ErrValidation }

// Validate checks that (row, seat) lies within the hall. The row is checked
// first and only the first failure is reported.
func Validate(row, seat int, hall models.TheaterHall) error {
	if err := ValidateRow(row, hall); err != nil {
		return err
	}
	if seat < 1 || seat > hall.SeatsInRow {
		return &GeometryError{Kind: SeatOutOfRange, Value: seat, Max: hall.SeatsInRow}
	}
	return nil
}

func ValidateRow(row int, hall models.TheaterHall) error {
	if row < 1 || row > hall.Rows {
		return &GeometryError{Kind: RowOutOfRange, Value: row, Max: hall.Rows}
	}
	return nil
}

// BookedSet is the set of seats already taken for one performance
type BookedSet map[models.SeatAddress]struct{}

func NewBookedSet(seats []models.SeatAddress) BookedSet {
	set := make(BookedSet, len(seats))
	for _, s := range seats {
		set[s] = struct{}{}
	}
	return set
}

func (b BookedSet) Contains(row, seat int) bool {
	_, ok := b[models.SeatAddress{Row: row, Seat: seat}]
	return ok
}

// Available lists the free seats of the hall in row-major order. With a
// non-nil row only that row is enumerated; a row outside the hall yields a
// RowOutOfRange error.
func Available(hall models.TheaterHall, booked BookedSet, row *int) ([]models.SeatAddress, error) {
	if hall.Rows > models.MaxHallRows || hall.SeatsInRow > models.MaxSeatsInRow {
		return nil, fmt.Errorf("hall %d grid %dx%d exceeds %dx%d",
			hall.ID, hall.Rows, hall.SeatsInRow, models.MaxHallRows, models.MaxSeatsInRow)
	}

	first, last := 1, hall.Rows
	if row != nil {
		if err := ValidateRow(*row, hall); err != nil {
			return nil, err
		}
		first, last = *row, *row
	}

	free := make([]models.SeatAddress, 0, (last-first+1)*hall.SeatsInRow)
	for r := first; r <= last; r++ {
		for s := 1; s <= hall.SeatsInRow; s++ {
			if booked.Contains(r, s) {
				continue
			}
			free = append(free, models.SeatAddress{Row: r, Seat: s})
		}
	}
	return free, nil
}
