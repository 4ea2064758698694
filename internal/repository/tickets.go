package repository

import (
	"context"

	"theater/internal/database"
	"theater/internal/models"
)

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// BookedSeats reads the committed seats of a performance at call time
func (r *TicketRepository) BookedSeats(ctx context.Context, performanceID int64) ([]models.SeatAddress, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT row, seat FROM tickets WHERE performance_id = $1`, performanceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var seats []models.SeatAddress
	for rows.Next() {
		var s models.SeatAddress
		if err := rows.Scan(&s.Row, &s.Seat); err != nil {
			return nil, err
		}
		seats = append(seats, s)
	}
	return seats, rows.Err()
}
