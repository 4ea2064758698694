package repository

import (
	"context"
	"database/sql"
	"errors"

	"theater/internal/database"
	"theater/internal/models"
)

type HallRepository struct {
	db *database.DB
}

func NewHallRepository(db *database.DB) *HallRepository {
	return &HallRepository{db: db}
}

func (r *HallRepository) List(ctx context.Context) ([]models.TheaterHall, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, rows, seats_in_row FROM theater_halls ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	halls := []models.TheaterHall{}
	for rows.Next() {
		var h models.TheaterHall
		if err := rows.Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsInRow); err != nil {
			return nil, err
		}
		halls = append(halls, h)
	}
	return halls, rows.Err()
}

func (r *HallRepository) GetByID(ctx context.Context, id int64) (*models.TheaterHall, error) {
	h := &models.TheaterHall{}
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, rows, seats_in_row FROM theater_halls WHERE id = $1`, id,
	).Scan(&h.ID, &h.Name, &h.Rows, &h.SeatsInRow)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return h, err
}

func (r *HallRepository) Create(ctx context.Context, hall *models.TheaterHall) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO theater_halls (name, rows, seats_in_row) VALUES ($1, $2, $3) RETURNING id`,
		hall.Name, hall.Rows, hall.SeatsInRow,
	).Scan(&hall.ID)
}

func (r *HallRepository) Update(ctx context.Context, hall *models.TheaterHall) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE theater_halls SET name = $1, rows = $2, seats_in_row = $3 WHERE id = $4`,
		hall.Name, hall.Rows, hall.SeatsInRow, hall.ID)
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *HallRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM theater_halls WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}

// HasTickets reports whether any performance in the hall has booked tickets
func (r *HallRepository) HasTickets(ctx context.Context, hallID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM tickets t
			JOIN performances pf ON pf.id = t.performance_id
			WHERE pf.theater_hall_id = $1
		)`, hallID).Scan(&exists)
	return exists, err
}
