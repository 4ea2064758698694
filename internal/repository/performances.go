package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"theater/internal/apperrors"
	"theater/internal/database"
	"theater/internal/models"
)

type PerformanceRepository struct {
	db *database.DB
}

func NewPerformanceRepository(db *database.DB) *PerformanceRepository {
	return &PerformanceRepository{db: db}
}

const performanceSelect = `
	SELECT pf.id, pf.play_id, pf.theater_hall_id, pf.show_time,
	       p.title, p.description, h.name, h.rows, h.seats_in_row
	FROM performances pf
	JOIN plays p ON p.id = pf.play_id
	JOIN theater_halls h ON h.id = pf.theater_hall_id`

func scanPerformance(row interface{ Scan(...any) error }) (models.Performance, error) {
	var (
		pf   models.Performance
		play models.Play
		hall models.TheaterHall
	)
	err := row.Scan(
		&pf.ID,
		&pf.PlayID,
		&pf.TheaterHallID,
		&pf.ShowTime,
		&play.Title,
		&play.Description,
		&hall.Name,
		&hall.Rows,
		&hall.SeatsInRow,
	)
	if err != nil {
		return pf, err
	}
	play.ID = pf.PlayID
	hall.ID = pf.TheaterHallID
	pf.Play = &play
	pf.TheaterHall = &hall
	return pf, nil
}

// List returns performances with play and hall joined, ordered by show time
func (r *PerformanceRepository) List(ctx context.Context, filter models.PerformanceFilter) ([]models.Performance, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.Date != nil {
		day := time.Date(filter.Date.Year(), filter.Date.Month(), filter.Date.Day(), 0, 0, 0, 0, filter.Date.Location())
		args = append(args, day, day.AddDate(0, 0, 1))
		conditions = append(conditions, fmt.Sprintf(`pf.show_time >= $%d AND pf.show_time < $%d`, len(args)-1, len(args)))
	}
	if filter.PlayID != nil {
		args = append(args, *filter.PlayID)
		conditions = append(conditions, fmt.Sprintf(`pf.play_id = $%d`, len(args)))
	}

	query := performanceSelect
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, ` AND `)
	}
	query += ` ORDER BY pf.show_time, pf.id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	performances := []models.Performance{}
	for rows.Next() {
		pf, err := scanPerformance(rows)
		if err != nil {
			return nil, err
		}
		performances = append(performances, pf)
	}
	return performances, rows.Err()
}

// GetByID returns the performance with its play (without relations) and hall
func (r *PerformanceRepository) GetByID(ctx context.Context, id int64) (*models.Performance, error) {
	pf, err := scanPerformance(r.db.QueryRowContext(ctx, performanceSelect+` WHERE pf.id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &pf, nil
}

func (r *PerformanceRepository) Create(ctx context.Context, pf *models.Performance) error {
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO performances (play_id, theater_hall_id, show_time)
		VALUES ($1, $2, $3)
		RETURNING id`,
		pf.PlayID, pf.TheaterHallID, pf.ShowTime,
	).Scan(&pf.ID)
	if isForeignKeyViolation(err) {
		return apperrors.NewFieldError("performance", "play or theater hall does not exist.")
	}
	return err
}

func (r *PerformanceRepository) Update(ctx context.Context, pf *models.Performance) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE performances SET play_id = $1, theater_hall_id = $2, show_time = $3
		WHERE id = $4`,
		pf.PlayID, pf.TheaterHallID, pf.ShowTime, pf.ID)
	if isForeignKeyViolation(err) {
		return false, apperrors.NewFieldError("performance", "play or theater hall does not exist.")
	}
	if err != nil {
		return false, err
	}
	return affected(res)
}

func (r *PerformanceRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM performances WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	return affected(res)
}
