package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"theater/internal/apperrors"
	"theater/internal/database"
	"theater/internal/models"
)

type ReservationRepository struct {
	db *database.DB
}

func NewReservationRepository(db *database.DB) *ReservationRepository {
	return &ReservationRepository{db: db}
}

// Create writes the reservation and all of its tickets atomically. A ticket
// that collides with a committed one aborts the whole reservation with
// *apperrors.SeatAlreadyBookedError.
func (r *ReservationRepository) Create(ctx context.Context, res *models.Reservation) error {
	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx,
			`INSERT INTO reservations (user_id) VALUES ($1) RETURNING id, created_at`,
			res.UserID,
		).Scan(&res.ID, &res.CreatedAt)
		if err != nil {
			return fmt.Errorf("failed to insert reservation: %w", err)
		}

		for i := range res.Tickets {
			t := &res.Tickets[i]
			t.ReservationID = res.ID
			err := tx.QueryRowContext(ctx, `
				INSERT INTO tickets (row, seat, performance_id, reservation_id)
				VALUES ($1, $2, $3, $4)
				RETURNING id`,
				t.Row, t.Seat, t.PerformanceID, t.ReservationID,
			).Scan(&t.ID)

			switch {
			case err == nil:
				continue
			case isUniqueViolation(err, database.UniqueTicketConstraint):
				return &apperrors.SeatAlreadyBookedError{Row: t.Row, Seat: t.Seat, PerformanceID: t.PerformanceID}
			case isForeignKeyViolation(err):
				fe := apperrors.NewFieldError(fmt.Sprintf("tickets[%d].performance", i),
					"Invalid pk \"%d\" - object does not exist.", t.PerformanceID)
				fe.Err = apperrors.NotFound("performance", t.PerformanceID)
				return fe
			default:
				return fmt.Errorf("failed to insert ticket: %w", err)
			}
		}
		return nil
	})
}

// ListByUser returns the user's reservations newest first, tickets included
func (r *ReservationRepository) ListByUser(ctx context.Context, userID int64) ([]models.Reservation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT r.id, r.user_id, u.email, r.created_at
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id DESC`, userID)
	if err != nil {
		return nil, err
	}

	reservations := []models.Reservation{}
	for rows.Next() {
		var res models.Reservation
		if err := rows.Scan(&res.ID, &res.UserID, &res.UserEmail, &res.CreatedAt); err != nil {
			rows.Close()
			return nil, err
		}
		reservations = append(reservations, res)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.loadTickets(ctx, reservations); err != nil {
		return nil, err
	}
	return reservations, nil
}

// GetByIDForUser returns nil when the reservation does not exist or belongs
// to another user
func (r *ReservationRepository) GetByIDForUser(ctx context.Context, id, userID int64) (*models.Reservation, error) {
	var res models.Reservation
	err := r.db.QueryRowContext(ctx, `
		SELECT r.id, r.user_id, u.email, r.created_at
		FROM reservations r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = $1 AND r.user_id = $2`, id, userID,
	).Scan(&res.ID, &res.UserID, &res.UserEmail, &res.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	list := []models.Reservation{res}
	if err := r.loadTickets(ctx, list); err != nil {
		return nil, err
	}
	return &list[0], nil
}

func (r *ReservationRepository) loadTickets(ctx context.Context, reservations []models.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}

	ids := make([]int64, len(reservations))
	index := make(map[int64]int, len(reservations))
	for i := range reservations {
		ids[i] = reservations[i].ID
		index[reservations[i].ID] = i
		reservations[i].Tickets = []models.Ticket{}
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.reservation_id, t.row, t.seat, t.performance_id,
		       pf.show_time, pf.play_id, p.title, pf.theater_hall_id, h.name, h.rows, h.seats_in_row
		FROM tickets t
		JOIN performances pf ON pf.id = t.performance_id
		JOIN plays p ON p.id = pf.play_id
		JOIN theater_halls h ON h.id = pf.theater_hall_id
		WHERE t.reservation_id = ANY($1)
		ORDER BY t.id`, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("failed to load tickets: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			t    models.Ticket
			pf   models.Performance
			play models.Play
			hall models.TheaterHall
		)
		err := rows.Scan(
			&t.ID,
			&t.ReservationID,
			&t.Row,
			&t.Seat,
			&t.PerformanceID,
			&pf.ShowTime,
			&pf.PlayID,
			&play.Title,
			&pf.TheaterHallID,
			&hall.Name,
			&hall.Rows,
			&hall.SeatsInRow,
		)
		if err != nil {
			return err
		}
		pf.ID = t.PerformanceID
		play.ID = pf.PlayID
		hall.ID = pf.TheaterHallID
		pf.Play = &play
		pf.TheaterHall = &hall
		t.Performance = &pf

		i := index[t.ReservationID]
		reservations[i].Tickets = append(reservations[i].Tickets, t)
	}
	return rows.Err()
}
