package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"theater/internal/database"
)

type Repositories struct {
	Users        *UserRepository
	Genres       *GenreRepository
	Actors       *ActorRepository
	Halls        *HallRepository
	Plays        *PlayRepository
	Performances *PerformanceRepository
	Tickets      *TicketRepository
	Reservations *ReservationRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Users:        NewUserRepository(db),
		Genres:       NewGenreRepository(db),
		Actors:       NewActorRepository(db),
		Halls:        NewHallRepository(db),
		Plays:        NewPlayRepository(db),
		Performances: NewPerformanceRepository(db),
		Tickets:      NewTicketRepository(db),
		Reservations: NewReservationRepository(db),
	}
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const (
	uniqueViolation     pq.ErrorCode = "23505"
	foreignKeyViolation pq.ErrorCode = "23503"
)

func pqError(err error, code pq.ErrorCode) (*pq.Error, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == code {
		return pqErr, true
	}
	return nil, false
}

func isUniqueViolation(err error, constraint string) bool {
	pqErr, ok := pqError(err, uniqueViolation)
	if !ok {
		return false
	}
	return constraint == "" || pqErr.Constraint == constraint
}

func isForeignKeyViolation(err error) bool {
	_, ok := pqError(err, foreignKeyViolation)
	return ok
}

func affected(res sql.Result) (bool, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
