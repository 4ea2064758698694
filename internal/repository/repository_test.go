package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"theater/internal/apperrors"
	"theater/internal/database"
	"theater/internal/models"
)

func newMockDB(t *testing.T) (*database.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })
	return &database.DB{DB: sqlDB}, mock
}

func newReservation() *models.Reservation {
	return &models.Reservation{
		UserID: 9,
		Tickets: []models.Ticket{
			{Row: 1, Seat: 1, PerformanceID: 4},
			{Row: 1, Seat: 2, PerformanceID: 4},
		},
	}
}

func TestReservationCreateCommitsAllTickets(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO reservations").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(15), created))
	mock.ExpectQuery("INSERT INTO tickets").WithArgs(1, 1, int64(4), int64(15)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectQuery("INSERT INTO tickets").WithArgs(1, 2, int64(4), int64(15)).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(101)))
	mock.ExpectCommit()

	res := newReservation()
	require.NoError(t, repo.Create(context.Background(), res))

	assert.Equal(t, int64(15), res.ID)
	assert.Equal(t, created, res.CreatedAt)
	assert.Equal(t, int64(101), res.Tickets[1].ID)
	assert.Equal(t, int64(15), res.Tickets[1].ReservationID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationCreateRollsBackOnSeatConflict(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO reservations").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(15), time.Now()))
	mock.ExpectQuery("INSERT INTO tickets").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(100)))
	mock.ExpectQuery("INSERT INTO tickets").
		WillReturnError(&pq.Error{Code: "23505", Constraint: database.UniqueTicketConstraint})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newReservation())

	var conflict *apperrors.SeatAlreadyBookedError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, apperrors.SeatAlreadyBookedError{Row: 1, Seat: 2, PerformanceID: 4}, *conflict)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationCreateMissingPerformance(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO reservations").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(15), time.Now()))
	mock.ExpectQuery("INSERT INTO tickets").
		WillReturnError(&pq.Error{Code: "23503"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), newReservation())

	var fe *apperrors.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "tickets[0].performance", fe.Field)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReservationGetByIDForUserNotOwned(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)

	mock.ExpectQuery("FROM reservations r").WithArgs(int64(3), int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "email", "created_at"}))

	res, err := repo.GetByIDForUser(context.Background(), 3, 9)

	require.NoError(t, err)
	assert.Nil(t, res)
}

func TestReservationListLoadsTickets(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewReservationRepository(db)
	show := time.Date(2024, 3, 9, 19, 0, 0, 0, time.UTC)

	mock.ExpectQuery("FROM reservations r").WithArgs(int64(9)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "email", "created_at"}).
			AddRow(int64(2), int64(9), "a@b.c", show).
			AddRow(int64(1), int64(9), "a@b.c", show.Add(-time.Hour)))
	mock.ExpectQuery("FROM tickets t").
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "reservation_id", "row", "seat", "performance_id",
			"show_time", "play_id", "title", "theater_hall_id", "name", "rows", "seats_in_row",
		}).
			AddRow(int64(10), int64(1), 1, 1, int64(4), show, int64(3), "Hamlet", int64(5), "Blue", 5, 5).
			AddRow(int64(11), int64(2), 2, 2, int64(4), show, int64(3), "Hamlet", int64(5), "Blue", 5, 5))

	list, err := repo.ListByUser(context.Background(), 9)

	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Len(t, list[0].Tickets, 1)
	assert.Equal(t, 2, list[0].Tickets[0].Row)
	assert.Equal(t, "Hamlet", list[1].Tickets[0].Performance.Play.Title)
	assert.Equal(t, "Blue", list[1].Tickets[0].Performance.TheaterHall.Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayListFiltersEveryGenre(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPlayRepository(db)

	mock.ExpectQuery(`LOWER\(g.name\) = LOWER\(\$1\).*LOWER\(g.name\) = LOWER\(\$2\)`).
		WithArgs("drama", "Comedy").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description"}).AddRow(int64(1), "Tartuffe", ""))
	mock.ExpectQuery("FROM play_genres pg").
		WillReturnRows(sqlmock.NewRows([]string{"play_id", "id", "name"}).
			AddRow(int64(1), int64(1), "Comedy").
			AddRow(int64(1), int64(2), "Drama"))
	mock.ExpectQuery("FROM play_actors pa").
		WillReturnRows(sqlmock.NewRows([]string{"play_id", "id", "first_name", "last_name"}))

	plays, err := repo.List(context.Background(), []string{"drama", "Comedy"})

	require.NoError(t, err)
	require.Len(t, plays, 1)
	assert.Equal(t, []string{"Comedy", "Drama"}, plays[0].GenreNames())
	assert.Empty(t, plays[0].Actors)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlayListWithoutMatchesSkipsRelations(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPlayRepository(db)

	mock.ExpectQuery("FROM plays p").WithArgs("opera").
		WillReturnRows(sqlmock.NewRows([]string{"id", "title", "description"}))

	plays, err := repo.List(context.Background(), []string{"opera"})

	require.NoError(t, err)
	assert.Empty(t, plays)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestWeekMostPopular(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPlayRepository(db)
	since := time.Date(2024, 3, 2, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`ORDER BY COUNT\(t.id\) DESC, p.id ASC`).WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}).AddRow(int64(2), "Hamlet"))
	mock.ExpectQuery("FROM plays p").WithArgs(since).
		WillReturnRows(sqlmock.NewRows([]string{"id", "title"}))

	ref, err := repo.WeekMostPopular(context.Background(), since)
	require.NoError(t, err)
	assert.Equal(t, &models.PlayRef{ID: 2, Title: "Hamlet"}, ref)

	ref, err = repo.WeekMostPopular(context.Background(), since)
	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestPlayCreateRollsBackOnRelationFailure(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPlayRepository(db)

	mock.ExpectBegin()
	mock.ExpectQuery("INSERT INTO plays").WithArgs("Hamlet", "").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(7)))
	mock.ExpectExec("INSERT INTO play_genres").WillReturnError(errors.New("boom"))
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Play{Title: "Hamlet", Genres: []models.Genre{{ID: 1}}})

	assert.ErrorContains(t, err, "failed to link genres")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPerformanceListFilters(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPerformanceRepository(db)
	day := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)
	playID := int64(3)

	mock.ExpectQuery(`pf.show_time >= \$1 AND pf.show_time < \$2 AND pf.play_id = \$3`).
		WithArgs(day, day.AddDate(0, 0, 1), playID).
		WillReturnRows(sqlmock.NewRows([]string{
			"id", "play_id", "theater_hall_id", "show_time", "title", "description", "name", "rows", "seats_in_row",
		}).AddRow(int64(1), playID, int64(5), day.Add(19*time.Hour), "Hamlet", "", "Blue", 5, 5))

	list, err := repo.List(context.Background(), models.PerformanceFilter{Date: &day, PlayID: &playID})

	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Hamlet", list[0].Play.Title)
	assert.Equal(t, 25, list[0].TheaterHall.Capacity())
}

func TestHallHasTickets(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewHallRepository(db)

	mock.ExpectQuery("SELECT EXISTS").WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	has, err := repo.HasTickets(context.Background(), 5)

	require.NoError(t, err)
	assert.True(t, has)
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery("INSERT INTO users").
		WillReturnError(&pq.Error{Code: "23505", Constraint: "users_email_key"})

	err := repo.Create(context.Background(), &models.User{Email: "a@b.c"})

	var fe *apperrors.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "email", fe.Field)
}

func TestGenreDeleteMissing(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewGenreRepository(db)

	mock.ExpectExec("DELETE FROM genres").WithArgs(int64(8)).WillReturnResult(sqlmock.NewResult(0, 0))

	found, err := repo.Delete(context.Background(), 8)

	require.NoError(t, err)
	assert.False(t, found)
}
