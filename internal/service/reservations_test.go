package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"theater/internal/apperrors"
	"theater/internal/metrics"
	"theater/internal/models"
	"theater/internal/seating"
)

func testPerformance(id int64, rows, seats int) *models.Performance {
	return &models.Performance{
		ID:            id,
		PlayID:        1,
		TheaterHallID: 1,
		ShowTime:      time.Date(2024, 3, 9, 19, 0, 0, 0, time.UTC),
		Play:          &models.Play{ID: 1, Title: "Hamlet"},
		TheaterHall:   &models.TheaterHall{ID: 1, Name: "Blue", Rows: rows, SeatsInRow: seats},
	}
}

var (
	alice = models.User{ID: 1, Email: "alice@example.com"}
	bob   = models.User{ID: 2, Email: "bob@example.com"}
)

func TestCreateReservation(t *testing.T) {
	store := newMemoryStore(testPerformance(4, 5, 5))
	pub := &mockPublisher{}
	pub.On("Publish", models.EventReservationCreated, mock.MatchedBy(func(e models.ReservationCreatedEvent) bool {
		return e.UserID == alice.ID && len(e.Tickets) == 2
	})).Return(nil).Once()
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	svc := NewReservationService(store, store, pub, m)

	res, err := svc.Create(context.Background(), alice, []models.TicketInput{
		{Row: 1, Seat: 1, PerformanceID: 4},
		{Row: 1, Seat: 2, PerformanceID: 4},
	})

	require.NoError(t, err)
	assert.NotZero(t, res.ID)
	assert.Equal(t, alice.Email, res.UserEmail)
	require.Len(t, res.Tickets, 2)
	assert.Equal(t, "Hamlet", res.Tickets[0].Performance.Play.Title)
	assert.Equal(t, float64(2), testutil.ToFloat64(m.TicketsBookedTotal))
	pub.AssertExpectations(t)

	got, err := svc.Get(context.Background(), alice, res.ID)
	require.NoError(t, err)
	assert.Equal(t, res.ID, got.ID)
}

func TestCreateReservationEmpty(t *testing.T) {
	store := newMemoryStore()
	svc := NewReservationService(store, store, nil, nil)

	_, err := svc.Create(context.Background(), alice, nil)

	assert.ErrorIs(t, err, ErrEmptyReservation)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestCreateReservationValidatesGeometry(t *testing.T) {
	store := newMemoryStore(testPerformance(4, 10, 15))
	svc := NewReservationService(store, store, nil, nil)

	tests := []struct {
		name    string
		tickets []models.TicketInput
		field   string
		message string
	}{
		{
			name:    "row out of range",
			tickets: []models.TicketInput{{Row: 11, Seat: 1, PerformanceID: 4}},
			field:   "tickets[0].row",
			message: "Row number must be in range 1 to 10.",
		},
		{
			name:    "seat out of range on second ticket",
			tickets: []models.TicketInput{{Row: 1, Seat: 1, PerformanceID: 4}, {Row: 2, Seat: 16, PerformanceID: 4}},
			field:   "tickets[1].seat",
			message: "Seat number must be in range 1 to 15.",
		},
		{
			name:    "unknown performance",
			tickets: []models.TicketInput{{Row: 1, Seat: 1, PerformanceID: 99}},
			field:   "tickets[0].performance",
			message: `Invalid pk "99" - object does not exist.`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), alice, tt.tickets)

			var fe *apperrors.FieldError
			require.True(t, errors.As(err, &fe))
			assert.Equal(t, tt.field, fe.Field)
			assert.Equal(t, tt.message, fe.Message)
			assert.Zero(t, store.ticketCount())
		})
	}

	_, err := svc.Create(context.Background(), alice, []models.TicketInput{{Row: 0, Seat: 0, PerformanceID: 4}})
	var gerr *seating.GeometryError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, seating.RowOutOfRange, gerr.Kind)
}

func TestCreateReservationIsAtomic(t *testing.T) {
	store := newMemoryStore(testPerformance(4, 5, 5))
	svc := NewReservationService(store, store, nil, nil)

	_, err := svc.Create(context.Background(), alice, []models.TicketInput{{Row: 3, Seat: 3, PerformanceID: 4}})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), bob, []models.TicketInput{
		{Row: 3, Seat: 2, PerformanceID: 4},
		{Row: 3, Seat: 3, PerformanceID: 4},
	})

	var conflict *apperrors.SeatAlreadyBookedError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, 3, conflict.Seat)
	assert.Equal(t, 1, store.ticketCount())

	list, err := svc.List(context.Background(), bob)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCreateReservationDuplicateSeatInRequest(t *testing.T) {
	store := newMemoryStore(testPerformance(4, 5, 5))
	svc := NewReservationService(store, store, nil, nil)

	_, err := svc.Create(context.Background(), alice, []models.TicketInput{
		{Row: 1, Seat: 1, PerformanceID: 4},
		{Row: 1, Seat: 1, PerformanceID: 4},
	})

	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Zero(t, store.ticketCount())
}

func TestCreateReservationRaceHasOneWinner(t *testing.T) {
	store := newMemoryStore(testPerformance(4, 5, 5))
	m := metrics.NewWithRegistry(prometheus.NewRegistry())
	svc := NewReservationService(store, store, nil, m)

	const contenders = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func(userID int64) {
			defer wg.Done()
			_, err := svc.Create(context.Background(), models.User{ID: userID}, []models.TicketInput{{Row: 2, Seat: 2, PerformanceID: 4}})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if errors.Is(err, apperrors.ErrConflict) {
				conflicts++
			}
		}(int64(i + 1))
	}
	wg.Wait()

	assert.Equal(t, 1, successes)
	assert.Equal(t, contenders-1, conflicts)
	assert.Equal(t, 1, store.ticketCount())
	assert.Equal(t, float64(contenders-1), testutil.ToFloat64(m.ReservationsTotal.WithLabelValues(metrics.ReservationConflict)))
}

func TestGetReservationOfAnotherUser(t *testing.T) {
	store := newMemoryStore(testPerformance(4, 5, 5))
	svc := NewReservationService(store, store, nil, nil)

	res, err := svc.Create(context.Background(), alice, []models.TicketInput{{Row: 1, Seat: 1, PerformanceID: 4}})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), bob, res.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestPublishFailureDoesNotFailReservation(t *testing.T) {
	store := newMemoryStore(testPerformance(4, 5, 5))
	pub := &mockPublisher{}
	pub.On("Publish", mock.Anything, mock.Anything).Return(errors.New("nats down"))
	svc := NewReservationService(store, store, pub, nil)

	_, err := svc.Create(context.Background(), alice, []models.TicketInput{{Row: 1, Seat: 1, PerformanceID: 4}})

	assert.NoError(t, err)
}

// Hall of 5x5, user A books (1,1),(1,2); user B tries (1,2),(1,3).
func TestFiveByFiveScenario(t *testing.T) {
	ctx := context.Background()
	store := newMemoryStore(testPerformance(4, 5, 5))
	reservations := NewReservationService(store, store, nil, nil)
	performances := NewPerformanceService(memoryPerformances{store}, nil, nil, store, nil)

	_, err := reservations.Create(ctx, alice, []models.TicketInput{
		{Row: 1, Seat: 1, PerformanceID: 4},
		{Row: 1, Seat: 2, PerformanceID: 4},
	})
	require.NoError(t, err)

	_, err = reservations.Create(ctx, bob, []models.TicketInput{
		{Row: 1, Seat: 2, PerformanceID: 4},
		{Row: 1, Seat: 3, PerformanceID: 4},
	})
	var conflict *apperrors.SeatAlreadyBookedError
	require.True(t, errors.As(err, &conflict))
	assert.Equal(t, 1, conflict.Row)
	assert.Equal(t, 2, conflict.Seat)

	seats, err := performances.AvailableTickets(ctx, 4, nil)
	require.NoError(t, err)
	assert.Len(t, seats, 23)
	assert.Contains(t, seats, models.SeatAddress{Row: 1, Seat: 3})
	assert.NotContains(t, seats, models.SeatAddress{Row: 1, Seat: 1})

	row := 1
	seats, err = performances.AvailableTickets(ctx, 4, &row)
	require.NoError(t, err)
	assert.Equal(t, []models.SeatAddress{{Row: 1, Seat: 3}, {Row: 1, Seat: 4}, {Row: 1, Seat: 5}}, seats)

	row = 6
	_, err = performances.AvailableTickets(ctx, 4, &row)
	var gerr *seating.GeometryError
	require.True(t, errors.As(err, &gerr))
	assert.Equal(t, seating.RowOutOfRange, gerr.Kind)

	_, err = performances.AvailableTickets(ctx, 404, nil)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
