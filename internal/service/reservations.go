package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"theater/internal/apperrors"
	"theater/internal/logger"
	"theater/internal/metrics"
	"theater/internal/models"
	"theater/internal/seating"
)

var (
	// ErrEmptyReservation is returned for a reservation without tickets
	ErrEmptyReservation = apperrors.NewFieldError("tickets", "This list may not be empty.")

	ErrPerformanceNotFound = errors.New("performance does not exist")
)

type ReservationStore interface {
	Create(ctx context.Context, res *models.Reservation) error
	ListByUser(ctx context.Context, userID int64) ([]models.Reservation, error)
	GetByIDForUser(ctx context.Context, id, userID int64) (*models.Reservation, error)
}

type PerformanceReader interface {
	GetByID(ctx context.Context, id int64) (*models.Performance, error)
}

type ReservationService struct {
	reservations ReservationStore
	performances PerformanceReader
	publisher    Publisher
	metrics      *metrics.Metrics
}

func NewReservationService(reservations ReservationStore, performances PerformanceReader, publisher Publisher, m *metrics.Metrics) *ReservationService {
	return &ReservationService{
		reservations: reservations,
		performances: performances,
		publisher:    publisher,
		metrics:      m,
	}
}

// Create books every ticket for user or none of them. Each seat is checked
// against its performance's hall before anything is written; seat
// exclusivity is enforced by storage at commit and reported as
// *apperrors.SeatAlreadyBookedError.
func (s *ReservationService) Create(ctx context.Context, user models.User, tickets []models.TicketInput) (*models.Reservation, error) {
	res, err := s.prepare(ctx, user, tickets)
	if err != nil {
		s.observe(err, len(tickets))
		return nil, err
	}

	if err := s.reservations.Create(ctx, res); err != nil {
		s.observe(err, len(tickets))
		var conflict *apperrors.SeatAlreadyBookedError
		if errors.As(err, &conflict) {
			logger.WithContext(ctx).Info("Seat already booked",
				"performance_id", conflict.PerformanceID, "row", conflict.Row, "seat", conflict.Seat)
		}
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	s.observe(nil, len(res.Tickets))

	event := models.ReservationCreatedEvent{
		ReservationID: res.ID,
		UserID:        user.ID,
		Timestamp:     time.Now(),
	}
	for _, t := range res.Tickets {
		event.Tickets = append(event.Tickets, models.TicketSnapshot{PerformanceID: t.PerformanceID, Row: t.Row, Seat: t.Seat})
	}
	publish(ctx, s.publisher, models.EventReservationCreated, event)

	logger.WithContext(ctx).Info("Reservation created", "reservation_id", res.ID, "tickets", len(res.Tickets))
	return res, nil
}

// prepare validates every ticket and builds the reservation. The first
// failing ticket aborts.
func (s *ReservationService) prepare(ctx context.Context, user models.User, tickets []models.TicketInput) (*models.Reservation, error) {
	if len(tickets) == 0 {
		return nil, ErrEmptyReservation
	}

	performances := make(map[int64]*models.Performance)
	res := &models.Reservation{
		UserID:    user.ID,
		UserEmail: user.Email,
		Tickets:   make([]models.Ticket, 0, len(tickets)),
	}

	for i, t := range tickets {
		pf, ok := performances[t.PerformanceID]
		if !ok {
			var err error
			pf, err = s.performances.GetByID(ctx, t.PerformanceID)
			if err != nil {
				return nil, fmt.Errorf("failed to get performance: %w", err)
			}
			if pf == nil {
				return nil, &apperrors.FieldError{
					Field:   fmt.Sprintf("tickets[%d].performance", i),
					Message: fmt.Sprintf("Invalid pk \"%d\" - object does not exist.", t.PerformanceID),
					Err:     ErrPerformanceNotFound,
				}
			}
			performances[t.PerformanceID] = pf
		}

		if err := seating.Validate(t.Row, t.Seat, *pf.TheaterHall); err != nil {
			var gerr *seating.GeometryError
			errors.As(err, &gerr)
			return nil, &apperrors.FieldError{
				Field:   fmt.Sprintf("tickets[%d].%s", i, gerr.Field()),
				Message: gerr.Error(),
				Err:     err,
			}
		}

		res.Tickets = append(res.Tickets, models.Ticket{
			Row:           t.Row,
			Seat:          t.Seat,
			PerformanceID: t.PerformanceID,
			Performance:   pf,
		})
	}
	return res, nil
}

func (s *ReservationService) observe(err error, tickets int) {
	switch {
	case err == nil:
		s.metrics.ObserveReservation(metrics.ReservationCreated, tickets)
	case errors.Is(err, apperrors.ErrConflict):
		s.metrics.ObserveReservation(metrics.ReservationConflict, tickets)
	case errors.Is(err, apperrors.ErrValidation):
		s.metrics.ObserveReservation(metrics.ReservationInvalid, tickets)
	default:
		s.metrics.ObserveReservation(metrics.ReservationError, tickets)
	}
}

func (s *ReservationService) List(ctx context.Context, user models.User) ([]models.Reservation, error) {
	list, err := s.reservations.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reservations: %w", err)
	}
	return list, nil
}

// Get returns a reservation owned by user. Reservations of other users are
// reported as not found.
func (s *ReservationService) Get(ctx context.Context, user models.User, id int64) (*models.Reservation, error) {
	res, err := s.reservations.GetByIDForUser(ctx, id, user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to get reservation: %w", err)
	}
	if res == nil {
		return nil, apperrors.NotFound("reservation", id)
	}
	return res, nil
}
