package service

import (
	"context"
	"fmt"
	"time"

	"theater/internal/apperrors"
	"theater/internal/models"
	"theater/internal/seating"
)

type PerformanceStore interface {
	List(ctx context.Context, filter models.PerformanceFilter) ([]models.Performance, error)
	GetByID(ctx context.Context, id int64) (*models.Performance, error)
	Create(ctx context.Context, pf *models.Performance) error
	Update(ctx context.Context, pf *models.Performance) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type PlayReader interface {
	GetByID(ctx context.Context, id int64) (*models.Play, error)
}

type HallReader interface {
	GetByID(ctx context.Context, id int64) (*models.TheaterHall, error)
}

type SeatReader interface {
	BookedSeats(ctx context.Context, performanceID int64) ([]models.SeatAddress, error)
}

type PerformanceService struct {
	performances PerformanceStore
	plays        PlayReader
	halls        HallReader
	seats        SeatReader
	publisher    Publisher
}

func NewPerformanceService(performances PerformanceStore, plays PlayReader, halls HallReader, seats SeatReader, publisher Publisher) *PerformanceService {
	return &PerformanceService{
		performances: performances,
		plays:        plays,
		halls:        halls,
		seats:        seats,
		publisher:    publisher,
	}
}

func (s *PerformanceService) List(ctx context.Context, filter models.PerformanceFilter) ([]models.Performance, error) {
	list, err := s.performances.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list performances: %w", err)
	}
	return list, nil
}

func (s *PerformanceService) get(ctx context.Context, id int64) (*models.Performance, error) {
	pf, err := s.performances.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get performance: %w", err)
	}
	if pf == nil {
		return nil, apperrors.NotFound("performance", id)
	}
	return pf, nil
}

// Get returns the performance with the full play (genres, actors) and hall
func (s *PerformanceService) Get(ctx context.Context, id int64) (*models.Performance, error) {
	pf, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	play, err := s.plays.GetByID(ctx, pf.PlayID)
	if err != nil {
		return nil, fmt.Errorf("failed to get performance play: %w", err)
	}
	if play != nil {
		pf.Play = play
	}
	return pf, nil
}

func (s *PerformanceService) Create(ctx context.Context, req models.PerformanceRequest) (*models.Performance, error) {
	pf := &models.Performance{PlayID: req.Play, TheaterHallID: req.TheaterHall, ShowTime: req.ShowTime}
	if err := s.checkReferences(ctx, pf); err != nil {
		return nil, err
	}

	if err := s.performances.Create(ctx, pf); err != nil {
		return nil, fmt.Errorf("failed to create performance: %w", err)
	}

	s.publishChanged(ctx, pf.ID, pf.PlayID, false)
	return s.get(ctx, pf.ID)
}

// Update rejects moving a performance with booked tickets to another hall
func (s *PerformanceService) Update(ctx context.Context, id int64, patch models.PerformancePatch) (*models.Performance, error) {
	pf, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	oldPlayID, oldHallID := pf.PlayID, pf.TheaterHallID

	if patch.Play != nil {
		pf.PlayID = *patch.Play
	}
	if patch.TheaterHall != nil {
		pf.TheaterHallID = *patch.TheaterHall
	}
	if patch.ShowTime != nil {
		pf.ShowTime = *patch.ShowTime
	}
	if err := s.checkReferences(ctx, pf); err != nil {
		return nil, err
	}

	if pf.TheaterHallID != oldHallID {
		booked, err := s.seats.BookedSeats(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to read booked seats: %w", err)
		}
		if len(booked) > 0 {
			return nil, apperrors.Conflict("Performance with booked tickets cannot move to another hall.")
		}
	}

	found, err := s.performances.Update(ctx, pf)
	if err != nil {
		return nil, fmt.Errorf("failed to update performance: %w", err)
	}
	if !found {
		return nil, apperrors.NotFound("performance", id)
	}

	s.publishChanged(ctx, id, pf.PlayID, false)
	if oldPlayID != pf.PlayID {
		s.publishChanged(ctx, id, oldPlayID, false)
	}
	return s.get(ctx, id)
}

func (s *PerformanceService) Delete(ctx context.Context, id int64) error {
	pf, err := s.get(ctx, id)
	if err != nil {
		return err
	}

	found, err := s.performances.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete performance: %w", err)
	}
	if !found {
		return apperrors.NotFound("performance", id)
	}

	s.publishChanged(ctx, id, pf.PlayID, true)
	return nil
}

// AvailableTickets lists free seats of the performance's hall. Booked seats
// are read at call time. A non-nil row restricts the result to that row.
func (s *PerformanceService) AvailableTickets(ctx context.Context, id int64, row *int) ([]models.SeatAddress, error) {
	pf, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	booked, err := s.seats.BookedSeats(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to read booked seats: %w", err)
	}

	return seating.Available(*pf.TheaterHall, seating.NewBookedSet(booked), row)
}

func (s *PerformanceService) checkReferences(ctx context.Context, pf *models.Performance) error {
	play, err := s.plays.GetByID(ctx, pf.PlayID)
	if err != nil {
		return fmt.Errorf("failed to get play: %w", err)
	}
	if play == nil {
		return apperrors.NewFieldError("play", "Invalid pk \"%d\" - object does not exist.", pf.PlayID)
	}

	hall, err := s.halls.GetByID(ctx, pf.TheaterHallID)
	if err != nil {
		return fmt.Errorf("failed to get theater hall: %w", err)
	}
	if hall == nil {
		return apperrors.NewFieldError("theater_hall", "Invalid pk \"%d\" - object does not exist.", pf.TheaterHallID)
	}
	return nil
}

func (s *PerformanceService) publishChanged(ctx context.Context, id, playID int64, deleted bool) {
	publish(ctx, s.publisher, models.EventPerformanceChanged, models.PerformanceChangedEvent{
		PerformanceID: id,
		PlayID:        playID,
		Deleted:       deleted,
		Timestamp:     time.Now(),
	})
}
