package service

import (
	"context"
	"fmt"
	"time"

	"theater/internal/apperrors"
	"theater/internal/models"
)

type GenreStore interface {
	List(ctx context.Context) ([]models.Genre, error)
	GetByID(ctx context.Context, id int64) (*models.Genre, error)
	Create(ctx context.Context, genre *models.Genre) error
	Update(ctx context.Context, genre *models.Genre) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type GenreService struct {
	genres GenreStore
}

func NewGenreService(genres GenreStore) *GenreService {
	return &GenreService{genres: genres}
}

func (s *GenreService) List(ctx context.Context) ([]models.Genre, error) {
	genres, err := s.genres.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list genres: %w", err)
	}
	return genres, nil
}

func (s *GenreService) Get(ctx context.Context, id int64) (*models.Genre, error) {
	genre, err := s.genres.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get genre: %w", err)
	}
	if genre == nil {
		return nil, apperrors.NotFound("genre", id)
	}
	return genre, nil
}

func (s *GenreService) Create(ctx context.Context, req models.GenreRequest) (*models.Genre, error) {
	genre := &models.Genre{Name: req.Name}
	if err := s.genres.Create(ctx, genre); err != nil {
		return nil, fmt.Errorf("failed to create genre: %w", err)
	}
	return genre, nil
}

func (s *GenreService) Update(ctx context.Context, id int64, patch models.GenrePatch) (*models.Genre, error) {
	genre, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.Name != nil {
		genre.Name = *patch.Name
	}

	found, err := s.genres.Update(ctx, genre)
	if err != nil {
		return nil, fmt.Errorf("failed to update genre: %w", err)
	}
	if !found {
		return nil, apperrors.NotFound("genre", id)
	}
	return genre, nil
}

func (s *GenreService) Delete(ctx context.Context, id int64) error {
	found, err := s.genres.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete genre: %w", err)
	}
	if !found {
		return apperrors.NotFound("genre", id)
	}
	return nil
}

type ActorStore interface {
	List(ctx context.Context) ([]models.Actor, error)
	GetByID(ctx context.Context, id int64) (*models.Actor, error)
	Create(ctx context.Context, actor *models.Actor) error
	Update(ctx context.Context, actor *models.Actor) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type ActorService struct {
	actors ActorStore
}

func NewActorService(actors ActorStore) *ActorService {
	return &ActorService{actors: actors}
}

func (s *ActorService) List(ctx context.Context) ([]models.Actor, error) {
	actors, err := s.actors.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list actors: %w", err)
	}
	return actors, nil
}

func (s *ActorService) Get(ctx context.Context, id int64) (*models.Actor, error) {
	actor, err := s.actors.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get actor: %w", err)
	}
	if actor == nil {
		return nil, apperrors.NotFound("actor", id)
	}
	return actor, nil
}

func (s *ActorService) Create(ctx context.Context, req models.ActorRequest) (*models.Actor, error) {
	actor := &models.Actor{FirstName: req.FirstName, LastName: req.LastName}
	if err := s.actors.Create(ctx, actor); err != nil {
		return nil, fmt.Errorf("failed to create actor: %w", err)
	}
	return actor, nil
}

func (s *ActorService) Update(ctx context.Context, id int64, patch models.ActorPatch) (*models.Actor, error) {
	actor, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.FirstName != nil {
		actor.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		actor.LastName = *patch.LastName
	}

	found, err := s.actors.Update(ctx, actor)
	if err != nil {
		return nil, fmt.Errorf("failed to update actor: %w", err)
	}
	if !found {
		return nil, apperrors.NotFound("actor", id)
	}
	return actor, nil
}

func (s *ActorService) Delete(ctx context.Context, id int64) error {
	found, err := s.actors.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete actor: %w", err)
	}
	if !found {
		return apperrors.NotFound("actor", id)
	}
	return nil
}

type HallStore interface {
	List(ctx context.Context) ([]models.TheaterHall, error)
	GetByID(ctx context.Context, id int64) (*models.TheaterHall, error)
	Create(ctx context.Context, hall *models.TheaterHall) error
	Update(ctx context.Context, hall *models.TheaterHall) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	HasTickets(ctx context.Context, hallID int64) (bool, error)
}

type HallService struct {
	halls     HallStore
	publisher Publisher
}

func NewHallService(halls HallStore, publisher Publisher) *HallService {
	return &HallService{halls: halls, publisher: publisher}
}

func (s *HallService) List(ctx context.Context) ([]models.TheaterHall, error) {
	halls, err := s.halls.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list theater halls: %w", err)
	}
	return halls, nil
}

func (s *HallService) Get(ctx context.Context, id int64) (*models.TheaterHall, error) {
	hall, err := s.halls.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get theater hall: %w", err)
	}
	if hall == nil {
		return nil, apperrors.NotFound("theater hall", id)
	}
	return hall, nil
}

func (s *HallService) Create(ctx context.Context, req models.TheaterHallRequest) (*models.TheaterHall, error) {
	hall := &models.TheaterHall{Name: req.Name, Rows: req.Rows, SeatsInRow: req.SeatsInRow}
	if err := s.halls.Create(ctx, hall); err != nil {
		return nil, fmt.Errorf("failed to create theater hall: %w", err)
	}
	return hall, nil
}

// Update rejects geometry changes once any performance in the hall has
// tickets, so committed seat addresses stay inside the grid.
func (s *HallService) Update(ctx context.Context, id int64, patch models.TheaterHallPatch) (*models.TheaterHall, error) {
	hall, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, seats := hall.Rows, hall.SeatsInRow
	if patch.Name != nil {
		hall.Name = *patch.Name
	}
	if patch.Rows != nil {
		hall.Rows = *patch.Rows
	}
	if patch.SeatsInRow != nil {
		hall.SeatsInRow = *patch.SeatsInRow
	}

	if hall.Rows != rows || hall.SeatsInRow != seats {
		booked, err := s.halls.HasTickets(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("failed to check hall tickets: %w", err)
		}
		if booked {
			return nil, apperrors.Conflict("Hall geometry cannot change while tickets are booked.")
		}
	}

	found, err := s.halls.Update(ctx, hall)
	if err != nil {
		return nil, fmt.Errorf("failed to update theater hall: %w", err)
	}
	if !found {
		return nil, apperrors.NotFound("theater hall", id)
	}
	return hall, nil
}

func (s *HallService) Delete(ctx context.Context, id int64) error {
	found, err := s.halls.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete theater hall: %w", err)
	}
	if !found {
		return apperrors.NotFound("theater hall", id)
	}

	// Tickets of the hall's performances are gone, so the popularity summary may be stale
	publish(ctx, s.publisher, models.EventHallDeleted, models.HallDeletedEvent{
		HallID:    id,
		Timestamp: time.Now(),
	})
	return nil
}
