package handlers

import (
	"context"

	"theater/internal/models"
)

type UserService interface {
	Register(ctx context.Context, req models.RegisterUserRequest) (*models.User, error)
	IssueToken(ctx context.Context, req models.TokenRequest) (*models.TokenResponse, error)
}

type GenreService interface {
	List(ctx context.Context) ([]models.Genre, error)
	Get(ctx context.Context, id int64) (*models.Genre, error)
	Create(ctx context.Context, req models.GenreRequest) (*models.Genre, error)
	Update(ctx context.Context, id int64, patch models.GenrePatch) (*models.Genre, error)
	Delete(ctx context.Context, id int64) error
}

type ActorService interface {
	List(ctx context.Context) ([]models.Actor, error)
	Get(ctx context.Context, id int64) (*models.Actor, error)
	Create(ctx context.Context, req models.ActorRequest) (*models.Actor, error)
	Update(ctx context.Context, id int64, patch models.ActorPatch) (*models.Actor, error)
	Delete(ctx context.Context, id int64) error
}

type HallService interface {
	List(ctx context.Context) ([]models.TheaterHall, error)
	Get(ctx context.Context, id int64) (*models.TheaterHall, error)
	Create(ctx context.Context, req models.TheaterHallRequest) (*models.TheaterHall, error)
	Update(ctx context.Context, id int64, patch models.TheaterHallPatch) (*models.TheaterHall, error)
	Delete(ctx context.Context, id int64) error
}

type PlayService interface {
	List(ctx context.Context, genres []string) ([]models.Play, *models.PlayRef, error)
	Get(ctx context.Context, id int64) (*models.Play, error)
	Create(ctx context.Context, req models.PlayRequest) (*models.Play, error)
	Update(ctx context.Context, id int64, patch models.PlayPatch) (*models.Play, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, query string, limit int) ([]models.PlaySearchHit, error)
}

type PerformanceService interface {
	List(ctx context.Context, filter models.PerformanceFilter) ([]models.Performance, error)
	Get(ctx context.Context, id int64) (*models.Performance, error)
	Create(ctx context.Context, req models.PerformanceRequest) (*models.Performance, error)
	Update(ctx context.Context, id int64, patch models.PerformancePatch) (*models.Performance, error)
	Delete(ctx context.Context, id int64) error
	AvailableTickets(ctx context.Context, id int64, row *int) ([]models.SeatAddress, error)
}

type ReservationService interface {
	Create(ctx context.Context, user models.User, tickets []models.TicketInput) (*models.Reservation, error)
	List(ctx context.Context, user models.User) ([]models.Reservation, error)
	Get(ctx context.Context, user models.User, id int64) (*models.Reservation, error)
}
