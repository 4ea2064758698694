package service

import (
	"context"
	"errors"

	"theater/internal/auth"
	"theater/internal/logger"
	"theater/internal/metrics"
	"theater/internal/models"
	"theater/internal/repository"
)

// ErrSearchUnavailable is returned when full-text search is not configured
var ErrSearchUnavailable = errors.New("search is unavailable")

// Publisher sends domain events to the message bus
type Publisher interface {
	Publish(subject string, data interface{}) error
}

// PopularityCache stores the week-most-popular summary. A cached nil ref
// means "no play qualifies" and is distinct from a miss.
type PopularityCache interface {
	GetWeekMostPopular(ctx context.Context) (*models.PlayRef, bool, error)
	SetWeekMostPopular(ctx context.Context, ref *models.PlayRef) error
	InvalidateWeekMostPopular(ctx context.Context) error
}

type PlaySearcher interface {
	SearchPlays(ctx context.Context, query string, limit int) ([]models.PlaySearchHit, error)
}

type Services struct {
	Users        *UserService
	Genres       *GenreService
	Actors       *ActorService
	Halls        *HallService
	Plays        *PlayService
	Performances *PerformanceService
	Reservations *ReservationService
}

// Deps are the collaborators shared by services. Publisher, Cache, Search and
// Metrics may be nil.
type Deps struct {
	Repos      *repository.Repositories
	Publisher  Publisher
	Cache      PopularityCache
	Search     PlaySearcher
	Metrics    *metrics.Metrics
	Tokens     *auth.TokenIssuer
	BcryptCost int
}

func NewServices(deps Deps) *Services {
	repos := deps.Repos

	plays := NewPlayService(repos.Plays, repos.Genres, repos.Actors, deps.Publisher).
		WithCache(deps.Cache).
		WithSearch(deps.Search)
	plays.metrics = deps.Metrics

	return &Services{
		Users:        NewUserService(repos.Users, deps.Tokens, deps.BcryptCost),
		Genres:       NewGenreService(repos.Genres),
		Actors:       NewActorService(repos.Actors),
		Halls:        NewHallService(repos.Halls, deps.Publisher),
		Plays:        plays,
		Performances: NewPerformanceService(repos.Performances, repos.Plays, repos.Halls, repos.Tickets, deps.Publisher),
		Reservations: NewReservationService(repos.Reservations, repos.Performances, deps.Publisher, deps.Metrics),
	}
}

// publish logs and swallows publish failures: the write has already committed
func publish(ctx context.Context, p Publisher, subject string, event interface{}) {
	if p == nil {
		return
	}
	if err := p.Publish(subject, event); err != nil {
		logger.WithContext(ctx).Error("Failed to publish event", "subject", subject, "error", err)
	}
}
