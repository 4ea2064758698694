package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"theater/internal/apperrors"
	"theater/internal/logger"
	"theater/internal/metrics"
	"theater/internal/models"
)

// PopularityWindow is how far back show times count towards popularity
const PopularityWindow = 7 * 24 * time.Hour

type PlayStore interface {
	List(ctx context.Context, genres []string) ([]models.Play, error)
	GetByID(ctx context.Context, id int64) (*models.Play, error)
	Create(ctx context.Context, play *models.Play) error
	Update(ctx context.Context, play *models.Play) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	WeekMostPopular(ctx context.Context, since time.Time) (*models.PlayRef, error)
}

type GenreLookup interface {
	GetByNames(ctx context.Context, names []string) ([]models.Genre, error)
}

type ActorLookup interface {
	GetByIDs(ctx context.Context, ids []int64) ([]models.Actor, error)
}

type PlayService struct {
	plays     PlayStore
	genres    GenreLookup
	actors    ActorLookup
	publisher Publisher
	cache     PopularityCache
	search    PlaySearcher
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewPlayService(plays PlayStore, genres GenreLookup, actors ActorLookup, publisher Publisher) *PlayService {
	return &PlayService{
		plays:     plays,
		genres:    genres,
		actors:    actors,
		publisher: publisher,
		now:       time.Now,
	}
}

// WithCache enables the popularity cache
func (s *PlayService) WithCache(cache PopularityCache) *PlayService {
	s.cache = cache
	return s
}

// WithSearch enables full-text search
func (s *PlayService) WithSearch(search PlaySearcher) *PlayService {
	s.search = search
	return s
}

// WithClock replaces the clock used for the popularity window
func (s *PlayService) WithClock(now func() time.Time) *PlayService {
	s.now = now
	return s
}

// ParseGenreFilter splits a comma separated genres parameter. Blank names
// are dropped.
func ParseGenreFilter(raw string) []string {
	var names []string
	for _, part := range strings.Split(raw, ",") {
		if name := strings.TrimSpace(part); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// List returns plays that have all of the given genres along with the
// week's most popular play
func (s *PlayService) List(ctx context.Context, genres []string) ([]models.Play, *models.PlayRef, error) {
	plays, err := s.plays.List(ctx, genres)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list plays: %w", err)
	}

	popular, err := s.WeekMostPopular(ctx)
	if err != nil {
		return nil, nil, err
	}
	return plays, popular, nil
}

// WeekMostPopular returns the play with the most tickets for performances
// shown within the last week, or nil when there are none. The cache is
// consulted first and bypassed on error.
func (s *PlayService) WeekMostPopular(ctx context.Context) (*models.PlayRef, error) {
	if s.cache != nil {
		ref, ok, err := s.cache.GetWeekMostPopular(ctx)
		switch {
		case err != nil:
			s.metrics.ObservePopularityCache("error")
			logger.WithContext(ctx).Warn("Popularity cache read failed", "error", err)
		case ok:
			s.metrics.ObservePopularityCache("hit")
			return ref, nil
		default:
			s.metrics.ObservePopularityCache("miss")
		}
	}

	return s.RefreshWeekMostPopular(ctx)
}

// RefreshWeekMostPopular recomputes the summary from storage and stores it
// in the cache
func (s *PlayService) RefreshWeekMostPopular(ctx context.Context) (*models.PlayRef, error) {
	ref, err := s.plays.WeekMostPopular(ctx, s.now().Add(-PopularityWindow))
	if err != nil {
		return nil, fmt.Errorf("failed to compute week most popular: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.SetWeekMostPopular(ctx, ref); err != nil {
			logger.WithContext(ctx).Warn("Popularity cache write failed", "error", err)
		}
	}
	return ref, nil
}

func (s *PlayService) Get(ctx context.Context, id int64) (*models.Play, error) {
	play, err := s.plays.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get play: %w", err)
	}
	if play == nil {
		return nil, apperrors.NotFound("play", id)
	}
	return play, nil
}

func (s *PlayService) Create(ctx context.Context, req models.PlayRequest) (*models.Play, error) {
	play := &models.Play{Title: req.Title, Description: req.Description}
	if err := s.resolveRelations(ctx, play, req.Genres, req.Actors); err != nil {
		return nil, err
	}

	if err := s.plays.Create(ctx, play); err != nil {
		return nil, fmt.Errorf("failed to create play: %w", err)
	}

	publish(ctx, s.publisher, models.EventPlayUpserted, models.PlayUpsertedEvent{
		PlayID:    play.ID,
		Timestamp: s.now(),
	})
	return play, nil
}

func (s *PlayService) Update(ctx context.Context, id int64, patch models.PlayPatch) (*models.Play, error) {
	play, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if patch.Title != nil {
		play.Title = *patch.Title
	}
	if patch.Description != nil {
		play.Description = *patch.Description
	}
	genres := patch.Genres
	if genres == nil {
		genres = play.GenreNames()
	}
	actors := patch.Actors
	if actors == nil {
		for _, a := range play.Actors {
			actors = append(actors, a.ID)
		}
	}
	if err := s.resolveRelations(ctx, play, genres, actors); err != nil {
		return nil, err
	}

	found, err := s.plays.Update(ctx, play)
	if err != nil {
		return nil, fmt.Errorf("failed to update play: %w", err)
	}
	if !found {
		return nil, apperrors.NotFound("play", id)
	}

	publish(ctx, s.publisher, models.EventPlayUpserted, models.PlayUpsertedEvent{
		PlayID:    play.ID,
		Timestamp: s.now(),
	})
	return play, nil
}

func (s *PlayService) Delete(ctx context.Context, id int64) error {
	found, err := s.plays.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete play: %w", err)
	}
	if !found {
		return apperrors.NotFound("play", id)
	}

	publish(ctx, s.publisher, models.EventPlayDeleted, models.PlayDeletedEvent{
		PlayID:    id,
		Timestamp: s.now(),
	})
	return nil
}

// Search runs a full-text query over play titles and descriptions
func (s *PlayService) Search(ctx context.Context, query string, limit int) ([]models.PlaySearchHit, error) {
	if s.search == nil {
		return nil, ErrSearchUnavailable
	}
	if strings.TrimSpace(query) == "" {
		return nil, apperrors.NewFieldError("query", "This field is required.")
	}

	hits, err := s.search.SearchPlays(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search plays: %w", err)
	}
	return hits, nil
}

// resolveRelations maps genre names and actor ids onto existing rows.
// Unknown names or ids are reported as field errors.
func (s *PlayService) resolveRelations(ctx context.Context, play *models.Play, genreNames []string, actorIDs []int64) error {
	play.Genres = []models.Genre{}
	if len(genreNames) > 0 {
		genres, err := s.genres.GetByNames(ctx, genreNames)
		if err != nil {
			return fmt.Errorf("failed to resolve genres: %w", err)
		}
		byName := make(map[string]models.Genre, len(genres))
		for _, g := range genres {
			byName[g.Name] = g
		}
		seen := make(map[string]bool, len(genreNames))
		for _, name := range genreNames {
			g, ok := byName[name]
			if !ok {
				return apperrors.NewFieldError("genres", "Object with name=%s does not exist.", name)
			}
			if !seen[name] {
				seen[name] = true
				play.Genres = append(play.Genres, g)
			}
		}
	}

	play.Actors = []models.Actor{}
	if len(actorIDs) > 0 {
		actors, err := s.actors.GetByIDs(ctx, actorIDs)
		if err != nil {
			return fmt.Errorf("failed to resolve actors: %w", err)
		}
		byID := make(map[int64]models.Actor, len(actors))
		for _, a := range actors {
			byID[a.ID] = a
		}
		seen := make(map[int64]bool, len(actorIDs))
		for _, id := range actorIDs {
			a, ok := byID[id]
			if !ok {
				return apperrors.NewFieldError("actors", "Invalid pk \"%d\" - object does not exist.", id)
			}
			if !seen[id] {
				seen[id] = true
				play.Actors = append(play.Actors, a)
			}
		}
	}
	return nil
}
