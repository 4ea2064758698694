package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"theater/internal/apperrors"
	"theater/internal/models"
)

var fixedNow = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

func newPlayService(store *mockPlayStore) *PlayService {
	genres := staticGenres{{ID: 1, Name: "Drama"}, {ID: 2, Name: "Comedy"}}
	actors := staticActors{{ID: 7, FirstName: "Ada", LastName: "Stone"}}
	return NewPlayService(store, genres, actors, nil).WithClock(func() time.Time { return fixedNow })
}

func TestParseGenreFilter(t *testing.T) {
	assert.Equal(t, []string{"drama", "Comedy"}, ParseGenreFilter(" drama , Comedy,,"))
	assert.Nil(t, ParseGenreFilter(""))
}

func TestWeekMostPopularUsesSevenDayWindow(t *testing.T) {
	store := &mockPlayStore{}
	store.On("WeekMostPopular", mock.Anything, fixedNow.Add(-7*24*time.Hour)).
		Return(&models.PlayRef{ID: 2, Title: "Hamlet"}, nil).Once()

	ref, err := newPlayService(store).WeekMostPopular(context.Background())

	require.NoError(t, err)
	assert.Equal(t, &models.PlayRef{ID: 2, Title: "Hamlet"}, ref)
	store.AssertExpectations(t)
}

// scheduledPlays ranks plays from in-memory performances the way the
// repository query does: tickets of shows at or after since, count desc, id asc.
type scheduledPlays struct {
	mockPlayStore
	titles       map[int64]string
	performances []scheduledPerformance
}

type scheduledPerformance struct {
	playID   int64
	showTime time.Time
	tickets  int
}

func (s *scheduledPlays) WeekMostPopular(ctx context.Context, since time.Time) (*models.PlayRef, error) {
	counts := map[int64]int{}
	for _, pf := range s.performances {
		if pf.showTime.Before(since) {
			continue
		}
		counts[pf.playID] += pf.tickets
	}

	var best *models.PlayRef
	bestCount := 0
	for id, n := range counts {
		if n == 0 {
			continue
		}
		if n > bestCount || (n == bestCount && id < best.ID) {
			best = &models.PlayRef{ID: id, Title: s.titles[id]}
			bestCount = n
		}
	}
	return best, nil
}

func TestWeekMostPopularIgnoresShowsOutsideWindow(t *testing.T) {
	weekAgo := fixedNow.Add(-7 * 24 * time.Hour)

	tests := []struct {
		name         string
		performances []scheduledPerformance
		want         *models.PlayRef
	}{
		{
			name: "busier play played before the window",
			performances: []scheduledPerformance{
				{playID: 1, showTime: weekAgo.Add(-time.Minute), tickets: 50},
				{playID: 2, showTime: fixedNow.Add(-24 * time.Hour), tickets: 3},
			},
			want: &models.PlayRef{ID: 2, Title: "Hamlet"},
		},
		{
			name: "show exactly at the window start counts",
			performances: []scheduledPerformance{
				{playID: 1, showTime: weekAgo, tickets: 4},
				{playID: 2, showTime: fixedNow, tickets: 3},
			},
			want: &models.PlayRef{ID: 1, Title: "Macbeth"},
		},
		{
			name: "tie goes to the lowest id",
			performances: []scheduledPerformance{
				{playID: 2, showTime: fixedNow.Add(time.Hour), tickets: 2},
				{playID: 1, showTime: fixedNow.Add(-time.Hour), tickets: 2},
			},
			want: &models.PlayRef{ID: 1, Title: "Macbeth"},
		},
		{
			name: "only old tickets",
			performances: []scheduledPerformance{
				{playID: 1, showTime: weekAgo.Add(-48 * time.Hour), tickets: 9},
				{playID: 2, showTime: fixedNow, tickets: 0},
			},
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &scheduledPlays{
				titles:       map[int64]string{1: "Macbeth", 2: "Hamlet"},
				performances: tt.performances,
			}
			svc := NewPlayService(store, staticGenres{}, staticActors{}, nil).
				WithClock(func() time.Time { return fixedNow })

			ref, err := svc.WeekMostPopular(context.Background())

			require.NoError(t, err)
			assert.Equal(t, tt.want, ref)
		})
	}
}

func TestWeekMostPopularNone(t *testing.T) {
	store := &mockPlayStore{}
	store.On("WeekMostPopular", mock.Anything, mock.Anything).Return(nil, nil)

	ref, err := newPlayService(store).WeekMostPopular(context.Background())

	require.NoError(t, err)
	assert.Nil(t, ref)
}

func TestWeekMostPopularCacheHit(t *testing.T) {
	store := &mockPlayStore{}
	cache := &mockCache{}
	cache.On("GetWeekMostPopular", mock.Anything).Return(&models.PlayRef{ID: 5, Title: "Cached"}, true, nil)

	ref, err := newPlayService(store).WithCache(cache).WeekMostPopular(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(5), ref.ID)
	store.AssertNotCalled(t, "WeekMostPopular", mock.Anything, mock.Anything)
}

func TestWeekMostPopularCacheMissStoresResult(t *testing.T) {
	store := &mockPlayStore{}
	store.On("WeekMostPopular", mock.Anything, mock.Anything).Return(nil, nil)
	cache := &mockCache{}
	cache.On("GetWeekMostPopular", mock.Anything).Return(nil, false, nil)
	cache.On("SetWeekMostPopular", mock.Anything, (*models.PlayRef)(nil)).Return(nil).Once()

	ref, err := newPlayService(store).WithCache(cache).WeekMostPopular(context.Background())

	require.NoError(t, err)
	assert.Nil(t, ref)
	cache.AssertExpectations(t)
}

func TestWeekMostPopularCacheErrorFallsBack(t *testing.T) {
	store := &mockPlayStore{}
	store.On("WeekMostPopular", mock.Anything, mock.Anything).Return(&models.PlayRef{ID: 1, Title: "Live"}, nil)
	cache := &mockCache{}
	cache.On("GetWeekMostPopular", mock.Anything).Return(nil, false, errors.New("valkey down"))
	cache.On("SetWeekMostPopular", mock.Anything, mock.Anything).Return(errors.New("valkey down"))

	ref, err := newPlayService(store).WithCache(cache).WeekMostPopular(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Live", ref.Title)
}

func TestListPlays(t *testing.T) {
	store := &mockPlayStore{}
	store.On("List", mock.Anything, []string{"drama"}).Return([]models.Play{{ID: 1, Title: "Hamlet"}}, nil)
	store.On("WeekMostPopular", mock.Anything, mock.Anything).Return(&models.PlayRef{ID: 1, Title: "Hamlet"}, nil)

	plays, popular, err := newPlayService(store).List(context.Background(), []string{"drama"})

	require.NoError(t, err)
	assert.Len(t, plays, 1)
	assert.Equal(t, int64(1), popular.ID)
}

func TestCreatePlayResolvesRelations(t *testing.T) {
	store := &mockPlayStore{}
	store.On("Create", mock.Anything, mock.AnythingOfType("*models.Play")).Run(func(args mock.Arguments) {
		args.Get(1).(*models.Play).ID = 12
	}).Return(nil)
	pub := &mockPublisher{}
	pub.On("Publish", models.EventPlayUpserted, models.PlayUpsertedEvent{PlayID: 12, Timestamp: fixedNow}).Return(nil).Once()

	svc := newPlayService(store)
	svc.publisher = pub
	play, err := svc.Create(context.Background(), models.PlayRequest{
		Title:  "Hamlet",
		Genres: []string{"Drama", "Drama"},
		Actors: []int64{7},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(12), play.ID)
	assert.Equal(t, []string{"Drama"}, play.GenreNames())
	assert.Equal(t, []string{"Ada Stone"}, play.ActorNames())
	pub.AssertExpectations(t)
}

func TestCreatePlayUnknownRelations(t *testing.T) {
	svc := newPlayService(&mockPlayStore{})

	_, err := svc.Create(context.Background(), models.PlayRequest{Title: "X", Genres: []string{"Opera"}})
	var fe *apperrors.FieldError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "genres", fe.Field)
	assert.Equal(t, "Object with name=Opera does not exist.", fe.Message)

	_, err = svc.Create(context.Background(), models.PlayRequest{Title: "X", Actors: []int64{99}})
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, "actors", fe.Field)
}

func TestUpdatePlayKeepsRelationsWhenOmitted(t *testing.T) {
	store := &mockPlayStore{}
	existing := &models.Play{
		ID:     3,
		Title:  "Old",
		Genres: []models.Genre{{ID: 2, Name: "Comedy"}},
		Actors: []models.Actor{{ID: 7, FirstName: "Ada", LastName: "Stone"}},
	}
	store.On("GetByID", mock.Anything, int64(3)).Return(existing, nil)
	store.On("Update", mock.Anything, mock.AnythingOfType("*models.Play")).Return(true, nil)

	title := "New"
	play, err := newPlayService(store).Update(context.Background(), 3, models.PlayPatch{Title: &title})

	require.NoError(t, err)
	assert.Equal(t, "New", play.Title)
	assert.Equal(t, []string{"Comedy"}, play.GenreNames())
	assert.Len(t, play.Actors, 1)
}

func TestDeleteMissingPlay(t *testing.T) {
	store := &mockPlayStore{}
	store.On("Delete", mock.Anything, int64(9)).Return(false, nil)

	err := newPlayService(store).Delete(context.Background(), 9)

	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSearchWithoutBackend(t *testing.T) {
	_, err := newPlayService(&mockPlayStore{}).Search(context.Background(), "hamlet", 10)

	assert.ErrorIs(t, err, ErrSearchUnavailable)
}
