package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"theater/internal/apperrors"
	"theater/internal/models"
)

type seatKey struct {
	performanceID int64
	row, seat     int
}

// memoryStore keeps reservations in memory and enforces seat uniqueness
// with all-or-nothing commits, like the tickets table constraint.
type memoryStore struct {
	mu           sync.Mutex
	nextID       int64
	reservations []models.Reservation
	taken        map[seatKey]bool
	performances map[int64]*models.Performance
}

func newMemoryStore(performances ...*models.Performance) *memoryStore {
	s := &memoryStore{
		taken:        make(map[seatKey]bool),
		performances: make(map[int64]*models.Performance),
	}
	for _, pf := range performances {
		s.performances[pf.ID] = pf
	}
	return s
}

func (s *memoryStore) Create(ctx context.Context, res *models.Reservation) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pending := make(map[seatKey]bool, len(res.Tickets))
	for _, t := range res.Tickets {
		k := seatKey{t.PerformanceID, t.Row, t.Seat}
		if s.taken[k] || pending[k] {
			return &apperrors.SeatAlreadyBookedError{Row: t.Row, Seat: t.Seat, PerformanceID: t.PerformanceID}
		}
		pending[k] = true
	}
	for k := range pending {
		s.taken[k] = true
	}

	s.nextID++
	res.ID = s.nextID
	res.CreatedAt = time.Now()
	for i := range res.Tickets {
		res.Tickets[i].ReservationID = res.ID
	}
	s.reservations = append(s.reservations, *res)
	return nil
}

func (s *memoryStore) ListByUser(ctx context.Context, userID int64) ([]models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []models.Reservation
	for i := len(s.reservations) - 1; i >= 0; i-- {
		if s.reservations[i].UserID == userID {
			out = append(out, s.reservations[i])
		}
	}
	return out, nil
}

func (s *memoryStore) GetByIDForUser(ctx context.Context, id, userID int64) (*models.Reservation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range s.reservations {
		if r.ID == id && r.UserID == userID {
			res := r
			return &res, nil
		}
	}
	return nil, nil
}

func (s *memoryStore) GetByID(ctx context.Context, id int64) (*models.Performance, error) {
	pf, ok := s.performances[id]
	if !ok {
		return nil, nil
	}
	copied := *pf
	return &copied, nil
}

func (s *memoryStore) BookedSeats(ctx context.Context, performanceID int64) ([]models.SeatAddress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var seats []models.SeatAddress
	for k := range s.taken {
		if k.performanceID == performanceID {
			seats = append(seats, models.SeatAddress{Row: k.row, Seat: k.seat})
		}
	}
	sort.Slice(seats, func(i, j int) bool {
		if seats[i].Row != seats[j].Row {
			return seats[i].Row < seats[j].Row
		}
		return seats[i].Seat < seats[j].Seat
	})
	return seats, nil
}

func (s *memoryStore) ticketCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.taken)
}

type mockPublisher struct {
	mock.Mock
}

func (m *mockPublisher) Publish(subject string, data interface{}) error {
	args := m.Called(subject, data)
	return args.Error(0)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetWeekMostPopular(ctx context.Context) (*models.PlayRef, bool, error) {
	args := m.Called(ctx)
	ref, _ := args.Get(0).(*models.PlayRef)
	return ref, args.Bool(1), args.Error(2)
}

func (m *mockCache) SetWeekMostPopular(ctx context.Context, ref *models.PlayRef) error {
	args := m.Called(ctx, ref)
	return args.Error(0)
}

func (m *mockCache) InvalidateWeekMostPopular(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockPlayStore struct {
	mock.Mock
}

func (m *mockPlayStore) List(ctx context.Context, genres []string) ([]models.Play, error) {
	args := m.Called(ctx, genres)
	plays, _ := args.Get(0).([]models.Play)
	return plays, args.Error(1)
}

func (m *mockPlayStore) GetByID(ctx context.Context, id int64) (*models.Play, error) {
	args := m.Called(ctx, id)
	play, _ := args.Get(0).(*models.Play)
	return play, args.Error(1)
}

func (m *mockPlayStore) Create(ctx context.Context, play *models.Play) error {
	args := m.Called(ctx, play)
	return args.Error(0)
}

func (m *mockPlayStore) Update(ctx context.Context, play *models.Play) (bool, error) {
	args := m.Called(ctx, play)
	return args.Bool(0), args.Error(1)
}

func (m *mockPlayStore) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *mockPlayStore) WeekMostPopular(ctx context.Context, since time.Time) (*models.PlayRef, error) {
	args := m.Called(ctx, since)
	ref, _ := args.Get(0).(*models.PlayRef)
	return ref, args.Error(1)
}

type staticGenres []models.Genre

func (g staticGenres) GetByNames(ctx context.Context, names []string) ([]models.Genre, error) {
	var out []models.Genre
	for _, genre := range g {
		for _, n := range names {
			if genre.Name == n {
				out = append(out, genre)
				break
			}
		}
	}
	return out, nil
}

type staticActors []models.Actor

func (a staticActors) GetByIDs(ctx context.Context, ids []int64) ([]models.Actor, error) {
	var out []models.Actor
	for _, actor := range a {
		for _, id := range ids {
			if actor.ID == id {
				out = append(out, actor)
				break
			}
		}
	}
	return out, nil
}

// memoryPerformances exposes the performances of a memoryStore as a
// PerformanceStore
type memoryPerformances struct {
	store *memoryStore
}

func (p memoryPerformances) List(ctx context.Context, filter models.PerformanceFilter) ([]models.Performance, error) {
	var out []models.Performance
	for _, pf := range p.store.performances {
		if filter.PlayID != nil && pf.PlayID != *filter.PlayID {
			continue
		}
		out = append(out, *pf)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (p memoryPerformances) GetByID(ctx context.Context, id int64) (*models.Performance, error) {
	return p.store.GetByID(ctx, id)
}

func (p memoryPerformances) Create(ctx context.Context, pf *models.Performance) error {
	pf.ID = int64(len(p.store.performances) + 1)
	copied := *pf
	copied.TheaterHall = &models.TheaterHall{ID: pf.TheaterHallID, Rows: 5, SeatsInRow: 5}
	p.store.performances[pf.ID] = &copied
	return nil
}

func (p memoryPerformances) Update(ctx context.Context, pf *models.Performance) (bool, error) {
	existing, ok := p.store.performances[pf.ID]
	if !ok {
		return false, nil
	}
	existing.PlayID = pf.PlayID
	existing.TheaterHallID = pf.TheaterHallID
	existing.ShowTime = pf.ShowTime
	return true, nil
}

func (p memoryPerformances) Delete(ctx context.Context, id int64) (bool, error) {
	if _, ok := p.store.performances[id]; !ok {
		return false, nil
	}
	delete(p.store.performances, id)
	return true, nil
}

type staticPlays map[int64]*models.Play

func (p staticPlays) GetByID(ctx context.Context, id int64) (*models.Play, error) {
	return p[id], nil
}

type staticHalls map[int64]*models.TheaterHall

func (h staticHalls) GetByID(ctx context.Context, id int64) (*models.TheaterHall, error) {
	return h[id], nil
}
