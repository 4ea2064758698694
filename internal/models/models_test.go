package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayShapes(t *testing.T) {
	play := Play{
		ID:          3,
		Title:       "Hamlet",
		Description: "Prince of Denmark",
		Genres:      []Genre{{ID: 1, Name: "Drama"}, {ID: 2, Name: "Tragedy"}},
		Actors:      []Actor{{ID: 5, FirstName: "Ada", LastName: "Stone"}},
	}

	item := NewPlayListItem(play)
	assert.Equal(t, []string{"Drama", "Tragedy"}, item.GenreList)
	assert.Equal(t, []string{"Ada Stone"}, item.ActorList)

	detail := NewPlayDetail(play)
	assert.Len(t, detail.Genres, 2)
	assert.Equal(t, "Stone", detail.Actors[0].LastName)

	body, err := json.Marshal(NewPlayDetail(Play{ID: 1, Title: "Bare"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":1,"title":"Bare","description":"","genres":[],"actors":[]}`, string(body))
}

func TestPlayListResponseWithoutPopular(t *testing.T) {
	body, err := json.Marshal(PlayListResponse{Results: []PlayListItem{}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"week_most_popular":null,"results":[]}`, string(body))
}

func TestReservationResponse(t *testing.T) {
	show := time.Date(2024, 3, 9, 19, 30, 0, 0, time.UTC)
	perf := &Performance{
		ID:          7,
		ShowTime:    show,
		Play:        &Play{Title: "Hamlet"},
		TheaterHall: &TheaterHall{Name: "Blue"},
	}
	res := Reservation{
		ID:        11,
		UserEmail: "viewer@example.com",
		CreatedAt: show.Add(-time.Hour),
		Tickets:   []Ticket{{Row: 2, Seat: 4, PerformanceID: 7, Performance: perf}},
	}

	resp := NewReservationResponse(res)
	assert.Equal(t, "viewer@example.com", resp.User)
	require.Len(t, resp.Tickets, 1)
	assert.Equal(t, TicketResponse{Row: 2, Seat: 4, Play: "Hamlet", Hall: "Blue", ShowTime: "2024-03-09 19:30"}, resp.Tickets[0])
}

func TestTicketInputs(t *testing.T) {
	row, seat, perf := 1, 2, int64(3)
	req := CreateReservationRequest{Tickets: []TicketRequest{{Row: &row, Seat: &seat, Performance: &perf}}}

	assert.Equal(t, []TicketInput{{Row: 1, Seat: 2, PerformanceID: 3}}, req.TicketInputs())
}

func TestPlayRequestPatchClearsRelations(t *testing.T) {
	patch := PlayRequest{Title: "Solo"}.Patch()

	assert.NotNil(t, patch.Genres)
	assert.Empty(t, patch.Genres)
	assert.NotNil(t, patch.Actors)
	assert.Equal(t, "Solo", *patch.Title)
}

func TestActorJSONIncludesFullName(t *testing.T) {
	data, err := json.Marshal(Actor{ID: 5, FirstName: "Ada", LastName: "Stone"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":5,"first_name":"Ada","last_name":"Stone","full_name":"Ada Stone"}`, string(data))
}
