package models

import (
	"encoding/json"
	"time"
)

// User represents an account that can hold reservations
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	IsStaff      bool      `json:"is_staff" db:"is_staff"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

type Genre struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

type Actor struct {
	ID        int64  `json:"id" db:"id"`
	FirstName string `json:"first_name" db:"first_name"`
	LastName  string `json:"last_name" db:"last_name"`
}

func (a Actor) FullName() string {
	return a.FirstName + " " + a.LastName
}

// MarshalJSON adds full_name to the actor representation
func (a Actor) MarshalJSON() ([]byte, error) {
	type actor Actor
	return json.Marshal(struct {
		actor
		FullName string `json:"full_name"`
	}{actor(a), a.FullName()})
}

// Play is a production that can be staged in one or more performances
type Play struct {
	ID          int64   `json:"id" db:"id"`
	Title       string  `json:"title" db:"title"`
	Description string  `json:"description" db:"description"`
	Genres      []Genre `json:"genres"`
	Actors      []Actor `json:"actors"`
}

func (p Play) GenreNames() []string {
	names := make([]string, 0, len(p.Genres))
	for _, g := range p.Genres {
		names = append(names, g.Name)
	}
	return names
}

func (p Play) ActorNames() []string {
	names := make([]string, 0, len(p.Actors))
	for _, a := range p.Actors {
		names = append(names, a.FullName())
	}
	return names
}

// TheaterHall is a rectangular seating grid of Rows x SeatsInRow
type TheaterHall struct {
	ID         int64  `json:"id" db:"id"`
	Name       string `json:"name" db:"name"`
	Rows       int    `json:"rows" db:"rows"`
	SeatsInRow int    `json:"seats_in_row" db:"seats_in_row"`
}

func (h TheaterHall) Capacity() int {
	return h.Rows * h.SeatsInRow
}

// Performance is a scheduled showing of a play in a hall.
// Play and TheaterHall are populated by queries that join them.
type Performance struct {
	ID            int64        `json:"id" db:"id"`
	PlayID        int64        `json:"play_id" db:"play_id"`
	TheaterHallID int64        `json:"theater_hall_id" db:"theater_hall_id"`
	ShowTime      time.Time    `json:"show_time" db:"show_time"`
	Play          *Play        `json:"-"`
	TheaterHall   *TheaterHall `json:"-"`
}

// Reservation groups tickets booked together by one user
type Reservation struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"user_id" db:"user_id"`
	UserEmail string    `json:"-"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	Tickets   []Ticket  `json:"tickets"`
}

// Ticket is one booked seat of one performance
type Ticket struct {
	ID            int64        `json:"id" db:"id"`
	Row           int          `json:"row" db:"row"`
	Seat          int          `json:"seat" db:"seat"`
	PerformanceID int64        `json:"performance_id" db:"performance_id"`
	ReservationID int64        `json:"reservation_id" db:"reservation_id"`
	Performance   *Performance `json:"-"`
}

// SeatAddress identifies a seat within a hall
type SeatAddress struct {
	Row  int `json:"row"`
	Seat int `json:"seat"`
}

// PlayRef is the short form of a play used by the popularity summary
type PlayRef struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}
