package main

import (
	"fmt"
	"math/rand"
	"time"

	"theater/internal/models"
)

var (
	demoGenres = []string{"Drama", "Comedy", "Tragedy", "Musical", "Opera", "Ballet"}

	demoFirstNames = []string{"Anna", "Boris", "Clara", "Dmitri", "Elena", "Fyodor", "Galina", "Ivan"}
	demoLastNames  = []string{"Petrova", "Sokolov", "Ivanova", "Orlov", "Volkova", "Smirnov"}

	demoTitles = []string{
		"Hamlet", "The Cherry Orchard", "The Seagull", "Uncle Vanya",
		"Three Sisters", "The Inspector General", "Swan Lake", "Eugene Onegin",
	}
)

type DemoPlay struct {
	Title       string
	Description string
	Genres      []string
	ActorIdx    []int
}

type DemoPerformance struct {
	PlayIdx  int
	HallIdx  int
	ShowTime time.Time
}

type DemoReservation struct {
	PerformanceIdx int
	Seats          []models.SeatAddress
}

// DemoPlan описывает демо-данные; индексы ссылаются на элементы плана
type DemoPlan struct {
	Genres       []string
	Actors       []models.ActorRequest
	Halls        []models.TheaterHallRequest
	Plays        []DemoPlay
	Performances []DemoPerformance
	Reservations []DemoReservation
}

func buildDemoPlan(r *rand.Rand, now time.Time) DemoPlan {
	plan := DemoPlan{Genres: demoGenres}

	for i := 0; i < 12; i++ {
		plan.Actors = append(plan.Actors, models.ActorRequest{
			FirstName: demoFirstNames[r.Intn(len(demoFirstNames))],
			LastName:  demoLastNames[r.Intn(len(demoLastNames))],
		})
	}

	for i, name := range []string{"Main Stage", "Chamber Hall", "Studio"} {
		plan.Halls = append(plan.Halls, models.TheaterHallRequest{
			Name:       name,
			Rows:       r.Intn(11) + 5 - i*2,
			SeatsInRow: r.Intn(11) + 10 - i*3,
		})
	}

	for _, title := range demoTitles {
		genres := []string{demoGenres[r.Intn(len(demoGenres))]}
		if extra := demoGenres[r.Intn(len(demoGenres))]; extra != genres[0] {
			genres = append(genres, extra)
		}
		plan.Plays = append(plan.Plays, DemoPlay{
			Title:       title,
			Description: fmt.Sprintf("A production of %s.", title),
			Genres:      genres,
			ActorIdx:    r.Perm(len(plan.Actors))[:r.Intn(4)+1],
		})
	}

	// Часть сеансов в прошлой неделе, чтобы был самый популярный спектакль
	start := now.Truncate(time.Hour).Add(-6 * 24 * time.Hour)
	for day := 0; day < 14; day++ {
		for slot := 0; slot < 2; slot++ {
			plan.Performances = append(plan.Performances, DemoPerformance{
				PlayIdx:  r.Intn(len(plan.Plays)),
				HallIdx:  r.Intn(len(plan.Halls)),
				ShowTime: start.Add(time.Duration(day)*24*time.Hour + time.Duration(14+slot*5)*time.Hour),
			})
		}
	}

	for i, pf := range plan.Performances {
		hall := plan.Halls[pf.HallIdx]
		for n := r.Intn(4); n > 0; n-- {
			row := r.Intn(hall.Rows) + 1
			first := r.Intn(hall.SeatsInRow) + 1
			seats := []models.SeatAddress{{Row: row, Seat: first}}
			if first < hall.SeatsInRow {
				seats = append(seats, models.SeatAddress{Row: row, Seat: first + 1})
			}
			plan.Reservations = append(plan.Reservations, DemoReservation{PerformanceIdx: i, Seats: seats})
		}
	}

	return plan
}
