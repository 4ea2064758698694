package database

import (
	"context"
	"fmt"
	"log/slog"
)

// UniqueTicketConstraint guards a seat of a performance against double booking
const UniqueTicketConstraint = "unique_ticket_fields_together"

func (db *DB) RunMigrations(ctx context.Context) error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createUsersTable,
		createGenresTable,
		createActorsTable,
		createPlaysTable,
		createPlayGenresTable,
		createPlayActorsTable,
		createTheaterHallsTable,
		createPerformancesTable,
		createReservationsTable,
		createTicketsTable,
		createPerformancesShowTimeIndex,
		createReservationsUserIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.ExecContext(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createUsersTable = `
CREATE TABLE IF NOT EXISTS users (
    id BIGSERIAL PRIMARY KEY,
    email VARCHAR(255) UNIQUE NOT NULL,
    password_hash VARCHAR(255) NOT NULL,
    is_staff BOOLEAN NOT NULL DEFAULT FALSE,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createGenresTable = `
CREATE TABLE IF NOT EXISTS genres (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) UNIQUE NOT NULL
);`

const createActorsTable = `
CREATE TABLE IF NOT EXISTS actors (
    id BIGSERIAL PRIMARY KEY,
    first_name VARCHAR(255) NOT NULL,
    last_name VARCHAR(255) NOT NULL
);`

const createPlaysTable = `
CREATE TABLE IF NOT EXISTS plays (
    id BIGSERIAL PRIMARY KEY,
    title VARCHAR(255) NOT NULL,
    description TEXT NOT NULL DEFAULT ''
);`

const createPlayGenresTable = `
CREATE TABLE IF NOT EXISTS play_genres (
    play_id BIGINT NOT NULL REFERENCES plays(id) ON DELETE CASCADE,
    genre_id BIGINT NOT NULL REFERENCES genres(id) ON DELETE CASCADE,
    PRIMARY KEY (play_id, genre_id)
);`

const createPlayActorsTable = `
CREATE TABLE IF NOT EXISTS play_actors (
    play_id BIGINT NOT NULL REFERENCES plays(id) ON DELETE CASCADE,
    actor_id BIGINT NOT NULL REFERENCES actors(id) ON DELETE CASCADE,
    PRIMARY KEY (play_id, actor_id)
);`

const createTheaterHallsTable = `
CREATE TABLE IF NOT EXISTS theater_halls (
    id BIGSERIAL PRIMARY KEY,
    name VARCHAR(255) NOT NULL,
    rows INTEGER NOT NULL CHECK (rows > 0 AND rows <= 1000),
    seats_in_row INTEGER NOT NULL CHECK (seats_in_row > 0 AND seats_in_row <= 1000)
);`

const createPerformancesTable = `
CREATE TABLE IF NOT EXISTS performances (
    id BIGSERIAL PRIMARY KEY,
    play_id BIGINT NOT NULL REFERENCES plays(id) ON DELETE CASCADE,
    theater_hall_id BIGINT NOT NULL REFERENCES theater_halls(id) ON DELETE CASCADE,
    show_time TIMESTAMPTZ NOT NULL
);`

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    id BIGSERIAL PRIMARY KEY,
    user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id BIGSERIAL PRIMARY KEY,
    row INTEGER NOT NULL CHECK (row > 0),
    seat INTEGER NOT NULL CHECK (seat > 0),
    performance_id BIGINT NOT NULL REFERENCES performances(id) ON DELETE CASCADE,
    reservation_id BIGINT NOT NULL REFERENCES reservations(id) ON DELETE CASCADE,
    CONSTRAINT ` + UniqueTicketConstraint + ` UNIQUE (row, seat, performance_id)
);`

const createPerformancesShowTimeIndex = `
CREATE INDEX IF NOT EXISTS idx_performances_show_time ON performances(show_time);`

const createReservationsUserIndex = `
CREATE INDEX IF NOT EXISTS idx_reservations_user_created ON reservations(user_id, created_at DESC);`
