package models

import "time"

// NATS Event Types
const (
	EventReservationCreated = "reservation.created"
	EventPlayUpserted       = "play.upserted"
	EventPlayDeleted        = "play.deleted"
	EventPerformanceChanged = "performance.changed"
	EventHallDeleted        = "hall.deleted"
)

// ReservationCreatedEvent is published after a reservation commits
type ReservationCreatedEvent struct {
	ReservationID int64            `json:"reservation_id"`
	UserID        int64            `json:"user_id"`
	Tickets       []TicketSnapshot `json:"tickets"`
	Timestamp     time.Time        `json:"timestamp"`
}

type TicketSnapshot struct {
	PerformanceID int64 `json:"performance_id"`
	Row           int   `json:"row"`
	Seat          int   `json:"seat"`
}

// PlayUpsertedEvent is published when a play is created or updated
type PlayUpsertedEvent struct {
	PlayID    int64     `json:"play_id"`
	Timestamp time.Time `json:"timestamp"`
}

type PlayDeletedEvent struct {
	PlayID    int64     `json:"play_id"`
	Timestamp time.Time `json:"timestamp"`
}

// PerformanceChangedEvent is published on any performance write. Deleted is
// set when the performance no longer exists.
type PerformanceChangedEvent struct {
	PerformanceID int64     `json:"performance_id"`
	PlayID        int64     `json:"play_id"`
	Deleted       bool      `json:"deleted"`
	Timestamp     time.Time `json:"timestamp"`
}

// HallDeletedEvent is published after a hall and, by cascade, its
// performances and tickets are removed
type HallDeletedEvent struct {
	HallID    int64     `json:"hall_id"`
	Timestamp time.Time `json:"timestamp"`
}
