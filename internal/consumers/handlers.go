package consumers

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/stan.go"

	"theater/internal/models"
)

// PlayReader loads the current state of a play for indexing
type PlayReader interface {
	GetByID(ctx context.Context, id int64) (*models.Play, error)
}

// PlayIndex is the search index the consumers keep in sync
type PlayIndex interface {
	IndexPlay(ctx context.Context, play models.Play) error
	DeletePlay(ctx context.Context, id int64) error
}

type PopularityInvalidator interface {
	InvalidateWeekMostPopular(ctx context.Context) error
}

// Handlers reacts to domain events. Index and Cache may be nil.
type Handlers struct {
	plays PlayReader
	index PlayIndex
	cache PopularityInvalidator
}

func NewHandlers(plays PlayReader, index PlayIndex, cache PopularityInvalidator) *Handlers {
	return &Handlers{
		plays: plays,
		index: index,
		cache: cache,
	}
}

func (h *Handlers) HandleReservationCreated(m *stan.Msg) {
	ack(m, models.EventReservationCreated, h.handleReservationCreated(context.Background(), m.Data))
}

func (h *Handlers) HandlePlayUpserted(m *stan.Msg) {
	ack(m, models.EventPlayUpserted, h.handlePlayUpserted(context.Background(), m.Data))
}

func (h *Handlers) HandlePlayDeleted(m *stan.Msg) {
	ack(m, models.EventPlayDeleted, h.handlePlayDeleted(context.Background(), m.Data))
}

func (h *Handlers) HandlePerformanceChanged(m *stan.Msg) {
	ack(m, models.EventPerformanceChanged, h.handlePerformanceChanged(context.Background(), m.Data))
}

func (h *Handlers) HandleHallDeleted(m *stan.Msg) {
	ack(m, models.EventHallDeleted, h.handleHallDeleted(context.Background(), m.Data))
}

// ack leaves failed messages unacknowledged so they are redelivered after AckWait
func ack(m *stan.Msg, subject string, err error) {
	if err != nil {
		slog.Error("Failed to process event", "subject", subject, "sequence", m.Sequence, "error", err)
		return
	}
	if err := m.Ack(); err != nil {
		slog.Error("Failed to ack event", "subject", subject, "sequence", m.Sequence, "error", err)
	}
}

func (h *Handlers) handleReservationCreated(ctx context.Context, data []byte) error {
	var event models.ReservationCreatedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		// A malformed payload will never succeed; drop it
		slog.Error("Failed to unmarshal reservation created event", "error", err)
		return nil
	}

	slog.Info("Processing reservation created event",
		"reservation_id", event.ReservationID,
		"user_id", event.UserID,
		"tickets", len(event.Tickets))

	return h.invalidatePopularity(ctx)
}

func (h *Handlers) handlePlayUpserted(ctx context.Context, data []byte) error {
	var event models.PlayUpsertedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		slog.Error("Failed to unmarshal play upserted event", "error", err)
		return nil
	}

	slog.Info("Processing play upserted event", "play_id", event.PlayID)

	if h.index != nil {
		play, err := h.plays.GetByID(ctx, event.PlayID)
		if err != nil {
			return fmt.Errorf("failed to load play %d: %w", event.PlayID, err)
		}

		// Deleted before we got here
		if play == nil {
			if err := h.index.DeletePlay(ctx, event.PlayID); err != nil {
				return fmt.Errorf("failed to remove play %d from index: %w", event.PlayID, err)
			}
		} else if err := h.index.IndexPlay(ctx, *play); err != nil {
			return fmt.Errorf("failed to index play %d: %w", event.PlayID, err)
		}
	}

	// The title in the cached summary may have changed
	return h.invalidatePopularity(ctx)
}

func (h *Handlers) handlePlayDeleted(ctx context.Context, data []byte) error {
	var event models.PlayDeletedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		slog.Error("Failed to unmarshal play deleted event", "error", err)
		return nil
	}

	slog.Info("Processing play deleted event", "play_id", event.PlayID)

	if h.index != nil {
		if err := h.index.DeletePlay(ctx, event.PlayID); err != nil {
			return fmt.Errorf("failed to remove play %d from index: %w", event.PlayID, err)
		}
	}

	return h.invalidatePopularity(ctx)
}

func (h *Handlers) handlePerformanceChanged(ctx context.Context, data []byte) error {
	var event models.PerformanceChangedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		slog.Error("Failed to unmarshal performance changed event", "error", err)
		return nil
	}

	slog.Info("Processing performance changed event",
		"performance_id", event.PerformanceID,
		"play_id", event.PlayID,
		"deleted", event.Deleted)

	return h.invalidatePopularity(ctx)
}

func (h *Handlers) handleHallDeleted(ctx context.Context, data []byte) error {
	var event models.HallDeletedEvent
	if err := json.Unmarshal(data, &event); err != nil {
		slog.Error("Failed to unmarshal hall deleted event", "error", err)
		return nil
	}

	slog.Info("Processing hall deleted event", "hall_id", event.HallID)

	return h.invalidatePopularity(ctx)
}

func (h *Handlers) invalidatePopularity(ctx context.Context) error {
	if h.cache == nil {
		return nil
	}
	if err := h.cache.InvalidateWeekMostPopular(ctx); err != nil {
		return fmt.Errorf("failed to invalidate popularity cache: %w", err)
	}
	return nil
}
