package consumers

import (
	"context"
	"log/slog"

	"github.com/nats-io/stan.go"

	"theater/internal/cache"
	"theater/internal/config"
	"theater/internal/database"
	"theater/internal/messaging"
	"theater/internal/models"
	"theater/internal/repository"
	"theater/internal/search"
	"theater/internal/service"
)

const queueGroup = "consumers"

type ConsumerService struct {
	db       *database.DB
	nats     *messaging.NATSClient
	valkey   *cache.ValkeyClient
	es       *search.ElasticsearchClient
	repos    *repository.Repositories
	plays    *service.PlayService
	handlers *Handlers
}

func NewConsumerService(ctx context.Context, cfg *config.Config) (*ConsumerService, error) {
	// Connect to database
	db, err := database.ConnectAndWait(ctx, cfg.Database, cfg.DBWaitTimeout)
	if err != nil {
		return nil, err
	}

	// Connect to NATS
	natsClient, err := messaging.NewNATSClient(cfg.NATS)
	if err != nil {
		db.Close()
		return nil, err
	}

	cs := &ConsumerService{
		db:    db,
		nats:  natsClient,
		repos: repository.NewRepositories(db),
	}

	// Cache and search are optional: a consumer without them only logs
	var invalidator PopularityInvalidator
	var popularity service.PopularityCache
	if cfg.Valkey.Enabled {
		valkeyClient, err := cache.NewValkeyClient(cfg.Valkey)
		if err != nil {
			slog.Warn("Valkey unavailable, popularity cache disabled", "error", err)
		} else {
			cs.valkey = valkeyClient
			invalidator = valkeyClient
			popularity = valkeyClient
		}
	}

	var index PlayIndex
	if cfg.Elasticsearch.Enabled {
		esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
		if err != nil {
			slog.Warn("Elasticsearch unavailable, search indexing disabled", "error", err)
		} else {
			cs.es = esClient
			index = esClient
		}
	}

	cs.plays = service.NewPlayService(cs.repos.Plays, cs.repos.Genres, cs.repos.Actors, nil).
		WithCache(popularity)
	cs.handlers = NewHandlers(cs.repos.Plays, index, invalidator)

	return cs, nil
}

// Plays exposes the play service for scheduled jobs
func (cs *ConsumerService) Plays() *service.PlayService {
	return cs.plays
}

func (cs *ConsumerService) Start() error {
	slog.Info("Starting NATS consumers...")

	subscriptions := []struct {
		subject string
		handler stan.MsgHandler
	}{
		{models.EventReservationCreated, cs.handlers.HandleReservationCreated},
		{models.EventPlayUpserted, cs.handlers.HandlePlayUpserted},
		{models.EventPlayDeleted, cs.handlers.HandlePlayDeleted},
		{models.EventPerformanceChanged, cs.handlers.HandlePerformanceChanged},
		{models.EventHallDeleted, cs.handlers.HandleHallDeleted},
	}

	for _, sub := range subscriptions {
		if err := cs.nats.SubscribeQueue(sub.subject, queueGroup, sub.handler); err != nil {
			return err
		}
	}

	slog.Info("All consumers started successfully")
	return nil
}

func (cs *ConsumerService) Shutdown(ctx context.Context) error {
	slog.Info("Shutting down consumer service...")

	if cs.nats != nil {
		if err := cs.nats.Close(); err != nil {
			slog.Error("Error closing NATS connection", "error", err)
		}
	}

	if cs.valkey != nil {
		if err := cs.valkey.Close(); err != nil {
			slog.Error("Error closing Valkey connection", "error", err)
		}
	}

	if cs.db != nil {
		if err := cs.db.Close(); err != nil {
			slog.Error("Error closing database connection", "error", err)
			return err
		}
	}

	return nil
}
