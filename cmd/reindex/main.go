package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"time"

	"theater/internal/config"
	"theater/internal/database"
	"theater/internal/logger"
	"theater/internal/models"
	"theater/internal/repository"
	"theater/internal/search"
)

type PlayLister interface {
	List(ctx context.Context, genres []string) ([]models.Play, error)
}

type PlayIndexer interface {
	IndexPlay(ctx context.Context, play models.Play) error
}

func main() {
	var playID int64
	flag.Int64Var(&playID, "play-id", 0, "Reindex a single play (0 = all plays)")
	flag.Parse()

	// Load configuration
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	slog.Info("Starting search reindex", "index", cfg.Elasticsearch.Index)

	ctx := context.Background()

	// Connect to database
	db, err := database.ConnectAndWait(ctx, cfg.Database, cfg.DBWaitTimeout)
	if err != nil {
		logger.Fatal("Failed to connect to database", "error", err)
	}
	defer db.Close()

	esClient, err := search.NewElasticsearchClient(cfg.Elasticsearch)
	if err != nil {
		logger.Fatal("Failed to connect to Elasticsearch", "error", err)
	}

	plays := repository.NewPlayRepository(db)

	if playID > 0 {
		play, err := plays.GetByID(ctx, playID)
		if err != nil {
			logger.Fatal("Failed to load play", "play_id", playID, "error", err)
		}
		if play == nil {
			logger.Fatal("Play not found", "play_id", playID)
		}
		if err := esClient.IndexPlay(ctx, *play); err != nil {
			logger.Fatal("Failed to index play", "play_id", playID, "error", err)
		}
		slog.Info("Play reindexed", "play_id", playID)
		return
	}

	indexed, err := reindexAll(ctx, plays, esClient)
	if err != nil {
		logger.Fatal("Reindex failed", "error", err)
	}

	count, err := esClient.Count(ctx)
	if err != nil {
		slog.Warn("Failed to count indexed documents", "error", err)
	}
	slog.Info("Search reindex completed", "indexed", indexed, "documents", count)
}

// reindexAll pushes every play to the index; a failing play is logged and
// skipped, the error reports how many failed
func reindexAll(ctx context.Context, plays PlayLister, index PlayIndexer) (int, error) {
	start := time.Now()

	list, err := plays.List(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to list plays: %w", err)
	}
	slog.Info("Loaded plays", "count", len(list))

	indexed, failed := 0, 0
	for _, play := range list {
		if err := index.IndexPlay(ctx, play); err != nil {
			slog.Error("Failed to index play", "play_id", play.ID, "error", err)
			failed++
			continue
		}
		indexed++
	}

	elapsed := time.Since(start)
	slog.Info("Indexed plays",
		"indexed", indexed,
		"failed", failed,
		"duration", elapsed.String())

	if failed > 0 {
		return indexed, fmt.Errorf("%d of %d plays failed to index", failed, len(list))
	}
	return indexed, nil
}
