package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"theater/cmd/consumers/jobs"
	"theater/internal/config"
	"theater/internal/consumers"
	"theater/internal/logger"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogFormat)
	log := logger.Get()

	if err := cfg.Validate(); err != nil {
		logger.Fatal("Invalid configuration", "error", err)
	}

	// Consumers share one durable queue group; the client id only has to be unique
	cfg.NATS.ClientID = "theater-consumers"

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("Starting consumers service...")

	consumerService, err := consumers.NewConsumerService(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to create consumer service", "error", err)
	}

	if err := consumerService.Start(); err != nil {
		logger.Fatal("Failed to start consumers", "error", err)
	}

	refreshJob := jobs.NewPopularityRefreshJob(consumerService.Plays(), cfg.Jobs.PopularityRefreshInterval)
	if err := refreshJob.Start(ctx); err != nil {
		logger.Fatal("Failed to start popularity refresh job", "error", err)
	}

	log.Info("Consumers service started successfully")

	<-ctx.Done()
	log.Info("Shutting down consumers service...")

	refreshJob.Stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := consumerService.Shutdown(shutdownCtx); err != nil {
		log.Error("Error during shutdown", "error", err)
	}

	log.Info("Consumers service stopped")
}
