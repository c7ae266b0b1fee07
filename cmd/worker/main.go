package main

import (
	"context"
	"os/signal"
	"syscall"

	"rideshare/internal/app"
	"rideshare/internal/config"
	"rideshare/internal/logger"
)

// Worker consumes notification messages and renders notices for recipients.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("load config")
	}
	logger.Configure(logger.Config{Level: cfg.LogLevel, Pretty: cfg.LogPretty})
	log := logger.With("worker")

	if err := cfg.ValidateWorker(); err != nil {
		log.Fatal().Err(err).Msg("invalid worker config")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Migrations and seed data are owned by the api.
	cfg.MigrateOnStart = false
	cfg.SeedEvents = false
	svc, err := app.Build(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("wire services")
	}
	defer svc.Close()

	log.Info().Str("queue", cfg.QueueKey).Msg("worker started, waiting for messages")
	if err := app.Consume(ctx, svc.Queue, svc.Processor(cfg, log), log); err != nil {
		log.Fatal().Err(err).Msg("consume")
	}
	log.Info().Msg("worker stopped")
}
