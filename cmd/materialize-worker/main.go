package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"richr/internal/backend"
	"richr/internal/config"
	"richr/internal/core"
	"richr/internal/log"
	"richr/internal/materialize"
)

func main() {
	// Load .env for local development; absent in production is fine.
	_ = godotenv.Load()

	logger := log.New(log.Config{Component: log.ComponentMaterialize})
	log.SetDefault(logger)

	logger.Info("Starting materialize-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	st, err := backend.Open(cfg)
	if err != nil {
		logger.Error("Failed to open data backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer st.Close()

	processor := materialize.NewProcessor(st)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Materializer configured",
		"interval", cfg.MaterializeInterval,
		"sqlite_db", cfg.SQLiteDBPath)

	ticker := time.NewTicker(cfg.MaterializeInterval)
	defer ticker.Stop()

	// Catch up immediately on startup, then on every tick.
	runOnce(ctx, logger, processor, time.Now())

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				runOnce(ctx, logger, processor, now)
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Materialize-worker shutdown complete")
}

func runOnce(ctx context.Context, logger *log.Logger, processor *materialize.Processor, now time.Time) {
	committed, err := processor.Run(ctx, core.DateOf(now))
	if err != nil {
		logger.Error("Materialization pass failed", "error", err)
		return
	}
	logger.Info("Materialization pass complete", "transactions_created", committed)
}
