package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/otonolab/autopress/internal/config"
	"github.com/otonolab/autopress/internal/logger"
	"github.com/otonolab/autopress/internal/pipeline"
)

func main() {
	// Load and validate configuration
	cfg := config.Load()

	// Initialize logger
	if err := logger.Init(logger.Config{
		Level:  cfg.LogLevel,
		Output: "stdout",
		Pretty: cfg.Env == "development",
	}); err != nil {
		panic(err)
	}

	log := logger.Get()
	log.Info().Msg("Starting pipeline run...")

	// Cancel the run on SIGINT/SIGTERM so a half-finished run stops
	// before the publish step instead of mid-request
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, cleanup, err := pipeline.Build(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to build pipeline")
		os.Exit(1)
	}

	if err := p.Run(ctx); err != nil {
		log.Error().Err(err).Msg("Pipeline run failed")
		cleanup()
		os.Exit(1)
	}

	cleanup()
	log.Info().Msg("Pipeline run finished")
}
