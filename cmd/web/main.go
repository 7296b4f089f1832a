package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/otonolab/autopress/internal/api"
	"github.com/otonolab/autopress/internal/config"
	"github.com/otonolab/autopress/internal/logger"
	"github.com/otonolab/autopress/internal/middleware"
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
	log.Info().Msg("Starting admin server...")

	p, cleanup, err := pipeline.Build(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to build pipeline")
	}
	defer cleanup()

	// Create Fiber app with custom config
	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
		IdleTimeout:  120 * time.Second,
		ErrorHandler: middleware.ErrorHandler,
	})

	// Global middleware
	app.Use(recover.New()) // Recover from panics
	app.Use(middleware.RequestLogger())

	// Setup API routes
	handlers := api.NewHandlers(cfg, p.Store(), p.Generator(), p)
	api.SetupRoutes(app, handlers, cfg)

	// Start server in a goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited properly")
}
