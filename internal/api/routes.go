package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/otonolab/autopress/internal/config"
	"github.com/otonolab/autopress/internal/middleware"
)

// SetupRoutes registers the topic-store admin API
func SetupRoutes(app *fiber.App, h *Handlers, cfg *config.Config) {
	app.Get("/health", h.HealthCheck)

	apiGroup := app.Group("/api")
	apiGroup.Get("/topics", h.ListTopics)
	apiGroup.Get("/topics/unused", h.UnusedCount)

	admin := apiGroup.Group("/admin", middleware.AdminOnly(cfg.AdminAPIKey))
	admin.Post("/topics", h.AppendTopics)
	admin.Post("/topics/generate", h.GenerateTopics)
	admin.Post("/topics/reset", h.ResetTopics)
	admin.Post("/run", h.TriggerRun)
}
