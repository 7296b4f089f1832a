package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/otonolab/autopress/internal/config"
	"github.com/otonolab/autopress/internal/logger"
	"github.com/otonolab/autopress/internal/middleware"
	"github.com/otonolab/autopress/internal/models"
	"github.com/otonolab/autopress/internal/topics"
)

// Runner triggers one pipeline run; the admin API never blocks on it.
type Runner interface {
	Run(ctx context.Context) error
}

type Handlers struct {
	config    *config.Config
	store     *topics.Store
	generator *topics.Generator
	runner    Runner
	validator *middleware.Validator
}

func NewHandlers(cfg *config.Config, store *topics.Store, generator *topics.Generator, runner Runner) *Handlers {
	return &Handlers{
		config:    cfg,
		store:     store,
		generator: generator,
		runner:    runner,
		validator: middleware.NewValidator(),
	}
}

// HealthCheck handles the /health endpoint
func (h *Handlers) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
		"env":    h.config.Env,
		"time":   time.Now().Format(time.RFC3339),
	})
}

// ListTopics handles GET /api/topics
func (h *Handlers) ListTopics(c *fiber.Ctx) error {
	all := h.store.Topics()
	return c.JSON(fiber.Map{
		"total":  len(all),
		"unused": h.store.UnusedCount(),
		"themes": all,
	})
}

// UnusedCount handles GET /api/topics/unused
func (h *Handlers) UnusedCount(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"unused": h.store.UnusedCount(),
	})
}

type appendTopicsRequest struct {
	Topics []newTopic `json:"topics" validate:"required,min=1,dive"`
}

type newTopic struct {
	Title      string   `json:"title" validate:"required"`
	Keywords   []string `json:"keywords"`
	TargetPain string   `json:"target_pain"`
	Approach   string   `json:"approach"`
}

// AppendTopics handles POST /api/admin/topics. Ids continue from the
// current maximum, same as generated batches.
func (h *Handlers) AppendTopics(c *fiber.Ctx) error {
	var req appendTopicsRequest
	if !h.validator.ParseAndValidate(c, &req) {
		return nil
	}

	nextID := maxID(h.store.Topics()) + 1
	batch := make([]models.Topic, 0, len(req.Topics))
	for i, t := range req.Topics {
		batch = append(batch, models.Topic{
			ID:         nextID + i,
			Title:      t.Title,
			Keywords:   t.Keywords,
			TargetPain: t.TargetPain,
			Approach:   t.Approach,
		})
	}

	if err := h.store.Append(batch); err != nil {
		logger.Get().Error().Err(err).Msg("Failed to append topics")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to append topics",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"appended": len(batch),
		"unused":   h.store.UnusedCount(),
	})
}

type generateTopicsRequest struct {
	Count int `json:"count" validate:"required,min=1,max=20"`
}

// GenerateTopics handles POST /api/admin/topics/generate
func (h *Handlers) GenerateTopics(c *fiber.Ctx) error {
	var req generateTopicsRequest
	if !h.validator.ParseAndValidate(c, &req) {
		return nil
	}

	generated, err := h.generator.Generate(c.Context(), req.Count, h.store.Topics())
	if err != nil {
		logger.Get().Error().Err(err).Msg("Topic generation failed")
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "Topic generation failed",
		})
	}

	if err := h.store.Append(generated); err != nil {
		logger.Get().Error().Err(err).Msg("Failed to append generated topics")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to persist generated topics",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"generated": len(generated),
		"unused":    h.store.UnusedCount(),
	})
}

// ResetTopics handles POST /api/admin/topics/reset
func (h *Handlers) ResetTopics(c *fiber.Ctx) error {
	if err := h.store.ResetAll(); err != nil {
		logger.Get().Error().Err(err).Msg("Failed to reset topics")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to reset topics",
		})
	}

	return c.JSON(fiber.Map{
		"unused": h.store.UnusedCount(),
	})
}

// TriggerRun handles POST /api/admin/run. The run happens in the
// background; publishing takes a minute or two and nobody wants to hold
// an HTTP connection open for it.
func (h *Handlers) TriggerRun(c *fiber.Ctx) error {
	if h.runner == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Pipeline is not configured",
		})
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()

		if err := h.runner.Run(ctx); err != nil {
			logger.Get().Error().Err(err).Msg("Triggered pipeline run failed")
			return
		}
		logger.Get().Info().Msg("Triggered pipeline run finished")
	}()

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "started",
	})
}

func maxID(all []models.Topic) int {
	max := 0
	for _, topic := range all {
		if topic.ID > max {
			max = topic.ID
		}
	}
	return max
}
