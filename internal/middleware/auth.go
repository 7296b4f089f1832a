package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/otonolab/autopress/internal/logger"
)

// AdminOnly guards the mutating topic-store endpoints behind the
// configured admin API key, passed in the X-API-Key header. An empty
// configured key disables the admin surface entirely rather than
// leaving it open.
func AdminOnly(adminKey string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if adminKey == "" {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin API is disabled",
			})
		}

		apiKey := c.Get("X-API-Key")
		if apiKey == "" {
			logger.Get().Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Admin access attempt without API key")

			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "API key is required",
			})
		}

		if apiKey != adminKey {
			logger.Get().Warn().
				Str("method", c.Method()).
				Str("path", c.Path()).
				Str("ip", c.IP()).
				Msg("Unauthorized admin access attempt")

			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"error": "Admin access required",
			})
		}

		return c.Next()
	}
}
