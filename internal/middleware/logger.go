package middleware

import (
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/otonolab/autopress/internal/logger"
)

// RequestLogger logs every handled request with latency and outcome
func RequestLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		event := logger.Get().Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Str("ip", c.IP()).
			Dur("latency", time.Since(start))

		if err != nil {
			event = event.Err(err)
		}

		event.Msg("request")
		return err
	}
}

// ErrorHandler renders unhandled errors as consistent JSON
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	logger.Get().Error().
		Err(err).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Int("status", code).
		Msg("HTTP error")

	return c.Status(code).JSON(fiber.Map{
		"error": http.StatusText(code),
	})
}
