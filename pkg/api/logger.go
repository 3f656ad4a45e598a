package api

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// NewLogger returns request logging middleware. Driver apps report positions
// every few seconds, so successful position writes log at debug to keep the
// info stream readable.
func NewLogger() fiber.Handler {
	return func(c *fiber.Ctx) error {
		startTime := time.Now()
		err := c.Next()

		message := "HTTP Request"
		if err != nil {
			message = err.Error()
		}

		statusCode := c.Response().StatusCode()

		ipAddress := c.IP()
		if cloudflareConnectingIP := c.Get("CF-Connecting-IP", ""); cloudflareConnectingIP != "" {
			ipAddress = cloudflareConnectingIP
		}

		requestLogger := log.With().
			Int("status", statusCode).
			Str("method", c.Method()).
			Str("path", c.Path()).
			Str("ip", ipAddress).
			Dur("latency", time.Since(startTime)).
			Str("user-agent", c.Get(fiber.HeaderUserAgent)).
			Logger()

		switch {
		case statusCode >= fiber.StatusInternalServerError:
			requestLogger.Error().Msg(message)
		case statusCode >= fiber.StatusBadRequest:
			requestLogger.Warn().Msg(message)
		case c.Route().Path == "/core/vehicles/position" && statusCode < fiber.StatusBadRequest:
			requestLogger.Debug().Msg(message)
		default:
			requestLogger.Info().Msg(message)
		}

		return nil
	}
}
