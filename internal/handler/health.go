package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/deppfellow/notify-dispatch/internal/middleware"
	"github.com/deppfellow/notify-dispatch/internal/server"
	"github.com/labstack/echo/v4"
)

// HealthHandler reports liveness plus the reachability of the clients the
// configured drivers use.
type HealthHandler struct {
	Handler
}

func NewHealthHandler(s *server.Server) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
	}
}

type healthCheck struct {
	name string
	ping func(ctx context.Context) error
}

func (h *HealthHandler) checks() []healthCheck {
	var checks []healthCheck
	if h.server.DB != nil {
		checks = append(checks, healthCheck{"database", h.server.DB.Pool.Ping})
	}
	if h.server.Redis != nil {
		checks = append(checks, healthCheck{"redis", func(ctx context.Context) error {
			return h.server.Redis.Ping(ctx).Err()
		}})
	}
	return checks
}

// CheckHealth returns 200 when every check passes and 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	cfg := h.server.Config.Observability.HealthChecks

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	results := make(map[string]interface{})
	response := map[string]interface{}{
		"status":      "healthy",
		"timestamp":   time.Now().UTC(),
		"environment": h.server.Config.Primary.Env,
		"store":       h.server.Config.Store.Driver,
		"channels":    h.server.Config.Channels.Driver,
		"checks":      results,
	}

	isHealthy := true

	if cfg.Enabled {
		for _, check := range h.checks() {
			ctx, cancel := context.WithTimeout(c.Request().Context(), cfg.Timeout)
			checkStart := time.Now()
			err := check.ping(ctx)
			elapsed := time.Since(checkStart)
			cancel()

			if err != nil {
				isHealthy = false
				results[check.name] = map[string]interface{}{
					"status":        "unhealthy",
					"response_time": elapsed.String(),
					"error":         err.Error(),
				}

				logger.Error().Err(err).
					Str("check", check.name).
					Dur("response_time", elapsed).
					Msg("health check failed")

				h.recordFailure(check.name, elapsed, err)
				continue
			}

			results[check.name] = map[string]interface{}{
				"status":        "healthy",
				"response_time": elapsed.String(),
			}
		}
	}

	if !isHealthy {
		response["status"] = "unhealthy"
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")
	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) recordFailure(check string, elapsed time.Duration, err error) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}
	app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
		"check_type":       check,
		"operation":        "health_check",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    err.Error(),
	})
}
