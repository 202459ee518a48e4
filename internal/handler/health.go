package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/schema-pipeline/internal/config"
	"github.com/deppfellow/schema-pipeline/internal/middleware"
	"github.com/deppfellow/schema-pipeline/internal/server"
)

// HealthHandler serves GET /health. It reports whether pipeline routes are
// registered and whether the metrics registry can be gathered.
type HealthHandler struct {
	Handler
	routes *RouteTable
}

func NewHealthHandler(s *server.Server, routes *RouteTable) *HealthHandler {
	return &HealthHandler{
		Handler: NewHandler(s),
		routes:  routes,
	}
}

type checkResult struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type healthResponse struct {
	Status      string                 `json:"status"`
	Timestamp   time.Time              `json:"timestamp"`
	Environment string                 `json:"environment"`
	Uptime      string                 `json:"uptime"`
	Checks      map[string]checkResult `json:"checks"`
}

// CheckHealth returns 200 when every configured check passes, 503 otherwise.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()

	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	response := healthResponse{
		Status:      "healthy",
		Timestamp:   start.UTC(),
		Environment: h.server.Config.Primary.Env,
		Uptime:      time.Since(h.server.StartedAt).Round(time.Second).String(),
		Checks:      make(map[string]checkResult),
	}

	obs := h.server.Config.Observability
	if obs != nil && obs.HealthChecks.Enabled {
		ctx := c.Request().Context()
		if obs.HealthChecks.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, obs.HealthChecks.Timeout)
			defer cancel()
		}

		for _, name := range obs.HealthChecks.Checks {
			checkStart := time.Now()
			err := h.runCheck(ctx, name)

			result := checkResult{
				Status:       "healthy",
				ResponseTime: time.Since(checkStart).String(),
			}
			if err != nil {
				result.Status = "unhealthy"
				result.Error = err.Error()
				response.Status = "unhealthy"

				logger.Error().Err(err).Str("check", name).Msg("health check failed")

				if app := h.server.LoggerService.GetApplication(); app != nil {
					app.RecordCustomEvent("HealthCheckError", map[string]any{
						"check_type":       name,
						"operation":        "health_check",
						"response_time_ms": time.Since(checkStart).Milliseconds(),
						"error_message":    err.Error(),
					})
				}
			}
			response.Checks[name] = result
		}
	}

	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
	} else {
		logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")
	}

	if err := c.JSON(status, response); err != nil {
		return fmt.Errorf("failed to write JSON response: %w", err)
	}

	return nil
}

func (h *HealthHandler) runCheck(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	switch name {
	case config.CheckRoutes:
		if h.routes == nil || len(h.routes.Routes()) == 0 {
			return fmt.Errorf("no pipeline routes registered")
		}
		return nil
	case config.CheckMetrics:
		return h.server.Metrics.Gather()
	default:
		return fmt.Errorf("unknown check %q", name)
	}
}
