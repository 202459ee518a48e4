package router

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/schema-pipeline/internal/handler"
	"github.com/deppfellow/schema-pipeline/internal/middleware"
	"github.com/deppfellow/schema-pipeline/internal/server"
)

// registerSystemRoutes registers the endpoints that do not go through the
// request pipeline.
func registerSystemRoutes(r *echo.Echo, s *server.Server, h *handler.Handlers) {
	r.GET("/health", h.Health.CheckHealth)
	r.GET("/metrics", echo.WrapHandler(s.Metrics.Handler()))

	r.GET("/openapi.json", h.OpenAPI.ServeSpec)
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
	r.Static(strings.TrimSuffix(middleware.StaticPrefix, "/"), "static")
}
