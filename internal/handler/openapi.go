package handler

import (
	"fmt"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/schema-pipeline/internal/server"
)

// OpenAPIHandler serves the generated OpenAPI document and the docs UI that
// renders it.
type OpenAPIHandler struct {
	Handler
	routes *RouteTable
}

func NewOpenAPIHandler(s *server.Server, routes *RouteTable) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
		routes:  routes,
	}
}

// ServeSpec writes the OpenAPI document built from the registered routes.
func (h *OpenAPIHandler) ServeSpec(c echo.Context) error {
	c.Response().Header().Set("Cache-Control", "no-cache")
	return c.JSON(http.StatusOK, h.routes.OpenAPI())
}

// ServeOpenAPIUI serves static/openapi.html.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	templateBytes, err := os.ReadFile("static/openapi.html")

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	if err := c.HTML(http.StatusOK, string(templateBytes)); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}

	return nil
}
