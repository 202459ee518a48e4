package handler

import (
	"context"

	"github.com/deppfellow/schema-pipeline/internal/middleware"
	"github.com/deppfellow/schema-pipeline/internal/server"
	"github.com/deppfellow/schema-pipeline/internal/service"
)

// Handlers groups the HTTP handlers so the router gets one value to wire.
type Handlers struct {
	Routes  *RouteTable
	Status  *StatusHandler
	Health  *HealthHandler
	OpenAPI *OpenAPIHandler
}

// NewHandlers builds the handlers and registers the pipeline routes.
func NewHandlers(s *server.Server, services *service.Services, events *middleware.EventRecorder) (*Handlers, error) {
	routes := NewRouteTable(s, events, RepeatHook())

	h := &Handlers{
		Routes:  routes,
		Status:  NewStatusHandler(s, services.Status),
		Health:  NewHealthHandler(s, routes),
		OpenAPI: NewOpenAPIHandler(s, routes),
	}

	statusRoute, err := h.Status.Route()
	if err != nil {
		return nil, err
	}
	if _, err := routes.Register(statusRoute); err != nil {
		return nil, err
	}

	if err := routes.ValidateOpenAPI(context.Background()); err != nil {
		return nil, err
	}

	return h, nil
}
