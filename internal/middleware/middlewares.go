package middleware

import (
	"github.com/newrelic/go-agent/v3/newrelic"

	"github.com/deppfellow/schema-pipeline/internal/server"
)

// Middlewares groups the middleware components built from the Server.
type Middlewares struct {
	Global          *GlobalMiddlewares
	ContextEnhancer *ContextEnhancer
	Tracing         *TracingMiddleware

	// Events records pipeline events (hook aborts, rejected bodies) as New
	// Relic custom events.
	Events *EventRecorder
}

// NewMiddlewares builds every middleware component. Without New Relic the
// tracing and event parts become no-ops.
func NewMiddlewares(s *server.Server) *Middlewares {
	var nrApp *newrelic.Application
	if s.LoggerService != nil {
		nrApp = s.LoggerService.GetApplication()
	}

	return &Middlewares{
		Global:          NewGlobalMiddlewares(s),
		ContextEnhancer: NewContextEnhancer(s),
		Tracing:         NewTracingMiddleware(s, nrApp),
		Events:          NewEventRecorder(nrApp),
	}
}
