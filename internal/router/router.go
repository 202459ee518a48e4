// Package router builds the echo instance: global middleware, the pipeline
// routes and the system endpoints.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/schema-pipeline/internal/handler"
	"github.com/deppfellow/schema-pipeline/internal/middleware"
	"github.com/deppfellow/schema-pipeline/internal/server"
	"github.com/deppfellow/schema-pipeline/internal/service"
)

// NewRouter wires middleware, handlers and routes onto a new echo instance.
func NewRouter(s *server.Server, services *service.Services) (*echo.Echo, error) {
	middlewares := middleware.NewMiddlewares(s)

	h, err := handler.NewHandlers(s, services, middlewares.Events)
	if err != nil {
		return nil, err
	}

	r := echo.New()
	r.HideBanner = true
	r.HidePort = true
	r.HTTPErrorHandler = middlewares.Global.GlobalErrorHandler

	r.Pre(middlewares.Global.NormalizeRequest())

	r.Use(
		middleware.RequestID(),
		middlewares.Tracing.NewRelicMiddleware(),
		middlewares.Tracing.EnhanceTracing(),
		middlewares.ContextEnhancer.EnhanceContext(),
		middlewares.Global.RequestLogger(),
		middlewares.Global.Recover(),
		middlewares.Global.Secure(),
		middlewares.Global.CORS(),
		middlewares.Global.BodyLimit(),
	)

	registerSystemRoutes(r, s, h)

	h.Routes.Mount(r.Group(""))

	return r, nil
}
