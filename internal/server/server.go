// Package server defines the Server container that composes the app's
// shared dependencies and owns the http.Server lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/deppfellow/schema-pipeline/internal/config"
	"github.com/deppfellow/schema-pipeline/internal/lib/utils"
	loggerPkg "github.com/deppfellow/schema-pipeline/internal/logger"
	"github.com/deppfellow/schema-pipeline/internal/metrics"
)

// Server is the application container. It is not the HTTP server itself;
// that lives in httpServer and is configured by SetupHTTPServer.
type Server struct {
	Config *config.Config
	Logger *zerolog.Logger

	// LoggerService holds the New Relic application, which may be nil.
	LoggerService *loggerPkg.LoggerService

	Metrics *metrics.Collector

	// Helpers is handed to every hook and handler through the request context.
	Helpers *utils.Helpers

	StartedAt time.Time

	httpServer *http.Server
}

// New builds the container. reg receives the service's metrics; pass
// prometheus.NewRegistry() in tests.
func New(cfg *config.Config, logger *zerolog.Logger, loggerService *loggerPkg.LoggerService, reg *prometheus.Registry) (*Server, error) {
	if cfg == nil || logger == nil {
		return nil, errors.New("server needs a config and a logger")
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	return &Server{
		Config:        cfg,
		Logger:        logger,
		LoggerService: loggerService,
		Metrics:       metrics.NewWithRegistry(reg),
		Helpers:       utils.NewHelpers(),
		StartedAt:     time.Now(),
	}, nil
}

// SetupHTTPServer configures the net/http server around handler.
func (s *Server) SetupHTTPServer(handler http.Handler) {
	s.httpServer = &http.Server{
		Addr:         ":" + s.Config.Server.Port,
		Handler:      handler,
		ReadTimeout:  time.Duration(s.Config.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(s.Config.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(s.Config.Server.IdleTimeout) * time.Second,
	}
}

// Start blocks serving requests until Shutdown is called.
func (s *Server) Start() error {
	if s.httpServer == nil {
		return errors.New("HTTP server not initialized")
	}

	s.Logger.Info().
		Str("port", s.Config.Server.Port).
		Str("env", s.Config.Primary.Env).
		Msg("starting server")

	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Shutdown stops accepting requests, waits for in-flight ones until ctx is
// done, then flushes New Relic.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
	}

	s.LoggerService.Shutdown()
	return nil
}
