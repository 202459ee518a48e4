package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/deppfellow/schema-pipeline/internal/config"
	"github.com/deppfellow/schema-pipeline/internal/logger"
	"github.com/deppfellow/schema-pipeline/internal/router"
	"github.com/deppfellow/schema-pipeline/internal/server"
	"github.com/deppfellow/schema-pipeline/internal/service"
)

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	loggerService, err := logger.NewLoggerService(cfg.Observability)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to start New Relic")
	}

	l := logger.NewLoggerWithService(cfg.Observability, loggerService)

	srv, err := server.New(cfg, &l, loggerService, nil)
	if err != nil {
		l.Fatal().Err(err).Msg("failed to initialize server")
	}

	services, err := service.NewServices(srv)
	if err != nil {
		l.Fatal().Err(err).Msg("could not create services")
	}

	r, err := router.NewRouter(srv, services)
	if err != nil {
		l.Fatal().Err(err).Msg("could not build router")
	}

	srv.SetupHTTPServer(r)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	select {
	case err := <-errCh:
		if err != nil {
			l.Fatal().Err(err).Msg("server stopped")
		}
		return
	case <-ctx.Done():
		l.Info().Msg("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		l.Error().Err(err).Msg("server forced to shutdown")
	}

	l.Info().Msg("server exited properly")
}
