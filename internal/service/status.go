package service

import (
	"context"
	"time"

	"github.com/deppfellow/schema-pipeline/internal/middleware"
	"github.com/deppfellow/schema-pipeline/internal/server"
)

// StatusReport is what the status check returns. Only the fields declared
// by the route's response schema reach the client; the rest is internal.
type StatusReport struct {
	Status string        `json:"status"`
	Foo    string        `json:"foo"`
	Uptime time.Duration `json:"uptime"`
}

type StatusService struct {
	server *server.Server
}

func NewStatusService(s *server.Server) *StatusService {
	return &StatusService{server: s}
}

// Check reports the service status for the caller identified by name.
func (s *StatusService) Check(ctx context.Context, name float64) (*StatusReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	middleware.LoggerFromContext(ctx).Debug().
		Float64("name", name).
		Msg("status requested")

	return &StatusReport{
		Status: "ok",
		Foo:    "bar",
		Uptime: time.Since(s.server.StartedAt),
	}, nil
}
