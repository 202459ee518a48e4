package handler

import (
	"context"
	_ "embed"
	"net/http"

	"github.com/deppfellow/schema-pipeline/internal/lifecycle"
	"github.com/deppfellow/schema-pipeline/internal/schema"
	"github.com/deppfellow/schema-pipeline/internal/server"
	"github.com/deppfellow/schema-pipeline/internal/service"
)

//go:embed schemas/status_body.yaml
var statusBodyYAML []byte

type StatusRequest struct {
	Name float64 `json:"name"`
}

// StatusResponse is the public shape of the status reply.
type StatusResponse struct {
	Status string `json:"status"`
}

type StatusHandler struct {
	Handler
	statusService *service.StatusService
}

func NewStatusHandler(s *server.Server, statusService *service.StatusService) *StatusHandler {
	return &StatusHandler{
		Handler:       NewHandler(s),
		statusService: statusService,
	}
}

// Route declares POST /status.
func (h *StatusHandler) Route() (lifecycle.Route, error) {
	body, err := schema.ParseYAML(statusBodyYAML)
	if err != nil {
		return lifecycle.Route{}, err
	}

	response, err := schema.FromType(StatusResponse{})
	if err != nil {
		return lifecycle.Route{}, err
	}

	return lifecycle.Route{
		Method:  http.MethodPost,
		Path:    "/status",
		Summary: "Report service status",
		Hooks:   []lifecycle.Hook{GreetHook()},
		Body:    &body,
		Responses: schema.ResponseSchemas{
			"200": response,
		},
		Handler: Typed(h.CheckStatus),
	}, nil
}

// CheckStatus returns the full service report. Fields outside StatusResponse
// are dropped by the response schema.
func (h *StatusHandler) CheckStatus(ctx context.Context, rc *lifecycle.RequestContext, req StatusRequest) (*service.StatusReport, error) {
	return h.statusService.Check(ctx, req.Name)
}
