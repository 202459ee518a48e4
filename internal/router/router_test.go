package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deppfellow/schema-pipeline/internal/config"
	"github.com/deppfellow/schema-pipeline/internal/errs"
	"github.com/deppfellow/schema-pipeline/internal/server"
	"github.com/deppfellow/schema-pipeline/internal/service"
)

func newTestRouter(t *testing.T, mutate func(*config.Config)) *echo.Echo {
	t.Helper()

	cfg := config.Default()
	if mutate != nil {
		mutate(cfg)
	}

	logger := zerolog.Nop()
	s, err := server.New(cfg, &logger, nil, nil)
	require.NoError(t, err)

	services, err := service.NewServices(s)
	require.NoError(t, err)

	r, err := NewRouter(s, services)
	require.NoError(t, err)
	return r
}

func send(r *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestStatusRoute(t *testing.T) {
	r := newTestRouter(t, nil)

	tests := []struct {
		name       string
		method     string
		path       string
		body       string
		wantStatus int
		wantBody   string
		wantField  string
		wantReason string
	}{
		{
			name:       "valid body",
			method:     http.MethodPost,
			path:       "/status",
			body:       `{"name":42}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "numeric string is coerced",
			method:     http.MethodPost,
			path:       "/status",
			body:       `{"name":"42"}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "case-insensitive routing",
			method:     "post",
			path:       "/STATUS",
			body:       `{"name":1}`,
			wantStatus: http.StatusOK,
			wantBody:   `{"status":"ok"}`,
		},
		{
			name:       "wrong type",
			method:     http.MethodPost,
			path:       "/status",
			body:       `{"name":"abc"}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "name",
			wantReason: "type_mismatch",
		},
		{
			name:       "extra field",
			method:     http.MethodPost,
			path:       "/status",
			body:       `{"name":1,"extra":true}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "extra",
			wantReason: "unexpected_field",
		},
		{
			name:       "missing field",
			method:     http.MethodPost,
			path:       "/status",
			body:       `{}`,
			wantStatus: http.StatusBadRequest,
			wantField:  "name",
			wantReason: "missing_field",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := send(r, tt.method, tt.path, tt.body)
			require.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())

			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, rec.Body.String())
				return
			}

			var body errs.HTTPError
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			require.Len(t, body.Errors, 1)
			assert.Equal(t, tt.wantField, body.Errors[0].Field)
			assert.Equal(t, tt.wantReason, body.Errors[0].Reason)
		})
	}
}

func TestStatusRoute_CaseSensitive(t *testing.T) {
	r := newTestRouter(t, func(cfg *config.Config) {
		cfg.Server.CaseSensitive = true
	})

	assert.Equal(t, http.StatusOK, send(r, http.MethodPost, "/status", `{"name":1}`).Code)
	assert.Equal(t, http.StatusNotFound, send(r, http.MethodPost, "/STATUS", `{"name":1}`).Code)
}

func TestUnknownRoute(t *testing.T) {
	rec := send(newTestRouter(t, nil), http.MethodGet, "/nope", "")

	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Route not found", body.Message)
}

func TestBodyLimit(t *testing.T) {
	r := newTestRouter(t, func(cfg *config.Config) {
		cfg.Server.BodyLimit = "16B"
	})

	rec := send(r, http.MethodPost, "/status", `{"name":1234567890123456789}`)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
}

func TestSystemRoutes(t *testing.T) {
	r := newTestRouter(t, nil)

	health := send(r, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, health.Code)
	assert.Contains(t, health.Body.String(), `"status":"healthy"`)

	// One pipeline request so the metrics below have samples.
	send(r, http.MethodPost, "/status", `{"name":1}`)

	metrics := send(r, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusOK, metrics.Code)
	assert.Contains(t, metrics.Body.String(), `pipeline_requests_total{method="POST",outcome="sent",route="/status",status="200"} 1`)

	doc := send(r, http.MethodGet, "/openapi.json", "")
	assert.Equal(t, http.StatusOK, doc.Code)
	assert.Contains(t, doc.Body.String(), `"/status"`)
}
