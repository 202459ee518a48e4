package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/schema-pipeline/internal/errs"
	"github.com/deppfellow/schema-pipeline/internal/lifecycle"
	"github.com/deppfellow/schema-pipeline/internal/server"
)

// StatusClientClosedRequest is logged for requests the client abandoned.
// Nothing is written for them.
const StatusClientClosedRequest = 499

// GlobalMiddlewares groups the middleware applied to every route and the
// global error handler.
type GlobalMiddlewares struct {
	server *server.Server
}

func NewGlobalMiddlewares(s *server.Server) *GlobalMiddlewares {
	return &GlobalMiddlewares{
		server: s,
	}
}

// StaticPrefix is the path prefix of files served from disk. Only the
// prefix itself is case-folded; file names keep their case.
const StaticPrefix = "/static/"

// OriginalPathKey is the echo context key of the routing path as received,
// before case folding. Route parameters are read back from it.
const OriginalPathKey = "original_path"

// NormalizeRequest upper-cases the method, and lower-cases the path unless
// routing is case-sensitive. It must be installed with echo's Pre so it
// runs before route lookup.
func (global *GlobalMiddlewares) NormalizeRequest() echo.MiddlewareFunc {
	caseSensitive := global.server.Config.Server.CaseSensitive

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			r := c.Request()
			r.Method = strings.ToUpper(r.Method)

			if !caseSensitive {
				c.Set(OriginalPathKey, routingPath(r.URL.Path, r.URL.RawPath))

				r.URL.Path = foldPath(r.URL.Path)
				if r.URL.RawPath != "" {
					r.URL.RawPath = foldPath(r.URL.RawPath)
				}
			}

			return next(c)
		}
	}
}

// OriginalPath returns the path saved by NormalizeRequest, if any.
func OriginalPath(c echo.Context) (string, bool) {
	path, ok := c.Get(OriginalPathKey).(string)
	return path, ok
}

// routingPath is the path echo matches against.
func routingPath(path, rawPath string) string {
	if rawPath != "" {
		return rawPath
	}
	return path
}

func foldPath(path string) string {
	if len(path) >= len(StaticPrefix) && strings.EqualFold(path[:len(StaticPrefix)], StaticPrefix) {
		return StaticPrefix + path[len(StaticPrefix):]
	}
	return strings.ToLower(path)
}

func (global *GlobalMiddlewares) CORS() echo.MiddlewareFunc {
	return middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: global.server.Config.Server.CORSAllowedOrigins,
	})
}

// BodyLimit rejects bodies larger than server.body_limit with 413.
func (global *GlobalMiddlewares) BodyLimit() echo.MiddlewareFunc {
	return middleware.BodyLimit(global.server.Config.Server.BodyLimit)
}

// RequestLogger writes one "API" line per request, at a level derived from
// the final status.
func (global *GlobalMiddlewares) RequestLogger() echo.MiddlewareFunc {
	var slow time.Duration
	if obs := global.server.Config.Observability; obs != nil {
		slow = obs.Logging.SlowRequestThreshold
	}

	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:     true,
		LogStatus:  true,
		LogError:   true,
		LogLatency: true,
		LogHost:    true,
		LogMethod:  true,
		LogURIPath: true,

		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			// When the handler returns an error the response is written later by
			// GlobalErrorHandler, so the status has to come from the error.
			// See https://github.com/labstack/echo/issues/2310#issuecomment-1288196898
			statusCode := v.Status
			if v.Error != nil {
				statusCode = statusOf(v.Error, c)
			}

			logger := GetLogger(c)

			var e *zerolog.Event
			switch {
			case statusCode >= 500:
				e = logger.Error().Err(v.Error)
			case statusCode >= 400:
				e = logger.Warn()
			case slow > 0 && v.Latency > slow:
				e = logger.Warn().Bool("slow", true)
			default:
				e = logger.Info()
			}

			if requestID := GetRequestID(c); requestID != "" {
				e = e.Str("request_id", requestID)
			}

			e.
				Dur("latency", v.Latency).
				Int("status", statusCode).
				Str("method", v.Method).
				Str("uri", v.URI).
				Str("host", v.Host).
				Str("ip", c.RealIP()).
				Str("user_agent", c.Request().UserAgent()).
				Msg("API")

			return nil
		},
	})
}

func (global *GlobalMiddlewares) Recover() echo.MiddlewareFunc {
	return middleware.Recover()
}

func (global *GlobalMiddlewares) Secure() echo.MiddlewareFunc {
	return middleware.Secure()
}

// GlobalErrorHandler turns every error returned by a route into an
// errs.HTTPError response.
//
//   - *errs.HTTPError anywhere in the chain keeps its status; 5xx messages are
//     replaced by the status text unless Override is set.
//   - echo errors (404, 405, 413, ...) keep their status.
//   - anything else is a generic 500.
//   - canceled requests are logged and get no response.
func (global *GlobalMiddlewares) GlobalErrorHandler(err error, c echo.Context) {
	logger := *GetLogger(c)

	if canceled(err, c) {
		logger.Debug().Err(err).Msg("request canceled by client")
		return
	}

	var (
		httpErr     *errs.HTTPError
		echoErr     *echo.HTTPError
		status      int
		code        string
		message     string
		override    bool
		fieldErrors []errs.FieldError
		action      *errs.Action
	)

	switch {
	case errors.As(err, &httpErr):
		status = httpErr.Status
		code = httpErr.Code
		message = httpErr.Message
		override = httpErr.Override
		fieldErrors = httpErr.Errors
		action = httpErr.Action

		if status >= 500 && !override {
			message = http.StatusText(status)
		}

	case errors.As(err, &echoErr):
		status = echoErr.Code
		code = errs.MakeUpperCaseWithUnderscores(http.StatusText(status))

		switch {
		case status == http.StatusNotFound:
			message = "Route not found"
		case status >= 500:
			message = http.StatusText(status)
		default:
			if msg, ok := echoErr.Message.(string); ok {
				message = msg
			} else {
				message = http.StatusText(status)
			}
		}

	default:
		generic := errs.NewInternalServerError()
		status = generic.Status
		code = generic.Code
		message = generic.Message
	}

	event := logger.Warn()
	if status >= 500 {
		event = logger.Error().Stack()
	}

	var stageErr *lifecycle.StageError
	if errors.As(err, &stageErr) {
		event = event.Str("stage", stageErr.Stage.String())
	}

	event.
		Err(err).
		Int("status", status).
		Str("error_code", code).
		Msg(message)

	if c.Response().Committed {
		return
	}

	if c.Request().Method == http.MethodHead {
		_ = c.NoContent(status)
		return
	}

	_ = c.JSON(status, errs.HTTPError{
		Code:     code,
		Message:  message,
		Status:   status,
		Override: override,
		Errors:   fieldErrors,
		Action:   action,
	})
}

func canceled(err error, c echo.Context) bool {
	return errors.Is(err, context.Canceled) || errors.Is(c.Request().Context().Err(), context.Canceled)
}

// statusOf predicts the status GlobalErrorHandler will write for err.
func statusOf(err error, c echo.Context) int {
	var httpErr *errs.HTTPError
	var echoErr *echo.HTTPError

	switch {
	case canceled(err, c):
		return StatusClientClosedRequest
	case errors.As(err, &httpErr):
		return httpErr.Status
	case errors.As(err, &echoErr):
		return echoErr.Code
	default:
		return http.StatusInternalServerError
	}
}
