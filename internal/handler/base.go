package handler

import (
	"context"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/deppfellow/schema-pipeline/internal/errs"
	"github.com/deppfellow/schema-pipeline/internal/lifecycle"
	"github.com/deppfellow/schema-pipeline/internal/metrics"
	"github.com/deppfellow/schema-pipeline/internal/middleware"
	"github.com/deppfellow/schema-pipeline/internal/schema"
	"github.com/deppfellow/schema-pipeline/internal/server"
)

// Handler is the base of every handler and gives access to the Server.
type Handler struct {
	server *server.Server
}

func NewHandler(s *server.Server) Handler {
	return Handler{server: s}
}

// RouteHandler runs one registered route through the request pipeline:
//
//	Received -> HooksRunning -> BodyValidating -> HandlerExecuting -> ResponseFiltering -> Sent
//
// Hooks may end the request early with their own reply. A failure in any
// stage returns a *lifecycle.StageError for the global error handler to
// write. RouteHandler is built once by RouteTable.Register and shared by
// all requests.
type RouteHandler struct {
	Handler
	route     lifecycle.Route
	chain     *lifecycle.Chain
	body      *schema.Compiled
	responses *schema.Responses
	events    *middleware.EventRecorder
}

func (h *RouteHandler) Method() string { return h.route.Method }
func (h *RouteHandler) Path() string   { return h.route.Path }

// Hooks lists the hook names in execution order, global first.
func (h *RouteHandler) Hooks() []string {
	return h.chain.Names()
}

// failure pairs the error shown to the client with the cause kept for logs.
type failure struct {
	client *errs.HTTPError
	cause  error
}

func (f *failure) Error() string {
	return f.cause.Error()
}

func (f *failure) Unwrap() []error {
	return []error{f.client, f.cause}
}

// pipeline is the state of one request going through a RouteHandler.
type pipeline struct {
	h          *RouteHandler
	c          echo.Context
	ctx        context.Context
	rc         *lifecycle.RequestContext
	txn        *newrelic.Transaction
	logger     zerolog.Logger
	start      time.Time
	stage      lifecycle.Stage
	stageStart time.Time
}

// Handle is the echo.HandlerFunc of the route.
func (h *RouteHandler) Handle(c echo.Context) error {
	h.server.Metrics.RequestsInFlight.Inc()
	defer h.server.Metrics.RequestsInFlight.Dec()

	p := &pipeline{
		h:     h,
		c:     c,
		ctx:   c.Request().Context(),
		start: time.Now(),
		stage: lifecycle.StageReceived,
	}
	p.stageStart = p.start

	p.txn = newrelic.FromContext(p.ctx)
	if p.txn != nil {
		p.txn.AddAttribute("handler.name", h.route.Path)
		p.txn.AddAttribute("pipeline.hooks", h.chain.Len())
	}

	p.logger = middleware.GetLogger(c).With().
		Str("operation", "pipeline").
		Str("route", h.route.Path).
		Logger()

	params := make(map[string]string, len(c.ParamNames()))
	for i, name := range c.ParamNames() {
		params[name] = c.ParamValues()[i]
	}
	// Matching ran on the case-folded path; values keep the case they were sent in.
	if original, ok := middleware.OriginalPath(c); ok {
		for name, value := range paramsFromPath(h.route.Path, original) {
			params[name] = value
		}
	}
	p.rc = lifecycle.NewRequestContext(c.Request(), h.route.Path, params, &p.logger, h.server.Helpers)

	p.logger.Info().Msg("handling request")

	return p.run()
}

func (p *pipeline) run() error {
	// Hooks
	if err := p.enter(lifecycle.StageHooksRunning); err != nil {
		return err
	}
	res, err := p.h.chain.Run(p.ctx, p.rc)
	if err != nil {
		return p.hookFailed(err)
	}
	if res.Terminated() {
		return p.aborted(res)
	}

	// Body
	if err := p.enter(lifecycle.StageBodyValidating); err != nil {
		return err
	}
	if err := p.validateBody(); err != nil {
		return err
	}

	// Handler
	if err := p.enter(lifecycle.StageHandlerExecuting); err != nil {
		return err
	}
	result, err := p.callHandler()
	if err != nil {
		if p.ctx.Err() != nil {
			return p.canceled(err)
		}
		client := errs.NewInternalServerError()
		var httpErr *errs.HTTPError
		if errors.As(err, &httpErr) {
			client = httpErr
		}
		return p.fail(err, client)
	}

	// Response
	if err := p.enter(lifecycle.StageResponseFiltering); err != nil {
		return err
	}
	status := p.rc.Reply.Status
	if status == 0 {
		status = http.StatusOK
	}
	out, err := p.h.responses.Filter(status, result)
	if err != nil {
		// A result that does not fit its schema is the handler's fault.
		p.stage = lifecycle.StageHandlerExecuting
		return p.fail(err, errs.NewInternalServerError())
	}

	p.rc.Reply.Status = status
	p.rc.Reply.Body = out
	return p.send(p.rc.Reply, metrics.OutcomeSent)
}

// enter moves to stage, recording the time spent in the previous one. It
// stops the request when the client has gone away.
func (p *pipeline) enter(stage lifecycle.Stage) error {
	now := time.Now()
	elapsed := now.Sub(p.stageStart)
	p.h.server.Metrics.ObserveStage(p.h.route.Path, p.stage.String(), elapsed)

	p.logger.Debug().
		Str("stage", stage.String()).
		Dur("previous_stage_duration", elapsed).
		Msg("stage entered")

	p.stage = stage
	p.stageStart = now

	if err := p.ctx.Err(); err != nil {
		return p.canceled(err)
	}
	return nil
}

func (p *pipeline) hookFailed(err error) error {
	if p.ctx.Err() != nil {
		return p.canceled(err)
	}

	// A hook picks the status by returning an *errs.HTTPError or by setting
	// rc.Reply.Status before failing.
	var httpErr *errs.HTTPError
	switch {
	case errors.As(err, &httpErr):
		return p.fail(err, httpErr)
	case p.rc.Reply.Status >= http.StatusBadRequest:
		status := p.rc.Reply.Status
		return p.fail(err, errs.NewStatusError(status, http.StatusText(status)))
	default:
		return p.fail(err, errs.NewInternalServerError())
	}
}

func (p *pipeline) aborted(res lifecycle.Result) error {
	reply := res.Reply()
	if reply.Status == 0 {
		reply.Status = http.StatusOK
	}

	p.h.server.Metrics.HookAborts.WithLabelValues(p.h.route.Path, res.Hook()).Inc()
	p.h.events.RecordHookAborted(p.h.route.Path, res.Hook(), reply.Status)

	p.logger.Info().
		Str("hook", res.Hook()).
		Int("status", reply.Status).
		Msg("request terminated by hook")

	return p.send(reply, metrics.OutcomeAborted)
}

func (p *pipeline) validateBody() error {
	if p.h.body == nil {
		return nil
	}

	req := p.c.Request()
	var data []byte
	if req.Body != nil {
		var err error
		data, err = io.ReadAll(req.Body)
		if err != nil {
			if p.ctx.Err() != nil {
				return p.canceled(err)
			}
			var echoErr *echo.HTTPError
			if errors.As(err, &echoErr) {
				// body limit exceeded
				return p.fail(err, errs.NewStatusError(echoErr.Code, http.StatusText(echoErr.Code)))
			}
			return p.fail(errors.Wrap(err, "read body"), errs.NewBadRequestError("Could not read request body", true, nil, nil, nil))
		}
	}

	if len(data) > 0 && !isJSON(req.Header.Get(echo.HeaderContentType)) {
		ct := req.Header.Get(echo.HeaderContentType)
		return p.fail(errors.Errorf("unsupported content type %q", ct), errs.NewUnsupportedMediaTypeError(ct))
	}

	start := time.Now()
	value, err := p.h.body.ValidateJSON(data)
	duration := time.Since(start)

	if p.txn != nil {
		p.txn.AddAttribute("validation.duration_ms", duration.Milliseconds())
	}

	if err != nil {
		if p.txn != nil {
			p.txn.AddAttribute("validation.status", "failed")
		}
		return p.fail(err, validationHTTPError(err))
	}

	if p.txn != nil {
		p.txn.AddAttribute("validation.status", "success")
	}
	p.logger.Debug().
		Dur("validation_duration", duration).
		Msg("request validation successful")

	p.rc.Body = value
	return nil
}

// validationHTTPError maps a body failure to the 400 sent to the client.
// Every *schema.ValidationError names exactly one field.
func validationHTTPError(err error) *errs.HTTPError {
	var verr *schema.ValidationError
	if errors.As(err, &verr) {
		return errs.NewBadRequestError(verr.Error(), true, nil, []errs.FieldError{{
			Field:    verr.Field(),
			Error:    verr.Detail(),
			Reason:   string(verr.Reason),
			Expected: string(verr.Expected),
		}}, nil)
	}

	code := "MALFORMED_BODY"
	return errs.NewBadRequestError("Malformed JSON body", true, &code, nil, nil)
}

func (p *pipeline) callHandler() (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("handler panic: %v", r)
		}
	}()

	start := time.Now()
	result, err = p.h.route.Handler(p.ctx, p.rc)

	if p.txn != nil {
		p.txn.AddAttribute("handler.duration_ms", time.Since(start).Milliseconds())
	}
	return result, err
}

// send writes reply. Headers set on the reply are copied to the response.
func (p *pipeline) send(reply *lifecycle.Reply, outcome string) error {
	header := p.c.Response().Header()
	for key, values := range reply.Header {
		for _, v := range values {
			header.Add(key, v)
		}
	}

	var err error
	if reply.Body == nil || p.c.Request().Method == http.MethodHead {
		err = p.c.NoContent(reply.Status)
	} else {
		err = p.c.JSON(reply.Status, reply.Body)
	}
	if err != nil {
		return errors.Wrap(err, "write response")
	}

	// The response is out; a canceled context no longer matters here.
	_ = p.enter(lifecycle.StageSent)
	p.finish(reply.Status, outcome)

	if p.txn != nil {
		p.txn.AddAttribute("handler.status", outcome)
	}
	p.logger.Info().
		Int("status", reply.Status).
		Dur("total_duration", time.Since(p.start)).
		Msg("request completed successfully")

	return nil
}

// fail ends the request in the current stage. cause is logged, and noticed
// by the tracing middleware; client is what the global error handler writes.
func (p *pipeline) fail(cause error, client *errs.HTTPError) error {
	stage := p.stage
	p.finish(client.Status, metrics.OutcomeFailed)

	var verr *schema.ValidationError
	if errors.As(cause, &verr) {
		p.h.server.Metrics.ValidationFailures.WithLabelValues(p.h.route.Path, string(verr.Reason)).Inc()
		p.h.events.RecordValidationFailed(p.h.route.Path, verr.Field(), string(verr.Reason))
	}

	event := p.logger.Warn()
	if client.Status >= http.StatusInternalServerError {
		event = p.logger.Error().Stack()
	}
	event.
		Err(cause).
		Str("stage", stage.String()).
		Int("status", client.Status).
		Dur("total_duration", time.Since(p.start)).
		Msg("request failed")

	if p.txn != nil {
		p.txn.AddAttribute("handler.status", "error")
		p.txn.AddAttribute("pipeline.failed_stage", stage.String())
	}

	return &lifecycle.StageError{Stage: stage, Err: &failure{client: client, cause: cause}}
}

// canceled stops the request without a response.
func (p *pipeline) canceled(cause error) error {
	p.finish(middleware.StatusClientClosedRequest, metrics.OutcomeCanceled)
	p.logger.Debug().Err(cause).Str("stage", p.stage.String()).Msg("request canceled")

	if !errors.Is(cause, context.Canceled) && !errors.Is(cause, context.DeadlineExceeded) {
		cause = errors.Wrap(p.ctx.Err(), cause.Error())
	}
	return &lifecycle.StageError{Stage: p.stage, Err: cause}
}

func (p *pipeline) finish(status int, outcome string) {
	p.h.server.Metrics.ObserveRequest(p.h.route.Method, p.h.route.Path, status, outcome, time.Since(p.start))
}

// paramsFromPath reads the values of template's parameters from path. The
// two have the same segments, only their case differs.
func paramsFromPath(template, path string) map[string]string {
	params := make(map[string]string)
	pathSegments := strings.Split(path, "/")

	for i, seg := range strings.Split(template, "/") {
		if i >= len(pathSegments) {
			break
		}
		switch {
		case seg == "*":
			params["*"] = strings.Join(pathSegments[i:], "/")
			return params
		case strings.HasPrefix(seg, ":"):
			params[seg[1:]] = pathSegments[i]
		}
	}
	return params
}

func isJSON(contentType string) bool {
	if contentType == "" {
		return true
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == echo.MIMEApplicationJSON || strings.HasSuffix(mediaType, "+json")
}
