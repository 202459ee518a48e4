// Package lifecycle holds the per-request state and the pre-request hook
// chain of the pipeline.
//
// A request moves through fixed stages (see Stage). Hooks run first, in two
// tiers: global hooks registered once for every route, then the hooks of the
// matched route. Each hook sees the same RequestContext and may stop the
// request by returning Terminate with a reply.
package lifecycle

import (
	"net/http"
	"net/url"

	"github.com/rs/zerolog"

	"github.com/deppfellow/schema-pipeline/internal/lib/utils"
)

// Reply is the response being built for a request.
type Reply struct {
	Status int
	Header http.Header
	Body   any
}

// NewReply returns a reply with status 200 and empty headers.
func NewReply() *Reply {
	return &Reply{Status: http.StatusOK, Header: make(http.Header)}
}

// RequestContext is the mutable state of one request. It is owned by the
// goroutine serving the request and must not be shared.
type RequestContext struct {
	Method string
	// Route is the registered path template, Path the path as received.
	Route  string
	Path   string
	Params map[string]string
	Query  url.Values
	Header http.Header

	// Body is nil until the body stage has run, then holds the validated
	// and coerced value.
	Body any

	Reply   *Reply
	Logger  *zerolog.Logger
	Helpers *utils.Helpers

	values map[string]any
}

// NewRequestContext builds the context for r. logger and helpers may be nil.
func NewRequestContext(r *http.Request, route string, params map[string]string, logger *zerolog.Logger, helpers *utils.Helpers) *RequestContext {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	if helpers == nil {
		helpers = utils.NewHelpers()
	}
	if params == nil {
		params = map[string]string{}
	}

	return &RequestContext{
		Method:  r.Method,
		Route:   route,
		Path:    r.URL.Path,
		Params:  params,
		Query:   r.URL.Query(),
		Header:  r.Header,
		Reply:   NewReply(),
		Logger:  logger,
		Helpers: helpers,
		values:  make(map[string]any),
	}
}

// Set stores a value for later hooks and the handler.
func (rc *RequestContext) Set(key string, value any) {
	if rc.values == nil {
		rc.values = make(map[string]any)
	}
	rc.values[key] = value
}

// Get returns a value stored with Set.
func (rc *RequestContext) Get(key string) (any, bool) {
	v, ok := rc.values[key]
	return v, ok
}
