package handler

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/labstack/echo/v4"

	"github.com/deppfellow/schema-pipeline/internal/lifecycle"
	"github.com/deppfellow/schema-pipeline/internal/middleware"
	"github.com/deppfellow/schema-pipeline/internal/schema"
	"github.com/deppfellow/schema-pipeline/internal/server"
)

// RouteTable registers pipeline routes. Every route shares the global hooks
// given to NewRouteTable; registration compiles the route's schemas once and
// adds it to the OpenAPI document.
//
// Register everything before serving: the table is not safe for concurrent
// registration, only for concurrent reads afterwards.
type RouteTable struct {
	server *server.Server
	events *middleware.EventRecorder
	global []lifecycle.Hook
	routes []*RouteHandler
	seen   map[string]bool
	doc    *openapi3.T
}

func NewRouteTable(s *server.Server, events *middleware.EventRecorder, global ...lifecycle.Hook) *RouteTable {
	return &RouteTable{
		server: s,
		events: events,
		global: append([]lifecycle.Hook(nil), global...),
		seen:   make(map[string]bool),
		doc: &openapi3.T{
			OpenAPI: "3.0.3",
			Info: &openapi3.Info{
				Title:       "schema-pipeline",
				Description: "Routes served through the schema-enforcing request pipeline.",
				Version:     "1.0.0",
			},
			Paths: openapi3.NewPaths(),
		},
	}
}

// Register validates and compiles route and returns its handler.
func (t *RouteTable) Register(route lifecycle.Route) (*RouteHandler, error) {
	if err := route.Validate(); err != nil {
		return nil, fmt.Errorf("route %s %s: %w", route.Method, route.Path, err)
	}

	route.Method = strings.ToUpper(route.Method)
	if !t.server.Config.Server.CaseSensitive {
		route.Path = lowerStatic(route.Path)
	}

	key := route.Method + " " + route.Path
	if t.seen[key] {
		return nil, fmt.Errorf("route %s registered twice", key)
	}

	rh := &RouteHandler{
		Handler: NewHandler(t.server),
		route:   route,
		chain:   lifecycle.NewChain(t.global, route.Hooks),
		events:  t.events,
	}

	if route.Body != nil {
		body, err := schema.Compile(*route.Body)
		if err != nil {
			return nil, fmt.Errorf("route %s body: %w", key, err)
		}
		rh.body = body
	}

	if len(route.Responses) > 0 {
		responses, err := schema.CompileResponses(route.Responses)
		if err != nil {
			return nil, fmt.Errorf("route %s: %w", key, err)
		}
		rh.responses = responses
	}

	t.seen[key] = true
	t.routes = append(t.routes, rh)
	t.document(rh)

	return rh, nil
}

// Routes returns the registered handlers in registration order.
func (t *RouteTable) Routes() []*RouteHandler {
	return append([]*RouteHandler(nil), t.routes...)
}

// Mount adds every route to g.
func (t *RouteTable) Mount(g *echo.Group) {
	for _, rh := range t.routes {
		g.Add(rh.Method(), rh.Path(), rh.Handle)
	}
}

// OpenAPI returns the document describing the registered routes.
func (t *RouteTable) OpenAPI() *openapi3.T {
	return t.doc
}

// ValidateOpenAPI checks the generated document against the OpenAPI 3 rules.
func (t *RouteTable) ValidateOpenAPI(ctx context.Context) error {
	if err := t.doc.Validate(ctx); err != nil {
		return fmt.Errorf("openapi document: %w", err)
	}
	return nil
}

var echoParam = regexp.MustCompile(`:([^/]+)`)

func (t *RouteTable) document(rh *RouteHandler) {
	op := &openapi3.Operation{
		OperationID: strings.ToLower(rh.Method()) + strings.NewReplacer("/", "_", ":", "").Replace(rh.Path()),
		Summary:     rh.route.Summary,
	}

	if rh.body != nil {
		op.RequestBody = &openapi3.RequestBodyRef{
			Value: openapi3.NewRequestBody().
				WithRequired(true).
				WithJSONSchema(rh.body.Schema().OpenAPI()),
		}
	}

	codes := rh.responses.Codes()
	if len(codes) == 0 {
		op.Responses = openapi3.NewResponses()
	} else {
		opts := make([]openapi3.NewResponsesOption, 0, len(codes))
		for key, c := range codes {
			desc := key + " response"
			opts = append(opts, openapi3.WithName(key, &openapi3.Response{
				Description: &desc,
				Content:     openapi3.NewContentWithJSONSchema(c.Schema().OpenAPI()),
			}))
		}
		op.Responses = openapi3.NewResponses(opts...)
	}

	for _, m := range echoParam.FindAllStringSubmatch(rh.Path(), -1) {
		op.AddParameter(openapi3.NewPathParameter(m[1]).WithSchema(openapi3.NewStringSchema()))
	}

	path := echoParam.ReplaceAllString(rh.Path(), "{$1}")
	item := t.doc.Paths.Value(path)
	if item == nil {
		item = &openapi3.PathItem{}
	}
	item.SetOperation(rh.Method(), op)
	t.doc.Paths.Set(path, item)
}

// lowerStatic lower-cases the static segments of an echo path and leaves
// parameter names alone.
func lowerStatic(path string) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if !strings.HasPrefix(seg, ":") && seg != "*" {
			segments[i] = strings.ToLower(seg)
		}
	}
	return strings.Join(segments, "/")
}
