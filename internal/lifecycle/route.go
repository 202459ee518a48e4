package lifecycle

import (
	"context"
	"net/http"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/pkg/errors"

	"github.com/deppfellow/schema-pipeline/internal/schema"
)

// HandlerFunc is the business logic of a route. It receives the validated
// body in rc.Body and returns the value to filter and send. It may set
// rc.Reply.Status to pick the response schema.
type HandlerFunc func(ctx context.Context, rc *RequestContext) (any, error)

// Route is everything registered for one method and path.
type Route struct {
	Method  string
	Path    string
	Summary string

	// Hooks run after the global hooks, in order.
	Hooks []Hook

	// Body is the request body schema. Nil skips body validation.
	Body *schema.Schema

	// Responses maps status keys ("200", "2xx", "default") to the schema
	// the handler result is filtered through.
	Responses schema.ResponseSchemas

	Handler HandlerFunc
}

var routePath = regexp.MustCompile(`^/[^\s]*$`)

var methods = []any{
	http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
	http.MethodPatch, http.MethodDelete, http.MethodOptions,
}

// Validate checks the declaration. Schemas are checked separately when the
// route is compiled.
func (r Route) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Method, validation.Required, validation.By(func(value any) error {
			m, _ := value.(string)
			return validation.Validate(strings.ToUpper(m), validation.In(methods...))
		})),
		validation.Field(&r.Path, validation.Required, validation.Match(routePath)),
		validation.Field(&r.Handler, validation.By(func(value any) error {
			if h, _ := value.(HandlerFunc); h == nil {
				return errors.New("is required")
			}
			return nil
		})),
		validation.Field(&r.Hooks, validation.Each(validation.By(func(value any) error {
			h, _ := value.(Hook)
			if h.Name == "" || h.Run == nil {
				return errors.New("hook needs a name and a function")
			}
			return nil
		}))),
	)
}
