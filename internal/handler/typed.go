package handler

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/deppfellow/schema-pipeline/internal/lifecycle"
)

// TypedFunc is business logic that takes the validated body as Req.
type TypedFunc[Req any, Res any] func(ctx context.Context, rc *lifecycle.RequestContext, req Req) (Res, error)

// Typed adapts fn to a lifecycle.HandlerFunc. The validated body in rc.Body
// is decoded into a Req; a route without a body schema gets the zero Req.
func Typed[Req any, Res any](fn TypedFunc[Req, Res]) lifecycle.HandlerFunc {
	return func(ctx context.Context, rc *lifecycle.RequestContext) (any, error) {
		var req Req
		if rc.Body != nil {
			data, err := json.Marshal(rc.Body)
			if err != nil {
				return nil, errors.Wrap(err, "encode validated body")
			}
			if err := json.Unmarshal(data, &req); err != nil {
				return nil, errors.Wrapf(err, "decode validated body into %T", req)
			}
		}
		return fn(ctx, rc, req)
	}
}
