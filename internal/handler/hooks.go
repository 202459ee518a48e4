package handler

import (
	"context"

	"github.com/deppfellow/schema-pipeline/internal/lifecycle"
)

const repeatedKey = "repeated"

// RepeatHook runs before every route. It exercises the shared helpers and
// leaves its result in the request context for later hooks.
func RepeatHook() lifecycle.Hook {
	return lifecycle.Hook{
		Name: "repeat",
		Run: func(ctx context.Context, rc *lifecycle.RequestContext) (lifecycle.Result, error) {
			res := rc.Helpers.Repeat("repeat", 3)
			rc.Set(repeatedKey, res)
			rc.Logger.Info().Str("hook", "repeat").Msg(res)
			return lifecycle.Continue(), nil
		},
	}
}

// GreetHook is the POST /status route hook. It runs before the body is
// read, so rc.Body is always empty here.
func GreetHook() lifecycle.Hook {
	return lifecycle.Hook{
		Name: "greet",
		Run: func(ctx context.Context, rc *lifecycle.RequestContext) (lifecycle.Result, error) {
			repeated, _ := rc.Get(repeatedKey)
			rc.Logger.Info().
				Str("hook", "greet").
				Str("body", rc.Helpers.CompactJSON(rc.Body)).
				Interface("repeated", repeated).
				Msg("hello world")
			return lifecycle.Continue(), nil
		},
	}
}
