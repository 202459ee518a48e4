package lifecycle

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler(ctx context.Context, rc *RequestContext) (any, error) {
	return nil, nil
}

func TestRoute_Validate(t *testing.T) {
	tests := []struct {
		name    string
		route   Route
		wantErr bool
	}{
		{"valid", Route{Method: "POST", Path: "/status", Handler: okHandler}, false},
		{"lower case method", Route{Method: "post", Path: "/status", Handler: okHandler}, false},
		{"unknown method", Route{Method: "BREW", Path: "/status", Handler: okHandler}, true},
		{"missing method", Route{Path: "/status", Handler: okHandler}, true},
		{"relative path", Route{Method: "GET", Path: "status", Handler: okHandler}, true},
		{"missing handler", Route{Method: "GET", Path: "/status"}, true},
		{"anonymous hook", Route{Method: "GET", Path: "/status", Handler: okHandler, Hooks: []Hook{{Run: func(ctx context.Context, rc *RequestContext) (Result, error) {
			return Continue(), nil
		}}}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.route.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestStageString(t *testing.T) {
	assert.Equal(t, "hooks_running", StageHooksRunning.String())
	assert.Equal(t, "sent", StageSent.String())
	assert.Equal(t, "unknown", Stage(42).String())
}
