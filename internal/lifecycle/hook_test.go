package lifecycle

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) *RequestContext {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/status?debug=1", nil)
	return NewRequestContext(req, "/status", nil, nil, nil)
}

func recorder(name string, order *[]string) Hook {
	return Hook{Name: name, Run: func(ctx context.Context, rc *RequestContext) (Result, error) {
		*order = append(*order, name)
		return Continue(), nil
	}}
}

func TestChain_RunsGlobalThenRouteInOrder(t *testing.T) {
	var order []string
	chain := NewChain(
		[]Hook{recorder("A", &order), recorder("B", &order)},
		[]Hook{recorder("C", &order)},
	)

	res, err := chain.Run(context.Background(), newTestContext(t))
	require.NoError(t, err)
	assert.False(t, res.Terminated())
	assert.Equal(t, []string{"A", "B", "C"}, order)
	assert.Equal(t, []string{"A", "B", "C"}, chain.Names())
}

func TestChain_TerminateStopsLaterHooks(t *testing.T) {
	var order []string
	abort := Hook{Name: "B", Run: func(ctx context.Context, rc *RequestContext) (Result, error) {
		order = append(order, "B")
		return Terminate(&Reply{Status: http.StatusTooManyRequests, Body: map[string]string{"slow": "down"}}), nil
	}}
	chain := NewChain([]Hook{recorder("A", &order), abort}, []Hook{recorder("C", &order)})

	res, err := chain.Run(context.Background(), newTestContext(t))
	require.NoError(t, err)
	require.True(t, res.Terminated())
	assert.Equal(t, "B", res.Hook())
	assert.Equal(t, http.StatusTooManyRequests, res.Reply().Status)
	assert.Equal(t, []string{"A", "B"}, order)
}

func TestChain_ErrorStopsLaterHooks(t *testing.T) {
	var order []string
	boom := errors.New("boom")
	failing := Hook{Name: "B", Run: func(ctx context.Context, rc *RequestContext) (Result, error) {
		order = append(order, "B")
		return Continue(), boom
	}}
	chain := NewChain([]Hook{recorder("A", &order), failing}, []Hook{recorder("C", &order)})

	_, err := chain.Run(context.Background(), newTestContext(t))

	var hookErr *HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, "B", hookErr.Hook)
	assert.Equal(t, TierGlobal, hookErr.Tier)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"A", "B"}, order)
}

func TestChain_PanicBecomesHookError(t *testing.T) {
	var order []string
	panicking := Hook{Name: "C", Run: func(ctx context.Context, rc *RequestContext) (Result, error) {
		panic("kaboom")
	}}
	chain := NewChain([]Hook{recorder("A", &order)}, []Hook{panicking})

	_, err := chain.Run(context.Background(), newTestContext(t))

	var hookErr *HookError
	require.ErrorAs(t, err, &hookErr)
	assert.Equal(t, TierRoute, hookErr.Tier)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestChain_SharedContext(t *testing.T) {
	writer := Hook{Name: "writer", Run: func(ctx context.Context, rc *RequestContext) (Result, error) {
		rc.Set("greeting", rc.Helpers.Repeat("hi", 2))
		return Continue(), nil
	}}
	var seen any
	reader := Hook{Name: "reader", Run: func(ctx context.Context, rc *RequestContext) (Result, error) {
		seen, _ = rc.Get("greeting")
		return Continue(), nil
	}}

	_, err := NewChain([]Hook{writer}, []Hook{reader}).Run(context.Background(), newTestContext(t))
	require.NoError(t, err)
	assert.Equal(t, "hihi", seen)
}

func TestChain_StopsOnCanceledContext(t *testing.T) {
	var order []string
	ctx, cancel := context.WithCancel(context.Background())
	canceling := Hook{Name: "B", Run: func(_ context.Context, rc *RequestContext) (Result, error) {
		order = append(order, "B")
		cancel()
		return Continue(), nil
	}}
	chain := NewChain([]Hook{recorder("A", &order), canceling}, []Hook{recorder("C", &order)})

	_, err := chain.Run(ctx, newTestContext(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"A", "B"}, order)
}

func TestNewChain_CopiesSlices(t *testing.T) {
	var order []string
	global := []Hook{recorder("A", &order)}
	chain := NewChain(global, nil)

	global[0] = recorder("X", &order)

	_, err := chain.Run(context.Background(), newTestContext(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, order)
}

func TestTerminateNilReply(t *testing.T) {
	res := Terminate(nil)
	require.True(t, res.Terminated())
	assert.Equal(t, http.StatusOK, res.Reply().Status)
}

func TestNewRequestContext(t *testing.T) {
	rc := newTestContext(t)

	assert.Equal(t, http.MethodPost, rc.Method)
	assert.Equal(t, "/status", rc.Path)
	assert.Equal(t, "1", rc.Query.Get("debug"))
	assert.Nil(t, rc.Body)
	assert.Equal(t, http.StatusOK, rc.Reply.Status)
	assert.NotNil(t, rc.Logger)
	assert.NotNil(t, rc.Helpers)
}
