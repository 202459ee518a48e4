package lifecycle

import (
	"context"

	"github.com/pkg/errors"
)

// Tier is the registration level of a hook.
type Tier string

const (
	TierGlobal Tier = "global"
	TierRoute  Tier = "route"
)

// HookFunc is the body of a hook. Returning an error fails the request;
// returning Terminate stops it with a reply.
type HookFunc func(ctx context.Context, rc *RequestContext) (Result, error)

// Hook is a named pre-request step.
type Hook struct {
	Name string
	Run  HookFunc
}

// Result tells the chain whether to go on.
type Result struct {
	reply *Reply
	hook  string
}

// Continue lets the request proceed to the next hook.
func Continue() Result {
	return Result{}
}

// Terminate stops the request and sends reply as is. A nil reply sends an
// empty 200.
func Terminate(reply *Reply) Result {
	if reply == nil {
		reply = NewReply()
	}
	return Result{reply: reply}
}

func (r Result) Terminated() bool {
	return r.reply != nil
}

func (r Result) Reply() *Reply {
	return r.reply
}

// Hook names the hook that terminated the chain.
func (r Result) Hook() string {
	return r.hook
}

// HookError is a hook that failed or panicked.
type HookError struct {
	Hook string
	Tier Tier
	Err  error
}

func (e *HookError) Error() string {
	return string(e.Tier) + " hook " + e.Hook + ": " + e.Err.Error()
}

func (e *HookError) Unwrap() error {
	return e.Err
}

type entry struct {
	hook Hook
	tier Tier
}

// Chain runs global hooks, then route hooks, in registration order.
// A Chain is immutable and safe for concurrent use.
type Chain struct {
	entries []entry
}

// NewChain copies both slices, so later appends by the caller do not
// change the chain.
func NewChain(global, route []Hook) *Chain {
	entries := make([]entry, 0, len(global)+len(route))
	for _, h := range global {
		entries = append(entries, entry{hook: h, tier: TierGlobal})
	}
	for _, h := range route {
		entries = append(entries, entry{hook: h, tier: TierRoute})
	}
	return &Chain{entries: entries}
}

// Len returns the number of hooks.
func (c *Chain) Len() int {
	return len(c.entries)
}

// Names lists the hooks in execution order.
func (c *Chain) Names() []string {
	names := make([]string, len(c.entries))
	for i, e := range c.entries {
		names[i] = e.hook.Name
	}
	return names
}

// Run executes the hooks in order against rc. It stops at the first hook
// that terminates or fails, and before any hook once ctx is done.
func (c *Chain) Run(ctx context.Context, rc *RequestContext) (Result, error) {
	for _, e := range c.entries {
		if err := ctx.Err(); err != nil {
			return Result{}, err
		}

		res, err := runHook(ctx, e.hook, rc)
		if err != nil {
			return Result{}, &HookError{Hook: e.hook.Name, Tier: e.tier, Err: err}
		}
		if res.Terminated() {
			res.hook = e.hook.Name
			return res, nil
		}
	}
	return Continue(), nil
}

func runHook(ctx context.Context, h Hook, rc *RequestContext) (res Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = errors.Errorf("panic: %v", r)
		}
	}()

	if h.Run == nil {
		return Continue(), nil
	}
	return h.Run(ctx, rc)
}
