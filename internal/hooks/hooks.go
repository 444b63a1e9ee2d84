// Package hooks wraps single API calls with the loading / error / result state
// a caller renders from. Each call moves idle -> loading -> success or error;
// starting a new call overwrites whatever the previous one left behind.
package hooks

import (
	"context"
	"sync"

	"github.com/autopneuma/pneuma/internal/contracts"
)

// State is a snapshot of a tracked call
type State[T any] struct {
	Loading bool
	// Error is nil unless the most recent call failed.
	Error  *string
	Result *T
}

// Call tracks the most recent invocation of one operation. It is safe to read
// its state while a call is in flight.
type Call[Req, Resp any] struct {
	fn       func(context.Context, Req) (*Resp, error)
	fallback string

	mu    sync.Mutex
	state State[Resp]
}

// NewCall wraps fn. fallback is reported when fn fails with an empty message.
func NewCall[Req, Resp any](fn func(context.Context, Req) (*Resp, error), fallback string) *Call[Req, Resp] {
	return &Call[Req, Resp]{fn: fn, fallback: fallback}
}

// Do runs the call and returns its result, or nil on failure. Failures are
// recorded in the state rather than returned.
func (c *Call[Req, Resp]) Do(ctx context.Context, req Req) *Resp {
	c.mu.Lock()
	c.state = State[Resp]{Loading: true}
	c.mu.Unlock()

	result, err := c.fn(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Loading = false
	if err != nil {
		msg := err.Error()
		if msg == "" {
			msg = c.fallback
		}
		c.state.Error = &msg
		return nil
	}
	c.state.Result = result
	return result
}

// State returns a snapshot of the current state
func (c *Call[Req, Resp]) State() State[Resp] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Call[Req, Resp]) IsLoading() bool {
	return c.State().Loading
}

// Err returns the last error message and whether there was one
func (c *Call[Req, Resp]) Err() (string, bool) {
	s := c.State()
	if s.Error == nil {
		return "", false
	}
	return *s.Error, true
}

type ModerationAPI interface {
	ModerateContent(ctx context.Context, req contracts.ModerationRequest) (*contracts.ModerationResponse, error)
}

type ScriptureAPI interface {
	GetContext(ctx context.Context, req contracts.ScriptureContextRequest) (*contracts.ScriptureContextResponse, error)
}

type ToolsAPI interface {
	ExecuteTool(ctx context.Context, req contracts.ToolExecutionRequest) (*contracts.ToolExecutionResponse, error)
}

// Moderation tracks content moderation calls
type Moderation struct {
	*Call[contracts.ModerationRequest, contracts.ModerationResponse]
}

func NewModeration(api ModerationAPI) *Moderation {
	return &Moderation{NewCall(api.ModerateContent, "Moderation failed")}
}

// Moderate screens content; nil means the check could not be completed
func (m *Moderation) Moderate(ctx context.Context, req contracts.ModerationRequest) *contracts.ModerationResponse {
	return m.Do(ctx, req)
}

// Scripture tracks scripture context lookups
type Scripture struct {
	*Call[contracts.ScriptureContextRequest, contracts.ScriptureContextResponse]
}

func NewScripture(api ScriptureAPI) *Scripture {
	return &Scripture{NewCall(api.GetContext, "Failed to get Scripture context")}
}

func (s *Scripture) GetContext(ctx context.Context, req contracts.ScriptureContextRequest) *contracts.ScriptureContextResponse {
	return s.Do(ctx, req)
}

// CommunityTool tracks community tool executions
type CommunityTool struct {
	*Call[contracts.ToolExecutionRequest, contracts.ToolExecutionResponse]
}

func NewCommunityTool(api ToolsAPI) *CommunityTool {
	return &CommunityTool{NewCall(api.ExecuteTool, "Tool execution failed")}
}

func (t *CommunityTool) ExecuteTool(ctx context.Context, req contracts.ToolExecutionRequest) *contracts.ToolExecutionResponse {
	return t.Do(ctx, req)
}
