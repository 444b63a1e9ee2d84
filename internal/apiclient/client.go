// Package apiclient is the typed REST client for the Auto Pneuma AI backend:
// content moderation, scripture context and the community tools registry.
//
// Every call is a single attempt. The client adds no retry, backoff or
// timeout of its own; deadlines come only from the caller's context or the
// supplied http.Client.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/autopneuma/pneuma/internal/contracts"
)

const (
	DefaultBaseURL = "http://localhost:8000"
	apiV1Prefix    = "/api/v1"
)

// APIError is a failure reported by the server
type APIError struct {
	StatusCode int
	// Detail is the server-provided "detail" message, empty when none was sent.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Client issues JSON requests against {baseURL}/api/v1
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New creates a Client. An empty baseURL selects DefaultBaseURL.
func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the server root the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ModerateContent asks the backend to flag content for moderator review
func (c *Client) ModerateContent(ctx context.Context, req contracts.ModerationRequest) (*contracts.ModerationResponse, error) {
	var out contracts.ModerationResponse
	if err := c.do(ctx, http.MethodPost, "/moderation/moderate", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ModerationHealth checks the moderation service
func (c *Client) ModerationHealth(ctx context.Context) (*contracts.HealthResponse, error) {
	return c.health(ctx, "/moderation/health")
}

// GetContext fetches biblical insight for a query
func (c *Client) GetContext(ctx context.Context, req contracts.ScriptureContextRequest) (*contracts.ScriptureContextResponse, error) {
	var out contracts.ScriptureContextResponse
	if err := c.do(ctx, http.MethodPost, "/scripture/context", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ScriptureHealth checks the scripture assistant
func (c *Client) ScriptureHealth(ctx context.Context) (*contracts.HealthResponse, error) {
	return c.health(ctx, "/scripture/health")
}

// ListTools lists registered community tools. Zero-valued params are omitted.
func (c *Client) ListTools(ctx context.Context, params contracts.ToolListParams) (*contracts.ToolListResponse, error) {
	q := url.Values{}
	if params.Category != "" {
		q.Set("category", params.Category)
	}
	if params.Status != "" {
		q.Set("status", params.Status)
	}
	if params.Page > 0 {
		q.Set("page", strconv.Itoa(params.Page))
	}
	if params.PerPage > 0 {
		q.Set("per_page", strconv.Itoa(params.PerPage))
	}

	endpoint := "/tools/list"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	var out contracts.ToolListResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetTool returns one registered tool
func (c *Client) GetTool(ctx context.Context, toolID string) (*contracts.RegisteredTool, error) {
	var out contracts.RegisteredTool
	if err := c.do(ctx, http.MethodGet, "/tools/"+url.PathEscape(toolID), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RegisterTool submits a tool to the registry on behalf of creatorID
func (c *Client) RegisterTool(ctx context.Context, reg contracts.ToolRegistration, creatorID string) (*contracts.RegisteredTool, error) {
	body := contracts.RegisterToolRequest{ToolRegistration: reg, CreatorID: creatorID}

	var out contracts.RegisteredTool
	if err := c.do(ctx, http.MethodPost, "/tools/register", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExecuteTool runs a community tool
func (c *Client) ExecuteTool(ctx context.Context, req contracts.ToolExecutionRequest) (*contracts.ToolExecutionResponse, error) {
	var out contracts.ToolExecutionResponse
	if err := c.do(ctx, http.MethodPost, "/tools/execute", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToolsHealth checks the community tools service
func (c *Client) ToolsHealth(ctx context.Context) (*contracts.HealthResponse, error) {
	return c.health(ctx, "/tools/health")
}

func (c *Client) health(ctx context.Context, endpoint string) (*contracts.HealthResponse, error) {
	var out contracts.HealthResponse
	if err := c.do(ctx, http.MethodGet, endpoint, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiV1Prefix+endpoint, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Detail: errorDetail(respBody)}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// errorDetail extracts a string "detail" field from an error body. Bodies that
// are not JSON, or whose detail is not a string, yield "".
func errorDetail(body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return ""
	}
	var detail string
	if err := json.Unmarshal(payload.Detail, &detail); err != nil {
		return ""
	}
	return detail
}
