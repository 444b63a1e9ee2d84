package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/autopneuma/pneuma/internal/contracts"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return New(srv.URL, WithHTTPClient(srv.Client()))
}

func TestModerateContentSuccess(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/moderation/moderate", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req contracts.ModerationRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "hello", req.Content)
		assert.Equal(t, contracts.ContentPost, req.ContentType)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"flagged": false, "flags": [], "overall_score": 0, "recommendation": "approve", "reasoning": "ok", "timestamp": "2024-01-15T10:30:00Z"}`))
	})

	resp, err := client.ModerateContent(context.Background(), contracts.ModerationRequest{
		Content:     "hello",
		ContentType: contracts.ContentPost,
	})
	require.NoError(t, err)
	assert.False(t, resp.Flagged)
	assert.Equal(t, contracts.RecommendApprove, resp.Recommendation)
}

func TestErrorUsesServerDetail(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"detail": "model unavailable"}`))
	})

	resp, err := client.GetContext(context.Background(), contracts.ScriptureContextRequest{Query: "anxiety"})
	require.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, "model unavailable", err.Error())

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
}

func TestErrorFallsBackToStatus(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"no detail", `{"error": "boom"}`},
		{"empty detail", `{"detail": ""}`},
		{"non-string detail", `{"detail": [{"loc": ["body", "query"], "msg": "too short"}]}`},
		{"not json", `<html>bad gateway</html>`},
		{"empty body", ``},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				w.Write([]byte(tt.body))
			})

			_, err := client.ModerateContent(context.Background(), contracts.ModerationRequest{Content: "x", ContentType: contracts.ContentComment})
			require.Error(t, err)
			assert.Equal(t, "HTTP 502", err.Error())
		})
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client := New(url)
	_, err := client.ToolsHealth(context.Background())
	require.Error(t, err)

	var apiErr *APIError
	assert.False(t, errors.As(err, &apiErr))
	assert.Contains(t, err.Error(), "http request")
}

func TestListToolsQuery(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/tools/list", r.URL.Path)
		assert.Equal(t, "prayer", r.URL.Query().Get("category"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		assert.Empty(t, r.URL.Query().Get("status"))
		assert.Empty(t, r.URL.Query().Get("per_page"))
		w.Write([]byte(`{"tools": [{"id": "tool_1", "tool_name": "Verse Finder", "status": "active"}], "total": 21, "page": 2, "per_page": 20}`))
	})

	resp, err := client.ListTools(context.Background(), contracts.ToolListParams{Category: "prayer", Page: 2})
	require.NoError(t, err)
	require.Len(t, resp.Tools, 1)
	assert.Equal(t, "tool_1", resp.Tools[0].ID)
	assert.Equal(t, "Verse Finder", resp.Tools[0].ToolName)
	assert.Equal(t, 21, resp.Total)
}

func TestListToolsWithoutParams(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.RawQuery)
		w.Write([]byte(`{"tools": [], "total": 0, "page": 1, "per_page": 20}`))
	})

	resp, err := client.ListTools(context.Background(), contracts.ToolListParams{})
	require.NoError(t, err)
	assert.Empty(t, resp.Tools)
}

func TestRegisterToolSendsCreator(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tools/register", r.URL.Path)
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "user_789", body["creator_id"])
		assert.Equal(t, "Sermon Summary Generator", body["tool_name"])
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "tool_123", "creator_id": "user_789", "tool_name": "Sermon Summary Generator", "status": "pending_approval"}`))
	})

	tool, err := client.RegisterTool(context.Background(), contracts.ToolRegistration{ToolName: "Sermon Summary Generator"}, "user_789")
	require.NoError(t, err)
	assert.Equal(t, contracts.ToolPendingApproval, tool.Status)
}

func TestGetToolEscapesID(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/tools/a%2Fb", r.URL.RawPath)
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Tool not found: a/b"}`))
	})

	_, err := client.GetTool(context.Background(), "a/b")
	require.Error(t, err)
	assert.Equal(t, "Tool not found: a/b", err.Error())
}

func TestNewDefaultsBaseURL(t *testing.T) {
	assert.Equal(t, DefaultBaseURL, New("").BaseURL())
	assert.Equal(t, "https://api.example.org", New("https://api.example.org/").BaseURL())
}
