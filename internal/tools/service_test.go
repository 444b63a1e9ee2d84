package tools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/contracts"
	"github.com/autopneuma/pneuma/internal/domain"
	"github.com/autopneuma/pneuma/internal/store"
)

type fixture struct {
	svc     *Service
	store   *store.Store
	project *domain.Project
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	s, err := store.New(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	project := &domain.Project{Slug: "verse-finder", CreatorID: "creator", Title: "Verse Finder", Status: domain.ProjectActive}
	require.NoError(t, s.CreateProject(ctx, project))

	return &fixture{svc: NewService(s, true, zap.NewNop()), store: s, project: project}
}

func registration(projectID, endpoint string, approval bool) contracts.ToolRegistration {
	return contracts.ToolRegistration{
		ProjectID:            projectID,
		ToolName:             "Verse Finder",
		Description:          "Finds verses related to a topic of study",
		Category:             "scripture-study",
		APIEndpoint:          endpoint,
		InputSchema:          map[string]any{"type": "object"},
		OutputSchema:         map[string]any{"type": "object"},
		RequiresApproval:     &approval,
		SpiritualApplication: "Helps members study the Word",
	}
}

func TestRegisterDefaults(t *testing.T) {
	f := newFixture(t)

	tool, err := f.svc.Register(context.Background(), registration(f.project.ID, "https://tools.example.org/run", true), "creator")
	require.NoError(t, err)
	assert.Equal(t, contracts.ToolPendingApproval, tool.Status)
	assert.Equal(t, contracts.DefaultToolAuthMethod, tool.AuthenticationMethod)
	assert.Equal(t, contracts.DefaultToolRateLimit, tool.RateLimit)
	assert.Equal(t, 1.0, tool.SuccessRate)

	reg := registration(f.project.ID, "https://tools.example.org/run", false)
	tool, err = f.svc.Register(context.Background(), reg, "creator")
	require.NoError(t, err)
	assert.Equal(t, contracts.ToolActive, tool.Status)
}

func TestRegisterRejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.svc.Register(ctx, registration(f.project.ID, "https://x.org", true), "someone-else")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Register(ctx, registration("missing", "https://x.org", true), "creator")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.svc.Register(ctx, registration(f.project.ID, "ftp://x.org", true), "creator")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	disabled := NewService(f.store, false, zap.NewNop())
	_, err = disabled.Register(ctx, registration(f.project.ID, "https://x.org", true), "creator")
	assert.ErrorIs(t, err, ErrDisabled)
}

func TestExecuteTracksMetrics(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		json.NewDecoder(r.Body).Decode(&in)
		if in["topic"] == "fail" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{"verses": []string{"John 1:1"}, "topic": in["topic"]})
	}))
	defer srv.Close()

	tool, err := f.svc.Register(ctx, registration(f.project.ID, srv.URL, false), "creator")
	require.NoError(t, err)

	resp := f.svc.Execute(ctx, contracts.ToolExecutionRequest{ToolID: tool.ID, UserID: "u1", InputData: map[string]any{"topic": "word"}})
	require.True(t, resp.Success, "error: %v", resp.ErrorMessage)
	assert.Equal(t, "word", resp.OutputData["topic"])
	assert.Nil(t, resp.ErrorMessage)

	resp = f.svc.Execute(ctx, contracts.ToolExecutionRequest{ToolID: tool.ID, UserID: "u1", InputData: map[string]any{"topic": "fail"}})
	assert.False(t, resp.Success)
	require.NotNil(t, resp.ErrorMessage)
	assert.Contains(t, *resp.ErrorMessage, "status 500")
	assert.Equal(t, map[string]any{}, resp.OutputData)

	got, err := f.svc.Get(ctx, tool.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.TotalExecutions)
	assert.Equal(t, 0.5, got.SuccessRate)

	m, err := f.store.Metrics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, m.ToolExecutions)
}

func TestExecuteRateLimit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	reg := registration(f.project.ID, srv.URL, false)
	reg.RateLimit = 2
	tool, err := f.svc.Register(ctx, reg, "creator")
	require.NoError(t, err)

	req := contracts.ToolExecutionRequest{ToolID: tool.ID, UserID: "u1"}
	assert.True(t, f.svc.Execute(ctx, req).Success)
	assert.True(t, f.svc.Execute(ctx, req).Success)

	resp := f.svc.Execute(ctx, req)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.ErrorMessage)
	assert.Equal(t, "Rate limit exceeded. Max 2 requests per hour.", *resp.ErrorMessage)

	// the limit is per user
	assert.True(t, f.svc.Execute(ctx, contracts.ToolExecutionRequest{ToolID: tool.ID, UserID: "u2"}).Success)
}

func TestExecuteInactiveAndMissing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tool, err := f.svc.Register(ctx, registration(f.project.ID, "https://x.org", true), "creator")
	require.NoError(t, err)

	resp := f.svc.Execute(ctx, contracts.ToolExecutionRequest{ToolID: tool.ID, UserID: "u1"})
	assert.False(t, resp.Success)
	assert.Equal(t, "Tool is not active. Status: pending_approval", *resp.ErrorMessage)

	resp = f.svc.Execute(ctx, contracts.ToolExecutionRequest{ToolID: "nope", UserID: "u1"})
	assert.False(t, resp.Success)
	assert.Equal(t, "Tool not found: nope", *resp.ErrorMessage)
}

func TestListAndApprove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tool, err := f.svc.Register(ctx, registration(f.project.ID, "https://x.org", true), "creator")
	require.NoError(t, err)

	list, err := f.svc.List(ctx, contracts.ToolListParams{})
	require.NoError(t, err)
	assert.Equal(t, 0, list.Total)
	assert.Equal(t, 1, list.Page)
	assert.Equal(t, 20, list.PerPage)

	pending, err := f.svc.List(ctx, contracts.ToolListParams{Status: string(contracts.ToolPendingApproval)})
	require.NoError(t, err)
	assert.Equal(t, 1, pending.Total)

	approved, err := f.svc.Approve(ctx, tool.ID, "admin")
	require.NoError(t, err)
	assert.Equal(t, contracts.ToolActive, approved.Status)

	list, err = f.svc.List(ctx, contracts.ToolListParams{Category: "scripture-study"})
	require.NoError(t, err)
	assert.Equal(t, 1, list.Total)

	_, err = f.svc.List(ctx, contracts.ToolListParams{PerPage: 101})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	_, err = f.svc.List(ctx, contracts.ToolListParams{Page: -1})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestRollingStats(t *testing.T) {
	total, rate, avg := RollingStats(0, 1.0, 0, false, 100)
	assert.Equal(t, 1, total)
	assert.Equal(t, 0.0, rate)
	assert.Equal(t, 100.0, avg)

	total, rate, avg = RollingStats(3, 2.0/3.0, 50, true, 150)
	assert.Equal(t, 4, total)
	assert.Equal(t, 0.75, rate)
	assert.Equal(t, 75.0, avg)
}
