package moderation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/contracts"
	"github.com/autopneuma/pneuma/internal/llm"
)

type fakeLLM struct {
	out  string
	err  error
	last llm.Request
}

func (f *fakeLLM) CompleteJSON(ctx context.Context, req llm.Request) (string, error) {
	f.last = req
	return f.out, f.err
}

func newService(completer llm.Completer) *Service {
	return NewService(completer, Options{Enabled: true}, zap.NewNop())
}

func TestModerateNoFlags(t *testing.T) {
	svc := newService(&fakeLLM{out: `{"flags": []}`})

	resp := svc.Moderate(context.Background(), contracts.ModerationRequest{Content: "hello", ContentType: contracts.ContentPost})
	assert.False(t, resp.Flagged)
	assert.Empty(t, resp.Flags)
	assert.Equal(t, 0.0, resp.OverallScore)
	assert.Equal(t, contracts.RecommendApprove, resp.Recommendation)
	assert.Equal(t, "Content appears appropriate for the community. No concerns identified.", resp.Reasoning)
}

func TestModerateFiltersBelowThreshold(t *testing.T) {
	fake := &fakeLLM{out: `{"flags": [
		{"category": "spam", "confidence": 0.5, "explanation": "link", "severity": "low"},
		{"category": "divisive_language", "confidence": 0.75, "explanation": "tone", "severity": "medium"}
	]}`}
	svc := newService(fake)

	resp := svc.Moderate(context.Background(), contracts.ModerationRequest{Content: "some post", ContentType: contracts.ContentComment})
	require.Len(t, resp.Flags, 1)
	assert.Equal(t, "divisive_language", resp.Flags[0].Category)
	assert.True(t, resp.Flagged)
	assert.InDelta(t, 0.45, resp.OverallScore, 1e-9)
	// flagged, but the weighted score stays under the review threshold
	assert.Equal(t, contracts.RecommendApprove, resp.Recommendation)
	assert.Contains(t, fake.last.System, "Content type being moderated: comment")
	assert.Equal(t, 0.3, fake.last.Temperature)
}

func TestModerateDisabled(t *testing.T) {
	fake := &fakeLLM{err: errors.New("must not be called")}
	svc := NewService(fake, Options{Enabled: false}, zap.NewNop())

	resp := svc.Moderate(context.Background(), contracts.ModerationRequest{Content: "x", ContentType: contracts.ContentPost})
	assert.False(t, resp.Flagged)
	assert.Equal(t, contracts.RecommendApprove, resp.Recommendation)
	assert.Contains(t, resp.Reasoning, "disabled")
	assert.Empty(t, fake.last.Prompt)
}

func TestModerateModelFailureFailsClosed(t *testing.T) {
	svc := newService(&fakeLLM{err: errors.New("connection reset")})

	resp := svc.Moderate(context.Background(), contracts.ModerationRequest{Content: "x", ContentType: contracts.ContentPost})
	assert.True(t, resp.Flagged)
	require.Len(t, resp.Flags, 1)
	assert.Equal(t, "system_error", resp.Flags[0].Category)
	assert.Equal(t, 0.5, resp.OverallScore)
	assert.Equal(t, contracts.RecommendFlagForReview, resp.Recommendation)
}

func TestParseFlagsMalformed(t *testing.T) {
	assert.Empty(t, ParseFlags("not json", DefaultThreshold))
	assert.Empty(t, ParseFlags(`{"flags": [{"category": "spam", "confidence": 7, "severity": "low"}]}`, DefaultThreshold))
}

func TestRecommend(t *testing.T) {
	medium := contracts.ModerationFlag{Category: "spam", Confidence: 0.9, Severity: contracts.SeverityMedium}
	high := contracts.ModerationFlag{Category: "personal_attack", Confidence: 0.7, Severity: contracts.SeverityHigh}

	tests := []struct {
		name  string
		score float64
		flags []contracts.ModerationFlag
		want  contracts.Recommendation
	}{
		{"no flags", 0.9, nil, contracts.RecommendApprove},
		{"high severity", 0.1, []contracts.ModerationFlag{high}, contracts.RecommendFlagHighPriority},
		{"score above 0.8", 0.85, []contracts.ModerationFlag{medium}, contracts.RecommendFlagHighPriority},
		{"score at threshold", 0.7, []contracts.ModerationFlag{medium}, contracts.RecommendFlagForReview},
		{"score below threshold", 0.54, []contracts.ModerationFlag{medium}, contracts.RecommendApprove},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Recommend(tt.score, tt.flags, DefaultThreshold))
		})
	}
}

func TestOverallScore(t *testing.T) {
	flags := []contracts.ModerationFlag{
		{Confidence: 1.0, Severity: contracts.SeverityHigh},
		{Confidence: 0.8, Severity: contracts.SeverityLow},
		{Confidence: 1.0, Severity: "unknown"},
	}
	assert.InDelta(t, (1.0+0.24+0.5)/3, OverallScore(flags), 1e-9)
	assert.Equal(t, 0.0, OverallScore(nil))
}

func TestReasoning(t *testing.T) {
	flags := []contracts.ModerationFlag{
		{Category: "divisive_language", Confidence: 0.75, Explanation: "Divisive theological argument", Severity: contracts.SeverityMedium},
	}
	got := Reasoning(flags, 0.45)
	assert.Contains(t, got, "• Divisive Language (medium severity, 75% confidence): Divisive theological argument")
	assert.Contains(t, got, "Recommendation: Standard review queue.")

	got = Reasoning(flags, 0.9)
	assert.Contains(t, got, "Recommendation: High priority review recommended.")
}

func TestTitleCase(t *testing.T) {
	assert.Equal(t, "Divisive Language", titleCase("divisive_language"))
	assert.Equal(t, "Éthique Douteuse", titleCase("éthique_DOUTEUSE"))
	assert.Equal(t, "", titleCase(""))
}
