package scripture

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

const answer = "```json\n" + `{
  "summary": "Work is worship.",
  "biblical_principles": ["Stewardship"],
  "scripture_references": [
    {"book": "Colossians", "chapter": 3, "verse_start": 23, "verse_end": 24, "text": "Whatever you do, work heartily"},
    {"book": "Genesis", "chapter": 2, "verse_start": 15, "text": "to work it and keep it", "version": "NIV"}
  ],
  "theological_insights": "insight",
  "practical_application": "apply",
  "further_study": ["Ecclesiastes 9:10"]
}` + "\n```"

func TestContextParsesAnswer(t *testing.T) {
	fake := &fakeLLM{out: answer}
	a := NewAssistant(fake, Options{Enabled: true}, zap.NewNop())

	resp := a.Context(context.Background(), contracts.ScriptureContextRequest{
		Query:        "How should I think about my coding work?",
		ContentType:  "discussion",
		BibleVersion: "KJV",
	})

	assert.Equal(t, "How should I think about my coding work?", resp.Query)
	assert.Equal(t, "Work is worship.", resp.Summary)
	require.Len(t, resp.ScriptureReferences, 2)
	assert.Equal(t, "KJV", resp.ScriptureReferences[0].Version)
	assert.Equal(t, "NIV", resp.ScriptureReferences[1].Version)
	assert.Nil(t, resp.ScriptureReferences[1].VerseEnd)
	assert.Equal(t, []string{"Ecclesiastes 9:10"}, resp.FurtherStudy)
	assert.False(t, resp.Timestamp.IsZero())

	assert.Contains(t, fake.last.System, "Bible version to cite: KJV")
	assert.Contains(t, fake.last.Prompt, "Context type: discussion")
	assert.NotContains(t, fake.last.Prompt, "Additional context")
}

func TestContextDefaultVersion(t *testing.T) {
	fake := &fakeLLM{out: answer}
	a := NewAssistant(fake, Options{Enabled: true}, zap.NewNop())

	resp := a.Context(context.Background(), contracts.ScriptureContextRequest{Query: "What is stewardship?"})
	assert.Equal(t, contracts.DefaultBibleVersion, resp.ScriptureReferences[0].Version)
}

func TestContextDisabled(t *testing.T) {
	a := NewAssistant(&fakeLLM{}, Options{Enabled: false}, zap.NewNop())

	resp := a.Context(context.Background(), contracts.ScriptureContextRequest{Query: "What is stewardship?"})
	assert.Equal(t, "Scripture Context Assistant is currently disabled.", resp.Summary)
	assert.Empty(t, resp.ScriptureReferences)
	assert.NotNil(t, resp.BiblicalPrinciples)
}

func TestContextModelError(t *testing.T) {
	a := NewAssistant(&fakeLLM{err: errors.New("quota exceeded")}, Options{Enabled: true}, zap.NewNop())

	resp := a.Context(context.Background(), contracts.ScriptureContextRequest{Query: "What is stewardship?"})
	assert.Equal(t, "An error occurred while processing your request.", resp.Summary)
	assert.Contains(t, resp.TheologicalInsights, "quota exceeded")
}

func TestContextUnparseable(t *testing.T) {
	a := NewAssistant(&fakeLLM{out: "I cannot answer that"}, Options{Enabled: true}, zap.NewNop())

	resp := a.Context(context.Background(), contracts.ScriptureContextRequest{Query: "What is stewardship?"})
	assert.Equal(t, "An error occurred while processing your request.", resp.Summary)
}

func TestParseRejectsIncompleteReference(t *testing.T) {
	_, err := Parse(`{"scripture_references": [{"book": "John"}]}`, "ESV")
	assert.Error(t, err)
}
