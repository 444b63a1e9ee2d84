// Package scripture answers faith and technology questions with biblical
// context produced by an LLM.
package scripture

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/contracts"
	"github.com/autopneuma/pneuma/internal/llm"
)

// Options tune the assistant
type Options struct {
	Enabled        bool
	DefaultVersion string
}

type Assistant struct {
	llm            llm.Completer
	enabled        bool
	defaultVersion string
	now            func() time.Time
	logger         *zap.Logger
}

func NewAssistant(completer llm.Completer, opts Options, logger *zap.Logger) *Assistant {
	version := opts.DefaultVersion
	if version == "" {
		version = contracts.DefaultBibleVersion
	}
	return &Assistant{
		llm:            completer,
		enabled:        opts.Enabled,
		defaultVersion: version,
		now:            time.Now,
		logger:         logger,
	}
}

func (a *Assistant) Enabled() bool {
	return a.enabled
}

// Context returns biblical insight for req. Failures are reported inside the
// response rather than as an error.
func (a *Assistant) Context(ctx context.Context, req contracts.ScriptureContextRequest) contracts.ScriptureContextResponse {
	if !a.enabled || a.llm == nil {
		return a.disabled(req.Query)
	}

	version := req.BibleVersion
	if version == "" {
		version = a.defaultVersion
	}

	raw, err := a.llm.CompleteJSON(ctx, llm.Request{
		System:      systemPrompt(version),
		Prompt:      userPrompt(req.Query, req.Context, req.ContentType),
		Temperature: 0.7,
		MaxTokens:   4096,
	})
	if err != nil {
		a.logger.Error("scripture model call failed", zap.Error(err))
		return a.failed(req.Query, err)
	}

	resp, err := Parse(raw, version)
	if err != nil {
		a.logger.Warn("scripture response unparseable", zap.Error(err))
		return a.failed(req.Query, err)
	}
	resp.Query = req.Query
	resp.Timestamp = a.now().UTC()
	return resp
}

// Parse decodes the model answer. References without a version get version.
func Parse(raw, version string) (contracts.ScriptureContextResponse, error) {
	var data struct {
		Summary              string                         `json:"summary"`
		BiblicalPrinciples   []string                       `json:"biblical_principles"`
		ScriptureReferences  []contracts.ScriptureReference `json:"scripture_references"`
		TheologicalInsights  string                         `json:"theological_insights"`
		PracticalApplication string                         `json:"practical_application"`
		FurtherStudy         []string                       `json:"further_study"`
	}
	if err := json.Unmarshal([]byte(llm.StripFences(raw)), &data); err != nil {
		return contracts.ScriptureContextResponse{}, fmt.Errorf("decode scripture response: %w", err)
	}

	refs := make([]contracts.ScriptureReference, 0, len(data.ScriptureReferences))
	for i, ref := range data.ScriptureReferences {
		if ref.Book == "" || ref.Chapter < 1 || ref.VerseStart < 1 {
			return contracts.ScriptureContextResponse{}, fmt.Errorf("scripture reference %d is incomplete", i)
		}
		if ref.Version == "" {
			ref.Version = version
		}
		refs = append(refs, ref)
	}

	return contracts.ScriptureContextResponse{
		Summary:              data.Summary,
		BiblicalPrinciples:   orEmpty(data.BiblicalPrinciples),
		ScriptureReferences:  refs,
		TheologicalInsights:  data.TheologicalInsights,
		PracticalApplication: data.PracticalApplication,
		FurtherStudy:         orEmpty(data.FurtherStudy),
	}, nil
}

func (a *Assistant) disabled(query string) contracts.ScriptureContextResponse {
	return a.blank(query,
		"Scripture Context Assistant is currently disabled.",
		"The Scripture Context Assistant feature is currently disabled. Please check back later.")
}

func (a *Assistant) failed(query string, err error) contracts.ScriptureContextResponse {
	return a.blank(query,
		"An error occurred while processing your request.",
		fmt.Sprintf("We encountered an error while generating biblical insights: %v. Please try again or contact support if the issue persists.", err))
}

func (a *Assistant) blank(query, summary, insights string) contracts.ScriptureContextResponse {
	return contracts.ScriptureContextResponse{
		Query:               query,
		Summary:             summary,
		BiblicalPrinciples:  []string{},
		ScriptureReferences: []contracts.ScriptureReference{},
		TheologicalInsights: insights,
		FurtherStudy:        []string{},
		Timestamp:           a.now().UTC(),
	}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
