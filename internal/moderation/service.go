// Package moderation flags community content for human review. It never
// removes content; the strongest outcome is a high-priority review request.
package moderation

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/contracts"
	"github.com/autopneuma/pneuma/internal/llm"
)

const (
	DefaultThreshold  = 0.7
	highPriorityScore = 0.8
)

var severityWeights = map[contracts.Severity]float64{
	contracts.SeverityLow:    0.3,
	contracts.SeverityMedium: 0.6,
	contracts.SeverityHigh:   1.0,
}

// Options tune the service
type Options struct {
	Enabled bool
	// Threshold is the minimum confidence a flag needs to be kept.
	Threshold float64
}

// Service screens content with an LLM
type Service struct {
	llm       llm.Completer
	enabled   bool
	threshold float64
	now       func() time.Time
	logger    *zap.Logger
}

func NewService(completer llm.Completer, opts Options, logger *zap.Logger) *Service {
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Service{
		llm:       completer,
		enabled:   opts.Enabled,
		threshold: threshold,
		now:       time.Now,
		logger:    logger,
	}
}

func (s *Service) Enabled() bool {
	return s.enabled
}

// Moderate analyzes content and returns a verdict. It never fails: when the
// model cannot be reached the content is routed to manual review.
func (s *Service) Moderate(ctx context.Context, req contracts.ModerationRequest) contracts.ModerationResponse {
	if !s.enabled || s.llm == nil {
		return s.approved("AI moderation is currently disabled. Content approved by default.")
	}

	raw, err := s.llm.CompleteJSON(ctx, llm.Request{
		System:      systemPrompt(req.ContentType),
		Prompt:      userPrompt(req.Content, req.ContentType),
		Temperature: 0.3,
	})
	if err != nil {
		s.logger.Error("moderation model call failed",
			zap.String("content_type", string(req.ContentType)),
			zap.String("content_id", req.ContentID),
			zap.Error(err))
		return s.systemError()
	}

	flags := ParseFlags(raw, s.threshold)
	score := OverallScore(flags)

	return contracts.ModerationResponse{
		Flagged:        len(flags) > 0,
		Flags:          flags,
		OverallScore:   score,
		Recommendation: Recommend(score, flags, s.threshold),
		Reasoning:      Reasoning(flags, score),
		Timestamp:      s.now().UTC(),
	}
}

// ParseFlags decodes the model's {"flags": [...]} answer and keeps flags whose
// confidence reaches threshold. Malformed answers yield no flags.
func ParseFlags(raw string, threshold float64) []contracts.ModerationFlag {
	var payload struct {
		Flags []contracts.ModerationFlag `json:"flags"`
	}
	if err := json.Unmarshal([]byte(llm.StripFences(raw)), &payload); err != nil {
		return []contracts.ModerationFlag{}
	}

	flags := make([]contracts.ModerationFlag, 0, len(payload.Flags))
	for _, f := range payload.Flags {
		if f.Category == "" || f.Confidence < 0 || f.Confidence > 1 {
			continue
		}
		if f.Confidence >= threshold {
			flags = append(flags, f)
		}
	}
	return flags
}

// OverallScore is the severity-weighted mean confidence, capped at 1
func OverallScore(flags []contracts.ModerationFlag) float64 {
	if len(flags) == 0 {
		return 0
	}

	var sum float64
	for _, f := range flags {
		weight, ok := severityWeights[f.Severity]
		if !ok {
			weight = 0.5
		}
		sum += f.Confidence * weight
	}
	return math.Min(sum/float64(len(flags)), 1.0)
}

// Recommend maps a score and its flags to a review queue
func Recommend(score float64, flags []contracts.ModerationFlag, threshold float64) contracts.Recommendation {
	if len(flags) == 0 {
		return contracts.RecommendApprove
	}

	for _, f := range flags {
		if f.Severity == contracts.SeverityHigh {
			return contracts.RecommendFlagHighPriority
		}
	}
	if score >= highPriorityScore {
		return contracts.RecommendFlagHighPriority
	}
	if score >= threshold {
		return contracts.RecommendFlagForReview
	}
	return contracts.RecommendApprove
}

// Reasoning renders the verdict for moderators
func Reasoning(flags []contracts.ModerationFlag, score float64) string {
	if len(flags) == 0 {
		return "Content appears appropriate for the community. No concerns identified."
	}

	var sb strings.Builder
	sb.WriteString("Content flagged for moderator review:\n\n")
	for i, f := range flags {
		if i > 0 {
			sb.WriteString("\n")
		}
		fmt.Fprintf(&sb, "• %s (%s severity, %.0f%% confidence): %s",
			titleCase(f.Category), f.Severity, f.Confidence*100, f.Explanation)
	}

	if score >= highPriorityScore {
		sb.WriteString("\n\nRecommendation: High priority review recommended.")
	} else {
		sb.WriteString("\n\nRecommendation: Standard review queue.")
	}
	sb.WriteString("\n\nNote: This is an AI assessment to assist human moderators. Final decisions should be made by community moderators using wisdom and discernment.")

	return sb.String()
}

// titleCase turns "divisive_language" into "Divisive Language"
func titleCase(category string) string {
	words := strings.Fields(strings.ReplaceAll(category, "_", " "))
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + strings.ToLower(w[size:])
	}
	return strings.Join(words, " ")
}

func (s *Service) approved(reasoning string) contracts.ModerationResponse {
	return contracts.ModerationResponse{
		Flagged:        false,
		Flags:          []contracts.ModerationFlag{},
		OverallScore:   0,
		Recommendation: contracts.RecommendApprove,
		Reasoning:      reasoning,
		Timestamp:      s.now().UTC(),
	}
}

func (s *Service) systemError() contracts.ModerationResponse {
	return contracts.ModerationResponse{
		Flagged: true,
		Flags: []contracts.ModerationFlag{{
			Category:    "system_error",
			Confidence:  1.0,
			Explanation: "Moderation system encountered an error. Manual review recommended.",
			Severity:    contracts.SeverityMedium,
		}},
		OverallScore:   0.5,
		Recommendation: contracts.RecommendFlagForReview,
		Reasoning:      "System error during automated moderation. Please review manually.",
		Timestamp:      s.now().UTC(),
	}
}

// ModerateContent validates req and moderates it. It lets the service stand in
// for the remote API wherever a moderation client is expected.
func (s *Service) ModerateContent(ctx context.Context, req contracts.ModerationRequest) (*contracts.ModerationResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	resp := s.Moderate(ctx, req)
	return &resp, nil
}
