package contracts

import "time"

type ContentType string

const (
	ContentPost          ContentType = "post"
	ContentComment       ContentType = "comment"
	ContentPrayerRequest ContentType = "prayer_request"
	ContentProject       ContentType = "project"
)

type Severity string

const (
	SeverityLow    Severity = "low"
	SeverityMedium Severity = "medium"
	SeverityHigh   Severity = "high"
)

type Recommendation string

const (
	RecommendApprove          Recommendation = "approve"
	RecommendFlagForReview    Recommendation = "flag_for_review"
	RecommendFlagHighPriority Recommendation = "flag_high_priority"
)

// ModerationRequest asks the backend to screen one piece of content
type ModerationRequest struct {
	Content     string      `json:"content" validate:"required,max=10000"`
	ContentType ContentType `json:"content_type" validate:"oneof=post comment prayer_request project"`
	ContentID   string      `json:"content_id,omitempty"`
	AuthorID    string      `json:"author_id,omitempty"`
}

func (r ModerationRequest) Validate() error {
	return check(r)
}

// ModerationFlag is one concern raised about the content
type ModerationFlag struct {
	Category    string   `json:"category"`
	Confidence  float64  `json:"confidence"`
	Explanation string   `json:"explanation"`
	Severity    Severity `json:"severity"`
}

// ModerationResponse is the verdict for a ModerationRequest.
// Flags only ever route content to human review; nothing is removed automatically.
type ModerationResponse struct {
	Flagged        bool             `json:"flagged"`
	Flags          []ModerationFlag `json:"flags"`
	OverallScore   float64          `json:"overall_score"`
	Recommendation Recommendation   `json:"recommendation"`
	Reasoning      string           `json:"reasoning"`
	Timestamp      time.Time        `json:"timestamp"`
}
