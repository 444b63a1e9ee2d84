package domain

import "time"

// ModerationStatus is the review state a piece of community content is stored with.
type ModerationStatus string

const (
	ModerationApproved ModerationStatus = "approved"
	ModerationPending  ModerationStatus = "pending"
	ModerationFlagged  ModerationStatus = "flagged"
)

// Post is a discussion thread in the community forum
type Post struct {
	ID               string           `json:"id"`
	Title            string           `json:"title"`
	Content          string           `json:"content"`
	AuthorID         string           `json:"author_id"`
	CategoryID       string           `json:"category_id"`
	Tags             []string         `json:"tags"`
	ModerationStatus ModerationStatus `json:"moderation_status"`
	CreatedAt        time.Time        `json:"created_at"`
}

// Comment is a reply to a post, optionally nested under another comment
type Comment struct {
	ID               string           `json:"id"`
	PostID           string           `json:"post_id"`
	ParentID         *string          `json:"parent_id,omitempty"`
	AuthorID         string           `json:"author_id"`
	Content          string           `json:"content"`
	ModerationStatus ModerationStatus `json:"moderation_status"`
	CreatedAt        time.Time        `json:"created_at"`
}

type PrayerCategory string

const (
	PrayerPersonal  PrayerCategory = "personal"
	PrayerCommunity PrayerCategory = "community"
	PrayerProject   PrayerCategory = "project"
	PrayerWorld     PrayerCategory = "world"
)

// PrayerRequest is a member's request for the community to pray.
// AuthorID is blanked when the request is anonymous and shown to others.
type PrayerRequest struct {
	ID               string           `json:"id"`
	AuthorID         string           `json:"author_id,omitempty"`
	Title            string           `json:"title"`
	Content          string           `json:"content"`
	Category         PrayerCategory   `json:"category"`
	IsAnonymous      bool             `json:"is_anonymous"`
	IsPrivate        bool             `json:"is_private"`
	PrayerCount      int              `json:"prayer_count"`
	ModerationStatus ModerationStatus `json:"moderation_status"`
	CreatedAt        time.Time        `json:"created_at"`
}

// PrayerUpdate is a follow-up posted by the author of a prayer request
type PrayerUpdate struct {
	ID              string    `json:"id"`
	PrayerRequestID string    `json:"prayer_request_id"`
	AuthorID        string    `json:"author_id"`
	Content         string    `json:"content"`
	CreatedAt       time.Time `json:"created_at"`
}

type ProjectStatus string

const (
	ProjectPrototype  ProjectStatus = "prototype"
	ProjectActive     ProjectStatus = "active"
	ProjectArchived   ProjectStatus = "archived"
	ProjectDeprecated ProjectStatus = "deprecated"
)

// Project is an entry in the project showcase
type Project struct {
	ID                   string        `json:"id"`
	Slug                 string        `json:"slug"`
	CreatorID            string        `json:"creator_id"`
	Title                string        `json:"title"`
	Description          string        `json:"description"`
	LongDescription      string        `json:"long_description"`
	SpiritualApplication string        `json:"spiritual_application"`
	TechStack            []string      `json:"tech_stack"`
	Tags                 []string      `json:"tags"`
	GithubURL            string        `json:"github_url,omitempty"`
	DemoURL              string        `json:"demo_url,omitempty"`
	DocumentationURL     string        `json:"documentation_url,omitempty"`
	License              string        `json:"license,omitempty"`
	Status               ProjectStatus `json:"status"`
	StarCount            int           `json:"star_count"`
	CreatedAt            time.Time     `json:"created_at"`
}

type Role string

const (
	RoleMember    Role = "member"
	RoleModerator Role = "moderator"
	RoleAdmin     Role = "admin"
)

// Profile is the public member profile attached to an auth user
type Profile struct {
	UserID         string    `json:"user_id"`
	Username       string    `json:"username"`
	FullName       string    `json:"full_name,omitempty"`
	Bio            string    `json:"bio,omitempty"`
	SpiritualGifts []string  `json:"spiritual_gifts"`
	FocusAreas     []string  `json:"focus_areas"`
	Role           Role      `json:"role"`
	CreatedAt      time.Time `json:"created_at"`
}

// Category is a discussion forum category
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Categories is the fixed forum catalog
var Categories = []Category{
	{ID: "faith-tech", Name: "Faith & Tech"},
	{ID: "ai-ethics", Name: "AI Ethics"},
	{ID: "prayer-projects", Name: "Prayer & Projects"},
	{ID: "questions-help", Name: "Questions & Help"},
	{ID: "announcements", Name: "Announcements"},
}

// IsValidCategory reports whether id names a forum category
func IsValidCategory(id string) bool {
	for _, c := range Categories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// Metrics are the platform counters shown to administrators
type Metrics struct {
	Profiles       int `json:"profiles"`
	Posts          int `json:"posts"`
	Comments       int `json:"comments"`
	PrayerRequests int `json:"prayer_requests"`
	Prayers        int `json:"prayers"`
	Projects       int `json:"projects"`
	Stars          int `json:"stars"`
	Tools          int `json:"tools"`
	ToolExecutions int `json:"tool_executions"`
}

// ToolExecution is one logged run of a community tool
type ToolExecution struct {
	ID              string         `json:"id"`
	ToolID          string         `json:"tool_id"`
	UserID          string         `json:"user_id"`
	InputData       map[string]any `json:"input_data"`
	OutputData      map[string]any `json:"output_data"`
	ExecutionTimeMS float64        `json:"execution_time_ms"`
	Success         bool           `json:"success"`
	ErrorMessage    string         `json:"error_message,omitempty"`
	ExecutedAt      time.Time      `json:"executed_at"`
}

// ModerationLogEntry queues AI-flagged content for human moderators
type ModerationLogEntry struct {
	ID          string         `json:"id"`
	ContentType string         `json:"content_type"`
	ContentID   string         `json:"content_id"`
	FlaggedBy   string         `json:"flagged_by"`
	Reason      string         `json:"reason"`
	Details     map[string]any `json:"details"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}
