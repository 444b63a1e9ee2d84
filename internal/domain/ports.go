package domain

import (
	"context"
	"time"

	"github.com/autopneuma/pneuma/internal/contracts"
)

// PostFilter narrows a post listing. Zero values mean no filter.
type PostFilter struct {
	CategoryID string
	Status     ModerationStatus
	Limit      int
	Offset     int
}

// PostRepository defines persistence operations for discussions.
type PostRepository interface {
	CreatePost(ctx context.Context, post *Post) error
	GetPost(ctx context.Context, id string) (*Post, error)
	ListPosts(ctx context.Context, filter PostFilter) ([]Post, error)

	CreateComment(ctx context.Context, comment *Comment) error
	ListComments(ctx context.Context, postID string) ([]Comment, error)

	// SaveEmbedding stores the vector used for related-post lookups.
	SaveEmbedding(ctx context.Context, postID string, vector []float64, model string) error
	// PostEmbeddings returns the stored vectors of approved posts keyed by post id.
	PostEmbeddings(ctx context.Context) (map[string][]float64, error)
}

// PrayerRepository defines persistence operations for prayer requests.
type PrayerRepository interface {
	CreatePrayerRequest(ctx context.Context, req *PrayerRequest) error
	GetPrayerRequest(ctx context.Context, id string) (*PrayerRequest, error)
	// ListPrayerRequests returns public requests, newest first.
	ListPrayerRequests(ctx context.Context, category PrayerCategory, limit, offset int) ([]PrayerRequest, error)

	// RecordPrayer registers that userID prayed for the request. Repeated calls
	// by the same user do not change the count. Returns the current count.
	RecordPrayer(ctx context.Context, requestID, userID string) (int, error)

	CreatePrayerUpdate(ctx context.Context, update *PrayerUpdate) error
	ListPrayerUpdates(ctx context.Context, requestID string) ([]PrayerUpdate, error)
}

// ProjectRepository defines persistence operations for the showcase.
type ProjectRepository interface {
	// CreateProject inserts the project. Returns ErrConflict when the slug is taken.
	CreateProject(ctx context.Context, project *Project) error
	GetProjectBySlug(ctx context.Context, slug string) (*Project, error)
	ListProjects(ctx context.Context, status ProjectStatus, limit, offset int) ([]Project, error)

	// ToggleStar stars the project for userID, or removes an existing star.
	// Returns whether the project is now starred and the new star count.
	ToggleStar(ctx context.Context, projectID, userID string) (bool, int, error)
}

// ProfileRepository defines persistence operations for member profiles.
type ProfileRepository interface {
	// UpsertProfile creates or replaces the profile. Returns ErrConflict when
	// the username belongs to another user.
	UpsertProfile(ctx context.Context, profile *Profile) error
	GetProfile(ctx context.Context, userID string) (*Profile, error)
}

// MetricsRepository aggregates platform counters.
type MetricsRepository interface {
	Metrics(ctx context.Context) (*Metrics, error)
}

// ToolFilter narrows a tool listing. Status is required.
type ToolFilter struct {
	Status   contracts.ToolStatus
	Category string
	Limit    int
	Offset   int
}

// ToolRepository defines persistence operations for the community tools registry.
type ToolRepository interface {
	// ProjectCreator returns the creator of the project, or ErrNotFound.
	ProjectCreator(ctx context.Context, projectID string) (string, error)

	CreateTool(ctx context.Context, tool *contracts.RegisteredTool) error
	GetTool(ctx context.Context, id string) (*contracts.RegisteredTool, error)
	// ListTools returns one page of matching tools and the total match count.
	ListTools(ctx context.Context, filter ToolFilter) ([]contracts.RegisteredTool, int, error)
	UpdateToolStats(ctx context.Context, id string, total int, successRate, avgMS float64) error
	ApproveTool(ctx context.Context, id, approverID string, at time.Time) error

	LogExecution(ctx context.Context, exec *ToolExecution) error
	CountExecutionsSince(ctx context.Context, toolID, userID string, since time.Time) (int, error)
}

// ModerationLog records AI moderation flags for review.
type ModerationLog interface {
	RecordModerationFlag(ctx context.Context, entry *ModerationLogEntry) error
	ListModerationFlags(ctx context.Context, status string, limit int) ([]ModerationLogEntry, error)
}
