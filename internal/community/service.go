// Package community implements the member-facing forms: discussions, prayer
// requests, the project showcase and profiles. Posted content passes through
// AI moderation before it is stored.
package community

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/contracts"
	"github.com/autopneuma/pneuma/internal/domain"
	"github.com/autopneuma/pneuma/internal/embedding"
)

// Moderator screens content. A nil result means the check could not run.
type Moderator interface {
	Moderate(ctx context.Context, req contracts.ModerationRequest) *contracts.ModerationResponse
}

// Repositories groups the stores the service writes to
type Repositories struct {
	Posts    domain.PostRepository
	Prayers  domain.PrayerRepository
	Projects domain.ProjectRepository
	Profiles domain.ProfileRepository
	Metrics  domain.MetricsRepository
}

type Service struct {
	posts     domain.PostRepository
	prayers   domain.PrayerRepository
	projects  domain.ProjectRepository
	profiles  domain.ProfileRepository
	metrics   domain.MetricsRepository
	moderator Moderator
	embedder  embedding.Embedder
	logger    *zap.Logger
}

// NewService wires the service. embedder may be nil, which disables related posts.
func NewService(repos Repositories, moderator Moderator, embedder embedding.Embedder, logger *zap.Logger) *Service {
	return &Service{
		posts:     repos.Posts,
		prayers:   repos.Prayers,
		projects:  repos.Projects,
		profiles:  repos.Profiles,
		metrics:   repos.Metrics,
		moderator: moderator,
		embedder:  embedder,
		logger:    logger,
	}
}

// Warnings shown to the author when their content is held back
const (
	WarningFlagged = "Your post has been flagged for moderator review due to potential concerns. It will be visible once reviewed."
	WarningPending = "Your post has been submitted and will be reviewed by moderators shortly."
)

// moderate decides the stored status of new content. Content is approved
// when the check cannot be completed.
func (s *Service) moderate(ctx context.Context, req contracts.ModerationRequest) (domain.ModerationStatus, string) {
	if s.moderator == nil {
		return domain.ModerationApproved, ""
	}
	result := s.moderator.Moderate(ctx, req)
	if result == nil {
		s.logger.Warn("moderation unavailable, approving content",
			zap.String("content_type", string(req.ContentType)),
			zap.String("author_id", req.AuthorID))
		return domain.ModerationApproved, ""
	}
	if !result.Flagged {
		return domain.ModerationApproved, ""
	}

	switch result.Recommendation {
	case contracts.RecommendFlagHighPriority:
		return domain.ModerationFlagged, WarningFlagged
	case contracts.RecommendFlagForReview:
		return domain.ModerationPending, WarningPending
	default:
		return domain.ModerationApproved, ""
	}
}

func requireUser(userID string) error {
	if userID == "" {
		return domain.Errorf(domain.ErrUnauthorized, "You must be logged in")
	}
	return nil
}

// RequireAdmin fails with ErrForbidden unless userID has the admin role
func (s *Service) RequireAdmin(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	profile, err := s.profiles.GetProfile(ctx, userID)
	if errors.Is(err, domain.ErrNotFound) {
		return domain.Errorf(domain.ErrForbidden, "Admin access required")
	}
	if err != nil {
		return fmt.Errorf("load profile: %w", err)
	}
	if profile.Role != domain.RoleAdmin {
		return domain.Errorf(domain.ErrForbidden, "Admin access required")
	}
	return nil
}

// AdminMetrics returns platform counters to administrators
func (s *Service) AdminMetrics(ctx context.Context, userID string) (*domain.Metrics, error) {
	if err := s.RequireAdmin(ctx, userID); err != nil {
		return nil, err
	}
	return s.metrics.Metrics(ctx)
}
