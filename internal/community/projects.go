package community

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/content"
	"github.com/autopneuma/pneuma/internal/domain"
)

const maxSlugAttempts = 100

// SubmitProject adds a project to the showcase under a unique slug
func (s *Service) SubmitProject(ctx context.Context, creatorID string, in domain.NewProject) (*domain.Project, error) {
	if err := requireUser(creatorID); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	base := content.Slugify(in.Title)
	if base == "" {
		base = "project"
	}
	project := &domain.Project{
		CreatorID:            creatorID,
		Title:                in.Title,
		Description:          in.Description,
		LongDescription:      in.LongDescription,
		SpiritualApplication: in.SpiritualApplication,
		TechStack:            in.TechStack,
		Tags:                 in.Tags,
		GithubURL:            in.GithubURL,
		DemoURL:              in.DemoURL,
		DocumentationURL:     in.DocumentationURL,
		License:              in.License,
		Status:               in.Status,
	}

	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		project.ID = ""
		project.Slug = base
		if attempt > 1 {
			project.Slug = fmt.Sprintf("%s-%d", base, attempt)
		}

		err := s.projects.CreateProject(ctx, project)
		if errors.Is(err, domain.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, err
		}
		s.logger.Info("project submitted", zap.String("project_id", project.ID), zap.String("slug", project.Slug))
		return project, nil
	}
	return nil, domain.Errorf(domain.ErrConflict, "Too many projects named %q", in.Title)
}

func (s *Service) GetProject(ctx context.Context, slug string) (*domain.Project, error) {
	return s.projects.GetProjectBySlug(ctx, slug)
}

func (s *Service) ListProjects(ctx context.Context, status domain.ProjectStatus, limit, offset int) ([]domain.Project, error) {
	return s.projects.ListProjects(ctx, status, limit, offset)
}

// StarResult is the star state after a toggle
type StarResult struct {
	Starred   bool `json:"starred"`
	StarCount int  `json:"star_count"`
}

// ToggleStar stars the project for userID, or removes their star
func (s *Service) ToggleStar(ctx context.Context, userID, slug string) (*StarResult, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	project, err := s.projects.GetProjectBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}
	starred, count, err := s.projects.ToggleStar(ctx, project.ID, userID)
	if err != nil {
		return nil, err
	}
	return &StarResult{Starred: starred, StarCount: count}, nil
}
