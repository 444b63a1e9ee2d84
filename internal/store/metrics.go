package store

import (
	"context"
	"fmt"

	"github.com/autopneuma/pneuma/internal/domain"
)

func (s *Store) Metrics(ctx context.Context) (*domain.Metrics, error) {
	var m domain.Metrics
	err := s.db.QueryRowContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM profiles),
			(SELECT COUNT(*) FROM posts),
			(SELECT COUNT(*) FROM comments),
			(SELECT COUNT(*) FROM prayer_requests),
			(SELECT COUNT(*) FROM prayer_interactions),
			(SELECT COUNT(*) FROM projects),
			(SELECT COUNT(*) FROM project_stars),
			(SELECT COUNT(*) FROM community_tools),
			(SELECT COUNT(*) FROM tool_executions)
	`).Scan(&m.Profiles, &m.Posts, &m.Comments, &m.PrayerRequests, &m.Prayers,
		&m.Projects, &m.Stars, &m.Tools, &m.ToolExecutions)
	if err != nil {
		return nil, fmt.Errorf("query metrics: %w", err)
	}
	return &m, nil
}
