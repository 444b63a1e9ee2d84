package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/autopneuma/pneuma/internal/domain"
)

const projectColumns = `id, slug, creator_id, title, description, long_description, spiritual_application,
	tech_stack, tags, github_url, demo_url, documentation_url, license, status, star_count, created_at`

func (s *Store) CreateProject(ctx context.Context, p *domain.Project) error {
	if p.ID == "" {
		p.ID = newID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = s.now()
	}
	tech, err := encodeList(p.TechStack)
	if err != nil {
		return err
	}
	tags, err := encodeList(p.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO projects ("+projectColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		p.ID, p.Slug, p.CreatorID, p.Title, p.Description, p.LongDescription, p.SpiritualApplication,
		tech, tags, p.GithubURL, p.DemoURL, p.DocumentationURL, p.License, p.Status, p.StarCount, p.CreatedAt,
	)
	if isUniqueViolation(err) {
		return fmt.Errorf("project slug %q: %w", p.Slug, domain.ErrConflict)
	}
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

func (s *Store) GetProjectBySlug(ctx context.Context, slug string) (*domain.Project, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+projectColumns+" FROM projects WHERE slug = ?", slug)
	p, err := scanProject(row)
	if err != nil {
		return nil, notFound(err, "project")
	}
	return p, nil
}

// ListProjects returns projects with the most stars first
func (s *Store) ListProjects(ctx context.Context, status domain.ProjectStatus, limit, offset int) ([]domain.Project, error) {
	query := "SELECT " + projectColumns + " FROM projects"
	var args []any
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY star_count DESC, created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limitOrDefault(limit), offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	defer rows.Close()

	projects := []domain.Project{}
	for rows.Next() {
		p, err := scanProject(rows)
		if err != nil {
			return nil, fmt.Errorf("scan project: %w", err)
		}
		projects = append(projects, *p)
	}
	return projects, rows.Err()
}

func scanProject(row scanner) (*domain.Project, error) {
	var p domain.Project
	var tech, tags string
	if err := row.Scan(&p.ID, &p.Slug, &p.CreatorID, &p.Title, &p.Description, &p.LongDescription,
		&p.SpiritualApplication, &tech, &tags, &p.GithubURL, &p.DemoURL, &p.DocumentationURL,
		&p.License, &p.Status, &p.StarCount, &p.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.TechStack, err = decodeList(tech); err != nil {
		return nil, err
	}
	if p.Tags, err = decodeList(tags); err != nil {
		return nil, err
	}
	return &p, nil
}

func (s *Store) ToggleStar(ctx context.Context, projectID, userID string) (bool, int, error) {
	var starred bool
	var count int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			"SELECT star_count FROM projects WHERE id = ?", projectID,
		).Scan(&count); err != nil {
			return notFound(err, "project")
		}

		res, err := tx.ExecContext(ctx,
			"DELETE FROM project_stars WHERE project_id = ? AND user_id = ?", projectID, userID)
		if err != nil {
			return fmt.Errorf("unstar project: %w", err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			count--
		} else {
			if _, err := tx.ExecContext(ctx,
				"INSERT INTO project_stars (project_id, user_id, created_at) VALUES (?, ?, ?)",
				projectID, userID, s.now(),
			); err != nil {
				return fmt.Errorf("star project: %w", err)
			}
			starred = true
			count++
		}

		if _, err := tx.ExecContext(ctx,
			"UPDATE projects SET star_count = ? WHERE id = ?", count, projectID,
		); err != nil {
			return fmt.Errorf("update star count: %w", err)
		}
		return nil
	})
	return starred, count, err
}

// ProjectCreator returns who submitted the project
func (s *Store) ProjectCreator(ctx context.Context, projectID string) (string, error) {
	var creator string
	err := s.db.QueryRowContext(ctx, "SELECT creator_id FROM projects WHERE id = ?", projectID).Scan(&creator)
	if err != nil {
		return "", notFound(err, "project")
	}
	return creator, nil
}
