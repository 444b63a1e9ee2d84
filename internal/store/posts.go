package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/autopneuma/pneuma/internal/domain"
)

const postColumns = "id, title, content, author_id, category_id, tags, moderation_status, created_at"

// CreatePost inserts post, assigning an id and creation time when missing
func (s *Store) CreatePost(ctx context.Context, post *domain.Post) error {
	if post.ID == "" {
		post.ID = newID()
	}
	if post.CreatedAt.IsZero() {
		post.CreatedAt = s.now()
	}
	tags, err := encodeList(post.Tags)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO posts ("+postColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		post.ID, post.Title, post.Content, post.AuthorID, post.CategoryID, tags,
		post.ModerationStatus, post.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert post: %w", err)
	}
	return nil
}

func (s *Store) GetPost(ctx context.Context, id string) (*domain.Post, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+postColumns+" FROM posts WHERE id = ?", id)
	post, err := scanPost(row)
	if err != nil {
		return nil, notFound(err, "post")
	}
	return post, nil
}

// ListPosts returns posts newest first
func (s *Store) ListPosts(ctx context.Context, filter domain.PostFilter) ([]domain.Post, error) {
	query := "SELECT " + postColumns + " FROM posts WHERE 1=1"
	var args []any
	if filter.CategoryID != "" {
		query += " AND category_id = ?"
		args = append(args, filter.CategoryID)
	}
	if filter.Status != "" {
		query += " AND moderation_status = ?"
		args = append(args, filter.Status)
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limitOrDefault(filter.Limit), filter.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	posts := []domain.Post{}
	for rows.Next() {
		p, err := scanPost(rows)
		if err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, *p)
	}
	return posts, rows.Err()
}

func scanPost(row scanner) (*domain.Post, error) {
	var p domain.Post
	var tags string
	if err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &p.CategoryID, &tags,
		&p.ModerationStatus, &p.CreatedAt); err != nil {
		return nil, err
	}
	var err error
	if p.Tags, err = decodeList(tags); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateComment inserts a reply. The parent comment, when set, must belong to the same post.
func (s *Store) CreateComment(ctx context.Context, c *domain.Comment) error {
	if c.ID == "" {
		c.ID = newID()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = s.now()
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		if c.ParentID != nil {
			var postID string
			err := tx.QueryRowContext(ctx, "SELECT post_id FROM comments WHERE id = ?", *c.ParentID).Scan(&postID)
			if errors.Is(err, sql.ErrNoRows) || (err == nil && postID != c.PostID) {
				return fmt.Errorf("parent comment: %w", domain.ErrNotFound)
			}
			if err != nil {
				return fmt.Errorf("get parent comment: %w", err)
			}
		}

		_, err := tx.ExecContext(ctx,
			`INSERT INTO comments (id, post_id, parent_id, author_id, content, moderation_status, created_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			c.ID, c.PostID, c.ParentID, c.AuthorID, c.Content, c.ModerationStatus, c.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("insert comment: %w", err)
		}
		return nil
	})
}

// ListComments returns the comments of a post, oldest first
func (s *Store) ListComments(ctx context.Context, postID string) ([]domain.Comment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, post_id, parent_id, author_id, content, moderation_status, created_at
		FROM comments WHERE post_id = ? ORDER BY created_at ASC
	`, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	defer rows.Close()

	comments := []domain.Comment{}
	for rows.Next() {
		var c domain.Comment
		var parent sql.NullString
		if err := rows.Scan(&c.ID, &c.PostID, &parent, &c.AuthorID, &c.Content,
			&c.ModerationStatus, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		if parent.Valid {
			c.ParentID = &parent.String
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

func (s *Store) SaveEmbedding(ctx context.Context, postID string, vector []float64, model string) error {
	raw, err := json.Marshal(vector)
	if err != nil {
		return fmt.Errorf("encode embedding: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO post_embeddings (post_id, model, vector, created_at) VALUES (?, ?, ?, ?)",
		postID, model, string(raw), s.now(),
	)
	if err != nil {
		return fmt.Errorf("save embedding: %w", err)
	}
	return nil
}

// PostEmbeddings returns vectors of approved posts only
func (s *Store) PostEmbeddings(ctx context.Context) (map[string][]float64, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT e.post_id, e.vector FROM post_embeddings e
		JOIN posts p ON p.id = e.post_id
		WHERE p.moderation_status = ?
	`, domain.ModerationApproved)
	if err != nil {
		return nil, fmt.Errorf("list embeddings: %w", err)
	}
	defer rows.Close()

	out := map[string][]float64{}
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan embedding: %w", err)
		}
		var vec []float64
		if err := json.Unmarshal([]byte(raw), &vec); err != nil {
			return nil, fmt.Errorf("decode embedding %s: %w", id, err)
		}
		out[id] = vec
	}
	return out, rows.Err()
}
