package store

import (
	"context"
	"fmt"

	"github.com/autopneuma/pneuma/internal/domain"
)

func (s *Store) RecordModerationFlag(ctx context.Context, e *domain.ModerationLogEntry) error {
	if e.ID == "" {
		e.ID = newID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.now()
	}
	details, err := encodeJSON(e.Details)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO moderation_log (id, content_type, content_id, flagged_by, reason, details, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, e.ID, e.ContentType, e.ContentID, e.FlaggedBy, e.Reason, details, e.Status, e.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert moderation log: %w", err)
	}
	return nil
}

// ListModerationFlags returns the review queue, oldest first
func (s *Store) ListModerationFlags(ctx context.Context, status string, limit int) ([]domain.ModerationLogEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, content_type, content_id, flagged_by, reason, details, status, created_at
		FROM moderation_log WHERE status = ? ORDER BY created_at ASC LIMIT ?
	`, status, limitOrDefault(limit))
	if err != nil {
		return nil, fmt.Errorf("list moderation log: %w", err)
	}
	defer rows.Close()

	entries := []domain.ModerationLogEntry{}
	for rows.Next() {
		var e domain.ModerationLogEntry
		var details string
		if err := rows.Scan(&e.ID, &e.ContentType, &e.ContentID, &e.FlaggedBy, &e.Reason,
			&details, &e.Status, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan moderation log: %w", err)
		}
		if e.Details, err = decodeObject(details); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
