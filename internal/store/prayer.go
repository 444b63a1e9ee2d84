package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/autopneuma/pneuma/internal/domain"
)

const prayerColumns = "id, author_id, title, content, category, is_anonymous, is_private, prayer_count, moderation_status, created_at"

func (s *Store) CreatePrayerRequest(ctx context.Context, req *domain.PrayerRequest) error {
	if req.ID == "" {
		req.ID = newID()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = s.now()
	}

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO prayer_requests ("+prayerColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		req.ID, req.AuthorID, req.Title, req.Content, req.Category, req.IsAnonymous,
		req.IsPrivate, req.PrayerCount, req.ModerationStatus, req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prayer request: %w", err)
	}
	return nil
}

// GetPrayerRequest returns the request with its author, anonymous or not
func (s *Store) GetPrayerRequest(ctx context.Context, id string) (*domain.PrayerRequest, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+prayerColumns+" FROM prayer_requests WHERE id = ?", id)
	req, err := scanPrayerRequest(row)
	if err != nil {
		return nil, notFound(err, "prayer request")
	}
	return req, nil
}

func (s *Store) ListPrayerRequests(ctx context.Context, category domain.PrayerCategory, limit, offset int) ([]domain.PrayerRequest, error) {
	query := "SELECT " + prayerColumns + " FROM prayer_requests WHERE is_private = 0 AND moderation_status = ?"
	args := []any{domain.ModerationApproved}
	if category != "" {
		query += " AND category = ?"
		args = append(args, category)
	}
	query += " ORDER BY created_at DESC LIMIT ? OFFSET ?"
	args = append(args, limitOrDefault(limit), offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list prayer requests: %w", err)
	}
	defer rows.Close()

	requests := []domain.PrayerRequest{}
	for rows.Next() {
		req, err := scanPrayerRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prayer request: %w", err)
		}
		if req.IsAnonymous {
			req.AuthorID = ""
		}
		requests = append(requests, *req)
	}
	return requests, rows.Err()
}

func scanPrayerRequest(row scanner) (*domain.PrayerRequest, error) {
	var r domain.PrayerRequest
	if err := row.Scan(&r.ID, &r.AuthorID, &r.Title, &r.Content, &r.Category, &r.IsAnonymous,
		&r.IsPrivate, &r.PrayerCount, &r.ModerationStatus, &r.CreatedAt); err != nil {
		return nil, err
	}
	return &r, nil
}

// RecordPrayer counts userID once per request
func (s *Store) RecordPrayer(ctx context.Context, requestID, userID string) (int, error) {
	var count int
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if err := tx.QueryRowContext(ctx,
			"SELECT prayer_count FROM prayer_requests WHERE id = ?", requestID,
		).Scan(&count); err != nil {
			return notFound(err, "prayer request")
		}

		res, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO prayer_interactions (prayer_request_id, user_id, created_at) VALUES (?, ?, ?)",
			requestID, userID, s.now(),
		)
		if err != nil {
			return fmt.Errorf("record prayer: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return nil
		}

		count++
		if _, err := tx.ExecContext(ctx,
			"UPDATE prayer_requests SET prayer_count = ? WHERE id = ?", count, requestID,
		); err != nil {
			return fmt.Errorf("update prayer count: %w", err)
		}
		return nil
	})
	return count, err
}

func (s *Store) CreatePrayerUpdate(ctx context.Context, u *domain.PrayerUpdate) error {
	if u.ID == "" {
		u.ID = newID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO prayer_updates (id, prayer_request_id, author_id, content, created_at) VALUES (?, ?, ?, ?, ?)",
		u.ID, u.PrayerRequestID, u.AuthorID, u.Content, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert prayer update: %w", err)
	}
	return nil
}

func (s *Store) ListPrayerUpdates(ctx context.Context, requestID string) ([]domain.PrayerUpdate, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, prayer_request_id, author_id, content, created_at
		FROM prayer_updates WHERE prayer_request_id = ? ORDER BY created_at ASC
	`, requestID)
	if err != nil {
		return nil, fmt.Errorf("list prayer updates: %w", err)
	}
	defer rows.Close()

	updates := []domain.PrayerUpdate{}
	for rows.Next() {
		var u domain.PrayerUpdate
		if err := rows.Scan(&u.ID, &u.PrayerRequestID, &u.AuthorID, &u.Content, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan prayer update: %w", err)
		}
		updates = append(updates, u)
	}
	return updates, rows.Err()
}
