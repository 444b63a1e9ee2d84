package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/autopneuma/pneuma/internal/domain"
)

// UpsertProfile keeps the original creation time and role of an existing profile
func (s *Store) UpsertProfile(ctx context.Context, p *domain.Profile) error {
	gifts, err := encodeList(p.SpiritualGifts)
	if err != nil {
		return err
	}
	areas, err := encodeList(p.FocusAreas)
	if err != nil {
		return err
	}

	return s.withTx(ctx, func(tx *sql.Tx) error {
		var owner string
		err := tx.QueryRowContext(ctx, "SELECT user_id FROM profiles WHERE username = ?", p.Username).Scan(&owner)
		switch {
		case err == nil && owner != p.UserID:
			return fmt.Errorf("username %q: %w", p.Username, domain.ErrConflict)
		case err != nil && !errors.Is(err, sql.ErrNoRows):
			return fmt.Errorf("check username: %w", err)
		}

		if p.Role == "" {
			p.Role = domain.RoleMember
		}
		if p.CreatedAt.IsZero() {
			p.CreatedAt = s.now()
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO profiles (user_id, username, full_name, bio, spiritual_gifts, focus_areas, role, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(user_id) DO UPDATE SET
				username = excluded.username,
				full_name = excluded.full_name,
				bio = excluded.bio,
				spiritual_gifts = excluded.spiritual_gifts,
				focus_areas = excluded.focus_areas
		`, p.UserID, p.Username, p.FullName, p.Bio, gifts, areas, p.Role, p.CreatedAt)
		if isUniqueViolation(err) {
			return fmt.Errorf("username %q: %w", p.Username, domain.ErrConflict)
		}
		if err != nil {
			return fmt.Errorf("upsert profile: %w", err)
		}

		return tx.QueryRowContext(ctx,
			"SELECT role, created_at FROM profiles WHERE user_id = ?", p.UserID,
		).Scan(&p.Role, &p.CreatedAt)
	})
}

func (s *Store) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	var p domain.Profile
	var gifts, areas string
	err := s.db.QueryRowContext(ctx, `
		SELECT user_id, username, full_name, bio, spiritual_gifts, focus_areas, role, created_at
		FROM profiles WHERE user_id = ?
	`, userID).Scan(&p.UserID, &p.Username, &p.FullName, &p.Bio, &gifts, &areas, &p.Role, &p.CreatedAt)
	if err != nil {
		return nil, notFound(err, "profile")
	}
	if p.SpiritualGifts, err = decodeList(gifts); err != nil {
		return nil, err
	}
	if p.FocusAreas, err = decodeList(areas); err != nil {
		return nil, err
	}
	return &p, nil
}

// SetRole promotes or demotes a member
func (s *Store) SetRole(ctx context.Context, userID string, role domain.Role) error {
	res, err := s.db.ExecContext(ctx, "UPDATE profiles SET role = ? WHERE user_id = ?", role, userID)
	if err != nil {
		return fmt.Errorf("set role: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("profile: %w", domain.ErrNotFound)
	}
	return nil
}
