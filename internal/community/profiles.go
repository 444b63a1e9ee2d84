package community

import (
	"context"
	"errors"
	"strings"

	"github.com/autopneuma/pneuma/internal/content"
	"github.com/autopneuma/pneuma/internal/domain"
)

// SetupProfile creates or updates the member's profile
func (s *Service) SetupProfile(ctx context.Context, userID string, in domain.ProfileSetup) (*domain.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	in.Username = strings.TrimSpace(in.Username)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	profile := &domain.Profile{
		UserID:         userID,
		Username:       in.Username,
		FullName:       strings.TrimSpace(in.FullName),
		Bio:            strings.TrimSpace(in.Bio),
		SpiritualGifts: content.Dedupe(in.SpiritualGifts),
		FocusAreas:     content.Dedupe(in.FocusAreas),
	}
	err := s.profiles.UpsertProfile(ctx, profile)
	if errors.Is(err, domain.ErrConflict) {
		return nil, domain.Errorf(domain.ErrConflict, "Username already taken. Please choose another.")
	}
	if err != nil {
		return nil, err
	}
	return profile, nil
}

func (s *Service) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	return s.profiles.GetProfile(ctx, userID)
}
