package community

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/contracts"
	"github.com/autopneuma/pneuma/internal/domain"
)

func (s *Service) CreatePrayerRequest(ctx context.Context, authorID string, in domain.NewPrayerRequest) (*domain.PrayerRequest, error) {
	if err := requireUser(authorID); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	status, _ := s.moderate(ctx, contracts.ModerationRequest{
		Content:     in.Title + "\n\n" + in.Content,
		ContentType: contracts.ContentPrayerRequest,
		AuthorID:    authorID,
	})
	req := &domain.PrayerRequest{
		AuthorID:         authorID,
		Title:            in.Title,
		Content:          in.Content,
		Category:         in.Category,
		IsAnonymous:      in.IsAnonymous,
		IsPrivate:        in.IsPrivate,
		ModerationStatus: status,
	}
	if err := s.prayers.CreatePrayerRequest(ctx, req); err != nil {
		return nil, err
	}
	s.logger.Info("prayer request created",
		zap.String("prayer_request_id", req.ID),
		zap.String("category", string(req.Category)))
	return req, nil
}

// PrayerThread is a prayer request with its follow-ups
type PrayerThread struct {
	Request *domain.PrayerRequest `json:"request"`
	Updates []domain.PrayerUpdate `json:"updates"`
}

// visiblePrayerRequest loads a request viewerID may see. Private and held
// requests are reported missing to everyone but their author.
func (s *Service) visiblePrayerRequest(ctx context.Context, viewerID, id string) (*domain.PrayerRequest, error) {
	req, err := s.prayers.GetPrayerRequest(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.AuthorID != viewerID && (req.IsPrivate || req.ModerationStatus != domain.ModerationApproved) {
		return nil, domain.Errorf(domain.ErrNotFound, "Prayer request not found")
	}
	return req, nil
}

// GetPrayerRequest hides private requests from everyone but their author, and
// the author of anonymous ones, including on the author's updates
func (s *Service) GetPrayerRequest(ctx context.Context, viewerID, id string) (*PrayerThread, error) {
	req, err := s.visiblePrayerRequest(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}
	updates, err := s.prayers.ListPrayerUpdates(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.AuthorID != viewerID && req.IsAnonymous {
		req.AuthorID = ""
		for i := range updates {
			updates[i].AuthorID = ""
		}
	}
	return &PrayerThread{Request: req, Updates: updates}, nil
}

func (s *Service) ListPrayerRequests(ctx context.Context, category domain.PrayerCategory, limit, offset int) ([]domain.PrayerRequest, error) {
	return s.prayers.ListPrayerRequests(ctx, category, limit, offset)
}

// Pray records that userID prayed and returns the request's prayer count
func (s *Service) Pray(ctx context.Context, userID, requestID string) (int, error) {
	if err := requireUser(userID); err != nil {
		return 0, err
	}
	if _, err := s.visiblePrayerRequest(ctx, userID, requestID); err != nil {
		return 0, err
	}
	return s.prayers.RecordPrayer(ctx, requestID, userID)
}

// AddPrayerUpdate lets the author follow up on their own request
func (s *Service) AddPrayerUpdate(ctx context.Context, authorID, requestID string, in domain.NewPrayerUpdate) (*domain.PrayerUpdate, error) {
	if err := requireUser(authorID); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	req, err := s.visiblePrayerRequest(ctx, authorID, requestID)
	if err != nil {
		return nil, err
	}
	if req.AuthorID != authorID {
		return nil, domain.Errorf(domain.ErrForbidden, "Only the author can update a prayer request")
	}

	update := &domain.PrayerUpdate{
		PrayerRequestID: requestID,
		AuthorID:        authorID,
		Content:         strings.TrimSpace(in.Content),
	}
	if err := s.prayers.CreatePrayerUpdate(ctx, update); err != nil {
		return nil, err
	}
	return update, nil
}
