package community

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/content"
	"github.com/autopneuma/pneuma/internal/contracts"
	"github.com/autopneuma/pneuma/internal/domain"
	"github.com/autopneuma/pneuma/internal/embedding"
)

const relatedPostsLimit = 5

// CreatePostResult carries the stored post and, when it was held for review,
// a warning for the author
type CreatePostResult struct {
	Post    *domain.Post `json:"post"`
	Warning string       `json:"warning,omitempty"`
}

func (s *Service) CreatePost(ctx context.Context, authorID string, in domain.NewPost) (*CreatePostResult, error) {
	if err := requireUser(authorID); err != nil {
		return nil, err
	}
	in.Normalize()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	status, warning := s.moderate(ctx, contracts.ModerationRequest{
		Content:     content.ClipRunes(in.Title+"\n\n"+in.Content, content.MaxPlainText),
		ContentType: contracts.ContentPost,
		AuthorID:    authorID,
	})

	post := &domain.Post{
		Title:            in.Title,
		Content:          in.Content,
		AuthorID:         authorID,
		CategoryID:       in.CategoryID,
		Tags:             in.Tags,
		ModerationStatus: status,
	}
	if err := s.posts.CreatePost(ctx, post); err != nil {
		return nil, err
	}
	s.logger.Info("post created",
		zap.String("post_id", post.ID),
		zap.String("moderation_status", string(status)))

	s.embed(ctx, post)
	return &CreatePostResult{Post: post, Warning: warning}, nil
}

// embed stores the post vector for related-post lookups. Failures only cost
// the post its related list.
func (s *Service) embed(ctx context.Context, post *domain.Post) {
	if s.embedder == nil {
		return
	}
	text := post.Title + "\n\n" + content.PlainText(post.Content)
	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		s.logger.Warn("embed post failed", zap.String("post_id", post.ID), zap.Error(err))
		return
	}
	if err := s.posts.SaveEmbedding(ctx, post.ID, vec, s.embedder.Model()); err != nil {
		s.logger.Warn("save embedding failed", zap.String("post_id", post.ID), zap.Error(err))
	}
}

// PostThread is a post with its comments
type PostThread struct {
	Post     *domain.Post     `json:"post"`
	Comments []domain.Comment `json:"comments"`
}

// GetPost returns a post and its approved comments. Posts held for review are
// visible to their author only.
func (s *Service) GetPost(ctx context.Context, viewerID, id string) (*PostThread, error) {
	post, err := s.visiblePost(ctx, viewerID, id)
	if err != nil {
		return nil, err
	}

	all, err := s.posts.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	comments := make([]domain.Comment, 0, len(all))
	for _, c := range all {
		if c.ModerationStatus == domain.ModerationApproved || c.AuthorID == viewerID {
			comments = append(comments, c)
		}
	}
	return &PostThread{Post: post, Comments: comments}, nil
}

func (s *Service) visiblePost(ctx context.Context, viewerID, id string) (*domain.Post, error) {
	post, err := s.posts.GetPost(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.ModerationStatus != domain.ModerationApproved && post.AuthorID != viewerID {
		return nil, fmt.Errorf("post %s: %w", id, domain.ErrNotFound)
	}
	return post, nil
}

// ListPosts lists approved posts, optionally in one category
func (s *Service) ListPosts(ctx context.Context, categoryID string, limit, offset int) ([]domain.Post, error) {
	if categoryID != "" && !domain.IsValidCategory(categoryID) {
		return nil, domain.Errorf(domain.ErrNotFound, "Unknown category %q", categoryID)
	}
	return s.posts.ListPosts(ctx, domain.PostFilter{
		CategoryID: categoryID,
		Status:     domain.ModerationApproved,
		Limit:      limit,
		Offset:     offset,
	})
}

func (s *Service) AddComment(ctx context.Context, authorID, postID string, in domain.NewComment) (*domain.Comment, error) {
	if err := requireUser(authorID); err != nil {
		return nil, err
	}
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.visiblePost(ctx, authorID, postID); err != nil {
		return nil, err
	}

	text := strings.TrimSpace(in.Content)
	status, _ := s.moderate(ctx, contracts.ModerationRequest{
		Content:     text,
		ContentType: contracts.ContentComment,
		AuthorID:    authorID,
	})
	comment := &domain.Comment{
		PostID:           postID,
		ParentID:         in.ParentID,
		AuthorID:         authorID,
		Content:          text,
		ModerationStatus: status,
	}
	if err := s.posts.CreateComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// RelatedPosts returns approved posts similar to the given one
func (s *Service) RelatedPosts(ctx context.Context, postID string) ([]domain.Post, error) {
	if s.embedder == nil {
		return []domain.Post{}, nil
	}
	vectors, err := s.posts.PostEmbeddings(ctx)
	if err != nil {
		return nil, err
	}
	query, ok := vectors[postID]
	if !ok {
		return []domain.Post{}, nil
	}

	related := []domain.Post{}
	for _, m := range embedding.Nearest(query, vectors, postID, relatedPostsLimit) {
		post, err := s.posts.GetPost(ctx, m.ID)
		if err != nil {
			return nil, err
		}
		related = append(related, *post)
	}
	return related, nil
}
