package community

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/autopneuma/pneuma/internal/contracts"
	"github.com/autopneuma/pneuma/internal/domain"
	"github.com/autopneuma/pneuma/internal/store"
)

type fakeModerator struct {
	result *contracts.ModerationResponse
	seen   []contracts.ModerationRequest
}

func (f *fakeModerator) Moderate(ctx context.Context, req contracts.ModerationRequest) *contracts.ModerationResponse {
	f.seen = append(f.seen, req)
	return f.result
}

type fakeEmbedder struct {
	vectors map[string][]float64
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float64, error) {
	for prefix, v := range f.vectors {
		if strings.HasPrefix(text, prefix) {
			return v, nil
		}
	}
	return nil, errors.New("no vector")
}

func (f *fakeEmbedder) Model() string { return "fake" }

func newService(t *testing.T, mod Moderator, emb *fakeEmbedder) (*Service, *store.Store) {
	t.Helper()
	s, err := store.New(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	repos := Repositories{Posts: s, Prayers: s, Projects: s, Profiles: s, Metrics: s}
	if emb == nil {
		return NewService(repos, mod, nil, zap.NewNop()), s
	}
	return NewService(repos, mod, emb, zap.NewNop()), s
}

func validPost(title string) domain.NewPost {
	return domain.NewPost{
		Title:      title,
		Content:    "How should Christians think about using AI in ministry work?",
		CategoryID: "ai-ethics",
		Tags:       []string{"AI Ethics", "ministry", "ai ethics"},
	}
}

func TestCreatePostModerationOutcomes(t *testing.T) {
	tests := []struct {
		name        string
		result      *contracts.ModerationResponse
		wantStatus  domain.ModerationStatus
		wantWarning string
	}{
		{"clean", &contracts.ModerationResponse{Recommendation: contracts.RecommendApprove}, domain.ModerationApproved, ""},
		{"review", &contracts.ModerationResponse{Flagged: true, Recommendation: contracts.RecommendFlagForReview}, domain.ModerationPending, WarningPending},
		{"high priority", &contracts.ModerationResponse{Flagged: true, Recommendation: contracts.RecommendFlagHighPriority}, domain.ModerationFlagged, WarningFlagged},
		{"flagged but approved", &contracts.ModerationResponse{Flagged: true, Recommendation: contracts.RecommendApprove}, domain.ModerationApproved, ""},
		{"moderation unavailable", nil, domain.ModerationApproved, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := &fakeModerator{result: tt.result}
			svc, _ := newService(t, mod, nil)

			res, err := svc.CreatePost(context.Background(), "u1", validPost("Using AI in ministry"))
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, res.Post.ModerationStatus)
			assert.Equal(t, tt.wantWarning, res.Warning)
			assert.Equal(t, []string{"ai-ethics", "ministry"}, res.Post.Tags)

			require.Len(t, mod.seen, 1)
			assert.Equal(t, contracts.ContentPost, mod.seen[0].ContentType)
			assert.True(t, strings.HasPrefix(mod.seen[0].Content, "Using AI in ministry\n\n"))
		})
	}
}

func TestCreatePostValidation(t *testing.T) {
	mod := &fakeModerator{}
	svc, _ := newService(t, mod, nil)

	_, err := svc.CreatePost(context.Background(), "u1", domain.NewPost{Title: "short", CategoryID: "nope"})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	var verrs domain.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Len(t, verrs, 3)
	assert.Empty(t, mod.seen)

	_, err = svc.CreatePost(context.Background(), "", validPost("Using AI in ministry"))
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestHeldPostsVisibleToAuthorOnly(t *testing.T) {
	mod := &fakeModerator{result: &contracts.ModerationResponse{Flagged: true, Recommendation: contracts.RecommendFlagForReview}}
	svc, _ := newService(t, mod, nil)
	ctx := context.Background()

	res, err := svc.CreatePost(ctx, "u1", validPost("Using AI in ministry"))
	require.NoError(t, err)

	_, err = svc.GetPost(ctx, "u2", res.Post.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	thread, err := svc.GetPost(ctx, "u1", res.Post.ID)
	require.NoError(t, err)
	assert.Equal(t, res.Post.ID, thread.Post.ID)

	posts, err := svc.ListPosts(ctx, "", 10, 0)
	require.NoError(t, err)
	assert.Empty(t, posts)

	_, err = svc.AddComment(ctx, "u2", res.Post.ID, domain.NewComment{Content: "Replying anyway"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.AddComment(ctx, "u1", res.Post.ID, domain.NewComment{Content: "Adding context"})
	assert.NoError(t, err)
}

func TestAddComment(t *testing.T) {
	mod := &fakeModerator{}
	svc, _ := newService(t, mod, nil)
	ctx := context.Background()

	res, err := svc.CreatePost(ctx, "u1", validPost("Using AI in ministry"))
	require.NoError(t, err)

	c, err := svc.AddComment(ctx, "u2", res.Post.ID, domain.NewComment{Content: "  Amen to this  "})
	require.NoError(t, err)
	assert.Equal(t, "Amen to this", c.Content)
	assert.Equal(t, contracts.ContentComment, mod.seen[1].ContentType)

	_, err = svc.AddComment(ctx, "u2", "missing", domain.NewComment{Content: "hi"})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = svc.AddComment(ctx, "u2", res.Post.ID, domain.NewComment{Content: "   "})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	thread, err := svc.GetPost(ctx, "u3", res.Post.ID)
	require.NoError(t, err)
	assert.Len(t, thread.Comments, 1)
}

func TestRelatedPosts(t *testing.T) {
	emb := &fakeEmbedder{vectors: map[string][]float64{
		"AI tools for Bible study":   {1, 0, 0},
		"Machine learning and study": {0.9, 0.2, 0},
		"Prayer for our servers":     {0, 0, 1},
	}}
	svc, _ := newService(t, &fakeModerator{}, emb)
	ctx := context.Background()

	first, err := svc.CreatePost(ctx, "u1", validPost("AI tools for Bible study"))
	require.NoError(t, err)
	second, err := svc.CreatePost(ctx, "u1", validPost("Machine learning and study"))
	require.NoError(t, err)
	_, err = svc.CreatePost(ctx, "u1", validPost("Prayer for our servers"))
	require.NoError(t, err)

	related, err := svc.RelatedPosts(ctx, first.Post.ID)
	require.NoError(t, err)
	require.Len(t, related, 1)
	assert.Equal(t, second.Post.ID, related[0].ID)

	none, err := svc.RelatedPosts(ctx, "missing")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func validPrayer() domain.NewPrayerRequest {
	return domain.NewPrayerRequest{
		Title:       "Wisdom for a career decision",
		Content:     "Please pray for clarity as I decide on a new role.",
		Category:    domain.PrayerPersonal,
		IsAnonymous: true,
	}
}

func TestPrayerFlow(t *testing.T) {
	mod := &fakeModerator{}
	svc, _ := newService(t, mod, nil)
	ctx := context.Background()

	req, err := svc.CreatePrayerRequest(ctx, "author", validPrayer())
	require.NoError(t, err)
	assert.Equal(t, contracts.ContentPrayerRequest, mod.seen[0].ContentType)

	n, err := svc.Pray(ctx, "u1", req.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	n, err = svc.Pray(ctx, "u1", req.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = svc.AddPrayerUpdate(ctx, "u1", req.ID, domain.NewPrayerUpdate{Content: "Praise report"})
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.AddPrayerUpdate(ctx, "author", req.ID, domain.NewPrayerUpdate{Content: "I got the job!"})
	require.NoError(t, err)

	thread, err := svc.GetPrayerRequest(ctx, "u1", req.ID)
	require.NoError(t, err)
	assert.Empty(t, thread.Request.AuthorID)
	assert.Equal(t, 1, thread.Request.PrayerCount)
	require.Len(t, thread.Updates, 1)

	own, err := svc.GetPrayerRequest(ctx, "author", req.ID)
	require.NoError(t, err)
	assert.Equal(t, "author", own.Request.AuthorID)
}

func TestPrivatePrayerHiddenFromOthers(t *testing.T) {
	svc, _ := newService(t, &fakeModerator{}, nil)
	ctx := context.Background()

	in := validPrayer()
	in.IsPrivate = true
	req, err := svc.CreatePrayerRequest(ctx, "author", in)
	require.NoError(t, err)

	_, err = svc.GetPrayerRequest(ctx, "u1", req.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnonymousPrayerHidesAuthorOnUpdates(t *testing.T) {
	svc, _ := newService(t, &fakeModerator{}, nil)
	ctx := context.Background()

	req, err := svc.CreatePrayerRequest(ctx, "author", validPrayer())
	require.NoError(t, err)
	_, err = svc.AddPrayerUpdate(ctx, "author", req.ID, domain.NewPrayerUpdate{Content: "Still waiting, thank you all"})
	require.NoError(t, err)

	thread, err := svc.GetPrayerRequest(ctx, "stranger", req.ID)
	require.NoError(t, err)
	assert.Empty(t, thread.Request.AuthorID)
	require.Len(t, thread.Updates, 1)
	assert.Empty(t, thread.Updates[0].AuthorID)

	own, err := svc.GetPrayerRequest(ctx, "author", req.ID)
	require.NoError(t, err)
	require.Len(t, own.Updates, 1)
	assert.Equal(t, "author", own.Updates[0].AuthorID)
}

func TestPrayOnHiddenRequest(t *testing.T) {
	mod := &fakeModerator{}
	svc, _ := newService(t, mod, nil)
	ctx := context.Background()

	in := validPrayer()
	in.IsPrivate = true
	private, err := svc.CreatePrayerRequest(ctx, "author", in)
	require.NoError(t, err)

	_, err = svc.Pray(ctx, "stranger", private.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	n, err := svc.Pray(ctx, "author", private.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	mod.result = &contracts.ModerationResponse{Flagged: true, Recommendation: contracts.RecommendFlagForReview}
	held, err := svc.CreatePrayerRequest(ctx, "author", validPrayer())
	require.NoError(t, err)
	require.Equal(t, domain.ModerationPending, held.ModerationStatus)
	_, err = svc.Pray(ctx, "stranger", held.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = svc.Pray(ctx, "stranger", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func validProject() domain.NewProject {
	return domain.NewProject{
		Title:                "Verse Finder",
		Description:          "Find verses for any topic you are studying",
		LongDescription:      "Verse Finder uses embeddings to surface passages related to a question or topic.",
		SpiritualApplication: "Helps believers search the Scriptures daily",
		TechStack:            []string{"Go", "SQLite", "Go"},
		Tags:                 []string{"Bible Study"},
	}
}

func TestSubmitProjectUniqueSlugs(t *testing.T) {
	svc, _ := newService(t, &fakeModerator{}, nil)
	ctx := context.Background()

	first, err := svc.SubmitProject(ctx, "u1", validProject())
	require.NoError(t, err)
	assert.Equal(t, "verse-finder", first.Slug)
	assert.Equal(t, domain.ProjectActive, first.Status)
	assert.Equal(t, []string{"Go", "SQLite"}, first.TechStack)
	assert.Equal(t, []string{"bible-study"}, first.Tags)

	second, err := svc.SubmitProject(ctx, "u2", validProject())
	require.NoError(t, err)
	assert.Equal(t, "verse-finder-2", second.Slug)

	third, err := svc.SubmitProject(ctx, "u2", validProject())
	require.NoError(t, err)
	assert.Equal(t, "verse-finder-3", third.Slug)

	bad := validProject()
	bad.DemoURL = "not a url"
	_, err = svc.SubmitProject(ctx, "u1", bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestToggleStar(t *testing.T) {
	svc, _ := newService(t, &fakeModerator{}, nil)
	ctx := context.Background()

	p, err := svc.SubmitProject(ctx, "u1", validProject())
	require.NoError(t, err)

	res, err := svc.ToggleStar(ctx, "u2", p.Slug)
	require.NoError(t, err)
	assert.Equal(t, &StarResult{Starred: true, StarCount: 1}, res)

	res, err = svc.ToggleStar(ctx, "u2", p.Slug)
	require.NoError(t, err)
	assert.Equal(t, &StarResult{Starred: false, StarCount: 0}, res)

	_, err = svc.ToggleStar(ctx, "u2", "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestSetupProfile(t *testing.T) {
	svc, _ := newService(t, &fakeModerator{}, nil)
	ctx := context.Background()

	setup := domain.ProfileSetup{Username: "priscilla", SpiritualGifts: []string{"teaching"}, FocusAreas: []string{"ai-ethics"}}
	p, err := svc.SetupProfile(ctx, "u1", setup)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleMember, p.Role)

	_, err = svc.SetupProfile(ctx, "u2", setup)
	require.ErrorIs(t, err, domain.ErrConflict)
	assert.Equal(t, "Username already taken. Please choose another.", err.Error())

	setup.Username = "bad name!"
	_, err = svc.SetupProfile(ctx, "u2", setup)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestAdminMetrics(t *testing.T) {
	svc, s := newService(t, &fakeModerator{}, nil)
	ctx := context.Background()

	_, err := svc.SetupProfile(ctx, "admin", domain.ProfileSetup{Username: "admin", SpiritualGifts: []string{"a"}, FocusAreas: []string{"b"}})
	require.NoError(t, err)

	_, err = svc.AdminMetrics(ctx, "admin")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.AdminMetrics(ctx, "stranger")
	assert.ErrorIs(t, err, domain.ErrForbidden)

	require.NoError(t, s.SetRole(ctx, "admin", domain.RoleAdmin))
	_, err = svc.CreatePost(ctx, "admin", validPost("Using AI in ministry"))
	require.NoError(t, err)

	m, err := svc.AdminMetrics(ctx, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, m.Profiles)
	assert.Equal(t, 1, m.Posts)
}
