package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fields(t *testing.T, err error) map[string]string {
	t.Helper()
	require.ErrorIs(t, err, ErrInvalidInput)
	var verrs ValidationErrors
	require.ErrorAs(t, err, &verrs)
	out := make(map[string]string, len(verrs))
	for _, v := range verrs {
		out[v.Field] = v.Message
	}
	return out
}

func TestNewPostValidate(t *testing.T) {
	ok := NewPost{
		Title:      "Using AI in ministry",
		Content:    "How should we think about AI tools in church work?",
		CategoryID: "ai-ethics",
	}
	require.NoError(t, ok.Validate())

	got := fields(t, NewPost{Title: "short", CategoryID: "nope", Tags: []string{"a", "b", "c", "d", "e", "f"}}.Validate())
	assert.Equal(t, map[string]string{
		"title":       "Title must be at least 10 characters",
		"content":     "Content must be at least 20 characters",
		"category_id": "Please select a category",
		"tags":        "Maximum 5 tags",
	}, got)
}

func TestCommentValidateTrims(t *testing.T) {
	assert.NoError(t, NewComment{Content: " Amen "}.Validate())
	assert.Equal(t, "Comment cannot be empty", fields(t, NewComment{Content: "   "}.Validate())["content"])
}

func TestPrayerRequestValidate(t *testing.T) {
	got := fields(t, NewPrayerRequest{Title: "Pray for my family please", Content: "short", Category: "misc"}.Validate())
	assert.Equal(t, map[string]string{
		"content":  "Please provide at least 20 characters of detail",
		"category": "Please select a category",
	}, got)
}

func TestNewProjectValidate(t *testing.T) {
	p := NewProject{
		Title:                "Verse Finder",
		Description:          "Find verses for any topic you are studying",
		LongDescription:      strings.Repeat("Verse Finder surfaces passages. ", 3),
		SpiritualApplication: "Helps believers search the Scriptures daily",
		TechStack:            []string{"Go"},
		GithubURL:            "https://github.com/autopneuma/verse-finder",
	}
	p.Normalize()
	require.NoError(t, p.Validate())

	p.TechStack = nil
	p.DemoURL = "not a url"
	p.Status = "retired"
	got := fields(t, p.Validate())
	assert.Equal(t, map[string]string{
		"tech_stack": "Please add at least one technology",
		"demo_url":   "Must be a valid URL",
		"status":     `Invalid status "retired"`,
	}, got)
}

func TestProfileSetupValidate(t *testing.T) {
	ok := ProfileSetup{Username: "grace_99", SpiritualGifts: []string{"teaching"}, FocusAreas: []string{"ai-ethics"}}
	require.NoError(t, ok.Validate())

	got := fields(t, ProfileSetup{Username: "bad name!", Bio: strings.Repeat("é", 501)}.Validate())
	assert.Equal(t, map[string]string{
		"username":        "Username can only contain letters, numbers, underscores, and hyphens",
		"bio":             "Bio must be less than 500 characters",
		"spiritual_gifts": "Select at least one spiritual gift",
		"focus_areas":     "Select at least one focus area",
	}, got)

	assert.Equal(t, "Username must be at least 3 characters", fields(t, ProfileSetup{Username: "ab"}.Validate())["username"])
}

func TestSignupValidate(t *testing.T) {
	ok := Signup{
		FullName:          "Grace Hopper",
		Email:             "grace@example.org",
		Password:          "correct horse",
		ConfirmPassword:   "correct horse",
		AgreeToGuidelines: true,
		AffirmFaith:       true,
	}
	require.NoError(t, ok.Validate())

	got := fields(t, Signup{FullName: " G ", Email: "grace", Password: "short", ConfirmPassword: "other"}.Validate())
	assert.Equal(t, map[string]string{
		"full_name":           "Name must be at least 2 characters",
		"email":               "Please enter a valid email address",
		"password":            "Password must be at least 8 characters",
		"confirm_password":    "Passwords do not match",
		"agree_to_guidelines": "You must agree to the Community Guidelines",
		"affirm_faith":        "You must affirm the Statement of Faith",
	}, got)
}
