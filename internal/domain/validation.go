package domain

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/autopneuma/pneuma/internal/content"
)

const (
	MaxPostTags     = 5
	MaxProjectTags  = 10
	MaxProjectTechs = 15
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return IsValidCategory(fl.Field().String())
	})
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// formMessages maps "field.rule" (or just "field") to the message shown on the form
type formMessages map[string]string

// checkForm runs the form's validate tags and reports every failed field
func checkForm(form any, messages formMessages) error {
	err := validate.Struct(form)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	var errs ValidationErrors
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg, ok = messages[fe.Field()]
		}
		if !ok {
			msg = fmt.Sprintf("%s is invalid", fe.Field())
		}
		if strings.Contains(msg, "%q") {
			msg = fmt.Sprintf(msg, fe.Value())
		}
		errs.add(fe.Field(), msg)
	}
	return errs.orNil()
}

// NewPost is the input of the new discussion form
type NewPost struct {
	Title      string   `json:"title" validate:"min=10,max=255"`
	Content    string   `json:"content" validate:"min=20,max=10000"`
	CategoryID string   `json:"category_id" validate:"category"`
	Tags       []string `json:"tags" validate:"max=5"`
}

func (p *NewPost) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)
	p.Tags = content.NormalizeTags(p.Tags)
}

var postMessages = formMessages{
	"title.min":   "Title must be at least 10 characters",
	"title.max":   "Title must be less than 255 characters",
	"content.min": "Content must be at least 20 characters",
	"content.max": "Content must be less than 10,000 characters",
	"category_id": "Please select a category",
	"tags":        "Maximum 5 tags",
}

func (p NewPost) Validate() error {
	return checkForm(p, postMessages)
}

// NewComment is the input of a reply box
type NewComment struct {
	Content  string  `json:"content" validate:"min=1,max=5000"`
	ParentID *string `json:"parent_id,omitempty"`
}

var commentMessages = formMessages{
	"content.min": "Comment cannot be empty",
	"content.max": "Comment must be less than 5,000 characters",
}

func (c NewComment) Validate() error {
	c.Content = strings.TrimSpace(c.Content)
	return checkForm(c, commentMessages)
}

// NewPrayerRequest is the input of the prayer request form
type NewPrayerRequest struct {
	Title       string         `json:"title" validate:"min=10,max=255"`
	Content     string         `json:"content" validate:"min=20,max=5000"`
	Category    PrayerCategory `json:"category" validate:"oneof=personal community project world"`
	IsAnonymous bool           `json:"is_anonymous"`
	IsPrivate   bool           `json:"is_private"`
}

func (p *NewPrayerRequest) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Content = strings.TrimSpace(p.Content)
}

var prayerMessages = formMessages{
	"title.min":   "Title must be at least 10 characters",
	"title.max":   "Title must be less than 255 characters",
	"content.min": "Please provide at least 20 characters of detail",
	"content.max": "Content must be less than 5000 characters",
	"category":    "Please select a category",
}

func (p NewPrayerRequest) Validate() error {
	return checkForm(p, prayerMessages)
}

// NewPrayerUpdate is a follow-up on an existing prayer request
type NewPrayerUpdate struct {
	Content string `json:"content" validate:"min=1,max=5000"`
}

var prayerUpdateMessages = formMessages{
	"content.min": "Update cannot be empty",
	"content.max": "Update must be less than 5000 characters",
}

func (u NewPrayerUpdate) Validate() error {
	u.Content = strings.TrimSpace(u.Content)
	return checkForm(u, prayerUpdateMessages)
}

// NewProject is the input of the project submission form
type NewProject struct {
	Title                string        `json:"title" yaml:"title" validate:"min=5,max=255"`
	Description          string        `json:"description" yaml:"description" validate:"min=20,max=500"`
	LongDescription      string        `json:"long_description" yaml:"long_description" validate:"min=50,max=10000"`
	SpiritualApplication string        `json:"spiritual_application" yaml:"spiritual_application" validate:"min=20,max=1000"`
	TechStack            []string      `json:"tech_stack" yaml:"tech_stack" validate:"min=1,max=15"`
	Tags                 []string      `json:"tags" yaml:"tags" validate:"max=10"`
	GithubURL            string        `json:"github_url,omitempty" yaml:"github_url" validate:"omitempty,http_url"`
	DemoURL              string        `json:"demo_url,omitempty" yaml:"demo_url" validate:"omitempty,http_url"`
	DocumentationURL     string        `json:"documentation_url,omitempty" yaml:"documentation_url" validate:"omitempty,http_url"`
	License              string        `json:"license,omitempty" yaml:"license"`
	Status               ProjectStatus `json:"status" yaml:"status" validate:"oneof=prototype active archived deprecated"`
}

func (p *NewProject) Normalize() {
	p.Title = strings.TrimSpace(p.Title)
	p.Description = strings.TrimSpace(p.Description)
	p.LongDescription = strings.TrimSpace(p.LongDescription)
	p.SpiritualApplication = strings.TrimSpace(p.SpiritualApplication)
	p.Tags = content.NormalizeTags(p.Tags)
	p.TechStack = content.Dedupe(p.TechStack)
	if p.Status == "" {
		p.Status = ProjectActive
	}
}

var projectMessages = formMessages{
	"title.min":                 "Title must be at least 5 characters",
	"title.max":                 "Title must be less than 255 characters",
	"description.min":           "Description must be at least 20 characters",
	"description.max":           "Description must be less than 500 characters",
	"long_description.min":      "Long description must be at least 50 characters",
	"long_description.max":      "Long description must be less than 10,000 characters",
	"spiritual_application.min": "Please explain how this serves Kingdom purposes (at least 20 characters)",
	"spiritual_application.max": "Spiritual application must be less than 1,000 characters",
	"tech_stack.min":            "Please add at least one technology",
	"tech_stack.max":            "Maximum 15 technologies",
	"tags":                      "Maximum 10 tags",
	"github_url":                "Must be a valid URL",
	"demo_url":                  "Must be a valid URL",
	"documentation_url":         "Must be a valid URL",
	"status":                    "Invalid status %q",
}

func (p NewProject) Validate() error {
	return checkForm(p, projectMessages)
}

// ProfileSetup is the input of the onboarding form
type ProfileSetup struct {
	Username       string   `json:"username" validate:"min=3,max=50,username"`
	FullName       string   `json:"full_name,omitempty"`
	Bio            string   `json:"bio,omitempty" validate:"max=500"`
	SpiritualGifts []string `json:"spiritual_gifts" validate:"min=1"`
	FocusAreas     []string `json:"focus_areas" validate:"min=1"`
}

var profileMessages = formMessages{
	"username.min":    "Username must be at least 3 characters",
	"username.max":    "Username must be less than 50 characters",
	"username":        "Username can only contain letters, numbers, underscores, and hyphens",
	"bio":             "Bio must be less than 500 characters",
	"spiritual_gifts": "Select at least one spiritual gift",
	"focus_areas":     "Select at least one focus area",
}

func (p ProfileSetup) Validate() error {
	return checkForm(p, profileMessages)
}

// Signup is the input of the registration form
type Signup struct {
	FullName          string `json:"full_name" validate:"min=2"`
	Email             string `json:"email" validate:"required,email"`
	Password          string `json:"password" validate:"min=8"`
	ConfirmPassword   string `json:"confirm_password" validate:"eqfield=Password"`
	AgreeToGuidelines bool   `json:"agree_to_guidelines" validate:"required"`
	AffirmFaith       bool   `json:"affirm_faith" validate:"required"`
}

var signupMessages = formMessages{
	"full_name":           "Name must be at least 2 characters",
	"email":               "Please enter a valid email address",
	"password":            "Password must be at least 8 characters",
	"confirm_password":    "Passwords do not match",
	"agree_to_guidelines": "You must agree to the Community Guidelines",
	"affirm_faith":        "You must affirm the Statement of Faith",
}

func (s Signup) Validate() error {
	s.FullName = strings.TrimSpace(s.FullName)
	return checkForm(s, signupMessages)
}
