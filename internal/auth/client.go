// Package auth talks to the hosted GoTrue auth service that owns member
// accounts. The server uses it to resolve bearer tokens to users.
package auth

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/autopneuma/pneuma/internal/domain"
)

// User is the auth service's view of an account
type User struct {
	ID           string         `json:"id"`
	Email        string         `json:"email"`
	UserMetadata map[string]any `json:"user_metadata,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
}

// Session is issued on sign in, and on sign up when email confirmation is off
type Session struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}

// Error is a failure reported by the auth service
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	return e.Message
}

type Client struct {
	baseURL string
	anonKey string
	http    *http.Client
}

func NewClient(baseURL, anonKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		anonKey: anonKey,
		http:    httpClient,
	}
}

// SignUp validates the registration form and creates the account. The
// returned session is nil when the service requires email confirmation.
func (c *Client) SignUp(ctx context.Context, form domain.Signup) (*User, *Session, error) {
	if err := form.Validate(); err != nil {
		return nil, nil, err
	}

	body := map[string]any{
		"email":    form.Email,
		"password": form.Password,
		"data":     map[string]any{"full_name": strings.TrimSpace(form.FullName)},
	}
	var resp struct {
		Session
		// Without a session the user is returned at the top level.
		ID    string `json:"id"`
		Email string `json:"email"`
	}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/signup", "", body, &resp); err != nil {
		return nil, nil, err
	}

	if resp.AccessToken != "" {
		return &resp.User, &resp.Session, nil
	}
	return &User{ID: resp.ID, Email: resp.Email}, nil, nil
}

func (c *Client) SignIn(ctx context.Context, email, password string) (*Session, error) {
	var session Session
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/v1/token?grant_type=password", "", body, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// GetUser resolves an access token to its user
func (c *Client) GetUser(ctx context.Context, accessToken string) (*User, error) {
	var user User
	if err := c.do(ctx, http.MethodGet, "/auth/v1/user", accessToken, nil, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("apikey", c.anonKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token == "" {
		token = c.anonKey
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("auth request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{StatusCode: resp.StatusCode, Message: errorMessage(raw, resp.StatusCode)}
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// errorMessage picks the first message field GoTrue versions use
func errorMessage(raw []byte, status int) string {
	var payload struct {
		Msg              string `json:"msg"`
		Message          string `json:"message"`
		ErrorDescription string `json:"error_description"`
		Error            string `json:"error"`
	}
	if err := json.Unmarshal(raw, &payload); err == nil {
		for _, m := range []string{payload.Msg, payload.Message, payload.ErrorDescription, payload.Error} {
			if m != "" {
				return m
			}
		}
	}
	return fmt.Sprintf("auth service returned status %d", status)
}
