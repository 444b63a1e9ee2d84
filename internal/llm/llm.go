// Package llm provides the chat-completion backends used by the moderation
// and scripture services. Every provider is asked for a single JSON object.
package llm

import (
	"context"
	"fmt"
	"strings"
)

// Request is one system + user prompt exchange
type Request struct {
	System      string
	Prompt      string
	Temperature float64
	MaxTokens   int
}

// Completer returns the model's raw JSON answer to a request
type Completer interface {
	CompleteJSON(ctx context.Context, req Request) (string, error)
}

// Config selects and configures a provider
type Config struct {
	Provider string
	APIKey   string
	Model    string
}

// New builds the Completer named by cfg.Provider ("anthropic" or "gemini")
func New(ctx context.Context, cfg Config) (Completer, error) {
	var (
		c   Completer
		err error
	)
	switch cfg.Provider {
	case "anthropic", "":
		c, err = NewAnthropic(cfg.APIKey, cfg.Model)
	case "gemini":
		c, err = NewGemini(ctx, cfg.APIKey, cfg.Model)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// StripFences removes a markdown code block wrapper if the model added one
func StripFences(resp string) string {
	resp = strings.TrimSpace(resp)
	resp = strings.TrimPrefix(resp, "```json")
	resp = strings.TrimPrefix(resp, "```")
	resp = strings.TrimSuffix(resp, "```")
	return strings.TrimSpace(resp)
}
