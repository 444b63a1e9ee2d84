package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// Gemini completes prompts via Google's Gemini API
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a Gemini completer
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY not set")
	}
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) CompleteJSON(ctx context.Context, req Request) (string, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr(float32(req.Temperature)),
		ResponseMIMEType: "application/json",
	}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}
	if req.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(req.MaxTokens)
	}

	result, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("empty response")
	}
	return StripFences(text), nil
}
