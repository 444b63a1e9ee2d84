// Package embedding turns post text into vectors for related-post lookups.
package embedding

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	voyageAPI    = "https://api.voyageai.com/v1/embeddings"
	DefaultModel = "voyage-3-lite"
)

// Embedder produces vectors for texts
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float64, error)
	Model() string
}

// Voyage calls the Voyage AI embeddings endpoint
type Voyage struct {
	apiKey   string
	model    string
	endpoint string
	client   *http.Client
}

type Option func(*Voyage)

func WithEndpoint(url string) Option {
	return func(v *Voyage) { v.endpoint = url }
}

func WithHTTPClient(c *http.Client) Option {
	return func(v *Voyage) { v.client = c }
}

func WithModel(model string) Option {
	return func(v *Voyage) { v.model = model }
}

func NewVoyage(apiKey string, opts ...Option) (*Voyage, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("VOYAGE_API_KEY not set")
	}

	v := &Voyage{
		apiKey:   apiKey,
		model:    DefaultModel,
		endpoint: voyageAPI,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(v)
	}
	return v, nil
}

func (v *Voyage) Model() string {
	return v.model
}

// Embed generates an embedding vector for the given text
func (v *Voyage) Embed(ctx context.Context, text string) ([]float64, error) {
	vectors, err := v.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return vectors[0], nil
}

// EmbedBatch generates embeddings for multiple texts, in input order
func (v *Voyage) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	jsonBody, err := json.Marshal(embeddingRequest{Input: texts, Model: v.model})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, v.endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+v.apiKey)

	resp, err := v.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("voyage error (status %d): %s", resp.StatusCode, string(body))
	}

	var apiResp embeddingResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}

	vectors := make([][]float64, len(texts))
	for _, d := range apiResp.Data {
		if d.Index < 0 || d.Index >= len(vectors) {
			return nil, fmt.Errorf("embedding index %d out of range", d.Index)
		}
		vectors[d.Index] = d.Embedding
	}
	return vectors, nil
}

type embeddingRequest struct {
	Input []string `json:"input"`
	Model string   `json:"model"`
}

type embeddingResponse struct {
	Data []struct {
		Embedding []float64 `json:"embedding"`
		Index     int       `json:"index"`
	} `json:"data"`
}
