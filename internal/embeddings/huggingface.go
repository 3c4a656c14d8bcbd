package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// HuggingFaceConfig configures the Inference API provider.
type HuggingFaceConfig struct {
	BaseURL string
	Model   string
	APIKey  string
	Timeout time.Duration
}

// HuggingFaceProvider calls the feature-extraction pipeline of the
// HuggingFace Inference API.
type HuggingFaceProvider struct {
	config    HuggingFaceConfig
	client    *http.Client
	dimension int
}

// NewHuggingFaceProvider creates a provider. No request is made until the
// first embedding call.
func NewHuggingFaceProvider(cfg HuggingFaceConfig) (*HuggingFaceProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: huggingface api key required", ErrInvalidConfig)
	}
	if cfg.BaseURL == "" || cfg.Model == "" {
		return nil, fmt.Errorf("%w: huggingface base url and model required", ErrInvalidConfig)
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &HuggingFaceProvider{
		config:    cfg,
		client:    &http.Client{Timeout: cfg.Timeout},
		dimension: detectDimension(cfg.Model),
	}, nil
}

type hfRequest struct {
	Inputs  []string  `json:"inputs"`
	Options hfOptions `json:"options"`
}

type hfOptions struct {
	WaitForModel bool `json:"wait_for_model"`
}

func (p *HuggingFaceProvider) endpoint() string {
	return strings.TrimRight(p.config.BaseURL, "/") + "/pipeline/feature-extraction/" + p.config.Model
}

// EmbedDocuments embeds texts in one request.
func (p *HuggingFaceProvider) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: texts cannot be empty", ErrEmptyInput)
	}

	body, err := json.Marshal(hfRequest{Inputs: texts, Options: hfOptions{WaitForModel: true}})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbeddingFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return nil, fmt.Errorf("%w: status %d: %s", ErrEmbeddingFailed, resp.StatusCode, string(respBody))
	}

	var vectors [][]float32
	if err := json.NewDecoder(resp.Body).Decode(&vectors); err != nil {
		return nil, fmt.Errorf("%w: decoding response: %v", ErrEmbeddingFailed, err)
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d vectors for %d texts", ErrEmbeddingFailed, len(vectors), len(texts))
	}
	return vectors, nil
}

// EmbedQuery embeds a single query.
func (p *HuggingFaceProvider) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if text == "" {
		return nil, fmt.Errorf("%w: text cannot be empty", ErrEmptyInput)
	}
	vectors, err := p.EmbedDocuments(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (p *HuggingFaceProvider) Dimension() int { return p.dimension }

func (p *HuggingFaceProvider) Close() error { return nil }

// detectDimension returns the vector size of well-known models, or 0.
func detectDimension(model string) int {
	switch {
	case strings.Contains(model, "all-mpnet-base"), strings.Contains(model, "bge-base"),
		strings.Contains(model, "embedding-001"), strings.Contains(model, "text-embedding-004"):
		return 768
	case strings.Contains(model, "MiniLM"), strings.Contains(model, "bge-small"):
		return 384
	case strings.Contains(model, "bge-large"):
		return 1024
	case strings.Contains(model, "text-embedding-3-large"):
		return 3072
	case strings.Contains(model, "text-embedding-3-small"), strings.Contains(model, "ada-002"):
		return 1536
	default:
		return 0
	}
}
