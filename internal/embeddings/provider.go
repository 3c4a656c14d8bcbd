package embeddings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tripd/internal/config"
	"github.com/fyrsmithlabs/tripd/internal/evidence"
	"github.com/fyrsmithlabs/tripd/internal/vectorstore"
)

var (
	// ErrEmptyInput indicates empty or nil input texts.
	ErrEmptyInput = errors.New("empty or nil input texts")

	// ErrInvalidConfig indicates invalid provider configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrEmbeddingFailed indicates the backend failed to produce vectors.
	ErrEmbeddingFailed = errors.New("embedding generation failed")
)

// Provider is an embedding backend.
type Provider interface {
	vectorstore.Embedder
	// Dimension returns the vector size, or 0 when the model is unknown.
	Dimension() int
	Close() error
}

// Select builds the provider named by cfg.Providers(). It returns a nil
// provider wrapped in evidence.ErrProviderUnavailable when none is
// configured or the chosen one cannot be initialized; callers degrade to
// "no embedder".
func Select(ctx context.Context, cfg *config.Config, logger *zap.Logger) (Provider, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	name := cfg.Providers().Embeddings
	metrics := NewMetrics(logger)

	var (
		p     Provider
		model string
		err   error
	)
	switch name {
	case config.ProviderGemini:
		model = cfg.Google.EmbeddingModel
		p, err = NewGeminiProvider(ctx, GeminiConfig{
			APIKey: cfg.Google.APIKey.Value(),
			Model:  model,
		})
	case config.ProviderHuggingFace:
		model = cfg.HuggingFace.Model
		p, err = NewHuggingFaceProvider(HuggingFaceConfig{
			BaseURL: cfg.HuggingFace.BaseURL,
			Model:   model,
			APIKey:  cfg.HuggingFace.APIKey.Value(),
		})
	case config.ProviderOpenAI:
		model = cfg.Embeddings.Model
		p, err = NewOpenAIProvider(OpenAIConfig{
			BaseURL: cfg.Embeddings.BaseURL,
			Model:   model,
			APIKey:  cfg.Embeddings.APIKey.Value(),
		})
	case config.ProviderFastembed:
		model = cfg.Fastembed.Model
		p, err = NewFastEmbedProvider(FastEmbedConfig{
			Model:    model,
			CacheDir: cfg.Fastembed.CacheDir,
		})
	default:
		return nil, fmt.Errorf("%w: no embedding provider configured", evidence.ErrProviderUnavailable)
	}
	if err != nil {
		logger.Warn("embedding provider unavailable", zap.String("provider", name), zap.Error(err))
		return nil, fmt.Errorf("%w: %s: %v", evidence.ErrProviderUnavailable, name, err)
	}

	logger.Info("embedding provider selected",
		zap.String("provider", name),
		zap.String("model", model),
		zap.Int("dimension", p.Dimension()),
	)
	return Instrument(p, name, model, metrics), nil
}

// Instrument wraps p so every call is recorded in metrics.
func Instrument(p Provider, name, model string, metrics *Metrics) Provider {
	return &instrumented{Provider: p, name: name, model: model, metrics: metrics}
}

type instrumented struct {
	Provider
	name    string
	model   string
	metrics *Metrics
}

func (i *instrumented) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	start := time.Now()
	vecs, err := i.Provider.EmbedDocuments(ctx, texts)
	i.metrics.Record(ctx, i.name, i.model, "embed_documents", time.Since(start), len(texts), err)
	return vecs, err
}

func (i *instrumented) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	start := time.Now()
	vec, err := i.Provider.EmbedQuery(ctx, text)
	i.metrics.Record(ctx, i.name, i.model, "embed_query", time.Since(start), 1, err)
	return vec, err
}
