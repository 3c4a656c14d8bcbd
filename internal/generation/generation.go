// Package generation wraps the chat models that write answers. A hosted
// OpenAI-compatible endpoint (Groq) is preferred; a local Ollama model is
// the fallback.
package generation

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tripd/internal/config"
	"github.com/fyrsmithlabs/tripd/internal/evidence"
)

// Defaults for the hosted provider.
const (
	DefaultGroqURL   = "https://api.groq.com/openai/v1"
	DefaultGroqModel = "llama-3.3-70b-versatile"

	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "llama3.1"
)

// ErrEmptyCompletion is returned when the model answers with no text.
var ErrEmptyCompletion = errors.New("model returned an empty completion")

// Generator produces a completion for a system and user prompt.
type Generator interface {
	Name() string
	Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error)
}

// LLM adapts a langchaingo chat model to Generator.
type LLM struct {
	name  string
	model llms.Model
}

// NewLLM wraps model under name.
func NewLLM(name string, model llms.Model) *LLM {
	return &LLM{name: name, model: model}
}

// Name identifies the provider in logs.
func (g *LLM) Name() string {
	return g.name
}

// Complete sends the system and user prompts as separate messages.
func (g *LLM) Complete(ctx context.Context, systemPrompt, userPrompt string, temperature float64) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, userPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, content, llms.WithTemperature(temperature))
	if err != nil {
		return "", fmt.Errorf("%w: %s completion: %v", evidence.ErrTransport, g.name, err)
	}
	if len(resp.Choices) == 0 {
		return "", ErrEmptyCompletion
	}

	text := strings.TrimSpace(resp.Choices[0].Content)
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

// HostedConfig configures the hosted OpenAI-compatible provider.
type HostedConfig struct {
	BaseURL string
	APIKey  string
	Model   string
}

// NewHosted creates a generator for an OpenAI-compatible chat endpoint,
// Groq by default.
func NewHosted(cfg HostedConfig) (*LLM, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: hosted model needs an api key", evidence.ErrProviderUnavailable)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultGroqURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultGroqModel
	}

	client, err := openai.New(
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(cfg.APIKey),
		openai.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating hosted client: %w", err)
	}
	return NewLLM(config.ProviderGroq+":"+cfg.Model, client), nil
}

// LocalConfig configures the Ollama provider.
type LocalConfig struct {
	ServerURL string
	Model     string
}

// NewLocal creates a generator backed by an Ollama server.
func NewLocal(cfg LocalConfig) (*LLM, error) {
	if cfg.ServerURL == "" {
		cfg.ServerURL = DefaultOllamaURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultOllamaModel
	}

	client, err := ollama.New(
		ollama.WithServerURL(cfg.ServerURL),
		ollama.WithModel(cfg.Model),
	)
	if err != nil {
		return nil, fmt.Errorf("creating ollama client: %w", err)
	}
	return NewLLM(config.ProviderOllama+":"+cfg.Model, client), nil
}

// Select returns the generator for the configured provider. When none is
// available it returns a nil Generator and evidence.ErrProviderUnavailable.
func Select(cfg *config.Config, logger *zap.Logger) (Generator, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var (
		g   *LLM
		err error
	)
	switch provider := cfg.Providers().Generation; provider {
	case config.ProviderGroq:
		g, err = NewHosted(HostedConfig{
			BaseURL: cfg.Groq.BaseURL,
			APIKey:  cfg.Groq.APIKey.Value(),
			Model:   cfg.Groq.Model,
		})
	case config.ProviderOllama:
		g, err = NewLocal(LocalConfig{ServerURL: cfg.Ollama.URL, Model: cfg.Ollama.Model})
	default:
		return nil, fmt.Errorf("%w: set GROQ_API_KEY or OLLAMA_ENABLED", evidence.ErrProviderUnavailable)
	}
	if err != nil {
		return nil, err
	}

	logger.Info("generation provider selected", zap.String("provider", g.Name()))
	return g, nil
}
