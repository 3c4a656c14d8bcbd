// Package config provides configuration loading for tripd.
//
// Configuration is read once at startup from an optional YAML file and the
// process environment. Provider selection (which embedding, store,
// generation, search and activity backends to use) is resolved from the
// loaded values by Providers and never re-read while serving queries.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete tripd configuration.
//
// Section names double as environment prefixes: GROQ_API_KEY maps to
// groq.api_key, QDRANT_URL to qdrant.url, and so on.
type Config struct {
	Server        ServerConfig        `koanf:"server"`
	Log           LogConfig           `koanf:"log"`
	Observability ObservabilityConfig `koanf:"observability"`
	VectorStore   VectorStoreConfig   `koanf:"vectorstore"`
	Qdrant        QdrantConfig        `koanf:"qdrant"`
	Chromem       ChromemConfig       `koanf:"chromem"`
	Embeddings    EmbeddingsConfig    `koanf:"embeddings"`
	Google        GoogleConfig        `koanf:"google"`
	HuggingFace   HuggingFaceConfig   `koanf:"huggingface"`
	Fastembed     FastembedConfig     `koanf:"fastembed"`
	Groq          GroqConfig          `koanf:"groq"`
	Ollama        OllamaConfig        `koanf:"ollama"`
	Generation    GenerationConfig    `koanf:"generation"`
	Search        SearchConfig        `koanf:"search"`
	Activity      ActivityConfig      `koanf:"activity"`
	Pipeline      PipelineConfig      `koanf:"pipeline"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"http_port"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	BodyLimit       string        `koanf:"body_limit"`
}

// LogConfig holds the subset of logging settings exposed to operators.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// ObservabilityConfig holds OpenTelemetry configuration.
type ObservabilityConfig struct {
	EnableTelemetry bool    `koanf:"enable_telemetry"`
	ServiceName     string  `koanf:"service_name"`
	Endpoint        string  `koanf:"endpoint"`
	Protocol        string  `koanf:"protocol"`
	Insecure        bool    `koanf:"insecure"`
	SampleRate      float64 `koanf:"sample_rate"`
}

// VectorStoreConfig selects the vector store backend.
type VectorStoreConfig struct {
	// Provider is "auto", "qdrant" or "chromem".
	Provider string `koanf:"provider"`
}

// QdrantConfig holds Qdrant connection settings.
type QdrantConfig struct {
	// URL is a full endpoint such as https://xyz.cloud.qdrant.io:6334.
	// Takes precedence over Host/Port when set.
	URL        string        `koanf:"url"`
	APIKey     Secret        `koanf:"api_key"`
	Host       string        `koanf:"host"`
	Port       int           `koanf:"port"`
	UseTLS     bool          `koanf:"use_tls"`
	Collection string        `koanf:"collection"`
	MaxRetries int           `koanf:"max_retries"`
	Timeout    time.Duration `koanf:"timeout"`
}

// ChromemConfig holds the embedded store settings.
type ChromemConfig struct {
	Path       string `koanf:"path"`
	Compress   bool   `koanf:"compress"`
	Collection string `koanf:"collection"`
}

// EmbeddingsConfig allows forcing an embedding provider and configures the
// OpenAI-compatible one.
type EmbeddingsConfig struct {
	// Provider is "auto", "gemini", "huggingface", "openai" or "fastembed".
	Provider string `koanf:"provider"`
	BaseURL  string `koanf:"base_url"`
	Model    string `koanf:"model"`
	APIKey   Secret `koanf:"api_key"`
}

// GoogleConfig holds Google credentials used for Gemini embeddings and
// Custom Search.
type GoogleConfig struct {
	APIKey         Secret `koanf:"api_key"`
	EmbeddingModel string `koanf:"embedding_model"`
	CSEID          string `koanf:"cse_id"`
}

// HuggingFaceConfig holds Inference API settings.
type HuggingFaceConfig struct {
	APIKey  Secret `koanf:"api_key"`
	Model   string `koanf:"model"`
	BaseURL string `koanf:"base_url"`
}

// FastembedConfig holds local embedding model settings.
type FastembedConfig struct {
	Model    string `koanf:"model"`
	CacheDir string `koanf:"cache_dir"`
	Disabled bool   `koanf:"disabled"`
}

// GroqConfig holds the hosted generation backend settings.
type GroqConfig struct {
	APIKey  Secret `koanf:"api_key"`
	BaseURL string `koanf:"base_url"`
	Model   string `koanf:"model"`
}

// OllamaConfig holds the local generation backend settings.
type OllamaConfig struct {
	Enabled bool   `koanf:"enabled"`
	URL     string `koanf:"url"`
	Model   string `koanf:"model"`
}

// GenerationConfig holds settings shared by generation backends.
type GenerationConfig struct {
	Temperature float64 `koanf:"temperature"`
}

// SearchConfig holds web search settings.
type SearchConfig struct {
	// Provider is "duckduckgo", "google" or "none".
	Provider  string        `koanf:"provider"`
	BaseURL   string        `koanf:"base_url"`
	RateLimit float64       `koanf:"rate_limit"`
	Timeout   time.Duration `koanf:"timeout"`
}

// ActivityConfig holds booking data source settings.
type ActivityConfig struct {
	// Provider is "getyourguide", "memory" or empty to disable lookups.
	Provider  string        `koanf:"provider"`
	BaseURL   string        `koanf:"base_url"`
	APIKey    Secret        `koanf:"api_key"`
	RateLimit float64       `koanf:"rate_limit"`
	Timeout   time.Duration `koanf:"timeout"`
}

// PipelineConfig tunes the query pipeline.
type PipelineConfig struct {
	PrimaryK         int           `koanf:"primary_k"`
	SupplementaryK   int           `koanf:"supplementary_k"`
	WebMaxResults    int           `koanf:"web_max_results"`
	SupplementaryWeb int           `koanf:"supplementary_web_results"`
	CallTimeout      time.Duration `koanf:"call_timeout"`
	DisableRedaction bool          `koanf:"disable_redaction"`
}

// maxK bounds retrieval and search result counts.
const maxK = 100

var (
	validVectorStores = map[string]bool{"": true, "auto": true, "qdrant": true, "chromem": true}
	validEmbeddings   = map[string]bool{"": true, "auto": true, "gemini": true, "huggingface": true, "openai": true, "fastembed": true}
	validSearch       = map[string]bool{"": true, "duckduckgo": true, "google": true, "none": true}
	validActivity     = map[string]bool{"": true, "getyourguide": true, "memory": true}
	validLogFormats   = map[string]bool{"": true, "json": true, "console": true}
)

// Validate validates the configuration.
//
// Returns an error if:
//   - Server port is not between 1 and 65535
//   - Shutdown or call timeouts are not positive
//   - A provider name is unknown
//   - Pipeline limits are outside 1..100
//   - Generation temperature is outside 0..2
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if !validLogFormats[c.Log.Format] {
		return fmt.Errorf("log format must be json or console, got %q", c.Log.Format)
	}
	if c.Observability.EnableTelemetry && c.Observability.ServiceName == "" {
		return errors.New("service name required when telemetry is enabled")
	}

	if !validVectorStores[c.VectorStore.Provider] {
		return fmt.Errorf("unknown vectorstore provider %q", c.VectorStore.Provider)
	}
	if c.Qdrant.Port < 1 || c.Qdrant.Port > 65535 {
		return fmt.Errorf("invalid qdrant port: %d", c.Qdrant.Port)
	}
	if c.Qdrant.Collection == "" || c.Chromem.Collection == "" {
		return errors.New("collection name is required")
	}
	if !validEmbeddings[c.Embeddings.Provider] {
		return fmt.Errorf("unknown embeddings provider %q", c.Embeddings.Provider)
	}
	if c.Embeddings.Provider == "openai" && c.Embeddings.BaseURL == "" {
		return errors.New("embeddings base_url is required for the openai provider")
	}
	if !validSearch[c.Search.Provider] {
		return fmt.Errorf("unknown search provider %q", c.Search.Provider)
	}
	if c.Search.RateLimit <= 0 {
		return errors.New("search rate limit must be positive")
	}
	if !validActivity[c.Activity.Provider] {
		return fmt.Errorf("unknown activity provider %q", c.Activity.Provider)
	}
	if c.Activity.Provider == "getyourguide" && c.Activity.BaseURL == "" {
		return errors.New("activity base_url is required for the getyourguide provider")
	}

	if c.Generation.Temperature < 0 || c.Generation.Temperature > 2 {
		return fmt.Errorf("generation temperature must be between 0 and 2, got %v", c.Generation.Temperature)
	}

	p := c.Pipeline
	for name, v := range map[string]int{
		"primary_k":                 p.PrimaryK,
		"supplementary_k":           p.SupplementaryK,
		"web_max_results":           p.WebMaxResults,
		"supplementary_web_results": p.SupplementaryWeb,
	} {
		if v < 1 || v > maxK {
			return fmt.Errorf("pipeline %s must be between 1 and %d, got %d", name, maxK, v)
		}
	}
	if p.CallTimeout <= 0 {
		return errors.New("pipeline call timeout must be positive")
	}

	return nil
}
