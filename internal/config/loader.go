package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const (
	maxConfigFileSize = 1024 * 1024 // 1MB

	// DefaultCollection is the collection the ingestion job writes to.
	DefaultCollection = "trip_rag_name"
)

// LoadWithFile loads configuration from a YAML file, then overrides it with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (GROQ_API_KEY, QDRANT_URL, SERVER_HTTP_PORT, ...)
//  2. YAML config file (~/.config/tripd/config.yaml)
//  3. Hardcoded defaults
//
// If configPath is empty the default path is used. A missing file is not an
// error. An existing file must live under ~/.config/tripd/ or /etc/tripd/,
// have 0600 or 0400 permissions and be at most 1MB.
//
// Environment variables split at the first underscore into section and
// field:
//
//	GROQ_API_KEY              -> groq.api_key
//	QDRANT_URL                -> qdrant.url
//	PIPELINE_CALL_TIMEOUT     -> pipeline.call_timeout
func LoadWithFile(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get home directory: %w", err)
		}
		configPath = filepath.Join(home, ".config", "tripd", "config.yaml")
	}

	if err := validateConfigPath(configPath); err != nil {
		return nil, fmt.Errorf("config path validation failed: %w", err)
	}

	if _, err := os.Stat(configPath); err == nil {
		// Validate through the open descriptor to avoid a TOCTOU race.
		f, err := os.Open(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open config file: %w", err)
		}
		defer f.Close()

		info, err := f.Stat()
		if err != nil {
			return nil, fmt.Errorf("failed to stat config file: %w", err)
		}
		if err := validateConfigFileProperties(info); err != nil {
			return nil, fmt.Errorf("config file validation failed: %w", err)
		}

		content, err := io.ReadAll(f)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	if err := k.Load(env.ProviderWithValue("", ".", envValue), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// envValue drops empty variables so an exported-but-blank key does not
// clobber the file or default value.
func envValue(key, value string) (string, interface{}) {
	if value == "" {
		return "", nil
	}
	return envKey(key), value
}

// envKey maps SECTION_FIELD_NAME to section.field_name.
func envKey(s string) string {
	lower := strings.ToLower(s)
	parts := strings.SplitN(lower, "_", 2)
	if len(parts) == 1 {
		return lower
	}
	return parts[0] + "." + parts[1]
}

// validateConfigPath checks the path is inside an allowed directory. Runs
// even if the file does not exist yet.
func validateConfigPath(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	resolvedPath, err := filepath.EvalSymlinks(absPath)
	if err != nil {
		// Paths that do not exist yet cannot be resolved.
		resolvedPath = absPath
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	allowedDirs := []string{
		filepath.Join(home, ".config", "tripd"),
		"/etc/tripd",
	}
	for _, dir := range allowedDirs {
		if resolvedPath == dir || strings.HasPrefix(resolvedPath, dir+string(filepath.Separator)) {
			return nil
		}
	}

	return fmt.Errorf("config file must be in ~/.config/tripd/ or /etc/tripd/")
}

// validateConfigFileProperties checks permissions and size of an open file.
func validateConfigFileProperties(info os.FileInfo) error {
	if runtime.GOOS != "windows" {
		perm := info.Mode().Perm()
		if perm != 0600 && perm != 0400 {
			return fmt.Errorf("insecure config file permissions: %v (expected 0600 or 0400)", perm)
		}
	}

	if info.Size() > maxConfigFileSize {
		return fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
	}

	return nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 9191
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = 10 * time.Second
	}
	if cfg.Server.BodyLimit == "" {
		cfg.Server.BodyLimit = "64K"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
	}

	if cfg.Observability.ServiceName == "" {
		cfg.Observability.ServiceName = "tripd"
	}
	if cfg.Observability.Endpoint == "" {
		cfg.Observability.Endpoint = "localhost:4317"
	}
	if cfg.Observability.SampleRate == 0 {
		cfg.Observability.SampleRate = 1.0
	}

	if cfg.VectorStore.Provider == "" {
		cfg.VectorStore.Provider = "auto"
	}
	if cfg.Qdrant.Host == "" {
		cfg.Qdrant.Host = "localhost"
	}
	if cfg.Qdrant.Port == 0 {
		cfg.Qdrant.Port = 6334
	}
	if cfg.Qdrant.Collection == "" {
		cfg.Qdrant.Collection = DefaultCollection
	}
	if cfg.Qdrant.MaxRetries == 0 {
		cfg.Qdrant.MaxRetries = 2
	}
	if cfg.Qdrant.Timeout == 0 {
		cfg.Qdrant.Timeout = 5 * time.Second
	}
	if cfg.Chromem.Path == "" {
		cfg.Chromem.Path = DefaultCollection
	}
	if cfg.Chromem.Collection == "" {
		cfg.Chromem.Collection = DefaultCollection
	}

	if cfg.Embeddings.Provider == "" {
		cfg.Embeddings.Provider = "auto"
	}
	// Query vectors must come from the model the collection was ingested
	// with, or similarity scores are not comparable with ScoreThreshold.
	if cfg.Google.EmbeddingModel == "" {
		cfg.Google.EmbeddingModel = "embedding-001"
	}
	if cfg.HuggingFace.Model == "" {
		cfg.HuggingFace.Model = "sentence-transformers/all-mpnet-base-v2"
	}
	if cfg.HuggingFace.BaseURL == "" {
		cfg.HuggingFace.BaseURL = "https://api-inference.huggingface.co"
	}
	if cfg.Fastembed.Model == "" {
		cfg.Fastembed.Model = "BAAI/bge-base-en-v1.5"
	}

	if cfg.Groq.BaseURL == "" {
		cfg.Groq.BaseURL = "https://api.groq.com/openai/v1"
	}
	if cfg.Groq.Model == "" {
		cfg.Groq.Model = "llama-3.3-70b-versatile"
	}
	if cfg.Ollama.URL == "" {
		cfg.Ollama.URL = "http://localhost:11434"
	}
	if cfg.Ollama.Model == "" {
		cfg.Ollama.Model = "llama3.1"
	}

	if cfg.Search.Provider == "" {
		cfg.Search.Provider = "duckduckgo"
	}
	if cfg.Search.RateLimit == 0 {
		cfg.Search.RateLimit = 1
	}
	if cfg.Search.Timeout == 0 {
		cfg.Search.Timeout = 10 * time.Second
	}

	if cfg.Activity.RateLimit == 0 {
		cfg.Activity.RateLimit = 5
	}
	if cfg.Activity.Timeout == 0 {
		cfg.Activity.Timeout = 10 * time.Second
	}

	if cfg.Pipeline.PrimaryK == 0 {
		cfg.Pipeline.PrimaryK = 3
	}
	if cfg.Pipeline.SupplementaryK == 0 {
		cfg.Pipeline.SupplementaryK = 2
	}
	if cfg.Pipeline.WebMaxResults == 0 {
		cfg.Pipeline.WebMaxResults = 3
	}
	if cfg.Pipeline.SupplementaryWeb == 0 {
		cfg.Pipeline.SupplementaryWeb = 2
	}
	if cfg.Pipeline.CallTimeout == 0 {
		cfg.Pipeline.CallTimeout = 20 * time.Second
	}
}

// EnsureConfigDir creates ~/.config/tripd with 0700 permissions.
func EnsureConfigDir() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return fmt.Errorf("failed to get home directory: %w", err)
	}

	configDir := filepath.Join(home, ".config", "tripd")
	if err := os.MkdirAll(configDir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory %s: %w", configDir, err)
	}
	return nil
}
