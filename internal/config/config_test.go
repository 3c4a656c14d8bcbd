package config

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{name: "port out of range", mutate: func(c *Config) { c.Server.Port = 70000 }, wantErr: "invalid server port"},
		{name: "unknown vector store", mutate: func(c *Config) { c.VectorStore.Provider = "pinecone" }, wantErr: "unknown vectorstore provider"},
		{name: "unknown embeddings", mutate: func(c *Config) { c.Embeddings.Provider = "cohere" }, wantErr: "unknown embeddings provider"},
		{name: "openai needs base url", mutate: func(c *Config) { c.Embeddings.Provider = "openai" }, wantErr: "base_url"},
		{name: "unknown search", mutate: func(c *Config) { c.Search.Provider = "bing" }, wantErr: "unknown search provider"},
		{name: "getyourguide needs base url", mutate: func(c *Config) { c.Activity.Provider = "getyourguide" }, wantErr: "activity base_url"},
		{name: "temperature too high", mutate: func(c *Config) { c.Generation.Temperature = 3 }, wantErr: "temperature"},
		{name: "zero call timeout", mutate: func(c *Config) { c.Pipeline.CallTimeout = -1 }, wantErr: "call timeout"},
		{name: "k above max", mutate: func(c *Config) { c.Pipeline.SupplementaryK = maxK + 1 }, wantErr: "supplementary_k"},
		{name: "bad log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestProviders(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   Selection
	}{
		{
			name:   "nothing configured",
			mutate: func(*Config) {},
			want: Selection{
				Embeddings: ProviderFastembed, VectorStore: ProviderChromem,
				Generation: ProviderNone, Search: ProviderDuckDuckGo, Activity: ProviderNone,
			},
		},
		{
			name: "google key wins over huggingface",
			mutate: func(c *Config) {
				c.Google.APIKey = "AIzaTest"
				c.HuggingFace.APIKey = "hf_test"
			},
			want: Selection{
				Embeddings: ProviderGemini, VectorStore: ProviderChromem,
				Generation: ProviderNone, Search: ProviderDuckDuckGo, Activity: ProviderNone,
			},
		},
		{
			name: "explicit embeddings override beats keys",
			mutate: func(c *Config) {
				c.Google.APIKey = "AIzaTest"
				c.Embeddings.Provider = ProviderHuggingFace
			},
			want: Selection{
				Embeddings: ProviderHuggingFace, VectorStore: ProviderChromem,
				Generation: ProviderNone, Search: ProviderDuckDuckGo, Activity: ProviderNone,
			},
		},
		{
			name: "cloud deployment",
			mutate: func(c *Config) {
				c.HuggingFace.APIKey = "hf_test"
				c.Qdrant.URL = "https://x.cloud.qdrant.io:6334"
				c.Qdrant.APIKey = "secret"
				c.Groq.APIKey = "gsk_test"
				c.Ollama.Enabled = true
				c.Activity.Provider = ProviderMemory
			},
			want: Selection{
				Embeddings: ProviderHuggingFace, VectorStore: ProviderQdrant,
				Generation: ProviderGroq, Search: ProviderDuckDuckGo, Activity: ProviderMemory,
			},
		},
		{
			name: "qdrant url without key stays local",
			mutate: func(c *Config) {
				c.Qdrant.URL = "https://x.cloud.qdrant.io:6334"
				c.Ollama.Enabled = true
				c.Fastembed.Disabled = true
			},
			want: Selection{
				Embeddings: ProviderNone, VectorStore: ProviderChromem,
				Generation: ProviderOllama, Search: ProviderDuckDuckGo, Activity: ProviderNone,
			},
		},
		{
			name: "google search without cse id is disabled",
			mutate: func(c *Config) {
				c.Search.Provider = ProviderGoogle
				c.Fastembed.Disabled = true
				c.Embeddings.Provider = ProviderFastembed
			},
			want: Selection{
				Embeddings: ProviderFastembed, VectorStore: ProviderChromem,
				Generation: ProviderNone, Search: ProviderNone, Activity: ProviderNone,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Equal(t, tt.want, cfg.Providers())
		})
	}
}

func TestSecret_Redacted(t *testing.T) {
	s := Secret("gsk_live_value")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "gsk_live_value", s.Value())
	assert.True(t, s.IsSet())

	out, err := json.Marshal(struct{ Key Secret }{s})
	require.NoError(t, err)
	assert.NotContains(t, string(out), "gsk_live_value")

	assert.Equal(t, "", Secret("").String())
	assert.False(t, Secret("").IsSet())
}

func TestSecret_UnmarshalText(t *testing.T) {
	var s Secret
	require.NoError(t, s.UnmarshalText([]byte("hf_abc")))
	assert.Equal(t, "hf_abc", s.Value())
}
