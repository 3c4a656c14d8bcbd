package config

import "go.uber.org/zap/zapcore"

// Selection is the resolved choice of backends. It is computed once at
// startup and handed to constructors; nothing re-reads the environment while
// queries are served.
type Selection struct {
	Embeddings  string
	VectorStore string
	Generation  string
	Search      string
	Activity    string
}

// Provider names reported by Selection.
const (
	ProviderNone         = "none"
	ProviderGemini       = "gemini"
	ProviderHuggingFace  = "huggingface"
	ProviderOpenAI       = "openai"
	ProviderFastembed    = "fastembed"
	ProviderQdrant       = "qdrant"
	ProviderChromem      = "chromem"
	ProviderGroq         = "groq"
	ProviderOllama       = "ollama"
	ProviderDuckDuckGo   = "duckduckgo"
	ProviderGoogle       = "google"
	ProviderGetYourGuide = "getyourguide"
	ProviderMemory       = "memory"
)

// Providers resolves which backend serves each concern.
//
// Embeddings: explicit provider, then Google key, then HuggingFace key, then
// the local fastembed model unless it is disabled.
// Vector store: explicit provider, else Qdrant when both QDRANT_URL and
// QDRANT_API_KEY are set, else the embedded chromem store.
// Generation: Groq when its key is set, else Ollama when enabled.
// Search: Google only when both its key and CSE id are present.
func (c *Config) Providers() Selection {
	var s Selection

	switch {
	case c.Embeddings.Provider != "" && c.Embeddings.Provider != "auto":
		s.Embeddings = c.Embeddings.Provider
	case c.Google.APIKey.IsSet():
		s.Embeddings = ProviderGemini
	case c.HuggingFace.APIKey.IsSet():
		s.Embeddings = ProviderHuggingFace
	case !c.Fastembed.Disabled:
		s.Embeddings = ProviderFastembed
	default:
		s.Embeddings = ProviderNone
	}

	switch {
	case c.VectorStore.Provider == ProviderQdrant || c.VectorStore.Provider == ProviderChromem:
		s.VectorStore = c.VectorStore.Provider
	case c.Qdrant.URL != "" && c.Qdrant.APIKey.IsSet():
		s.VectorStore = ProviderQdrant
	default:
		s.VectorStore = ProviderChromem
	}

	switch {
	case c.Groq.APIKey.IsSet():
		s.Generation = ProviderGroq
	case c.Ollama.Enabled:
		s.Generation = ProviderOllama
	default:
		s.Generation = ProviderNone
	}

	switch c.Search.Provider {
	case ProviderGoogle:
		if c.Google.APIKey.IsSet() && c.Google.CSEID != "" {
			s.Search = ProviderGoogle
		} else {
			s.Search = ProviderNone
		}
	case ProviderNone:
		s.Search = ProviderNone
	default:
		s.Search = ProviderDuckDuckGo
	}

	if c.Activity.Provider == "" {
		s.Activity = ProviderNone
	} else {
		s.Activity = c.Activity.Provider
	}

	return s
}

// MarshalLogObject lets the selection be logged with zap.Object.
func (s Selection) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("embeddings", s.Embeddings)
	enc.AddString("vectorstore", s.VectorStore)
	enc.AddString("generation", s.Generation)
	enc.AddString("search", s.Search)
	enc.AddString("activity", s.Activity)
	return nil
}
