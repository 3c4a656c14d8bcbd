package vectorstore

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tripd/internal/config"
)

// NewStore opens the store named by cfg.Providers().VectorStore.
//
// The returned collection is the one queries should target.
func NewStore(cfg *config.Config, logger *zap.Logger) (Store, string, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch provider := cfg.Providers().VectorStore; provider {
	case config.ProviderQdrant:
		store, err := NewQdrantStore(QdrantConfig{
			URL:        cfg.Qdrant.URL,
			APIKey:     cfg.Qdrant.APIKey.Value(),
			Host:       cfg.Qdrant.Host,
			Port:       cfg.Qdrant.Port,
			UseTLS:     cfg.Qdrant.UseTLS,
			MaxRetries: cfg.Qdrant.MaxRetries,
			Timeout:    cfg.Qdrant.Timeout,
		}, logger)
		if err != nil {
			return nil, "", err
		}
		return store, cfg.Qdrant.Collection, nil

	case config.ProviderChromem:
		store, err := NewChromemStore(ChromemConfig{
			Path:     cfg.Chromem.Path,
			Compress: cfg.Chromem.Compress,
		}, logger)
		if err != nil {
			return nil, "", err
		}
		return store, cfg.Chromem.Collection, nil

	default:
		return nil, "", fmt.Errorf("%w: unsupported vectorstore provider %q (supported: qdrant, chromem)", ErrInvalidConfig, provider)
	}
}
