package activity

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tripd/internal/config"
)

// NewFromConfig builds the Lookup for the configured activity provider. The
// Lookup has no source when the provider is disabled.
func NewFromConfig(cfg *config.Config, logger *zap.Logger) (*Lookup, error) {
	var source Source
	switch provider := cfg.Providers().Activity; provider {
	case config.ProviderGetYourGuide:
		s, err := NewHTTPSource(HTTPConfig{
			BaseURL:   cfg.Activity.BaseURL,
			APIKey:    cfg.Activity.APIKey.Value(),
			RateLimit: cfg.Activity.RateLimit,
			Timeout:   cfg.Activity.Timeout,
		})
		if err != nil {
			return nil, err
		}
		source = s
	case config.ProviderMemory:
		source = NewVeniceSource()
	case config.ProviderNone, "":
	default:
		return nil, fmt.Errorf("unsupported activity provider %q (supported: getyourguide, memory)", provider)
	}
	return NewLookup(source, cfg.Activity.Timeout, logger), nil
}
