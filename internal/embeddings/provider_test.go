package embeddings

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/fyrsmithlabs/tripd/internal/config"
	"github.com/fyrsmithlabs/tripd/internal/evidence"
)

func baseConfig() *config.Config {
	return &config.Config{
		Embeddings:  config.EmbeddingsConfig{Provider: "auto"},
		Google:      config.GoogleConfig{EmbeddingModel: "embedding-001"},
		HuggingFace: config.HuggingFaceConfig{Model: "sentence-transformers/all-mpnet-base-v2"},
		Fastembed:   config.FastembedConfig{Model: "BAAI/bge-base-en-v1.5", Disabled: true},
	}
}

func TestSelect_NothingConfigured(t *testing.T) {
	p, err := Select(context.Background(), baseConfig(), nil)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, evidence.ErrProviderUnavailable)
}

func TestSelect_HuggingFace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode([][]float32{{0.5, 0.5}})
	}))
	defer srv.Close()

	cfg := baseConfig()
	cfg.HuggingFace.APIKey = "hf_test"
	cfg.HuggingFace.BaseURL = srv.URL

	p, err := Select(context.Background(), cfg, nil)
	require.NoError(t, err)
	require.NotNil(t, p)

	vec, err := p.EmbedQuery(context.Background(), "gondola")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.5}, vec)
	assert.NoError(t, p.Close())
}

func TestSelect_BrokenChoiceIsUnavailable(t *testing.T) {
	cfg := baseConfig()
	cfg.Embeddings.Provider = config.ProviderOpenAI // no base url

	p, err := Select(context.Background(), cfg, nil)
	assert.Nil(t, p)
	assert.ErrorIs(t, err, evidence.ErrProviderUnavailable)
}

func TestSelect_GeminiWithoutNetwork(t *testing.T) {
	cfg := baseConfig()
	cfg.Google.APIKey = "AIza-test"

	p, err := Select(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, 768, p.Dimension())
}

func TestNewGeminiProvider_RequiresKey(t *testing.T) {
	_, err := NewGeminiProvider(context.Background(), GeminiConfig{})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewFastEmbedProvider_UnsupportedModel(t *testing.T) {
	_, err := NewFastEmbedProvider(FastEmbedConfig{Model: "not-a-model"})
	assert.Error(t, err)
}

func TestOpenAIProvider_Embeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"object": "list",
			"model":  "bge",
			"data": []map[string]interface{}{
				{"object": "embedding", "index": 0, "embedding": []float32{0.25, 0.75}},
			},
		})
	}))
	defer srv.Close()

	p, err := NewOpenAIProvider(OpenAIConfig{BaseURL: srv.URL, Model: "bge"})
	require.NoError(t, err)

	vec, err := p.EmbedQuery(context.Background(), "doge palace")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.25, 0.75}, vec)
}

type stubProvider struct {
	err error
}

func (s stubProvider) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	return make([][]float32, len(texts)), s.err
}
func (s stubProvider) EmbedQuery(context.Context, string) ([]float32, error) { return []float32{1}, s.err }
func (s stubProvider) Dimension() int                                      { return 1 }
func (s stubProvider) Close() error                                        { return nil }

func TestInstrument_RecordsMetrics(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics := newMetrics(mp.Meter("test"), nil)

	ok := Instrument(stubProvider{}, "stub", "m", metrics)
	_, _ = ok.EmbedQuery(context.Background(), "a")
	_, _ = ok.EmbedDocuments(context.Background(), []string{"a", "b"})

	failing := Instrument(stubProvider{err: errors.New("boom")}, "stub", "m", metrics)
	_, _ = failing.EmbedQuery(context.Background(), "a")

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	got := map[string]metricdata.Aggregation{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			got[m.Name] = m.Data
		}
	}
	require.Contains(t, got, "tripd.embedding.duration_seconds")
	require.Contains(t, got, "tripd.embedding.batch_size")
	require.Contains(t, got, "tripd.embedding.errors_total")

	errs := got["tripd.embedding.errors_total"].(metricdata.Sum[int64])
	var total int64
	for _, dp := range errs.DataPoints {
		total += dp.Value
	}
	assert.Equal(t, int64(1), total)
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	m.Record(context.Background(), "p", "m", "op", time.Second, 1, nil)
}
