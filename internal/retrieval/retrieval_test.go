package retrieval

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/fyrsmithlabs/tripd/internal/vectorstore"
)

type fakeEmbedder struct {
	err   error
	delay time.Duration
}

func (e *fakeEmbedder) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		v, err := e.EmbedQuery(ctx, text)
		if err != nil {
			return nil, err
		}
		out[i] = v
	}
	return out, nil
}

func (e *fakeEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	if e.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(e.delay):
		}
	}
	if e.err != nil {
		return nil, e.err
	}
	return []float32{float32(len(text)), 1}, nil
}

type scriptedStore struct {
	results    []vectorstore.SearchResult
	err        error
	collection string
	limit      int
}

func (s *scriptedStore) Search(_ context.Context, collection string, _ []float32, limit int) ([]vectorstore.SearchResult, error) {
	s.collection = collection
	s.limit = limit
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

func (s *scriptedStore) ListCollections(context.Context) ([]string, error) { return nil, nil }

func (s *scriptedStore) CollectionInfo(context.Context, string) (*vectorstore.CollectionInfo, error) {
	return nil, vectorstore.ErrCollectionNotFound
}

func (s *scriptedStore) Close() error { return nil }

func TestClampK(t *testing.T) {
	assert.Equal(t, 1, ClampK(-5))
	assert.Equal(t, 1, ClampK(0))
	assert.Equal(t, 3, ClampK(3))
	assert.Equal(t, MaxK, ClampK(1000))
}

func TestRetrieve_SortsByDescendingScore(t *testing.T) {
	store := &scriptedStore{results: []vectorstore.SearchResult{
		{ID: "a", Content: "low", Score: 0.4},
		{ID: "b", Content: "high", Score: 0.9, Metadata: map[string]interface{}{"Attraction_name": "Gondola Ride"}},
		{ID: "c", Content: "tie-first", Score: 0.6},
		{ID: "d", Content: "tie-second", Score: 0.6},
	}}
	r := New(&fakeEmbedder{}, store, Config{Collection: "trip_rag_name"}, nil)

	docs := r.Retrieve(context.Background(), "gondola venice", 5)

	require.Len(t, docs, 4)
	assert.Equal(t, []string{"b", "c", "d", "a"}, []string{docs[0].ID, docs[1].ID, docs[2].ID, docs[3].ID})
	assert.Equal(t, "Gondola Ride", docs[0].AttractionName())
	assert.Equal(t, "trip_rag_name", store.collection)
	assert.Equal(t, 5, store.limit)
}

func TestRetrieve_ClampsK(t *testing.T) {
	store := &scriptedStore{}
	r := New(&fakeEmbedder{}, store, Config{Collection: "c"}, nil)

	r.Retrieve(context.Background(), "q", 0)
	assert.Equal(t, 1, store.limit)

	r.Retrieve(context.Background(), "q", 500)
	assert.Equal(t, MaxK, store.limit)
}

func TestRetrieve_NilEmbedder(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	store := &scriptedStore{results: []vectorstore.SearchResult{{ID: "a", Score: 0.9}}}
	r := New(nil, store, Config{Collection: "c"}, zap.New(core))

	docs := r.Retrieve(context.Background(), "gondola", 3)

	assert.NotNil(t, docs)
	assert.Empty(t, docs)
	assert.Zero(t, store.limit)
	assert.Equal(t, 1, logs.FilterMessage("retrieval skipped").Len())
}

func TestRetrieve_Failures(t *testing.T) {
	tests := []struct {
		name     string
		embedder *fakeEmbedder
		store    *scriptedStore
		timeout  time.Duration
	}{
		{name: "embedding error", embedder: &fakeEmbedder{err: errors.New("quota exceeded")}, store: &scriptedStore{}},
		{name: "store error", embedder: &fakeEmbedder{}, store: &scriptedStore{err: vectorstore.ErrCollectionNotFound}},
		{name: "timeout", embedder: &fakeEmbedder{delay: time.Second}, store: &scriptedStore{}, timeout: 10 * time.Millisecond},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			core, logs := observer.New(zapcore.WarnLevel)
			r := New(tt.embedder, tt.store, Config{Collection: "c", Timeout: tt.timeout}, zap.New(core))

			docs := r.Retrieve(context.Background(), "gondola", 3)

			assert.Empty(t, docs)
			entries := logs.FilterMessage("retrieval failed").All()
			require.Len(t, entries, 1)
			assert.Equal(t, "transport", entries[0].ContextMap()["error_class"])
		})
	}
}
