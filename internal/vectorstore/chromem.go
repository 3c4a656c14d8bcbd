package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	chromem "github.com/philippgille/chromem-go"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.uber.org/zap"
)

// ChromemConfig holds configuration for the embedded chromem-go database.
type ChromemConfig struct {
	// Path is the directory of the persistent database. Default: trip_rag_name.
	Path string

	// Compress reads gzip-compressed collection files.
	Compress bool
}

// ApplyDefaults sets default values for unset fields.
func (c *ChromemConfig) ApplyDefaults() {
	if c.Path == "" {
		c.Path = "trip_rag_name"
	}
}

var errVectorQueryOnly = errors.New("chromem store only accepts precomputed query vectors")

// ChromemStore is a read-only Store over an on-disk chromem-go database.
// chromem keeps metadata as strings; list-valued attraction fields are
// stored JSON-encoded and returned as-is.
type ChromemStore struct {
	db     *chromem.DB
	logger *zap.Logger
}

// NewChromemStore opens the persistent database at config.Path, creating
// the directory if needed.
func NewChromemStore(config ChromemConfig, logger *zap.Logger) (*ChromemStore, error) {
	config.ApplyDefaults()

	path, err := expandChromemPath(config.Path)
	if err != nil {
		return nil, fmt.Errorf("expanding path: %w", err)
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("creating directory %s: %w", path, err)
	}

	db, err := chromem.NewPersistentDB(path, config.Compress)
	if err != nil {
		return nil, fmt.Errorf("%w: opening chromem db: %v", ErrConnectionFailed, err)
	}

	store := NewChromemStoreFromDB(db, logger)
	store.logger.Info("chromem store ready",
		zap.String("path", path),
		zap.Int("collections", len(db.ListCollections())))
	return store, nil
}

// NewChromemStoreFromDB wraps an already open database.
func NewChromemStoreFromDB(db *chromem.DB, logger *zap.Logger) *ChromemStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromemStore{db: db, logger: logger}
}

func expandChromemPath(path string) (string, error) {
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}

// queryOnlyEmbeddingFunc keeps chromem from falling back to its OpenAI
// default when a collection is loaded.
func queryOnlyEmbeddingFunc(context.Context, string) ([]float32, error) {
	return nil, errVectorQueryOnly
}

// Search queries collection for the documents nearest to vector.
func (s *ChromemStore) Search(ctx context.Context, collection string, vector []float32, limit int) ([]SearchResult, error) {
	ctx, span := tracer.Start(ctx, "ChromemStore.Search")
	defer span.End()

	span.SetAttributes(
		attribute.String("collection", collection),
		attribute.Int("limit", limit),
	)

	limit, err := validateSearch(collection, vector, limit)
	if err != nil {
		return nil, err
	}

	c := s.db.GetCollection(collection, queryOnlyEmbeddingFunc)
	if c == nil {
		span.SetStatus(codes.Error, "collection not found")
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}

	// chromem rejects nResults larger than the document count.
	count := c.Count()
	if count == 0 {
		return []SearchResult{}, nil
	}
	if limit > count {
		limit = count
	}

	results, err := c.QueryEmbedding(ctx, vector, limit, nil, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("querying collection %s: %w", collection, err)
	}

	out := make([]SearchResult, len(results))
	for i, r := range results {
		metadata := make(map[string]interface{}, len(r.Metadata))
		for k, v := range r.Metadata {
			metadata[k] = v
		}
		out[i] = SearchResult{
			ID:       r.ID,
			Content:  r.Content,
			Score:    r.Similarity,
			Metadata: metadata,
		}
	}

	span.SetAttributes(attribute.Int("results_count", len(out)))
	span.SetStatus(codes.Ok, "success")

	s.logger.Debug("searched chromem collection",
		zap.String("collection", collection),
		zap.Int("limit", limit),
		zap.Int("results", len(out)))

	return out, nil
}

// ListCollections returns collection names in sorted order.
func (s *ChromemStore) ListCollections(ctx context.Context) ([]string, error) {
	_, span := tracer.Start(ctx, "ChromemStore.ListCollections")
	defer span.End()

	collections := s.db.ListCollections()
	names := make([]string, 0, len(collections))
	for name := range collections {
		names = append(names, name)
	}
	sort.Strings(names)

	span.SetAttributes(attribute.Int("collection_count", len(names)))
	span.SetStatus(codes.Ok, "success")
	return names, nil
}

// CollectionInfo returns the document count of a collection.
func (s *ChromemStore) CollectionInfo(ctx context.Context, name string) (*CollectionInfo, error) {
	_, span := tracer.Start(ctx, "ChromemStore.CollectionInfo")
	defer span.End()

	span.SetAttributes(attribute.String("collection", name))

	if err := ValidateCollectionName(name); err != nil {
		return nil, err
	}

	c := s.db.GetCollection(name, queryOnlyEmbeddingFunc)
	if c == nil {
		span.SetStatus(codes.Error, "collection not found")
		return nil, ErrCollectionNotFound
	}

	info := &CollectionInfo{Name: name, PointCount: c.Count()}
	span.SetAttributes(attribute.Int("point_count", info.PointCount))
	span.SetStatus(codes.Ok, "success")
	return info, nil
}

// Close is a no-op; the database holds no open handles between calls.
func (s *ChromemStore) Close() error {
	return nil
}
