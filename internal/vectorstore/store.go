package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
)

var (
	// ErrCollectionNotFound is returned when a collection does not exist.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrInvalidConfig indicates invalid configuration.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrConnectionFailed indicates the backend could not be reached.
	ErrConnectionFailed = errors.New("failed to connect to vector store")

	// ErrInvalidCollectionName indicates collection name validation failure.
	ErrInvalidCollectionName = errors.New("invalid collection name")

	// ErrEmptyVector indicates a search without a query vector.
	ErrEmptyVector = errors.New("query vector is empty")
)

// MaxLimit caps the number of results a single search may request.
const MaxLimit = 100

var collectionNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidateCollectionName rejects names outside ^[A-Za-z0-9_-]{1,64}$, which
// also rules out path traversal into the chromem directory.
func ValidateCollectionName(name string) error {
	if !collectionNamePattern.MatchString(name) {
		return fmt.Errorf("%w: must match ^[A-Za-z0-9_-]{1,64}$, got %q", ErrInvalidCollectionName, name)
	}
	return nil
}

// Embedder generates vector embeddings from text.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// SearchResult is one scored point.
type SearchResult struct {
	ID       string
	Content  string
	Score    float32
	Metadata map[string]interface{}
}

// CollectionInfo describes a collection.
type CollectionInfo struct {
	Name       string `json:"name"`
	PointCount int    `json:"point_count"`
}

// Store is a read-only view of a vector database.
type Store interface {
	// Search returns up to limit points nearest to vector, highest score
	// first, with payloads.
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]SearchResult, error)

	// ListCollections returns all collection names.
	ListCollections(ctx context.Context) ([]string, error)

	// CollectionInfo returns ErrCollectionNotFound for unknown names.
	CollectionInfo(ctx context.Context, name string) (*CollectionInfo, error)

	Close() error
}

func validateSearch(collection string, vector []float32, limit int) (int, error) {
	if err := ValidateCollectionName(collection); err != nil {
		return 0, err
	}
	if len(vector) == 0 {
		return 0, ErrEmptyVector
	}
	if limit < 1 {
		return 0, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return limit, nil
}
