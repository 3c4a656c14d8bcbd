// Package retrieval turns a query into scored attraction documents.
package retrieval

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/tripd/internal/evidence"
	"github.com/fyrsmithlabs/tripd/internal/vectorstore"
)

// MaxK is the largest number of documents a single retrieval may request.
const MaxK = vectorstore.MaxLimit

// Config configures a Retriever.
type Config struct {
	// Collection is the store collection to search.
	Collection string

	// Timeout bounds the embedding call and the store call separately.
	// Zero means no timeout beyond the caller's context.
	Timeout time.Duration
}

// Retriever embeds a query and searches the vector store.
//
// Retrieve never fails: a missing embedder, a missing store, or any error
// on the way yields an empty result. Degradations are logged.
type Retriever struct {
	embedder vectorstore.Embedder
	store    vectorstore.Store
	config   Config
	logger   *zap.Logger
}

// New creates a Retriever. embedder and store may be nil.
func New(embedder vectorstore.Embedder, store vectorstore.Store, cfg Config, logger *zap.Logger) *Retriever {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Retriever{
		embedder: embedder,
		store:    store,
		config:   cfg,
		logger:   logger,
	}
}

// ClampK limits k to [1, MaxK].
func ClampK(k int) int {
	if k < 1 {
		return 1
	}
	if k > MaxK {
		return MaxK
	}
	return k
}

// Retrieve returns up to k documents ordered by descending score.
func (r *Retriever) Retrieve(ctx context.Context, query string, k int) []evidence.Document {
	k = ClampK(k)

	if r.embedder == nil || r.store == nil {
		r.logger.Debug("retrieval skipped",
			zap.String("error_class", evidence.ClassProviderUnavailable),
			zap.Bool("embedder", r.embedder != nil),
			zap.Bool("store", r.store != nil))
		return []evidence.Document{}
	}

	docs, err := r.retrieve(ctx, query, k)
	if err != nil {
		r.logger.Warn("retrieval failed",
			zap.String("error_class", evidence.Classify(err)),
			zap.Int("k", k),
			zap.Error(err))
		return []evidence.Document{}
	}

	r.logger.Debug("retrieved documents", zap.Int("k", k), zap.Int("count", len(docs)))
	return docs
}

func (r *Retriever) retrieve(ctx context.Context, query string, k int) ([]evidence.Document, error) {
	vector, err := r.embed(ctx, query)
	if err != nil {
		return nil, err
	}

	searchCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	results, err := r.store.Search(searchCtx, r.config.Collection, vector, k)
	if err != nil {
		return nil, fmt.Errorf("%w: vector search: %v", evidence.ErrTransport, err)
	}

	docs := make([]evidence.Document, len(results))
	for i, res := range results {
		docs[i] = evidence.Document{
			ID:       res.ID,
			Content:  res.Content,
			Metadata: res.Metadata,
			Score:    res.Score,
		}
	}
	sort.SliceStable(docs, func(i, j int) bool { return docs[i].Score > docs[j].Score })

	if len(docs) > k {
		docs = docs[:k]
	}
	return docs, nil
}

func (r *Retriever) embed(ctx context.Context, query string) ([]float32, error) {
	embedCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	vector, err := r.embedder.EmbedQuery(embedCtx, query)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding query: %v", evidence.ErrTransport, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: embedder returned an empty vector", evidence.ErrTransport)
	}
	return vector, nil
}

func (r *Retriever) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.config.Timeout)
}
