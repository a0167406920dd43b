// Package semantic provides an in-memory semantic search index: a corpus of
// documents embedded once and queried by cosine similarity against a query
// embedding.
package semantic

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/hyperjump/ruiji/internal/embedding"
	"github.com/hyperjump/ruiji/internal/models"
	"github.com/hyperjump/ruiji/internal/vector"
)

// Index holds a corpus and its embeddings and answers top-k similarity
// queries. The embedder is injected at construction and never looked up from
// ambient state. Index is safe for concurrent use: Index() builds a complete
// replacement table and publishes it with an atomic swap, so readers never
// observe a half-built corpus.
type Index struct {
	embedder embedding.Embedder
	ranker   vector.Ranker
	logger   *zap.Logger

	mu   sync.Mutex // serializes Index()
	snap atomic.Pointer[snapshot]
}

// snapshot is an immutable corpus table. vectors[i] is the embedding of
// docs[i]; the two slices always have identical length and order.
type snapshot struct {
	docs    []*models.Document
	vectors [][]float32
	dims    int
}

// Option configures an Index.
type Option func(*Index)

// WithRanker sets the ranking strategy. Defaults to exact brute-force cosine.
func WithRanker(r vector.Ranker) Option {
	return func(ix *Index) { ix.ranker = r }
}

// WithLogger sets a logger for debug output (corpus replaces, query timing).
func WithLogger(l *zap.Logger) Option {
	return func(ix *Index) { ix.logger = l }
}

// New creates an empty index over the given embedder.
func New(embedder embedding.Embedder, opts ...Option) *Index {
	ix := &Index{
		embedder: embedder,
		ranker:   vector.BruteForce{},
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Index embeds the given documents and atomically replaces the corpus.
// The replace is transactional: if any document fails to embed, or the
// embedder produces inconsistent dimensions, the prior corpus is kept
// untouched. An empty input produces an empty index.
func (ix *Index) Index(ctx context.Context, inputs []models.DocumentInput) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	texts := make([]string, len(inputs))
	for i, in := range inputs {
		texts[i] = in.Content
	}

	vectors, err := ix.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		return &EmbeddingError{Err: err}
	}
	if len(vectors) != len(inputs) {
		return &EmbeddingError{Err: fmt.Errorf("embedder returned %d vectors for %d inputs", len(vectors), len(inputs))}
	}

	dims := ix.embedder.Dimensions()
	for i, vec := range vectors {
		if dims == 0 {
			dims = len(vec)
		}
		if len(vec) != dims {
			return fmt.Errorf("%w: document %d has %d dimensions, expected %d", ErrDimensionMismatch, i, len(vec), dims)
		}
	}

	now := time.Now()
	docs := make([]*models.Document, len(inputs))
	for i, in := range inputs {
		docs[i] = &models.Document{
			ID:        uuid.NewString(),
			Position:  i,
			Content:   in.Content,
			Source:    in.Source,
			IndexedAt: now,
		}
	}

	ix.snap.Store(&snapshot{docs: docs, vectors: vectors, dims: dims})
	if ix.logger != nil {
		ix.logger.Debug("corpus replaced", zap.Int("documents", len(docs)), zap.Int("dimensions", dims))
	}
	return nil
}

// Search embeds the query and returns the top-k documents by cosine
// similarity. Results are sorted by descending score; equal scores keep
// ascending corpus position. The result has exactly min(topK, corpus size)
// entries. topK defaults to models.DefaultTopK when non-positive. Searching
// an empty or never-indexed corpus returns an empty slice, not an error.
func (ix *Index) Search(ctx context.Context, query string, topK int) ([]*models.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if topK <= 0 {
		topK = models.DefaultTopK
	}

	snap := ix.snap.Load()
	if snap == nil || len(snap.docs) == 0 {
		return []*models.SearchResult{}, nil
	}

	qvec, err := ix.embedder.Embed(ctx, query)
	if err != nil {
		return nil, &EmbeddingError{Input: query, Err: err}
	}
	if len(qvec) != snap.dims {
		return nil, fmt.Errorf("%w: query has %d dimensions, corpus has %d", ErrDimensionMismatch, len(qvec), snap.dims)
	}

	hits := ix.ranker.Rank(qvec, snap.vectors, topK)
	return snap.results(hits), nil
}

// MostSimilar returns the top-k documents most similar to the corpus document
// at position, excluding that document itself. The stored embedding is reused;
// the embedder is not called. Returns ErrPositionOutOfRange for positions
// outside the current corpus.
func (ix *Index) MostSimilar(ctx context.Context, position, topK int) ([]*models.SearchResult, error) {
	_, results, err := ix.SimilarTo(ctx, position, topK)
	return results, err
}

// SimilarTo is MostSimilar plus the query document itself, both read from the
// same corpus snapshot. Callers that echo the query document back alongside
// the results use this so a concurrent corpus replace cannot pair a document
// from one corpus with results from another.
func (ix *Index) SimilarTo(ctx context.Context, position, topK int) (*models.Document, []*models.SearchResult, error) {
	snap := ix.snap.Load()
	size := 0
	if snap != nil {
		size = len(snap.docs)
	}
	if position < 0 || position >= size {
		return nil, nil, fmt.Errorf("%w: %d (corpus size %d)", ErrPositionOutOfRange, position, size)
	}
	if topK <= 0 {
		topK = models.DefaultTopK
	}

	// Rank one extra so the document itself can be dropped.
	hits := ix.ranker.Rank(snap.vectors[position], snap.vectors, topK+1)
	filtered := hits[:0]
	for _, h := range hits {
		if h.Position != position {
			filtered = append(filtered, h)
		}
	}
	if len(filtered) > topK {
		filtered = filtered[:topK]
	}
	return snap.docs[position], snap.results(filtered), nil
}

// Document returns the corpus document at position.
func (ix *Index) Document(position int) (*models.Document, error) {
	snap := ix.snap.Load()
	size := 0
	if snap != nil {
		size = len(snap.docs)
	}
	if position < 0 || position >= size {
		return nil, fmt.Errorf("%w: %d (corpus size %d)", ErrPositionOutOfRange, position, size)
	}
	return snap.docs[position], nil
}

// Documents returns the current corpus in position order.
func (ix *Index) Documents() []*models.Document {
	snap := ix.snap.Load()
	if snap == nil {
		return nil
	}
	docs := make([]*models.Document, len(snap.docs))
	copy(docs, snap.docs)
	return docs
}

// Size returns the number of documents in the corpus.
func (ix *Index) Size() int {
	snap := ix.snap.Load()
	if snap == nil {
		return 0
	}
	return len(snap.docs)
}

// Dimensions returns the embedding dimensionality of the current corpus,
// or 0 when the index is empty.
func (ix *Index) Dimensions() int {
	snap := ix.snap.Load()
	if snap == nil {
		return 0
	}
	return snap.dims
}

func (s *snapshot) results(hits []vector.Hit) []*models.SearchResult {
	results := make([]*models.SearchResult, len(hits))
	for i, h := range hits {
		results[i] = &models.SearchResult{
			Document: s.docs[h.Position],
			Score:    h.Score,
			Rank:     i + 1,
		}
	}
	return results
}
