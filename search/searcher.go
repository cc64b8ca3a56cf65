package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/ragkit/ai"
	"github.com/poiesic/ragkit/core"
	"github.com/poiesic/ragkit/storage"
)

// DefaultKeywordBoost is the score added by WithKeywordBoost's usual setting.
const DefaultKeywordBoost = 0.3

// candidateFactor widens the candidate set when keyword boosting can reorder it.
const candidateFactor = 4

// Searcher retrieves chunks similar to a query from one collection.
type Searcher struct {
	collection   storage.Collection
	embedder     ai.Embedder
	minScore     float32
	keywordBoost float32
	logger       *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithMinScore drops candidates whose cosine similarity is below score.
// Default is -1, which keeps everything.
func WithMinScore(score float32) Option {
	return func(s *Searcher) error {
		if score < -1 || score > 1 {
			return fmt.Errorf("min score must be within [-1, 1], got %v", score)
		}
		s.minScore = score
		return nil
	}
}

// WithKeywordBoost adds boost to the score of chunks containing every
// non-stop-word of the query. Default is 0 (disabled).
func WithKeywordBoost(boost float32) Option {
	return func(s *Searcher) error {
		if boost < 0 {
			return fmt.Errorf("keyword boost must not be negative, got %v", boost)
		}
		s.keywordBoost = boost
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(collection storage.Collection, embedder ai.Embedder, opts ...Option) (*Searcher, error) {
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	s := &Searcher{
		collection: collection,
		embedder:   embedder,
		minScore:   -1,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Retrieve returns up to n chunks ranked by relevance to query.
func (s *Searcher) Retrieve(ctx context.Context, query string, n int) ([]*core.SearchResult, error) {
	return s.RetrieveWithMonitor(ctx, query, n, nil)
}

// RetrieveWithMonitor is Retrieve with callbacks at each stage of the search.
func (s *Searcher) RetrieveWithMonitor(ctx context.Context, query string, n int, monitor SearchMonitor) ([]*core.SearchResult, error) {
	if err := core.ValidateQuery(query); err != nil {
		return nil, err
	}
	if n < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidResultCount, n)
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	monitor.AfterQueryEmbedding(embedding)

	fetch := n
	if s.keywordBoost > 0 {
		fetch = n * candidateFactor
	}

	candidates, err := s.collection.Query(ctx, embedding, fetch, s.minScore)
	if err != nil {
		s.logger.Error("error querying for similar chunks", "collection", s.collection.Name(), "err", err)
		return nil, err
	}
	monitor.AfterQuery(candidates)

	if s.keywordBoost > 0 {
		for _, candidate := range candidates {
			if coversQuery(candidate.Chunk.Contents, query) {
				candidate.Score += s.keywordBoost
				monitor.KeywordHit(candidate)
			}
		}
	}

	results := storage.RankResults(candidates, n)
	monitor.Finish(results)

	s.logger.Debug("retrieved chunks", "query", query, "hits", len(results))
	return results, nil
}

// JoinContext concatenates the contents of results, in rank order, separated
// by a single space.
func JoinContext(results []*core.SearchResult) string {
	parts := make([]string, 0, len(results))
	for _, r := range results {
		if r == nil || r.Chunk == nil {
			continue
		}
		parts = append(parts, r.Chunk.Contents)
	}
	return strings.Join(parts, " ")
}
