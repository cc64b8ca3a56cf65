package search

import (
	"log/slog"

	"github.com/poiesic/ragkit/core"
)

// SearchMonitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps and results during search.
type SearchMonitor interface {
	Start(query string)
	AfterQueryEmbedding(vector []float32)
	AfterQuery(candidates []*core.SearchResult)
	KeywordHit(result *core.SearchResult)
	Finish(results []*core.SearchResult)
}

// noopMonitor is a no-op implementation of SearchMonitor
type noopMonitor struct{}

var _ SearchMonitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)                    {}
func (n *noopMonitor) AfterQueryEmbedding(_ []float32)   {}
func (n *noopMonitor) AfterQuery(_ []*core.SearchResult) {}
func (n *noopMonitor) KeywordHit(_ *core.SearchResult)   {}
func (n *noopMonitor) Finish(_ []*core.SearchResult)     {}

// LogMonitor reports every search stage to a logger at debug level.
type LogMonitor struct {
	Logger *slog.Logger
}

var _ SearchMonitor = (*LogMonitor)(nil)

func (m *LogMonitor) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.Default()
	}
	return m.Logger
}

func (m *LogMonitor) Start(query string) {
	m.logger().Debug("search started", "query", query)
}

func (m *LogMonitor) AfterQueryEmbedding(vector []float32) {
	m.logger().Debug("query embedded", "dimensions", len(vector))
}

func (m *LogMonitor) AfterQuery(candidates []*core.SearchResult) {
	m.logger().Debug("collection queried", "candidates", len(candidates))
}

func (m *LogMonitor) KeywordHit(result *core.SearchResult) {
	m.logger().Debug("keyword boost", "chunk", result.Chunk.Id, "score", result.Score)
}

func (m *LogMonitor) Finish(results []*core.SearchResult) {
	for i, r := range results {
		m.logger().Debug("search hit", "rank", i, "chunk", r.Chunk.Id, "score", r.Score)
	}
}
