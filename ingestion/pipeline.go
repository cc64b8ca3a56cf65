package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/ragkit/ai"
	"github.com/poiesic/ragkit/chunk"
	"github.com/poiesic/ragkit/core"
	"github.com/poiesic/ragkit/storage"
)

// Pipeline orchestrates chunking, embedding and storage of documents.
type Pipeline struct {
	collection storage.Collection
	chunker    chunk.Chunker
	pool       *ants.Pool
	embedding  *embeddingProcessor
	logger     *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithChunker sets the chunking strategy.
// Default is fixed windows of chunk.DefaultSize characters.
func WithChunker(chunker chunk.Chunker) Option {
	return func(p *Pipeline) error {
		if chunker == nil {
			return fmt.Errorf("chunker must not be nil")
		}
		p.chunker = chunker
		return nil
	}
}

// WithBatchSize sets how many chunks are sent to the embedder per request.
// Default is 32.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			return fmt.Errorf("batch size must be positive, got %d", size)
		}
		p.embedding.batchSize = size
		return nil
	}
}

// WithPoolSize sets the worker pool size for concurrent embedding requests.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		if p.pool != nil {
			p.pool.Release()
		}
		p.pool = pool
		p.embedding.pool = pool
		return nil
	}
}

// WithMaxRetries sets the number of attempts per embedding batch.
// Default is 3.
func WithMaxRetries(attempts int) Option {
	return func(p *Pipeline) error {
		if attempts < 1 {
			return fmt.Errorf("max retries must be positive, got %d", attempts)
		}
		p.embedding.maxRetries = attempts
		return nil
	}
}

// WithRetryDelay sets the base delay between embedding attempts.
// Default is 500ms, doubling on each retry.
func WithRetryDelay(delay time.Duration) Option {
	return func(p *Pipeline) error {
		p.embedding.retryDelay = delay
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		p.embedding.logger = logger.With("processor", "embeddings")
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline writing to collection.
func NewPipeline(collection storage.Collection, embedder ai.Embedder, opts ...Option) (*Pipeline, error) {
	if collection == nil {
		return nil, ErrCollectionRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	logger := slog.Default()

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		collection: collection,
		chunker:    chunk.FixedSize{Size: chunk.DefaultSize},
		pool:       pool,
		embedding: &embeddingProcessor{
			embedder:   embedder,
			pool:       pool,
			batchSize:  32,
			maxRetries: 3,
			retryDelay: 500 * time.Millisecond,
			logger:     logger.With("processor", "embeddings"),
		},
		logger: logger,
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// IngestOptions holds optional parameters for ingestion.
type IngestOptions struct {
	Metadata map[string]string // Copied onto every chunk
	IDPrefix string            // Chunk id prefix; core.DefaultChunkPrefix if empty
	Chunker  chunk.Chunker     // Replaces the pipeline's chunker for this document
}

// Ingest splits doc, embeds every chunk and stores the result. Chunk i gets
// the id ChunkID(prefix, i). Either all chunks are stored or none are.
func (p *Pipeline) Ingest(ctx context.Context, doc *core.Document, opts *IngestOptions) ([]*core.Chunk, error) {
	if err := core.ValidateDocument(doc); err != nil {
		if errors.Is(err, core.ErrEmptyContent) {
			return nil, fmt.Errorf("%w: %w", ErrNoChunks, err)
		}
		return nil, err
	}
	if opts == nil {
		opts = &IngestOptions{}
	}
	prefix := opts.IDPrefix
	if prefix == "" {
		prefix = core.DefaultChunkPrefix
	}
	docID := doc.Id
	if docID == 0 {
		docID = core.IDFromContent(doc.Contents)
	}

	chunker := p.chunker
	if opts.Chunker != nil {
		chunker = opts.Chunker
	}
	texts, err := chunker.Split(doc.Contents)
	if err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, ErrNoChunks
	}

	vectors, err := p.embedding.process(ctx, texts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: %d chunks, %d vectors", ErrEmbeddingCountMismatch, len(texts), len(vectors))
	}

	chunks := make([]*core.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = &core.Chunk{
			Id:         core.ChunkID(prefix, i),
			DocumentId: docID,
			Index:      i,
			Source:     doc.Source,
			Contents:   text,
			Vector:     vectors[i],
			Metadata:   mergeMetadata(doc.Metadata, opts.Metadata),
		}
	}

	added, err := p.collection.AddChunks(ctx, chunks...)
	if err != nil {
		return nil, err
	}

	p.logger.Info("ingested document",
		"source", doc.Source,
		"document", docID.String(),
		"chunks", len(added),
		"collection", p.collection.Name())
	return added, nil
}

func mergeMetadata(layers ...map[string]string) map[string]string {
	var merged map[string]string
	for _, m := range layers {
		if len(m) == 0 {
			continue
		}
		if merged == nil {
			merged = make(map[string]string, len(m))
		}
		maps.Copy(merged, m)
	}
	return merged
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
