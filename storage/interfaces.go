package storage

import (
	"context"

	"github.com/poiesic/ragkit/core"
)

// Collection stores the chunks of one named vector collection.
// Implementations must be thread-safe and support concurrent access.
type Collection interface {
	// Name returns the collection name.
	Name() string

	// AddChunks stores new chunks.
	// Returns ErrDuplicateKey if any chunk id already exists (nothing is written).
	// Returns ErrDimensionMismatch if a vector length differs from the collection's.
	// Sets InsertedAt and UpdatedAt once the write has committed; on error the
	// chunks are left as passed.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// UpdateChunks replaces existing chunks.
	// Updates the UpdatedAt timestamp once the write has committed.
	// Returns ErrNotFound if any chunk doesn't exist.
	UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error)

	// DeleteChunks removes chunks by id.
	// Returns ErrNotFound if any chunk doesn't exist.
	DeleteChunks(ctx context.Context, ids ...string) error

	// GetChunk retrieves a single chunk by id.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id string) (*core.Chunk, error)

	// GetChunks retrieves multiple chunks by id.
	// Returns only the chunks that exist (no error for missing chunks).
	GetChunks(ctx context.Context, ids ...string) ([]*core.Chunk, error)

	// Count returns the number of stored chunks.
	Count(ctx context.Context) (int, error)

	// ForEach calls fn with batches of at most batchSize chunks, ordered by id.
	// Iteration stops at the first error returned by fn.
	ForEach(ctx context.Context, batchSize int, fn func([]*core.Chunk) error) error

	// Query returns up to n chunks most similar to vector, highest score first.
	// Chunks scoring below minScore are skipped.
	Query(ctx context.Context, vector []float32, n int, minScore float32) ([]*core.SearchResult, error)

	// Close releases resources held by the collection handle.
	Close() error
}

// Store manages named collections within one database.
type Store interface {
	// Collection returns the named collection, creating it if it doesn't exist.
	Collection(ctx context.Context, name string) (Collection, error)

	// Collections lists the headers of all collections.
	Collections(ctx context.Context) ([]*core.Collection, error)

	// DropCollection removes a collection and all of its chunks.
	// Returns ErrNotFound if the collection doesn't exist.
	DropCollection(ctx context.Context, name string) error

	// Close closes the storage backend and releases resources.
	Close() error
}
