package badger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ragkit/core"
	"github.com/poiesic/ragkit/storage"
)

// Collection implements storage.Collection for BadgerDB.
type Collection struct {
	backend *Backend
	name    string
}

var _ storage.Collection = (*Collection)(nil)

func newCollection(backend *Backend, name string) *Collection {
	return &Collection{
		backend: backend,
		name:    name,
	}
}

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Close releases resources. Collection has no resources to release.
func (c *Collection) Close() error {
	return nil
}

// AddChunks stores new chunks in a single transaction. Timestamps are set on
// the caller's chunks only once the transaction has committed.
func (c *Collection) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	var now time.Time
	err := c.backend.Update(func(tx *badger.Txn) error {
		header, err := c.header(tx)
		if err != nil {
			return err
		}
		dim := header.Dimension

		now = time.Now().UTC().Truncate(time.Microsecond)
		seen := make(map[string]struct{}, len(chunks))
		for _, chunk := range chunks {
			if err := core.ValidateChunk(chunk); err != nil {
				return err
			}
			if _, dup := seen[chunk.Id]; dup {
				return fmt.Errorf("%w: chunk %q repeated in batch", storage.ErrDuplicateKey, chunk.Id)
			}
			seen[chunk.Id] = struct{}{}

			key := makeChunkKey(c.name, chunk.Id)
			if _, err := tx.Get(key); err == nil {
				return fmt.Errorf("%w: chunk %q", storage.ErrDuplicateKey, chunk.Id)
			} else if !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}

			if err := checkDimension(header, chunk.Vector); err != nil {
				return err
			}

			stored := *chunk
			stored.InsertedAt, stored.UpdatedAt = now, now
			if err := tx.Set(key, storage.MarshalChunk(&stored)); err != nil {
				return err
			}
		}

		return c.writeHeaderIfChanged(tx, header, dim, now)
	})
	if err != nil {
		return nil, err
	}

	for _, chunk := range chunks {
		chunk.InsertedAt, chunk.UpdatedAt = now, now
	}
	c.backend.logger.Debug("added chunks", "collection", c.name, "count", len(chunks))
	return chunks, nil
}

// UpdateChunks replaces existing chunks, keeping their original InsertedAt.
func (c *Collection) UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	var now time.Time
	inserted := make([]time.Time, len(chunks))
	err := c.backend.Update(func(tx *badger.Txn) error {
		header, err := c.header(tx)
		if err != nil {
			return err
		}
		dim := header.Dimension

		now = time.Now().UTC().Truncate(time.Microsecond)
		for i, chunk := range chunks {
			key := makeChunkKey(c.name, chunk.Id)
			old, err := readChunk(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return fmt.Errorf("%w: chunk %q", storage.ErrNotFound, chunk.Id)
			}
			// A model swap changes the dimension; the header follows it.
			if len(chunk.Vector) > 0 {
				header.Dimension = len(chunk.Vector)
			}

			inserted[i] = old.InsertedAt
			stored := *chunk
			stored.InsertedAt, stored.UpdatedAt = old.InsertedAt, now
			if err := tx.Set(key, storage.MarshalChunk(&stored)); err != nil {
				return err
			}
		}

		return c.writeHeaderIfChanged(tx, header, dim, now)
	})
	if err != nil {
		return nil, err
	}

	for i, chunk := range chunks {
		chunk.InsertedAt, chunk.UpdatedAt = inserted[i], now
	}
	return chunks, nil
}

// writeHeaderIfChanged persists the header only when the dimension moved.
// Chunk writes that leave the header alone never conflict with each other.
func (c *Collection) writeHeaderIfChanged(tx *badger.Txn, header *core.Collection, was int, now time.Time) error {
	if header.Dimension == was {
		return nil
	}
	header.UpdatedAt = now
	return tx.Set(makeCollectionKey(c.name), storage.MarshalCollection(header))
}

// DeleteChunks removes chunks by id.
func (c *Collection) DeleteChunks(ctx context.Context, ids ...string) error {
	return c.backend.Update(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeChunkKey(c.name, id)
			if _, err := tx.Get(key); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					return fmt.Errorf("%w: chunk %q", storage.ErrNotFound, id)
				}
				return err
			}
			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// GetChunk retrieves a single chunk by id.
func (c *Collection) GetChunk(ctx context.Context, id string) (*core.Chunk, error) {
	var result *core.Chunk
	err := c.backend.View(func(tx *badger.Txn) error {
		var err error
		result, err = readChunk(tx, makeChunkKey(c.name, id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	})
	return result, err
}

// GetChunks retrieves multiple chunks by id, skipping missing ones.
func (c *Collection) GetChunks(ctx context.Context, ids ...string) ([]*core.Chunk, error) {
	var result []*core.Chunk
	err := c.backend.View(func(tx *badger.Txn) error {
		for _, id := range ids {
			chunk, err := readChunk(tx, makeChunkKey(c.name, id))
			if err != nil {
				return err
			}
			if chunk != nil {
				result = append(result, chunk)
			}
		}
		return nil
	})
	return result, err
}

// Count returns the number of chunks in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	var count int
	err := c.backend.View(func(tx *badger.Txn) error {
		var err error
		count, err = countPrefix(tx, makeChunkPrefix(c.name))
		return err
	})
	return count, err
}

// ForEach pages through the collection in key order. Each page is read in
// its own transaction so fn may write to the collection.
func (c *Collection) ForEach(ctx context.Context, batchSize int, fn func([]*core.Chunk) error) error {
	if batchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", storage.ErrInvalidQuery)
	}

	prefix := makeChunkPrefix(c.name)
	start := prefix
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var (
			batch []*core.Chunk
			next  []byte
		)
		err := c.backend.View(func(tx *badger.Txn) error {
			opts := badger.DefaultIteratorOptions
			opts.Prefix = prefix
			iter := tx.NewIterator(opts)
			defer iter.Close()

			for iter.Seek(start); iter.ValidForPrefix(prefix); iter.Next() {
				item := iter.Item()
				if len(batch) == batchSize {
					next = item.KeyCopy(nil)
					return nil
				}
				chunk, err := unmarshalItem(item)
				if err != nil {
					return err
				}
				batch = append(batch, chunk)
			}
			return nil
		})
		if err != nil {
			return err
		}

		if len(batch) > 0 {
			if err := fn(batch); err != nil {
				return err
			}
		}
		if next == nil {
			return nil
		}
		start = next
	}
}

// Query scores every chunk against vector with cosine similarity.
func (c *Collection) Query(ctx context.Context, vector []float32, n int, minScore float32) ([]*core.SearchResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive, got %d", storage.ErrInvalidQuery, n)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", storage.ErrInvalidQuery)
	}

	var results []*core.SearchResult
	err := c.backend.View(func(tx *badger.Txn) error {
		header, err := c.header(tx)
		if err != nil {
			return err
		}
		if header.Dimension != 0 && header.Dimension != len(vector) {
			return fmt.Errorf("%w: query has %d dimensions, collection has %d",
				storage.ErrDimensionMismatch, len(vector), header.Dimension)
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkPrefix(c.name)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			chunk, err := unmarshalItem(iter.Item())
			if err != nil {
				return err
			}

			// Skip chunks without embeddings or from a previous model
			if len(chunk.Vector) != len(vector) {
				continue
			}

			score := storage.CosineSimilarity(vector, chunk.Vector)
			if score >= minScore {
				results = append(results, &core.SearchResult{
					Chunk: chunk,
					Score: score,
				})
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return storage.RankResults(results, n), nil
}

// header reads the collection header, failing if the collection was dropped.
func (c *Collection) header(tx *badger.Txn) (*core.Collection, error) {
	header, err := readCollection(tx, makeCollectionKey(c.name))
	if err != nil {
		return nil, err
	}
	if header == nil {
		return nil, fmt.Errorf("%w: collection %q", storage.ErrNotFound, c.name)
	}
	return header, nil
}

// checkDimension fixes the collection dimension on first use and enforces it afterwards.
func checkDimension(header *core.Collection, vector []float32) error {
	if len(vector) == 0 {
		return nil
	}
	if header.Dimension == 0 {
		header.Dimension = len(vector)
		return nil
	}
	if header.Dimension != len(vector) {
		return fmt.Errorf("%w: got %d, collection %q has %d",
			storage.ErrDimensionMismatch, len(vector), header.Name, header.Dimension)
	}
	return nil
}

// countPrefix counts keys under prefix without loading values.
func countPrefix(tx *badger.Txn, prefix []byte) (int, error) {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	opts.PrefetchValues = false
	iter := tx.NewIterator(opts)
	defer iter.Close()

	count := 0
	for iter.Rewind(); iter.Valid(); iter.Next() {
		count++
	}
	return count, nil
}

// readChunk reads a chunk from the transaction, returning nil if absent.
func readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return unmarshalItem(item)
}

func unmarshalItem(item *badger.Item) (*core.Chunk, error) {
	var chunk *core.Chunk
	err := item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	return chunk, err
}
