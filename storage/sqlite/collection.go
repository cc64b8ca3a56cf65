package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/ragkit/core"
	"github.com/poiesic/ragkit/storage"
)

const chunkColumns = `id, document_id, idx, source, contents, embedding, metadata, inserted_at, updated_at`

// Collection implements storage.Collection for SQLite.
type Collection struct {
	db     *sql.DB
	name   string
	logger *slog.Logger
}

var _ storage.Collection = (*Collection)(nil)

// Name returns the collection name.
func (c *Collection) Name() string {
	return c.name
}

// Close releases resources. The database handle belongs to the Store.
func (c *Collection) Close() error {
	return nil
}

// AddChunks inserts new chunks in one transaction.
func (c *Collection) AddChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	var now time.Time
	err := withTx(ctx, c.db, func(tx *sql.Tx) error {
		dim, err := c.dimension(ctx, tx)
		if err != nil {
			return err
		}

		now = time.Now().UTC().Truncate(time.Microsecond)
		for _, chunk := range chunks {
			if err := core.ValidateChunk(chunk); err != nil {
				return err
			}

			var exists int
			err := tx.QueryRowContext(ctx,
				`SELECT 1 FROM chunks WHERE collection = ? AND id = ?`, c.name, chunk.Id).Scan(&exists)
			if err == nil {
				return fmt.Errorf("%w: chunk %q", storage.ErrDuplicateKey, chunk.Id)
			}
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}

			if len(chunk.Vector) > 0 {
				if dim == 0 {
					dim = len(chunk.Vector)
				} else if dim != len(chunk.Vector) {
					return fmt.Errorf("%w: got %d, collection %q has %d",
						storage.ErrDimensionMismatch, len(chunk.Vector), c.name, dim)
				}
			}

			stored := *chunk
			stored.InsertedAt, stored.UpdatedAt = now, now
			if err := c.insert(ctx, tx, &stored); err != nil {
				return err
			}
		}

		return c.touch(ctx, tx, dim, now)
	})
	if err != nil {
		return nil, err
	}

	for _, chunk := range chunks {
		chunk.InsertedAt, chunk.UpdatedAt = now, now
	}

	c.logger.Debug("added chunks", "collection", c.name, "count", len(chunks))
	return chunks, nil
}

// UpdateChunks replaces existing chunks, keeping their original InsertedAt.
func (c *Collection) UpdateChunks(ctx context.Context, chunks ...*core.Chunk) ([]*core.Chunk, error) {
	var now time.Time
	inserted := make([]time.Time, len(chunks))
	err := withTx(ctx, c.db, func(tx *sql.Tx) error {
		dim, err := c.dimension(ctx, tx)
		if err != nil {
			return err
		}

		now = time.Now().UTC().Truncate(time.Microsecond)
		for i, chunk := range chunks {
			var insertedAt int64
			err := tx.QueryRowContext(ctx,
				`SELECT inserted_at FROM chunks WHERE collection = ? AND id = ?`, c.name, chunk.Id).Scan(&insertedAt)
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("%w: chunk %q", storage.ErrNotFound, chunk.Id)
			}
			if err != nil {
				return err
			}
			if len(chunk.Vector) > 0 {
				dim = len(chunk.Vector)
			}

			inserted[i] = time.UnixMicro(insertedAt).UTC()
			_, err = tx.ExecContext(ctx,
				`UPDATE chunks SET document_id = ?, idx = ?, source = ?, contents = ?, embedding = ?,
				 metadata = ?, updated_at = ? WHERE collection = ? AND id = ?`,
				int64(chunk.DocumentId), chunk.Index, chunk.Source, chunk.Contents,
				encodeEmbedding(chunk.Vector), encodeMetadata(chunk.Metadata),
				now.UnixMicro(), c.name, chunk.Id)
			if err != nil {
				return err
			}
		}

		return c.touch(ctx, tx, dim, now)
	})
	if err != nil {
		return nil, err
	}

	for i, chunk := range chunks {
		chunk.InsertedAt, chunk.UpdatedAt = inserted[i], now
	}
	return chunks, nil
}

// DeleteChunks removes chunks by id.
func (c *Collection) DeleteChunks(ctx context.Context, ids ...string) error {
	return withTx(ctx, c.db, func(tx *sql.Tx) error {
		for _, id := range ids {
			res, err := tx.ExecContext(ctx, `DELETE FROM chunks WHERE collection = ? AND id = ?`, c.name, id)
			if err != nil {
				return err
			}
			if n, _ := res.RowsAffected(); n == 0 {
				return fmt.Errorf("%w: chunk %q", storage.ErrNotFound, id)
			}
		}
		return nil
	})
}

// GetChunk retrieves a single chunk by id.
func (c *Collection) GetChunk(ctx context.Context, id string) (*core.Chunk, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE collection = ? AND id = ?`, c.name, id)
	chunk, err := scanChunk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return chunk, err
}

// GetChunks retrieves multiple chunks by id, skipping missing ones.
func (c *Collection) GetChunks(ctx context.Context, ids ...string) ([]*core.Chunk, error) {
	var result []*core.Chunk
	for _, id := range ids {
		chunk, err := c.GetChunk(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		result = append(result, chunk)
	}
	return result, nil
}

// Count returns the number of chunks in the collection.
func (c *Collection) Count(ctx context.Context) (int, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM chunks WHERE collection = ?`, c.name).Scan(&count)
	return count, err
}

// ForEach pages through the collection ordered by id. Each page is fully
// read before fn runs so fn may write to the collection.
func (c *Collection) ForEach(ctx context.Context, batchSize int, fn func([]*core.Chunk) error) error {
	if batchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive", storage.ErrInvalidQuery)
	}

	after := ""
	for {
		batch, err := c.query(ctx,
			`SELECT `+chunkColumns+` FROM chunks WHERE collection = ? AND id > ? ORDER BY id LIMIT ?`,
			c.name, after, batchSize)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			return nil
		}
		if err := fn(batch); err != nil {
			return err
		}
		if len(batch) < batchSize {
			return nil
		}
		after = batch[len(batch)-1].Id
	}
}

// Query loads every embedded chunk and ranks it by cosine similarity.
func (c *Collection) Query(ctx context.Context, vector []float32, n int, minScore float32) ([]*core.SearchResult, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%w: n must be positive, got %d", storage.ErrInvalidQuery, n)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: empty query vector", storage.ErrInvalidQuery)
	}

	dim, err := c.dimension(ctx, c.db)
	if err != nil {
		return nil, err
	}
	if dim != 0 && dim != len(vector) {
		return nil, fmt.Errorf("%w: query has %d dimensions, collection has %d",
			storage.ErrDimensionMismatch, len(vector), dim)
	}

	chunks, err := c.query(ctx,
		`SELECT `+chunkColumns+` FROM chunks WHERE collection = ? AND embedding IS NOT NULL`, c.name)
	if err != nil {
		return nil, err
	}

	results := make([]*core.SearchResult, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.Vector) != len(vector) {
			continue
		}
		score := storage.CosineSimilarity(vector, chunk.Vector)
		if score >= minScore {
			results = append(results, &core.SearchResult{Chunk: chunk, Score: score})
		}
	}
	return storage.RankResults(results, n), nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// dimension reads the collection row, failing if the collection was dropped.
func (c *Collection) dimension(ctx context.Context, q queryer) (int, error) {
	var dim int
	err := q.QueryRowContext(ctx, `SELECT dimension FROM collections WHERE name = ?`, c.name).Scan(&dim)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("%w: collection %q", storage.ErrNotFound, c.name)
	}
	return dim, err
}

func (c *Collection) touch(ctx context.Context, tx *sql.Tx, dim int, now time.Time) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE collections SET dimension = ?, updated_at = ? WHERE name = ?`, dim, now.UnixMicro(), c.name)
	return err
}

func (c *Collection) insert(ctx context.Context, tx *sql.Tx, chunk *core.Chunk) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO chunks(collection, `+chunkColumns+`) VALUES(?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.name, chunk.Id, int64(chunk.DocumentId), chunk.Index, chunk.Source, chunk.Contents,
		encodeEmbedding(chunk.Vector), encodeMetadata(chunk.Metadata),
		chunk.InsertedAt.UnixMicro(), chunk.UpdatedAt.UnixMicro())
	return err
}

func (c *Collection) query(ctx context.Context, query string, args ...any) ([]*core.Chunk, error) {
	rows, err := c.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*core.Chunk
	for rows.Next() {
		chunk, err := scanChunk(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, chunk)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanChunk(row scanner) (*core.Chunk, error) {
	var (
		chunk             core.Chunk
		documentID        int64
		embedding, meta   []byte
		inserted, updated int64
	)
	err := row.Scan(&chunk.Id, &documentID, &chunk.Index, &chunk.Source, &chunk.Contents,
		&embedding, &meta, &inserted, &updated)
	if err != nil {
		return nil, err
	}

	chunk.DocumentId = core.ID(documentID)
	if chunk.Vector, err = decodeEmbedding(embedding); err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	if chunk.Metadata, err = decodeMetadata(meta); err != nil {
		return nil, err
	}
	chunk.InsertedAt = time.UnixMicro(inserted).UTC()
	chunk.UpdatedAt = time.UnixMicro(updated).UTC()
	return &chunk, nil
}

// encodeMetadata reuses the MUS map encoding of the key-value store.
func encodeMetadata(m map[string]string) []byte {
	if len(m) == 0 {
		return nil
	}
	buf := make([]byte, storage.MetadataMUS.Size(m))
	storage.MetadataMUS.Marshal(m, buf)
	return buf
}

func decodeMetadata(b []byte) (map[string]string, error) {
	if len(b) == 0 {
		return nil, nil
	}
	m, _, err := storage.MetadataMUS.Unmarshal(b)
	if err != nil {
		return nil, fmt.Errorf("%w: metadata: %w", storage.ErrSerializationFailed, err)
	}
	return m, nil
}
