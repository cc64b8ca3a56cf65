// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package sqlite implements storage.Store on a single SQLite database file
// using the pure-Go modernc.org/sqlite driver. Embeddings are kept in BLOB
// columns and scored in process, the same way the Badger backend does.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/poiesic/ragkit/core"
	"github.com/poiesic/ragkit/storage"
	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

// MemoryDSN opens a private in-memory database.
const MemoryDSN = ":memory:"

var schema = []string{`
CREATE TABLE IF NOT EXISTS collections (
	name        TEXT PRIMARY KEY,
	dimension   INTEGER NOT NULL DEFAULT 0,
	inserted_at INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL
)`, `
CREATE TABLE IF NOT EXISTS chunks (
	collection  TEXT NOT NULL,
	id          TEXT NOT NULL,
	document_id INTEGER NOT NULL,
	idx         INTEGER NOT NULL,
	source      TEXT NOT NULL,
	contents    TEXT NOT NULL,
	embedding   BLOB,
	metadata    BLOB,
	inserted_at INTEGER NOT NULL,
	updated_at  INTEGER NOT NULL,
	PRIMARY KEY (collection, id)
)`}

// Store implements storage.Store for SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ storage.Store = (*Store)(nil)

// OpenStore opens (or creates) a SQLite database and ensures the schema exists.
// Pass MemoryDSN for an in-memory database. For file paths the parent
// directory is created if needed.
func OpenStore(dsn string) (storage.Store, error) {
	if dsn != MemoryDSN {
		if err := os.MkdirAll(filepath.Dir(dsn), 0755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases shared and serializes writers.
	db.SetMaxOpenConns(1)

	for _, stmt := range schema {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("creating schema: %w", err)
		}
	}

	return &Store{
		db:     db,
		logger: slog.Default().With("component", "sqlite"),
	}, nil
}

// Collection returns the named collection, creating its row if needed.
func (s *Store) Collection(ctx context.Context, name string) (storage.Collection, error) {
	if err := core.ValidateCollectionName(name); err != nil {
		return nil, err
	}

	now := time.Now().UTC().UnixMicro()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO collections(name, dimension, inserted_at, updated_at) VALUES(?, 0, ?, ?)
		 ON CONFLICT(name) DO NOTHING`, name, now, now)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("opened collection", "collection", name)
	return &Collection{db: s.db, name: name, logger: s.logger}, nil
}

// Collections lists the headers of all collections, ordered by name.
func (s *Store) Collections(ctx context.Context) ([]*core.Collection, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT name, dimension, inserted_at, updated_at FROM collections ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*core.Collection
	for rows.Next() {
		var header core.Collection
		var inserted, updated int64
		if err := rows.Scan(&header.Name, &header.Dimension, &inserted, &updated); err != nil {
			return nil, err
		}
		header.InsertedAt = time.UnixMicro(inserted).UTC()
		header.UpdatedAt = time.UnixMicro(updated).UTC()
		out = append(out, &header)
	}
	return out, rows.Err()
}

// DropCollection removes a collection and all of its chunks.
func (s *Store) DropCollection(ctx context.Context, name string) error {
	return withTx(ctx, s.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM collections WHERE name = ?`, name)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: collection %q", storage.ErrNotFound, name)
		}
		_, err = tx.ExecContext(ctx, `DELETE FROM chunks WHERE collection = ?`, name)
		return err
	})
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// withTx runs fn in a transaction, committing when fn returns nil.
func withTx(ctx context.Context, db *sql.DB, fn func(tx *sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}
