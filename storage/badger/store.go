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


package badger

import (
	"context"
	"errors"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/ragkit/core"
	"github.com/poiesic/ragkit/storage"
)

// Store implements storage.Store for BadgerDB.
type Store struct {
	backend *Backend
	owned   bool
}

var _ storage.Store = (*Store)(nil)

// NewStore creates a store on an already opened backend.
// The caller keeps ownership of the backend and must close it.
func NewStore(backend *Backend) storage.Store {
	return &Store{backend: backend}
}

// OpenStore opens a backend at filePath and returns a store that closes it on Close.
func OpenStore(filePath string, inMemory bool) (storage.Store, error) {
	backend, err := OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}
	return &Store{backend: backend, owned: true}, nil
}

// Collection returns the named collection, creating its header if needed.
func (s *Store) Collection(ctx context.Context, name string) (storage.Collection, error) {
	if err := core.ValidateCollectionName(name); err != nil {
		return nil, err
	}

	err := s.backend.Update(func(tx *badger.Txn) error {
		key := makeCollectionKey(name)
		header, err := readCollection(tx, key)
		if err != nil {
			return err
		}
		if header != nil {
			return nil
		}

		now := time.Now().UTC().Truncate(time.Microsecond)
		header = &core.Collection{
			Name:       name,
			InsertedAt: now,
			UpdatedAt:  now,
		}
		return tx.Set(key, storage.MarshalCollection(header))
	})
	// Another writer created the header concurrently.
	if errors.Is(err, badger.ErrConflict) {
		err = nil
	}
	if err != nil {
		return nil, err
	}

	s.backend.logger.Debug("opened collection", "collection", name)
	return newCollection(s.backend, name), nil
}

// Collections lists the headers of all collections, ordered by name.
func (s *Store) Collections(ctx context.Context) ([]*core.Collection, error) {
	var results []*core.Collection
	err := s.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeCollectionScanPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var header *core.Collection
			err := iter.Item().Value(func(val []byte) error {
				var err error
				header, err = storage.UnmarshalCollection(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, header)
		}
		return nil
	})
	return results, err
}

// DropCollection removes a collection header and all of its chunks.
func (s *Store) DropCollection(ctx context.Context, name string) error {
	if err := core.ValidateCollectionName(name); err != nil {
		return err
	}

	err := s.backend.Update(func(tx *badger.Txn) error {
		key := makeCollectionKey(name)
		header, err := readCollection(tx, key)
		if err != nil {
			return err
		}
		if header == nil {
			return storage.ErrNotFound
		}
		return tx.Delete(key)
	})
	if err != nil {
		return err
	}

	s.backend.logger.Info("dropping collection", "collection", name)
	return s.backend.DropPrefix(makeChunkPrefix(name))
}

// Close closes the backend if the store opened it.
func (s *Store) Close() error {
	if !s.owned {
		return nil
	}
	return s.backend.Close()
}

// readCollection reads a collection header, returning nil if absent.
func readCollection(tx *badger.Txn, key []byte) (*core.Collection, error) {
	item, err := tx.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var header *core.Collection
	err = item.Value(func(val []byte) error {
		var err error
		header, err = storage.UnmarshalCollection(val)
		return err
	})
	return header, err
}
