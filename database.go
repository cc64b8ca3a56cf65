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


package ragkit

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/poiesic/ragkit/ai"
	"github.com/poiesic/ragkit/answer"
	"github.com/poiesic/ragkit/ingestion"
	"github.com/poiesic/ragkit/reembed"
	"github.com/poiesic/ragkit/search"
	"github.com/poiesic/ragkit/storage"
	"github.com/poiesic/ragkit/storage/badger"
	"github.com/poiesic/ragkit/storage/sqlite"
)

// DefaultCollection is the collection opened when none is configured.
const DefaultCollection = "rag05_example"

// Storage backends accepted by WithBackend.
const (
	BackendBadger = "badger"
	BackendSQLite = "sqlite"
)

// sqliteFile is the database file created inside the path given to
// NewDatabase when the SQLite backend is selected.
const sqliteFile = "ragkit.db"

// Database bundles a vector store, one of its collections and the AI
// provider that embeds and answers over it.
type Database struct {
	store        storage.Store
	collection   storage.Collection
	provider     ai.Provider
	ownsProvider bool
	logger       *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig     *ai.Config
	provider     ai.Provider
	providerKind string
	collection   string
	backend      string
	inMemory     bool
}

// WithAIConfig sets the configuration used to create the AI provider.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		o.aiConfig = config
	}
}

// WithProvider uses an existing provider. The Database does not close it.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithProviderKind selects the provider created by OpenProvider.
func WithProviderKind(kind string) DatabaseOption {
	return func(o *databaseOptions) {
		o.providerKind = kind
	}
}

// WithCollection sets the collection name.
func WithCollection(name string) DatabaseOption {
	return func(o *databaseOptions) {
		o.collection = name
	}
}

// WithBackend selects the storage backend (BackendBadger or BackendSQLite).
func WithBackend(backend string) DatabaseOption {
	return func(o *databaseOptions) {
		o.backend = backend
	}
}

// WithInMemory keeps all data in memory; the path is ignored.
func WithInMemory(inMemory bool) DatabaseOption {
	return func(o *databaseOptions) {
		o.inMemory = inMemory
	}
}

// NewDatabase opens the store at path, gets or creates the configured
// collection and sets up the AI provider.
func NewDatabase(path string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:     ai.DefaultConfig(),
		providerKind: ProviderMock,
		collection:   DefaultCollection,
		backend:      BackendBadger,
	}
	for _, opt := range opts {
		opt(options)
	}

	logger := slog.Default().With("component", "database")

	store, err := openStore(path, options)
	if err != nil {
		return nil, err
	}

	collection, err := store.Collection(context.Background(), options.collection)
	if err != nil {
		store.Close()
		return nil, err
	}

	provider, ownsProvider := options.provider, false
	if provider == nil {
		provider, err = OpenProvider(options.providerKind, options.aiConfig)
		if err != nil {
			store.Close()
			return nil, err
		}
		ownsProvider = true
	}

	logger.Debug("database opened",
		"path", path,
		"backend", options.backend,
		"in_memory", options.inMemory,
		"collection", options.collection)

	return &Database{
		store:        store,
		collection:   collection,
		provider:     provider,
		ownsProvider: ownsProvider,
		logger:       logger,
	}, nil
}

// OpenStore opens only the storage backend at path. It creates no
// collection and sets up no provider, so listing an existing store leaves it
// unchanged. Only WithBackend and WithInMemory apply.
func OpenStore(path string, opts ...DatabaseOption) (storage.Store, error) {
	options := &databaseOptions{backend: BackendBadger}
	for _, opt := range opts {
		opt(options)
	}
	return openStore(path, options)
}

func openStore(path string, options *databaseOptions) (storage.Store, error) {
	if path == "" && !options.inMemory {
		return nil, ErrPathRequired
	}

	switch options.backend {
	case "", BackendBadger:
		return badger.OpenStore(path, options.inMemory)
	case BackendSQLite:
		if options.inMemory {
			return sqlite.OpenStore(sqlite.MemoryDSN)
		}
		return sqlite.OpenStore(filepath.Join(path, sqliteFile))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, options.backend)
	}
}

// Close releases the provider (when the Database created it) and the store.
func (db *Database) Close() error {
	if db.ownsProvider {
		if err := db.provider.Close(); err != nil {
			db.logger.Error("error closing AI provider", "err", err)
		}
	}

	if err := db.collection.Close(); err != nil {
		db.logger.Error("error closing collection", "err", err)
		return err
	}

	if err := db.store.Close(); err != nil {
		db.logger.Error("error closing store", "err", err)
		return err
	}
	return nil
}

func (db *Database) Store() storage.Store {
	return db.store
}

func (db *Database) Collection() storage.Collection {
	return db.collection
}

func (db *Database) Provider() ai.Provider {
	return db.provider
}

func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.collection, db.provider.Embedder(), opts...)
}

func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.collection, db.provider.Embedder(), opts...)
}

// NewResponder builds a responder over a default searcher.
func (db *Database) NewResponder(opts ...answer.Option) (*answer.Responder, error) {
	searcher, err := db.NewSearcher()
	if err != nil {
		return nil, err
	}
	return answer.NewResponder(searcher, db.provider.Generator(), opts...)
}

// NewReembedder re-embeds the collection with embedder, or with the
// provider's embedder when embedder is nil.
func (db *Database) NewReembedder(embedder ai.Embedder, config *reembed.Config, progress io.Writer) *reembed.Reembedder {
	if embedder == nil {
		embedder = db.provider.Embedder()
	}
	return reembed.NewReembedder(db.collection, embedder, config, progress)
}
