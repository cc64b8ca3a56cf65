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


// Package storage provides the storage abstraction layer for ragkit.
//
// This package defines the Collection and Store interfaces that decouple
// vector storage from the ingestion and retrieval logic. Different backends
// (BadgerDB, SQLite) can be used interchangeably.
//
// # Constructor Return Type Pattern
//
// Public constructors return interfaces to keep callers independent of the
// backend in use:
//
//	store, err := badger.NewStore(backend)  // returns storage.Store
//
// Internal constructors may return concrete types since they're only used
// within the implementation package.
//
// # Architecture
//
//   - Store: named collections within one database (get-or-create semantics)
//   - Collection: chunk CRUD plus brute-force cosine similarity Query
//   - MUS serializers: binary encoding of chunks and collection headers
//
// # Usage
//
//	backend, err := badger.OpenBackend("/path/to/db", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	store := badger.NewStore(backend)
//	defer store.Close()
//
//	coll, err := store.Collection(ctx, "docs")
//	results, err := coll.Query(ctx, queryVector, 2, -1)
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
