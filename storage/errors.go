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


package storage

import "errors"

// Errors shared by every backend. Backends wrap them with the offending
// chunk id or collection name.
var (
	ErrNotFound     = errors.New("not found")
	ErrDuplicateKey = errors.New("chunk id already exists")

	// ErrStorageClosed is returned by operations on a closed Store.
	ErrStorageClosed = errors.New("store is closed")

	// ErrInvalidQuery covers bad result counts, empty query vectors and
	// non-positive batch sizes.
	ErrInvalidQuery = errors.New("invalid query")

	// ErrDimensionMismatch is returned when a vector's length differs from
	// the dimension the collection was created with.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrSerializationFailed and ErrTruncatedData come from decoding stored
	// chunk and collection records.
	ErrSerializationFailed = errors.New("record encoding failed")
	ErrTruncatedData       = errors.New("record truncated")
)
