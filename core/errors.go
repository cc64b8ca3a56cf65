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


package core

import "errors"

// Validation failures. ValidateDocument and ValidateChunk wrap the specific
// cause (ErrEmptyContent, ErrEmptyChunkID) with the general one.
var (
	ErrInvalidDocument = errors.New("invalid document")
	ErrInvalidChunk    = errors.New("invalid chunk")

	ErrEmptyContent = errors.New("empty content")
	ErrEmptyChunkID = errors.New("empty chunk id")
	ErrEmptyQuery   = errors.New("empty query")

	// ErrInvalidCollectionName rejects names that are empty or contain ':',
	// which separates key segments in the Badger backend.
	ErrInvalidCollectionName = errors.New("invalid collection name")
)
