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


package chunk

import (
	"fmt"
	"strings"
)

// DefaultSize is the window length, in runes, used when no size is given.
const DefaultSize = 150

// Strategy names accepted by New.
const (
	StrategyFixed     = "fixed"
	StrategyRecursive = "recursive"
	StrategyMarkdown  = "markdown"
)

// Chunker splits text into chunks.
type Chunker interface {
	Split(text string) ([]string, error)
}

// Chunk cuts text into consecutive windows of size runes. Each window is
// trimmed of surrounding whitespace and windows that end up empty are
// dropped. A size <= 0 uses DefaultSize.
func Chunk(text string, size int) []string {
	if size <= 0 {
		size = DefaultSize
	}

	runes := []rune(text)
	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := min(start+size, len(runes))
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece == "" {
			continue
		}
		chunks = append(chunks, piece)
	}
	return chunks
}

// FixedSize is a Chunker that applies Chunk with a fixed window.
type FixedSize struct {
	Size int
}

var _ Chunker = FixedSize{}

// Split implements Chunker. It never fails.
func (f FixedSize) Split(text string) ([]string, error) {
	return Chunk(text, f.Size), nil
}

// New returns the Chunker registered under strategy. An empty strategy
// selects fixed-size chunking. overlap is ignored by the fixed strategy.
func New(strategy string, size, overlap int) (Chunker, error) {
	if size <= 0 {
		size = DefaultSize
	}

	switch strategy {
	case "", StrategyFixed:
		return FixedSize{Size: size}, nil
	case StrategyRecursive:
		r, err := NewRecursive(size, overlap)
		if err != nil {
			return nil, err
		}
		return r, nil
	case StrategyMarkdown:
		m, err := NewMarkdown(size, overlap)
		if err != nil {
			return nil, err
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, strategy)
	}
}
