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


package answer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/ragkit/ai"
	"github.com/poiesic/ragkit/core"
	"github.com/poiesic/ragkit/search"
)

// DefaultResults is the number of chunks retrieved per question.
const DefaultResults = 2

// Retriever returns the chunks most relevant to a query.
// *search.Searcher implements it.
type Retriever interface {
	Retrieve(ctx context.Context, query string, n int) ([]*core.SearchResult, error)
}

var _ Retriever = (*search.Searcher)(nil)

// Responder answers questions from the chunks a Retriever finds.
type Responder struct {
	retriever Retriever
	generator ai.Generator
	results   int
	logger    *slog.Logger
}

// Option configures a Responder.
type Option func(*Responder) error

// WithResults sets how many chunks are retrieved as context.
// Default is DefaultResults.
func WithResults(n int) Option {
	return func(r *Responder) error {
		if n < 1 {
			return fmt.Errorf("%w: got %d", search.ErrInvalidResultCount, n)
		}
		r.results = n
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Responder) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewResponder creates a Responder.
func NewResponder(retriever Retriever, generator ai.Generator, opts ...Option) (*Responder, error) {
	if retriever == nil {
		return nil, ErrSearcherRequired
	}
	if generator == nil {
		return nil, ErrGeneratorRequired
	}

	r := &Responder{
		retriever: retriever,
		generator: generator,
		results:   DefaultResults,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Ask retrieves context for query and generates an answer from it.
// Retrieval returning no chunks is not an error; the generator is called
// with an empty context.
func (r *Responder) Ask(ctx context.Context, query string) (*core.Answer, error) {
	results, err := r.retriever.Retrieve(ctx, query, r.results)
	if err != nil {
		return nil, err
	}

	contextText := search.JoinContext(results)
	r.logger.Debug("retrieved context", "query", query, "chunks", len(results), "length", len(contextText))

	text, err := r.generator.Generate(ctx, query, contextText)
	if err != nil {
		r.logger.Error("error generating answer", "query", query, "err", err)
		return nil, err
	}

	return &core.Answer{
		Query:   query,
		Context: contextText,
		Text:    text,
		Sources: results,
	}, nil
}
