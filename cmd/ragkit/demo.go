package main

import (
	"context"
	"fmt"
	"io"

	"github.com/poiesic/ragkit"
	"github.com/poiesic/ragkit/ai"
	"github.com/poiesic/ragkit/answer"
	"github.com/poiesic/ragkit/chunk"
	"github.com/poiesic/ragkit/core"
	"github.com/poiesic/ragkit/ingestion"
	"github.com/urfave/cli/v2"
)

const (
	demoDocument = "RAG stands for Retrieval-Augmented Generation. You retrieve relevant chunks " +
		"from a vector store, then pass them as context to an LLM. The LLM generates an answer " +
		"grounded in your documents."
	demoQuery = "What is RAG?"
)

type demoSettings struct {
	query      string
	results    int
	backend    string
	provider   string
	collection string
	config     *ai.Config
	chunker    chunk.Chunker
}

func defaultDemoSettings() demoSettings {
	return demoSettings{
		query:      demoQuery,
		results:    answer.DefaultResults,
		backend:    ragkit.BackendBadger,
		provider:   ragkit.ProviderMock,
		collection: ragkit.DefaultCollection,
		config:     ai.DefaultConfig(),
		chunker:    chunk.FixedSize{Size: chunk.DefaultSize},
	}
}

func demoCommand(c *cli.Context) error {
	chunker, err := newChunker(c)
	if err != nil {
		return err
	}

	return runDemo(c.Context, c.App.Writer, demoSettings{
		query:      c.String("query"),
		results:    c.Int("results"),
		backend:    c.String("store"),
		provider:   c.String("provider"),
		collection: c.String("collection"),
		config:     aiConfig(c),
		chunker:    chunker,
	})
}

// runDemo indexes demoDocument in a throwaway in-memory collection and
// prints the query, the retrieved context and the answer.
func runDemo(ctx context.Context, w io.Writer, s demoSettings) error {
	db, err := ragkit.NewDatabase("",
		ragkit.WithInMemory(true),
		ragkit.WithBackend(s.backend),
		ragkit.WithCollection(s.collection),
		ragkit.WithProviderKind(s.provider),
		ragkit.WithAIConfig(s.config),
	)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(ingestion.WithChunker(s.chunker))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	if _, err := pipeline.Ingest(ctx, core.NewDocument("", demoDocument), nil); err != nil {
		return fmt.Errorf("failed to index document: %w", err)
	}

	responder, err := db.NewResponder(answer.WithResults(s.results))
	if err != nil {
		return err
	}

	ans, err := responder.Ask(ctx, s.query)
	if err != nil {
		return err
	}
	return answer.Format(w, ans)
}
