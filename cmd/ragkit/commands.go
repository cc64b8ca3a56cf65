package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/poiesic/ragkit"
	"github.com/poiesic/ragkit/answer"
	"github.com/poiesic/ragkit/chunk"
	"github.com/poiesic/ragkit/core"
	"github.com/poiesic/ragkit/ingestion"
	"github.com/poiesic/ragkit/loader"
	"github.com/poiesic/ragkit/reembed"
	"github.com/poiesic/ragkit/search"
	"github.com/poiesic/ragkit/storage"
	"github.com/urfave/cli/v2"
)

func ingestCommand(c *cli.Context) error {
	ctx := c.Context

	if c.NArg() == 0 {
		return fmt.Errorf("at least one file is required")
	}

	chunker, err := newChunker(c)
	if err != nil {
		return err
	}
	// Without an explicit --chunker, Markdown files get the Markdown chunker.
	var markdown chunk.Chunker
	if !c.IsSet("chunker") {
		markdown, err = chunk.New(chunk.StrategyMarkdown, c.Int("chunk-size"), c.Int("chunk-overlap"))
		if err != nil {
			return fmt.Errorf("invalid chunking options: %w", err)
		}
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	pipeline, err := db.NewIngestionPipeline(ingestion.WithChunker(chunker))
	if err != nil {
		return err
	}
	defer pipeline.Release()

	for _, path := range c.Args().Slice() {
		doc, err := loader.Load(path)
		if err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}

		// Chunk ids are derived from the document hash, so a document that
		// is already stored still has its first chunk.
		prefix := doc.Id.String()
		_, err = db.Collection().GetChunk(ctx, core.ChunkID(prefix, 0))
		if err == nil {
			fmt.Fprintf(c.App.Writer, "%s: already ingested\n", doc.Source)
			continue
		}
		if !errors.Is(err, storage.ErrNotFound) {
			return err
		}

		opts := &ingestion.IngestOptions{IDPrefix: prefix}
		if markdown != nil && doc.Metadata[loader.MetaFormat] == loader.FormatMarkdown {
			opts.Chunker = markdown
		}
		chunks, err := pipeline.Ingest(ctx, doc, opts)
		if err != nil {
			return fmt.Errorf("failed to ingest %s: %w", path, err)
		}
		fmt.Fprintf(c.App.Writer, "%s: %d chunks\n", doc.Source, len(chunks))
	}

	return nil
}

func queryCommand(c *cli.Context) error {
	query := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("query is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher(
		search.WithMinScore(float32(c.Float64("min-score"))),
		search.WithKeywordBoost(float32(c.Float64("keyword-boost"))),
	)
	if err != nil {
		return err
	}

	results, err := searcher.Retrieve(c.Context, query, c.Int("results"))
	if err != nil {
		return err
	}

	for i, result := range results {
		source := result.Chunk.Source
		if source == "" {
			source = "-"
		}
		fmt.Fprintf(c.App.Writer, "%d. [%.4f] %s (%s)\n   %s\n",
			i+1, result.Score, result.Chunk.Id, source, answer.Truncate(result.Chunk.Contents, answer.ContextPreview))
	}
	return nil
}

func askCommand(c *cli.Context) error {
	question := strings.Join(c.Args().Slice(), " ")
	if strings.TrimSpace(question) == "" {
		return fmt.Errorf("question is required")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	responder, err := db.NewResponder(answer.WithResults(c.Int("results")))
	if err != nil {
		return err
	}

	ans, err := responder.Ask(c.Context, question)
	if err != nil {
		return err
	}
	return answer.Format(c.App.Writer, ans)
}

func collectionsCommand(c *cli.Context) error {
	store, err := ragkit.OpenStore(c.String("db"), ragkit.WithBackend(c.String("store")))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	headers, err := store.Collections(c.Context)
	if err != nil {
		return err
	}

	for _, header := range headers {
		collection, err := store.Collection(c.Context, header.Name)
		if err != nil {
			return err
		}
		count, err := collection.Count(c.Context)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.Writer, "%s\t%d chunks\t%d dimensions\n", header.Name, count, header.Dimension)
	}
	return nil
}

func reembedCommand(c *cli.Context) error {
	config := &reembed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}

	if config.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if config.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if config.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	progress := c.App.ErrWriter
	fmt.Fprintf(progress, "Database: %s\n", c.String("db"))
	fmt.Fprintf(progress, "Collection: %s\n", db.Collection().Name())
	fmt.Fprintf(progress, "Provider: %s\n", c.String("provider"))
	fmt.Fprintf(progress, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(progress)

	if err := db.NewReembedder(nil, config, progress).Run(c.Context); err != nil {
		return fmt.Errorf("reembedding failed: %w", err)
	}
	return nil
}
