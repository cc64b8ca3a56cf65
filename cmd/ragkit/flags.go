package main

import (
	"fmt"
	"time"

	"github.com/poiesic/ragkit"
	"github.com/poiesic/ragkit/ai"
	"github.com/poiesic/ragkit/chunk"
	"github.com/urfave/cli/v2"
)

const defaultRetryDelay = 1 * time.Second

func concat(groups ...[]cli.Flag) []cli.Flag {
	var flags []cli.Flag
	for _, g := range groups {
		flags = append(flags, g...)
	}
	return flags
}

// storeFlags selects the database. The demo runs in memory, so it has no --db.
func storeFlags(withPath bool) []cli.Flag {
	var flags []cli.Flag
	if withPath {
		flags = append(flags, &cli.StringFlag{
			Name:     "db",
			Aliases:  []string{"d"},
			Usage:    "Path to the database directory",
			Required: true,
		})
	}
	return append(flags,
		&cli.StringFlag{
			Name:    "collection",
			Aliases: []string{"c"},
			Usage:   "Collection name",
			Value:   ragkit.DefaultCollection,
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "Storage backend (badger, sqlite)",
			Value: ragkit.BackendBadger,
		},
	)
}

func aiFlags() []cli.Flag {
	defaults := ai.DefaultConfig()
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "provider",
			Usage: "AI provider (mock, openai)",
			Value: ragkit.ProviderMock,
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
			Value: defaults.EmbeddingHost,
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: defaults.EmbeddingModel,
		},
		&cli.StringFlag{
			Name:  "generator-host",
			Usage: "Generation service host URL",
			Value: defaults.GeneratorHost,
		},
		&cli.StringFlag{
			Name:  "generator-model",
			Usage: "Generation model name",
			Value: defaults.GeneratorModel,
		},
		&cli.StringFlag{
			Name:    "api-key",
			Usage:   "API key for the OpenAI-compatible service",
			EnvVars: []string{"OPENAI_API_KEY"},
		},
		&cli.IntFlag{
			Name:  "embedding-batch-size",
			Usage: "Maximum texts per embeddings request (0 uses the client default)",
		},
		&cli.Float64Flag{
			Name:  "temperature",
			Usage: "Sampling temperature for answer generation",
			Value: defaults.Temperature,
		},
	}
}

func chunkFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "chunker",
			Usage: "Chunking strategy (fixed, recursive, markdown); unset, Markdown files use markdown",
			Value: chunk.StrategyFixed,
		},
		&cli.IntFlag{
			Name:  "chunk-size",
			Usage: "Maximum chunk length in characters",
			Value: chunk.DefaultSize,
		},
		&cli.IntFlag{
			Name:  "chunk-overlap",
			Usage: "Characters shared by consecutive chunks (recursive and markdown only)",
		},
	}
}

func aiConfig(c *cli.Context) *ai.Config {
	return ai.NewConfig(
		ai.WithEmbeddingHost(c.String("embedding-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithGeneratorHost(c.String("generator-host")),
		ai.WithGeneratorModel(c.String("generator-model")),
		ai.WithAPIKey(c.String("api-key")),
		ai.WithTemperature(c.Float64("temperature")),
		ai.WithEmbeddingBatchSize(c.Int("embedding-batch-size")),
	)
}

func newChunker(c *cli.Context) (chunk.Chunker, error) {
	chunker, err := chunk.New(c.String("chunker"), c.Int("chunk-size"), c.Int("chunk-overlap"))
	if err != nil {
		return nil, fmt.Errorf("invalid chunking options: %w", err)
	}
	return chunker, nil
}

// openDatabase opens the database named by --db with the store and AI flags.
func openDatabase(c *cli.Context) (*ragkit.Database, error) {
	dbPath := c.String("db")
	if dbPath == "" {
		return nil, fmt.Errorf("database path is required")
	}

	db, err := ragkit.NewDatabase(dbPath,
		ragkit.WithBackend(c.String("store")),
		ragkit.WithCollection(c.String("collection")),
		ragkit.WithProviderKind(c.String("provider")),
		ragkit.WithAIConfig(aiConfig(c)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}
