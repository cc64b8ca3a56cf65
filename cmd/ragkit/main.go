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


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "ragkit",
		Usage: "Chunk, embed, store and query documents for retrieval-augmented generation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Action: func(c *cli.Context) error {
			return runDemo(c.Context, c.App.Writer, defaultDemoSettings())
		},
		Commands: []*cli.Command{
			{
				Name:   "demo",
				Usage:  "Index the built-in RAG paragraph in memory and answer one question",
				Action: demoCommand,
				Flags: concat(
					[]cli.Flag{
						&cli.StringFlag{
							Name:    "query",
							Aliases: []string{"q"},
							Usage:   "Question to ask",
							Value:   demoQuery,
						},
						&cli.IntFlag{
							Name:  "results",
							Usage: "Number of chunks to retrieve",
							Value: 2,
						},
					},
					storeFlags(false),
					aiFlags(),
					chunkFlags(),
				),
			},
			{
				Name:      "ingest",
				Usage:     "Load, chunk, embed and store text, Markdown or PDF files",
				ArgsUsage: "FILE...",
				Action:    ingestCommand,
				Flags:     concat(storeFlags(true), aiFlags(), chunkFlags()),
			},
			{
				Name:      "query",
				Usage:     "Print the chunks most similar to a query",
				ArgsUsage: "QUERY",
				Action:    queryCommand,
				Flags: concat(
					[]cli.Flag{
						&cli.IntFlag{
							Name:    "results",
							Aliases: []string{"n"},
							Usage:   "Number of chunks to retrieve",
							Value:   5,
						},
						&cli.Float64Flag{
							Name:  "min-score",
							Usage: "Drop chunks scoring below this cosine similarity",
							Value: -1,
						},
						&cli.Float64Flag{
							Name:  "keyword-boost",
							Usage: "Score bonus for chunks containing every query term (0 disables)",
						},
					},
					storeFlags(true),
					aiFlags(),
				),
			},
			{
				Name:      "ask",
				Usage:     "Answer a question from the stored chunks",
				ArgsUsage: "QUESTION",
				Action:    askCommand,
				Flags: concat(
					[]cli.Flag{
						&cli.IntFlag{
							Name:  "results",
							Usage: "Number of chunks to retrieve",
							Value: 2,
						},
					},
					storeFlags(true),
					aiFlags(),
				),
			},
			{
				Name:   "collections",
				Usage:  "List the collections in a database",
				Action: collectionsCommand,
				Flags:  storeFlags(true),
			},
			{
				Name:   "reembed",
				Usage:  "Reembed all chunks of a collection with the configured embedding model",
				Action: reembedCommand,
				Flags: concat(
					storeFlags(true),
					aiFlags(),
					[]cli.Flag{
						&cli.IntFlag{
							Name:  "batch-size",
							Usage: "Number of chunks to process in each batch",
							Value: 100,
						},
						&cli.IntFlag{
							Name:  "report-interval",
							Usage: "Report progress every N chunks",
							Value: 100,
						},
						&cli.IntFlag{
							Name:  "max-retries",
							Usage: "Maximum retry attempts for failed operations",
							Value: 3,
						},
						&cli.DurationFlag{
							Name:  "retry-delay",
							Usage: "Base delay for exponential backoff",
							Value: defaultRetryDelay,
						},
					},
				),
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Logs go to stderr so stdout only carries command output.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
