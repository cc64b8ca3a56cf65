package ai

import "context"

// Embedder turns text into vectors. Vectors from one Embedder are only
// comparable with each other. Safe for concurrent use.
type Embedder interface {
	// EmbedText embeds a single string.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts embeds texts in one call. The result has one vector per
	// input, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Generator answers a query from retrieved context. Safe for concurrent use.
type Generator interface {
	// Generate answers query using contextText, the retrieved chunk text
	// joined into one string. An empty contextText is allowed.
	Generate(ctx context.Context, query, contextText string) (string, error)
}

// Provider pairs an Embedder with a Generator that share one configuration.
type Provider interface {
	Embedder() Embedder
	Generator() Generator

	// Close releases the provider. Neither service may be used afterwards.
	Close() error
}
