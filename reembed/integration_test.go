package reembed

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/poiesic/ragkit/ai"
	"github.com/poiesic/ragkit/ai/mock"
	"github.com/poiesic/ragkit/ai/openai"
	"github.com/poiesic/ragkit/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestIntegration_FullReembeddingWorkflow seeds a collection without
// embeddings and re-embeds it with the deterministic mock embedder.
func TestIntegration_FullReembeddingWorkflow(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	collection := setupTestCollection(t)

	texts := make([]string, 50)
	for i := range texts {
		texts[i] = "retrieval augmented generation chunk " + string(rune('a'+i%26))
	}
	added := addChunks(t, collection, texts...)
	for _, chunk := range added {
		assert.Empty(t, chunk.Vector, "seeded chunks should not have embeddings")
	}

	config := &Config{
		BatchSize:      10,
		ReportInterval: 10,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	var buf bytes.Buffer
	embedder := mock.NewMockEmbedder()
	require.NoError(t, NewReembedder(collection, embedder, config, &buf).Run(ctx))
	assert.Equal(t, 5, embedder.CallCount())

	count := 0
	err := collection.ForEach(ctx, 16, func(chunks []*core.Chunk) error {
		for _, chunk := range chunks {
			count++
			require.Len(t, chunk.Vector, mock.Dimensions, "chunk %s should have embedding", chunk.Id)
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 50, count)

	// The re-embedded collection is searchable with the same embedder.
	query, err := embedder.EmbedText(ctx, texts[3])
	require.NoError(t, err)
	results, err := collection.Query(ctx, query, 1, -1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, texts[3], results[0].Chunk.Contents)

	output := buf.String()
	assert.Contains(t, output, "Starting reembedding of 50 chunks")
	assert.Contains(t, output, "50/50")
	assert.Contains(t, output, "100.0%")
	assert.Contains(t, output, "Reembedding complete")
}

// TestIntegration_WithRealEmbedder needs a running OpenAI-compatible
// embedding service.
func TestIntegration_WithRealEmbedder(t *testing.T) {
	t.Skip("Requires running embedding service - enable manually for testing")

	ctx := context.Background()
	collection := setupTestCollection(t)
	added := addChunks(t, collection,
		"RAG stands for Retrieval-Augmented Generation.",
		"Chunks are embedded and stored in a vector store.",
		"The most similar chunks are passed to the model as context.",
	)

	aiConfig := ai.NewConfig(
		ai.WithHost("http://localhost:11434/v1"),
		ai.WithEmbeddingModel("all-minilm"),
	)
	embedder, err := openai.NewEmbedder(aiConfig)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, NewReembedder(collection, embedder, DefaultConfig(), &buf).Run(ctx))

	updated, err := collection.GetChunks(ctx, added[0].Id, added[1].Id, added[2].Id)
	require.NoError(t, err)
	require.Len(t, updated, 3)
	for _, chunk := range updated {
		assert.NotEmpty(t, chunk.Vector)
	}
}

// TestIntegration_IdempotentReembedding runs the reembedder twice.
func TestIntegration_IdempotentReembedding(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	collection := setupTestCollection(t)
	added := addChunks(t, collection, repeat("test message", 10)...)

	embedder := mock.NewMockEmbedder()
	config := &Config{
		BatchSize:      5,
		ReportInterval: 5,
		MaxRetries:     3,
		RetryDelay:     10 * time.Millisecond,
	}

	var buf1 bytes.Buffer
	require.NoError(t, NewReembedder(collection, embedder, config, &buf1).Run(ctx))
	first, err := collection.GetChunk(ctx, added[0].Id)
	require.NoError(t, err)

	var buf2 bytes.Buffer
	require.NoError(t, NewReembedder(collection, embedder, config, &buf2).Run(ctx))
	second, err := collection.GetChunk(ctx, added[0].Id)
	require.NoError(t, err)

	require.Equal(t, len(first.Vector), len(second.Vector))
	for i := range first.Vector {
		assert.InDelta(t, first.Vector[i], second.Vector[i], 0.001, "vectors should be identical after re-embedding")
	}
	assert.Equal(t, first.InsertedAt, second.InsertedAt)
}
