package ingestion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/ragkit/ai/mock"
	"github.com/poiesic/ragkit/chunk"
	"github.com/poiesic/ragkit/core"
	"github.com/poiesic/ragkit/storage"
	"github.com/poiesic/ragkit/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ragDocument = "RAG stands for Retrieval-Augmented Generation. You retrieve relevant chunks " +
	"from a vector store, then pass them as context to an LLM. The LLM generates an answer " +
	"grounded in your documents."

func setupTestCollection(t *testing.T) storage.Collection {
	t.Helper()
	collection, store, err := badger.NewMemoryCollection("test")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return collection
}

func setupTestPipeline(t *testing.T, embedder *mock.MockEmbedder, opts ...Option) (*Pipeline, storage.Collection) {
	t.Helper()
	collection := setupTestCollection(t)
	opts = append([]Option{WithRetryDelay(time.Millisecond)}, opts...)
	p, err := NewPipeline(collection, embedder, opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p, collection
}

func TestNewPipeline_Validation(t *testing.T) {
	collection := setupTestCollection(t)
	embedder := mock.NewMockEmbedder()

	_, err := NewPipeline(nil, embedder)
	assert.ErrorIs(t, err, ErrCollectionRequired)

	_, err = NewPipeline(collection, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)

	badOptions := []struct {
		name string
		opt  Option
	}{
		{"nil chunker", WithChunker(nil)},
		{"zero batch size", WithBatchSize(0)},
		{"zero retries", WithMaxRetries(0)},
	}
	for _, tt := range badOptions {
		t.Run(tt.name, func(t *testing.T) {
			p, err := NewPipeline(collection, embedder, tt.opt)
			assert.Error(t, err)
			assert.Nil(t, p)
		})
	}

	p, err := NewPipeline(collection, embedder, WithPoolSize(0), WithLogger(nil))
	require.NoError(t, err)
	p.Release()
}

func TestPipeline_Ingest(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	p, collection := setupTestPipeline(t, embedder)
	ctx := context.Background()

	doc := core.NewDocument("rag.txt", ragDocument)
	doc.Metadata = map[string]string{"lang": "en"}

	chunks, err := p.Ingest(ctx, doc, &IngestOptions{Metadata: map[string]string{"run": "1"}})
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	expected := chunk.Chunk(ragDocument, chunk.DefaultSize)
	for i, c := range chunks {
		assert.Equal(t, fmt.Sprintf("c_%d", i), c.Id)
		assert.Equal(t, i, c.Index)
		assert.Equal(t, doc.Id, c.DocumentId)
		assert.Equal(t, "rag.txt", c.Source)
		assert.Equal(t, expected[i], c.Contents)
		assert.Len(t, c.Vector, mock.Dimensions)
		assert.Equal(t, map[string]string{"lang": "en", "run": "1"}, c.Metadata)
	}

	count, err := collection.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count, "one stored id per chunk")

	stored, err := collection.GetChunk(ctx, "c_1")
	require.NoError(t, err)
	want, _ := embedder.EmbedText(ctx, expected[1])
	assert.Equal(t, want, stored.Vector)
}

func TestPipeline_Ingest_Prefix(t *testing.T) {
	p, collection := setupTestPipeline(t, mock.NewMockEmbedder())
	ctx := context.Background()

	doc := core.NewDocument("a.txt", "first document")
	_, err := p.Ingest(ctx, doc, &IngestOptions{IDPrefix: doc.Id.String()})
	require.NoError(t, err)

	_, err = collection.GetChunk(ctx, doc.Id.String()+"_0")
	assert.NoError(t, err)
}

func TestPipeline_Ingest_ChunkerOverride(t *testing.T) {
	p, _ := setupTestPipeline(t, mock.NewMockEmbedder(), WithChunker(chunk.FixedSize{Size: 4}))
	ctx := context.Background()

	chunks, err := p.Ingest(ctx, core.NewDocument("a.txt", "abcdefgh"), nil)
	require.NoError(t, err)
	assert.Len(t, chunks, 2)

	chunks, err = p.Ingest(ctx, core.NewDocument("b.txt", "ijklmnop"), &IngestOptions{
		IDPrefix: "b",
		Chunker:  chunk.FixedSize{Size: 8},
	})
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "ijklmnop", chunks[0].Contents)
}

func TestPipeline_Ingest_DuplicateIDs(t *testing.T) {
	p, collection := setupTestPipeline(t, mock.NewMockEmbedder())
	ctx := context.Background()

	_, err := p.Ingest(ctx, core.NewDocument("a.txt", "first"), nil)
	require.NoError(t, err)

	_, err = p.Ingest(ctx, core.NewDocument("b.txt", "second"), nil)
	assert.ErrorIs(t, err, storage.ErrDuplicateKey)

	stored, err := collection.GetChunk(ctx, "c_0")
	require.NoError(t, err)
	assert.Equal(t, "first", stored.Contents)
}

func TestPipeline_Ingest_Batches(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	p, collection := setupTestPipeline(t, embedder,
		WithChunker(chunk.FixedSize{Size: 5}),
		WithBatchSize(3),
		WithPoolSize(2),
	)
	ctx := context.Background()

	text := strings.Repeat("abcd ", 10)
	chunks, err := p.Ingest(ctx, core.NewDocument("", text), nil)
	require.NoError(t, err)
	require.Len(t, chunks, 10)

	assert.Equal(t, 4, embedder.CallCount(), "10 chunks in batches of 3")

	reference := mock.NewMockEmbedder()
	for _, c := range chunks {
		want, _ := reference.EmbedText(ctx, c.Contents)
		assert.Equal(t, want, c.Vector)
	}

	count, err := collection.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestPipeline_Ingest_EmptyDocument(t *testing.T) {
	p, _ := setupTestPipeline(t, mock.NewMockEmbedder())
	ctx := context.Background()

	_, err := p.Ingest(ctx, core.NewDocument("", "   \n"), nil)
	assert.ErrorIs(t, err, ErrNoChunks)

	_, err = p.Ingest(ctx, nil, nil)
	assert.ErrorIs(t, err, core.ErrInvalidDocument)
}

func TestPipeline_Ingest_CountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1, 0}}, nil
	}
	p, collection := setupTestPipeline(t, embedder)
	ctx := context.Background()

	_, err := p.Ingest(ctx, core.NewDocument("", ragDocument), nil)
	assert.ErrorIs(t, err, ErrEmbeddingCountMismatch)
	assert.Equal(t, 1, embedder.CallCount(), "mismatch is not retried")

	count, err := collection.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPipeline_Ingest_Retry(t *testing.T) {
	var calls atomic.Int32
	embedder := mock.NewMockEmbedder()
	reference := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) < 3 {
			return nil, errors.New("temporarily unavailable")
		}
		return reference.EmbedTexts(ctx, texts)
	}

	p, _ := setupTestPipeline(t, embedder, WithMaxRetries(3))

	chunks, err := p.Ingest(context.Background(), core.NewDocument("", "short text"), nil)
	require.NoError(t, err)
	assert.Len(t, chunks, 1)
	assert.Equal(t, int32(3), calls.Load())
}

func TestPipeline_Ingest_EmbedderFails(t *testing.T) {
	boom := errors.New("embedder down")
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, boom
	}
	p, collection := setupTestPipeline(t, embedder, WithMaxRetries(2))
	ctx := context.Background()

	_, err := p.Ingest(ctx, core.NewDocument("", ragDocument), nil)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 2, embedder.CallCount())

	count, err := collection.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestPipeline_Ingest_Canceled(t *testing.T) {
	p, _ := setupTestPipeline(t, mock.NewMockEmbedder())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Ingest(ctx, core.NewDocument("", ragDocument), nil)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMergeMetadata(t *testing.T) {
	assert.Nil(t, mergeMetadata(nil, map[string]string{}))
	assert.Equal(t,
		map[string]string{"a": "2", "b": "1"},
		mergeMetadata(map[string]string{"a": "1", "b": "1"}, map[string]string{"a": "2"}))
}
