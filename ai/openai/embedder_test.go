package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/ragkit/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/embeddings"
)

// newEmbeddingServer serves /v1/embeddings, returning [len(input), index]
// for every input string.
func newEmbeddingServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			http.NotFound(w, r)
			return
		}

		var req struct {
			Model string   `json:"model"`
			Input []string `json:"input"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		type item struct {
			Object    string    `json:"object"`
			Embedding []float32 `json:"embedding"`
			Index     int       `json:"index"`
		}
		data := make([]item, len(req.Input))
		for i, input := range req.Input {
			data[i] = item{Object: "embedding", Embedding: []float32{float32(len(input)), float32(i)}, Index: i}
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"object": "list",
			"data":   data,
			"model":  req.Model,
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func TestEmbedder(t *testing.T) {
	server := newEmbeddingServer(t)
	cfg := ai.NewConfig(ai.WithHost(server.URL))

	embedder, err := NewEmbedder(cfg)
	require.NoError(t, err)

	t.Run("single text", func(t *testing.T) {
		vector, err := embedder.EmbedText(context.Background(), "hello")
		require.NoError(t, err)
		assert.Equal(t, []float32{5, 0}, vector)
	})

	t.Run("batch preserves order", func(t *testing.T) {
		vectors, err := embedder.EmbedTexts(context.Background(), []string{"a", "bbb", "cc"})
		require.NoError(t, err)
		assert.Equal(t, [][]float32{{1, 0}, {3, 1}, {2, 2}}, vectors)
	})
}

func TestEmbedder_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"model not found"}}`, http.StatusNotFound)
	}))
	defer server.Close()

	embedder, err := NewEmbedder(ai.NewConfig(ai.WithHost(server.URL)))
	require.NoError(t, err)

	_, err = embedder.EmbedText(context.Background(), "hello")
	assert.ErrorIs(t, err, ai.ErrEmbeddingFailed)

	_, err = embedder.EmbedTexts(context.Background(), []string{"hello"})
	assert.ErrorIs(t, err, ai.ErrEmbeddingFailed)
}

func TestEmbedder_Batching(t *testing.T) {
	var batches []int
	client := embeddings.EmbedderClientFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		batches = append(batches, len(texts))
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = []float32{float32(len(text))}
		}
		return out, nil
	})

	embedder, err := newEmbedderWithClient(client, 2)
	require.NoError(t, err)

	vectors, err := embedder.EmbedTexts(context.Background(), []string{"a", "bb", "ccc", "dd\ne"})
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2}, batches)
	assert.Equal(t, [][]float32{{1}, {2}, {3}, {4}}, vectors, "newlines are preserved")

	vectors, err = embedder.EmbedTexts(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, vectors)
	assert.Len(t, batches, 2, "empty input makes no request")
}

func TestEmbedder_ShortResponse(t *testing.T) {
	client := embeddings.EmbedderClientFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	})
	embedder, err := newEmbedderWithClient(client, 0)
	require.NoError(t, err)

	_, err = embedder.EmbedTexts(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ai.ErrEmbeddingFailed)
}

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider(ai.NewConfig())
	require.NoError(t, err)
	defer provider.Close()

	assert.NotNil(t, provider.Embedder())
	assert.NotNil(t, provider.Generator())

	_, err = NewProvider(&ai.Config{})
	assert.ErrorIs(t, err, ai.ErrInvalidConfig)
}
