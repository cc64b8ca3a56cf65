package ragkit

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/ragkit/ai"
	"github.com/poiesic/ragkit/ai/mock"
	"github.com/poiesic/ragkit/answer"
	"github.com/poiesic/ragkit/core"
	"github.com/poiesic/ragkit/reembed"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const ragDocument = "RAG stands for Retrieval-Augmented Generation. You retrieve relevant chunks " +
	"from a vector store, then pass them as context to an LLM. The LLM generates an answer " +
	"grounded in your documents."

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		db, err := NewDatabase(tmpDir)
		require.NoError(t, err)
		require.NotNil(t, db)
		defer db.Close()

		assert.NotNil(t, db.Store())
		assert.NotNil(t, db.Provider())
		assert.Equal(t, DefaultCollection, db.Collection().Name())
		assert.NotNil(t, db.logger)
		assert.True(t, db.ownsProvider)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		require.NoError(t, os.WriteFile(tmpFile, []byte("test"), 0644))

		db, err := NewDatabase(tmpFile)
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("path required unless in memory", func(t *testing.T) {
		_, err := NewDatabase("")
		assert.ErrorIs(t, err, ErrPathRequired)

		db, err := NewDatabase("", WithInMemory(true))
		require.NoError(t, err)
		require.NoError(t, db.Close())
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := NewDatabase("", WithInMemory(true), WithBackend("leveldb"))
		assert.ErrorIs(t, err, ErrUnknownBackend)
	})

	t.Run("unknown provider", func(t *testing.T) {
		_, err := NewDatabase("", WithInMemory(true), WithProviderKind("cohere"))
		assert.ErrorIs(t, err, ErrUnknownProvider)
	})

	t.Run("invalid collection name", func(t *testing.T) {
		_, err := NewDatabase("", WithInMemory(true), WithCollection("a:b"))
		assert.ErrorIs(t, err, core.ErrInvalidCollectionName)
	})

	t.Run("openai provider validates config", func(t *testing.T) {
		config := ai.NewConfig(ai.WithEmbeddingModel(""))
		_, err := NewDatabase("", WithInMemory(true), WithProviderKind(ProviderOpenAI), WithAIConfig(config))
		assert.Error(t, err)
	})

	t.Run("injected provider is not owned", func(t *testing.T) {
		provider := mock.NewMockProvider()
		db, err := NewDatabase("", WithInMemory(true), WithProvider(provider))
		require.NoError(t, err)

		assert.Same(t, provider, db.Provider())
		require.NoError(t, db.Close())
		assert.False(t, provider.Closed())
	})
}

func TestOpenStore(t *testing.T) {
	for _, backend := range []string{BackendBadger, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			dbPath := filepath.Join(t.TempDir(), "db")
			ctx := context.Background()

			store, err := OpenStore(dbPath, WithBackend(backend))
			require.NoError(t, err)
			collections, err := store.Collections(ctx)
			require.NoError(t, err)
			assert.Empty(t, collections)
			require.NoError(t, store.Close())

			// Listing did not create the default collection
			store, err = OpenStore(dbPath, WithBackend(backend))
			require.NoError(t, err)
			defer store.Close()
			collections, err = store.Collections(ctx)
			require.NoError(t, err)
			assert.Empty(t, collections)
		})
	}

	t.Run("path required unless in memory", func(t *testing.T) {
		_, err := OpenStore("")
		assert.ErrorIs(t, err, ErrPathRequired)
	})

	t.Run("unknown backend", func(t *testing.T) {
		_, err := OpenStore("", WithInMemory(true), WithBackend("leveldb"))
		assert.ErrorIs(t, err, ErrUnknownBackend)
	})
}

func TestOpenProvider(t *testing.T) {
	tests := []struct {
		kind    string
		wantErr error
	}{
		{"", nil},
		{ProviderMock, nil},
		{ProviderOpenAI, nil},
		{"anthropic", ErrUnknownProvider},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			provider, err := OpenProvider(tt.kind, nil)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NotNil(t, provider.Embedder())
			assert.NotNil(t, provider.Generator())
			assert.NoError(t, provider.Close())
		})
	}
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, db)

	provider, ok := db.Provider().(*mock.MockProvider)
	require.True(t, ok)

	assert.NoError(t, db.Close())
	assert.True(t, provider.Closed(), "owned provider is closed with the database")
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db, err := NewDatabase(t.TempDir())
	require.NoError(t, err)
	require.NotNil(t, db)
	defer db.Close()

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := db.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})

	t.Run("can create responder", func(t *testing.T) {
		responder, err := db.NewResponder(answer.WithResults(3))
		require.NoError(t, err)
		require.NotNil(t, responder)
	})

	t.Run("can create reembedder", func(t *testing.T) {
		assert.NotNil(t, db.NewReembedder(nil, nil, nil))
	})
}

func TestDatabase_EndToEnd(t *testing.T) {
	for _, backend := range []string{BackendBadger, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			db, err := NewDatabase("", WithInMemory(true), WithBackend(backend))
			require.NoError(t, err)
			defer db.Close()

			pipeline, err := db.NewIngestionPipeline()
			require.NoError(t, err)
			defer pipeline.Release()

			chunks, err := pipeline.Ingest(ctx, core.NewDocument("", ragDocument), nil)
			require.NoError(t, err)
			require.Len(t, chunks, 2)
			assert.Equal(t, "c_0", chunks[0].Id)
			assert.Equal(t, "c_1", chunks[1].Id)

			responder, err := db.NewResponder()
			require.NoError(t, err)
			ans, err := responder.Ask(ctx, "What is RAG?")
			require.NoError(t, err)

			var buf bytes.Buffer
			require.NoError(t, answer.Format(&buf, ans))
			assert.Equal(t,
				"Query: What is RAG?\n"+
					"Retrieved context: RAG stands for Retrieval-Augmented Generation. You retrieve relevant chunks from a vector store, then pass them as conte...\n"+
					"Answer: Based on the context: RAG stands for Retrieval-Augmented Generation. You retrieve relevant chunks from a vector store, the... [Answer would address: What is RAG?]\n",
				buf.String())
		})
	}
}

func TestDatabase_Persistence(t *testing.T) {
	for _, backend := range []string{BackendBadger, BackendSQLite} {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "db")

			db, err := NewDatabase(path, WithBackend(backend), WithCollection("notes"))
			require.NoError(t, err)
			pipeline, err := db.NewIngestionPipeline()
			require.NoError(t, err)
			_, err = pipeline.Ingest(ctx, core.NewDocument("rag.txt", ragDocument), nil)
			require.NoError(t, err)
			pipeline.Release()
			require.NoError(t, db.Close())

			db, err = NewDatabase(path, WithBackend(backend), WithCollection("notes"))
			require.NoError(t, err)
			defer db.Close()

			count, err := db.Collection().Count(ctx)
			require.NoError(t, err)
			assert.Equal(t, 2, count)

			var buf bytes.Buffer
			require.NoError(t, db.NewReembedder(nil, &reembed.Config{
				BatchSize: 10, ReportInterval: 10, MaxRetries: 1, RetryDelay: time.Millisecond,
			}, &buf).Run(ctx))
			assert.Contains(t, buf.String(), "Reembedding complete")

			chunk, err := db.Collection().GetChunk(ctx, "c_0")
			require.NoError(t, err)
			assert.Equal(t, "rag.txt", chunk.Source)
			assert.Len(t, chunk.Vector, mock.Dimensions)
		})
	}
}
