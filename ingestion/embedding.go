package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/ragkit/ai"
	"github.com/poiesic/ragkit/reembed"
)

// embeddingProcessor embeds texts in fixed-size batches on a worker pool.
type embeddingProcessor struct {
	embedder   ai.Embedder
	pool       *ants.Pool
	batchSize  int
	maxRetries int
	retryDelay time.Duration
	logger     *slog.Logger
}

// process returns one vector per text, in input order.
func (ep *embeddingProcessor) process(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, len(texts))
	batches := (len(texts) + ep.batchSize - 1) / ep.batchSize
	errs := make([]error, batches)

	var wg sync.WaitGroup
	for b := 0; b < batches; b++ {
		start := b * ep.batchSize
		end := min(start+ep.batchSize, len(texts))

		wg.Add(1)
		err := ep.pool.Submit(func() {
			defer wg.Done()
			errs[b] = ep.embedBatch(ctx, texts[start:end], vectors[start:end])
		})
		if err != nil {
			wg.Done()
			errs[b] = err
			break
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return vectors, nil
}

// embedBatch embeds texts into out, retrying with backoff.
func (ep *embeddingProcessor) embedBatch(ctx context.Context, texts []string, out [][]float32) error {
	ep.logger.Debug("generating embeddings", "count", len(texts))

	var embeddings [][]float32
	err := reembed.RetryWithBackoff(ctx, func() error {
		var err error
		embeddings, err = ep.embedder.EmbedTexts(ctx, texts)
		if err != nil {
			return err
		}
		if len(embeddings) != len(texts) {
			return reembed.Permanent(fmt.Errorf("%w: expected %d, received %d",
				ErrEmbeddingCountMismatch, len(texts), len(embeddings)))
		}
		return nil
	}, ep.maxRetries, ep.retryDelay)
	if err != nil {
		ep.logger.Error("error generating embeddings", "count", len(texts), "err", err)
		return err
	}

	copy(out, embeddings)
	return nil
}
