// Package mock provides deterministic, offline implementations of the ai
// interfaces. Tests use them to script behavior, and the demo command uses
// them to run the whole pipeline without a model server.
//
// Every double exposes function fields that replace the default behavior
// and a CallCount for assertions:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
//	    return []float32{0.1, 0.2, 0.3}, nil
//	}
//	provider := mock.NewMockProviderWithServices(embedder, mock.NewMockGenerator())
//
// Defaults:
//
//   - MockEmbedder hashes lowercase words into a unit vector of Dimensions
//     entries, so texts sharing words score higher under cosine similarity.
//   - MockGenerator echoes the first 100 characters of the context and the query.
//   - MockProvider records whether it was closed.
package mock
