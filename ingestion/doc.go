// Package ingestion provides the pipeline that turns documents into stored,
// embedded chunks.
//
// The Pipeline type manages the ingestion workflow for a document:
//   - Splitting the contents with a chunk.Chunker
//   - Embedding the chunks in batches on a worker pool, retrying failed batches
//   - Adding the embedded chunks to a storage.Collection in one call
//
// Ingestion is synchronous: when Ingest returns without error every chunk is
// stored and searchable.
package ingestion
