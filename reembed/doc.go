// Package reembed recomputes the embeddings of chunks that are already
// stored, typically after switching to a different embedding model.
//
// Chunks are paged out of a collection in batches, embedded with retry and
// exponential backoff, normalized, and written back in place. Progress is
// reported to an io.Writer as the run advances.
package reembed
