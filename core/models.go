package core

//go:generate go run ../cmd/musgen

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for documents.
// It is generated using content-based hashing.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// This ensures that identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// String renders the ID as 16 hex digits.
func (id ID) String() string {
	return fmt.Sprintf("%016x", uint64(id))
}

// DefaultChunkPrefix is the id prefix used for chunks when none is given.
const DefaultChunkPrefix = "c"

// ChunkID builds the id of the chunk at position index, e.g. "c_0".
func ChunkID(prefix string, index int) string {
	return prefix + "_" + strconv.Itoa(index)
}

// Document is a source text that is split into chunks before storage.
type Document struct {
	Id       ID
	Source   string // File name or other origin label
	Contents string
	Metadata map[string]string
}

// NewDocument creates a document whose ID is derived from its contents.
func NewDocument(source, contents string) *Document {
	return &Document{
		Id:       IDFromContent(contents),
		Source:   source,
		Contents: contents,
	}
}

// Chunk is a piece of a document together with its embedding.
type Chunk struct {
	Id         string
	DocumentId ID
	Index      int // Position of the chunk within its document
	Source     string
	Contents   string
	Vector     []float32 // Embedding vector (populated during ingestion)
	InsertedAt time.Time
	UpdatedAt  time.Time
	Metadata   map[string]string
}

// Collection describes a named set of chunks sharing one embedding dimension.
type Collection struct {
	Name       string
	Dimension  int // 0 until the first chunk with a vector is stored
	InsertedAt time.Time
	UpdatedAt  time.Time
}

// SearchResult represents a retrieved chunk and its relevance score.
type SearchResult struct {
	Chunk *Chunk
	Score float32
}

// Answer is the outcome of a retrieval-augmented generation request.
type Answer struct {
	Query   string
	Context string // Retrieved chunk contents joined with a single space
	Text    string
	Sources []*SearchResult
}
