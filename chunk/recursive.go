package chunk

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/textsplitter"
)

// Recursive splits on paragraph, line, and word boundaries before falling
// back to single characters, so chunks rarely cut through a word.
type Recursive struct {
	splitter textsplitter.RecursiveCharacter
}

var _ Chunker = (*Recursive)(nil)

// NewRecursive creates a Recursive chunker producing chunks of at most size
// runes where consecutive chunks share up to overlap runes.
func NewRecursive(size, overlap int) (*Recursive, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size %d, overlap %d", ErrInvalidOverlap, size, overlap)
	}

	return &Recursive{
		splitter: textsplitter.NewRecursiveCharacter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithSeparators([]string{"\n\n", "\n", " ", ""}),
		),
	}, nil
}

// Split implements Chunker.
func (r *Recursive) Split(text string) ([]string, error) {
	parts, err := r.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}
	return compact(parts), nil
}

// compact trims every part and drops the ones left empty, reusing parts.
func compact(parts []string) []string {
	chunks := parts[:0]
	for _, part := range parts {
		if part = strings.TrimSpace(part); part != "" {
			chunks = append(chunks, part)
		}
	}
	return chunks
}
