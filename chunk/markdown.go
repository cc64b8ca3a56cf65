package chunk

import (
	"fmt"

	"github.com/tmc/langchaingo/textsplitter"
)

// Markdown splits Markdown documents along their heading structure. Each
// chunk is prefixed with the headings it sits under so it stays
// self-describing once separated from the document.
type Markdown struct {
	splitter *textsplitter.MarkdownTextSplitter
}

var _ Chunker = (*Markdown)(nil)

// NewMarkdown creates a Markdown chunker producing chunks of roughly size
// runes with up to overlap runes shared between oversized paragraphs.
func NewMarkdown(size, overlap int) (*Markdown, error) {
	if size <= 0 {
		size = DefaultSize
	}
	if overlap < 0 || overlap >= size {
		return nil, fmt.Errorf("%w: size %d, overlap %d", ErrInvalidOverlap, size, overlap)
	}

	return &Markdown{
		splitter: textsplitter.NewMarkdownTextSplitter(
			textsplitter.WithChunkSize(size),
			textsplitter.WithChunkOverlap(overlap),
			textsplitter.WithHeadingHierarchy(true),
			textsplitter.WithCodeBlocks(true),
		),
	}, nil
}

// Split implements Chunker.
func (m *Markdown) Split(text string) ([]string, error) {
	parts, err := m.splitter.SplitText(text)
	if err != nil {
		return nil, err
	}
	return compact(parts), nil
}
