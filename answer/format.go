package answer

import (
	"fmt"
	"io"

	"github.com/poiesic/ragkit/core"
)

// ContextPreview is how many characters of context Format prints.
const ContextPreview = 120

// Truncate returns the first n characters (runes) of s.
func Truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}

// Format writes the three result lines for a:
//
//	Query: <query>
//	Retrieved context: <first 120 characters of context>...
//	Answer: <answer>
func Format(w io.Writer, a *core.Answer) error {
	_, err := fmt.Fprintf(w, "Query: %s\nRetrieved context: %s...\nAnswer: %s\n",
		a.Query, Truncate(a.Context, ContextPreview), a.Text)
	return err
}
