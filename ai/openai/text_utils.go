package openai

import (
	"regexp"
	"strings"
)

// thinkBlock matches the reasoning preamble some local models emit.
var thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)

// cleanAnswer strips reasoning blocks, a leading "Answer:" label and
// surrounding whitespace from a model response.
func cleanAnswer(s string) string {
	s = thinkBlock.ReplaceAllString(s, "")
	s = strings.TrimSpace(s)
	if label := "Answer:"; len(s) >= len(label) && strings.EqualFold(s[:len(label)], label) {
		s = strings.TrimSpace(s[len(label):])
	}
	return s
}
