package search

import (
	"strings"
	"unicode"
)

// fillerWords never count toward a keyword match.
var fillerWords = func() map[string]struct{} {
	words := strings.Fields(`
		a an and are as at be but by do for from have in is it
		not of on that the this to was with you what how why`)
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}()

// keywords lowercases text and returns its non-filler terms. Terms are
// separated by anything other than letters, digits or inner hyphens.
func keywords(text string) []string {
	terms := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '-'
	})

	out := terms[:0]
	for _, term := range terms {
		term = strings.Trim(term, "-")
		if term == "" {
			continue
		}
		if _, filler := fillerWords[term]; filler {
			continue
		}
		out = append(out, term)
	}
	return out
}

// coversQuery reports whether every query keyword occurs in the chunk text.
// A query made only of filler words covers nothing.
func coversQuery(contents, query string) bool {
	wanted := keywords(query)
	if len(wanted) == 0 {
		return false
	}

	present := make(map[string]struct{})
	for _, term := range keywords(contents) {
		present[term] = struct{}{}
	}
	for _, term := range wanted {
		if _, ok := present[term]; !ok {
			return false
		}
	}
	return true
}
