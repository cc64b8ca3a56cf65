package mock

import (
	"context"
	"sync/atomic"
)

// contextPreview is how many characters of context the default answer quotes.
const contextPreview = 100

// MockGenerator is a test double for ai.Generator.
type MockGenerator struct {
	// GenerateFunc is called by Generate if set.
	// If nil, uses the default echo answer.
	GenerateFunc func(ctx context.Context, query, contextText string) (string, error)

	callCount atomic.Int64
}

// NewMockGenerator creates a mock generator with the default echo answer.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

// Generate returns
//
//	Based on the context: <first 100 characters>... [Answer would address: <query>]
func (m *MockGenerator) Generate(ctx context.Context, query, contextText string) (string, error) {
	m.callCount.Add(1)

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, query, contextText)
	}

	return "Based on the context: " + prefix(contextText, contextPreview) +
		"... [Answer would address: " + query + "]", nil
}

// CallCount returns the number of times Generate was called.
func (m *MockGenerator) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and custom functions.
func (m *MockGenerator) Reset() {
	m.callCount.Store(0)
	m.GenerateFunc = nil
}

func prefix(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
