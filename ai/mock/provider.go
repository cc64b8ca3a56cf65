// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package mock

import (
	"sync/atomic"

	"github.com/poiesic/ragkit/ai"
)

// MockProvider bundles a MockEmbedder and a MockGenerator.
type MockProvider struct {
	Embed    *MockEmbedder
	Generate *MockGenerator

	closed atomic.Bool
}

var _ ai.Provider = (*MockProvider)(nil)

// NewMockProvider returns a provider with default mock services.
func NewMockProvider() *MockProvider {
	return NewMockProviderWithServices(NewMockEmbedder(), NewMockGenerator())
}

// NewMockProviderWithServices returns a provider around the given doubles.
func NewMockProviderWithServices(embedder *MockEmbedder, generator *MockGenerator) *MockProvider {
	return &MockProvider{Embed: embedder, Generate: generator}
}

func (p *MockProvider) Embedder() ai.Embedder {
	return p.Embed
}

func (p *MockProvider) Generator() ai.Generator {
	return p.Generate
}

// Close marks the provider closed.
func (p *MockProvider) Close() error {
	p.closed.Store(true)
	return nil
}

// Closed reports whether Close has been called.
func (p *MockProvider) Closed() bool {
	return p.closed.Load()
}
