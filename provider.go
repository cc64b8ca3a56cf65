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


package ragkit

import (
	"fmt"

	"github.com/poiesic/ragkit/ai"
	"github.com/poiesic/ragkit/ai/mock"
	"github.com/poiesic/ragkit/ai/openai"
)

// Provider kinds accepted by OpenProvider.
const (
	ProviderMock   = "mock"
	ProviderOpenAI = "openai"
)

// OpenProvider creates the AI provider registered under kind. An empty kind
// selects the deterministic mock provider, which needs no network access.
// config is only consulted by providers that talk to a service; nil means
// ai.DefaultConfig().
func OpenProvider(kind string, config *ai.Config) (ai.Provider, error) {
	switch kind {
	case "", ProviderMock:
		return mock.NewMockProvider(), nil
	case ProviderOpenAI:
		if config == nil {
			config = ai.DefaultConfig()
		}
		return openai.NewProvider(config)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, kind)
	}
}
