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


// Package ai defines the model services ragkit depends on.
//
// Ingestion and search need an Embedder; answering needs a Generator. A
// Provider hands out both from one Config. Two implementations exist:
//
//   - ai/openai talks to any OpenAI-compatible server (Ollama, vLLM, LocalAI
//     or the hosted API) through langchaingo.
//   - ai/mock is deterministic and offline. The demo command and the tests
//     run on it.
//
// Production constructors return interfaces. Mock constructors return
// concrete types so tests can swap behavior and read call counts:
//
//	embedder := mock.NewMockEmbedder()
//	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("unavailable")
//	}
//	...
//	assert.Equal(t, 1, embedder.CallCount())
//
// Configuration is built with functional options:
//
//	cfg := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),
//	    ai.WithEmbeddingModel("nomic-embed-text"),
//	)
//	if err := cfg.Validate(); err != nil { // errors.Is(err, ai.ErrInvalidConfig)
//	    ...
//	}
package ai
