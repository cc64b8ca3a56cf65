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


// Package openai implements the ai services on top of langchaingo's OpenAI
// client, so it works against any server speaking the OpenAI HTTP API.
//
// Hosts without a /v1 suffix get one during validation. Embedding requests
// are split according to Config.EmbeddingBatchSize. Answers go through a
// fixed grounding prompt and have reasoning blocks and an "Answer:" label
// stripped before they are returned.
//
//	provider, err := openai.NewProvider(ai.NewConfig(ai.WithHost("http://localhost:11434")))
//	if err != nil {
//	    return err
//	}
//	defer provider.Close()
package openai
