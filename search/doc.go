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


// Package search retrieves the chunks most relevant to a query.
//
// The Searcher embeds the query, asks the collection for its nearest chunks
// by cosine similarity, and optionally boosts chunks that contain every
// non-stop-word of the query verbatim. JoinContext turns the results into the
// single context string handed to a generator.
package search
