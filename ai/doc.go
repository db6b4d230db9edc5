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


// Package ai provides the embedding model abstraction used by the semantic
// scorer.
//
// The ranking engine treats the embedding model as a black box that maps
// text to a fixed-length vector. This package defines that boundary so the
// engine depends on an interface rather than on a model runtime.
//
// # Design Principles
//
// The package is designed around two interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - Provider: Owns a model, reports its identifier, and releases it
//
// Supporting pieces:
//
//   - Config: provider selection and model settings
//   - Retry: exponential backoff around a single embedding call
//   - CachingEmbedder: serves repeated section texts from a storage.EmbeddingCache
//
// # Implementation Packages
//
//   - ai/fastembed: in-process ONNX models on the CPU (default, offline after first download)
//   - ai/openai: OpenAI-compatible HTTP APIs such as a local Ollama server
//   - ai/mock: Test doubles for unit testing without a model
//
// # Constructor Return Type Pattern
//
// Public provider constructors (fastembed.NewProvider, openai.NewProvider)
// return the ai.Provider INTERFACE to prevent coupling to a runtime.
//
//	provider, err := fastembed.NewProvider(config)  // returns ai.Provider
//
// Test constructors (mock.NewMockEmbedder) return CONCRETE types to enable
// assertions and behavior injection (CallCount, WithEmbedTextsFunc, Reset).
//
// # Queries and Passages
//
// EmbedText is used for the single persona/task query and EmbedTexts for
// section passages. Models with asymmetric prompts (BGE) embed the two
// differently, so callers must not mix them.
package ai
