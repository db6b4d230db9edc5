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


// Package storage provides the persistence abstraction for sectionrank.
//
// The only persisted data is the optional embedding cache: vectors produced
// by an embedding model, keyed by model identifier and exact input text.
// Rankings, corpus statistics and scores are never stored, so every job is
// computed from its own documents alone.
//
// # Constructor Return Type Pattern
//
// Public constructors in backend packages return the storage interface:
//
//	cache, err := badger.NewEmbeddingCache(backend)  // returns storage.EmbeddingCache
//
// # Usage
//
//	backend, err := badger.OpenBackend("/var/cache/sectionrank", false)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	cache, err := badger.NewEmbeddingCache(backend)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer cache.Close()
//
// Use in tests with in-memory storage:
//
//	cache, err := badger.NewMemoryEmbeddingCache()
//
// # Encoding
//
// Vectors are encoded with mus-go: a varint length followed by raw
// little-endian float32 values.
//
// # Thread Safety
//
// All implementations must be thread-safe and support concurrent access
// from multiple goroutines.
package storage
