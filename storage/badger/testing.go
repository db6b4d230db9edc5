package badger

import "github.com/poiesic/sectionrank/storage"

// NewMemoryEmbeddingCache creates an in-memory embedding cache for testing.
// Caller must close the cache when done.
func NewMemoryEmbeddingCache() (storage.EmbeddingCache, error) {
	backend, err := OpenBackend("", true)
	if err != nil {
		return nil, err
	}

	cache, err := NewEmbeddingCache(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	return cache, nil
}
