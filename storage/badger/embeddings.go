package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/sectionrank/storage"
)

// EmbeddingCache implements storage.EmbeddingCache on a Backend.
type EmbeddingCache struct {
	backend *Backend
	logger  *slog.Logger
}

var _ storage.EmbeddingCache = (*EmbeddingCache)(nil)

// NewEmbeddingCache creates an embedding cache on backend.
// The cache owns the backend and closes it on Close.
func NewEmbeddingCache(backend *Backend) (storage.EmbeddingCache, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	return &EmbeddingCache{
		backend: backend,
		logger:  slog.Default().With("component", "embedding-cache"),
	}, nil
}

// GetEmbeddings implements storage.EmbeddingCache.
func (c *EmbeddingCache) GetEmbeddings(ctx context.Context, model string, texts []string) ([][]float32, error) {
	if c.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	vectors := make([][]float32, len(texts))
	hits := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return err
			}
			item, err := tx.Get(makeEmbeddingKey(model, text))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			err = item.Value(func(val []byte) error {
				v, err := storage.UnmarshalVector(val)
				if err != nil {
					return err
				}
				vectors[i] = v
				return nil
			})
			if err != nil {
				// A corrupt entry is a miss; the embedder recomputes it.
				c.logger.Warn("discarding unreadable cache entry", "err", err)
				continue
			}
			hits++
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("cache lookup", "model", model, "texts", len(texts), "hits", hits)
	return vectors, nil
}

// PutEmbeddings implements storage.EmbeddingCache.
func (c *EmbeddingCache) PutEmbeddings(ctx context.Context, model string, texts []string, vectors [][]float32) error {
	if len(texts) != len(vectors) {
		return fmt.Errorf("%w: %d texts, %d vectors", storage.ErrLengthMismatch, len(texts), len(vectors))
	}
	if c.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return c.backend.WithTx(func(tx *badger.Txn) error {
		for i, text := range texts {
			if err := ctx.Err(); err != nil {
				return err
			}
			if len(vectors[i]) == 0 {
				continue
			}
			if err := tx.Set(makeEmbeddingKey(model, text), storage.MarshalVector(vectors[i])); err != nil {
				return err
			}
		}
		return nil
	}, true)
}

// Count returns the number of cached vectors for model.
func (c *EmbeddingCache) Count(model string) (int, error) {
	count := 0
	err := c.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeModelPrefix(model)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Close closes the underlying backend.
func (c *EmbeddingCache) Close() error {
	if c.backend.IsClosed() {
		return nil
	}
	return c.backend.Close()
}
