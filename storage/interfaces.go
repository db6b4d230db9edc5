package storage

import "context"

// EmbeddingCache stores embedder outputs between runs, keyed by model and
// exact input text. It never stores corpus statistics or scores, so ranking
// stays job-scoped. Implementations must be thread-safe.
type EmbeddingCache interface {
	// GetEmbeddings returns one entry per text, in order. Entries for texts
	// that are not cached are nil; a miss is not an error.
	GetEmbeddings(ctx context.Context, model string, texts []string) ([][]float32, error)

	// PutEmbeddings stores vectors[i] as the embedding of texts[i].
	// Empty vectors are skipped.
	PutEmbeddings(ctx context.Context, model string, texts []string, vectors [][]float32) error

	// Close closes the storage backend and releases resources.
	Close() error
}
