package ai

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/sectionrank/storage"
)

// CachingEmbedder serves embeddings from a storage.EmbeddingCache and only
// calls the wrapped embedder for misses. Cache failures never fail a call;
// they fall through to the embedder.
type CachingEmbedder struct {
	embedder Embedder
	cache    storage.EmbeddingCache
	model    string
	logger   *slog.Logger
}

var _ Embedder = (*CachingEmbedder)(nil)

// NewCachingEmbedder wraps embedder with cache. Entries are keyed by model.
func NewCachingEmbedder(embedder Embedder, cache storage.EmbeddingCache, model string) (*CachingEmbedder, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if cache == nil {
		return nil, ErrCacheRequired
	}
	return &CachingEmbedder{
		embedder: embedder,
		cache:    cache,
		model:    model,
		logger:   slog.Default().With("component", "caching-embedder"),
	}, nil
}

// EmbedText implements Embedder. Single texts are queries, which some models
// embed differently from passages, so they bypass the cache.
func (c *CachingEmbedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	return c.embedder.EmbedText(ctx, text)
}

// EmbedTexts implements Embedder.
func (c *CachingEmbedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	cached, err := c.cache.GetEmbeddings(ctx, c.model, texts)
	if err != nil {
		c.logger.Warn("embedding cache read failed", "err", err)
		cached = make([][]float32, len(texts))
	}

	var missIdx []int
	var missTexts []string
	for i, v := range cached {
		if len(v) == 0 {
			missIdx = append(missIdx, i)
			missTexts = append(missTexts, texts[i])
		}
	}
	if len(missTexts) == 0 {
		return cached, nil
	}

	computed, err := c.embedder.EmbedTexts(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(computed) != len(missTexts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrEmbeddingCount, len(computed), len(missTexts))
	}

	for j, i := range missIdx {
		cached[i] = computed[j]
	}
	if err := c.cache.PutEmbeddings(ctx, c.model, missTexts, computed); err != nil {
		c.logger.Warn("embedding cache write failed", "err", err)
	}

	return cached, nil
}
