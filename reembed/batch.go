package reembed

import (
	"context"
	"fmt"

	"github.com/poiesic/sectionrank/ai"
)

// BatchProcessor embeds one batch of texts, retrying failed calls.
type BatchProcessor struct {
	embedder ai.Embedder
	retry    ai.RetryPolicy
}

// NewBatchProcessor creates a new batch processor.
func NewBatchProcessor(embedder ai.Embedder, retry ai.RetryPolicy) *BatchProcessor {
	return &BatchProcessor{
		embedder: embedder,
		retry:    retry,
	}
}

// Process embeds texts. With a caching embedder the vectors land in the
// cache; they are not returned.
func (bp *BatchProcessor) Process(ctx context.Context, texts []string) error {
	if len(texts) == 0 {
		return nil
	}

	embeddings, err := ai.Retry(ctx, bp.retry, func(ctx context.Context) ([][]float32, error) {
		return bp.embedder.EmbedTexts(ctx, texts)
	})
	if err != nil {
		return fmt.Errorf("failed to generate embeddings after %d attempts: %w", bp.retry.MaxAttempts, err)
	}

	if len(embeddings) != len(texts) {
		return fmt.Errorf("%w: expected %d, got %d", ai.ErrEmbeddingCount, len(texts), len(embeddings))
	}
	return nil
}
