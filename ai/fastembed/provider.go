//go:build cgo

package fastembed

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	fastembed "github.com/anush008/fastembed-go"
	"github.com/poiesic/sectionrank/ai"
)

// Provider implements ai.Provider with a local ONNX model.
type Provider struct {
	model     *fastembed.FlagEmbedding
	modelName string
	dimension int
	mu        sync.RWMutex
	logger    *slog.Logger
}

var _ ai.Embedder = (*Provider)(nil)

// NewProvider loads the configured model, downloading it on first use.
//
// Returns ai.Provider interface to enforce abstraction.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	id, dimension, err := resolveModel(config.EmbeddingModel)
	if err != nil {
		return nil, err
	}

	cacheDir := config.ModelCacheDir
	if cacheDir == "" {
		cacheDir = filepath.Join(".", "local_cache")
	}
	showProgress := false

	model, err := fastembed.NewFlagEmbedding(&fastembed.InitOptions{
		Model:                fastembed.EmbeddingModel(id),
		CacheDir:             cacheDir,
		MaxLength:            config.MaxLength,
		ShowDownloadProgress: &showProgress,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing fastembed: %w", err)
	}

	return &Provider{
		model:     model,
		modelName: config.EmbeddingModel,
		dimension: dimension,
		logger:    slog.Default().With("component", "fastembed", "model", config.EmbeddingModel),
	}, nil
}

// Embedder returns the provider itself.
func (p *Provider) Embedder() ai.Embedder {
	return p
}

// Model returns the configured model name.
func (p *Provider) Model() string {
	return p.modelName
}

// Dimension returns the embedding dimension of the model.
func (p *Provider) Dimension() int {
	return p.dimension
}

// EmbedText embeds text as a query ("query: " prefix).
func (p *Provider) EmbedText(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	vector, err := p.model.QueryEmbed(text)
	if err != nil {
		p.logger.Error("failed to embed query", "err", err)
		return nil, err
	}
	return vector, nil
}

// EmbedTexts embeds texts as passages ("passage: " prefix).
func (p *Provider) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p.mu.RLock()
	defer p.mu.RUnlock()

	vectors, err := p.model.PassageEmbed(texts, passageBatchSize)
	if err != nil {
		p.logger.Error("failed to embed passages", "count", len(texts), "err", err)
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d, want %d", ai.ErrEmbeddingCount, len(vectors), len(texts))
	}
	return vectors, nil
}

// Close releases the ONNX runtime session.
func (p *Provider) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.model == nil {
		return nil
	}
	err := p.model.Destroy()
	p.model = nil
	return err
}
