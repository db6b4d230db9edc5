//go:build !cgo

package fastembed

import "github.com/poiesic/sectionrank/ai"

// NewProvider returns ErrNotAvailable when cgo is not available.
func NewProvider(config *ai.Config) (ai.Provider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if _, _, err := resolveModel(config.EmbeddingModel); err != nil {
		return nil, err
	}
	return nil, ErrNotAvailable
}
