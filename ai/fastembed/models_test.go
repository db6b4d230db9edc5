package fastembed

import (
	"testing"

	"github.com/poiesic/sectionrank/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveModel(t *testing.T) {
	tests := []struct {
		name    string
		wantID  string
		wantDim int
	}{
		{"BAAI/bge-small-en-v1.5", "fast-bge-small-en-v1.5", 384},
		{"fast-bge-base-en-v1.5", "fast-bge-base-en-v1.5", 768},
		{"sentence-transformers/all-MiniLM-L6-v2", "fast-all-MiniLM-L6-v2", 384},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, dim, err := resolveModel(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantDim, dim)
		})
	}
}

func TestResolveModel_Unsupported(t *testing.T) {
	_, _, err := resolveModel("text-embedding-3-small")
	assert.ErrorIs(t, err, ai.ErrInvalidConfig)
}

func TestDefaultModelIsSupported(t *testing.T) {
	_, _, err := resolveModel(ai.DefaultFastEmbedModel)
	assert.NoError(t, err)
}

func TestNewProvider_RejectsUnsupportedModel(t *testing.T) {
	_, err := NewProvider(ai.NewConfig(ai.WithEmbeddingModel("unknown-model")))
	assert.ErrorIs(t, err, ai.ErrInvalidConfig)
}
