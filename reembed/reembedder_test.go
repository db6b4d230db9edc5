package reembed

import (
	"bytes"
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/sectionrank/ai"
	"github.com/poiesic/sectionrank/ai/mock"
	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/scoring"
	"github.com/poiesic/sectionrank/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSections(n int) []*core.Section {
	sections := make([]*core.Section, n)
	for i := range sections {
		sections[i] = &core.Section{
			Title: "Section Title",
			Text:  string(rune('a'+i)) + " body text for embedding",
		}
	}
	return sections
}

func fastConfig(batchSize int) *Config {
	return &Config{BatchSize: batchSize, ReportInterval: 1, MaxRetries: 2, RetryDelay: time.Millisecond}
}

func TestReembedder_Run(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	var progress bytes.Buffer
	r, err := NewReembedder(embedder, fastConfig(2), &progress)
	require.NoError(t, err)

	sections := testSections(5)
	summary, err := r.Run(context.Background(), sections)
	require.NoError(t, err)

	assert.Equal(t, 5, summary.Sections)
	assert.Equal(t, 3, summary.Batches)
	assert.Zero(t, summary.Failed)
	assert.Equal(t, 3, embedder.BatchCallCount())

	want := make([]string, len(sections))
	for i, s := range sections {
		want[i] = scoring.EmbeddingText(s)
	}
	assert.Equal(t, want, embedder.Embedded())
	assert.Contains(t, progress.String(), "5/5 sections")
	assert.Contains(t, progress.String(), "Reembedding complete")
}

func TestReembedder_DeduplicatesTexts(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	r, err := NewReembedder(embedder, fastConfig(10), nil)
	require.NoError(t, err)

	sections := testSections(2)
	sections = append(sections, &core.Section{Title: sections[0].Title, Text: sections[0].Text})

	summary, err := r.Run(context.Background(), sections)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Sections)
	assert.Len(t, embedder.Embedded(), 2)
}

func TestReembedder_FillsCache(t *testing.T) {
	cache, err := badger.NewMemoryEmbeddingCache()
	require.NoError(t, err)
	defer cache.Close()

	embedder := mock.NewMockEmbedder()
	caching, err := ai.NewCachingEmbedder(embedder, cache, mock.MockModel)
	require.NoError(t, err)

	r, err := NewReembedder(caching, fastConfig(4), nil)
	require.NoError(t, err)
	sections := testSections(6)
	_, err = r.Run(context.Background(), sections)
	require.NoError(t, err)
	calls := embedder.BatchCallCount()

	texts := make([]string, len(sections))
	for i, s := range sections {
		texts[i] = scoring.EmbeddingText(s)
	}
	vectors, err := caching.EmbedTexts(context.Background(), texts)
	require.NoError(t, err)
	assert.Len(t, vectors, 6)
	assert.Equal(t, calls, embedder.BatchCallCount(), "every text is served from the cache")
}

func TestReembedder_FailedBatchIsCounted(t *testing.T) {
	var calls atomic.Int32
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) <= 2 {
			return nil, errors.New("model unavailable")
		}
		out := make([][]float32, len(texts))
		for i, text := range texts {
			out[i] = mock.GenerateDeterministicVector(text, mock.DefaultDimensions)
		}
		return out, nil
	})
	r, err := NewReembedder(embedder, fastConfig(3), nil)
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), testSections(6))
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Batches)
	assert.Equal(t, 1, summary.Failed, "first batch fails both attempts")
}

func TestReembedder_CountMismatch(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(context.Context, []string) ([][]float32, error) {
		return [][]float32{{1}}, nil
	})
	bp := NewBatchProcessor(embedder, ai.RetryPolicy{MaxAttempts: 1})

	err := bp.Process(context.Background(), []string{"a", "b"})
	assert.ErrorIs(t, err, ai.ErrEmbeddingCount)
	assert.NoError(t, bp.Process(context.Background(), nil))
}

func TestReembedder_Cancelled(t *testing.T) {
	r, err := NewReembedder(mock.NewMockEmbedder(), fastConfig(1), nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	summary, err := r.Run(ctx, testSections(3))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, summary.Batches)
}

func TestReembedder_NoSections(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	r, err := NewReembedder(embedder, nil, nil)
	require.NoError(t, err)

	summary, err := r.Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, summary.Sections)
	assert.Zero(t, embedder.CallCount())
}

func TestNewReembedder_Validation(t *testing.T) {
	_, err := NewReembedder(nil, nil, nil)
	assert.ErrorIs(t, err, ai.ErrEmbedderRequired)

	embedder := mock.NewMockEmbedder()
	_, err = NewReembedder(embedder, &Config{BatchSize: 0, ReportInterval: 1, MaxRetries: 1}, nil)
	assert.ErrorIs(t, err, ErrInvalidBatchSize)
	_, err = NewReembedder(embedder, &Config{BatchSize: 1, ReportInterval: 0, MaxRetries: 1}, nil)
	assert.ErrorIs(t, err, ErrInvalidReportInterval)
	_, err = NewReembedder(embedder, &Config{BatchSize: 1, ReportInterval: 1, MaxRetries: 0}, nil)
	assert.ErrorIs(t, err, ai.ErrInvalidMaxAttempts)
}
