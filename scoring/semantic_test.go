package scoring

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/poiesic/sectionrank/ai"
	"github.com/poiesic/sectionrank/ai/mock"
	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/workers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errModelDown = errors.New("model down")

func newSemanticScorer(t *testing.T, embedder ai.Embedder, opts ...SemanticOption) *SemanticScorer {
	t.Helper()
	opts = append([]SemanticOption{
		WithRetryPolicy(ai.RetryPolicy{MaxAttempts: 1}),
		WithSectionTimeout(time.Second),
	}, opts...)
	scorer, err := NewSemanticScorer(embedder, opts...)
	require.NoError(t, err)
	return scorer
}

// failingTexts fails any batch containing a text with marker and embeds the
// rest deterministically.
func failingTexts(marker string) func(context.Context, []string) ([][]float32, error) {
	return func(_ context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			if strings.Contains(text, marker) {
				return nil, errModelDown
			}
			vectors[i] = mock.GenerateDeterministicVector(text, mock.DefaultDimensions)
		}
		return vectors, nil
	}
}

func TestSemanticScorer_Scores(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	in := newInput(t, "Travel Planner", "Plan a trip", newSections(tripSections...))
	scorer := newSemanticScorer(t, embedder)
	assert.Equal(t, NameSemantic, scorer.Name())

	res, err := scorer.Score(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, res.Scores, 3)
	for _, s := range res.Scores {
		assert.GreaterOrEqual(t, s, 0.0)
		assert.LessOrEqual(t, s, 1.0)
	}
	assert.Nil(t, res.Degraded)
	assert.Empty(t, res.Warnings)

	// One query call plus one batch.
	assert.Equal(t, 2, embedder.CallCount())
	assert.Equal(t, 1, embedder.BatchCallCount())
}

func TestSemanticScorer_IdenticalTextScoresOne(t *testing.T) {
	sections := newSections("Travel Planner. Plan a trip", tripSections[1])
	in := newInput(t, "Travel Planner", "Plan a trip", sections)
	require.Equal(t, sections[0].Text, in.Query.Text)

	res, err := newSemanticScorer(t, mock.NewMockEmbedder()).Score(context.Background(), in)
	require.NoError(t, err)
	assert.InDelta(t, 1.0, res.Scores[0], 1e-5)
	assert.Less(t, res.Scores[1], res.Scores[0])
}

func TestSemanticScorer_MatchesDirectCosine(t *testing.T) {
	in := newInput(t, "Travel Planner", "Plan a trip", newSections(tripSections...))
	res, err := newSemanticScorer(t, mock.NewMockEmbedder()).Score(context.Background(), in)
	require.NoError(t, err)

	queryVec := mock.GenerateDeterministicVector(in.Query.Text, mock.DefaultDimensions)
	for i, section := range in.Sections {
		vec := mock.GenerateDeterministicVector(EmbeddingText(section), mock.DefaultDimensions)
		assert.InDelta(t, (Cosine(queryVec, vec)+1)/2, res.Scores[i], 1e-5)
	}
}

func TestSemanticScorer_NilEmbedderDegradesAll(t *testing.T) {
	in := newInput(t, "Travel Planner", "Plan a trip", newSections(tripSections...))
	res, err := newSemanticScorer(t, nil).Score(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []float64{0, 0, 0}, res.Scores)
	assert.Equal(t, []bool{true, true, true}, res.Degraded)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], core.ErrScorerDegradation.Error())
}

func TestSemanticScorer_QueryFailureDegradesAll(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(func(context.Context, string) ([]float32, error) {
		return nil, errModelDown
	})
	in := newInput(t, "Travel Planner", "Plan a trip", newSections(tripSections...))

	res, err := newSemanticScorer(t, embedder).Score(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, res.Degraded)
	assert.Zero(t, embedder.BatchCallCount(), "sections are not embedded without a query vector")
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "model down")
}

func TestSemanticScorer_BatchFailureFallsBackPerSection(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		if len(texts) > 1 {
			return nil, errModelDown
		}
		return [][]float32{mock.GenerateDeterministicVector(texts[0], mock.DefaultDimensions)}, nil
	})
	in := newInput(t, "Travel Planner", "Plan a trip", newSections(tripSections...))

	res, err := newSemanticScorer(t, embedder, WithEmbedBatchSize(2)).Score(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, res.Degraded)
	assert.Empty(t, res.Warnings)

	// Batch [0,1] fails and is retried as two singles; batch [2] succeeds.
	assert.Equal(t, 4, embedder.BatchCallCount())
}

func TestSemanticScorer_FailedSectionGetsCorpusMean(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(failingTexts("lasagna"))
	in := newInput(t, "Travel Planner", "Plan a trip", newSections(tripSections...))

	res, err := newSemanticScorer(t, embedder).Score(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []bool{false, true, false}, res.Degraded)
	assert.InDelta(t, (res.Scores[0]+res.Scores[2])/2, res.Scores[1], 1e-12)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "1 of 3")
	assert.Contains(t, res.Warnings[0], "model down")
}

func TestSemanticScorer_CollectionFailureDegradesAll(t *testing.T) {
	in := newInput(t, "Travel Planner", "Plan a trip", newSections(tripSections...))
	scorer := newSemanticScorer(t, mock.NewMockEmbedder())
	scorer.search = func(context.Context, []float32, []chromem.Document) ([]chromem.Result, error) {
		return nil, errors.New("collection unavailable")
	}

	res, err := scorer.Score(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, res.Scores)
	assert.Equal(t, []bool{true, true, true}, res.Degraded)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], core.ErrScorerDegradation.Error())
	assert.Contains(t, res.Warnings[0], "collection unavailable")
}

func TestSemanticScorer_SectionMissingFromCollectionGetsCorpusMean(t *testing.T) {
	in := newInput(t, "Travel Planner", "Plan a trip", newSections(tripSections...))
	scorer := newSemanticScorer(t, mock.NewMockEmbedder())
	scorer.search = func(ctx context.Context, queryVec []float32, docs []chromem.Document) ([]chromem.Result, error) {
		results, err := scorer.query(ctx, queryVec, docs)
		if err != nil {
			return nil, err
		}
		kept := results[:0]
		for _, r := range results {
			if r.ID != "1" {
				kept = append(kept, r)
			}
		}
		return kept, nil
	}

	res, err := scorer.Score(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, res.Degraded)
	assert.InDelta(t, (res.Scores[0]+res.Scores[2])/2, res.Scores[1], 1e-12)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "missing from vector collection results")
}

func TestSemanticScorer_TimeoutDegradesSection(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		for _, text := range texts {
			if strings.Contains(text, "Nightlife") {
				<-ctx.Done()
				return nil, ctx.Err()
			}
		}
		return failingTexts("\x00")(ctx, texts)
	})
	in := newInput(t, "Travel Planner", "Plan a trip", newSections(tripSections...))

	scorer := newSemanticScorer(t, embedder, WithSectionTimeout(20*time.Millisecond))
	res, err := scorer.Score(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, []bool{false, false, true}, res.Degraded)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], ErrEmbeddingTimeout.Error())
}

func TestSemanticScorer_DimensionMismatchDegrades(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			dim := mock.DefaultDimensions
			if strings.Contains(text, "lasagna") {
				dim = 8
			}
			vectors[i] = mock.GenerateDeterministicVector(text, dim)
		}
		return vectors, nil
	})
	in := newInput(t, "Travel Planner", "Plan a trip", newSections(tripSections...))

	res, err := newSemanticScorer(t, embedder).Score(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, res.Degraded)
	assert.Contains(t, res.Warnings[0], "dimension 8")
}

func TestSemanticScorer_ZeroVectorDegrades(t *testing.T) {
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(_ context.Context, texts []string) ([][]float32, error) {
		vectors := make([][]float32, len(texts))
		for i, text := range texts {
			vectors[i] = mock.GenerateDeterministicVector(text, mock.DefaultDimensions)
			if strings.Contains(text, "lasagna") {
				vectors[i] = make([]float32, mock.DefaultDimensions)
			}
		}
		return vectors, nil
	})
	in := newInput(t, "Travel Planner", "Plan a trip", newSections(tripSections...))

	res, err := newSemanticScorer(t, embedder).Score(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []bool{false, true, false}, res.Degraded)
}

func TestSemanticScorer_RetriesTransientFailure(t *testing.T) {
	var calls atomic.Int32
	embedder := mock.NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		if calls.Add(1) == 1 {
			return nil, errModelDown
		}
		return failingTexts("\x00")(ctx, texts)
	})
	in := newInput(t, "Travel Planner", "Plan a trip", newSections(tripSections...))

	scorer := newSemanticScorer(t, embedder, WithRetryPolicy(ai.RetryPolicy{MaxAttempts: 2, BaseDelay: time.Millisecond}))
	res, err := scorer.Score(context.Background(), in)
	require.NoError(t, err)
	assert.Nil(t, res.Degraded)
	assert.Equal(t, int32(2), calls.Load())
}

func TestSemanticScorer_ExpiredJobContextDegradesAll(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	in := newInput(t, "Travel Planner", "Plan a trip", newSections(tripSections...))

	res, err := newSemanticScorer(t, mock.NewMockEmbedder()).Score(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, []bool{true, true, true}, res.Degraded)
	assert.Equal(t, []float64{0, 0, 0}, res.Scores)
}

func TestSemanticScorer_PoolMatchesInline(t *testing.T) {
	bodies := make([]string, 10)
	for i := range bodies {
		bodies[i] = tripSections[i%len(tripSections)] + strings.Repeat(" again", i)
	}
	in := newInput(t, "Travel Planner", "Plan a trip", newSections(bodies...))

	pool, err := workers.New(4)
	require.NoError(t, err)
	defer pool.Release()

	inline, err := newSemanticScorer(t, mock.NewMockEmbedder(), WithEmbedBatchSize(3)).Score(context.Background(), in)
	require.NoError(t, err)
	pooled, err := newSemanticScorer(t, mock.NewMockEmbedder(), WithEmbedBatchSize(3), WithSemanticPool(pool)).Score(context.Background(), in)
	require.NoError(t, err)

	assert.InDeltaSlice(t, inline.Scores, pooled.Scores, 1e-9)
}

func TestSemanticScorer_Options(t *testing.T) {
	_, err := NewSemanticScorer(nil, WithEmbedBatchSize(0))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	_, err = NewSemanticScorer(nil, WithSectionTimeout(0))
	assert.ErrorIs(t, err, core.ErrInvalidConfig)

	_, err = NewSemanticScorer(nil, WithRetryPolicy(ai.RetryPolicy{}))
	assert.ErrorIs(t, err, ai.ErrInvalidMaxAttempts)
}

func TestCallWithTimeout(t *testing.T) {
	value, err := callWithTimeout(context.Background(), time.Second, func(context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 7, value)

	release := make(chan struct{})
	defer close(release)
	_, err = callWithTimeout(context.Background(), 10*time.Millisecond, func(context.Context) (int, error) {
		<-release
		return 0, nil
	})
	assert.ErrorIs(t, err, ErrEmbeddingTimeout)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
