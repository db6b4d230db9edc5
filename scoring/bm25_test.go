package scoring

import (
	"context"
	"testing"

	"github.com/poiesic/sectionrank/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProbabilisticScorer_MinMaxAcrossJob(t *testing.T) {
	in := newInput(t, "Travel Planner", "Plan a trip for a group of friends", newSections(tripSections...))
	scorer, err := NewProbabilisticScorer()
	require.NoError(t, err)
	assert.Equal(t, NameProbabilistic, scorer.Name())

	res, err := scorer.Score(context.Background(), in)
	require.NoError(t, err)
	require.Len(t, res.Scores, 3)

	assert.Equal(t, 1.0, res.Scores[0], "best section maps to 1")
	assert.Equal(t, 0.0, res.Scores[1], "worst section maps to 0")
	assert.Greater(t, res.Scores[2], 0.0)
	assert.Less(t, res.Scores[2], 1.0)
}

func TestProbabilisticScorer_LengthNormalization(t *testing.T) {
	in := newInput(t, "", "budget", newSections(
		"budget hotel",
		"budget hotel museum garden castle river bridge market tower harbor",
	))
	scorer, err := NewProbabilisticScorer()
	require.NoError(t, err)

	res, err := scorer.Score(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 0}, res.Scores, "shorter section with the same term frequency ranks higher")

	flat, err := NewProbabilisticScorer(WithParameters(1.5, 0))
	require.NoError(t, err)
	res, err = flat.Score(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []float64{1, 1}, res.Scores, "b=0 disables length normalization")
}

func TestProbabilisticScorer_AbsentTermsContributeNothing(t *testing.T) {
	in := newInput(t, "Astronomer", "Catalogue distant galaxies", newSections(tripSections...))
	scorer, err := NewProbabilisticScorer()
	require.NoError(t, err)

	res, err := scorer.Score(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 0, 0}, res.Scores)
}

func TestProbabilisticScorer_SingleSection(t *testing.T) {
	in := newInput(t, "", "lasagna", newSections(tripSections[1]))
	scorer, err := NewProbabilisticScorer()
	require.NoError(t, err)

	res, err := scorer.Score(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, []float64{1}, res.Scores)
}

func TestProbabilisticScorer_Options(t *testing.T) {
	for _, p := range [][2]float64{{-1, 0.75}, {1.5, -0.1}, {1.5, 1.1}} {
		_, err := NewProbabilisticScorer(WithParameters(p[0], p[1]))
		assert.ErrorIs(t, err, core.ErrInvalidConfig, "k1=%v b=%v", p[0], p[1])
	}

	_, err := NewProbabilisticScorer(WithProbabilisticLogger(nil))
	assert.NoError(t, err)
}

func TestProbabilisticScorer_RequiresStats(t *testing.T) {
	scorer, err := NewProbabilisticScorer()
	require.NoError(t, err)

	_, err = scorer.Score(context.Background(), &Input{Query: &core.Query{}})
	assert.ErrorIs(t, err, ErrStatsRequired)
}
