package scoring

import (
	"context"
	"math"

	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/corpus"
)

// Scorer names.
const (
	NameLexical       = "lexical"
	NameProbabilistic = "probabilistic"
	NameSemantic      = "semantic"
)

// Input is the read-only view a scorer works on.
type Input struct {
	Query    *core.Query
	Sections []*core.Section
	Stats    *corpus.Stats
}

// Result holds one scorer's output for a job.
type Result struct {
	// Scores[i] is the normalized score of Sections[i], in [0,1].
	Scores []float64

	// Degraded[i] is set when Scores[i] is a substitute rather than a measurement.
	// Nil when no section degraded.
	Degraded []bool

	// Warnings are recoverable problems to surface in the job metadata.
	Warnings []string
}

// Scorer is one relevance signal.
type Scorer interface {
	// Name identifies the signal in logs, metrics and warnings.
	Name() string

	// Score returns a score in [0,1] for every section of in, in order.
	// Errors are reserved for invalid input or cancellation; recoverable
	// failures degrade scores and are reported in Result.Warnings.
	Score(ctx context.Context, in *Input) (*Result, error)
}

func validateInput(in *Input, needStats bool) error {
	if in == nil || in.Query == nil {
		return ErrQueryRequired
	}
	if needStats && in.Stats == nil {
		return ErrStatsRequired
	}
	return nil
}

// Clamp01 limits v to [0,1]. NaN becomes 0.
func Clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}

// MinMax rescales values into [0,1] in place, mapping the minimum to 0 and
// the maximum to 1. When every value is equal the result is 1 for a positive
// value and 0 otherwise, so uniformly matching sections keep full credit and
// uniformly unmatched ones get none.
func MinMax(values []float64) {
	if len(values) == 0 {
		return
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if hi == lo {
		fill := 0.0
		if hi > 0 {
			fill = 1.0
		}
		for i := range values {
			values[i] = fill
		}
		return
	}

	span := hi - lo
	for i, v := range values {
		values[i] = Clamp01((v - lo) / span)
	}
}

// Cosine returns the cosine similarity of two vectors in float64 precision.
// Vectors of different lengths or with zero norm have similarity 0.
func Cosine(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func norm(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}
