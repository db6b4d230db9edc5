package scoring

import (
	"context"
	"fmt"
	"log/slog"
	"math"

	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/workers"
)

// ProbabilisticScorer ranks sections with Okapi BM25:
//
//	score(s) = Σ w(t) · idf(t) · tf·(k1+1) / (tf + k1·(1 - b + b·|s|/avgdl))
//	idf(t)   = ln(1 + (N - df + 0.5) / (df + 0.5))
//
// where w(t) is the query weight of term t. Terms absent from the corpus
// contribute nothing. Raw scores are min-max rescaled across the job, so they
// are comparable only within one job.
type ProbabilisticScorer struct {
	k1     float64
	b      float64
	pool   *workers.Pool
	logger *slog.Logger
}

var _ Scorer = (*ProbabilisticScorer)(nil)

// ProbabilisticOption configures a ProbabilisticScorer.
type ProbabilisticOption func(*ProbabilisticScorer) error

// WithParameters sets the BM25 saturation (k1) and length normalization (b)
// parameters. Defaults are 1.5 and 0.75.
func WithParameters(k1, b float64) ProbabilisticOption {
	return func(s *ProbabilisticScorer) error {
		if k1 < 0 || b < 0 || b > 1 {
			return fmt.Errorf("%w: bm25 k1=%g b=%g", core.ErrInvalidConfig, k1, b)
		}
		s.k1 = k1
		s.b = b
		return nil
	}
}

// WithProbabilisticPool scores sections on pool. Default is inline.
func WithProbabilisticPool(pool *workers.Pool) ProbabilisticOption {
	return func(s *ProbabilisticScorer) error {
		s.pool = pool
		return nil
	}
}

// WithProbabilisticLogger sets a custom logger.
// Default is slog.Default().
func WithProbabilisticLogger(logger *slog.Logger) ProbabilisticOption {
	return func(s *ProbabilisticScorer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewProbabilisticScorer creates a BM25 scorer.
func NewProbabilisticScorer(opts ...ProbabilisticOption) (*ProbabilisticScorer, error) {
	defaults := core.DefaultConfig()
	s := &ProbabilisticScorer{
		k1:     defaults.BM25K1,
		b:      defaults.BM25B,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "bm25-scorer")
	return s, nil
}

// Name implements Scorer.
func (s *ProbabilisticScorer) Name() string {
	return NameProbabilistic
}

type weightedTerm struct {
	weight float64
	idf    float64
	term   string
}

// Score implements Scorer.
func (s *ProbabilisticScorer) Score(ctx context.Context, in *Input) (*Result, error) {
	if err := validateInput(in, true); err != nil {
		return nil, err
	}

	res := &Result{Scores: make([]float64, len(in.Sections))}
	if len(in.Sections) == 0 {
		return res, nil
	}

	n := float64(in.Stats.Len())
	terms := make([]weightedTerm, 0, len(in.Query.Order))
	for _, term := range in.Query.Order {
		df := in.Stats.DocumentFrequency(term)
		if df == 0 {
			continue
		}
		idf := math.Log(1 + (n-float64(df)+0.5)/(float64(df)+0.5))
		terms = append(terms, weightedTerm{weight: in.Query.Weight(term), idf: idf, term: term})
	}
	if len(terms) == 0 {
		s.logger.Debug("no query term occurs in corpus")
		return res, nil
	}

	avgdl := in.Stats.AverageLength()
	err := s.pool.ForEach(ctx, len(in.Sections), func(i int) {
		lengthRatio := 1.0
		if avgdl > 0 {
			lengthRatio = float64(in.Stats.Length(i)) / avgdl
		}
		norm := s.k1 * (1 - s.b + s.b*lengthRatio)

		var score float64
		for _, t := range terms {
			tf := float64(in.Stats.TermFrequency(i, t.term))
			if tf == 0 {
				continue
			}
			score += t.weight * t.idf * tf * (s.k1 + 1) / (tf + norm)
		}
		res.Scores[i] = score
	})
	if err != nil {
		return nil, err
	}

	MinMax(res.Scores)
	return res, nil
}
