package scoring

import (
	"context"
	"log/slog"
	"maps"
	"math"
	"slices"

	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/workers"
)

// LexicalScorer ranks sections by TF-IDF cosine similarity between the query
// and each section over the job's n-gram vocabulary.
//
// Term weights are raw term frequency times smoothed inverse document
// frequency, ln((1+N)/(1+df)) + 1. Query terms outside the vocabulary are
// ignored, so a query sharing no vocabulary with a section scores 0.
type LexicalScorer struct {
	vocabularySize int
	pool           *workers.Pool
	logger         *slog.Logger
}

var _ Scorer = (*LexicalScorer)(nil)

// LexicalOption configures a LexicalScorer.
type LexicalOption func(*LexicalScorer) error

// WithVocabularySize caps the vocabulary at the n most frequent n-grams.
// Default is core.DefaultConfig().VocabularySize.
func WithVocabularySize(n int) LexicalOption {
	return func(s *LexicalScorer) error {
		if n <= 0 {
			return core.ErrInvalidConfig
		}
		s.vocabularySize = n
		return nil
	}
}

// WithLexicalPool scores sections on pool. Default is inline.
func WithLexicalPool(pool *workers.Pool) LexicalOption {
	return func(s *LexicalScorer) error {
		s.pool = pool
		return nil
	}
}

// WithLexicalLogger sets a custom logger.
// Default is slog.Default().
func WithLexicalLogger(logger *slog.Logger) LexicalOption {
	return func(s *LexicalScorer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewLexicalScorer creates a TF-IDF scorer.
func NewLexicalScorer(opts ...LexicalOption) (*LexicalScorer, error) {
	s := &LexicalScorer{
		vocabularySize: core.DefaultConfig().VocabularySize,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "lexical-scorer")
	return s, nil
}

// Name implements Scorer.
func (s *LexicalScorer) Name() string {
	return NameLexical
}

// Score implements Scorer.
func (s *LexicalScorer) Score(ctx context.Context, in *Input) (*Result, error) {
	if err := validateInput(in, true); err != nil {
		return nil, err
	}

	res := &Result{Scores: make([]float64, len(in.Sections))}
	if len(in.Sections) == 0 {
		return res, nil
	}

	vocabulary, index := in.Stats.Vocabulary(s.vocabularySize)
	n := float64(in.Stats.Len())
	idf := make([]float64, len(vocabulary))
	for i, term := range vocabulary {
		df := float64(in.Stats.DocumentFrequency(term))
		idf[i] = math.Log((1+n)/(1+df)) + 1
	}

	// Weights are summed in vocabulary index order so that identical
	// sections always get bit-identical scores.
	queryVec := make(map[int]float64, len(in.Query.Order))
	for _, term := range in.Query.Order {
		if j, ok := index[term]; ok {
			queryVec[j] += in.Query.Weight(term) * idf[j]
		}
	}
	var queryNorm float64
	for _, j := range sortedKeys(queryVec) {
		queryNorm += queryVec[j] * queryVec[j]
	}
	queryNorm = math.Sqrt(queryNorm)
	if queryNorm == 0 {
		s.logger.Debug("query shares no terms with vocabulary", "vocabulary", len(vocabulary))
		return res, nil
	}

	err := s.pool.ForEach(ctx, len(in.Sections), func(i int) {
		sectionVec := make(map[int]float64)
		for term, tf := range in.Stats.Counts(i) {
			if j, ok := index[term]; ok {
				sectionVec[j] = float64(tf) * idf[j]
			}
		}
		var dot, sectionNorm float64
		for _, j := range sortedKeys(sectionVec) {
			w := sectionVec[j]
			sectionNorm += w * w
			dot += w * queryVec[j]
		}
		if sectionNorm == 0 {
			return
		}
		res.Scores[i] = Clamp01(dot / (math.Sqrt(sectionNorm) * queryNorm))
	})
	if err != nil {
		return nil, err
	}

	return res, nil
}

func sortedKeys(m map[int]float64) []int {
	keys := slices.Collect(maps.Keys(m))
	slices.Sort(keys)
	return keys
}
