package corpus

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/text"
	"github.com/poiesic/sectionrank/workers"
)

// ErrTokenizerRequired is returned when a tokenizer is not provided.
var ErrTokenizerRequired = errors.New("tokenizer required")

// Stats holds the term statistics of one job's candidate sections.
// Section i of the statistics is sections[i] of the Build input.
type Stats struct {
	minN, maxN int
	counts     []map[string]int // per-section n-gram counts, n in [1, maxN]
	lengths    []int            // per-section unigram count
	df         map[string]int
	total      map[string]int
	firstSeen  map[string]int
	terms      []string
	avgLength  float64
}

type buildOptions struct {
	minN, maxN int
	pool       *workers.Pool
	logger     *slog.Logger
}

// Option configures Build.
type Option func(*buildOptions)

// WithNGramRange sets the n-gram range of the lexical vocabulary.
// Default is 1 through 4.
func WithNGramRange(minN, maxN int) Option {
	return func(o *buildOptions) {
		o.minN = minN
		o.maxN = maxN
	}
}

// WithPool tokenizes sections on the given pool. Default is inline.
func WithPool(pool *workers.Pool) Option {
	return func(o *buildOptions) {
		o.pool = pool
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *buildOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Build tokenizes every section and aggregates the job's statistics.
// Tokenization runs in parallel; aggregation is sequential in section order,
// so first-seen term order does not depend on scheduling.
func Build(ctx context.Context, sections []*core.Section, tokenizer text.Tokenizer, opts ...Option) (*Stats, error) {
	if tokenizer == nil {
		return nil, ErrTokenizerRequired
	}

	o := &buildOptions{minN: 1, maxN: 4, logger: slog.Default()}
	for _, opt := range opts {
		opt(o)
	}
	if o.minN < 1 || o.maxN < o.minN {
		return nil, fmt.Errorf("%w: invalid n-gram range %d-%d", core.ErrInvalidConfig, o.minN, o.maxN)
	}

	s := &Stats{
		minN:      o.minN,
		maxN:      o.maxN,
		counts:    make([]map[string]int, len(sections)),
		lengths:   make([]int, len(sections)),
		df:        make(map[string]int),
		total:     make(map[string]int),
		firstSeen: make(map[string]int),
	}

	grams := make([][]string, len(sections))
	err := o.pool.ForEach(ctx, len(sections), func(i int) {
		title := tokenizer.Tokens(sections[i].Title)
		body := tokenizer.Tokens(sections[i].Text)
		s.lengths[i] = len(title) + len(body)
		grams[i] = append(text.NGrams(title, 1, o.maxN), text.NGrams(body, 1, o.maxN)...)
	})
	if err != nil {
		return nil, err
	}

	var totalLength int
	for i, sectionGrams := range grams {
		counts := make(map[string]int, len(sectionGrams))
		for _, g := range sectionGrams {
			if _, seen := s.firstSeen[g]; !seen {
				s.firstSeen[g] = len(s.terms)
				s.terms = append(s.terms, g)
			}
			counts[g]++
			s.total[g]++
		}
		for g := range counts {
			s.df[g]++
		}
		s.counts[i] = counts
		totalLength += s.lengths[i]
	}
	if len(sections) > 0 {
		s.avgLength = float64(totalLength) / float64(len(sections))
	}

	o.logger.Debug("corpus statistics built",
		"component", "corpus",
		"sections", len(sections),
		"terms", len(s.terms),
		"avg_length", s.avgLength)

	return s, nil
}

// Len returns the number of sections.
func (s *Stats) Len() int {
	return len(s.counts)
}

// NGramRange returns the configured n-gram range of the vocabulary.
func (s *Stats) NGramRange() (minN, maxN int) {
	return s.minN, s.maxN
}

// TermFrequency returns how often term occurs in section i.
func (s *Stats) TermFrequency(i int, term string) int {
	return s.counts[i][term]
}

// Counts returns the n-gram counts of section i. Callers must not modify it.
func (s *Stats) Counts(i int) map[string]int {
	return s.counts[i]
}

// DocumentFrequency returns the number of sections containing term.
func (s *Stats) DocumentFrequency(term string) int {
	return s.df[term]
}

// TotalFrequency returns the number of occurrences of term across all sections.
func (s *Stats) TotalFrequency(term string) int {
	return s.total[term]
}

// Length returns the number of unigram tokens in section i.
func (s *Stats) Length(i int) int {
	return s.lengths[i]
}

// AverageLength returns the mean unigram length over all sections.
func (s *Stats) AverageLength() float64 {
	return s.avgLength
}

// Terms returns every distinct n-gram in first-seen order.
func (s *Stats) Terms() []string {
	return s.terms
}

// Vocabulary returns up to size n-grams within the configured range, ranked
// by total frequency with ties broken by first-seen order, and each term's
// index in the returned slice.
func (s *Stats) Vocabulary(size int) ([]string, map[string]int) {
	candidates := make([]string, 0, len(s.terms))
	for _, term := range s.terms {
		n := strings.Count(term, " ") + 1
		if n >= s.minN && n <= s.maxN {
			candidates = append(candidates, term)
		}
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		fa, fb := s.total[candidates[a]], s.total[candidates[b]]
		if fa != fb {
			return fa > fb
		}
		return s.firstSeen[candidates[a]] < s.firstSeen[candidates[b]]
	})

	if size >= 0 && len(candidates) > size {
		candidates = candidates[:size]
	}

	index := make(map[string]int, len(candidates))
	for i, term := range candidates {
		index[term] = i
	}
	return candidates, index
}
