package fusion

import (
	"fmt"
	"sort"

	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/scoring"
)

// Signals are the per-section outputs of the three scorers, index-aligned
// with the sections being fused.
type Signals struct {
	Lexical       []float64
	Probabilistic []float64
	Semantic      []float64

	// SemanticDegraded flags sections whose semantic score is a substitute. May be nil.
	SemanticDegraded []bool
}

// Fuse validates weights and builds one score record per section.
func Fuse(weights core.Weights, sections []*core.Section, signals Signals) ([]*core.ScoreRecord, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	named := []struct {
		name   string
		scores []float64
	}{
		{scoring.NameLexical, signals.Lexical},
		{scoring.NameProbabilistic, signals.Probabilistic},
		{scoring.NameSemantic, signals.Semantic},
	}
	for _, n := range named {
		if len(n.scores) != len(sections) {
			return nil, fmt.Errorf("%w: %s has %d, want %d", ErrScoreCount, n.name, len(n.scores), len(sections))
		}
	}

	records := make([]*core.ScoreRecord, len(sections))
	for i, section := range sections {
		r := &core.ScoreRecord{
			Section:       section,
			Lexical:       scoring.Clamp01(signals.Lexical[i]),
			Probabilistic: scoring.Clamp01(signals.Probabilistic[i]),
			Semantic:      scoring.Clamp01(signals.Semantic[i]),
		}
		if i < len(signals.SemanticDegraded) {
			r.SemanticDegraded = signals.SemanticDegraded[i]
		}
		r.Fused = scoring.Clamp01(weights.Lexical*r.Lexical +
			weights.Probabilistic*r.Probabilistic +
			weights.Semantic*r.Semantic)
		records[i] = r
	}
	return records, nil
}

// Rank sorts records in place from most to least relevant.
func Rank(records []*core.ScoreRecord) {
	sort.SliceStable(records, func(a, b int) bool {
		return Less(records[a], records[b])
	})
}

// Less reports whether a ranks before b: higher fused score, then higher
// semantic score, then earlier document, page and section order.
func Less(a, b *core.ScoreRecord) bool {
	if a.Fused != b.Fused {
		return a.Fused > b.Fused
	}
	if a.Semantic != b.Semantic {
		return a.Semantic > b.Semantic
	}
	return a.Section.Before(b.Section)
}
