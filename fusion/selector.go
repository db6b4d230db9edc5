package fusion

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/text"
)

// Selector picks the final top-N from ranked records.
type Selector struct {
	topN           int
	maxPerDocument int
	mustHave       []string
	tokenizer      text.Tokenizer
	logger         *slog.Logger
}

// Option configures a Selector.
type Option func(*Selector) error

// WithTopN sets the number of sections to select.
// Default is core.DefaultConfig().TopN.
func WithTopN(n int) Option {
	return func(s *Selector) error {
		if n <= 0 {
			return fmt.Errorf("%w: top-n %d", core.ErrInvalidConfig, n)
		}
		s.topN = n
		return nil
	}
}

// WithMaxPerDocument caps the sections selected from any one document.
// Zero, the default, means no cap.
func WithMaxPerDocument(n int) Option {
	return func(s *Selector) error {
		if n < 0 {
			return fmt.Errorf("%w: max sections per document %d", core.ErrInvalidConfig, n)
		}
		s.maxPerDocument = n
		return nil
	}
}

// WithMustHave keeps only sections containing at least one of the given
// normalized phrases. Sections are tokenized with tokenizer, which must be
// the one the phrases were normalized with. No phrases means no filtering.
func WithMustHave(phrases []string, tokenizer text.Tokenizer) Option {
	return func(s *Selector) error {
		if len(phrases) > 0 && tokenizer == nil {
			return ErrTokenizerRequired
		}
		s.mustHave = phrases
		s.tokenizer = tokenizer
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Selector) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSelector creates a selector.
func NewSelector(opts ...Option) (*Selector, error) {
	s := &Selector{
		topN:   core.DefaultConfig().TopN,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "selector")
	return s, nil
}

// Select ranks records and returns up to topN of them with Rank set to
// their 1-based position. Fewer candidates than topN is not an error.
//
// When must-have filtering would remove every candidate it is skipped, so a
// phrase absent from the corpus never empties the result.
func (s *Selector) Select(records []*core.ScoreRecord) []*core.ScoreRecord {
	ranked := make([]*core.ScoreRecord, len(records))
	copy(ranked, records)
	Rank(ranked)

	if len(s.mustHave) > 0 {
		if filtered := s.filterMustHave(ranked); len(filtered) > 0 {
			ranked = filtered
		} else {
			s.logger.Debug("no section contains a must-have phrase, not filtering", "phrases", len(s.mustHave))
		}
	}

	selected := make([]*core.ScoreRecord, 0, min(s.topN, len(ranked)))
	perDocument := make(map[*core.Document]int)
	for _, r := range ranked {
		if len(selected) == s.topN {
			break
		}
		if s.maxPerDocument > 0 {
			if perDocument[r.Section.Document] == s.maxPerDocument {
				continue
			}
			perDocument[r.Section.Document]++
		}
		r.Rank = len(selected) + 1
		selected = append(selected, r)
	}
	return selected
}

func (s *Selector) filterMustHave(ranked []*core.ScoreRecord) []*core.ScoreRecord {
	var kept []*core.ScoreRecord
	for _, r := range ranked {
		if s.containsAny(r.Section) {
			kept = append(kept, r)
		}
	}
	return kept
}

func (s *Selector) containsAny(section *core.Section) bool {
	tokens := append(s.tokenizer.Tokens(section.Title), s.tokenizer.Tokens(section.Text)...)
	padded := " " + strings.Join(tokens, " ") + " "
	for _, phrase := range s.mustHave {
		if strings.Contains(padded, " "+phrase+" ") {
			return true
		}
	}
	return false
}
