package refine

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/text"
)

// Refiner extracts snippets of at most maxRunes runes.
type Refiner struct {
	maxRunes  int
	strategy  string
	tokenizer text.Tokenizer
	logger    *slog.Logger
}

// Option configures a Refiner.
type Option func(*Refiner) error

// WithMaxLength sets the snippet cap in runes.
// Default is core.DefaultConfig().MaxSnippetLength.
func WithMaxLength(n int) Option {
	return func(r *Refiner) error {
		if n <= 0 {
			return fmt.Errorf("%w: max snippet length %d", core.ErrInvalidConfig, n)
		}
		r.maxRunes = n
		return nil
	}
}

// WithStrategy selects core.RefineLead or core.RefineQueryFocused.
// Default is core.RefineLead.
func WithStrategy(strategy string) Option {
	return func(r *Refiner) error {
		switch strategy {
		case core.RefineLead, core.RefineQueryFocused:
			r.strategy = strategy
			return nil
		default:
			return fmt.Errorf("%w: unknown refine strategy %q", core.ErrInvalidConfig, strategy)
		}
	}
}

// WithTokenizer sets the tokenizer used to match query terms. It must be the
// one the query was built with. Default is text.NewTokenizer().
func WithTokenizer(tokenizer text.Tokenizer) Option {
	return func(r *Refiner) error {
		if tokenizer != nil {
			r.tokenizer = tokenizer
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Refiner) error {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
		return nil
	}
}

// NewRefiner creates a refiner.
func NewRefiner(opts ...Option) (*Refiner, error) {
	r := &Refiner{
		maxRunes: core.DefaultConfig().MaxSnippetLength,
		strategy: core.RefineLead,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, err
		}
	}
	if r.tokenizer == nil {
		r.tokenizer = text.NewTokenizer()
	}
	r.logger = r.logger.With("component", "refiner")
	return r, nil
}

// Refine returns the refined text of section. Text that fits the cap is
// returned unchanged. q is only consulted by the query-focused strategy and
// may be nil.
func (r *Refiner) Refine(section *core.Section, q *core.Query) core.RefinedSnippet {
	snippet := core.RefinedSnippet{Section: section, PageNumber: section.PageNumber}
	if utf8.RuneCountInString(section.Text) <= r.maxRunes {
		snippet.Text = section.Text
		return snippet
	}

	sentences := text.SplitSentences(section.Text)
	if r.strategy == core.RefineQueryFocused && q != nil {
		if focused := r.focused(sentences, q); focused != "" {
			snippet.Text = focused
			return snippet
		}
	}
	snippet.Text = r.lead(sentences)
	return snippet
}

// lead joins opening sentences while they fit. An opening sentence longer
// than the cap is cut at the last word boundary that fits.
func (r *Refiner) lead(sentences []string) string {
	if len(sentences) == 0 {
		return ""
	}

	first := sentences[0]
	if utf8.RuneCountInString(first) > r.maxRunes {
		return truncateWords(first, r.maxRunes)
	}

	var b strings.Builder
	b.WriteString(first)
	used := utf8.RuneCountInString(first)
	for _, s := range sentences[1:] {
		n := utf8.RuneCountInString(s) + 1
		if used+n > r.maxRunes {
			break
		}
		b.WriteByte(' ')
		b.WriteString(s)
		used += n
	}
	return b.String()
}

// focused picks the sentences with the highest query-term weight that fit
// together under the cap and joins them in original order. It returns ""
// when no sentence matches the query or none fits.
func (r *Refiner) focused(sentences []string, q *core.Query) string {
	type candidate struct {
		index int
		score float64
		runes int
	}

	candidates := make([]candidate, 0, len(sentences))
	for i, s := range sentences {
		score := r.sentenceScore(s, q)
		if score > 0 {
			candidates = append(candidates, candidate{index: i, score: score, runes: utf8.RuneCountInString(s)})
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	chosen := make([]int, 0, len(candidates))
	used := 0
	for _, c := range candidates {
		n := c.runes
		if len(chosen) > 0 {
			n++
		}
		if used+n > r.maxRunes {
			continue
		}
		chosen = append(chosen, c.index)
		used += n
	}
	if len(chosen) == 0 {
		return ""
	}

	sort.Ints(chosen)
	parts := make([]string, len(chosen))
	for i, idx := range chosen {
		parts[i] = sentences[idx]
	}

	r.logger.Debug("query-focused snippet", "sentences", len(chosen), "candidates", len(candidates))
	return strings.Join(parts, " ")
}

func (r *Refiner) sentenceScore(sentence string, q *core.Query) float64 {
	tokens := r.tokenizer.Tokens(sentence)
	seen := make(map[string]bool, len(tokens))
	var score float64
	for _, tok := range tokens {
		if seen[tok] {
			continue
		}
		seen[tok] = true
		score += q.Weight(tok)
	}

	padded := " " + strings.Join(tokens, " ") + " "
	for _, phrase := range q.MustHave {
		// Single-word phrases were already counted as tokens.
		if strings.Contains(phrase, " ") && strings.Contains(padded, " "+phrase+" ") {
			score += q.Weight(phrase)
		}
	}
	return score
}

// truncateWords cuts s to at most limit runes, ending at a word boundary when
// one exists within the cap.
func truncateWords(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	cut := runes[:limit]
	if runes[limit] != ' ' {
		if i := lastSpace(cut); i > 0 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(string(cut), " ")
}

func lastSpace(runes []rune) int {
	for i := len(runes) - 1; i >= 0; i-- {
		if runes[i] == ' ' {
			return i
		}
	}
	return -1
}
