package text

import (
	"log/slog"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/unicode/norm"
)

// DefaultMinTokenLength is the shortest token, in runes, kept by the default tokenizer.
const DefaultMinTokenLength = 3

// Tokenizer turns text into a sequence of normalized terms.
// Implementations must be safe for concurrent use.
type Tokenizer interface {
	Tokens(text string) []string
}

// StandardTokenizer is the default Tokenizer: NFKC fold, lowercase, split on
// anything that is not a letter or digit, drop stop words and short tokens,
// then stem. It holds no mutable state after construction.
type StandardTokenizer struct {
	stopWords map[string]bool
	minLength int
	stem      bool
	logger    *slog.Logger
}

// Option configures a StandardTokenizer.
type Option func(*StandardTokenizer)

// WithStopWords replaces the stop word list. Words are matched after lowercasing.
func WithStopWords(words []string) Option {
	return func(t *StandardTokenizer) {
		t.stopWords = make(map[string]bool, len(words))
		for _, w := range words {
			t.stopWords[strings.ToLower(w)] = true
		}
	}
}

// WithMinLength sets the minimum token length in runes.
func WithMinLength(n int) Option {
	return func(t *StandardTokenizer) {
		t.minLength = n
	}
}

// WithStemming enables or disables Snowball stemming.
func WithStemming(enabled bool) Option {
	return func(t *StandardTokenizer) {
		t.stem = enabled
	}
}

// WithLogger sets the logger used to report stemming failures.
func WithLogger(logger *slog.Logger) Option {
	return func(t *StandardTokenizer) {
		t.logger = logger
	}
}

// NewTokenizer creates a StandardTokenizer with English stop words, stemming
// and a minimum token length of DefaultMinTokenLength.
func NewTokenizer(opts ...Option) *StandardTokenizer {
	t := &StandardTokenizer{
		stopWords: englishStopWords,
		minLength: DefaultMinTokenLength,
		stem:      true,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	t.logger = t.logger.With("component", "tokenizer")
	return t
}

// Tokens returns the normalized terms of text in their original order.
func (t *StandardTokenizer) Tokens(text string) []string {
	words := strings.FieldsFunc(Normalize(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	tokens := make([]string, 0, len(words))
	for _, word := range words {
		if t.stopWords[word] || len([]rune(word)) < t.minLength {
			continue
		}
		if t.stem {
			word = t.stemWord(word)
		}
		tokens = append(tokens, word)
	}
	return tokens
}

// Phrase normalizes a multi-word phrase into the space-joined form used for
// n-gram terms. It returns "" if nothing survives normalization.
func (t *StandardTokenizer) Phrase(phrase string) string {
	return strings.Join(t.Tokens(phrase), " ")
}

func (t *StandardTokenizer) stemWord(word string) string {
	stemmed, err := snowball.Stem(word, "english", true)
	if err != nil || stemmed == "" {
		// Keep the surface form so term identity stays consistent
		t.logger.Debug("stemming failed", "word", word, "err", err)
		return word
	}
	return stemmed
}

// Normalize applies NFKC folding and lowercasing.
func Normalize(text string) string {
	return strings.ToLower(norm.NFKC.String(text))
}

// NGrams returns the contiguous n-grams of tokens for every n in [minN, maxN],
// space-joined, ordered by start position and then by length. Lengths larger
// than len(tokens) are skipped.
func NGrams(tokens []string, minN, maxN int) []string {
	if minN < 1 {
		minN = 1
	}
	if maxN < minN || len(tokens) == 0 {
		return nil
	}

	grams := make([]string, 0, len(tokens)*(maxN-minN+1))
	for i := range tokens {
		for n := minN; n <= maxN && i+n <= len(tokens); n++ {
			if n == 1 {
				grams = append(grams, tokens[i])
				continue
			}
			grams = append(grams, strings.Join(tokens[i:i+n], " "))
		}
	}
	return grams
}

// WordCount returns the number of whitespace separated words in text.
func WordCount(text string) int {
	return len(strings.Fields(text))
}
