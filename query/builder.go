package query

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"

	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/text"
)

// Quoted spans: straight double quotes, curly double quotes, and single quotes
// that open after whitespace so apostrophes inside words are not mistaken for them.
var quotedPattern = regexp.MustCompile(`"([^"]+)"|“([^”]+)”|(?:^|\s)'([^']+)'`)

// Builder builds queries from persona and task text.
type Builder struct {
	tokenizer     text.Tokenizer
	personaWeight float64
	taskWeight    float64
	phraseWeight  float64
	logger        *slog.Logger
}

// Option configures a Builder.
type Option func(*Builder) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Builder) error {
		if logger == nil {
			logger = slog.Default()
		}
		b.logger = logger
		return nil
	}
}

// WithWeights sets the per-origin term weights.
// Default is the persona, task and phrase weights of core.DefaultConfig.
func WithWeights(persona, task, phrase float64) Option {
	return func(b *Builder) error {
		if persona < 0 || task < 0 || phrase < 0 {
			return fmt.Errorf("%w: query weights must not be negative", core.ErrInvalidConfig)
		}
		b.personaWeight = persona
		b.taskWeight = task
		b.phraseWeight = phrase
		return nil
	}
}

// NewBuilder creates a query builder over the given tokenizer.
func NewBuilder(tokenizer text.Tokenizer, opts ...Option) (*Builder, error) {
	if tokenizer == nil {
		return nil, ErrTokenizerRequired
	}

	defaults := core.DefaultConfig()
	b := &Builder{
		tokenizer:     tokenizer,
		personaWeight: defaults.PersonaWeight,
		taskWeight:    defaults.TaskWeight,
		phraseWeight:  defaults.PhraseWeight,
		logger:        slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	b.logger = b.logger.With("component", "query")

	return b, nil
}

// Build creates the query for a persona and task. It fails with
// core.ErrInvalidQuery only when both strings are blank.
func (b *Builder) Build(persona, task string) (*core.Query, error) {
	persona = strings.TrimSpace(persona)
	task = strings.TrimSpace(task)
	if persona == "" && task == "" {
		return nil, fmt.Errorf("%w: persona and task are both empty", core.ErrInvalidQuery)
	}

	q := &core.Query{
		Persona: persona,
		Task:    task,
		Text:    joinNonEmpty(persona, task),
		Terms:   make(map[string]float64),
	}

	b.addTerms(q, b.tokenizer.Tokens(persona), b.personaWeight)
	b.addTerms(q, b.tokenizer.Tokens(task), b.taskWeight)

	// Quoted phrases add weight wherever they appear; only the task's
	// become must-have phrases.
	b.addTerms(q, b.phrases(persona), b.phraseWeight)
	for _, phrase := range b.phrases(task) {
		b.addTerms(q, []string{phrase}, b.phraseWeight)
		if !slices.Contains(q.MustHave, phrase) {
			q.MustHave = append(q.MustHave, phrase)
		}
	}

	b.logger.Debug("query built",
		"terms", len(q.Terms),
		"must_have", len(q.MustHave))

	return q, nil
}

func (b *Builder) addTerms(q *core.Query, terms []string, weight float64) {
	for _, term := range terms {
		if _, seen := q.Terms[term]; !seen {
			q.Order = append(q.Order, term)
		}
		q.Terms[term] += weight
	}
}

// phrases returns the normalized quoted phrases of sources, in order.
func (b *Builder) phrases(sources ...string) []string {
	var phrases []string
	for _, src := range sources {
		for _, match := range quotedPattern.FindAllStringSubmatch(src, -1) {
			for _, group := range match[1:] {
				if group == "" {
					continue
				}
				if phrase := strings.Join(b.tokenizer.Tokens(group), " "); phrase != "" {
					phrases = append(phrases, phrase)
				}
			}
		}
	}
	return phrases
}

func joinNonEmpty(persona, task string) string {
	switch {
	case persona == "":
		return task
	case task == "":
		return persona
	default:
		return persona + ". " + task
	}
}
