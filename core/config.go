// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"math"
	"runtime"
	"time"
)

// weightTolerance bounds the accepted deviation of the fusion weight sum from 1.0.
const weightTolerance = 1e-6

// Refinement strategies.
const (
	RefineLead         = "lead"
	RefineQueryFocused = "query"
)

// Weights are the fusion weights of the three relevance signals.
type Weights struct {
	Lexical       float64 `koanf:"lexical"`
	Probabilistic float64 `koanf:"probabilistic"`
	Semantic      float64 `koanf:"semantic"`
}

// Sum returns the total of the three weights.
func (w Weights) Sum() float64 {
	return w.Lexical + w.Probabilistic + w.Semantic
}

// Validate checks that every weight lies in [0,1] and that they sum to 1.0.
func (w Weights) Validate() error {
	named := []struct {
		name  string
		value float64
	}{
		{"lexical", w.Lexical},
		{"probabilistic", w.Probabilistic},
		{"semantic", w.Semantic},
	}
	for _, n := range named {
		if math.IsNaN(n.value) || n.value < 0 || n.value > 1 {
			return fmt.Errorf("%w: %s weight %v outside [0,1]", ErrInvalidConfig, n.name, n.value)
		}
	}
	if math.Abs(w.Sum()-1.0) > weightTolerance {
		return fmt.Errorf("%w: fusion weights sum to %.4f, want 1.0", ErrInvalidConfig, w.Sum())
	}
	return nil
}

// Config holds the ranking engine configuration. Every field has a default.
type Config struct {
	// Workers is the size of the bounded worker pool.
	// Default: runtime.NumCPU() / 2, minimum 1
	Workers int `koanf:"workers"`

	// SectionTimeout bounds each embedding call (per batch, then per section on fallback).
	// Default: 10s
	SectionTimeout time.Duration `koanf:"section_timeout"`

	// DocumentTimeout bounds ingestion of a single document.
	// Default: 30s
	DocumentTimeout time.Duration `koanf:"document_timeout"`

	// JobTimeout is the overall time budget of a job.
	// Default: 60s
	JobTimeout time.Duration `koanf:"job_timeout"`

	// MinSectionWords excludes sections with fewer words before scoring.
	// Default: 5
	MinSectionWords int `koanf:"min_section_words"`

	// MaxSnippetLength caps refined text, in characters.
	// Default: 320
	MaxSnippetLength int `koanf:"max_snippet_length"`

	// TopN is the number of sections returned.
	// Default: 10
	TopN int `koanf:"top_n"`

	// VocabularySize caps the lexical vector space, keeping the most frequent terms.
	// Default: 20000
	VocabularySize int `koanf:"vocabulary_size"`

	// NGramMin and NGramMax bound the n-gram range of the lexical vector space.
	// Default: 1 through 4
	NGramMin int `koanf:"ngram_min"`
	NGramMax int `koanf:"ngram_max"`

	// Weights are the fusion weights. They must sum to 1.0.
	// Default: 0.35 lexical, 0.35 probabilistic, 0.30 semantic
	Weights Weights `koanf:"weights"`

	// BM25K1 is the term frequency saturation factor.
	// Default: 1.5
	BM25K1 float64 `koanf:"bm25_k1"`

	// BM25B is the length normalization factor.
	// Default: 0.75
	BM25B float64 `koanf:"bm25_b"`

	// PersonaWeight, TaskWeight and PhraseWeight weight query terms by origin.
	// Defaults: 0.5, 1.0, 2.0
	PersonaWeight float64 `koanf:"persona_weight"`
	TaskWeight    float64 `koanf:"task_weight"`
	PhraseWeight  float64 `koanf:"phrase_weight"`

	// EmbedBatchSize is the number of sections embedded per call.
	// Default: 16
	EmbedBatchSize int `koanf:"embed_batch_size"`

	// MaxRetries is the number of attempts per embedding batch.
	// Default: 2
	MaxRetries int `koanf:"max_retries"`

	// RetryDelay is the base delay for exponential backoff between attempts.
	// Default: 200ms
	RetryDelay time.Duration `koanf:"retry_delay"`

	// MaxSectionsPerDocument caps how many selected sections may come from one document.
	// Default: 0 (unlimited)
	MaxSectionsPerDocument int `koanf:"max_sections_per_document"`

	// RequireMustHave drops sections containing none of the query's must-have phrases.
	// Ignored when the query has no must-have phrases. Default: false
	RequireMustHave bool `koanf:"require_must_have"`

	// RefineStrategy selects the refinement strategy: "lead" or "query".
	// Default: "lead"
	RefineStrategy string `koanf:"refine_strategy"`
}

// ConfigOption is a functional option for configuring a Config.
type ConfigOption func(*Config)

// WithWorkers sets the worker pool size.
func WithWorkers(n int) ConfigOption {
	return func(c *Config) {
		c.Workers = n
	}
}

// WithTopN sets the number of sections returned.
func WithTopN(n int) ConfigOption {
	return func(c *Config) {
		c.TopN = n
	}
}

// WithWeights sets the fusion weights.
func WithWeights(lexical, probabilistic, semantic float64) ConfigOption {
	return func(c *Config) {
		c.Weights = Weights{Lexical: lexical, Probabilistic: probabilistic, Semantic: semantic}
	}
}

// WithMinSectionWords sets the minimum section length in words.
func WithMinSectionWords(n int) ConfigOption {
	return func(c *Config) {
		c.MinSectionWords = n
	}
}

// WithMaxSnippetLength sets the refined text cap in characters.
func WithMaxSnippetLength(n int) ConfigOption {
	return func(c *Config) {
		c.MaxSnippetLength = n
	}
}

// WithTimeouts sets the per-section and overall job timeouts.
func WithTimeouts(section, job time.Duration) ConfigOption {
	return func(c *Config) {
		c.SectionTimeout = section
		c.JobTimeout = job
	}
}

// WithVocabulary sets the vocabulary cap and n-gram range.
func WithVocabulary(size, ngramMin, ngramMax int) ConfigOption {
	return func(c *Config) {
		c.VocabularySize = size
		c.NGramMin = ngramMin
		c.NGramMax = ngramMax
	}
}

// WithBM25 sets the BM25 saturation and length normalization factors.
func WithBM25(k1, b float64) ConfigOption {
	return func(c *Config) {
		c.BM25K1 = k1
		c.BM25B = b
	}
}

// WithRefineStrategy sets the refinement strategy.
func WithRefineStrategy(strategy string) ConfigOption {
	return func(c *Config) {
		c.RefineStrategy = strategy
	}
}

// DefaultConfig returns a Config with the documented defaults.
func DefaultConfig() *Config {
	workers := runtime.NumCPU() / 2
	if workers < 1 {
		workers = 1
	}
	return &Config{
		Workers:          workers,
		SectionTimeout:   10 * time.Second,
		DocumentTimeout:  30 * time.Second,
		JobTimeout:       60 * time.Second,
		MinSectionWords:  5,
		MaxSnippetLength: 320,
		TopN:             10,
		VocabularySize:   20000,
		NGramMin:         1,
		NGramMax:         4,
		Weights:          Weights{Lexical: 0.35, Probabilistic: 0.35, Semantic: 0.30},
		BM25K1:           1.5,
		BM25B:            0.75,
		PersonaWeight:    0.5,
		TaskWeight:       1.0,
		PhraseWeight:     2.0,
		EmbedBatchSize:   16,
		MaxRetries:       2,
		RetryDelay:       200 * time.Millisecond,
		RefineStrategy:   RefineLead,
	}
}

// NewConfig creates a Config with the default values and applies the provided options.
//
// Example:
//
//	cfg := NewConfig(
//	    WithTopN(5),
//	    WithWeights(0.4, 0.4, 0.2),
//	)
func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Validate checks that the configuration is complete and in range.
// Every failure wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	if c == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidConfig)
	}
	if err := c.Weights.Validate(); err != nil {
		return err
	}
	if c.TopN <= 0 {
		return fmt.Errorf("%w: top-n must be positive, got %d", ErrInvalidConfig, c.TopN)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("%w: workers must be positive, got %d", ErrInvalidConfig, c.Workers)
	}
	if c.SectionTimeout <= 0 || c.JobTimeout <= 0 || c.DocumentTimeout <= 0 {
		return fmt.Errorf("%w: timeouts must be positive", ErrInvalidConfig)
	}
	if c.MinSectionWords < 0 {
		return fmt.Errorf("%w: min section words must not be negative", ErrInvalidConfig)
	}
	if c.MaxSnippetLength <= 0 {
		return fmt.Errorf("%w: max snippet length must be positive", ErrInvalidConfig)
	}
	if c.VocabularySize <= 0 {
		return fmt.Errorf("%w: vocabulary size must be positive", ErrInvalidConfig)
	}
	if c.NGramMin < 1 || c.NGramMax < c.NGramMin {
		return fmt.Errorf("%w: invalid n-gram range %d-%d", ErrInvalidConfig, c.NGramMin, c.NGramMax)
	}
	if c.BM25K1 < 0 || c.BM25B < 0 || c.BM25B > 1 {
		return fmt.Errorf("%w: bm25 parameters out of range (k1=%v, b=%v)", ErrInvalidConfig, c.BM25K1, c.BM25B)
	}
	if c.PersonaWeight < 0 || c.TaskWeight < 0 || c.PhraseWeight < 0 {
		return fmt.Errorf("%w: query weights must not be negative", ErrInvalidConfig)
	}
	if c.EmbedBatchSize <= 0 {
		return fmt.Errorf("%w: embed batch size must be positive", ErrInvalidConfig)
	}
	if c.MaxRetries <= 0 {
		return fmt.Errorf("%w: max retries must be positive", ErrInvalidConfig)
	}
	if c.MaxSectionsPerDocument < 0 {
		return fmt.Errorf("%w: max sections per document must not be negative", ErrInvalidConfig)
	}
	switch c.RefineStrategy {
	case RefineLead, RefineQueryFocused:
	default:
		return fmt.Errorf("%w: unknown refine strategy %q", ErrInvalidConfig, c.RefineStrategy)
	}
	return nil
}
