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


package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/sectionrank/ai"
	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/scoring"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of sections per embedding call
	BatchSize int

	// ReportInterval is how often to report progress (number of sections)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per batch
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config matching the ranking defaults.
func DefaultConfig() *Config {
	defaults := core.DefaultConfig()
	return &Config{
		BatchSize:      defaults.EmbedBatchSize,
		ReportInterval: 100,
		MaxRetries:     defaults.MaxRetries,
		RetryDelay:     defaults.RetryDelay,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.ReportInterval <= 0 {
		return ErrInvalidReportInterval
	}
	if c.MaxRetries <= 0 {
		return ai.ErrInvalidMaxAttempts
	}
	return nil
}

// Summary describes a finished run.
type Summary struct {
	Sections int           // Distinct section texts submitted
	Batches  int           // Embedding batches submitted
	Failed   int           // Batches that failed after every retry
	Elapsed  time.Duration // Wall time of the run
}

// Reembedder embeds the candidate sections of a job in batches.
type Reembedder struct {
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	logger    *slog.Logger
}

// NewReembedder creates a new reembedder.
// progress: where to write progress output (typically os.Stderr)
func NewReembedder(embedder ai.Embedder, config *Config, progress io.Writer) (*Reembedder, error) {
	if embedder == nil {
		return nil, ai.ErrEmbedderRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if progress == nil {
		progress = io.Discard
	}

	return &Reembedder{
		config:   config,
		progress: progress,
		processor: NewBatchProcessor(embedder, ai.RetryPolicy{
			MaxAttempts: config.MaxRetries,
			BaseDelay:   config.RetryDelay,
		}),
		logger: slog.Default().With("component", "reembedder"),
	}, nil
}

// Run embeds the text of every section, in the form the semantic scorer
// embeds it. Duplicate texts are embedded once. A failed batch is logged
// and counted; only cancellation of ctx stops the run early.
func (r *Reembedder) Run(ctx context.Context, sections []*core.Section) (*Summary, error) {
	seen := make(map[string]bool, len(sections))
	var texts []string
	for _, section := range sections {
		text := scoring.EmbeddingText(section)
		if !seen[text] {
			seen[text] = true
			texts = append(texts, text)
		}
	}

	summary := &Summary{Sections: len(texts)}
	if len(texts) == 0 {
		fmt.Fprintf(r.progress, "No sections to embed\n")
		return summary, nil
	}

	fmt.Fprintf(r.progress, "Embedding %d sections (batch size: %d)\n", len(texts), r.config.BatchSize)
	tracker := NewProgressTracker(r.progress, len(texts), r.config.ReportInterval, "sections")

	for lo := 0; lo < len(texts); lo += r.config.BatchSize {
		if err := ctx.Err(); err != nil {
			summary.Elapsed = tracker.Finish()
			return summary, err
		}
		batch := texts[lo:min(lo+r.config.BatchSize, len(texts))]
		summary.Batches++
		if err := r.processor.Process(ctx, batch); err != nil {
			if ctx.Err() != nil {
				summary.Elapsed = tracker.Finish()
				return summary, ctx.Err()
			}
			summary.Failed++
			r.logger.Warn("batch failed", "offset", lo, "size", len(batch), "err", err)
		}
		tracker.Add(len(batch))
	}

	summary.Elapsed = tracker.Finish()
	fmt.Fprintf(r.progress, "Reembedding complete. Embedded %d sections in %d batches (%d failed) in %v\n",
		summary.Sections, summary.Batches, summary.Failed, summary.Elapsed.Round(time.Millisecond))
	return summary, nil
}
