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


package sectionrank

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/sectionrank/ai"
	"github.com/poiesic/sectionrank/ai/fastembed"
	"github.com/poiesic/sectionrank/ai/openai"
	"github.com/poiesic/sectionrank/config"
	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/engine"
	"github.com/poiesic/sectionrank/ingestion"
	"github.com/poiesic/sectionrank/reembed"
	"github.com/poiesic/sectionrank/storage"
	"github.com/poiesic/sectionrank/storage/badger"
	"github.com/poiesic/sectionrank/workers"
)

// ErrEmbeddingCacheRequired is returned by Reembed when no embedding cache
// is configured.
var ErrEmbeddingCacheRequired = errors.New("embedding cache required")

// Ranker loads a job's documents and ranks their sections for the job's
// persona and task.
type Ranker struct {
	config   *config.Config
	provider ai.Provider
	embedder ai.Embedder
	cache    storage.EmbeddingCache
	pool     *workers.Pool
	pipeline *ingestion.Pipeline
	engine   *engine.Engine
	logger   *slog.Logger
}

// Option configures a Ranker.
type Option func(*rankerOptions)

type rankerOptions struct {
	config   *config.Config
	provider ai.Provider
	baseDir  string
	monitor  engine.Monitor
	logger   *slog.Logger
}

// WithConfig sets the configuration. Default is config.Default().
func WithConfig(cfg *config.Config) Option {
	return func(o *rankerOptions) {
		o.config = cfg
	}
}

// WithProvider uses provider instead of building one from the embedding
// configuration. The Ranker closes it on Close.
func WithProvider(provider ai.Provider) Option {
	return func(o *rankerOptions) {
		o.provider = provider
	}
}

// WithBaseDir resolves relative document filenames against dir.
func WithBaseDir(dir string) Option {
	return func(o *rankerOptions) {
		o.baseDir = dir
	}
}

// WithMonitor sets the monitor notified of every job's ranking stages.
func WithMonitor(monitor engine.Monitor) Option {
	return func(o *rankerOptions) {
		o.monitor = monitor
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(o *rankerOptions) {
		o.logger = logger
	}
}

// New creates a Ranker. The embedding provider, the optional embedding cache
// and a worker pool shared by ingestion and ranking are created here and
// released by Close.
func New(opts ...Option) (*Ranker, error) {
	options := &rankerOptions{
		config: config.Default(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.config == nil {
		options.config = config.Default()
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}
	cfg := options.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Ranker{
		config:   cfg,
		provider: options.provider,
		logger:   options.logger.With("component", "ranker"),
	}
	if r.provider == nil {
		provider, err := NewProvider(&cfg.Embedding)
		if err != nil {
			return nil, err
		}
		r.provider = provider
	}

	var embedder ai.Embedder
	if r.provider != nil {
		embedder = r.provider.Embedder()
	}
	if embedder != nil && cfg.Embedding.EmbeddingCachePath != "" {
		backend, err := badger.OpenBackend(cfg.Embedding.EmbeddingCachePath, false)
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("opening embedding cache: %w", err)
		}
		cache, err := badger.NewEmbeddingCache(backend)
		if err != nil {
			backend.Close()
			r.Close()
			return nil, err
		}
		r.cache = cache
		embedder, err = ai.NewCachingEmbedder(embedder, cache, r.provider.Model())
		if err != nil {
			r.Close()
			return nil, err
		}
	}

	r.embedder = embedder

	pool, err := workers.New(cfg.Ranking.Workers, workers.WithLogger(options.logger))
	if err != nil {
		r.Close()
		return nil, err
	}
	r.pool = pool

	r.pipeline, err = ingestion.NewPipeline(
		ingestion.WithPool(pool),
		ingestion.WithDocumentTimeout(cfg.Ranking.DocumentTimeout),
		ingestion.WithBaseDir(options.baseDir),
		ingestion.WithLogger(options.logger),
	)
	if err != nil {
		r.Close()
		return nil, err
	}

	r.engine, err = engine.New(
		engine.WithConfig(&cfg.Ranking),
		engine.WithEmbedder(embedder),
		engine.WithPool(pool),
		engine.WithMonitor(options.monitor),
		engine.WithLogger(options.logger),
	)
	if err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

// NewProvider builds the embedding provider named by cfg.Provider.
// The "none" provider yields a nil Provider and no error.
func NewProvider(cfg *ai.Config) (ai.Provider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ai.ProviderNone:
		return nil, nil
	case ai.ProviderOpenAI:
		return openai.NewProvider(cfg)
	default:
		return fastembed.NewProvider(cfg)
	}
}

// Rank loads the documents of job and returns its ranked sections.
// Warnings from documents that could not be loaded come first in the
// result metadata, followed by ranking warnings.
func (r *Ranker) Rank(ctx context.Context, job *core.Job) (*core.Result, error) {
	if err := core.ValidateJob(job); err != nil {
		return nil, err
	}

	sections, warnings, err := r.pipeline.Load(ctx, job)
	if err != nil {
		return nil, err
	}

	result, err := r.engine.Run(ctx, job, sections)
	if err != nil {
		return nil, err
	}
	result.Metadata.Warnings = append(warnings, result.Metadata.Warnings...)
	return result, nil
}

// Sections loads the documents of job and returns every candidate section
// without ranking them, plus one warning per document that failed to load.
func (r *Ranker) Sections(ctx context.Context, job *core.Job) ([]*core.Section, []string, error) {
	return r.pipeline.Load(ctx, job)
}

// Reembed loads the documents of job and stores the embedding of every
// candidate section in the embedding cache, so later ranking jobs over the
// same documents do not call the embedding model for them. Progress is
// written to progress.
func (r *Ranker) Reembed(ctx context.Context, job *core.Job, progress io.Writer) (*reembed.Summary, error) {
	if r.cache == nil {
		return nil, ErrEmbeddingCacheRequired
	}

	sections, warnings, err := r.pipeline.Load(ctx, job)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		r.logger.Warn("document skipped", "warning", w)
	}

	var candidates []*core.Section
	for _, s := range sections {
		if core.ValidateSection(s, r.config.Ranking.MinSectionWords) == nil {
			candidates = append(candidates, s)
		}
	}

	reembedder, err := reembed.NewReembedder(r.embedder, &reembed.Config{
		BatchSize:      r.config.Ranking.EmbedBatchSize,
		ReportInterval: r.config.Ranking.EmbedBatchSize,
		MaxRetries:     r.config.Ranking.MaxRetries,
		RetryDelay:     r.config.Ranking.RetryDelay,
	}, progress)
	if err != nil {
		return nil, err
	}
	return reembedder.Run(ctx, candidates)
}

// Metrics returns the ranking metrics collected so far.
func (r *Ranker) Metrics() *engine.Metrics {
	return r.engine.Metrics()
}

// Close releases the worker pool, the embedding cache and the provider.
func (r *Ranker) Close() error {
	if r.engine != nil {
		r.engine.Close()
	}
	if r.pipeline != nil {
		r.pipeline.Release()
	}
	r.pool.Release()

	if r.cache != nil {
		if err := r.cache.Close(); err != nil {
			r.logger.Error("error closing embedding cache", "err", err)
		}
	}
	if r.provider != nil {
		if err := r.provider.Close(); err != nil {
			r.logger.Error("error closing embedding provider", "err", err)
			return err
		}
	}
	return nil
}
