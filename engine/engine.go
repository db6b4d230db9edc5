package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/poiesic/sectionrank/ai"
	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/corpus"
	"github.com/poiesic/sectionrank/fusion"
	"github.com/poiesic/sectionrank/query"
	"github.com/poiesic/sectionrank/refine"
	"github.com/poiesic/sectionrank/scoring"
	"github.com/poiesic/sectionrank/text"
	"github.com/poiesic/sectionrank/workers"
)

// jobNamespace scopes job IDs, which are name-based UUIDs of the job input.
var jobNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/poiesic/sectionrank/job"))

// Engine ranks the candidate sections of jobs. It is safe for concurrent
// use; every job builds its own query, statistics and scores.
type Engine struct {
	config    *core.Config
	tokenizer text.Tokenizer
	embedder  ai.Embedder
	pool      *workers.Pool
	ownsPool  bool
	monitor   Monitor
	metrics   *Metrics
	now       func() time.Time
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithConfig sets the engine configuration. It is validated at the start of
// every job, not here, so an invalid configuration fails jobs with
// core.ErrInvalidConfig. Default is core.DefaultConfig().
func WithConfig(cfg *core.Config) Option {
	return func(e *Engine) error {
		if cfg == nil {
			return ErrConfigRequired
		}
		e.config = cfg
		return nil
	}
}

// WithEmbedder sets the embedding model of the semantic scorer. Without one
// every semantic score degrades. Default is nil.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(e *Engine) error {
		e.embedder = embedder
		return nil
	}
}

// WithPool runs work on a shared pool, which the caller releases.
// Default is a pool of config.Workers owned by the engine.
func WithPool(pool *workers.Pool) Option {
	return func(e *Engine) error {
		e.pool = pool
		return nil
	}
}

// WithTokenizer sets the tokenizer shared by the query builder, corpus
// statistics and refiner. Default is text.NewTokenizer().
func WithTokenizer(tokenizer text.Tokenizer) Option {
	return func(e *Engine) error {
		if tokenizer == nil {
			return ErrTokenizerRequired
		}
		e.tokenizer = tokenizer
		return nil
	}
}

// WithMonitor sets the monitor notified of every job's stages.
// Default is a no-op monitor.
func WithMonitor(monitor Monitor) Option {
	return func(e *Engine) error {
		if monitor == nil {
			monitor = &noopMonitor{}
		}
		e.monitor = monitor
		return nil
	}
}

// WithClock sets the source of processing timestamps.
// Default is time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) error {
		if now != nil {
			e.now = now
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// New creates an engine.
func New(opts ...Option) (*Engine, error) {
	e := &Engine{
		config:  core.DefaultConfig(),
		monitor: &noopMonitor{},
		metrics: NewMetrics(),
		now:     time.Now,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}

	if e.tokenizer == nil {
		e.tokenizer = text.NewTokenizer(text.WithLogger(e.logger))
	}
	if e.pool == nil {
		pool, err := workers.New(e.config.Workers, workers.WithLogger(e.logger))
		if err != nil {
			return nil, err
		}
		e.pool = pool
		e.ownsPool = true
	}
	e.logger = e.logger.With("component", "engine")

	return e, nil
}

// Metrics returns the engine's collectors.
func (e *Engine) Metrics() *Metrics {
	return e.metrics
}

// Close releases the engine's own worker pool.
func (e *Engine) Close() error {
	if e.ownsPool {
		e.pool.Release()
	}
	return nil
}

// Run ranks sections for job.
//
// It fails with core.ErrInvalidConfig or core.ErrInvalidQuery before any
// scoring work, and otherwise only when ctx is cancelled. Sections below the
// minimum word count are dropped. Degraded scores and an expired job timeout
// are reported in the result metadata.
func (e *Engine) Run(ctx context.Context, job *core.Job, sections []*core.Section) (*core.Result, error) {
	start := time.Now()
	e.monitor.Start(job)

	cfg := e.config
	if err := cfg.Validate(); err != nil {
		e.metrics.RecordJob(outcomeInvalid, 0)
		return nil, err
	}
	if err := core.ValidateJob(job); err != nil {
		e.metrics.RecordJob(outcomeInvalid, 0)
		return nil, err
	}

	builder, err := query.NewBuilder(e.tokenizer,
		query.WithWeights(cfg.PersonaWeight, cfg.TaskWeight, cfg.PhraseWeight),
		query.WithLogger(e.logger))
	if err != nil {
		e.metrics.RecordJob(outcomeInvalid, 0)
		return nil, err
	}
	q, err := builder.Build(job.Persona, job.Task)
	if err != nil {
		e.metrics.RecordJob(outcomeInvalid, 0)
		return nil, err
	}
	e.monitor.AfterQueryBuild(q)

	result, err := e.rank(ctx, start, job, q, sections)
	if err != nil {
		e.metrics.RecordJob(outcomeFailed, time.Since(start).Seconds())
		return nil, err
	}

	outcome := outcomeComplete
	if result.Metadata.Partial {
		outcome = outcomePartial
	}
	e.metrics.RecordJob(outcome, time.Since(start).Seconds())
	e.monitor.Finish(result)

	e.logger.Info("job complete",
		"job_id", result.Metadata.JobID,
		"selected", len(result.Sections),
		"warnings", len(result.Metadata.Warnings),
		"partial", result.Metadata.Partial,
		"duration", time.Since(start))

	return result, nil
}

func (e *Engine) rank(ctx context.Context, start time.Time, job *core.Job, q *core.Query, sections []*core.Section) (*core.Result, error) {
	cfg := e.config

	candidates := make([]*core.Section, 0, len(sections))
	for _, s := range sections {
		if err := core.ValidateSection(s, cfg.MinSectionWords); err != nil {
			e.logger.Debug("dropping candidate", "document", s.DocumentName(), "title", s.Title, "err", err)
			continue
		}
		candidates = append(candidates, s)
	}
	e.monitor.AfterCandidateFilter(len(candidates), len(sections)-len(candidates))

	stats, err := corpus.Build(ctx, candidates, e.tokenizer,
		corpus.WithNGramRange(cfg.NGramMin, cfg.NGramMax),
		corpus.WithPool(e.pool),
		corpus.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	e.monitor.AfterCorpusStats(stats)

	scorers, err := e.scorers()
	if err != nil {
		return nil, err
	}

	in := &scoring.Input{Query: q, Sections: candidates, Stats: stats}
	results := make([]*scoring.Result, len(scorers))

	g, gctx := errgroup.WithContext(ctx)
	jobCtx, cancel := context.WithDeadline(gctx, start.Add(cfg.JobTimeout))
	defer cancel()

	for i, scorer := range scorers {
		g.Go(func() error {
			sctx := gctx
			if scorer.Name() == scoring.NameSemantic {
				sctx = jobCtx
			}
			began := time.Now()
			res, err := scorer.Score(sctx, in)
			if err != nil {
				return fmt.Errorf("%s scorer: %w", scorer.Name(), err)
			}
			e.metrics.RecordScorer(scorer.Name(), time.Since(began).Seconds(), countTrue(res.Degraded))
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var warnings []string
	for i, scorer := range scorers {
		e.monitor.AfterScorer(scorer.Name(), results[i])
		warnings = append(warnings, results[i].Warnings...)
	}

	partial := errors.Is(jobCtx.Err(), context.DeadlineExceeded)
	if partial {
		e.logger.Warn("job timeout reached, returning partial ranking", "timeout", cfg.JobTimeout)
		warnings = append(warnings, fmt.Errorf("%w: %s elapsed, ranking from available scores",
			core.ErrJobTimeout, cfg.JobTimeout).Error())
	}

	records, err := fusion.Fuse(cfg.Weights, candidates, fusion.Signals{
		Lexical:          results[0].Scores,
		Probabilistic:    results[1].Scores,
		Semantic:         results[2].Scores,
		SemanticDegraded: results[2].Degraded,
	})
	if err != nil {
		return nil, err
	}

	selectorOpts := []fusion.Option{
		fusion.WithTopN(cfg.TopN),
		fusion.WithMaxPerDocument(cfg.MaxSectionsPerDocument),
		fusion.WithLogger(e.logger),
	}
	if cfg.RequireMustHave {
		selectorOpts = append(selectorOpts, fusion.WithMustHave(q.MustHave, e.tokenizer))
	}
	selector, err := fusion.NewSelector(selectorOpts...)
	if err != nil {
		return nil, err
	}
	selected := selector.Select(records)
	e.monitor.AfterSelection(selected)
	e.metrics.SetSectionCounts(len(candidates), len(selected))

	refiner, err := refine.NewRefiner(
		refine.WithMaxLength(cfg.MaxSnippetLength),
		refine.WithStrategy(cfg.RefineStrategy),
		refine.WithTokenizer(e.tokenizer),
		refine.WithLogger(e.logger))
	if err != nil {
		return nil, err
	}
	snippets := make([]core.RefinedSnippet, len(selected))
	for i, r := range selected {
		snippets[i] = refiner.Refine(r.Section, q)
	}
	e.monitor.AfterRefinement(snippets)

	return e.buildResult(job, selected, snippets, warnings, partial), nil
}

// scorers returns the scorers in fusion signal order: lexical,
// probabilistic, semantic.
func (e *Engine) scorers() ([]scoring.Scorer, error) {
	cfg := e.config

	lexical, err := scoring.NewLexicalScorer(
		scoring.WithVocabularySize(cfg.VocabularySize),
		scoring.WithLexicalPool(e.pool),
		scoring.WithLexicalLogger(e.logger))
	if err != nil {
		return nil, err
	}

	probabilistic, err := scoring.NewProbabilisticScorer(
		scoring.WithParameters(cfg.BM25K1, cfg.BM25B),
		scoring.WithProbabilisticPool(e.pool),
		scoring.WithProbabilisticLogger(e.logger))
	if err != nil {
		return nil, err
	}

	semantic, err := scoring.NewSemanticScorer(e.embedder,
		scoring.WithEmbedBatchSize(cfg.EmbedBatchSize),
		scoring.WithSectionTimeout(cfg.SectionTimeout),
		scoring.WithRetryPolicy(ai.RetryPolicy{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   cfg.RetryDelay,
			MaxDelay:    cfg.SectionTimeout,
		}),
		scoring.WithSemanticPool(e.pool),
		scoring.WithSemanticLogger(e.logger))
	if err != nil {
		return nil, err
	}

	return []scoring.Scorer{lexical, probabilistic, semantic}, nil
}

func (e *Engine) buildResult(job *core.Job, selected []*core.ScoreRecord, snippets []core.RefinedSnippet, warnings []string, partial bool) *core.Result {
	result := &core.Result{
		Metadata: core.Metadata{
			JobID:               JobID(job),
			InputDocuments:      job.Filenames(),
			Persona:             job.Persona,
			Task:                job.Task,
			ProcessingTimestamp: e.now().UTC(),
			Warnings:            warnings,
			Partial:             partial,
		},
		Sections:    make([]core.ExtractedSection, len(selected)),
		Subsections: make([]core.SubsectionAnalysis, len(snippets)),
		Records:     selected,
	}
	if result.Metadata.Warnings == nil {
		result.Metadata.Warnings = []string{}
	}

	for i, r := range selected {
		result.Sections[i] = core.ExtractedSection{
			Document:       r.Section.DocumentName(),
			SectionTitle:   r.Section.Title,
			ImportanceRank: r.Rank,
			PageNumber:     r.Section.PageNumber,
			SectionType:    r.Section.Type,
		}
	}
	for i, s := range snippets {
		result.Subsections[i] = core.SubsectionAnalysis{
			Document:    s.Section.DocumentName(),
			RefinedText: s.Text,
			PageNumber:  s.PageNumber,
		}
	}
	return result
}

// JobID returns the deterministic ID of a job: a name-based UUID of its
// persona, task and document list.
func JobID(job *core.Job) string {
	var b strings.Builder
	b.WriteString(job.Persona)
	b.WriteByte(0)
	b.WriteString(job.Task)
	for _, name := range job.Filenames() {
		b.WriteByte(0)
		b.WriteString(name)
	}
	return uuid.NewSHA1(jobNamespace, []byte(b.String())).String()
}

func countTrue(flags []bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}
