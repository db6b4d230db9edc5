package scoring

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/philippgille/chromem-go"
	"github.com/poiesic/sectionrank/ai"
	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/workers"
)

// SemanticScorer ranks sections by cosine similarity between the query
// embedding and each section embedding, rescaled from [-1,1] to [0,1].
//
// Sections are embedded in batches on the worker pool. A batch that fails
// after retries is embedded again one section at a time. A section that
// still has no usable vector, because it failed, timed out, came back empty
// or with the wrong dimension, gets the mean score of the sections that did
// embed and is flagged as degraded. So does a section the vector collection
// could not score. A nil embedder degrades every section.
type SemanticScorer struct {
	embedder  ai.Embedder
	batchSize int
	timeout   time.Duration
	retry     ai.RetryPolicy
	pool      *workers.Pool
	logger    *slog.Logger

	// search returns the similarity of every document to the query vector.
	search func(ctx context.Context, queryVec []float32, docs []chromem.Document) ([]chromem.Result, error)
}

var _ Scorer = (*SemanticScorer)(nil)

// SemanticOption configures a SemanticScorer.
type SemanticOption func(*SemanticScorer) error

// WithEmbedBatchSize sets the number of sections per embedding call.
func WithEmbedBatchSize(n int) SemanticOption {
	return func(s *SemanticScorer) error {
		if n <= 0 {
			return fmt.Errorf("%w: embed batch size %d", core.ErrInvalidConfig, n)
		}
		s.batchSize = n
		return nil
	}
}

// WithSectionTimeout bounds every embedding call.
func WithSectionTimeout(d time.Duration) SemanticOption {
	return func(s *SemanticScorer) error {
		if d <= 0 {
			return fmt.Errorf("%w: section timeout %s", core.ErrInvalidConfig, d)
		}
		s.timeout = d
		return nil
	}
}

// WithRetryPolicy sets the retry policy for batch embedding calls.
func WithRetryPolicy(policy ai.RetryPolicy) SemanticOption {
	return func(s *SemanticScorer) error {
		if policy.MaxAttempts <= 0 {
			return ai.ErrInvalidMaxAttempts
		}
		s.retry = policy
		return nil
	}
}

// WithSemanticPool embeds batches on pool. Default is inline.
func WithSemanticPool(pool *workers.Pool) SemanticOption {
	return func(s *SemanticScorer) error {
		s.pool = pool
		return nil
	}
}

// WithSemanticLogger sets a custom logger.
// Default is slog.Default().
func WithSemanticLogger(logger *slog.Logger) SemanticOption {
	return func(s *SemanticScorer) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSemanticScorer creates an embedding scorer. embedder may be nil, in
// which case every section is scored 0 and flagged as degraded.
func NewSemanticScorer(embedder ai.Embedder, opts ...SemanticOption) (*SemanticScorer, error) {
	defaults := core.DefaultConfig()
	s := &SemanticScorer{
		embedder:  embedder,
		batchSize: defaults.EmbedBatchSize,
		timeout:   defaults.SectionTimeout,
		retry: ai.RetryPolicy{
			MaxAttempts: defaults.MaxRetries,
			BaseDelay:   defaults.RetryDelay,
		},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "semantic-scorer")
	s.search = s.query
	return s, nil
}

// Name implements Scorer.
func (s *SemanticScorer) Name() string {
	return NameSemantic
}

// Score implements Scorer. Only an invalid input is an error; embedding
// failures and an expired ctx degrade the affected sections instead.
func (s *SemanticScorer) Score(ctx context.Context, in *Input) (*Result, error) {
	if err := validateInput(in, false); err != nil {
		return nil, err
	}

	n := len(in.Sections)
	res := &Result{Scores: make([]float64, n)}
	if n == 0 {
		return res, nil
	}

	if s.embedder == nil {
		s.degradeAll(res, errors.New("no embedding model configured"))
		return res, nil
	}

	queryVec, err := s.embedQuery(ctx, in.Query.Text)
	if err != nil {
		s.logger.Warn("query embedding failed", "err", err)
		s.degradeAll(res, fmt.Errorf("query embedding failed: %w", err))
		return res, nil
	}

	texts := make([]string, n)
	for i, section := range in.Sections {
		texts[i] = EmbeddingText(section)
	}

	vectors := make([][]float32, n)
	failures := make([]error, n)
	batches := (n + s.batchSize - 1) / s.batchSize
	poolErr := s.pool.ForEach(ctx, batches, func(b int) {
		lo := b * s.batchSize
		hi := min(lo+s.batchSize, n)
		s.embedBatch(ctx, texts[lo:hi], vectors[lo:hi], failures[lo:hi])
	})

	for i, v := range vectors {
		switch {
		case failures[i] != nil:
		case v == nil && poolErr != nil:
			failures[i] = fmt.Errorf("not embedded before deadline: %w", poolErr)
		case len(v) != len(queryVec):
			failures[i] = fmt.Errorf("dimension %d, want %d", len(v), len(queryVec))
		case norm(v) == 0:
			failures[i] = errors.New("zero embedding")
		}
	}

	similarities := s.similarities(ctx, queryVec, texts, vectors, failures)
	s.fill(res, similarities, failures)
	return res, nil
}

func (s *SemanticScorer) embedQuery(ctx context.Context, text string) ([]float32, error) {
	vec, err := ai.Retry(ctx, s.retry, func(ctx context.Context) ([]float32, error) {
		return callWithTimeout(ctx, s.timeout, func(ctx context.Context) ([]float32, error) {
			return s.embedder.EmbedText(ctx, text)
		})
	})
	if err != nil {
		return nil, err
	}
	if norm(vec) == 0 {
		return nil, errors.New("zero query embedding")
	}
	return vec, nil
}

// embedBatch fills out with one vector per text, recording a failure for
// every text it could not embed.
func (s *SemanticScorer) embedBatch(ctx context.Context, texts []string, out [][]float32, failures []error) {
	vectors, err := ai.Retry(ctx, s.retry, func(ctx context.Context) ([][]float32, error) {
		return callWithTimeout(ctx, s.timeout, func(ctx context.Context) ([][]float32, error) {
			return s.embedder.EmbedTexts(ctx, texts)
		})
	})
	if err == nil && len(vectors) == len(texts) {
		copy(out, vectors)
		return
	}
	if err == nil {
		err = fmt.Errorf("%w: got %d, want %d", ai.ErrEmbeddingCount, len(vectors), len(texts))
	}
	if len(texts) == 1 {
		failures[0] = err
		return
	}

	s.logger.Warn("batch embedding failed, embedding sections individually", "batch", len(texts), "err", err)
	for i, text := range texts {
		if ctx.Err() != nil {
			failures[i] = fmt.Errorf("not embedded before deadline: %w", ctx.Err())
			continue
		}
		single, err := callWithTimeout(ctx, s.timeout, func(ctx context.Context) ([][]float32, error) {
			return s.embedder.EmbedTexts(ctx, []string{text})
		})
		switch {
		case err != nil:
			failures[i] = err
		case len(single) != 1:
			failures[i] = fmt.Errorf("%w: got %d, want 1", ai.ErrEmbeddingCount, len(single))
		default:
			out[i] = single[0]
		}
	}
}

// similarities returns the cosine similarity of every usable vector to the
// query, as reported by the vector collection. A section the collection
// fails on or leaves out of its results is recorded as a failure.
func (s *SemanticScorer) similarities(ctx context.Context, queryVec []float32, texts []string, vectors [][]float32, failures []error) []float64 {
	sims := make([]float64, len(vectors))

	docs := make([]chromem.Document, 0, len(vectors))
	for i, v := range vectors {
		if failures[i] != nil {
			continue
		}
		docs = append(docs, chromem.Document{ID: strconv.Itoa(i), Content: texts[i], Embedding: v})
	}
	if len(docs) == 0 {
		return sims
	}

	results, err := s.search(context.WithoutCancel(ctx), queryVec, docs)
	if err != nil {
		err = fmt.Errorf("vector collection query failed: %w", err)
		for i := range failures {
			if failures[i] == nil {
				failures[i] = err
			}
		}
		return sims
	}

	found := make([]bool, len(sims))
	for _, r := range results {
		i, err := strconv.Atoi(r.ID)
		if err != nil || i < 0 || i >= len(sims) {
			continue
		}
		sims[i] = float64(r.Similarity)
		found[i] = true
	}
	for i := range failures {
		if failures[i] == nil && !found[i] {
			failures[i] = errors.New("missing from vector collection results")
		}
	}
	return sims
}

// query loads docs into a job-scoped in-memory collection and returns every
// document's similarity to queryVec.
func (s *SemanticScorer) query(ctx context.Context, queryVec []float32, docs []chromem.Document) ([]chromem.Result, error) {
	db := chromem.NewDB()
	col, err := db.CreateCollection("sections", nil, func(context.Context, string) ([]float32, error) {
		return nil, errNoEmbeddingFunc
	})
	if err != nil {
		return nil, fmt.Errorf("creating collection: %w", err)
	}
	if err := col.AddDocuments(ctx, docs, s.pool.Size()); err != nil {
		return nil, fmt.Errorf("adding documents: %w", err)
	}
	return col.QueryEmbedding(ctx, queryVec, col.Count(), nil, nil)
}

// fill converts similarities to scores and replaces failed sections with
// the mean of the successful ones.
func (s *SemanticScorer) fill(res *Result, similarities []float64, failures []error) {
	var sum float64
	var ok, failed int
	var firstErr error
	for i, sim := range similarities {
		if failures[i] != nil {
			failed++
			if firstErr == nil {
				firstErr = failures[i]
			}
			continue
		}
		res.Scores[i] = Clamp01((sim + 1) / 2)
		sum += res.Scores[i]
		ok++
	}
	if failed == 0 {
		return
	}

	mean := 0.0
	if ok > 0 {
		mean = sum / float64(ok)
	}
	res.Degraded = make([]bool, len(similarities))
	for i := range similarities {
		if failures[i] != nil {
			res.Scores[i] = mean
			res.Degraded[i] = true
		}
	}

	s.logger.Warn("sections degraded to corpus mean", "degraded", failed, "sections", len(similarities), "mean", mean)
	res.Warnings = append(res.Warnings, fmt.Errorf("%w: %s: %d of %d sections scored with corpus mean %.4f: %w",
		core.ErrScorerDegradation, NameSemantic, failed, len(similarities), mean, firstErr).Error())
}

func (s *SemanticScorer) degradeAll(res *Result, cause error) {
	res.Degraded = make([]bool, len(res.Scores))
	for i := range res.Degraded {
		res.Degraded[i] = true
	}
	res.Warnings = append(res.Warnings, fmt.Errorf("%w: %s: all %d sections scored 0: %w",
		core.ErrScorerDegradation, NameSemantic, len(res.Scores), cause).Error())
}

// EmbeddingText is the text embedded for a section: its title, when present,
// followed by its body.
func EmbeddingText(section *core.Section) string {
	title := strings.TrimSpace(section.Title)
	if title == "" {
		return section.Text
	}
	return title + "\n" + section.Text
}

// callWithTimeout runs fn with a deadline of timeout and returns as soon as
// the deadline passes, even if fn has not returned yet.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		value, err := fn(ctx)
		done <- result{value, err}
	}()

	var r result
	select {
	case r = <-done:
		if r.err == nil || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return r.value, r.err
		}
	case <-ctx.Done():
	}
	var zero T
	return zero, fmt.Errorf("%w after %s: %w", ErrEmbeddingTimeout, timeout, ctx.Err())
}
