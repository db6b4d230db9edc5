package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/poiesic/sectionrank/core"
	"github.com/poiesic/sectionrank/workers"
)

// Pipeline loads the documents of a job and splits them into candidate sections.
// Documents are read concurrently; each is bounded by the document timeout.
type Pipeline struct {
	readers   map[string]Reader
	sectioner *Sectioner
	pool      *workers.Pool
	ownsPool  bool
	timeout   time.Duration
	baseDir   string
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPool reads documents on a shared pool. The pipeline does not release it.
// Default is a private pool of runtime.NumCPU() / 2 workers, with a minimum of 1.
func WithPool(pool *workers.Pool) Option {
	return func(p *Pipeline) error {
		p.pool = pool
		return nil
	}
}

// WithDocumentTimeout bounds reading and sectioning a single document.
func WithDocumentTimeout(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d <= 0 {
			return fmt.Errorf("%w: document timeout %s", core.ErrInvalidConfig, d)
		}
		p.timeout = d
		return nil
	}
}

// WithBaseDir resolves relative document filenames against dir.
func WithBaseDir(dir string) Option {
	return func(p *Pipeline) error {
		p.baseDir = dir
		return nil
	}
}

// WithReader registers r for files with extension ext, such as ".pdf".
func WithReader(ext string, r Reader) Option {
	return func(p *Pipeline) error {
		if r == nil {
			return ErrReaderRequired
		}
		p.readers[normalizeExt(ext)] = r
		return nil
	}
}

// WithSectioner sets a custom sectioner.
func WithSectioner(s *Sectioner) Option {
	return func(p *Pipeline) error {
		if s != nil {
			p.sectioner = s
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline reading PDF, text and
// markdown documents.
func NewPipeline(opts ...Option) (*Pipeline, error) {
	p := &Pipeline{
		readers: map[string]Reader{
			".pdf": PDFReader{},
			".txt": TextReader{},
			".md":  TextReader{},
		},
		timeout: core.DefaultConfig().DocumentTimeout,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(p); err != nil {
			return nil, err
		}
	}

	if p.sectioner == nil {
		sectioner, err := NewSectioner(WithSectionerLogger(p.logger))
		if err != nil {
			return nil, err
		}
		p.sectioner = sectioner
	}

	if p.pool == nil {
		pool, err := workers.New(max(runtime.NumCPU()/2, 1), workers.WithLogger(p.logger))
		if err != nil {
			return nil, err
		}
		p.pool = pool
		p.ownsPool = true
	}

	p.logger = p.logger.With("component", "ingestion")
	return p, nil
}

// Load reads every document of job and returns the candidate sections in
// document order, plus one warning per document that could not be used.
// A failed document never fails the job; only cancellation of ctx does.
func (p *Pipeline) Load(ctx context.Context, job *core.Job) ([]*core.Section, []string, error) {
	if job == nil {
		return nil, nil, fmt.Errorf("%w: job is nil", core.ErrInvalidQuery)
	}

	n := len(job.Documents)
	perDoc := make([][]*core.Section, n)
	failures := make([]error, n)
	if err := p.pool.ForEach(ctx, n, func(i int) {
		perDoc[i], failures[i] = p.loadDocument(ctx, i, job.Documents[i])
	}); err != nil {
		return nil, nil, err
	}

	var sections []*core.Section
	warnings := []string{}
	for i, doc := range job.Documents {
		if failures[i] != nil {
			p.logger.Warn("skipping document", "document", doc.Filename, "err", failures[i])
			warnings = append(warnings, fmt.Errorf("%w: %s: %w", core.ErrSectionIngestion, doc.Filename, failures[i]).Error())
			continue
		}
		sections = append(sections, perDoc[i]...)
	}

	p.logger.Info("documents loaded", "documents", n, "failed", len(warnings), "sections", len(sections))
	return sections, warnings, nil
}

func (p *Pipeline) loadDocument(ctx context.Context, index int, jd core.JobDocument) ([]*core.Section, error) {
	reader, ok := p.readers[normalizeExt(filepath.Ext(jd.Filename))]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(jd.Filename))
	}

	pages, err := p.read(ctx, reader, p.resolve(jd.Filename))
	if err != nil {
		return nil, err
	}
	if len(pages) == 0 {
		return nil, ErrNoText
	}

	doc := &core.Document{
		Id:       core.IDFromContent(jd.Filename),
		Filename: jd.Filename,
		Title:    jd.Title,
		Pages:    pages,
	}
	if doc.Title == "" {
		doc.Title = strings.TrimSuffix(filepath.Base(jd.Filename), filepath.Ext(jd.Filename))
	}
	return p.sectioner.Sections(doc, index), nil
}

// read runs the reader under the document timeout and returns as soon as it
// passes, even if the reader has not returned yet.
func (p *Pipeline) read(ctx context.Context, reader Reader, path string) ([]core.Page, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	type result struct {
		pages []core.Page
		err   error
	}
	done := make(chan result, 1)
	go func() {
		pages, err := reader.Read(ctx, path)
		done <- result{pages, err}
	}()

	select {
	case r := <-done:
		if r.err == nil || !errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return r.pages, r.err
		}
	case <-ctx.Done():
	}
	return nil, fmt.Errorf("%w after %s: %w", ErrDocumentTimeout, p.timeout, ctx.Err())
}

func (p *Pipeline) resolve(filename string) string {
	if p.baseDir == "" || filepath.IsAbs(filename) {
		return filename
	}
	return filepath.Join(p.baseDir, filename)
}

// Release releases the pipeline's private worker pool, if any.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.ownsPool {
		p.pool.Release()
	}
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(ext)
	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
