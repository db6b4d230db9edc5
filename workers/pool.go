package workers

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/panjf2000/ants/v2"
)

// Pool is a bounded worker pool. A nil *Pool runs every task inline on the
// calling goroutine.
type Pool struct {
	pool   *ants.Pool
	logger *slog.Logger
}

// Option configures a Pool.
type Option func(*Pool) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pool) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// New creates a pool with size workers. Sizes below 1 are raised to 1.
func New(size int, opts ...Option) (*Pool, error) {
	if size < 1 {
		size = 1
	}

	pool, err := ants.NewPool(size)
	if err != nil {
		return nil, fmt.Errorf("creating worker pool: %w", err)
	}

	p := &Pool{
		pool:   pool,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(p); err != nil {
			pool.Release()
			return nil, err
		}
	}
	p.logger = p.logger.With("component", "workers")

	return p, nil
}

// Size returns the number of workers, or 1 for a nil pool.
func (p *Pool) Size() int {
	if p == nil || p.pool == nil {
		return 1
	}
	return p.pool.Cap()
}

// Submit runs task on a worker. When the pool cannot accept it the task runs
// on a new goroutine instead, so a submitted task always runs exactly once.
func (p *Pool) Submit(task func()) {
	if p == nil || p.pool == nil {
		go task()
		return
	}
	if err := p.pool.Submit(task); err != nil {
		p.logger.Warn("pool rejected task, running unpooled", "err", err)
		go task()
	}
}

// ForEach calls fn for every index in [0, n) on the pool and waits for all
// calls to return. Each call should write only to its own index.
//
// Once ctx is done no further indices are started; ForEach still waits for
// the running ones and then returns ctx.Err().
func (p *Pool) ForEach(ctx context.Context, n int, fn func(i int)) error {
	if p == nil || p.pool == nil {
		for i := 0; i < n; i++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			fn(i)
		}
		return nil
	}

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		if err := p.pool.Submit(func() {
			defer wg.Done()
			fn(i)
		}); err != nil {
			// Pool closed or overloaded; keep the work on this goroutine.
			p.logger.Debug("pool rejected task, running inline", "index", i, "err", err)
			fn(i)
			wg.Done()
		}
	}
	wg.Wait()

	return ctx.Err()
}

// Release stops the pool's workers. The pool must not be used afterwards.
func (p *Pool) Release() {
	if p != nil && p.pool != nil {
		p.pool.Release()
	}
}
