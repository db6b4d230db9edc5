package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker reports the progress of an embedding run to a writer,
// overwriting a single line.
type ProgressTracker struct {
	mu       sync.Mutex
	writer   io.Writer
	unit     string
	total    int
	done     int
	interval int
	reported int
	start    time.Time
}

// NewProgressTracker creates a tracker for total items, reporting every
// interval items. The clock starts now. A nil writer discards output.
func NewProgressTracker(writer io.Writer, total, interval int, unit string) *ProgressTracker {
	if writer == nil {
		writer = io.Discard
	}
	return &ProgressTracker{
		writer:   writer,
		unit:     unit,
		total:    total,
		interval: max(interval, 1),
		start:    time.Now(),
	}
}

// Add records n more finished items.
func (p *ProgressTracker) Add(n int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.done = min(p.done+n, p.total)
	if p.done-p.reported >= p.interval {
		p.report()
		p.reported = p.done
	}
}

// Done returns the number of finished items.
func (p *ProgressTracker) Done() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.done
}

// Finish prints the final progress line and returns the elapsed time.
func (p *ProgressTracker) Finish() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.report()
	fmt.Fprintln(p.writer)
	return time.Since(p.start)
}

// report must be called with the lock held.
func (p *ProgressTracker) report() {
	elapsed := time.Since(p.start).Seconds()
	rate := 0.0
	if elapsed > 0 {
		rate = float64(p.done) / elapsed
	}
	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.done) / float64(p.total) * 100.0
	}
	fmt.Fprintf(p.writer, "\rProgress: %d/%d %s (%.1f%%) - %.1f %s/s",
		p.done, p.total, p.unit, percentage, rate, p.unit)
}
