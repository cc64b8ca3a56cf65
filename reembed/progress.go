package reembed

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// ProgressTracker redraws one status line (using a carriage return) as
// chunks are re-embedded. Nothing is written before Start.
type ProgressTracker struct {
	mu sync.Mutex
	w  io.Writer

	total, every   int
	done, reported int

	now     func() time.Time
	started time.Time
}

// NewProgressTracker reports on w every time at least every more chunks
// out of total have completed.
func NewProgressTracker(w io.Writer, total, every int) *ProgressTracker {
	return &ProgressTracker{w: w, total: total, every: every, now: time.Now}
}

// Start zeroes the counters and starts the clock.
func (p *ProgressTracker) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.started = p.now()
	p.done, p.reported = 0, 0
}

// Update records that done chunks have completed in total.
func (p *ProgressTracker) Update(done int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set(done)
}

// Increment records delta more completed chunks.
func (p *ProgressTracker) Increment(delta int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.set(p.done + delta)
}

// Finish draws the final 100% line and ends it with a newline.
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started.IsZero() {
		return
	}
	p.done = p.total
	p.draw()
	fmt.Fprintln(p.w)
}

// Elapsed is the time since Start, or zero before it.
func (p *ProgressTracker) Elapsed() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started.IsZero() {
		return 0
	}
	return p.now().Sub(p.started)
}

// set must be called with mu held.
func (p *ProgressTracker) set(done int) {
	if p.started.IsZero() {
		return
	}
	p.done = min(done, p.total)
	if p.done-p.reported >= p.every {
		p.draw()
		p.reported = p.done
	}
}

// draw must be called with mu held.
func (p *ProgressTracker) draw() {
	var rate float64
	if secs := p.now().Sub(p.started).Seconds(); secs > 0 {
		rate = float64(p.done) / secs
	}
	pct := 0.0
	if p.total > 0 {
		pct = 100 * float64(p.done) / float64(p.total)
	}

	fmt.Fprintf(p.w, "\rProgress: %d/%d (%.1f%%) - %.1f chunks/s", p.done, p.total, pct, rate)
	if left := p.total - p.done; left > 0 && rate > 0 {
		eta := time.Duration(float64(left) / rate * float64(time.Second))
		fmt.Fprintf(p.w, " - eta %v", eta.Round(time.Second))
	}
}
