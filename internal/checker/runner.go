// Package checker runs a pluggable check function against a document on
// a background goroutine and feeds the results to an overlay through the
// two-signal contract: an immediate Invalidated per edit and a Settled
// once a burst of edits quiesces.
package checker

import (
	"sync"
	"sync/atomic"
	"time"

	"squiggle/internal/diag"
	"squiggle/internal/observ"
	"squiggle/internal/overlay"
	"squiggle/internal/source"
)

// CheckFunc inspects one document state and returns reports anchored at
// the version it was given. Implementations must be pure with respect to
// their input; they may be slow.
type CheckFunc func(text string, v source.Version) []diag.Report

// Runner is an overlay.Source backed by a CheckFunc. Edits are debounced
// the same way the language server debounces analysis: every Edited call
// resets the timer, and the check runs once the document has been quiet
// for the configured window. Runs superseded by a newer edit burst are
// discarded without signaling.
type Runner struct {
	doc      *source.Document
	check    CheckFunc
	debounce time.Duration

	seq    atomic.Uint64
	latest atomic.Uint64

	mu        sync.Mutex
	handler   overlay.Handler
	timer     *time.Timer
	reports   []diag.Report
	reportsAt source.Version
	timings   observ.Report
	closed    bool
}

// NewRunner wraps check for doc. A non-positive debounce falls back to
// 300ms, the same default the stdio host uses.
func NewRunner(doc *source.Document, check CheckFunc, debounce time.Duration) *Runner {
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Runner{
		doc:      doc,
		check:    check,
		debounce: debounce,
	}
}

// Subscribe registers the handler receiving both signal kinds.
func (r *Runner) Subscribe(h overlay.Handler) {
	r.mu.Lock()
	r.handler = h
	r.mu.Unlock()
}

// Unsubscribe detaches the handler. A run already in flight finishes
// but signals no one.
func (r *Runner) Unsubscribe() {
	r.mu.Lock()
	r.handler = nil
	r.mu.Unlock()
}

// Edited tells the runner the document changed. The affected span is
// forwarded to the handler immediately; the check itself is debounced.
func (r *Runner) Edited(span source.Span, at source.Version) {
	r.mu.Lock()
	h := r.handler
	closed := r.closed
	r.mu.Unlock()
	if closed {
		return
	}
	if h != nil {
		h.Invalidated(span, at)
	}
	r.Kick()
}

// Kick schedules a check run without reporting an invalidated span,
// e.g. right after a document opens.
func (r *Runner) Kick() {
	seq := r.seq.Add(1)
	r.latest.Store(seq)
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(r.debounce, func() {
		r.run(seq)
	})
	r.mu.Unlock()
}

func (r *Runner) run(seq uint64) {
	if seq != r.latest.Load() {
		return
	}
	timer := observ.NewTimer()
	stop := timer.Phase("check")
	text, v := r.doc.Snapshot()
	reports := r.check(text, v)
	stop()

	r.mu.Lock()
	if r.closed || seq != r.latest.Load() {
		r.mu.Unlock()
		return
	}
	r.reports = reports
	r.reportsAt = v
	r.timings = timer.Report()
	h := r.handler
	r.mu.Unlock()
	if h != nil {
		h.Settled()
	}
}

// Reports answers from the last completed run. When the caller asks at
// the same version the run was anchored at, results are narrowed to the
// requested span; across versions the spans are not comparable and the
// full set is returned for the overlay to remap.
func (r *Runner) Reports(span source.Span, at source.Version) []diag.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]diag.Report, 0, len(r.reports))
	for _, rep := range r.reports {
		if rep.Anchor.Version == at && !rep.Anchor.Span.Intersects(span) {
			continue
		}
		out = append(out, rep)
	}
	return out
}

// Timings reports the duration of the last completed run.
func (r *Runner) Timings() observ.Report {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.timings
}

// Close stops the timer; in-flight runs are discarded.
func (r *Runner) Close() {
	r.mu.Lock()
	r.closed = true
	if r.timer != nil {
		r.timer.Stop()
		r.timer = nil
	}
	r.handler = nil
	r.mu.Unlock()
}
