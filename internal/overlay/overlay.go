package overlay

import (
	"context"
	"sync"
	"sync/atomic"

	"squiggle/internal/diag"
	"squiggle/internal/panel"
	"squiggle/internal/source"
)

// snapshot is one published live set. It is immutable: rebuilds replace
// the whole snapshot, never entries inside it.
type snapshot struct {
	version source.Version
	items   []diag.DisplayDiagnostic
}

// Options configures an Overlay.
type Options struct {
	// Panel, when set, is cleared and repopulated on every rebuild.
	Panel *panel.Model
	// Notify, when set, is called with a current-version span whenever
	// that region's diagnostics may have changed: on every forwarded
	// fine-grained signal and once per published rebuild. It must be
	// cheap and must not call back into the overlay.
	Notify func(span source.Span)
}

// Overlay keeps a document's diagnostics current while the document
// changes underneath the checker. It consumes the source's two signal
// kinds, owns the rebuild state machine, and serves range queries from
// an atomically published snapshot so reads never wait on a rebuild.
//
// Invariants:
//   - all spans in the published snapshot are in the snapshot version's
//     coordinates, never a mixture of versions;
//   - at most one rebuild executes at any time;
//   - a settled signal arriving mid-rebuild is coalesced into exactly
//     one follow-up rebuild, never lost and never multiplied;
//   - a rebuild that lost the race with the document version is
//     discarded, not published.
type Overlay struct {
	doc    Doc
	src    Source
	panel  *panel.Model
	notify func(source.Span)

	closed atomic.Bool
	live   atomic.Pointer[snapshot]

	mu         sync.Mutex // guards the rebuild flags and waiters only
	rebuilding bool
	pending    bool
	waiters    []chan struct{}
}

// New creates an overlay for doc and subscribes it to src. The overlay
// stays subscribed until Close.
func New(doc Doc, src Source, opts Options) *Overlay {
	o := &Overlay{
		doc:    doc,
		src:    src,
		panel:  opts.Panel,
		notify: opts.Notify,
	}
	src.Subscribe(o)
	return o
}

// Invalidated forwards a fine-grained change to the notify hook after a
// best-effort remap into current coordinates. A span that no longer
// exists is dropped silently. This path never touches the live set and
// never takes the rebuild lock.
func (o *Overlay) Invalidated(span source.Span, at source.Version) {
	if o.closed.Load() {
		return
	}
	sp, ok := o.doc.Remap(span, at)
	if !ok {
		return
	}
	if o.notify != nil {
		o.notify(sp)
	}
}

// Settled requests a full rebuild. If one is already in flight the
// request is recorded and served by exactly one follow-up rebuild.
func (o *Overlay) Settled() {
	if o.closed.Load() {
		return
	}
	o.mu.Lock()
	if o.rebuilding {
		o.pending = true
		o.mu.Unlock()
		return
	}
	o.rebuilding = true
	o.mu.Unlock()
	go o.rebuildLoop()
}

func (o *Overlay) rebuildLoop() {
	for {
		published := o.rebuildOnce()
		o.mu.Lock()
		if o.closed.Load() {
			o.finishLocked()
			return
		}
		if !published {
			// stale result discarded, go again immediately
			o.mu.Unlock()
			continue
		}
		if o.pending {
			o.pending = false
			o.mu.Unlock()
			continue
		}
		o.finishLocked()
		return
	}
}

// finishLocked clears the in-flight flag and wakes RebuildWait callers.
// Called with o.mu held; releases it.
func (o *Overlay) finishLocked() {
	o.rebuilding = false
	waiters := o.waiters
	o.waiters = nil
	o.mu.Unlock()
	for _, ch := range waiters {
		close(ch)
	}
}

// rebuildOnce assembles a candidate live set against the version the
// document had when it started. It reports false when the document moved
// on mid-rebuild, in which case nothing was published.
func (o *Overlay) rebuildOnce() bool {
	target := o.doc.Version()
	full := o.doc.FullSpan()
	reports := o.src.Reports(full, target)
	items := make([]diag.DisplayDiagnostic, 0, len(reports))
	for _, r := range reports {
		sev := diag.Translate(r.Severity)
		if sev == diag.DispDropped {
			continue
		}
		sp, ok := o.doc.Remap(r.Anchor.Span, r.Anchor.Version)
		if !ok {
			continue
		}
		items = append(items, diag.DisplayDiagnostic{
			Severity: sev,
			Message:  r.Message,
			Span:     sp,
		})
	}
	diag.SortDisplay(items)
	if o.doc.Version() != target {
		return false
	}
	if o.closed.Load() {
		// results of in-flight work are discarded on close
		return true
	}
	o.live.Store(&snapshot{version: target, items: items})
	if o.panel != nil {
		o.panel.Clear()
		for _, d := range items {
			o.panel.Add(d.Span, d)
		}
	}
	if o.notify != nil {
		o.notify(full)
	}
	if o.panel != nil {
		o.panel.Show()
	}
	return true
}

// Version returns the version the published live set is expressed at,
// or source.NoVersion before the first rebuild.
func (o *Overlay) Version() source.Version {
	snap := o.live.Load()
	if snap == nil {
		return source.NoVersion
	}
	return snap.version
}

// PanelContents returns the published panel rows.
func (o *Overlay) PanelContents() []panel.Entry {
	if o.panel == nil {
		return nil
	}
	return o.panel.Items()
}

// RebuildWait triggers a rebuild and blocks until the in-flight rebuild
// chain drains or ctx is done. Intended for one-shot tooling and tests;
// the editor path never waits.
func (o *Overlay) RebuildWait(ctx context.Context) error {
	o.Settled()
	o.mu.Lock()
	if !o.rebuilding {
		o.mu.Unlock()
		return nil
	}
	ch := make(chan struct{})
	o.waiters = append(o.waiters, ch)
	o.mu.Unlock()
	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close unsubscribes from the source and marks the overlay dead. An
// in-flight rebuild finishes on its own but its result is discarded.
func (o *Overlay) Close() {
	if o.closed.Swap(true) {
		return
	}
	o.src.Unsubscribe()
}
