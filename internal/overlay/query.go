package overlay

import (
	"iter"

	"squiggle/internal/diag"
	"squiggle/internal/source"
)

// Query returns the diagnostics whose spans intersect any of the
// requested spans, as (span, diagnostic) pairs. The requested spans must
// be in current-version coordinates.
//
// The sequence is a point-in-time read: it iterates the snapshot that
// was published when Query was called, so re-ranging over it yields the
// same pairs even if a rebuild publishes meanwhile. It never blocks on a
// rebuild. No spans, or spans outside the document, simply yield
// nothing.
func (o *Overlay) Query(spans ...source.Span) iter.Seq2[source.Span, diag.DisplayDiagnostic] {
	snap := o.live.Load()
	return func(yield func(source.Span, diag.DisplayDiagnostic) bool) {
		if snap == nil || len(spans) == 0 {
			return
		}
		for _, q := range spans {
			for _, d := range snap.items {
				if !d.Span.Intersects(q) {
					continue
				}
				if !yield(d.Span, d) {
					return
				}
			}
		}
	}
}
