package overlay

import (
	"squiggle/internal/diag"
	"squiggle/internal/source"
)

// Handler receives the two signal kinds a diagnostic source emits. Both
// methods may be called from the source's worker goroutine, concurrently
// with each other and with queries against the overlay.
type Handler interface {
	// Invalidated fires once per edit with the affected span, in the
	// coordinates of the version the source knew at that moment.
	Invalidated(span source.Span, at source.Version)
	// Settled fires once after a burst of edits quiesces. It is the
	// only trigger for a full rebuild.
	Settled()
}

// Source is an asynchronous producer of diagnostic reports.
type Source interface {
	Subscribe(h Handler)
	// Reports returns all reports intersecting span, answered at the
	// best version the source has. Each report carries its own anchor
	// version; callers must not assume it equals at.
	Reports(span source.Span, at source.Version) []diag.Report
	Unsubscribe()
}

// Doc is the read-only view of the document the overlay tracks.
type Doc interface {
	Version() source.Version
	Remap(span source.Span, from source.Version) (source.Span, bool)
	FullSpan() source.Span
}
