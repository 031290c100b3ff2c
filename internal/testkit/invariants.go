package testkit

import (
	"fmt"

	"squiggle/internal/diag"
	"squiggle/internal/source"
)

// CheckLiveSetInvariants runs the invariants every published live set
// must hold:
// 1) no entry carries the Dropped severity
// 2) every span is well-formed and within the document bounds
// 3) entries are in the deterministic display order
func CheckLiveSetInvariants(items []diag.DisplayDiagnostic, bounds source.Span) error {
	for i, d := range items {
		if d.Severity == diag.DispDropped {
			return fmt.Errorf("item %d: dropped severity in live set", i)
		}
		if d.Span.End < d.Span.Start {
			return fmt.Errorf("item %d: inverted span %v", i, d.Span)
		}
		if !bounds.Contains(d.Span) {
			return fmt.Errorf("item %d: span %v outside document bounds %v", i, d.Span, bounds)
		}
	}
	for i := 1; i < len(items); i++ {
		prev, cur := items[i-1], items[i]
		if prev.Span.Start > cur.Span.Start {
			return fmt.Errorf("item %d: out of order by span start", i)
		}
		if prev.Span.Start == cur.Span.Start && prev.Span.End > cur.Span.End {
			return fmt.Errorf("item %d: out of order by span end", i)
		}
	}
	return nil
}
