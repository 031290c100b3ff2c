package diag

import (
	"squiggle/internal/source"
)

// Anchor pins a report to the document state it was produced against.
type Anchor struct {
	Version source.Version
	Span    source.Span
}

// Report is a single checker finding. It is owned by its producer and
// immutable once emitted; consumers copy what they need.
type Report struct {
	Severity   Severity
	Message    string
	OriginPath string // optional path of the file the checker blamed
	Anchor     Anchor
}
