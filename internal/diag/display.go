package diag

import (
	"sort"

	"squiggle/internal/source"
)

// DisplaySeverity is the category a report is rendered under.
type DisplaySeverity uint8

const (
	// DispDropped means the report has no display category and is
	// suppressed entirely.
	DispDropped DisplaySeverity = iota
	// DispWarning renders as a warning marker.
	DispWarning
	// DispSyntaxError renders as an error marker.
	DispSyntaxError
)

func (s DisplaySeverity) String() string {
	switch s {
	case DispDropped:
		return "DROPPED"
	case DispWarning:
		return "WARNING"
	case DispSyntaxError:
		return "SYNTAX_ERROR"
	}
	return "UNKNOWN"
}

// Translate maps a checker severity to its display category. The
// function is total: anything without a defined mapping, including
// severities added by future checkers, comes back as DispDropped.
// Fatal shares the error bucket with Error.
func Translate(sev Severity) DisplaySeverity {
	switch sev {
	case SevWarning:
		return DispWarning
	case SevError, SevFatal:
		return DispSyntaxError
	default:
		return DispDropped
	}
}

// DisplayDiagnostic is a display-ready finding. Its span is always
// expressed at the current version of the document it belongs to;
// instances are never mutated after construction.
type DisplayDiagnostic struct {
	Severity DisplaySeverity
	Message  string
	Span     source.Span
}

// SortDisplay orders diagnostics by span start, span end, severity
// (errors before warnings) and message, giving every rebuild a stable,
// deterministic order.
func SortDisplay(items []DisplayDiagnostic) {
	sort.SliceStable(items, func(i, j int) bool {
		di, dj := items[i], items[j]
		if di.Span.Start != dj.Span.Start {
			return di.Span.Start < dj.Span.Start
		}
		if di.Span.End != dj.Span.End {
			return di.Span.End < dj.Span.End
		}
		if di.Severity != dj.Severity {
			return di.Severity > dj.Severity
		}
		return di.Message < dj.Message
	})
}
