package diag

import (
	"testing"

	"squiggle/internal/source"
)

func TestTranslate(t *testing.T) {
	tests := []struct {
		name     string
		sev      Severity
		expected DisplaySeverity
	}{
		{name: "note is dropped", sev: SevNote, expected: DispDropped},
		{name: "warning stays warning", sev: SevWarning, expected: DispWarning},
		{name: "error becomes syntax error", sev: SevError, expected: DispSyntaxError},
		{name: "fatal shares the error bucket", sev: SevFatal, expected: DispSyntaxError},
		{name: "unknown severity is dropped", sev: Severity(200), expected: DispDropped},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Translate(tt.sev); got != tt.expected {
				t.Errorf("Translate(%v) = %v, want %v", tt.sev, got, tt.expected)
			}
		})
	}
}

func TestSortDisplay(t *testing.T) {
	items := []DisplayDiagnostic{
		{Severity: DispWarning, Message: "b", Span: source.Span{Start: 20, End: 25}},
		{Severity: DispWarning, Message: "late warning", Span: source.Span{Start: 10, End: 14}},
		{Severity: DispSyntaxError, Message: "error first", Span: source.Span{Start: 10, End: 14}},
		{Severity: DispWarning, Message: "a", Span: source.Span{Start: 20, End: 25}},
		{Severity: DispSyntaxError, Message: "short span first", Span: source.Span{Start: 10, End: 12}},
	}
	SortDisplay(items)

	want := []string{"short span first", "error first", "late warning", "a", "b"}
	for i, msg := range want {
		if items[i].Message != msg {
			t.Errorf("items[%d].Message = %q, want %q", i, items[i].Message, msg)
		}
	}
}

func TestSortDisplay_Deterministic(t *testing.T) {
	a := []DisplayDiagnostic{
		{Severity: DispWarning, Message: "x", Span: source.Span{Start: 5, End: 8}},
		{Severity: DispSyntaxError, Message: "y", Span: source.Span{Start: 1, End: 3}},
	}
	b := []DisplayDiagnostic{a[1], a[0]}
	SortDisplay(a)
	SortDisplay(b)
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("order depends on input order: %+v vs %+v", a, b)
		}
	}
}
