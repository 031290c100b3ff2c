package main

import (
	"bytes"
	"strings"
	"testing"
	"unicode/utf8"

	"squiggle/internal/config"
	"squiggle/internal/diag"
	"squiggle/internal/panel"
	"squiggle/internal/source"
)

func TestPrintPanel(t *testing.T) {
	doc := source.NewDocument("one\ntwo\nthree")
	entries := []panel.Entry{
		{
			Span: source.Span{Start: 4, End: 7},
			Diag: diag.DisplayDiagnostic{
				Severity: diag.DispSyntaxError,
				Message:  "unexpected symbol",
				Span:     source.Span{Start: 4, End: 7},
			},
		},
	}

	var buf bytes.Buffer
	printPanel(&buf, "a.lua", doc, entries, config.PanelConfig{})
	out := buf.String()
	if !strings.Contains(out, "2:1") || !strings.Contains(out, "unexpected symbol") {
		t.Errorf("output = %q", out)
	}
	if strings.Contains(out, "a.lua") {
		t.Errorf("origin shown without show_origin: %q", out)
	}

	buf.Reset()
	printPanel(&buf, "a.lua", doc, entries, config.PanelConfig{ShowOrigin: true})
	if !strings.Contains(buf.String(), "a.lua:2:1") {
		t.Errorf("output = %q, want origin prefix", buf.String())
	}
}

func TestPrintPanel_TruncatesOnRuneBoundaries(t *testing.T) {
	doc := source.NewDocument("x")
	entries := []panel.Entry{
		{
			Span: source.Span{Start: 0, End: 1},
			Diag: diag.DisplayDiagnostic{
				Severity: diag.DispWarning,
				Message:  "シンボルが長すぎます",
				Span:     source.Span{Start: 0, End: 1},
			},
		},
	}

	var buf bytes.Buffer
	printPanel(&buf, "a.lua", doc, entries, config.PanelConfig{MaxWidth: 10})
	out := buf.String()
	if !utf8.ValidString(out) {
		t.Fatalf("output is not valid UTF-8: %q", out)
	}
	if !strings.Contains(out, "...") {
		t.Errorf("output = %q, want a truncated message", out)
	}
}
