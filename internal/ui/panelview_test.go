package ui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"squiggle/internal/diag"
)

func TestTruncate(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		width    int
		expected string
	}{
		{name: "fits untouched", value: "short", width: 10, expected: "short"},
		{name: "zero width disables", value: "anything goes here", width: 0, expected: "anything goes here"},
		{name: "trimmed with ellipsis", value: "a very long diagnostic message", width: 10, expected: "a very ..."},
		{name: "tiny width has no room for ellipsis", value: "abcdef", width: 2, expected: "ab"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.value, tt.width); got != tt.expected {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.value, tt.width, got, tt.expected)
			}
		})
	}
}

func TestTruncate_WideRunes(t *testing.T) {
	// CJK runes occupy two display cells each
	got := Truncate("日本語のメッセージ", 8)
	if got == "日本語のメッセージ" {
		t.Fatalf("wide string was not truncated")
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("Truncate() = %q, want an ellipsis suffix", got)
	}
}

func TestPanelView_SpinnerUntilFirstSnapshot(t *testing.T) {
	updates := make(chan Snapshot, 1)
	m := NewPanelView("a.lua", updates).(*panelModel)

	if view := m.View(); !strings.Contains(view, "checking") {
		t.Errorf("initial view = %q, want the checking spinner line", view)
	}

	next, _ := m.Update(snapshotMsg(Snapshot{
		Version: 3,
		Rows: []Row{
			{Line: 1, Col: 2, Severity: diag.DispSyntaxError, Message: "unexpected symbol"},
		},
	}))
	m = next.(*panelModel)
	view := m.View()
	if !strings.Contains(view, "unexpected symbol") || !strings.Contains(view, "1:2") {
		t.Errorf("view after snapshot = %q", view)
	}
	if strings.Contains(view, "checking") {
		t.Errorf("spinner still visible after first snapshot")
	}
}

func TestPanelView_QuitKeys(t *testing.T) {
	updates := make(chan Snapshot)
	m := NewPanelView("a.lua", updates).(*panelModel)
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatalf("q did not quit")
	}
}
