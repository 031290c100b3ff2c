package host

import (
	"testing"

	"squiggle/internal/source"
)

func TestOffsetForPosition(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		pos      position
		expected uint32
	}{
		{name: "start of document", text: "hello", pos: position{Line: 0, Character: 0}, expected: 0},
		{name: "within first line", text: "hello", pos: position{Line: 0, Character: 3}, expected: 3},
		{name: "second line", text: "ab\ncd", pos: position{Line: 1, Character: 1}, expected: 4},
		{name: "clamp past line end", text: "ab\ncd", pos: position{Line: 0, Character: 99}, expected: 2},
		{name: "clamp past document", text: "ab", pos: position{Line: 5, Character: 0}, expected: 2},
		{name: "two-byte rune counts one utf16 unit", text: "é_x", pos: position{Line: 0, Character: 1}, expected: 2},
		{name: "supplementary rune counts two utf16 units", text: "𐍈x", pos: position{Line: 0, Character: 2}, expected: 4},
		{name: "negative position clamps to zero", text: "ab", pos: position{Line: -1, Character: 0}, expected: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := offsetForPosition(tt.text, tt.pos); got != tt.expected {
				t.Errorf("offsetForPosition(%q, %+v) = %d, want %d", tt.text, tt.pos, got, tt.expected)
			}
		})
	}
}

func TestPositionForOffset(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		offset   uint32
		expected position
	}{
		{name: "start", text: "hello", offset: 0, expected: position{Line: 0, Character: 0}},
		{name: "mid line", text: "hello", offset: 3, expected: position{Line: 0, Character: 3}},
		{name: "start of second line", text: "ab\ncd", offset: 3, expected: position{Line: 1, Character: 0}},
		{name: "mid second line", text: "ab\ncd", offset: 4, expected: position{Line: 1, Character: 1}},
		{name: "clamp past end", text: "ab", offset: 99, expected: position{Line: 0, Character: 2}},
		{name: "after supplementary rune", text: "𐍈x", offset: 4, expected: position{Line: 0, Character: 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := positionForOffset(tt.text, tt.offset); got != tt.expected {
				t.Errorf("positionForOffset(%q, %d) = %+v, want %+v", tt.text, tt.offset, got, tt.expected)
			}
		})
	}
}

func TestRangeForSpan(t *testing.T) {
	text := "ab\ncdef"
	got := rangeForSpan(text, source.Span{Start: 4, End: 6})
	want := lspRange{
		Start: position{Line: 1, Character: 1},
		End:   position{Line: 1, Character: 3},
	}
	if got != want {
		t.Errorf("rangeForSpan() = %+v, want %+v", got, want)
	}
}

func TestEditForChange(t *testing.T) {
	text := "ab\ncd"

	t.Run("full replacement without a range", func(t *testing.T) {
		edit := editForChange(text, textDocumentContentChangeEvent{Text: "new"})
		if edit.Span != (source.Span{Start: 0, End: 5}) || edit.Text != "new" {
			t.Errorf("edit = %+v", edit)
		}
	})

	t.Run("incremental change", func(t *testing.T) {
		edit := editForChange(text, textDocumentContentChangeEvent{
			Range: &lspRange{
				Start: position{Line: 1, Character: 0},
				End:   position{Line: 1, Character: 2},
			},
			Text: "xyz",
		})
		if edit.Span != (source.Span{Start: 3, End: 5}) || edit.Text != "xyz" {
			t.Errorf("edit = %+v", edit)
		}
	})

	t.Run("inverted range collapses to insertion", func(t *testing.T) {
		edit := editForChange(text, textDocumentContentChangeEvent{
			Range: &lspRange{
				Start: position{Line: 1, Character: 2},
				End:   position{Line: 1, Character: 0},
			},
			Text: "x",
		})
		if edit.Span.Start != edit.Span.End {
			t.Errorf("edit span %+v, want a collapsed insertion", edit.Span)
		}
	})
}
