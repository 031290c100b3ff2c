package host

import (
	"sort"
	"unicode/utf8"

	"squiggle/internal/source"
)

// offsetForPosition converts an LSP position (0-based line, UTF-16
// character) into a byte offset within text. Positions past the end of a
// line or of the document clamp instead of failing.
func offsetForPosition(text string, pos position) uint32 {
	if pos.Line < 0 || pos.Character < 0 {
		return 0
	}
	line := 0
	i := 0
	for i < len(text) && line < pos.Line {
		if text[i] == '\n' {
			line++
		}
		i++
	}
	if line < pos.Line {
		return uint32(len(text))
	}
	utf16Units := 0
	for i < len(text) {
		if text[i] == '\n' {
			break
		}
		r, size := utf8.DecodeRuneInString(text[i:])
		if r == utf8.RuneError && size == 1 {
			size = 1
		}
		need := 1
		if r > 0xFFFF {
			need = 2
		}
		if utf16Units+need > pos.Character {
			break
		}
		utf16Units += need
		i += size
		if utf16Units == pos.Character {
			break
		}
	}
	return uint32(i)
}

// positionForOffset converts a byte offset into an LSP position with
// UTF-16 character counting.
func positionForOffset(text string, offset uint32) position {
	if int(offset) > len(text) {
		offset = uint32(len(text))
	}
	lineIdx := make([]uint32, 0, 64)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			lineIdx = append(lineIdx, uint32(i))
		}
	}
	idx := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= offset })
	var lineStart uint32
	if idx > 0 {
		lineStart = lineIdx[idx-1] + 1
	}
	if lineStart > offset {
		lineStart = offset
	}
	units := 0
	for off := lineStart; off < offset; {
		r, size := utf8.DecodeRuneInString(text[off:offset])
		if r == utf8.RuneError && size == 1 {
			size = 1
		}
		if off+uint32(size) > offset {
			break
		}
		if r > 0xFFFF {
			units += 2
		} else {
			units++
		}
		off += uint32(size)
	}
	return position{Line: idx, Character: units}
}

// rangeForSpan renders a current-version span as an LSP range.
func rangeForSpan(text string, span source.Span) lspRange {
	return lspRange{
		Start: positionForOffset(text, span.Start),
		End:   positionForOffset(text, span.End),
	}
}

// editForChange turns one LSP content change into a document edit
// against the given text state.
func editForChange(text string, change textDocumentContentChangeEvent) source.Edit {
	if change.Range == nil {
		return source.Edit{
			Span: source.Span{Start: 0, End: uint32(len(text))},
			Text: change.Text,
		}
	}
	start := offsetForPosition(text, change.Range.Start)
	end := offsetForPosition(text, change.Range.End)
	if end < start {
		end = start
	}
	return source.Edit{
		Span: source.Span{Start: start, End: end},
		Text: change.Text,
	}
}
