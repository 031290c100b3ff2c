package source

import (
	"slices"
	"sort"
)

// LineCol is a human-readable position, 1-based in both fields.
type LineCol struct {
	Line uint32
	Col  uint32
}

// normalizeCRLF folds \r\n into \n, leaving lone \r alone. Returns the
// possibly new slice and whether anything changed.
func normalizeCRLF(content []byte) ([]byte, bool) {
	if !slices.Contains(content, '\r') {
		return content, false
	}
	out := make([]byte, 0, len(content))
	changed := false
	for i := 0; i < len(content); {
		if content[i] == '\r' && i+1 < len(content) && content[i+1] == '\n' {
			out = append(out, '\n')
			i += 2
			changed = true
			continue
		}
		out = append(out, content[i])
		i++
	}
	return out, changed
}

func removeBOM(content []byte) ([]byte, bool) {
	if len(content) >= 3 && content[0] == 0xEF && content[1] == 0xBB && content[2] == 0xBF {
		return content[3:], true
	}
	return content, false
}

// buildLineIndex records the byte offset of every \n.
func buildLineIndex(content []byte) []uint32 {
	out := make([]uint32, 0, 64)
	for i, b := range content {
		if b == '\n' {
			out = append(out, uint32(i))
		}
	}
	return out
}

func toLineCol(lineIdx []uint32, off uint32) LineCol {
	if len(lineIdx) == 0 {
		return LineCol{Line: 1, Col: off + 1}
	}
	idx := sort.Search(len(lineIdx), func(i int) bool { return lineIdx[i] >= off })
	var lineStart uint32
	if idx > 0 {
		lineStart = lineIdx[idx-1] + 1
	}
	return LineCol{Line: uint32(idx) + 1, Col: off - lineStart + 1}
}
