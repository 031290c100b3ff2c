package checker

import (
	"fmt"
	"strings"

	"squiggle/internal/diag"
	"squiggle/internal/source"
)

const maxLineLen = 120

var bracketPairs = map[byte]byte{')': '(', ']': '[', '}': '{'}

// BasicChecks is the built-in demo check: unbalanced brackets become
// errors, overlong lines become warnings, TODO markers become notes
// (which the display translation drops). It exists so the CLI and the
// stdio host work end to end without an external checker; real
// deployments plug their own CheckFunc into a Runner.
func BasicChecks(text string, v source.Version) []diag.Report {
	var out []diag.Report

	type open struct {
		ch  byte
		off uint32
	}
	var stack []open
	for i := 0; i < len(text); i++ {
		c := text[i]
		switch c {
		case '(', '[', '{':
			stack = append(stack, open{ch: c, off: uint32(i)})
		case ')', ']', '}':
			if len(stack) > 0 && stack[len(stack)-1].ch == bracketPairs[c] {
				stack = stack[:len(stack)-1]
				continue
			}
			out = append(out, diag.Report{
				Severity: diag.SevError,
				Message:  fmt.Sprintf("unexpected symbol %q", string(c)),
				Anchor:   diag.Anchor{Version: v, Span: source.Span{Start: uint32(i), End: uint32(i) + 1}},
			})
		}
	}
	for _, o := range stack {
		out = append(out, diag.Report{
			Severity: diag.SevError,
			Message:  fmt.Sprintf("unclosed %q", string(o.ch)),
			Anchor:   diag.Anchor{Version: v, Span: source.Span{Start: o.off, End: o.off + 1}},
		})
	}

	lineStart := 0
	for lineStart <= len(text) {
		lineEnd := strings.IndexByte(text[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd += lineStart
		}
		line := text[lineStart:lineEnd]
		if len(line) > maxLineLen {
			out = append(out, diag.Report{
				Severity: diag.SevWarning,
				Message:  fmt.Sprintf("line exceeds %d characters", maxLineLen),
				Anchor: diag.Anchor{Version: v, Span: source.Span{
					Start: uint32(lineStart + maxLineLen),
					End:   uint32(lineEnd),
				}},
			})
		}
		if idx := strings.Index(line, "TODO"); idx >= 0 {
			out = append(out, diag.Report{
				Severity: diag.SevNote,
				Message:  "unresolved TODO",
				Anchor: diag.Anchor{Version: v, Span: source.Span{
					Start: uint32(lineStart + idx),
					End:   uint32(lineStart + idx + len("TODO")),
				}},
			})
		}
		if lineEnd == len(text) {
			break
		}
		lineStart = lineEnd + 1
	}
	return out
}
