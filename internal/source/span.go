package source

import (
	"fmt"
)

// Span is a half-open byte range within a document. A Span is only
// meaningful together with the Version of the document it was taken at;
// two spans are comparable only at the same Version.
type Span struct {
	Start uint32 // inclusive
	End   uint32 // exclusive
}

func (s Span) Empty() bool {
	return s.Start == s.End
}

func (s Span) Len() uint32 {
	return s.End - s.Start
}

func (s Span) String() string {
	return fmt.Sprintf("%d-%d", s.Start, s.End)
}

// Intersects reports whether the two spans share at least one byte.
// Zero-length spans intersect a span that strictly contains their position.
func (s Span) Intersects(other Span) bool {
	if s.Empty() && other.Empty() {
		return s.Start == other.Start
	}
	if s.Empty() {
		return other.Start <= s.Start && s.Start < other.End
	}
	if other.Empty() {
		return s.Start <= other.Start && other.Start < s.End
	}
	return s.Start < other.End && other.Start < s.End
}

// Contains reports whether other lies fully inside s.
func (s Span) Contains(other Span) bool {
	return s.Start <= other.Start && other.End <= s.End
}

// Cover returns the smallest span covering both s and other.
func (s Span) Cover(other Span) Span {
	if other.Start < s.Start {
		s.Start = other.Start
	}
	if other.End > s.End {
		s.End = other.End
	}
	return s
}
