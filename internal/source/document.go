package source

import (
	"fmt"
	"sync"

	"fortio.org/safecast"
)

// Edit replaces the text inside Span with Text. Offsets are interpreted
// against the document state the edit is applied to; within one Apply
// batch each edit sees the result of the previous one.
type Edit struct {
	Span Span
	Text string
}

type editRecord struct {
	version Version // version produced by this edit
	start   uint32
	oldLen  uint32
	newLen  uint32
}

// Document is a versioned text buffer. Every Apply produces a new
// Version and records enough in its edit journal to translate spans
// taken at older versions into current coordinates.
//
// Readers only ever see a fully applied state; Remap and the accessors
// may be called concurrently with Apply.
type Document struct {
	mu      sync.RWMutex
	text    []byte
	version Version
	journal []editRecord
	oldest  Version // earliest version Remap can still answer for
	lineIdx []uint32
}

// NewDocument opens a document at FirstVersion. The content is
// normalized the same way files are loaded: BOM stripped, CRLF folded.
func NewDocument(text string) *Document {
	content := []byte(text)
	content, _ = removeBOM(content)
	content, _ = normalizeCRLF(content)
	return &Document{
		text:    content,
		version: FirstVersion,
		oldest:  FirstVersion,
		lineIdx: buildLineIndex(content),
	}
}

// Version returns the current document version.
func (d *Document) Version() Version {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.version
}

// Text returns the current content.
func (d *Document) Text() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return string(d.text)
}

// Snapshot returns the current content together with the version it
// belongs to. Callers anchoring results to a version must use this
// rather than separate Text and Version calls, which an Apply can
// interleave.
func (d *Document) Snapshot() (string, Version) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return string(d.text), d.version
}

// FullSpan covers the whole document at the current version.
func (d *Document) FullSpan() Span {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return Span{Start: 0, End: d.lenLocked()}
}

func (d *Document) lenLocked() uint32 {
	n, err := safecast.Conv[uint32](len(d.text))
	if err != nil {
		panic(fmt.Errorf("document length overflow: %w", err))
	}
	return n
}

// Apply applies the edits in order and advances the version by one.
// Out-of-bounds offsets are clamped rather than rejected.
func (d *Document) Apply(edits ...Edit) Version {
	d.mu.Lock()
	defer d.mu.Unlock()
	next := d.version + 1
	for _, e := range edits {
		limit := d.lenLocked()
		start, end := e.Span.Start, e.Span.End
		if start > limit {
			start = limit
		}
		if end > limit {
			end = limit
		}
		if end < start {
			end = start
		}
		newLen, err := safecast.Conv[uint32](len(e.Text))
		if err != nil {
			panic(fmt.Errorf("edit length overflow: %w", err))
		}
		d.journal = append(d.journal, editRecord{
			version: next,
			start:   start,
			oldLen:  end - start,
			newLen:  newLen,
		})
		out := make([]byte, 0, len(d.text)-int(end-start)+len(e.Text))
		out = append(out, d.text[:start]...)
		out = append(out, e.Text...)
		out = append(out, d.text[end:]...)
		d.text = out
	}
	d.version = next
	d.lineIdx = buildLineIndex(d.text)
	return next
}

// Remap translates a span taken at version from into current
// coordinates. It fails when the span overlaps edited text, when from is
// newer than the document, or when the journal no longer reaches back to
// from. Failure means "this span is gone", never an error condition.
func (d *Document) Remap(span Span, from Version) (Span, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if from == d.version {
		return span, true
	}
	if from > d.version || from < d.oldest {
		return Span{}, false
	}
	for _, rec := range d.journal {
		if rec.version <= from {
			continue
		}
		editEnd := rec.start + rec.oldLen
		delta := int64(rec.newLen) - int64(rec.oldLen)
		switch {
		case editEnd <= span.Start:
			span.Start = uint32(int64(span.Start) + delta)
			span.End = uint32(int64(span.End) + delta)
		case rec.start >= span.End:
			// edit strictly after the span, nothing moves
		default:
			return Span{}, false
		}
	}
	return span, true
}

// Compact drops journal entries needed only for versions older than
// keep. Remapping from a version before keep fails afterwards.
func (d *Document) Compact(keep Version) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if keep <= d.oldest {
		return
	}
	if keep > d.version {
		keep = d.version
	}
	kept := d.journal[:0]
	for _, rec := range d.journal {
		if rec.version > keep {
			kept = append(kept, rec)
		}
	}
	d.journal = kept
	d.oldest = keep
}

// Resolve converts a span at the current version into 1-based line and
// column positions for display.
func (d *Document) Resolve(span Span) (start, end LineCol) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return toLineCol(d.lineIdx, span.Start), toLineCol(d.lineIdx, span.End)
}
