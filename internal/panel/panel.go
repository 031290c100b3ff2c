// Package panel holds the flat "all diagnostics, current version" list
// consumed by a diagnostics panel.
package panel

import (
	"sync"

	"squiggle/internal/diag"
	"squiggle/internal/source"
)

// Entry is one panel row.
type Entry struct {
	Span source.Span
	Diag diag.DisplayDiagnostic
}

// Model is the panel's backing list. Clear and Add write into a staging
// buffer; Show swaps the staging buffer in and fires the visibility
// hook. Readers therefore never observe a half-repopulated list: between
// Clear and Show they keep seeing the previous contents.
type Model struct {
	mu    sync.Mutex
	items []Entry
	next  []Entry
	show  func()
}

// NewModel creates an empty panel. show may be nil; when set it is
// invoked on every Show, typically to make the host's panel visible.
func NewModel(show func()) *Model {
	return &Model{show: show}
}

// Clear resets the staging buffer. Published contents are untouched
// until the next Show.
func (m *Model) Clear() {
	m.mu.Lock()
	m.next = m.next[:0]
	m.mu.Unlock()
}

// Add appends a row to the staging buffer.
func (m *Model) Add(span source.Span, d diag.DisplayDiagnostic) {
	m.mu.Lock()
	m.next = append(m.next, Entry{Span: span, Diag: d})
	m.mu.Unlock()
}

// Show publishes the staging buffer and signals the host.
func (m *Model) Show() {
	m.mu.Lock()
	published := make([]Entry, len(m.next))
	copy(published, m.next)
	m.items = published
	hook := m.show
	m.mu.Unlock()
	if hook != nil {
		hook()
	}
}

// Items returns the published rows. The slice is replaced wholesale on
// every Show and never mutated in place, so callers may keep it.
func (m *Model) Items() []Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.items
}

func (m *Model) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.items)
}
