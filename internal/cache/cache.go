// Package cache persists the last published diagnostics per document so
// a reopened file can show its previous markers instantly, before the
// first rebuild publishes fresh ones.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"squiggle/internal/diag"
	"squiggle/internal/source"
)

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 1

// Item is one cached diagnostic in wire form.
type Item struct {
	Start    uint32
	End      uint32
	Severity uint8
	Message  string
}

// Payload is what gets serialized per document.
type Payload struct {
	Schema      uint16
	Path        string
	ContentHash [32]byte
	Items       []Item
}

// DiskCache stores payloads keyed by document path. Entries are only
// served back when the content hash still matches, so stale text can
// never resurrect stale markers. Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Open initializes the cache at dir, or at the standard XDG location
// for app when dir is empty.
func Open(app, dir string) (*DiskCache, error) {
	if dir == "" {
		base := os.Getenv("XDG_CACHE_HOME")
		if base == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return nil, err
			}
			base = filepath.Join(home, ".cache")
		}
		dir = filepath.Join(base, app)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(docPath string) string {
	key := sha256.Sum256([]byte(docPath))
	return filepath.Join(c.dir, "docs", hex.EncodeToString(key[:])+".mp")
}

// HashText is the content digest Put and Get key on.
func HashText(text string) [32]byte {
	return sha256.Sum256([]byte(text))
}

// Put serializes the diagnostics for docPath at the given content hash.
func (c *DiskCache) Put(docPath string, contentHash [32]byte, items []diag.DisplayDiagnostic) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload := Payload{
		Schema:      schemaVersion,
		Path:        docPath,
		ContentHash: contentHash,
		Items:       make([]Item, len(items)),
	}
	for i, d := range items {
		payload.Items[i] = Item{
			Start:    d.Span.Start,
			End:      d.Span.End,
			Severity: uint8(d.Severity),
			Message:  d.Message,
		}
	}

	p := c.pathFor(docPath)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	if err := msgpack.NewEncoder(f).Encode(&payload); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return err
	}
	// atomic replace
	return os.Rename(f.Name(), p)
}

// Get returns the cached diagnostics for docPath if the content hash
// still matches. A missing entry or a mismatch is a miss, not an error.
func (c *DiskCache) Get(docPath string, contentHash [32]byte) ([]diag.DisplayDiagnostic, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(docPath))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() { _ = f.Close() }()

	var payload Payload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	if payload.Schema != schemaVersion || payload.ContentHash != contentHash {
		return nil, false, nil
	}
	out := make([]diag.DisplayDiagnostic, len(payload.Items))
	for i, item := range payload.Items {
		out[i] = diag.DisplayDiagnostic{
			Severity: diag.DisplaySeverity(item.Severity),
			Message:  item.Message,
			Span:     source.Span{Start: item.Start, End: item.End},
		}
	}
	return out, true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
