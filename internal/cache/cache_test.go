package cache

import (
	"testing"

	"squiggle/internal/diag"
	"squiggle/internal/source"
)

func testItems() []diag.DisplayDiagnostic {
	return []diag.DisplayDiagnostic{
		{Severity: diag.DispSyntaxError, Message: "unexpected symbol", Span: source.Span{Start: 10, End: 14}},
		{Severity: diag.DispWarning, Message: "long line", Span: source.Span{Start: 120, End: 130}},
	}
}

func TestDiskCache_RoundTrip(t *testing.T) {
	c, err := Open("squiggle-test", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	const path = "/proj/a.lua"
	hash := HashText("local x = 1")

	if err := c.Put(path, hash, testItems()); err != nil {
		t.Fatal(err)
	}
	got, hit, err := c.Get(path, hash)
	if err != nil {
		t.Fatal(err)
	}
	if !hit {
		t.Fatalf("expected a hit")
	}
	want := testItems()
	if len(got) != len(want) {
		t.Fatalf("got %d items, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("items[%d] = %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestDiskCache_MissOnContentChange(t *testing.T) {
	c, err := Open("squiggle-test", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	const path = "/proj/a.lua"
	if err := c.Put(path, HashText("old content"), testItems()); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(path, HashText("new content")); err != nil || hit {
		t.Errorf("hit=%v err=%v, want a clean miss on a changed hash", hit, err)
	}
}

func TestDiskCache_MissOnUnknownPath(t *testing.T) {
	c, err := Open("squiggle-test", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get("/never/seen.lua", HashText("x")); err != nil || hit {
		t.Errorf("hit=%v err=%v, want a clean miss", hit, err)
	}
}

func TestDiskCache_PutOverwrites(t *testing.T) {
	c, err := Open("squiggle-test", t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	const path = "/proj/a.lua"
	hash := HashText("content")
	if err := c.Put(path, hash, testItems()); err != nil {
		t.Fatal(err)
	}
	if err := c.Put(path, hash, nil); err != nil {
		t.Fatal(err)
	}
	got, hit, err := c.Get(path, hash)
	if err != nil || !hit {
		t.Fatalf("hit=%v err=%v", hit, err)
	}
	if len(got) != 0 {
		t.Errorf("got %d items after overwrite with empty set", len(got))
	}
}

func TestDiskCache_DropAll(t *testing.T) {
	dir := t.TempDir() + "/cache"
	c, err := Open("squiggle-test", dir)
	if err != nil {
		t.Fatal(err)
	}
	const path = "/proj/a.lua"
	hash := HashText("content")
	if err := c.Put(path, hash, testItems()); err != nil {
		t.Fatal(err)
	}
	if err := c.DropAll(); err != nil {
		t.Fatal(err)
	}
	if _, hit, err := c.Get(path, hash); err != nil || hit {
		t.Errorf("hit=%v err=%v after DropAll, want a clean miss", hit, err)
	}
}

func TestDiskCache_NilIsNoop(t *testing.T) {
	var c *DiskCache
	if err := c.Put("/a", HashText("x"), testItems()); err != nil {
		t.Errorf("nil Put errored: %v", err)
	}
	if _, hit, err := c.Get("/a", HashText("x")); err != nil || hit {
		t.Errorf("nil Get hit=%v err=%v", hit, err)
	}
}
