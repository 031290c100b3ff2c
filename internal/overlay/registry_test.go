package overlay

import (
	"context"
	"errors"
	"testing"

	"squiggle/internal/source"
)

func newTestFactory(t *testing.T) (Factory, map[string]*stubSource) {
	t.Helper()
	sources := make(map[string]*stubSource)
	factory := func(key string) (*Overlay, error) {
		if key == "missing" {
			return nil, errors.New("no such document")
		}
		src := &stubSource{}
		sources[key] = src
		return New(source.NewDocument("text for "+key), src, Options{}), nil
	}
	return factory, sources
}

func TestRegistry_AcquireCreatesOnce(t *testing.T) {
	factory, sources := newTestFactory(t)
	r := NewRegistry(factory)
	defer r.CloseAll()

	a, err := r.Acquire("a.lua")
	if err != nil {
		t.Fatal(err)
	}
	again, err := r.Acquire("a.lua")
	if err != nil {
		t.Fatal(err)
	}
	if a != again {
		t.Errorf("second Acquire built a new overlay")
	}
	if len(sources) != 1 {
		t.Errorf("factory ran %d times, want 1", len(sources))
	}

	if _, err := r.Acquire("missing"); err == nil {
		t.Errorf("factory error was swallowed")
	}
	if _, ok := r.Lookup("missing"); ok {
		t.Errorf("failed Acquire left an entry behind")
	}
}

func TestRegistry_CloseTearsDown(t *testing.T) {
	factory, sources := newTestFactory(t)
	r := NewRegistry(factory)

	if _, err := r.Acquire("a.lua"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Acquire("b.lua"); err != nil {
		t.Fatal(err)
	}

	r.Close("a.lua")
	if !sources["a.lua"].unsubscribed.Load() {
		t.Errorf("Close did not close the overlay")
	}
	if _, ok := r.Lookup("a.lua"); ok {
		t.Errorf("closed key still registered")
	}
	if _, ok := r.Lookup("b.lua"); !ok {
		t.Errorf("Close removed an unrelated key")
	}

	r.CloseAll()
	if !sources["b.lua"].unsubscribed.Load() {
		t.Errorf("CloseAll left an overlay open")
	}
	if got := r.Keys(); len(got) != 0 {
		t.Errorf("Keys() after CloseAll = %v", got)
	}
}

func TestRegistry_KeysSorted(t *testing.T) {
	factory, _ := newTestFactory(t)
	r := NewRegistry(factory)
	defer r.CloseAll()

	for _, key := range []string{"c.lua", "a.lua", "b.lua"} {
		if _, err := r.Acquire(key); err != nil {
			t.Fatal(err)
		}
	}
	got := r.Keys()
	want := []string{"a.lua", "b.lua", "c.lua"}
	if len(got) != len(want) {
		t.Fatalf("Keys() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Keys() = %v, want %v", got, want)
		}
	}
}

func TestRegistry_RebuildAll(t *testing.T) {
	factory, sources := newTestFactory(t)
	r := NewRegistry(factory)
	defer r.CloseAll()

	if _, err := r.Acquire("a.lua"); err != nil {
		t.Fatal(err)
	}
	if _, err := r.Acquire("b.lua"); err != nil {
		t.Fatal(err)
	}
	if err := r.RebuildAll(context.Background()); err != nil {
		t.Fatal(err)
	}
	for key, src := range sources {
		if src.calls.Load() == 0 {
			t.Errorf("%s: no rebuild ran", key)
		}
	}
}
