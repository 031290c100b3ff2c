package overlay

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"
)

// Factory builds the overlay for a document key, wiring up whatever
// document handle and diagnostic source the key refers to.
type Factory func(key string) (*Overlay, error)

// Registry owns at most one overlay per open document. Overlays are
// created on first Acquire and torn down on Close; there is no implicit
// global cache behind it.
type Registry struct {
	mu       sync.Mutex
	factory  Factory
	overlays map[string]*Overlay
}

func NewRegistry(factory Factory) *Registry {
	return &Registry{
		factory:  factory,
		overlays: make(map[string]*Overlay),
	}
}

// Acquire returns the overlay for key, creating it on first use.
func (r *Registry) Acquire(key string) (*Overlay, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if o, ok := r.overlays[key]; ok {
		return o, nil
	}
	if r.factory == nil {
		return nil, fmt.Errorf("overlay registry: no factory for %q", key)
	}
	o, err := r.factory(key)
	if err != nil {
		return nil, err
	}
	r.overlays[key] = o
	return o, nil
}

// Lookup returns the overlay for key without creating one.
func (r *Registry) Lookup(key string) (*Overlay, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.overlays[key]
	return o, ok
}

// Close tears down the overlay for key, if any.
func (r *Registry) Close(key string) {
	r.mu.Lock()
	o, ok := r.overlays[key]
	delete(r.overlays, key)
	r.mu.Unlock()
	if ok {
		o.Close()
	}
}

// CloseAll tears down every overlay.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	overlays := r.overlays
	r.overlays = make(map[string]*Overlay)
	r.mu.Unlock()
	for _, o := range overlays {
		o.Close()
	}
}

// Keys returns the open document keys in sorted order.
func (r *Registry) Keys() []string {
	r.mu.Lock()
	keys := make([]string, 0, len(r.overlays))
	for key := range r.overlays {
		keys = append(keys, key)
	}
	r.mu.Unlock()
	sort.Strings(keys)
	return keys
}

// RebuildAll triggers a rebuild on every open overlay and waits for all
// of them to settle.
func (r *Registry) RebuildAll(ctx context.Context) error {
	r.mu.Lock()
	overlays := make([]*Overlay, 0, len(r.overlays))
	for _, o := range r.overlays {
		overlays = append(overlays, o)
	}
	r.mu.Unlock()

	g, ctx := errgroup.WithContext(ctx)
	for _, o := range overlays {
		g.Go(func() error {
			return o.RebuildWait(ctx)
		})
	}
	return g.Wait()
}
