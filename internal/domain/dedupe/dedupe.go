// Package dedupe guards against concurrent linkage runs of the same race.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Guard tracks which keys have a run in flight.
type Guard interface {
	// Acquire marks key as in flight. It returns false when key is already in
	// flight or the guard is at capacity.
	Acquire(ctx context.Context, key string) bool

	// Release clears key so another run may acquire it.
	Release(ctx context.Context, key string)

	// Size returns the number of keys currently in flight.
	Size() int64
}

// inMemoryGuard implements Guard with a mutex-protected set.
// maxSize <= 0 means unbounded.
type inMemoryGuard struct {
	mu      sync.Mutex
	active  map[string]struct{}
	maxSize int
	size    atomic.Int64
}

// NewInMemoryGuard creates a new in-memory guard with configuration options.
func NewInMemoryGuard(opts ...Option) Guard {
	g := &inMemoryGuard{
		active: make(map[string]struct{}),
	}

	for _, opt := range opts {
		opt(g)
	}

	return g
}

func (g *inMemoryGuard) Acquire(_ context.Context, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[key]; busy {
		return false
	}
	if g.maxSize > 0 && len(g.active) >= g.maxSize {
		return false
	}
	g.active[key] = struct{}{}
	g.size.Add(1)
	return true
}

func (g *inMemoryGuard) Release(_ context.Context, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.active[key]; busy {
		delete(g.active, key)
		g.size.Add(-1)
	}
}

func (g *inMemoryGuard) Size() int64 {
	return g.size.Load()
}
