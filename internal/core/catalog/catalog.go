// Package catalog provides the string-keyed, append-only registries that
// traits and properties are resolved from.
package catalog

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrDuplicate = errors.New("catalog: duplicate id")
	ErrSealed    = errors.New("catalog: sealed")
	ErrInvalidID = errors.New("catalog: invalid id")
)

// Entry is anything a Catalog can hold.
type Entry interface {
	ID() string
}

// Catalog is an in-memory, insertion-ordered registry. Entries are shared
// singletons: Get hands out the registered value, never a copy.
type Catalog[T Entry] struct {
	mu      sync.RWMutex
	kind    string
	entries map[string]T
	order   []T
	sealed  bool
}

// New returns an empty catalog. kind is only used in error messages.
func New[T Entry](kind string) *Catalog[T] {
	return &Catalog[T]{
		kind:    kind,
		entries: make(map[string]T),
	}
}

func (c *Catalog[T]) Kind() string { return c.kind }

func (c *Catalog[T]) Register(entry T) error {
	id := entry.ID()
	if id == "" {
		return fmt.Errorf("%w: empty %s id", ErrInvalidID, c.kind)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sealed {
		return fmt.Errorf("%w: cannot register %s %q", ErrSealed, c.kind, id)
	}
	if _, exists := c.entries[id]; exists {
		return fmt.Errorf("%w: %s %q", ErrDuplicate, c.kind, id)
	}
	c.entries[id] = entry
	c.order = append(c.order, entry)
	return nil
}

// MustRegister registers entries at startup and panics on the first
// failure.
func (c *Catalog[T]) MustRegister(entries ...T) {
	for _, e := range entries {
		if err := c.Register(e); err != nil {
			panic(err)
		}
	}
}

func (c *Catalog[T]) Get(id string) (T, bool) {
	c.mu.RLock()
	e, ok := c.entries[id]
	c.mu.RUnlock()
	return e, ok
}

// All returns the entries in registration order.
func (c *Catalog[T]) All() []T {
	c.mu.RLock()
	out := make([]T, len(c.order))
	copy(out, c.order)
	c.mu.RUnlock()
	return out
}

func (c *Catalog[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}

// Seal freezes the catalog. Sealing twice is a no-op.
func (c *Catalog[T]) Seal() {
	c.mu.Lock()
	c.sealed = true
	c.mu.Unlock()
}

func (c *Catalog[T]) Sealed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.sealed
}
