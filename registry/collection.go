// Copyright 2025 The Transporte Authors
// SPDX-License-Identifier: Apache-2.0

package registry

import (
	"fmt"
	"slices"
	"sync"
)

// Entity is anything stored in a Collection.
type Entity interface {
	EntityID() string
}

// Collection is the repository for one entity kind. Items keep insertion
// order. All methods are safe for concurrent use and return copies.
type Collection[T Entity] struct {
	mu    sync.RWMutex
	items []T
}

// NewCollection returns a collection holding items.
func NewCollection[T Entity](items ...T) *Collection[T] {
	return &Collection[T]{items: slices.Clone(items)}
}

// Add appends item. IDs must be unique.
func (c *Collection[T]) Add(item T) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.indexLocked(item.EntityID()) >= 0 {
		return fmt.Errorf("%w: duplicate id %q", ErrValidation, item.EntityID())
	}

	c.items = append(c.items, item)

	return nil
}

func (c *Collection[T]) indexLocked(id string) int {
	return slices.IndexFunc(c.items, func(it T) bool { return it.EntityID() == id })
}

// Find returns the item with the given id.
func (c *Collection[T]) Find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := c.indexLocked(id); i >= 0 {
		return c.items[i], true
	}

	var zero T

	return zero, false
}

// FindFirst returns the first item, in insertion order, matching pred.
func (c *Collection[T]) FindFirst(pred func(T) bool) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if i := slices.IndexFunc(c.items, pred); i >= 0 {
		return c.items[i], true
	}

	var zero T

	return zero, false
}

// Filter returns every item matching pred.
func (c *Collection[T]) Filter(pred func(T) bool) []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var out []T

	for _, it := range c.items {
		if pred(it) {
			out = append(out, it)
		}
	}

	return out
}

// All returns every item.
func (c *Collection[T]) All() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return slices.Clone(c.items)
}

// Len returns the number of items.
func (c *Collection[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.items)
}

// Update applies fn to the stored item. When fn fails nothing changes.
func (c *Collection[T]) Update(id string, fn func(*T) error) (T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero T

	i := c.indexLocked(id)
	if i < 0 {
		return zero, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	item := c.items[i]
	if err := fn(&item); err != nil {
		return zero, err
	}

	if item.EntityID() != id {
		return zero, fmt.Errorf("%w: id cannot change", ErrValidation)
	}

	c.items[i] = item

	return item, nil
}

// Remove deletes the item with the given id and reports whether it existed.
func (c *Collection[T]) Remove(id string) bool {
	return len(c.RemoveWhere(func(it T) bool { return it.EntityID() == id })) > 0
}

// RemoveWhere deletes every item matching pred and returns them.
func (c *Collection[T]) RemoveWhere(pred func(T) bool) []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	var removed []T

	kept := c.items[:0]
	for _, it := range c.items {
		if pred(it) {
			removed = append(removed, it)
		} else {
			kept = append(kept, it)
		}
	}

	clear(c.items[len(kept):])
	c.items = kept

	return removed
}

// Replace swaps the whole content.
func (c *Collection[T]) Replace(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = slices.Clone(items)
}
