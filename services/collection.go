package services

import "sync"

// collection is the in-memory list plus the one record open for detail,
// guarded for concurrent handlers.
type collection[T any] struct {
	mu      sync.RWMutex
	items   []T
	current *T
	id      func(T) string
	// merge, when set, folds a fresh server copy into the known one.
	merge func(known, fresh T) T
}

func newCollection[T any](id func(T) string) *collection[T] {
	return &collection[T]{id: id}
}

func (c *collection[T]) all() []T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]T(nil), c.items...)
}

func (c *collection[T]) find(id string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, item := range c.items {
		if c.id(item) == id {
			return item, true
		}
	}
	var zero T
	return zero, false
}

func (c *collection[T]) open() *T {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.current == nil {
		return nil
	}
	v := *c.current
	return &v
}

func (c *collection[T]) replaceAll(items []T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T(nil), items...)
}

func (c *collection[T]) prepend(item T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = append([]T{item}, c.items...)
}

// setOpen replaces the open record and returns what was stored.
func (c *collection[T]) setOpen(item T) T {
	stored, _ := c.setOpenIf(item, func() bool { return true })
	return stored
}

// setOpenIf stores item as the open record only when current reports true,
// checked under the collection lock.
func (c *collection[T]) setOpenIf(item T, current func() bool) (T, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !current() {
		var zero T
		return zero, false
	}
	if c.current != nil && c.merge != nil && c.id(*c.current) == c.id(item) {
		item = c.merge(*c.current, item)
	}
	c.current = &item
	return item, true
}

// update swaps the matching record in the list and in the open slot.
func (c *collection[T]) update(item T) T {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := c.id(item)
	if c.current != nil && c.id(*c.current) == key {
		if c.merge != nil {
			item = c.merge(*c.current, item)
		}
		c.current = &item
	}
	for i := range c.items {
		if c.id(c.items[i]) == key {
			if c.merge != nil {
				item = c.merge(c.items[i], item)
			}
			c.items[i] = item
		}
	}
	return item
}

func (c *collection[T]) remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.items[:0]
	for _, item := range c.items {
		if c.id(item) != id {
			kept = append(kept, item)
		}
	}
	c.items = kept
	if c.current != nil && c.id(*c.current) == id {
		c.current = nil
	}
}

func (c *collection[T]) each(fn func(*T)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.items {
		fn(&c.items[i])
	}
	if c.current != nil {
		fn(c.current)
	}
}

func (c *collection[T]) reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = nil
	c.current = nil
}
