package layout

// Cache holds one lazily computed value.
type Cache[T any] struct {
	val T
	ok  bool
}

// GetOrCompute returns the cached value, computing and storing it first if
// the cache is empty.
func (c *Cache[T]) GetOrCompute(compute func() T) T {
	if !c.ok {
		c.val = compute()
		c.ok = true
	}
	return c.val
}

// Invalidate empties the cache without recomputing.
func (c *Cache[T]) Invalidate() {
	var zero T
	c.val = zero
	c.ok = false
}

// Valid reports whether a value is cached.
func (c *Cache[T]) Valid() bool {
	return c.ok
}
