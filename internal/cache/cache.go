package cache

import (
	"errors"
	"fmt"
)

// ErrKeyExists is returned by Add when the key is already cached.
// Adding over a live entry is a caller bug: the stale entry must be
// removed first.
var ErrKeyExists = errors.New("cache: key already exists")

// ReleaseFunc is called for every value that leaves the cache through
// Remove, eviction or Clear(true).
type ReleaseFunc[K comparable, V any] func(key K, value V)

// Cache is a byte-budgeted LRU cache.
//
// Entries are kept in an index map and in a recency list ordered from
// oldest to newest use. Both structures are updated together in every
// operation. A lookup with Get does not count as use; call Touch when
// the value is actually used.
//
// The budget starts at zero, so nothing is retained until SetBudget is
// called, except entries that alone exceed the budget (see MakeRoom).
//
// Cache is not safe for concurrent use.
type Cache[K comparable, V any] struct {
	index   map[K]int32
	lru     *lruList[K, V]
	total   int64
	budget  int64
	release ReleaseFunc[K, V]

	hits      uint64
	misses    uint64
	evictions uint64
	removals  uint64
}

// New creates an empty cache. release may be nil.
func New[K comparable, V any](release ReleaseFunc[K, V]) *Cache[K, V] {
	return &Cache[K, V]{
		index:   make(map[K]int32),
		lru:     newLRUList[K, V](),
		release: release,
	}
}

// Get returns the value cached for key without promoting it.
func (c *Cache[K, V]) Get(key K) (V, bool) {
	idx, ok := c.index[key]
	if !ok {
		c.misses++
		var zero V
		return zero, false
	}
	c.hits++
	return c.lru.Slot(idx).value, true
}

// GetValid is like Get, but an entry for which valid reports false is
// removed and the lookup counts as a miss.
func (c *Cache[K, V]) GetValid(key K, valid func(V) bool) (V, bool) {
	var zero V
	idx, ok := c.index[key]
	if !ok {
		c.misses++
		return zero, false
	}
	v := c.lru.Slot(idx).value
	if !valid(v) {
		c.removeSlot(idx)
		c.removals++
		c.misses++
		return zero, false
	}
	c.hits++
	return v, true
}

// Peek is like Get but does not affect statistics.
func (c *Cache[K, V]) Peek(key K) (V, bool) {
	idx, ok := c.index[key]
	if !ok {
		var zero V
		return zero, false
	}
	return c.lru.Slot(idx).value, true
}

// Contains reports whether key is cached. It does not affect statistics.
func (c *Cache[K, V]) Contains(key K) bool {
	_, ok := c.index[key]
	return ok
}

// Touch marks key as most recently used.
// Returns false if key is not cached.
func (c *Cache[K, V]) Touch(key K) bool {
	idx, ok := c.index[key]
	if !ok {
		return false
	}
	c.lru.MoveToNewest(idx)
	return true
}

// Add inserts a new entry at the newest end of the recency list and
// accounts size bytes against the running total.
// Add does not evict; call MakeRoom first.
func (c *Cache[K, V]) Add(key K, value V, size int64) error {
	if _, ok := c.index[key]; ok {
		return fmt.Errorf("%w: %v", ErrKeyExists, key)
	}
	c.index[key] = c.lru.PushNewest(key, value, size)
	c.total += size
	return nil
}

// Remove drops key from the cache, releasing its value.
// Returns false if key is not cached.
func (c *Cache[K, V]) Remove(key K) bool {
	idx, ok := c.index[key]
	if !ok {
		return false
	}
	c.removeSlot(idx)
	c.removals++
	return true
}

// MakeRoom evicts the oldest entries so that bytesNeeded more bytes fit
// under the budget. A request that alone reaches the budget evicts
// nothing: it is allowed to exceed the budget instead.
func (c *Cache[K, V]) MakeRoom(bytesNeeded int64) {
	if bytesNeeded < c.budget && c.total+bytesNeeded > c.budget {
		c.PurgeDownToSize(c.budget - bytesNeeded)
	}
}

// PurgeDownToSize evicts least recently used entries until the total is
// at most target or the cache is empty.
func (c *Cache[K, V]) PurgeDownToSize(target int64) {
	for c.total > target {
		idx, ok := c.lru.Oldest()
		if !ok {
			return
		}
		c.removeSlot(idx)
		c.evictions++
	}
}

// SetBudget changes the byte budget. Shrinking purges immediately.
func (c *Cache[K, V]) SetBudget(budget int64) {
	if budget < c.budget {
		c.PurgeDownToSize(budget)
	}
	c.budget = budget
}

// Budget returns the byte budget.
func (c *Cache[K, V]) Budget() int64 {
	return c.budget
}

// TotalBytes returns the sum of the sizes of all cached entries.
func (c *Cache[K, V]) TotalBytes() int64 {
	return c.total
}

// Len returns the number of cached entries.
func (c *Cache[K, V]) Len() int {
	return len(c.index)
}

// Keys returns a snapshot of the cached keys, oldest first.
// The snapshot stays valid while entries are removed.
func (c *Cache[K, V]) Keys() []K {
	keys := make([]K, 0, c.lru.Len())
	c.lru.Each(func(_ int32, s *lruSlot[K, V]) {
		keys = append(keys, s.key)
	})
	return keys
}

// Clear empties the cache. If release is false the release callback is
// skipped and only bookkeeping is dropped.
func (c *Cache[K, V]) Clear(release bool) {
	if release && c.release != nil {
		c.lru.Each(func(_ int32, s *lruSlot[K, V]) {
			c.release(s.key, s.value)
		})
	}
	c.lru.Clear()
	clear(c.index)
	c.total = 0
}

// Stats returns cache statistics.
func (c *Cache[K, V]) Stats() Stats {
	return Stats{
		Len:        len(c.index),
		TotalBytes: c.total,
		Budget:     c.budget,
		Hits:       c.hits,
		Misses:     c.misses,
		Evictions:  c.evictions,
		Removals:   c.removals,
	}
}

// Validate checks that the index, the recency list and the byte total
// agree. It is meant for tests and debugging.
func (c *Cache[K, V]) Validate() error {
	var (
		count int
		bytes int64
		err   error
	)
	c.lru.Each(func(idx int32, s *lruSlot[K, V]) {
		count++
		bytes += s.size
		if err != nil {
			return
		}
		if !s.used {
			err = fmt.Errorf("cache: free slot %d linked in recency list", idx)
			return
		}
		if got, ok := c.index[s.key]; !ok || got != idx {
			err = fmt.Errorf("cache: key %v in list but not indexed at slot %d", s.key, idx)
		}
	})
	if err != nil {
		return err
	}
	if count != len(c.index) {
		return fmt.Errorf("cache: list has %d entries, index has %d", count, len(c.index))
	}
	if bytes != c.total {
		return fmt.Errorf("cache: actual byte count %d != nominal %d", bytes, c.total)
	}
	return nil
}

func (c *Cache[K, V]) removeSlot(idx int32) {
	key, value, size := c.lru.Remove(idx)
	delete(c.index, key)
	c.total -= size
	if c.release != nil {
		c.release(key, value)
	}
}

// Stats contains cache statistics.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// TotalBytes is the sum of entry sizes.
	TotalBytes int64
	// Budget is the configured byte budget.
	Budget int64
	// Hits is the number of lookups that returned an entry.
	Hits uint64
	// Misses is the number of lookups that returned nothing, including
	// GetValid calls that dropped an invalid entry.
	Misses uint64
	// Evictions is the number of entries dropped to honor the budget.
	Evictions uint64
	// Removals is the number of entries dropped through Remove.
	Removals uint64
}
