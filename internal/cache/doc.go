// Package cache provides a byte-budgeted LRU cache for GPU resources.
//
// Cache[K, V] keeps its entries in two structures that are always updated
// together: an index map from key to arena slot, and a doubly-linked recency
// list threaded through the same slot arena between two sentinel slots.
// Slot indices are stable, so promoting or evicting an entry never touches
// the index map beyond the entry's own key.
//
//	c := cache.New[string, []byte](func(k string, v []byte) { /* free GPU memory */ })
//	c.SetBudget(64 << 10)
//	c.MakeRoom(int64(len(data)))
//	_ = c.Add("key", data, int64(len(data)))
//	if v, ok := c.Get("key"); ok {
//		c.Touch("key")
//		use(v)
//	}
//
// # Budget
//
// MakeRoom evicts oldest entries until a new resource fits, except when the
// resource alone is at least as large as the whole budget; such a resource is
// allowed to overflow rather than flush the cache for no benefit.
//
// # Thread Safety
//
// Cache is not safe for concurrent use. GPU caches are owned by the thread that
// holds the GPU context current.
package cache
