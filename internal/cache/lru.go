package cache

// Slot indices of the two list sentinels. Sentinels are never exposed
// as entries; they only mark the ends of the recency list.
const (
	oldestEnd int32 = 0
	newestEnd int32 = 1

	noSlot int32 = -1
)

// lruSlot is one cell of the arena backing the recency list.
// Links are slot indices, so moving or freeing an entry never
// invalidates references held by the index map.
type lruSlot[K comparable, V any] struct {
	key   K
	value V
	size  int64
	prev  int32
	next  int32
	used  bool
}

// lruList is a doubly-linked recency list stored in a slot arena.
// The list is ordered oldest-used to newest-used, between two sentinel slots.
// The list is not thread-safe; callers must handle synchronization.
type lruList[K comparable, V any] struct {
	slots []lruSlot[K, V]
	free  []int32
	len   int
}

// newLRUList creates an empty list holding only its sentinels.
func newLRUList[K comparable, V any]() *lruList[K, V] {
	l := &lruList[K, V]{
		slots: make([]lruSlot[K, V], 2, 16),
	}
	l.slots[oldestEnd] = lruSlot[K, V]{prev: noSlot, next: newestEnd}
	l.slots[newestEnd] = lruSlot[K, V]{prev: oldestEnd, next: noSlot}
	return l
}

// Len returns the number of live slots, sentinels excluded.
func (l *lruList[K, V]) Len() int {
	return l.len
}

// PushNewest stores a new entry at the newest end.
// Returns the slot index for later access.
func (l *lruList[K, V]) PushNewest(key K, value V, size int64) int32 {
	var idx int32
	if n := len(l.free); n > 0 {
		idx = l.free[n-1]
		l.free = l.free[:n-1]
	} else {
		l.slots = append(l.slots, lruSlot[K, V]{})
		idx = int32(len(l.slots) - 1)
	}
	l.slots[idx] = lruSlot[K, V]{key: key, value: value, size: size, used: true}
	l.linkNewest(idx)
	l.len++
	return idx
}

// MoveToNewest relinks an existing slot next to the newest sentinel.
func (l *lruList[K, V]) MoveToNewest(idx int32) {
	if l.slots[newestEnd].prev == idx {
		return
	}
	l.unlink(idx)
	l.linkNewest(idx)
}

// Remove unlinks a slot and returns it to the free list.
// The removed key, value and size are returned.
func (l *lruList[K, V]) Remove(idx int32) (K, V, int64) {
	s := l.slots[idx]
	l.unlink(idx)
	l.slots[idx] = lruSlot[K, V]{prev: noSlot, next: noSlot}
	l.free = append(l.free, idx)
	l.len--
	return s.key, s.value, s.size
}

// Oldest returns the slot index of the least recently used entry.
// Returns false if the list is empty.
func (l *lruList[K, V]) Oldest() (int32, bool) {
	idx := l.slots[oldestEnd].next
	if idx == newestEnd {
		return noSlot, false
	}
	return idx, true
}

// Slot returns the slot at idx.
func (l *lruList[K, V]) Slot(idx int32) *lruSlot[K, V] {
	return &l.slots[idx]
}

// Each calls fn for every live slot from oldest to newest.
// fn must not modify the list.
func (l *lruList[K, V]) Each(fn func(idx int32, s *lruSlot[K, V])) {
	for idx := l.slots[oldestEnd].next; idx != newestEnd; idx = l.slots[idx].next {
		fn(idx, &l.slots[idx])
	}
}

// Clear drops every slot, keeping only the sentinels.
func (l *lruList[K, V]) Clear() {
	clear(l.slots[2:])
	l.slots = l.slots[:2]
	l.slots[oldestEnd].next = newestEnd
	l.slots[newestEnd].prev = oldestEnd
	l.free = l.free[:0]
	l.len = 0
}

func (l *lruList[K, V]) linkNewest(idx int32) {
	last := l.slots[newestEnd].prev
	l.slots[idx].prev = last
	l.slots[idx].next = newestEnd
	l.slots[last].next = idx
	l.slots[newestEnd].prev = idx
}

// unlink removes a slot from the list without clearing its contents.
func (l *lruList[K, V]) unlink(idx int32) {
	s := &l.slots[idx]
	l.slots[s.prev].next = s.next
	l.slots[s.next].prev = s.prev
	s.prev = noSlot
	s.next = noSlot
}
