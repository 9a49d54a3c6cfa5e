// Package object provides the slice of the shared-object runtime that GPU
// caches depend on: reference-counted shared objects with edit indices,
// typed properties, and weak references that observe disposal without
// extending an object's lifetime.
package object

import (
	"errors"
	"sync/atomic"
)

// ID uniquely identifies a shared object for the life of the process.
// IDs are never reused, so a cache keyed by ID cannot confuse a disposed
// object with a newer one allocated at the same address.
type ID uint64

// ErrDisposed is returned when operating on a disposed object.
var ErrDisposed = errors.New("object: disposed")

// ErrEditIndexLocked is returned by SetEditIndex on a locked object.
var ErrEditIndexLocked = errors.New("object: edit index is locked")

var nextID atomic.Uint64

// PropertyType identifies a property attached to a shared object.
type PropertyType uint32

// FourCC builds a four-character code.
func FourCC(a, b, c, d byte) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d)
}

// Shared is a reference-counted object with an edit index.
//
// The edit index starts at 1 and is bumped by Edited every time the
// object's content changes. Caches snapshot it when they build derived
// data and compare it later to detect staleness. An object can lock its
// edit index, in which case Edited leaves it unchanged.
//
// Shared is not safe for concurrent mutation.
type Shared struct {
	id        ID
	refCount  uint32
	editIndex uint32
	locked    bool
	disposed  bool

	props map[PropertyType]any
}

// NewShared creates a shared object with a reference count of one.
func NewShared() *Shared {
	return &Shared{
		id:        ID(nextID.Add(1)),
		refCount:  1,
		editIndex: 1,
	}
}

// ID returns the object's identifier.
func (s *Shared) ID() ID {
	return s.id
}

// Retain adds a reference and returns the object.
func (s *Shared) Retain() *Shared {
	if !s.disposed {
		s.refCount++
	}
	return s
}

// RefCount returns the current reference count.
func (s *Shared) RefCount() uint32 {
	return s.refCount
}

// IsReferenced reports whether more than one reference is held.
func (s *Shared) IsReferenced() bool {
	return s.refCount > 1
}

// Release drops a reference. The object is disposed when the last
// reference goes away.
func (s *Shared) Release() {
	if s.disposed {
		return
	}
	s.refCount--
	if s.refCount == 0 {
		s.dispose()
	}
}

// Dispose is an alias of Release matching the toolkit's naming.
func (s *Shared) Dispose() {
	s.Release()
}

// IsDisposed reports whether the last reference has been released.
func (s *Shared) IsDisposed() bool {
	return s.disposed
}

// EditIndex returns the current edit index.
func (s *Shared) EditIndex() uint32 {
	return s.editIndex
}

// Edited records a content change by bumping the edit index.
// It has no effect while the edit index is locked.
func (s *Shared) Edited() error {
	if s.disposed {
		return ErrDisposed
	}
	if !s.locked {
		s.editIndex++
	}
	return nil
}

// SetEditIndex forces the edit index, e.g. after duplicating an object
// whose derived data can be shared.
func (s *Shared) SetEditIndex(index uint32) error {
	if s.locked {
		return ErrEditIndexLocked
	}
	s.editIndex = index
	return nil
}

// SetEditIndexLocked freezes or unfreezes the edit index.
func (s *Shared) SetEditIndexLocked(locked bool) {
	s.locked = locked
}

// IsEditIndexLocked reports whether the edit index is frozen.
func (s *Shared) IsEditIndexLocked() bool {
	return s.locked
}

func (s *Shared) dispose() {
	s.disposed = true
	s.props = nil
}
