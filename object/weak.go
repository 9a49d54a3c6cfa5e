package object

import "weak"

// WeakRef is a non-owning reference to a shared object.
//
// A WeakRef never keeps its target alive: it resolves to nil once the
// target has been disposed, or once the garbage collector has reclaimed
// it. The zero WeakRef resolves to nil.
type WeakRef struct {
	ptr weak.Pointer[Shared]
	id  ID
}

// NewWeakRef creates a weak reference to s. A nil s yields a reference
// that never resolves.
func NewWeakRef(s *Shared) WeakRef {
	if s == nil {
		return WeakRef{}
	}
	return WeakRef{ptr: weak.Make(s), id: s.id}
}

// Get returns the target, or nil if it is gone.
func (r WeakRef) Get() *Shared {
	s := r.ptr.Value()
	if s == nil || s.disposed {
		return nil
	}
	return s
}

// IsValid reports whether the target is still alive.
func (r WeakRef) IsValid() bool {
	return r.Get() != nil
}

// ID returns the identifier of the target, which stays available after
// the target is gone.
func (r WeakRef) ID() ID {
	return r.id
}
