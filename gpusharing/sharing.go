// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

// Package gpusharing tracks which rendering contexts share a GPU resource
// namespace, and owns the caches that live as long as that namespace.
//
// A Group is created with its first Context. Contexts created with
// shareWith join that context's Group. Caches are attached to a Group under
// a four-character Tag, so every context in the group finds the same cache
// instance. When the last context of a group is closed the group is torn
// down and its caches are released with contextLost set: their GPU memory
// went away with the contexts, so only host bookkeeping remains to free.
//
// There is no global registry. The renderer owns its Context and passes it
// to every cache entry point.
//
// A Group is not safe for concurrent use. All contexts of a group must be
// used from one thread at a time, which the context-current discipline of
// the graphics API already guarantees.
package gpusharing

import (
	"errors"
	"fmt"
	"slices"
	"sync/atomic"

	"github.com/gogpu/gpucontext"

	"github.com/gogpu/q3"
	"github.com/gogpu/q3/gpubuf"
)

// Errors returned by context and cache registration.
var (
	// ErrClosed is returned when using a closed context.
	ErrClosed = errors.New("gpusharing: context is closed")

	// ErrNilFuncs is returned when creating a context without buffer functions.
	ErrNilFuncs = errors.New("gpusharing: nil buffer functions")

	// ErrTagInUse is returned when a cache is already registered under a tag.
	ErrTagInUse = errors.New("gpusharing: cache tag already registered")
)

// Tag identifies a kind of cache within a group.
type Tag uint32

// MakeTag builds a tag from a four-character code.
func MakeTag(a, b, c, d byte) Tag {
	return Tag(uint32(a)<<24 | uint32(b)<<16 | uint32(c)<<8 | uint32(d))
}

// String returns the four characters of the tag.
func (t Tag) String() string {
	return string([]byte{byte(t >> 24), byte(t >> 16), byte(t >> 8), byte(t)})
}

// Cache is a resource cache owned by a sharing group.
type Cache interface {
	// Release frees the cache. If contextLost is true the GPU resources
	// are already gone and must not be deleted through the context.
	Release(contextLost bool)
}

var nextGroupID atomic.Uint64

// Group is the set of contexts sharing one GPU resource namespace.
type Group struct {
	id       uint64
	contexts int
	caches   map[Tag]Cache
	ledger   *gpubuf.Ledger
}

// ID returns the group's identifier, used in log output.
func (g *Group) ID() uint64 {
	return g.id
}

// Contexts returns the number of open contexts in the group.
func (g *Group) Contexts() int {
	return g.contexts
}

// Ledger returns the diagnostics ledger shared by the group's caches.
func (g *Group) Ledger() *gpubuf.Ledger {
	return g.ledger
}

// Cache returns the cache registered under tag.
func (g *Group) Cache(tag Tag) (Cache, bool) {
	c, ok := g.caches[tag]
	return c, ok
}

// AddCache registers a cache under tag.
func (g *Group) AddCache(tag Tag, c Cache) error {
	if g.contexts == 0 {
		return ErrClosed
	}
	if _, ok := g.caches[tag]; ok {
		return fmt.Errorf("%w: %v", ErrTagInUse, tag)
	}
	g.caches[tag] = c
	return nil
}

// Tags returns the registered cache tags in ascending order.
func (g *Group) Tags() []Tag {
	tags := make([]Tag, 0, len(g.caches))
	for t := range g.caches {
		tags = append(tags, t)
	}
	slices.Sort(tags)
	return tags
}

func (g *Group) teardown() {
	for _, tag := range g.Tags() {
		g.caches[tag].Release(true)
		delete(g.caches, tag)
	}
	q3.Logger().Info("gpusharing: group torn down", "group", g.id)
}

// Context is a rendering context's view of its sharing group.
type Context struct {
	funcs    gpubuf.Funcs
	provider gpucontext.DeviceProvider
	group    *Group
	closed   bool
}

// NewContext creates a context that renders through funcs.
//
// If shareWith is nil the context starts a new group; otherwise it joins
// shareWith's group. provider may be nil for contexts without a gpucontext
// device, such as headless tools.
func NewContext(funcs gpubuf.Funcs, provider gpucontext.DeviceProvider, shareWith *Context) (*Context, error) {
	if funcs == nil {
		return nil, ErrNilFuncs
	}
	var g *Group
	if shareWith != nil {
		if shareWith.closed {
			return nil, fmt.Errorf("share with: %w", ErrClosed)
		}
		g = shareWith.group
	} else {
		g = &Group{
			id:     nextGroupID.Add(1),
			caches: make(map[Tag]Cache),
			ledger: gpubuf.NewLedger(),
		}
		q3.Logger().Info("gpusharing: group created", "group", g.id)
	}
	g.contexts++
	return &Context{funcs: funcs, provider: provider, group: g}, nil
}

// Funcs returns the buffer functions of the context.
func (c *Context) Funcs() gpubuf.Funcs {
	return c.funcs
}

// Provider returns the device provider the context was created with.
func (c *Context) Provider() gpucontext.DeviceProvider {
	return c.provider
}

// Group returns the context's sharing group, or nil once closed.
func (c *Context) Group() *Group {
	if c == nil || c.closed {
		return nil
	}
	return c.group
}

// IsClosed reports whether Close has been called.
func (c *Context) IsClosed() bool {
	return c.closed
}

// Close detaches the context from its group. Closing the last context
// tears the group down. Closing twice is a no-op.
func (c *Context) Close() {
	if c.closed {
		return
	}
	c.closed = true
	g := c.group
	g.contexts--
	if g.contexts == 0 {
		g.teardown()
	}
}

// GetCache returns the cache registered under tag in ctx's group.
func GetCache(ctx *Context, tag Tag) (Cache, bool) {
	g := ctx.Group()
	if g == nil {
		return nil, false
	}
	return g.Cache(tag)
}

// AddCache registers a cache under tag in ctx's group.
func AddCache(ctx *Context, tag Tag, c Cache) error {
	g := ctx.Group()
	if g == nil {
		return ErrClosed
	}
	return g.AddCache(tag, c)
}

// GetOrCreate returns the cache of type T registered under tag in ctx's
// group, creating and registering it with newCache on first use.
// ok is false if ctx is nil or closed, or if a cache of another type
// holds the tag.
func GetOrCreate[T Cache](ctx *Context, tag Tag, newCache func() T) (T, bool) {
	var zero T
	g := ctx.Group()
	if g == nil {
		return zero, false
	}
	if c, ok := g.Cache(tag); ok {
		t, ok := c.(T)
		return t, ok
	}
	c := newCache()
	if err := g.AddCache(tag, c); err != nil {
		return zero, false
	}
	return c, true
}
