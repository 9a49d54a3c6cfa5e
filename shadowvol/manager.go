package shadowvol

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/gogpu/q3"
	"github.com/gogpu/q3/gpubuf"
	"github.com/gogpu/q3/gpusharing"
	"github.com/gogpu/q3/internal/cache"
	"github.com/gogpu/q3/object"
)

// Errors returned by AddShadowVolume.
var (
	// ErrNilObject is returned when the geometry or light is nil.
	ErrNilObject = errors.New("shadowvol: nil geometry or light")

	// ErrIndexCount is returned when the triangle and quad index counts
	// are negative, are not whole primitives, or exceed the indices
	// supplied.
	ErrIndexCount = errors.New("shadowvol: index count mismatch")

	// ErrKeyExists is returned when a volume for the same geometry and
	// light is already cached.
	ErrKeyExists = cache.ErrKeyExists
)

// Manager is the entry point renderers use to cache shadow volumes.
//
// A Manager holds only configuration. The cache itself belongs to the
// sharing group of the context passed to each call, so every context of
// a group sees the same volumes. A nil or closed context behaves as if
// caching were unavailable: nothing is rendered and nothing is stored.
type Manager struct {
	tag            gpusharing.Tag
	lightTolerance float32
	ledger         *gpubuf.Ledger
}

// NewManager creates a manager.
func NewManager(opts ...Option) *Manager {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &Manager{
		tag:            o.tag,
		lightTolerance: o.lightTolerance,
		ledger:         o.ledger,
	}
}

// cacheFor returns the group cache of ctx, creating it on first use, and
// binds it to ctx's buffer functions.
func (m *Manager) cacheFor(ctx *gpusharing.Context) *volCache {
	vc, ok := gpusharing.GetOrCreate(ctx, m.tag, func() *volCache {
		ledger := m.ledger
		if ledger == nil {
			ledger = ctx.Group().Ledger()
		}
		return newVolCache(ledger, m.lightTolerance)
	})
	if !ok {
		return nil
	}
	vc.funcs = ctx.Funcs()
	return vc
}

// StartFrame sets the cache budget for the frame, in kilobytes.
// Shrinking the budget evicts least recently used volumes immediately.
func (m *Manager) StartFrame(ctx *gpusharing.Context, memLimitK uint32) {
	vc := m.cacheFor(ctx)
	if vc == nil {
		return
	}
	vc.setMaxBufferSize(int64(memLimitK) * 1024)
}

// RenderShadowVolume draws the cached volume of geom lit by light, if a
// valid one exists, and reports whether it did. localLightPos is the
// light position in the geometry's local space; a volume built for a
// position farther away than the light tolerance is stale.
//
// On false the caller builds the volume itself and hands it to
// AddShadowVolume.
func (m *Manager) RenderShadowVolume(ctx *gpusharing.Context, geom *object.Geometry, light *object.Light,
	localLightPos q3.RationalPoint4D) bool {
	if geom == nil || light == nil {
		return false
	}
	vc := m.cacheFor(ctx)
	if vc == nil {
		return false
	}
	v := vc.find(geomLight{geom: geom.ID(), light: light.ID()}, localLightPos)
	if v == nil {
		return false
	}
	vc.render(v)
	return true
}

// AddShadowVolume caches a freshly built shadow volume.
//
// points holds the volume's vertices. indices holds numTriIndices
// triangle indices followed by numQuadIndices quad indices; the counts
// are in indices, not primitives. A volume with no indices is cached without touching the GPU, so that
// empty volumes are not rebuilt every frame.
//
// If the GPU runs out of memory the buffers of the new volume are
// deleted, the volume is not cached, and an error wrapping
// gpubuf.ErrOutOfMemory is returned. The cache stays usable.
func (m *Manager) AddShadowVolume(ctx *gpusharing.Context, geom *object.Geometry, light *object.Light,
	localLightPos q3.RationalPoint4D, points []q3.RationalPoint4D,
	numTriIndices, numQuadIndices int, indices []uint32) error {
	if geom == nil || light == nil {
		return ErrNilObject
	}
	vc := m.cacheFor(ctx)
	if vc == nil {
		return nil
	}

	key := geomLight{geom: geom.ID(), light: light.ID()}
	if vc.entries.Contains(key) {
		q3.Logger().Error("shadowvol: volume already cached",
			"geometry", key.geom, "light", key.light)
		return fmt.Errorf("add shadow volume: %w: geometry %d light %d", ErrKeyExists, key.geom, key.light)
	}

	switch {
	case numTriIndices < 0 || numQuadIndices < 0 || numTriIndices%3 != 0 || numQuadIndices%4 != 0:
		return fmt.Errorf("%w: %d triangle and %d quad indices", ErrIndexCount, numTriIndices, numQuadIndices)
	case len(indices) < numTriIndices+numQuadIndices:
		return fmt.Errorf("%w: need %d indices, have %d", ErrIndexCount,
			numTriIndices+numQuadIndices, len(indices))
	}

	v := newShadowVBO(geom, light, localLightPos)
	v.numTriIndices = numTriIndices
	v.numQuadIndices = numQuadIndices

	if v.hasGeometry() {
		if err := vc.upload(v, points, indices[:numTriIndices+numQuadIndices]); err != nil {
			return vc.abandon(v, err)
		}
		if err := vc.attachSecondaryFromGeometry(v, geom, localLightPos.IsInfinite()); err != nil {
			return vc.abandon(v, err)
		}
	}

	return vc.add(v)
}

// upload creates the vertex and index buffers of v.
func (vc *volCache) upload(v *shadowVBO, points []q3.RationalPoint4D, indices []uint32) error {
	pointBytes := len(points) * gpubuf.PointSize
	indexBytes := len(indices) * gpubuf.IndexSize
	v.bytes = int64(pointBytes + indexBytes)
	vc.makeRoom(v.bytes)

	f := vc.funcs
	names := f.GenBuffers(2)
	v.buffers[0], v.buffers[1] = names[0], names[1]

	f.BindBuffer(gpubuf.ArrayBuffer, v.buffers[0])
	err := f.BufferData(gpubuf.ArrayBuffer, pointBytes, encodePoints(points), gpubuf.StaticDraw)
	f.BindBuffer(gpubuf.ArrayBuffer, 0)
	if err != nil {
		return err
	}
	vc.ledger.Record(v.buffers[0], uint64(v.key.geom), int64(pointBytes), gpubuf.KindShadowVolume)

	f.BindBuffer(gpubuf.ElementArrayBuffer, v.buffers[1])
	err = f.BufferData(gpubuf.ElementArrayBuffer, indexBytes, encodeIndices(indices), gpubuf.StaticDraw)
	f.BindBuffer(gpubuf.ElementArrayBuffer, 0)
	if err != nil {
		return err
	}
	vc.ledger.Record(v.buffers[1], uint64(v.key.geom), int64(indexBytes), gpubuf.KindShadowVolume)
	return nil
}

// abandon frees a volume that could not be built.
func (vc *volCache) abandon(v *shadowVBO, err error) error {
	vc.deleteBuffers(v)
	logger := q3.Logger()
	logger.Error("shadowvol: failed to allocate shadow volume",
		"geometry", v.key.geom, "light", v.key.light, "bytes", v.bytes,
		"cached", vc.entries.TotalBytes(), "err", err)
	vc.ledger.Dump(logger, slog.LevelError)
	return fmt.Errorf("add shadow volume: %w", err)
}

// Flush drops every cached volume whose geometry or light is gone or
// whose geometry changed. It returns the number of volumes dropped.
func (m *Manager) Flush(ctx *gpusharing.Context) int {
	vc := m.cacheFor(ctx)
	if vc == nil {
		return 0
	}
	return vc.flushStale()
}

// Stats returns statistics of ctx's cache. ok is false if ctx has no
// usable cache.
func (m *Manager) Stats(ctx *gpusharing.Context) (s Stats, ok bool) {
	vc := m.cacheFor(ctx)
	if vc == nil {
		return Stats{}, false
	}
	cs := vc.entries.Stats()
	return Stats{
		Volumes:    cs.Len,
		TotalBytes: cs.TotalBytes,
		Budget:     cs.Budget,
		Hits:       cs.Hits,
		Misses:     cs.Misses,
		Stale:      vc.stale,
		Evictions:  cs.Evictions,
	}, true
}

// Stats describes the state of a shadow volume cache.
type Stats struct {
	Volumes    int
	TotalBytes int64
	Budget     int64

	// Hits counts lookups that drew a cached volume. Misses counts
	// lookups the caller had to rebuild for, including stale volumes.
	Hits   uint64
	Misses uint64

	// Stale counts volumes dropped because their geometry or light
	// changed or went away.
	Stale uint64

	// Evictions counts volumes dropped to stay within the budget.
	Evictions uint64
}
