package shadowvol

import (
	"github.com/gogpu/q3"
	"github.com/gogpu/q3/gpubuf"
	"github.com/gogpu/q3/object"
)

// MaxSecondaryTexCoords bounds the secondary attribute arrays of one
// cached shadow volume. Further attachments are silently dropped.
const MaxSecondaryTexCoords = 16

// DefaultLightTolerance is the squared distance below which two local
// light positions are considered the same.
const DefaultLightTolerance = 7.0e-6

// geomLight keys the cache. IDs rather than pointers keep the index from
// holding objects alive.
type geomLight struct {
	geom  object.ID
	light object.ID
}

// secondaryTexCoord is an extra per-vertex array drawn with the volume.
type secondaryTexCoord struct {
	buffer          uint32
	coordsPerVertex int
	textureUnit     gpubuf.TextureUnit
}

// shadowVBO is one cached shadow volume for a (geometry, light) pair.
type shadowVBO struct {
	key geomLight

	geom          object.WeakRef
	geomEditIndex uint32

	light         object.WeakRef
	localLightPos q3.RationalPoint4D // w is 0 or 1

	numTriIndices  int
	numQuadIndices int
	buffers        [2]uint32 // 0 is array, 1 is index
	bytes          int64

	secondary []secondaryTexCoord
}

func newShadowVBO(geom *object.Geometry, light *object.Light, localLightPos q3.RationalPoint4D) *shadowVBO {
	return &shadowVBO{
		key:           geomLight{geom: geom.ID(), light: light.ID()},
		geom:          object.NewWeakRef(geom.Shared),
		geomEditIndex: geom.EditIndex(),
		light:         object.NewWeakRef(light.Shared),
		localLightPos: localLightPos,
	}
}

func (v *shadowVBO) hasGeometry() bool {
	return v.numTriIndices+v.numQuadIndices > 0
}

// isStale reports whether the geometry or light is gone, or the geometry
// changed since the volume was built.
func (v *shadowVBO) isStale() bool {
	g := v.geom.Get()
	if g == nil || !v.light.IsValid() {
		return true
	}
	return g.EditIndex() != v.geomEditIndex
}

func sameLightPosition(a, b q3.RationalPoint4D, tolerance float32) bool {
	return a.DistanceSquared(b) < tolerance
}
