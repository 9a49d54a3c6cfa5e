package shadowvol

import (
	"github.com/gogpu/q3"
	"github.com/gogpu/q3/gpubuf"
	"github.com/gogpu/q3/object"
)

// attachSecondaryFromGeometry attaches the geometry's custom texture
// coordinates to v, if it has any.
func (vc *volCache) attachSecondaryFromGeometry(v *shadowVBO, geom *object.Geometry, infiniteLight bool) error {
	tc, ok := geom.CustomTextureCoords()
	if !ok {
		if _, present := geom.Property(object.PropertyCustomTextureCoordinates); present {
			q3.Logger().Warn("shadowvol: ignoring malformed custom texture coordinates",
				"geometry", geom.ID())
		}
		return nil
	}
	unit := gpubuf.Texture0 + gpubuf.TextureUnit(tc.TextureUnit)
	n := int(tc.NumPoints) * int(tc.CoordsPerPoint)
	return vc.attachSecondary(v, unit, int(tc.NumPoints), int(tc.CoordsPerPoint), infiniteLight, tc.Coords[:n])
}

// attachSecondary uploads an extra per-vertex array for v.
//
// A shadow volume holds each vertex twice: once at its finite position
// and once extruded away from the light. The extruded copies get zero
// coordinates. For a directional light all extruded vertices collapse to
// one point, so a single zero vertex is appended.
func (vc *volCache) attachSecondary(v *shadowVBO, unit gpubuf.TextureUnit, numPoints, coordsPerPoint int,
	infiniteLight bool, data []float32) error {
	if len(v.secondary) >= MaxSecondaryTexCoords || coordsPerPoint < 1 || coordsPerPoint > 4 {
		return nil
	}

	finiteSize := numPoints * coordsPerPoint * gpubuf.FloatSize
	infiniteSize := finiteSize
	if infiniteLight {
		infiniteSize = coordsPerPoint * gpubuf.FloatSize
	}
	dataSize := finiteSize + infiniteSize

	v.bytes += int64(dataSize)
	vc.makeRoom(int64(dataSize))

	f := vc.funcs
	name := f.GenBuffers(1)[0]
	v.secondary = append(v.secondary, secondaryTexCoord{
		buffer:          name,
		coordsPerVertex: coordsPerPoint,
		textureUnit:     unit,
	})

	f.BindBuffer(gpubuf.ArrayBuffer, name)
	defer f.BindBuffer(gpubuf.ArrayBuffer, 0)
	if err := f.BufferData(gpubuf.ArrayBuffer, dataSize, nil, gpubuf.StaticDraw); err != nil {
		return err
	}
	if err := f.BufferSubData(gpubuf.ArrayBuffer, 0, encodeFloats(data)); err != nil {
		return err
	}
	if err := f.BufferSubData(gpubuf.ArrayBuffer, finiteSize, make([]byte, infiniteSize)); err != nil {
		return err
	}
	vc.ledger.Record(name, uint64(v.key.geom), int64(dataSize), gpubuf.KindShadowAttribute)
	return nil
}
