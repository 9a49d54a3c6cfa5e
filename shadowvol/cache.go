package shadowvol

import (
	"encoding/binary"
	"math"

	"github.com/gogpu/q3"
	"github.com/gogpu/q3/gpubuf"
	"github.com/gogpu/q3/internal/cache"
)

// volCache holds the shadow volumes of one GPU sharing group.
//
// funcs is rebound at every manager entry point to the functions of the
// context being rendered; all contexts of a group share buffer names, so
// any of them can delete a buffer created through another.
type volCache struct {
	entries   *cache.Cache[geomLight, *shadowVBO]
	funcs     gpubuf.Funcs
	ledger    *gpubuf.Ledger
	tolerance float32
	stale     uint64
}

func newVolCache(ledger *gpubuf.Ledger, tolerance float32) *volCache {
	vc := &volCache{ledger: ledger, tolerance: tolerance}
	vc.entries = cache.New(vc.release)
	return vc
}

// Release implements gpusharing.Cache.
func (vc *volCache) Release(contextLost bool) {
	// A lost context took the buffers with it; only forget them.
	if contextLost || vc.funcs == nil {
		for _, k := range vc.entries.Keys() {
			v, _ := vc.entries.Peek(k)
			vc.forget(v)
		}
		vc.entries.Clear(false)
		return
	}
	vc.entries.Clear(true)
}

// release is the cache's release callback: every volume leaving the cache
// other than through group teardown gives its buffers back.
func (vc *volCache) release(_ geomLight, v *shadowVBO) {
	vc.deleteBuffers(v)
}

func (vc *volCache) deleteBuffers(v *shadowVBO) {
	if v.buffers[0] != 0 || v.buffers[1] != 0 {
		vc.funcs.DeleteBuffers(v.buffers[0], v.buffers[1])
	}
	for _, s := range v.secondary {
		vc.funcs.DeleteBuffers(s.buffer)
	}
	vc.forget(v)
}

func (vc *volCache) forget(v *shadowVBO) {
	vc.ledger.Forget(v.buffers[0])
	vc.ledger.Forget(v.buffers[1])
	for _, s := range v.secondary {
		vc.ledger.Forget(s.buffer)
	}
}

// find returns the cached volume for key, or nil. A stale volume is
// dropped and nil returned, so the caller rebuilds it.
func (vc *volCache) find(key geomLight, localLightPos q3.RationalPoint4D) *shadowVBO {
	var dropped *shadowVBO
	v, ok := vc.entries.GetValid(key, func(v *shadowVBO) bool {
		if v.isStale() || !sameLightPosition(v.localLightPos, localLightPos, vc.tolerance) {
			dropped = v
			return false
		}
		return true
	})
	if dropped != nil {
		vc.stale++
		q3.Logger().Debug("shadowvol: dropped stale volume",
			"geometry", key.geom, "light", key.light, "bytes", dropped.bytes)
	}
	if !ok {
		return nil
	}
	return v
}

// render draws a cached volume and marks it most recently used.
func (vc *volCache) render(v *shadowVBO) {
	if v.hasGeometry() {
		f := vc.funcs
		f.BindBuffer(gpubuf.ArrayBuffer, v.buffers[0])
		f.VertexPointer(4, 0)

		if len(v.secondary) > 0 {
			for _, s := range v.secondary {
				f.BindBuffer(gpubuf.ArrayBuffer, s.buffer)
				f.ClientActiveTexture(s.textureUnit)
				f.EnableTexCoordArray(true)
				f.TexCoordPointer(s.coordsPerVertex, 0)
			}
			f.ClientActiveTexture(gpubuf.Texture0)
		}

		f.BindBuffer(gpubuf.ElementArrayBuffer, v.buffers[1])
		if v.numTriIndices > 0 {
			f.DrawElements(gpubuf.Triangles, v.numTriIndices, 0)
		}
		if v.numQuadIndices > 0 {
			f.DrawElements(gpubuf.Quads, v.numQuadIndices, v.numTriIndices*gpubuf.IndexSize)
		}

		f.BindBuffer(gpubuf.ArrayBuffer, 0)
		f.BindBuffer(gpubuf.ElementArrayBuffer, 0)

		if len(v.secondary) > 0 {
			for _, s := range v.secondary {
				f.ClientActiveTexture(s.textureUnit)
				f.EnableTexCoordArray(false)
				f.MultiTexCoord1f(s.textureUnit, 0)
			}
			f.ClientActiveTexture(gpubuf.Texture0)
		}
	}
	vc.entries.Touch(v.key)
}

// add inserts a fully built volume.
func (vc *volCache) add(v *shadowVBO) error {
	if err := vc.entries.Add(v.key, v, v.bytes); err != nil {
		return err
	}
	q3.Logger().Debug("shadowvol: cached volume",
		"geometry", v.key.geom, "light", v.key.light, "bytes", v.bytes,
		"total", vc.entries.TotalBytes())
	return nil
}

// flushStale drops every volume whose geometry or light is gone or whose
// geometry was edited. Light positions are not checked here.
func (vc *volCache) flushStale() int {
	var n int
	for _, k := range vc.entries.Keys() {
		v, ok := vc.entries.Peek(k)
		if ok && v.isStale() {
			vc.entries.Remove(k)
			n++
		}
	}
	vc.stale += uint64(n)
	if n > 0 {
		q3.Logger().Debug("shadowvol: flushed stale volumes", "count", n,
			"total", vc.entries.TotalBytes())
	}
	return n
}

func (vc *volCache) makeRoom(bytesNeeded int64) {
	vc.entries.MakeRoom(bytesNeeded)
}

func (vc *volCache) setMaxBufferSize(bytes int64) {
	if bytes != vc.entries.Budget() {
		q3.Logger().Debug("shadowvol: budget changed", "from", vc.entries.Budget(), "to", bytes)
	}
	vc.entries.SetBudget(bytes)
}

func encodePoints(points []q3.RationalPoint4D) []byte {
	buf := make([]byte, len(points)*gpubuf.PointSize)
	for i, p := range points {
		o := i * gpubuf.PointSize
		binary.LittleEndian.PutUint32(buf[o:], math.Float32bits(p.X))
		binary.LittleEndian.PutUint32(buf[o+4:], math.Float32bits(p.Y))
		binary.LittleEndian.PutUint32(buf[o+8:], math.Float32bits(p.Z))
		binary.LittleEndian.PutUint32(buf[o+12:], math.Float32bits(p.W))
	}
	return buf
}

func encodeIndices(indices []uint32) []byte {
	buf := make([]byte, len(indices)*gpubuf.IndexSize)
	for i, idx := range indices {
		binary.LittleEndian.PutUint32(buf[i*gpubuf.IndexSize:], idx)
	}
	return buf
}

func encodeFloats(values []float32) []byte {
	buf := make([]byte, len(values)*gpubuf.FloatSize)
	for i, f := range values {
		binary.LittleEndian.PutUint32(buf[i*gpubuf.FloatSize:], math.Float32bits(f))
	}
	return buf
}
