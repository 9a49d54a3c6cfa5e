// Package shadowvol caches shadow volume vertex and index buffers on the
// GPU, one volume per (geometry, light) pair.
//
// Building a shadow volume means walking a geometry's silhouette edges as
// seen from a light, which is expensive enough that interactive renderers
// want to keep the result across frames. The cache lives in the GPU
// sharing group of the rendering context (see package gpusharing), so
// contexts that share buffer names share volumes.
//
// # Frame protocol
//
//	m := shadowvol.NewManager()
//
//	m.StartFrame(ctx, budgetKB)
//	for each geometry g, light l {
//		pos, _ := l.LocalPosition(g)
//		if !m.RenderShadowVolume(ctx, g, l, pos) {
//			points, triIndices, quadIndices, indices := buildVolume(g, pos)
//			err := m.AddShadowVolume(ctx, g, l, pos, points, triIndices, quadIndices, indices)
//			...
//		}
//	}
//	m.Flush(ctx) // optional, drops volumes of deleted or edited objects
//
// # Staleness
//
// A cached volume is stale once its geometry or light has been disposed
// or garbage collected, once the geometry's edit index has changed, or
// when the requested local light position differs from the one the
// volume was built for by a squared distance of at least the light
// tolerance. Stale volumes are dropped lazily on lookup or eagerly by
// Flush.
//
// # Budget
//
// The budget, set per frame in kilobytes, bounds the bytes held by cached
// volumes. Before a new volume is uploaded, least recently drawn volumes
// are evicted to make room. A single volume larger than the whole budget
// is still cached, without evicting anything.
package shadowvol
