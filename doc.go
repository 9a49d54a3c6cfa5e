// Package q3 is the root of a GPU resource cache for a retained-mode 3D
// renderer in the style of QuickDraw 3D.
//
// # Overview
//
// Interactive renderers derive GPU data from scene objects every frame.
// Some of it, shadow volumes in particular, depends only on a geometry,
// a light and the light's position relative to the geometry, and is
// expensive to rebuild. The packages under q3 keep such data in GPU
// buffers across frames, bounded by a byte budget and invalidated when
// the objects it was built from change.
//
// # Packages
//
//   - object: shared objects with edit indices, properties and weak references
//   - gpubuf: the buffer function table, a host-memory recorder, a wgpu HAL
//     implementation, and an allocation ledger
//   - gpusharing: contexts that share a GPU namespace and own its caches
//   - shadowvol: the shadow volume cache
//
// This package holds the homogeneous point and matrix types shared by the
// others, and the logger.
//
// # Logging
//
// q3 is silent by default. See [SetLogger].
package q3
