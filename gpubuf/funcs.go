// Package gpubuf abstracts the GPU buffer operations used by resource caches.
//
// Caches never call a graphics API directly. They receive a Funcs value from
// the context they render into, which keeps them independent of the API
// version and lets tests run against the host-memory Recorder.
//
// Two implementations are provided:
//   - Recorder: host-memory buffers with a call log, used by tests and tools.
//   - HALFuncs: buffers on a gogpu/wgpu HAL device, drawn into a render pass.
//
// A Ledger records every live buffer for diagnostics.
package gpubuf

import (
	"errors"
	"fmt"
)

// ErrOutOfMemory is returned by BufferData when the GPU cannot allocate
// the requested storage.
var ErrOutOfMemory = errors.New("gpubuf: out of GPU memory")

// ErrNoBufferBound is returned when uploading with no buffer bound.
var ErrNoBufferBound = errors.New("gpubuf: no buffer bound to target")

// ErrOutOfRange is returned by BufferSubData when the write does not fit
// in the bound buffer.
var ErrOutOfRange = errors.New("gpubuf: write outside buffer storage")

// ErrUpload is returned when copying data into GPU storage fails for a
// reason other than memory exhaustion.
var ErrUpload = errors.New("gpubuf: buffer upload failed")

// Target is a buffer binding point.
type Target uint32

// Buffer targets.
const (
	// ArrayBuffer holds vertex attributes.
	ArrayBuffer Target = 0x8892

	// ElementArrayBuffer holds vertex indices.
	ElementArrayBuffer Target = 0x8893
)

// String returns the string representation of Target.
func (t Target) String() string {
	switch t {
	case ArrayBuffer:
		return "ArrayBuffer"
	case ElementArrayBuffer:
		return "ElementArrayBuffer"
	default:
		return fmt.Sprintf("Target(%#x)", uint32(t))
	}
}

// Usage is a buffer usage hint.
type Usage uint32

// StaticDraw marks data written once and drawn many times.
const StaticDraw Usage = 0x88E4

// TextureUnit selects a texture unit. Unit n is Texture0 + n.
type TextureUnit uint32

// Texture0 is the first texture unit.
const Texture0 TextureUnit = 0x84C0

// Index returns the unit number relative to Texture0.
func (u TextureUnit) Index() int {
	return int(u - Texture0)
}

// DrawMode is a primitive type for DrawElements.
type DrawMode uint32

// Draw modes.
const (
	Triangles DrawMode = 0x0004
	Quads     DrawMode = 0x0007
)

// String returns the string representation of DrawMode.
func (m DrawMode) String() string {
	switch m {
	case Triangles:
		return "Triangles"
	case Quads:
		return "Quads"
	default:
		return fmt.Sprintf("DrawMode(%#x)", uint32(m))
	}
}

// Sizes in bytes of the element types stored in cached buffers.
const (
	FloatSize = 4
	IndexSize = 4
	// PointSize is the size of one homogeneous point (4 floats).
	PointSize = 4 * FloatSize
)

// Funcs is the buffer function table a cache uses to talk to the GPU.
//
// All calls happen on the thread that holds the GPU context current.
// Buffer name 0 means "no buffer"; binding 0 unbinds the target.
type Funcs interface {
	// GenBuffers returns n new buffer names.
	GenBuffers(n int) []uint32

	// BindBuffer binds a buffer name to a target.
	BindBuffer(target Target, name uint32)

	// BufferData allocates size bytes for the bound buffer and copies data
	// into it. data may be nil to allocate without initializing, or
	// shorter than size. Returns an error wrapping ErrOutOfMemory if the
	// allocation fails. On error the buffer holds no storage.
	BufferData(target Target, size int, data []byte, usage Usage) error

	// BufferSubData overwrites part of the bound buffer.
	BufferSubData(target Target, offset int, data []byte) error

	// DeleteBuffers frees buffers. Unknown names are ignored.
	DeleteBuffers(names ...uint32)

	// ClientActiveTexture selects the unit affected by texture
	// coordinate array calls.
	ClientActiveTexture(unit TextureUnit)

	// MultiTexCoord1f sets the constant texture coordinate of a unit.
	MultiTexCoord1f(unit TextureUnit, s float32)

	// VertexPointer sources vertex positions from the bound array buffer.
	VertexPointer(size, offset int)

	// EnableTexCoordArray toggles the texture coordinate array of the
	// client active unit.
	EnableTexCoordArray(enable bool)

	// TexCoordPointer sources texture coordinates of the client active
	// unit from the bound array buffer.
	TexCoordPointer(size, offset int)

	// DrawElements draws count indices from the bound element buffer,
	// starting at the given byte offset.
	DrawElements(mode DrawMode, count, offset int)
}
