// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: BSD-3-Clause

package gpubuf

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/q3"
)

// ErrNoHAL is returned when a device provider does not expose HAL types.
var ErrNoHAL = errors.New("gpubuf: provider does not expose HAL device and queue")

// cachedBufferUsage covers every way a cached buffer is consumed.
const cachedBufferUsage = gputypes.BufferUsageVertex | gputypes.BufferUsageIndex | gputypes.BufferUsageCopyDst

type halBuffer struct {
	buf  hal.Buffer
	size int
}

type texArray struct {
	buffer  uint32
	size    int
	enabled bool
}

// HALFuncs implements Funcs on a gogpu/wgpu HAL device.
//
// Buffer names map to hal.Buffer objects created on the device and filled
// through the queue. Draw calls are recorded into the render pass set with
// SetRenderPass: vertex positions go to vertex slot 0 and the texture
// coordinate array of unit n goes to slot n+1.
//
// WebGPU has no quad primitive, so DrawElements with Quads is skipped
// with a warning; renderers targeting HAL should triangulate shadow
// volumes before caching them.
//
// HALFuncs is not safe for concurrent use.
type HALFuncs struct {
	device hal.Device
	queue  hal.Queue
	pass   hal.RenderPassEncoder

	buffers map[uint32]*halBuffer
	bound   map[Target]uint32
	next    uint32

	clientUnit TextureUnit
	vertex     uint32
	texArrays  map[TextureUnit]*texArray

	warnedQuads bool
}

var _ Funcs = (*HALFuncs)(nil)

// NewHALFuncs creates buffer functions on the device of a provider.
// The provider must implement HalDevice() any and HalQueue() any
// returning hal.Device and hal.Queue.
func NewHALFuncs(provider gpucontext.DeviceProvider) (*HALFuncs, error) {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return nil, ErrNoHAL
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return nil, fmt.Errorf("%w: HalDevice is not hal.Device", ErrNoHAL)
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return nil, fmt.Errorf("%w: HalQueue is not hal.Queue", ErrNoHAL)
	}
	return NewHALFuncsFromDevice(device, queue), nil
}

// NewHALFuncsFromDevice creates buffer functions on an explicit device
// and queue.
func NewHALFuncsFromDevice(device hal.Device, queue hal.Queue) *HALFuncs {
	return &HALFuncs{
		device:     device,
		queue:      queue,
		buffers:    make(map[uint32]*halBuffer),
		bound:      make(map[Target]uint32),
		texArrays:  make(map[TextureUnit]*texArray),
		clientUnit: Texture0,
	}
}

// SetRenderPass selects the render pass that receives draw calls.
// Pass nil once the pass has ended.
func (f *HALFuncs) SetRenderPass(rp hal.RenderPassEncoder) {
	f.pass = rp
}

// GenBuffers implements Funcs.
func (f *HALFuncs) GenBuffers(n int) []uint32 {
	names := make([]uint32, n)
	for i := range names {
		f.next++
		names[i] = f.next
		f.buffers[f.next] = &halBuffer{}
	}
	return names
}

// BindBuffer implements Funcs.
func (f *HALFuncs) BindBuffer(target Target, name uint32) {
	f.bound[target] = name
}

// BufferData implements Funcs.
func (f *HALFuncs) BufferData(target Target, size int, data []byte, _ Usage) error {
	name := f.bound[target]
	hb, ok := f.buffers[name]
	if !ok {
		return fmt.Errorf("buffer data on %v: %w", target, ErrNoBufferBound)
	}
	if hb.buf != nil {
		f.device.DestroyBuffer(hb.buf)
		hb.buf, hb.size = nil, 0
	}

	// Queue writes must be 4-byte aligned.
	alloc := (size + 3) &^ 3
	buf, err := f.device.CreateBuffer(&hal.BufferDescriptor{
		Label: fmt.Sprintf("q3-cached-%d", name),
		Size:  uint64(alloc),
		Usage: cachedBufferUsage,
	})
	if err != nil {
		return fmt.Errorf("create buffer %d (%d bytes): %w: %w", name, size, ErrOutOfMemory, err)
	}
	hb.buf, hb.size = buf, alloc
	if len(data) > 0 {
		if err := f.write(hb, 0, data); err != nil {
			f.device.DestroyBuffer(hb.buf)
			hb.buf, hb.size = nil, 0
			return fmt.Errorf("fill buffer %d: %w", name, err)
		}
	}
	return nil
}

// BufferSubData implements Funcs.
func (f *HALFuncs) BufferSubData(target Target, offset int, data []byte) error {
	name := f.bound[target]
	hb, ok := f.buffers[name]
	if !ok || hb.buf == nil {
		return fmt.Errorf("buffer sub data on %v: %w", target, ErrNoBufferBound)
	}
	if len(data) == 0 {
		return nil
	}
	if err := f.write(hb, offset, data); err != nil {
		return fmt.Errorf("update buffer %d: %w", name, err)
	}
	return nil
}

// write copies data into hb at offset, padding it to a multiple of 4.
// Queue errors are classified as ErrOutOfMemory or ErrUpload.
func (f *HALFuncs) write(hb *halBuffer, offset int, data []byte) error {
	if offset < 0 || offset+len(data) > hb.size {
		return fmt.Errorf("%d bytes at %d into %d: %w", len(data), offset, hb.size, ErrOutOfRange)
	}
	if pad := len(data) % 4; pad != 0 {
		data = append(slices.Clone(data), make([]byte, 4-pad)...)
	}
	if err := f.queue.WriteBuffer(hb.buf, uint64(offset), data); err != nil {
		if errors.Is(err, hal.ErrDeviceOutOfMemory) {
			return fmt.Errorf("%w: %w", ErrOutOfMemory, err)
		}
		return fmt.Errorf("%w: %w", ErrUpload, err)
	}
	return nil
}

// DeleteBuffers implements Funcs.
func (f *HALFuncs) DeleteBuffers(names ...uint32) {
	for _, n := range names {
		hb, ok := f.buffers[n]
		if !ok {
			continue
		}
		if hb.buf != nil {
			f.device.DestroyBuffer(hb.buf)
		}
		delete(f.buffers, n)
		for t, b := range f.bound {
			if b == n {
				f.bound[t] = 0
			}
		}
	}
}

// ClientActiveTexture implements Funcs.
func (f *HALFuncs) ClientActiveTexture(unit TextureUnit) {
	f.clientUnit = unit
}

// MultiTexCoord1f implements Funcs. WebGPU has no constant vertex
// attributes; disabled arrays are simply not bound.
func (f *HALFuncs) MultiTexCoord1f(TextureUnit, float32) {}

// VertexPointer implements Funcs.
func (f *HALFuncs) VertexPointer(_, _ int) {
	f.vertex = f.bound[ArrayBuffer]
}

// EnableTexCoordArray implements Funcs.
func (f *HALFuncs) EnableTexCoordArray(enable bool) {
	ta := f.texArrays[f.clientUnit]
	if ta == nil {
		ta = &texArray{}
		f.texArrays[f.clientUnit] = ta
	}
	ta.enabled = enable
}

// TexCoordPointer implements Funcs.
func (f *HALFuncs) TexCoordPointer(size, _ int) {
	ta := f.texArrays[f.clientUnit]
	if ta == nil {
		ta = &texArray{}
		f.texArrays[f.clientUnit] = ta
	}
	ta.buffer = f.bound[ArrayBuffer]
	ta.size = size
}

// DrawElements implements Funcs.
func (f *HALFuncs) DrawElements(mode DrawMode, count, offset int) {
	logger := q3.Logger()
	if f.pass == nil {
		logger.Warn("gpubuf: draw without render pass", "mode", mode.String(), "count", count)
		return
	}
	if mode != Triangles {
		if !f.warnedQuads {
			logger.Warn("gpubuf: draw mode not supported by HAL, skipping", "mode", mode.String())
			f.warnedQuads = true
		}
		return
	}
	vb, ok := f.buffers[f.vertex]
	ib, ok2 := f.buffers[f.bound[ElementArrayBuffer]]
	if !ok || !ok2 || vb.buf == nil || ib.buf == nil {
		return
	}

	f.pass.SetVertexBuffer(0, vb.buf, 0)
	for unit, ta := range f.texArrays {
		if !ta.enabled {
			continue
		}
		if tb, ok := f.buffers[ta.buffer]; ok && tb.buf != nil {
			f.pass.SetVertexBuffer(uint32(unit.Index()+1), tb.buf, 0)
		}
	}
	f.pass.SetIndexBuffer(ib.buf, gputypes.IndexFormatUint32, 0)
	f.pass.DrawIndexed(uint32(count), 1, uint32(offset/IndexSize), 0, 0)
}

// LiveBuffers returns the number of generated, not yet deleted buffers.
func (f *HALFuncs) LiveBuffers() int {
	return len(f.buffers)
}
