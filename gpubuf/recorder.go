package gpubuf

import "fmt"

// CallType identifies a recorded Funcs call.
type CallType uint8

const (
	CallGenBuffers CallType = iota
	CallBindBuffer
	CallBufferData
	CallBufferSubData
	CallDeleteBuffers
	CallClientActiveTexture
	CallMultiTexCoord1f
	CallVertexPointer
	CallEnableTexCoordArray
	CallTexCoordPointer
	CallDrawElements
)

var callNames = [...]string{
	CallGenBuffers:          "GenBuffers",
	CallBindBuffer:          "BindBuffer",
	CallBufferData:          "BufferData",
	CallBufferSubData:       "BufferSubData",
	CallDeleteBuffers:       "DeleteBuffers",
	CallClientActiveTexture: "ClientActiveTexture",
	CallMultiTexCoord1f:     "MultiTexCoord1f",
	CallVertexPointer:       "VertexPointer",
	CallEnableTexCoordArray: "EnableTexCoordArray",
	CallTexCoordPointer:     "TexCoordPointer",
	CallDrawElements:        "DrawElements",
}

// String returns the string representation of CallType.
func (c CallType) String() string {
	if int(c) < len(callNames) {
		return callNames[c]
	}
	return fmt.Sprintf("CallType(%d)", int(c))
}

// Call is one recorded Funcs invocation. Only the fields relevant to the
// call type are set.
type Call struct {
	Type   CallType
	Target Target
	Names  []uint32
	Size   int
	Offset int
	Unit   TextureUnit
	Mode   DrawMode
	Count  int
	Enable bool
	Value  float32
}

// Recorder is a Funcs implementation backed by host memory.
//
// It keeps the contents of every live buffer and logs every call, which
// makes it suitable for tests and headless tools. A byte limit can be
// set to simulate GPU memory exhaustion.
//
// Recorder is not safe for concurrent use.
type Recorder struct {
	buffers map[uint32][]byte
	bound   map[Target]uint32
	next    uint32
	calls   []Call

	// Limit is the maximum number of bytes allocated across all buffers.
	// Zero means unlimited.
	Limit int

	// WriteErr, when set, makes every copy of data into a buffer fail
	// with an error wrapping it. Allocation without data still succeeds.
	WriteErr error

	// DropCalls disables the call log. Buffers are still tracked.
	DropCalls bool
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{
		buffers: make(map[uint32][]byte),
		bound:   make(map[Target]uint32),
	}
}

var _ Funcs = (*Recorder)(nil)

func (r *Recorder) log(c Call) {
	if !r.DropCalls {
		r.calls = append(r.calls, c)
	}
}

// GenBuffers implements Funcs.
func (r *Recorder) GenBuffers(n int) []uint32 {
	names := make([]uint32, n)
	for i := range names {
		r.next++
		names[i] = r.next
		r.buffers[r.next] = nil
	}
	r.log(Call{Type: CallGenBuffers, Names: names, Count: n})
	return names
}

// BindBuffer implements Funcs.
func (r *Recorder) BindBuffer(target Target, name uint32) {
	r.bound[target] = name
	r.log(Call{Type: CallBindBuffer, Target: target, Names: []uint32{name}})
}

// BufferData implements Funcs.
func (r *Recorder) BufferData(target Target, size int, data []byte, _ Usage) error {
	r.log(Call{Type: CallBufferData, Target: target, Size: size})
	name := r.bound[target]
	if name == 0 {
		return fmt.Errorf("buffer data on %v: %w", target, ErrNoBufferBound)
	}
	if r.Limit > 0 && r.Allocated()-len(r.buffers[name])+size > r.Limit {
		return fmt.Errorf("allocate %d bytes for buffer %d: %w", size, name, ErrOutOfMemory)
	}
	if r.WriteErr != nil && len(data) > 0 {
		r.buffers[name] = nil
		return fmt.Errorf("fill buffer %d: %w", name, r.WriteErr)
	}
	buf := make([]byte, size)
	copy(buf, data)
	r.buffers[name] = buf
	return nil
}

// BufferSubData implements Funcs.
func (r *Recorder) BufferSubData(target Target, offset int, data []byte) error {
	r.log(Call{Type: CallBufferSubData, Target: target, Offset: offset, Size: len(data)})
	name := r.bound[target]
	if name == 0 {
		return fmt.Errorf("buffer sub data on %v: %w", target, ErrNoBufferBound)
	}
	buf := r.buffers[name]
	if offset < 0 || offset+len(data) > len(buf) {
		return fmt.Errorf("write %d bytes at %d into buffer %d of %d bytes: %w",
			len(data), offset, name, len(buf), ErrOutOfRange)
	}
	if r.WriteErr != nil {
		return fmt.Errorf("update buffer %d: %w", name, r.WriteErr)
	}
	copy(buf[offset:], data)
	return nil
}

// DeleteBuffers implements Funcs.
func (r *Recorder) DeleteBuffers(names ...uint32) {
	r.log(Call{Type: CallDeleteBuffers, Names: append([]uint32(nil), names...)})
	for _, n := range names {
		delete(r.buffers, n)
		for t, b := range r.bound {
			if b == n {
				r.bound[t] = 0
			}
		}
	}
}

// ClientActiveTexture implements Funcs.
func (r *Recorder) ClientActiveTexture(unit TextureUnit) {
	r.log(Call{Type: CallClientActiveTexture, Unit: unit})
}

// MultiTexCoord1f implements Funcs.
func (r *Recorder) MultiTexCoord1f(unit TextureUnit, s float32) {
	r.log(Call{Type: CallMultiTexCoord1f, Unit: unit, Value: s})
}

// VertexPointer implements Funcs.
func (r *Recorder) VertexPointer(size, offset int) {
	r.log(Call{Type: CallVertexPointer, Names: []uint32{r.bound[ArrayBuffer]}, Size: size, Offset: offset})
}

// EnableTexCoordArray implements Funcs.
func (r *Recorder) EnableTexCoordArray(enable bool) {
	r.log(Call{Type: CallEnableTexCoordArray, Enable: enable})
}

// TexCoordPointer implements Funcs.
func (r *Recorder) TexCoordPointer(size, offset int) {
	r.log(Call{Type: CallTexCoordPointer, Names: []uint32{r.bound[ArrayBuffer]}, Size: size, Offset: offset})
}

// DrawElements implements Funcs.
func (r *Recorder) DrawElements(mode DrawMode, count, offset int) {
	r.log(Call{Type: CallDrawElements, Names: []uint32{r.bound[ElementArrayBuffer]}, Mode: mode, Count: count, Offset: offset})
}

// Calls returns the recorded calls.
func (r *Recorder) Calls() []Call {
	return r.calls
}

// CallsOf returns the recorded calls of one type.
func (r *Recorder) CallsOf(t CallType) []Call {
	var out []Call
	for _, c := range r.calls {
		if c.Type == t {
			out = append(out, c)
		}
	}
	return out
}

// ResetCalls clears the call log, keeping buffers.
func (r *Recorder) ResetCalls() {
	r.calls = r.calls[:0]
}

// Buffer returns the contents of a live buffer.
func (r *Recorder) Buffer(name uint32) ([]byte, bool) {
	b, ok := r.buffers[name]
	return b, ok
}

// Bound returns the buffer bound to target.
func (r *Recorder) Bound(target Target) uint32 {
	return r.bound[target]
}

// LiveBuffers returns the number of generated, not yet deleted buffers.
func (r *Recorder) LiveBuffers() int {
	return len(r.buffers)
}

// Allocated returns the number of bytes held by live buffers.
func (r *Recorder) Allocated() int {
	var n int
	for _, b := range r.buffers {
		n += len(b)
	}
	return n
}
