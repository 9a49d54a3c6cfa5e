package gpubuf

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

func TestRecorderBufferLifecycle(t *testing.T) {
	r := NewRecorder()

	names := r.GenBuffers(2)
	if len(names) != 2 || names[0] == 0 || names[0] == names[1] {
		t.Fatalf("GenBuffers = %v, want two distinct non-zero names", names)
	}

	r.BindBuffer(ArrayBuffer, names[0])
	if err := r.BufferData(ArrayBuffer, 8, []byte{1, 2, 3, 4}, StaticDraw); err != nil {
		t.Fatalf("BufferData: %v", err)
	}
	if err := r.BufferSubData(ArrayBuffer, 4, []byte{5, 6, 7, 8}); err != nil {
		t.Fatalf("BufferSubData: %v", err)
	}
	if err := r.BufferSubData(ArrayBuffer, 6, []byte{9, 9, 9}); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("BufferSubData past the end = %v, want ErrOutOfRange", err)
	}

	got, ok := r.Buffer(names[0])
	if !ok || !bytes.Equal(got, []byte{1, 2, 3, 4, 5, 6, 7, 8}) {
		t.Errorf("buffer contents = %v", got)
	}
	if r.Allocated() != 8 {
		t.Errorf("Allocated = %d, want 8", r.Allocated())
	}

	r.DeleteBuffers(names...)
	if r.LiveBuffers() != 0 {
		t.Errorf("LiveBuffers = %d after delete", r.LiveBuffers())
	}
	if r.Bound(ArrayBuffer) != 0 {
		t.Error("deleting a bound buffer should unbind it")
	}
}

func TestRecorderBufferDataUnbound(t *testing.T) {
	r := NewRecorder()
	err := r.BufferData(ElementArrayBuffer, 4, nil, StaticDraw)
	if !errors.Is(err, ErrNoBufferBound) {
		t.Errorf("BufferData with nothing bound = %v, want ErrNoBufferBound", err)
	}
}

func TestRecorderWriteErr(t *testing.T) {
	r := NewRecorder()
	errBus := errors.New("bus error")
	r.WriteErr = errBus

	names := r.GenBuffers(1)
	r.BindBuffer(ArrayBuffer, names[0])
	if err := r.BufferData(ArrayBuffer, 4, []byte{1, 2, 3, 4}, StaticDraw); !errors.Is(err, errBus) {
		t.Errorf("BufferData = %v, want bus error", err)
	}
	if r.Allocated() != 0 {
		t.Errorf("failed upload left %d bytes allocated", r.Allocated())
	}

	// Allocation alone succeeds; filling it fails.
	if err := r.BufferData(ArrayBuffer, 4, nil, StaticDraw); err != nil {
		t.Fatalf("BufferData without data: %v", err)
	}
	if err := r.BufferSubData(ArrayBuffer, 0, []byte{1}); !errors.Is(err, errBus) {
		t.Errorf("BufferSubData = %v, want bus error", err)
	}
}

func TestRecorderLimit(t *testing.T) {
	r := NewRecorder()
	r.Limit = 16

	names := r.GenBuffers(2)
	r.BindBuffer(ArrayBuffer, names[0])
	if err := r.BufferData(ArrayBuffer, 12, nil, StaticDraw); err != nil {
		t.Fatalf("first BufferData: %v", err)
	}
	r.BindBuffer(ArrayBuffer, names[1])
	err := r.BufferData(ArrayBuffer, 8, nil, StaticDraw)
	if !errors.Is(err, ErrOutOfMemory) {
		t.Errorf("BufferData over limit = %v, want ErrOutOfMemory", err)
	}

	// Reallocating an existing buffer only counts the difference.
	r.BindBuffer(ArrayBuffer, names[0])
	if err := r.BufferData(ArrayBuffer, 16, nil, StaticDraw); err != nil {
		t.Errorf("reallocation within limit: %v", err)
	}
}

func TestRecorderCallLog(t *testing.T) {
	r := NewRecorder()
	names := r.GenBuffers(1)
	r.BindBuffer(ElementArrayBuffer, names[0])
	r.DrawElements(Triangles, 6, 0)

	draws := r.CallsOf(CallDrawElements)
	if len(draws) != 1 {
		t.Fatalf("recorded %d draws, want 1", len(draws))
	}
	if draws[0].Names[0] != names[0] || draws[0].Count != 6 || draws[0].Mode != Triangles {
		t.Errorf("draw = %+v", draws[0])
	}

	r.ResetCalls()
	if len(r.Calls()) != 0 {
		t.Error("ResetCalls left calls behind")
	}

	r.DropCalls = true
	r.BindBuffer(ArrayBuffer, 0)
	if len(r.Calls()) != 0 {
		t.Error("DropCalls should disable the call log")
	}
}

func TestEnumStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{ArrayBuffer.String(), "ArrayBuffer"},
		{ElementArrayBuffer.String(), "ElementArrayBuffer"},
		{Target(1).String(), "Target(0x1)"},
		{Triangles.String(), "Triangles"},
		{Quads.String(), "Quads"},
		{CallDrawElements.String(), "DrawElements"},
		{CallType(200).String(), "CallType(200)"},
		{KindShadowAttribute.String(), "shadow-attribute"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("String() = %q, want %q", tt.got, tt.want)
		}
	}
	if (Texture0 + 3).Index() != 3 {
		t.Errorf("Index = %d, want 3", (Texture0 + 3).Index())
	}
}

func TestLedger(t *testing.T) {
	l := NewLedger()
	l.Record(1, 10, 100, KindShadowVolume)
	l.Record(2, 10, 50, KindShadowAttribute)
	l.Record(1, 11, 120, KindShadowVolume) // replaces

	if l.Len() != 2 || l.Total() != 170 {
		t.Errorf("Len=%d Total=%d, want 2/170", l.Len(), l.Total())
	}

	recs := l.Records()
	if len(recs) != 2 || recs[0].Name != 1 || recs[0].Owner != 11 {
		t.Errorf("Records = %+v", recs)
	}

	l.Forget(1)
	l.Forget(99)
	if l.Len() != 1 || l.Total() != 50 {
		t.Errorf("after Forget: Len=%d Total=%d", l.Len(), l.Total())
	}

	var buf bytes.Buffer
	l.Dump(slog.New(slog.NewTextHandler(&buf, nil)), slog.LevelError)
	out := buf.String()
	if !strings.Contains(out, "shadow-attribute") || !strings.Contains(out, "gpu buffer total") {
		t.Errorf("Dump output missing records: %s", out)
	}
}

func TestNilLedger(t *testing.T) {
	var l *Ledger
	l.Record(1, 1, 1, KindGeometry)
	l.Forget(1)
	if l.Len() != 0 || l.Total() != 0 || l.Records() != nil {
		t.Error("nil ledger should be inert")
	}
	l.Dump(slog.Default(), slog.LevelInfo)
}

// plainProvider is a device provider without HAL access.
type plainProvider struct{}

func (plainProvider) Device() gpucontext.Device   { return nil }
func (plainProvider) Queue() gpucontext.Queue     { return nil }
func (plainProvider) Adapter() gpucontext.Adapter { return nil }
func (plainProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{}
}
func (plainProvider) SurfaceFormat() gputypes.TextureFormat {
	return gputypes.TextureFormatUndefined
}

// wrongHALProvider exposes HAL accessors that return the wrong types.
type wrongHALProvider struct{ plainProvider }

func (wrongHALProvider) HalDevice() any { return "device" }
func (wrongHALProvider) HalQueue() any  { return "queue" }

func TestNewHALFuncsRejectsProviders(t *testing.T) {
	for _, p := range []gpucontext.DeviceProvider{plainProvider{}, wrongHALProvider{}} {
		f, err := NewHALFuncs(p)
		if !errors.Is(err, ErrNoHAL) {
			t.Errorf("NewHALFuncs(%T) error = %v, want ErrNoHAL", p, err)
		}
		if f != nil {
			t.Errorf("NewHALFuncs(%T) returned non-nil funcs", p)
		}
	}
}

func TestHALFuncsHostState(t *testing.T) {
	f := NewHALFuncsFromDevice(nil, nil)

	names := f.GenBuffers(3)
	if f.LiveBuffers() != 3 {
		t.Fatalf("LiveBuffers = %d, want 3", f.LiveBuffers())
	}
	if err := f.BufferData(ArrayBuffer, 4, nil, StaticDraw); !errors.Is(err, ErrNoBufferBound) {
		t.Errorf("BufferData unbound = %v, want ErrNoBufferBound", err)
	}

	// Buffers without device storage are deleted without touching the device.
	f.BindBuffer(ArrayBuffer, names[0])
	f.DeleteBuffers(names...)
	if f.LiveBuffers() != 0 {
		t.Errorf("LiveBuffers = %d after delete", f.LiveBuffers())
	}

	// Draws without a render pass are dropped.
	f.DrawElements(Triangles, 3, 0)
}
