package q3

import (
	"math"
	"testing"

	"github.com/chewxy/math32"
)

const eps = 1e-4

func near(a, b float32) bool {
	return math32.Abs(a-b) < eps
}

func nearPoint(a, b RationalPoint4D) bool {
	return near(a.X, b.X) && near(a.Y, b.Y) && near(a.Z, b.Z) && near(a.W, b.W)
}

func TestDistanceSquared(t *testing.T) {
	a := RationalPoint4D{X: 1, Y: 2, Z: 3, W: 1}
	b := RationalPoint4D{X: 2, Y: 0, Z: 3, W: 0}
	if got := a.DistanceSquared(b); got != 6 {
		t.Errorf("DistanceSquared = %v, want 6", got)
	}
	if got := a.DistanceSquared(a); got != 0 {
		t.Errorf("DistanceSquared to self = %v, want 0", got)
	}
}

func TestRationalPoint3D(t *testing.T) {
	tests := []struct {
		name string
		p    RationalPoint4D
		want Point3D
	}{
		{"w=1", RationalPoint4D{X: 1, Y: 2, Z: 3, W: 1}, Pt3(1, 2, 3)},
		{"w=2", RationalPoint4D{X: 2, Y: 4, Z: 6, W: 2}, Pt3(1, 2, 3)},
		{"infinite", RationalPoint4D{X: 0, Y: 1, Z: 0, W: 0}, Pt3(0, 1, 0)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.p.Point3D(); got != tt.want {
				t.Errorf("Point3D() = %+v, want %+v", got, tt.want)
			}
		})
	}
	if Pt3(3, 4, 0).Length() != 5 {
		t.Error("Length of (3,4,0) should be 5")
	}
}

func TestMatrixInvert(t *testing.T) {
	tests := []struct {
		name string
		m    Matrix4x4
	}{
		{"identity", Identity4x4()},
		{"translate", Translate4x4(1, -2, 3)},
		{"scale", Scale4x4(2, 4, 0.5)},
		{"rotate", RotateZ4x4(0.7)},
		{"composite", Scale4x4(2, 2, 2).Multiply(RotateZ4x4(1.2)).Multiply(Translate4x4(5, 0, -1))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			inv, ok := tt.m.Invert()
			if !ok {
				t.Fatal("Invert failed")
			}
			p := RationalPoint4D{X: 1, Y: 2, Z: 3, W: 1}
			if got := inv.TransformRational(tt.m.TransformRational(p)); !nearPoint(got, p) {
				t.Errorf("round trip = %+v, want %+v", got, p)
			}
		})
	}

	if _, ok := Scale4x4(1, 0, 1).Invert(); ok {
		t.Error("singular matrix should not invert")
	}
}

func TestMultiplyOrder(t *testing.T) {
	// Scale first, then translate.
	m := Scale4x4(2, 2, 2).Multiply(Translate4x4(10, 0, 0))
	got := m.TransformRational(RationalPoint4D{X: 1, W: 1})
	if want := (RationalPoint4D{X: 12, W: 1}); !nearPoint(got, want) {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestLocalLightPosition(t *testing.T) {
	toWorld := Translate4x4(5, 0, 0)

	local, ok := LocalLightPosition(RationalPoint4D{X: 5, Y: 10, Z: 0, W: 1}, toWorld)
	if !ok || !nearPoint(local, RationalPoint4D{Y: 10, W: 1}) {
		t.Errorf("point light local position = %+v, %v", local, ok)
	}

	// Translation does not move a light at infinity.
	local, ok = LocalLightPosition(RationalPoint4D{Y: 1}, toWorld)
	if !ok || !nearPoint(local, RationalPoint4D{Y: 1}) || !local.IsInfinite() {
		t.Errorf("directional light local position = %+v, %v", local, ok)
	}

	// Rotation does.
	local, _ = LocalLightPosition(RationalPoint4D{X: 1}, RotateZ4x4(math.Pi/2))
	if !nearPoint(local, RationalPoint4D{Y: -1}) {
		t.Errorf("rotated directional light = %+v, want (0,-1,0,0)", local)
	}

	if _, ok := LocalLightPosition(RationalPoint4D{W: 1}, Matrix4x4{}); ok {
		t.Error("singular transform should fail")
	}
}
