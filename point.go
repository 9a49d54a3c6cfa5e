package q3

import "github.com/chewxy/math32"

// Point3D represents a 3D point.
type Point3D struct {
	X, Y, Z float32
}

// Pt3 is a convenience function to create a Point3D.
func Pt3(x, y, z float32) Point3D {
	return Point3D{X: x, Y: y, Z: z}
}

// Sub returns the difference of two points.
func (p Point3D) Sub(q Point3D) Point3D {
	return Point3D{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z}
}

// Length returns the length of the vector.
func (p Point3D) Length() float32 {
	return math32.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z)
}

// Rational returns the point as a homogeneous point with w = 1.
func (p Point3D) Rational() RationalPoint4D {
	return RationalPoint4D{X: p.X, Y: p.Y, Z: p.Z, W: 1}
}

// RationalPoint4D is a homogeneous point. Light positions use w = 1 for
// positional lights and w = 0 for directional lights.
type RationalPoint4D struct {
	X, Y, Z, W float32
}

// Sub returns the component-wise difference of two points.
func (p RationalPoint4D) Sub(q RationalPoint4D) RationalPoint4D {
	return RationalPoint4D{X: p.X - q.X, Y: p.Y - q.Y, Z: p.Z - q.Z, W: p.W - q.W}
}

// DistanceSquared returns the squared 4D distance between two points.
func (p RationalPoint4D) DistanceSquared(q RationalPoint4D) float32 {
	d := p.Sub(q)
	return d.X*d.X + d.Y*d.Y + d.Z*d.Z + d.W*d.W
}

// IsInfinite reports whether the point lies at infinity (w == 0).
func (p RationalPoint4D) IsInfinite() bool {
	return p.W == 0
}

// Point3D returns the point divided through by w.
// Points at infinity are returned as directions, unchanged.
func (p RationalPoint4D) Point3D() Point3D {
	if p.W == 0 || p.W == 1 {
		return Point3D{X: p.X, Y: p.Y, Z: p.Z}
	}
	inv := 1 / p.W
	return Point3D{X: p.X * inv, Y: p.Y * inv, Z: p.Z * inv}
}
