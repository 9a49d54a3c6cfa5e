package object

import "github.com/gogpu/q3"

// Geometry is a shared shape whose derived GPU data may be cached.
type Geometry struct {
	*Shared

	// LocalToWorld places the geometry in the scene.
	LocalToWorld q3.Matrix4x4
}

// NewGeometry creates a geometry placed at the origin.
func NewGeometry() *Geometry {
	return &Geometry{Shared: NewShared(), LocalToWorld: q3.Identity4x4()}
}

// SetTransform moves the geometry and records the edit.
func (g *Geometry) SetTransform(m q3.Matrix4x4) error {
	if g.disposed {
		return ErrDisposed
	}
	g.LocalToWorld = m
	return g.Edited()
}

// Light is a shared light source.
type Light struct {
	*Shared

	position q3.RationalPoint4D
}

// NewPointLight creates a positional light at p.
func NewPointLight(p q3.Point3D) *Light {
	return &Light{Shared: NewShared(), position: p.Rational()}
}

// NewDirectionalLight creates a light at infinity shining from direction d.
// The stored position points toward the light, so it is -d.
func NewDirectionalLight(d q3.Point3D) *Light {
	return &Light{
		Shared:   NewShared(),
		position: q3.RationalPoint4D{X: -d.X, Y: -d.Y, Z: -d.Z, W: 0},
	}
}

// Position returns the world position of the light, w = 0 for
// directional lights.
func (l *Light) Position() q3.RationalPoint4D {
	return l.position
}

// IsDirectional reports whether the light is at infinity.
func (l *Light) IsDirectional() bool {
	return l.position.W == 0
}

// SetPosition moves the light and records the edit.
func (l *Light) SetPosition(p q3.RationalPoint4D) error {
	if l.disposed {
		return ErrDisposed
	}
	l.position = p
	return l.Edited()
}

// LocalPosition returns the light position in g's local space.
func (l *Light) LocalPosition(g *Geometry) (q3.RationalPoint4D, bool) {
	return q3.LocalLightPosition(l.position, g.LocalToWorld)
}
