package object

// PropertyCustomTextureCoordinates holds a *CustomTextureCoordinates that
// supplies extra per-vertex data for shadow rendering.
var PropertyCustomTextureCoordinates = PropertyType(FourCC('c', 't', 'x', 'c'))

// CustomTextureCoordinates is a per-vertex attribute array bound to a
// texture unit when the geometry's shadow volume is drawn.
type CustomTextureCoordinates struct {
	// TextureUnit is the unit offset from texture unit 0.
	TextureUnit uint32

	// NumPoints is the number of vertices.
	NumPoints uint32

	// CoordsPerPoint is the number of floats per vertex, 1 to 4.
	CoordsPerPoint uint32

	// Coords holds NumPoints*CoordsPerPoint values.
	Coords []float32
}

// Valid reports whether the record is internally consistent.
func (c *CustomTextureCoordinates) Valid() bool {
	if c == nil || c.CoordsPerPoint < 1 || c.CoordsPerPoint > 4 {
		return false
	}
	return uint64(len(c.Coords)) >= uint64(c.NumPoints)*uint64(c.CoordsPerPoint)
}

// SetProperty attaches a property value, replacing any previous value.
// Setting a property counts as an edit.
func (s *Shared) SetProperty(t PropertyType, value any) error {
	if s.disposed {
		return ErrDisposed
	}
	if s.props == nil {
		s.props = make(map[PropertyType]any)
	}
	s.props[t] = value
	return s.Edited()
}

// Property returns the value of a property.
func (s *Shared) Property(t PropertyType) (any, bool) {
	v, ok := s.props[t]
	return v, ok
}

// RemoveProperty detaches a property. Removing a missing property is a no-op.
func (s *Shared) RemoveProperty(t PropertyType) error {
	if s.disposed {
		return ErrDisposed
	}
	if _, ok := s.props[t]; !ok {
		return nil
	}
	delete(s.props, t)
	return s.Edited()
}

// RangeProperties calls fn for every property until fn returns false.
// Iteration order is unspecified.
func (s *Shared) RangeProperties(fn func(PropertyType, any) bool) {
	for t, v := range s.props {
		if !fn(t, v) {
			return
		}
	}
}

// CustomTextureCoords returns the geometry's custom texture coordinate
// property if it is present and well formed.
func (s *Shared) CustomTextureCoords() (*CustomTextureCoordinates, bool) {
	v, ok := s.props[PropertyCustomTextureCoordinates]
	if !ok {
		return nil, false
	}
	tc, ok := v.(*CustomTextureCoordinates)
	if !ok || !tc.Valid() {
		return nil, false
	}
	return tc, true
}
