package q3

import "github.com/chewxy/math32"

// Matrix4x4 is a 4x4 transformation matrix.
//
// Points are row vectors multiplied on the left, so translation lives in
// the bottom row:
//
//	[x' y' z' w'] = [x y z w] * M
type Matrix4x4 [4][4]float32

// Identity4x4 returns the identity matrix.
func Identity4x4() Matrix4x4 {
	return Matrix4x4{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
		{0, 0, 0, 1},
	}
}

// Translate4x4 creates a translation matrix.
func Translate4x4(x, y, z float32) Matrix4x4 {
	m := Identity4x4()
	m[3][0], m[3][1], m[3][2] = x, y, z
	return m
}

// Scale4x4 creates a scaling matrix.
func Scale4x4(x, y, z float32) Matrix4x4 {
	m := Identity4x4()
	m[0][0], m[1][1], m[2][2] = x, y, z
	return m
}

// RotateZ4x4 creates a rotation about the z axis (angle in radians).
func RotateZ4x4(angle float32) Matrix4x4 {
	c, s := math32.Cos(angle), math32.Sin(angle)
	m := Identity4x4()
	m[0][0], m[0][1] = c, s
	m[1][0], m[1][1] = -s, c
	return m
}

// Multiply returns m * other: applying m first, then other.
func (m Matrix4x4) Multiply(other Matrix4x4) Matrix4x4 {
	var r Matrix4x4
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[i][k] * other[k][j]
			}
			r[i][j] = sum
		}
	}
	return r
}

// TransformRational applies the matrix to a homogeneous point.
func (m Matrix4x4) TransformRational(p RationalPoint4D) RationalPoint4D {
	return RationalPoint4D{
		X: p.X*m[0][0] + p.Y*m[1][0] + p.Z*m[2][0] + p.W*m[3][0],
		Y: p.X*m[0][1] + p.Y*m[1][1] + p.Z*m[2][1] + p.W*m[3][1],
		Z: p.X*m[0][2] + p.Y*m[1][2] + p.Z*m[2][2] + p.W*m[3][2],
		W: p.X*m[0][3] + p.Y*m[1][3] + p.Z*m[2][3] + p.W*m[3][3],
	}
}

// Invert returns the inverse matrix using Gauss-Jordan elimination with
// partial pivoting. ok is false if the matrix is singular.
func (m Matrix4x4) Invert() (inv Matrix4x4, ok bool) {
	a := m
	inv = Identity4x4()
	for col := 0; col < 4; col++ {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math32.Abs(a[row][col]) > math32.Abs(a[pivot][col]) {
				pivot = row
			}
		}
		if math32.Abs(a[pivot][col]) < 1e-12 {
			return Matrix4x4{}, false
		}
		a[col], a[pivot] = a[pivot], a[col]
		inv[col], inv[pivot] = inv[pivot], inv[col]

		scale := 1 / a[col][col]
		for j := 0; j < 4; j++ {
			a[col][j] *= scale
			inv[col][j] *= scale
		}
		for row := 0; row < 4; row++ {
			if row == col {
				continue
			}
			f := a[row][col]
			if f == 0 {
				continue
			}
			for j := 0; j < 4; j++ {
				a[row][j] -= f * a[col][j]
				inv[row][j] -= f * inv[col][j]
			}
		}
	}
	return inv, true
}

// LocalLightPosition transforms a world-space light position into the
// local space of a geometry whose local-to-world transform is given.
// The w component is preserved: directional lights stay at infinity.
// ok is false if localToWorld is singular.
func LocalLightPosition(worldLight RationalPoint4D, localToWorld Matrix4x4) (RationalPoint4D, bool) {
	worldToLocal, ok := localToWorld.Invert()
	if !ok {
		return RationalPoint4D{}, false
	}
	local := worldToLocal.TransformRational(worldLight)
	if worldLight.W == 0 {
		local.W = 0
	} else if local.W != 0 && local.W != 1 {
		inv := 1 / local.W
		local = RationalPoint4D{X: local.X * inv, Y: local.Y * inv, Z: local.Z * inv, W: 1}
	}
	return local, true
}
