package math3d

import "math"

// Mat4 is a 4x4 matrix stored in column-major order.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
//
// For an affine transform:
// | Xx Yx Zx Tx |   X,Y,Z = basis vectors (rotation/scale)
// | Xy Yy Zy Ty |   T = translation
// | Xz Yz Zz Tz |
// | Px Py Pz 1  |   P = projective row, only set by Projection
type Mat4 [16]float64

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		v.X, v.Y, v.Z, 1,
	}
}

// Scale creates a scaling matrix.
func Scale(v Vec3) Mat4 {
	return Mat4{
		v.X, 0, 0, 0,
		0, v.Y, 0, 0,
		0, 0, v.Z, 0,
		0, 0, 0, 1,
	}
}

// Viewport maps the canonical cube [-1,1]³ onto the screen box
// [x, x+w] × [y, y+h] × [0, depth].
func Viewport(x, y, w, h, depth float64) Mat4 {
	return Mat4{
		w / 2, 0, 0, 0,
		0, h / 2, 0, 0,
		0, 0, depth / 2, 0,
		x + w/2, y + h/2, depth / 2, 1,
	}
}

// Projection returns the single-term perspective matrix for a camera sitting
// dist units along the view axis: the identity with -1/dist in row 3,
// column 2. A zero dist means an infinitely distant camera and yields the
// identity, i.e. an orthographic projection.
func Projection(dist float64) Mat4 {
	m := Identity()
	if dist != 0 {
		m.Set(3, 2, -1/dist)
	}
	return m
}

// LookDir creates a view matrix for a camera at eye looking along dir.
// The basis is right = normalize(dir × up), up' = right × dir. Camera space
// z points back toward the viewer, so larger z is closer.
// dir parallel to up yields a degenerate (zero) basis.
func LookDir(dir, eye, up Vec3) Mat4 {
	f := dir.Normalize()         // Forward
	s := f.Cross(up).Normalize() // Right
	u := s.Cross(f)              // Up (recomputed)

	return Mat4{
		s.X, u.X, -f.X, 0,
		s.Y, u.Y, -f.Y, 0,
		s.Z, u.Z, -f.Z, 0,
		-s.Dot(eye), -u.Dot(eye), f.Dot(eye), 1,
	}
}

// LookAt creates a view matrix looking from eye towards center.
func LookAt(eye, center, up Vec3) Mat4 {
	return LookDir(center.Sub(eye), eye, up)
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	var m Mat4
	for col := range 4 {
		for row := range 4 {
			var sum float64
			for k := range 4 {
				sum += a[row+k*4] * b[k+col*4]
			}
			m[row+col*4] = sum
		}
	}
	return m
}

// MulVec3 transforms a Vec3 as a point (w=1) and divides by the resulting w.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 1)).PerspectiveDivide()
}

// MulVec3Dir transforms a Vec3 as a direction (w=0, no translation).
func (m Mat4) MulVec3Dir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	return Vec4{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12]*v.W,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13]*v.W,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14]*v.W,
		m[3]*v.X + m[7]*v.Y + m[11]*v.Z + m[15]*v.W,
	}
}

// Transpose returns the transposed matrix.
func (m Mat4) Transpose() Mat4 {
	return Mat4{
		m[0], m[4], m[8], m[12],
		m[1], m[5], m[9], m[13],
		m[2], m[6], m[10], m[14],
		m[3], m[7], m[11], m[15],
	}
}

// Inverse returns the inverse of the matrix using Gauss-Jordan elimination
// with partial pivoting. ok is false when the matrix is singular.
func (m Mat4) Inverse() (inv Mat4, ok bool) {
	a := m
	inv = Identity()
	for col := range 4 {
		pivot := col
		for row := col + 1; row < 4; row++ {
			if math.Abs(a.Get(row, col)) > math.Abs(a.Get(pivot, col)) {
				pivot = row
			}
		}
		p := a.Get(pivot, col)
		if math.Abs(p) < 1e-12 {
			return Mat4{}, false
		}
		if pivot != col {
			a.swapRows(pivot, col)
			inv.swapRows(pivot, col)
		}
		for c := range 4 {
			a.Set(col, c, a.Get(col, c)/p)
			inv.Set(col, c, inv.Get(col, c)/p)
		}
		for row := range 4 {
			if row == col {
				continue
			}
			f := a.Get(row, col)
			if f == 0 {
				continue
			}
			for c := range 4 {
				a.Set(row, c, a.Get(row, c)-f*a.Get(col, c))
				inv.Set(row, c, inv.Get(row, c)-f*inv.Get(col, c))
			}
		}
	}
	return inv, true
}

// InverseTranspose returns (m⁻¹)ᵀ, the matrix that carries normals when m
// carries points. A singular m yields the identity.
func (m Mat4) InverseTranspose() Mat4 {
	inv, ok := m.Inverse()
	if !ok {
		return Identity()
	}
	return inv.Transpose()
}

// IsFinite reports whether every element is a finite number.
func (m Mat4) IsFinite() bool {
	for _, v := range m {
		if !finite(v) {
			return false
		}
	}
	return true
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float64 {
	return m[row+col*4]
}

// Set sets the element at (row, col).
func (m *Mat4) Set(row, col int, val float64) {
	m[row+col*4] = val
}

func (m *Mat4) swapRows(a, b int) {
	for c := range 4 {
		m[a+c*4], m[b+c*4] = m[b+c*4], m[a+c*4]
	}
}
