package math3d

import "github.com/go-gl/mathgl/mgl32"

// Mat4 is a 4x4 matrix stored in column-major order, the layout mgl32 uses.
//
// Memory layout (indices):
// | 0  4  8  12 |
// | 1  5  9  13 |
// | 2  6  10 14 |
// | 3  7  11 15 |
type Mat4 mgl32.Mat4

func (v Vec3) gl() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4(mgl32.Ident4())
}

// Translate creates a translation matrix.
func Translate(v Vec3) Mat4 {
	return Mat4(mgl32.Translate3D(v.X, v.Y, v.Z))
}

// LookAt creates a view matrix looking from eye towards center.
func LookAt(eye, center, up Vec3) Mat4 {
	return Mat4(mgl32.LookAtV(eye.gl(), center.gl(), up.gl()))
}

// Perspective creates a perspective projection matrix.
// fovy is the vertical field of view in radians, aspect is width/height.
func Perspective(fovy, aspect, near, far float32) Mat4 {
	return Mat4(mgl32.Perspective(fovy, aspect, near, far))
}

// Mul multiplies two matrices: a * b.
//
//nolint:st1016 // a*b naming convention is clearer for matrix multiplication
func (a Mat4) Mul(b Mat4) Mat4 {
	return Mat4(mgl32.Mat4(a).Mul4(mgl32.Mat4(b)))
}

// MulVec4 transforms a Vec4.
func (m Mat4) MulVec4(v Vec4) Vec4 {
	r := mgl32.Mat4(m).Mul4x1(mgl32.Vec4{v.X, v.Y, v.Z, v.W})
	return Vec4{r[0], r[1], r[2], r[3]}
}

// MulVec3 transforms a Vec3 as a point (w=1) including the perspective divide.
func (m Mat4) MulVec3(v Vec3) Vec3 {
	return m.MulVec4(V4FromV3(v, 1)).PerspectiveDivide()
}

// Row returns row i as a Vec4.
func (m Mat4) Row(i int) Vec4 {
	return Vec4{m[i], m[i+4], m[i+8], m[i+12]}
}

// Get returns the element at (row, col).
func (m Mat4) Get(row, col int) float32 {
	return m[row+col*4]
}
