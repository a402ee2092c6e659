// Package matrix provides the 4x4 transform used by the scene graph.
//
// Storage is column-major, matching mgl32 and what glUniformMatrix4fv
// expects with transpose=false.
package matrix

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Matrix is a 4x4 affine or projective transform.
type Matrix struct {
	m mgl32.Mat4
}

// New returns an identity matrix.
func New() *Matrix {
	return &Matrix{m: mgl32.Ident4()}
}

// FromMat4 wraps an existing mgl32 matrix.
func FromMat4(m mgl32.Mat4) *Matrix {
	return &Matrix{m: m}
}

// NewLookAt builds a right-handed view transform with the camera at eye
// looking toward center. Degenerate input (eye == center, up parallel to
// the view direction) is not checked.
func NewLookAt(eye, center, up mgl32.Vec3) *Matrix {
	return &Matrix{m: mgl32.LookAtV(eye, center, up)}
}

// NewFrustum builds an asymmetric perspective projection. Callers must
// guarantee near > 0, far > near, left < right and bottom < top.
func NewFrustum(left, right, bottom, top, near, far float32) *Matrix {
	return &Matrix{m: mgl32.Frustum(left, right, bottom, top, near, far)}
}

// NewScale builds a diagonal scale transform.
func NewScale(sx, sy, sz float32) *Matrix {
	return &Matrix{m: mgl32.Scale3D(sx, sy, sz)}
}

// Identity resets the receiver in place.
func (m *Matrix) Identity() {
	m.m = mgl32.Ident4()
}

// Translate composes a translation onto the receiver as M = M * T, so the
// translation is applied to points before the existing transform.
func (m *Matrix) Translate(tx, ty, tz float32) {
	for i := 0; i < 4; i++ {
		m.m[12+i] += m.m[i]*tx + m.m[4+i]*ty + m.m[8+i]*tz
	}
}

// Mul returns m * o as a fresh matrix. Neither operand is modified.
func (m *Matrix) Mul(o *Matrix) *Matrix {
	return &Matrix{m: m.m.Mul4(o.m)}
}

// Transform applies the matrix to a point (w = 1).
func (m *Matrix) Transform(p mgl32.Vec3) mgl32.Vec4 {
	return m.m.Mul4x1(p.Vec4(1))
}

// Mat4 returns a copy of the underlying mgl32 matrix.
func (m *Matrix) Mat4() mgl32.Mat4 {
	return m.m
}

// Ptr returns a pointer to the first element for uniform uploads. The
// pointer is only valid while m is alive and unmodified.
func (m *Matrix) Ptr() *float32 {
	return &m.m[0]
}

// IsFinite reports whether every element is neither NaN nor Inf.
func (m *Matrix) IsFinite() bool {
	for _, v := range m.m {
		f := float64(v)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// ApproxEqual compares two matrices element-wise within mgl32's epsilon.
func (m *Matrix) ApproxEqual(o *Matrix) bool {
	return m.m.ApproxEqual(o.m)
}
