package common

import (
	"unsafe"

	"github.com/chewxy/math32"
)

// OrthogonalVector returns a vector orthogonal to v with the same length as v.
// The component of v with the largest magnitude is solved for so the division is well conditioned.
// The zero vector is returned unchanged.
//
// Parameters:
//   - v: the source vector
//
// Returns:
//   - Vec3: a vector o with o·v == 0 and |o| == |v|
func OrthogonalVector(v Vec3) Vec3 {
	length := v.Length()
	if length == 0 {
		return v
	}

	maxIdx := 0
	for i := 1; i < 3; i++ {
		if math32.Abs(v.Component(i)) > math32.Abs(v.Component(maxIdx)) {
			maxIdx = i
		}
	}
	firstIdx := 0
	if maxIdx == 0 || maxIdx == 2 {
		firstIdx = 1
	}

	var o Vec3
	o.setComponent(firstIdx, 1)
	o.setComponent(maxIdx, -v.Component(firstIdx)/v.Component(maxIdx))
	return o.Normalize().Scale(length)
}

// Identity resets a 4x4 column-major matrix to the identity matrix.
//
// Parameters:
//   - m: destination slice (must be at least 16 elements)
func Identity(m []float32) {
	clear(m[:16])
	m[0], m[5], m[10], m[15] = 1, 1, 1, 1
}

// SliceToBytes converts any slice to a byte slice for GPU buffer uploads.
// The returned slice shares memory with the input and must not be modified.
//
// Parameters:
//   - data: source slice of any type
//
// Returns:
//   - []byte: byte slice view of the input data, or nil if input is empty
func SliceToBytes[T any](data []T) []byte {
	if len(data) == 0 {
		return nil
	}
	var zero T
	return unsafe.Slice((*byte)(unsafe.Pointer(&data[0])), int(unsafe.Sizeof(zero))*len(data))
}

// Mul4 multiplies two 4x4 column-major matrices, out = a * b. out may alias a or b.
func Mul4(out, a, b []float32) {
	var buf [16]float32
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += a[k*4+row] * b[col*4+k]
			}
			buf[col*4+row] = sum
		}
	}
	copy(out, buf[:])
}

// Perspective writes a right-handed perspective projection mapping depth to the WebGPU clip range [0, 1].
//
// Parameters:
//   - out: destination slice (must be at least 16 elements)
//   - fovY: vertical field of view in radians
//   - aspect: viewport aspect ratio (width/height)
//   - near: near clipping plane distance (must be > 0)
//   - far: far clipping plane distance (must be > near)
func Perspective(out []float32, fovY, aspect, near, far float32) {
	f := 1 / math32.Tan(fovY/2)
	Identity(out)
	out[0] = f / aspect
	out[5] = f
	out[10] = far / (near - far)
	out[11] = -1
	out[14] = near * far / (near - far)
	out[15] = 0
}

// Ortho writes an orthographic projection of the box [left,right]x[bottom,top]x[near,far]
// into WebGPU clip space with depth in [0, 1].
func Ortho(out []float32, left, right, bottom, top, near, far float32) {
	Identity(out)
	out[0] = 2 / (right - left)
	out[5] = 2 / (top - bottom)
	out[10] = 1 / (near - far)
	out[12] = -(right + left) / (right - left)
	out[13] = -(top + bottom) / (top - bottom)
	out[14] = near / (near - far)
}

// LookAt writes a view matrix for a camera at eye looking at center with the given up vector.
// Degenerate inputs (eye == center, or up parallel to the view direction) fall back to unit axes
// instead of producing NaNs.
func LookAt(out []float32, eye, center, up Vec3) {
	z := eye.Sub(center).Normalize()
	if z.Length() == 0 {
		z = V3(0, 0, 1)
	}
	x := up.Cross(z).Normalize()
	if x.Length() == 0 {
		x = OrthogonalVector(z).Normalize()
	}
	y := z.Cross(x)

	out[0], out[4], out[8], out[12] = x.X, x.Y, x.Z, -x.Dot(eye)
	out[1], out[5], out[9], out[13] = y.X, y.Y, y.Z, -y.Dot(eye)
	out[2], out[6], out[10], out[14] = z.X, z.Y, z.Z, -z.Dot(eye)
	out[3], out[7], out[11], out[15] = 0, 0, 0, 1
}

// TransformPoint applies a 4x4 column-major matrix to p (w = 1) and performs the perspective divide.
func TransformPoint(m []float32, p Vec3) Vec3 {
	x := m[0]*p.X + m[4]*p.Y + m[8]*p.Z + m[12]
	y := m[1]*p.X + m[5]*p.Y + m[9]*p.Z + m[13]
	z := m[2]*p.X + m[6]*p.Y + m[10]*p.Z + m[14]
	w := m[3]*p.X + m[7]*p.Y + m[11]*p.Z + m[15]
	if w != 0 && w != 1 {
		x, y, z = x/w, y/w, z/w
	}
	return V3(x, y, z)
}
