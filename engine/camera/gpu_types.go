package camera

import (
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUCameraUniform is the byte layout of the WGSL Camera struct bound at group 0:
//
//	struct Camera {
//	    view_proj: mat4x4<f32>,
//	    light_dir: vec4<f32>,
//	}
type GPUCameraUniform struct {
	ViewProj [16]float32 // offset  0
	LightDir [4]float32  // offset 64, xyz used, w = 0
}

// Size returns the size of the uniform in bytes (80).
func (g *GPUCameraUniform) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the uniform into little-endian bytes for upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUCameraUniform) Marshal() []byte {
	buf := make([]byte, g.Size())
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.ViewProj[i]))
	}
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[64+i*4:], math.Float32bits(g.LightDir[i]))
	}
	return buf
}
