package camera

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUUniformsSource is the canonical WGSL definition of the Uniforms struct.
// Matches GPUUniforms layout exactly (224 bytes).
//
//go:embed assets/uniforms.wgsl
var GPUUniformsSource string

// GPUUniforms is the per-frame uniform block shared by the splat render pipeline and the radix sort kernels.
// Matches the WGSL Uniforms struct layout exactly (see GPUUniformsSource).
type GPUUniforms struct {
	CameraMatrix            [16]float32 // offset   0: camera to world (mat4x4<f32>)
	ViewMatrix              [16]float32 // offset  64: world to camera (mat4x4<f32>)
	ViewProjectionMatrix    [16]float32 // offset 128: world to clip (mat4x4<f32>)
	ViewSize                [2]float32  // offset 192: view half extents at unit depth (vec2<f32>)
	ImageSize               [2]uint32   // offset 200: target size in pixels (vec2<u32>)
	FrustumCullingTolerance float32     // offset 208
	EllipseSizeBias         float32     // offset 212
	EllipseMargin           float32     // offset 216
	SplatScale              float32     // offset 220
}

// Size returns the size of the GPUUniforms struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (224)
func (g *GPUUniforms) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUUniforms struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUUniforms) Marshal() []byte {
	buf := make([]byte, g.Size())
	putMat4(buf[0:], g.CameraMatrix)
	putMat4(buf[64:], g.ViewMatrix)
	putMat4(buf[128:], g.ViewProjectionMatrix)
	binary.LittleEndian.PutUint32(buf[192:], math.Float32bits(g.ViewSize[0]))
	binary.LittleEndian.PutUint32(buf[196:], math.Float32bits(g.ViewSize[1]))
	binary.LittleEndian.PutUint32(buf[200:], g.ImageSize[0])
	binary.LittleEndian.PutUint32(buf[204:], g.ImageSize[1])
	binary.LittleEndian.PutUint32(buf[208:], math.Float32bits(g.FrustumCullingTolerance))
	binary.LittleEndian.PutUint32(buf[212:], math.Float32bits(g.EllipseSizeBias))
	binary.LittleEndian.PutUint32(buf[216:], math.Float32bits(g.EllipseMargin))
	binary.LittleEndian.PutUint32(buf[220:], math.Float32bits(g.SplatScale))
	return buf
}

func putMat4(buf []byte, m [16]float32) {
	for i := range 16 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(m[i]))
	}
}
