package scene

import (
	_ "embed"
	"encoding/binary"
	"math"
	"unsafe"
)

// GPUSplatSource is the canonical WGSL definition of the Splat struct.
// Matches GPUSplat layout exactly (48 bytes).
//
//go:embed assets/splat.wgsl
var GPUSplatSource string

// GPUSortPassSource is the canonical WGSL definition of the SortPass struct.
// Matches GPUSortPass layout exactly (16 bytes).
//
//go:embed assets/sort_pass.wgsl
var GPUSortPassSource string

// GPUSplatSize is the size in bytes of one packed splat.
const GPUSplatSize = 48

// GPUSplat is the GPU-aligned representation of one splat's geometric attributes.
// Spherical harmonics live in a separate float buffer.
type GPUSplat struct {
	Position [3]float32 // offset  0: vec3<f32>
	Opacity  float32    // offset 12
	Rotation [4]float32 // offset 16: quaternion x, y, z, w (vec4<f32>)
	Scale    [3]float32 // offset 32: vec3<f32>
	_pad     float32    // offset 44
}

// Size returns the size of the GPUSplat struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (48)
func (g *GPUSplat) Size() int {
	return int(unsafe.Sizeof(*g))
}

// MarshalTo writes the packed splat into buf, which must hold at least GPUSplatSize bytes.
//
// Parameters:
//   - buf: the destination slice
func (g *GPUSplat) MarshalTo(buf []byte) {
	for i := range 3 {
		binary.LittleEndian.PutUint32(buf[i*4:], math.Float32bits(g.Position[i]))
		binary.LittleEndian.PutUint32(buf[32+i*4:], math.Float32bits(g.Scale[i]))
	}
	binary.LittleEndian.PutUint32(buf[12:], math.Float32bits(g.Opacity))
	for i := range 4 {
		binary.LittleEndian.PutUint32(buf[16+i*4:], math.Float32bits(g.Rotation[i]))
	}
	binary.LittleEndian.PutUint32(buf[44:], 0) // _pad
}

// Marshal serializes the GPUSplat struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSplat) Marshal() []byte {
	buf := make([]byte, g.Size())
	g.MarshalTo(buf)
	return buf
}

// GPUSortPass is the per-pass uniform block of the radix sort. Each compute bind group carries its own.
type GPUSortPass struct {
	SplatCount uint32 // offset 0
	PassIndex  uint32 // offset 4
	_pad       [2]uint32
}

// Size returns the size of the GPUSortPass struct in bytes.
//
// Returns:
//   - int: the struct size in bytes (16)
func (g *GPUSortPass) Size() int {
	return int(unsafe.Sizeof(*g))
}

// Marshal serializes the GPUSortPass struct into a byte buffer suitable for GPU upload.
//
// Returns:
//   - []byte: the serialized byte buffer
func (g *GPUSortPass) Marshal() []byte {
	buf := make([]byte, g.Size())
	binary.LittleEndian.PutUint32(buf[0:], g.SplatCount)
	binary.LittleEndian.PutUint32(buf[4:], g.PassIndex)
	return buf
}
