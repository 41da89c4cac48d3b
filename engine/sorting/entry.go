package sorting

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// EntrySize is the size in bytes of one Entry in a GPU entry buffer.
const EntrySize = 8

// CulledKey is the key written for splats that fail the frustum test on the GPU.
// It is larger than every depth key in [0, 1], so culled entries sort to the back.
const CulledKey uint32 = 0xFFFFFFFF

// Entry pairs a depth key with the index of the splat it belongs to.
// Its memory layout matches the WGSL struct Entry { key: u32, index: u32 }.
type Entry struct {
	Key   uint32
	Index uint32
}

// DepthKey converts a normalized device depth into an unsigned sort key.
// The IEEE-754 bit pattern of a non-negative float orders the same way as the float itself,
// so comparing keys as integers compares depths. Negative depths and NaN do not have that
// property and indicate a broken culling test, so they panic.
//
// Parameters:
//   - z: the depth after the perspective divide, expected in [0, 1]
//
// Returns:
//   - uint32: the sort key
func DepthKey(z float32) uint32 {
	if z < 0 || z != z {
		panic(fmt.Sprintf("sorting: depth key requested for depth %v outside [0, 1]", z))
	}
	return math.Float32bits(z)
}

// Visible reports whether a projected splat center is inside the culling volume.
// The test runs after the perspective divide: |x| < tolerance, |y| < tolerance and |z - 0.5| < 0.5.
// Points on or behind the camera plane divide to infinities or NaN and fail the test.
//
// Parameters:
//   - clip: the homogeneous clip-space position
//   - tolerance: the accepted fraction of the clip half extent, greater than 1
//
// Returns:
//   - bool: true if the splat is kept
func Visible(clip mgl32.Vec4, tolerance float32) bool {
	x, y, z := clip[0]/clip[3], clip[1]/clip[3], clip[2]/clip[3]
	return abs32(x) < tolerance && abs32(y) < tolerance && abs32(z-0.5) < 0.5
}

// Project transforms a world position by viewProj and applies the culling test.
// The depth is only meaningful when ok is true.
func Project(viewProj mgl32.Mat4, x, y, z, tolerance float32) (depth float32, ok bool) {
	clip := viewProj.Mul4x1(mgl32.Vec4{x, y, z, 1})
	if !Visible(clip, tolerance) {
		return 0, false
	}
	return clip[2] / clip[3], true
}

func abs32(v float32) float32 {
	return math.Float32frombits(math.Float32bits(v) &^ (1 << 31))
}
