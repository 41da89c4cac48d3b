package scene

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// MaxSHOrder is the highest supported spherical harmonics order.
const MaxSHOrder = 3

// ErrSHCoefficients is returned when a splat carries the wrong number of spherical harmonics coefficients.
var ErrSHCoefficients = errors.New("spherical harmonics coefficient count mismatch")

// Splat is one 3D Gaussian.
type Splat struct {
	Position mgl32.Vec3
	Opacity  float32
	Rotation mgl32.Quat
	Scale    mgl32.Vec3
	// SH holds SHFloatsPerSplat(order) values, RGB interleaved per coefficient.
	SH []float32
}

// SHFloatsPerSplat returns the number of spherical harmonics floats per splat for an order: 3*(order+1)^2.
//
// Parameters:
//   - order: the spherical harmonics order in [0, MaxSHOrder]
//
// Returns:
//   - int: the float count
func SHFloatsPerSplat(order int) int {
	return 3 * (order + 1) * (order + 1)
}

func (s *Splat) gpu() GPUSplat {
	q := s.Rotation.Normalize()
	return GPUSplat{
		Position: s.Position,
		Opacity:  s.Opacity,
		Rotation: [4]float32{q.V[0], q.V[1], q.V[2], q.W},
		Scale:    s.Scale,
	}
}

func validateSH(splats []Splat, want int) error {
	for i := range splats {
		if got := len(splats[i].SH); got != want {
			return fmt.Errorf("splat %d has %d coefficients, want %d: %w", i, got, want, ErrSHCoefficients)
		}
	}
	return nil
}
