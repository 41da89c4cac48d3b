package scene

import (
	"math"
	"math/rand/v2"

	"github.com/go-gl/mathgl/mgl32"
)

// shC0 is the zeroth spherical harmonics basis constant, 1/(2*sqrt(pi)).
const shC0 = 0.28209479177387814

// GenerateField creates a deterministic cloud of splats inside a ball. The same seed always yields the same splats.
//
// Parameters:
//   - seed: the PCG seed
//   - count: the number of splats
//   - shOrder: the spherical harmonics order of the coefficients to generate
//   - radius: the radius of the ball around the origin
//
// Returns:
//   - []Splat: the generated splats
func GenerateField(seed uint64, count, shOrder int, radius float32) []Splat {
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	shOrder = max(0, min(shOrder, MaxSHOrder))
	shFloats := SHFloatsPerSplat(shOrder)

	splats := make([]Splat, count)
	for i := range splats {
		// cube root keeps the density uniform in the ball
		dir := randomUnit(rng)
		r := radius * float32(math.Cbrt(rng.Float64()))
		base := float32(0.01 + 0.03*rng.Float64())

		sh := make([]float32, shFloats)
		// DC term maps to a color in [0.1, 0.9] after the +0.5 offset
		for c := range 3 {
			sh[c] = float32((rng.Float64()*0.8 - 0.4) / shC0)
		}
		for k := 3; k < shFloats; k++ {
			sh[k] = float32(rng.NormFloat64() * 0.05)
		}

		splats[i] = Splat{
			Position: dir.Mul(r),
			Opacity:  float32(0.35 + 0.65*rng.Float64()),
			Rotation: mgl32.QuatRotate(float32(rng.Float64()*2*math.Pi), randomUnit(rng)),
			Scale: mgl32.Vec3{
				base * float32(0.5+rng.Float64()),
				base * float32(0.5+rng.Float64()),
				base * float32(0.5+rng.Float64()),
			}.Mul(radius),
			SH: sh,
		}
	}
	return splats
}

func randomUnit(rng *rand.Rand) mgl32.Vec3 {
	for {
		v := mgl32.Vec3{
			float32(rng.NormFloat64()),
			float32(rng.NormFloat64()),
			float32(rng.NormFloat64()),
		}
		if l := v.Len(); l > 1e-6 {
			return v.Mul(1 / l)
		}
	}
}
