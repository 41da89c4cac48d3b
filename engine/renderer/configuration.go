package renderer

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/splat-go/engine/sorting"
	"github.com/cogentcore/webgpu/wgpu"
)

// DepthSorting selects how splats are ordered before they are composited.
type DepthSorting int

const (
	// DepthSortingNone draws every splat in scene order without culling.
	DepthSortingNone DepthSorting = iota
	// DepthSortingCPU culls and sorts on the CPU and uploads the visible entries each frame.
	DepthSortingCPU
	// DepthSortingGPU sorts every splat on the GPU with the radix kernels. Culled splats sort last
	// and are discarded by the vertex stage.
	DepthSortingGPU
	// DepthSortingGPUIndirectDraw sorts like DepthSortingGPU and lets the GPU write the instance
	// count of an indirect draw, so only visible splats are drawn.
	DepthSortingGPUIndirectDraw
)

func (d DepthSorting) String() string {
	switch d {
	case DepthSortingNone:
		return "none"
	case DepthSortingCPU:
		return "cpu"
	case DepthSortingGPU:
		return "gpu"
	case DepthSortingGPUIndirectDraw:
		return "gpu-indirect"
	default:
		return fmt.Sprintf("DepthSorting(%d)", int(d))
	}
}

// ParseDepthSorting parses the String form of a DepthSorting.
//
// Parameters:
//   - s: one of "none", "cpu", "gpu" or "gpu-indirect"
//
// Returns:
//   - DepthSorting: the parsed strategy
//   - error: a *ConfigurationError for unknown names
func ParseDepthSorting(s string) (DepthSorting, error) {
	for d := DepthSortingNone; d <= DepthSortingGPUIndirectDraw; d++ {
		if d.String() == s {
			return d, nil
		}
	}
	return 0, &ConfigurationError{Field: "DepthSorting", Reason: fmt.Sprintf("unknown strategy %q", s)}
}

// Configuration describes the output surface, the sort strategy and the rendering constants of a
// Renderer. It is validated once by NewRenderer and fixed for the renderer's lifetime.
type Configuration struct {
	SurfaceFormat wgpu.TextureFormat
	SurfaceWidth  uint32
	SurfaceHeight uint32
	PresentMode   PresentMode

	DepthSorting DepthSorting

	// UseCovarianceForScale builds the splat footprint from the full rotated covariance instead
	// of an isotropic approximation from the largest scale axis.
	UseCovarianceForScale bool
	// UseUnalignedRectangles fits each quad to the projected ellipse axes instead of its
	// screen-aligned bounding box.
	UseUnalignedRectangles bool
	// SphericalHarmonicsOrder must match the SH order of every rendered scene.
	SphericalHarmonicsOrder int

	// MaxSplatCount sizes every GPU buffer. Frames with more splats fail with ErrCapacityExceeded.
	MaxSplatCount int
	// RadixBitsPerDigit is the number of key bits sorted per GPU radix pass.
	RadixBitsPerDigit int

	// FrustumCullingTolerance scales the clip-space extent a splat center may lie in.
	FrustumCullingTolerance float32
	EllipseMargin           float32
	SplatScale              float32

	NearPlane    float32
	FarPlane     float32
	FieldOfViewY float32
}

// DefaultConfiguration returns the configuration NewConfiguration starts from.
//
// Returns:
//   - Configuration: an 800x600 sRGB surface with VSync, GPU sorting, SH order 2 and room for 1<<20 splats
func DefaultConfiguration() Configuration {
	return Configuration{
		SurfaceFormat:           wgpu.TextureFormatBGRA8UnormSrgb,
		SurfaceWidth:            800,
		SurfaceHeight:           600,
		PresentMode:             PresentModeVSync,
		DepthSorting:            DepthSortingGPU,
		SphericalHarmonicsOrder: 2,
		MaxSplatCount:           1 << 20,
		RadixBitsPerDigit:       8,
		FrustumCullingTolerance: 1.2,
		EllipseMargin:           2.0,
		SplatScale:              1.0,
		NearPlane:               1.0,
		FarPlane:                1000.0,
		FieldOfViewY:            math.Pi / 2,
	}
}

// NewConfiguration applies options to DefaultConfiguration and validates the result.
//
// Parameters:
//   - options: functional options overriding the defaults
//
// Returns:
//   - Configuration: the configuration
//   - error: a *ConfigurationError naming the first invalid field
func NewConfiguration(options ...ConfigurationOption) (Configuration, error) {
	c := DefaultConfiguration()
	for _, opt := range options {
		opt(&c)
	}
	if err := c.Validate(); err != nil {
		return Configuration{}, err
	}
	return c, nil
}

// Validate checks every field.
//
// Returns:
//   - error: a *ConfigurationError wrapping ErrConfiguration, nil when valid
func (c Configuration) Validate() error {
	invalid := func(field, format string, args ...any) error {
		return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
	}

	switch {
	case c.SurfaceWidth == 0 || c.SurfaceHeight == 0:
		return invalid("SurfaceSize", "%dx%d must be positive", c.SurfaceWidth, c.SurfaceHeight)
	case c.DepthSorting < DepthSortingNone || c.DepthSorting > DepthSortingGPUIndirectDraw:
		return invalid("DepthSorting", "unknown strategy %d", int(c.DepthSorting))
	case c.SphericalHarmonicsOrder < 0 || c.SphericalHarmonicsOrder > 3:
		return invalid("SphericalHarmonicsOrder", "%d outside [0, 3]", c.SphericalHarmonicsOrder)
	case c.MaxSplatCount <= 0:
		return invalid("MaxSplatCount", "%d must be positive", c.MaxSplatCount)
	case c.RadixBitsPerDigit <= 0:
		return invalid("RadixBitsPerDigit", "%d gives no digit places", c.RadixBitsPerDigit)
	case c.RadixBitsPerDigit > sorting.MaxRadixBitsPerDigit:
		return invalid("RadixBitsPerDigit", "%d exceeds %d", c.RadixBitsPerDigit, sorting.MaxRadixBitsPerDigit)
	case !(c.FrustumCullingTolerance > 1):
		return invalid("FrustumCullingTolerance", "%g must be greater than 1", c.FrustumCullingTolerance)
	case !(c.EllipseMargin > 0):
		return invalid("EllipseMargin", "%g must be positive", c.EllipseMargin)
	case !(c.SplatScale > 0):
		return invalid("SplatScale", "%g must be positive", c.SplatScale)
	case !(c.NearPlane > 0):
		return invalid("NearPlane", "%g must be positive", c.NearPlane)
	case !(c.NearPlane < c.FarPlane):
		return invalid("FarPlane", "%g must be greater than near plane %g", c.FarPlane, c.NearPlane)
	case !(c.FieldOfViewY > 0 && c.FieldOfViewY < math.Pi):
		return invalid("FieldOfViewY", "%g outside (0, pi)", c.FieldOfViewY)
	}
	if _, err := sorting.NewRadixLayout(c.RadixBitsPerDigit, c.MaxSplatCount); err != nil {
		return invalid("MaxSplatCount", "%v", err)
	}
	return nil
}

// RadixLayout returns the GPU sort layout derived from the digit width and the capacity.
// It must only be called on a validated configuration.
func (c Configuration) RadixLayout() sorting.RadixLayout {
	l, err := sorting.NewRadixLayout(c.RadixBitsPerDigit, c.MaxSplatCount)
	if err != nil {
		panic(fmt.Sprintf("renderer: RadixLayout on invalid configuration: %v", err))
	}
	return l
}
