package renderer

import "github.com/cogentcore/webgpu/wgpu"

// ConfigurationOption is a functional option applied by NewConfiguration.
type ConfigurationOption func(*Configuration)

// WithSurface sets the output format and size.
//
// Parameters:
//   - format: the texture format of the render target
//   - width: the target width in pixels
//   - height: the target height in pixels
//
// Returns:
//   - ConfigurationOption: a function that sets the surface fields
func WithSurface(format wgpu.TextureFormat, width, height uint32) ConfigurationOption {
	return func(c *Configuration) {
		c.SurfaceFormat = format
		c.SurfaceWidth = width
		c.SurfaceHeight = height
	}
}

// WithPresentMode sets how frames are delivered to a window surface.
func WithPresentMode(mode PresentMode) ConfigurationOption {
	return func(c *Configuration) {
		c.PresentMode = mode
	}
}

// WithDepthSorting selects the sort strategy.
//
// Parameters:
//   - mode: the strategy used by every frame
//
// Returns:
//   - ConfigurationOption: a function that sets the strategy
func WithDepthSorting(mode DepthSorting) ConfigurationOption {
	return func(c *Configuration) {
		c.DepthSorting = mode
	}
}

// WithCovarianceForScale toggles the full covariance footprint.
func WithCovarianceForScale(enabled bool) ConfigurationOption {
	return func(c *Configuration) {
		c.UseCovarianceForScale = enabled
	}
}

// WithUnalignedRectangles toggles quads aligned to the projected ellipse axes.
func WithUnalignedRectangles(enabled bool) ConfigurationOption {
	return func(c *Configuration) {
		c.UseUnalignedRectangles = enabled
	}
}

// WithSphericalHarmonicsOrder sets the SH order scenes must be built with.
//
// Parameters:
//   - order: the SH order, in [0, 3]
//
// Returns:
//   - ConfigurationOption: a function that sets the SH order
func WithSphericalHarmonicsOrder(order int) ConfigurationOption {
	return func(c *Configuration) {
		c.SphericalHarmonicsOrder = order
	}
}

// WithMaxSplatCount sets the capacity every GPU buffer is sized for.
//
// Parameters:
//   - n: the largest scene a frame may render
//
// Returns:
//   - ConfigurationOption: a function that sets the capacity
func WithMaxSplatCount(n int) ConfigurationOption {
	return func(c *Configuration) {
		c.MaxSplatCount = n
	}
}

// WithRadixBitsPerDigit sets the digit width of the GPU radix sort.
func WithRadixBitsPerDigit(bits int) ConfigurationOption {
	return func(c *Configuration) {
		c.RadixBitsPerDigit = bits
	}
}

// WithFrustumCullingTolerance sets the clip-space tolerance of the cull test.
//
// Parameters:
//   - tolerance: a value greater than 1, where 1 is the exact frustum
//
// Returns:
//   - ConfigurationOption: a function that sets the tolerance
func WithFrustumCullingTolerance(tolerance float32) ConfigurationOption {
	return func(c *Configuration) {
		c.FrustumCullingTolerance = tolerance
	}
}

// WithEllipseMargin sets how many standard deviations a splat quad covers.
func WithEllipseMargin(margin float32) ConfigurationOption {
	return func(c *Configuration) {
		c.EllipseMargin = margin
	}
}

// WithSplatScale scales every splat.
func WithSplatScale(scale float32) ConfigurationOption {
	return func(c *Configuration) {
		c.SplatScale = scale
	}
}

// WithProjection sets the camera projection.
//
// Parameters:
//   - fovY: the vertical field of view in radians
//   - near: the near plane distance
//   - far: the far plane distance
//
// Returns:
//   - ConfigurationOption: a function that sets the projection fields
func WithProjection(fovY, near, far float32) ConfigurationOption {
	return func(c *Configuration) {
		c.FieldOfViewY = fovY
		c.NearPlane = near
		c.FarPlane = far
	}
}
