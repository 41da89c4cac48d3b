package scene

// SceneBuilderOption is a functional option for configuring a Scene.
// Use the With* functions to create options.
type SceneBuilderOption func(s *scene)

// WithSHOrder sets the spherical harmonics order of the scene. Values are clamped to [0, MaxSHOrder].
//
// Parameters:
//   - order: the spherical harmonics order
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSHOrder(order int) SceneBuilderOption {
	return func(s *scene) {
		s.shOrder = order
	}
}

// WithSplats sets the initial splats. Splats with a mismatched coefficient count are dropped.
//
// Parameters:
//   - splats: the initial splats
//
// Returns:
//   - SceneBuilderOption: option function to apply
func WithSplats(splats []Splat) SceneBuilderOption {
	return func(s *scene) {
		s.pending = append(s.pending, splats...)
	}
}
