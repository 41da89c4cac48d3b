package shader

// ShaderOption is a functional option for configuring a Shader.
type ShaderOption func(*shader)

// WithDefines sets the values injected by //@splat:define directives.
//
// Parameters:
//   - defines: constant values keyed by name
//
// Returns:
//   - ShaderOption: a function that sets the defines
func WithDefines(defines Defines) ShaderOption {
	return func(s *shader) {
		s.defines = defines
	}
}
