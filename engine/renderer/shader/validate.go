package shader

import (
	"fmt"

	"github.com/gogpu/naga"
)

// Validate compiles the expanded source with naga to catch WGSL errors on the CPU before
// the device sees the module. Some naga releases reject features wgpu accepts, such as
// atomics in storage arrays, so callers opt in.
//
// Parameters:
//   - s: the shader to check
//
// Returns:
//   - error: the naga diagnostic, wrapped with the shader key
func Validate(s Shader) error {
	if _, err := naga.Compile(s.Source()); err != nil {
		return fmt.Errorf("shader %s: %w", s.Key(), err)
	}
	return nil
}
