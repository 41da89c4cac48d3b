package shader

import (
	"fmt"
	"strconv"
)

// Defines maps constant names to values injected by //@splat:define.
// Supported value types are bool, uint32, int and float32, emitted as bool, u32, i32 and f32 constants.
type Defines map[string]any

// declaration renders the WGSL const declaration for name.
func (d Defines) declaration(name string) (string, error) {
	v, ok := d[name]
	if !ok {
		return "", fmt.Errorf("define %q has no value", name)
	}
	switch val := v.(type) {
	case bool:
		return fmt.Sprintf("const %s: bool = %t;", name, val), nil
	case uint32:
		return fmt.Sprintf("const %s: u32 = %du;", name, val), nil
	case int:
		return fmt.Sprintf("const %s: i32 = %d;", name, val), nil
	case float32:
		return fmt.Sprintf("const %s: f32 = %s;", name, strconv.FormatFloat(float64(val), 'g', -1, 32)), nil
	default:
		return "", fmt.Errorf("define %q has unsupported type %T", name, v)
	}
}
