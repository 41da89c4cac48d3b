package shader

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

// annotationPrefix marks a pre-processor directive inside a WGSL line comment.
const annotationPrefix = "//@splat:"

// AnnotationType identifies a pre-processor directive.
type AnnotationType string

const (
	// AnnotationTypeInclude injects a shared struct definition.
	// Syntax: //@splat:include <struct>
	AnnotationTypeInclude AnnotationType = "include"

	// AnnotationTypeBindingGroup declares a bound resource.
	// Syntax: //@splat:group <group> <binding> <address space> <var name> <resource>
	AnnotationTypeBindingGroup AnnotationType = "group"

	// AnnotationTypeDefine injects a module-scope constant from the pipeline defines.
	// Syntax: //@splat:define <NAME>
	AnnotationTypeDefine AnnotationType = "define"
)

// Annotation is one parsed directive.
type Annotation struct {
	Type AnnotationType
	Args []AnnotationArg
	// Line is 1-based.
	Line int

	// Group and Binding are set for AnnotationTypeBindingGroup only.
	Group   *int
	Binding *int
}

// AnnotationArg is a single directive argument.
type AnnotationArg string

// Struct arguments accepted by include and as group resources.
const (
	AnnotationArgUniforms AnnotationArg = "uniforms"
	AnnotationArgSplat    AnnotationArg = "splat"
	AnnotationArgEntry    AnnotationArg = "entry"
	AnnotationArgSortPass AnnotationArg = "sort_pass"
)

// Scalar resources accepted as group resources only.
const (
	AnnotationArgF32       AnnotationArg = "f32"
	AnnotationArgU32       AnnotationArg = "u32"
	AnnotationArgAtomicU32 AnnotationArg = "atomic_u32"
)

// Address spaces.
const (
	AnnotationArgStorageTypeUniform   AnnotationArg = "storage_uniform"
	AnnotationArgStorageTypeRead      AnnotationArg = "storage_read"
	AnnotationArgStorageTypeReadWrite AnnotationArg = "storage_read_write"
)

var validStructTypes = []AnnotationArg{
	AnnotationArgUniforms,
	AnnotationArgSplat,
	AnnotationArgEntry,
	AnnotationArgSortPass,
}

var validScalarTypes = []AnnotationArg{
	AnnotationArgF32,
	AnnotationArgU32,
	AnnotationArgAtomicU32,
}

var validAddressSpaces = []AnnotationArg{
	AnnotationArgStorageTypeUniform,
	AnnotationArgStorageTypeRead,
	AnnotationArgStorageTypeReadWrite,
}

// Resource returns the element resource of a group annotation and whether it is wrapped in array<...>.
//
// Returns:
//   - AnnotationArg: the struct or scalar resource
//   - bool: true for runtime-sized arrays
func (a Annotation) Resource() (AnnotationArg, bool) {
	if a.Type != AnnotationTypeBindingGroup || len(a.Args) < 3 {
		return "", false
	}
	return splitArrayArg(string(a.Args[2]))
}

func splitArrayArg(arg string) (AnnotationArg, bool) {
	if inner, ok := strings.CutPrefix(arg, "array<"); ok {
		return AnnotationArg(strings.TrimSuffix(inner, ">")), true
	}
	return AnnotationArg(arg), false
}

// parseAnnotation parses one source line. Lines without the prefix yield (nil, nil).
func parseAnnotation(line string, lineNum int) (*Annotation, error) {
	trimmed := strings.TrimSpace(line)
	after, ok := strings.CutPrefix(trimmed, annotationPrefix)
	if !ok {
		return nil, nil
	}

	args := strings.Fields(after)
	if len(args) == 0 {
		return nil, fmt.Errorf("line %d: empty @splat annotation", lineNum)
	}

	switch AnnotationType(args[0]) {
	case AnnotationTypeInclude:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @splat include annotation requires exactly one argument", lineNum)
		}
		if !slices.Contains(validStructTypes, AnnotationArg(args[1])) {
			return nil, fmt.Errorf("line %d: unknown struct type %q in @splat include annotation", lineNum, args[1])
		}
		return &Annotation{
			Type: AnnotationTypeInclude,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	case AnnotationTypeBindingGroup:
		if len(args) != 6 {
			return nil, fmt.Errorf("line %d: @splat group annotation requires five arguments (group, binding, address space, name, resource)", lineNum)
		}
		group, err := strconv.Atoi(args[1])
		if err != nil || group < 0 {
			return nil, fmt.Errorf("line %d: invalid group number %q in @splat group annotation", lineNum, args[1])
		}
		binding, err := strconv.Atoi(args[2])
		if err != nil || binding < 0 {
			return nil, fmt.Errorf("line %d: invalid binding number %q in @splat group annotation", lineNum, args[2])
		}
		space := AnnotationArg(args[3])
		if !slices.Contains(validAddressSpaces, space) {
			return nil, fmt.Errorf("line %d: unknown address space %q in @splat group annotation", lineNum, args[3])
		}
		elem, isArray := splitArrayArg(args[5])
		if !slices.Contains(validStructTypes, elem) && !slices.Contains(validScalarTypes, elem) {
			return nil, fmt.Errorf("line %d: unknown resource type %q in @splat group annotation", lineNum, args[5])
		}
		if isArray && space == AnnotationArgStorageTypeUniform {
			return nil, fmt.Errorf("line %d: runtime-sized array %q cannot live in the uniform address space", lineNum, args[5])
		}
		if elem == AnnotationArgAtomicU32 && space != AnnotationArgStorageTypeReadWrite {
			return nil, fmt.Errorf("line %d: atomics require storage_read_write", lineNum)
		}
		return &Annotation{
			Type:    AnnotationTypeBindingGroup,
			Args:    []AnnotationArg{space, AnnotationArg(args[4]), AnnotationArg(args[5])},
			Line:    lineNum,
			Group:   &group,
			Binding: &binding,
		}, nil
	case AnnotationTypeDefine:
		if len(args) != 2 {
			return nil, fmt.Errorf("line %d: @splat define annotation requires exactly one argument", lineNum)
		}
		return &Annotation{
			Type: AnnotationTypeDefine,
			Args: []AnnotationArg{AnnotationArg(args[1])},
			Line: lineNum,
		}, nil
	default:
		return nil, fmt.Errorf("line %d: unknown @splat annotation type %q", lineNum, args[0])
	}
}
