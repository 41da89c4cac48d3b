package shader

import (
	"fmt"
	"strings"

	"github.com/Carmen-Shannon/splat-go/engine/camera"
	"github.com/Carmen-Shannon/splat-go/engine/scene"
	"github.com/Carmen-Shannon/splat-go/engine/sorting"
)

// registryEntry pairs a shared WGSL source with the type name it declares.
type registryEntry struct {
	Source string
	Type   string
}

type preProcessor struct {
	structRegistry       map[AnnotationArg]registryEntry
	scalarRegistry       map[AnnotationArg]string
	addressSpaceRegistry map[AnnotationArg]string
	defines              Defines

	declarations []Annotation
}

// PreProcessor expands //@splat: directives into plain WGSL.
type PreProcessor interface {
	// Process expands every directive in source. Each struct is included at most once,
	// and a group resource pulls in its struct automatically when it has not been included yet.
	//
	// Parameters:
	//   - source: WGSL source with directives
	//
	// Returns:
	//   - string: the expanded WGSL
	//   - error: a line-numbered error for malformed or unknown directives and missing defines
	Process(source string) (string, error)

	// Declarations returns the group annotations seen by the last Process call.
	//
	// Returns:
	//   - []Annotation: the resource declarations in source order
	Declarations() []Annotation
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a pre-processor that resolves define directives against defines.
//
// Parameters:
//   - defines: constant values for //@splat:define, may be nil
//
// Returns:
//   - PreProcessor: the pre-processor
func NewPreProcessor(defines Defines) PreProcessor {
	return &preProcessor{
		structRegistry: map[AnnotationArg]registryEntry{
			AnnotationArgUniforms: {Source: camera.GPUUniformsSource, Type: "Uniforms"},
			AnnotationArgSplat:    {Source: scene.GPUSplatSource, Type: "Splat"},
			AnnotationArgSortPass: {Source: scene.GPUSortPassSource, Type: "SortPass"},
			AnnotationArgEntry:    {Source: sorting.GPUEntrySource, Type: "Entry"},
		},
		scalarRegistry: map[AnnotationArg]string{
			AnnotationArgF32:       "f32",
			AnnotationArgU32:       "u32",
			AnnotationArgAtomicU32: "atomic<u32>",
		},
		addressSpaceRegistry: map[AnnotationArg]string{
			AnnotationArgStorageTypeUniform:   "var<uniform>",
			AnnotationArgStorageTypeRead:      "var<storage, read>",
			AnnotationArgStorageTypeReadWrite: "var<storage, read_write>",
		},
		defines: defines,
	}
}

func (p *preProcessor) Process(source string) (string, error) {
	p.declarations = nil
	included := make(map[AnnotationArg]bool)

	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	include := func(arg AnnotationArg) {
		if included[arg] {
			return
		}
		included[arg] = true
		out = append(out, strings.TrimRight(p.structRegistry[arg].Source, "\n"))
	}

	for i, line := range lines {
		a, err := parseAnnotation(line, i+1)
		if err != nil {
			return "", err
		}
		if a == nil {
			out = append(out, line)
			continue
		}

		switch a.Type {
		case AnnotationTypeInclude:
			include(a.Args[0])
		case AnnotationTypeBindingGroup:
			elem, isArray := a.Resource()
			wgslType, ok := p.scalarRegistry[elem]
			if !ok {
				include(elem)
				wgslType = p.structRegistry[elem].Type
			}
			if isArray {
				wgslType = fmt.Sprintf("array<%s>", wgslType)
			}
			addrSpace := p.addressSpaceRegistry[a.Args[0]]
			out = append(out, fmt.Sprintf("@group(%d) @binding(%d) %s %s: %s;", *a.Group, *a.Binding, addrSpace, a.Args[1], wgslType))
			p.declarations = append(p.declarations, *a)
		case AnnotationTypeDefine:
			decl, err := p.defines.declaration(string(a.Args[0]))
			if err != nil {
				return "", fmt.Errorf("line %d: %w", i+1, err)
			}
			out = append(out, decl)
		}
	}
	return strings.Join(out, "\n"), nil
}

func (p *preProcessor) Declarations() []Annotation {
	return p.declarations
}
