package shader

import (
	"errors"
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"
)

// ErrShaderSource is returned when a shader source cannot be pre-processed or reflected.
var ErrShaderSource = errors.New("invalid shader source")

// ShaderType represents the pipeline stage a shader is compiled for.
type ShaderType int

const (
	// ShaderTypeCompute represents a compute shader stage.
	ShaderTypeCompute ShaderType = iota
	// ShaderTypeVertex represents a vertex shader stage.
	ShaderTypeVertex
	// ShaderTypeFragment represents a fragment shader stage.
	ShaderTypeFragment
)

func (t ShaderType) String() string {
	switch t {
	case ShaderTypeCompute:
		return "compute"
	case ShaderTypeVertex:
		return "vertex"
	case ShaderTypeFragment:
		return "fragment"
	default:
		return fmt.Sprintf("ShaderType(%d)", int(t))
	}
}

// visibility returns the stage flag for bind group layout entries declared by this stage.
func (t ShaderType) visibility() wgpu.ShaderStage {
	switch t {
	case ShaderTypeVertex:
		return wgpu.ShaderStageVertex
	case ShaderTypeFragment:
		return wgpu.ShaderStageFragment
	case ShaderTypeCompute:
		return wgpu.ShaderStageCompute
	default:
		return wgpu.ShaderStageNone
	}
}

type shader struct {
	key                        string
	source                     string
	shaderType                 ShaderType
	bindGroupLayoutDescriptors map[int]wgpu.BindGroupLayoutDescriptor
	bindingVarNames            map[int]map[int]string
	workGroupSize              [3]uint32
	entryPoint                 string
	module                     *wgpu.ShaderModuleDescriptor

	defines Defines
	pp      PreProcessor
}

// Shader is a pre-processed WGSL stage with the reflection data needed to build its pipeline.
type Shader interface {
	// Key returns the shader's identifier, used as the module label.
	Key() string

	// Source returns the expanded WGSL source.
	Source() string

	// ShaderType returns the stage this shader was created for.
	ShaderType() ShaderType

	// EntryPoint returns the first entry point of the shader's stage.
	EntryPoint() string

	// WorkgroupSize returns @workgroup_size for compute shaders and [1, 1, 1] otherwise.
	WorkgroupSize() [3]uint32

	// BindGroupLayoutDescriptor returns the reflected layout of one bind group.
	//
	// Parameters:
	//   - group: the bind group index
	//
	// Returns:
	//   - wgpu.BindGroupLayoutDescriptor: the layout, empty if the group is not used
	BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor

	// BindGroupLayoutDescriptors returns every reflected bind group layout keyed by group index.
	BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor

	// BindGroupVarName returns the variable name bound at group/binding, or "".
	BindGroupVarName(group, binding int) string

	// BindGroupFromVarName finds the binding index of a variable within a group.
	//
	// Parameters:
	//   - group: the bind group index
	//   - varName: the WGSL variable name
	//
	// Returns:
	//   - int: the binding index, -1 if absent
	//   - bool: whether the variable was found
	BindGroupFromVarName(group int, varName string) (int, bool)

	// Module returns the shader module descriptor handed to the device.
	Module() *wgpu.ShaderModuleDescriptor

	// Declarations returns the //@splat:group directives of the source.
	Declarations() []Annotation
}

var _ Shader = &shader{}

// NewShader pre-processes and reflects a WGSL source. No GPU work happens here.
//
// Parameters:
//   - key: identifier and module label
//   - shaderType: the stage to reflect
//   - source: WGSL source, optionally with //@splat: directives
//   - options: functional options, e.g. WithDefines
//
// Returns:
//   - Shader: the reflected shader
//   - error: wraps ErrShaderSource when the source is malformed or lacks an entry point for the stage
func NewShader(key string, shaderType ShaderType, source string, options ...ShaderOption) (Shader, error) {
	s := &shader{
		key:           key,
		shaderType:    shaderType,
		workGroupSize: [3]uint32{1, 1, 1},
	}
	for _, option := range options {
		option(s)
	}
	s.pp = NewPreProcessor(s.defines)
	if err := s.parseSource(source); err != nil {
		return nil, fmt.Errorf("shader %s: %w: %w", key, ErrShaderSource, err)
	}
	return s, nil
}

func (s *shader) Key() string {
	return s.key
}

func (s *shader) Source() string {
	return s.source
}

func (s *shader) ShaderType() ShaderType {
	return s.shaderType
}

func (s *shader) EntryPoint() string {
	return s.entryPoint
}

func (s *shader) WorkgroupSize() [3]uint32 {
	return s.workGroupSize
}

func (s *shader) BindGroupLayoutDescriptor(group int) wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors[group]
}

func (s *shader) BindGroupLayoutDescriptors() map[int]wgpu.BindGroupLayoutDescriptor {
	return s.bindGroupLayoutDescriptors
}

func (s *shader) BindGroupVarName(group, binding int) string {
	return s.bindingVarNames[group][binding]
}

func (s *shader) BindGroupFromVarName(group int, varName string) (int, bool) {
	for binding, name := range s.bindingVarNames[group] {
		if name == varName {
			return binding, true
		}
	}
	return -1, false
}

func (s *shader) Module() *wgpu.ShaderModuleDescriptor {
	return s.module
}

func (s *shader) Declarations() []Annotation {
	return s.pp.Declarations()
}

func (s *shader) parseSource(source string) error {
	var err error
	s.source, err = s.pp.Process(source)
	if err != nil {
		return err
	}
	s.entryPoint = parseEntryPoint(s.source, s.shaderType)
	if s.entryPoint == "" {
		return fmt.Errorf("no @%s entry point", s.shaderType)
	}
	if s.shaderType == ShaderTypeCompute {
		if s.workGroupSize, err = parseWorkgroupSize(s.source); err != nil {
			return err
		}
	}
	s.bindGroupLayoutDescriptors, s.bindingVarNames, err = parseBindGroupLayouts(s.source, s.shaderType.visibility())
	if err != nil {
		return err
	}
	s.module = &wgpu.ShaderModuleDescriptor{
		Label: s.key,
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{
			Code: s.source,
		},
	}
	return nil
}
