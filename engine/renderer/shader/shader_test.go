package shader

import (
	"errors"
	"strings"
	"testing"
)

const testComputeSource = `
//@splat:define WORKGROUP_INVOCATIONS
//@splat:group 0 0 storage_uniform sort_pass sort_pass
//@splat:group 0 1 storage_read_write entries array<entry>

@compute @workgroup_size(WORKGROUP_INVOCATIONS)
fn reverse_keys(@builtin(global_invocation_id) id: vec3<u32>) {
    if (id.x >= sort_pass.splat_count) {
        return;
    }
    entries[id.x].key = ~entries[id.x].key;
}
`

const testRenderSource = `
//@splat:group 0 0 storage_uniform uniforms uniforms

@vertex
fn vs_main(@builtin(vertex_index) vi: u32) -> @builtin(position) vec4<f32> {
    let corner = vec2<f32>(f32(vi & 1u), f32(vi >> 1u)) * 2.0 - 1.0;
    return uniforms.view_projection_matrix * vec4<f32>(corner, 0.0, 1.0);
}

@fragment
fn fs_main() -> @location(0) vec4<f32> {
    return vec4<f32>(uniforms.splat_scale, 0.0, 0.0, 1.0);
}
`

func TestNewShaderCompute(t *testing.T) {
	s, err := NewShader("reverse", ShaderTypeCompute, testComputeSource,
		WithDefines(Defines{"WORKGROUP_INVOCATIONS": uint32(128)}))
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}

	if s.Key() != "reverse" || s.ShaderType() != ShaderTypeCompute {
		t.Errorf("Key/ShaderType = %q/%v", s.Key(), s.ShaderType())
	}
	if got := s.EntryPoint(); got != "reverse_keys" {
		t.Errorf("EntryPoint() = %q, want reverse_keys", got)
	}
	if got := s.WorkgroupSize(); got != [3]uint32{128, 1, 1} {
		t.Errorf("WorkgroupSize() = %v, want [128 1 1]", got)
	}
	if !strings.Contains(s.Source(), "const WORKGROUP_INVOCATIONS: u32 = 128u;") {
		t.Error("Source() is missing the expanded define")
	}

	if got := len(s.BindGroupLayoutDescriptor(0).Entries); got != 2 {
		t.Errorf("group 0 entries = %d, want 2", got)
	}
	if got := len(s.BindGroupLayoutDescriptor(3).Entries); got != 0 {
		t.Errorf("unused group 3 entries = %d, want 0", got)
	}
	if got := s.BindGroupVarName(0, 1); got != "entries" {
		t.Errorf("BindGroupVarName(0, 1) = %q, want entries", got)
	}
	if b, ok := s.BindGroupFromVarName(0, "sort_pass"); !ok || b != 0 {
		t.Errorf("BindGroupFromVarName(0, sort_pass) = (%d, %v), want (0, true)", b, ok)
	}
	if b, ok := s.BindGroupFromVarName(0, "missing"); ok || b != -1 {
		t.Errorf("BindGroupFromVarName(0, missing) = (%d, %v), want (-1, false)", b, ok)
	}
	if got := len(s.Declarations()); got != 2 {
		t.Errorf("len(Declarations()) = %d, want 2", got)
	}

	m := s.Module()
	if m == nil || m.Label != "reverse" || m.WGSLDescriptor == nil || m.WGSLDescriptor.Code != s.Source() {
		t.Errorf("Module() = %+v, want the labelled expanded source", m)
	}
}

func TestNewShaderRenderStages(t *testing.T) {
	vs, err := NewShader("splat_vs", ShaderTypeVertex, testRenderSource)
	if err != nil {
		t.Fatalf("NewShader(vertex): %v", err)
	}
	fs, err := NewShader("splat_fs", ShaderTypeFragment, testRenderSource)
	if err != nil {
		t.Fatalf("NewShader(fragment): %v", err)
	}
	if vs.EntryPoint() != "vs_main" || fs.EntryPoint() != "fs_main" {
		t.Errorf("entry points = %q/%q", vs.EntryPoint(), fs.EntryPoint())
	}
	if vs.WorkgroupSize() != [3]uint32{1, 1, 1} {
		t.Errorf("vertex WorkgroupSize() = %v", vs.WorkgroupSize())
	}
	if got := vs.BindGroupLayoutDescriptor(0).Entries[0].Visibility; got != ShaderTypeVertex.visibility() {
		t.Errorf("vertex visibility = %v", got)
	}
}

func TestNewShaderErrors(t *testing.T) {
	tests := []struct {
		name       string
		shaderType ShaderType
		src        string
		defines    Defines
		wantErr    string
	}{
		{name: "no entry point", shaderType: ShaderTypeCompute, src: testRenderSource, wantErr: "no @compute entry point"},
		{name: "missing define", shaderType: ShaderTypeCompute, src: testComputeSource, wantErr: `define "WORKGROUP_INVOCATIONS" has no value`},
		{name: "bad directive", shaderType: ShaderTypeVertex, src: "//@splat:include material\n" + testRenderSource, wantErr: "unknown struct type"},
		{name: "zero workgroup", shaderType: ShaderTypeCompute, src: testComputeSource, defines: Defines{"WORKGROUP_INVOCATIONS": uint32(0)}, wantErr: "zero dimension"},
		{name: "texture binding", shaderType: ShaderTypeFragment, src: "@group(0) @binding(0) var t: texture_2d<f32>;\n" + testRenderSource, wantErr: "is not a buffer"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewShader("bad", tt.shaderType, tt.src, WithDefines(tt.defines))
			if err == nil {
				t.Fatalf("NewShader() = %v, want error", s)
			}
			if !errors.Is(err, ErrShaderSource) {
				t.Errorf("NewShader() error = %v, want ErrShaderSource", err)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("NewShader() error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestShaderTypeString(t *testing.T) {
	tests := []struct {
		in   ShaderType
		want string
	}{
		{ShaderTypeCompute, "compute"},
		{ShaderTypeVertex, "vertex"},
		{ShaderTypeFragment, "fragment"},
		{ShaderType(7), "ShaderType(7)"},
	}
	for _, tt := range tests {
		if got := tt.in.String(); got != tt.want {
			t.Errorf("ShaderType(%d).String() = %q, want %q", int(tt.in), got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	s, err := NewShader("splat_vs", ShaderTypeVertex, testRenderSource)
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if err := Validate(s); err != nil {
		skipUnsupported(t, err)
		t.Fatalf("Validate() unexpected error: %v", err)
	}

	broken, err := NewShader("broken", ShaderTypeVertex, "@vertex fn vs_main() -> @builtin(position) vec4<f32> { return undefined_name; }")
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	if err := Validate(broken); err == nil {
		t.Error("Validate() error = nil for an undefined identifier")
	} else if !strings.Contains(err.Error(), "shader broken") {
		t.Errorf("Validate() error = %v, want the shader key", err)
	}
}

// skipUnsupported skips when naga reports a feature it has not implemented yet.
func skipUnsupported(t *testing.T, err error) {
	t.Helper()
	msg := err.Error()
	for _, s := range []string{"not yet implemented", "not supported"} {
		if strings.Contains(msg, s) {
			t.Skipf("Skipping: naga limitation: %v", err)
		}
	}
}
