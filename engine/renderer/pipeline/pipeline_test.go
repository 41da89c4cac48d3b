package pipeline

import (
	"testing"

	"github.com/Carmen-Shannon/splat-go/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

func TestNewPipelineDefaults(t *testing.T) {
	p := NewPipeline("splat", PipelineTypeRender)

	if p.PipelineKey() != "splat" || p.Type() != PipelineTypeRender {
		t.Errorf("PipelineKey/Type = %q/%v", p.PipelineKey(), p.Type())
	}
	if got := p.Topology(); got != wgpu.PrimitiveTopologyTriangleStrip {
		t.Errorf("Topology() = %v, want triangle strip", got)
	}
	if !p.BlendEnabled() {
		t.Error("BlendEnabled() = false, want true")
	}
	if got := p.CullMode(); got != wgpu.CullModeNone {
		t.Errorf("CullMode() = %v, want none", got)
	}

	bs := p.BlendState()
	if bs == nil {
		t.Fatal("BlendState() = nil")
	}
	if bs.Color.SrcFactor != wgpu.BlendFactorOneMinusDstAlpha || bs.Color.DstFactor != wgpu.BlendFactorOne {
		t.Errorf("color blend = %+v, want under operator", bs.Color)
	}
	if bs.Alpha != bs.Color {
		t.Errorf("alpha blend = %+v, want same as color %+v", bs.Alpha, bs.Color)
	}

	// each pipeline gets its own copy of the default state
	bs.Color.DstFactor = wgpu.BlendFactorZero
	if UnderBlendState.Color.DstFactor != wgpu.BlendFactorOne {
		t.Error("mutating a pipeline's blend state changed UnderBlendState")
	}
}

func TestPipelineOptions(t *testing.T) {
	vs, err := shader.NewShader("vs", shader.ShaderTypeVertex, "@vertex fn vs_main() -> @builtin(position) vec4<f32> { return vec4<f32>(0.0); }")
	if err != nil {
		t.Fatalf("NewShader: %v", err)
	}
	over := &wgpu.BlendState{}
	p := NewPipeline("custom", PipelineTypeRender,
		WithVertexShader(vs),
		WithTopology(wgpu.PrimitiveTopologyTriangleList),
		WithBlendEnabled(false),
		WithBlendState(over),
		WithCullMode(wgpu.CullModeBack),
		WithFrontFace(wgpu.FrontFaceCW),
		WithWriteMask(wgpu.ColorWriteMaskRed),
	)

	if p.Shader(shader.ShaderTypeVertex) != vs {
		t.Error("Shader(vertex) is not the configured shader")
	}
	if p.Shader(shader.ShaderTypeFragment) != nil || p.Shader(shader.ShaderTypeCompute) != nil {
		t.Error("unset shaders are not nil")
	}
	if p.Topology() != wgpu.PrimitiveTopologyTriangleList {
		t.Errorf("Topology() = %v", p.Topology())
	}
	if p.BlendEnabled() || p.BlendState() != over {
		t.Errorf("BlendEnabled/BlendState = %v/%p", p.BlendEnabled(), p.BlendState())
	}
	if p.CullMode() != wgpu.CullModeBack || p.FrontFace() != wgpu.FrontFaceCW || p.WriteMask() != wgpu.ColorWriteMaskRed {
		t.Errorf("raster state = %v/%v/%v", p.CullMode(), p.FrontFace(), p.WriteMask())
	}
}

func TestPipelineHandles(t *testing.T) {
	render := NewPipeline("r", PipelineTypeRender)
	compute := NewPipeline("c", PipelineTypeCompute)

	if render.Pipeline().(*wgpu.RenderPipeline) != nil {
		t.Error("render Pipeline() before creation is not nil")
	}
	rp := &wgpu.RenderPipeline{}
	render.SetRenderPipeline(rp)
	if render.Pipeline().(*wgpu.RenderPipeline) != rp {
		t.Error("render Pipeline() is not the set pipeline")
	}

	cp := &wgpu.ComputePipeline{}
	compute.SetComputePipeline(cp)
	if compute.Pipeline().(*wgpu.ComputePipeline) != cp {
		t.Error("compute Pipeline() is not the set pipeline")
	}
	if NewPipeline("x", PipelineType(5)).Pipeline() != nil {
		t.Error("unknown pipeline type returned a pipeline")
	}
}

func TestBindGroupLayout(t *testing.T) {
	p := NewPipeline("c", PipelineTypeCompute)
	if p.BindGroupLayout(0) != nil {
		t.Error("BindGroupLayout(0) before creation is not nil")
	}

	// group 1 unused
	p.SetBindGroupLayouts([]*wgpu.BindGroupLayout{nil, nil})
	for _, g := range []int{-1, 0, 1, 2} {
		if p.BindGroupLayout(g) != nil {
			t.Errorf("BindGroupLayout(%d) != nil", g)
		}
	}

	// nothing was created, Release must not touch the GPU
	p.Release()
	if p.Pipeline().(*wgpu.ComputePipeline) != nil {
		t.Error("Pipeline() after Release is not nil")
	}
}
