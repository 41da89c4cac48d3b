package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/splat-go/common"
	"github.com/Carmen-Shannon/splat-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/splat-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/splat-go/engine/sorting"
	"github.com/cogentcore/webgpu/wgpu"
)

// SplatPipelineKey is the key and GPU label of the splat render pipeline.
const SplatPipelineKey = "splat"

// radixKernels lists the compute pipelines of a GPU sort in dispatch order.
var radixKernels = []sorting.Kernel{sorting.KernelHistogram, sorting.KernelPrefixSum, sorting.KernelScatter}

// shaderDefines derives the constants injected into every shader source. Each source only
// declares the names it uses, so one set serves all of them.
func shaderDefines(cfg Configuration, layout sorting.RadixLayout) shader.Defines {
	shCoefficients := (cfg.SphericalHarmonicsOrder + 1) * (cfg.SphericalHarmonicsOrder + 1)
	return shader.Defines{
		"SH_ORDER":                 uint32(cfg.SphericalHarmonicsOrder),
		"SH_COEFFICIENTS":          uint32(shCoefficients),
		"USE_COVARIANCE_FOR_SCALE": cfg.UseCovarianceForScale,
		"USE_UNALIGNED_RECTANGLES": cfg.UseUnalignedRectangles,
		"SORTED":                   cfg.DepthSorting != DepthSortingNone,
		"CULLED_KEY":               sorting.CulledKey,

		"RADIX_BITS_PER_DIGIT": uint32(layout.BitsPerDigit),
		"RADIX_BASE":           uint32(layout.Base),
		"RADIX_DIGIT_PLACES":   uint32(layout.DigitPlaces),

		"WORKGROUP_INVOCATIONS_A":  uint32(layout.WorkgroupInvocationsA),
		"ENTRIES_PER_INVOCATION_A": uint32(layout.EntriesPerInvocationA),
		"WORKGROUP_ENTRIES_A":      uint32(layout.WorkgroupEntriesA),
		"WORKGROUP_INVOCATIONS_C":  uint32(layout.WorkgroupInvocationsC),
		"ENTRIES_PER_INVOCATION_C": uint32(layout.EntriesPerInvocationC),
		"WORKGROUP_ENTRIES_C":      uint32(layout.WorkgroupEntriesC),
		"MAX_TILE_COUNT_C":         uint32(layout.MaxTileCountC),

		// word offsets into the sorting buffer
		"HISTOGRAM_OFFSET": uint32(layout.HistogramOffset() / 4),
		"INDIRECT_OFFSET":  uint32(layout.IndirectDrawOffset() / 4),
		"INDIRECT_DRAW":    cfg.DepthSorting == DepthSortingGPUIndirectDraw,

		"TILE_FLAG_AGGREGATE": sorting.TileFlagAggregate,
		"TILE_FLAG_INCLUSIVE": sorting.TileFlagInclusive,
		"TILE_COUNT_MASK":     sorting.TileCountMask,
	}
}

// pipelineSet holds the render pipeline and, for GPU sorting, the three radix kernels.
// Shaders are parsed when the set is created; GPU objects are created by the first build.
// A failed build is remembered and returned by every later build.
type pipelineSet struct {
	render  pipeline.Pipeline
	compute map[sorting.Kernel]pipeline.Pipeline

	validate bool
	built    bool
	err      error
	builds   int
}

// newPipelineSet parses every shader the strategy needs.
//
// Parameters:
//   - cfg: the validated configuration
//   - gpuSort: whether the radix kernels are needed
//   - validate: whether shaders are compiled with naga before the device sees them
//
// Returns:
//   - *pipelineSet: the unbuilt set
//   - error: wraps ErrPipelineBuild if a shader source cannot be parsed
func newPipelineSet(cfg Configuration, gpuSort, validate bool) (*pipelineSet, error) {
	layout := cfg.RadixLayout()
	defines := shader.WithDefines(shaderDefines(cfg, layout))

	vs, err := shader.NewShader(SplatPipelineKey+"_vertex", shader.ShaderTypeVertex, splatShaderSource, defines)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineBuild, err)
	}
	fs, err := shader.NewShader(SplatPipelineKey+"_fragment", shader.ShaderTypeFragment, splatShaderSource, defines)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrPipelineBuild, err)
	}

	set := &pipelineSet{
		render: pipeline.NewPipeline(SplatPipelineKey, pipeline.PipelineTypeRender,
			pipeline.WithVertexShader(vs),
			pipeline.WithFragmentShader(fs),
			pipeline.WithTopology(wgpu.PrimitiveTopologyTriangleStrip),
			pipeline.WithCullMode(wgpu.CullModeNone),
		),
		compute:  make(map[sorting.Kernel]pipeline.Pipeline),
		validate: validate,
	}
	if !gpuSort {
		return set, nil
	}

	sources := map[sorting.Kernel]string{
		sorting.KernelHistogram: radixSortASource,
		sorting.KernelPrefixSum: radixSortBSource,
		sorting.KernelScatter:   radixSortCSource,
	}
	for _, k := range radixKernels {
		cs, err := shader.NewShader(k.String(), shader.ShaderTypeCompute, sources[k], defines)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrPipelineBuild, err)
		}
		set.compute[k] = pipeline.NewPipeline(k.String(), pipeline.PipelineTypeCompute, pipeline.WithComputeShader(cs))
	}
	return set, nil
}

// build creates the GPU pipelines once. It is a no-op after a success and returns the
// original error after a failure.
func (s *pipelineSet) build(backend RendererBackend) error {
	if s.built || s.err != nil {
		return s.err
	}

	if s.validate {
		for _, p := range s.all() {
			for _, t := range []shader.ShaderType{shader.ShaderTypeVertex, shader.ShaderTypeFragment, shader.ShaderTypeCompute} {
				if sh := p.Shader(t); sh != nil {
					if err := shader.Validate(sh); err != nil {
						return s.fail(err)
					}
				}
			}
		}
	}

	if err := backend.RegisterRenderPipeline(s.render); err != nil {
		return s.fail(classifyBackendError(err))
	}
	for _, k := range radixKernels {
		p, ok := s.compute[k]
		if !ok {
			continue
		}
		if err := backend.RegisterComputePipeline(p); err != nil {
			return s.fail(classifyBackendError(err))
		}
	}

	s.built = true
	s.builds++
	common.Logger().Info("pipelines built", "render", s.render.PipelineKey(), "compute", len(s.compute))
	return nil
}

func (s *pipelineSet) fail(err error) error {
	s.err = fmt.Errorf("%w: %w", ErrPipelineBuild, err)
	common.Logger().Warn("pipeline build failed", "error", err)
	return s.err
}

// all returns the render pipeline followed by the compute pipelines in dispatch order.
func (s *pipelineSet) all() []pipeline.Pipeline {
	out := []pipeline.Pipeline{s.render}
	for _, k := range radixKernels {
		if p, ok := s.compute[k]; ok {
			out = append(out, p)
		}
	}
	return out
}

func (s *pipelineSet) release() {
	for _, p := range s.all() {
		p.Release()
	}
}
