package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/splat-go/common"
	"github.com/Carmen-Shannon/splat-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/splat-go/engine/renderer/shader"
	"github.com/Carmen-Shannon/splat-go/engine/scene"
	"github.com/Carmen-Shannon/splat-go/engine/sorting"
	"github.com/cogentcore/webgpu/wgpu"
)

// bindingIndices are the binding numbers of group 0, looked up by variable name in the reflected shaders.
type bindingIndices struct {
	// render group
	uniforms int
	splats   int
	sh       int
	entries  int

	// compute group, shared by the three radix kernels
	computeUniforms int
	sortPass        int
	computeSplats   int
	sorting         int
	entriesSrc      int
	entriesDst      int
}

func lookupBindings(s shader.Shader, names map[string]*int) error {
	for name, dst := range names {
		b, ok := s.BindGroupFromVarName(0, name)
		if !ok {
			return fmt.Errorf("shader %s has no group 0 binding named %q", s.Key(), name)
		}
		*dst = b
	}
	return nil
}

// resolveBindings fills the binding numbers from the parsed shaders of the set.
func resolveBindings(set *pipelineSet) (bindingIndices, error) {
	var b bindingIndices
	err := lookupBindings(set.render.Shader(shader.ShaderTypeVertex), map[string]*int{
		"uniforms": &b.uniforms,
		"splats":   &b.splats,
		"sh":       &b.sh,
		"entries":  &b.entries,
	})
	if err != nil {
		return b, fmt.Errorf("%w: %w", ErrPipelineBuild, err)
	}

	scatter, ok := set.compute[sorting.KernelScatter]
	if !ok {
		return b, nil
	}
	err = lookupBindings(scatter.Shader(shader.ShaderTypeCompute), map[string]*int{
		"uniforms":    &b.computeUniforms,
		"sort_pass":   &b.sortPass,
		"splats":      &b.computeSplats,
		"sorting":     &b.sorting,
		"entries_src": &b.entriesSrc,
		"entries_dst": &b.entriesDst,
	})
	if err != nil {
		return b, fmt.Errorf("%w: %w", ErrPipelineBuild, err)
	}
	return b, nil
}

// ensureBuffers creates the renderer-owned buffers on first use. Every scene binds them shared.
func (r *renderer) ensureBuffers() error {
	if r.uniformsBuffer != nil {
		return nil
	}

	var err error
	if r.uniformsBuffer, err = r.backend.CreateBuffer("Uniforms", uniformsSize, wgpu.BufferUsageUniform); err != nil {
		return err
	}
	if r.entryBuffers[0], err = r.backend.CreateBuffer("Entries A", r.layout.EntryBufferSize(), wgpu.BufferUsageStorage); err != nil {
		return err
	}
	if !r.strategy.sortsOnGPU() {
		return nil
	}
	if r.entryBuffers[1], err = r.backend.CreateBuffer("Entries B", r.layout.EntryBufferSize(), wgpu.BufferUsageStorage); err != nil {
		return err
	}
	if r.sortingBuffer, err = r.backend.CreateBuffer("Sorting", r.layout.SortingBufferSize(), wgpu.BufferUsageStorage|wgpu.BufferUsageIndirect); err != nil {
		return err
	}
	return nil
}

func (r *renderer) releaseBuffers() {
	for _, buf := range []*wgpu.Buffer{r.uniformsBuffer, r.entryBuffers[0], r.entryBuffers[1], r.sortingBuffer} {
		if buf != nil {
			r.backend.ReleaseBuffer(buf)
		}
	}
	r.uniformsBuffer = nil
	r.entryBuffers = [2]*wgpu.Buffer{}
	r.sortingBuffer = nil
}

// scenePrepared reports whether sc already holds bind groups made by this renderer.
func (r *renderer) scenePrepared(sc scene.Scene) bool {
	rp := sc.RenderBindGroup()
	if rp == nil || rp.Buffer(r.bindings.uniforms) != r.uniformsBuffer {
		return false
	}
	if r.strategy.sortsOnGPU() && len(sc.ComputeBindGroups()) != r.layout.DigitPlaces {
		return false
	}
	return true
}

// prepareScene creates the scene's bind groups if needed and uploads its data when dirty.
//
// The render group owns the splat and SH buffers, sized for the capacity. Each compute group
// owns its sort pass uniform and borrows every other buffer.
func (r *renderer) prepareScene(sc scene.Scene) error {
	if sc.SHOrder() != r.cfg.SphericalHarmonicsOrder {
		return fmt.Errorf("%w: scene SH order %d, renderer SH order %d", ErrSceneNotPrepared, sc.SHOrder(), r.cfg.SphericalHarmonicsOrder)
	}

	fresh := !r.scenePrepared(sc)
	if fresh {
		if err := r.setupScene(sc); err != nil {
			return err
		}
	}
	if !fresh && !sc.Dirty() {
		return nil
	}

	rp := sc.RenderBindGroup()
	var writes []bind_group_provider.BufferWrite
	if data := sc.SplatData(); len(data) > 0 {
		writes = append(writes, bind_group_provider.BufferWrite{Provider: rp, Binding: r.bindings.splats, Data: data})
	}
	if sh := sc.SHData(); len(sh) > 0 {
		writes = append(writes, bind_group_provider.BufferWrite{Provider: rp, Binding: r.bindings.sh, Data: common.SliceToBytes(sh)})
	}
	if err := r.backend.WriteBuffers(writes); err != nil {
		return err
	}
	sc.MarkClean()
	return nil
}

func (r *renderer) setupScene(sc scene.Scene) error {
	capacity := uint64(r.cfg.MaxSplatCount)
	splats, err := r.backend.CreateBuffer("Splats", capacity*scene.GPUSplatSize, wgpu.BufferUsageStorage)
	if err != nil {
		return err
	}
	sh, err := r.backend.CreateBuffer("Spherical Harmonics", capacity*uint64(scene.SHFloatsPerSplat(r.cfg.SphericalHarmonicsOrder))*4, wgpu.BufferUsageStorage)
	if err != nil {
		r.backend.ReleaseBuffer(splats)
		return err
	}

	render := bind_group_provider.NewBindGroupProvider("Splat Render",
		bind_group_provider.WithReleaser(r.backend),
		bind_group_provider.WithBindGroupLayout(r.pipelines.render.BindGroupLayout(0)),
		bind_group_provider.WithSharedBuffer(r.bindings.uniforms, r.uniformsBuffer),
		bind_group_provider.WithBuffer(r.bindings.splats, splats),
		bind_group_provider.WithBuffer(r.bindings.sh, sh),
		bind_group_provider.WithSharedBuffer(r.bindings.entries, r.entryBuffers[r.strategy.entryBuffer(r.layout)]),
	)
	descriptor := r.pipelines.render.Shader(shader.ShaderTypeVertex).BindGroupLayoutDescriptor(0)
	if err := r.backend.InitBindGroup(render, descriptor); err != nil {
		render.Release()
		return err
	}

	var compute []bind_group_provider.BindGroupProvider
	if r.strategy.sortsOnGPU() {
		if compute, err = r.setupComputeBindGroups(splats); err != nil {
			render.Release()
			return err
		}
	}

	sc.SetBindGroups(render, compute)
	common.Logger().Info("scene prepared", "capacity", r.cfg.MaxSplatCount, "sh_order", sc.SHOrder(), "sort_passes", len(compute))
	return nil
}

func (r *renderer) setupComputeBindGroups(splats *wgpu.Buffer) ([]bind_group_provider.BindGroupProvider, error) {
	scatter := r.pipelines.compute[sorting.KernelScatter]
	descriptor := scatter.Shader(shader.ShaderTypeCompute).BindGroupLayoutDescriptor(0)

	providers := make([]bind_group_provider.BindGroupProvider, 0, r.layout.DigitPlaces)
	release := func() {
		for _, p := range providers {
			p.Release()
		}
	}
	sp := scene.GPUSortPass{}
	for pass := range r.layout.DigitPlaces {
		sortPass, err := r.backend.CreateBuffer(fmt.Sprintf("Sort Pass %d", pass), uint64(sp.Size()), wgpu.BufferUsageUniform)
		if err != nil {
			release()
			return nil, err
		}
		p := bind_group_provider.NewBindGroupProvider(fmt.Sprintf("Radix Sort Pass %d", pass),
			bind_group_provider.WithReleaser(r.backend),
			bind_group_provider.WithBindGroupLayout(scatter.BindGroupLayout(0)),
			bind_group_provider.WithSharedBuffer(r.bindings.computeUniforms, r.uniformsBuffer),
			bind_group_provider.WithBuffer(r.bindings.sortPass, sortPass),
			bind_group_provider.WithSharedBuffer(r.bindings.computeSplats, splats),
			bind_group_provider.WithSharedBuffer(r.bindings.sorting, r.sortingBuffer),
			bind_group_provider.WithSharedBuffer(r.bindings.entriesSrc, r.entryBuffers[pass%2]),
			bind_group_provider.WithSharedBuffer(r.bindings.entriesDst, r.entryBuffers[(pass+1)%2]),
		)
		providers = append(providers, p)
		if err := r.backend.InitBindGroup(p, descriptor); err != nil {
			release()
			return nil, err
		}
	}
	return providers, nil
}
