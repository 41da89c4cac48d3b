package renderer

import (
	"github.com/Carmen-Shannon/splat-go/common"
	"github.com/Carmen-Shannon/splat-go/engine/camera"
	"github.com/Carmen-Shannon/splat-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/splat-go/engine/scene"
	"github.com/Carmen-Shannon/splat-go/engine/sorting"
)

// frameState carries the values of one RenderFrame call between the strategy hooks.
type frameState struct {
	scene      scene.Scene
	splatCount int
	matrices   camera.FrameMatrices
	target     RenderTarget

	// drawCount is the instance count of a direct draw.
	drawCount uint32
}

// sortStrategy is the depth sorting variant chosen once from Configuration.DepthSorting.
type sortStrategy interface {
	// sortsOnGPU reports whether the radix kernels, the sorting buffer and the second entry
	// buffer are needed.
	sortsOnGPU() bool

	// entryBuffer returns which entry buffer the render bind group reads.
	entryBuffer(layout sorting.RadixLayout) int

	// prepare runs the CPU side of the frame before any command is recorded.
	prepare(r *renderer, f *frameState) error

	// recordCompute records the compute passes of the frame.
	recordCompute(r *renderer, f *frameState) error

	// recordDraw records the splat draw inside the open render pass.
	recordDraw(r *renderer, f *frameState) error
}

func newSortStrategy(mode DepthSorting) sortStrategy {
	switch mode {
	case DepthSortingNone:
		return noSort{}
	case DepthSortingCPU:
		return cpuSort{}
	case DepthSortingGPUIndirectDraw:
		return gpuSort{indirect: true}
	default:
		return gpuSort{}
	}
}

// noSort draws every splat in scene order.
type noSort struct{}

func (noSort) sortsOnGPU() bool                    { return false }
func (noSort) entryBuffer(sorting.RadixLayout) int { return 0 }

func (noSort) prepare(_ *renderer, f *frameState) error {
	f.drawCount = uint32(f.splatCount)
	return nil
}

func (noSort) recordCompute(*renderer, *frameState) error { return nil }

func (noSort) recordDraw(r *renderer, f *frameState) error {
	return r.drawDirect(f)
}

// cpuSort culls and sorts on the CPU and uploads the visible entries to entry buffer 0.
type cpuSort struct{}

func (cpuSort) sortsOnGPU() bool                    { return false }
func (cpuSort) entryBuffer(sorting.RadixLayout) int { return 0 }

func (cpuSort) prepare(r *renderer, f *frameState) error {
	entries := r.cpuSorter.Sort(f.matrices.ViewProjection, f.scene.Positions(), f.splatCount, r.cfg.FrustumCullingTolerance)
	f.drawCount = uint32(len(entries))
	if len(entries) == 0 {
		return nil
	}
	return r.backend.WriteBuffers([]bind_group_provider.BufferWrite{{
		Buffer: r.entryBuffers[0],
		Data:   common.SliceToBytes(entries),
	}})
}

func (cpuSort) recordCompute(*renderer, *frameState) error { return nil }

func (cpuSort) recordDraw(r *renderer, f *frameState) error {
	return r.drawDirect(f)
}

// gpuSort culls and radix sorts on the GPU. Culled splats get sorting.CulledKey and end up
// behind every visible one. With indirect set, kernel A also counts the visible splats into
// the indirect draw arguments so only they are drawn.
type gpuSort struct {
	indirect bool
}

func (gpuSort) sortsOnGPU() bool { return true }

func (gpuSort) entryBuffer(layout sorting.RadixLayout) int {
	return layout.ResultBuffer()
}

func (gpuSort) prepare(r *renderer, f *frameState) error {
	f.drawCount = uint32(f.splatCount)

	providers := f.scene.ComputeBindGroups()
	writes := make([]bind_group_provider.BufferWrite, len(providers))
	for pass, p := range providers {
		sp := scene.GPUSortPass{SplatCount: uint32(f.splatCount), PassIndex: uint32(pass)}
		writes[pass] = bind_group_provider.BufferWrite{
			Provider: p,
			Binding:  r.bindings.sortPass,
			Data:     sp.Marshal(),
		}
	}
	return r.backend.WriteBuffers(writes)
}

func (gpuSort) recordCompute(r *renderer, f *frameState) error {
	return r.layout.Record(radixRecorder{r: r, providers: f.scene.ComputeBindGroups()}, f.splatCount)
}

func (s gpuSort) recordDraw(r *renderer, f *frameState) error {
	if !s.indirect {
		return r.drawDirect(f)
	}
	return r.backend.DrawCallIndirect(
		r.pipelines.render,
		[]bind_group_provider.BindGroupProvider{f.scene.RenderBindGroup()},
		r.sortingBuffer,
		r.layout.IndirectDrawOffset(),
	)
}

// radixRecorder routes the radix sort commands to the backend of the current frame.
type radixRecorder struct {
	r         *renderer
	providers []bind_group_provider.BindGroupProvider
}

var _ sorting.ComputeRecorder = radixRecorder{}

func (rec radixRecorder) ClearSortingBuffer(offset, size uint64) error {
	return rec.r.backend.ClearBuffer(rec.r.sortingBuffer, offset, size)
}

func (rec radixRecorder) Dispatch(kernel sorting.Kernel, bindGroup int, x, y, z uint32) error {
	return rec.r.backend.DispatchCompute(rec.r.pipelines.compute[kernel], rec.providers[bindGroup], [3]uint32{x, y, z})
}
