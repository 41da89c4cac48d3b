package renderer

import (
	"github.com/Carmen-Shannon/splat-go/engine/profiler"
	"github.com/Carmen-Shannon/splat-go/engine/sorting"
	"github.com/Carmen-Shannon/splat-go/engine/window"
)

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithWindow renders to the surface of a window. The surface is configured to the window size.
//
// Parameters:
//   - w: the window to render to, must not be nil
//
// Returns:
//   - RendererBuilderOption: a function that applies the window option to a renderer
func WithWindow(w window.Window) RendererBuilderOption {
	if w == nil {
		panic("renderer: WithWindow requires a non-nil window")
	}
	return func(r *renderer) {
		r.window = w
	}
}

// WithHeadless renders into an offscreen texture of the configured surface size instead of a window.
//
// Returns:
//   - RendererBuilderOption: a function that applies the headless option to a renderer
func WithHeadless() RendererBuilderOption {
	return func(r *renderer) {
		r.headless = true
	}
}

// WithBackend injects a backend instead of creating a WebGPU device. Takes precedence over
// WithWindow and WithHeadless.
func WithBackend(b RendererBackend) RendererBuilderOption {
	return func(r *renderer) {
		r.backend = b
	}
}

// WithShaderValidation compiles every shader with naga before the first pipeline build.
// A shader naga rejects fails the build like a device error would.
//
// Parameters:
//   - enabled: true to validate shaders on the CPU first
//
// Returns:
//   - RendererBuilderOption: a function that applies the validation option to a renderer
func WithShaderValidation(enabled bool) RendererBuilderOption {
	return func(r *renderer) {
		r.validateShaders = enabled
	}
}

// WithCPUSorter replaces the sorter used by DepthSortingCPU. Ignored by the other strategies.
func WithCPUSorter(s sorting.CPUSorter) RendererBuilderOption {
	return func(r *renderer) {
		r.cpuSorter = s
	}
}

// WithProfiler reports per-phase frame timings to p and ticks it after every submitted frame.
//
// Parameters:
//   - p: the profiler, nil disables profiling
//
// Returns:
//   - RendererBuilderOption: a function that applies the profiler option to a renderer
func WithProfiler(p *profiler.Profiler) RendererBuilderOption {
	return func(r *renderer) {
		r.profiler = p
	}
}

// WithForceSoftwareRenderer forces WGPU to use a CPU/software fallback adapter instead of
// hardware GPU acceleration. This requires a software Vulkan ICD to be installed on the system
// (e.g. SwiftShader or lavapipe).
//
// Parameters:
//   - force: true to force the software fallback adapter, false to use hardware (default)
//
// Returns:
//   - RendererBuilderOption: a function that applies the force software renderer option to a renderer
func WithForceSoftwareRenderer(force bool) RendererBuilderOption {
	return func(r *renderer) {
		r.forceFallbackAdapter = force
	}
}
