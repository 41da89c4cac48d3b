package renderer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/splat-go/common"
	"github.com/Carmen-Shannon/splat-go/engine/camera"
	"github.com/Carmen-Shannon/splat-go/engine/profiler"
	"github.com/Carmen-Shannon/splat-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/splat-go/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/splat-go/engine/scene"
	"github.com/Carmen-Shannon/splat-go/engine/sorting"
	"github.com/Carmen-Shannon/splat-go/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// uniformsSize is the size of the per-frame uniform block shared by every pipeline.
var uniformsSize = uint64((&camera.GPUUniforms{}).Size())

// clearColor is transparent black: splats are composited onto it with the under operator.
var clearColor = wgpu.Color{R: 0, G: 0, B: 0, A: 0}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	cfg      Configuration
	layout   sorting.RadixLayout
	strategy sortStrategy
	backend  RendererBackend

	pipelines *pipelineSet
	bindings  bindingIndices

	cpuSorter sorting.CPUSorter
	profiler  *profiler.Profiler

	// renderer-owned buffers, shared with every scene
	uniformsBuffer *wgpu.Buffer
	entryBuffers   [2]*wgpu.Buffer
	sortingBuffer  *wgpu.Buffer

	surfaceWidth, surfaceHeight uint32

	// Pre-creation config collected from builder options
	window               window.Window
	headless             bool
	validateShaders      bool
	forceFallbackAdapter bool
}

// Renderer draws Gaussian splat scenes.
//
// The depth sorting strategy, the buffer capacity and every shader constant are fixed by the
// Configuration at creation. Pipelines are created on the first frame. A scene is bound to the
// renderer's buffers the first time it is rendered and uploaded again whenever it is dirty.
//
// A Renderer is safe for concurrent use, but frames are recorded one at a time.
type Renderer interface {
	// Configuration returns the validated configuration the renderer was created with.
	Configuration() Configuration

	// RenderFrame culls, sorts and draws a scene from the given camera pose into target.
	// A target with a zero size falls back to the current surface size for the aspect ratio
	// and the uniforms.
	//
	// Nothing is submitted when an error is returned.
	//
	// Parameters:
	//   - motion: the camera pose in world space
	//   - sc: the scene to draw
	//   - target: the texture view to render into
	//
	// Returns:
	//   - error: *CapacityError, ErrPipelineBuild, ErrSceneNotPrepared, ErrDeviceLost or a backend error
	RenderFrame(motion common.RigidMotion, sc scene.Scene, target RenderTarget) error

	// Pipeline returns the splat render pipeline. Its identity never changes.
	//
	// Returns:
	//   - pipeline.Pipeline: the render pipeline, whose GPU handle is nil until the first frame
	Pipeline() pipeline.Pipeline

	// PipelineBuilds returns how many times the GPU pipelines were created: 0 before the first
	// frame and at most 1 afterwards.
	PipelineBuilds() int

	// Resize reconfigures the surface, or the offscreen target of a headless renderer.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: a *ConfigurationError for a zero size, or the backend error
	Resize(width, height uint32) error

	// SetPresentMode changes the present mode and reconfigures the surface.
	SetPresentMode(mode PresentMode)

	// AcquireSurfaceTarget returns the texture view of the next surface image, or the offscreen
	// target of a headless renderer.
	//
	// Returns:
	//   - RenderTarget: the target to pass to RenderFrame
	//   - error: the backend error
	AcquireSurfaceTarget() (RenderTarget, error)

	// Present shows the image acquired by AcquireSurfaceTarget. A no-op for headless renderers.
	Present()

	// Release frees the pipelines, the renderer-owned buffers and the backend.
	// Scenes rendered by this renderer must be released first.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer validates cfg, parses every shader the configured strategy needs and creates the
// backend. No GPU pipeline is created until the first frame.
//
// Exactly one of WithWindow, WithHeadless and WithBackend must be given.
//
// Parameters:
//   - cfg: the renderer configuration
//   - options: functional options configuring the backend and helpers
//
// Returns:
//   - Renderer: the renderer
//   - error: *ConfigurationError, ErrPipelineBuild for unparsable shaders, or the backend creation error
func NewRenderer(cfg Configuration, options ...RendererBuilderOption) (Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &renderer{
		mu:            &sync.Mutex{},
		cfg:           cfg,
		layout:        cfg.RadixLayout(),
		strategy:      newSortStrategy(cfg.DepthSorting),
		surfaceWidth:  cfg.SurfaceWidth,
		surfaceHeight: cfg.SurfaceHeight,
	}
	for _, opt := range options {
		opt(r)
	}

	var err error
	if r.pipelines, err = newPipelineSet(cfg, r.strategy.sortsOnGPU(), r.validateShaders); err != nil {
		return nil, err
	}
	if r.bindings, err = resolveBindings(r.pipelines); err != nil {
		return nil, err
	}
	if cfg.DepthSorting == DepthSortingCPU && r.cpuSorter == nil {
		r.cpuSorter = sorting.NewCPUSorter()
	}

	if r.backend == nil {
		switch {
		case r.window != nil:
			r.backend, err = newWGPURendererBackend(r.window.SurfaceDescriptor(), cfg.SurfaceFormat, r.forceFallbackAdapter)
			if w, h := r.window.Width(), r.window.Height(); w > 0 && h > 0 {
				r.surfaceWidth, r.surfaceHeight = uint32(w), uint32(h)
			}
		case r.headless:
			r.backend, err = newWGPURendererBackend(nil, cfg.SurfaceFormat, r.forceFallbackAdapter)
		default:
			return nil, &ConfigurationError{Field: "Backend", Reason: "requires WithWindow, WithHeadless or WithBackend"}
		}
		if err != nil {
			return nil, classifyBackendError(err)
		}
	}

	r.backend.SetPresentMode(cfg.PresentMode)
	if err := r.backend.ConfigureSurface(r.surfaceWidth, r.surfaceHeight); err != nil {
		r.backend.Release()
		return nil, classifyBackendError(err)
	}

	common.Logger().Info("renderer created",
		"sorting", cfg.DepthSorting,
		"capacity", cfg.MaxSplatCount,
		"sh_order", cfg.SphericalHarmonicsOrder,
		"radix_bits", cfg.RadixBitsPerDigit,
		"surface", fmt.Sprintf("%dx%d", r.surfaceWidth, r.surfaceHeight),
	)
	return r, nil
}

func (r *renderer) Configuration() Configuration {
	return r.cfg
}

func (r *renderer) RenderFrame(motion common.RigidMotion, sc scene.Scene, target RenderTarget) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	err := r.renderFrame(motion, sc, target)
	if err != nil {
		if errors.Is(err, ErrDeviceLost) {
			common.Logger().Error("frame failed", "error", err)
		} else {
			common.Logger().Warn("frame failed", "error", err)
		}
	}
	return err
}

func (r *renderer) renderFrame(motion common.RigidMotion, sc scene.Scene, target RenderTarget) error {
	n := sc.SplatCount()
	if n > r.cfg.MaxSplatCount {
		return &CapacityError{Count: n, Max: r.cfg.MaxSplatCount}
	}

	if err := r.pipelines.build(r.backend); err != nil {
		return err
	}

	sortStart := time.Now()
	if err := r.ensureBuffers(); err != nil {
		return classifyBackendError(err)
	}
	if err := r.prepareScene(sc); err != nil {
		return classifyBackendError(err)
	}

	if target.Width == 0 || target.Height == 0 {
		target.Width, target.Height = r.surfaceWidth, r.surfaceHeight
	}
	aspect := float32(target.Width) / float32(target.Height)
	matrices, err := camera.ComputeFrameMatrices(motion, r.cfg.FieldOfViewY, aspect, r.cfg.NearPlane, r.cfg.FarPlane)
	if err != nil {
		return err
	}

	f := &frameState{
		scene:      sc,
		splatCount: n,
		matrices:   matrices,
		target:     target,
	}
	if err := r.strategy.prepare(r, f); err != nil {
		return classifyBackendError(err)
	}
	if err := r.writeUniforms(f); err != nil {
		return classifyBackendError(err)
	}
	r.observe(profiler.PhaseSort, sortStart)

	recordStart := time.Now()
	if err := r.backend.BeginFrame(); err != nil {
		return classifyBackendError(err)
	}
	if err := r.recordFrame(f); err != nil {
		r.backend.DiscardFrame()
		return classifyBackendError(err)
	}
	r.observe(profiler.PhaseRecord, recordStart)

	submitStart := time.Now()
	if err := r.backend.EndFrame(); err != nil {
		r.backend.DiscardFrame()
		return classifyBackendError(err)
	}
	r.observe(profiler.PhaseSubmit, submitStart)
	if r.profiler != nil {
		r.profiler.Tick()
	}

	common.Logger().Debug("frame rendered", "splats", n, "draw_count", f.drawCount, "sorting", r.cfg.DepthSorting)
	return nil
}

// recordFrame records the compute passes and the render pass into the open frame.
func (r *renderer) recordFrame(f *frameState) error {
	if err := r.strategy.recordCompute(r, f); err != nil {
		return err
	}
	if err := r.backend.BeginRenderPass(f.target, clearColor); err != nil {
		return err
	}
	if err := r.strategy.recordDraw(r, f); err != nil {
		return err
	}
	return r.backend.EndRenderPass()
}

func (r *renderer) writeUniforms(f *frameState) error {
	u := f.matrices.Uniforms(f.target.Width, f.target.Height)
	u.FrustumCullingTolerance = r.cfg.FrustumCullingTolerance
	u.EllipseMargin = r.cfg.EllipseMargin
	u.SplatScale = r.cfg.SplatScale
	return r.backend.WriteBuffers([]bind_group_provider.BufferWrite{{
		Buffer: r.uniformsBuffer,
		Data:   u.Marshal(),
	}})
}

// drawDirect draws one four-vertex quad per entry of the frame's draw count.
func (r *renderer) drawDirect(f *frameState) error {
	return r.backend.DrawCall(
		r.pipelines.render,
		[]bind_group_provider.BindGroupProvider{f.scene.RenderBindGroup()},
		4,
		f.drawCount,
	)
}

func (r *renderer) observe(phase profiler.Phase, start time.Time) {
	if r.profiler != nil {
		r.profiler.Observe(phase, time.Since(start))
	}
}

func (r *renderer) Pipeline() pipeline.Pipeline {
	return r.pipelines.render
}

func (r *renderer) PipelineBuilds() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.pipelines.builds
}

func (r *renderer) Resize(width, height uint32) error {
	if width == 0 || height == 0 {
		return &ConfigurationError{Field: "SurfaceSize", Reason: fmt.Sprintf("%dx%d must be positive", width, height)}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backend.ConfigureSurface(width, height); err != nil {
		return classifyBackendError(err)
	}
	r.surfaceWidth, r.surfaceHeight = width, height
	return nil
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.backend.SetPresentMode(mode)
	if err := r.backend.ConfigureSurface(r.surfaceWidth, r.surfaceHeight); err != nil {
		common.Logger().Warn("surface reconfiguration failed", "error", err)
	}
}

func (r *renderer) AcquireSurfaceTarget() (RenderTarget, error) {
	t, err := r.backend.AcquireSurfaceTarget()
	return t, classifyBackendError(err)
}

func (r *renderer) Present() {
	r.backend.Present()
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.pipelines.release()
	r.releaseBuffers()
	r.backend.Release()
}
