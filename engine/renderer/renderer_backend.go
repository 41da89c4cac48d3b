package renderer

import (
	"github.com/Carmen-Shannon/splat-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/splat-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// RenderTarget is the color attachment of one frame. Width and Height define the viewport and
// the aspect ratio of the projection.
type RenderTarget struct {
	View   *wgpu.TextureView
	Width  uint32
	Height uint32
}

// RendererBackend is the device-facing half of the Renderer. Every method that records into the
// frame encoder must be called between BeginFrame and EndFrame or DiscardFrame.
type RendererBackend interface {
	bind_group_provider.Releaser

	// SurfaceFormat returns the format render pipelines target.
	SurfaceFormat() wgpu.TextureFormat

	// ConfigureSurface (re)creates the presentation surface or the offscreen target at the given size.
	//
	// Parameters:
	//   - width: the new width in pixels
	//   - height: the new height in pixels
	//
	// Returns:
	//   - error: an error if the surface or target could not be configured
	ConfigureSurface(width, height uint32) error

	// SetPresentMode sets the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// AcquireSurfaceTarget returns the target of the next frame: the current swapchain image of a
	// window surface, or the offscreen texture of a headless backend.
	//
	// Returns:
	//   - RenderTarget: the frame target
	//   - error: an error if no image could be acquired
	AcquireSurfaceTarget() (RenderTarget, error)

	// Present shows the acquired swapchain image. Headless backends do nothing.
	Present()

	// RegisterRenderPipeline creates the GPU render pipeline and its bind group layouts and stores them on p.
	//
	// Parameters:
	//   - p: a render pipeline with vertex and fragment shaders
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterRenderPipeline(p pipeline.Pipeline) error

	// RegisterComputePipeline creates the GPU compute pipeline and its bind group layouts and stores them on p.
	//
	// Parameters:
	//   - p: a compute pipeline with a compute shader
	//
	// Returns:
	//   - error: an error if any GPU object could not be created
	RegisterComputePipeline(p pipeline.Pipeline) error

	// CreateBuffer allocates a zeroed GPU buffer.
	//
	// Parameters:
	//   - label: the debug label
	//   - size: the size in bytes, rounded up to a multiple of 4
	//   - usage: the usage flags; CopyDst is always added
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer
	//   - error: an error if allocation fails
	CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error)

	// InitBindGroup creates the bind group of provider against its layout. Every binding of the
	// descriptor must already have a buffer on the provider.
	//
	// Parameters:
	//   - provider: the provider holding the layout and the buffers
	//   - descriptor: the layout entries of the group
	//
	// Returns:
	//   - error: an error if a buffer is missing or the bind group could not be created
	InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error

	// WriteBuffers queues the writes in order. Writes without a target buffer or data are skipped.
	//
	// Parameters:
	//   - writes: the writes to queue
	//
	// Returns:
	//   - error: the first queue error
	WriteBuffers(writes []bind_group_provider.BufferWrite) error

	// BeginFrame creates the command encoder of a frame.
	BeginFrame() error

	// ClearBuffer records a zero fill of size bytes at offset.
	ClearBuffer(buf *wgpu.Buffer, offset, size uint64) error

	// DispatchCompute records one compute pass.
	//
	// Parameters:
	//   - p: the compute pipeline
	//   - provider: the provider whose bind group is set at group 0
	//   - workgroups: the workgroup counts in x, y and z
	//
	// Returns:
	//   - error: an error if the pass could not be recorded
	DispatchCompute(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, workgroups [3]uint32) error

	// BeginRenderPass starts the render pass that clears target to clear.
	BeginRenderPass(target RenderTarget, clear wgpu.Color) error

	// DrawCall records a non-indexed instanced draw with the bind groups set from group 0 up.
	// Providers without a bind group are skipped.
	DrawCall(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider, vertexCount, instanceCount uint32) error

	// DrawCallIndirect records a non-indexed draw whose arguments are read from indirectBuffer at offset.
	DrawCallIndirect(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider, indirectBuffer *wgpu.Buffer, offset uint64) error

	// EndRenderPass ends the render pass.
	EndRenderPass() error

	// EndFrame finishes the encoder and submits the command buffer.
	EndFrame() error

	// DiscardFrame drops the encoder of a failed frame without submitting anything.
	DiscardFrame()

	// Release frees the device and every backend-owned object.
	Release()
}
