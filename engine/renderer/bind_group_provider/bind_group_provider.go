package bind_group_provider

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// bindGroupProvider is the concrete implementation of BindGroupProvider.
// It tracks which buffers it owns and which it only borrows from another owner.
type bindGroupProvider struct {
	label string

	// bindGroup is built by the backend from the layout and the buffers.
	bindGroup *wgpu.BindGroup
	// bindGroupLayout belongs to the pipeline the group is bound to and is never released here.
	bindGroupLayout *wgpu.BindGroupLayout
	buffers         map[int]*wgpu.Buffer
	shared          map[int]bool

	releaser Releaser
}

// Releaser frees the GPU objects a provider owns. The renderer backend implements it so
// that every release goes through the device owner.
type Releaser interface {
	ReleaseBuffer(buf *wgpu.Buffer)
	ReleaseBindGroup(bg *wgpu.BindGroup)
}

type handleReleaser struct{}

func (handleReleaser) ReleaseBuffer(buf *wgpu.Buffer)      { buf.Release() }
func (handleReleaser) ReleaseBindGroup(bg *wgpu.BindGroup) { bg.Release() }

// BindGroupProvider holds the GPU buffers and the bind group for one bind group index of a pipeline.
// Buffers set with SetBuffer are owned and freed by Release. Buffers set with SetSharedBuffer are
// borrowed and left untouched by Release.
type BindGroupProvider interface {
	// Release frees the bind group and every owned buffer. Borrowed buffers and the layout are kept.
	Release()

	// Label returns the debug label used for the GPU objects created for this provider.
	//
	// Returns:
	//   - string: the label
	Label() string

	// BindGroup returns the bind group, or nil if it has not been created yet.
	//
	// Returns:
	//   - *wgpu.BindGroup: the bind group or nil
	BindGroup() *wgpu.BindGroup

	// BindGroupLayout returns the layout the bind group was created against.
	//
	// Returns:
	//   - *wgpu.BindGroupLayout: the layout or nil
	BindGroupLayout() *wgpu.BindGroupLayout

	// Buffer returns the buffer bound at binding, or nil.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - *wgpu.Buffer: the buffer or nil
	Buffer(binding int) *wgpu.Buffer

	// Buffers returns every bound buffer keyed by binding index.
	//
	// Returns:
	//   - map[int]*wgpu.Buffer: the bound buffers
	Buffers() map[int]*wgpu.Buffer

	// Shared reports whether the buffer at binding is borrowed.
	//
	// Parameters:
	//   - binding: the binding index
	//
	// Returns:
	//   - bool: true if the buffer is not owned by this provider
	Shared(binding int) bool

	SetBindGroup(bg *wgpu.BindGroup)

	SetBindGroupLayout(bgl *wgpu.BindGroupLayout)

	// SetBuffer binds an owned buffer.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer, released together with the provider
	SetBuffer(binding int, buf *wgpu.Buffer)

	// SetSharedBuffer binds a borrowed buffer.
	//
	// Parameters:
	//   - binding: the binding index
	//   - buf: the buffer, owned elsewhere
	SetSharedBuffer(binding int, buf *wgpu.Buffer)
}

var _ BindGroupProvider = &bindGroupProvider{}

// NewBindGroupProvider creates an empty provider.
//
// Parameters:
//   - label: debug label for the GPU objects created for this provider
//   - options: functional options to configure the provider
//
// Returns:
//   - BindGroupProvider: the newly created provider
func NewBindGroupProvider(label string, options ...BindGroupProviderOption) BindGroupProvider {
	p := &bindGroupProvider{
		label:    label,
		buffers:  make(map[int]*wgpu.Buffer),
		shared:   make(map[int]bool),
		releaser: handleReleaser{},
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *bindGroupProvider) Label() string {
	return p.label
}

func (p *bindGroupProvider) BindGroup() *wgpu.BindGroup {
	return p.bindGroup
}

func (p *bindGroupProvider) BindGroupLayout() *wgpu.BindGroupLayout {
	return p.bindGroupLayout
}

func (p *bindGroupProvider) Buffer(binding int) *wgpu.Buffer {
	return p.buffers[binding]
}

func (p *bindGroupProvider) Buffers() map[int]*wgpu.Buffer {
	return p.buffers
}

func (p *bindGroupProvider) Shared(binding int) bool {
	return p.shared[binding]
}

func (p *bindGroupProvider) SetBindGroup(bg *wgpu.BindGroup) {
	p.bindGroup = bg
}

func (p *bindGroupProvider) SetBindGroupLayout(bgl *wgpu.BindGroupLayout) {
	p.bindGroupLayout = bgl
}

func (p *bindGroupProvider) SetBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
	delete(p.shared, binding)
}

func (p *bindGroupProvider) SetSharedBuffer(binding int, buf *wgpu.Buffer) {
	p.buffers[binding] = buf
	p.shared[binding] = true
}

func (p *bindGroupProvider) Release() {
	if p.bindGroup != nil {
		p.releaser.ReleaseBindGroup(p.bindGroup)
		p.bindGroup = nil
	}
	for i, buf := range p.buffers {
		if buf != nil && !p.shared[i] {
			p.releaser.ReleaseBuffer(buf)
		}
		delete(p.buffers, i)
	}
	clear(p.shared)
	p.bindGroupLayout = nil
}
