package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BindGroupProviderOption is a functional option used to configure a BindGroupProvider during construction.
type BindGroupProviderOption func(*bindGroupProvider)

// WithBindGroupLayout sets the bind group layout for this provider.
//
// Parameters:
//   - bgl: the bind group layout to use for this provider
//
// Returns:
//   - BindGroupProviderOption: a function that sets the bind group layout for this provider
func WithBindGroupLayout(bgl *wgpu.BindGroupLayout) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.bindGroupLayout = bgl
	}
}

// WithBuffer binds an owned buffer.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the buffer to associate with this binding
//
// Returns:
//   - BindGroupProviderOption: a function that sets the buffer for the specified binding
func WithBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.SetBuffer(binding, buf)
	}
}

// WithSharedBuffer binds a buffer owned by someone else. Release leaves it alone.
//
// Parameters:
//   - binding: the binding index for this buffer
//   - buf: the borrowed buffer
//
// Returns:
//   - BindGroupProviderOption: a function that sets the shared buffer for the specified binding
func WithSharedBuffer(binding int, buf *wgpu.Buffer) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		p.SetSharedBuffer(binding, buf)
	}
}

// WithReleaser routes the release of owned buffers and the bind group through r.
//
// Parameters:
//   - r: the releaser, typically the renderer backend
//
// Returns:
//   - BindGroupProviderOption: a function that sets the releaser
func WithReleaser(r Releaser) BindGroupProviderOption {
	return func(p *bindGroupProvider) {
		if r != nil {
			p.releaser = r
		}
	}
}
