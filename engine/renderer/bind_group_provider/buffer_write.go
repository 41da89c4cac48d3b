package bind_group_provider

import "github.com/cogentcore/webgpu/wgpu"

// BufferWrite describes a single GPU buffer write. The target is Buffer when set,
// otherwise the buffer at Binding on Provider.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Buffer   *wgpu.Buffer
	Offset   uint64
	Data     []byte
}

// Target resolves the buffer the write goes to.
//
// Returns:
//   - *wgpu.Buffer: the destination buffer, or nil if neither Buffer nor Provider names one
func (w BufferWrite) Target() *wgpu.Buffer {
	if w.Buffer != nil {
		return w.Buffer
	}
	if w.Provider == nil {
		return nil
	}
	return w.Provider.Buffer(w.Binding)
}
