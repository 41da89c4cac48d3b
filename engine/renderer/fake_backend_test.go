package renderer

import (
	"fmt"

	"github.com/Carmen-Shannon/splat-go/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/splat-go/engine/renderer/pipeline"
	"github.com/cogentcore/webgpu/wgpu"
)

// fakeWrite is a buffer write resolved to the label of its target.
type fakeWrite struct {
	label  string
	offset uint64
	data   []byte
}

// fakeBackend records every call instead of talking to a device. GPU handles are empty
// structs that are never released, and pipeline handles are left nil.
type fakeBackend struct {
	// ops lists frame commands and surface calls in call order.
	ops []string

	labels   map[*wgpu.Buffer]string
	created  []string
	writes   []fakeWrite
	released map[string]int

	renderRegistrations  int
	computeRegistrations int
	bindGroups           int
	releasedBindGroups   int
	submitted            int
	discarded            int
	inFrame              bool
	backendReleased      bool

	registerErr error
	// failOn makes the named method fail with the given error.
	failOn map[string]error
}

var _ RendererBackend = &fakeBackend{}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		labels:   make(map[*wgpu.Buffer]string),
		released: make(map[string]int),
		failOn:   make(map[string]error),
	}
}

func (b *fakeBackend) label(buf *wgpu.Buffer) string {
	if l, ok := b.labels[buf]; ok {
		return l
	}
	return "?"
}

// frameOps returns the ops recorded from the last BeginFrame on.
func (b *fakeBackend) frameOps() []string {
	for i := len(b.ops) - 1; i >= 0; i-- {
		if b.ops[i] == "BeginFrame" {
			return b.ops[i:]
		}
	}
	return nil
}

// writesTo returns the writes that went to buffers with the given label.
func (b *fakeBackend) writesTo(label string) []fakeWrite {
	var out []fakeWrite
	for _, w := range b.writes {
		if w.label == label {
			out = append(out, w)
		}
	}
	return out
}

func (b *fakeBackend) SurfaceFormat() wgpu.TextureFormat {
	return wgpu.TextureFormatBGRA8UnormSrgb
}

func (b *fakeBackend) ConfigureSurface(width, height uint32) error {
	b.ops = append(b.ops, fmt.Sprintf("ConfigureSurface %dx%d", width, height))
	return b.failOn["ConfigureSurface"]
}

func (b *fakeBackend) SetPresentMode(mode PresentMode) {
	b.ops = append(b.ops, fmt.Sprintf("SetPresentMode %d", mode))
}

func (b *fakeBackend) AcquireSurfaceTarget() (RenderTarget, error) {
	return RenderTarget{View: &wgpu.TextureView{}, Width: 800, Height: 600}, b.failOn["AcquireSurfaceTarget"]
}

func (b *fakeBackend) Present() {
	b.ops = append(b.ops, "Present")
}

func (b *fakeBackend) RegisterRenderPipeline(p pipeline.Pipeline) error {
	b.renderRegistrations++
	return b.registerErr
}

func (b *fakeBackend) RegisterComputePipeline(p pipeline.Pipeline) error {
	b.computeRegistrations++
	return b.registerErr
}

func (b *fakeBackend) CreateBuffer(label string, size uint64, usage wgpu.BufferUsage) (*wgpu.Buffer, error) {
	if err := b.failOn["CreateBuffer"]; err != nil {
		return nil, err
	}
	buf := new(wgpu.Buffer)
	b.labels[buf] = label
	b.created = append(b.created, label)
	return buf, nil
}

func (b *fakeBackend) InitBindGroup(provider bind_group_provider.BindGroupProvider, descriptor wgpu.BindGroupLayoutDescriptor) error {
	for _, e := range descriptor.Entries {
		if provider.Buffer(int(e.Binding)) == nil {
			return fmt.Errorf("%s has no buffer for binding %d", provider.Label(), e.Binding)
		}
	}
	b.bindGroups++
	provider.SetBindGroup(&wgpu.BindGroup{})
	return nil
}

func (b *fakeBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) error {
	if err := b.failOn["WriteBuffers"]; err != nil {
		return err
	}
	for _, w := range writes {
		b.writes = append(b.writes, fakeWrite{
			label:  b.label(w.Target()),
			offset: w.Offset,
			data:   append([]byte(nil), w.Data...),
		})
	}
	return nil
}

func (b *fakeBackend) BeginFrame() error {
	b.ops = append(b.ops, "BeginFrame")
	b.inFrame = true
	return b.failOn["BeginFrame"]
}

func (b *fakeBackend) ClearBuffer(buf *wgpu.Buffer, offset, size uint64) error {
	b.ops = append(b.ops, fmt.Sprintf("Clear %s %d %d", b.label(buf), offset, size))
	return b.failOn["ClearBuffer"]
}

func (b *fakeBackend) DispatchCompute(p pipeline.Pipeline, provider bind_group_provider.BindGroupProvider, workgroups [3]uint32) error {
	b.ops = append(b.ops, fmt.Sprintf("Dispatch %s %q %v", p.PipelineKey(), provider.Label(), workgroups))
	return b.failOn["DispatchCompute"]
}

func (b *fakeBackend) BeginRenderPass(target RenderTarget, clear wgpu.Color) error {
	b.ops = append(b.ops, fmt.Sprintf("BeginRenderPass %dx%d %v", target.Width, target.Height, clear))
	return b.failOn["BeginRenderPass"]
}

func (b *fakeBackend) DrawCall(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider, vertexCount, instanceCount uint32) error {
	b.ops = append(b.ops, fmt.Sprintf("Draw %s %d %d", p.PipelineKey(), vertexCount, instanceCount))
	return b.failOn["DrawCall"]
}

func (b *fakeBackend) DrawCallIndirect(p pipeline.Pipeline, bindGroups []bind_group_provider.BindGroupProvider, indirectBuffer *wgpu.Buffer, offset uint64) error {
	b.ops = append(b.ops, fmt.Sprintf("DrawIndirect %s %s %d", p.PipelineKey(), b.label(indirectBuffer), offset))
	return b.failOn["DrawCallIndirect"]
}

func (b *fakeBackend) EndRenderPass() error {
	b.ops = append(b.ops, "EndRenderPass")
	return b.failOn["EndRenderPass"]
}

func (b *fakeBackend) EndFrame() error {
	b.ops = append(b.ops, "EndFrame")
	b.inFrame = false
	if err := b.failOn["EndFrame"]; err != nil {
		return err
	}
	b.submitted++
	return nil
}

func (b *fakeBackend) DiscardFrame() {
	b.ops = append(b.ops, "DiscardFrame")
	b.inFrame = false
	b.discarded++
}

func (b *fakeBackend) ReleaseBuffer(buf *wgpu.Buffer) {
	b.released[b.label(buf)]++
}

func (b *fakeBackend) ReleaseBindGroup(bg *wgpu.BindGroup) {
	b.releasedBindGroups++
}

func (b *fakeBackend) Release() {
	b.backendReleased = true
}
