package bind_group_provider

import (
	"testing"

	"github.com/cogentcore/webgpu/wgpu"
)

type recordingReleaser struct {
	buffers []*wgpu.Buffer
	groups  int
}

func (r *recordingReleaser) ReleaseBuffer(buf *wgpu.Buffer)   { r.buffers = append(r.buffers, buf) }
func (r *recordingReleaser) ReleaseBindGroup(*wgpu.BindGroup) { r.groups++ }

func newTracked(t *testing.T, options ...BindGroupProviderOption) (BindGroupProvider, *[]*wgpu.Buffer, *int) {
	t.Helper()
	r := &recordingReleaser{}
	p := NewBindGroupProvider("test", append(options, WithReleaser(r))...)
	return p, &r.buffers, &r.groups
}

func TestReleaseKeepsSharedBuffers(t *testing.T) {
	owned := new(wgpu.Buffer)
	borrowed := new(wgpu.Buffer)
	p, released, groups := newTracked(t, WithBuffer(0, owned), WithSharedBuffer(1, borrowed))
	p.SetBindGroup(&wgpu.BindGroup{})

	if !p.Shared(1) || p.Shared(0) {
		t.Fatalf("Shared(0), Shared(1) = %v, %v, want false, true", p.Shared(0), p.Shared(1))
	}

	p.Release()

	if len(*released) != 1 || (*released)[0] != owned {
		t.Errorf("released buffers = %v, want only the owned buffer", *released)
	}
	if *groups != 1 {
		t.Errorf("released bind groups = %d, want 1", *groups)
	}
	if p.BindGroup() != nil || len(p.Buffers()) != 0 {
		t.Errorf("provider not empty after Release()")
	}

	p.Release()
	if len(*released) != 1 || *groups != 1 {
		t.Errorf("second Release() freed again")
	}
}

func TestSetBufferClearsShared(t *testing.T) {
	p, released, _ := newTracked(t, WithSharedBuffer(2, new(wgpu.Buffer)))
	own := new(wgpu.Buffer)
	p.SetBuffer(2, own)
	if p.Shared(2) {
		t.Errorf("Shared(2) = true after SetBuffer, want false")
	}
	p.Release()
	if len(*released) != 1 || (*released)[0] != own {
		t.Errorf("released buffers = %v, want the replacement buffer", *released)
	}
}

func TestBufferWriteTarget(t *testing.T) {
	bound := new(wgpu.Buffer)
	direct := new(wgpu.Buffer)
	p := NewBindGroupProvider("test", WithBuffer(3, bound))

	tests := []struct {
		name  string
		write BufferWrite
		want  *wgpu.Buffer
	}{
		{"binding", BufferWrite{Provider: p, Binding: 3}, bound},
		{"direct wins", BufferWrite{Provider: p, Binding: 3, Buffer: direct}, direct},
		{"direct only", BufferWrite{Buffer: direct}, direct},
		{"missing binding", BufferWrite{Provider: p, Binding: 9}, nil},
		{"empty", BufferWrite{}, nil},
	}
	for _, tt := range tests {
		if got := tt.write.Target(); got != tt.want {
			t.Errorf("%s: Target() = %p, want %p", tt.name, got, tt.want)
		}
	}
}
