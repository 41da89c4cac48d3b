package scene

import (
	"sync"

	"github.com/Carmen-Shannon/splat-go/common"
	"github.com/Carmen-Shannon/splat-go/engine/renderer/bind_group_provider"
)

// Scene is the CPU-side splat store and the holder of its GPU bind groups.
// Every mutation marks the scene dirty; the renderer uploads the packed data and calls MarkClean.
// The scene never checks its size against a renderer capacity.
// Safe for concurrent access, but mutating while a frame is being recorded is the caller's responsibility.
type Scene interface {
	// SHOrder returns the spherical harmonics order every splat must match.
	//
	// Returns:
	//   - int: the order in [0, MaxSHOrder]
	SHOrder() int

	// SplatCount returns the number of splats.
	//
	// Returns:
	//   - int: the splat count
	SplatCount() int

	// Positions returns the world-space splat centers, 3 floats per splat.
	// The slice is owned by the scene and valid until the next mutation.
	//
	// Returns:
	//   - []float32: flat xyz positions
	Positions() []float32

	// SplatData returns the packed GPUSplat records, GPUSplatSize bytes per splat.
	// The slice is owned by the scene and valid until the next mutation.
	//
	// Returns:
	//   - []byte: the packed splat attributes
	SplatData() []byte

	// SHData returns the spherical harmonics coefficients, SHFloatsPerSplat(SHOrder()) floats per splat.
	// The slice is owned by the scene and valid until the next mutation.
	//
	// Returns:
	//   - []float32: the packed coefficients
	SHData() []float32

	// SetSplats replaces the scene content.
	//
	// Parameters:
	//   - splats: the new splats
	//
	// Returns:
	//   - error: ErrSHCoefficients if any splat's coefficient count does not match the order; the scene is unchanged
	SetSplats(splats []Splat) error

	// AppendSplats adds splats after the existing ones.
	//
	// Parameters:
	//   - splats: the splats to add
	//
	// Returns:
	//   - error: ErrSHCoefficients if any splat's coefficient count does not match the order; the scene is unchanged
	AppendSplats(splats []Splat) error

	// Clear removes every splat. GPU resources are kept.
	Clear()

	// Dirty reports whether the CPU data changed since the last MarkClean.
	//
	// Returns:
	//   - bool: true if an upload is pending
	Dirty() bool

	// MarkClean clears the dirty flag after an upload.
	MarkClean()

	// RenderBindGroup returns the render bind group provider, or nil before the renderer has set the scene up.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the render provider or nil
	RenderBindGroup() bind_group_provider.BindGroupProvider

	// ComputeBindGroups returns one provider per radix sort pass, or nil before setup or without GPU sorting.
	//
	// Returns:
	//   - []bind_group_provider.BindGroupProvider: the compute providers
	ComputeBindGroups() []bind_group_provider.BindGroupProvider

	// SetBindGroups installs the GPU bind groups created by the renderer. Any previous ones are released.
	//
	// Parameters:
	//   - render: the render provider
	//   - compute: the per-pass compute providers, may be nil
	SetBindGroups(render bind_group_provider.BindGroupProvider, compute []bind_group_provider.BindGroupProvider)

	// Release frees every scene-owned GPU resource. Buffers borrowed from the renderer are left alone.
	// The scene marks itself dirty so a later setup uploads again.
	Release()
}

type scene struct {
	mu *sync.RWMutex

	shOrder   int
	pending   []Splat
	positions []float32
	splatData []byte
	shData    []float32
	dirty     bool

	renderBindGroup   bind_group_provider.BindGroupProvider
	computeBindGroups []bind_group_provider.BindGroupProvider
}

var _ Scene = &scene{}

// NewScene creates an empty scene.
//
// Parameters:
//   - options: functional options to configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:      &sync.RWMutex{},
		shOrder: 2,
	}
	for _, option := range options {
		option(s)
	}
	s.shOrder = max(0, min(s.shOrder, MaxSHOrder))

	want := SHFloatsPerSplat(s.shOrder)
	kept := s.pending[:0]
	for _, sp := range s.pending {
		if len(sp.SH) == want {
			kept = append(kept, sp)
		}
	}
	if dropped := len(s.pending) - len(kept); dropped > 0 {
		common.Logger().Warn("initial splats dropped", "count", dropped, "sh_floats", want)
	}
	s.appendLocked(kept)
	s.pending = nil
	return s
}

func (s *scene) SHOrder() int {
	return s.shOrder
}

func (s *scene) SplatCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.positions) / 3
}

func (s *scene) Positions() []float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.positions
}

func (s *scene) SplatData() []byte {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.splatData
}

func (s *scene) SHData() []float32 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.shData
}

func (s *scene) SetSplats(splats []Splat) error {
	if err := validateSH(splats, SHFloatsPerSplat(s.shOrder)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	// fresh slices so callers holding the previous views are not overwritten
	s.positions = make([]float32, 0, len(splats)*3)
	s.splatData = make([]byte, 0, len(splats)*GPUSplatSize)
	s.shData = make([]float32, 0, len(splats)*SHFloatsPerSplat(s.shOrder))
	s.appendLocked(splats)
	return nil
}

func (s *scene) AppendSplats(splats []Splat) error {
	if err := validateSH(splats, SHFloatsPerSplat(s.shOrder)); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appendLocked(splats)
	return nil
}

// appendLocked packs splats onto the CPU arrays. Caller must hold the write lock.
func (s *scene) appendLocked(splats []Splat) {
	start := len(s.splatData)
	s.splatData = append(s.splatData, make([]byte, len(splats)*GPUSplatSize)...)
	for i := range splats {
		sp := &splats[i]
		s.positions = append(s.positions, sp.Position[0], sp.Position[1], sp.Position[2])
		g := sp.gpu()
		g.MarshalTo(s.splatData[start+i*GPUSplatSize:])
		s.shData = append(s.shData, sp.SH...)
	}
	s.dirty = true
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.positions = nil
	s.splatData = nil
	s.shData = nil
	s.dirty = true
}

func (s *scene) Dirty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dirty
}

func (s *scene) MarkClean() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}

func (s *scene) RenderBindGroup() bind_group_provider.BindGroupProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.renderBindGroup
}

func (s *scene) ComputeBindGroups() []bind_group_provider.BindGroupProvider {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.computeBindGroups
}

func (s *scene) SetBindGroups(render bind_group_provider.BindGroupProvider, compute []bind_group_provider.BindGroupProvider) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
	s.renderBindGroup = render
	s.computeBindGroups = compute
}

func (s *scene) Release() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.releaseLocked()
	s.dirty = true
}

// releaseLocked releases the providers. Caller must hold the write lock.
func (s *scene) releaseLocked() {
	for _, p := range s.computeBindGroups {
		if p != nil {
			p.Release()
		}
	}
	if s.renderBindGroup != nil {
		s.renderBindGroup.Release()
	}
	if s.renderBindGroup != nil || len(s.computeBindGroups) > 0 {
		common.Logger().Debug("scene bind groups released", "passes", len(s.computeBindGroups))
	}
	s.renderBindGroup = nil
	s.computeBindGroups = nil
}
