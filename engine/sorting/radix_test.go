package sorting

import (
	"errors"
	"math"
	"math/rand/v2"
	"slices"
	"testing"
)

func float32FromKey(k uint32) float32 {
	return math.Float32frombits(k)
}

func TestNewRadixLayout(t *testing.T) {
	l, err := NewRadixLayout(8, 1<<20)
	if err != nil {
		t.Fatalf("NewRadixLayout() error = %v", err)
	}

	checks := []struct {
		name      string
		got, want uint64
	}{
		{"Base", uint64(l.Base), 256},
		{"DigitPlaces", uint64(l.DigitPlaces), 4},
		{"WorkgroupEntriesA", uint64(l.WorkgroupEntriesA), 1024},
		{"WorkgroupEntriesC", uint64(l.WorkgroupEntriesC), 1024},
		{"MaxTileCountC", uint64(l.MaxTileCountC), 1024},
		{"TileStatusSize", l.TileStatusSize(), 256 * 1024 * 4},
		{"HistogramSize", l.HistogramSize(), 256 * 4 * 4},
		{"SortingBufferSize", l.SortingBufferSize(), 1048576 + 4096 + 20},
		{"IndirectDrawOffset", l.IndirectDrawOffset(), l.SortingBufferSize() - 20},
		{"EntryBufferSize", l.EntryBufferSize(), 8 << 20},
	}
	for _, c := range checks {
		if c.got != c.want {
			t.Errorf("%s = %d, want %d", c.name, c.got, c.want)
		}
	}

	odd, err := NewRadixLayout(3, 10)
	if err != nil {
		t.Fatalf("NewRadixLayout(3) error = %v", err)
	}
	if odd.DigitPlaces != 11 || odd.Base != 8 || odd.MaxTileCountC != 1 {
		t.Errorf("NewRadixLayout(3, 10) = places %d base %d tiles %d, want 11 8 1", odd.DigitPlaces, odd.Base, odd.MaxTileCountC)
	}
}

func TestNewRadixLayoutInvalid(t *testing.T) {
	tests := []struct {
		name      string
		bits, max int
	}{
		{"zero bits", 0, 100},
		{"negative bits", -4, 100},
		{"too many bits", 9, 100},
		{"zero capacity", 8, 0},
		{"capacity beyond tile counters", 8, 1 << 30},
		{"capacity beyond dispatch limit", 8, MaxWorkgroupsPerDimension*WorkgroupInvocationsC*EntriesPerInvocationC + 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewRadixLayout(tt.bits, tt.max); !errors.Is(err, ErrInvalidRadixLayout) {
				t.Errorf("NewRadixLayout(%d, %d) error = %v, want ErrInvalidRadixLayout", tt.bits, tt.max, err)
			}
		})
	}
}

func TestNewRadixLayoutDispatchLimit(t *testing.T) {
	limit := MaxWorkgroupsPerDimension * WorkgroupInvocationsC * EntriesPerInvocationC
	if got := MaxCapacity(); got != limit {
		t.Errorf("MaxCapacity() = %d, want %d", got, limit)
	}

	l, err := NewRadixLayout(8, limit)
	if err != nil {
		t.Fatalf("NewRadixLayout(8, %d) error = %v", limit, err)
	}
	if got := l.WorkgroupsC(limit); got != MaxWorkgroupsPerDimension {
		t.Errorf("WorkgroupsC(%d) = %d, want %d", limit, got, MaxWorkgroupsPerDimension)
	}
	if got := l.WorkgroupsA(limit); got > MaxWorkgroupsPerDimension {
		t.Errorf("WorkgroupsA(%d) = %d, want at most %d", limit, got, MaxWorkgroupsPerDimension)
	}
}

type recordedCommand struct {
	clear        bool
	offset, size uint64
	kernel       Kernel
	bindGroup    int
	x, y, z      uint32
}

type recorder struct {
	commands []recordedCommand
	failAt   int
	err      error
}

func (r *recorder) ClearSortingBuffer(offset, size uint64) error {
	if r.err != nil && len(r.commands) == r.failAt {
		return r.err
	}
	r.commands = append(r.commands, recordedCommand{clear: true, offset: offset, size: size})
	return nil
}

func (r *recorder) Dispatch(kernel Kernel, bindGroup int, x, y, z uint32) error {
	if r.err != nil && len(r.commands) == r.failAt {
		return r.err
	}
	r.commands = append(r.commands, recordedCommand{kernel: kernel, bindGroup: bindGroup, x: x, y: y, z: z})
	return nil
}

func TestRadixLayoutRecord(t *testing.T) {
	l, err := NewRadixLayout(8, 1<<20)
	if err != nil {
		t.Fatalf("NewRadixLayout() error = %v", err)
	}
	rec := &recorder{}
	if err := l.Record(rec, 5000); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	want := []recordedCommand{
		{clear: true, size: l.SortingBufferSize()},
		{kernel: KernelHistogram, bindGroup: 0, x: 5, y: 1, z: 1},
		{kernel: KernelPrefixSum, bindGroup: 0, x: 1, y: 4, z: 1},
		{kernel: KernelScatter, bindGroup: 0, x: 1, y: 5, z: 1},
		{clear: true, size: l.TileStatusSize()},
		{kernel: KernelScatter, bindGroup: 1, x: 1, y: 5, z: 1},
		{clear: true, size: l.TileStatusSize()},
		{kernel: KernelScatter, bindGroup: 2, x: 1, y: 5, z: 1},
		{clear: true, size: l.TileStatusSize()},
		{kernel: KernelScatter, bindGroup: 3, x: 1, y: 5, z: 1},
	}
	if !slices.Equal(rec.commands, want) {
		t.Errorf("Record() commands =\n%+v\nwant\n%+v", rec.commands, want)
	}
}

func TestRadixLayoutRecordError(t *testing.T) {
	l, _ := NewRadixLayout(8, 1024)
	boom := errors.New("encoder closed")
	rec := &recorder{failAt: 3, err: boom}
	if err := l.Record(rec, 10); !errors.Is(err, boom) {
		t.Errorf("Record() error = %v, want %v", err, boom)
	}
	if len(rec.commands) != 3 {
		t.Errorf("Record() recorded %d commands before failing, want 3", len(rec.commands))
	}
}

func TestEmulateRadixSortMatchesCPUSort(t *testing.T) {
	viewProj := testViewProj(t)
	positions := randomPositions(42, 5000)
	count := len(positions) / 3

	// Kernel A output: every splat in index order, culled ones with the sentinel key.
	keyed := make([]Entry, count)
	visible := 0
	for i := range count {
		z, ok := Project(viewProj, positions[i*3], positions[i*3+1], positions[i*3+2], 1.2)
		keyed[i] = Entry{Key: CulledKey, Index: uint32(i)}
		if ok {
			keyed[i].Key = DepthKey(z)
			visible++
		}
	}
	want := NewCPUSorter(WithWorkers(1)).Sort(viewProj, positions, count, 1.2)
	if len(want) != visible {
		t.Fatalf("CPU sort kept %d, want %d", len(want), visible)
	}

	for _, bits := range []int{1, 3, 4, 8} {
		l, err := NewRadixLayout(bits, count)
		if err != nil {
			t.Fatalf("NewRadixLayout(%d) error = %v", bits, err)
		}
		got := EmulateRadixSort(keyed, l)
		if len(got) != count {
			t.Fatalf("bits %d: EmulateRadixSort() len = %d, want %d", bits, len(got), count)
		}
		if !slices.Equal(got[:visible], want) {
			t.Errorf("bits %d: visible prefix differs from the CPU sort", bits)
		}
		for i, e := range got[visible:] {
			if e.Key != CulledKey {
				t.Errorf("bits %d: entry %d after the visible prefix has key %#x, want culled", bits, visible+i, e.Key)
				break
			}
		}
	}
}

func TestEmulateRadixSortStableAcrossTiles(t *testing.T) {
	l, err := NewRadixLayout(4, 5000)
	if err != nil {
		t.Fatalf("NewRadixLayout() error = %v", err)
	}
	rng := rand.New(rand.NewPCG(3, 4))
	in := make([]Entry, 4321)
	for i := range in {
		in[i] = Entry{Key: uint32(rng.IntN(16)) << 20, Index: uint32(i)}
	}

	want := slices.Clone(in)
	slices.SortStableFunc(want, compareEntries)
	got := EmulateRadixSort(in, l)
	if !slices.Equal(got, want) {
		t.Error("EmulateRadixSort() is not a stable sort")
	}
	if in[0].Index != 0 || in[len(in)-1].Index != uint32(len(in)-1) {
		t.Error("EmulateRadixSort() modified its input")
	}
}

func TestRadixLayoutResultBuffer(t *testing.T) {
	tests := []struct {
		bits, want int
	}{
		{8, 0}, // 4 places
		{3, 1}, // 11 places
		{1, 0}, // 32 places
		{5, 1}, // 7 places
	}
	for _, tt := range tests {
		l, _ := NewRadixLayout(tt.bits, 16)
		if got := l.ResultBuffer(); got != tt.want {
			t.Errorf("ResultBuffer() with %d bits = %d, want %d", tt.bits, got, tt.want)
		}
	}
}
