package sorting

import (
	"errors"
	"fmt"
)

// Kernel geometry shared with the radix WGSL sources.
const (
	WorkgroupInvocationsA = 256
	EntriesPerInvocationA = 4
	WorkgroupInvocationsC = 256
	EntriesPerInvocationC = 4

	// MaxRadixBitsPerDigit bounds the digit width. Kernel C keeps one counter per digit value
	// in workgroup memory, and the prefix scan walks the digits of a place in one invocation.
	MaxRadixBitsPerDigit = 8

	// IndirectDrawArgsSize is the size of the tail block read by an indirect draw:
	// vertex count, instance count, first vertex, first instance and one reserved word.
	IndirectDrawArgsSize = 5 * 4

	// MaxWorkgroupsPerDimension is the WebGPU limit on a single dispatch dimension. Kernels A and C
	// dispatch one dimension of workgroups, which bounds the capacity.
	MaxWorkgroupsPerDimension = 65535

	// tileCountBits is the width of the count stored in a tile status word. The two high bits hold the flags.
	tileCountBits = 30
)

// Tile status flags used by the decoupled look-back of kernel C.
const (
	TileFlagAggregate uint32 = 1 << tileCountBits
	TileFlagInclusive uint32 = 2 << tileCountBits
	TileCountMask     uint32 = 1<<tileCountBits - 1
)

// ErrInvalidRadixLayout is returned when the digit width or capacity cannot be sorted by the kernels.
var ErrInvalidRadixLayout = errors.New("invalid radix layout")

// RadixLayout describes the GPU radix sort of a renderer: digit geometry, workgroup sizes and
// the byte layout of the sorting buffer.
//
// The sorting buffer holds, in order:
//   - the tile status words of kernel C, Base per tile
//   - the global digit histograms, Base per digit place (exclusive prefix sums after kernel B)
//   - the indirect draw arguments, IndirectDrawArgsSize bytes
type RadixLayout struct {
	BitsPerDigit int
	Base         int
	DigitPlaces  int

	WorkgroupInvocationsA int
	EntriesPerInvocationA int
	WorkgroupEntriesA     int

	WorkgroupInvocationsC int
	EntriesPerInvocationC int
	WorkgroupEntriesC     int

	MaxSplatCount int
	MaxTileCountC int
}

// NewRadixLayout derives the radix sort layout from the digit width and the splat capacity.
//
// Parameters:
//   - bitsPerDigit: the number of key bits sorted per pass, in [1, MaxRadixBitsPerDigit]
//   - maxSplatCount: the capacity every buffer is sized for
//
// Returns:
//   - RadixLayout: the derived layout
//   - error: ErrInvalidRadixLayout if the parameters are out of range
func NewRadixLayout(bitsPerDigit, maxSplatCount int) (RadixLayout, error) {
	if bitsPerDigit <= 0 {
		return RadixLayout{}, fmt.Errorf("%w: %d bits per digit gives no digit places", ErrInvalidRadixLayout, bitsPerDigit)
	}
	if bitsPerDigit > MaxRadixBitsPerDigit {
		return RadixLayout{}, fmt.Errorf("%w: %d bits per digit exceeds %d", ErrInvalidRadixLayout, bitsPerDigit, MaxRadixBitsPerDigit)
	}
	if maxSplatCount <= 0 || uint64(maxSplatCount) > uint64(TileCountMask) {
		return RadixLayout{}, fmt.Errorf("%w: capacity %d outside [1, %d]", ErrInvalidRadixLayout, maxSplatCount, TileCountMask)
	}

	l := RadixLayout{
		BitsPerDigit:          bitsPerDigit,
		Base:                  1 << bitsPerDigit,
		DigitPlaces:           (32 + bitsPerDigit - 1) / bitsPerDigit,
		WorkgroupInvocationsA: WorkgroupInvocationsA,
		EntriesPerInvocationA: EntriesPerInvocationA,
		WorkgroupEntriesA:     WorkgroupInvocationsA * EntriesPerInvocationA,
		WorkgroupInvocationsC: WorkgroupInvocationsC,
		EntriesPerInvocationC: EntriesPerInvocationC,
		WorkgroupEntriesC:     WorkgroupInvocationsC * EntriesPerInvocationC,
		MaxSplatCount:         maxSplatCount,
	}
	l.MaxTileCountC = (maxSplatCount + l.WorkgroupEntriesC - 1) / l.WorkgroupEntriesC
	if maxSplatCount > MaxCapacity() {
		return RadixLayout{}, fmt.Errorf("%w: capacity %d needs more than %d workgroups per dispatch", ErrInvalidRadixLayout, maxSplatCount, MaxWorkgroupsPerDimension)
	}
	return l, nil
}

// MaxCapacity returns the largest splat count a single dispatch of kernel A or C can cover.
func MaxCapacity() int {
	entries := min(WorkgroupInvocationsA*EntriesPerInvocationA, WorkgroupInvocationsC*EntriesPerInvocationC)
	return min(int(TileCountMask), MaxWorkgroupsPerDimension*entries)
}

// Digit extracts the digit of key at the given place, least significant place first.
func (l RadixLayout) Digit(key uint32, place int) uint32 {
	return (key >> uint(place*l.BitsPerDigit)) & uint32(l.Base-1)
}

// TileStatusSize returns the size in bytes of the tile status region at the start of the sorting buffer.
// It is cleared before every scatter pass after the first.
func (l RadixLayout) TileStatusSize() uint64 {
	return uint64(l.Base) * uint64(l.MaxTileCountC) * 4
}

// HistogramOffset returns the byte offset of the global digit histograms.
func (l RadixLayout) HistogramOffset() uint64 {
	return l.TileStatusSize()
}

// HistogramSize returns the size in bytes of the global digit histograms.
func (l RadixLayout) HistogramSize() uint64 {
	return uint64(l.Base) * uint64(l.DigitPlaces) * 4
}

// IndirectDrawOffset returns the byte offset of the indirect draw arguments,
// always SortingBufferSize() - IndirectDrawArgsSize.
func (l RadixLayout) IndirectDrawOffset() uint64 {
	return l.HistogramOffset() + l.HistogramSize()
}

// SortingBufferSize returns the total size in bytes of the sorting buffer.
func (l RadixLayout) SortingBufferSize() uint64 {
	return l.IndirectDrawOffset() + IndirectDrawArgsSize
}

// EntryBufferSize returns the size in bytes of one entry buffer sized for the capacity.
func (l RadixLayout) EntryBufferSize() uint64 {
	return uint64(l.MaxSplatCount) * EntrySize
}

// WorkgroupsA returns the number of kernel A workgroups needed for n splats.
func (l RadixLayout) WorkgroupsA(n int) uint32 {
	return uint32((n + l.WorkgroupEntriesA - 1) / l.WorkgroupEntriesA)
}

// WorkgroupsC returns the number of kernel C workgroups (tiles) needed for n splats.
func (l RadixLayout) WorkgroupsC(n int) uint32 {
	return uint32((n + l.WorkgroupEntriesC - 1) / l.WorkgroupEntriesC)
}

// ResultBuffer returns which of the two ping-pong entry buffers holds the sorted entries
// once every pass has run: 0 for the first, 1 for the second.
func (l RadixLayout) ResultBuffer() int {
	return l.DigitPlaces % 2
}
