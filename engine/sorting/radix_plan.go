package sorting

import "fmt"

// Kernel identifies one of the three radix sort compute pipelines.
type Kernel int

const (
	// KernelHistogram projects and culls splats, writes the keyed entries and counts digits per place.
	KernelHistogram Kernel = iota
	// KernelPrefixSum turns the global digit histograms into exclusive offsets.
	KernelPrefixSum
	// KernelScatter ranks one digit place per pass and scatters entries to the other buffer.
	KernelScatter
)

// String returns the name of the kernel, which is also the entry point suffix of its shader.
func (k Kernel) String() string {
	switch k {
	case KernelHistogram:
		return "radix_sort_a"
	case KernelPrefixSum:
		return "radix_sort_b"
	case KernelScatter:
		return "radix_sort_c"
	default:
		return fmt.Sprintf("Kernel(%d)", int(k))
	}
}

// ComputeRecorder receives the commands of a GPU radix sort in submission order.
type ComputeRecorder interface {
	// ClearSortingBuffer zeroes size bytes of the sorting buffer starting at offset.
	ClearSortingBuffer(offset, size uint64) error
	// Dispatch runs kernel with the compute bind group of the given pass.
	Dispatch(kernel Kernel, bindGroup int, x, y, z uint32) error
}

// Record emits the full radix sort of splatCount splats.
//
// The sequence is a clear of the whole sorting buffer, kernel A over every splat, kernel B over
// every digit place, then one kernel C dispatch per digit place. Passes after the first clear the
// tile status region first. Pass p binds compute bind group p, which reads entry buffer p%2 and
// writes the other one.
//
// Parameters:
//   - rec: the recorder receiving the commands
//   - splatCount: the number of splats in the scene
//
// Returns:
//   - error: the first error returned by rec
func (l RadixLayout) Record(rec ComputeRecorder, splatCount int) error {
	if err := rec.ClearSortingBuffer(0, l.SortingBufferSize()); err != nil {
		return err
	}
	if err := rec.Dispatch(KernelHistogram, 0, l.WorkgroupsA(splatCount), 1, 1); err != nil {
		return err
	}
	if err := rec.Dispatch(KernelPrefixSum, 0, 1, uint32(l.DigitPlaces), 1); err != nil {
		return err
	}

	tiles := l.WorkgroupsC(splatCount)
	for pass := range l.DigitPlaces {
		if pass > 0 {
			if err := rec.ClearSortingBuffer(0, l.TileStatusSize()); err != nil {
				return err
			}
		}
		if err := rec.Dispatch(KernelScatter, pass, 1, tiles, 1); err != nil {
			return err
		}
	}
	return nil
}
