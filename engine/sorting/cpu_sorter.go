package sorting

import (
	"cmp"
	"slices"
	"sync"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/go-gl/mathgl/mgl32"
)

// CPUSorter culls splats against the view frustum and orders the survivors by depth on the CPU.
type CPUSorter interface {
	// Sort projects the first count positions through viewProj, drops the ones outside the
	// culling volume and returns the rest ordered by ascending depth key. Splats with equal
	// keys keep their original relative order.
	//
	// The returned slice is owned by the sorter and is overwritten by the next call.
	// Sort must not be called concurrently.
	//
	// Parameters:
	//   - viewProj: the view-projection matrix of the frame
	//   - positions: world positions, 3 floats per splat
	//   - count: the number of splats to consider
	//   - tolerance: the culling tolerance
	//
	// Returns:
	//   - []Entry: the visible splats, nearest first
	Sort(viewProj mgl32.Mat4, positions []float32, count int, tolerance float32) []Entry
}

type cpuSorterImpl struct {
	pool     worker.DynamicWorkerPool
	workers  int
	minChunk int

	chunks  [][]Entry
	buf     []Entry
	scratch []Entry
}

var _ CPUSorter = &cpuSorterImpl{}

func (s *cpuSorterImpl) Sort(viewProj mgl32.Mat4, positions []float32, count int, tolerance float32) []Entry {
	count = min(count, len(positions)/3)
	if count <= 0 {
		return s.buf[:0]
	}

	chunkCount := min(s.workers, (count+s.minChunk-1)/s.minChunk)
	if chunkCount <= 1 {
		s.buf = cullChunk(s.buf[:0], viewProj, positions, 0, count, tolerance)
		slices.SortStableFunc(s.buf, compareEntries)
		return s.buf
	}

	for len(s.chunks) < chunkCount {
		s.chunks = append(s.chunks, nil)
	}
	chunkLen := (count + chunkCount - 1) / chunkCount

	// Each chunk is culled and sorted by its own task. The WaitGroup is the
	// per-frame barrier; the pool itself only drains on idle exit.
	var wg sync.WaitGroup
	for c := range chunkCount {
		lo := c * chunkLen
		hi := min(lo+chunkLen, count)
		wg.Add(1)
		s.pool.SubmitTask(worker.Task{
			ID: c,
			Do: func() (any, error) {
				defer wg.Done()
				out := cullChunk(s.chunks[c][:0], viewProj, positions, lo, hi, tolerance)
				slices.SortStableFunc(out, compareEntries)
				s.chunks[c] = out
				return nil, nil
			},
		})
	}
	wg.Wait()

	// Concatenate the sorted runs in index order, then merge neighbours pairwise.
	s.buf = s.buf[:0]
	bounds := make([]int, 1, chunkCount+1)
	for c := range chunkCount {
		s.buf = append(s.buf, s.chunks[c]...)
		bounds = append(bounds, len(s.buf))
	}
	s.scratch = slices.Grow(s.scratch[:0], len(s.buf))[:len(s.buf)]

	merged, spare := mergeRuns(s.buf, s.scratch, bounds)
	s.buf, s.scratch = merged, spare
	return s.buf
}

// cullChunk appends an Entry for every visible splat in [lo, hi) to dst in index order.
func cullChunk(dst []Entry, viewProj mgl32.Mat4, positions []float32, lo, hi int, tolerance float32) []Entry {
	for i := lo; i < hi; i++ {
		p := positions[i*3 : i*3+3]
		z, ok := Project(viewProj, p[0], p[1], p[2], tolerance)
		if !ok {
			continue
		}
		dst = append(dst, Entry{Key: DepthKey(z), Index: uint32(i)})
	}
	return dst
}

func compareEntries(a, b Entry) int {
	return cmp.Compare(a.Key, b.Key)
}

// mergeRuns merges the sorted runs of buf delimited by bounds until one run is left.
// It ping-pongs between buf and scratch and returns the merged slice and the spare one.
func mergeRuns(buf, scratch []Entry, bounds []int) ([]Entry, []Entry) {
	for len(bounds) > 2 {
		next := make([]int, 1, len(bounds)/2+2)
		i := 0
		for ; i+2 < len(bounds); i += 2 {
			lo, mid, hi := bounds[i], bounds[i+1], bounds[i+2]
			mergeInto(scratch[lo:hi], buf[lo:mid], buf[mid:hi])
			next = append(next, hi)
		}
		if i+1 < len(bounds) {
			lo, hi := bounds[i], bounds[i+1]
			copy(scratch[lo:hi], buf[lo:hi])
			next = append(next, hi)
		}
		bounds = next
		buf, scratch = scratch, buf
	}
	return buf, scratch
}

// mergeInto merges a and b into dst. On equal keys a wins, which keeps the merge stable.
func mergeInto(dst, a, b []Entry) {
	i, j, k := 0, 0, 0
	for i < len(a) && j < len(b) {
		if b[j].Key < a[i].Key {
			dst[k] = b[j]
			j++
		} else {
			dst[k] = a[i]
			i++
		}
		k++
	}
	k += copy(dst[k:], a[i:])
	copy(dst[k:], b[j:])
}
