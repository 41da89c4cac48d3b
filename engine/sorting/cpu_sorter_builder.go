package sorting

import (
	"runtime"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
)

// DefaultMinChunkSize is the smallest number of splats handed to one worker.
// Scenes below this size are sorted on the calling goroutine.
const DefaultMinChunkSize = 4096

// CPUSorterOption configures a CPUSorter.
type CPUSorterOption func(*cpuSorterImpl)

// WithWorkers sets the number of worker goroutines used to cull and sort chunks in parallel.
//
// Parameters:
//   - n: the number of workers (minimum 1)
//
// Returns:
//   - CPUSorterOption: a function that applies the worker count
func WithWorkers(n int) CPUSorterOption {
	return func(s *cpuSorterImpl) {
		s.workers = max(n, 1)
	}
}

// WithMinChunkSize sets the smallest chunk handed to one worker.
//
// Parameters:
//   - n: the chunk size in splats (minimum 1)
//
// Returns:
//   - CPUSorterOption: a function that applies the chunk size
func WithMinChunkSize(n int) CPUSorterOption {
	return func(s *cpuSorterImpl) {
		s.minChunk = max(n, 1)
	}
}

// NewCPUSorter creates a CPUSorter backed by a dynamic worker pool.
//
// Parameters:
//   - options: functional options to configure the sorter
//
// Returns:
//   - CPUSorter: the new sorter
func NewCPUSorter(options ...CPUSorterOption) CPUSorter {
	s := &cpuSorterImpl{
		workers:  max(runtime.NumCPU()-1, 1),
		minChunk: DefaultMinChunkSize,
	}

	for _, option := range options {
		option(s)
	}

	// Workers are reused across frames and idle-exit after a second without work.
	s.pool = worker.NewDynamicWorkerPool(s.workers, 256, 1*time.Second)
	return s
}
