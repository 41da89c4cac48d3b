package profiler

import (
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/splat-go/common"
)

// Phase is a timed section of a rendered frame.
type Phase int

const (
	// PhaseSort covers the CPU side of a frame: culling, sorting and uploads.
	PhaseSort Phase = iota
	// PhaseRecord covers command recording, from opening the encoder to closing the render pass.
	PhaseRecord
	// PhaseSubmit covers finishing the encoder and submitting it to the queue.
	PhaseSubmit

	phaseCount
)

func (p Phase) String() string {
	switch p {
	case PhaseSort:
		return "sort"
	case PhaseRecord:
		return "record"
	case PhaseSubmit:
		return "submit"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// Stats is one reporting interval.
type Stats struct {
	FPS         float64
	HeapMB      float64
	AllocRateMB float64
	SysMB       float64
	GCCount     uint32
	LastPauseUs uint64
	MaxPauseUs  uint64

	// PhaseAverages is the mean time per frame of each phase over the interval.
	PhaseAverages [phaseCount]time.Duration
}

// Profiler tracks frame rate, memory statistics and per-phase frame timings.
// Outputs stats to the engine logger at a configurable interval.
type Profiler struct {
	mu             sync.Mutex
	frameCount     int
	lastTime       time.Time
	updateInterval time.Duration
	memStats       runtime.MemStats
	lastGCCount    uint32
	lastTotalAlloc uint64

	phaseTotals [phaseCount]time.Duration
	last        Stats

	now func() time.Time
}

// NewProfiler creates a new Profiler. Update interval defaults to 1 second.
//
// Parameters:
//   - options: functional options to configure the profiler
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler(options ...ProfilerOption) *Profiler {
	p := &Profiler{
		updateInterval: time.Second,
		now:            time.Now,
	}
	for _, opt := range options {
		opt(p)
	}
	p.lastTime = p.now()
	return p
}

// Observe adds the duration of one phase of the current frame.
//
// Parameters:
//   - phase: the timed phase
//   - d: the time spent in it
func (p *Profiler) Observe(phase Phase, d time.Duration) {
	if phase < 0 || phase >= phaseCount {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.phaseTotals[phase] += d
}

// Tick should be called once per frame to track frame timing.
// Logs performance statistics when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were logged this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	s := Stats{
		FPS:         float64(p.frameCount) / elapsed.Seconds(),
		HeapMB:      float64(p.memStats.Alloc) / 1024 / 1024,
		SysMB:       float64(p.memStats.Sys) / 1024 / 1024,
		AllocRateMB: float64(p.memStats.TotalAlloc-p.lastTotalAlloc) / 1024 / 1024 / elapsed.Seconds(),
		GCCount:     p.memStats.NumGC,
	}

	if gcCount := p.memStats.NumGC; gcCount > 0 {
		// PauseNs is a circular buffer of the last 256 pauses
		s.LastPauseUs = p.memStats.PauseNs[(gcCount-1)%256] / 1000
		startIdx := p.lastGCCount
		if gcCount-startIdx > 256 {
			startIdx = gcCount - 256
		}
		for i := startIdx; i < gcCount; i++ {
			s.MaxPauseUs = max(s.MaxPauseUs, p.memStats.PauseNs[i%256]/1000)
		}
	}
	for i, total := range p.phaseTotals {
		s.PhaseAverages[i] = total / time.Duration(p.frameCount)
	}

	common.Logger().Info("profiler",
		"fps", fmt.Sprintf("%.2f", s.FPS),
		"heap_mb", fmt.Sprintf("%.2f", s.HeapMB),
		"alloc_rate_mb_s", fmt.Sprintf("%.2f", s.AllocRateMB),
		"gc", s.GCCount,
		"gc_last_us", s.LastPauseUs,
		"gc_max_us", s.MaxPauseUs,
		"sys_mb", fmt.Sprintf("%.2f", s.SysMB),
		PhaseSort.String(), s.PhaseAverages[PhaseSort],
		PhaseRecord.String(), s.PhaseAverages[PhaseRecord],
		PhaseSubmit.String(), s.PhaseAverages[PhaseSubmit],
	)

	p.last = s
	p.frameCount = 0
	p.lastTime = currentTime
	p.lastGCCount = s.GCCount
	p.lastTotalAlloc = p.memStats.TotalAlloc
	p.phaseTotals = [phaseCount]time.Duration{}
	return true
}

// Last returns the stats of the most recent reporting interval, zero before the first one.
func (p *Profiler) Last() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
