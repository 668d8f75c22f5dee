package bench

import (
	"context"
	"log/slog"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v4/process"

	"github.com/tictoc-bench/tictoc/record"
)

// MemoryRecorder tracks process memory across iterations: resident
// set size via the OS, Go heap usage, optional accelerator memory,
// and an optional background poller capturing peak usage between
// explicit step calls.
//
// The iteration lifecycle matches StepRecorder (Start/Step/GStep/
// GStop), but the memory path is strictly best-effort: a step while
// Idle, a failed RSS read, or a missing accelerator all degrade to
// "no data" rather than an error, so memory tracking can never abort
// the measured workload.
//
// Readings are collected outside the lock (they touch the OS) and
// stored under it, so the critical section stays in-memory only.
type MemoryRecorder struct {
	mu          sync.Mutex
	enabled     bool
	trackInStep bool
	trackAccel  bool
	accel       AcceleratorReader

	history []record.MemoryIteration
	current *record.MemoryIteration
	seq     int

	// peakRSS is the running peak shared with the background monitor.
	peakRSS  uint64
	trackMax bool
	monitor  *peakMonitor

	proc *process.Process
}

// NewMemoryRecorder returns a disabled recorder for the current
// process. The Benchmarker facade enables it on demand, matching the
// opt-in nature of memory tracking.
func NewMemoryRecorder() *MemoryRecorder {
	// The error path only triggers for a PID that no longer exists,
	// which cannot be our own.
	proc, _ := process.NewProcess(int32(os.Getpid()))
	return &MemoryRecorder{proc: proc}
}

// Enable turns the recorder on.
func (r *MemoryRecorder) Enable() {
	r.mu.Lock()
	r.enabled = true
	r.mu.Unlock()
}

// Disable turns the recorder off; all operations become no-ops.
func (r *MemoryRecorder) Disable() {
	r.mu.Lock()
	r.enabled = false
	r.mu.Unlock()
}

// EnableTrackInStep makes Step record a memory sample; without it only
// GStep/GStop boundaries are sampled.
func (r *MemoryRecorder) EnableTrackInStep() {
	r.mu.Lock()
	r.trackInStep = true
	r.mu.Unlock()
}

// SetAccelerator installs an accelerator memory reader. Pass nil to
// remove it; tracking is disabled alongside.
func (r *MemoryRecorder) SetAccelerator(a AcceleratorReader) {
	r.mu.Lock()
	r.accel = a
	if a == nil {
		r.trackAccel = false
	}
	r.mu.Unlock()
}

// EnableAcceleratorTracking switches on the accelerator channel. When
// no reader is installed this is a no-op with a warning, since
// accelerator support is best-effort by design.
func (r *MemoryRecorder) EnableAcceleratorTracking() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.accel == nil {
		slog.Warn("accelerator tracking requested but no accelerator is available")
		return
	}
	r.trackAccel = true
}

// DisableAcceleratorTracking switches off the accelerator channel.
func (r *MemoryRecorder) DisableAcceleratorTracking() {
	r.mu.Lock()
	r.trackAccel = false
	r.mu.Unlock()
}

// Start opens a new iteration, finalizing any open one first.
func (r *MemoryRecorder) Start() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	if r.current != nil {
		r.finalizeLocked()
	}
	r.openLocked()
}

// GStep finalizes the open iteration (recording a boundary sample) and
// opens a new one.
func (r *MemoryRecorder) GStep() {
	r.mu.Lock()
	enabled := r.enabled
	r.mu.Unlock()
	if !enabled {
		return
	}

	sample, ok := r.collect()
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return
	}
	if r.current != nil {
		if ok {
			r.storeLocked("gstep", sample)
		}
		r.finalizeLocked()
	}
	r.openLocked()
}

// GStop finalizes the open iteration into history; a no-op when Idle.
func (r *MemoryRecorder) GStop() {
	r.mu.Lock()
	active := r.enabled && r.current != nil
	r.mu.Unlock()
	if !active {
		return
	}

	sample, ok := r.collect()
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled || r.current == nil {
		return
	}
	if ok {
		r.storeLocked("gstop", sample)
	}
	r.finalizeLocked()
}

// Step records a memory sample under the topic when per-step tracking
// is enabled. Unlike the time path, a step while Idle records nothing
// and reports nothing: memory data is best-effort.
func (r *MemoryRecorder) Step(topic string) {
	r.mu.Lock()
	active := r.enabled && r.trackInStep && r.current != nil
	r.mu.Unlock()
	if !active {
		return
	}

	sample, ok := r.collect()
	if !ok {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.enabled && r.trackInStep && r.current != nil {
		r.storeLocked(topic, sample)
	}
}

// EnableMaxMemory starts a background goroutine polling peak RSS at
// the given interval. The poller shares the recorder's lock for the
// running peak and appends samples under record.TopicPeak while an
// iteration is open. Calling it twice is a no-op.
func (r *MemoryRecorder) EnableMaxMemory(pollInterval time.Duration) {
	if pollInterval <= 0 {
		pollInterval = 100 * time.Millisecond
	}

	r.mu.Lock()
	if r.monitor != nil {
		r.mu.Unlock()
		return
	}
	mon := newPeakMonitor()
	r.monitor = mon
	r.trackMax = true
	r.mu.Unlock()

	// The goroutine starts outside the lock; it only ever takes the
	// recorder lock for the store, never the reverse order.
	mon.wg.Add(1)
	go r.pollPeak(mon, pollInterval)
}

// DisableMaxMemory stops the background poller and waits for it to
// exit, observing the stop within one poll interval. Safe to call
// when no poller is running.
func (r *MemoryRecorder) DisableMaxMemory() {
	r.mu.Lock()
	mon := r.monitor
	r.monitor = nil
	r.trackMax = false
	r.mu.Unlock()

	if mon != nil {
		mon.cancel()
		mon.wg.Wait()
	}
}

// PeakRSS returns the running peak observed so far.
func (r *MemoryRecorder) PeakRSS() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.peakRSS
}

// Snapshot deep-copies the recorder state for persistence.
func (r *MemoryRecorder) Snapshot() record.MemorySnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := record.MemorySnapshot{
		Iterations: make([]record.MemoryIteration, 0, len(r.history)+1),
	}
	for _, it := range r.history {
		snap.Iterations = append(snap.Iterations, record.CloneMemoryIteration(it))
	}
	if r.current != nil {
		snap.Iterations = append(snap.Iterations, record.CloneMemoryIteration(*r.current))
		snap.InFlight = true
	}
	return snap
}

// pollPeak is the background monitor loop.
func (r *MemoryRecorder) pollPeak(mon *peakMonitor, interval time.Duration) {
	defer mon.wg.Done()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-mon.ctx.Done():
			return
		case <-ticker.C:
			sample, ok := r.collect()
			if !ok {
				continue
			}
			r.mu.Lock()
			if r.trackMax {
				if r.current != nil {
					r.storeLocked(record.TopicPeak, sample)
				} else if sample.RSS > r.peakRSS {
					r.peakRSS = sample.RSS
				}
			}
			r.mu.Unlock()
		}
	}
}

// collect reads the memory counters without holding the lock.
func (r *MemoryRecorder) collect() (record.MemorySample, bool) {
	sample := record.MemorySample{Timestamp: time.Now()}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	sample.HeapAlloc = memStats.HeapAlloc

	if r.proc != nil {
		if info, err := r.proc.MemoryInfo(); err == nil {
			sample.RSS = info.RSS
		}
	}

	r.mu.Lock()
	readAccel := r.trackAccel
	accel := r.accel
	r.mu.Unlock()

	if readAccel && accel != nil {
		if used, err := accel.UsedBytes(); err == nil {
			sample.Accelerator = used
			sample.AcceleratorOK = true
		}
	}
	return sample, true
}

// storeLocked appends a sample to the open iteration and advances the
// running peak. Caller holds the lock and guarantees current != nil.
func (r *MemoryRecorder) storeLocked(topic string, sample record.MemorySample) {
	if sample.RSS > r.peakRSS {
		r.peakRSS = sample.RSS
	}
	sample.MaxRSS = r.peakRSS
	sample.Seq = r.seq
	r.seq++
	r.current.Samples[topic] = append(r.current.Samples[topic], sample)
}

// openLocked begins a fresh iteration. Caller holds the lock.
func (r *MemoryRecorder) openLocked() {
	r.current = &record.MemoryIteration{
		StartTime: time.Now(),
		Samples:   make(map[string][]record.MemorySample),
	}
	r.seq = 0
}

// finalizeLocked closes the open iteration into history. Caller holds
// the lock and guarantees current != nil.
func (r *MemoryRecorder) finalizeLocked() {
	r.current.StopTime = time.Now()
	r.history = append(r.history, *r.current)
	r.current = nil
}

// peakMonitor carries the cancellation state of one background poller.
type peakMonitor struct {
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func newPeakMonitor() *peakMonitor {
	ctx, cancel := context.WithCancel(context.Background())
	return &peakMonitor{ctx: ctx, cancel: cancel}
}
