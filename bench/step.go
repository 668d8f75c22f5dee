package bench

import (
	"errors"
	"sync"
	"time"

	"github.com/tictoc-bench/tictoc/clock"
	"github.com/tictoc-bench/tictoc/record"
)

// ErrNotStarted is returned by Step when no iteration is open. A step
// outside an iteration indicates a logic error attributing a
// measurement to no iteration, so it is reported rather than silently
// creating one.
var ErrNotStarted = errors.New("bench: step called with no open iteration")

// StepRecorder tracks one benchmark's iteration history: an ordered
// list of finalized iterations, each mapping step topics to elapsed
// times, plus at most one open iteration accepting steps.
//
// The recorder is a two-state machine. It is Idle when no iteration is
// open and Open otherwise. Start opens an iteration (finalizing any
// previous one first, never losing its steps), Step records a sample
// into the open iteration, GStop finalizes (a no-op when Idle), and
// GStep is GStop followed by Start.
//
// All methods are safe for concurrent use. The lock covers only the
// in-memory state change; no I/O happens under it.
type StepRecorder struct {
	mu      sync.Mutex
	enabled bool

	stepTimer   *clock.Timer // since the later of iteration start and previous step
	globalTimer *clock.Timer // since iteration start

	history []record.StepIteration
	current *record.StepIteration
	seq     int
}

// NewStepRecorder returns an enabled, Idle recorder.
func NewStepRecorder() *StepRecorder {
	return &StepRecorder{
		enabled:     true,
		stepTimer:   clock.NewTimer(),
		globalTimer: clock.NewTimer(),
	}
}

// Enable turns the recorder on.
func (r *StepRecorder) Enable() {
	r.mu.Lock()
	r.enabled = true
	r.mu.Unlock()
}

// Disable turns the recorder off; all operations become no-ops.
func (r *StepRecorder) Disable() {
	r.mu.Lock()
	r.enabled = false
	r.mu.Unlock()
}

// Start opens a new iteration. If one is already open it is finalized
// into history first, exactly as if GStop had been called.
func (r *StepRecorder) Start() {
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

// Step records the elapsed time since the later of the iteration start
// and the previous Step call under the given topic. Repeated calls
// with one topic append additional samples. Calling Step while Idle
// returns ErrNotStarted without mutating any state.
func (r *StepRecorder) Step(topic string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled {
		return nil
	}
	if r.current == nil {
		return ErrNotStarted
	}
	r.recordLocked(topic, r.stepTimer.TToc())
	return nil
}

// GStop finalizes the open iteration into history and reports whether
// anything was finalized. Calling it while Idle is a no-op, so
// defensive stops are always safe.
func (r *StepRecorder) GStop() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !r.enabled || r.current == nil {
		return false
	}
	r.finalizeLocked()
	return true
}

// GStep finalizes the open iteration (if any) and opens a new one.
func (r *StepRecorder) GStep() {
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

// Open reports whether an iteration is currently accepting steps.
func (r *StepRecorder) Open() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current != nil
}

// Len returns the number of finalized iterations.
func (r *StepRecorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

// Snapshot deep-copies the recorder state for persistence. The open
// iteration, when present, is appended last with InFlight set. The
// lock is held only for the copy, never for serialization.
func (r *StepRecorder) Snapshot() record.StepSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := record.StepSnapshot{
		Iterations: make([]record.StepIteration, 0, len(r.history)+1),
	}
	for _, it := range r.history {
		snap.Iterations = append(snap.Iterations, record.CloneStepIteration(it))
	}
	if r.current != nil {
		snap.Iterations = append(snap.Iterations, record.CloneStepIteration(*r.current))
		snap.InFlight = true
	}
	return snap
}

// openLocked begins a fresh iteration. Caller holds the lock.
func (r *StepRecorder) openLocked() {
	r.current = &record.StepIteration{
		StartTime: time.Now(),
		Samples:   make(map[string][]record.StepSample),
	}
	r.seq = 0
	r.stepTimer.Tic()
	r.globalTimer.Tic()
}

// finalizeLocked closes the open iteration into history, stamping the
// whole-iteration wall time under TopicGlobal. Caller holds the lock
// and guarantees current != nil.
func (r *StepRecorder) finalizeLocked() {
	if _, ok := r.current.Samples[record.TopicGlobal]; !ok {
		r.recordLocked(record.TopicGlobal, r.globalTimer.TToc())
	}
	r.current.StopTime = time.Now()
	r.history = append(r.history, *r.current)
	r.current = nil
}

// recordLocked appends one sample to the open iteration. Caller holds
// the lock and guarantees current != nil.
func (r *StepRecorder) recordLocked(topic string, elapsed time.Duration) {
	r.current.Samples[topic] = append(r.current.Samples[topic], record.StepSample{
		Duration:  elapsed.Seconds(),
		Seq:       r.seq,
		Timestamp: time.Now(),
	})
	r.seq++
}
