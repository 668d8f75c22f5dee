package bench

import (
	"sync"

	"github.com/tictoc-bench/tictoc/record"
)

// Benchmarker composes one StepRecorder and one MemoryRecorder behind
// a unified lifecycle, plus the auto-save policy.
//
// Every lifecycle call delegates to the time recorder first and the
// memory recorder second, as two independent critical sections: the
// facade never holds one recorder's lock while acquiring the other's.
// The facade's own small mutex guards only the save policy counters.
type Benchmarker struct {
	name string
	base string // artifact path prefix, e.g. <run-dir>/<name>/<name>

	steps  *StepRecorder
	memory *MemoryRecorder

	mu              sync.Mutex
	saveOnGStop     int
	saveOnStep      bool
	stops           int
	timeMemorySteps bool
	summaryOpts     record.SummaryOptions
}

// New returns a Benchmarker saving artifacts under the given path
// prefix. The memory recorder starts disabled; call
// EnableMemoryTracking to opt in.
func New(name, base string) *Benchmarker {
	return &Benchmarker{
		name:        name,
		base:        base,
		steps:       NewStepRecorder(),
		memory:      NewMemoryRecorder(),
		summaryOpts: record.DefaultSummaryOptions(),
	}
}

// Name returns the benchmark's name.
func (b *Benchmarker) Name() string { return b.name }

// Steps exposes the underlying time recorder.
func (b *Benchmarker) Steps() *StepRecorder { return b.steps }

// Memory exposes the underlying memory recorder.
func (b *Benchmarker) Memory() *MemoryRecorder { return b.memory }

// Enable turns both recorders on.
func (b *Benchmarker) Enable() {
	b.steps.Enable()
	b.memory.Enable()
}

// Disable turns both recorders off.
func (b *Benchmarker) Disable() {
	b.steps.Disable()
	b.memory.Disable()
}

// EnableMemoryTracking opts in to memory snapshots at iteration
// boundaries. With perStep, every Step call also records one. The
// cost of taking the samples is itself timed, under "<topic>_MEMORY_STEP"
// for steps and "gstep_memory" for iteration boundaries, so memory
// overhead stays visible in the step data.
func (b *Benchmarker) EnableMemoryTracking(perStep bool) {
	b.memory.Enable()
	if perStep {
		b.memory.EnableTrackInStep()
	}
	b.mu.Lock()
	b.timeMemorySteps = true
	b.mu.Unlock()
}

// SetSaveOnGStop makes every nth GStop trigger a save. Zero disables
// the policy.
func (b *Benchmarker) SetSaveOnGStop(n int) {
	b.mu.Lock()
	b.saveOnGStop = n
	b.mu.Unlock()
}

// SetSaveOnStep makes every Step persist all artifacts, trading I/O
// for crash resilience in long iterations.
func (b *Benchmarker) SetSaveOnStep(on bool) {
	b.mu.Lock()
	b.saveOnStep = on
	b.mu.Unlock()
}

// SetSummaryOptions overrides the aggregation options used at save
// time.
func (b *Benchmarker) SetSummaryOptions(opts record.SummaryOptions) {
	b.mu.Lock()
	b.summaryOpts = opts
	b.mu.Unlock()
}

// Start opens a new iteration on both recorders.
func (b *Benchmarker) Start() {
	b.steps.Start()
	b.memory.Start()
}

// Step records a timed sub-step (and, when enabled, a memory sample)
// under the topic. It returns ErrNotStarted when no iteration is
// open.
func (b *Benchmarker) Step(topic string) error {
	err := b.steps.Step(topic)
	b.memory.Step(topic)

	b.mu.Lock()
	saveOnStep := b.saveOnStep
	timeMemory := b.timeMemorySteps
	b.mu.Unlock()

	if timeMemory && err == nil {
		// Time spent sampling memory shows up as its own sub-step.
		_ = b.steps.Step(topic + "_MEMORY_STEP")
	}
	if saveOnStep {
		if werr := b.Save(); werr != nil && err == nil {
			err = werr
		}
	}
	return err
}

// GStep closes the open iteration (if any) and starts the next one on
// both recorders.
func (b *Benchmarker) GStep() {
	b.steps.GStep()
	b.memory.GStep()

	b.mu.Lock()
	timeMemory := b.timeMemorySteps
	b.mu.Unlock()
	if timeMemory {
		_ = b.steps.Step("gstep_memory")
	}
}

// GStop finalizes the open iteration, then evaluates the auto-save
// policy. The save, when triggered, works on snapshots taken after
// both recorder locks are released.
func (b *Benchmarker) GStop() error {
	finalized := b.steps.GStop()
	b.memory.GStop()
	if !finalized {
		return nil
	}

	b.mu.Lock()
	b.stops++
	shouldSave := b.saveOnGStop > 0 && b.stops%b.saveOnGStop == 0
	b.mu.Unlock()

	if shouldSave {
		return b.Save()
	}
	return nil
}

// Save persists the three JSON artifacts from fresh snapshots. No
// recorder lock is held during serialization or file I/O, so saving
// never blocks other goroutines' measurement calls.
func (b *Benchmarker) Save() error {
	stepSnap := b.steps.Snapshot()
	memSnap := b.memory.Snapshot()

	b.mu.Lock()
	opts := b.summaryOpts
	b.mu.Unlock()

	if err := record.WriteStep(stepSnap, b.base, opts); err != nil {
		return err
	}
	if len(memSnap.Iterations) == 0 {
		return nil
	}
	return record.WriteMemory(memSnap, b.base)
}
