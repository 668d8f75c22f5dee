package record

import "time"

// Topic names reserved by the recorders. User steps may reuse them,
// but the summary treats GLOBAL specially and the peak monitor writes
// under TopicPeak.
const (
	// TopicGlobal records the whole iteration's wall time on finalize.
	TopicGlobal = "GLOBAL"

	// TopicPeak is the topic used by the background peak-memory monitor.
	TopicPeak = "peak"
)

// StepSample is a single timed sub-step within an iteration.
type StepSample struct {
	// Duration is the elapsed time in seconds since the later of the
	// iteration start and the previous step call.
	Duration float64 `json:"time"`

	// Seq is the call order within the iteration, shared across topics.
	Seq int `json:"seq"`

	// Timestamp is the absolute wall-clock time of the call.
	Timestamp time.Time `json:"timestamp"`
}

// StepIteration is one finalized (or in-flight) iteration of step
// samples keyed by topic. Repeated calls with the same topic append.
type StepIteration struct {
	StartTime time.Time
	StopTime  time.Time // zero while in flight
	Samples   map[string][]StepSample
}

// StepSnapshot is an immutable copy of a step recorder's state.
type StepSnapshot struct {
	// Iterations holds the completed history; when InFlight is true the
	// last element is the still-open iteration.
	Iterations []StepIteration
	InFlight   bool
}

// MemorySample is a single memory reading.
type MemorySample struct {
	// RSS is the process resident set size in bytes.
	RSS uint64 `json:"rss"`

	// HeapAlloc is the Go heap in use, from runtime.MemStats.
	HeapAlloc uint64 `json:"heap_alloc"`

	// MaxRSS is the running peak RSS observed so far, zero unless peak
	// tracking is enabled.
	MaxRSS uint64 `json:"max_rss,omitempty"`

	// Accelerator is the accelerator memory in use, in bytes. Only
	// meaningful when AcceleratorOK is true.
	Accelerator   uint64 `json:"accelerator,omitempty"`
	AcceleratorOK bool   `json:"accelerator_ok,omitempty"`

	Seq       int       `json:"seq"`
	Timestamp time.Time `json:"timestamp"`
}

// MemoryIteration is one iteration's memory samples keyed by topic.
type MemoryIteration struct {
	StartTime time.Time
	StopTime  time.Time
	Samples   map[string][]MemorySample
}

// MemorySnapshot is an immutable copy of a memory recorder's state.
type MemorySnapshot struct {
	Iterations []MemoryIteration
	InFlight   bool
}

// CloneStepIteration deep-copies an iteration so the recorder can keep
// mutating its live state after the snapshot is taken.
func CloneStepIteration(it StepIteration) StepIteration {
	out := StepIteration{
		StartTime: it.StartTime,
		StopTime:  it.StopTime,
		Samples:   make(map[string][]StepSample, len(it.Samples)),
	}
	for topic, samples := range it.Samples {
		copied := make([]StepSample, len(samples))
		copy(copied, samples)
		out.Samples[topic] = copied
	}
	return out
}

// CloneMemoryIteration deep-copies a memory iteration.
func CloneMemoryIteration(it MemoryIteration) MemoryIteration {
	out := MemoryIteration{
		StartTime: it.StartTime,
		StopTime:  it.StopTime,
		Samples:   make(map[string][]MemorySample, len(it.Samples)),
	}
	for topic, samples := range it.Samples {
		copied := make([]MemorySample, len(samples))
		copy(copied, samples)
		out.Samples[topic] = copied
	}
	return out
}
