package bench

// AcceleratorReader reports memory usage of an accelerator device
// (GPU, TPU). The library ships no device bindings of its own;
// integrations install a reader on the MemoryRecorder at configuration
// time. When no reader is installed, accelerator tracking is a
// documented no-op: enabling it logs a warning and memory samples
// simply carry no accelerator channel.
type AcceleratorReader interface {
	// Name identifies the device for logs, e.g. "cuda:0".
	Name() string

	// UsedBytes returns the accelerator memory currently in use. A read
	// failure degrades to "no data for this channel" and never aborts
	// the caller's workload.
	UsedBytes() (uint64, error)
}
