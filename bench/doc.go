// Package bench provides thread-safe wall-clock and memory
// benchmarking of repeated iterations of a workload.
//
// A Benchmarker composes a StepRecorder (timing) and a MemoryRecorder
// (RSS and optional accelerator memory) behind one lifecycle:
//
//	b := bench.New("train", "TICTOC_PERFORMANCE/12:30-01:02:2026/train")
//	for i := 0; i < epochs; i++ {
//	    b.GStep()                  // close previous iteration, open next
//	    loadBatch()
//	    b.Step("load")
//	    forward()
//	    b.Step("forward")
//	}
//	b.GStop()
//	b.Save()
//
// A Registry manages named Benchmarkers with atomic first-access
// creation, so concurrent goroutines sharing a name always observe the
// same instance:
//
//	reg := bench.NewRegistry()
//	reg.GetOrCreate("pipeline").GStep()
//	...
//	reg.Save(ctx)
//
// # Concurrency
//
// Every recorder owns exactly one mutex guarding only its own state.
// Locks are held for the in-memory critical section only and are
// always released before calling into another component or performing
// I/O, so no two recorder locks are ever held by one goroutine and
// save latency never blocks measurement calls. Interleaved calls from
// multiple goroutines on one Benchmarker are serialized in lock
// acquisition order; callers needing one logical iteration per
// goroutine should use distinct names.
package bench
