// Package clock provides the timing primitives used by the benchmarking
// recorders: a monotonic stopwatch, a poll-based countdown, and a
// frequency counter.
//
// All types measure elapsed time against Go's monotonic clock (the
// monotonic reading carried by time.Time), so wall-clock adjustments
// never produce negative or skewed readings.
//
// # Basic Usage
//
//	t := clock.NewTimer()
//	// ... work ...
//	elapsed := t.Toc()          // read without resetting
//	elapsed = t.TToc()          // read and reset
//
//	cd := clock.NewCountDownClock(5 * time.Second)
//	for !cd.Completed() {
//	    // poll, do work
//	}
//
// # Thread Safety
//
// Each instance is expected to be driven by a single logical caller,
// but reads are safe concurrently with that one writer: the start
// instant and counters are mutex-guarded.
package clock
