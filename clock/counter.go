package clock

import (
	"sync"
	"time"
)

// TimedCounter pairs a Timer with a monotonically increasing count and
// reports the observed event frequency.
//
// A disabled counter turns every method into a no-op, so callers can
// leave instrumentation in place and switch it off in production.
type TimedCounter struct {
	mu        sync.Mutex
	timer     *Timer
	count     int64
	stopTime  time.Duration
	stopCount int64
	enabled   bool
}

// NewTimedCounter returns an enabled TimedCounter.
func NewTimedCounter() *TimedCounter {
	return &TimedCounter{timer: NewTimer(), enabled: true}
}

// Start resets the timer if no events have been counted yet.
func (tc *TimedCounter) Start() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if !tc.enabled {
		return
	}
	if tc.count == 0 {
		tc.timer.Tic()
	}
}

// Stop freezes the current elapsed time and count so Frequency keeps
// reporting the rate observed up to this point.
func (tc *TimedCounter) Stop() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if !tc.enabled {
		return
	}
	tc.stopTime = tc.timer.Toc()
	tc.stopCount = tc.count
}

// Count increments the counter by one.
func (tc *TimedCounter) Count() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if !tc.enabled {
		return
	}
	tc.count++
}

// Frequency returns the average count rate in events per second.
// It returns 0 when no time has elapsed or nothing was counted.
func (tc *TimedCounter) Frequency() float64 {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if !tc.enabled {
		return 0
	}
	count, elapsed := tc.count, tc.timer.Toc()
	if tc.stopTime > 0 {
		count, elapsed = tc.stopCount, tc.stopTime
	}
	if elapsed <= 0 || count == 0 {
		return 0
	}
	return float64(count) / elapsed.Seconds()
}

// Reset restarts the timer and zeroes the counter.
func (tc *TimedCounter) Reset() {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	if !tc.enabled {
		return
	}
	tc.timer.Tic()
	tc.count = 0
	tc.stopTime = 0
	tc.stopCount = 0
}

// Disable switches the counter off. Subsequent calls are no-ops and
// Frequency returns 0.
func (tc *TimedCounter) Disable() {
	tc.mu.Lock()
	tc.enabled = false
	tc.mu.Unlock()
}
