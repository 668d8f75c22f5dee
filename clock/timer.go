package clock

import (
	"sync"
	"time"
)

// TimestampLayout is the layout used for run directory names and the
// absolute timestamps embedded in saved artifacts.
const TimestampLayout = "15:04-02:01:2006"

// Timestamp returns the current wall-clock time formatted with
// TimestampLayout.
func Timestamp() string {
	return time.Now().Format(TimestampLayout)
}

// Timer is a monotonic stopwatch.
//
// Tic records a start instant, Toc reads the elapsed time without
// resetting, and TToc reads and resets in one call. Repeated measured
// durations can be accumulated with Lap for later statistics.
type Timer struct {
	mu    sync.Mutex
	start time.Time
	laps  []time.Duration
}

// NewTimer returns a Timer whose start instant is now.
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// Tic resets the start instant to now.
func (t *Timer) Tic() {
	t.mu.Lock()
	t.start = time.Now()
	t.mu.Unlock()
}

// Toc returns the elapsed time since the last Tic without resetting.
func (t *Timer) Toc() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return time.Since(t.start)
}

// TToc returns the elapsed time since the last Tic and resets the
// start instant to now.
func (t *Timer) TToc() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	elapsed := now.Sub(t.start)
	t.start = now
	return elapsed
}

// Lap records the current elapsed time in the lap list and resets the
// start instant, so consecutive laps measure disjoint intervals.
func (t *Timer) Lap() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	elapsed := now.Sub(t.start)
	t.start = now
	t.laps = append(t.laps, elapsed)
	return elapsed
}

// Laps returns a copy of all recorded lap durations.
func (t *Timer) Laps() []time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]time.Duration, len(t.laps))
	copy(out, t.laps)
	return out
}

// CountDownClock is a Timer with a fixed duration. Completion is
// observed by polling; there is no blocking wait.
type CountDownClock struct {
	timer    *Timer
	mu       sync.Mutex
	duration time.Duration
}

// NewCountDownClock returns a countdown of the given duration,
// started now.
func NewCountDownClock(d time.Duration) *CountDownClock {
	return &CountDownClock{timer: NewTimer(), duration: d}
}

// SetCountDown restarts the clock with a new duration.
func (c *CountDownClock) SetCountDown(d time.Duration) {
	c.mu.Lock()
	c.duration = d
	c.mu.Unlock()
	c.timer.Tic()
}

// Reset restarts the clock with its current duration.
func (c *CountDownClock) Reset() {
	c.timer.Tic()
}

// TimeLeft returns the remaining time, clamped at zero.
func (c *CountDownClock) TimeLeft() time.Duration {
	c.mu.Lock()
	d := c.duration
	c.mu.Unlock()
	if left := d - c.timer.Toc(); left > 0 {
		return left
	}
	return 0
}

// Completed reports whether the countdown has elapsed.
func (c *CountDownClock) Completed() bool {
	c.mu.Lock()
	d := c.duration
	c.mu.Unlock()
	return c.timer.Toc() >= d
}
