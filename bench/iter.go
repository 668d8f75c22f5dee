package bench

import (
	"iter"
	"log/slog"
)

// Iterate wraps a sequence so that each produced element is bracketed
// by one benchmark iteration: GStep opens the next iteration before
// the element is pulled, so the cost of producing the element is
// attributed to the iteration it belongs to. Exhaustion is discovered
// inside one last short iteration, which GStop closes along with any
// iteration still open when the consumer breaks.
//
// The adapter holds no lock of its own; correctness follows entirely
// from the Benchmarker's lock discipline.
//
//	for batch := range bench.Iterate(b, loader.Batches()) {
//	    process(batch)
//	    b.Step("process")
//	}
func Iterate[T any](b *Benchmarker, seq iter.Seq[T]) iter.Seq[T] {
	return func(yield func(T) bool) {
		next, stop := iter.Pull(seq)
		defer stop()
		defer func() {
			if err := b.GStop(); err != nil {
				slog.Warn("auto-save failed while closing iteration",
					"benchmark", b.Name(), "error", err)
			}
		}()
		for {
			b.GStep()
			v, ok := next()
			if !ok {
				return
			}
			if !yield(v) {
				return
			}
		}
	}
}

// Iter is the cursor form of Iterate for callers that cannot use a
// range loop. Close must be called when done early; exhausting the
// iterator closes it implicitly.
type Iter[T any] struct {
	next func() (T, bool)
	stop func()
	b    *Benchmarker
	done bool
}

// NewIter wraps a sequence in a cursor-style adapter.
func NewIter[T any](b *Benchmarker, seq iter.Seq[T]) *Iter[T] {
	next, stop := iter.Pull(seq)
	return &Iter[T]{next: next, stop: stop, b: b}
}

// Next opens the next benchmark iteration and then pulls the next
// element, so element production is timed inside that iteration. On
// exhaustion it closes the final iteration and reports false.
func (it *Iter[T]) Next() (T, bool) {
	if it.done {
		var zero T
		return zero, false
	}
	it.b.GStep()
	v, ok := it.next()
	if !ok {
		it.Close()
		var zero T
		return zero, false
	}
	return v, true
}

// Close releases the underlying sequence and finalizes any open
// iteration. It is idempotent.
func (it *Iter[T]) Close() {
	if it.done {
		return
	}
	it.done = true
	it.stop()
	if err := it.b.GStop(); err != nil {
		slog.Warn("auto-save failed while closing iteration",
			"benchmark", it.b.Name(), "error", err)
	}
}
