package bench

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tictoc-bench/tictoc/record"
)

func TestRegistry_GetOrCreate(t *testing.T) {
	reg := NewRegistry(t.TempDir())

	a := reg.GetOrCreate("train")
	b := reg.GetOrCreate("train")
	c := reg.GetOrCreate("eval")

	assert.Same(t, a, b, "same name must return the same instance")
	assert.NotSame(t, a, c)
	assert.ElementsMatch(t, []string{"train", "eval"}, reg.Names())
}

// Concurrent first access to one name must create exactly one instance.
func TestRegistry_ConcurrentFirstAccess(t *testing.T) {
	reg := NewRegistry(t.TempDir())

	const goroutines = 32
	results := make([]*Benchmarker, goroutines)

	var start, done sync.WaitGroup
	start.Add(1)
	for g := 0; g < goroutines; g++ {
		done.Add(1)
		go func(i int) {
			defer done.Done()
			start.Wait() // maximize contention on the first access
			results[i] = reg.GetOrCreate("x")
		}(g)
	}
	start.Done()
	done.Wait()

	for i := 1; i < goroutines; i++ {
		require.Same(t, results[0], results[i],
			"goroutine %d observed a different instance", i)
	}
	require.Len(t, reg.Names(), 1)
}

// N goroutines hammering one shared benchmarker must not lose samples.
func TestRegistry_ConcurrentStepStress(t *testing.T) {
	reg := NewRegistry(t.TempDir())

	b := reg.GetOrCreate("worker")
	b.Start()

	const goroutines = 10
	const stepsPer = 100

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < stepsPer; i++ {
				// All goroutines resolve the shared instance through the
				// registry, mixing map reads with recorder mutation.
				if err := reg.GetOrCreate("worker").Step("op"); err != nil {
					t.Errorf("Step() = %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()
	require.NoError(t, b.GStop())

	snap := b.Steps().Snapshot()
	total := 0
	for _, it := range snap.Iterations {
		total += len(it.Samples["op"])
	}
	assert.Equal(t, goroutines*stepsPer, total, "lost or duplicated samples")
}

func TestRegistry_PerWorkerNames(t *testing.T) {
	reg := NewRegistry(t.TempDir())

	const goroutines = 8
	const iterations = 25

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			name := "worker_" + string(rune('a'+id))
			for i := 0; i < iterations; i++ {
				b := reg.GetOrCreate(name)
				b.Start()
				if err := b.Step("op"); err != nil {
					t.Errorf("Step() = %v", err)
				}
				if err := b.GStop(); err != nil {
					t.Errorf("GStop() = %v", err)
				}
			}
		}(g)
	}
	wg.Wait()

	require.Len(t, reg.Names(), goroutines)
	for _, name := range reg.Names() {
		b := reg.GetOrCreate(name)
		assert.Equal(t, iterations, b.Steps().Len(),
			"benchmark %q lost iterations", name)
	}
}

func TestRegistry_Save(t *testing.T) {
	base := t.TempDir()
	reg := NewRegistry(base)

	for _, name := range []string{"alpha", "beta"} {
		b := reg.GetOrCreate(name)
		b.Start()
		require.NoError(t, b.Step("work"))
		require.NoError(t, b.GStop())
	}

	require.NoError(t, reg.Save(context.Background()))

	runDir, err := record.LatestRun(base)
	require.NoError(t, err)
	run, err := record.LoadRun(runDir)
	require.NoError(t, err)

	assert.Contains(t, run.Benchmarks, "alpha")
	assert.Contains(t, run.Benchmarks, "beta")
}

// A failure saving one name must not prevent the others from saving.
func TestRegistry_SavePartialFailure(t *testing.T) {
	base := t.TempDir()
	reg := NewRegistry(base)

	good := reg.GetOrCreate("good")
	good.Start()
	require.NoError(t, good.GStop())

	bad := reg.GetOrCreate("bad")
	bad.Start()
	require.NoError(t, bad.GStop())
	// Block the bad benchmark's artifact directory with a plain file.
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Dir(bad.base)), 0o755))
	require.NoError(t, os.WriteFile(filepath.Dir(bad.base), []byte("in the way"), 0o644))

	err := reg.Save(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")

	// The good benchmark still saved.
	_, statErr := os.Stat(good.base + record.StepDataSuffix)
	assert.NoError(t, statErr, "sibling save was aborted by an unrelated failure")
}

func TestRegistry_Clear(t *testing.T) {
	reg := NewRegistry(t.TempDir())

	b := reg.GetOrCreate("x")
	b.Memory().Enable()
	b.Memory().EnableMaxMemory(10 * time.Millisecond)

	reg.Clear()
	require.Empty(t, reg.Names())

	// A new instance is created after Clear.
	b2 := reg.GetOrCreate("x")
	assert.NotSame(t, b, b2)
}

func TestRegistry_SetBaseDir(t *testing.T) {
	reg := NewRegistry(t.TempDir())
	first := reg.RunDir()

	other := t.TempDir()
	reg.SetBaseDir(other)
	assert.NotEqual(t, first, reg.RunDir())
	assert.Contains(t, reg.RunDir(), other)
}
