package bench

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tictoc-bench/tictoc/clock"
	"github.com/tictoc-bench/tictoc/record"
)

// Registry is a concurrent, lazily-populating map from name to
// Benchmarker. Construct one explicitly and pass it to the code that
// measures; its lifetime is the process's unless Clear is called.
//
// The registry's lock guards only the name-to-instance map, never a
// Benchmarker's internal state. The check-and-create in GetOrCreate is
// atomic under that lock, so concurrent first access to one name
// always yields a single instance.
type Registry struct {
	mu           sync.Mutex
	benchmarkers map[string]*Benchmarker
	runDir       string

	saveConcurrency int
}

// NewRegistry returns a registry whose run directory is
// <baseDir>/TICTOC_PERFORMANCE/<run-timestamp>. An empty baseDir
// means the current working directory.
func NewRegistry(baseDir string) *Registry {
	r := &Registry{
		benchmarkers:    make(map[string]*Benchmarker),
		saveConcurrency: 4,
	}
	r.runDir = runDir(baseDir)
	return r
}

// SetBaseDir re-derives the run directory under a new base with a
// fresh timestamp. Benchmarkers created earlier keep their old save
// target.
func (r *Registry) SetBaseDir(baseDir string) {
	dir := runDir(baseDir)
	r.mu.Lock()
	r.runDir = dir
	r.mu.Unlock()
}

// RunDir returns the directory new benchmarkers will save under.
func (r *Registry) RunDir() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.runDir
}

// GetOrCreate returns the Benchmarker for the name, creating it on
// first access. Creation and insertion happen atomically under the
// registry lock.
func (r *Registry) GetOrCreate(name string) *Benchmarker {
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok := r.benchmarkers[name]; ok {
		return b
	}
	b := New(name, record.ArtifactBase(r.runDir, name))
	r.benchmarkers[name] = b
	return b
}

// Names returns the currently registered benchmark names.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.benchmarkers))
	for name := range r.benchmarkers {
		names = append(names, name)
	}
	return names
}

// EnableAll enables every registered benchmarker. The map is
// snapshotted under the lock and the calls happen outside it.
func (r *Registry) EnableAll() {
	for _, b := range r.snapshot() {
		b.Enable()
	}
}

// DisableAll disables every registered benchmarker.
func (r *Registry) DisableAll() {
	for _, b := range r.snapshot() {
		b.Disable()
	}
}

// Clear drops all registered benchmarkers. Any background peak
// monitors are stopped first so nothing leaks.
func (r *Registry) Clear() {
	for _, b := range r.snapshot() {
		b.Memory().DisableMaxMemory()
	}
	r.mu.Lock()
	r.benchmarkers = make(map[string]*Benchmarker)
	r.mu.Unlock()
}

// Save persists every registered benchmarker. Failures are isolated
// per name: one benchmark failing to write never prevents the others
// from saving, and the joined error reports each failure.
func (r *Registry) Save(ctx context.Context) error {
	snapshot := r.snapshot()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(r.saveConcurrency)

	var mu sync.Mutex
	var errs []error
	for name, b := range snapshot {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}
			if err := b.Save(); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("saving %q: %w", name, err))
				mu.Unlock()
			}
			// Collected rather than returned: a failure must not cancel
			// the sibling saves.
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// snapshot copies the current map under the lock so iteration happens
// outside it.
func (r *Registry) snapshot() map[string]*Benchmarker {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string]*Benchmarker, len(r.benchmarkers))
	for name, b := range r.benchmarkers {
		out[name] = b
	}
	return out
}

func runDir(baseDir string) string {
	return filepath.Join(baseDir, record.DirName, clock.Timestamp())
}
