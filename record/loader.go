package record

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tictoc-bench/tictoc/clock"
)

// ErrNoRuns is returned when no saved run directory can be found.
var ErrNoRuns = errors.New("record: no saved runs found")

// Benchmark holds the three artifact payloads for one benchmark name.
type Benchmark struct {
	Steps   []StepIterationRecord
	Summary map[string]TopicSummary
	Memory  []MemoryIterationRecord
}

// Run is the structured content of one saved run directory.
type Run struct {
	Dir        string
	Benchmarks map[string]Benchmark
}

// LatestRun locates the newest run directory under
// <baseDir>/TICTOC_PERFORMANCE, ordered by the parsed directory
// timestamp. Entries that do not parse as timestamps are ignored.
func LatestRun(baseDir string) (string, error) {
	root := filepath.Join(baseDir, DirName)
	entries, err := os.ReadDir(root)
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoRuns
		}
		return "", fmt.Errorf("reading %s: %w", root, err)
	}

	var latest string
	var latestTime time.Time
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		ts, err := time.Parse(clock.TimestampLayout, e.Name())
		if err != nil {
			continue
		}
		if latest == "" || ts.After(latestTime) {
			latest = e.Name()
			latestTime = ts
		}
	}
	if latest == "" {
		return "", ErrNoRuns
	}
	return filepath.Join(root, latest), nil
}

// LoadRun reads every benchmark's artifacts from a run directory. A
// benchmark with a missing or unreadable artifact is skipped with an
// error recorded against the whole load only when nothing could be
// read at all.
func LoadRun(runDir string) (*Run, error) {
	entries, err := os.ReadDir(runDir)
	if err != nil {
		return nil, fmt.Errorf("reading run directory: %w", err)
	}

	run := &Run{Dir: runDir, Benchmarks: make(map[string]Benchmark)}
	var errs []error
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		name := e.Name()
		b, err := loadBenchmark(filepath.Join(runDir, name), name)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}
		run.Benchmarks[name] = b
	}
	if len(run.Benchmarks) == 0 {
		if len(errs) > 0 {
			return nil, errors.Join(errs...)
		}
		return nil, ErrNoRuns
	}
	return run, nil
}

func loadBenchmark(dir, name string) (Benchmark, error) {
	var b Benchmark
	base := filepath.Join(dir, name)

	if err := readJSON(base+StepDataSuffix, &b.Steps); err != nil {
		return b, err
	}
	if err := readJSON(base+SummarySuffix, &b.Summary); err != nil {
		return b, err
	}
	// The memory artifact is optional: a benchmark that never enabled
	// memory tracking still saves step data.
	if err := readJSON(base+MemorySuffix, &b.Memory); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return b, err
	}
	return b, nil
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ArtifactBase returns the per-benchmark file prefix inside a run
// directory, e.g. "<runDir>/<name>/<name>".
func ArtifactBase(runDir, name string) string {
	return filepath.Join(runDir, name, name)
}

// BenchmarkNames lists the benchmark names present in a run directory.
func BenchmarkNames(runDir string) ([]string, error) {
	entries, err := os.ReadDir(runDir)
	if err != nil {
		return nil, fmt.Errorf("reading run directory: %w", err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() && !strings.HasPrefix(e.Name(), ".") {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
