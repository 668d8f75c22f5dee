package record

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Artifact naming, shared with the loader and any external tooling
// that consumes saved runs.
const (
	// DirName is the top-level directory holding all saved runs.
	DirName = "TICTOC_PERFORMANCE"

	// StepDataSuffix names the raw per-iteration step artifact.
	StepDataSuffix = "_STEP_DICT_DATA.json"

	// SummarySuffix names the aggregated summary artifact.
	SummarySuffix = "_STEP_DICT_SUMMARY.json"

	// MemorySuffix names the memory snapshot artifact.
	MemorySuffix = "_MEMORY.json"
)

// IterationInfo is the bookkeeping block attached to every formatted
// iteration.
type IterationInfo struct {
	StepNumber int `json:"STEP_NUMBER"`

	// StartTime and StopTime are wall-clock unix timestamps in seconds.
	// StopTime is 0 for an iteration that was still open at save time.
	StartTime float64 `json:"START_TIME"`
	StopTime  float64 `json:"STOP_TIME"`
}

// StepIterationRecord is the on-disk form of one iteration in the
// STEP_DICT_DATA artifact.
type StepIterationRecord struct {
	// Absolutes maps each topic to its total time in seconds across
	// all calls within the iteration.
	Absolutes map[string]float64 `json:"absolutes"`

	// Calls holds the individual samples per topic.
	Calls map[string][]StepSample `json:"individual_calls"`

	Info IterationInfo `json:"info"`
}

// MemoryIterationRecord is the on-disk form of one iteration in the
// MEMORY artifact.
type MemoryIterationRecord struct {
	Data map[string][]MemorySample `json:"data"`
	Info IterationInfo             `json:"info"`
}

// FormatStepData converts a snapshot into the on-disk artifact form.
func FormatStepData(snap StepSnapshot) []StepIterationRecord {
	records := make([]StepIterationRecord, 0, len(snap.Iterations))
	for n, it := range snap.Iterations {
		rec := StepIterationRecord{
			Absolutes: make(map[string]float64, len(it.Samples)),
			Calls:     make(map[string][]StepSample, len(it.Samples)),
			Info: IterationInfo{
				StepNumber: n,
				StartTime:  unixSeconds(it.StartTime),
				StopTime:   unixSeconds(it.StopTime),
			},
		}
		for topic, samples := range it.Samples {
			total := 0.0
			for _, s := range samples {
				total += s.Duration
			}
			rec.Absolutes[topic] = total
			rec.Calls[topic] = samples
		}
		records = append(records, rec)
	}
	return records
}

// FormatMemoryData converts a memory snapshot into the on-disk form.
func FormatMemoryData(snap MemorySnapshot) []MemoryIterationRecord {
	records := make([]MemoryIterationRecord, 0, len(snap.Iterations))
	for n, it := range snap.Iterations {
		records = append(records, MemoryIterationRecord{
			Data: it.Samples,
			Info: IterationInfo{
				StepNumber: n,
				StartTime:  unixSeconds(it.StartTime),
				StopTime:   unixSeconds(it.StopTime),
			},
		})
	}
	return records
}

// WriteStep writes the raw step data and summary artifacts for a
// snapshot. base is the per-benchmark path prefix, e.g.
// "TICTOC_PERFORMANCE/<ts>/<name>/<name>"; the two suffixes are
// appended to it. No recorder lock is held here.
func WriteStep(snap StepSnapshot, base string, opts SummaryOptions) error {
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	if err := writeJSON(base+StepDataSuffix, FormatStepData(snap)); err != nil {
		return err
	}
	return writeJSON(base+SummarySuffix, Summarize(snap, opts))
}

// WriteMemory writes the memory artifact for a snapshot.
func WriteMemory(snap MemorySnapshot, base string) error {
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return fmt.Errorf("creating artifact directory: %w", err)
	}
	return writeJSON(base+MemorySuffix, FormatMemoryData(snap))
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	return nil
}

func unixSeconds(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.UnixNano()) / float64(time.Second)
}
