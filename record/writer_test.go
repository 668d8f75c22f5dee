package record

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleStepSnapshot() StepSnapshot {
	start := time.Now().Add(-time.Second)
	return StepSnapshot{
		Iterations: []StepIteration{
			{
				StartTime: start,
				StopTime:  start.Add(500 * time.Millisecond),
				Samples: map[string][]StepSample{
					"load":      {{Duration: 0.1, Seq: 0, Timestamp: start}},
					"forward":   {{Duration: 0.2, Seq: 1, Timestamp: start}, {Duration: 0.25, Seq: 2, Timestamp: start}},
					TopicGlobal: {{Duration: 0.55, Seq: 3, Timestamp: start}},
				},
			},
			{
				StartTime: start.Add(time.Second),
				Samples: map[string][]StepSample{
					"load": {{Duration: 0.12, Seq: 0, Timestamp: start}},
				},
			},
		},
		InFlight: true,
	}
}

func TestFormatStepData(t *testing.T) {
	records := FormatStepData(sampleStepSnapshot())
	require.Len(t, records, 2)

	first := records[0]
	assert.Equal(t, 0, first.Info.StepNumber)
	assert.InDelta(t, 0.45, first.Absolutes["forward"], 1e-9, "absolutes sum per topic")
	assert.Len(t, first.Calls["forward"], 2)
	assert.NotZero(t, first.Info.StartTime)
	assert.NotZero(t, first.Info.StopTime)

	// In-flight iteration: stop time is 0 by contract.
	second := records[1]
	assert.Equal(t, 1, second.Info.StepNumber)
	assert.Zero(t, second.Info.StopTime)
}

// A written artifact reparsed from disk reproduces identical per-topic
// sample counts and values.
func TestWriteStep_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "bench", "bench")
	snap := sampleStepSnapshot()

	require.NoError(t, WriteStep(snap, base, DefaultSummaryOptions()))

	raw, err := os.ReadFile(base + StepDataSuffix)
	require.NoError(t, err)

	var reparsed []StepIterationRecord
	require.NoError(t, json.Unmarshal(raw, &reparsed))

	original := FormatStepData(snap)
	require.Len(t, reparsed, len(original))
	for i := range original {
		assert.Equal(t, len(original[i].Calls), len(reparsed[i].Calls), "iteration %d topic count", i)
		for topic, calls := range original[i].Calls {
			require.Len(t, reparsed[i].Calls[topic], len(calls), "topic %q", topic)
			for j := range calls {
				assert.InDelta(t, calls[j].Duration, reparsed[i].Calls[topic][j].Duration, 1e-12)
				assert.Equal(t, calls[j].Seq, reparsed[i].Calls[topic][j].Seq)
			}
		}
		for topic, total := range original[i].Absolutes {
			assert.InDelta(t, total, reparsed[i].Absolutes[topic], 1e-12)
		}
	}

	// The summary artifact is written alongside and parses cleanly.
	rawSummary, err := os.ReadFile(base + SummarySuffix)
	require.NoError(t, err)
	var summary map[string]TopicSummary
	require.NoError(t, json.Unmarshal(rawSummary, &summary))
	assert.Contains(t, summary, "load")
	assert.False(t, math.IsNaN(summary["load"].QuantileFiltered))
}

func TestWriteMemory_RoundTrip(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "bench", "bench")

	snap := MemorySnapshot{
		Iterations: []MemoryIteration{{
			StartTime: time.Now(),
			StopTime:  time.Now(),
			Samples: map[string][]MemorySample{
				"gstop": {{RSS: 1 << 20, HeapAlloc: 1 << 19, MaxRSS: 1 << 21, Seq: 0, Timestamp: time.Now()}},
				TopicPeak: {
					{RSS: 1 << 21, HeapAlloc: 1 << 19, MaxRSS: 1 << 21, Seq: 1, Timestamp: time.Now()},
				},
			},
		}},
	}

	require.NoError(t, WriteMemory(snap, base))

	raw, err := os.ReadFile(base + MemorySuffix)
	require.NoError(t, err)
	var reparsed []MemoryIterationRecord
	require.NoError(t, json.Unmarshal(raw, &reparsed))

	require.Len(t, reparsed, 1)
	assert.EqualValues(t, 1<<20, reparsed[0].Data["gstop"][0].RSS)
	assert.Len(t, reparsed[0].Data[TopicPeak], 1)
}

func TestCloneStepIteration(t *testing.T) {
	it := StepIteration{
		Samples: map[string][]StepSample{"x": {{Duration: 1}}},
	}
	clone := CloneStepIteration(it)
	clone.Samples["x"][0].Duration = 2
	clone.Samples["y"] = nil

	assert.Equal(t, 1.0, it.Samples["x"][0].Duration, "clone shares sample storage")
	assert.NotContains(t, it.Samples, "y", "clone shares map storage")
}
