package record

import (
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tictoc-bench/tictoc/clock"
)

func TestValidateArtifact_AcceptsWrittenOutput(t *testing.T) {
	stepData, err := json.Marshal(FormatStepData(sampleStepSnapshot()))
	require.NoError(t, err)
	assert.NoError(t, ValidateArtifact(ArtifactStepData, stepData))

	summary, err := json.Marshal(Summarize(sampleStepSnapshot(), DefaultSummaryOptions()))
	require.NoError(t, err)
	assert.NoError(t, ValidateArtifact(ArtifactSummary, summary))

	memory, err := json.Marshal(FormatMemoryData(MemorySnapshot{
		Iterations: []MemoryIteration{{
			Samples: map[string][]MemorySample{"gstop": {{RSS: 1, Seq: 0}}},
		}},
	}))
	require.NoError(t, err)
	assert.NoError(t, ValidateArtifact(ArtifactMemory, memory))
}

func TestValidateArtifact_RejectsWrongShape(t *testing.T) {
	tests := []struct {
		name string
		kind ArtifactKind
		data string
	}{
		{"step data not an array", ArtifactStepData, `{"absolutes": {}}`},
		{"step data missing info", ArtifactStepData, `[{"absolutes": {}, "individual_calls": {}}]`},
		{"negative duration", ArtifactStepData,
			`[{"absolutes": {"x": -1}, "individual_calls": {}, "info": {"STEP_NUMBER": 0, "START_TIME": 0, "STOP_TIME": 0}}]`},
		{"summary missing count", ArtifactSummary,
			`{"x": {"mean": 1, "min": 0, "max": 2, "quantile_filtered": 1}}`},
		{"memory sample missing rss", ArtifactMemory,
			`[{"data": {"gstop": [{"seq": 0}]}, "info": {}}]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateArtifact(tt.kind, []byte(tt.data)))
		})
	}
}

func TestValidateArtifact_RejectsMalformedJSON(t *testing.T) {
	assert.Error(t, ValidateArtifact(ArtifactStepData, []byte("{")))
}

func TestValidateBenchmarkDir(t *testing.T) {
	base := t.TempDir()
	stamp := time.Now().Format(clock.TimestampLayout)
	runDir := filepath.Join(base, DirName, stamp)
	require.NoError(t, WriteStep(sampleStepSnapshot(), ArtifactBase(runDir, "train"), DefaultSummaryOptions()))

	// Memory artifact absent: still valid, it is optional.
	assert.NoError(t, ValidateBenchmarkDir(runDir, "train"))

	// Missing step artifacts are an error.
	assert.Error(t, ValidateBenchmarkDir(runDir, "missing"))
}
