package record

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Artifact kinds, used to pick the schema a payload is validated
// against.
type ArtifactKind int

const (
	ArtifactStepData ArtifactKind = iota
	ArtifactSummary
	ArtifactMemory
)

func (k ArtifactKind) String() string {
	switch k {
	case ArtifactStepData:
		return "step data"
	case ArtifactSummary:
		return "summary"
	case ArtifactMemory:
		return "memory"
	}
	return "unknown"
}

// JSON schemas for the three persisted artifacts. External tooling
// reading saved runs can rely on these shapes.
const stepDataSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["absolutes", "individual_calls", "info"],
    "properties": {
      "absolutes": {
        "type": "object",
        "additionalProperties": {"type": "number", "minimum": 0}
      },
      "individual_calls": {
        "type": "object",
        "additionalProperties": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["time", "seq"],
            "properties": {
              "time": {"type": "number", "minimum": 0},
              "seq": {"type": "integer", "minimum": 0},
              "timestamp": {"type": "string"}
            }
          }
        }
      },
      "info": {
        "type": "object",
        "required": ["STEP_NUMBER", "START_TIME", "STOP_TIME"],
        "properties": {
          "STEP_NUMBER": {"type": "integer", "minimum": 0},
          "START_TIME": {"type": "number"},
          "STOP_TIME": {"type": "number"}
        }
      }
    }
  }
}`

const summarySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "object",
  "additionalProperties": {
    "type": "object",
    "required": ["mean", "min", "max", "quantile_filtered", "count"],
    "properties": {
      "mean": {"type": "number"},
      "min": {"type": "number"},
      "max": {"type": "number"},
      "quantile_filtered": {"type": "number"},
      "count": {"type": "integer", "minimum": 0}
    }
  }
}`

const memorySchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "items": {
    "type": "object",
    "required": ["data", "info"],
    "properties": {
      "data": {
        "type": "object",
        "additionalProperties": {
          "type": "array",
          "items": {
            "type": "object",
            "required": ["rss", "seq"],
            "properties": {
              "rss": {"type": "integer", "minimum": 0},
              "heap_alloc": {"type": "integer", "minimum": 0},
              "max_rss": {"type": "integer", "minimum": 0},
              "accelerator": {"type": "integer", "minimum": 0},
              "seq": {"type": "integer", "minimum": 0}
            }
          }
        }
      },
      "info": {"type": "object"}
    }
  }
}`

// ValidateArtifact checks a raw payload against the schema for its
// kind. A schema violation is returned as an error naming the failing
// locations.
func ValidateArtifact(kind ArtifactKind, data []byte) error {
	var schemaDoc string
	switch kind {
	case ArtifactStepData:
		schemaDoc = stepDataSchema
	case ArtifactSummary:
		schemaDoc = summarySchema
	case ArtifactMemory:
		schemaDoc = memorySchema
	default:
		return fmt.Errorf("unknown artifact kind %d", kind)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("artifact.json", strings.NewReader(schemaDoc)); err != nil {
		return fmt.Errorf("loading %s schema: %w", kind, err)
	}
	schema, err := compiler.Compile("artifact.json")
	if err != nil {
		return fmt.Errorf("compiling %s schema: %w", kind, err)
	}

	var payload any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("parsing %s artifact: %w", kind, err)
	}

	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("%s artifact invalid: %w", kind, err)
	}
	return nil
}

// ValidateBenchmarkDir validates every artifact present for one
// benchmark inside a run directory. Missing optional artifacts are
// skipped.
func ValidateBenchmarkDir(runDir, name string) error {
	base := ArtifactBase(runDir, name)
	checks := []struct {
		kind ArtifactKind
		path string
	}{
		{ArtifactStepData, base + StepDataSuffix},
		{ArtifactSummary, base + SummarySuffix},
		{ArtifactMemory, base + MemorySuffix},
	}

	for _, c := range checks {
		data, err := os.ReadFile(c.path)
		if err != nil {
			if os.IsNotExist(err) && c.kind == ArtifactMemory {
				continue
			}
			return fmt.Errorf("%s: %w", name, err)
		}
		if err := ValidateArtifact(c.kind, data); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}
