package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Work kinds accepted in a step.
const (
	WorkSleep    = "sleep"
	WorkAllocate = "allocate"
	WorkSpin     = "spin"
)

// Load reads and parses a scenario file. YAML is a superset of JSON,
// so both extensions work.
func Load(path string) (*ScenarioFile, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("scenario file not found: %s", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading scenario file: %w", err)
	}

	var scenario ScenarioFile
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("error parsing scenario file: %w", err)
	}

	return &scenario, nil
}

// ValidationError represents a scenario validation error
type ValidationError struct {
	Path    string
	Message string
}

// Error returns the error message
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Message)
}

// Validate checks a parsed scenario for structural problems. All
// problems are reported, not just the first.
func Validate(scenario *ScenarioFile) []ValidationError {
	var errors []ValidationError

	if len(scenario.Benchmarks) == 0 {
		errors = append(errors, ValidationError{
			Path:    "benchmarks",
			Message: "at least one benchmark is required",
		})
	}

	if scenario.Settings.SaveOnGStop < 0 {
		errors = append(errors, ValidationError{
			Path:    "settings.saveOnGStop",
			Message: "must not be negative",
		})
	}
	if p := scenario.Settings.Percentile; p < 0 || p >= 100 {
		errors = append(errors, ValidationError{
			Path:    "settings.percentile",
			Message: "must be in [0, 100)",
		})
	}

	for name, b := range scenario.Benchmarks {
		errors = append(errors, validateBenchmark(name, b)...)
	}

	return errors
}

func validateBenchmark(name string, b *BenchmarkConfig) []ValidationError {
	var errors []ValidationError
	path := fmt.Sprintf("benchmarks.%s", name)

	if b == nil {
		return []ValidationError{{Path: path, Message: "benchmark is empty"}}
	}
	if b.Iterations <= 0 {
		errors = append(errors, ValidationError{
			Path:    path + ".iterations",
			Message: "must be at least 1",
		})
	}
	if len(b.Steps) == 0 {
		errors = append(errors, ValidationError{
			Path:    path + ".steps",
			Message: "at least one step is required",
		})
	}

	for i, step := range b.Steps {
		stepPath := fmt.Sprintf("%s.steps[%d]", path, i)
		if step.Topic == "" {
			errors = append(errors, ValidationError{
				Path:    stepPath + ".topic",
				Message: "topic is required",
			})
		}
		switch step.Work {
		case WorkSleep, WorkSpin:
			if step.Duration <= 0 {
				errors = append(errors, ValidationError{
					Path:    stepPath + ".duration",
					Message: fmt.Sprintf("%s work requires a positive duration", step.Work),
				})
			}
		case WorkAllocate:
			if step.Bytes <= 0 {
				errors = append(errors, ValidationError{
					Path:    stepPath + ".bytes",
					Message: "allocate work requires a positive byte count",
				})
			}
		default:
			errors = append(errors, ValidationError{
				Path:    stepPath + ".work",
				Message: fmt.Sprintf("unknown work kind %q (valid: sleep, allocate, spin)", step.Work),
			})
		}
	}

	return errors
}
