// Package config provides parsing and validation for benchmark
// scenario files consumed by the run command.
package config

import (
	"time"
)

// ScenarioFile is the root of a benchmark scenario.
//
// Example YAML:
//
//	name: "pipeline demo"
//	settings:
//	  outputDir: "."
//	  saveOnGStop: 1
//	  percentile: 75
//	memory:
//	  enabled: true
//	  maxMemoryPoll: 100ms
//	benchmarks:
//	  pipeline:
//	    iterations: 10
//	    steps:
//	      - topic: load
//	        work: sleep
//	        duration: 20ms
//	      - topic: transform
//	        work: allocate
//	        bytes: 4194304
type ScenarioFile struct {
	// Name of the scenario (for reporting)
	Name string `json:"name" yaml:"name"`

	// Description of the scenario (optional)
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Settings contains global settings for all benchmarks
	Settings Settings `json:"settings,omitempty" yaml:"settings,omitempty"`

	// Memory configures memory measurement
	Memory MemorySettings `json:"memory,omitempty" yaml:"memory,omitempty"`

	// Benchmarks defines the named workloads to run
	Benchmarks map[string]*BenchmarkConfig `json:"benchmarks" yaml:"benchmarks"`
}

// Settings contains global execution and persistence settings.
type Settings struct {
	// OutputDir is the directory the run directory is created under.
	// Defaults to the current directory.
	OutputDir string `json:"outputDir,omitempty" yaml:"outputDir,omitempty"`

	// SaveOnGStop writes artifacts every Nth completed iteration.
	// Zero disables periodic saving; a final save still happens.
	SaveOnGStop int `json:"saveOnGStop,omitempty" yaml:"saveOnGStop,omitempty"`

	// SaveOnStep saves all artifacts on every step.
	SaveOnStep bool `json:"saveOnStep,omitempty" yaml:"saveOnStep,omitempty"`

	// Percentile sets the outlier filter window for summaries.
	Percentile float64 `json:"percentile,omitempty" yaml:"percentile,omitempty"`

	// FilterBelow excludes values below this many seconds from the
	// filtered mean.
	FilterBelow float64 `json:"filterBelow,omitempty" yaml:"filterBelow,omitempty"`
}

// MemorySettings configures the memory side of each benchmark.
type MemorySettings struct {
	// Enabled turns memory measurement on.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// TrackInStep records a memory sample on every step, not just at
	// iteration boundaries.
	TrackInStep bool `json:"trackInStep,omitempty" yaml:"trackInStep,omitempty"`

	// MaxMemoryPoll enables background peak tracking at this interval.
	MaxMemoryPoll Duration `json:"maxMemoryPoll,omitempty" yaml:"maxMemoryPoll,omitempty"`
}

// BenchmarkConfig defines one named workload.
type BenchmarkConfig struct {
	// Iterations is the number of times the step list runs.
	Iterations int `json:"iterations" yaml:"iterations"`

	// Steps run in order within each iteration.
	Steps []StepConfig `json:"steps" yaml:"steps"`
}

// StepConfig defines one timed unit of synthetic work.
type StepConfig struct {
	// Topic labels the step in the recorded output.
	Topic string `json:"topic" yaml:"topic"`

	// Work selects the synthetic workload: "sleep", "allocate" or
	// "spin".
	Work string `json:"work" yaml:"work"`

	// Duration applies to sleep and spin work.
	Duration Duration `json:"duration,omitempty" yaml:"duration,omitempty"`

	// Bytes applies to allocate work.
	Bytes int `json:"bytes,omitempty" yaml:"bytes,omitempty"`
}

// Duration is a time.Duration that can be unmarshaled from JSON/YAML strings.
type Duration time.Duration

// GetDuration returns the duration or a default if zero.
func (d Duration) GetDuration(defaultValue time.Duration) time.Duration {
	if d == 0 {
		return defaultValue
	}
	return time.Duration(d)
}

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Duration(d).String() + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	s := string(b)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}

	if s == "" || s == "null" {
		*d = 0
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}

	if s == "" {
		*d = 0
		return nil
	}

	dur, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(dur)
	return nil
}
