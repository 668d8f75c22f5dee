package cli

import (
	"testing"
	"time"

	"github.com/tictoc-bench/tictoc/internal/config"
	"github.com/tictoc-bench/tictoc/toggles"
)

func TestApplyToggles(t *testing.T) {
	tests := []struct {
		name       string
		bits       string
		wantMemory bool
		wantPeak   time.Duration
		wantOnStep bool
	}{
		{"all off", "00000000", false, 0, false},
		{"force memory", "00000001", true, 0, false},
		{"force peak", "00000010", true, 100 * time.Millisecond, false},
		{"save on step", "00000100", false, 0, true},
		{"everything", "00000111", true, 100 * time.Millisecond, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			set := toggles.Parse(tt.bits)

			scenario := &config.ScenarioFile{}
			applyToggles(scenario, set)

			if scenario.Memory.Enabled != tt.wantMemory {
				t.Errorf("memory enabled = %v, want %v", scenario.Memory.Enabled, tt.wantMemory)
			}
			if got := scenario.Memory.MaxMemoryPoll.GetDuration(0); got != tt.wantPeak {
				t.Errorf("peak poll = %v, want %v", got, tt.wantPeak)
			}
			if scenario.Settings.SaveOnStep != tt.wantOnStep {
				t.Errorf("saveOnStep = %v, want %v", scenario.Settings.SaveOnStep, tt.wantOnStep)
			}
		})
	}
}

func TestApplyToggles_ScenarioValueWins(t *testing.T) {
	set := toggles.Parse("00000010")

	scenario := &config.ScenarioFile{
		Memory: config.MemorySettings{MaxMemoryPoll: config.Duration(time.Second)},
	}
	applyToggles(scenario, set)

	if got := scenario.Memory.MaxMemoryPoll.GetDuration(0); got != time.Second {
		t.Errorf("explicit poll interval overwritten: %v", got)
	}
}
