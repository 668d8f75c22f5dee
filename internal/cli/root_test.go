package cli

import (
	"testing"
	"time"

	"github.com/tictoc-bench/tictoc/internal/config"
)

func TestRootCommandHasSubcommands(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"run", "report"} {
		if !names[want] {
			t.Errorf("root command missing %q subcommand", want)
		}
	}
}

func TestDoWork(t *testing.T) {
	start := time.Now()
	doWork(config.StepConfig{Work: config.WorkSleep, Duration: config.Duration(10 * time.Millisecond)})
	if elapsed := time.Since(start); elapsed < 10*time.Millisecond {
		t.Errorf("sleep work returned after %v", elapsed)
	}

	start = time.Now()
	doWork(config.StepConfig{Work: config.WorkSpin, Duration: config.Duration(5 * time.Millisecond)})
	if elapsed := time.Since(start); elapsed < 5*time.Millisecond {
		t.Errorf("spin work returned after %v", elapsed)
	}

	doWork(config.StepConfig{Work: config.WorkAllocate, Bytes: 1 << 20})
	if len(workSink) != 1<<20 {
		t.Errorf("allocate work kept %d bytes, want %d", len(workSink), 1<<20)
	}
}
