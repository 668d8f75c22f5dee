package cli

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/tictoc-bench/tictoc/bench"
	"github.com/tictoc-bench/tictoc/internal/config"
	"github.com/tictoc-bench/tictoc/internal/output"
	"github.com/tictoc-bench/tictoc/record"
	"github.com/tictoc-bench/tictoc/toggles"
)

// Toggle indices consumed by the run command. Toggles override the
// scenario file, so an operator can flip behavior without editing it.
const (
	toggleForceMemory = 0
	toggleForcePeak   = 1
	toggleSaveOnStep  = 2
)

// applyToggles folds the process-level toggle set into the scenario.
func applyToggles(scenario *config.ScenarioFile, set toggles.Set) {
	if set.Enabled(toggleForceMemory) {
		scenario.Memory.Enabled = true
	}
	if set.Enabled(toggleForcePeak) {
		scenario.Memory.Enabled = true
		if scenario.Memory.MaxMemoryPoll == 0 {
			scenario.Memory.MaxMemoryPoll = config.Duration(100 * time.Millisecond)
		}
	}
	if set.Enabled(toggleSaveOnStep) {
		scenario.Settings.SaveOnStep = true
	}
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the benchmarks described by a scenario file",
	Run: func(cmd *cobra.Command, args []string) {
		scenarioFile, _ := cmd.Flags().GetString("config")
		noColor, _ := cmd.Flags().GetBool("no-color")
		quiet, _ := cmd.Flags().GetBool("quiet")
		format, _ := cmd.Flags().GetString("format")

		if scenarioFile == "" {
			fmt.Println("Error: scenario file is required")
			cmd.Help()
			return
		}

		outFormat, err := output.ParseFormat(format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		scenario, err := config.Load(scenarioFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading scenario: %v\n", err)
			os.Exit(1)
		}

		if errors := config.Validate(scenario); len(errors) > 0 {
			fmt.Fprintln(os.Stderr, "Scenario validation errors:")
			for _, err := range errors {
				fmt.Fprintf(os.Stderr, "  - %s\n", err.Error())
			}
			os.Exit(1)
		}

		applyToggles(scenario, toggles.FromEnv())

		runDir, err := runScenario(cmd.Context(), scenario)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if quiet {
			fmt.Println(runDir)
			return
		}

		run, err := record.LoadRun(runDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading results: %v\n", err)
			os.Exit(1)
		}

		scheme := output.DefaultColorScheme()
		if noColor || !output.IsTerminal(os.Stdout) {
			scheme = output.NoColorScheme()
		}
		if err := output.NewRenderer(os.Stdout, scheme).RenderRun(run, outFormat); err != nil {
			fmt.Fprintf(os.Stderr, "Error rendering report: %v\n", err)
			os.Exit(1)
		}
	},
}

// runScenario executes every benchmark in the scenario and saves all
// artifacts. It returns the run directory the artifacts landed in.
func runScenario(ctx context.Context, scenario *config.ScenarioFile) (string, error) {
	registry := bench.NewRegistry(scenario.Settings.OutputDir)

	names := make([]string, 0, len(scenario.Benchmarks))
	for name := range scenario.Benchmarks {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if err := runBenchmark(scenario, registry.GetOrCreate(name), scenario.Benchmarks[name]); err != nil {
			return "", fmt.Errorf("benchmark %s: %w", name, err)
		}
	}

	if err := registry.Save(ctx); err != nil {
		return "", fmt.Errorf("saving artifacts: %w", err)
	}
	return registry.RunDir(), nil
}

func runBenchmark(scenario *config.ScenarioFile, b *bench.Benchmarker, cfg *config.BenchmarkConfig) error {
	settings := scenario.Settings
	b.SetSaveOnGStop(settings.SaveOnGStop)
	b.SetSaveOnStep(settings.SaveOnStep)
	if settings.Percentile > 0 || settings.FilterBelow > 0 {
		b.SetSummaryOptions(record.SummaryOptions{
			Percentile:  settings.Percentile,
			FilterBelow: settings.FilterBelow,
		})
	}

	if scenario.Memory.Enabled {
		b.EnableMemoryTracking(scenario.Memory.TrackInStep)
		if poll := scenario.Memory.MaxMemoryPoll.GetDuration(0); poll > 0 {
			b.Memory().EnableMaxMemory(poll)
			defer b.Memory().DisableMaxMemory()
		}
	}

	for i := 0; i < cfg.Iterations; i++ {
		b.Start()
		for _, step := range cfg.Steps {
			doWork(step)
			if err := b.Step(step.Topic); err != nil {
				return err
			}
		}
		if err := b.GStop(); err != nil {
			return err
		}
	}
	return nil
}

// doWork runs one synthetic step. The allocate sink is written so the
// compiler cannot elide the allocation.
func doWork(step config.StepConfig) {
	switch step.Work {
	case config.WorkSleep:
		time.Sleep(step.Duration.GetDuration(0))
	case config.WorkSpin:
		deadline := time.Now().Add(step.Duration.GetDuration(0))
		for time.Now().Before(deadline) {
		}
	case config.WorkAllocate:
		buf := make([]byte, step.Bytes)
		for i := 0; i < len(buf); i += 4096 {
			buf[i] = byte(i)
		}
		workSink = buf
	}
}

var workSink []byte

func init() {
	runCmd.Flags().StringP("config", "c", "", "Scenario file (YAML or JSON)")
	runCmd.Flags().Bool("no-color", false, "Disable colored output")
	runCmd.Flags().BoolP("quiet", "q", false, "Print only the run directory")
	runCmd.Flags().StringP("format", "f", "text", "Report format (text, json)")
}
