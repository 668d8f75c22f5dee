package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tictoc-bench/tictoc/internal/output"
	"github.com/tictoc-bench/tictoc/pkg/jsonquery"
	"github.com/tictoc-bench/tictoc/record"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Render, validate or query a saved run",
	Long: `Report reads the artifacts of a saved run and renders them as a
console report or a JSON document. With --validate, every artifact is
checked against its schema first. With --query, a JSONPath expression
is evaluated against the JSON form of the run and only the result is
printed.`,
	Run: func(cmd *cobra.Command, args []string) {
		baseDir, _ := cmd.Flags().GetString("dir")
		runDir, _ := cmd.Flags().GetString("run")
		format, _ := cmd.Flags().GetString("format")
		noColor, _ := cmd.Flags().GetBool("no-color")
		validate, _ := cmd.Flags().GetBool("validate")
		query, _ := cmd.Flags().GetString("query")
		htmlPath, _ := cmd.Flags().GetString("html")

		outFormat, err := output.ParseFormat(format)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if runDir == "" {
			runDir, err = record.LatestRun(baseDir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		if validate {
			if err := validateRun(runDir); err != nil {
				fmt.Fprintf(os.Stderr, "%s Validation failed: %v\n", output.ErrorIcon(noColor), err)
				os.Exit(1)
			}
			fmt.Printf("%s All artifacts valid\n", output.SuccessIcon(noColor))
		}

		run, err := record.LoadRun(runDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading run: %v\n", err)
			os.Exit(1)
		}

		if htmlPath != "" {
			if err := output.GenerateHTML(run, htmlPath); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Printf("%s HTML report written to %s\n", output.SuccessIcon(noColor), htmlPath)
			return
		}

		if query != "" {
			result, err := queryRun(run, query)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(result)
			return
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

// validateRun checks every benchmark's artifacts against their
// schemas.
func validateRun(runDir string) error {
	names, err := record.BenchmarkNames(runDir)
	if err != nil {
		return err
	}
	for _, name := range names {
		if err := record.ValidateBenchmarkDir(runDir, name); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// queryRun evaluates a JSONPath expression against the run rendered
// as a JSON document.
func queryRun(run *record.Run, query string) (string, error) {
	var buf bytes.Buffer
	if err := output.NewRenderer(&buf, output.NoColorScheme()).RenderRun(run, output.FormatJSON); err != nil {
		return "", err
	}
	return jsonquery.Extract(buf.String(), query)
}

func init() {
	reportCmd.Flags().StringP("dir", "d", ".", "Directory the runs were saved under")
	reportCmd.Flags().StringP("run", "r", "", "Specific run directory (default: latest run)")
	reportCmd.Flags().StringP("format", "f", "text", "Report format (text, json)")
	reportCmd.Flags().Bool("no-color", false, "Disable colored output")
	reportCmd.Flags().Bool("validate", false, "Validate artifacts against their schemas")
	reportCmd.Flags().String("query", "", "JSONPath expression to evaluate against the run")
	reportCmd.Flags().String("html", "", "Write an HTML report to this path")
}
