package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "tictoc",
	Short:   "Wall-clock and memory benchmarking for iterative workloads",
	Version: version,
	Long: `Tictoc measures wall-clock time and memory use across the iterations
of a workload, labels measurements by topic, and writes timestamped
JSON artifacts that the report command can render and query.`,
	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print help
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}

func init() {
	RootCmd.AddCommand(runCmd)
	RootCmd.AddCommand(reportCmd)
}
