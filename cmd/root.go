package cmd

import (
	"github.com/spf13/cobra"

	"github.com/calltrace/callpath/analytics"
)

var rootCmd = &cobra.Command{
	Use:   "callpath",
	Short: "Callpath - static call-path extraction for typed JavaScript codebases",
	Long: `Callpath recovers the call graph of a TypeScript/JavaScript project from
syntax alone and extracts the paths connecting chosen source functions to
chosen target functions.`,
	PersistentPreRun: func(cmd *cobra.Command, _ []string) {
		disableMetrics, _ := cmd.Flags().GetBool("disable-metrics") //nolint:all
		analytics.LoadEnvFile()
		analytics.Init(disableMetrics)
	},
}

// Execute runs the CLI.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().Bool("disable-metrics", false, "Disable metrics collection")
}
