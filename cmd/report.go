package cmd

import (
	"bytes"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/calltrace/callpath/analytics"
	"github.com/calltrace/callpath/callgraph/core"
	"github.com/calltrace/callpath/render"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Run a trace and report its resolution faults as SARIF",
	Long: `Report runs the same build as trace but renders the recoverable faults
instead of the graph: every dropped call site and skipped file becomes one
SARIF result, suitable for code-scanning upload.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		analytics.ReportEvent(analytics.ReportCommand)
		_, cfg, err := gatherTraceOptions(cmd)
		if err != nil {
			return err
		}
		diags := &core.DiagnosticBuffer{}
		cfg.extraSink = diags
		if _, err := runPipeline(cfg); err != nil {
			analytics.ReportEvent(analytics.ErrorBuildingGraph)
			return err
		}
		root, err := filepath.Abs(cfg.repoRoot)
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := render.WriteSARIF(&buf, diags.All(), root); err != nil {
			return err
		}
		outputFile, _ := cmd.Flags().GetString("output-file") //nolint:all
		return writeOutput(buf.Bytes(), outputFile)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
	addTraceFlags(reportCmd)
	// The graph format flag does not apply; report always emits SARIF.
	_ = reportCmd.Flags().MarkHidden("format")
	_ = reportCmd.Flags().MarkHidden("filter")
	_ = reportCmd.Flags().MarkHidden("direction")
	_ = reportCmd.Flags().MarkHidden("editor")
}
