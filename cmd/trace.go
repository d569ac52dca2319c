package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/calltrace/callpath/analytics"
	"github.com/calltrace/callpath/layout"
	"github.com/calltrace/callpath/output"
	"github.com/calltrace/callpath/render"
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Extract the call paths from source functions to target functions",
	RunE: func(cmd *cobra.Command, _ []string) error {
		analytics.ReportEvent(analytics.TraceCommand)
		opts, cfg, err := gatherTraceOptions(cmd)
		if err != nil {
			return err
		}
		result, err := runPipeline(cfg)
		if err != nil {
			analytics.ReportEvent(analytics.ErrorBuildingGraph)
			return err
		}
		doc := result.doc
		if filterExpr, _ := cmd.Flags().GetString("filter"); filterExpr != "" { //nolint:all
			doc, err = render.Filter(doc, filterExpr)
			if err != nil {
				return err
			}
		}
		direction := layout.TopToBottom
		if dir, _ := cmd.Flags().GetString("direction"); dir == "lr" { //nolint:all
			direction = layout.LeftToRight
		}
		rendered, err := renderDocument(doc, opts.Format, direction)
		if err != nil {
			analytics.ReportEvent(analytics.ErrorRenderingGraph)
			return err
		}
		return writeOutput(rendered, opts.OutputFile)
	},
}

func init() {
	rootCmd.AddCommand(traceCmd)
	addTraceFlags(traceCmd)
}

// addTraceFlags registers the flags shared by trace and watch.
func addTraceFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("project", "p", ".", "Repository root of the project to analyze")
	cmd.Flags().StringArrayP("source", "s", nil, "Source selector: path, path::name, or path::a|b")
	cmd.Flags().StringArrayP("target", "t", nil, "Target selector: path, path::name, or path::a|b")
	cmd.Flags().StringP("format", "o", "", "Output format: dot, json, or html")
	cmd.Flags().StringP("output-file", "f", "", "Output file path (default stdout)")
	cmd.Flags().Int("max-depth", 12, "Maximum call depth explored from each source")
	cmd.Flags().Int("max-nodes", 1500, "Maximum nodes per traversal")
	cmd.Flags().Bool("include-external", false, "Keep unresolved third-party calls as leaf nodes")
	cmd.Flags().String("tsconfig", "", "Path to the project's tsconfig/jsconfig (default: discovered)")
	cmd.Flags().String("filter", "", "Expression dropping non-matching intermediate nodes, e.g. 'node.filePath contains \"services/\"'")
	cmd.Flags().String("direction", "tb", "Layout direction for html output: tb or lr")
	cmd.Flags().String("editor", "", "Editor scheme for html node links, e.g. vscode")
	cmd.Flags().BoolP("verbose", "v", false, "Print progress, statistics, and diagnostics")
	cmd.Flags().Bool("debug", false, "Print debug timings")
}

// gatherTraceOptions merges flags with the repository's .callpath.yml;
// explicitly set flags win.
func gatherTraceOptions(cmd *cobra.Command) (*output.Options, pipelineConfig, error) {
	project, _ := cmd.Flags().GetString("project") //nolint:all
	fileCfg, err := loadToolConfig(project)
	if err != nil {
		return nil, pipelineConfig{}, err
	}

	opts := output.NewDefaultOptions()
	switch {
	case cmd.Flags().Changed("format"):
		format, _ := cmd.Flags().GetString("format") //nolint:all
		opts.Format = output.Format(format)
	case fileCfg.Format != "":
		opts.Format = output.Format(fileCfg.Format)
	}
	if !opts.Format.Valid() || opts.Format == output.FormatSARIF {
		return nil, pipelineConfig{}, fmt.Errorf("unsupported trace format %q", opts.Format)
	}
	opts.OutputFile, _ = cmd.Flags().GetString("output-file") //nolint:all

	verbose, _ := cmd.Flags().GetBool("verbose") //nolint:all
	debug, _ := cmd.Flags().GetBool("debug")     //nolint:all
	switch {
	case debug:
		opts.Verbosity = output.VerbosityDebug
	case verbose:
		opts.Verbosity = output.VerbosityVerbose
	}

	maxDepth, _ := cmd.Flags().GetInt("max-depth") //nolint:all
	if !cmd.Flags().Changed("max-depth") && fileCfg.MaxDepth > 0 {
		maxDepth = fileCfg.MaxDepth
	}
	maxNodes, _ := cmd.Flags().GetInt("max-nodes") //nolint:all
	if !cmd.Flags().Changed("max-nodes") && fileCfg.MaxNodes > 0 {
		maxNodes = fileCfg.MaxNodes
	}
	includeExternal, _ := cmd.Flags().GetBool("include-external") //nolint:all
	if !cmd.Flags().Changed("include-external") {
		includeExternal = includeExternal || fileCfg.IncludeExternal
	}
	editor, _ := cmd.Flags().GetString("editor") //nolint:all
	if editor == "" {
		editor = fileCfg.Editor
	}
	tsconfigPath, _ := cmd.Flags().GetString("tsconfig") //nolint:all
	if tsconfigPath == "" {
		tsconfigPath = fileCfg.TSConfig
	}
	if !cmd.Flags().Changed("direction") && fileCfg.Direction != "" {
		_ = cmd.Flags().Set("direction", fileCfg.Direction)
	}

	sources, _ := cmd.Flags().GetStringArray("source") //nolint:all
	targets, _ := cmd.Flags().GetStringArray("target") //nolint:all

	cfg := pipelineConfig{
		repoRoot:        project,
		tsconfigPath:    tsconfigPath,
		includeExternal: includeExternal,
		maxDepth:        maxDepth,
		maxNodes:        maxNodes,
		sourceArgs:      sources,
		targetArgs:      targets,
		editor:          editor,
		logger:          output.NewLogger(opts.Verbosity),
	}
	return opts, cfg, nil
}

// renderDocument produces the chosen format. The html path runs the layout
// engine; dot and json are layout-free.
func renderDocument(doc render.Document, format output.Format, direction layout.Direction) ([]byte, error) {
	switch format {
	case output.FormatDot:
		return []byte(render.Dot(doc)), nil
	case output.FormatJSON:
		return render.JSON(doc)
	case output.FormatHTML:
		analytics.ReportEvent(analytics.TraceCommandHTML)
		geometry := layout.Compute(render.LayoutGraph(doc), layout.Options{
			Direction: direction,
			Owners:    doc.Codeowners,
		})
		return render.HTML(doc, geometry, "callpath")
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

func writeOutput(data []byte, outputFile string) error {
	if outputFile == "" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(outputFile, data, 0o644)
}
