package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/calltrace/callpath/analytics"
	"github.com/calltrace/callpath/layout"
	"github.com/calltrace/callpath/output"
	"github.com/calltrace/callpath/render"
)

// debounce window for bursts of editor write events.
const watchDebounce = 400 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the trace whenever a source file changes",
	Long: `Watch runs one trace, writes it to --output-file, and then re-runs it on
every change to a .ts/.tsx/.js/.jsx file under the project root. Cluster
ordering is carried between runs so the drawing stays stable.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		analytics.ReportEvent(analytics.WatchCommand)
		opts, cfg, err := gatherTraceOptions(cmd)
		if err != nil {
			return err
		}
		if opts.OutputFile == "" {
			return fmt.Errorf("watch requires --output-file")
		}
		direction := layout.TopToBottom
		if dir, _ := cmd.Flags().GetString("direction"); dir == "lr" { //nolint:all
			direction = layout.LeftToRight
		}

		watcher, err := fsnotify.NewWatcher()
		if err != nil {
			return err
		}
		defer watcher.Close()

		root, err := filepath.Abs(cfg.repoRoot)
		if err != nil {
			return err
		}
		if err := watchTree(watcher, root); err != nil {
			return err
		}

		var prevOrder []string
		run := func() {
			order, err := runOnce(cfg, opts, direction, prevOrder)
			if err != nil {
				cfg.logger.Error("%v", err)
				return
			}
			prevOrder = order
			cfg.logger.Progress("wrote %s", opts.OutputFile)
		}
		run()

		timer := time.NewTimer(watchDebounce)
		if !timer.Stop() {
			<-timer.C
		}
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return nil
				}
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = watchTree(watcher, event.Name)
					}
				}
				if isWatchedSource(event.Name) {
					timer.Reset(watchDebounce)
				}
			case err, ok := <-watcher.Errors:
				if !ok {
					return nil
				}
				cfg.logger.Warning("watcher: %v", err)
			case <-timer.C:
				run()
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	addTraceFlags(watchCmd)
}

// runOnce executes one pipeline run and render, threading the previous
// cluster order into the layout.
func runOnce(cfg pipelineConfig, opts *output.Options, direction layout.Direction, prevOrder []string) ([]string, error) {
	result, err := runPipeline(cfg)
	if err != nil {
		return prevOrder, err
	}
	doc := result.doc
	var rendered []byte
	order := prevOrder
	if opts.Format == output.FormatHTML {
		geometry := layout.Compute(render.LayoutGraph(doc), layout.Options{
			Direction:     direction,
			PrevFileOrder: prevOrder,
			Owners:        doc.Codeowners,
		})
		order = geometry.FileOrder
		rendered, err = render.HTML(doc, geometry, "callpath")
	} else {
		rendered, err = renderDocument(doc, opts.Format, direction)
	}
	if err != nil {
		return order, err
	}
	return order, writeOutput(rendered, opts.OutputFile)
}

// watchTree adds the directory and every non-ignored subdirectory.
func watchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		name := d.Name()
		if name == "node_modules" || name == ".git" || name == "dist" || name == "build" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func isWatchedSource(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ts", ".tsx", ".js", ".jsx":
		return true
	}
	return false
}
