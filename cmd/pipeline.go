package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/calltrace/callpath/callgraph/builder"
	"github.com/calltrace/callpath/callgraph/core"
	"github.com/calltrace/callpath/callgraph/registry"
	"github.com/calltrace/callpath/callgraph/resolution"
	"github.com/calltrace/callpath/callgraph/slicer"
	"github.com/calltrace/callpath/codeowners"
	"github.com/calltrace/callpath/output"
	"github.com/calltrace/callpath/render"
	"github.com/calltrace/callpath/selector"
	"github.com/calltrace/callpath/workspace"
)

// pipelineConfig collects everything one trace run needs.
type pipelineConfig struct {
	repoRoot        string
	tsconfigPath    string
	includeExternal bool
	maxDepth        int
	maxNodes        int
	sourceArgs      []string
	targetArgs      []string
	editor          string
	logger          *output.Logger
	// extraSink, when non-nil, also receives build diagnostics (the SARIF
	// report collects them there).
	extraSink core.DiagnosticSink
}

// pipelineResult is what the renderers consume.
type pipelineResult struct {
	doc     render.Document
	sliced  *core.CallGraph
	sources []core.FunctionID
	targets []core.FunctionID
}

// runPipeline drives build and slice: selectors expand against lazily
// parsed files, the builder traverses forward from every source, and the
// slicer keeps the source-to-target subgraph.
func runPipeline(cfg pipelineConfig) (*pipelineResult, error) {
	root, err := filepath.Abs(cfg.repoRoot)
	if err != nil {
		return nil, err
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("repository root %s is not a directory", root)
	}
	if len(cfg.sourceArgs) == 0 {
		return nil, fmt.Errorf("at least one --source selector is required")
	}
	if len(cfg.targetArgs) == 0 {
		return nil, fmt.Errorf("at least one --target selector is required")
	}

	tsconfigPath := cfg.tsconfigPath
	if tsconfigPath == "" {
		tsconfigPath = discoverCompilerConfig(root)
	} else if !filepath.IsAbs(tsconfigPath) {
		tsconfigPath = filepath.Join(root, tsconfigPath)
	}
	settings, err := registry.LoadSettings(root, tsconfigPath)
	if err != nil {
		return nil, err
	}

	var sink core.DiagnosticSink = output.NewDiagnosticSink(cfg.logger)
	if cfg.extraSink != nil {
		sink = core.TeeSink{sink, cfg.extraSink}
	}

	ws := workspace.New(root)
	cache := resolution.NewParseCache(ws, sink)
	modules := registry.NewModuleResolver(root, settings)
	resolver := resolution.NewResolver(cache, modules, cfg.includeExternal, sink)
	build, err := builder.New(resolver, builder.Options{
		MaxDepth: cfg.maxDepth,
		MaxNodes: cfg.maxNodes,
	})
	if err != nil {
		return nil, err
	}

	sources, err := expandSelectors(cfg.sourceArgs, root, cache)
	if err != nil {
		return nil, fmt.Errorf("resolving sources: %w", err)
	}
	targets, err := expandSelectors(cfg.targetArgs, root, cache)
	if err != nil {
		return nil, fmt.Errorf("resolving targets: %w", err)
	}

	cfg.logger.Progress("building call graph from %d source(s)", len(sources))
	full, err := build.Build(sources)
	if err != nil {
		return nil, err
	}
	cfg.logger.Statistic("full graph: %d nodes, %d edges", full.Len(), len(full.Edges()))

	// Sources normalize through facade bindings during the build; slice
	// with the same rewriting so the start ids exist in the graph.
	sources = normalizeIDs(sources, cache)
	targets = normalizeIDs(targets, cache)

	sliced := slicer.Slice(full, sources, targets)
	cfg.logger.Statistic("sliced graph: %d nodes, %d edges", sliced.Len(), len(sliced.Edges()))

	doc := render.FromCallGraph(sliced, root, sources, targets, snippetLoader(ws))
	doc.RepoRoot = root
	doc.Editor = cfg.editor

	if rules, err := codeowners.Load(root); err == nil {
		var paths []string
		seen := make(map[string]bool)
		for _, n := range doc.Nodes {
			if !seen[n.FilePath] && !strings.HasPrefix(n.FilePath, core.ExternalPrefix) {
				seen[n.FilePath] = true
				paths = append(paths, n.FilePath)
			}
		}
		doc.Codeowners = rules.Mapping(paths)
	}

	return &pipelineResult{doc: doc, sliced: sliced, sources: sources, targets: targets}, nil
}

// discoverCompilerConfig probes the conventional config names.
func discoverCompilerConfig(root string) string {
	for _, name := range []string{"tsconfig.json", "jsconfig.json"} {
		candidate := filepath.Join(root, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}

// expandSelectors parses selector arguments and expands file selectors to
// every declared function. A selector whose file cannot be parsed is a
// configuration fault.
func expandSelectors(args []string, root string, cache *resolution.ParseCache) ([]core.FunctionID, error) {
	var ids []core.FunctionID
	for _, arg := range args {
		sel, err := selector.Parse(arg, root)
		if err != nil {
			return nil, err
		}
		file, ok := cache.Get(sel.FilePath)
		if !ok {
			return nil, fmt.Errorf("cannot parse %s", sel.FilePath)
		}
		ids = append(ids, sel.IDs(file)...)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("selectors matched no functions")
	}
	return ids, nil
}

// normalizeIDs rewrites Obj.prop ids through the facade bindings of their
// file, mirroring the builder's source normalization.
func normalizeIDs(ids []core.FunctionID, cache *resolution.ParseCache) []core.FunctionID {
	out := make([]core.FunctionID, 0, len(ids))
	for _, id := range ids {
		if file, ok := cache.Get(id.FilePath); ok {
			if bound, ok := file.ObjectBindings[id.QualifiedName]; ok && bound != id.QualifiedName {
				id.QualifiedName = bound
			}
		}
		out = append(out, id)
	}
	return out
}

// snippetLoader reads a short excerpt of each node's declaration for the
// interactive visualization.
func snippetLoader(ws *workspace.Workspace) render.SnippetLoader {
	const maxSnippetLines = 40
	return func(id core.FunctionID, startLine, endLine uint32) string {
		if startLine == 0 {
			return ""
		}
		src, err := ws.ReadFile(id.FilePath)
		if err != nil {
			return ""
		}
		lines := strings.Split(string(src), "\n")
		start := int(startLine) - 1
		end := int(endLine)
		if start >= len(lines) {
			return ""
		}
		if end > len(lines) {
			end = len(lines)
		}
		if end-start > maxSnippetLines {
			end = start + maxSnippetLines
		}
		return strings.Join(lines[start:end], "\n")
	}
}
