package builder

import (
	"errors"
	"fmt"

	"github.com/calltrace/callpath/callgraph/core"
	"github.com/calltrace/callpath/callgraph/resolution"
)

// Options bounds a graph build. Both ceilings are configuration; zero or
// negative values are faults surfaced before any traversal runs.
type Options struct {
	MaxDepth int
	MaxNodes int
}

// Builder runs bounded breadth-first forward traversals from each source
// and merges the per-source graphs.
type Builder struct {
	resolver *resolution.Resolver
	opts     Options
}

// New validates the bounds and wires the builder.
func New(resolver *resolution.Resolver, opts Options) (*Builder, error) {
	if opts.MaxDepth <= 0 {
		return nil, fmt.Errorf("maxDepth must be positive, got %d", opts.MaxDepth)
	}
	if opts.MaxNodes <= 0 {
		return nil, fmt.Errorf("maxNodes must be positive, got %d", opts.MaxNodes)
	}
	return &Builder{resolver: resolver, opts: opts}, nil
}

// Build traverses forward from every source and merges the results: node
// union with first write winning, edges deduplicated by endpoint pair.
// File and resolution faults never surface here; they feed the resolver's
// diagnostic sink and the affected call sites are dropped.
func (b *Builder) Build(sources []core.FunctionID) (*core.CallGraph, error) {
	if len(sources) == 0 {
		return nil, errors.New("no source functions given")
	}
	merged := core.NewCallGraph()
	for _, source := range sources {
		g := b.traverse(source)
		if err := merged.Merge(g); err != nil {
			return nil, err
		}
	}
	return merged, nil
}

type workItem struct {
	id    core.FunctionID
	depth int
}

// traverse runs one bounded BFS. A source that cannot be located (missing
// file, unknown qualified name) yields an empty graph.
func (b *Builder) traverse(source core.FunctionID) *core.CallGraph {
	g := core.NewCallGraph()

	file, ok := b.resolver.Files().Get(source.FilePath)
	if !ok {
		return g
	}
	// A user-supplied Obj.prop source normalizes through the facade
	// bindings to the function the property references.
	name := source.QualifiedName
	if bound, ok := file.ObjectBindings[name]; ok && bound != name {
		name = bound
	}
	fn := file.FunctionByName(name)
	if fn == nil {
		return g
	}
	start := core.FunctionID{FilePath: file.FilePath, QualifiedName: name}
	g.AddNode(resolution.NodeFor(file, fn))

	queue := []workItem{{id: start, depth: 0}}
	visited := map[core.FunctionID]bool{start: true}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.depth == b.opts.MaxDepth {
			continue
		}
		if g.Len() >= b.opts.MaxNodes {
			break
		}

		callerFile, ok := b.resolver.Files().Get(item.id.FilePath)
		if !ok {
			continue
		}
		caller := callerFile.FunctionByName(item.id.QualifiedName)
		if caller == nil {
			continue
		}

		for _, site := range caller.CallSites {
			target, ok := b.resolver.ResolveCall(callerFile, caller, site)
			if !ok || target.ID == item.id {
				continue
			}
			if !g.HasNode(target.ID) {
				if g.Len() >= b.opts.MaxNodes {
					break
				}
				g.AddNode(target.Node)
			}
			// Endpoints are guaranteed present; an AddEdge error here is
			// an internal invariant violation.
			if _, err := g.AddEdge(core.CallEdge{
				Caller:   item.id,
				Callee:   target.ID,
				Kind:     target.Kind,
				CallLine: site.Line,
			}); err != nil {
				panic(err)
			}
			if !visited[target.ID] && !target.Node.IsExternal {
				visited[target.ID] = true
				queue = append(queue, workItem{id: target.ID, depth: item.depth + 1})
			}
		}
	}
	return g
}
