// Package slicer computes the source-to-target induced subgraph of a call
// graph. It is pure: no parsing, no resolution, no mutation of the input.
package slicer

import "github.com/calltrace/callpath/callgraph/core"

// Slice keeps the nodes that are both forward-reachable from some source
// and backward-reachable from some target, with exactly the edges whose
// endpoints are both kept. Ids absent from the graph are ignored as
// starts; an empty intersection yields an empty graph.
func Slice(g *core.CallGraph, sources, targets []core.FunctionID) *core.CallGraph {
	forward := reach(g, sources, g.Successors)
	backward := reach(g, targets, g.Predecessors)

	kept := make(map[core.FunctionID]bool)
	for id := range forward {
		if backward[id] {
			kept[id] = true
		}
	}

	out := core.NewCallGraph()
	for _, n := range g.Nodes() {
		if kept[n.ID] {
			out.AddNode(n)
		}
	}
	for _, e := range g.Edges() {
		if kept[e.Caller] && kept[e.Callee] {
			// Endpoints were just added; errors would be internal bugs.
			if _, err := out.AddEdge(e); err != nil {
				panic(err)
			}
		}
	}
	return out
}

// reach runs a BFS over the given adjacency from every start present in
// the graph.
func reach(g *core.CallGraph, starts []core.FunctionID, next func(core.FunctionID) []core.FunctionID) map[core.FunctionID]bool {
	seen := make(map[core.FunctionID]bool)
	var queue []core.FunctionID
	for _, id := range starts {
		if g.HasNode(id) && !seen[id] {
			seen[id] = true
			queue = append(queue, id)
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		for _, adj := range next(id) {
			if !seen[adj] {
				seen[adj] = true
				queue = append(queue, adj)
			}
		}
	}
	return seen
}
