package core

import "fmt"

// EdgeKind records how the resolver reached a callee. The set is closed.
type EdgeKind string

const (
	EdgeDirect            EdgeKind = "direct"
	EdgeStaticMethod      EdgeKind = "static-method"
	EdgeDIDefault         EdgeKind = "di-default"
	EdgeInstrumentWrapper EdgeKind = "instrument-wrapper"
	EdgeInstanceMethod    EdgeKind = "instance-method"
	EdgeReExport          EdgeKind = "re-export"
	EdgeExternal          EdgeKind = "external"
)

// Valid reports whether k is a member of the closed edge-kind set.
func (k EdgeKind) Valid() bool {
	switch k {
	case EdgeDirect, EdgeStaticMethod, EdgeDIDefault, EdgeInstrumentWrapper,
		EdgeInstanceMethod, EdgeReExport, EdgeExternal:
		return true
	}
	return false
}

// FunctionNode is one vertex of a call graph. Nodes are created when first
// reached by the traversal and never mutated afterwards.
type FunctionNode struct {
	ID             FunctionID
	StartLine      uint32
	EndLine        uint32
	IsInstrumented bool
	// IsExternal marks nodes that stand for unresolved third-party imports.
	// External nodes are leaves: no edge originates from them, and their
	// StartLine is zero.
	IsExternal  bool
	Description string
	Signature   string
}

// CallEdge is one deduplicated caller→callee edge. Parallel call sites
// collapse to the first-seen kind and line.
type CallEdge struct {
	Caller   FunctionID
	Callee   FunctionID
	Kind     EdgeKind
	CallLine uint32
}

type edgeKey struct {
	caller FunctionID
	callee FunctionID
}

// CallGraph stores nodes in an arena indexed by interned integers with
// forward and reverse adjacency lists. All public addressing is by
// FunctionID; the integer ids are internal.
type CallGraph struct {
	nodes    []*FunctionNode
	index    map[FunctionID]int
	edges    []CallEdge
	edgeSeen map[edgeKey]struct{}
	out      [][]int // node index -> indices into edges
	in       [][]int
}

// NewCallGraph returns an empty graph.
func NewCallGraph() *CallGraph {
	return &CallGraph{
		index:    make(map[FunctionID]int),
		edgeSeen: make(map[edgeKey]struct{}),
	}
}

// Len returns the node count.
func (g *CallGraph) Len() int { return len(g.nodes) }

// HasNode reports whether the id is present.
func (g *CallGraph) HasNode(id FunctionID) bool {
	_, ok := g.index[id]
	return ok
}

// Node returns the node for the id, if present.
func (g *CallGraph) Node(id FunctionID) (*FunctionNode, bool) {
	i, ok := g.index[id]
	if !ok {
		return nil, false
	}
	return g.nodes[i], true
}

// AddNode interns the node, keyed by its ID. The first write wins; adding an
// id that already exists is a no-op and returns false.
func (g *CallGraph) AddNode(n *FunctionNode) bool {
	if _, ok := g.index[n.ID]; ok {
		return false
	}
	g.index[n.ID] = len(g.nodes)
	g.nodes = append(g.nodes, n)
	g.out = append(g.out, nil)
	g.in = append(g.in, nil)
	return true
}

// Nodes returns the nodes in insertion order. The slice is shared; callers
// must not mutate it.
func (g *CallGraph) Nodes() []*FunctionNode { return g.nodes }

// Edges returns the edges in insertion order. The slice is shared.
func (g *CallGraph) Edges() []CallEdge { return g.edges }

// AddEdge appends the edge unless an edge between the same endpoints exists.
// Self-edges are dropped. Both endpoints must already be nodes of the graph
// and the kind must be a member of the closed set; either violation is an
// internal bug and surfaces as an error.
func (g *CallGraph) AddEdge(e CallEdge) (bool, error) {
	if !e.Kind.Valid() {
		return false, fmt.Errorf("unknown edge kind %q", e.Kind)
	}
	ci, ok := g.index[e.Caller]
	if !ok {
		return false, fmt.Errorf("edge caller %s is not a node of the graph", e.Caller)
	}
	ti, ok := g.index[e.Callee]
	if !ok {
		return false, fmt.Errorf("edge callee %s is not a node of the graph", e.Callee)
	}
	if e.Caller == e.Callee {
		return false, nil
	}
	key := edgeKey{caller: e.Caller, callee: e.Callee}
	if _, seen := g.edgeSeen[key]; seen {
		return false, nil
	}
	g.edgeSeen[key] = struct{}{}
	g.edges = append(g.edges, e)
	g.out[ci] = append(g.out[ci], len(g.edges)-1)
	g.in[ti] = append(g.in[ti], len(g.edges)-1)
	return true, nil
}

// HasEdge reports whether an edge between the endpoints exists.
func (g *CallGraph) HasEdge(caller, callee FunctionID) bool {
	_, ok := g.edgeSeen[edgeKey{caller: caller, callee: callee}]
	return ok
}

// OutEdges returns the edges leaving the given node.
func (g *CallGraph) OutEdges(id FunctionID) []CallEdge {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	edges := make([]CallEdge, 0, len(g.out[i]))
	for _, ei := range g.out[i] {
		edges = append(edges, g.edges[ei])
	}
	return edges
}

// InEdges returns the edges entering the given node.
func (g *CallGraph) InEdges(id FunctionID) []CallEdge {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	edges := make([]CallEdge, 0, len(g.in[i]))
	for _, ei := range g.in[i] {
		edges = append(edges, g.edges[ei])
	}
	return edges
}

// Successors returns the callee ids reachable in one hop.
func (g *CallGraph) Successors(id FunctionID) []FunctionID {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	ids := make([]FunctionID, 0, len(g.out[i]))
	for _, ei := range g.out[i] {
		ids = append(ids, g.edges[ei].Callee)
	}
	return ids
}

// Predecessors returns the caller ids one hop upstream.
func (g *CallGraph) Predecessors(id FunctionID) []FunctionID {
	i, ok := g.index[id]
	if !ok {
		return nil
	}
	ids := make([]FunctionID, 0, len(g.in[i]))
	for _, ei := range g.in[i] {
		ids = append(ids, g.edges[ei].Caller)
	}
	return ids
}

// Merge copies the other graph into g: node union with first write winning,
// edges appended under the same caller→callee deduplication.
func (g *CallGraph) Merge(other *CallGraph) error {
	for _, n := range other.nodes {
		g.AddNode(n)
	}
	for _, e := range other.edges {
		if _, err := g.AddEdge(e); err != nil {
			return err
		}
	}
	return nil
}
