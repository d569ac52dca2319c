package layout

// lnode is the engine's working vertex.
type lnode struct {
	id          string
	filePath    string
	label       string
	isSource    bool
	collapsed   bool
	foldedCount int
	dummy       bool

	layer int
	order int

	flowSize  float64
	crossSize float64
	x, y      float64
	width     float64
	height    float64
}

// ledge is one surviving input edge. Non-back edges spanning several
// layers carry their dummy chain so routing can reconstruct the path.
type ledge struct {
	from  int
	to    int
	kind  string
	back  bool
	chain []int // dummy node indices, source side first
}

// seg is a unit-span segment used by the ordering sweeps.
type seg struct {
	from int
	to   int
}

type pgraph struct {
	nodes  []*lnode
	index  map[string]int
	edges  []*ledge
	segs   []seg
	layers [][]int
}

func (pg *pgraph) addNode(n *lnode) int {
	pg.index[n.id] = len(pg.nodes)
	pg.nodes = append(pg.nodes, n)
	return len(pg.nodes) - 1
}

// collapse applies the collapse preprocessing: nodes of each collapsed
// file fold into one synthetic node, incident edges are remapped, edges
// that became self-loops are dropped, and duplicates (same endpoints and
// kind) are dropped.
func collapse(g Graph, collapsed map[string]bool) *pgraph {
	pg := &pgraph{index: make(map[string]int)}

	folded := make(map[string]int) // file path -> synthetic node index
	mapped := make(map[string]int) // input id -> working node index
	for _, n := range g.Nodes {
		if collapsed[n.FilePath] {
			idx, ok := folded[n.FilePath]
			if !ok {
				idx = pg.addNode(&lnode{
					id:        CollapsedID(n.FilePath),
					filePath:  n.FilePath,
					label:     n.FilePath,
					collapsed: true,
				})
				folded[n.FilePath] = idx
			}
			pg.nodes[idx].foldedCount++
			if n.IsSource {
				pg.nodes[idx].isSource = true
			}
			mapped[n.ID] = idx
			continue
		}
		mapped[n.ID] = pg.addNode(&lnode{
			id:       n.ID,
			filePath: n.FilePath,
			label:    n.Label,
			isSource: n.IsSource,
		})
	}

	type dedupKey struct {
		from, to int
		kind     string
	}
	seen := make(map[dedupKey]bool)
	for _, e := range g.Edges {
		from, okF := mapped[e.From]
		to, okT := mapped[e.To]
		if !okF || !okT || from == to {
			continue
		}
		key := dedupKey{from: from, to: to, kind: e.Kind}
		if seen[key] {
			continue
		}
		seen[key] = true
		pg.edges = append(pg.edges, &ledge{from: from, to: to, kind: e.Kind})
	}
	return pg
}
