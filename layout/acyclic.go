package layout

// markBackedges runs a depth-first traversal over the working graph and
// marks edges whose destination is on the current DFS stack. Source-marked
// nodes are preferred as traversal roots so flow runs away from them; the
// remaining nodes start in input order. The non-back edges form a DAG.
func markBackedges(pg *pgraph) {
	out := make([][]int, len(pg.nodes))
	for ei, e := range pg.edges {
		out[e.from] = append(out[e.from], ei)
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make([]int, len(pg.nodes))

	var visit func(int)
	visit = func(n int) {
		color[n] = gray
		for _, ei := range out[n] {
			e := pg.edges[ei]
			switch color[e.to] {
			case gray:
				e.back = true
			case white:
				visit(e.to)
			}
		}
		color[n] = black
	}

	for i, n := range pg.nodes {
		if n.isSource && color[i] == white {
			visit(i)
		}
	}
	for i := range pg.nodes {
		if color[i] == white {
			visit(i)
		}
	}
}
