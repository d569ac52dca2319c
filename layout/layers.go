package layout

import "strconv"

// assignLayers runs Kahn longest-path layering over the DAG of non-back
// edges: every node sits one layer below its deepest predecessor, roots at
// layer zero.
func assignLayers(pg *pgraph) {
	indegree := make([]int, len(pg.nodes))
	out := make([][]int, len(pg.nodes))
	for _, e := range pg.edges {
		if e.back {
			continue
		}
		indegree[e.to]++
		out[e.from] = append(out[e.from], e.to)
	}

	var queue []int
	for i := range pg.nodes {
		pg.nodes[i].layer = 0
		if indegree[i] == 0 {
			queue = append(queue, i)
		}
	}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		for _, succ := range out[n] {
			if l := pg.nodes[n].layer + 1; l > pg.nodes[succ].layer {
				pg.nodes[succ].layer = l
			}
			indegree[succ]--
			if indegree[succ] == 0 {
				queue = append(queue, succ)
			}
		}
	}
}

// insertDummies splits every non-back edge spanning more than one layer
// into a chain of unit segments through dummy nodes. A dummy inherits the
// file path of the edge's source endpoint so clustering stays coherent.
// The unit segments feed the ordering sweeps.
func insertDummies(pg *pgraph) {
	for _, e := range pg.edges {
		if e.back {
			continue
		}
		from, to := pg.nodes[e.from], pg.nodes[e.to]
		span := to.layer - from.layer
		if span <= 1 {
			pg.segs = append(pg.segs, seg{from: e.from, to: e.to})
			continue
		}
		prev := e.from
		for layer := from.layer + 1; layer < to.layer; layer++ {
			d := pg.addNode(&lnode{
				id:       e.chainID(len(e.chain), pg),
				filePath: from.filePath,
				dummy:    true,
				layer:    layer,
			})
			e.chain = append(e.chain, d)
			pg.segs = append(pg.segs, seg{from: prev, to: d})
			prev = d
		}
		pg.segs = append(pg.segs, seg{from: prev, to: e.to})
	}
}

// chainID names a dummy uniquely and deterministically.
func (e *ledge) chainID(i int, pg *pgraph) string {
	return "__dummy:" + pg.nodes[e.from].id + ">" + pg.nodes[e.to].id + ":" + strconv.Itoa(i)
}
