package layout

import "sort"

// orderLayers decides the within-layer node order. Layers initialize by
// file path (or by position in the previous file ordering when one is
// supplied, which keeps repeated layouts stable), then four barycenter
// sweeps alternate down and up. The sort key is the triple (file cluster
// barycenter, file path, node barycenter) so nodes of one file stay
// contiguous while crossings shrink.
func orderLayers(pg *pgraph, prevOrder []string) {
	maxLayer := 0
	for _, n := range pg.nodes {
		if n.layer > maxLayer {
			maxLayer = n.layer
		}
	}
	pg.layers = make([][]int, maxLayer+1)
	for i, n := range pg.nodes {
		pg.layers[n.layer] = append(pg.layers[n.layer], i)
	}

	prevPos := make(map[string]int, len(prevOrder))
	for i, f := range prevOrder {
		prevPos[f] = i
	}
	filePos := func(path string) (int, bool) {
		p, ok := prevPos[path]
		return p, ok
	}

	for _, layer := range pg.layers {
		sort.SliceStable(layer, func(a, b int) bool {
			fa, fb := pg.nodes[layer[a]].filePath, pg.nodes[layer[b]].filePath
			pa, okA := filePos(fa)
			pb, okB := filePos(fb)
			switch {
			case okA && okB && pa != pb:
				return pa < pb
			case okA != okB:
				return okA
			}
			return fa < fb
		})
	}
	pg.syncOrders()

	down := make([][]int, len(pg.nodes)) // predecessors via unit segments
	up := make([][]int, len(pg.nodes))   // successors
	for _, s := range pg.segs {
		down[s.to] = append(down[s.to], s.from)
		up[s.from] = append(up[s.from], s.to)
	}

	for sweep := 0; sweep < 4; sweep++ {
		if sweep%2 == 0 {
			for l := 1; l < len(pg.layers); l++ {
				pg.sortLayer(l, down)
			}
		} else {
			for l := len(pg.layers) - 2; l >= 0; l-- {
				pg.sortLayer(l, up)
			}
		}
	}
}

func (pg *pgraph) syncOrders() {
	for _, layer := range pg.layers {
		for pos, n := range layer {
			pg.nodes[n].order = pos
		}
	}
}

// sortLayer reorders one layer by the cluster-aware barycenter key against
// the neighbor positions recorded in adjacency.
func (pg *pgraph) sortLayer(l int, adjacency [][]int) {
	layer := pg.layers[l]

	bary := make(map[int]float64, len(layer))
	for _, n := range layer {
		neighbors := adjacency[n]
		if len(neighbors) == 0 {
			bary[n] = float64(pg.nodes[n].order)
			continue
		}
		sum := 0.0
		for _, m := range neighbors {
			sum += float64(pg.nodes[m].order)
		}
		bary[n] = sum / float64(len(neighbors))
	}

	fileSum := make(map[string]float64)
	fileCount := make(map[string]int)
	for _, n := range layer {
		path := pg.nodes[n].filePath
		fileSum[path] += bary[n]
		fileCount[path]++
	}
	fileBary := func(path string) float64 {
		return fileSum[path] / float64(fileCount[path])
	}

	sort.SliceStable(layer, func(a, b int) bool {
		na, nb := pg.nodes[layer[a]], pg.nodes[layer[b]]
		if na.filePath != nb.filePath {
			fa, fb := fileBary(na.filePath), fileBary(nb.filePath)
			if fa != fb {
				return fa < fb
			}
			return na.filePath < nb.filePath
		}
		if bary[layer[a]] != bary[layer[b]] {
			return bary[layer[a]] < bary[layer[b]]
		}
		return false
	})
	for pos, n := range layer {
		pg.nodes[n].order = pos
	}
}

// deriveFileOrder scans the refined layers top to bottom, left to right;
// the first appearance of each file fixes its cluster position. When a
// previous ordering exists it wins for retained files, and files that
// appeared since are inserted right after their nearest retained
// scan-order predecessor.
func deriveFileOrder(pg *pgraph, prevOrder []string) []string {
	var scan []string
	seen := make(map[string]bool)
	for _, layer := range pg.layers {
		for _, n := range layer {
			path := pg.nodes[n].filePath
			if !seen[path] {
				seen[path] = true
				scan = append(scan, path)
			}
		}
	}
	if prevOrder == nil {
		return scan
	}

	var order []string
	retained := make(map[string]bool)
	for _, f := range prevOrder {
		if seen[f] {
			order = append(order, f)
			retained[f] = true
		}
	}
	pos := make(map[string]int, len(order))
	for i, f := range order {
		pos[f] = i
	}
	for i, f := range scan {
		if retained[f] {
			continue
		}
		// Insert after the nearest retained predecessor in scan order.
		at := 0
		for j := i - 1; j >= 0; j-- {
			if p, ok := pos[scan[j]]; ok {
				at = p + 1
				break
			}
		}
		order = append(order, "")
		copy(order[at+1:], order[at:])
		order[at] = f
		pos = make(map[string]int, len(order))
		for k, g := range order {
			pos[g] = k
		}
	}
	return order
}
