package layout

// route builds the waypoint polyline for every surviving edge. Forward
// edges run segment by segment through their dummy chain: straight when
// the endpoints share a cross coordinate, otherwise a three-segment
// staircase through the midpoint between the two layers. Backedges swing
// outside the drawing and re-enter the target's flow-exit side.
func route(pg *pgraph, dir Direction) []RoutedEdge {
	maxCross := 0.0
	for _, n := range pg.nodes {
		var far float64
		if dir == LeftToRight {
			far = n.y + n.height
		} else {
			far = n.x + n.width
		}
		if far > maxCross {
			maxCross = far
		}
	}

	var out []RoutedEdge
	for _, e := range pg.edges {
		var points []Point
		if e.back {
			points = routeBackedge(pg.nodes[e.from], pg.nodes[e.to], dir, maxCross)
		} else {
			chain := append([]int{e.from}, e.chain...)
			chain = append(chain, e.to)
			for i := 0; i+1 < len(chain); i++ {
				points = append(points, routeSegment(pg.nodes[chain[i]], pg.nodes[chain[i+1]], dir)...)
			}
		}
		out = append(out, RoutedEdge{
			From:   pg.nodes[e.from].id,
			To:     pg.nodes[e.to].id,
			Kind:   e.kind,
			Points: dedupePoints(points),
			IsBack: e.back,
		})
	}
	return out
}

// routeSegment connects the flow-exit side of a to the flow-entry side of
// b across one layer gap.
func routeSegment(a, b *lnode, dir Direction) []Point {
	aCross, aExit := crossCenter(a, dir), flowExit(a, dir)
	bCross, bEntry := crossCenter(b, dir), flowEntry(b, dir)

	start := pointAt(aCross, aExit, dir)
	end := pointAt(bCross, bEntry, dir)
	if aCross == bCross {
		return []Point{start, end}
	}
	mid := (aExit + bEntry) / 2
	return []Point{
		start,
		pointAt(aCross, mid, dir),
		pointAt(bCross, mid, dir),
		end,
	}
}

// routeBackedge exits the source's flow side, swings past every node along
// the cross axis, runs back along the flow axis, and enters the target's
// flow-exit side.
func routeBackedge(a, b *lnode, dir Direction, maxCross float64) []Point {
	aCross, aExit := crossCenter(a, dir), flowExit(a, dir)
	bCross, bExit := crossCenter(b, dir), flowExit(b, dir)
	lane := maxCross + backedgeMargin

	return []Point{
		pointAt(aCross, aExit, dir),
		pointAt(aCross, aExit+backedgeMargin/2, dir),
		pointAt(lane, aExit+backedgeMargin/2, dir),
		pointAt(lane, bExit+backedgeMargin/2, dir),
		pointAt(bCross, bExit+backedgeMargin/2, dir),
		pointAt(bCross, bExit, dir),
	}
}

// pointAt converts (cross, flow) coordinates into (x, y).
func pointAt(cross, flow float64, dir Direction) Point {
	if dir == LeftToRight {
		return Point{X: flow, Y: cross}
	}
	return Point{X: cross, Y: flow}
}

func crossCenter(n *lnode, dir Direction) float64 {
	if dir == LeftToRight {
		return n.y + n.height/2
	}
	return n.x + n.width/2
}

func flowEntry(n *lnode, dir Direction) float64 {
	if dir == LeftToRight {
		return n.x
	}
	return n.y
}

func flowExit(n *lnode, dir Direction) float64 {
	if dir == LeftToRight {
		return n.x + n.width
	}
	return n.y + n.height
}

// dedupePoints removes consecutive identical waypoints.
func dedupePoints(points []Point) []Point {
	out := points[:0]
	for i, p := range points {
		if i > 0 && p == out[len(out)-1] {
			continue
		}
		out = append(out, p)
	}
	return out
}
