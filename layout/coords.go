package layout

// place assigns concrete coordinates. The flow axis is the one layers
// progress along (vertical for top-to-bottom, horizontal for
// left-to-right); the cross axis is perpendicular. Each file cluster owns
// a band along the cross axis wide enough for its widest layer; within a
// layer, a file's nodes sit contiguously centered in the band, and every
// node centers in its layer's flow extent.
func place(pg *pgraph, fileOrder []string, dir Direction) {
	for _, n := range pg.nodes {
		switch {
		case n.dummy:
			n.flowSize = dummyFlowSize
			n.crossSize = 0
		case dir == LeftToRight:
			n.flowSize = labelWidth(n.label)
			n.crossSize = nodeHeight
		default:
			n.flowSize = nodeHeight
			n.crossSize = labelWidth(n.label)
		}
	}

	// Layer flow bands.
	flowPos := make([]float64, len(pg.layers))
	flowExtent := make([]float64, len(pg.layers))
	// The first layer starts below the cluster header band so the padded
	// boxes never cross the origin.
	cursor := clusterPad + headerPad
	for l, layer := range pg.layers {
		extent := 0.0
		for _, n := range layer {
			if pg.nodes[n].flowSize > extent {
				extent = pg.nodes[n].flowSize
			}
		}
		flowPos[l] = cursor
		flowExtent[l] = extent
		cursor += extent + layerGap
	}

	// Cluster header space sits on the cross axis only for left-to-right
	// layouts, where bands stack vertically under their labels.
	headerReserve := 0.0
	if dir == LeftToRight {
		headerReserve = headerPad
	}

	// Band width per file: the widest contiguous group over all layers.
	bandWidth := make(map[string]float64)
	for _, layer := range pg.layers {
		groupWidth := make(map[string]float64)
		groupCount := make(map[string]int)
		for _, n := range layer {
			path := pg.nodes[n].filePath
			groupWidth[path] += pg.nodes[n].crossSize
			groupCount[path]++
		}
		for path, w := range groupWidth {
			w += float64(groupCount[path]-1) * nodeGap
			if w > bandWidth[path] {
				bandWidth[path] = w
			}
		}
	}

	bandStart := make(map[string]float64)
	crossCursor := clusterPad
	for _, path := range fileOrder {
		bandStart[path] = crossCursor
		crossCursor += bandWidth[path] + headerReserve + clusterGap
	}

	// Per layer, pack each file's group centered inside its band.
	for l, layer := range pg.layers {
		groupWidth := make(map[string]float64)
		groupCount := make(map[string]int)
		for _, n := range layer {
			path := pg.nodes[n].filePath
			groupWidth[path] += pg.nodes[n].crossSize
			groupCount[path]++
		}
		offset := make(map[string]float64)
		for path, w := range groupWidth {
			w += float64(groupCount[path]-1) * nodeGap
			offset[path] = bandStart[path] + headerReserve + (bandWidth[path]-w)/2
		}
		for _, ni := range layer {
			n := pg.nodes[ni]
			cross := offset[n.filePath]
			offset[n.filePath] += n.crossSize + nodeGap
			flow := flowPos[l] + (flowExtent[l]-n.flowSize)/2

			if dir == LeftToRight {
				n.x, n.y = flow, cross
				n.width, n.height = n.flowSize, n.crossSize
			} else {
				n.x, n.y = cross, flow
				n.width, n.height = n.crossSize, n.flowSize
			}
		}
	}
}
