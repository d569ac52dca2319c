package layout

import "sort"

// clusterBoxes computes the padded bounding rectangle of every
// non-collapsed file. The header side gets extra padding for the filename
// label and the optional owner chips.
func clusterBoxes(pg *pgraph, opts Options) []ClusterBox {
	type bounds struct {
		minX, minY, maxX, maxY float64
		any                    bool
	}
	byFile := make(map[string]*bounds)
	for _, n := range pg.nodes {
		if n.dummy || n.collapsed {
			continue
		}
		b, ok := byFile[n.filePath]
		if !ok {
			b = &bounds{minX: n.x, minY: n.y, maxX: n.x + n.width, maxY: n.y + n.height, any: true}
			byFile[n.filePath] = b
			continue
		}
		if n.x < b.minX {
			b.minX = n.x
		}
		if n.y < b.minY {
			b.minY = n.y
		}
		if n.x+n.width > b.maxX {
			b.maxX = n.x + n.width
		}
		if n.y+n.height > b.maxY {
			b.maxY = n.y + n.height
		}
	}

	paths := make([]string, 0, len(byFile))
	for path := range byFile {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	var boxes []ClusterBox
	for _, path := range paths {
		b := byFile[path]
		box := ClusterBox{
			FilePath: path,
			X:        b.minX - clusterPad,
			Y:        b.minY - clusterPad,
			Width:    b.maxX - b.minX + 2*clusterPad,
			Height:   b.maxY - b.minY + 2*clusterPad,
			Owners:   opts.Owners[path],
		}
		// The label and owner chips sit along the top edge in both
		// directions, so the header side is always Y.
		box.Y -= headerPad - clusterPad
		box.Height += headerPad - clusterPad
		boxes = append(boxes, box)
	}
	return boxes
}
