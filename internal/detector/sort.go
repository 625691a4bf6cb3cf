package detector

import "sort"

// rowTolerance is how many pixels of top-left-corner Y difference still
// counts as "the same text row" for the bubble pass below.
const rowTolerance = 10.0

// SortReadingOrder orders boxes top-to-bottom, then left-to-right within
// rows that are approximately level: first a stable sort by the box's
// top-left corner (y, then x), then a single bubble pass that swaps
// adjacent boxes whose y values are within rowTolerance but whose x order
// is inverted, so that boxes on the same visual row but with slightly
// different detector-reported y still end up left-to-right.
func SortReadingOrder(boxes []Box) []Box {
	out := make([]Box, len(boxes))
	copy(out, boxes)

	sort.SliceStable(out, func(i, j int) bool {
		pi, pj := out[i].Quad[0], out[j].Quad[0]
		if pi.Y != pj.Y {
			return pi.Y < pj.Y
		}
		return pi.X < pj.X
	})

	for i := 1; i < len(out); i++ {
		a, b := out[i-1].Quad[0], out[i].Quad[0]
		if abs(a.Y-b.Y) < rowTolerance && a.X > b.X {
			out[i-1], out[i] = out[i], out[i-1]
		}
	}

	return out
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
