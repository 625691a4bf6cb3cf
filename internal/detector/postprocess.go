package detector

import (
	"sort"

	"github.com/glyphlane/oar/internal/geom"
)

// postprocess turns a DBNet probability map into candidate text-region
// boxes: threshold, connected-component extraction, area-descending
// candidate capping, minimum-area rectangle fit, mean-probability scoring,
// and polygon-offset unclip.
func postprocess(prob []float32, h, w int, cfg Config) []Box {
	mask := make([]bool, len(prob))
	for i, v := range prob {
		mask[i] = v >= cfg.BinThreshold
	}

	comps := connectedComponents(mask, h, w)

	sort.Slice(comps, func(i, j int) bool {
		return len(comps[i].points) > len(comps[j].points)
	})
	if cfg.MaxCandidates > 0 && len(comps) > cfg.MaxCandidates {
		comps = comps[:cfg.MaxCandidates]
	}

	boxes := make([]Box, 0, len(comps))
	for _, comp := range comps {
		if len(comp.points) < cfg.MinBoxArea {
			continue
		}

		score := meanProbability(prob, w, comp.points)
		if score < cfg.BoxThreshold {
			continue
		}

		pts := make([]geom.Point, len(comp.points))
		for i, p := range comp.points {
			pts[i] = geom.Point{X: float64(p.x), Y: float64(p.y)}
		}
		hull := geom.ConvexHull(pts)
		if len(hull) < 3 {
			continue
		}
		rect := geom.MinAreaRect(hull)
		if len(rect) != 4 {
			continue
		}
		quad := geom.OrderClockwise(rect)

		expanded, ok := geom.UnclipQuad(quad, cfg.UnclipRatio)
		if !ok {
			continue
		}

		boxes = append(boxes, Box{Quad: expanded, Score: score})
	}
	return boxes
}

func meanProbability(prob []float32, w int, pts []point) float32 {
	var sum float32
	for _, p := range pts {
		sum += prob[p.y*w+p.x]
	}
	return sum / float32(len(pts))
}
