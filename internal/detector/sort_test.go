package detector

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/glyphlane/oar/internal/geom"
)

func boxAt(x, y float64) Box {
	return Box{Quad: geom.Quad{{X: x, Y: y}, {X: x + 10, Y: y}, {X: x + 10, Y: y + 10}, {X: x, Y: y + 10}}}
}

func TestSortReadingOrderTwoRows(t *testing.T) {
	boxes := []Box{boxAt(50, 0), boxAt(0, 0), boxAt(20, 40), boxAt(5, 41)}
	sorted := SortReadingOrder(boxes)

	assert.Equal(t, 0.0, sorted[0].Quad[0].X)
	assert.Equal(t, 50.0, sorted[1].Quad[0].X)
	assert.Equal(t, 5.0, sorted[2].Quad[0].X)
	assert.Equal(t, 20.0, sorted[3].Quad[0].X)
}

func TestSortReadingOrderDoesNotMutateInput(t *testing.T) {
	boxes := []Box{boxAt(50, 0), boxAt(0, 0)}
	_ = SortReadingOrder(boxes)
	assert.Equal(t, 50.0, boxes[0].Quad[0].X)
}

func TestConnectedComponentsSplitsDisjointRegions(t *testing.T) {
	// 5x1 mask with a gap: [T,T,F,T,T]
	mask := []bool{true, true, false, true, true}
	comps := connectedComponents(mask, 1, 5)
	assert.Len(t, comps, 2)
}

func TestConnectedComponentsMergesAdjacent(t *testing.T) {
	mask := []bool{true, true, true}
	comps := connectedComponents(mask, 1, 3)
	assert.Len(t, comps, 1)
	assert.Len(t, comps[0].points, 3)
}
