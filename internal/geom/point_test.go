package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderClockwiseStartsAtTopLeft(t *testing.T) {
	// Square given in a shuffled, non-clockwise order.
	pts := []Point{{10, 10}, {0, 0}, {10, 0}, {0, 10}}
	q := OrderClockwise(pts)
	assert.Equal(t, Point{0, 0}, q[0])
}

func TestOrderClockwiseDegenerateFallsBackToBoundingBox(t *testing.T) {
	q := OrderClockwise([]Point{{0, 0}, {1, 1}, {2, 2}})
	assert.Equal(t, Point{0, 0}, q[0])
	assert.Equal(t, Point{2, 2}, q[2])
}

func TestUnclipQuadExpandsOutward(t *testing.T) {
	quad := Quad{{0, 0}, {10, 0}, {10, 10}, {0, 10}}
	expanded, ok := UnclipQuad(quad, 1.5)
	assert.True(t, ok)

	b := BoundingBox(expanded[:])
	assert.Greater(t, b.Width(), 10.0)
	assert.Greater(t, b.Height(), 10.0)
}

func TestUnclipQuadDegenerateFails(t *testing.T) {
	// A sliver whose area is far below 1 receives only a tiny unclip offset
	// (area*ratio/perimeter) and stays under an area of 1 after expansion.
	quad := Quad{{0, 0}, {0.5, 0}, {0.5, 0.001}, {0, 0.001}}
	_, ok := UnclipQuad(quad, 1.5)
	assert.False(t, ok)
}

func TestBoundingBoxEmpty(t *testing.T) {
	b := BoundingBox(nil)
	assert.Equal(t, 0.0, b.Width())
}
