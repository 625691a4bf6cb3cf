// Package geom implements the polygon, quad and convex-hull primitives the
// detector and recognizer stages share: contour simplification, polygon
// offset ("unclip"), minimum-area rectangles and perspective crops.
package geom

import "math"

// Point is a 2D coordinate in image space.
type Point struct {
	X, Y float64
}

// Quad is an oriented 4-point polygon describing a detected text region,
// stored in clockwise order starting from the top-left corner.
type Quad [4]Point

// Box is an axis-aligned bounding box.
type Box struct {
	MinX, MinY, MaxX, MaxY float64
}

// Width returns the box width.
func (b Box) Width() float64 { return b.MaxX - b.MinX }

// Height returns the box height.
func (b Box) Height() float64 { return b.MaxY - b.MinY }

// BoundingBox returns the axis-aligned bounding box of a set of points.
func BoundingBox(pts []Point) Box {
	if len(pts) == 0 {
		return Box{}
	}
	b := Box{MinX: pts[0].X, MinY: pts[0].Y, MaxX: pts[0].X, MaxY: pts[0].Y}
	for _, p := range pts[1:] {
		if p.X < b.MinX {
			b.MinX = p.X
		}
		if p.X > b.MaxX {
			b.MaxX = p.X
		}
		if p.Y < b.MinY {
			b.MinY = p.Y
		}
		if p.Y > b.MaxY {
			b.MaxY = p.Y
		}
	}
	return b
}

// ToQuad converts the 4 corners of this box into a Quad in clockwise order
// starting at the top-left corner: TL, TR, BR, BL.
func (b Box) ToQuad() Quad {
	return Quad{
		{b.MinX, b.MinY},
		{b.MaxX, b.MinY},
		{b.MaxX, b.MaxY},
		{b.MinX, b.MaxY},
	}
}

// OrderClockwise reorders 4 arbitrary points into clockwise order starting
// from the top-left corner (minimal x+y sum; equal sums go to the smaller y,
// then the smaller x), matching the convention every
// downstream stage (crop, unclip scaling, assembly) assumes.
//
// The input is assumed to already describe a simple (non self-intersecting)
// quadrilateral; only the starting corner and winding direction are fixed.
func OrderClockwise(pts []Point) Quad {
	if len(pts) != 4 {
		// Degenerate input: fall back to the bounding box ordering so callers
		// always receive a well-formed quad.
		return BoundingBox(pts).ToQuad()
	}

	cx, cy := 0.0, 0.0
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	cx /= 4
	cy /= 4

	type withAngle struct {
		p     Point
		angle float64
	}
	withAngles := make([]withAngle, 4)
	for i, p := range pts {
		withAngles[i] = withAngle{p, math.Atan2(p.Y-cy, p.X-cx)}
	}
	// Sort by angle ascending; image Y grows downward so ascending atan2
	// order already walks the points clockwise on screen.
	for i := 1; i < 4; i++ {
		v := withAngles[i]
		j := i - 1
		for j >= 0 && withAngles[j].angle > v.angle {
			withAngles[j+1] = withAngles[j]
			j--
		}
		withAngles[j+1] = v
	}

	startIdx := 0
	best := math.Inf(1)
	for i, wa := range withAngles {
		s := wa.p.X + wa.p.Y
		cur := withAngles[startIdx].p
		if s < best || (s == best && (wa.p.Y < cur.Y || (wa.p.Y == cur.Y && wa.p.X < cur.X))) {
			best = s
			startIdx = i
		}
	}

	var q Quad
	for i := range q {
		q[i] = withAngles[(startIdx+i)%4].p
	}
	return q
}

// Clip constrains every point of pts to lie within [0, width] x [0, height].
func Clip(pts []Point, width, height int) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		x := p.X
		y := p.Y
		if x < 0 {
			x = 0
		}
		if x > float64(width) {
			x = float64(width)
		}
		if y < 0 {
			y = 0
		}
		if y > float64(height) {
			y = float64(height)
		}
		out[i] = Point{X: x, Y: y}
	}
	return out
}

// ClipToImage constrains every corner of q to the image bounds.
func (q Quad) ClipToImage(width, height int) Quad {
	clipped := Clip(q[:], width, height)
	return Quad{clipped[0], clipped[1], clipped[2], clipped[3]}
}

// Scale multiplies every coordinate of pts by (sx, sy).
func Scale(pts []Point, sx, sy float64) []Point {
	out := make([]Point, len(pts))
	for i, p := range pts {
		out[i] = Point{X: p.X * sx, Y: p.Y * sy}
	}
	return out
}

// UnclipQuad expands quad outward by the DBNet unclip rule, reduces the
// resulting polygon to its minimum-area oriented bounding rectangle, and
// re-applies OrderClockwise. ok is false when the offset degenerates (area
// less than 1) or produces no usable polygon.
func UnclipQuad(quad Quad, ratio float64) (Quad, bool) {
	expanded := Unclip(quad[:], ratio)
	if len(expanded) < 3 {
		return Quad{}, false
	}
	rect := MinAreaRect(expanded)
	if len(rect) != 4 {
		return Quad{}, false
	}
	b := BoundingBox(rect)
	if b.Width()*b.Height() < 1 {
		return Quad{}, false
	}
	return OrderClockwise(rect), true
}

// Centroid returns the arithmetic mean of pts.
func Centroid(pts []Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	cx, cy := 0.0, 0.0
	for _, p := range pts {
		cx += p.X
		cy += p.Y
	}
	n := float64(len(pts))
	return Point{X: cx / n, Y: cy / n}
}
