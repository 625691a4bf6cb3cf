package geom

import "math"

// Simplify reduces the number of points in a polygon using the
// Douglas-Peucker algorithm with the given tolerance epsilon. The points
// are simplified as an open polyline from the first to the last point;
// both endpoints are always kept.
func Simplify(pts []Point, epsilon float64) []Point {
	if len(pts) <= 3 || epsilon <= 0 {
		return append([]Point(nil), pts...)
	}
	open := append([]Point(nil), pts...)
	keep := make([]bool, len(open))
	dpSimplify(open, 0, len(open)-1, epsilon, keep)
	keep[0] = true
	keep[len(open)-1] = true
	out := make([]Point, 0, len(open))
	for i, k := range keep {
		if k {
			out = append(out, open[i])
		}
	}
	return out
}

func dpSimplify(pts []Point, start, end int, eps float64, keep []bool) {
	if end <= start+1 {
		return
	}
	maxDist := -1.0
	index := -1
	a := pts[start]
	b := pts[end]
	for i := start + 1; i < end; i++ {
		d := perpendicularDistance(pts[i], a, b)
		if d > maxDist {
			maxDist = d
			index = i
		}
	}
	if maxDist > eps {
		dpSimplify(pts, start, index, eps, keep)
		keep[index] = true
		dpSimplify(pts, index, end, eps, keep)
	}
}

func perpendicularDistance(p, a, b Point) float64 {
	vx, vy := b.X-a.X, b.Y-a.Y
	if vx == 0 && vy == 0 {
		return math.Hypot(p.X-a.X, p.Y-a.Y)
	}
	num := math.Abs((p.X-a.X)*vy - (p.Y-a.Y)*vx)
	den := math.Hypot(vx, vy)
	return num / den
}

// signedArea returns twice the signed area of the polygon (positive for
// counter-clockwise winding in Y-up terms, which is clockwise as drawn in a
// Y-down image coordinate system).
func signedArea(pts []Point) float64 {
	n := len(pts)
	sum := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return sum
}

// Unclip expands a polygon outward by distance d using a true polygon
// offset: each edge is pushed out along its outward normal by d and the
// offset edges are re-intersected, which is the DBNet "unclip" step
// (Vatti/Minkowski-sum style dilation, round joins approximated by simply
// keeping the offset edge intersections rather than inserting arcs, which
// is accurate enough for the near-convex quads text detectors emit).
//
// ratio scales the offset distance relative to the polygon's
// area-to-perimeter ratio, matching the DBNet paper's formula:
// d = area * ratio / perimeter.
func Unclip(pts []Point, ratio float64) []Point {
	n := len(pts)
	if n < 3 || ratio <= 0 {
		return append([]Point(nil), pts...)
	}

	area := math.Abs(signedArea(pts)) / 2
	perim := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		perim += math.Hypot(pts[j].X-pts[i].X, pts[j].Y-pts[i].Y)
	}
	if perim == 0 {
		return append([]Point(nil), pts...)
	}
	d := area * ratio / perim

	// Work with a polygon of positive signed area so "outward" is
	// consistently on the same side of each directed edge.
	ccw := append([]Point(nil), pts...)
	if signedArea(ccw) < 0 {
		reverse(ccw)
	}

	type edge struct {
		a, b   Point
		nx, ny float64 // outward unit normal
	}
	edges := make([]edge, n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a, b := ccw[i], ccw[j]
		dx, dy := b.X-a.X, b.Y-a.Y
		l := math.Hypot(dx, dy)
		if l == 0 {
			edges[i] = edge{a: a, b: b}
			continue
		}
		// For positive signed area the outward unit normal is (dy, -dx)/len:
		// travelling +x along the top edge of a box it points to -y.
		nx, ny := dy/l, -dx/l
		edges[i] = edge{a: Point{a.X + nx*d, a.Y + ny*d}, b: Point{b.X + nx*d, b.Y + ny*d}, nx: nx, ny: ny}
	}

	out := make([]Point, n)
	for i := 0; i < n; i++ {
		prev := edges[(i-1+n)%n]
		cur := edges[i]
		p, ok := lineIntersect(prev.a, prev.b, cur.a, cur.b)
		if !ok {
			// Parallel edges (straight continuation): offset point is just
			// the original vertex pushed out by the shared normal.
			p = Point{X: ccw[i].X + cur.nx*d, Y: ccw[i].Y + cur.ny*d}
		}
		out[i] = p
	}
	return out
}

func reverse(pts []Point) {
	for i, j := 0, len(pts)-1; i < j; i, j = i+1, j-1 {
		pts[i], pts[j] = pts[j], pts[i]
	}
}

// lineIntersect finds the intersection of infinite lines (a1,a2) and
// (b1,b2). ok is false if the lines are parallel.
func lineIntersect(a1, a2, b1, b2 Point) (Point, bool) {
	d1x, d1y := a2.X-a1.X, a2.Y-a1.Y
	d2x, d2y := b2.X-b1.X, b2.Y-b1.Y
	denom := d1x*d2y - d1y*d2x
	if math.Abs(denom) < 1e-9 {
		return Point{}, false
	}
	t := ((b1.X-a1.X)*d2y - (b1.Y-a1.Y)*d2x) / denom
	return Point{X: a1.X + t*d1x, Y: a1.Y + t*d1y}, true
}

// ConvexHull computes the convex hull of a set of points using the
// monotone chain algorithm. Returns the hull in CCW order without
// duplicating the first point at the end.
func ConvexHull(pts []Point) []Point {
	n := len(pts)
	if n <= 1 {
		return append([]Point(nil), pts...)
	}
	p := make([]Point, n)
	copy(p, pts)
	sortPoints(p)
	p = removeDuplicatePoints(p)
	n = len(p)
	if n <= 1 {
		return append([]Point(nil), p...)
	}
	lower := buildLowerHull(p)
	upper := buildUpperHull(p)
	hull := make([]Point, 0, len(lower)+len(upper)-2)
	hull = append(hull, lower[:len(lower)-1]...)
	hull = append(hull, upper[:len(upper)-1]...)
	return hull
}

func removeDuplicatePoints(p []Point) []Point {
	q := p[:0]
	var last Point
	hasLast := false
	for _, pt := range p {
		if !hasLast || pt.X != last.X || pt.Y != last.Y {
			q = append(q, pt)
			last = pt
			hasLast = true
		}
	}
	return q
}

func buildLowerHull(p []Point) []Point {
	lower := make([]Point, 0, len(p))
	for _, pt := range p {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], pt) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, pt)
	}
	return lower
}

func buildUpperHull(p []Point) []Point {
	upper := make([]Point, 0, len(p))
	for i := len(p) - 1; i >= 0; i-- {
		pt := p[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], pt) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, pt)
	}
	return upper
}

func sortPoints(p []Point) {
	for i := 1; i < len(p); i++ {
		v := p[i]
		j := i - 1
		for j >= 0 && (p[j].X > v.X || (p[j].X == v.X && p[j].Y > v.Y)) {
			p[j+1] = p[j]
			j--
		}
		p[j+1] = v
	}
}

func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// MinAreaRect computes the minimum-area enclosing rectangle using a
// rotating-calipers sweep over the convex hull. Returns 4 points; degenerate
// inputs (1/2 distinct hull points) fall back to a thin rectangle, and an
// empty input returns nil.
func MinAreaRect(pts []Point) []Point {
	if len(pts) == 0 {
		return nil
	}
	hull := ConvexHull(pts)
	switch len(hull) {
	case 0:
		return nil
	case 1:
		return rectangleForSinglePoint(hull[0])
	case 2:
		return rectangleForTwoPoints(hull[0], hull[1])
	default:
		return findMinimumAreaRectangle(hull)
	}
}

func rectangleForSinglePoint(p Point) []Point {
	return []Point{{p.X, p.Y}, {p.X + 1, p.Y}, {p.X + 1, p.Y + 1}, {p.X, p.Y + 1}}
}

func rectangleForTwoPoints(a, b Point) []Point {
	return []Point{a, b, {b.X, b.Y + 1}, {a.X, a.Y + 1}}
}

func findMinimumAreaRectangle(hull []Point) []Point {
	bestArea := math.Inf(1)
	var bestU, bestV Point
	var bestMinS, bestMaxS, bestMinT, bestMaxT float64
	for i := range hull {
		a := hull[i]
		b := hull[(i+1)%len(hull)]
		dx := b.X - a.X
		dy := b.Y - a.Y
		length := math.Hypot(dx, dy)
		if length == 0 {
			continue
		}
		ux, uy := dx/length, dy/length
		vx, vy := -uy, ux
		minS, maxS := math.Inf(1), math.Inf(-1)
		minT, maxT := math.Inf(1), math.Inf(-1)
		for _, p := range hull {
			s := p.X*ux + p.Y*uy
			t := p.X*vx + p.Y*vy
			if s < minS {
				minS = s
			}
			if s > maxS {
				maxS = s
			}
			if t < minT {
				minT = t
			}
			if t > maxT {
				maxT = t
			}
		}
		area := (maxS - minS) * (maxT - minT)
		if area < bestArea {
			bestArea = area
			bestU = Point{ux, uy}
			bestV = Point{vx, vy}
			bestMinS, bestMaxS, bestMinT, bestMaxT = minS, maxS, minT, maxT
		}
	}
	c0 := Point{X: bestU.X*bestMinS + bestV.X*bestMinT, Y: bestU.Y*bestMinS + bestV.Y*bestMinT}
	c1 := Point{X: bestU.X*bestMaxS + bestV.X*bestMinT, Y: bestU.Y*bestMaxS + bestV.Y*bestMinT}
	c2 := Point{X: bestU.X*bestMaxS + bestV.X*bestMaxT, Y: bestU.Y*bestMaxS + bestV.Y*bestMaxT}
	c3 := Point{X: bestU.X*bestMinS + bestV.X*bestMaxT, Y: bestU.Y*bestMinS + bestV.Y*bestMaxT}
	return []Point{c0, c1, c2, c3}
}
