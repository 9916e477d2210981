package geometry

import "sort"

// ConvexHull returns the convex hull of points using the monotone chain
// algorithm, starting at the leftmost point and turning counter-clockwise
// with respect to a y-up axis (clockwise as drawn in screen coordinates,
// where y grows downward). Collinear points on the hull boundary are dropped. The input
// slice is not modified. Degenerate inputs (fewer than 3 distinct points)
// return the distinct points in sorted order.
func ConvexHull(points []Point) []Point {
	if len(points) == 0 {
		return nil
	}
	sorted := make([]Point, len(points))
	copy(sorted, points)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].X != sorted[j].X {
			return sorted[i].X < sorted[j].X
		}
		return sorted[i].Y < sorted[j].Y
	})
	// Drop exact duplicates so the hull walk terminates cleanly.
	distinct := sorted[:1]
	for _, p := range sorted[1:] {
		if p != distinct[len(distinct)-1] {
			distinct = append(distinct, p)
		}
	}
	if len(distinct) < 3 {
		return distinct
	}

	var lower []Point
	for _, p := range distinct {
		for len(lower) >= 2 && cross(lower[len(lower)-2], lower[len(lower)-1], p) <= 0 {
			lower = lower[:len(lower)-1]
		}
		lower = append(lower, p)
	}
	var upper []Point
	for i := len(distinct) - 1; i >= 0; i-- {
		p := distinct[i]
		for len(upper) >= 2 && cross(upper[len(upper)-2], upper[len(upper)-1], p) <= 0 {
			upper = upper[:len(upper)-1]
		}
		upper = append(upper, p)
	}
	// Each chain's last point is the first point of the other chain.
	return append(lower[:len(lower)-1], upper[:len(upper)-1]...)
}

// cross returns the z-component of (b-a) x (c-a).
func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// PolygonContainsPoint reports whether p lies inside the polygon described
// by vertices (closed implicitly), using the even-odd ray casting rule.
// Points exactly on an edge may report either way.
func PolygonContainsPoint(vertices []Point, p Point) bool {
	if len(vertices) < 3 {
		return false
	}
	inside := false
	j := len(vertices) - 1
	for i := 0; i < len(vertices); i++ {
		vi, vj := vertices[i], vertices[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) &&
			p.X < (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

// PolygonContainsAll reports whether every point lies inside the polygon.
func PolygonContainsAll(vertices []Point, points []Point) bool {
	for _, p := range points {
		if !PolygonContainsPoint(vertices, p) {
			return false
		}
	}
	return len(points) > 0
}

// PolygonContainsAny reports whether at least one point lies inside the polygon.
func PolygonContainsAny(vertices []Point, points []Point) bool {
	for _, p := range points {
		if PolygonContainsPoint(vertices, p) {
			return true
		}
	}
	return false
}
