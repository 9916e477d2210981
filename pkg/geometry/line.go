package geometry

import "math"

// LineThresholds holds the tunable cut-offs used to classify a stroke as a
// straight line. A stroke is straight when either the endpoint separation is
// nearly the full polyline length, or the stroke enclosed little area
// relative to its length while still travelling mostly end to end.
type LineThresholds struct {
	// AreaToLengthRatio is the maximum enclosed-area / length ratio for the
	// combined test.
	AreaToLengthRatio float64
	// EndpointToLengthRatio is the minimum endpoint-distance / length ratio
	// for the combined test.
	EndpointToLengthRatio float64
	// DirectRatio is the endpoint-distance / length ratio above which a
	// stroke is straight regardless of area.
	DirectRatio float64
}

// StraightLineThresholds are the default classification cut-offs. They are
// heuristics; adjust with care and keep the golden tests green.
var StraightLineThresholds = LineThresholds{
	AreaToLengthRatio:     0.1,
	EndpointToLengthRatio: 0.5,
	DirectRatio:           0.95,
}

// IsStraightLine classifies the polyline as a straight-ish stroke using
// thresholds. Strokes with fewer than 2 points are not lines.
func IsStraightLine(points []Point, thresholds LineThresholds) bool {
	if len(points) < 2 {
		return false
	}
	length := PolylineLength(points)
	if length <= epsilon {
		return false
	}
	endpointRatio := points[0].DistanceTo(points[len(points)-1]) / length
	if endpointRatio >= thresholds.DirectRatio {
		return true
	}
	areaRatio := PolygonArea(points) / length
	return areaRatio <= thresholds.AreaToLengthRatio &&
		endpointRatio >= thresholds.EndpointToLengthRatio
}

// ProjectOntoLine returns the projection of p onto the infinite line through
// a and b. When a and b coincide, a is returned.
func ProjectOntoLine(p, a, b Point) Point {
	dx, dy := b.X-a.X, b.Y-a.Y
	lenSq := dx*dx + dy*dy
	if lenSq <= epsilon {
		return a
	}
	t := ((p.X-a.X)*dx + (p.Y-a.Y)*dy) / lenSq
	return Point{X: a.X + t*dx, Y: a.Y + t*dy}
}

// DistanceToLine returns the perpendicular distance from p to the infinite
// line through a and b.
func DistanceToLine(p, a, b Point) float64 {
	return p.DistanceTo(ProjectOntoLine(p, a, b))
}

// Heading returns the compass heading in degrees [0, 360) of the vector from
// origin to target, with 0 pointing up (negative y) and 90 pointing right.
func Heading(origin, target Point) float64 {
	deg := math.Atan2(target.X-origin.X, origin.Y-target.Y) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

// CompassSegment maps a heading in degrees onto one of nSegments equal
// sectors, with sector 0 centered on heading 0. Returns -1 for nSegments < 1.
func CompassSegment(heading float64, nSegments int) int {
	if nSegments < 1 {
		return -1
	}
	sector := 360.0 / float64(nSegments)
	shifted := math.Mod(heading+sector/2, 360)
	if shifted < 0 {
		shifted += 360
	}
	return int(shifted / sector)
}
