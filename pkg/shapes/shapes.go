// Package shapes provides the pure stroke analyzers: template-based shape
// recognition over a point list, and radial swipe classification. Both are
// plain functions with no engine state.
package shapes

import (
	"math"

	"github.com/go-mil/mil/pkg/geometry"
)

// Shape identifies a recognizable stroke shape.
type Shape int

const (
	// ShapeNone means no template matched well enough.
	ShapeNone Shape = iota
	ShapeCheckMark
	ShapeTriangle
	ShapeRectangle
	ShapeCircle
	ShapeStar
	ShapeStrikeThroughHorizontal
	ShapeStrikeThroughVertical
)

// String returns the shape's name.
func (s Shape) String() string {
	switch s {
	case ShapeCheckMark:
		return "check-mark"
	case ShapeTriangle:
		return "triangle"
	case ShapeRectangle:
		return "rectangle"
	case ShapeCircle:
		return "circle"
	case ShapeStar:
		return "star"
	case ShapeStrikeThroughHorizontal:
		return "strike-through-horizontal"
	case ShapeStrikeThroughVertical:
		return "strike-through-vertical"
	default:
		return "none"
	}
}

// AllShapes lists every recognizable shape.
var AllShapes = []Shape{
	ShapeCheckMark,
	ShapeTriangle,
	ShapeRectangle,
	ShapeCircle,
	ShapeStar,
	ShapeStrikeThroughHorizontal,
	ShapeStrikeThroughVertical,
}

// resampleCount is the fixed point count strokes and templates compare at.
const resampleCount = 64

// thinAspectRatio is the height/width (or width/height) ratio below which a
// stroke is treated as a strike-through line rather than a 2D shape.
const thinAspectRatio = 0.1

// templates in unit-square space.
var templates = map[Shape][]geometry.Point{
	ShapeCheckMark: {{X: 0, Y: 0.55}, {X: 0.35, Y: 1}, {X: 1, Y: 0}},
	ShapeTriangle:  {{X: 0.5, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0.5, Y: 0}},
	ShapeRectangle: {{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0, Y: 0}},
	ShapeCircle:    circleTemplate(16),
	ShapeStar:      {{X: 0.5, Y: 0}, {X: 0.68, Y: 0.95}, {X: 0, Y: 0.36}, {X: 1, Y: 0.36}, {X: 0.32, Y: 0.95}, {X: 0.5, Y: 0}},
	ShapeStrikeThroughHorizontal: {{X: 0, Y: 0.5}, {X: 1, Y: 0.5}},
	ShapeStrikeThroughVertical:   {{X: 0.5, Y: 0}, {X: 0.5, Y: 1}},
}

func circleTemplate(n int) []geometry.Point {
	pts := make([]geometry.Point, n+1)
	for i := 0; i <= n; i++ {
		a := float64(i) / float64(n) * 2 * math.Pi
		pts[i] = geometry.Point{X: 0.5 + 0.5*math.Cos(a), Y: 0.5 + 0.5*math.Sin(a)}
	}
	return pts
}

// Match is a scored recognition result.
type Match struct {
	Shape   Shape
	Percent float64
}

// RecognizeShape matches a stroke against the shape templates and returns
// the best match scoring at least minMatchPercent (0..100), or a ShapeNone
// match. gestureWidth/gestureHeight, when positive, replace the stroke's own
// width/height in the thin-stroke and line-orientation checks; points are
// always normalized against the stroke's own bounds.
// A nil targetShapes matches against every shape.
func RecognizeShape(points []geometry.Point, minMatchPercent, gestureWidth, gestureHeight float64, targetShapes []Shape) Match {
	if len(points) < 2 {
		return Match{Shape: ShapeNone}
	}
	bounds := geometry.Bounds(points)
	width, height := bounds.Width(), bounds.Height()
	if gestureWidth > 0 {
		width = gestureWidth
	}
	if gestureHeight > 0 {
		height = gestureHeight
	}

	candidates := targetShapes
	if candidates == nil {
		candidates = AllShapes
	}
	// Degenerate aspect: only the strike-through lines apply, and a 2D
	// normalization would blow up the thin axis.
	thin := isThin(width, height)
	resampled := resample(normalize(points, bounds), resampleCount)

	best := Match{Shape: ShapeNone}
	for _, shape := range candidates {
		isLine := shape == ShapeStrikeThroughHorizontal || shape == ShapeStrikeThroughVertical
		if thin != isLine {
			continue
		}
		if thin && !lineOrientationMatches(shape, width, height) {
			continue
		}
		template, ok := templates[shape]
		if !ok {
			continue
		}
		pct := similarity(resampled, resample(template, resampleCount))
		if pct > best.Percent {
			best = Match{Shape: shape, Percent: pct}
		}
	}
	if best.Percent < minMatchPercent {
		return Match{Shape: ShapeNone, Percent: best.Percent}
	}
	return best
}

func isThin(width, height float64) bool {
	if width <= 0 || height <= 0 {
		return true
	}
	return height/width < thinAspectRatio || width/height < thinAspectRatio
}

func lineOrientationMatches(shape Shape, width, height float64) bool {
	if shape == ShapeStrikeThroughHorizontal {
		return width >= height
	}
	return height > width
}

// normalize maps points into the unit square. Degenerate axes collapse to
// the 0.5 midline so lines stay comparable.
func normalize(points []geometry.Point, bounds geometry.Rect) []geometry.Point {
	w, h := bounds.Width(), bounds.Height()
	out := make([]geometry.Point, len(points))
	for i, p := range points {
		np := geometry.Point{X: 0.5, Y: 0.5}
		if w > 0 {
			np.X = (p.X - bounds.Left) / w
		}
		if h > 0 {
			np.Y = (p.Y - bounds.Top) / h
		}
		out[i] = np
	}
	return out
}

// resample redistributes the polyline to n evenly spaced points.
func resample(points []geometry.Point, n int) []geometry.Point {
	if len(points) == 0 || n < 2 {
		return points
	}
	total := geometry.PolylineLength(points)
	if total == 0 {
		out := make([]geometry.Point, n)
		for i := range out {
			out[i] = points[0]
		}
		return out
	}
	interval := total / float64(n-1)
	out := []geometry.Point{points[0]}
	accumulated := 0.0
	for i := 1; i < len(points); i++ {
		a, b := points[i-1], points[i]
		seg := a.DistanceTo(b)
		for accumulated+seg >= interval && len(out) < n-1 {
			t := (interval - accumulated) / seg
			mid := geometry.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t}
			out = append(out, mid)
			a = mid
			seg = a.DistanceTo(b)
			accumulated = 0
		}
		accumulated += seg
	}
	for len(out) < n {
		out = append(out, points[len(points)-1])
	}
	return out
}

// similarity scores two equal-length point lists in 0..100, considering the
// stroke both forward and reversed so drawing direction does not matter.
func similarity(stroke, template []geometry.Point) float64 {
	forward := averageDistance(stroke, template)
	reversed := averageDistance(reverse(stroke), template)
	avg := math.Min(forward, reversed)
	// Half the unit-square diagonal is the practical worst case.
	worst := math.Sqrt2 / 2
	score := (1 - avg/worst) * 100
	if score < 0 {
		return 0
	}
	return score
}

func averageDistance(a, b []geometry.Point) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	if n == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := 0; i < n; i++ {
		sum += a[i].DistanceTo(b[i])
	}
	return sum / float64(n)
}

func reverse(points []geometry.Point) []geometry.Point {
	out := make([]geometry.Point, len(points))
	for i, p := range points {
		out[len(points)-1-i] = p
	}
	return out
}

// Swipe is a radial swipe classification.
type Swipe struct {
	// Segment is the compass sector index, or -1 when no swipe was
	// detected.
	Segment int
	// Heading is the compass heading in degrees (0 = up).
	Heading float64
	// Distance is the net displacement of the stroke.
	Distance float64
}

// RecognizeRadialSwipe classifies the net displacement of a stroke into one
// of nSegments compass sectors, with sector 0 centered on north. Strokes
// shorter than minDistance yield Segment -1.
func RecognizeRadialSwipe(points []geometry.Point, nSegments int, minDistance float64) Swipe {
	if len(points) < 2 || nSegments < 1 {
		return Swipe{Segment: -1}
	}
	first, last := points[0], points[len(points)-1]
	distance := first.DistanceTo(last)
	heading := geometry.Heading(first, last)
	if distance < minDistance {
		return Swipe{Segment: -1, Heading: heading, Distance: distance}
	}
	return Swipe{
		Segment:  geometry.CompassSegment(heading, nSegments),
		Heading:  heading,
		Distance: distance,
	}
}
