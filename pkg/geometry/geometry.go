// Package geometry provides the 2D math used by pointer tracking, ink
// capture, and hull construction: points, rectangles, distance metrics,
// convex hulls, polygon containment, and stroke classification.
package geometry

import "math"

// epsilon is the tolerance for floating-point comparisons.
const epsilon = 0.0001

// Point represents a 2D point or vector in pixel coordinates.
type Point struct {
	X float64
	Y float64
}

// Add returns the component-wise sum of p and other.
func (p Point) Add(other Point) Point {
	return Point{X: p.X + other.X, Y: p.Y + other.Y}
}

// Sub returns the component-wise difference of p and other.
func (p Point) Sub(other Point) Point {
	return Point{X: p.X - other.X, Y: p.Y - other.Y}
}

// Scale returns p scaled by factor.
func (p Point) Scale(factor float64) Point {
	return Point{X: p.X * factor, Y: p.Y * factor}
}

// DistanceTo returns the euclidean distance from p to other.
func (p Point) DistanceTo(other Point) float64 {
	return math.Hypot(other.X-p.X, other.Y-p.Y)
}

// ChessboardDistanceTo returns the Chebyshev distance from p to other:
// the larger of the axis deltas. Ink point deduplication uses this metric.
func (p Point) ChessboardDistanceTo(other Point) float64 {
	return math.Max(math.Abs(other.X-p.X), math.Abs(other.Y-p.Y))
}

// Equal returns true if p and other are approximately equal.
func (p Point) Equal(other Point) bool {
	return floatEqual(p.X, other.X) && floatEqual(p.Y, other.Y)
}

// Rect represents a rectangle using left, top, right, bottom coordinates.
type Rect struct {
	Left   float64
	Top    float64
	Right  float64
	Bottom float64
}

// RectFromLTWH constructs a Rect from left, top, width, height values.
func RectFromLTWH(left, top, width, height float64) Rect {
	return Rect{
		Left:   left,
		Top:    top,
		Right:  left + width,
		Bottom: top + height,
	}
}

// Width returns the width of the rectangle.
func (r Rect) Width() float64 {
	return r.Right - r.Left
}

// Height returns the height of the rectangle.
func (r Rect) Height() float64 {
	return r.Bottom - r.Top
}

// Center returns the center point of the rectangle.
func (r Rect) Center() Point {
	return Point{
		X: (r.Left + r.Right) * 0.5,
		Y: (r.Top + r.Bottom) * 0.5,
	}
}

// Contains reports whether p lies inside or on the edge of r.
func (r Rect) Contains(p Point) bool {
	return p.X >= r.Left && p.X <= r.Right && p.Y >= r.Top && p.Y <= r.Bottom
}

// Bounds returns the axis-aligned bounding rectangle of points.
// The zero Rect is returned for an empty slice.
func Bounds(points []Point) Rect {
	if len(points) == 0 {
		return Rect{}
	}
	r := Rect{Left: points[0].X, Top: points[0].Y, Right: points[0].X, Bottom: points[0].Y}
	for _, p := range points[1:] {
		r.Left = math.Min(r.Left, p.X)
		r.Top = math.Min(r.Top, p.Y)
		r.Right = math.Max(r.Right, p.X)
		r.Bottom = math.Max(r.Bottom, p.Y)
	}
	return r
}

// Centroid returns the average of points, or the zero Point for an empty slice.
func Centroid(points []Point) Point {
	if len(points) == 0 {
		return Point{}
	}
	var sum Point
	for _, p := range points {
		sum.X += p.X
		sum.Y += p.Y
	}
	return Point{X: sum.X / float64(len(points)), Y: sum.Y / float64(len(points))}
}

// PolylineLength returns the summed segment lengths of the open polyline.
func PolylineLength(points []Point) float64 {
	var total float64
	for i := 1; i < len(points); i++ {
		total += points[i-1].DistanceTo(points[i])
	}
	return total
}

// PolygonArea returns the absolute area of the polygon described by points
// (closed implicitly), using the shoelace formula.
func PolygonArea(points []Point) float64 {
	if len(points) < 3 {
		return 0
	}
	var sum float64
	for i := range points {
		j := (i + 1) % len(points)
		sum += points[i].X*points[j].Y - points[j].X*points[i].Y
	}
	return math.Abs(sum) * 0.5
}

// floatEqual returns true if two float64 values are approximately equal.
func floatEqual(a, b float64) bool {
	return math.Abs(a-b) <= epsilon
}
