package ink

import (
	"math"
	"strconv"

	"github.com/go-mil/mil/pkg/geometry"
	"github.com/go-mil/mil/pkg/scene"
)

// HullClassName is the class carried by every hull path element.
const HullClassName = "mil-ink-hull"

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// pathFromSequences builds one path with a subpath per point sequence.
func pathFromSequences(sequences [][]geometry.Point, closed bool) *scene.Path {
	p := &scene.Path{}
	for _, seq := range sequences {
		if len(seq) == 0 {
			continue
		}
		p.MoveTo(seq[0].X, seq[0].Y)
		for _, pt := range seq[1:] {
			p.LineTo(pt.X, pt.Y)
		}
		if closed {
			p.Close()
		}
	}
	return p
}

// buildHull appends the hull path element above the composite path and
// returns it.
func (k *Ink) buildHull() *scene.Element {
	outline := k.hullOutline()
	if len(outline) < 3 {
		return nil
	}
	el := scene.NewPath()
	el.AddClass(HullClassName)
	color := k.hullColor
	if color == "" {
		color = "gray"
	}
	el.SetAttribute("fill", color)
	el.SetAttribute("stroke", "none")
	el.SetPath(scene.PathFromPoints(outline, true))
	k.host.Group().AppendChild(el)
	return el
}

// hullOutline computes the hull polygon for the ink's current points.
func (k *Ink) hullOutline() []geometry.Point {
	points := k.flatPoints()
	if len(points) == 0 {
		return nil
	}
	switch k.hullType {
	case HullConvex:
		return geometry.ConvexHull(points)
	case HullConcave:
		if geometry.IsStraightLine(points, geometry.StraightLineThresholds) {
			return fatLine(points, fatLineHalfWidth(k.strokeWidth))
		}
		return points
	default:
		return nil
	}
}

// fatLineHalfWidth pads a straight stroke's hull enough to hit-test.
func fatLineHalfWidth(strokeWidth float64) float64 {
	return math.Max(strokeWidth*2, 4)
}

// fatLine builds a rectangle around the segment from the first to the last
// point, halfWidth on each side.
func fatLine(points []geometry.Point, halfWidth float64) []geometry.Point {
	a, b := points[0], points[len(points)-1]
	dx, dy := b.X-a.X, b.Y-a.Y
	length := math.Hypot(dx, dy)
	if length == 0 {
		return []geometry.Point{
			{X: a.X - halfWidth, Y: a.Y - halfWidth},
			{X: a.X + halfWidth, Y: a.Y - halfWidth},
			{X: a.X + halfWidth, Y: a.Y + halfWidth},
			{X: a.X - halfWidth, Y: a.Y + halfWidth},
		}
	}
	// Normal of the segment, scaled to halfWidth.
	nx, ny := -dy/length*halfWidth, dx/length*halfWidth
	return []geometry.Point{
		{X: a.X + nx, Y: a.Y + ny},
		{X: b.X + nx, Y: b.Y + ny},
		{X: b.X - nx, Y: b.Y - ny},
		{X: a.X - nx, Y: a.Y - ny},
	}
}

// refreshGeometry rebuilds the composite path and hull from the stored
// point sequences after a fold (drag or resize bake).
func (k *Ink) refreshGeometry() {
	if k.pathElement != nil {
		k.pathElement.SetPath(pathFromSequences(k.allPoints, k.autoClose))
	}
	if k.hullElement != nil {
		// The hull element stays in place (gestures target it); only its
		// geometry is rebuilt.
		if outline := k.hullOutline(); len(outline) >= 3 {
			k.hullElement.SetPath(scene.PathFromPoints(outline, true))
		}
	}
}

// translatePoints shifts every stored point by offset.
func (k *Ink) translatePoints(offset geometry.Point) {
	for _, seq := range k.allPoints {
		for i := range seq {
			seq[i] = seq[i].Add(offset)
		}
	}
}

// scalePoints scales every stored point about center.
func (k *Ink) scalePoints(factor float64, center geometry.Point) {
	for _, seq := range k.allPoints {
		for i := range seq {
			seq[i] = center.Add(seq[i].Sub(center).Scale(factor))
		}
	}
}
