package ink

import (
	"github.com/google/uuid"

	"github.com/go-mil/mil/pkg/geometry"
	"github.com/go-mil/mil/pkg/gestures"
	"github.com/go-mil/mil/pkg/milerr"
	"github.com/go-mil/mil/pkg/scene"
	"github.com/go-mil/mil/pkg/settings"
)

// Combine merges consolidated inks into one: the combined composite path
// carries every source's point sequences as subpaths and, when any source
// has a hull, its hull is the convex hull over all points; when no source
// has one, neither does the combined ink. With matchHull the composite is instead
// rebuilt from points resampled along that hull. The source inks are
// deleted; the combined ink inherits the resize behavior of the first
// source that had one.
func Combine(host *gestures.Host, inks []*Ink, className string, matchHull bool) (*Ink, error) {
	const op = "ink.Combine"
	if len(inks) < 2 {
		return nil, milerr.InvalidArgument(op, "need at least 2 inks, got %d", len(inks))
	}
	for _, src := range inks {
		if src.open {
			return nil, milerr.InvalidState(op, "ink %s is still open", src.id)
		}
		if src.deleted {
			return nil, milerr.InvalidState(op, "ink %s is deleted", src.id)
		}
		if src.pathElement == nil {
			return nil, milerr.InvalidState(op, "ink %s has no composite path", src.id)
		}
	}

	first := inks[0]
	combined := &Ink{
		id:          uuid.NewString(),
		host:        host,
		gesture:     first.gesture,
		className:   className,
		strokeColor: first.strokeColor,
		strokeWidth: first.strokeWidth,
		hullColor:   first.hullColor,
		autoClose:   first.autoClose,
		started:     true,
		scale:       1,
	}
	if className == "" {
		combined.className = first.className
	}

	for _, src := range inks {
		combined.allPoints = append(combined.allPoints, src.allPoints...)
		if src.hullType != HullNone {
			combined.hullType = HullConvex
		}
	}

	hull := geometry.ConvexHull(combined.flatPoints())
	if matchHull && len(hull) >= 3 {
		combined.allPoints = [][]geometry.Point{resampleOutline(hull, MinPointDistance * 2)}
	}

	var inheritedResize *resizeBehavior
	for _, src := range inks {
		if inheritedResize == nil && src.resize != nil {
			inheritedResize = src.resize
		}
		src.DisableResize()
		if err := src.Delete(); err != nil {
			return nil, err
		}
	}

	composite := scene.NewPath()
	composite.AddClass(combined.className)
	composite.SetAttribute("fill", "none")
	composite.SetAttribute("stroke", combined.strokeColor)
	composite.SetAttribute("stroke-width", formatFloat(combined.strokeWidth))
	composite.SetPath(pathFromSequences(combined.allPoints, combined.autoClose))
	host.Group().AppendChild(composite)
	combined.pathElement = composite

	if combined.hullType != HullNone {
		combined.hullElement = combined.buildHull()
	}

	arena := ArenaFor(host)
	arena.add(combined)
	arena.indexPath(combined)

	if inheritedResize != nil {
		if err := combined.EnableResize(inheritedResize.pointerType, inheritedResize.options); err != nil {
			return nil, err
		}
	}
	return combined, nil
}

// resampleOutline walks the closed outline and emits points at roughly the
// given spacing.
func resampleOutline(outline []geometry.Point, spacing float64) []geometry.Point {
	if len(outline) == 0 || spacing <= 0 {
		return outline
	}
	var out []geometry.Point
	for i := range outline {
		a := outline[i]
		b := outline[(i+1)%len(outline)]
		out = append(out, a)
		length := a.DistanceTo(b)
		for d := spacing; d < length; d += spacing {
			t := d / length
			out = append(out, geometry.Point{
				X: a.X + (b.X-a.X)*t,
				Y: a.Y + (b.Y-a.Y)*t,
			})
		}
	}
	return out
}

// autoCombine merges a just-consolidated ink with the first existing ink it
// relates to under the host's combine mode.
func (k *Ink) autoCombine() {
	mode := k.host.Settings().InkAutoCombineMode()
	if mode == settings.CombineNone {
		return
	}
	points := k.flatPoints()
	if len(points) == 0 {
		return
	}
	for _, other := range ArenaFor(k.host).All() {
		if other == k || other.open || other.deleted || other.pathElement == nil {
			continue
		}
		if !combineRelates(mode, other.combineOutline(), points) {
			continue
		}
		if _, err := Combine(k.host, []*Ink{other, k}, k.className, false); err == nil {
			return
		}
	}
}

// combineOutline is the polygon an auto-combine containment test runs
// against: the hull outline when present, the convex hull of the stroke
// points otherwise.
func (k *Ink) combineOutline() []geometry.Point {
	if outline := k.hullOutline(); len(outline) >= 3 {
		return outline
	}
	return geometry.ConvexHull(k.flatPoints())
}

// combineRelates checks the selected containment relations of points
// against the outline polygon.
func combineRelates(mode settings.CombineMode, outline, points []geometry.Point) bool {
	if len(outline) < 3 || len(points) == 0 {
		return false
	}
	if mode&settings.CombineContainedWithin != 0 && geometry.PolygonContainsAll(outline, points) {
		return true
	}
	if mode&settings.CombineStartsWithin != 0 && geometry.PolygonContainsPoint(outline, points[0]) {
		return true
	}
	if mode&settings.CombineEndsWithin != 0 && geometry.PolygonContainsPoint(outline, points[len(points)-1]) {
		return true
	}
	if mode&settings.CombineAnyPointWithin != 0 && geometry.PolygonContainsAny(outline, points) {
		return true
	}
	return false
}
