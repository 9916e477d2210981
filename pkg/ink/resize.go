package ink

import (
	"github.com/go-mil/mil/pkg/events"
	"github.com/go-mil/mil/pkg/geometry"
	"github.com/go-mil/mil/pkg/gestures"
	"github.com/go-mil/mil/pkg/milerr"
	"github.com/go-mil/mil/pkg/scene"
)

// ResizeOptions tunes the two-pointer resize behavior.
type ResizeOptions struct {
	// ExcludeHull leaves the hull untouched while the stroke scales.
	ExcludeHull bool
	// StartScale is the scale the gesture starts from. It is required
	// unless the hull is excluded, in which case it defaults to the ink's
	// current scale.
	StartScale float64
}

// resizeBehavior is the registered resize gesture of a consolidated ink.
type resizeBehavior struct {
	pointerType string
	options     ResizeOptions
	gesture     *gestures.Gesture

	startDistance float64
	baseScale     float64
	center        geometry.Point
	inFlight      float64
}

// EnableResize registers a two-pointer gesture on the ink's hull (or, with
// no hull, on the composite path) that rescales the stroke: scale follows
// current-distance / start-distance × start-scale, applied as a transform
// in flight and folded into the point list when the gesture ends. Stroke
// thickness stays visually constant by dividing the rendered width by the
// in-flight factor.
func (k *Ink) EnableResize(pointerType string, opts ResizeOptions) error {
	const op = "ink.EnableResize"
	if k.pathElement == nil {
		return milerr.InvalidState(op, "ink %s has no consolidated path", k.id)
	}
	if k.resize != nil {
		return milerr.InvalidState(op, "ink %s already has a resize gesture", k.id)
	}
	perms, err := gestures.CompileExpression(pointerType)
	if err != nil {
		return err
	}
	for _, perm := range perms {
		if perm.PointerCount() != 2 {
			return milerr.InvalidArgument(op, "resize needs exactly 2 pointers, %q yields %d", pointerType, perm.PointerCount())
		}
	}
	if !opts.ExcludeHull && opts.StartScale <= 0 {
		return milerr.InvalidArgument(op, "start scale is required when the hull resizes")
	}
	if opts.StartScale <= 0 {
		opts.StartScale = k.scale
	}

	target := k.hullElement
	if target == nil {
		target = k.pathElement
	}
	b := &resizeBehavior{pointerType: pointerType, options: opts}
	g := k.host.CreateGesture("ink-resize*", true).
		SetTarget(target).
		SetPointerType(pointerType).
		SetStartedHandler(func(g *gestures.Gesture) {
			d, err := g.Distance("{P1}", "{P2}")
			if err != nil || d == 0 {
				g.Cancel("resize pointers start coincident")
				return
			}
			b.startDistance = d
			b.baseScale = k.scale
			b.center = geometry.Centroid(k.flatPoints())
			b.inFlight = 1
		}).
		SetEndedHandler(func(*gestures.Gesture, int64) {
			k.foldResize(b)
		}).
		SetCancelledHandler(func(*gestures.Gesture, string) {
			k.clearResizeTransforms(b)
		})
	g.SetMoveHandler(func(g *gestures.Gesture, ev events.PointerEvent) {
		d, err := g.Distance("{P1}", "{P2}")
		if err != nil || b.startDistance == 0 {
			return
		}
		newScale := d / b.startDistance * opts.StartScale
		b.inFlight = newScale / b.baseScale
		tr := scene.ScaleAbout(b.inFlight, b.center.X, b.center.Y)
		k.pathElement.SetTransform(tr)
		k.pathElement.SetAttribute("stroke-width", formatFloat(k.strokeWidth/b.inFlight))
		if k.hullElement != nil && !opts.ExcludeHull {
			k.hullElement.SetTransform(tr)
		}
	})
	if err := k.host.AddGesture(g); err != nil {
		return err
	}
	b.gesture = g
	k.resize = b
	return nil
}

// foldResize bakes the in-flight scale into the stored points.
func (k *Ink) foldResize(b *resizeBehavior) {
	if b.inFlight != 1 && b.inFlight > 0 {
		k.scalePoints(b.inFlight, b.center)
		k.scale = b.baseScale * b.inFlight
	}
	k.clearResizeTransforms(b)
	k.refreshGeometry()
}

func (k *Ink) clearResizeTransforms(b *resizeBehavior) {
	b.inFlight = 1
	if k.pathElement != nil {
		k.pathElement.SetTransform(scene.Identity())
		k.pathElement.SetAttribute("stroke-width", formatFloat(k.strokeWidth))
	}
	if k.hullElement != nil {
		k.hullElement.SetTransform(scene.Identity())
	}
}

// DisableResize removes the ink's resize gesture.
func (k *Ink) DisableResize() {
	if k.resize == nil {
		return
	}
	k.host.RemoveGestureByName(k.resize.gesture.Name())
	k.resize = nil
}

// ResizePointerType returns the pointer type of the ink's resize gesture,
// or "" when resize is disabled.
func (k *Ink) ResizePointerType() string {
	if k.resize == nil {
		return ""
	}
	return k.resize.pointerType
}
