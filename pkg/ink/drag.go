package ink

import (
	"github.com/go-mil/mil/pkg/events"
	"github.com/go-mil/mil/pkg/geometry"
	"github.com/go-mil/mil/pkg/gestures"
	"github.com/go-mil/mil/pkg/milerr"
	"github.com/go-mil/mil/pkg/scene"
)

// dragState tracks an in-flight drag: the driving gesture, the elements
// moving together, and the current translation.
type dragState struct {
	gesture       *gestures.Gesture
	startPos      geometry.Point
	delta         geometry.Point
	groupSelector string
	members       []*scene.Element
	removeMove    func()
	removeEnd     func()
}

// Translate moves the consolidated stroke and its hull by offset. With
// useTransform, only the elements' transforms change and the stored point
// list stays put; without it, the offset is baked into the stored points
// and the geometry is rebuilt.
func (k *Ink) Translate(offset geometry.Point, useTransform bool) error {
	if k.pathElement == nil {
		return milerr.InvalidState("ink.Translate", "ink %s has no consolidated path", k.id)
	}
	if useTransform {
		for _, el := range k.ownElements() {
			el.SetTransform(scene.Translation(offset.X, offset.Y).Mul(el.Transform()))
		}
		return nil
	}
	k.translatePoints(offset)
	k.refreshGeometry()
	return nil
}

// ownElements returns the ink's composite path plus hull, if present.
func (k *Ink) ownElements() []*scene.Element {
	els := []*scene.Element{k.pathElement}
	if k.hullElement != nil {
		els = append(els, k.hullElement)
	}
	return els
}

// DragStart attaches the consolidated ink to an active gesture: while the
// gesture's first pointer moves, the stroke (and, with a group selector,
// every ink path bearing that class plus its hull) translates on a
// transform-only fast path. The translation folds into the stored points
// when the gesture ends.
func (k *Ink) DragStart(g *gestures.Gesture, groupSelector string) error {
	const op = "ink.DragStart"
	if k.pathElement == nil {
		return milerr.InvalidState(op, "ink %s has no consolidated path", k.id)
	}
	if k.drag != nil {
		return milerr.InvalidState(op, "ink %s is already dragging", k.id)
	}
	if !g.IsActive() {
		return milerr.InvalidState(op, "gesture %q is not active", g.Name())
	}
	start, err := g.CurrentScenePoint("{P1}")
	if err != nil {
		return err
	}

	d := &dragState{gesture: g, startPos: start, groupSelector: groupSelector}
	d.members = k.dragMembers(groupSelector)
	d.removeMove = g.AddMoveObserver(func(g *gestures.Gesture, ev events.PointerEvent) {
		current, err := g.CurrentScenePoint("{P1}")
		if err != nil {
			return
		}
		d.delta = current.Sub(d.startPos)
		for _, el := range d.members {
			el.SetTransform(scene.Translation(d.delta.X, d.delta.Y))
		}
	})
	d.removeEnd = g.AddEndObserver(func(*gestures.Gesture, int64) {
		if err := k.DragEnd(); err != nil {
			// The drag already ended through the public API.
			_ = err
		}
	})
	k.drag = d
	return nil
}

// dragMembers collects the moving element set: this ink's path and hull,
// plus every path bearing the group selector class and the hulls of the
// inks those paths belong to.
func (k *Ink) dragMembers(groupSelector string) []*scene.Element {
	seen := map[int64]bool{}
	var members []*scene.Element
	add := func(el *scene.Element) {
		if el != nil && !seen[el.ID()] {
			seen[el.ID()] = true
			members = append(members, el)
		}
	}
	for _, el := range k.ownElements() {
		add(el)
	}
	if groupSelector == "" {
		return members
	}
	arena := ArenaFor(k.host)
	for _, el := range k.host.Group().FindByClass(groupSelector) {
		add(el)
		if other := arena.ByElement(el); other != nil {
			add(other.pathElement)
			add(other.hullElement)
		}
	}
	return members
}

// DragEnd folds the in-flight translation into the stored point lists of
// every dragged ink and clears the transforms.
func (k *Ink) DragEnd() error {
	if k.drag == nil {
		return milerr.InvalidState("ink.DragEnd", "ink %s is not dragging", k.id)
	}
	d := k.drag
	k.drag = nil
	d.removeMove()
	d.removeEnd()

	arena := ArenaFor(k.host)
	folded := map[string]bool{}
	for _, el := range d.members {
		el.SetTransform(scene.Identity())
		other := arena.ByElement(el)
		if other == nil {
			// A grouped element that is not an ink folds directly.
			if el.Path() != nil {
				el.SetPath(el.Path().Transformed(scene.Translation(d.delta.X, d.delta.Y)))
			}
			continue
		}
		if folded[other.id] {
			continue
		}
		folded[other.id] = true
		other.translatePoints(d.delta)
		other.refreshGeometry()
	}
	return nil
}
