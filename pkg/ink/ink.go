// Package ink captures freehand strokes drawn by a single pointer of an
// active gesture: incremental constituent paths while the pointer moves, a
// consolidated composite path on lift, optional hulls for hit testing,
// straight-edge coercion, drag and resize behaviors, and combining of
// overlapping strokes.
package ink

import (
	"time"

	"github.com/google/uuid"

	"github.com/go-mil/mil/pkg/events"
	"github.com/go-mil/mil/pkg/geometry"
	"github.com/go-mil/mil/pkg/gestures"
	"github.com/go-mil/mil/pkg/milerr"
	"github.com/go-mil/mil/pkg/scene"
	"github.com/go-mil/mil/pkg/timing"
)

const (
	// MinPointDistance is the chessboard distance below which an incoming
	// point is dropped as a duplicate of the last recorded one.
	MinPointDistance = 3.0
	// maxConstituentPoints is the rollover limit of a drawing constituent.
	maxConstituentPoints = 100
	// cometConstituentPoints is the rollover limit of a comet-tail
	// constituent.
	cometConstituentPoints = 8
	// constituentSeedPoints carries visual continuity across a rollover.
	constituentSeedPoints = 2
	// cometSeedPoints carries continuity across a comet-tail rollover.
	cometSeedPoints = 7
	// coercionThresholdRatio is the fraction of a straight edge's thickness
	// within which coercion engages and beyond which the stroke terminates.
	coercionThresholdRatio = 0.25
)

// HullType selects the hit-test hull appended over a consolidated stroke.
type HullType int

const (
	// HullNone draws no hull.
	HullNone HullType = iota
	// HullConcave follows the stroke itself; straight strokes get a fat
	// line instead of a degenerate polygon.
	HullConcave
	// HullConvex follows the convex hull of the stroke points.
	HullConvex
)

// Edge is a straight reference line (a ruler edge) that incoming points can
// be coerced onto.
type Edge struct {
	Start     geometry.Point
	End       geometry.Point
	Thickness float64
	Visible   bool
}

// Ink is one freehand stroke: open while its pointer draws, persistent as a
// composite path (plus optional hull) after consolidation, until deleted.
type Ink struct {
	id          string
	host        *gestures.Host
	gesture     *gestures.Gesture
	pointerSpec string

	className          string
	strokeColor        string
	strokeWidth        float64
	eraserClassName    string
	cometTailClassName string
	cometTailDuration  time.Duration
	hullType           HullType
	hullColor          string
	isNonDrawing       bool
	autoClose          bool
	edge               *Edge

	started      bool
	open         bool
	pointerID    int64
	eraser       bool
	coercing     bool
	wasCoerced   bool
	scale        float64
	deleted      bool

	strokePoints []geometry.Point
	allPoints    [][]geometry.Point

	constituents []*scene.Element
	pathElement  *scene.Element
	hullElement  *scene.Element

	resize *resizeBehavior
	drag   *dragState

	removeMoveObserver func()
	removeEndObserver  func()
	fadeTimer          timing.Timer
}

// New creates an unstarted ink for one pointer of g. The pointer specifier
// uses the same syntax as Gesture.PointerID ("{P1}", "pen", "touch:2").
func New(g *gestures.Gesture, pointerSpec string) *Ink {
	return &Ink{
		id:          uuid.NewString(),
		host:        g.Host(),
		gesture:     g,
		pointerSpec: pointerSpec,
		className:   "mil-ink",
		strokeColor: "black",
		strokeWidth: 2,
		scale:       1,
	}
}

// ID returns the ink's unique identifier.
func (k *Ink) ID() string {
	return k.id
}

// Gesture returns the parent gesture.
func (k *Ink) Gesture() *gestures.Gesture {
	return k.gesture
}

// SetClass sets the CSS class of the composite path.
func (k *Ink) SetClass(name string) *Ink {
	k.className = name
	return k
}

// SetStrokeColor sets the stroke color.
func (k *Ink) SetStrokeColor(color string) *Ink {
	k.strokeColor = color
	return k
}

// SetStrokeWidth sets the stroke width in scene units.
func (k *Ink) SetStrokeWidth(width float64) *Ink {
	k.strokeWidth = width
	return k
}

// SetEraserClass sets the class applied instead of the ink class when the
// stroke is drawn with the pen eraser.
func (k *Ink) SetEraserClass(name string) *Ink {
	k.eraserClassName = name
	return k
}

// SetCometTail makes the ink a fading comet tail: constituents carry the
// given class and are removed after duration instead of consolidating.
func (k *Ink) SetCometTail(class string, duration time.Duration) *Ink {
	k.cometTailClassName = class
	k.cometTailDuration = duration
	k.isNonDrawing = true
	return k
}

// SetHullType selects the hull appended on consolidation.
func (k *Ink) SetHullType(t HullType) *Ink {
	k.hullType = t
	return k
}

// HullType returns the configured hull type.
func (k *Ink) HullType() HullType {
	return k.hullType
}

// SetHullColor sets the hull fill color.
func (k *Ink) SetHullColor(color string) *Ink {
	k.hullColor = color
	return k
}

// SetAutoClose closes the composite path on consolidation.
func (k *Ink) SetAutoClose(close bool) *Ink {
	k.autoClose = close
	return k
}

// SetCoerceToEdge projects incoming points onto the edge's line while the
// raw pointer stays within a quarter of the edge thickness of it.
func (k *Ink) SetCoerceToEdge(edge *Edge) *Ink {
	k.edge = edge
	return k
}

// IsOpen reports whether the stroke is still accumulating points. Part of
// the gestures.InkHandle contract.
func (k *Ink) IsOpen() bool {
	return k.open
}

// PointerID returns the drawing pointer while the stroke is open.
func (k *Ink) PointerID() (int64, bool) {
	return k.pointerID, k.open
}

// WasCoerced reports whether straight-edge coercion was active for this
// stroke. Coerced strokes skip auto-combine.
func (k *Ink) WasCoerced() bool {
	return k.wasCoerced
}

// Scale returns the cumulative resize factor applied to the stroke.
func (k *Ink) Scale() float64 {
	return k.scale
}

// Points returns the consolidated point sequences: one per constituent
// stroke of a combined ink, a single sequence otherwise. While the stroke
// is open it returns the points so far.
func (k *Ink) Points() [][]geometry.Point {
	if k.open {
		return [][]geometry.Point{k.strokePoints}
	}
	return k.allPoints
}

// flatPoints returns every point of every sequence.
func (k *Ink) flatPoints() []geometry.Point {
	if k.open {
		return k.strokePoints
	}
	var all []geometry.Point
	for _, seq := range k.allPoints {
		all = append(all, seq...)
	}
	return all
}

// PathElement returns the consolidated composite path element, or nil.
func (k *Ink) PathElement() *scene.Element {
	return k.pathElement
}

// HullElement returns the hull path element, or nil.
func (k *Ink) HullElement() *scene.Element {
	return k.hullElement
}

// ConstituentCount returns the number of live constituent paths.
func (k *Ink) ConstituentCount() int {
	return len(k.constituents)
}

// Start opens point accumulation on the gesture's named pointer and appends
// the first constituent path to the host group.
func (k *Ink) Start() error {
	const op = "ink.Start"
	if k.started {
		return milerr.InvalidState(op, "ink %s already started", k.id)
	}
	if !k.gesture.IsActive() {
		return milerr.InvalidState(op, "gesture %q is not active", k.gesture.Name())
	}
	id, err := k.gesture.PointerID(k.pointerSpec)
	if err != nil {
		return err
	}
	downEvent, err := k.gesture.StartEvent(k.pointerSpec)
	if err != nil {
		return err
	}
	start, err := k.gesture.CurrentScenePoint(k.pointerSpec)
	if err != nil {
		return err
	}

	k.started = true
	k.open = true
	k.pointerID = id
	k.eraser = downEvent.IsEraser()

	if k.edge != nil && k.edge.Visible {
		threshold := k.edge.Thickness * coercionThresholdRatio
		if geometry.DistanceToLine(start, k.edge.Start, k.edge.End) <= threshold {
			k.coercing = true
			k.wasCoerced = true
			start = geometry.ProjectOntoLine(start, k.edge.Start, k.edge.End)
		}
	}

	k.strokePoints = append(k.strokePoints, start)
	k.newConstituent(start)

	k.removeMoveObserver = k.gesture.AddMoveObserver(k.onMove)
	k.removeEndObserver = k.gesture.AddEndObserver(k.onGestureEnd)
	k.gesture.SetCurrentInk(k)
	ArenaFor(k.host).add(k)
	return nil
}

// onMove accumulates one stroke point per qualifying move of the drawing
// pointer.
func (k *Ink) onMove(g *gestures.Gesture, ev events.PointerEvent) {
	if !k.open || ev.PointerID != k.pointerID {
		return
	}
	pt := scene.ToScene(k.host.Group(), ev.Position)

	if k.coercing {
		threshold := k.edge.Thickness * coercionThresholdRatio
		if geometry.DistanceToLine(pt, k.edge.Start, k.edge.End) > threshold {
			// Drifted off the edge: the stroke ends where it left the ruler.
			k.consolidate()
			return
		}
		pt = geometry.ProjectOntoLine(pt, k.edge.Start, k.edge.End)
	}

	last := k.strokePoints[len(k.strokePoints)-1]
	if last.ChessboardDistanceTo(pt) < MinPointDistance {
		return
	}

	k.strokePoints = append(k.strokePoints, pt)
	current := k.constituents[len(k.constituents)-1]
	current.Path().LineTo(pt.X, pt.Y)

	limit, seed := maxConstituentPoints, constituentSeedPoints
	if k.isNonDrawing {
		limit, seed = cometConstituentPoints, cometSeedPoints
	}
	if len(current.Path().Points()) >= limit {
		k.rolloverConstituent(seed)
	}
}

// newConstituent appends a fresh constituent path starting at pt.
func (k *Ink) newConstituent(pt geometry.Point) *scene.Element {
	el := scene.NewPath()
	class := k.className
	if k.isNonDrawing && k.cometTailClassName != "" {
		class = k.cometTailClassName
	}
	el.AddClass(class)
	el.SetAttribute("fill", "none")
	el.SetAttribute("stroke", k.strokeColor)
	el.SetAttribute("stroke-width", formatFloat(k.strokeWidth))
	el.Path().MoveTo(pt.X, pt.Y)
	k.host.Group().AppendChild(el)
	k.constituents = append(k.constituents, el)
	return el
}

// rolloverConstituent spawns the next constituent, pre-seeded with the tail
// of the previous one so the joint renders without a visible gap.
func (k *Ink) rolloverConstituent(seed int) {
	prev := k.constituents[len(k.constituents)-1].Path().Points()
	if seed > len(prev) {
		seed = len(prev)
	}
	tail := prev[len(prev)-seed:]
	el := k.newConstituent(tail[0])
	for _, pt := range tail[1:] {
		el.Path().LineTo(pt.X, pt.Y)
	}
}

// onGestureEnd consolidates the stroke when its drawing pointer lifts.
func (k *Ink) onGestureEnd(g *gestures.Gesture, liftedPointerID int64) {
	if k.open && liftedPointerID == k.pointerID {
		k.consolidate()
	}
}

// consolidate closes accumulation: a single composite path replaces the
// constituents, the hull (if any) is appended above it, and auto-combine
// runs unless coercion was active.
func (k *Ink) consolidate() {
	if !k.open {
		return
	}
	k.open = false
	k.pointerID = 0
	k.detachObservers()
	k.allPoints = [][]geometry.Point{k.strokePoints}

	if k.isNonDrawing {
		// Comet tails never consolidate into a composite; the constituents
		// fade away instead.
		k.scheduleCometFade()
		return
	}

	for _, c := range k.constituents {
		c.Remove()
	}
	k.constituents = nil

	composite := scene.NewPath()
	class := k.className
	if k.eraser && k.eraserClassName != "" {
		class = k.eraserClassName
	}
	composite.AddClass(class)
	composite.SetAttribute("fill", "none")
	composite.SetAttribute("stroke", k.strokeColor)
	composite.SetAttribute("stroke-width", formatFloat(k.strokeWidth))
	composite.SetPath(scene.PathFromPoints(k.strokePoints, k.autoClose))
	k.host.Group().AppendChild(composite)
	k.pathElement = composite

	if k.hullType != HullNone && !k.eraser {
		k.hullElement = k.buildHull()
	}
	ArenaFor(k.host).indexPath(k)

	if !k.wasCoerced {
		k.autoCombine()
	}
}

// scheduleCometFade removes the comet constituents after the tail duration.
func (k *Ink) scheduleCometFade() {
	remove := func() {
		for _, c := range k.constituents {
			c.Remove()
		}
		k.constituents = nil
		ArenaFor(k.host).remove(k)
	}
	if k.cometTailDuration <= 0 {
		remove()
		return
	}
	k.fadeTimer = k.host.Clock().AfterFunc(k.cometTailDuration, remove)
}

// Cancel aborts an open stroke: constituents are removed and nothing
// persists. Part of the gestures.InkHandle contract.
func (k *Ink) Cancel() error {
	if !k.open {
		return milerr.InvalidState("ink.Cancel", "ink %s is not open", k.id)
	}
	k.open = false
	k.pointerID = 0
	k.detachObservers()
	for _, c := range k.constituents {
		c.Remove()
	}
	k.constituents = nil
	k.strokePoints = nil
	ArenaFor(k.host).remove(k)
	return nil
}

// Delete removes the consolidated composite path and hull from the scene
// and drops the ink from the arena.
func (k *Ink) Delete() error {
	const op = "ink.Delete"
	if k.open {
		return milerr.InvalidState(op, "ink %s is still open; cancel it instead", k.id)
	}
	if k.deleted {
		return milerr.InvalidState(op, "ink %s already deleted", k.id)
	}
	k.deleted = true
	if k.fadeTimer != nil {
		k.fadeTimer.Stop()
		k.fadeTimer = nil
	}
	for _, c := range k.constituents {
		c.Remove()
	}
	k.constituents = nil
	if k.pathElement != nil {
		k.pathElement.Remove()
	}
	if k.hullElement != nil {
		k.hullElement.Remove()
	}
	ArenaFor(k.host).remove(k)
	return nil
}

func (k *Ink) detachObservers() {
	if k.removeMoveObserver != nil {
		k.removeMoveObserver()
		k.removeMoveObserver = nil
	}
	if k.removeEndObserver != nil {
		k.removeEndObserver()
		k.removeEndObserver = nil
	}
}
