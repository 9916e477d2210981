package ink

import (
	"math"
	"testing"
	"time"

	"github.com/go-mil/mil/pkg/events"
	"github.com/go-mil/mil/pkg/geometry"
	"github.com/go-mil/mil/pkg/gestures"
	"github.com/go-mil/mil/pkg/milerr"
	"github.com/go-mil/mil/pkg/scene"
	"github.com/go-mil/mil/pkg/timing"
)

func newInkHost(t *testing.T) (*gestures.Host, *timing.Manual) {
	t.Helper()
	clock := timing.NewManual(time.Unix(0, 0))
	h := gestures.NewHost(scene.NewSVG(), clock)
	t.Cleanup(func() { DropArena(h) })
	return h, clock
}

// addDrawGesture registers a pen gesture on the host group that opens an
// ink when it starts.
func addDrawGesture(t *testing.T, h *gestures.Host, configure func(*Ink)) *gestures.Gesture {
	t.Helper()
	var draw *gestures.Gesture
	draw = h.CreateGesture("draw*", true).
		SetTarget(h.Group()).
		SetPointerType("pen").
		SetStartedHandler(func(g *gestures.Gesture) {
			ink := New(g, "{P1}")
			if configure != nil {
				configure(ink)
			}
			if err := ink.Start(); err != nil {
				t.Fatalf("ink start: %v", err)
			}
		})
	if err := h.AddGesture(draw); err != nil {
		t.Fatal(err)
	}
	return draw
}

func pen(id int64, phase events.Phase, x, y float64) events.PointerEvent {
	return events.PointerEvent{
		PointerID: id,
		Kind:      events.KindPen,
		Phase:     phase,
		Position:  geometry.Point{X: x, Y: y},
		Buttons:   events.ButtonPrimary,
		Pressure:  0.5,
	}
}

func currentInk(t *testing.T, g *gestures.Gesture) *Ink {
	t.Helper()
	ink, ok := g.CurrentInk().(*Ink)
	if !ok || ink == nil {
		t.Fatal("gesture has no current ink")
	}
	return ink
}

func TestInk_StartValidation(t *testing.T) {
	h, _ := newInkHost(t)
	g := h.CreateGesture("draw", true).SetTarget(h.Group()).SetPointerType("pen")
	if err := h.AddGesture(g); err != nil {
		t.Fatal(err)
	}

	idle := New(g, "{P1}")
	if err := idle.Start(); !milerr.IsKind(err, milerr.KindInvalidState) {
		t.Errorf("starting on an inactive gesture should be InvalidState, got %v", err)
	}

	h.ProcessEvent(h.Group(), pen(1, events.PhaseDown, 0, 0))
	ink := New(g, "{P1}")
	if err := ink.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := ink.Start(); !milerr.IsKind(err, milerr.KindInvalidState) {
		t.Errorf("double start should be InvalidState, got %v", err)
	}
	if _, open := ink.PointerID(); !open {
		t.Error("started ink should report its pointer")
	}
}

func TestInk_DrawConsolidateConvexHull(t *testing.T) {
	h, _ := newInkHost(t)
	g := addDrawGesture(t, h, func(k *Ink) {
		k.SetClass("sketch").SetHullType(HullConvex).SetHullColor("#808080")
	})

	target := h.Group()
	h.ProcessEvent(target, pen(1, events.PhaseDown, 100, 100))
	ink := currentInk(t, g)

	// A wide zig-zag: 250 moves of 5 px, well past the dedup threshold.
	x, y := 100.0, 100.0
	maxConstituents := 0
	for i := 0; i < 250; i++ {
		x += 5
		if i%2 == 0 {
			y += 5
		} else {
			y -= 5
		}
		h.ProcessEvent(target, pen(1, events.PhaseMove, x, y))
		if ink.ConstituentCount() > maxConstituents {
			maxConstituents = ink.ConstituentCount()
		}
	}
	if maxConstituents < 3 {
		t.Errorf("constituents during draw = %d, want at least 3", maxConstituents)
	}

	h.ProcessEvent(target, pen(1, events.PhaseUp, x, y))

	if ink.IsOpen() {
		t.Fatal("ink should consolidate on pointer up")
	}
	if ink.ConstituentCount() != 0 {
		t.Error("constituents should be removed on consolidation")
	}
	composite := ink.PathElement()
	if composite == nil {
		t.Fatal("composite path missing")
	}
	if !composite.HasClass("sketch") {
		t.Error("composite should carry the ink class")
	}

	points := ink.Points()
	if len(points) != 1 {
		t.Fatalf("point sequences = %d, want 1", len(points))
	}
	if len(points[0]) > 251 {
		t.Errorf("points = %d, want deduplicated count <= move count + 1", len(points[0]))
	}
	for i := 1; i < len(points[0]); i++ {
		if points[0][i-1].ChessboardDistanceTo(points[0][i]) < MinPointDistance {
			t.Fatalf("points %d and %d closer than the dedup threshold", i-1, i)
		}
	}

	hull := ink.HullElement()
	if hull == nil {
		t.Fatal("hull missing")
	}
	if !hull.HasClass(HullClassName) {
		t.Error("hull should carry the hull class")
	}
	wantHull := geometry.ConvexHull(points[0])
	gotHull := hull.Path().Points()
	if len(gotHull) != len(wantHull) {
		t.Fatalf("hull has %d vertices, want %d", len(gotHull), len(wantHull))
	}
	if ArenaFor(h).ByElement(hull) != ink {
		t.Error("hull should resolve back to its ink")
	}
	if ArenaFor(h).ByElement(composite) != ink {
		t.Error("composite should resolve back to its ink")
	}
}

func TestInk_PointDeduplication(t *testing.T) {
	h, _ := newInkHost(t)
	g := addDrawGesture(t, h, nil)
	target := h.Group()

	h.ProcessEvent(target, pen(1, events.PhaseDown, 0, 0))
	ink := currentInk(t, g)
	// Jitter below the threshold must be dropped.
	h.ProcessEvent(target, pen(1, events.PhaseMove, 1, 1))
	h.ProcessEvent(target, pen(1, events.PhaseMove, 2, 0))
	h.ProcessEvent(target, pen(1, events.PhaseMove, 2, 2))
	// One real move.
	h.ProcessEvent(target, pen(1, events.PhaseMove, 10, 0))
	h.ProcessEvent(target, pen(1, events.PhaseUp, 10, 0))

	points := ink.Points()[0]
	if len(points) != 2 {
		t.Fatalf("points = %v, want exactly the down point and one move", points)
	}
}

func TestInk_ConcaveHullStraightLineIsFat(t *testing.T) {
	h, _ := newInkHost(t)
	g := addDrawGesture(t, h, func(k *Ink) {
		k.SetHullType(HullConcave).SetStrokeWidth(2)
	})
	target := h.Group()

	h.ProcessEvent(target, pen(1, events.PhaseDown, 0, 50))
	for x := 5.0; x <= 100; x += 5 {
		h.ProcessEvent(target, pen(1, events.PhaseMove, x, 50))
	}
	h.ProcessEvent(target, pen(1, events.PhaseUp, 100, 50))

	ink := currentInk(t, g)
	hull := ink.HullElement()
	if hull == nil {
		t.Fatal("hull missing")
	}
	got := hull.Path().Points()
	if len(got) != 4 {
		t.Fatalf("straight stroke hull should be a fat-line quad, got %d vertices", len(got))
	}
	bounds := geometry.Bounds(got)
	if bounds.Height() <= 0 {
		t.Error("fat line must have thickness")
	}
}

func TestInk_CancelledWithGesture(t *testing.T) {
	h, _ := newInkHost(t)
	g := addDrawGesture(t, h, nil)
	target := h.Group()

	h.ProcessEvent(target, pen(1, events.PhaseDown, 0, 0))
	ink := currentInk(t, g)
	h.ProcessEvent(target, pen(1, events.PhaseMove, 10, 0))

	g.Cancel("test")
	if ink.IsOpen() {
		t.Fatal("cancelling the gesture should cancel the open ink")
	}
	if ink.ConstituentCount() != 0 {
		t.Error("cancelled ink should remove its constituents")
	}
	if ArenaFor(h).Count() != 0 {
		t.Error("cancelled ink should leave the arena")
	}
	if err := ink.Cancel(); !milerr.IsKind(err, milerr.KindInvalidState) {
		t.Errorf("cancelling a closed ink should be InvalidState, got %v", err)
	}
}

func TestInk_TranslateTransformVsBake(t *testing.T) {
	h, _ := newInkHost(t)
	g := addDrawGesture(t, h, nil)
	target := h.Group()

	h.ProcessEvent(target, pen(1, events.PhaseDown, 0, 0))
	h.ProcessEvent(target, pen(1, events.PhaseMove, 50, 0))
	h.ProcessEvent(target, pen(1, events.PhaseUp, 50, 0))
	ink := currentInk(t, g)

	if err := ink.Translate(geometry.Point{X: 10, Y: 20}, false); err != nil {
		t.Fatal(err)
	}
	afterBake := append([]geometry.Point(nil), ink.Points()[0]...)
	if !afterBake[0].Equal(geometry.Point{X: 10, Y: 20}) {
		t.Errorf("baked translate should shift stored points, got %v", afterBake[0])
	}

	if err := ink.Translate(geometry.Point{X: 5, Y: 5}, true); err != nil {
		t.Fatal(err)
	}
	afterTransform := ink.Points()[0]
	for i := range afterBake {
		if !afterBake[i].Equal(afterTransform[i]) {
			t.Fatalf("transform translate must not touch stored points: %v vs %v", afterBake[i], afterTransform[i])
		}
	}
	if ink.PathElement().Transform().IsIdentity() {
		t.Error("transform translate should set the element transform")
	}
}

func TestInk_DragFoldsOnEnd(t *testing.T) {
	h, _ := newInkHost(t)
	g := addDrawGesture(t, h, func(k *Ink) { k.SetHullType(HullConvex) })
	target := h.Group()

	h.ProcessEvent(target, pen(1, events.PhaseDown, 0, 0))
	h.ProcessEvent(target, pen(1, events.PhaseMove, 40, 0))
	h.ProcessEvent(target, pen(1, events.PhaseMove, 40, 40))
	h.ProcessEvent(target, pen(1, events.PhaseUp, 40, 40))
	ink := currentInk(t, g)
	origin := append([]geometry.Point(nil), ink.Points()[0]...)

	// A touch drag gesture on the hull drives the move.
	var dragErr error
	drag := h.CreateGesture("hull-drag", true).
		SetTarget(ink.HullElement()).
		SetPointerType("touch").
		SetStartedHandler(func(dg *gestures.Gesture) {
			dragErr = ink.DragStart(dg, "")
		})
	if err := h.AddGesture(drag); err != nil {
		t.Fatal(err)
	}

	hull := ink.HullElement()
	h.ProcessEvent(hull, events.PointerEvent{PointerID: 9, Kind: events.KindTouch, Phase: events.PhaseDown, Position: geometry.Point{X: 20, Y: 10}, Buttons: events.ButtonPrimary})
	if dragErr != nil {
		t.Fatal(dragErr)
	}
	h.ProcessEvent(hull, events.PointerEvent{PointerID: 9, Kind: events.KindTouch, Phase: events.PhaseMove, Position: geometry.Point{X: 50, Y: 50}, Buttons: events.ButtonPrimary})
	if ink.PathElement().Transform().IsIdentity() {
		t.Error("drag move should use the transform fast path")
	}
	h.ProcessEvent(hull, events.PointerEvent{PointerID: 9, Kind: events.KindTouch, Phase: events.PhaseUp, Position: geometry.Point{X: 50, Y: 50}, Buttons: events.ButtonPrimary})

	if !ink.PathElement().Transform().IsIdentity() {
		t.Error("drag end should clear the transform")
	}
	delta := geometry.Point{X: 30, Y: 40}
	got := ink.Points()[0]
	for i := range origin {
		want := origin[i].Add(delta)
		if !got[i].Equal(want) {
			t.Fatalf("point %d = %v, want %v after fold", i, got[i], want)
		}
	}
}

func TestInk_ResizeValidationAndFold(t *testing.T) {
	h, _ := newInkHost(t)
	g := addDrawGesture(t, h, func(k *Ink) { k.SetHullType(HullConvex) })
	target := h.Group()

	h.ProcessEvent(target, pen(1, events.PhaseDown, 0, 0))
	h.ProcessEvent(target, pen(1, events.PhaseMove, 40, 0))
	h.ProcessEvent(target, pen(1, events.PhaseMove, 40, 40))
	h.ProcessEvent(target, pen(1, events.PhaseMove, 0, 40))
	h.ProcessEvent(target, pen(1, events.PhaseUp, 0, 40))
	ink := currentInk(t, g)

	if err := ink.EnableResize("touch", ResizeOptions{StartScale: 1}); !milerr.IsKind(err, milerr.KindInvalidArgument) {
		t.Errorf("one-pointer resize should be InvalidArgument, got %v", err)
	}
	if err := ink.EnableResize("touch:2", ResizeOptions{}); !milerr.IsKind(err, milerr.KindInvalidArgument) {
		t.Errorf("missing start scale with hull should be InvalidArgument, got %v", err)
	}
	if err := ink.EnableResize("touch:2", ResizeOptions{StartScale: 1}); err != nil {
		t.Fatal(err)
	}

	center := geometry.Centroid(ink.Points()[0])
	hull := ink.HullElement()
	down := func(id int64, x, y float64) {
		h.ProcessEvent(hull, events.PointerEvent{PointerID: id, Kind: events.KindTouch, Phase: events.PhaseDown, Position: geometry.Point{X: x, Y: y}, Buttons: events.ButtonPrimary})
	}
	down(11, 10, 20)
	down(12, 30, 20) // distance 20

	// Spread to distance 40: factor 2.
	h.ProcessEvent(hull, events.PointerEvent{PointerID: 11, Kind: events.KindTouch, Phase: events.PhaseMove, Position: geometry.Point{X: 0, Y: 20}, Buttons: events.ButtonPrimary})
	h.ProcessEvent(hull, events.PointerEvent{PointerID: 12, Kind: events.KindTouch, Phase: events.PhaseMove, Position: geometry.Point{X: 40, Y: 20}, Buttons: events.ButtonPrimary})
	h.ProcessEvent(hull, events.PointerEvent{PointerID: 11, Kind: events.KindTouch, Phase: events.PhaseUp, Position: geometry.Point{X: 0, Y: 20}, Buttons: events.ButtonPrimary})

	if math.Abs(ink.Scale()-2) > 0.001 {
		t.Fatalf("scale = %v, want 2", ink.Scale())
	}
	got := ink.Points()[0][0]
	want := center.Add(geometry.Point{X: 0, Y: 0}.Sub(center).Scale(2))
	if !got.Equal(want) {
		t.Errorf("first point = %v, want %v scaled about the centroid", got, want)
	}
}

func TestInk_CoercionOntoEdge(t *testing.T) {
	h, _ := newInkHost(t)
	edge := &Edge{Start: geometry.Point{X: 0, Y: 100}, End: geometry.Point{X: 200, Y: 100}, Thickness: 40, Visible: true}
	g := addDrawGesture(t, h, func(k *Ink) { k.SetCoerceToEdge(edge) })
	target := h.Group()

	// Start within 10 (= 25% of 40) of the edge line.
	h.ProcessEvent(target, pen(1, events.PhaseDown, 10, 105))
	ink := currentInk(t, g)
	if !ink.WasCoerced() {
		t.Fatal("start near the edge should engage coercion")
	}

	h.ProcessEvent(target, pen(1, events.PhaseMove, 50, 93))
	h.ProcessEvent(target, pen(1, events.PhaseMove, 90, 108))
	for _, pt := range ink.Points()[0] {
		if pt.Y != 100 {
			t.Fatalf("coerced point %v should lie on the edge line", pt)
		}
	}

	// Drifting past the threshold terminates the stroke.
	h.ProcessEvent(target, pen(1, events.PhaseMove, 120, 140))
	if ink.IsOpen() {
		t.Fatal("drifting off the edge should terminate the ink")
	}
	if ink.PathElement() == nil {
		t.Error("terminated coerced stroke should still consolidate")
	}
}

func TestInk_CometTailFades(t *testing.T) {
	h, clock := newInkHost(t)
	g := addDrawGesture(t, h, func(k *Ink) {
		k.SetCometTail("comet", 500*time.Millisecond)
	})
	target := h.Group()

	h.ProcessEvent(target, pen(1, events.PhaseDown, 0, 0))
	ink := currentInk(t, g)
	for x := 5.0; x <= 60; x += 5 {
		h.ProcessEvent(target, pen(1, events.PhaseMove, x, 0))
	}
	if ink.ConstituentCount() < 2 {
		t.Errorf("comet constituents roll over at %d points, count = %d", cometConstituentPoints, ink.ConstituentCount())
	}
	h.ProcessEvent(target, pen(1, events.PhaseUp, 60, 0))

	if ink.PathElement() != nil {
		t.Error("comet tails never consolidate into a composite")
	}
	if ink.ConstituentCount() == 0 {
		t.Fatal("comet constituents should linger until the fade")
	}
	clock.Advance(time.Second)
	if ink.ConstituentCount() != 0 {
		t.Error("comet constituents should be removed after the tail duration")
	}
	if ArenaFor(h).Count() != 0 {
		t.Error("faded comet should leave the arena")
	}
}

func TestInk_EraserSkipsHull(t *testing.T) {
	h, _ := newInkHost(t)
	g := addDrawGesture(t, h, func(k *Ink) {
		k.SetHullType(HullConvex).SetEraserClass("rubber")
	})
	target := h.Group()

	down := pen(1, events.PhaseDown, 0, 0)
	down.Buttons = events.ButtonEraser
	h.ProcessEvent(target, down)
	move := pen(1, events.PhaseMove, 30, 0)
	move.Buttons = events.ButtonEraser
	h.ProcessEvent(target, move)
	up := pen(1, events.PhaseUp, 30, 0)
	up.Buttons = events.ButtonEraser
	h.ProcessEvent(target, up)

	ink := currentInk(t, g)
	if ink.HullElement() != nil {
		t.Error("eraser strokes never get hulls")
	}
	if !ink.PathElement().HasClass("rubber") {
		t.Error("eraser stroke should carry the eraser class")
	}
}

func TestInk_DeleteRemovesElements(t *testing.T) {
	h, _ := newInkHost(t)
	g := addDrawGesture(t, h, func(k *Ink) { k.SetHullType(HullConvex) })
	target := h.Group()

	h.ProcessEvent(target, pen(1, events.PhaseDown, 0, 0))
	h.ProcessEvent(target, pen(1, events.PhaseMove, 30, 0))
	h.ProcessEvent(target, pen(1, events.PhaseMove, 30, 30))
	h.ProcessEvent(target, pen(1, events.PhaseUp, 30, 30))
	ink := currentInk(t, g)

	path, hull := ink.PathElement(), ink.HullElement()
	if err := ink.Delete(); err != nil {
		t.Fatal(err)
	}
	if path.Parent() != nil || (hull != nil && hull.Parent() != nil) {
		t.Error("deleted ink should detach its elements")
	}
	if ArenaFor(h).Count() != 0 {
		t.Error("deleted ink should leave the arena")
	}
	if err := ink.Delete(); !milerr.IsKind(err, milerr.KindInvalidState) {
		t.Errorf("double delete should be InvalidState, got %v", err)
	}
}
