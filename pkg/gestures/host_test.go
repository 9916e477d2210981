package gestures

import (
	"testing"
	"time"

	"github.com/go-mil/mil/pkg/events"
	"github.com/go-mil/mil/pkg/geometry"
	"github.com/go-mil/mil/pkg/milerr"
	"github.com/go-mil/mil/pkg/scene"
	"github.com/go-mil/mil/pkg/timing"
)

// newTestHost builds a host on a manual clock starting at the unix epoch.
func newTestHost(t *testing.T) (*Host, *timing.Manual) {
	t.Helper()
	t.Cleanup(Defaults().Reset)
	clock := timing.NewManual(time.Unix(0, 0))
	return NewHost(scene.NewSVG(), clock), clock
}

func pointerEvent(id int64, kind events.PointerKind, phase events.Phase, x, y float64) events.PointerEvent {
	return events.PointerEvent{
		PointerID: id,
		Kind:      kind,
		Phase:     phase,
		Position:  geometry.Point{X: x, Y: y},
		Buttons:   events.ButtonPrimary,
	}
}

func touchDown(h *Host, target *scene.Element, id int64, x, y float64) {
	h.ProcessEvent(target, pointerEvent(id, events.KindTouch, events.PhaseDown, x, y))
}

func touchMove(h *Host, target *scene.Element, id int64, x, y float64) {
	h.ProcessEvent(target, pointerEvent(id, events.KindTouch, events.PhaseMove, x, y))
}

func touchUp(h *Host, target *scene.Element, id int64, x, y float64) {
	h.ProcessEvent(target, pointerEvent(id, events.KindTouch, events.PhaseUp, x, y))
}

func penDown(h *Host, target *scene.Element, id int64, x, y float64) {
	h.ProcessEvent(target, pointerEvent(id, events.KindPen, events.PhaseDown, x, y))
}

// newChild appends a fresh group under parent.
func newChild(parent *scene.Element) *scene.Element {
	child := scene.NewGroup()
	parent.AppendChild(child)
	return child
}

func TestAddGesture_Validation(t *testing.T) {
	h, _ := newTestHost(t)

	if err := h.AddGesture(nil); !milerr.IsKind(err, milerr.KindInvalidArgument) {
		t.Errorf("nil gesture: %v", err)
	}

	noTarget := NewGesture("a").SetPointerType("touch")
	if err := h.AddGesture(noTarget); !milerr.IsKind(err, milerr.KindInvalidSpec) {
		t.Errorf("missing target: %v", err)
	}

	noType := h.CreateGesture("b", false)
	if err := h.AddGesture(noType); !milerr.IsKind(err, milerr.KindInvalidSpec) {
		t.Errorf("missing pointer type: %v", err)
	}

	bad := h.CreateGesture("c", false).SetPointerType("bogus")
	if err := h.AddGesture(bad); !milerr.IsKind(err, milerr.KindInvalidSpec) {
		t.Errorf("deferred expression error should surface on add: %v", err)
	}
}

func TestAddGesture_NameUniquification(t *testing.T) {
	h, _ := newTestHost(t)

	first := h.CreateGesture("tap", false).SetPointerType("touch")
	if err := h.AddGesture(first); err != nil {
		t.Fatal(err)
	}
	dup := h.CreateGesture("tap", false).SetPointerType("touch")
	if err := h.AddGesture(dup); !milerr.IsKind(err, milerr.KindInvalidSpec) {
		t.Errorf("duplicate name should be InvalidSpec, got %v", err)
	}

	star1 := h.CreateGesture("auto*", false).SetPointerType("touch")
	star2 := h.CreateGesture("auto*", false).SetPointerType("touch")
	if err := h.AddGesture(star1); err != nil {
		t.Fatal(err)
	}
	if err := h.AddGesture(star2); err != nil {
		t.Fatal(err)
	}
	if star1.Name() == star2.Name() {
		t.Errorf("starred names should uniquify, both are %q", star1.Name())
	}
	if h.GetGestureByName(star1.Name()) != star1 {
		t.Error("uniquified name should resolve")
	}
}

func TestRemoveGestures(t *testing.T) {
	h, _ := newTestHost(t)
	target := h.Group()

	for _, name := range []string{"zoom_pan", "zoom_pinch", "draw"} {
		g := h.CreateGesture(name, false).SetTarget(target).SetPointerType("touch")
		if err := h.AddGesture(g); err != nil {
			t.Fatal(err)
		}
	}
	if !h.RemoveGestureByName("draw") {
		t.Error("draw should be removable")
	}
	if h.RemoveGestureByName("draw") {
		t.Error("second removal should report false")
	}
	if got := h.RemoveGesturesByTarget(target, "zoom_"); got != 2 {
		t.Errorf("removed %d, want 2", got)
	}
	if h.GetGestureByName("zoom_pan") != nil {
		t.Error("zoom_pan should be gone")
	}
}

func TestSetMoveHandlerRequiresTarget(t *testing.T) {
	g := NewGesture("move").SetMoveHandler(func(*Gesture, events.PointerEvent) {})
	if !milerr.IsKind(g.Err(), milerr.KindInvalidSpec) {
		t.Errorf("move handler before target should defer InvalidSpec, got %v", g.Err())
	}
}

func TestImmutablePropertiesAfterAdd(t *testing.T) {
	h, _ := newTestHost(t)
	g := h.CreateGesture("frozen", false).SetPointerType("touch")
	if err := h.AddGesture(g); err != nil {
		t.Fatal(err)
	}
	g.SetPointerType("pen")
	if !milerr.IsKind(g.Err(), milerr.KindInvalidSpec) {
		t.Errorf("mutating pointer type after add should defer InvalidSpec, got %v", g.Err())
	}
}

func TestGestureGroups(t *testing.T) {
	h, _ := newTestHost(t)
	target := h.Group()

	var started int
	g := h.CreateGesture("grouped", false).
		SetTarget(target).
		SetPointerType("touch").
		SetGroupName("tools").
		SetStartedHandler(func(*Gesture) { started++ })
	if err := h.AddGesture(g); err != nil {
		t.Fatal(err)
	}

	if !h.IsGestureGroupEnabled("tools") {
		t.Error("unknown groups default to enabled")
	}
	h.EnableGestureGroup("tools", false)

	touchDown(h, target, 1, 0, 0)
	if started != 0 {
		t.Fatal("gesture in disabled group must not start")
	}
	touchUp(h, target, 1, 0, 0)

	h.EnableGestureGroup("tools", true)
	touchDown(h, target, 2, 0, 0)
	if started != 1 {
		t.Errorf("started = %d, want 1 after re-enable", started)
	}
}

func TestConstructionDefaults(t *testing.T) {
	h, _ := newTestHost(t)
	target := scene.NewGroup()
	h.Group().AppendChild(target)

	Defaults().
		SetTarget(target).
		SetGroupName("default-group").
		SetRecognitionTimeout(99 * time.Millisecond)
	t.Cleanup(Defaults().Reset)

	g := h.CreateGesture("defaulted", false)
	if g.Target() != target {
		t.Error("default target not applied")
	}
	if g.GroupName() != "default-group" {
		t.Error("default group not applied")
	}
	if g.RecognitionTimeout() != 99*time.Millisecond {
		t.Error("default recognition timeout not applied")
	}

	bare := h.CreateGesture("bare", true)
	if bare.GroupName() != "" {
		t.Error("ignoreDefaults should skip process defaults")
	}
	if bare.Target() != h.Group() {
		t.Error("ignoreDefaults still falls back to the host group")
	}
}

func TestReleaseCaptureNotHeld(t *testing.T) {
	h, _ := newTestHost(t)
	err := h.ReleaseCapture(h.Group(), 42)
	if !milerr.IsKind(err, milerr.KindInvalidState) {
		t.Errorf("releasing a capture that is not held should be InvalidState, got %v", err)
	}
}
