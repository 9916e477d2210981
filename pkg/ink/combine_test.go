package ink

import (
	"math"
	"testing"

	"github.com/go-mil/mil/pkg/events"
	"github.com/go-mil/mil/pkg/geometry"
	"github.com/go-mil/mil/pkg/gestures"
	"github.com/go-mil/mil/pkg/settings"
)

// drawCircle feeds a closed circular stroke.
func drawCircle(h *gestures.Host, id int64, center geometry.Point, radius float64) {
	target := h.Group()
	point := func(i int) geometry.Point {
		a := float64(i) / 36 * 2 * math.Pi
		return geometry.Point{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)}
	}
	start := point(0)
	h.ProcessEvent(target, pen(id, events.PhaseDown, start.X, start.Y))
	for i := 1; i <= 36; i++ {
		p := point(i)
		h.ProcessEvent(target, pen(id, events.PhaseMove, p.X, p.Y))
	}
	end := point(36)
	h.ProcessEvent(target, pen(id, events.PhaseUp, end.X, end.Y))
}

func TestCombine_Explicit(t *testing.T) {
	h, _ := newInkHost(t)
	addDrawGesture(t, h, func(k *Ink) { k.SetHullType(HullConvex) })

	drawCircle(h, 1, geometry.Point{X: 100, Y: 100}, 50)
	drawCircle(h, 2, geometry.Point{X: 300, Y: 100}, 50)

	arena := ArenaFor(h)
	all := arena.All()
	if len(all) != 2 {
		t.Fatalf("arena has %d inks, want 2", len(all))
	}

	combined, err := Combine(h, all, "merged", false)
	if err != nil {
		t.Fatal(err)
	}
	if arena.Count() != 1 {
		t.Fatalf("arena has %d inks after combine, want 1", arena.Count())
	}
	if len(combined.Points()) != 2 {
		t.Errorf("combined ink should keep both point sequences, got %d", len(combined.Points()))
	}
	if !combined.PathElement().HasClass("merged") {
		t.Error("combined composite should carry the requested class")
	}
	if combined.HullElement() == nil {
		t.Fatal("combined ink should have a hull")
	}

	// The combined hull spans both circles.
	bounds := geometry.Bounds(combined.HullElement().Path().Points())
	if bounds.Left > 55 || bounds.Right < 345 {
		t.Errorf("combined hull bounds %+v should span both circles", bounds)
	}
}

func TestCombine_RequiresTwoConsolidatedInks(t *testing.T) {
	h, _ := newInkHost(t)
	addDrawGesture(t, h, nil)
	drawCircle(h, 1, geometry.Point{X: 100, Y: 100}, 40)

	arena := ArenaFor(h)
	if _, err := Combine(h, arena.All(), "x", false); err == nil {
		t.Error("combining fewer than two inks should fail")
	}
}

func TestCombine_MatchHullResamples(t *testing.T) {
	h, _ := newInkHost(t)
	addDrawGesture(t, h, func(k *Ink) { k.SetHullType(HullConvex) })

	drawCircle(h, 1, geometry.Point{X: 100, Y: 100}, 50)
	drawCircle(h, 2, geometry.Point{X: 130, Y: 100}, 50)

	combined, err := Combine(h, ArenaFor(h).All(), "merged", true)
	if err != nil {
		t.Fatal(err)
	}
	if len(combined.Points()) != 1 {
		t.Fatalf("match-hull combine should rebuild a single sequence, got %d", len(combined.Points()))
	}
	// The combined ink keeps a convex hull outline.
	hullPts := combined.HullElement().Path().Points()
	if len(hullPts) < 3 {
		t.Fatal("combined hull missing")
	}
}

func TestAutoCombine_ContainedWithin(t *testing.T) {
	h, _ := newInkHost(t)
	h.Settings().SetInkAutoCombineMode(settings.CombineContainedWithin)
	addDrawGesture(t, h, func(k *Ink) { k.SetHullType(HullConvex) })

	// Ink A: large circle.
	drawCircle(h, 1, geometry.Point{X: 200, Y: 200}, 100)
	arena := ArenaFor(h)
	if arena.Count() != 1 {
		t.Fatalf("arena = %d inks, want 1", arena.Count())
	}

	// Ink B: drawn fully inside A; its pointer-up triggers the combine.
	drawCircle(h, 2, geometry.Point{X: 200, Y: 200}, 30)
	if arena.Count() != 1 {
		t.Fatalf("containment should combine into a single ink, arena = %d", arena.Count())
	}
	combined := arena.All()[0]
	if len(combined.Points()) != 2 {
		t.Errorf("combined ink should hold both strokes, got %d sequences", len(combined.Points()))
	}
}

func TestAutoCombine_SkipsMereOverlap(t *testing.T) {
	h, _ := newInkHost(t)
	h.Settings().SetInkAutoCombineMode(settings.CombineContainedWithin)
	addDrawGesture(t, h, func(k *Ink) { k.SetHullType(HullConvex) })

	drawCircle(h, 1, geometry.Point{X: 200, Y: 200}, 60)
	// Overlapping but not contained.
	drawCircle(h, 2, geometry.Point{X: 280, Y: 200}, 60)

	if got := ArenaFor(h).Count(); got != 2 {
		t.Errorf("mere overlap must not combine: arena = %d inks, want 2", got)
	}
}

func TestAutoCombine_AnyPointWithin(t *testing.T) {
	h, _ := newInkHost(t)
	h.Settings().SetInkAutoCombineMode(settings.CombineAnyPointWithin)
	addDrawGesture(t, h, func(k *Ink) { k.SetHullType(HullConvex) })

	drawCircle(h, 1, geometry.Point{X: 200, Y: 200}, 60)
	drawCircle(h, 2, geometry.Point{X: 280, Y: 200}, 60)

	if got := ArenaFor(h).Count(); got != 1 {
		t.Errorf("overlap should combine under any-point-within: arena = %d inks, want 1", got)
	}
}

func TestAutoCombine_InheritsResize(t *testing.T) {
	h, _ := newInkHost(t)
	h.Settings().SetInkAutoCombineMode(settings.CombineContainedWithin)
	addDrawGesture(t, h, func(k *Ink) { k.SetHullType(HullConvex) })

	drawCircle(h, 1, geometry.Point{X: 200, Y: 200}, 100)
	big := ArenaFor(h).All()[0]
	if err := big.EnableResize("touch:2", ResizeOptions{StartScale: 1}); err != nil {
		t.Fatal(err)
	}

	drawCircle(h, 2, geometry.Point{X: 200, Y: 200}, 30)
	combined := ArenaFor(h).All()[0]
	if combined.ResizePointerType() != "touch:2" {
		t.Errorf("combined ink should inherit resize, got %q", combined.ResizePointerType())
	}
}
