package shapes

import (
	"math"
	"testing"

	"github.com/go-mil/mil/pkg/geometry"
)

// trace samples a polyline through the given corners with intermediate
// points, mimicking a real stroke.
func trace(corners ...geometry.Point) []geometry.Point {
	var out []geometry.Point
	for i := 1; i < len(corners); i++ {
		a, b := corners[i-1], corners[i]
		steps := int(a.DistanceTo(b) / 4)
		if steps < 1 {
			steps = 1
		}
		for s := 0; s < steps; s++ {
			t := float64(s) / float64(steps)
			out = append(out, geometry.Point{X: a.X + (b.X-a.X)*t, Y: a.Y + (b.Y-a.Y)*t})
		}
	}
	out = append(out, corners[len(corners)-1])
	return out
}

func circleStroke(cx, cy, r float64) []geometry.Point {
	var out []geometry.Point
	for i := 0; i <= 40; i++ {
		a := float64(i) / 40 * 2 * math.Pi
		out = append(out, geometry.Point{X: cx + r*math.Cos(a), Y: cy + r*math.Sin(a)})
	}
	return out
}

func TestRecognizeShape_Golden(t *testing.T) {
	tests := []struct {
		name   string
		points []geometry.Point
		want   Shape
	}{
		{
			name:   "check mark",
			points: trace(geometry.Point{X: 0, Y: 55}, geometry.Point{X: 35, Y: 100}, geometry.Point{X: 100, Y: 0}),
			want:   ShapeCheckMark,
		},
		{
			name: "triangle",
			points: trace(
				geometry.Point{X: 50, Y: 0}, geometry.Point{X: 100, Y: 100},
				geometry.Point{X: 0, Y: 100}, geometry.Point{X: 50, Y: 0},
			),
			want: ShapeTriangle,
		},
		{
			name: "rectangle",
			points: trace(
				geometry.Point{X: 0, Y: 0}, geometry.Point{X: 120, Y: 0},
				geometry.Point{X: 120, Y: 80}, geometry.Point{X: 0, Y: 80},
				geometry.Point{X: 0, Y: 0},
			),
			want: ShapeRectangle,
		},
		{
			name:   "circle",
			points: circleStroke(50, 50, 40),
			want:   ShapeCircle,
		},
		{
			name:   "horizontal strike",
			points: trace(geometry.Point{X: 0, Y: 50}, geometry.Point{X: 200, Y: 52}),
			want:   ShapeStrikeThroughHorizontal,
		},
		{
			name:   "vertical strike",
			points: trace(geometry.Point{X: 50, Y: 0}, geometry.Point{X: 52, Y: 200}),
			want:   ShapeStrikeThroughVertical,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecognizeShape(tt.points, 60, 0, 0, nil)
			if got.Shape != tt.want {
				t.Errorf("RecognizeShape = %v (%.1f%%), want %v", got.Shape, got.Percent, tt.want)
			}
		})
	}
}

func TestRecognizeShape_TargetFilter(t *testing.T) {
	circle := circleStroke(50, 50, 40)
	got := RecognizeShape(circle, 60, 0, 0, []Shape{ShapeTriangle, ShapeRectangle})
	if got.Shape == ShapeCircle {
		t.Error("filtered-out shape must not be returned")
	}
}

func TestRecognizeShape_ThresholdRejects(t *testing.T) {
	circle := circleStroke(50, 50, 40)
	got := RecognizeShape(circle, 99.9, 0, 0, nil)
	if got.Shape != ShapeNone {
		t.Errorf("an unreachable threshold should yield ShapeNone, got %v", got.Shape)
	}
}

func TestRecognizeShape_DirectionInsensitive(t *testing.T) {
	forward := trace(geometry.Point{X: 0, Y: 55}, geometry.Point{X: 35, Y: 100}, geometry.Point{X: 100, Y: 0})
	backward := make([]geometry.Point, len(forward))
	for i, p := range forward {
		backward[len(forward)-1-i] = p
	}
	got := RecognizeShape(backward, 60, 0, 0, nil)
	if got.Shape != ShapeCheckMark {
		t.Errorf("reversed check mark = %v, want check-mark", got.Shape)
	}
}

func TestRecognizeRadialSwipe(t *testing.T) {
	up := trace(geometry.Point{X: 100, Y: 100}, geometry.Point{X: 100, Y: 20})
	got := RecognizeRadialSwipe(up, 8, 30)
	if got.Segment != 0 {
		t.Errorf("upward swipe segment = %d, want 0", got.Segment)
	}

	right := trace(geometry.Point{X: 0, Y: 0}, geometry.Point{X: 90, Y: 2})
	got = RecognizeRadialSwipe(right, 4, 30)
	if got.Segment != 1 {
		t.Errorf("rightward swipe in 4 sectors = %d, want 1", got.Segment)
	}

	short := trace(geometry.Point{X: 0, Y: 0}, geometry.Point{X: 5, Y: 5})
	got = RecognizeRadialSwipe(short, 8, 30)
	if got.Segment != -1 {
		t.Errorf("short stroke should not classify, got segment %d", got.Segment)
	}
}
