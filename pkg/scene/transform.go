package scene

import (
	"golang.org/x/image/math/f64"

	"github.com/go-mil/mil/pkg/geometry"
)

// Transform is a 2D affine transform over scene coordinates, stored as a
// row-major 2x3 matrix:
//
//	| A[0] A[1] A[2] |
//	| A[3] A[4] A[5] |
type Transform struct {
	A f64.Aff3
}

// Identity returns the identity transform.
func Identity() Transform {
	return Transform{A: f64.Aff3{1, 0, 0, 0, 1, 0}}
}

// Translation returns a transform moving points by (dx, dy).
func Translation(dx, dy float64) Transform {
	return Transform{A: f64.Aff3{1, 0, dx, 0, 1, dy}}
}

// ScaleAbout returns a transform scaling uniformly by factor around the
// fixed point (cx, cy).
func ScaleAbout(factor, cx, cy float64) Transform {
	return Transform{A: f64.Aff3{
		factor, 0, cx * (1 - factor),
		0, factor, cy * (1 - factor),
	}}
}

// Mul returns the composition t∘other: other is applied first.
func (t Transform) Mul(other Transform) Transform {
	a, b := t.A, other.A
	return Transform{A: f64.Aff3{
		a[0]*b[0] + a[1]*b[3],
		a[0]*b[1] + a[1]*b[4],
		a[0]*b[2] + a[1]*b[5] + a[2],
		a[3]*b[0] + a[4]*b[3],
		a[3]*b[1] + a[4]*b[4],
		a[3]*b[2] + a[4]*b[5] + a[5],
	}}
}

// Apply maps the point through the transform.
func (t Transform) Apply(p geometry.Point) geometry.Point {
	return geometry.Point{
		X: t.A[0]*p.X + t.A[1]*p.Y + t.A[2],
		Y: t.A[3]*p.X + t.A[4]*p.Y + t.A[5],
	}
}

// IsIdentity reports whether the transform is exactly the identity.
func (t Transform) IsIdentity() bool {
	return t.A == f64.Aff3{1, 0, 0, 0, 1, 0}
}

// Invert returns the inverse transform. Singular transforms return the
// identity and false.
func (t Transform) Invert() (Transform, bool) {
	a := t.A
	det := a[0]*a[4] - a[1]*a[3]
	if det == 0 {
		return Identity(), false
	}
	inv := f64.Aff3{
		a[4] / det, -a[1] / det, (a[1]*a[5] - a[4]*a[2]) / det,
		-a[3] / det, a[0] / det, (a[3]*a[2] - a[0]*a[5]) / det,
	}
	return Transform{A: inv}, true
}

// ToScene maps a screen-space point into the local space of element e by
// applying the inverse of every transform on the path from the root down
// to and including e.
func ToScene(e *Element, p geometry.Point) geometry.Point {
	total := Identity()
	for node := e; node != nil; node = node.Parent() {
		total = node.Transform().Mul(total)
	}
	if inv, ok := total.Invert(); ok {
		return inv.Apply(p)
	}
	return p
}
