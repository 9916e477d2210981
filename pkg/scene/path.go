package scene

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"github.com/go-mil/mil/pkg/geometry"
)

// PathOp represents a path command type.
type PathOp int

const (
	PathOpMoveTo PathOp = iota
	PathOpLineTo
	PathOpQuadTo
	PathOpCubicTo
	PathOpClose
)

// PathCommand represents a single path command with its arguments.
type PathCommand struct {
	Op   PathOp
	Args []float64
}

// Path represents vector path geometry as a list of commands.
type Path struct {
	Commands []PathCommand
}

// MoveTo starts a new subpath at the given point.
func (p *Path) MoveTo(x, y float64) {
	p.Commands = append(p.Commands, PathCommand{Op: PathOpMoveTo, Args: []float64{x, y}})
}

// LineTo adds a line segment from the current point to (x, y).
func (p *Path) LineTo(x, y float64) {
	p.Commands = append(p.Commands, PathCommand{Op: PathOpLineTo, Args: []float64{x, y}})
}

// QuadTo adds a quadratic bezier curve to (x2, y2) with control point (x1, y1).
func (p *Path) QuadTo(x1, y1, x2, y2 float64) {
	p.Commands = append(p.Commands, PathCommand{Op: PathOpQuadTo, Args: []float64{x1, y1, x2, y2}})
}

// CubicTo adds a cubic bezier curve to (x3, y3) with control points
// (x1, y1) and (x2, y2).
func (p *Path) CubicTo(x1, y1, x2, y2, x3, y3 float64) {
	p.Commands = append(p.Commands, PathCommand{Op: PathOpCubicTo, Args: []float64{x1, y1, x2, y2, x3, y3}})
}

// Close closes the current subpath.
func (p *Path) Close() {
	p.Commands = append(p.Commands, PathCommand{Op: PathOpClose})
}

// IsEmpty returns true if the path has no commands.
func (p *Path) IsEmpty() bool {
	return len(p.Commands) == 0
}

// Clear removes all commands from the path.
func (p *Path) Clear() {
	p.Commands = p.Commands[:0]
}

// PathFromPoints builds a polyline path through points, optionally closed.
func PathFromPoints(points []geometry.Point, closed bool) *Path {
	p := &Path{}
	if len(points) == 0 {
		return p
	}
	p.MoveTo(points[0].X, points[0].Y)
	for _, pt := range points[1:] {
		p.LineTo(pt.X, pt.Y)
	}
	if closed {
		p.Close()
	}
	return p
}

// Points returns every on-curve point mentioned by the path's commands, in
// order. Control points of curves are skipped.
func (p *Path) Points() []geometry.Point {
	var pts []geometry.Point
	for _, cmd := range p.Commands {
		switch cmd.Op {
		case PathOpMoveTo, PathOpLineTo:
			pts = append(pts, geometry.Point{X: cmd.Args[0], Y: cmd.Args[1]})
		case PathOpQuadTo:
			pts = append(pts, geometry.Point{X: cmd.Args[2], Y: cmd.Args[3]})
		case PathOpCubicTo:
			pts = append(pts, geometry.Point{X: cmd.Args[4], Y: cmd.Args[5]})
		}
	}
	return pts
}

// Transformed returns a copy of the path with every coordinate pair mapped
// through t.
func (p *Path) Transformed(t Transform) *Path {
	out := &Path{Commands: make([]PathCommand, len(p.Commands))}
	for i, cmd := range p.Commands {
		args := make([]float64, len(cmd.Args))
		for j := 0; j+1 < len(cmd.Args); j += 2 {
			pt := t.Apply(geometry.Point{X: cmd.Args[j], Y: cmd.Args[j+1]})
			args[j], args[j+1] = pt.X, pt.Y
		}
		out.Commands[i] = PathCommand{Op: cmd.Op, Args: args}
	}
	return out
}

// Data renders the path as an SVG path-data (d attribute) string.
func (p *Path) Data() string {
	var b strings.Builder
	for i, cmd := range p.Commands {
		if i > 0 {
			b.WriteByte(' ')
		}
		switch cmd.Op {
		case PathOpMoveTo:
			b.WriteByte('M')
		case PathOpLineTo:
			b.WriteByte('L')
		case PathOpQuadTo:
			b.WriteByte('Q')
		case PathOpCubicTo:
			b.WriteByte('C')
		case PathOpClose:
			b.WriteByte('Z')
		}
		for _, a := range cmd.Args {
			b.WriteByte(' ')
			b.WriteString(strconv.FormatFloat(a, 'f', -1, 64))
		}
	}
	return b.String()
}

// ParsePathData parses an SVG path-data string into a Path. The string is
// wrapped in a minimal SVG document and parsed through oksvg, then the
// resulting fixed-point command stream is converted back to float commands.
func ParsePathData(data string) (*Path, error) {
	doc := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 1 1"><path d=%q/></svg>`, data)
	icon, err := oksvg.ReadIconStream(bytes.NewReader([]byte(doc)))
	if err != nil {
		return nil, fmt.Errorf("parse path data: %w", err)
	}
	p := &Path{}
	for _, sp := range icon.SVGPaths {
		convertRasterxPath(sp.Path, p)
	}
	return p, nil
}

func convertRasterxPath(rp rasterx.Path, p *Path) {
	i := 0
	for i < len(rp) {
		switch rasterx.PathCommand(rp[i]) {
		case rasterx.PathMoveTo:
			p.MoveTo(fixed26ToFloat(rp[i+1]), fixed26ToFloat(rp[i+2]))
			i += 3
		case rasterx.PathLineTo:
			p.LineTo(fixed26ToFloat(rp[i+1]), fixed26ToFloat(rp[i+2]))
			i += 3
		case rasterx.PathQuadTo:
			p.QuadTo(fixed26ToFloat(rp[i+1]), fixed26ToFloat(rp[i+2]), fixed26ToFloat(rp[i+3]), fixed26ToFloat(rp[i+4]))
			i += 5
		case rasterx.PathCubicTo:
			p.CubicTo(fixed26ToFloat(rp[i+1]), fixed26ToFloat(rp[i+2]), fixed26ToFloat(rp[i+3]), fixed26ToFloat(rp[i+4]), fixed26ToFloat(rp[i+5]), fixed26ToFloat(rp[i+6]))
			i += 7
		case rasterx.PathClose:
			p.Close()
			i++
		default:
			i++
		}
	}
}

func fixed26ToFloat(f fixed.Int26_6) float64 {
	return float64(f) / 64.0
}

func floatToFixed26(f float64) fixed.Int26_6 {
	return fixed.Int26_6(f * 64.0)
}
