package scene

import (
	"image"
	"image/color"
	"strconv"
	"strings"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"github.com/go-mil/mil/pkg/geometry"
)

// Snapshot rasterizes every path element under root into an RGBA image of
// the given size, honoring each element's transform chain, fill, stroke,
// and stroke-width attributes. It is a debugging and preview surface; the
// engine itself never reads pixels back.
func Snapshot(root *Element, width, height int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	scanner := rasterx.NewScannerGV(width, height, img, img.Bounds())
	filler := rasterx.NewFiller(width, height, scanner)
	stroker := rasterx.NewStroker(width, height, scanner)

	root.Walk(func(e *Element) bool {
		p := e.Path()
		if p == nil || p.IsEmpty() {
			return true
		}
		total := totalTransform(e)
		drawn := p.Transformed(total)

		if fill := e.Attribute("fill"); fill != "" && !strings.EqualFold(fill, "none") {
			filler.SetColor(parseColor(fill))
			addPath(filler, drawn)
			filler.Draw()
			filler.Clear()
		}
		if stroke := e.Attribute("stroke"); stroke != "" && !strings.EqualFold(stroke, "none") {
			w := 1.0
			if sw := e.Attribute("stroke-width"); sw != "" {
				if parsed, err := strconv.ParseFloat(strings.TrimSuffix(sw, "px"), 64); err == nil && parsed > 0 {
					w = parsed
				}
			}
			stroker.SetColor(parseColor(stroke))
			stroker.SetStroke(floatToFixed26(w), floatToFixed26(4), rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round)
			addPath(stroker, drawn)
			stroker.Draw()
			stroker.Clear()
		}
		return true
	})
	return img
}

func totalTransform(e *Element) Transform {
	total := Identity()
	for node := e; node != nil; node = node.Parent() {
		total = node.Transform().Mul(total)
	}
	return total
}

// addPath feeds path commands to a rasterx adder.
func addPath(adder rasterx.Adder, p *Path) {
	var start, current fixed.Point26_6
	open := false
	for _, cmd := range p.Commands {
		switch cmd.Op {
		case PathOpMoveTo:
			if open {
				adder.Stop(false)
			}
			current = fixedPoint(cmd.Args[0], cmd.Args[1])
			start = current
			adder.Start(current)
			open = true
		case PathOpLineTo:
			current = fixedPoint(cmd.Args[0], cmd.Args[1])
			adder.Line(current)
		case PathOpQuadTo:
			ctrl := fixedPoint(cmd.Args[0], cmd.Args[1])
			current = fixedPoint(cmd.Args[2], cmd.Args[3])
			adder.QuadBezier(ctrl, current)
		case PathOpCubicTo:
			c1 := fixedPoint(cmd.Args[0], cmd.Args[1])
			c2 := fixedPoint(cmd.Args[2], cmd.Args[3])
			current = fixedPoint(cmd.Args[4], cmd.Args[5])
			adder.CubeBezier(c1, c2, current)
		case PathOpClose:
			if open {
				adder.Stop(true)
				current = start
				open = false
			}
		}
	}
	if open {
		adder.Stop(false)
	}
}

func fixedPoint(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: floatToFixed26(x), Y: floatToFixed26(y)}
}

// parseColor parses #rgb, #rrggbb, and a handful of keyword colors. Unknown
// values come back black.
func parseColor(s string) color.Color {
	s = strings.TrimSpace(strings.ToLower(s))
	switch s {
	case "black":
		return color.RGBA{0, 0, 0, 255}
	case "white":
		return color.RGBA{255, 255, 255, 255}
	case "red":
		return color.RGBA{255, 0, 0, 255}
	case "green":
		return color.RGBA{0, 128, 0, 255}
	case "blue":
		return color.RGBA{0, 0, 255, 255}
	case "yellow":
		return color.RGBA{255, 255, 0, 255}
	case "gray", "grey":
		return color.RGBA{128, 128, 128, 255}
	}
	if strings.HasPrefix(s, "#") {
		hex := s[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) == 6 {
			r, _ := strconv.ParseUint(hex[0:2], 16, 8)
			g, _ := strconv.ParseUint(hex[2:4], 16, 8)
			b, _ := strconv.ParseUint(hex[4:6], 16, 8)
			return color.RGBA{uint8(r), uint8(g), uint8(b), 255}
		}
	}
	return color.RGBA{0, 0, 0, 255}
}

// PathBounds returns the bounding rectangle of a path element's geometry in
// root coordinates.
func PathBounds(e *Element) geometry.Rect {
	p := e.Path()
	if p == nil {
		return geometry.Rect{}
	}
	return geometry.Bounds(p.Transformed(totalTransform(e)).Points())
}
