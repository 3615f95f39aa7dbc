package masks

import (
	"math"
	"strconv"
	"strings"

	"github.com/fogleman/gg"
)

// Op is a path command.
type Op uint8

const (
	OpMove Op = iota
	OpLine
	OpQuad
	OpCubic
	OpClose
)

// Point is a coordinate in the target box, origin top-left.
type Point struct {
	X, Y float64
}

// Segment is one path command with its points (control points first, end
// point last).
type Segment struct {
	Op  Op
	Pts []Point
}

// Outline is a closed path inside a width×height box.
type Outline struct {
	Segments []Segment
}

// builder accumulates segments. The zero value is ready to use.
type builder struct {
	segs []Segment
	open bool
	cur  Point
}

func (b *builder) moveTo(x, y float64) {
	b.segs = append(b.segs, Segment{Op: OpMove, Pts: []Point{{x, y}}})
	b.open = true
	b.cur = Point{x, y}
}

func (b *builder) lineTo(x, y float64) {
	if !b.open {
		b.moveTo(x, y)
		return
	}
	if b.cur == (Point{x, y}) {
		return
	}
	b.segs = append(b.segs, Segment{Op: OpLine, Pts: []Point{{x, y}}})
	b.cur = Point{x, y}
}

func (b *builder) quadTo(cx, cy, x, y float64) {
	b.segs = append(b.segs, Segment{Op: OpQuad, Pts: []Point{{cx, cy}, {x, y}}})
	b.cur = Point{x, y}
}

func (b *builder) cubicTo(c1x, c1y, c2x, c2y, x, y float64) {
	b.segs = append(b.segs, Segment{Op: OpCubic, Pts: []Point{{c1x, c1y}, {c2x, c2y}, {x, y}}})
	b.cur = Point{x, y}
}

func (b *builder) close() {
	b.segs = append(b.segs, Segment{Op: OpClose})
	b.open = false
}

func (b *builder) polygon(pts []Point) {
	for i, p := range pts {
		if i == 0 {
			b.moveTo(p.X, p.Y)
			continue
		}
		b.lineTo(p.X, p.Y)
	}
	b.close()
}

// arc appends an elliptical arc from angle a0 to a1 (radians, clockwise in
// screen space). It starts with a line to the arc's first point when a
// subpath is open, otherwise with a move.
func (b *builder) arc(cx, cy, rx, ry, a0, a1 float64) {
	x0, y0 := cx+rx*math.Cos(a0), cy+ry*math.Sin(a0)
	b.lineTo(x0, y0)

	n := int(math.Ceil(math.Abs(a1-a0) / (math.Pi / 2)))
	if n == 0 {
		return
	}
	step := (a1 - a0) / float64(n)
	k := 4.0 / 3.0 * math.Tan(step/4)
	for i := 0; i < n; i++ {
		s := a0 + float64(i)*step
		e := s + step
		sx, sy := cx+rx*math.Cos(s), cy+ry*math.Sin(s)
		ex, ey := cx+rx*math.Cos(e), cy+ry*math.Sin(e)
		b.cubicTo(
			sx-k*rx*math.Sin(s), sy+k*ry*math.Cos(s),
			ex+k*rx*math.Sin(e), ey-k*ry*math.Cos(e),
			ex, ey,
		)
	}
}

func (b *builder) ellipse(cx, cy, rx, ry float64) {
	b.moveTo(cx+rx, cy)
	b.arc(cx, cy, rx, ry, 0, 2*math.Pi)
	b.close()
}

// roundRect appends a rectangle with per-corner radii (top-left, top-right,
// bottom-right, bottom-left).
func (b *builder) roundRect(x, y, w, h, tl, tr, br, bl float64) {
	b.moveTo(x+tl, y)
	b.lineTo(x+w-tr, y)
	if tr > 0 {
		b.arc(x+w-tr, y+tr, tr, tr, -math.Pi/2, 0)
	}
	b.lineTo(x+w, y+h-br)
	if br > 0 {
		b.arc(x+w-br, y+h-br, br, br, 0, math.Pi/2)
	}
	b.lineTo(x+bl, y+h)
	if bl > 0 {
		b.arc(x+bl, y+h-bl, bl, bl, math.Pi/2, math.Pi)
	}
	b.lineTo(x, y+tl)
	if tl > 0 {
		b.arc(x+tl, y+tl, tl, tl, math.Pi, 3*math.Pi/2)
	}
	b.close()
}

func (b *builder) outline() Outline {
	return Outline{Segments: b.segs}
}

// Trace replays the outline onto dc as the current path.
func (o Outline) Trace(dc *gg.Context) {
	for _, s := range o.Segments {
		switch s.Op {
		case OpMove:
			dc.MoveTo(s.Pts[0].X, s.Pts[0].Y)
		case OpLine:
			dc.LineTo(s.Pts[0].X, s.Pts[0].Y)
		case OpQuad:
			dc.QuadraticTo(s.Pts[0].X, s.Pts[0].Y, s.Pts[1].X, s.Pts[1].Y)
		case OpCubic:
			dc.CubicTo(s.Pts[0].X, s.Pts[0].Y, s.Pts[1].X, s.Pts[1].Y, s.Pts[2].X, s.Pts[2].Y)
		case OpClose:
			dc.ClosePath()
		}
	}
}

// SVGPath renders the outline as the d attribute of an SVG path element.
func (o Outline) SVGPath() string {
	var sb strings.Builder
	for i, s := range o.Segments {
		if i > 0 {
			sb.WriteByte(' ')
		}
		switch s.Op {
		case OpMove:
			sb.WriteString("M")
		case OpLine:
			sb.WriteString("L")
		case OpQuad:
			sb.WriteString("Q")
		case OpCubic:
			sb.WriteString("C")
		case OpClose:
			sb.WriteString("Z")
			continue
		}
		for _, p := range s.Pts {
			sb.WriteByte(' ')
			sb.WriteString(coord(p.X))
			sb.WriteByte(' ')
			sb.WriteString(coord(p.Y))
		}
	}
	return sb.String()
}

func coord(v float64) string {
	v = math.Round(v*100) / 100
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
