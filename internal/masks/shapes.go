package masks

import "math"

// Generator produces a closed outline filling a width×height box.
type Generator func(w, h float64) Outline

func circle(w, h float64) Outline {
	var b builder
	r := math.Min(w, h) / 2
	b.ellipse(w/2, h/2, r, r)
	return b.outline()
}

func oval(w, h float64) Outline {
	var b builder
	b.ellipse(w/2, h/2, w/2, h/2)
	return b.outline()
}

func square(w, h float64) Outline {
	s := math.Min(w, h)
	x, y := (w-s)/2, (h-s)/2
	var b builder
	b.polygon([]Point{{x, y}, {x + s, y}, {x + s, y + s}, {x, y + s}})
	return b.outline()
}

func roundedRectangle(w, h float64) Outline {
	r := math.Min(w, h) * 0.15
	var b builder
	b.roundRect(0, 0, w, h, r, r, r, r)
	return b.outline()
}

// droplet is a leaf: three fully rounded corners and a sharp top-left one.
func droplet(w, h float64) Outline {
	r := math.Min(w, h) / 2
	var b builder
	b.roundRect(0, 0, w, h, 0, r, r, r)
	return b.outline()
}

func triangle(w, h float64) Outline {
	var b builder
	b.polygon([]Point{{w / 2, 0}, {w, h}, {0, h}})
	return b.outline()
}

func triangleBottomLeft(w, h float64) Outline {
	var b builder
	b.polygon([]Point{{0, 0}, {w, h}, {0, h}})
	return b.outline()
}

func diamond(w, h float64) Outline {
	var b builder
	b.polygon([]Point{{w / 2, 0}, {w, h / 2}, {w / 2, h}, {0, h / 2}})
	return b.outline()
}

func diamondTall(w, h float64) Outline {
	var b builder
	b.polygon([]Point{{w / 2, 0}, {w * 0.8, h / 2}, {w / 2, h}, {w * 0.2, h / 2}})
	return b.outline()
}

// regular returns the vertices of an n-gon inscribed in the box, first
// vertex at angle start.
func regular(n int, w, h, start float64) []Point {
	pts := make([]Point, n)
	for i := range pts {
		a := start + 2*math.Pi*float64(i)/float64(n)
		pts[i] = Point{w/2 + w/2*math.Cos(a), h/2 + h/2*math.Sin(a)}
	}
	return pts
}

func pentagon(w, h float64) Outline {
	var b builder
	b.polygon(regular(5, w, h, -math.Pi/2))
	return b.outline()
}

func hexagon(w, h float64) Outline {
	var b builder
	b.polygon(regular(6, w, h, 0))
	return b.outline()
}

// starOf alternates outer and inner vertices; inner is the inner radius as a
// fraction of the outer one.
func starOf(points int, inner float64) Generator {
	return func(w, h float64) Outline {
		pts := make([]Point, 0, points*2)
		for i := 0; i < points*2; i++ {
			a := -math.Pi/2 + math.Pi*float64(i)/float64(points)
			f := 1.0
			if i%2 == 1 {
				f = inner
			}
			pts = append(pts, Point{w/2 + f*w/2*math.Cos(a), h/2 + f*h/2*math.Sin(a)})
		}
		var b builder
		b.polygon(pts)
		return b.outline()
	}
}

func cross(w, h float64) Outline {
	x1, x2 := w/3, 2*w/3
	y1, y2 := h/3, 2*h/3
	var b builder
	b.polygon([]Point{
		{x1, 0}, {x2, 0}, {x2, y1}, {w, y1}, {w, y2}, {x2, y2},
		{x2, h}, {x1, h}, {x1, y2}, {0, y2}, {0, y1}, {x1, y1},
	})
	return b.outline()
}

func speechBubble(w, h float64) Outline {
	bh := h * 0.8
	r := math.Min(w, bh) * 0.12
	var b builder
	b.moveTo(r, 0)
	b.lineTo(w-r, 0)
	b.quadTo(w, 0, w, r)
	b.lineTo(w, bh-r)
	b.quadTo(w, bh, w-r, bh)
	b.lineTo(w*0.35, bh)
	b.lineTo(w*0.15, h)
	b.lineTo(w*0.2, bh)
	b.lineTo(r, bh)
	b.quadTo(0, bh, 0, bh-r)
	b.lineTo(0, r)
	b.quadTo(0, 0, r, 0)
	b.close()
	return b.outline()
}

// cloud scallops the rim of an ellipse with outward quadratic bumps.
func cloud(w, h float64) Outline {
	const bumps = 9
	cx, cy := w/2, h/2
	rx, ry := w*0.38, h*0.34
	var b builder
	for i := 0; i <= bumps; i++ {
		a := 2 * math.Pi * float64(i) / bumps
		x, y := cx+rx*math.Cos(a), cy+ry*math.Sin(a)
		if i == 0 {
			b.moveTo(x, y)
			continue
		}
		m := a - math.Pi/bumps
		b.quadTo(cx+rx*1.45*math.Cos(m), cy+ry*1.45*math.Sin(m), x, y)
	}
	b.close()
	return b.outline()
}

// arrowUnit is a right-pointing arrow in the unit square.
var arrowUnit = []Point{
	{0, 0.3}, {0.6, 0.3}, {0.6, 0}, {1, 0.5}, {0.6, 1}, {0.6, 0.7}, {0, 0.7},
}

func arrow(dir string) Generator {
	return func(w, h float64) Outline {
		pts := make([]Point, len(arrowUnit))
		for i, p := range arrowUnit {
			switch dir {
			case "left":
				pts[i] = Point{(1 - p.X) * w, p.Y * h}
			case "down":
				pts[i] = Point{p.Y * w, p.X * h}
			case "up":
				pts[i] = Point{p.Y * w, (1 - p.X) * h}
			default:
				pts[i] = Point{p.X * w, p.Y * h}
			}
		}
		var b builder
		b.polygon(pts)
		return b.outline()
	}
}

// flowerOf samples the polar rose r(θ) = 0.65 + 0.35·cos(nθ).
func flowerOf(petals int) Generator {
	return func(w, h float64) Outline {
		const samples = 180
		pts := make([]Point, samples)
		for i := range pts {
			a := 2 * math.Pi * float64(i) / samples
			r := 0.65 + 0.35*math.Cos(float64(petals)*a)
			pts[i] = Point{w/2 + r*w/2*math.Cos(a-math.Pi/2), h/2 + r*h/2*math.Sin(a-math.Pi/2)}
		}
		var b builder
		b.polygon(pts)
		return b.outline()
	}
}

func flag(w, h float64) Outline {
	var b builder
	b.polygon([]Point{{0, 0}, {w, 0}, {w * 0.75, h / 2}, {w, h}, {0, h}})
	return b.outline()
}

func halfCircle(w, h float64) Outline {
	var b builder
	b.moveTo(0, h)
	b.arc(w/2, h, w/2, h, math.Pi, 2*math.Pi)
	b.close()
	return b.outline()
}

func cylinder(w, h float64) Outline {
	e := h * 0.1
	var b builder
	b.moveTo(0, e)
	b.arc(w/2, e, w/2, e, math.Pi, 2*math.Pi)
	b.lineTo(w, h-e)
	b.arc(w/2, h-e, w/2, e, 0, math.Pi)
	b.close()
	return b.outline()
}

func teardrop(w, h float64) Outline {
	rx, ry := w/2, h*0.35
	cy := h - ry
	var b builder
	b.moveTo(w/2, 0)
	b.quadTo(w, h*0.3, w, cy)
	b.arc(w/2, cy, rx, ry, 0, math.Pi)
	b.quadTo(0, h*0.3, w/2, 0)
	b.close()
	return b.outline()
}

// wave is a band whose top and bottom edges follow two sine periods.
func wave(w, h float64) Outline {
	const samples = 64
	amp := h * 0.08
	pts := make([]Point, 0, 2*(samples+1))
	for i := 0; i <= samples; i++ {
		x := w * float64(i) / samples
		pts = append(pts, Point{x, amp + amp*math.Sin(4*math.Pi*x/w)})
	}
	for i := samples; i >= 0; i-- {
		x := w * float64(i) / samples
		pts = append(pts, Point{x, h - amp + amp*math.Sin(4*math.Pi*x/w)})
	}
	var b builder
	b.polygon(pts)
	return b.outline()
}
