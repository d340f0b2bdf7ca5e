package geom

import "math"

// UnitSquare returns the outline of the unit cell centered at c, starting at
// the lower-left corner and going up first.
func UnitSquare(c Point) Subpath {
	x0, y0, x1, y1 := c.X-0.5, c.Y-0.5, c.X+0.5, c.Y+0.5
	return Subpath{{x0, y0}, {x0, y1}, {x1, y1}, {x1, y0}, {x0, y0}}
}

// Diamond returns a closed diamond with half-diagonal l.
func Diamond(c Point, l float64) Subpath {
	return Subpath{
		{c.X + l, c.Y},
		{c.X, c.Y + l},
		{c.X - l, c.Y},
		{c.X, c.Y - l},
		{c.X + l, c.Y},
	}
}

// RegularPolygon returns a closed n-gon of circumradius r. n below 3 is
// raised to 3.
func RegularPolygon(c Point, r float64, n int) Subpath {
	if n < 3 {
		n = 3
	}
	sp := make(Subpath, 0, n+1)
	for i := 0; i < n; i++ {
		a := 2 * math.Pi * float64(i) / float64(n)
		sp = append(sp, Point{c.X + r*math.Cos(a), c.Y + r*math.Sin(a)})
	}
	return append(sp, sp[0])
}

// Rectangle returns the closed outline of r.
func Rectangle(r Rect) Subpath {
	return Subpath{
		{r.Min.X, r.Min.Y},
		{r.Min.X, r.Max.Y},
		{r.Max.X, r.Max.Y},
		{r.Max.X, r.Min.Y},
		{r.Min.X, r.Min.Y},
	}
}

type ArrowStyle struct {
	ShaftHalfWidth float64 // w
	HeadHalfWidth  float64 // hw
	HeadLength     float64 // h
}

var DefaultArrow = ArrowStyle{ShaftHalfWidth: 0.015, HeadHalfWidth: 0.06, HeadLength: 0.2}

// Arrow returns the 7-vertex filled arrow from a to b, head ending at b.
// ok is false for a zero-length or non-finite segment.
func Arrow(a, b Point, s ArrowStyle) (Subpath, bool) {
	dx, dy := b.X-a.X, b.Y-a.Y
	l := math.Sqrt(dx*dx + dy*dy)
	if l == 0 || !isFinite(l) {
		return nil, false
	}
	tx, ty := dx/l, dy/l
	nx, ny := -ty, tx
	w, hw, h := s.ShaftHalfWidth, s.HeadHalfWidth, s.HeadLength
	bx, by := a.X+tx*(l-h), a.Y+ty*(l-h)

	return Subpath{
		{a.X - nx*w, a.Y - ny*w},
		{bx - nx*w, by - ny*w},
		{bx - nx*hw, by - ny*hw},
		{b.X, b.Y},
		{bx + nx*hw, by + ny*hw},
		{bx + nx*w, by + ny*w},
		{a.X + nx*w, a.Y + ny*w},
	}, true
}
