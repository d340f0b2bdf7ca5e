package geom

import "math"

type Point struct {
	X, Y float64
}

func Pt(x, y float64) Point { return Point{X: x, Y: y} }

func (p Point) Add(q Point) Point     { return Point{p.X + q.X, p.Y + q.Y} }
func (p Point) Sub(q Point) Point     { return Point{p.X - q.X, p.Y - q.Y} }
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }
func (p Point) IsFinite() bool        { return isFinite(p.X) && isFinite(p.Y) }
func (p Point) Dist(q Point) float64  { return math.Hypot(q.X-p.X, q.Y-p.Y) }
func (p Point) Equal(q Point) bool    { return p.X == q.X && p.Y == q.Y }
func (p Point) Near(q Point, eps float64) bool {
	return math.Abs(p.X-q.X) <= eps && math.Abs(p.Y-q.Y) <= eps
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Lerp returns (1-r)*a + r*b with r clamped to [0, 1].
func Lerp(a, b Point, r float64) Point {
	if math.IsNaN(r) || r < 0 {
		r = 0
	} else if r > 1 {
		r = 1
	}
	return Point{(1-r)*a.X + r*b.X, (1-r)*a.Y + r*b.Y}
}

// Subpath is one closed ring of points.
type Subpath []Point

// Polygon is a list of independent subpaths drawn as a single shape.
type Polygon []Subpath

func (p Polygon) Empty() bool {
	for _, sp := range p {
		if len(sp) > 0 {
			return false
		}
	}
	return true
}

func (p Polygon) NumPoints() int {
	n := 0
	for _, sp := range p {
		n += len(sp)
	}
	return n
}

// SplitAtNil turns a point list that uses nil entries as subpath breaks into
// a polygon. Empty subpaths are dropped.
func SplitAtNil(points []*Point) Polygon {
	var poly Polygon
	var cur Subpath
	for _, p := range points {
		if p == nil {
			if len(cur) > 0 {
				poly = append(poly, cur)
			}
			cur = nil
			continue
		}
		cur = append(cur, *p)
	}
	if len(cur) > 0 {
		poly = append(poly, cur)
	}
	return poly
}

type Rect struct {
	Min, Max Point
}

func (r Rect) Width() float64  { return r.Max.X - r.Min.X }
func (r Rect) Height() float64 { return r.Max.Y - r.Min.Y }

func (r Rect) Empty() bool { return r.Max.X < r.Min.X || r.Max.Y < r.Min.Y }

// EmptyRect is the identity for Union.
func EmptyRect() Rect {
	return Rect{
		Min: Point{math.Inf(1), math.Inf(1)},
		Max: Point{math.Inf(-1), math.Inf(-1)},
	}
}

func (r Rect) Extend(p Point) Rect {
	if !p.IsFinite() {
		return r
	}
	r.Min.X = math.Min(r.Min.X, p.X)
	r.Min.Y = math.Min(r.Min.Y, p.Y)
	r.Max.X = math.Max(r.Max.X, p.X)
	r.Max.Y = math.Max(r.Max.Y, p.Y)
	return r
}

func (r Rect) Union(o Rect) Rect {
	if o.Empty() {
		return r
	}
	return r.Extend(o.Min).Extend(o.Max)
}

// Pad grows the rectangle by frac of its size on every side. Degenerate
// dimensions are grown by one unit instead.
func (r Rect) Pad(frac float64) Rect {
	if r.Empty() {
		return r
	}
	w, h := r.Width(), r.Height()
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	r.Min.X -= w * frac
	r.Max.X += w * frac
	r.Min.Y -= h * frac
	r.Max.Y += h * frac
	return r
}

func (p Polygon) Bounds() Rect {
	b := EmptyRect()
	for _, sp := range p {
		for _, pt := range sp {
			b = b.Extend(pt)
		}
	}
	return b
}
