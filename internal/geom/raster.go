package geom

// Contains reports whether p lies inside the polygon using the even-odd rule
// over all subpaths, which matches how multi-subpath fills are painted.
func (poly Polygon) Contains(p Point) bool {
	inside := false
	for _, sp := range poly {
		n := len(sp)
		if n < 3 {
			continue
		}
		j := n - 1
		for i := 0; i < n; i++ {
			a, b := sp[i], sp[j]
			if (a.Y > p.Y) != (b.Y > p.Y) {
				x := (b.X-a.X)*(p.Y-a.Y)/(b.Y-a.Y) + a.X
				if p.X < x {
					inside = !inside
				}
			}
			j = i
		}
	}
	return inside
}

// SignedArea is positive for counter-clockwise rings.
func (sp Subpath) SignedArea() float64 {
	n := len(sp)
	if n < 3 {
		return 0
	}
	a := 0.0
	for i := 0; i < n; i++ {
		p, q := sp[i], sp[(i+1)%n]
		a += p.X*q.Y - q.X*p.Y
	}
	return a / 2
}

// open drops a repeated closing point.
func (sp Subpath) open() Subpath {
	if n := len(sp); n > 1 && sp[0].Equal(sp[n-1]) {
		return sp[:n-1]
	}
	return sp
}

type Triangle [3]Point

// Triangulate splits a simple ring into triangles by ear clipping. Rings
// that are not simple still yield a best-effort fan of the remaining
// vertices.
func Triangulate(sp Subpath) []Triangle {
	ring := sp.open()
	n := len(ring)
	if n < 3 {
		return nil
	}

	idx := make([]int, n)
	if ring.SignedArea() >= 0 {
		for i := range idx {
			idx[i] = i
		}
	} else {
		for i := range idx {
			idx[i] = n - 1 - i
		}
	}

	tris := make([]Triangle, 0, n-2)
	guard := 0
	for len(idx) > 3 && guard < n*n {
		guard++
		clipped := false
		for i := range idx {
			prev := idx[(i+len(idx)-1)%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			a, b, c := ring[prev], ring[cur], ring[next]
			if cross(a, b, c) <= 0 {
				continue
			}
			if anyInside(ring, idx, prev, cur, next) {
				continue
			}
			tris = append(tris, Triangle{a, b, c})
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			break
		}
	}

	for i := 1; i+1 < len(idx); i++ {
		tris = append(tris, Triangle{ring[idx[0]], ring[idx[i]], ring[idx[i+1]]})
	}
	return tris
}

func cross(a, b, c Point) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func anyInside(ring Subpath, idx []int, ia, ib, ic int) bool {
	a, b, c := ring[ia], ring[ib], ring[ic]
	for _, k := range idx {
		if k == ia || k == ib || k == ic {
			continue
		}
		p := ring[k]
		if cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0 {
			return true
		}
	}
	return false
}

// Area of a triangle, always non-negative.
func (t Triangle) Area() float64 {
	a := cross(t[0], t[1], t[2]) / 2
	if a < 0 {
		return -a
	}
	return a
}
