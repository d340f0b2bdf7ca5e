package geom

import "math"

// Viewport maps world coordinates onto a width x height pixel area with the
// y axis pointing down. The world is padded by 10% and scaled uniformly so
// shapes keep their aspect ratio.
type Viewport struct {
	Width, Height int
	scale         float64
	ox, oy        float64
}

func NewViewport(world Rect, width, height int) Viewport {
	v := Viewport{Width: width, Height: height, scale: 1}
	if world.Empty() || width <= 0 || height <= 0 {
		return v
	}
	world = world.Pad(0.1)
	w, h := world.Width(), world.Height()
	if w == 0 {
		w = 1
	}
	if h == 0 {
		h = 1
	}
	v.scale = math.Min(float64(width)/w, float64(height)/h)
	v.ox = (float64(width) - w*v.scale) / 2
	v.oy = (float64(height) - h*v.scale) / 2
	v.ox -= world.Min.X * v.scale
	v.oy += world.Max.Y * v.scale
	return v
}

func (v Viewport) Scale() float64 { return v.scale }

func (v Viewport) ToPixel(p Point) (x, y float64) {
	return p.X*v.scale + v.ox, v.oy - p.Y*v.scale
}

func (v Viewport) ToWorld(x, y float64) Point {
	return Point{(x - v.ox) / v.scale, (v.oy - y) / v.scale}
}
