package export

import (
	"image"
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/navtrace/internal/geom"
	"github.com/san-kum/navtrace/internal/scene"
)

// RenderScene rasterizes a scene onto a white RGBA image. Fills use the
// even-odd rule, sampled at pixel centers.
func RenderScene(sc scene.Scene, width, height int, bounds geom.Rect) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	renderInto(img, sc, bounds)
	return img
}

// renderInto paints sc over the whole of img, clearing it first.
func renderInto(img *image.RGBA, sc scene.Scene, bounds geom.Rect) {
	width, height := img.Rect.Dx(), img.Rect.Dy()
	bg := parseColor(background)
	for i := 0; i < len(img.Pix); i += 4 {
		img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = bg.R, bg.G, bg.B, 255
	}

	vp := geom.NewViewport(bounds, width, height)
	for _, slot := range sc.Slots() {
		if slot.IsPlaceholder() || slot.Drawable.Paths.Empty() {
			continue
		}
		paint(img, slot.Drawable, vp)
	}
}

func paint(img *image.RGBA, d scene.Drawable, vp geom.Viewport) {
	alpha := d.Style.Opacity
	if alpha <= 0 {
		return
	}

	if d.Style.Fill != "" {
		fill := parseColor(d.Style.Fill)
		line := parseColor(d.Style.Line)
		x0, y0 := vp.ToPixel(d.Paths.Bounds().Min)
		x1, y1 := vp.ToPixel(d.Paths.Bounds().Max)
		minX, maxX := clampInt(math.Floor(math.Min(x0, x1)), img.Rect.Dx()), clampInt(math.Ceil(math.Max(x0, x1)), img.Rect.Dx())
		minY, maxY := clampInt(math.Floor(math.Min(y0, y1)), img.Rect.Dy()), clampInt(math.Ceil(math.Max(y0, y1)), img.Rect.Dy())
		for py := minY; py < maxY; py++ {
			for px := minX; px < maxX; px++ {
				if !d.Paths.Contains(vp.ToWorld(float64(px)+0.5, float64(py)+0.5)) {
					continue
				}
				c := fill
				if d.Style.Pattern != "" && hatched(px, py) {
					c = line
				}
				blend(img, px, py, c, alpha)
			}
		}
	}

	if d.Style.Mode == scene.ModeOutline {
		line := parseColor(d.Style.Line)
		dotted := d.Style.Dash == scene.DashDot
		for _, sp := range d.Paths {
			for j := 1; j < len(sp); j++ {
				ax, ay := vp.ToPixel(sp[j-1])
				bx, by := vp.ToPixel(sp[j])
				drawLine(img, int(ax), int(ay), int(bx), int(by), line, alpha, dotted)
			}
		}
	}
}

func hatched(x, y int) bool {
	return (x+y)%6 == 0 || (x-y+6000)%6 == 0
}

// drawLine is Bresenham's algorithm; dotted lines skip every other pair of
// pixels.
func drawLine(img *image.RGBA, x0, y0, x1, y1 int, c color.RGBA, alpha float64, dotted bool) {
	dx := abs(x1 - x0)
	dy := -abs(y1 - y0)
	sx, sy := 1, 1
	if x0 > x1 {
		sx = -1
	}
	if y0 > y1 {
		sy = -1
	}
	e := dx + dy
	for n := 0; ; n++ {
		if !dotted || n%4 < 2 {
			blend(img, x0, y0, c, alpha)
		}
		if x0 == x1 && y0 == y1 {
			return
		}
		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x0 += sx
		}
		if e2 <= dx {
			e += dx
			y0 += sy
		}
	}
}

func blend(img *image.RGBA, x, y int, c color.RGBA, alpha float64) {
	if !(image.Point{x, y}.In(img.Rect)) {
		return
	}
	i := img.PixOffset(x, y)
	mix := func(dst, src uint8) uint8 {
		return uint8(math.Round(float64(dst)*(1-alpha) + float64(src)*alpha))
	}
	img.Pix[i] = mix(img.Pix[i], c.R)
	img.Pix[i+1] = mix(img.Pix[i+1], c.G)
	img.Pix[i+2] = mix(img.Pix[i+2], c.B)
	img.Pix[i+3] = 255
}

func parseColor(hex string) color.RGBA {
	c, err := colorful.Hex(hex)
	if err != nil {
		return color.RGBA{A: 255}
	}
	r, g, b := c.RGB255()
	return color.RGBA{R: r, G: g, B: b, A: 255}
}

func clampInt(v float64, hi int) int {
	if v < 0 {
		return 0
	}
	if v > float64(hi) {
		return hi
	}
	return int(v)
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
