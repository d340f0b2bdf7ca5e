package viz

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/san-kum/navtrace/internal/geom"
	"github.com/san-kum/navtrace/internal/scene"
)

// Braille Patterns: 2x4 dots
// 1 4
// 2 5
// 3 6
// 7 8
//
// Unicode offset 0x2800
var pixelMap = [4][2]int{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const blank = rune(0x2800)

// Canvas is a grid of braille cells. Each cell remembers the color of the
// last dot drawn into it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]string
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Colors: make([][]string, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]string, w)
	}
	c.Clear()
	return c
}

// Dots is the canvas size in sub-pixels.
func (c *Canvas) Dots() (w, h int) { return c.Width * 2, c.Height * 4 }

// Set lights the dot at (x, y) in sub-pixel coordinates with color. An empty
// color keeps the cell's current one.
func (c *Canvas) Set(x, y int, color string) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= rune(pixelMap[y%4][x%2])
	if color != "" {
		c.Colors[row][col] = color
	}
}

// Lit reports whether the dot at (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&rune(pixelMap[y%4][x%2]) != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = blank
			c.Colors[i][j] = ""
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm. Dotted lines light two
// dots out of every four.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int, color string, dotted bool) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	for n := 0; ; n++ {
		if !dotted || n%4 < 2 {
			c.Set(x0, y0, color)
		}
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// FillPolygon lights every dot whose center lies inside poly under the
// even-odd rule. With hatch set only a diagonal cross pattern is lit.
func (c *Canvas) FillPolygon(poly geom.Polygon, vp geom.Viewport, color string, hatch bool) {
	if poly.Empty() {
		return
	}
	b := poly.Bounds()
	x0, y0 := vp.ToPixel(geom.Pt(b.Min.X, b.Max.Y))
	x1, y1 := vp.ToPixel(geom.Pt(b.Max.X, b.Min.Y))
	w, h := c.Dots()
	minX, maxX := clampDot(math.Floor(x0), w), clampDot(math.Ceil(x1), w)
	minY, maxY := clampDot(math.Floor(y0), h), clampDot(math.Ceil(y1), h)
	for y := minY; y < maxY; y++ {
		for x := minX; x < maxX; x++ {
			if hatch && (x+y)%3 != 0 && (x-y+3000)%3 != 0 {
				continue
			}
			if poly.Contains(vp.ToWorld(float64(x)+0.5, float64(y)+0.5)) {
				c.Set(x, y, color)
			}
		}
	}
}

// DrawPolygon outlines every subpath of poly.
func (c *Canvas) DrawPolygon(poly geom.Polygon, vp geom.Viewport, color string, dotted bool) {
	for _, sp := range poly {
		for j := 1; j < len(sp); j++ {
			ax, ay := vp.ToPixel(sp[j-1])
			bx, by := vp.ToPixel(sp[j])
			c.DrawLine(int(math.Floor(ax)), int(math.Floor(ay)), int(math.Floor(bx)), int(math.Floor(by)), color, dotted)
		}
	}
}

// DrawScene paints every visible slot of sc back to front. A non-empty mono
// color replaces every drawable's own color.
func (c *Canvas) DrawScene(sc scene.Scene, bounds geom.Rect, mono string) {
	w, h := c.Dots()
	vp := geom.NewViewport(bounds, w, h)
	pick := func(col string) string {
		if mono != "" {
			return mono
		}
		return col
	}
	for _, slot := range sc.Slots() {
		d := slot.Drawable
		if slot.IsPlaceholder() || d.Paths.Empty() || d.Style.Opacity <= 0 {
			continue
		}
		if d.Style.Fill != "" {
			c.FillPolygon(d.Paths, vp, pick(d.Style.Fill), d.Style.Pattern != "")
		}
		if d.Style.Mode == scene.ModeOutline {
			c.DrawPolygon(d.Paths, vp, pick(d.Style.Line), d.Style.Dash == scene.DashDot)
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row) + "\n")
	}
	return b.String()
}

// Render is String with each run of same-colored cells styled by lipgloss.
func (c *Canvas) Render() string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Colors[i][j] == c.Colors[i][start] {
				continue
			}
			run := string(row[start:j])
			if col := c.Colors[i][start]; col != "" {
				run = lipgloss.NewStyle().Foreground(lipgloss.Color(col)).Render(run)
			}
			b.WriteString(run)
			start = j
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func clampDot(v float64, hi int) int {
	if v < 0 {
		return 0
	}
	if v > float64(hi) {
		return hi
	}
	return int(v)
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
