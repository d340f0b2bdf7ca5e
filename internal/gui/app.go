package gui

import (
	"fmt"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/san-kum/navtrace/internal/geom"
	"github.com/san-kum/navtrace/internal/scene"
)

const (
	windowWidth  = 1280
	windowHeight = 720
	hudHeight    = 60
)

var (
	ColBg      = rl.NewColor(255, 255, 255, 255)
	ColText    = rl.NewColor(60, 60, 60, 255)
	ColTextDim = rl.NewColor(150, 150, 150, 255)
	ColSelect  = rl.NewColor(0, 0, 0, 255)
)

type App struct {
	Title    string
	Scenes   []scene.Scene
	Bounds   geom.Rect
	Playback *Playback
	vp       geom.Viewport
}

func initWindow(title string) {
	rl.InitWindow(windowWidth, windowHeight, "navtrace :: "+title)
	rl.SetTargetFPS(60)
	rl.SetExitKey(0)
}

func NewApp(title string, scenes []scene.Scene, bounds geom.Rect, frameMs int) *App {
	return &App{
		Title:    title,
		Scenes:   scenes,
		Bounds:   bounds,
		Playback: NewPlayback(len(scenes), frameMs),
		vp:       geom.NewViewport(bounds, windowWidth, windowHeight-hudHeight),
	}
}

// Run opens the window and plays scenes until it is closed.
func Run(title string, scenes []scene.Scene, bounds geom.Rect, frameMs int) {
	initWindow(title)
	defer rl.CloseWindow()
	app := NewApp(title, scenes, bounds, frameMs)
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() {
		if rl.IsKeyPressed(rl.KeyQ) {
			return
		}
		a.Update(float64(rl.GetFrameTime()))
		a.Draw()
	}
}

func (a *App) Update(dt float64) {
	p := a.Playback
	switch {
	case rl.IsKeyPressed(rl.KeySpace):
		p.Toggle()
	case rl.IsKeyPressed(rl.KeyRight) || rl.IsKeyPressed(rl.KeyL):
		p.Seek(p.Step + 1)
	case rl.IsKeyPressed(rl.KeyLeft) || rl.IsKeyPressed(rl.KeyH):
		p.Seek(p.Step - 1)
	case rl.IsKeyPressed(rl.KeyHome):
		p.Seek(0)
	case rl.IsKeyPressed(rl.KeyEnd):
		p.Seek(p.Steps - 1)
	}
	p.Advance(dt)
}

func (a *App) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(ColBg)
	if len(a.Scenes) > 0 {
		a.drawScene(a.Scenes[a.Playback.Step])
	}
	a.DrawHUD()
	rl.EndDrawing()
}

func (a *App) drawScene(sc scene.Scene) {
	for _, slot := range sc.Slots() {
		d := slot.Drawable
		if slot.IsPlaceholder() || d.Paths.Empty() || d.Style.Opacity <= 0 {
			continue
		}
		if d.Style.Fill != "" {
			fill := toColor(d.Style.Fill, d.Style.Opacity)
			for _, tri := range ScreenTriangles(d.Paths, a.vp) {
				rl.DrawTriangle(tri[0], tri[1], tri[2], fill)
			}
		}
		if d.Style.Mode == scene.ModeOutline {
			line := toColor(d.Style.Line, d.Style.Opacity)
			for _, sp := range d.Paths {
				for j := 1; j < len(sp); j++ {
					rl.DrawLineEx(a.toScreen(sp[j-1]), a.toScreen(sp[j]), 1.5, line)
				}
			}
		}
	}
}

func (a *App) DrawHUD() {
	y := int32(windowHeight - hudHeight + 18)
	rl.DrawRectangle(0, windowHeight-hudHeight, windowWidth, hudHeight, rl.NewColor(245, 245, 245, 255))
	rl.DrawText(a.Title, 30, y, 20, ColSelect)

	status := "PLAYING"
	col := ColSelect
	if !a.Playback.Playing {
		status = "PAUSED"
		col = ColTextDim
	}
	rl.DrawText(status, 360, y, 20, col)
	rl.DrawText(a.Playback.Label(), 500, y, 20, ColText)
	rl.DrawText("[SPACE] PLAY  [<-/->] STEP  [HOME/END] JUMP  [Q] QUIT", 760, y+4, 14, ColTextDim)
	rl.DrawText(fmt.Sprintf("%d FPS", rl.GetFPS()), windowWidth-70, 10, 14, ColTextDim)
}

func (a *App) toScreen(p geom.Point) rl.Vector2 {
	x, y := a.vp.ToPixel(p)
	return rl.NewVector2(float32(x), float32(y))
}

// ScreenTriangles ear-clips every subpath of poly and maps the triangles to
// screen space, wound counter-clockwise on screen as raylib expects.
func ScreenTriangles(poly geom.Polygon, vp geom.Viewport) [][3]rl.Vector2 {
	var out [][3]rl.Vector2
	for _, sp := range poly {
		for _, t := range geom.Triangulate(sp) {
			var v [3]rl.Vector2
			for i, p := range t {
				x, y := vp.ToPixel(p)
				v[i] = rl.NewVector2(float32(x), float32(y))
			}
			// y grows downwards, so a counter-clockwise triangle on screen
			// has a negative cross product here
			if (v[1].X-v[0].X)*(v[2].Y-v[0].Y)-(v[1].Y-v[0].Y)*(v[2].X-v[0].X) > 0 {
				v[1], v[2] = v[2], v[1]
			}
			out = append(out, v)
		}
	}
	return out
}

func toColor(hex string, opacity float64) rl.Color {
	c, err := colorful.Hex(hex)
	if err != nil {
		return rl.NewColor(0, 0, 0, uint8(opacity*255))
	}
	r, g, b := c.RGB255()
	return rl.NewColor(r, g, b, uint8(opacity*255))
}
