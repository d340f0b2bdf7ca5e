package export

import (
	"bytes"
	"context"
	"image"
	"image/gif"
	"strings"
	"testing"

	"github.com/san-kum/navtrace/internal/geom"
	"github.com/san-kum/navtrace/internal/scene"
	"github.com/san-kum/navtrace/internal/trace"
)

const gridDoc = `[
  {"map": [[1, null], [null, null]], "agents": {"1": {"x": 0, "y": 0, "state": "n", "dest": [[1, 1]]}}},
  {"map": [[null, null], [null, 1]], "agents": {"1": {"x": 1, "y": 1, "state": "m"}}}
]`

func setup(t *testing.T) ([]scene.Scene, geom.Rect) {
	t.Helper()
	tr, err := trace.Parse([]byte(gridDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	scenes, err := scene.New(scene.DefaultConfig()).BuildAllScenes(context.Background(), tr)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	return scenes, scene.Bounds(tr)
}

func TestSceneToSVG(t *testing.T) {
	scenes, bounds := setup(t)
	svg := SceneToSVG(scenes[0], 200, 200, bounds)

	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>\n") {
		t.Fatal("not a complete svg document")
	}
	// boundary, occupancy, agent and destination are visible at t=0
	if n := strings.Count(svg, "<path fill="); n != 4 {
		t.Errorf("expected 4 paths, got %d", n)
	}
	if !strings.Contains(svg, `fill-rule="evenodd"`) {
		t.Error("expected even-odd fill rule")
	}
	if !strings.Contains(svg, `stroke-dasharray`) || !strings.Contains(svg, `url(#hatch`) {
		t.Error("alternate state should be dashed and hatched")
	}
}

func TestSceneToSVG_SkipsPlaceholders(t *testing.T) {
	scenes, bounds := setup(t)
	svg := SceneToSVG(scenes[1], 200, 200, bounds)
	if n := strings.Count(svg, "<path fill="); n != 3 {
		t.Errorf("destination placeholder should not be drawn, got %d paths", n)
	}
}

func TestRenderScene_FillsOccupiedCell(t *testing.T) {
	scenes, bounds := setup(t)
	img := RenderScene(scenes[1], 100, 100, bounds)

	vp := geom.NewViewport(bounds, 100, 100)
	// corner of cell (1,1), away from the agent marker
	x, y := vp.ToPixel(geom.Pt(1.4, 1.4))
	if c := img.RGBAAt(int(x), int(y)); c.R == 255 && c.G == 255 && c.B == 255 {
		t.Error("occupied cell should not be background")
	}
	x, y = vp.ToPixel(geom.Pt(0, 0.2))
	if c := img.RGBAAt(int(x), int(y)); c.R != 255 || c.G != 255 || c.B != 255 {
		t.Errorf("empty cell should stay white, got %v", c)
	}
}

func TestScenesToGIF(t *testing.T) {
	scenes, bounds := setup(t)
	var buf bytes.Buffer
	if err := ScenesToGIF(&buf, scenes, bounds, GIFOptions{Width: 64, Height: 48, FrameMs: 300}); err != nil {
		t.Fatalf("encode: %v", err)
	}

	anim, err := gif.DecodeAll(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(anim.Image) != 2 {
		t.Errorf("expected 2 frames, got %d", len(anim.Image))
	}
	if anim.Delay[0] != 30 {
		t.Errorf("expected delay 30, got %d", anim.Delay[0])
	}
	if b := anim.Image[0].Bounds(); b.Dx() != 64 || b.Dy() != 48 {
		t.Errorf("unexpected frame size %v", b)
	}
}

func TestScenesToGIF_Empty(t *testing.T) {
	if err := ScenesToGIF(&bytes.Buffer{}, nil, geom.EmptyRect(), DefaultGIFOptions()); err == nil {
		t.Error("expected an error for no scenes")
	}
}

func TestScenesToGIF_WorkersKeepOrder(t *testing.T) {
	scenes, bounds := setup(t)
	opts := GIFOptions{Width: 40, Height: 40, FrameMs: 100}

	var serial, parallel bytes.Buffer
	opts.Workers = 1
	if err := ScenesToGIF(&serial, scenes, bounds, opts); err != nil {
		t.Fatal(err)
	}
	opts.Workers = 8
	if err := ScenesToGIF(&parallel, scenes, bounds, opts); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(serial.Bytes(), parallel.Bytes()) {
		t.Error("parallel rasterization should produce the same file")
	}
}

func TestImagePool_Reuse(t *testing.T) {
	p := newImagePool(8, 4)
	img := p.Get()
	if img.Rect.Dx() != 8 || img.Rect.Dy() != 4 {
		t.Fatalf("unexpected size %v", img.Rect)
	}
	p.Put(img)
	p.Put(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if got := p.Get(); got.Rect.Dx() != 8 {
		t.Error("pool should only hand out buffers of its own size")
	}
}
