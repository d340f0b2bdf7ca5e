package gui

import (
	"testing"

	"github.com/san-kum/navtrace/internal/geom"
)

func TestPlayback_Advance(t *testing.T) {
	p := NewPlayback(3, 500)
	p.Advance(10)
	if p.Step != 0 {
		t.Fatal("paused playback should not move")
	}

	p.Toggle()
	p.Advance(0.4)
	if p.Step != 0 {
		t.Errorf("expected step 0 before a full frame, got %d", p.Step)
	}
	p.Advance(0.2)
	if p.Step != 1 {
		t.Errorf("expected step 1, got %d", p.Step)
	}
	p.Advance(5)
	if p.Step != 2 || p.Playing {
		t.Errorf("expected to stop on the last step, got %d playing %v", p.Step, p.Playing)
	}

	p.Toggle()
	if p.Step != 0 || !p.Playing {
		t.Error("play from the last step should rewind")
	}
}

func TestPlayback_Seek(t *testing.T) {
	tests := []struct {
		to, want int
	}{
		{-3, 0},
		{1, 1},
		{9, 3},
	}
	for _, tt := range tests {
		p := NewPlayback(4, 0)
		p.Toggle()
		p.Seek(tt.to)
		if p.Step != tt.want || p.Playing {
			t.Errorf("seek %d: got step %d playing %v", tt.to, p.Step, p.Playing)
		}
	}
	if got := NewPlayback(4, 0).Label(); got != "t = 0 / 4" {
		t.Errorf("unexpected label %q", got)
	}
}

func TestScreenTriangles_Winding(t *testing.T) {
	world := geom.Rect{Min: geom.Pt(0, 0), Max: geom.Pt(1, 1)}
	vp := geom.NewViewport(world, 100, 100)
	tris := ScreenTriangles(geom.Polygon{geom.UnitSquare(geom.Pt(0.5, 0.5))}, vp)
	if len(tris) != 2 {
		t.Fatalf("expected 2 triangles, got %d", len(tris))
	}
	for _, v := range tris {
		cross := (v[1].X-v[0].X)*(v[2].Y-v[0].Y) - (v[1].Y-v[0].Y)*(v[2].X-v[0].X)
		if cross > 0 {
			t.Errorf("triangle %v is not wound counter-clockwise on screen", v)
		}
	}
}
