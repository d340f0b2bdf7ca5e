package plotly

import (
	"strconv"

	"github.com/san-kum/navtrace/internal/geom"
	"github.com/san-kum/navtrace/internal/scene"
)

type Options struct {
	// SliderFrameMs is the frame duration used when scrubbing the slider.
	SliderFrameMs int
	// PlayFrameMs is the frame duration used by the Play button.
	PlayFrameMs int
}

func DefaultOptions() Options {
	return Options{SliderFrameMs: 300, PlayFrameMs: 500}
}

// Encode builds the animated figure for scenes. Every scene must come from
// the same trace so that slot counts agree.
func Encode(scenes []scene.Scene, opts Options) *Figure {
	def := DefaultOptions()
	if opts.SliderFrameMs <= 0 {
		opts.SliderFrameMs = def.SliderFrameMs
	}
	if opts.PlayFrameMs <= 0 {
		opts.PlayFrameMs = def.PlayFrameMs
	}

	fig := &Figure{
		Data:   []*Trace{},
		Layout: newLayout(len(scenes), opts),
		Frames: make([]Frame, 0, len(scenes)),
	}
	if len(scenes) == 0 {
		return fig
	}

	for _, s := range scenes[0].Slots() {
		fig.Data = append(fig.Data, EncodeSlot(s))
	}
	for i, sc := range scenes {
		dyn := sc.Dynamic()
		data := make([]any, 0, len(dyn)+1)
		data = append(data, Unchanged{})
		for _, s := range dyn {
			data = append(data, EncodeSlot(s))
		}
		fig.Frames = append(fig.Frames, Frame{Name: strconv.Itoa(i), Data: data})
	}
	return fig
}

// EncodeSlot turns one slot into a scatter trace. Subpaths are joined with
// null breaks; a placeholder keeps its style over a single null point.
func EncodeSlot(s scene.Slot) *Trace {
	d := s.Drawable
	tr := &Trace{
		Type:    "scatter",
		Name:    traceName(d),
		Mode:    string(d.Style.Mode),
		Opacity: d.Style.Opacity,
	}
	if d.Style.Fill != "" {
		tr.Fill = "toself"
		tr.FillColor = d.Style.Fill
	}
	if d.Layer == scene.LayerAgents {
		tr.FillPattern = &Pattern{Shape: d.Style.Pattern}
	}
	if d.Style.Mode == scene.ModeOutline {
		tr.Line = &Line{Color: d.Style.Line, Dash: string(d.Style.Dash)}
	}
	if d.Layer == scene.LayerBackground {
		tr.HoverOn = "fills"
	}

	if s.IsPlaceholder() || d.Paths.Empty() {
		tr.X, tr.Y = []*float64{nil}, []*float64{nil}
		return tr
	}
	tr.X, tr.Y = flatten(d.Paths)
	return tr
}

func traceName(d scene.Drawable) string {
	if d.Agent != nil {
		return "agent " + string(*d.Agent)
	}
	return d.Name
}

func flatten(p geom.Polygon) (xs, ys []*float64) {
	n := p.NumPoints() + len(p)
	xs = make([]*float64, 0, n)
	ys = make([]*float64, 0, n)
	for i, sp := range p {
		if i > 0 {
			xs = append(xs, nil)
			ys = append(ys, nil)
		}
		for _, pt := range sp {
			x, y := pt.X, pt.Y
			xs = append(xs, &x)
			ys = append(ys, &y)
		}
	}
	return xs, ys
}

var noGrid = Axis{ShowGrid: false, ZeroLine: false, ShowLine: false, ShowTickLabels: false}

func newLayout(frames int, opts Options) Layout {
	yaxis := noGrid
	yaxis.ScaleAnchor = "x"

	steps := make([]SliderStep, frames)
	for i := range steps {
		name := strconv.Itoa(i)
		steps[i] = SliderStep{
			Label:  name,
			Method: "animate",
			Args: []any{[]string{name}, AnimateOptions{
				Mode:  "immediate",
				Frame: FrameTiming{Duration: opts.SliderFrameMs},
			}},
		}
	}

	return Layout{
		XAxis:  noGrid,
		YAxis:  yaxis,
		Margin: Margin{T: 0},
		UpdateMenus: []UpdateMenu{{
			X:         0,
			Y:         0,
			XAnchor:   "left",
			YAnchor:   "top",
			Direction: "left",
			Type:      "buttons",
			Pad:       Pad{T: 87, R: 10},
			Buttons: []Button{
				{
					Label:  "Play",
					Method: "animate",
					Args: []any{nil, AnimateOptions{
						Mode:        "immediate",
						FromCurrent: true,
						Frame:       FrameTiming{Duration: opts.PlayFrameMs},
					}},
				},
				{
					Label:  "Pause",
					Method: "animate",
					Args: []any{[]any{nil}, AnimateOptions{
						Mode:  "immediate",
						Frame: FrameTiming{Duration: 0},
					}},
				},
			},
		}},
		Sliders: []Slider{{
			Pad: Pad{L: 130, T: 55},
			CurrentValue: CurrentValue{
				Visible: true,
				Prefix:  "t = ",
				XAnchor: "right",
				Font:    Font{Size: 15},
			},
			Steps: steps,
		}},
	}
}
