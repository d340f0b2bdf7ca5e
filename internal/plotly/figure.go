// Package plotly encodes a scene sequence as a Plotly animated figure.
//
// The figure's data holds the first scene in full. Each frame replaces every
// trace except the first (the static background), which frames leave as an
// empty object so the plot keeps it untouched. Slot positions are stable
// across scenes, so the same data index always addresses the same drawable.
package plotly

type Figure struct {
	Data   []*Trace `json:"data"`
	Layout Layout   `json:"layout"`
	Frames []Frame  `json:"frames"`
}

// Unchanged is the frame entry for a trace the frame does not touch.
type Unchanged struct{}

type Frame struct {
	Name string `json:"name"`
	// Data is Unchanged{} for the background followed by one *Trace per
	// dynamic slot.
	Data []any `json:"data"`
}

type Trace struct {
	Type        string     `json:"type"`
	Name        string     `json:"name,omitempty"`
	X           []*float64 `json:"x"`
	Y           []*float64 `json:"y"`
	Mode        string     `json:"mode"`
	Fill        string     `json:"fill,omitempty"`
	FillColor   string     `json:"fillcolor,omitempty"`
	FillPattern *Pattern   `json:"fillpattern,omitempty"`
	Line        *Line      `json:"line,omitempty"`
	Opacity     float64    `json:"opacity"`
	ShowLegend  bool       `json:"showlegend"`
	HoverOn     string     `json:"hoveron,omitempty"`
}

type Pattern struct {
	Shape string `json:"shape"`
}

type Line struct {
	Color string  `json:"color,omitempty"`
	Dash  string  `json:"dash,omitempty"`
	Width float64 `json:"width,omitempty"`
}

type Layout struct {
	XAxis       Axis         `json:"xaxis"`
	YAxis       Axis         `json:"yaxis"`
	ShowLegend  bool         `json:"showlegend"`
	Margin      Margin       `json:"margin"`
	UpdateMenus []UpdateMenu `json:"updatemenus"`
	Sliders     []Slider     `json:"sliders"`
}

type Axis struct {
	ShowGrid       bool      `json:"showgrid"`
	ZeroLine       bool      `json:"zeroline"`
	ShowLine       bool      `json:"showline"`
	ShowTickLabels bool      `json:"showticklabels"`
	ScaleAnchor    string    `json:"scaleanchor,omitempty"`
	Range          []float64 `json:"range,omitempty"`
}

type Margin struct {
	T int `json:"t"`
	L int `json:"l,omitempty"`
	R int `json:"r,omitempty"`
	B int `json:"b,omitempty"`
}

type Pad struct {
	T int `json:"t,omitempty"`
	R int `json:"r,omitempty"`
	L int `json:"l,omitempty"`
}

type UpdateMenu struct {
	X          float64  `json:"x"`
	Y          float64  `json:"y"`
	XAnchor    string   `json:"xanchor"`
	YAnchor    string   `json:"yanchor"`
	ShowActive bool     `json:"showactive"`
	Direction  string   `json:"direction"`
	Type       string   `json:"type"`
	Pad        Pad      `json:"pad"`
	Buttons    []Button `json:"buttons"`
}

// Button and SliderStep args are [frames, AnimateOptions]; frames is nil
// (play all), [nil] (stop) or a one-element list of frame names.
type Button struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}

type AnimateOptions struct {
	Mode        string      `json:"mode"`
	FromCurrent bool        `json:"fromcurrent,omitempty"`
	Transition  Transition  `json:"transition"`
	Frame       FrameTiming `json:"frame"`
}

type Transition struct {
	Duration int `json:"duration"`
}

type FrameTiming struct {
	Duration int  `json:"duration"`
	Redraw   bool `json:"redraw"`
}

type Slider struct {
	Active       int          `json:"active"`
	Pad          Pad          `json:"pad"`
	CurrentValue CurrentValue `json:"currentvalue"`
	Steps        []SliderStep `json:"steps"`
}

type CurrentValue struct {
	Visible bool   `json:"visible"`
	Prefix  string `json:"prefix"`
	XAnchor string `json:"xanchor"`
	Font    Font   `json:"font"`
}

type Font struct {
	Size int `json:"size"`
}

type SliderStep struct {
	Label  string `json:"label"`
	Method string `json:"method"`
	Args   []any  `json:"args"`
}
