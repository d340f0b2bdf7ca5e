package scene

import (
	"github.com/san-kum/navtrace/internal/geom"
	"github.com/san-kum/navtrace/internal/trace"
)

type Layer int

const (
	LayerBackground Layer = iota
	LayerOccupancy
	LayerAgents
	LayerDestinations
)

func (l Layer) String() string {
	switch l {
	case LayerBackground:
		return "background"
	case LayerOccupancy:
		return "occupancy"
	case LayerAgents:
		return "agents"
	case LayerDestinations:
		return "destinations"
	}
	return "unknown"
}

// Mode says which parts of a drawable are painted.
type Mode string

const (
	ModeFill    Mode = "none"  // filled, no outline
	ModeOutline Mode = "lines" // outline, filled when Style.Fill is set
)

type Dash string

const (
	DashSolid Dash = "solid"
	DashDot   Dash = "dot"
)

type Style struct {
	Fill    string // empty for no fill
	Line    string
	Dash    Dash
	Pattern string // fill pattern shape, empty for plain
	Mode    Mode
	Opacity float64
}

type Drawable struct {
	Name  string
	Layer Layer
	Agent *trace.AgentID
	Paths geom.Polygon
	Style Style
}

type SlotKind int

const (
	SlotPlaceholder SlotKind = iota
	SlotVisible
)

// Slot is one fixed position in a scene: either a visible drawable or a
// placeholder with no geometry. Every scene of a trace has the same slots in
// the same order, whatever the data at that step.
type Slot struct {
	Kind     SlotKind
	Drawable Drawable
}

func Visible(d Drawable) Slot {
	return Slot{Kind: SlotVisible, Drawable: d}
}

// Placeholder keeps name and style but carries no geometry.
func Placeholder(d Drawable) Slot {
	d.Paths = nil
	return Slot{Kind: SlotPlaceholder, Drawable: d}
}

func (s Slot) IsPlaceholder() bool { return s.Kind == SlotPlaceholder }

// Scene is every drawable for one step, back to front.
type Scene struct {
	Step         int
	Background   Slot
	Occupancy    []Slot
	Agents       []Slot
	Destinations []Slot
}

// Slots flattens the scene in draw order: background, occupancy, agents,
// destinations.
func (s Scene) Slots() []Slot {
	out := make([]Slot, 0, 1+len(s.Occupancy)+len(s.Agents)+len(s.Destinations))
	out = append(out, s.Background)
	out = append(out, s.Occupancy...)
	out = append(out, s.Agents...)
	out = append(out, s.Destinations...)
	return out
}

// Dynamic is Slots without the background.
func (s Scene) Dynamic() []Slot {
	return s.Slots()[1:]
}

func (s Scene) NumSlots() int {
	return 1 + len(s.Occupancy) + len(s.Agents) + len(s.Destinations)
}
