package scene

import (
	"github.com/san-kum/navtrace/internal/geom"
	"github.com/san-kum/navtrace/internal/palette"
	"github.com/san-kum/navtrace/internal/trace"
)

const (
	nameEmpty    = "empty"
	namePath     = "path"
	nameBoundary = "boundary"
)

func agentPtr(id trace.AgentID) *trace.AgentID { return &id }

func (r *Renderer) occupancyStyle(id *trace.AgentID) Style {
	fill := r.cfg.EmptyColor
	if id != nil {
		fill = r.cfg.Palette.Color(string(*id), palette.ShadeOccupancy)
	}
	return Style{Fill: fill, Line: fill, Dash: DashSolid, Mode: ModeFill, Opacity: r.cfg.OccupancyOpacity}
}

func (r *Renderer) agentStyle(id trace.AgentID, state string) Style {
	s := Style{
		Fill:    r.cfg.Palette.Color(string(id), palette.ShadeFill),
		Line:    r.cfg.Palette.Color(string(id), palette.ShadeOutline),
		Dash:    DashSolid,
		Mode:    ModeOutline,
		Opacity: r.cfg.AgentOpacity,
	}
	if r.cfg.AlternateState != "" && state == r.cfg.AlternateState {
		s.Pattern = "x"
		s.Dash = DashDot
	}
	return s
}

func (r *Renderer) destinationStyle(id trace.AgentID) Style {
	c := r.cfg.Palette.Color(string(id), palette.ShadeDestination)
	return Style{Fill: c, Line: c, Dash: DashSolid, Mode: ModeFill, Opacity: r.cfg.DestinationOpacity}
}

// OccupancyLayer colors every seat or cell by its occupant at step t. Seat
// traces get a leading "empty" slot for unoccupied seats.
func (r *Renderer) OccupancyLayer(tr *trace.Trace, t int) []Slot {
	ids := tr.AgentIDs()
	squares := make(map[trace.AgentID]geom.Polygon, len(ids))
	var empty geom.Polygon

	add := func(occ *trace.AgentID, c geom.Point) {
		if occ == nil {
			empty = append(empty, geom.UnitSquare(c))
			return
		}
		squares[*occ] = append(squares[*occ], geom.UnitSquare(c))
	}

	switch tr.Kind() {
	case trace.KindSeat:
		for _, s := range tr.Seats() {
			var occ *trace.AgentID
			if t >= 0 && t < len(s.Occupants) {
				occ = s.Occupants[t]
			}
			add(occ, s.Center())
		}
	case trace.KindGrid:
		if f := tr.Frame(t); f != nil {
			for x, col := range f.Map {
				for y, occ := range col {
					if occ != nil {
						add(occ, geom.Pt(float64(x), float64(y)))
					}
				}
			}
		}
	}

	var out []Slot
	if tr.Kind() == trace.KindSeat {
		out = make([]Slot, 0, len(ids)+1)
		d := Drawable{Name: nameEmpty, Layer: LayerOccupancy, Paths: empty, Style: r.occupancyStyle(nil)}
		if empty.Empty() {
			out = append(out, Placeholder(d))
		} else {
			out = append(out, Visible(d))
		}
	} else {
		out = make([]Slot, 0, len(ids))
	}

	for _, id := range ids {
		d := Drawable{
			Name:  string(id),
			Layer: LayerOccupancy,
			Agent: agentPtr(id),
			Paths: squares[id],
			Style: r.occupancyStyle(agentPtr(id)),
		}
		if d.Paths.Empty() {
			out = append(out, Placeholder(d))
			continue
		}
		out = append(out, Visible(d))
	}
	return out
}

// AgentLayer draws every agent's body at step t. Agents without a usable
// record keep their slot as a transparent placeholder.
func (r *Renderer) AgentLayer(tr *trace.Trace, t int) []Slot {
	ids := tr.AgentIDs()
	out := make([]Slot, 0, len(ids))
	for _, id := range ids {
		paths, state := r.agentBody(tr, id, t)
		d := Drawable{
			Name:  string(id),
			Layer: LayerAgents,
			Agent: agentPtr(id),
			Paths: paths,
			Style: r.agentStyle(id, state),
		}
		if paths.Empty() {
			d.Style.Opacity = 0
			out = append(out, Placeholder(d))
			continue
		}
		out = append(out, Visible(d))
	}
	return out
}

func (r *Renderer) agentBody(tr *trace.Trace, id trace.AgentID, t int) (geom.Polygon, string) {
	switch tr.Kind() {
	case trace.KindSeat:
		rec := tr.SeatRecord(id, t)
		if rec == nil {
			return nil, ""
		}
		return geom.SplitAtNil(rec.Shape), rec.State
	case trace.KindGrid:
		rec := tr.GridRecord(id, t)
		if rec == nil {
			return nil, ""
		}
		c := rec.Center()
		if !c.IsFinite() {
			return nil, rec.State
		}
		return geom.Polygon{r.marker(c)}, rec.State
	}
	return nil, ""
}

func (r *Renderer) marker(c geom.Point) geom.Subpath {
	if r.cfg.Marker == MarkerDiamond {
		return geom.Diamond(c, r.cfg.MarkerRadius)
	}
	return geom.RegularPolygon(c, r.cfg.MarkerRadius, r.cfg.MarkerSides)
}

// DestinationLayer marks each grid agent's destinations with small diamonds.
// Seat traces have no destinations and get no slots.
func (r *Renderer) DestinationLayer(tr *trace.Trace, t int) []Slot {
	if tr.Kind() != trace.KindGrid {
		return nil
	}
	ids := tr.AgentIDs()
	out := make([]Slot, 0, len(ids))
	for _, id := range ids {
		var paths geom.Polygon
		if rec := tr.GridRecord(id, t); rec != nil {
			for _, p := range rec.Dest {
				if p.IsFinite() {
					paths = append(paths, geom.Diamond(p, r.cfg.DestinationSize))
				}
			}
		}
		d := Drawable{
			Name:  string(id),
			Layer: LayerDestinations,
			Agent: agentPtr(id),
			Paths: paths,
			Style: r.destinationStyle(id),
		}
		if paths.Empty() {
			out = append(out, Placeholder(d))
			continue
		}
		out = append(out, Visible(d))
	}
	return out
}

// PathArrowLayer draws one arrow per seat adjacency. Adjacencies between
// coincident seats are skipped.
func (r *Renderer) PathArrowLayer(tr *trace.Trace) Slot {
	seats := tr.Seats()
	var paths geom.Polygon
	for _, s := range seats {
		for _, e := range s.Nexts {
			if e.To < 0 || e.To >= len(seats) {
				continue
			}
			if a, ok := geom.Arrow(s.Center(), seats[e.To].Center(), r.cfg.Arrow); ok {
				paths = append(paths, a)
			}
		}
	}
	d := Drawable{
		Name:  namePath,
		Layer: LayerBackground,
		Paths: paths,
		Style: Style{Fill: r.cfg.ArrowColor, Line: r.cfg.ArrowColor, Dash: DashSolid, Mode: ModeFill, Opacity: 1},
	}
	if paths.Empty() {
		return Placeholder(d)
	}
	return Visible(d)
}

// Background is the static layer shared by every scene: seat adjacency
// arrows or the grid boundary.
func (r *Renderer) Background(tr *trace.Trace) Slot {
	if tr.Kind() == trace.KindSeat {
		return r.PathArrowLayer(tr)
	}
	nx, ny := tr.Dims()
	rect := geom.Rect{Min: geom.Pt(-0.5, -0.5), Max: geom.Pt(float64(nx)-0.5, float64(ny)-0.5)}
	return Visible(Drawable{
		Name:  nameBoundary,
		Layer: LayerBackground,
		Paths: geom.Polygon{geom.Rectangle(rect)},
		Style: Style{Line: r.cfg.BoundaryColor, Dash: DashSolid, Mode: ModeOutline, Opacity: 1},
	})
}
