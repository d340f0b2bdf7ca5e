package trace

import "github.com/san-kum/navtrace/internal/geom"

// AgentID is stable across the whole trace. Numeric ids are kept in their
// integer text form so 3 and "3" name the same agent.
type AgentID string

type Kind int

const (
	KindSeat Kind = iota
	KindGrid
)

func (k Kind) String() string {
	switch k {
	case KindSeat:
		return "seat"
	case KindGrid:
		return "grid"
	}
	return "unknown"
}

type Edge struct {
	To     int
	Weight float64
}

type Seat struct {
	X, Y float64
	// Occupants has one entry per step; nil means the seat is empty.
	Occupants []*AgentID
	Nexts     []Edge
}

func (s Seat) Center() geom.Point { return geom.Pt(s.X, s.Y) }

// SeatRecord is an agent's body at one step of a seat trace. A nil Shape
// entry separates subpaths.
type SeatRecord struct {
	Shape []*geom.Point
	State string
}

// Step is an in-flight move towards (X, Y) with progress R in [0, 1].
type Step struct {
	X, Y, R float64
}

type GridRecord struct {
	X, Y  float64
	State string
	Next  *Step
	Dest  []geom.Point
}

func (r *GridRecord) Position() geom.Point { return geom.Pt(r.X, r.Y) }

// Center is the drawn position: the current cell, moved towards Next by its
// progress when a move is in flight.
func (r *GridRecord) Center() geom.Point {
	p := r.Position()
	if r.Next == nil {
		return p
	}
	return geom.Lerp(p, geom.Pt(r.Next.X, r.Next.Y), r.Next.R)
}

type GridFrame struct {
	// Map is x-major: Map[x][y].
	Map    [][]*AgentID
	Agents map[AgentID]*GridRecord
}

// Trace is an immutable, validated simulation history.
type Trace struct {
	kind     Kind
	steps    int
	ids      []AgentID
	warnings []Warning

	seats      []Seat
	seatAgents map[AgentID][]*SeatRecord

	frames []GridFrame
	nx, ny int
}

func (t *Trace) Kind() Kind { return t.kind }

// Steps is the frame count T.
func (t *Trace) Steps() int { return t.steps }

// AgentIDs is the union of agent ids over all frames in first-seen order.
func (t *Trace) AgentIDs() []AgentID {
	out := make([]AgentID, len(t.ids))
	copy(out, t.ids)
	return out
}

func (t *Trace) NumAgents() int { return len(t.ids) }

func (t *Trace) Warnings() []Warning { return t.warnings }

func (t *Trace) Seats() []Seat { return t.seats }

// SeatRecord returns the agent's record at step, or nil when absent.
func (t *Trace) SeatRecord(id AgentID, step int) *SeatRecord {
	recs := t.seatAgents[id]
	if step < 0 || step >= len(recs) {
		return nil
	}
	return recs[step]
}

func (t *Trace) Frames() []GridFrame { return t.frames }

func (t *Trace) Frame(step int) *GridFrame {
	if step < 0 || step >= len(t.frames) {
		return nil
	}
	return &t.frames[step]
}

// GridRecord returns the agent's record at step, or nil when absent.
func (t *Trace) GridRecord(id AgentID, step int) *GridRecord {
	f := t.Frame(step)
	if f == nil {
		return nil
	}
	return f.Agents[id]
}

// Dims returns the grid size; zero for seat traces.
func (t *Trace) Dims() (nx, ny int) { return t.nx, t.ny }
