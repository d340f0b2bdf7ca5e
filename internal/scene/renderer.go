package scene

import (
	"context"
	"errors"
	"fmt"

	"github.com/san-kum/navtrace/internal/geom"
	"github.com/san-kum/navtrace/internal/palette"
	"github.com/san-kum/navtrace/internal/trace"
)

var ErrStepOutOfRange = errors.New("scene: step out of range")

type MarkerKind string

const (
	MarkerPolygon MarkerKind = "polygon"
	MarkerDiamond MarkerKind = "diamond"
)

type Config struct {
	Marker             MarkerKind
	MarkerSides        int
	MarkerRadius       float64
	DestinationSize    float64
	Arrow              geom.ArrowStyle
	AlternateState     string
	OccupancyOpacity   float64
	AgentOpacity       float64
	DestinationOpacity float64
	EmptyColor         string
	ArrowColor         string
	BoundaryColor      string
	Palette            *palette.Palette
	// Workers bounds the goroutines used by BuildAllScenes.
	Workers int
}

func DefaultConfig() Config {
	return Config{
		Marker:             MarkerPolygon,
		MarkerSides:        16,
		MarkerRadius:       0.3,
		DestinationSize:    0.15,
		Arrow:              geom.DefaultArrow,
		AlternateState:     "n",
		OccupancyOpacity:   0.4,
		AgentOpacity:       0.8,
		DestinationOpacity: 0.6,
		EmptyColor:         "#d0d0d0",
		ArrowColor:         "#404040",
		BoundaryColor:      "#d0d0d0",
		Palette:            palette.Default(),
		Workers:            4,
	}
}

// Renderer turns a trace into scenes. It holds no per-trace state and is
// safe for concurrent use.
type Renderer struct {
	cfg Config
}

func New(cfg Config) *Renderer {
	def := DefaultConfig()
	if cfg.Marker == "" {
		cfg.Marker = def.Marker
	}
	if cfg.MarkerSides < 3 {
		cfg.MarkerSides = def.MarkerSides
	}
	if cfg.MarkerRadius <= 0 {
		cfg.MarkerRadius = def.MarkerRadius
	}
	if cfg.DestinationSize <= 0 {
		cfg.DestinationSize = def.DestinationSize
	}
	if cfg.Arrow == (geom.ArrowStyle{}) {
		cfg.Arrow = def.Arrow
	}
	if cfg.EmptyColor == "" {
		cfg.EmptyColor = def.EmptyColor
	}
	if cfg.ArrowColor == "" {
		cfg.ArrowColor = def.ArrowColor
	}
	if cfg.BoundaryColor == "" {
		cfg.BoundaryColor = def.BoundaryColor
	}
	if cfg.Palette == nil {
		cfg.Palette = def.Palette
	}
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	return &Renderer{cfg: cfg}
}

func (r *Renderer) Config() Config { return r.cfg }

// ComputeAgentIDs is the drawable order of agents: first-seen order over the
// trace.
func (r *Renderer) ComputeAgentIDs(tr *trace.Trace) []trace.AgentID {
	return tr.AgentIDs()
}

// BuildScene assembles the scene for step t.
func (r *Renderer) BuildScene(tr *trace.Trace, t int) (Scene, error) {
	if t < 0 || t >= tr.Steps() {
		return Scene{}, fmt.Errorf("%w: %d not in [0,%d)", ErrStepOutOfRange, t, tr.Steps())
	}
	return r.buildScene(tr, t, r.Background(tr)), nil
}

func (r *Renderer) buildScene(tr *trace.Trace, t int, bg Slot) Scene {
	s := Scene{
		Step:       t,
		Background: bg,
		Occupancy:  r.OccupancyLayer(tr, t),
		Agents:     r.AgentLayer(tr, t),
	}
	if tr.Kind() == trace.KindGrid {
		s.Destinations = r.DestinationLayer(tr, t)
	}
	return s
}

// BuildAllScenes precomputes one scene per step. Steps are split into
// contiguous ranges built concurrently; the background is shared.
func (r *Renderer) BuildAllScenes(ctx context.Context, tr *trace.Trace) ([]Scene, error) {
	n := tr.Steps()
	scenes := make([]Scene, n)
	bg := r.Background(tr)

	err := parallelFor(ctx, n, r.cfg.Workers, 8, func(start, end int) error {
		for t := start; t < end; t++ {
			if err := ctx.Err(); err != nil {
				return err
			}
			scenes[t] = r.buildScene(tr, t, bg)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return scenes, nil
}

// Bounds is the world rectangle every scene of tr fits in.
func Bounds(tr *trace.Trace) geom.Rect {
	b := geom.EmptyRect()
	switch tr.Kind() {
	case trace.KindGrid:
		nx, ny := tr.Dims()
		b = b.Extend(geom.Pt(-0.5, -0.5)).Extend(geom.Pt(float64(nx)-0.5, float64(ny)-0.5))
	case trace.KindSeat:
		for _, s := range tr.Seats() {
			b = b.Union(geom.Polygon{geom.UnitSquare(s.Center())}.Bounds())
		}
		for _, id := range tr.AgentIDs() {
			for t := 0; t < tr.Steps(); t++ {
				if rec := tr.SeatRecord(id, t); rec != nil {
					b = b.Union(geom.SplitAtNil(rec.Shape).Bounds())
				}
			}
		}
	}
	return b
}
