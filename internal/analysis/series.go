package analysis

import (
	"math"

	"github.com/san-kum/navtrace/internal/trace"
)

// OccupancySeries counts occupied seats (seat traces) or cells (grid traces)
// at every step.
func OccupancySeries(tr *trace.Trace) []float64 {
	out := make([]float64, tr.Steps())
	switch tr.Kind() {
	case trace.KindSeat:
		for _, s := range tr.Seats() {
			for t, occ := range s.Occupants {
				if occ != nil && t < len(out) {
					out[t]++
				}
			}
		}
	case trace.KindGrid:
		for t, f := range tr.Frames() {
			for _, col := range f.Map {
				for _, occ := range col {
					if occ != nil {
						out[t]++
					}
				}
			}
		}
	}
	return out
}

// PresenceSeries counts agents with a record at every step.
func PresenceSeries(tr *trace.Trace) []float64 {
	out := make([]float64, tr.Steps())
	ids := tr.AgentIDs()
	for t := range out {
		for _, id := range ids {
			if present(tr, id, t) {
				out[t]++
			}
		}
	}
	return out
}

func present(tr *trace.Trace, id trace.AgentID, t int) bool {
	if tr.Kind() == trace.KindSeat {
		return tr.SeatRecord(id, t) != nil
	}
	return tr.GridRecord(id, t) != nil
}

type Summary struct {
	Steps         int
	Agents        int
	Warnings      int
	MeanOccupancy float64
	MaxOccupancy  float64
	MeanPresence  float64
	Period        float64
}

func Summarize(tr *trace.Trace) Summary {
	occ := OccupancySeries(tr)
	pres := PresenceSeries(tr)
	s := Summary{
		Steps:         tr.Steps(),
		Agents:        tr.NumAgents(),
		Warnings:      len(tr.Warnings()),
		MeanOccupancy: mean(occ),
		MeanPresence:  mean(pres),
		Period:        DominantPeriod(occ),
	}
	for _, v := range occ {
		s.MaxOccupancy = math.Max(s.MaxOccupancy, v)
	}
	return s
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, v := range xs {
		sum += v
	}
	return sum / float64(len(xs))
}
