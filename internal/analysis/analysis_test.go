package analysis

import (
	"math"
	"testing"

	"github.com/san-kum/navtrace/internal/trace"
)

const seatDoc = `{
  "seats": [
    {"x": 0, "y": 0, "agent": [1, null, 1], "nexts": []},
    {"x": 1, "y": 0, "agent": [2, 1, null], "nexts": []}
  ],
  "agents": {
    "1": [{"shape": [[0,0],[1,0],[1,1]]}, {"shape": [[0,0],[1,0],[1,1]]}, null],
    "2": [{"shape": [[0,0],[1,0],[1,1]]}, null, null]
  }
}`

func TestSeries_Seat(t *testing.T) {
	tr, err := trace.Parse([]byte(seatDoc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	occ := OccupancySeries(tr)
	wantOcc := []float64{2, 1, 1}
	for i := range wantOcc {
		if occ[i] != wantOcc[i] {
			t.Errorf("occupancy[%d] = %v, want %v", i, occ[i], wantOcc[i])
		}
	}

	pres := PresenceSeries(tr)
	wantPres := []float64{2, 1, 0}
	for i := range wantPres {
		if pres[i] != wantPres[i] {
			t.Errorf("presence[%d] = %v, want %v", i, pres[i], wantPres[i])
		}
	}

	s := Summarize(tr)
	if s.Steps != 3 || s.Agents != 2 || s.MaxOccupancy != 2 {
		t.Errorf("unexpected summary %+v", s)
	}
}

func TestSeries_Grid(t *testing.T) {
	doc := `[
	  {"map": [[1, 2], [null, null]], "agents": {"1": {"x": 0, "y": 0}, "2": {"x": 0, "y": 1}}},
	  {"map": [[null, 2], [null, null]], "agents": {"2": {"x": 0, "y": 1}}}
	]`
	tr, err := trace.Parse([]byte(doc))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	occ := OccupancySeries(tr)
	if occ[0] != 2 || occ[1] != 1 {
		t.Errorf("unexpected occupancy %v", occ)
	}
	pres := PresenceSeries(tr)
	if pres[0] != 2 || pres[1] != 1 {
		t.Errorf("unexpected presence %v", pres)
	}
}

func TestDominantPeriod(t *testing.T) {
	tests := []struct {
		name   string
		series []float64
		want   float64
	}{
		{"flat", []float64{3, 3, 3, 3, 3, 3, 3, 3}, 0},
		{"too short", []float64{1, 2, 1}, 0},
		{"period 4", wave(64, 4), 4},
		{"period 8", wave(128, 8), 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DominantPeriod(tt.series)
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func wave(n int, period float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 5 + math.Sin(2*math.Pi*float64(i)/period)
	}
	return out
}

func TestNextPow2(t *testing.T) {
	for n, want := range map[int]int{0: 1, 1: 1, 2: 2, 3: 4, 64: 64, 65: 128} {
		if got := nextPow2(n); got != want {
			t.Errorf("nextPow2(%d) = %d, want %d", n, got, want)
		}
	}
}
