package trace

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/san-kum/navtrace/internal/geom"
)

// Load reads and parses a trace file.
func Load(path string) (*Trace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

func ParseReader(r io.Reader) (*Trace, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Parse decodes a seat trace (object with seats and agents) or a grid trace
// (array of frames with map and agents). Structural problems return a
// *ParseError; unusable per-agent records become warnings.
func Parse(data []byte) (*Trace, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, parseErr(ErrUnknownFormat, "", "empty document")
	}
	var probe json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return nil, parseErr(ErrUnknownFormat, "", "%v", err)
	}

	switch data[0] {
	case '{':
		return parseSeatTrace(data)
	case '[':
		return parseGridTrace(data)
	}
	return nil, parseErr(ErrUnknownFormat, "$", "top-level value must be an object or an array")
}

type rawSeat struct {
	X     *float64           `json:"x"`
	Y     *float64           `json:"y"`
	Agent *[]json.RawMessage `json:"agent"`
	Nexts []json.RawMessage  `json:"nexts"`
}

func parseSeatTrace(data []byte) (*Trace, error) {
	var doc struct {
		Seats  *[]rawSeat      `json:"seats"`
		Agents json.RawMessage `json:"agents"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, parseErr(ErrUnknownFormat, "$", "%v", err)
	}
	if doc.Seats == nil {
		return nil, parseErr(ErrMissingKey, "$", "seats")
	}
	if isNull(doc.Agents) {
		return nil, parseErr(ErrMissingKey, "$", "agents")
	}
	if len(*doc.Seats) == 0 {
		return nil, parseErr(ErrEmptyTrace, "$.seats", "no seats")
	}

	members, err := objectMembers(doc.Agents)
	if err != nil {
		return nil, parseErr(ErrUnknownFormat, "$.agents", "must be an object")
	}

	t := &Trace{
		kind:       KindSeat,
		seats:      make([]Seat, 0, len(*doc.Seats)),
		seatAgents: make(map[AgentID][]*SeatRecord, len(members)),
	}

	steps := -1
	for i, rs := range *doc.Seats {
		path := fmt.Sprintf("$.seats[%d]", i)
		if rs.X == nil || rs.Y == nil {
			return nil, parseErr(ErrMissingKey, path, "x and y")
		}
		if rs.Agent == nil {
			return nil, parseErr(ErrMissingKey, path, "agent")
		}
		if steps < 0 {
			steps = len(*rs.Agent)
		} else if len(*rs.Agent) != steps {
			return nil, parseErr(ErrLengthMismatch, path+".agent", "%d entries, expected %d", len(*rs.Agent), steps)
		}

		seat := Seat{X: *rs.X, Y: *rs.Y, Occupants: make([]*AgentID, len(*rs.Agent))}
		for j, raw := range *rs.Agent {
			id, err := parseID(raw)
			if err != nil {
				return nil, parseErr(ErrUnknownFormat, fmt.Sprintf("%s.agent[%d]", path, j), "%v", err)
			}
			seat.Occupants[j] = id
		}
		for j, raw := range rs.Nexts {
			e, err := parseEdge(raw, len(*doc.Seats))
			if err != nil {
				return nil, parseErr(ErrBadAdjacency, fmt.Sprintf("%s.nexts[%d]", path, j), "%v", err)
			}
			seat.Nexts = append(seat.Nexts, e)
		}
		t.seats = append(t.seats, seat)
	}
	if steps == 0 {
		return nil, parseErr(ErrEmptyTrace, "$.seats[0].agent", "zero steps")
	}
	t.steps = steps

	known := make(map[AgentID]bool, len(members))
	for _, m := range members {
		id := idFromKey(m.key)
		if !known[id] {
			known[id] = true
			t.ids = append(t.ids, id)
		}
		recs, err := t.parseSeatRecords(id, m.value, "$.agents."+m.key)
		if err != nil {
			return nil, err
		}
		t.seatAgents[id] = recs
	}

	for i, s := range t.seats {
		for j, occ := range s.Occupants {
			if occ != nil && !known[*occ] {
				return nil, parseErr(ErrUnknownOccupant, fmt.Sprintf("$.seats[%d].agent[%d]", i, j), "agent %s", *occ)
			}
		}
	}
	return t, nil
}

// parseSeatRecords accepts either an array with one entry per step or an
// object keyed by step index.
func (t *Trace) parseSeatRecords(id AgentID, raw json.RawMessage, path string) ([]*SeatRecord, error) {
	recs := make([]*SeatRecord, t.steps)
	raw = bytes.TrimSpace(raw)
	if isNull(raw) {
		return recs, nil
	}

	switch raw[0] {
	case '[':
		var arr []json.RawMessage
		if err := json.Unmarshal(raw, &arr); err != nil {
			return nil, parseErr(ErrUnknownFormat, path, "%v", err)
		}
		if len(arr) != t.steps {
			return nil, parseErr(ErrLengthMismatch, path, "%d records, expected %d", len(arr), t.steps)
		}
		for step, r := range arr {
			recs[step] = t.seatRecord(id, step, r)
		}
	case '{':
		members, err := objectMembers(raw)
		if err != nil {
			return nil, parseErr(ErrUnknownFormat, path, "%v", err)
		}
		for _, m := range members {
			step, err := strconv.Atoi(m.key)
			if err != nil {
				return nil, parseErr(ErrUnknownFormat, path, "step key %q is not an integer", m.key)
			}
			if step < 0 || step >= t.steps {
				return nil, parseErr(ErrLengthMismatch, path, "step %d outside [0,%d)", step, t.steps)
			}
			recs[step] = t.seatRecord(id, step, m.value)
		}
	default:
		return nil, parseErr(ErrUnknownFormat, path, "records must be an array or an object")
	}
	return recs, nil
}

func (t *Trace) seatRecord(id AgentID, step int, raw json.RawMessage) *SeatRecord {
	if isNull(raw) {
		return nil
	}
	var rr struct {
		Shape []json.RawMessage `json:"shape"`
		State json.RawMessage   `json:"state"`
	}
	if err := json.Unmarshal(raw, &rr); err != nil {
		t.warn(step, id, "malformed record")
		return nil
	}

	rec := &SeatRecord{State: t.state(id, step, rr.State)}
	for _, pr := range rr.Shape {
		if isNull(pr) {
			rec.Shape = append(rec.Shape, nil)
			continue
		}
		p, ok := parsePoint(pr)
		if !ok {
			t.warn(step, id, "malformed shape point")
			return nil
		}
		rec.Shape = append(rec.Shape, &p)
	}
	if geom.SplitAtNil(rec.Shape).Empty() {
		t.warn(step, id, "empty shape")
		return nil
	}
	return rec
}

func parseGridTrace(data []byte) (*Trace, error) {
	var frames []json.RawMessage
	if err := json.Unmarshal(data, &frames); err != nil {
		return nil, parseErr(ErrUnknownFormat, "$", "%v", err)
	}
	if len(frames) == 0 {
		return nil, parseErr(ErrEmptyTrace, "$", "no frames")
	}

	t := &Trace{
		kind:   KindGrid,
		steps:  len(frames),
		frames: make([]GridFrame, len(frames)),
	}
	known := make(map[AgentID]bool)

	for i, raw := range frames {
		path := fmt.Sprintf("$[%d]", i)
		raw = bytes.TrimSpace(raw)
		if len(raw) == 0 || raw[0] != '{' {
			return nil, parseErr(ErrUnknownFormat, path, "frame must be an object")
		}
		var rf struct {
			Map    *[][]json.RawMessage `json:"map"`
			Agents json.RawMessage      `json:"agents"`
		}
		if err := json.Unmarshal(raw, &rf); err != nil {
			return nil, parseErr(ErrUnknownFormat, path, "%v", err)
		}
		if rf.Map == nil {
			return nil, parseErr(ErrMissingKey, path, "map")
		}
		if rf.Agents == nil {
			return nil, parseErr(ErrMissingKey, path, "agents")
		}

		grid := *rf.Map
		if i == 0 {
			if len(grid) == 0 || len(grid[0]) == 0 {
				return nil, parseErr(ErrEmptyGrid, path+".map", "no cells")
			}
			t.nx, t.ny = len(grid), len(grid[0])
		}
		if len(grid) != t.nx {
			return nil, parseErr(ErrJaggedGrid, path+".map", "%d columns, expected %d", len(grid), t.nx)
		}

		frame := GridFrame{
			Map:    make([][]*AgentID, t.nx),
			Agents: make(map[AgentID]*GridRecord),
		}
		for x, col := range grid {
			if len(col) != t.ny {
				return nil, parseErr(ErrJaggedGrid, fmt.Sprintf("%s.map[%d]", path, x), "%d cells, expected %d", len(col), t.ny)
			}
			frame.Map[x] = make([]*AgentID, t.ny)
			for y, c := range col {
				id, err := parseID(c)
				if err != nil {
					return nil, parseErr(ErrUnknownFormat, fmt.Sprintf("%s.map[%d][%d]", path, x, y), "%v", err)
				}
				frame.Map[x][y] = id
			}
		}

		if !isNull(rf.Agents) {
			members, err := objectMembers(rf.Agents)
			if err != nil {
				return nil, parseErr(ErrUnknownFormat, path+".agents", "must be an object")
			}
			for _, m := range members {
				id := idFromKey(m.key)
				if !known[id] {
					known[id] = true
					t.ids = append(t.ids, id)
				}
				if rec := t.gridRecord(id, i, m.value); rec != nil {
					frame.Agents[id] = rec
				}
			}
		}
		t.frames[i] = frame
	}

	for i, f := range t.frames {
		for x, col := range f.Map {
			for y, c := range col {
				if c != nil && !known[*c] {
					return nil, parseErr(ErrUnknownOccupant, fmt.Sprintf("$[%d].map[%d][%d]", i, x, y), "agent %s", *c)
				}
			}
		}
	}
	return t, nil
}

func (t *Trace) gridRecord(id AgentID, step int, raw json.RawMessage) *GridRecord {
	if isNull(raw) {
		return nil
	}
	var rr struct {
		X     json.RawMessage `json:"x"`
		Y     json.RawMessage `json:"y"`
		State json.RawMessage `json:"state"`
		Next  json.RawMessage `json:"next"`
		Dest  json.RawMessage `json:"dest"`
	}
	if err := json.Unmarshal(raw, &rr); err != nil {
		t.warn(step, id, "malformed record")
		return nil
	}
	x, okx := parseNumber(rr.X)
	y, oky := parseNumber(rr.Y)
	if !okx || !oky {
		t.warn(step, id, "missing position")
		return nil
	}

	rec := &GridRecord{X: x, Y: y, State: t.state(id, step, rr.State)}

	if !isNull(rr.Next) {
		var n []float64
		if err := json.Unmarshal(rr.Next, &n); err != nil || len(n) != 3 || !allFinite(n) {
			t.warn(step, id, "malformed next")
		} else {
			rec.Next = &Step{X: n[0], Y: n[1], R: n[2]}
		}
	}

	if !isNull(rr.Dest) {
		var pts []json.RawMessage
		if err := json.Unmarshal(rr.Dest, &pts); err != nil {
			t.warn(step, id, "malformed dest")
		}
		for _, pr := range pts {
			p, ok := parsePoint(pr)
			if !ok {
				t.warn(step, id, "malformed destination point")
				continue
			}
			rec.Dest = append(rec.Dest, p)
		}
	}
	return rec
}

func (t *Trace) state(id AgentID, step int, raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		t.warn(step, id, "state is not a string")
		return ""
	}
	return s
}

func (t *Trace) warn(step int, id AgentID, reason string) {
	t.warnings = append(t.warnings, Warning{Step: step, Agent: id, Reason: reason})
}

type member struct {
	key   string
	value json.RawMessage
}

var errNotObject = errors.New("not an object")

// objectMembers decodes a JSON object keeping its keys in document order.
func objectMembers(raw json.RawMessage) ([]member, error) {
	dec := json.NewDecoder(bytes.NewReader(raw))
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errNotObject
	}

	var out []member
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, errNotObject
		}
		var v json.RawMessage
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		out = append(out, member{key: key, value: v})
	}
	return out, nil
}

func isNull(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) == 0 || bytes.Equal(raw, []byte("null"))
}

func parseID(raw json.RawMessage) (*AgentID, error) {
	if isNull(raw) {
		return nil, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		id := AgentID(s)
		return &id, nil
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("agent id must be a number, a string or null")
	}
	id := AgentID(normalizeNumber(n.String()))
	return &id, nil
}

func idFromKey(key string) AgentID {
	return AgentID(normalizeNumber(key))
}

func normalizeNumber(s string) string {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) >= 1<<53 {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}

func parseEdge(raw json.RawMessage, numSeats int) (Edge, error) {
	var e Edge
	var idx float64
	if err := json.Unmarshal(raw, &idx); err != nil {
		var pair []float64
		if err := json.Unmarshal(raw, &pair); err != nil || len(pair) == 0 {
			return e, fmt.Errorf("expected an index or [index, weight]")
		}
		idx = pair[0]
		if len(pair) > 1 {
			e.Weight = pair[1]
		}
	}
	if idx != math.Trunc(idx) || idx < 0 || idx >= float64(numSeats) {
		return e, fmt.Errorf("seat index %v outside [0,%d)", idx, numSeats)
	}
	e.To = int(idx)
	return e, nil
}

func parseNumber(raw json.RawMessage) (float64, bool) {
	if isNull(raw) {
		return 0, false
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err != nil {
		return 0, false
	}
	return f, !math.IsNaN(f) && !math.IsInf(f, 0)
}

func parsePoint(raw json.RawMessage) (geom.Point, bool) {
	var xy []float64
	if err := json.Unmarshal(raw, &xy); err != nil || len(xy) < 2 || !allFinite(xy[:2]) {
		return geom.Point{}, false
	}
	return geom.Pt(xy[0], xy[1]), true
}

func allFinite(vs []float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
