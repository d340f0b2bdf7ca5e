package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/san-kum/navtrace/internal/trace"
)

const gridDoc = `[
  {"map": [[1, null], [null, null]], "agents": {"1": {"x": 0, "y": 0}}},
  {"map": [[null, null], [null, 1]], "agents": {"1": {"x": 1, "y": 1}, "2": {"x": 0, "y": 1}}}
]`

func parse(t *testing.T) *trace.Trace {
	t.Helper()
	tr, err := trace.Parse([]byte(gridDoc))
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return tr
}

func newStore(t *testing.T, dir string) *Store {
	t.Helper()
	st := New(dir)
	t.Cleanup(func() { st.Close() })
	return st
}

func TestStoreSaveLoad(t *testing.T) {
	st := newStore(t, t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	id, err := st.Save("demo.json", []byte(gridDoc), parse(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if id == "" {
		t.Error("expected non-empty trace id")
	}

	meta, err := st.Load(id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Name != "demo.json" || meta.Kind != "grid" {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Steps != 2 || meta.Agents != 2 || meta.NX != 2 || meta.NY != 2 {
		t.Errorf("unexpected dimensions %+v", meta)
	}
	if meta.Size != int64(len(gridDoc)) {
		t.Errorf("expected size %d, got %d", len(gridDoc), meta.Size)
	}

	tr, err := st.LoadTrace(id)
	if err != nil {
		t.Fatalf("load trace failed: %v", err)
	}
	if tr.Steps() != 2 {
		t.Errorf("expected 2 steps, got %d", tr.Steps())
	}
	if raw, err := st.LoadRaw(id); err != nil || string(raw) != gridDoc {
		t.Errorf("raw document not preserved: %v", err)
	}

	occ, pres, err := st.LoadSeries(id)
	if err != nil {
		t.Fatalf("load series failed: %v", err)
	}
	if len(occ) != 2 || occ[0] != 1 || pres[1] != 2 {
		t.Errorf("unexpected series %v %v", occ, pres)
	}
}

func TestStoreList(t *testing.T) {
	st := newStore(t, t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	list, err := st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("expected 0 traces, got %d", len(list))
	}

	if _, err := st.Save("a", []byte(gridDoc), parse(t)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.Mkdir(filepath.Join(st.Dir(), "stray"), 0755); err != nil {
		t.Fatal(err)
	}

	list, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(list) != 1 {
		t.Errorf("expected 1 trace, got %d", len(list))
	}
}

func TestStoreList_MissingDir(t *testing.T) {
	list, err := New(filepath.Join(t.TempDir(), "missing")).List()
	if err != nil || len(list) != 0 {
		t.Errorf("expected empty list, got %v, %v", list, err)
	}
}

func TestStoreFileStructure(t *testing.T) {
	dir := t.TempDir()
	st := newStore(t, dir)

	id, err := st.Save("a", []byte(gridDoc), parse(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	for _, name := range []string{"trace.json", "metadata.json", "series.csv"} {
		if _, err := os.Stat(filepath.Join(dir, id, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}
}

func TestStoreDelete(t *testing.T) {
	st := newStore(t, t.TempDir())
	id, err := st.Save("a", []byte(gridDoc), parse(t))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := st.Delete(id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if st.Has(id) {
		t.Error("trace should be gone")
	}
	if err := st.Delete(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestStoreRejectsPaths(t *testing.T) {
	st := newStore(t, t.TempDir())
	for _, id := range []string{"../etc", "", "a/b"} {
		if _, err := st.Load(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("%q: expected ErrNotFound, got %v", id, err)
		}
		if _, err := st.LoadTrace(id); !errors.Is(err, ErrNotFound) {
			t.Errorf("%q: expected ErrNotFound, got %v", id, err)
		}
	}
}

func TestExportStats(t *testing.T) {
	var buf bytes.Buffer
	if err := ExportStats(&buf, "demo", parse(t)); err != nil {
		t.Fatalf("export failed: %v", err)
	}

	var got StatsExport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if got.Kind != "grid" || got.Summary.Steps != 2 || len(got.Occupancy) != 2 {
		t.Errorf("unexpected export %+v", got)
	}
}

const seatDoc = `{
  "seats": [
    {"x": 0, "y": 0, "agent": [1, null, 1], "nexts": [[1, 1]]},
    {"x": 1, "y": 0, "agent": [null, 1, null], "nexts": []}
  ],
  "agents": {"1": [null, null, null]}
}`

func TestCatalogFind(t *testing.T) {
	st := newStore(t, t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	seat, err := trace.Parse([]byte(seatDoc))
	if err != nil {
		t.Fatal(err)
	}
	gridID, err := st.Save("Warehouse Grid", []byte(gridDoc), parse(t))
	if err != nil {
		t.Fatal(err)
	}
	seatID, err := st.Save("corridor", []byte(seatDoc), seat)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name   string
		filter Filter
		want   []string
	}{
		{"all, newest first", Filter{}, []string{seatID, gridID}},
		{"kind", Filter{Kind: "grid"}, []string{gridID}},
		{"name substring", Filter{Name: "warehouse"}, []string{gridID}},
		{"min steps", Filter{MinSteps: 3}, []string{seatID}},
		{"min agents", Filter{MinAgents: 2}, []string{gridID}},
		{"limit", Filter{Limit: 1}, []string{seatID}},
		{"no match", Filter{Kind: "grid", MinSteps: 10}, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := st.Find(tt.filter)
			if err != nil {
				t.Fatalf("find failed: %v", err)
			}
			ids := make([]string, len(got))
			for i, m := range got {
				ids[i] = m.ID
			}
			if len(ids) != len(tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, ids)
			}
			for i := range ids {
				if ids[i] != tt.want[i] {
					t.Errorf("expected %v, got %v", tt.want, ids)
				}
			}
		})
	}
}

func TestCatalogSeriesAndDelete(t *testing.T) {
	st := newStore(t, t.TempDir())
	id, err := st.Save("a", []byte(gridDoc), parse(t))
	if err != nil {
		t.Fatal(err)
	}

	cat, err := st.catalog()
	if err != nil {
		t.Fatal(err)
	}
	occ, pres, err := cat.Series(id)
	if err != nil {
		t.Fatalf("series failed: %v", err)
	}
	if len(occ) != 2 || occ[0] != 1 || pres[1] != 2 {
		t.Errorf("unexpected series %v %v", occ, pres)
	}

	if err := st.Delete(id); err != nil {
		t.Fatal(err)
	}
	if occ, _, _ := cat.Series(id); len(occ) != 0 {
		t.Error("series rows should cascade on delete")
	}
	if n, _ := cat.Count(); n != 0 {
		t.Errorf("expected empty catalog, got %d", n)
	}
}

func TestStoreInit_Reindexes(t *testing.T) {
	dir := t.TempDir()
	st := newStore(t, dir)
	if _, err := st.Save("a", []byte(gridDoc), parse(t)); err != nil {
		t.Fatal(err)
	}
	st.Close()

	for _, suffix := range []string{"", "-wal", "-shm"} {
		os.Remove(filepath.Join(dir, catalogFile+suffix))
	}

	st = newStore(t, dir)
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	got, err := st.Find(Filter{})
	if err != nil || len(got) != 1 || got[0].Name != "a" {
		t.Errorf("catalog not rebuilt: %v, %v", got, err)
	}
}

func TestStoreSave_FailureLeavesNoDirectory(t *testing.T) {
	dir := t.TempDir()
	st := newStore(t, dir)
	cat, err := st.catalog()
	if err != nil {
		t.Fatal(err)
	}
	cat.Close()

	if _, err := st.Save("broken", []byte(gridDoc), parse(t)); err == nil {
		t.Fatal("expected save to fail with a closed catalog")
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if e.IsDir() {
			t.Errorf("partial trace directory left behind: %s", e.Name())
		}
	}
	if list, _ := st.List(); len(list) != 0 {
		t.Errorf("expected an empty library, got %d entries", len(list))
	}
}
