package session

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/san-kum/navtrace/internal/plotly"
	"github.com/san-kum/navtrace/internal/scene"
	"github.com/san-kum/navtrace/internal/trace"
)

const gridDoc = `[
  {"map": [[1, null]], "agents": {"1": {"x": 0, "y": 0}}},
  {"map": [[null, 1]], "agents": {"1": {"x": 0, "y": 1}}}
]`

func newManager(max int) *Manager {
	return NewManager(scene.New(scene.DefaultConfig()), plotly.DefaultOptions(), max)
}

func TestManager_Load(t *testing.T) {
	m := newManager(0)

	s, current, err := m.Load(context.Background(), "a.json", []byte(gridDoc))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !current {
		t.Error("first load should become current")
	}
	if len(s.Scenes) != 2 || len(s.Figure.Frames) != 2 {
		t.Errorf("expected 2 scenes and frames, got %d and %d", len(s.Scenes), len(s.Figure.Frames))
	}

	cur, err := m.Current()
	if err != nil || cur.ID != s.ID {
		t.Errorf("expected %s current, got %v, %v", s.ID, cur, err)
	}
	info := m.Info(s)
	if info.Kind != "grid" || info.Steps != 2 || !info.Current || info.Warnings == nil {
		t.Errorf("unexpected info %+v", info)
	}
}

func TestManager_ParseErrorKeepsCurrent(t *testing.T) {
	m := newManager(0)
	first, _, err := m.Load(context.Background(), "a", []byte(gridDoc))
	if err != nil {
		t.Fatal(err)
	}

	_, _, err = m.Load(context.Background(), "bad", []byte(`{"seats": []}`))
	var perr *trace.ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected a parse error, got %v", err)
	}

	cur, err := m.Current()
	if err != nil || cur.ID != first.ID {
		t.Error("failed load should not replace the current trace")
	}
	if len(m.List()) != 1 {
		t.Errorf("expected 1 session, got %d", len(m.List()))
	}
}

func TestManager_LatestStartedLoadWins(t *testing.T) {
	m := newManager(0)
	tr, err := trace.Parse([]byte(gridDoc))
	if err != nil {
		t.Fatal(err)
	}

	older := m.gen.Add(1)
	newer := m.gen.Add(1)

	fast, current, err := m.register(context.Background(), newer, "newer", tr)
	if err != nil || !current {
		t.Fatalf("newer load should become current: %v", err)
	}
	slow, current, err := m.register(context.Background(), older, "older", tr)
	if err != nil {
		t.Fatal(err)
	}
	if current {
		t.Error("older load finishing later must not become current")
	}

	cur, _ := m.Current()
	if cur.ID != fast.ID {
		t.Errorf("expected %s current, got %s", fast.ID, cur.ID)
	}
	if _, err := m.Get(slow.ID); err != nil {
		t.Error("superseded load should still be kept")
	}
}

func TestManager_Select(t *testing.T) {
	m := newManager(0)
	a, _, _ := m.Load(context.Background(), "a", []byte(gridDoc))
	b, _, _ := m.Load(context.Background(), "b", []byte(gridDoc))

	if !m.IsCurrent(b.ID) {
		t.Fatal("b should be current")
	}
	if err := m.Select(a.ID); err != nil {
		t.Fatalf("select failed: %v", err)
	}
	if !m.IsCurrent(a.ID) {
		t.Error("a should be current after select")
	}
	if err := m.Select("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_Delete(t *testing.T) {
	m := newManager(0)
	s, _, _ := m.Load(context.Background(), "a", []byte(gridDoc))

	if err := m.Delete(s.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := m.Current(); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected no current trace, got %v", err)
	}
	if err := m.Delete(s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestManager_Eviction(t *testing.T) {
	m := newManager(2)
	a, _, _ := m.Load(context.Background(), "a", []byte(gridDoc))
	b, _, _ := m.Load(context.Background(), "b", []byte(gridDoc))
	if err := m.Select(a.ID); err != nil {
		t.Fatal(err)
	}
	c, _, _ := m.Load(context.Background(), "c", []byte(gridDoc))

	if _, err := m.Get(b.ID); !errors.Is(err, ErrNotFound) {
		t.Error("oldest non-current session should be evicted")
	}
	if _, err := m.Get(a.ID); err != nil {
		t.Error("a was current when c was loaded and should survive")
	}
	list := m.List()
	if len(list) != 2 || list[1].ID != c.ID || !list[1].Current {
		t.Errorf("unexpected list %+v", list)
	}
}

func TestManager_ConcurrentLoads(t *testing.T) {
	m := newManager(64)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, _, err := m.Load(context.Background(), "x", []byte(gridDoc)); err != nil {
				t.Errorf("load failed: %v", err)
			}
		}()
	}
	wg.Wait()

	list := m.List()
	if len(list) != 16 {
		t.Fatalf("expected 16 sessions, got %d", len(list))
	}
	cur, err := m.Current()
	if err != nil {
		t.Fatal(err)
	}
	for _, s := range list {
		got, _ := m.Get(s.ID)
		if got.Generation > cur.Generation {
			t.Error("current session must have the highest generation")
		}
	}
}
