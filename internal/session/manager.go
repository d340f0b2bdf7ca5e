package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/navtrace/internal/geom"
	"github.com/san-kum/navtrace/internal/plotly"
	"github.com/san-kum/navtrace/internal/scene"
	"github.com/san-kum/navtrace/internal/trace"
)

// DefaultMaxSessions limits loaded traces to bound memory.
const DefaultMaxSessions = 16

var ErrNotFound = errors.New("session not found")

// Session is one loaded trace with its precomputed scenes and figure.
type Session struct {
	ID         string
	Name       string
	StoredID   string
	Trace      *trace.Trace
	Scenes     []scene.Scene
	Bounds     geom.Rect
	Figure     *plotly.Figure
	Generation uint64
	CreatedAt  time.Time
}

// Info is the JSON view of a session.
type Info struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Kind      string          `json:"kind"`
	Steps     int             `json:"steps"`
	Agents    int             `json:"agents"`
	NX        int             `json:"nx,omitempty"`
	NY        int             `json:"ny,omitempty"`
	Warnings  []trace.Warning `json:"warnings"`
	Current   bool            `json:"current"`
	StoredID  string          `json:"storedId,omitempty"`
	CreatedAt int64           `json:"createdAt"` // Unix ms
}

// Manager holds loaded traces and tracks which one is current.
//
// Every load takes a generation number when it starts. When a load finishes
// it becomes current only if no later load has become current already, so
// the most recently started load wins regardless of finish order.
type Manager struct {
	mu         sync.RWMutex
	sessions   map[string]*Session
	current    string
	currentGen uint64
	gen        atomic.Uint64

	renderer *scene.Renderer
	opts     plotly.Options
	max      int
}

func NewManager(r *scene.Renderer, opts plotly.Options, maxSessions int) *Manager {
	if maxSessions < 1 {
		maxSessions = DefaultMaxSessions
	}
	return &Manager{
		sessions: make(map[string]*Session),
		renderer: r,
		opts:     opts,
		max:      maxSessions,
	}
}

// Load parses raw, builds every scene and registers the result. Parse
// errors leave the manager untouched. The returned bool reports whether the
// new session became current.
func (m *Manager) Load(ctx context.Context, name string, raw []byte) (*Session, bool, error) {
	gen := m.gen.Add(1)

	tr, err := trace.Parse(raw)
	if err != nil {
		return nil, false, err
	}
	return m.register(ctx, gen, name, tr)
}

// Add registers an already parsed trace.
func (m *Manager) Add(ctx context.Context, name string, tr *trace.Trace) (*Session, bool, error) {
	return m.register(ctx, m.gen.Add(1), name, tr)
}

func (m *Manager) register(ctx context.Context, gen uint64, name string, tr *trace.Trace) (*Session, bool, error) {
	scenes, err := m.renderer.BuildAllScenes(ctx, tr)
	if err != nil {
		return nil, false, fmt.Errorf("build scenes: %w", err)
	}

	s := &Session{
		ID:         uuid.New().String(),
		Name:       name,
		Trace:      tr,
		Scenes:     scenes,
		Bounds:     scene.Bounds(tr),
		Figure:     plotly.Encode(scenes, m.opts),
		Generation: gen,
		CreatedAt:  time.Now(),
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.evictLocked()
	m.sessions[s.ID] = s

	isCurrent := gen > m.currentGen
	if isCurrent {
		m.current = s.ID
		m.currentGen = gen
	}
	return s, isCurrent, nil
}

// evictLocked drops the oldest non-current sessions until there is room for
// one more.
func (m *Manager) evictLocked() {
	for len(m.sessions) >= m.max {
		var oldest *Session
		for id, s := range m.sessions {
			if id == m.current {
				continue
			}
			if oldest == nil || s.Generation < oldest.Generation {
				oldest = s
			}
		}
		if oldest == nil {
			return
		}
		delete(m.sessions, oldest.ID)
	}
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s, nil
}

func (m *Manager) Current() (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[m.current]
	if !ok {
		return nil, fmt.Errorf("%w: no current trace", ErrNotFound)
	}
	return s, nil
}

func (m *Manager) IsCurrent(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current == id && id != ""
}

// Select makes id current. It counts as a new load, so loads started
// earlier can no longer take over when they finish.
func (m *Manager) Select(id string) error {
	gen := m.gen.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	m.current = id
	m.currentGen = gen
	return nil
}

func (m *Manager) SetStoredID(id, storedID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.StoredID = storedID
	}
}

// Delete removes a session. Deleting the current session leaves no current
// trace.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	delete(m.sessions, id)
	if m.current == id {
		m.current = ""
	}
	return nil
}

// List returns every session, oldest load first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	list := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		list = append(list, s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Generation < list[j].Generation })

	out := make([]Info, len(list))
	for i, s := range list {
		out[i] = s.info(s.ID == m.current)
	}
	return out
}

func (m *Manager) Info(s *Session) Info {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return s.info(s.ID == m.current)
}

func (s *Session) info(current bool) Info {
	nx, ny := s.Trace.Dims()
	warnings := s.Trace.Warnings()
	if warnings == nil {
		warnings = []trace.Warning{}
	}
	return Info{
		ID:        s.ID,
		Name:      s.Name,
		Kind:      s.Trace.Kind().String(),
		Steps:     s.Trace.Steps(),
		Agents:    s.Trace.NumAgents(),
		NX:        nx,
		NY:        ny,
		Warnings:  warnings,
		Current:   current,
		StoredID:  s.StoredID,
		CreatedAt: s.CreatedAt.UnixMilli(),
	}
}
