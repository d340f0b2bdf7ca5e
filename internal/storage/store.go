package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/navtrace/internal/analysis"
	"github.com/san-kum/navtrace/internal/trace"
)

const (
	traceFile  = "trace.json"
	metaFile   = "metadata.json"
	seriesFile = "series.csv"
)

var ErrNotFound = errors.New("trace not found")

// Store is a directory of imported traces, one subdirectory per trace, with
// a sqlite catalog alongside for filtered listing.
type Store struct {
	baseDir string

	mu  sync.Mutex
	cat *Catalog
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Dir() string { return s.baseDir }

// Init creates the library directory and reindexes the catalog when it
// disagrees with the directories on disk.
func (s *Store) Init() error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}
	cat, err := s.catalog()
	if err != nil {
		return err
	}
	n, err := cat.Count()
	if err != nil {
		return err
	}
	list, err := s.List()
	if err != nil {
		return err
	}
	if n != len(list) {
		return s.Reindex()
	}
	return nil
}

func (s *Store) catalog() (*Catalog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cat != nil {
		return s.cat, nil
	}
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return nil, err
	}
	cat, err := OpenCatalog(filepath.Join(s.baseDir, catalogFile))
	if err != nil {
		return nil, err
	}
	s.cat = cat
	return cat, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cat == nil {
		return nil
	}
	err := s.cat.Close()
	s.cat = nil
	return err
}

// Find queries the catalog.
func (s *Store) Find(f Filter) ([]TraceMetadata, error) {
	cat, err := s.catalog()
	if err != nil {
		return nil, err
	}
	return cat.Find(f)
}

// Reindex rebuilds the catalog from the trace directories.
func (s *Store) Reindex() error {
	cat, err := s.catalog()
	if err != nil {
		return err
	}
	list, err := s.List()
	if err != nil {
		return err
	}
	return cat.Rebuild(list, s.LoadSeries)
}

type TraceMetadata struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	Steps     int       `json:"steps"`
	Agents    int       `json:"agents"`
	NX        int       `json:"nx,omitempty"`
	NY        int       `json:"ny,omitempty"`
	Warnings  int       `json:"warnings"`
	Size      int64     `json:"size"`
	Timestamp time.Time `json:"timestamp"`
}

// Save stores the raw document of an already parsed trace together with its
// metadata and per-step series.
func (s *Store) Save(name string, raw []byte, tr *trace.Trace) (string, error) {
	id := uuid.New().String()
	dir := filepath.Join(s.baseDir, id)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(dir, traceFile), raw, 0644); err != nil {
		return "", discard(dir, err)
	}

	nx, ny := tr.Dims()
	meta := TraceMetadata{
		ID:        id,
		Name:      name,
		Kind:      tr.Kind().String(),
		Steps:     tr.Steps(),
		Agents:    tr.NumAgents(),
		NX:        nx,
		NY:        ny,
		Warnings:  len(tr.Warnings()),
		Size:      int64(len(raw)),
		Timestamp: time.Now(),
	}
	if err := writeMeta(filepath.Join(dir, metaFile), meta); err != nil {
		return "", discard(dir, err)
	}
	occ := analysis.OccupancySeries(tr)
	pres := analysis.PresenceSeries(tr)
	if err := writeSeries(filepath.Join(dir, seriesFile), occ, pres); err != nil {
		return "", discard(dir, err)
	}

	cat, err := s.catalog()
	if err != nil {
		return "", discard(dir, err)
	}
	if err := cat.Put(meta, occ, pres); err != nil {
		return "", discard(dir, err)
	}
	return id, nil
}

// discard removes a partially written trace directory so List and Reindex
// never see it.
func discard(dir string, err error) error {
	if rmErr := os.RemoveAll(dir); rmErr != nil {
		return fmt.Errorf("%w (cleanup: %v)", err, rmErr)
	}
	return err
}

func writeMeta(path string, meta TraceMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeSeries(path string, occ, pres []float64) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"step", "occupancy", "presence"}); err != nil {
		return err
	}
	for i := range occ {
		row := []string{
			strconv.Itoa(i),
			strconv.FormatFloat(occ[i], 'f', -1, 64),
			strconv.FormatFloat(pres[i], 'f', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

// List returns every readable entry; directories without valid metadata are
// skipped.
func (s *Store) List() ([]TraceMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []TraceMetadata{}, nil
		}
		return nil, err
	}

	out := make([]TraceMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		out = append(out, *meta)
	}
	return out, nil
}

func (s *Store) Has(id string) bool {
	if !validID(id) {
		return false
	}
	_, err := os.Stat(filepath.Join(s.baseDir, id, metaFile))
	return err == nil
}

func (s *Store) Load(id string) (*TraceMetadata, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	data, err := os.ReadFile(filepath.Join(s.baseDir, id, metaFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}

	var meta TraceMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadRaw returns the stored document as it was imported.
func (s *Store) LoadRaw(id string) ([]byte, error) {
	if !validID(id) {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	raw, err := os.ReadFile(filepath.Join(s.baseDir, id, traceFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, err
	}
	return raw, nil
}

// LoadTrace parses the stored document again; traces are not cached.
func (s *Store) LoadTrace(id string) (*trace.Trace, error) {
	raw, err := s.LoadRaw(id)
	if err != nil {
		return nil, err
	}
	return trace.Parse(raw)
}

func (s *Store) LoadSeries(id string) (occupancy, presence []float64, err error) {
	if !validID(id) {
		return nil, nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}
	file, err := os.Open(filepath.Join(s.baseDir, id, seriesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	records, err := csv.NewReader(file).ReadAll()
	if err != nil {
		return nil, nil, err
	}
	for i := 1; i < len(records); i++ {
		if len(records[i]) < 3 {
			continue
		}
		o, err1 := strconv.ParseFloat(records[i][1], 64)
		p, err2 := strconv.ParseFloat(records[i][2], 64)
		if err1 != nil || err2 != nil {
			continue
		}
		occupancy = append(occupancy, o)
		presence = append(presence, p)
	}
	return occupancy, presence, nil
}

func (s *Store) Delete(id string) error {
	if !s.Has(id) {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err := os.RemoveAll(filepath.Join(s.baseDir, id)); err != nil {
		return err
	}
	cat, err := s.catalog()
	if err != nil {
		return err
	}
	return cat.Remove(id)
}

func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
