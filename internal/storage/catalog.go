package storage

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const catalogFile = "catalog.db"

const catalogSchema = `
CREATE TABLE IF NOT EXISTS traces (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	kind           TEXT NOT NULL,
	steps          INTEGER NOT NULL,
	agents         INTEGER NOT NULL,
	nx             INTEGER NOT NULL DEFAULT 0,
	ny             INTEGER NOT NULL DEFAULT 0,
	warnings       INTEGER NOT NULL DEFAULT 0,
	size           INTEGER NOT NULL DEFAULT 0,
	imported_at    TEXT NOT NULL,
	peak_occupancy REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_traces_kind ON traces(kind);
CREATE TABLE IF NOT EXISTS series (
	trace_id  TEXT NOT NULL REFERENCES traces(id) ON DELETE CASCADE,
	step      INTEGER NOT NULL,
	occupancy REAL NOT NULL,
	presence  REAL NOT NULL,
	PRIMARY KEY (trace_id, step)
);
`

// Catalog is a sqlite index over the library: one row per trace plus its
// per-step series. The trace directories stay the source of truth.
type Catalog struct {
	db *sql.DB
}

// Filter narrows Find. Zero fields match everything.
type Filter struct {
	Kind      string
	Name      string // substring, case-insensitive
	MinSteps  int
	MinAgents int
	Limit     int
}

// timeLayout sorts lexically in time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// OpenCatalog opens or creates the catalog at path. Pragmas ride on the DSN
// so every pooled connection gets them.
func OpenCatalog(path string) (*Catalog, error) {
	dsn := "file:" + path + "?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: open %s: %w", path, err)
	}
	if _, err := db.Exec(catalogSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("catalog: create schema: %w", err)
	}
	return &Catalog{db: db}, nil
}

func (c *Catalog) Close() error { return c.db.Close() }

// transaction runs fn inside a transaction, rolling back when it fails.
func (c *Catalog) transaction(fn func(*sql.Tx) error) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("catalog: begin: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("catalog: %v, rollback: %w", err, rbErr)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("catalog: commit: %w", err)
	}
	return nil
}

// Put inserts or replaces one trace and its series.
func (c *Catalog) Put(meta TraceMetadata, occupancy, presence []float64) error {
	return c.transaction(func(tx *sql.Tx) error {
		return putTx(tx, meta, occupancy, presence)
	})
}

func putTx(tx *sql.Tx, meta TraceMetadata, occupancy, presence []float64) error {
	peak := 0.0
	for _, v := range occupancy {
		if v > peak {
			peak = v
		}
	}
	if _, err := tx.Exec(`DELETE FROM traces WHERE id = ?`, meta.ID); err != nil {
		return fmt.Errorf("catalog: replace %s: %w", meta.ID, err)
	}
	_, err := tx.Exec(`INSERT INTO traces
		(id, name, kind, steps, agents, nx, ny, warnings, size, imported_at, peak_occupancy)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		meta.ID, meta.Name, meta.Kind, meta.Steps, meta.Agents, meta.NX, meta.NY,
		meta.Warnings, meta.Size, meta.Timestamp.UTC().Format(timeLayout), peak)
	if err != nil {
		return fmt.Errorf("catalog: insert %s: %w", meta.ID, err)
	}

	stmt, err := tx.Prepare(`INSERT INTO series (trace_id, step, occupancy, presence) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("catalog: prepare series: %w", err)
	}
	defer stmt.Close()
	for i := range occupancy {
		p := 0.0
		if i < len(presence) {
			p = presence[i]
		}
		if _, err := stmt.Exec(meta.ID, i, occupancy[i], p); err != nil {
			return fmt.Errorf("catalog: insert series %s[%d]: %w", meta.ID, i, err)
		}
	}
	return nil
}

func (c *Catalog) Remove(id string) error {
	if _, err := c.db.Exec(`DELETE FROM traces WHERE id = ?`, id); err != nil {
		return fmt.Errorf("catalog: remove %s: %w", id, err)
	}
	return nil
}

func (c *Catalog) Count() (int, error) {
	var n int
	err := c.db.QueryRow(`SELECT COUNT(*) FROM traces`).Scan(&n)
	return n, err
}

// Find returns matching traces, most recently imported first.
func (c *Catalog) Find(f Filter) ([]TraceMetadata, error) {
	query := `SELECT id, name, kind, steps, agents, nx, ny, warnings, size, imported_at FROM traces`

	var conditions []string
	var args []any
	if f.Kind != "" {
		conditions = append(conditions, "kind = ?")
		args = append(args, f.Kind)
	}
	if f.Name != "" {
		conditions = append(conditions, "LOWER(name) LIKE ?")
		args = append(args, "%"+strings.ToLower(f.Name)+"%")
	}
	if f.MinSteps > 0 {
		conditions = append(conditions, "steps >= ?")
		args = append(args, f.MinSteps)
	}
	if f.MinAgents > 0 {
		conditions = append(conditions, "agents >= ?")
		args = append(args, f.MinAgents)
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY imported_at DESC, rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := c.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("catalog: find: %w", err)
	}
	defer rows.Close()

	out := make([]TraceMetadata, 0)
	for rows.Next() {
		var m TraceMetadata
		var imported string
		if err := rows.Scan(&m.ID, &m.Name, &m.Kind, &m.Steps, &m.Agents, &m.NX, &m.NY, &m.Warnings, &m.Size, &imported); err != nil {
			return nil, fmt.Errorf("catalog: scan: %w", err)
		}
		if m.Timestamp, err = time.Parse(timeLayout, imported); err != nil {
			return nil, fmt.Errorf("catalog: bad timestamp for %s: %w", m.ID, err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// Series returns the stored per-step series of one trace.
func (c *Catalog) Series(id string) (occupancy, presence []float64, err error) {
	rows, err := c.db.Query(`SELECT occupancy, presence FROM series WHERE trace_id = ? ORDER BY step`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("catalog: series %s: %w", id, err)
	}
	defer rows.Close()
	for rows.Next() {
		var o, p float64
		if err := rows.Scan(&o, &p); err != nil {
			return nil, nil, err
		}
		occupancy = append(occupancy, o)
		presence = append(presence, p)
	}
	return occupancy, presence, rows.Err()
}

// Rebuild replaces the whole index in one transaction.
func (c *Catalog) Rebuild(entries []TraceMetadata, series func(id string) ([]float64, []float64, error)) error {
	return c.transaction(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM traces`); err != nil {
			return fmt.Errorf("catalog: clear: %w", err)
		}
		for _, m := range entries {
			occ, pres, err := series(m.ID)
			if err != nil {
				return err
			}
			if err := putTx(tx, m, occ, pres); err != nil {
				return err
			}
		}
		return nil
	})
}
