// Package store persists runs, area observations and arrival traversals in SQLite
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/lixenwraith/pedsim/engine"
	"github.com/lixenwraith/pedsim/measure"
)

// ErrNotFound indicates an unknown run ID
var ErrNotFound = errors.New("store: run not found")

// Run is one persisted simulation run
type Run struct {
	ID         string
	Scenario   string
	Strategy   string
	Config     string // Scenario TOML as resolved at start
	StartedAt  time.Time
	FinishedAt time.Time // Zero while running
	Reason     string
	Ticks      uint64
	SimSeconds float64
	Arrivals   int
}

// Store wraps the SQLite handle
type Store struct {
	db *sql.DB
}

// Open opens or creates the database at path and migrates it to the latest schema
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	// Single writer, the recorder and API readers share one connection
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close releases the database
func (s *Store) Close() error {
	return s.db.Close()
}

func unixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromNano(n int64) time.Time {
	if n == 0 {
		return time.Time{}
	}
	return time.Unix(0, n).UTC()
}

// CreateRun inserts a run at start
func (s *Store) CreateRun(ctx context.Context, r Run) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (run_id, scenario, strategy, config, started_at) VALUES (?, ?, ?, ?, ?)`,
		r.ID, r.Scenario, r.Strategy, r.Config, unixNano(r.StartedAt))
	if err != nil {
		return fmt.Errorf("failed to insert run %s: %w", r.ID, err)
	}
	return nil
}

// FinishRun stores the outcome of run id
func (s *Store) FinishRun(ctx context.Context, id string, finished time.Time, reason string, ticks uint64, simSeconds float64, arrivals int) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, reason = ?, ticks = ?, sim_seconds = ?, arrivals = ? WHERE run_id = ?`,
		unixNano(finished), reason, int64(ticks), simSeconds, arrivals, id)
	if err != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

const runColumns = `run_id, scenario, strategy, config, started_at, COALESCE(finished_at, 0), reason, ticks, sim_seconds, arrivals`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		r                 Run
		started, finished int64
		ticks             int64
	)
	if err := row.Scan(&r.ID, &r.Scenario, &r.Strategy, &r.Config, &started, &finished, &r.Reason, &ticks, &r.SimSeconds, &r.Arrivals); err != nil {
		return Run{}, err
	}
	r.StartedAt = fromNano(started)
	r.FinishedAt = fromNano(finished)
	r.Ticks = uint64(ticks)
	return r, nil
}

// Run loads one run
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	r, err := scanRun(s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, fmt.Errorf("failed to load run %s: %w", id, err)
	}
	return r, nil
}

// Runs lists the most recent runs first, limit <= 0 for all
func (s *Store) Runs(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY started_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AddObservations appends observations of run id in one transaction
func (s *Store) AddObservations(ctx context.Context, runID string, obs []measure.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO observations (run_id, area, pedestrian_id, speed, density, observed_at) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare observation insert: %w", err)
	}
	defer stmt.Close()

	for _, o := range obs {
		if _, err := stmt.ExecContext(ctx, runID, o.Area, o.PedestrianID, o.Speed, o.Density, unixNano(o.At)); err != nil {
			return fmt.Errorf("failed to insert observation: %w", err)
		}
	}
	return tx.Commit()
}

// Observations returns the observations of run id, all areas when area is empty
func (s *Store) Observations(ctx context.Context, runID, area string) ([]measure.Observation, error) {
	q := `SELECT area, pedestrian_id, speed, density, observed_at FROM observations WHERE run_id = ?`
	args := []any{runID}
	if area != "" {
		q += ` AND area = ?`
		args = append(args, area)
	}
	q += ` ORDER BY rowid`

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query observations: %w", err)
	}
	defer rows.Close()

	var out []measure.Observation
	for rows.Next() {
		var o measure.Observation
		var at int64
		if err := rows.Scan(&o.Area, &o.PedestrianID, &o.Speed, &o.Density, &at); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		o.At = fromNano(at)
		out = append(out, o)
	}
	return out, rows.Err()
}

// AddArrival appends one arrival traversal
func (s *Store) AddArrival(ctx context.Context, runID string, a engine.Arrival) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO traversals (run_id, pedestrian_id, traversal_ns, tick, arrived_at) VALUES (?, ?, ?, ?, ?)`,
		runID, a.PedestrianID, int64(a.Traversal), int64(a.Tick), unixNano(a.At))
	if err != nil {
		return fmt.Errorf("failed to insert arrival: %w", err)
	}
	return nil
}

// Arrivals returns the arrivals of run id in insertion order
func (s *Store) Arrivals(ctx context.Context, runID string) ([]engine.Arrival, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pedestrian_id, traversal_ns, tick, arrived_at FROM traversals WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query arrivals: %w", err)
	}
	defer rows.Close()

	var out []engine.Arrival
	for rows.Next() {
		var (
			a              engine.Arrival
			ns, tick, when int64
		)
		if err := rows.Scan(&a.PedestrianID, &ns, &tick, &when); err != nil {
			return nil, fmt.Errorf("failed to scan arrival: %w", err)
		}
		a.Traversal = time.Duration(ns)
		a.Tick = uint64(tick)
		a.At = fromNano(when)
		out = append(out, a)
	}
	return out, rows.Err()
}
