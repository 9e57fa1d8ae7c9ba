package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/banshee-data/livox.sim/internal/lidar/sensor"
)

// ErrRunNotFound is returned when a run id has no row.
var ErrRunNotFound = errors.New("run not found")

var pragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA foreign_keys=ON",
}

// Run is one invocation of the simulator.
type Run struct {
	RunID       string          `json:"run_id"`
	StartedAt   int64           `json:"started_at"`
	EndedAt     int64           `json:"ended_at,omitempty"`
	PatternPath string          `json:"pattern_path"`
	PatternSize int             `json:"pattern_size"`
	Samples     int             `json:"samples"`
	DownSample  int             `json:"downsample"`
	ConfigJSON  json.RawMessage `json:"config_json,omitempty"`
}

// FrameRecord is the persisted summary of one simulated frame.
type FrameRecord struct {
	RunID         string  `json:"run_id"`
	Sequence      uint64  `json:"sequence"`
	StampNanos    int64   `json:"stamp_ns"`
	CursorStart   int64   `json:"cursor_start"`
	Fired         int     `json:"fired"`
	Dropped       int     `json:"dropped"`
	Points        int     `json:"points"`
	Returns       int     `json:"returns"`
	HitRatio      float64 `json:"hit_ratio"`
	MeanRange     float64 `json:"mean_range"`
	StdDevRange   float64 `json:"stddev_range"`
	MinRange      float64 `json:"min_range"`
	MaxRange      float64 `json:"max_range"`
	MeanIntensity float64 `json:"mean_intensity"`
}

// NewFrameRecord flattens sensor frame stats for storage.
func NewFrameRecord(runID string, st sensor.FrameStats) *FrameRecord {
	return &FrameRecord{
		RunID:         runID,
		Sequence:      st.Sequence,
		StampNanos:    st.Stamp.Nanoseconds(),
		CursorStart:   st.CursorStart,
		Fired:         st.Fired,
		Dropped:       st.Dropped,
		Points:        st.Summary.Points,
		Returns:       st.Summary.Returns,
		HitRatio:      st.Summary.HitRatio,
		MeanRange:     st.Summary.MeanRange,
		StdDevRange:   st.Summary.StdDevRange,
		MinRange:      st.Summary.MinRange,
		MaxRange:      st.Summary.MaxRange,
		MeanIntensity: st.Summary.MeanIntensity,
	}
}

// RunTotals aggregates the frames of one run.
type RunTotals struct {
	Frames       int     `json:"frames"`
	Fired        int     `json:"fired"`
	Dropped      int     `json:"dropped"`
	Returns      int     `json:"returns"`
	MeanHitRatio float64 `json:"mean_hit_ratio"`
}

// FrameStore persists runs and frame summaries in SQLite.
type FrameStore struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and migrates it to
// the latest schema.
func Open(path string) (*FrameStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// One connection keeps per-connection pragmas in force.
	db.SetMaxOpenConns(1)
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute %q: %w", p, err)
		}
	}
	s := &FrameStore{db: db, path: path}
	if err := s.MigrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// DB exposes the underlying handle for read-only debugging tools.
func (s *FrameStore) DB() *sql.DB { return s.db }

// Path returns the database path given to Open.
func (s *FrameStore) Path() string { return s.path }

// Close closes the database.
func (s *FrameStore) Close() error { return s.db.Close() }

// StartRun inserts run, generating RunID and StartedAt when unset.
func (s *FrameStore) StartRun(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.StartedAt == 0 {
		run.StartedAt = time.Now().UnixNano()
	}
	var cfg any
	if len(run.ConfigJSON) > 0 {
		cfg = string(run.ConfigJSON)
	}
	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO sim_runs (
				run_id, started_at, pattern_path, pattern_size, samples, downsample, config_json
			) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			run.RunID, run.StartedAt, run.PatternPath, run.PatternSize, run.Samples, run.DownSample, cfg,
		)
		return err
	})
}

// EndRun stamps the end time of a run.
func (s *FrameStore) EndRun(runID string, at time.Time) error {
	res, err := s.db.Exec(`UPDATE sim_runs SET ended_at = ? WHERE run_id = ?`, at.UnixNano(), runID)
	if err != nil {
		return fmt.Errorf("end run: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return nil
}

// GetRun returns a run by id.
func (s *FrameStore) GetRun(runID string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT run_id, started_at, ended_at, pattern_path, pattern_size, samples, downsample, config_json
		FROM sim_runs WHERE run_id = ?`, runID)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
	}
	return r, err
}

// ListRuns returns runs newest first.
func (s *FrameStore) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(`
		SELECT run_id, started_at, ended_at, pattern_path, pattern_size, samples, downsample, config_json
		FROM sim_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (*Run, error) {
	var r Run
	var ended sql.NullInt64
	var cfg sql.NullString
	if err := sc.Scan(&r.RunID, &r.StartedAt, &ended, &r.PatternPath, &r.PatternSize, &r.Samples, &r.DownSample, &cfg); err != nil {
		return nil, err
	}
	r.EndedAt = ended.Int64
	if cfg.Valid {
		r.ConfigJSON = json.RawMessage(cfg.String)
	}
	return &r, nil
}

// RecordFrame inserts one frame summary.
func (s *FrameStore) RecordFrame(f *FrameRecord) error {
	return retryOnBusy(func() error {
		_, err := s.db.Exec(`
			INSERT INTO sim_frames (
				run_id, sequence, stamp_ns, cursor_start, fired, dropped, points, returns,
				hit_ratio, mean_range, stddev_range, min_range, max_range, mean_intensity
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			f.RunID, f.Sequence, f.StampNanos, f.CursorStart, f.Fired, f.Dropped, f.Points, f.Returns,
			f.HitRatio, f.MeanRange, f.StdDevRange, f.MinRange, f.MaxRange, f.MeanIntensity,
		)
		return err
	})
}

// ListFrames returns the frames of a run in sequence order, at most limit
// rows when limit > 0.
func (s *FrameStore) ListFrames(runID string, limit int) ([]*FrameRecord, error) {
	q := `
		SELECT run_id, sequence, stamp_ns, cursor_start, fired, dropped, points, returns,
		       hit_ratio, mean_range, stddev_range, min_range, max_range, mean_intensity
		FROM sim_frames WHERE run_id = ? ORDER BY sequence`
	args := []any{runID}
	if limit > 0 {
		q += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, fmt.Errorf("query frames: %w", err)
	}
	defer rows.Close()

	var out []*FrameRecord
	for rows.Next() {
		var f FrameRecord
		if err := rows.Scan(
			&f.RunID, &f.Sequence, &f.StampNanos, &f.CursorStart, &f.Fired, &f.Dropped, &f.Points, &f.Returns,
			&f.HitRatio, &f.MeanRange, &f.StdDevRange, &f.MinRange, &f.MaxRange, &f.MeanIntensity,
		); err != nil {
			return nil, fmt.Errorf("scan frame: %w", err)
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// Totals aggregates the frames recorded for a run.
func (s *FrameStore) Totals(runID string) (RunTotals, error) {
	var t RunTotals
	err := s.db.QueryRow(`
		SELECT COUNT(*), COALESCE(SUM(fired), 0), COALESCE(SUM(dropped), 0),
		       COALESCE(SUM(returns), 0), COALESCE(AVG(hit_ratio), 0)
		FROM sim_frames WHERE run_id = ?`, runID).
		Scan(&t.Frames, &t.Fired, &t.Dropped, &t.Returns, &t.MeanHitRatio)
	if err != nil {
		return RunTotals{}, fmt.Errorf("query totals: %w", err)
	}
	return t, nil
}

func retryOnBusy(fn func() error) error {
	const attempts = 5
	delay := 10 * time.Millisecond
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || !isBusy(err) {
			return err
		}
		time.Sleep(delay)
		delay *= 2
	}
	return err
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}
