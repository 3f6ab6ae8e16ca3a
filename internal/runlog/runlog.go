// Package runlog persists localization runs and their per-step filter
// telemetry to SQLite, so simulation results can be compared across
// parameter settings and resampling strategies after the fact.
package runlog

import (
	"database/sql"
	_ "embed"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DB wraps the run log database handle.
type DB struct {
	*sql.DB
}

// schema.sql defines the run log schema: one row per localization run
// and one row per filter step within it.
//
//go:embed schema.sql
var schemaSQL string

// Open opens (creating if needed) the run log at path and applies the
// schema.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply run log schema: %v", err)
	}

	log.Println("initialized run log schema")

	return &DB{db}, nil
}

// Run describes one localization run: the map, the resampling
// strategy and the filter sizing it was started with.
type Run struct {
	RunID           string `json:"run_id"`
	MapPath         string `json:"map_path"`
	Strategy        string `json:"strategy"`
	MinSamples      int    `json:"min_samples"`
	MaxSamples      int    `json:"max_samples"`
	OverheadSamples int    `json:"overhead_samples"`
	Seed            uint64 `json:"seed"`
	Notes           string `json:"notes,omitempty"`
	StartedAtNs     int64  `json:"started_at_ns"`
	FinishedAtNs    int64  `json:"finished_at_ns,omitempty"`
}

// Step is the filter telemetry captured after one
// motion/sensor/resample cycle.
type Step struct {
	RunID             string  `json:"run_id"`
	StepIndex         int     `json:"step_index"`
	SampleCount       int     `json:"sample_count"`
	Leaves            int     `json:"leaves"`
	ClusterCount      int     `json:"cluster_count"`
	SumSquaredWeights float64 `json:"sum_squared_weights"`
	BestWeight        float64 `json:"best_weight"`
	BestX             float64 `json:"best_x"`
	BestY             float64 `json:"best_y"`
	BestTheta         float64 `json:"best_theta"`
	TruthX            float64 `json:"truth_x"`
	TruthY            float64 `json:"truth_y"`
	TruthTheta        float64 `json:"truth_theta"`
	ErrorMeters       float64 `json:"error_meters"`
	ElapsedMicros     int64   `json:"elapsed_micros"`
}

// StartRun persists a new run. If RunID is empty, a UUID is
// generated; if StartedAtNs is zero, the current time is used.
func (db *DB) StartRun(run *Run) error {
	if run.RunID == "" {
		run.RunID = uuid.New().String()
	}
	if run.StartedAtNs == 0 {
		run.StartedAtNs = time.Now().UnixNano()
	}

	_, err := db.Exec(`
		INSERT INTO amcl_runs (
			run_id, map_path, strategy,
			min_samples, max_samples, overhead_samples,
			seed, notes, started_at_ns
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID, run.MapPath, run.Strategy,
		run.MinSamples, run.MaxSamples, run.OverheadSamples,
		int64(run.Seed), run.Notes, run.StartedAtNs,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %v", err)
	}
	return nil
}

// EndRun marks a run finished.
func (db *DB) EndRun(runID string) error {
	_, err := db.Exec(`
		UPDATE amcl_runs SET finished_at_ns = ? WHERE run_id = ?`,
		time.Now().UnixNano(), runID,
	)
	if err != nil {
		return fmt.Errorf("failed to end run: %v", err)
	}
	return nil
}

// RecordStep persists one step of filter telemetry.
func (db *DB) RecordStep(step *Step) error {
	_, err := db.Exec(`
		INSERT INTO amcl_steps (
			run_id, step_index, sample_count, leaves, cluster_count,
			sum_squared_weights, best_weight,
			best_x, best_y, best_theta,
			truth_x, truth_y, truth_theta,
			error_meters, elapsed_micros
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		step.RunID, step.StepIndex, step.SampleCount, step.Leaves, step.ClusterCount,
		step.SumSquaredWeights, step.BestWeight,
		step.BestX, step.BestY, step.BestTheta,
		step.TruthX, step.TruthY, step.TruthTheta,
		step.ErrorMeters, step.ElapsedMicros,
	)
	if err != nil {
		return fmt.Errorf("failed to insert step: %v", err)
	}
	return nil
}

// Steps returns the telemetry of a run in step order.
func (db *DB) Steps(runID string) ([]*Step, error) {
	rows, err := db.Query(`
		SELECT run_id, step_index, sample_count, leaves, cluster_count,
		       sum_squared_weights, best_weight,
		       best_x, best_y, best_theta,
		       truth_x, truth_y, truth_theta,
		       error_meters, elapsed_micros
		FROM amcl_steps
		WHERE run_id = ?
		ORDER BY step_index ASC`, runID)
	if err != nil {
		return nil, fmt.Errorf("query steps: %w", err)
	}
	defer rows.Close()

	var steps []*Step
	for rows.Next() {
		s := &Step{}
		if err := rows.Scan(
			&s.RunID, &s.StepIndex, &s.SampleCount, &s.Leaves, &s.ClusterCount,
			&s.SumSquaredWeights, &s.BestWeight,
			&s.BestX, &s.BestY, &s.BestTheta,
			&s.TruthX, &s.TruthY, &s.TruthTheta,
			&s.ErrorMeters, &s.ElapsedMicros,
		); err != nil {
			return nil, fmt.Errorf("scan step: %w", err)
		}
		steps = append(steps, s)
	}
	return steps, rows.Err()
}

// Runs lists all recorded runs, most recent first.
func (db *DB) Runs() ([]*Run, error) {
	rows, err := db.Query(`
		SELECT run_id, map_path, strategy,
		       min_samples, max_samples, overhead_samples,
		       seed, notes, started_at_ns,
		       COALESCE(finished_at_ns, 0)
		FROM amcl_runs
		ORDER BY started_at_ns DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		r := &Run{}
		var seed int64
		if err := rows.Scan(
			&r.RunID, &r.MapPath, &r.Strategy,
			&r.MinSamples, &r.MaxSamples, &r.OverheadSamples,
			&seed, &r.Notes, &r.StartedAtNs, &r.FinishedAtNs,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Seed = uint64(seed)
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
